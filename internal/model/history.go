package model

import "time"

// UserQuizHistory 只追加的答题日志，每次判分写一行。
// 除进度重置外不更新也不删除，是所有统计的权威数据源。
// swagger:model UserQuizHistory
type UserQuizHistory struct {
	ID         uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID     uint      `gorm:"index;not null" json:"userId"`
	QuestionID uint      `gorm:"index;not null" json:"questionId"`
	BundleID   *uint     `gorm:"index" json:"bundleId"` // 随机练习时为空
	UserAnswer string    `gorm:"type:text;not null" json:"userAnswer"`
	IsCorrect  bool      `gorm:"default:false" json:"isCorrect"`
	SolvedAt   time.Time `json:"solvedAt"`

	Question *Question `gorm:"foreignKey:QuestionID" json:"question,omitempty"`
}

func (UserQuizHistory) TableName() string {
	return "user_quiz_history"
}
