package model

import "time"

// UserBundleProgress 每个 (user, bundle) 一行的可续玩进度摘要。
// completed 和 in_progress 独立记录，允许“弃玩/暂停”这类两者皆否的状态，
// 不要互相推导。
// swagger:model UserBundleProgress
type UserBundleProgress struct {
	ID                uint       `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID            uint       `gorm:"not null;uniqueIndex:uq_user_bundle_progress" json:"userId"`
	BundleID          uint       `gorm:"not null;uniqueIndex:uq_user_bundle_progress" json:"bundleId"`
	TotalQuestions    int        `gorm:"not null;default:0" json:"totalQuestions"`
	CorrectAnswers    int        `gorm:"not null;default:0" json:"correctAnswers"`
	Completed         bool       `gorm:"default:false" json:"completed"`
	InProgress        bool       `json:"inProgress"`
	LastQuestionID    *uint      `json:"lastQuestionId"`
	LastQuestionOrder int        `gorm:"default:0" json:"lastQuestionOrder"`
	LastPlayedAt      time.Time  `json:"lastPlayedAt"`
	CompletedAt       *time.Time `json:"completedAt"`
}

func (UserBundleProgress) TableName() string {
	return "user_quiz_bundle_progress"
}
