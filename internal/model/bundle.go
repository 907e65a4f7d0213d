package model

// QuizBundle 管理员策划的有序题目合集。QuestionCount 是反范式计数，
// 成员变更时必须在同一事务内重算。
// swagger:model QuizBundle
type QuizBundle struct {
	BaseModel
	Title         string         `gorm:"size:255;not null" json:"title"`
	Description   string         `gorm:"type:text" json:"description"`
	Category      QuizCategory   `gorm:"size:30" json:"category"`
	Difficulty    QuizDifficulty `gorm:"size:20" json:"difficulty"`
	QuestionCount int            `gorm:"default:0" json:"questionCount"`
	IsActive      bool           `json:"isActive"`

	Questions []QuizBundleQuestion `gorm:"foreignKey:BundleID" json:"-"`
}

func (QuizBundle) TableName() string {
	return "quiz_bundles"
}

// QuizBundleQuestion 合集成员行，Order 由整体替换时的列表位置决定，
// 0 起始且每个合集内连续。
type QuizBundleQuestion struct {
	ID         uint `gorm:"primaryKey;autoIncrement" json:"id"`
	BundleID   uint `gorm:"index;not null" json:"bundleId"`
	QuestionID uint `gorm:"index;not null" json:"questionId"`
	Order      int  `gorm:"column:order_no;default:0" json:"order"`

	Question Question `json:"question"`
}

func (QuizBundleQuestion) TableName() string {
	return "quiz_bundle_questions"
}
