package model

type QuestionType string

const (
	TypeMultiple QuestionType = "MULTIPLE" // 客观选择题
	TypeShort    QuestionType = "SHORT"    // 短答题
)

func (t QuestionType) Valid() bool {
	return t == TypeMultiple || t == TypeShort
}

type QuizCategory string

const (
	CategoryAll       QuizCategory = "ALL"
	CategoryPreModern QuizCategory = "PRE_MODERN_HISTORY"
	CategoryModern    QuizCategory = "MODERN_HISTORY"
)

func (c QuizCategory) Valid() bool {
	switch c {
	case CategoryAll, CategoryPreModern, CategoryModern:
		return true
	}
	return false
}

type QuizDifficulty string

const (
	DifficultyBasic    QuizDifficulty = "BASIC"
	DifficultyStandard QuizDifficulty = "STANDARD"
	DifficultyAdvanced QuizDifficulty = "ADVANCED"
)

func (d QuizDifficulty) Valid() bool {
	switch d {
	case DifficultyBasic, DifficultyStandard, DifficultyAdvanced:
		return true
	}
	return false
}

// Question 题库条目。CorrectAnswer 对 SHORT 是判分依据，
// 对 MULTIPLE 只是冗余的参考答案，判分走 Choice.IsCorrect。
// swagger:model Question
type Question struct {
	BaseModel
	QuestionText  string         `gorm:"type:text;not null" json:"questionText"`
	Type          QuestionType   `gorm:"size:20;not null" json:"type"`
	CorrectAnswer string         `gorm:"type:text;not null" json:"correctAnswer"`
	Explanation   string         `gorm:"type:text" json:"explanation"`
	Category      QuizCategory   `gorm:"size:30;not null;default:'ALL'" json:"category"`
	Difficulty    QuizDifficulty `gorm:"size:20;not null;default:'STANDARD'" json:"difficulty"`
	ImageURL      string         `gorm:"size:512" json:"imageUrl"`

	Choices []Choice `gorm:"constraint:OnDelete:CASCADE" json:"choices"`
	Topics  []Topic  `gorm:"many2many:question_topic_links" json:"topics"`
}

func (Question) TableName() string {
	return "questions"
}

// swagger:model Choice
type Choice struct {
	ID         uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	QuestionID uint   `gorm:"index;not null" json:"questionId"`
	Content    string `gorm:"size:255;not null" json:"content"`
	IsCorrect  bool   `gorm:"default:false" json:"isCorrect"`
}

func (Choice) TableName() string {
	return "choices"
}

// Topic 横切的主题标签，独立于分类/难度，多对多挂在题目上。
// swagger:model Topic
type Topic struct {
	BaseModel
	Name        string `gorm:"size:100;index;not null" json:"name"`
	Description string `gorm:"type:text" json:"description"`
}

func (Topic) TableName() string {
	return "quiz_topics"
}
