package model

import "time"

// 管理端统计报表类型。四个板块在一次调用里各自独立计算，
// 排序约定见各字段注释。

type QuestionPerformanceStat struct {
	QuestionID     uint           `json:"questionId"`
	QuestionText   string         `json:"questionText"`
	Category       QuizCategory   `json:"category"`
	Difficulty     QuizDifficulty `json:"difficulty"`
	TotalAttempts  int            `json:"totalAttempts"`
	CorrectCount   int            `json:"correctCount"`
	IncorrectCount int            `json:"incorrectCount"`
	Accuracy       float64        `json:"accuracy"`
	Topics         []Topic        `json:"topics"`
}

type BundlePerformanceStat struct {
	BundleID        uint    `json:"bundleId"`
	Title           string  `json:"title"`
	TotalUsers      int     `json:"totalUsers"`
	CompletedUsers  int     `json:"completedUsers"`
	InProgressUsers int     `json:"inProgressUsers"`
	AverageAccuracy float64 `json:"averageAccuracy"` // 各用户正确率的算术平均，不按作答量加权
}

type UserPerformanceStat struct {
	UserID                uint     `json:"userId"`
	Nickname              string   `json:"nickname"`
	TotalAttempts         int      `json:"totalAttempts"`
	CorrectAnswers        int      `json:"correctAnswers"`
	Accuracy              float64  `json:"accuracy"`
	CompletedBundles      int      `json:"completedBundles"`
	AverageBundleAccuracy *float64 `json:"averageBundleAccuracy"`
}

type UserBundlePerformanceStat struct {
	UserID         uint    `json:"userId"`
	Nickname       string  `json:"nickname"`
	Attempts       int     `json:"attempts"`
	CorrectAnswers int     `json:"correctAnswers"`
	Accuracy       float64 `json:"accuracy"`
	Completed      bool    `json:"completed"`
}

type BundleUserPerformanceStat struct {
	BundleID    uint                        `json:"bundleId"`
	BundleTitle string                      `json:"bundleTitle"`
	Users       []UserBundlePerformanceStat `json:"users"`
}

// QuizAdminStats 一次聚合调用的完整结果。*_total 是分页前的全量条数，
// 调用方据此渲染分页控件，无需二次请求。
type QuizAdminStats struct {
	GeneratedAt           time.Time                   `json:"generatedAt"`
	TopIncorrectQuestions []QuestionPerformanceStat   `json:"topIncorrectQuestions"`
	BundlePerformance     []BundlePerformanceStat     `json:"bundlePerformance"`
	UserPerformance       []UserPerformanceStat       `json:"userPerformance"`
	BundleUserPerformance []BundleUserPerformanceStat `json:"bundleUserPerformance"`
	QuestionTotal         int                         `json:"questionTotal"`
	BundleTotal           int                         `json:"bundleTotal"`
	BundleUserTotal       int                         `json:"bundleUserTotal"`
}

// 会员端自查统计（我的答题记录页）。

type CategoryStat struct {
	Category QuizCategory `json:"category"`
	Attempts int          `json:"attempts"`
	Correct  int          `json:"correct"`
	Accuracy float64      `json:"accuracy"`
}

type DifficultyStat struct {
	Difficulty QuizDifficulty `json:"difficulty"`
	Attempts   int            `json:"attempts"`
	Correct    int            `json:"correct"`
	Accuracy   float64        `json:"accuracy"`
}

type UserQuizStats struct {
	TotalAttempts   int              `json:"totalAttempts"`
	TotalCorrect    int              `json:"totalCorrect"`
	Accuracy        float64          `json:"accuracy"`
	CategoryStats   []CategoryStat   `json:"categoryStats"`
	DifficultyStats []DifficultyStat `json:"difficultyStats"`
}
