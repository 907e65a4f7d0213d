package service

import (
	"errors"
	"math/rand"
	"time"

	"github.com/kmshistory/kmshistory-v2/internal/model"
	"github.com/kmshistory/kmshistory-v2/internal/repository"
	"github.com/kmshistory/kmshistory-v2/internal/util"
	"github.com/kmshistory/kmshistory-v2/pkg/monitoring"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// QuizService 承载会员端的答题流程:抽题、判分、进度与错题回顾
type QuizService struct {
	db           *gorm.DB
	questionRepo *repository.QuestionRepository
	bundleRepo   *repository.BundleRepository
	progressRepo *repository.ProgressRepository
	historyRepo  *repository.HistoryRepository
	logger       *zap.Logger
}

func NewQuizService(db *gorm.DB, questionRepo *repository.QuestionRepository, bundleRepo *repository.BundleRepository, progressRepo *repository.ProgressRepository, historyRepo *repository.HistoryRepository, logger *zap.Logger) *QuizService {
	return &QuizService{
		db:           db,
		questionRepo: questionRepo,
		bundleRepo:   bundleRepo,
		progressRepo: progressRepo,
		historyRepo:  historyRepo,
		logger:       logger,
	}
}

type SubmitInput struct {
	QuestionID uint           `json:"questionId" binding:"required"`
	BundleID   *uint          `json:"bundleId"`
	Answer     string         `json:"answer"`
	Progress   *ProgressInput `json:"progress"`
}

type SubmitResult struct {
	QuestionID    uint   `json:"questionId"`
	IsCorrect     bool   `json:"isCorrect"`
	CorrectAnswer string `json:"correctAnswer"`
	Explanation   string `json:"explanation"`
}

type ProgressInput struct {
	TotalQuestions    int   `json:"totalQuestions"`
	CorrectAnswers    int   `json:"correctAnswers"`
	Completed         bool  `json:"completed"`
	InProgress        *bool `json:"inProgress"`
	LastQuestionID    *uint `json:"lastQuestionId"`
	LastQuestionOrder int   `json:"lastQuestionOrder"`
}

// PublicQuestion 会员端看到的题目视图,不含答案与解析,判分一律在服务端做
type PublicQuestion struct {
	ID           uint                 `json:"id"`
	QuestionText string               `json:"questionText"`
	Type         model.QuestionType   `json:"type"`
	Category     model.QuizCategory   `json:"category"`
	Difficulty   model.QuizDifficulty `json:"difficulty"`
	ImageURL     string               `json:"imageUrl,omitempty"`
	Choices      []PublicChoice       `json:"choices"`
	Topics       []model.Topic        `json:"topics"`
}

type PublicChoice struct {
	ID      uint   `json:"id"`
	Content string `json:"content"`
}

func NewPublicQuestion(q model.Question) PublicQuestion {
	view := PublicQuestion{
		ID:           q.ID,
		QuestionText: q.QuestionText,
		Type:         q.Type,
		Category:     q.Category,
		Difficulty:   q.Difficulty,
		ImageURL:     q.ImageURL,
		Choices:      []PublicChoice{},
		Topics:       q.Topics,
	}
	if view.Topics == nil {
		view.Topics = []model.Topic{}
	}
	for _, c := range q.Choices {
		view.Choices = append(view.Choices, PublicChoice{ID: c.ID, Content: c.Content})
	}
	return view
}

// RandomQuestion 按筛选条件随机抽一题。用总数加随机偏移代替数据库端
// 随机函数,MySQL 和测试用的内存库都能跑
func (s *QuizService) RandomQuestion(params repository.QuestionListParams) (*model.Question, error) {
	count, err := s.questionRepo.CountMatching(params)
	if err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, util.ErrNoQuestionForFilter
	}
	question, err := s.questionRepo.FindAtOffset(params, rand.Intn(int(count)))
	if err != nil {
		return nil, err
	}
	if question == nil {
		return nil, util.ErrNoQuestionForFilter
	}
	return question, nil
}

// SubmitAnswer 判分并落库。作答记录和随附的进度更新在同一事务里写入,
// 判分本身不依赖数据库状态,先于事务完成
func (s *QuizService) SubmitAnswer(userID uint, input SubmitInput) (*SubmitResult, error) {
	question, err := s.questionRepo.FindByID(input.QuestionID)
	if err != nil {
		return nil, err
	}
	if question == nil {
		return nil, util.ErrQuestionNotFound
	}
	if input.BundleID != nil {
		bundle, err := s.bundleRepo.FindByID(*input.BundleID)
		if err != nil {
			return nil, err
		}
		if bundle == nil {
			return nil, util.ErrBundleNotFound
		}
	}

	correct, err := Grade(question, input.Answer)
	if err != nil {
		return nil, err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		entry := model.UserQuizHistory{
			UserID:     userID,
			QuestionID: question.ID,
			BundleID:   input.BundleID,
			UserAnswer: input.Answer,
			IsCorrect:  correct,
			SolvedAt:   time.Now(),
		}
		if err := tx.Create(&entry).Error; err != nil {
			return err
		}
		if input.Progress != nil && input.BundleID != nil {
			return upsertProgress(tx, userID, *input.BundleID, *input.Progress)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	monitoring.ObserveSubmission(correct)
	s.logger.Debug("answer graded",
		zap.Uint("user_id", userID),
		zap.Uint("question_id", question.ID),
		zap.Bool("correct", correct))

	return &SubmitResult{
		QuestionID:    question.ID,
		IsCorrect:     correct,
		CorrectAnswer: correctAnswerText(question),
		Explanation:   question.Explanation,
	}, nil
}

// UpsertProgress 写入或更新某题集的游玩进度,同一 (user, bundle) 只保留一行
func (s *QuizService) UpsertProgress(userID, bundleID uint, input ProgressInput) (*model.UserBundleProgress, error) {
	bundle, err := s.bundleRepo.FindByID(bundleID)
	if err != nil {
		return nil, err
	}
	if bundle == nil {
		return nil, util.ErrBundleNotFound
	}
	if err := s.db.Transaction(func(tx *gorm.DB) error {
		return upsertProgress(tx, userID, bundleID, input)
	}); err != nil {
		return nil, err
	}
	return s.progressRepo.Find(userID, bundleID)
}

func upsertProgress(tx *gorm.DB, userID, bundleID uint, input ProgressInput) error {
	if input.TotalQuestions < 0 || input.CorrectAnswers < 0 || input.CorrectAnswers > input.TotalQuestions {
		return util.ErrInvalidProgressCounts
	}

	var existing model.UserBundleProgress
	err := tx.Where("user_id = ? AND bundle_id = ?", userID, bundleID).First(&existing).Error
	found := err == nil
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	now := time.Now()
	progress := model.UserBundleProgress{
		UserID:            userID,
		BundleID:          bundleID,
		TotalQuestions:    input.TotalQuestions,
		CorrectAnswers:    input.CorrectAnswers,
		Completed:         input.Completed,
		LastQuestionID:    input.LastQuestionID,
		LastQuestionOrder: input.LastQuestionOrder,
		LastPlayedAt:      now,
	}
	// 未显式给出时按“没完成就还在玩”推断
	if input.InProgress != nil {
		progress.InProgress = *input.InProgress
	} else {
		progress.InProgress = !input.Completed
	}

	if found {
		// 完成时间只在首次进入完成态时记录,重复提交不刷新
		progress.ID = existing.ID
		progress.CompletedAt = existing.CompletedAt
		if input.Completed && !existing.Completed {
			progress.CompletedAt = &now
		}
		return tx.Save(&progress).Error
	}
	if input.Completed {
		progress.CompletedAt = &now
	}
	return tx.Create(&progress).Error
}

// ResetProgress 清空某题集的进度和作答记录,让用户从头再玩
func (s *QuizService) ResetProgress(userID, bundleID uint) error {
	bundle, err := s.bundleRepo.FindByID(bundleID)
	if err != nil {
		return err
	}
	if bundle == nil {
		return util.ErrBundleNotFound
	}
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ? AND bundle_id = ?", userID, bundleID).
			Delete(&model.UserBundleProgress{}).Error; err != nil {
			return err
		}
		return tx.Where("user_id = ? AND bundle_id = ?", userID, bundleID).
			Delete(&model.UserQuizHistory{}).Error
	})
	if err != nil {
		return err
	}
	s.logger.Info("progress reset", zap.Uint("user_id", userID), zap.Uint("bundle_id", bundleID))
	return nil
}

// WrongAnswers 错题回顾,附带题目内容,最近作答在前
func (s *QuizService) WrongAnswers(params repository.WrongAnswerParams) ([]model.UserQuizHistory, int64, error) {
	if params.Page < 1 {
		params.Page = 1
	}
	if params.Limit < 1 {
		params.Limit = 20
	}
	return s.historyRepo.ListWrongAnswers(params)
}

// MyStats 会员自查的答题统计:总量、正确率,按类别和难度分组
func (s *QuizService) MyStats(userID uint) (*model.UserQuizStats, error) {
	attempts, correct, err := s.historyRepo.UserTotals(userID)
	if err != nil {
		return nil, err
	}
	stats := &model.UserQuizStats{
		TotalAttempts:   attempts,
		TotalCorrect:    correct,
		Accuracy:        safeRatio(correct, attempts),
		CategoryStats:   []model.CategoryStat{},
		DifficultyStats: []model.DifficultyStat{},
	}

	byCategory, err := s.historyRepo.GroupByCategory(userID)
	if err != nil {
		return nil, err
	}
	for _, g := range byCategory {
		stats.CategoryStats = append(stats.CategoryStats, model.CategoryStat{
			Category: model.QuizCategory(g.Key),
			Attempts: g.Attempts,
			Correct:  g.Correct,
			Accuracy: safeRatio(g.Correct, g.Attempts),
		})
	}

	byDifficulty, err := s.historyRepo.GroupByDifficulty(userID)
	if err != nil {
		return nil, err
	}
	for _, g := range byDifficulty {
		stats.DifficultyStats = append(stats.DifficultyStats, model.DifficultyStat{
			Difficulty: model.QuizDifficulty(g.Key),
			Attempts:   g.Attempts,
			Correct:    g.Correct,
			Accuracy:   safeRatio(g.Correct, g.Attempts),
		})
	}
	return stats, nil
}

// PlayHistory 用户游玩过的题集进度列表,最近游玩在前
func (s *QuizService) PlayHistory(userID uint) ([]model.UserBundleProgress, error) {
	return s.progressRepo.ListByUser(userID)
}

func correctAnswerText(question *model.Question) string {
	if question.Type == model.TypeMultiple {
		for _, c := range question.Choices {
			if c.IsCorrect {
				return c.Content
			}
		}
	}
	return question.CorrectAnswer
}

func safeRatio(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	return float64(part) / float64(whole)
}
