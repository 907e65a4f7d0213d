package service

import (
	"strings"

	"github.com/kmshistory/kmshistory-v2/internal/model"
	"github.com/kmshistory/kmshistory-v2/internal/repository"
	"github.com/kmshistory/kmshistory-v2/internal/util"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type QuestionService struct {
	db           *gorm.DB
	questionRepo *repository.QuestionRepository
	topicRepo    *repository.TopicRepository
	bundleRepo   *repository.BundleRepository
	logger       *zap.Logger
}

func NewQuestionService(db *gorm.DB, questionRepo *repository.QuestionRepository, topicRepo *repository.TopicRepository, bundleRepo *repository.BundleRepository, logger *zap.Logger) *QuestionService {
	return &QuestionService{
		db:           db,
		questionRepo: questionRepo,
		topicRepo:    topicRepo,
		bundleRepo:   bundleRepo,
		logger:       logger,
	}
}

type ChoiceInput struct {
	Content   string `json:"content" binding:"required"`
	IsCorrect bool   `json:"isCorrect"`
}

type QuestionInput struct {
	QuestionText  string        `json:"questionText" binding:"required"`
	Type          string        `json:"type" binding:"required"`
	CorrectAnswer string        `json:"correctAnswer"`
	Explanation   string        `json:"explanation"`
	Category      string        `json:"category"`
	Difficulty    string        `json:"difficulty"`
	ImageURL      string        `json:"imageUrl"`
	Choices       []ChoiceInput `json:"choices"`
	TopicIDs      []uint        `json:"topicIds"`
}

// validate 校验输入并返回归一化后的枚举值,缺省时落到默认值
func (s *QuestionService) validate(input *QuestionInput) (model.QuestionType, model.QuizCategory, model.QuizDifficulty, error) {
	if strings.TrimSpace(input.QuestionText) == "" {
		return "", "", "", util.ErrQuestionTextRequired
	}

	qType := model.QuestionType(input.Type)
	if !qType.Valid() {
		return "", "", "", util.ErrInvalidQuestionType
	}
	if strings.TrimSpace(input.CorrectAnswer) == "" {
		return "", "", "", util.ErrCorrectAnswerRequired
	}

	category := model.CategoryAll
	if input.Category != "" {
		category = model.QuizCategory(input.Category)
		if !category.Valid() {
			return "", "", "", util.ErrInvalidCategory
		}
	}

	difficulty := model.DifficultyStandard
	if input.Difficulty != "" {
		difficulty = model.QuizDifficulty(input.Difficulty)
		if !difficulty.Valid() {
			return "", "", "", util.ErrInvalidDifficulty
		}
	}

	if qType == model.TypeMultiple {
		if len(input.Choices) < 2 {
			return "", "", "", util.ErrTooFewChoices
		}
		hasCorrect := false
		for _, c := range input.Choices {
			if c.IsCorrect {
				hasCorrect = true
				break
			}
		}
		if !hasCorrect {
			return "", "", "", util.ErrNoCorrectChoiceFlag
		}
	}
	return qType, category, difficulty, nil
}

func (s *QuestionService) resolveTopics(ids []uint) ([]model.Topic, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	topics, err := s.topicRepo.FindByIDs(ids)
	if err != nil {
		return nil, err
	}
	seen := make(map[uint]bool, len(topics))
	for _, t := range topics {
		seen[t.ID] = true
	}
	for _, id := range ids {
		if !seen[id] {
			return nil, util.ErrUnknownTopic
		}
	}
	return topics, nil
}

func (s *QuestionService) List(params repository.QuestionListParams) ([]model.Question, int64, error) {
	return s.questionRepo.FindAll(params)
}

func (s *QuestionService) Get(id uint) (*model.Question, error) {
	question, err := s.questionRepo.FindByID(id)
	if err != nil {
		return nil, err
	}
	if question == nil {
		return nil, util.ErrQuestionNotFound
	}
	return question, nil
}

func (s *QuestionService) Create(input QuestionInput) (*model.Question, error) {
	qType, category, difficulty, err := s.validate(&input)
	if err != nil {
		return nil, err
	}
	topics, err := s.resolveTopics(input.TopicIDs)
	if err != nil {
		return nil, err
	}

	question := &model.Question{
		QuestionText:  strings.TrimSpace(input.QuestionText),
		Type:          qType,
		CorrectAnswer: strings.TrimSpace(input.CorrectAnswer),
		Explanation:   input.Explanation,
		Category:      category,
		Difficulty:    difficulty,
		ImageURL:      input.ImageURL,
	}
	// 非选择题不保留任何选项,提交了也丢弃
	if qType == model.TypeMultiple {
		for _, c := range input.Choices {
			question.Choices = append(question.Choices, model.Choice{Content: c.Content, IsCorrect: c.IsCorrect})
		}
	}
	question.Topics = topics

	if err := s.db.Create(question).Error; err != nil {
		return nil, err
	}
	s.logger.Info("question created",
		zap.Uint("question_id", question.ID),
		zap.String("type", string(question.Type)))
	return s.Get(question.ID)
}

// Update 整体替换题目内容:选项和标签均以提交的集合为准
func (s *QuestionService) Update(id uint, input QuestionInput) (*model.Question, error) {
	question, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	qType, category, difficulty, err := s.validate(&input)
	if err != nil {
		return nil, err
	}
	topics, err := s.resolveTopics(input.TopicIDs)
	if err != nil {
		return nil, err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		question.QuestionText = strings.TrimSpace(input.QuestionText)
		question.Type = qType
		question.CorrectAnswer = strings.TrimSpace(input.CorrectAnswer)
		question.Explanation = input.Explanation
		question.Category = category
		question.Difficulty = difficulty
		question.ImageURL = input.ImageURL
		question.Choices = nil
		question.Topics = nil
		if err := tx.Omit("Choices", "Topics").Save(question).Error; err != nil {
			return err
		}

		if err := tx.Where("question_id = ?", id).Delete(&model.Choice{}).Error; err != nil {
			return err
		}
		if qType == model.TypeMultiple {
			for _, c := range input.Choices {
				choice := model.Choice{QuestionID: id, Content: c.Content, IsCorrect: c.IsCorrect}
				if err := tx.Create(&choice).Error; err != nil {
					return err
				}
			}
		}
		if len(topics) == 0 {
			return tx.Model(question).Association("Topics").Clear()
		}
		return tx.Model(question).Association("Topics").Replace(topics)
	})
	if err != nil {
		return nil, err
	}
	return s.Get(id)
}

// Delete 删除题目。已有作答记录的题目不允许删除;
// 删除时同步移除题集成员并修正受影响题集的题目数
func (s *QuestionService) Delete(id uint) error {
	question, err := s.Get(id)
	if err != nil {
		return err
	}
	history, err := s.questionRepo.CountHistory(id)
	if err != nil {
		return err
	}
	if history > 0 {
		return util.ErrQuestionHasHistory
	}
	bundleIDs, err := s.bundleRepo.BundleIDsForQuestion(id)
	if err != nil {
		return err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("question_id = ?", id).Delete(&model.QuizBundleQuestion{}).Error; err != nil {
			return err
		}
		for _, bundleID := range bundleIDs {
			var count int64
			if err := tx.Model(&model.QuizBundleQuestion{}).Where("bundle_id = ?", bundleID).Count(&count).Error; err != nil {
				return err
			}
			if err := tx.Model(&model.QuizBundle{}).Where("id = ?", bundleID).
				Update("question_count", count).Error; err != nil {
				return err
			}
		}
		if err := tx.Model(question).Association("Topics").Clear(); err != nil {
			return err
		}
		if err := tx.Where("question_id = ?", id).Delete(&model.Choice{}).Error; err != nil {
			return err
		}
		return tx.Delete(question).Error
	})
	if err != nil {
		return err
	}
	s.logger.Info("question deleted", zap.Uint("question_id", id), zap.Int("bundles_touched", len(bundleIDs)))
	return nil
}
