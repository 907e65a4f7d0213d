package service

import (
	"sort"
	"strings"

	"github.com/kmshistory/kmshistory-v2/internal/model"
	"github.com/kmshistory/kmshistory-v2/internal/repository"
	"github.com/kmshistory/kmshistory-v2/internal/util"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type BundleService struct {
	db           *gorm.DB
	bundleRepo   *repository.BundleRepository
	progressRepo *repository.ProgressRepository
	historyRepo  *repository.HistoryRepository
	logger       *zap.Logger
}

func NewBundleService(db *gorm.DB, bundleRepo *repository.BundleRepository, progressRepo *repository.ProgressRepository, historyRepo *repository.HistoryRepository, logger *zap.Logger) *BundleService {
	return &BundleService{
		db:           db,
		bundleRepo:   bundleRepo,
		progressRepo: progressRepo,
		historyRepo:  historyRepo,
		logger:       logger,
	}
}

type BundleInput struct {
	Title       string  `json:"title" binding:"required"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Difficulty  string  `json:"difficulty"`
	IsActive    *bool   `json:"isActive"`
	QuestionIDs *[]uint `json:"questionIds"`
}

// BundleWithProgress 列表项,附带当前用户的进度(未登录或未游玩时为空)
type BundleWithProgress struct {
	model.QuizBundle
	Progress *model.UserBundleProgress `json:"progress,omitempty"`
}

// BundleDetail 题集详情,题目按题集内顺序排列
type BundleDetail struct {
	model.QuizBundle
	Questions []model.Question          `json:"questions"`
	Progress  *model.UserBundleProgress `json:"progress,omitempty"`
	History   []model.UserQuizHistory   `json:"history,omitempty"`
}

func (s *BundleService) validate(input *BundleInput) (model.QuizCategory, model.QuizDifficulty, error) {
	if strings.TrimSpace(input.Title) == "" {
		return "", "", util.ErrBundleTitleRequired
	}
	category := model.CategoryAll
	if input.Category != "" {
		category = model.QuizCategory(input.Category)
		if !category.Valid() {
			return "", "", util.ErrInvalidCategory
		}
	}
	difficulty := model.DifficultyStandard
	if input.Difficulty != "" {
		difficulty = model.QuizDifficulty(input.Difficulty)
		if !difficulty.Valid() {
			return "", "", util.ErrInvalidDifficulty
		}
	}
	return category, difficulty, nil
}

// dedupeIDs 去掉重复的题目 ID,保留首次出现的位置
func dedupeIDs(ids []uint) []uint {
	seen := make(map[uint]bool, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

func (s *BundleService) checkQuestionsExist(ids []uint) error {
	if len(ids) == 0 {
		return nil
	}
	var count int64
	if err := s.db.Model(&model.Question{}).Where("id IN ?", ids).Count(&count).Error; err != nil {
		return err
	}
	if count != int64(len(ids)) {
		return util.ErrQuestionNotFound
	}
	return nil
}

// replaceMembers 以整体替换的方式重建题集成员,顺序取提交列表的顺序
func replaceMembers(tx *gorm.DB, bundleID uint, ids []uint) error {
	if err := tx.Where("bundle_id = ?", bundleID).Delete(&model.QuizBundleQuestion{}).Error; err != nil {
		return err
	}
	for i, questionID := range ids {
		member := model.QuizBundleQuestion{BundleID: bundleID, QuestionID: questionID, Order: i}
		if err := tx.Create(&member).Error; err != nil {
			return err
		}
	}
	return tx.Model(&model.QuizBundle{}).Where("id = ?", bundleID).
		Update("question_count", len(ids)).Error
}

func (s *BundleService) List(params repository.BundleListParams) ([]model.QuizBundle, int64, error) {
	return s.bundleRepo.FindAll(params)
}

// ListForUser 面向玩家的题集列表,只含上架题集,并附带本人进度
func (s *BundleService) ListForUser(params repository.BundleListParams, userID uint) ([]BundleWithProgress, int64, error) {
	params.OnlyActive = true
	bundles, total, err := s.bundleRepo.FindAll(params)
	if err != nil {
		return nil, 0, err
	}

	var progressByBundle map[uint]model.UserBundleProgress
	if userID != 0 && len(bundles) > 0 {
		ids := make([]uint, len(bundles))
		for i, b := range bundles {
			ids[i] = b.ID
		}
		progressByBundle, err = s.progressRepo.FindForBundles(userID, ids)
		if err != nil {
			return nil, 0, err
		}
	}

	result := make([]BundleWithProgress, len(bundles))
	for i, b := range bundles {
		result[i] = BundleWithProgress{QuizBundle: b}
		if p, ok := progressByBundle[b.ID]; ok {
			progress := p
			result[i].Progress = &progress
		}
	}
	return result, total, nil
}

func (s *BundleService) Get(id uint) (*model.QuizBundle, error) {
	bundle, err := s.bundleRepo.FindByID(id)
	if err != nil {
		return nil, err
	}
	if bundle == nil {
		return nil, util.ErrBundleNotFound
	}
	return bundle, nil
}

// GetDetail 题集详情。userID 非零时附带该用户的进度和本题集内的作答记录,
// 作答记录按题目在题集内的顺序排列
func (s *BundleService) GetDetail(id uint, userID uint) (*BundleDetail, error) {
	bundle, err := s.bundleRepo.FindByIDWithQuestions(id)
	if err != nil {
		return nil, err
	}
	if bundle == nil {
		return nil, util.ErrBundleNotFound
	}

	detail := &BundleDetail{QuizBundle: *bundle}
	detail.QuizBundle.Questions = nil
	questions := make([]model.Question, 0, len(bundle.Questions))
	for _, member := range bundle.Questions {
		questions = append(questions, member.Question)
	}
	detail.Questions = questions

	if userID != 0 {
		progress, err := s.progressRepo.Find(userID, id)
		if err != nil {
			return nil, err
		}
		detail.Progress = progress

		history, err := s.historyRepo.ListByUserAndBundle(userID, id)
		if err != nil {
			return nil, err
		}
		orders, err := s.bundleRepo.FindMemberOrders(id)
		if err != nil {
			return nil, err
		}
		sortHistoryByBundleOrder(history, orders)
		detail.History = history
	}
	return detail, nil
}

func (s *BundleService) Create(input BundleInput) (*model.QuizBundle, error) {
	category, difficulty, err := s.validate(&input)
	if err != nil {
		return nil, err
	}
	var memberIDs []uint
	if input.QuestionIDs != nil {
		memberIDs = dedupeIDs(*input.QuestionIDs)
	}
	if err := s.checkQuestionsExist(memberIDs); err != nil {
		return nil, err
	}

	bundle := &model.QuizBundle{
		Title:       strings.TrimSpace(input.Title),
		Description: input.Description,
		Category:    category,
		Difficulty:  difficulty,
		IsActive:    true,
	}
	if input.IsActive != nil {
		bundle.IsActive = *input.IsActive
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(bundle).Error; err != nil {
			return err
		}
		return replaceMembers(tx, bundle.ID, memberIDs)
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("bundle created",
		zap.Uint("bundle_id", bundle.ID),
		zap.Int("question_count", len(memberIDs)))
	return s.Get(bundle.ID)
}

// Update 更新题集。question_ids 缺省时保留现有成员不动,提交时整体替换
func (s *BundleService) Update(id uint, input BundleInput) (*model.QuizBundle, error) {
	bundle, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	category, difficulty, err := s.validate(&input)
	if err != nil {
		return nil, err
	}
	var memberIDs []uint
	if input.QuestionIDs != nil {
		memberIDs = dedupeIDs(*input.QuestionIDs)
		if err := s.checkQuestionsExist(memberIDs); err != nil {
			return nil, err
		}
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		bundle.Title = strings.TrimSpace(input.Title)
		bundle.Description = input.Description
		bundle.Category = category
		bundle.Difficulty = difficulty
		if input.IsActive != nil {
			bundle.IsActive = *input.IsActive
		}
		if err := tx.Save(bundle).Error; err != nil {
			return err
		}
		if input.QuestionIDs != nil {
			return replaceMembers(tx, id, memberIDs)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.Get(id)
}

// Delete 删除题集。成员关系和用户进度一并清除,
// 作答记录保留但不再归属任何题集
func (s *BundleService) Delete(id uint) error {
	bundle, err := s.Get(id)
	if err != nil {
		return err
	}
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("bundle_id = ?", id).Delete(&model.QuizBundleQuestion{}).Error; err != nil {
			return err
		}
		if err := tx.Where("bundle_id = ?", id).Delete(&model.UserBundleProgress{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&model.UserQuizHistory{}).Where("bundle_id = ?", id).
			Update("bundle_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(bundle).Error
	})
	if err != nil {
		return err
	}
	s.logger.Info("bundle deleted", zap.Uint("bundle_id", id))
	return nil
}

func sortHistoryByBundleOrder(history []model.UserQuizHistory, orders map[uint]int) {
	const unplaced = 1 << 30
	orderOf := func(h model.UserQuizHistory) int {
		if o, ok := orders[h.QuestionID]; ok {
			return o
		}
		return unplaced
	}
	sort.SliceStable(history, func(i, j int) bool {
		return orderOf(history[i]) < orderOf(history[j])
	})
}
