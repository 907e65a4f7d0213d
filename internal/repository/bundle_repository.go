package repository

import (
	"errors"

	"github.com/kmshistory/kmshistory-v2/internal/model"

	"gorm.io/gorm"
)

type BundleRepository struct {
	DB *gorm.DB
}

func NewBundleRepository(db *gorm.DB) *BundleRepository {
	return &BundleRepository{DB: db}
}

// BundleListParams 合集列表的可组合筛选条件
type BundleListParams struct {
	Page       int
	Limit      int
	Search     string
	Category   model.QuizCategory
	Difficulty model.QuizDifficulty
	OnlyActive bool
}

func (r *BundleRepository) FindByID(id uint) (*model.QuizBundle, error) {
	var bundle model.QuizBundle
	err := r.DB.First(&bundle, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &bundle, nil
}

// FindByIDs 批量取合集，以 ID 为键
func (r *BundleRepository) FindByIDs(ids []uint) (map[uint]model.QuizBundle, error) {
	result := make(map[uint]model.QuizBundle, len(ids))
	if len(ids) == 0 {
		return result, nil
	}
	var bundles []model.QuizBundle
	if err := r.DB.Where("id IN ?", ids).Find(&bundles).Error; err != nil {
		return nil, err
	}
	for _, b := range bundles {
		result[b.ID] = b
	}
	return result, nil
}

// FindByIDWithQuestions 带成员题目（含选项、主题），按合集内顺序排好
func (r *BundleRepository) FindByIDWithQuestions(id uint) (*model.QuizBundle, error) {
	var bundle model.QuizBundle
	err := r.DB.
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("quiz_bundle_questions.order_no ASC")
		}).
		Preload("Questions.Question.Choices").
		Preload("Questions.Question.Topics").
		First(&bundle, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &bundle, nil
}

func (r *BundleRepository) buildListQuery(params BundleListParams) *gorm.DB {
	query := r.DB.Model(&model.QuizBundle{})

	if params.Search != "" {
		query = query.Where("LOWER(title) LIKE LOWER(?)", "%"+params.Search+"%")
	}
	if params.Category != "" {
		query = query.Where("category = ?", params.Category)
	}
	if params.Difficulty != "" {
		query = query.Where("difficulty = ?", params.Difficulty)
	}
	if params.OnlyActive {
		query = query.Where("is_active = ?", true)
	}

	return query
}

func (r *BundleRepository) FindAll(params BundleListParams) ([]model.QuizBundle, int64, error) {
	var total int64
	if err := r.buildListQuery(params).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (params.Page - 1) * params.Limit
	var bundles []model.QuizBundle
	err := r.buildListQuery(params).
		Order("created_at DESC").
		Offset(offset).
		Limit(params.Limit).
		Find(&bundles).Error

	return bundles, total, err
}

// FindMemberOrders 取某合集 question_id -> order 的映射
func (r *BundleRepository) FindMemberOrders(bundleID uint) (map[uint]int, error) {
	var members []model.QuizBundleQuestion
	err := r.DB.Where("bundle_id = ?", bundleID).Find(&members).Error
	if err != nil {
		return nil, err
	}
	orders := make(map[uint]int, len(members))
	for _, m := range members {
		orders[m.QuestionID] = m.Order
	}
	return orders, nil
}

// BundleIDsForQuestion 题目被哪些合集引用，删题时要重算这些合集的计数
func (r *BundleRepository) BundleIDsForQuestion(questionID uint) ([]uint, error) {
	var ids []uint
	err := r.DB.Model(&model.QuizBundleQuestion{}).
		Where("question_id = ?", questionID).
		Distinct().
		Pluck("bundle_id", &ids).Error
	return ids, err
}
