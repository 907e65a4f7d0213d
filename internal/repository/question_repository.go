package repository

import (
	"errors"

	"github.com/kmshistory/kmshistory-v2/internal/model"

	"gorm.io/gorm"
)

type QuestionRepository struct {
	DB *gorm.DB
}

func NewQuestionRepository(db *gorm.DB) *QuestionRepository {
	return &QuestionRepository{DB: db}
}

// QuestionListParams 题库列表的可组合筛选条件
type QuestionListParams struct {
	Page       int
	Limit      int
	Search     string
	Type       model.QuestionType
	Category   model.QuizCategory
	Difficulty model.QuizDifficulty
	TopicID    uint
	BundleID   uint // 限定在某个启用中的合集里筛题
}

func (r *QuestionRepository) FindByID(id uint) (*model.Question, error) {
	var question model.Question
	err := r.DB.Preload("Choices").Preload("Topics").First(&question, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &question, nil
}

func (r *QuestionRepository) buildListQuery(params QuestionListParams) *gorm.DB {
	query := r.DB.Model(&model.Question{})

	if params.Search != "" {
		query = query.Where("LOWER(question_text) LIKE LOWER(?)", "%"+params.Search+"%")
	}
	if params.Type != "" {
		query = query.Where("type = ?", params.Type)
	}
	if params.Category != "" {
		query = query.Where("category = ?", params.Category)
	}
	if params.Difficulty != "" {
		query = query.Where("difficulty = ?", params.Difficulty)
	}
	if params.TopicID > 0 {
		query = query.Joins("JOIN question_topic_links ON question_topic_links.question_id = questions.id").
			Where("question_topic_links.topic_id = ?", params.TopicID)
	}
	if params.BundleID > 0 {
		query = query.Joins("JOIN quiz_bundle_questions ON quiz_bundle_questions.question_id = questions.id").
			Joins("JOIN quiz_bundles ON quiz_bundles.id = quiz_bundle_questions.bundle_id").
			Where("quiz_bundles.id = ? AND quiz_bundles.is_active = ?", params.BundleID, true)
	}

	return query
}

// FindAll 分页列表，新建在前；带搜索时仍按创建时间排序，搜索只做收窄
func (r *QuestionRepository) FindAll(params QuestionListParams) ([]model.Question, int64, error) {
	var total int64
	if err := r.buildListQuery(params).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (params.Page - 1) * params.Limit
	var questions []model.Question
	err := r.buildListQuery(params).
		Preload("Choices").
		Preload("Topics").
		Order("questions.created_at DESC").
		Offset(offset).
		Limit(params.Limit).
		Find(&questions).Error

	return questions, total, err
}

// CountMatching 随机出题前统计候选数量
func (r *QuestionRepository) CountMatching(params QuestionListParams) (int64, error) {
	var total int64
	err := r.buildListQuery(params).Count(&total).Error
	return total, err
}

// FindAtOffset 按主键序取第 offset 条，配合随机偏移模拟随机出题，
// 避免 MySQL 和 SQLite 随机函数不一致
func (r *QuestionRepository) FindAtOffset(params QuestionListParams, offset int) (*model.Question, error) {
	var ids []uint
	err := r.buildListQuery(params).
		Order("questions.id ASC").
		Offset(offset).
		Limit(1).
		Pluck("questions.id", &ids).Error
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return r.FindByID(ids[0])
}

func (r *QuestionRepository) CountHistory(questionID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&model.UserQuizHistory{}).Where("question_id = ?", questionID).Count(&count).Error
	return count, err
}
