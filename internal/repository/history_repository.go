package repository

import (
	"github.com/kmshistory/kmshistory-v2/internal/model"

	"gorm.io/gorm"
)

type HistoryRepository struct {
	DB *gorm.DB
}

func NewHistoryRepository(db *gorm.DB) *HistoryRepository {
	return &HistoryRepository{DB: db}
}

// WrongAnswerParams 错题回顾的筛选条件
type WrongAnswerParams struct {
	UserID   uint
	BundleID uint
	TopicID  uint
	Page     int
	Limit    int
}

func (r *HistoryRepository) ListByUserAndBundle(userID, bundleID uint) ([]model.UserQuizHistory, error) {
	var rows []model.UserQuizHistory
	err := r.DB.Where("user_id = ? AND bundle_id = ?", userID, bundleID).Find(&rows).Error
	return rows, err
}

func (r *HistoryRepository) buildWrongAnswerQuery(params WrongAnswerParams) *gorm.DB {
	query := r.DB.Model(&model.UserQuizHistory{}).
		Where("user_quiz_history.user_id = ? AND user_quiz_history.is_correct = ?", params.UserID, false)

	if params.BundleID > 0 {
		query = query.Where("user_quiz_history.bundle_id = ?", params.BundleID)
	}
	if params.TopicID > 0 {
		query = query.Joins("JOIN question_topic_links ON question_topic_links.question_id = user_quiz_history.question_id").
			Where("question_topic_links.topic_id = ?", params.TopicID)
	}

	return query
}

// ListWrongAnswers 错题记录，最近作答在前
func (r *HistoryRepository) ListWrongAnswers(params WrongAnswerParams) ([]model.UserQuizHistory, int64, error) {
	var total int64
	if err := r.buildWrongAnswerQuery(params).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (params.Page - 1) * params.Limit
	var rows []model.UserQuizHistory
	err := r.buildWrongAnswerQuery(params).
		Preload("Question").
		Preload("Question.Choices").
		Preload("Question.Topics").
		Order("user_quiz_history.solved_at DESC").
		Offset(offset).
		Limit(params.Limit).
		Find(&rows).Error

	return rows, total, err
}

// UserTotals 某用户的总作答量和总正确数
func (r *HistoryRepository) UserTotals(userID uint) (attempts int, correct int, err error) {
	row := struct {
		Attempts int
		Correct  int
	}{}
	err = r.DB.Model(&model.UserQuizHistory{}).
		Select("COUNT(*) AS attempts, COALESCE(SUM(CASE WHEN is_correct THEN 1 ELSE 0 END), 0) AS correct").
		Where("user_id = ?", userID).
		Scan(&row).Error
	return row.Attempts, row.Correct, err
}

// GroupedStat 一行分组聚合结果，哪个维度分组由调用方的 Select 决定
type GroupedStat struct {
	Key      string
	ID       uint
	UserID   uint
	BundleID uint
	Attempts int
	Correct  int
}

// GroupByQuestion 按题目聚合全量历史，统计聚合的输入
func (r *HistoryRepository) GroupByQuestion() ([]GroupedStat, error) {
	var rows []GroupedStat
	err := r.DB.Model(&model.UserQuizHistory{}).
		Select("question_id AS id, COUNT(*) AS attempts, COALESCE(SUM(CASE WHEN is_correct THEN 1 ELSE 0 END), 0) AS correct").
		Group("question_id").
		Scan(&rows).Error
	return rows, err
}

// GroupByUser 按用户聚合全量历史
func (r *HistoryRepository) GroupByUser() ([]GroupedStat, error) {
	var rows []GroupedStat
	err := r.DB.Model(&model.UserQuizHistory{}).
		Select("user_id, COUNT(*) AS attempts, COALESCE(SUM(CASE WHEN is_correct THEN 1 ELSE 0 END), 0) AS correct").
		Group("user_id").
		Scan(&rows).Error
	return rows, err
}

// GroupByBundleUser 按 (合集, 用户) 聚合，只统计合集内作答
func (r *HistoryRepository) GroupByBundleUser() ([]GroupedStat, error) {
	var rows []GroupedStat
	err := r.DB.Model(&model.UserQuizHistory{}).
		Select("bundle_id, user_id, COUNT(*) AS attempts, COALESCE(SUM(CASE WHEN is_correct THEN 1 ELSE 0 END), 0) AS correct").
		Where("bundle_id IS NOT NULL").
		Group("bundle_id, user_id").
		Scan(&rows).Error
	return rows, err
}

// GroupByCategory 某用户按题目分类聚合
func (r *HistoryRepository) GroupByCategory(userID uint) ([]GroupedStat, error) {
	var rows []GroupedStat
	err := r.DB.Model(&model.UserQuizHistory{}).
		Select("questions.category AS `key`, COUNT(*) AS attempts, COALESCE(SUM(CASE WHEN user_quiz_history.is_correct THEN 1 ELSE 0 END), 0) AS correct").
		Joins("JOIN questions ON questions.id = user_quiz_history.question_id").
		Where("user_quiz_history.user_id = ?", userID).
		Group("questions.category").
		Scan(&rows).Error
	return rows, err
}

// GroupByDifficulty 某用户按题目难度聚合
func (r *HistoryRepository) GroupByDifficulty(userID uint) ([]GroupedStat, error) {
	var rows []GroupedStat
	err := r.DB.Model(&model.UserQuizHistory{}).
		Select("questions.difficulty AS `key`, COUNT(*) AS attempts, COALESCE(SUM(CASE WHEN user_quiz_history.is_correct THEN 1 ELSE 0 END), 0) AS correct").
		Joins("JOIN questions ON questions.id = user_quiz_history.question_id").
		Where("user_quiz_history.user_id = ?", userID).
		Group("questions.difficulty").
		Scan(&rows).Error
	return rows, err
}
