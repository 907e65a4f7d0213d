package repository

import (
	"errors"

	"github.com/kmshistory/kmshistory-v2/internal/model"

	"gorm.io/gorm"
)

type ProgressRepository struct {
	DB *gorm.DB
}

func NewProgressRepository(db *gorm.DB) *ProgressRepository {
	return &ProgressRepository{DB: db}
}

// Find 不存在时返回 (nil, nil)，首次更新由上层惰性创建
func (r *ProgressRepository) Find(userID, bundleID uint) (*model.UserBundleProgress, error) {
	var progress model.UserBundleProgress
	err := r.DB.Where("user_id = ? AND bundle_id = ?", userID, bundleID).First(&progress).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &progress, nil
}

// FindForBundles 一次取某用户在一批合集上的进度，列表页合并用
func (r *ProgressRepository) FindForBundles(userID uint, bundleIDs []uint) (map[uint]model.UserBundleProgress, error) {
	result := make(map[uint]model.UserBundleProgress)
	if len(bundleIDs) == 0 {
		return result, nil
	}

	var rows []model.UserBundleProgress
	err := r.DB.Where("user_id = ? AND bundle_id IN ?", userID, bundleIDs).Find(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		result[row.BundleID] = row
	}
	return result, nil
}

// ListByUser 某用户的全部合集进度，最近游玩在前
func (r *ProgressRepository) ListByUser(userID uint) ([]model.UserBundleProgress, error) {
	var rows []model.UserBundleProgress
	err := r.DB.Where("user_id = ?", userID).Order("last_played_at DESC").Find(&rows).Error
	return rows, err
}

// ListForBundles 一批合集的全部进度行，报表侧按 (user, bundle) 查完成态用
func (r *ProgressRepository) ListForBundles(bundleIDs []uint) ([]model.UserBundleProgress, error) {
	if len(bundleIDs) == 0 {
		return nil, nil
	}
	var rows []model.UserBundleProgress
	err := r.DB.Where("bundle_id IN ?", bundleIDs).Find(&rows).Error
	return rows, err
}

// BundleProgressStat 按合集聚合的进度画像。平均正确率取各用户
// correct/total 的算术平均，total 为 0 的行不参与平均
type BundleProgressStat struct {
	BundleID        uint
	TotalUsers      int
	CompletedUsers  int
	InProgressUsers int
	MeanAccuracy    float64
}

func (r *ProgressRepository) GroupByBundle() ([]BundleProgressStat, error) {
	var rows []BundleProgressStat
	err := r.DB.Model(&model.UserBundleProgress{}).
		Select("bundle_id, " +
			"COUNT(*) AS total_users, " +
			"COALESCE(SUM(CASE WHEN completed THEN 1 ELSE 0 END), 0) AS completed_users, " +
			"COALESCE(SUM(CASE WHEN in_progress THEN 1 ELSE 0 END), 0) AS in_progress_users, " +
			"COALESCE(AVG(CASE WHEN total_questions > 0 THEN correct_answers * 1.0 / total_questions END), 0) AS mean_accuracy").
		Group("bundle_id").
		Scan(&rows).Error
	return rows, err
}

// UserProgressStat 按用户聚合的进度汇总。平均正确率覆盖该用户的
// 全部进度行，完成数单独累加
type UserProgressStat struct {
	UserID             uint
	CompletedCount     int
	MeanBundleAccuracy float64
}

func (r *ProgressRepository) GroupByUser() ([]UserProgressStat, error) {
	var rows []UserProgressStat
	err := r.DB.Model(&model.UserBundleProgress{}).
		Select("user_id, " +
			"COALESCE(SUM(CASE WHEN completed THEN 1 ELSE 0 END), 0) AS completed_count, " +
			"COALESCE(AVG(CASE WHEN total_questions > 0 THEN correct_answers * 1.0 / total_questions END), 0) AS mean_bundle_accuracy").
		Group("user_id").
		Scan(&rows).Error
	return rows, err
}
