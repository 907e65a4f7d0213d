package service

import (
	"sort"
	"time"

	"github.com/kmshistory/kmshistory-v2/internal/model"
	"github.com/kmshistory/kmshistory-v2/internal/repository"
	"github.com/kmshistory/kmshistory-v2/internal/util"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// StatsService 管理端统计报表。四个板块一次调用各自独立聚合,
// 全部以作答流水和进度表为数据源,不做缓存
type StatsService struct {
	db           *gorm.DB
	historyRepo  *repository.HistoryRepository
	progressRepo *repository.ProgressRepository
	bundleRepo   *repository.BundleRepository
	userRepo     *repository.UserRepository
	logger       *zap.Logger
}

func NewStatsService(db *gorm.DB, historyRepo *repository.HistoryRepository, progressRepo *repository.ProgressRepository, bundleRepo *repository.BundleRepository, userRepo *repository.UserRepository, logger *zap.Logger) *StatsService {
	return &StatsService{
		db:           db,
		historyRepo:  historyRepo,
		progressRepo: progressRepo,
		bundleRepo:   bundleRepo,
		userRepo:     userRepo,
		logger:       logger,
	}
}

// StatsParams 各板块独立的分页参数,零值落到默认值。
// 筛选条件只作用于错题排行和合集表现两个板块
type StatsParams struct {
	QuestionPage    int
	QuestionLimit   int
	BundlePage      int
	BundleLimit     int
	UserLimit       int
	BundleUserPage  int
	BundleUserLimit int

	Category   model.QuizCategory
	Difficulty model.QuizDifficulty
	TopicID    uint
}

func (p *StatsParams) validate() error {
	if p.Category != "" && !p.Category.Valid() {
		return util.ErrInvalidCategory
	}
	if p.Difficulty != "" && !p.Difficulty.Valid() {
		return util.ErrInvalidDifficulty
	}
	return nil
}

func (p *StatsParams) normalize() {
	if p.QuestionPage < 1 {
		p.QuestionPage = 1
	}
	if p.QuestionLimit < 1 {
		p.QuestionLimit = 10
	}
	if p.BundlePage < 1 {
		p.BundlePage = 1
	}
	if p.BundleLimit < 1 {
		p.BundleLimit = 10
	}
	if p.UserLimit < 1 {
		p.UserLimit = 10
	}
	if p.BundleUserPage < 1 {
		p.BundleUserPage = 1
	}
	if p.BundleUserLimit < 1 {
		p.BundleUserLimit = 10
	}
}

func (s *StatsService) AdminStats(params StatsParams) (*model.QuizAdminStats, error) {
	if err := params.validate(); err != nil {
		return nil, err
	}
	params.normalize()
	started := time.Now()

	result := &model.QuizAdminStats{
		GeneratedAt:           started,
		TopIncorrectQuestions: []model.QuestionPerformanceStat{},
		BundlePerformance:     []model.BundlePerformanceStat{},
		UserPerformance:       []model.UserPerformanceStat{},
		BundleUserPerformance: []model.BundleUserPerformanceStat{},
	}

	if err := s.collectQuestionStats(params, result); err != nil {
		return nil, err
	}
	if err := s.collectBundleStats(params, result); err != nil {
		return nil, err
	}
	if err := s.collectUserStats(params, result); err != nil {
		return nil, err
	}
	if err := s.collectBundleUserStats(params, result); err != nil {
		return nil, err
	}

	s.logger.Debug("admin stats generated",
		zap.Int("questions", result.QuestionTotal),
		zap.Int("bundles", result.BundleTotal),
		zap.Duration("elapsed", time.Since(started)))
	return result, nil
}

// collectQuestionStats 错题排行:正确率升序,作答量降序。
// 从未被作答的题不进榜
func (s *StatsService) collectQuestionStats(params StatsParams, out *model.QuizAdminStats) error {
	groups, err := s.historyRepo.GroupByQuestion()
	if err != nil {
		return err
	}
	if len(groups) == 0 {
		return nil
	}

	ids := make([]uint, len(groups))
	for i, g := range groups {
		ids[i] = g.ID
	}
	var questions []model.Question
	if err := s.db.Preload("Topics").Where("id IN ?", ids).Find(&questions).Error; err != nil {
		return err
	}
	byID := make(map[uint]model.Question, len(questions))
	for _, q := range questions {
		byID[q.ID] = q
	}

	stats := make([]model.QuestionPerformanceStat, 0, len(groups))
	for _, g := range groups {
		question, ok := byID[g.ID]
		if !ok || g.Attempts == 0 {
			continue
		}
		if params.Category != "" && question.Category != params.Category {
			continue
		}
		if params.Difficulty != "" && question.Difficulty != params.Difficulty {
			continue
		}
		if params.TopicID > 0 && !hasTopic(question.Topics, params.TopicID) {
			continue
		}
		topics := question.Topics
		if topics == nil {
			topics = []model.Topic{}
		}
		stats = append(stats, model.QuestionPerformanceStat{
			QuestionID:     question.ID,
			QuestionText:   question.QuestionText,
			Category:       question.Category,
			Difficulty:     question.Difficulty,
			TotalAttempts:  g.Attempts,
			CorrectCount:   g.Correct,
			IncorrectCount: g.Attempts - g.Correct,
			Accuracy:       safeRatio(g.Correct, g.Attempts),
			Topics:         topics,
		})
	}

	sort.SliceStable(stats, func(i, j int) bool {
		if stats[i].Accuracy != stats[j].Accuracy {
			return stats[i].Accuracy < stats[j].Accuracy
		}
		if stats[i].TotalAttempts != stats[j].TotalAttempts {
			return stats[i].TotalAttempts > stats[j].TotalAttempts
		}
		return stats[i].QuestionID < stats[j].QuestionID
	})

	out.QuestionTotal = len(stats)
	out.TopIncorrectQuestions = pageSlice(stats, params.QuestionPage, params.QuestionLimit)
	return nil
}

// collectBundleStats 合集表现:平均正确率升序,参与人数降序
func (s *StatsService) collectBundleStats(params StatsParams, out *model.QuizAdminStats) error {
	groups, err := s.progressRepo.GroupByBundle()
	if err != nil {
		return err
	}
	if len(groups) == 0 {
		return nil
	}

	ids := make([]uint, len(groups))
	for i, g := range groups {
		ids[i] = g.BundleID
	}
	bundles, err := s.bundleRepo.FindByIDs(ids)
	if err != nil {
		return err
	}

	stats := make([]model.BundlePerformanceStat, 0, len(groups))
	for _, g := range groups {
		bundle, ok := bundles[g.BundleID]
		if !ok {
			continue
		}
		if params.Category != "" && bundle.Category != params.Category {
			continue
		}
		if params.Difficulty != "" && bundle.Difficulty != params.Difficulty {
			continue
		}
		stats = append(stats, model.BundlePerformanceStat{
			BundleID:        g.BundleID,
			Title:           bundle.Title,
			TotalUsers:      g.TotalUsers,
			CompletedUsers:  g.CompletedUsers,
			InProgressUsers: g.InProgressUsers,
			AverageAccuracy: g.MeanAccuracy,
		})
	}

	sort.SliceStable(stats, func(i, j int) bool {
		if stats[i].AverageAccuracy != stats[j].AverageAccuracy {
			return stats[i].AverageAccuracy < stats[j].AverageAccuracy
		}
		if stats[i].TotalUsers != stats[j].TotalUsers {
			return stats[i].TotalUsers > stats[j].TotalUsers
		}
		return stats[i].BundleID < stats[j].BundleID
	})

	out.BundleTotal = len(stats)
	out.BundlePerformance = pageSlice(stats, params.BundlePage, params.BundleLimit)
	return nil
}

// collectUserStats 用户榜:正确率降序,作答量降序,取前 N 名不分页。
// 作答流水和进度表里出现过的用户都进榜
func (s *StatsService) collectUserStats(params StatsParams, out *model.QuizAdminStats) error {
	groups, err := s.historyRepo.GroupByUser()
	if err != nil {
		return err
	}
	progress, err := s.progressRepo.GroupByUser()
	if err != nil {
		return err
	}
	if len(groups) == 0 && len(progress) == 0 {
		return nil
	}

	progressByUser := make(map[uint]repository.UserProgressStat, len(progress))
	for _, p := range progress {
		progressByUser[p.UserID] = p
	}

	ids := make([]uint, 0, len(groups)+len(progress))
	seen := make(map[uint]bool, len(groups))
	for _, g := range groups {
		seen[g.UserID] = true
		ids = append(ids, g.UserID)
	}
	for _, p := range progress {
		if !seen[p.UserID] {
			ids = append(ids, p.UserID)
		}
	}
	users, err := s.userRepo.FindByIDs(ids)
	if err != nil {
		return err
	}

	stats := make([]model.UserPerformanceStat, 0, len(ids))
	addStat := func(userID uint, attempts, correct int) {
		user, ok := users[userID]
		if !ok {
			return
		}
		stat := model.UserPerformanceStat{
			UserID:         userID,
			Nickname:       user.Nickname,
			TotalAttempts:  attempts,
			CorrectAnswers: correct,
			Accuracy:       safeRatio(correct, attempts),
		}
		if p, ok := progressByUser[userID]; ok {
			stat.CompletedBundles = p.CompletedCount
			accuracy := p.MeanBundleAccuracy
			stat.AverageBundleAccuracy = &accuracy
		}
		stats = append(stats, stat)
	}
	for _, g := range groups {
		addStat(g.UserID, g.Attempts, g.Correct)
	}
	// 只在进度表里出现过的用户按零作答计
	for _, p := range progress {
		if !seen[p.UserID] {
			addStat(p.UserID, 0, 0)
		}
	}

	sort.SliceStable(stats, func(i, j int) bool {
		if stats[i].Accuracy != stats[j].Accuracy {
			return stats[i].Accuracy > stats[j].Accuracy
		}
		if stats[i].TotalAttempts != stats[j].TotalAttempts {
			return stats[i].TotalAttempts > stats[j].TotalAttempts
		}
		return stats[i].UserID < stats[j].UserID
	})

	if len(stats) > params.UserLimit {
		stats = stats[:params.UserLimit]
	}
	out.UserPerformance = stats
	return nil
}

// collectBundleUserStats 合集内用户明细:合集按标题字母序分页,
// 每个合集内用户按正确率降序、作答量降序,最多取 BundleUserLimit 人
func (s *StatsService) collectBundleUserStats(params StatsParams, out *model.QuizAdminStats) error {
	groups, err := s.historyRepo.GroupByBundleUser()
	if err != nil {
		return err
	}
	if len(groups) == 0 {
		return nil
	}

	bundleIDs := make([]uint, 0)
	userIDs := make([]uint, 0)
	seenBundle := make(map[uint]bool)
	seenUser := make(map[uint]bool)
	for _, g := range groups {
		if !seenBundle[g.BundleID] {
			seenBundle[g.BundleID] = true
			bundleIDs = append(bundleIDs, g.BundleID)
		}
		if !seenUser[g.UserID] {
			seenUser[g.UserID] = true
			userIDs = append(userIDs, g.UserID)
		}
	}

	bundles, err := s.bundleRepo.FindByIDs(bundleIDs)
	if err != nil {
		return err
	}
	users, err := s.userRepo.FindByIDs(userIDs)
	if err != nil {
		return err
	}
	progressRows, err := s.progressRepo.ListForBundles(bundleIDs)
	if err != nil {
		return err
	}
	type pairKey struct{ userID, bundleID uint }
	completedByPair := make(map[pairKey]bool, len(progressRows))
	for _, p := range progressRows {
		completedByPair[pairKey{p.UserID, p.BundleID}] = p.Completed
	}

	byBundle := make(map[uint][]model.UserBundlePerformanceStat)
	for _, g := range groups {
		user, ok := users[g.UserID]
		if !ok {
			continue
		}
		byBundle[g.BundleID] = append(byBundle[g.BundleID], model.UserBundlePerformanceStat{
			UserID:         g.UserID,
			Nickname:       user.Nickname,
			Attempts:       g.Attempts,
			CorrectAnswers: g.Correct,
			Accuracy:       safeRatio(g.Correct, g.Attempts),
			Completed:      completedByPair[pairKey{g.UserID, g.BundleID}],
		})
	}

	stats := make([]model.BundleUserPerformanceStat, 0, len(byBundle))
	for bundleID, userStats := range byBundle {
		bundle, ok := bundles[bundleID]
		if !ok {
			continue
		}
		sort.SliceStable(userStats, func(i, j int) bool {
			if userStats[i].Accuracy != userStats[j].Accuracy {
				return userStats[i].Accuracy > userStats[j].Accuracy
			}
			if userStats[i].Attempts != userStats[j].Attempts {
				return userStats[i].Attempts > userStats[j].Attempts
			}
			return userStats[i].UserID < userStats[j].UserID
		})
		if len(userStats) > params.BundleUserLimit {
			userStats = userStats[:params.BundleUserLimit]
		}
		stats = append(stats, model.BundleUserPerformanceStat{
			BundleID:    bundleID,
			BundleTitle: bundle.Title,
			Users:       userStats,
		})
	}

	sort.SliceStable(stats, func(i, j int) bool {
		if stats[i].BundleTitle != stats[j].BundleTitle {
			return stats[i].BundleTitle < stats[j].BundleTitle
		}
		return stats[i].BundleID < stats[j].BundleID
	})

	out.BundleUserTotal = len(stats)
	// 分组页码独立,页大小沿用合集板块的 limit
	out.BundleUserPerformance = pageSlice(stats, params.BundleUserPage, params.BundleLimit)
	return nil
}

func hasTopic(topics []model.Topic, topicID uint) bool {
	for _, t := range topics {
		if t.ID == topicID {
			return true
		}
	}
	return false
}

// pageSlice 对已排好序的切片做内存分页,越界页返回空切片
func pageSlice[T any](items []T, page, limit int) []T {
	start := (page - 1) * limit
	if start >= len(items) {
		return []T{}
	}
	end := start + limit
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}
