package service

import (
	"errors"
	"testing"
	"time"

	"github.com/kmshistory/kmshistory-v2/internal/model"
	"github.com/kmshistory/kmshistory-v2/internal/util"
)

func (e *testEnv) seedHistory(t *testing.T, userID, questionID uint, bundleID *uint, correct, wrong int) {
	t.Helper()
	for i := 0; i < correct+wrong; i++ {
		row := model.UserQuizHistory{
			UserID:     userID,
			QuestionID: questionID,
			BundleID:   bundleID,
			UserAnswer: "x",
			IsCorrect:  i < correct,
			SolvedAt:   time.Now(),
		}
		if err := e.db.Create(&row).Error; err != nil {
			t.Fatalf("seed history: %v", err)
		}
	}
}

func TestAdminStatsQuestionRanking(t *testing.T) {
	env := newTestEnv(t)

	user := env.seedUser(t, "player")
	hard := env.seedShortQuestion(t, "hard one", "a")
	easy := env.seedShortQuestion(t, "easy one", "a")
	untouched := env.seedShortQuestion(t, "never answered", "a")

	// hard: 3/10 正确,easy: 9/10 正确
	env.seedHistory(t, user.ID, hard.ID, nil, 3, 7)
	env.seedHistory(t, user.ID, easy.ID, nil, 9, 1)

	stats, err := env.stats.AdminStats(StatsParams{})
	if err != nil {
		t.Fatalf("stats: %v", err)
	}

	if stats.QuestionTotal != 2 {
		t.Fatalf("question total = %d, want 2 (untouched question excluded)", stats.QuestionTotal)
	}
	for _, q := range stats.TopIncorrectQuestions {
		if q.QuestionID == untouched.ID {
			t.Fatalf("question with zero attempts must not appear")
		}
	}

	first := stats.TopIncorrectQuestions[0]
	if first.QuestionID != hard.ID {
		t.Errorf("worst question = %d, want %d", first.QuestionID, hard.ID)
	}
	if first.Accuracy != 0.3 {
		t.Errorf("accuracy = %v, want exactly 0.3", first.Accuracy)
	}
	if first.TotalAttempts != 10 || first.CorrectCount != 3 || first.IncorrectCount != 7 {
		t.Errorf("counts = %d/%d/%d", first.TotalAttempts, first.CorrectCount, first.IncorrectCount)
	}
}

func TestAdminStatsBundlePerformance(t *testing.T) {
	env := newTestEnv(t)

	u1 := env.seedUser(t, "one")
	u2 := env.seedUser(t, "two")
	q := env.seedShortQuestion(t, "q", "a")
	bundle := env.seedBundle(t, "set", q.ID)

	// u1: 2/4 完成,u2: 1/4 进行中 → 平均正确率 0.375
	if _, err := env.quiz.UpsertProgress(u1.ID, bundle.ID, ProgressInput{TotalQuestions: 4, CorrectAnswers: 2, Completed: true}); err != nil {
		t.Fatalf("u1 progress: %v", err)
	}
	if _, err := env.quiz.UpsertProgress(u2.ID, bundle.ID, ProgressInput{TotalQuestions: 4, CorrectAnswers: 1}); err != nil {
		t.Fatalf("u2 progress: %v", err)
	}

	stats, err := env.stats.AdminStats(StatsParams{})
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.BundleTotal != 1 || len(stats.BundlePerformance) != 1 {
		t.Fatalf("bundle total = %d, want 1", stats.BundleTotal)
	}
	b := stats.BundlePerformance[0]
	if b.TotalUsers != 2 || b.CompletedUsers != 1 || b.InProgressUsers != 1 {
		t.Errorf("users = %d/%d/%d, want 2/1/1", b.TotalUsers, b.CompletedUsers, b.InProgressUsers)
	}
	if b.AverageAccuracy != 0.375 {
		t.Errorf("average accuracy = %v, want 0.375", b.AverageAccuracy)
	}
}

func TestAdminStatsUserRanking(t *testing.T) {
	env := newTestEnv(t)

	sharp := env.seedUser(t, "sharp")
	blunt := env.seedUser(t, "blunt")
	q := env.seedShortQuestion(t, "q", "a")

	env.seedHistory(t, sharp.ID, q.ID, nil, 4, 1) // 0.8
	env.seedHistory(t, blunt.ID, q.ID, nil, 1, 4) // 0.2

	stats, err := env.stats.AdminStats(StatsParams{})
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if len(stats.UserPerformance) != 2 {
		t.Fatalf("user rows = %d, want 2", len(stats.UserPerformance))
	}
	if stats.UserPerformance[0].UserID != sharp.ID {
		t.Errorf("rank 1 = %d, want high-accuracy user %d", stats.UserPerformance[0].UserID, sharp.ID)
	}
	if stats.UserPerformance[0].Nickname != "sharp" {
		t.Errorf("nickname = %q", stats.UserPerformance[0].Nickname)
	}
	// 进度表里没出现过的用户不给平均合集正确率
	if stats.UserPerformance[0].AverageBundleAccuracy != nil {
		t.Errorf("average bundle accuracy should be nil without progress rows")
	}

	capped, err := env.stats.AdminStats(StatsParams{UserLimit: 1})
	if err != nil {
		t.Fatalf("capped stats: %v", err)
	}
	if len(capped.UserPerformance) != 1 {
		t.Errorf("user limit ignored, rows = %d", len(capped.UserPerformance))
	}
}

func TestAdminStatsBundleUserSection(t *testing.T) {
	env := newTestEnv(t)

	u1 := env.seedUser(t, "one")
	u2 := env.seedUser(t, "two")
	q := env.seedShortQuestion(t, "q", "a")
	beta := env.seedBundle(t, "Beta", q.ID)
	alpha := env.seedBundle(t, "Alpha", q.ID)

	betaID, alphaID := beta.ID, alpha.ID
	env.seedHistory(t, u1.ID, q.ID, &betaID, 2, 0)
	env.seedHistory(t, u2.ID, q.ID, &betaID, 1, 1)
	env.seedHistory(t, u1.ID, q.ID, &alphaID, 1, 0)

	if _, err := env.quiz.UpsertProgress(u1.ID, beta.ID, ProgressInput{TotalQuestions: 2, CorrectAnswers: 2, Completed: true}); err != nil {
		t.Fatalf("progress: %v", err)
	}

	stats, err := env.stats.AdminStats(StatsParams{})
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.BundleUserTotal != 2 || len(stats.BundleUserPerformance) != 2 {
		t.Fatalf("bundle-user total = %d, want 2", stats.BundleUserTotal)
	}
	// 合集按标题字母序
	if stats.BundleUserPerformance[0].BundleTitle != "Alpha" || stats.BundleUserPerformance[1].BundleTitle != "Beta" {
		t.Errorf("bundle order = %q, %q, want Alpha then Beta",
			stats.BundleUserPerformance[0].BundleTitle, stats.BundleUserPerformance[1].BundleTitle)
	}

	betaStat := stats.BundleUserPerformance[1]
	if len(betaStat.Users) != 2 {
		t.Fatalf("beta users = %d, want 2", len(betaStat.Users))
	}
	// 正确率高的在前,完成态来自进度表
	if betaStat.Users[0].UserID != u1.ID || !betaStat.Users[0].Completed {
		t.Errorf("beta rank 1 = %+v, want completed user %d", betaStat.Users[0], u1.ID)
	}
	if betaStat.Users[1].Completed {
		t.Errorf("user without completed progress marked completed")
	}

	capped, err := env.stats.AdminStats(StatsParams{BundleUserLimit: 1})
	if err != nil {
		t.Fatalf("capped: %v", err)
	}
	for _, b := range capped.BundleUserPerformance {
		if len(b.Users) > 1 {
			t.Errorf("bundle %q users = %d, exceeds cap 1", b.BundleTitle, len(b.Users))
		}
	}
}

func TestAdminStatsEmptyDatabase(t *testing.T) {
	env := newTestEnv(t)

	stats, err := env.stats.AdminStats(StatsParams{})
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.QuestionTotal != 0 || stats.BundleTotal != 0 || stats.BundleUserTotal != 0 {
		t.Errorf("totals = %d/%d/%d, want zeros", stats.QuestionTotal, stats.BundleTotal, stats.BundleUserTotal)
	}
	if stats.TopIncorrectQuestions == nil || stats.UserPerformance == nil {
		t.Errorf("sections must be empty slices, not nil")
	}
	if stats.GeneratedAt.IsZero() {
		t.Errorf("generated_at not stamped")
	}
}

func TestAdminStatsFilters(t *testing.T) {
	env := newTestEnv(t)

	user := env.seedUser(t, "player")
	topic, err := env.topic.Create(TopicInput{Name: "Three Kingdoms"})
	if err != nil {
		t.Fatalf("topic: %v", err)
	}

	preModern, err := env.question.Create(QuestionInput{
		QuestionText:  "pre-modern question",
		Type:          string(model.TypeShort),
		CorrectAnswer: "a",
		Category:      string(model.CategoryPreModern),
		TopicIDs:      []uint{topic.ID},
	})
	if err != nil {
		t.Fatalf("pre-modern question: %v", err)
	}
	modern, err := env.question.Create(QuestionInput{
		QuestionText:  "modern question",
		Type:          string(model.TypeShort),
		CorrectAnswer: "a",
		Category:      string(model.CategoryModern),
	})
	if err != nil {
		t.Fatalf("modern question: %v", err)
	}
	env.seedHistory(t, user.ID, preModern.ID, nil, 1, 1)
	env.seedHistory(t, user.ID, modern.ID, nil, 1, 1)

	byCategory, err := env.stats.AdminStats(StatsParams{Category: model.CategoryPreModern})
	if err != nil {
		t.Fatalf("category filter: %v", err)
	}
	if byCategory.QuestionTotal != 1 || byCategory.TopIncorrectQuestions[0].QuestionID != preModern.ID {
		t.Errorf("category filter kept %d questions", byCategory.QuestionTotal)
	}

	byTopic, err := env.stats.AdminStats(StatsParams{TopicID: topic.ID})
	if err != nil {
		t.Fatalf("topic filter: %v", err)
	}
	if byTopic.QuestionTotal != 1 || byTopic.TopIncorrectQuestions[0].QuestionID != preModern.ID {
		t.Errorf("topic filter kept %d questions", byTopic.QuestionTotal)
	}

	if _, err := env.stats.AdminStats(StatsParams{Category: "ANCIENT"}); !errors.Is(err, util.ErrInvalidCategory) {
		t.Errorf("unknown category err = %v, want ErrInvalidCategory", err)
	}
}

func TestAdminStatsBundleFilter(t *testing.T) {
	env := newTestEnv(t)

	user := env.seedUser(t, "player")
	q := env.seedShortQuestion(t, "q", "a")

	ids := []uint{q.ID}
	basic, err := env.bundle.Create(BundleInput{Title: "basic set", Difficulty: string(model.DifficultyBasic), QuestionIDs: &ids})
	if err != nil {
		t.Fatalf("basic bundle: %v", err)
	}
	advanced, err := env.bundle.Create(BundleInput{Title: "advanced set", Difficulty: string(model.DifficultyAdvanced), QuestionIDs: &ids})
	if err != nil {
		t.Fatalf("advanced bundle: %v", err)
	}
	for _, bundleID := range []uint{basic.ID, advanced.ID} {
		if _, err := env.quiz.UpsertProgress(user.ID, bundleID, ProgressInput{TotalQuestions: 1, CorrectAnswers: 1, Completed: true}); err != nil {
			t.Fatalf("progress: %v", err)
		}
	}

	stats, err := env.stats.AdminStats(StatsParams{Difficulty: model.DifficultyAdvanced})
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.BundleTotal != 1 || stats.BundlePerformance[0].BundleID != advanced.ID {
		t.Errorf("difficulty filter kept %d bundles", stats.BundleTotal)
	}
}

func TestAdminStatsUserSectionIncludesProgressOnlyUsers(t *testing.T) {
	env := newTestEnv(t)

	answered := env.seedUser(t, "answered")
	progressOnly := env.seedUser(t, "progress-only")
	q := env.seedShortQuestion(t, "q", "a")
	bundle := env.seedBundle(t, "set", q.ID)

	env.seedHistory(t, answered.ID, q.ID, nil, 1, 1)
	// progressOnly 只有进度行,没有作答流水
	if _, err := env.quiz.UpsertProgress(progressOnly.ID, bundle.ID, ProgressInput{TotalQuestions: 4, CorrectAnswers: 3}); err != nil {
		t.Fatalf("progress: %v", err)
	}

	stats, err := env.stats.AdminStats(StatsParams{})
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if len(stats.UserPerformance) != 2 {
		t.Fatalf("user rows = %d, want 2", len(stats.UserPerformance))
	}

	var row *model.UserPerformanceStat
	for i := range stats.UserPerformance {
		if stats.UserPerformance[i].UserID == progressOnly.ID {
			row = &stats.UserPerformance[i]
		}
	}
	if row == nil {
		t.Fatalf("progress-only user missing from user section")
	}
	if row.TotalAttempts != 0 || row.CorrectAnswers != 0 {
		t.Errorf("progress-only user counts = %d/%d, want 0/0", row.TotalAttempts, row.CorrectAnswers)
	}
	// 平均合集正确率覆盖全部进度行,不要求完成
	if row.AverageBundleAccuracy == nil || *row.AverageBundleAccuracy != 0.75 {
		t.Errorf("average bundle accuracy = %v, want 0.75", row.AverageBundleAccuracy)
	}
	if row.CompletedBundles != 0 {
		t.Errorf("completed bundles = %d, want 0", row.CompletedBundles)
	}
}

func TestAdminStatsBundleMeanSkipsEmptyProgress(t *testing.T) {
	env := newTestEnv(t)

	u1 := env.seedUser(t, "one")
	u2 := env.seedUser(t, "two")
	q := env.seedShortQuestion(t, "q", "a")
	bundle := env.seedBundle(t, "set", q.ID)

	if _, err := env.quiz.UpsertProgress(u1.ID, bundle.ID, ProgressInput{TotalQuestions: 4, CorrectAnswers: 2}); err != nil {
		t.Fatalf("u1 progress: %v", err)
	}
	// 还没答过题的进度行不拉低平均值
	if _, err := env.quiz.UpsertProgress(u2.ID, bundle.ID, ProgressInput{TotalQuestions: 0, CorrectAnswers: 0}); err != nil {
		t.Fatalf("u2 progress: %v", err)
	}

	stats, err := env.stats.AdminStats(StatsParams{})
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if len(stats.BundlePerformance) != 1 {
		t.Fatalf("bundle rows = %d, want 1", len(stats.BundlePerformance))
	}
	row := stats.BundlePerformance[0]
	if row.TotalUsers != 2 {
		t.Errorf("total users = %d, want 2", row.TotalUsers)
	}
	if row.AverageAccuracy != 0.5 {
		t.Errorf("average accuracy = %v, want 0.5 (empty row excluded)", row.AverageAccuracy)
	}
}

func TestAdminStatsBundleUserPagingIndependent(t *testing.T) {
	env := newTestEnv(t)

	user := env.seedUser(t, "player")
	q := env.seedShortQuestion(t, "q", "a")
	first := env.seedBundle(t, "Alpha", q.ID)
	second := env.seedBundle(t, "Beta", q.ID)

	firstID, secondID := first.ID, second.ID
	env.seedHistory(t, user.ID, q.ID, &firstID, 1, 0)
	env.seedHistory(t, user.ID, q.ID, &secondID, 1, 0)

	stats, err := env.stats.AdminStats(StatsParams{BundlePage: 1, BundleLimit: 1, BundleUserPage: 2})
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.BundleUserTotal != 2 {
		t.Fatalf("bundle-user total = %d, want 2", stats.BundleUserTotal)
	}
	// 分组板块翻到第 2 页,合集板块还停在第 1 页
	if len(stats.BundleUserPerformance) != 1 || stats.BundleUserPerformance[0].BundleTitle != "Beta" {
		t.Errorf("bundle-user page 2 = %+v, want only Beta", stats.BundleUserPerformance)
	}
}
