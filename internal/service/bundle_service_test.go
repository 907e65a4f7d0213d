package service

import (
	"errors"
	"testing"

	"github.com/kmshistory/kmshistory-v2/internal/repository"
	"github.com/kmshistory/kmshistory-v2/internal/util"
)

func TestBundleCreatePreservesMemberOrder(t *testing.T) {
	env := newTestEnv(t)

	q7 := env.seedShortQuestion(t, "q7", "a")
	q3 := env.seedShortQuestion(t, "q3", "a")
	q9 := env.seedShortQuestion(t, "q9", "a")

	bundle := env.seedBundle(t, "ordered", q7.ID, q3.ID, q9.ID)

	detail, err := env.bundle.GetDetail(bundle.ID, 0)
	if err != nil {
		t.Fatalf("detail: %v", err)
	}
	want := []uint{q7.ID, q3.ID, q9.ID}
	if len(detail.Questions) != len(want) {
		t.Fatalf("members = %d, want %d", len(detail.Questions), len(want))
	}
	for i, q := range detail.Questions {
		if q.ID != want[i] {
			t.Errorf("position %d: question %d, want %d", i, q.ID, want[i])
		}
	}

	// 存储的序号从 0 起且连续
	orders, err := env.bundle.bundleRepo.FindMemberOrders(bundle.ID)
	if err != nil {
		t.Fatalf("member orders: %v", err)
	}
	for i, id := range want {
		if orders[id] != i {
			t.Errorf("member %d has order %d, want %d", id, orders[id], i)
		}
	}
}

func TestBundleCreateCollapsesDuplicateMembers(t *testing.T) {
	env := newTestEnv(t)

	q1 := env.seedShortQuestion(t, "q1", "a")
	q2 := env.seedShortQuestion(t, "q2", "a")

	// 重复 ID 只保留首次出现
	bundle := env.seedBundle(t, "dups", q1.ID, q2.ID, q1.ID, q2.ID)

	if bundle.QuestionCount != 2 {
		t.Errorf("question_count = %d, want 2", bundle.QuestionCount)
	}
}

func TestBundleCreateRejectsUnknownQuestion(t *testing.T) {
	env := newTestEnv(t)

	ids := []uint{12345}
	_, err := env.bundle.Create(BundleInput{Title: "broken", QuestionIDs: &ids})
	if !errors.Is(err, util.ErrQuestionNotFound) {
		t.Fatalf("expected ErrQuestionNotFound, got %v", err)
	}
}

func TestBundleUpdateReplacesMembership(t *testing.T) {
	env := newTestEnv(t)

	q1 := env.seedShortQuestion(t, "q1", "a")
	q2 := env.seedShortQuestion(t, "q2", "a")
	q3 := env.seedShortQuestion(t, "q3", "a")
	q4 := env.seedShortQuestion(t, "q4", "a")
	q5 := env.seedShortQuestion(t, "q5", "a")
	bundle := env.seedBundle(t, "set", q1.ID, q2.ID)

	newIDs := []uint{q3.ID, q4.ID, q5.ID}
	updated, err := env.bundle.Update(bundle.ID, BundleInput{Title: "set", QuestionIDs: &newIDs})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.QuestionCount != 3 {
		t.Errorf("question_count = %d, want 3", updated.QuestionCount)
	}

	detail, err := env.bundle.GetDetail(bundle.ID, 0)
	if err != nil {
		t.Fatalf("detail: %v", err)
	}
	for _, q := range detail.Questions {
		if q.ID == q1.ID || q.ID == q2.ID {
			t.Errorf("old member %d still present after replace", q.ID)
		}
	}
}

func TestBundleUpdateWithoutIDsKeepsMembers(t *testing.T) {
	env := newTestEnv(t)

	q1 := env.seedShortQuestion(t, "q1", "a")
	bundle := env.seedBundle(t, "old title", q1.ID)

	updated, err := env.bundle.Update(bundle.ID, BundleInput{Title: "new title"})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Title != "new title" {
		t.Errorf("title = %q", updated.Title)
	}
	if updated.QuestionCount != 1 {
		t.Errorf("question_count = %d, want 1 (membership untouched)", updated.QuestionCount)
	}
}

func TestBundleListForUserOnlyActive(t *testing.T) {
	env := newTestEnv(t)

	user := env.seedUser(t, "viewer")
	q := env.seedShortQuestion(t, "q", "a")
	active := env.seedBundle(t, "active", q.ID)

	inactive := false
	ids := []uint{q.ID}
	if _, err := env.bundle.Create(BundleInput{Title: "hidden", IsActive: &inactive, QuestionIDs: &ids}); err != nil {
		t.Fatalf("create inactive: %v", err)
	}

	if _, err := env.quiz.UpsertProgress(user.ID, active.ID, ProgressInput{TotalQuestions: 1, CorrectAnswers: 1, Completed: true}); err != nil {
		t.Fatalf("progress: %v", err)
	}

	list, total, err := env.bundle.ListForUser(repository.BundleListParams{Page: 1, Limit: 10}, user.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 1 || len(list) != 1 {
		t.Fatalf("total = %d, len = %d, want 1 active bundle only", total, len(list))
	}
	if list[0].Progress == nil || !list[0].Progress.Completed {
		t.Errorf("viewer progress not attached: %+v", list[0].Progress)
	}
}

func TestBundleDeleteCleansUp(t *testing.T) {
	env := newTestEnv(t)

	user := env.seedUser(t, "player")
	q := env.seedShortQuestion(t, "q", "a")
	bundle := env.seedBundle(t, "doomed", q.ID)

	bundleID := bundle.ID
	if _, err := env.quiz.SubmitAnswer(user.ID, SubmitInput{QuestionID: q.ID, BundleID: &bundleID, Answer: "a"}); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if _, err := env.quiz.UpsertProgress(user.ID, bundleID, ProgressInput{TotalQuestions: 1, CorrectAnswers: 1}); err != nil {
		t.Fatalf("progress: %v", err)
	}

	if err := env.bundle.Delete(bundleID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	if _, err := env.bundle.Get(bundleID); !errors.Is(err, util.ErrBundleNotFound) {
		t.Fatalf("expected ErrBundleNotFound, got %v", err)
	}
	// 进度清掉,作答记录保留但脱离合集
	rows, err := env.quiz.PlayHistory(user.ID)
	if err != nil {
		t.Fatalf("play history: %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("progress rows = %d, want 0", len(rows))
	}
	var historyCount int64
	env.db.Table("user_quiz_history").Where("user_id = ?", user.ID).Count(&historyCount)
	if historyCount != 1 {
		t.Errorf("history rows = %d, want 1 (kept after bundle delete)", historyCount)
	}
	var orphaned int64
	env.db.Table("user_quiz_history").Where("user_id = ? AND bundle_id IS NULL", user.ID).Count(&orphaned)
	if orphaned != 1 {
		t.Errorf("history bundle_id not cleared, orphaned = %d", orphaned)
	}
}
