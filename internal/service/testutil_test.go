package service

import (
	"fmt"
	"testing"
	"time"

	"github.com/kmshistory/kmshistory-v2/internal/model"
	"github.com/kmshistory/kmshistory-v2/internal/repository"
	"github.com/kmshistory/kmshistory-v2/pkg/database"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// newTestDB 每个测试一个独立的内存库,结构与生产迁移保持一致
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", t.Name(), time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

type testEnv struct {
	db       *gorm.DB
	topic    *TopicService
	question *QuestionService
	bundle   *BundleService
	quiz     *QuizService
	stats    *StatsService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := newTestDB(t)
	log := zap.NewNop()

	topicRepo := repository.NewTopicRepository(db)
	questionRepo := repository.NewQuestionRepository(db)
	bundleRepo := repository.NewBundleRepository(db)
	progressRepo := repository.NewProgressRepository(db)
	historyRepo := repository.NewHistoryRepository(db)
	userRepo := repository.NewUserRepository(db)

	return &testEnv{
		db:       db,
		topic:    NewTopicService(topicRepo, log),
		question: NewQuestionService(db, questionRepo, topicRepo, bundleRepo, log),
		bundle:   NewBundleService(db, bundleRepo, progressRepo, historyRepo, log),
		quiz:     NewQuizService(db, questionRepo, bundleRepo, progressRepo, historyRepo, log),
		stats:    NewStatsService(db, historyRepo, progressRepo, bundleRepo, userRepo, log),
	}
}

func (e *testEnv) seedUser(t *testing.T, nickname string) *model.User {
	t.Helper()
	user := &model.User{
		Email:    nickname + "@example.com",
		Nickname: nickname,
		Role:     model.Member,
	}
	if err := e.db.Create(user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return user
}

func (e *testEnv) seedMultipleQuestion(t *testing.T, text string, correct string, wrong ...string) *model.Question {
	t.Helper()
	input := QuestionInput{
		QuestionText:  text,
		Type:          string(model.TypeMultiple),
		CorrectAnswer: correct,
		Choices:       []ChoiceInput{{Content: correct, IsCorrect: true}},
	}
	for _, w := range wrong {
		input.Choices = append(input.Choices, ChoiceInput{Content: w})
	}
	question, err := e.question.Create(input)
	if err != nil {
		t.Fatalf("seed multiple question: %v", err)
	}
	return question
}

func (e *testEnv) seedShortQuestion(t *testing.T, text, answer string) *model.Question {
	t.Helper()
	question, err := e.question.Create(QuestionInput{
		QuestionText:  text,
		Type:          string(model.TypeShort),
		CorrectAnswer: answer,
	})
	if err != nil {
		t.Fatalf("seed short question: %v", err)
	}
	return question
}

func (e *testEnv) seedBundle(t *testing.T, title string, questionIDs ...uint) *model.QuizBundle {
	t.Helper()
	ids := questionIDs
	bundle, err := e.bundle.Create(BundleInput{Title: title, QuestionIDs: &ids})
	if err != nil {
		t.Fatalf("seed bundle %q: %v", title, err)
	}
	return bundle
}
