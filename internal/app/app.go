package app

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kmshistory/kmshistory-v2/internal/config"
	"github.com/kmshistory/kmshistory-v2/internal/controller"
	"github.com/kmshistory/kmshistory-v2/internal/repository"
	"github.com/kmshistory/kmshistory-v2/internal/service"
	"github.com/kmshistory/kmshistory-v2/internal/util"
	"github.com/kmshistory/kmshistory-v2/pkg/database"
	"github.com/kmshistory/kmshistory-v2/pkg/logger"
	"github.com/kmshistory/kmshistory-v2/pkg/monitoring"
	"github.com/kmshistory/kmshistory-v2/pkg/security"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config *config.Config
	Router *gin.Engine
	DB     *gorm.DB
}

type repositories struct {
	user     *repository.UserRepository
	topic    *repository.TopicRepository
	question *repository.QuestionRepository
	bundle   *repository.BundleRepository
	progress *repository.ProgressRepository
	history  *repository.HistoryRepository
}

type services struct {
	storage  *service.StorageService
	topic    *service.TopicService
	question *service.QuestionService
	bundle   *service.BundleService
	quiz     *service.QuizService
	stats    *service.StatsService
}

type controllers struct {
	topic    *controller.TopicController
	question *controller.QuestionController
	bundle   *controller.BundleController
	quiz     *controller.QuizController
	stats    *controller.StatsController
	health   *controller.HealthController
}

func (a *App) initRepositories(db *gorm.DB) *repositories {
	return &repositories{
		user:     repository.NewUserRepository(db),
		topic:    repository.NewTopicRepository(db),
		question: repository.NewQuestionRepository(db),
		bundle:   repository.NewBundleRepository(db),
		progress: repository.NewProgressRepository(db),
		history:  repository.NewHistoryRepository(db),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config, db *gorm.DB) *services {
	s := &services{}
	s.storage = service.NewStorageService(cfg, logger.Log)
	s.topic = service.NewTopicService(repos.topic, logger.Log)
	s.question = service.NewQuestionService(db, repos.question, repos.topic, repos.bundle, logger.Log)
	s.bundle = service.NewBundleService(db, repos.bundle, repos.progress, repos.history, logger.Log)
	s.quiz = service.NewQuizService(db, repos.question, repos.bundle, repos.progress, repos.history, logger.Log)
	s.stats = service.NewStatsService(db, repos.history, repos.progress, repos.bundle, repos.user, logger.Log)
	return s
}

func (a *App) initControllers(s *services, db *gorm.DB) *controllers {
	return &controllers{
		topic:    controller.NewTopicController(s.topic),
		question: controller.NewQuestionController(s.question, s.storage),
		bundle:   controller.NewBundleController(s.bundle),
		quiz:     controller.NewQuizController(s.quiz, s.bundle),
		stats:    controller.NewStatsController(s.stats),
		health:   controller.NewHealthController(db),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())
	maxRequests := cfg.RateLimit.MaxRequests
	if maxRequests <= 0 {
		maxRequests = 10000
	}
	window := time.Duration(cfg.RateLimit.WindowMinutes) * time.Minute
	if window <= 0 {
		window = time.Minute
	}
	router.Use(security.RateLimiter(maxRequests, window))
	router.Use(monitoring.MetricsMiddleware())
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)
	logger.Log.Info("Logger initialized successfully")

	db, err := database.InitDB(&cfg.Database)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
	}

	app := &App{
		Config: cfg,
		DB:     db,
	}

	repos := app.initRepositories(db)
	services := app.initServices(repos, cfg, db)
	controllers := app.initControllers(services, db)

	monitoring.Init()

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()
	app.Router = router

	app.setupMiddlewares(router, cfg)
	app.registerRoutes(router, controllers, repos, cfg)

	if cfg.Storage.Type == util.StorageLocal {
		router.Static("/uploads", cfg.Storage.LocalPath)
	}

	return app
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	go func() {
		log.Printf("Server running on port %s", a.Config.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// 等待中断信号优雅地关闭服务器（设置5秒的超时时间）
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exiting")
}
