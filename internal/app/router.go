package app

import (
	"github.com/kmshistory/kmshistory-v2/docs"
	"github.com/kmshistory/kmshistory-v2/internal/config"
	"github.com/kmshistory/kmshistory-v2/internal/middleware"
	"github.com/kmshistory/kmshistory-v2/internal/model"
	"github.com/kmshistory/kmshistory-v2/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, repos *repositories, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// 1. 公共路由(无需登录)
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.GET("/topics", c.topic.List)
		public.GET("/topics/:id", c.topic.Get)
	}

	// 2. 答题模块。浏览类接口允许游客访问,登录用户可看本人进度
	quiz := router.Group("/api/quiz")
	quiz.Use(middleware.TryAuthMiddleware(cfg), middleware.ActivityMiddleware(repos.user))
	{
		quiz.GET("/random", c.quiz.RandomQuestion)
		quiz.GET("/bundles", c.quiz.ListBundles)
		quiz.GET("/bundles/:id", c.quiz.BundleDetail)

		// 作答与进度:强制认证
		authorized := quiz.Group("/")
		authorized.Use(middleware.AuthMiddleware(cfg))
		{
			authorized.POST("/submit", c.quiz.Submit)
			authorized.PUT("/bundles/:id/progress", c.quiz.PutProgress)
			authorized.DELETE("/bundles/:id/progress", c.quiz.ResetProgress)
			authorized.GET("/wrong-answers", c.quiz.WrongAnswers)
			authorized.GET("/me/stats", c.quiz.MyStats)
			authorized.GET("/me/bundles", c.quiz.PlayHistory)
		}
	}

	// 3. 管理端接口
	admin := router.Group("/api/admin")
	admin.Use(middleware.AuthMiddleware(cfg), middleware.RoleMiddleware(model.Admin), middleware.ActivityMiddleware(repos.user))
	{
		admin.GET("/questions", c.question.List)
		admin.POST("/questions", c.question.Create)
		admin.POST("/questions/upload-image", c.question.UploadImage)
		admin.GET("/questions/:id", c.question.Get)
		admin.PUT("/questions/:id", c.question.Update)
		admin.DELETE("/questions/:id", c.question.Delete)

		admin.GET("/bundles", c.bundle.List)
		admin.POST("/bundles", c.bundle.Create)
		admin.GET("/bundles/:id", c.bundle.Get)
		admin.PUT("/bundles/:id", c.bundle.Update)
		admin.DELETE("/bundles/:id", c.bundle.Delete)

		admin.POST("/topics", c.topic.Create)
		admin.PUT("/topics/:id", c.topic.Update)
		admin.DELETE("/topics/:id", c.topic.Delete)

		admin.GET("/quiz/stats", c.stats.AdminStats)
	}
}
