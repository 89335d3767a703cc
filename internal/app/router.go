package app

import (
	"coach_backend/docs"
	"coach_backend/internal/config"
	"coach_backend/internal/middleware"
	"coach_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, repos *repositories, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// 1. 公共路由(无需登录)
	a.registerPublicRoutes(router, c)

	// 2. 需要授权的路由
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg.JWT.Secret), middleware.ActivityMiddleware(repos.user))
	{
		a.registerProfileRoutes(authGroup, c)
		a.registerGoalRoutes(authGroup, c)
		a.registerSessionRoutes(authGroup, c)
		a.registerAssessmentRoutes(authGroup, c)
		a.registerCoachRoutes(authGroup, c)

		authGroup.GET("/analytics", c.analytics.GetAnalytics)
	}
}

func (a *App) registerPublicRoutes(router *gin.Engine, c *controllers) {
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/register", c.auth.Register)
		public.POST("/login", c.auth.Login)
	}
}

func (a *App) registerProfileRoutes(rg *gin.RouterGroup, c *controllers) {
	rg.GET("/profile", c.user.GetProfile)
	rg.PATCH("/profile", c.user.UpdateProfile)
	rg.POST("/profile/avatar", c.user.UploadAvatar)
}

func (a *App) registerGoalRoutes(rg *gin.RouterGroup, c *controllers) {
	goals := rg.Group("/goals")
	{
		goals.POST("", c.goal.CreateGoal)
		goals.GET("", c.goal.ListGoals)
		goals.GET("/stats", c.goal.Stats)
		goals.GET("/:id", c.goal.GetGoal)
		goals.PATCH("/:id", c.goal.UpdateGoal)
		goals.DELETE("/:id", c.goal.DeleteGoal)
		goals.POST("/:id/progress", c.goal.UpdateProgress)
		goals.POST("/:id/rollup", c.goal.Rollup)
		goals.GET("/:id/subgoals", c.goal.ListSubGoals)
		goals.POST("/:id/subgoals", c.goal.CreateSubGoals)
		goals.GET("/:id/history", c.goal.History)
	}
}

func (a *App) registerSessionRoutes(rg *gin.RouterGroup, c *controllers) {
	sessions := rg.Group("/sessions")
	{
		sessions.POST("", c.session.CreateSession)
		sessions.GET("", c.session.ListSessions)
		sessions.GET("/stats", c.session.Stats)
		sessions.GET("/:id", c.session.GetSession)
		sessions.PATCH("/:id", c.session.UpdateSession)
	}
}

func (a *App) registerAssessmentRoutes(rg *gin.RouterGroup, c *controllers) {
	assessments := rg.Group("/assessments")
	{
		assessments.GET("", c.assessment.List)
		assessments.GET("/templates", c.assessment.ListTemplates)
		assessments.POST("/templates/:templateId/start", c.assessment.Start)
		assessments.GET("/:id", c.assessment.Get)
		assessments.POST("/:id/submit", c.assessment.Submit)
	}
}

func (a *App) registerCoachRoutes(rg *gin.RouterGroup, c *controllers) {
	ai := rg.Group("/ai")
	{
		ai.POST("/coach", c.coach.Chat)
		ai.POST("/goals/:id/decompose", c.coach.Decompose)
		ai.POST("/goals/:id/analysis", c.coach.Analyze)
	}
}
