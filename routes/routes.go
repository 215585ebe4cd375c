package routes

import (
	"InnerCompassGo/controllers"
	"InnerCompassGo/middleware"
	"InnerCompassGo/repositories"
	"InnerCompassGo/services"

	"github.com/gin-gonic/gin"
)

// Dependencies 路由所需的服务
type Dependencies struct {
	Users             *repositories.UserRepository
	Wellness          *services.WellnessService
	Chat              *services.ChatService
	InternalAuthToken string
}

func RegisterRoutes(r *gin.Engine, deps Dependencies) {
	authController := controllers.NewAuthController(deps.Users)
	userController := controllers.NewUserController(deps.Users)
	journalController := controllers.NewJournalController(deps.Wellness)
	taskController := controllers.NewTaskController(deps.Wellness)
	reportController := controllers.NewReportController(deps.Wellness)
	chatController := controllers.NewChatController(deps.Chat, deps.Wellness)

	// 公开路由（无需认证）
	public := r.Group("/api/v1")
	{
		public.POST("/auth/test-user", authController.CreateTestUser)
	}

	// 需要认证的路由
	private := r.Group("/api/v1")
	private.Use(middleware.AuthMiddleware())
	{
		private.POST("/journal", journalController.CreateEntry)
		private.GET("/journal", journalController.ListEntries)
		private.GET("/score", reportController.GetScore)
		private.GET("/tasks", taskController.GetTasks)
		private.PATCH("/tasks/:id/toggle", taskController.ToggleTask)
		private.POST("/tasks/regenerate", taskController.RegenerateTasks)
		private.GET("/dashboard", reportController.GetDashboard)
		private.GET("/streaks", reportController.GetStreaks)
		private.GET("/wellness-report", reportController.GetWellnessReport)
		private.POST("/chat", chatController.SendMessage)
		private.GET("/user", userController.GetUser)
	}

	// 内部路由组（仅限服务器内部调用）
	internal := r.Group("/internal")
	internal.Use(middleware.InternalAuthMiddleware(deps.InternalAuthToken))
	{
		internal.POST("/users/:id/rescore", reportController.Rescore)
	}

	// 测试路由
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})
}
