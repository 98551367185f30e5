package http

import (
	"time"

	"github.com/gin-gonic/gin"

	"campusmate/internal/ai"
	appsvc "campusmate/internal/app"
	"campusmate/internal/bootstrap"
	"campusmate/internal/cache"
	"campusmate/internal/platform/rabbitmq"
	"campusmate/internal/repository"
	"campusmate/internal/transport/http/handler"
	"campusmate/internal/transport/http/middleware"
)

func NewRouter(app *bootstrap.App) *gin.Engine {
	gin.SetMode(app.Config.App.GinMode)
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	healthHandler := handler.NewHealthHandler(app)
	router.GET("/health", healthHandler.Check)

	userRepo := repository.NewUserRepository(app.MySQL)
	assignmentRepo := repository.NewAssignmentRepository(app.MySQL)
	historyRepo := repository.NewQuizHistoryRepository(app.MySQL)

	authService := appsvc.NewAuthService(
		userRepo,
		app.Config.Auth.JWTSecret,
		time.Duration(app.Config.Auth.JWTExpireMinute)*time.Minute,
	)

	llmClient := ai.NewOpenAICompatibleClient(ai.ClientConfig{
		BaseURL: app.Config.LLM.BaseURL,
		APIKey:  app.Config.LLM.APIKey,
		Model:   app.Config.LLM.Model,
	})
	studyService := appsvc.NewStudyService(
		app.ChunkStore,
		llmClient,
		app.Config.LLM.MaxContextChars,
		app.Config.LLM.RetrieveTopK,
	)

	assignmentService := appsvc.NewAssignmentService(assignmentRepo)

	resultPublisher := rabbitmq.NewQuizResultPublisher(app.MQConn, app.Config.RabbitMQ.QuizPersistQueue)
	historyCache := cache.NewQuizHistoryCache(
		app.Redis,
		time.Duration(app.Config.Redis.HistoryTTLSeconds)*time.Second,
		time.Duration(app.Config.Redis.HistoryDirtyTTLSeconds)*time.Second,
	)
	historyService := appsvc.NewHistoryService(historyRepo, userRepo, resultPublisher, historyCache)

	authHandler := handler.NewAuthHandler(authService, app.Config.Auth.CookieName, app.Config.Auth.CookieSecure)
	quizHandler := handler.NewQuizHandler(studyService, app.Config.Upload.MaxFileBytes)
	aiChatHandler := handler.NewAIChatHandler(studyService)
	assignmentHandler := handler.NewAssignmentHandler(assignmentService)
	historyHandler := handler.NewHistoryHandler(historyService)

	requireAuth := middleware.AuthJWT(app.Config.Auth.JWTSecret, app.Config.Auth.CookieName)

	api := router.Group("/api")

	authGroup := api.Group("/auth")
	authGroup.POST("/register", authHandler.Register)
	authGroup.POST("/login", authHandler.Login)
	authGroup.POST("/logout", authHandler.Logout)
	authGroup.GET("/me", requireAuth, authHandler.Me)

	quizGroup := api.Group("/quizzes")
	quizGroup.Use(requireAuth)
	quizGroup.POST("/upload", quizHandler.Upload)
	quizGroup.POST("/generate", quizHandler.Generate)
	quizGroup.POST("/chat", quizHandler.Chat)

	api.POST("/ai/chat", requireAuth, aiChatHandler.Chat)

	assignmentGroup := api.Group("/assignments")
	assignmentGroup.Use(requireAuth)
	assignmentGroup.GET("", assignmentHandler.List)
	assignmentGroup.POST("", assignmentHandler.Create)
	assignmentGroup.GET("/:id", assignmentHandler.Get)
	assignmentGroup.PUT("/:id", assignmentHandler.Update)
	assignmentGroup.DELETE("/:id", assignmentHandler.Delete)

	historyGroup := api.Group("/history")
	historyGroup.Use(requireAuth)
	historyGroup.POST("/quiz", historyHandler.SaveQuizResult)
	historyGroup.GET("/quiz", historyHandler.ListQuizHistory)

	api.GET("/recommendations/study-plan", requireAuth, historyHandler.StudyPlan)

	return router
}
