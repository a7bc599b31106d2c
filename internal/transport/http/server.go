package http

import (
	"time"

	"github.com/gin-gonic/gin"

	"gopherchat/internal/ai"
	appsvc "gopherchat/internal/app"
	"gopherchat/internal/bootstrap"
	"gopherchat/internal/cache"
	"gopherchat/internal/platform/rabbitmq"
	"gopherchat/internal/repository"
	"gopherchat/internal/transport/http/handler"
	"gopherchat/internal/transport/http/middleware"
)

func NewRouter(app *bootstrap.App) *gin.Engine {
	gin.SetMode(app.Config.App.GinMode)
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	healthHandler := handler.NewHealthHandler(app)
	router.GET("/healthz", healthHandler.Check)

	userRepo := repository.NewUserRepository(app.MySQL)
	chatRepo := repository.NewChatRepository(app.MySQL)
	messageRepo := repository.NewMessageRepository(app.MySQL)
	commentRepo := repository.NewCommentRepository(app.MySQL)
	promptRepo := repository.NewPromptRepository(app.MySQL)
	resetRepo := repository.NewPasswordResetRepository(app.MySQL)

	publisher := rabbitmq.NewMessagePublisher(app.MQConn, app.Config.RabbitMQ.MessagePersistQueue)
	historyCache := cache.NewHistoryCache(
		app.Redis,
		time.Duration(app.Config.Redis.HistoryTTLSeconds)*time.Second,
		time.Duration(app.Config.Redis.HistoryDirtyTTLSeconds)*time.Second,
	)

	defaultLLM := ai.ChatConfig{
		BaseURL: app.Config.LLM.BaseURL,
		APIKey:  app.Config.LLM.APIKey,
		Model:   app.Config.LLM.Model,
	}

	authService := appsvc.NewAuthService(
		userRepo,
		resetRepo,
		app.Mailer,
		app.Config.Auth.JWTSecret,
		time.Duration(app.Config.Auth.JWTExpireMinute)*time.Minute,
		time.Duration(app.Config.Auth.ResetTokenTTLMinutes)*time.Minute,
		app.Config.App.BaseURL,
	)
	chatService := appsvc.NewChatService(
		chatRepo,
		messageRepo,
		promptRepo,
		publisher,
		historyCache,
		app.ToolPool,
		defaultLLM,
		app.Config.LLM.MaxContextMessage,
	)
	promptService := appsvc.NewPromptService(promptRepo)
	commentService := appsvc.NewCommentService(commentRepo, messageRepo, chatRepo, defaultLLM)

	authHandler := handler.NewAuthHandler(authService)
	chatHandler := handler.NewChatHandler(chatService)
	promptHandler := handler.NewPromptHandler(promptService)
	commentHandler := handler.NewCommentHandler(commentService)
	fileHandler := handler.NewFileHandler(app.FileStore, app.Config.Storage.CleanupSecret)
	toolHandler := handler.NewToolHandler(app.ToolPool)

	authJWT := middleware.AuthJWT(app.Config.Auth.JWTSecret)

	v1 := router.Group("/api/v1")

	authGroup := v1.Group("/auth")
	authGroup.POST("/register", authHandler.Register)
	authGroup.POST("/login", authHandler.Login)
	authGroup.GET("/me", authJWT, authHandler.Me)
	authGroup.POST("/password-reset/request", authHandler.RequestPasswordReset)
	authGroup.POST("/password-reset/confirm", authHandler.ConfirmPasswordReset)

	chatGroup := v1.Group("/chats", authJWT)
	chatGroup.POST("", chatHandler.CreateChat)
	chatGroup.GET("", chatHandler.ListChats)
	chatGroup.GET("/:id", chatHandler.GetChat)
	chatGroup.DELETE("/:id", chatHandler.DeleteChat)
	chatGroup.GET("/:id/messages", chatHandler.GetHistory)
	chatGroup.POST("/:id/messages", chatHandler.SendMessage)
	chatGroup.POST("/:id/messages/stream", chatHandler.StreamMessage)

	promptGroup := v1.Group("/prompts", authJWT)
	promptGroup.POST("", promptHandler.Create)
	promptGroup.GET("", promptHandler.List)
	promptGroup.PUT("/:id", promptHandler.Update)
	promptGroup.DELETE("/:id", promptHandler.Delete)

	messageGroup := v1.Group("/messages", authJWT)
	messageGroup.POST("/:id/comments", commentHandler.Create)
	messageGroup.GET("/:id/comments", commentHandler.List)

	commentGroup := v1.Group("/comments", authJWT)
	commentGroup.DELETE("/:id", commentHandler.Delete)
	commentGroup.POST("/:id/ai-reply", commentHandler.GenerateAIReply)

	fileGroup := v1.Group("/files")
	fileGroup.POST("", authJWT, fileHandler.Upload)
	fileGroup.GET("/:name", fileHandler.Serve)
	fileGroup.POST("/cleanup", fileHandler.Cleanup)

	toolGroup := v1.Group("/tools", authJWT)
	toolGroup.GET("", toolHandler.List)
	toolGroup.POST("/call", toolHandler.Call)

	return router
}
