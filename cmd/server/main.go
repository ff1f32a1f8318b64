package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"direct_messenger/internal/config"
	"direct_messenger/internal/handler"
	"direct_messenger/internal/middleware"
	"direct_messenger/internal/repository"
	"direct_messenger/internal/service"
	"direct_messenger/internal/store"
	"direct_messenger/internal/ws"
	"direct_messenger/pkg/logger"

	"github.com/gin-gonic/gin"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	appLogger := logger.New(cfg.Log.Level)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	db, err := store.NewMongoStore(ctx, cfg.Mongo.URI, cfg.Mongo.Database, appLogger)
	cancel()
	if err != nil {
		appLogger.Fatal("Failed to connect to MongoDB", "error", err)
	}
	defer db.Close(context.Background())
	appLogger.Info("MongoDB connection established", "database", cfg.Mongo.Database)

	if err := os.MkdirAll(cfg.Upload.Dir, 0o755); err != nil {
		appLogger.Fatal("Failed to create upload directory", "error", err, "dir", cfg.Upload.Dir)
	}

	repos := repository.NewRepositories(db, appLogger)
	services := service.NewServices(repos, cfg, appLogger)
	hub := ws.NewHub(appLogger)

	authMiddleware := middleware.NewAuthMiddleware(services.Auth, appLogger)
	handlers := handler.NewHandlers(services, hub, cfg, appLogger)

	router := setupRouter(handlers, authMiddleware, cfg, appLogger)

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		appLogger.Info("Starting server", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Fatal("Failed to start server", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	hub.CloseAll()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.Fatal("Server forced to shutdown", "error", err)
	}

	appLogger.Info("Server exited")
}

func setupRouter(
	handlers *handler.Handlers,
	authMiddleware *middleware.AuthMiddleware,
	cfg *config.Config,
	log logger.Logger,
) *gin.Engine {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(cfg.CORS))
	router.Use(middleware.RequestLogger(log))

	router.GET("/health", handlers.Health.Check)

	// Uploaded files are served straight off disk.
	router.Static("/uploads", cfg.Upload.Dir)

	// WebSocket handshake carries the token as a query parameter because
	// browsers cannot set headers on WebSocket connections.
	router.GET("/ws", handlers.WebSocket.Handle)

	api := router.Group("/api")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/register", handlers.Auth.Register)
			auth.POST("/login", handlers.Auth.Login)
		}

		protected := api.Group("")
		protected.Use(authMiddleware.RequireAuth())
		{
			protected.GET("/auth/me", handlers.User.GetMe)
			protected.POST("/auth/logout", handlers.Auth.Logout)

			users := protected.Group("/users")
			{
				users.GET("", handlers.User.List)
				users.PUT("/profile", handlers.User.UpdateProfile)
				users.GET("/:id", handlers.User.GetByID)
			}

			protected.GET("/conversations", handlers.Chat.ListConversations)
			protected.POST("/conversations/:otherUserID", handlers.Chat.CreateOrGetConversation)

			messages := protected.Group("/messages/:conversationID")
			{
				messages.GET("", handlers.Chat.ListMessages)
				messages.POST("", handlers.Chat.SendMessage)
			}

			protected.POST("/upload/:conversationID", handlers.Upload.Upload)
		}
	}

	return router
}
