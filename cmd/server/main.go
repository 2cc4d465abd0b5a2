package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/DeepakTayde/rentpe-v1-sub002/internal/config"
	"github.com/DeepakTayde/rentpe-v1-sub002/internal/handler"
	"github.com/DeepakTayde/rentpe-v1-sub002/internal/logger"
	"github.com/DeepakTayde/rentpe-v1-sub002/internal/repository"
	"github.com/DeepakTayde/rentpe-v1-sub002/internal/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	zapLogger, err := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer zapLogger.Sync() //nolint:errcheck

	zapLogger.Info("RentPe conversational search",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
		zap.String("git_commit", GitCommit),
	)

	// Set Gin mode
	gin.SetMode(cfg.Server.GinMode)

	// Initialize database connection
	repo, err := repository.NewPostgresRepository(
		cfg.GetPostgreSQLDSN(),
		cfg.PostgreSQL.MaxConnections,
		cfg.PostgreSQL.MaxIdleConnections,
	)
	if err != nil {
		zapLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer repo.Close()

	zapLogger.Info("Connected to PostgreSQL database")

	// Initialize language backend
	backend := service.NewOpenAIBackend(&cfg.OpenAI, zapLogger)
	if !backend.IsEnabled() {
		zapLogger.Warn("OpenAI is disabled, every chat turn will report the backend as unavailable. Set OPENAI_API_KEY to enable it")
	}

	// Initialize services
	extractor := service.NewExtractor(backend, zapLogger)
	sessions := service.NewSessionManager(
		extractor,
		repo,
		service.NewConversationManager(cfg.Session.MaxHistoryTurns),
		service.SessionOptions{
			ResultLimit:    cfg.Search.ResultLimit,
			ExtractTimeout: cfg.OpenAI.ExtractTimeout(),
			QueryTimeout:   cfg.Search.QueryTimeout,
		},
		cfg.Session.IdleTTL,
		zapLogger,
	)
	defer sessions.Close()

	janitorCtx, stopJanitor := context.WithCancel(context.Background())
	defer stopJanitor()
	go sessions.Run(janitorCtx)

	zapLogger.Info("Services initialized",
		zap.Int("result_limit", cfg.Search.ResultLimit),
		zap.Int("max_history_turns", cfg.Session.MaxHistoryTurns),
		zap.Duration("session_idle_ttl", cfg.Session.IdleTTL),
	)

	// Initialize handlers
	chatHandler := handler.NewChatHandler(sessions, zapLogger)
	propertyHandler := handler.NewPropertyHandler(repo)

	// Setup Gin router
	router := gin.New()
	router.Use(gin.Recovery(), handler.RequestLogger(zapLogger))

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = strings.Split(cfg.Server.AllowedOrigins, ",")
	corsConfig.AllowMethods = []string{"GET", "POST", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Content-Type", "Authorization"}
	router.Use(cors.New(corsConfig))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		code, status, database := http.StatusOK, "healthy", "up"
		if err := repo.Ping(ctx); err != nil {
			code, status, database = http.StatusServiceUnavailable, "degraded", "down"
		}
		c.JSON(code, gin.H{
			"status":          status,
			"service":         "rentpe-conversational-search",
			"database":        database,
			"llm_enabled":     backend.IsEnabled(),
			"active_sessions": sessions.Len(),
			"version":         Version,
		})
	})

	// Version endpoint
	router.GET("/version", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"version":    Version,
			"build_time": BuildTime,
			"git_commit": GitCommit,
		})
	})

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API routes
	apiV1 := router.Group("/api/v1")
	{
		apiV1.POST("/chat", chatHandler.Chat)
		apiV1.POST("/chat/reset", chatHandler.Reset)
		apiV1.DELETE("/chat/:sessionId", chatHandler.End)
		apiV1.GET("/properties/:id", propertyHandler.GetProperty)
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "API endpoint not found"})
	})

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown
	go func() {
		zapLogger.Info("Starting server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLogger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		zapLogger.Error("Server forced to shutdown", zap.Error(err))
	}

	zapLogger.Info("Server stopped")
}
