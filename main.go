package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/tailorbook/tailorbook-api/config"
	"github.com/tailorbook/tailorbook-api/controllers"
	"github.com/tailorbook/tailorbook-api/ledger"
	"github.com/tailorbook/tailorbook-api/logger"
	"github.com/tailorbook/tailorbook-api/middleware"
	"github.com/tailorbook/tailorbook-api/models"
	"github.com/tailorbook/tailorbook-api/observability"
	"github.com/tailorbook/tailorbook-api/services"
)

const shutdownTimeout = 10 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLog, err := config.InitLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer appLog.Sync()
	appLog.Info("Starting Tailorbook API server", "env", cfg.GoEnv, "port", cfg.Port)

	shutdownTracing := observability.InitTracing(ctx, cfg, appLog)

	if err := config.ConnectDatabase(cfg.DatabaseURL); err != nil {
		appLog.Fatal("Failed to connect to database", "error", err)
	}
	db := config.GetDB()
	if err := models.AutoMigrate(db); err != nil {
		appLog.Fatal("Failed to migrate database", "error", err)
	}
	appLog.Info("Database migration completed successfully")

	ledgerOpts := []ledger.Option{
		ledger.WithLogger(appLog),
		ledger.WithLockTimeout(cfg.OrderLockTimeout),
	}
	if cfg.AWSS3Bucket != "" {
		s3Service, err := services.InitS3Service(ctx)
		if err != nil {
			appLog.Fatal("Failed to initialize S3", "error", err)
		}
		fileService := services.InitFileService(s3Service)
		ledgerOpts = append(ledgerOpts, ledger.WithReleaseFunc(fileService.ReleaseFiles))
	} else {
		appLog.Warn("AWS_S3_BUCKET not set, file uploads are disabled")
	}
	controllers.InitLedger(ledger.New(db, ledgerOpts...))

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           setupRouter(cfg, appLog),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		appLog.Info("Server is running", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLog.Fatal("Failed to start server", "error", err)
		}
	}()

	<-ctx.Done()
	appLog.Info("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		appLog.Error("Server shutdown failed", "error", err)
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		appLog.Warn("Tracer shutdown failed", "error", err)
	}
}

// setupRouter builds the engine with Auth0 JWT validation in front of the API
func setupRouter(cfg *config.Config, appLog *logger.Logger) *gin.Engine {
	return newRouter(cfg, appLog, middleware.EnsureValidToken(cfg))
}

func newRouter(cfg *config.Config, appLog *logger.Logger, auth gin.HandlerFunc) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	if cfg.OtelEnabled {
		router.Use(otelgin.Middleware(observability.ServiceName))
	}
	router.Use(
		middleware.RequestID(),
		middleware.RequestLogger(appLog),
		middleware.CORS(cfg.CORSAllowedOrigins),
	)

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", healthCheck)
		v1.GET("/database/status", databaseStatus)
	}
	controllers.RegisterRoutes(v1, auth)

	return router
}

// healthCheck handles the health check endpoint
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Tailorbook API is running",
	})
}

// databaseStatus checks database connectivity and returns table information
func databaseStatus(c *gin.Context) {
	db := config.GetDB()
	if db == nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Database not initialized",
			},
		})
		return
	}

	sqlDB, err := db.DB()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to get database instance",
			},
		})
		return
	}

	if err := sqlDB.PingContext(c.Request.Context()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_CONNECTION_ERROR",
				"message": "Database connection failed",
			},
		})
		return
	}

	tables, err := db.WithContext(c.Request.Context()).Migrator().GetTables()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_QUERY_ERROR",
				"message": "Failed to query tables",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Database connected",
		"tables":  tables,
	})
}
