// Package main is the entry point for the LumiFlow lighting-design service.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/lumiflow/backend/internal/cache"
	"github.com/lumiflow/backend/internal/catalog"
	"github.com/lumiflow/backend/internal/config"
	"github.com/lumiflow/backend/internal/engine"
	"github.com/lumiflow/backend/internal/exporter"
	"github.com/lumiflow/backend/internal/handler"
	"github.com/lumiflow/backend/internal/report"
	"github.com/lumiflow/backend/internal/repository"
	"github.com/lumiflow/backend/internal/store"
	"github.com/lumiflow/backend/internal/upload"
)

func main() {
	// Parse command line flags
	port := flag.String("port", "", "Server port (overrides SERVER_PORT env var)")
	storePath := flag.String("store", "", "Store file path (overrides STORE_PATH env var)")
	flag.Parse()

	// Override environment variables if flags are provided
	if *port != "" {
		os.Setenv("SERVER_PORT", *port)
	}
	if *storePath != "" {
		os.Setenv("STORE_PATH", *storePath)
	}

	app := fx.New(
		fx.Provide(
			config.New,
			newLogger,
			newGinEngine,
			catalog.New,
			store.NewBoltStore,
			newRepository,
			newCache,
			engine.New,
			report.NewFormatter,
			exporter.New,
			upload.NewStore,
			handler.NewHandler,
		),
		fx.Invoke(startServer),
	)

	app.Run()
}

// newLogger creates a new zap logger based on the environment.
func newLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.IsDevelopment() {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// newGinEngine creates and configures a new Gin engine.
func newGinEngine(cfg *config.Config) *gin.Engine {
	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(gin.Logger())

	// CORS middleware
	engine.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	return engine
}

func newRepository(st store.Store, logger *zap.Logger) repository.Repository {
	return repository.NewStoreRepository(st, logger)
}

func newCache(logger *zap.Logger) cache.Cache {
	return cache.NewResultsCache(logger)
}

// startServer starts the HTTP server.
func startServer(
	lc fx.Lifecycle,
	cfg *config.Config,
	logger *zap.Logger,
	engine *gin.Engine,
	h *handler.Handler,
	st store.Store,
) error {
	logger.Info("Starting service",
		zap.String("port", cfg.ServerPort),
		zap.String("store", cfg.StorePath),
	)

	// Setup API versioned routes
	apiV1 := engine.Group("/api/v1")
	h.RegisterRoutes(apiV1)

	// Health check endpoint
	engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "lumiflow",
		})
	})

	server := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.ServerPort),
		Handler: engine,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				logger.Info("Server starting", zap.String("addr", server.Addr))
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					logger.Fatal("Server failed", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info("Server shutting down")

			if err := st.Close(); err != nil {
				logger.Warn("Failed to close store", zap.Error(err))
			}

			return server.Shutdown(ctx)
		},
	})

	return nil
}
