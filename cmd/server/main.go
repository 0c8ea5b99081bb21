package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/tapcraft/crafting-service/internal/config"
	"github.com/tapcraft/crafting-service/internal/crafting"
	"github.com/tapcraft/crafting-service/internal/database"
	"github.com/tapcraft/crafting-service/internal/handlers"
	customMiddleware "github.com/tapcraft/crafting-service/internal/middleware"
	"github.com/tapcraft/crafting-service/internal/storage"
	"github.com/tapcraft/crafting-service/pkg/jwt"
	"github.com/tapcraft/crafting-service/pkg/logger"
	"github.com/tapcraft/crafting-service/pkg/metrics"
)

func main() {
	// Load .env file if it exists (for development)
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging.Level); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	// Service uptime gauge
	startTime := time.Now()
	go func() {
		for {
			metrics.ServiceUptime.Set(time.Since(startTime).Seconds())
			time.Sleep(cfg.Metrics.UpdateInterval)
		}
	}()
	metrics.ServiceInfo.WithLabelValues("1.0.0", time.Now().Format(time.RFC3339)).Set(1)

	db, err := database.NewDB(&cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	redis, err := database.NewRedisClient(&cfg.Redis)
	if err != nil {
		logger.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer redis.Close()

	jwtValidator := jwt.NewValidator(cfg.Auth.PublicKeyURL, redis)
	initCtx, initCancel := context.WithTimeout(context.Background(), cfg.Timeouts.JWTValidatorClient)
	defer initCancel()

	if err := jwtValidator.Initialize(initCtx); err != nil {
		logger.Fatal("Failed to initialize JWT validator", zap.Error(err))
	}

	// Refresh the JWT public key periodically
	go func() {
		ticker := time.NewTicker(cfg.Auth.RefreshInterval)
		defer ticker.Stop()

		for range ticker.C {
			if err := jwtValidator.RefreshPublicKey(context.Background()); err != nil {
				logger.Error("Failed to refresh JWT public key", zap.Error(err))
			}
		}
	}()

	// Domain wiring: inventory repository, shared craft limiter, XP ledger
	// client, craft orchestrator.
	itemRepository := storage.NewItemRepository(db)

	craftLimiter := crafting.NewRedisLimiter(redis.Client(), crafting.MaxCraftsPerWindow, crafting.CraftWindow)

	xpClient := crafting.NewHTTPXPClient(
		cfg.ExternalServices.UserService.BaseURL,
		cfg.ExternalServices.UserService.Timeout,
		logger.Get(),
	)

	craftService := crafting.NewService(itemRepository, craftLimiter, xpClient, logger.Get())

	allHandlers := handlers.NewHandlers(&handlers.HandlerDependencies{
		CraftService: craftService,
		Items:        itemRepository,
		DB:           db,
		Redis:        redis,
		Logger:       logger.Get(),
	})

	// Public router
	publicRouter := chi.NewRouter()
	publicRouter.Use(middleware.RequestID)
	publicRouter.Use(middleware.RealIP)
	publicRouter.Use(customMiddleware.Recovery())
	publicRouter.Use(customMiddleware.Logging())
	publicRouter.Use(customMiddleware.Metrics())
	publicRouter.Use(middleware.Timeout(cfg.Timeouts.HTTPMiddleware))

	publicRouter.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	publicRouter.Route("/game", func(r chi.Router) {
		r.Use(customMiddleware.Auth(jwtValidator))

		r.Get("/inventory", allHandlers.Inventory.List)

		r.Route("/crafting", func(r chi.Router) {
			r.Get("/recipes", allHandlers.Craft.Recipes)
			r.Post("/merge", allHandlers.Craft.Merge)
		})
	})

	// Internal router: health and metrics only
	internalRouter := chi.NewRouter()
	internalRouter.Use(middleware.RequestID)
	internalRouter.Use(middleware.RealIP)
	internalRouter.Use(customMiddleware.Recovery())
	internalRouter.Use(customMiddleware.Logging())
	internalRouter.Use(middleware.Timeout(cfg.Timeouts.HTTPMiddleware))

	internalRouter.Get("/health", allHandlers.Health.Health)
	internalRouter.Get("/ready", allHandlers.Health.Ready)
	internalRouter.Handle("/metrics", promhttp.Handler())

	publicServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:      publicRouter,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	internalServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.InternalPort),
		Handler:      internalRouter,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		logger.Info("Starting Crafting Service public server",
			zap.String("host", cfg.Server.Host),
			zap.String("port", cfg.Server.Port),
		)

		if err := publicServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start public server", zap.Error(err))
		}
	}()

	go func() {
		logger.Info("Starting Crafting Service internal server",
			zap.String("host", cfg.Server.Host),
			zap.String("port", cfg.Server.InternalPort),
		)

		if err := internalServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start internal server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Timeouts.GracefulShutdown)
	defer shutdownCancel()

	shutdownErr := make(chan error, 2)

	go func() {
		if err := publicServer.Shutdown(shutdownCtx); err != nil {
			shutdownErr <- fmt.Errorf("public server shutdown error: %w", err)
		} else {
			shutdownErr <- nil
		}
	}()

	go func() {
		if err := internalServer.Shutdown(shutdownCtx); err != nil {
			shutdownErr <- fmt.Errorf("internal server shutdown error: %w", err)
		} else {
			shutdownErr <- nil
		}
	}()

	for i := 0; i < 2; i++ {
		if err := <-shutdownErr; err != nil {
			logger.Error("Server forced to shutdown", zap.Error(err))
		}
	}

	logger.Info("Servers exited")
}
