package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/herdwatch/herdwatch/internal/config"
	"github.com/herdwatch/herdwatch/internal/domain/assignment"
	"github.com/herdwatch/herdwatch/internal/domain/cases"
	"github.com/herdwatch/herdwatch/internal/domain/farmers"
	"github.com/herdwatch/herdwatch/internal/domain/livestock"
	"github.com/herdwatch/herdwatch/internal/domain/vets"
	"github.com/herdwatch/herdwatch/internal/platform/analytics"
	"github.com/herdwatch/herdwatch/internal/platform/auth"
	"github.com/herdwatch/herdwatch/internal/platform/db"
	"github.com/herdwatch/herdwatch/internal/platform/middleware"
	"github.com/herdwatch/herdwatch/internal/platform/poll"
	"github.com/herdwatch/herdwatch/internal/platform/recordstore"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "herdwatch-server",
		Short: "Livestock case assignment and surveillance analytics API server",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			migrator := db.NewMigrator(pool, dir)
			count, err := migrator.Up(ctx)
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}

			fmt.Printf("Applied %d migration(s) successfully.\n", count)
			return nil
		},
	}
	upCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(upCmd)

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			migrator := db.NewMigrator(pool, dir)
			statuses, err := migrator.Status(ctx)
			if err != nil {
				return fmt.Errorf("failed to get migration status: %w", err)
			}

			fmt.Printf("%-10s %-40s %-10s %s\n", "VERSION", "NAME", "STATUS", "APPLIED AT")
			fmt.Println("---------- ---------------------------------------- ---------- --------------------")
			for _, s := range statuses {
				status := "pending"
				appliedAt := ""
				if s.Applied {
					status = "applied"
					if s.AppliedAt != nil {
						appliedAt = s.AppliedAt.Format("2006-01-02 15:04:05")
					}
				}
				fmt.Printf("%-10d %-40s %-10s %s\n", s.Version, s.Name, status, appliedAt)
			}
			return nil
		},
	}
	statusCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(statusCmd)

	return cmd
}

func runServer() error {
	// Logger
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if os.Getenv("ENV") == "development" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}

	// Config
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid config")
	}

	// Database
	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	logger.Info().Msg("connected to database")

	// Echo server
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Global middleware
	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete},
		AllowHeaders: []string{"Authorization", "Content-Type", "X-Request-ID"},
	}))

	// Auth middleware
	if cfg.IsDev() && cfg.AuthSecret == "" {
		e.Use(auth.DevAuthMiddleware())
	} else {
		e.Use(auth.JWTMiddleware(auth.JWTConfig{
			SigningKey: []byte(cfg.AuthSecret),
		}))
	}

	// Repositories
	caseRepo := cases.NewRepo(pool)
	vetRepo := vets.NewRepo(pool)
	farmerRepo := farmers.NewRepo(pool)
	livestockRepo := livestock.NewRepo(pool)

	// Services
	caseSvc := cases.NewService(caseRepo)
	vetSvc := vets.NewService(vetRepo, logger)
	assignSvc := assignment.NewService(caseRepo, vetSvc)

	// Poll source: a remote record store when configured, otherwise the
	// local database.
	var source poll.Source
	if cfg.RecordStoreURL != "" {
		source = recordstore.NewClient(cfg.RecordStoreURL, cfg.RecordStoreToken)
		logger.Info().Str("url", cfg.RecordStoreURL).Msg("polling remote record store")
	} else {
		source = recordstore.NewPGStore(caseRepo, vetRepo, farmerRepo, livestockRepo)
	}

	coordinator := poll.NewCoordinator(source, cfg.ResolvedPollInterval(), logger)
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("invalid REDIS_URL")
		}
		coordinator.WithCache(poll.NewRedisCache(redis.NewClient(opts)))
		logger.Info().Msg("snapshot cache enabled")
	}

	pollCtx, pollCancel := context.WithCancel(ctx)
	defer pollCancel()
	go coordinator.Start(pollCtx)

	// Health check reports pool stats plus snapshot freshness
	e.GET("/health", db.HealthHandler(pool, coordinator))

	// API routes
	apiV1 := e.Group("/api/v1")
	cases.NewHandler(caseSvc).RegisterRoutes(apiV1)
	vets.NewHandler(vetSvc).RegisterRoutes(apiV1)
	farmers.NewHandler(farmerRepo).RegisterRoutes(apiV1)
	livestock.NewHandler(livestockRepo).RegisterRoutes(apiV1)
	assignment.NewHandler(assignSvc).RegisterRoutes(apiV1)
	analytics.NewHandler(coordinator).RegisterRoutes(apiV1)
	poll.NewHandler(coordinator).RegisterRoutes(apiV1)

	// Start server with graceful shutdown
	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Str("env", cfg.Env).Msg("starting server")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down")
	pollCancel()
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}
