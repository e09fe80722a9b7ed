package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/crudclinic/clinic/internal/config"
	"github.com/crudclinic/clinic/internal/domain/admin"
	"github.com/crudclinic/clinic/internal/domain/bulkimport"
	"github.com/crudclinic/clinic/internal/domain/identity"
	"github.com/crudclinic/clinic/internal/domain/scheduling"
	"github.com/crudclinic/clinic/internal/platform/apperr"
	"github.com/crudclinic/clinic/internal/platform/db"
	"github.com/crudclinic/clinic/internal/platform/middleware"
	"github.com/crudclinic/clinic/internal/platform/reporting"
	"github.com/crudclinic/clinic/migrations"
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "clinic-server",
		Short:        "Clinic management API server",
		SilenceUsage: true,
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(seedCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newLogger(env string) zerolog.Logger {
	if env == "development" {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}
	return zerolog.New(os.Stdout).With().Timestamp().Logger()
}

// connect loads the configuration and opens the pool. The caller closes it.
func connect(ctx context.Context) (*config.Config, *pgxpool.Pool, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	pool, err := db.NewPool(ctx, db.PoolConfig{
		URL:            cfg.DatabaseURL,
		MaxConns:       cfg.DBMaxConns,
		MinConns:       cfg.DBMinConns,
		ConnectTimeout: 5 * time.Second,
	})
	if err != nil {
		return nil, nil, err
	}
	return cfg, pool, nil
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the clinic API server",
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

	// migrate up
	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			_, pool, err := connect(ctx)
			if err != nil {
				return err
			}
			defer pool.Close()

			count, err := db.NewMigrator(pool, migrations.FS).Up(ctx)
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Applied %d migration(s) successfully.\n", count)
			return nil
		},
	}
	cmd.AddCommand(upCmd)

	// migrate status
	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			_, pool, err := connect(ctx)
			if err != nil {
				return err
			}
			defer pool.Close()

			statuses, err := db.NewMigrator(pool, migrations.FS).Status(ctx)
			if err != nil {
				return fmt.Errorf("failed to get migration status: %w", err)
			}
			printStatus(cmd, statuses)
			return nil
		},
	}
	cmd.AddCommand(statusCmd)

	return cmd
}

func printStatus(cmd *cobra.Command, statuses []db.MigrationStatus) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%-10s %-40s %-10s %s\n", "VERSION", "NAME", "STATUS", "APPLIED AT")
	fmt.Fprintln(out, "---------- ---------------------------------------- ---------- --------------------")
	for _, s := range statuses {
		status, appliedAt := "pending", ""
		if s.Applied {
			status = "applied"
			if s.AppliedAt != nil {
				appliedAt = s.AppliedAt.Format(time.RFC3339)
			}
		}
		fmt.Fprintf(out, "%-10d %-40s %-10s %s\n", s.Version, s.Name, status, appliedAt)
	}
}

func runServer() error {
	logger := newLogger(os.Getenv("ENV"))

	ctx := context.Background()
	cfg, pool, err := connect(ctx)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to start")
	}
	defer pool.Close()
	logger.Info().Msg("connected to database")

	if cfg.AutoMigrate {
		count, err := db.NewMigrator(pool, migrations.FS).Up(ctx)
		if err != nil {
			logger.Fatal().Err(err).Msg("migration failed")
		}
		logger.Info().Int("applied", count).Msg("migrations applied")
	}

	e := newServer(cfg, pool, logger)

	go func() {
		addr := cfg.Addr()
		logger.Info().Str("addr", addr).Msg("starting server")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("server shutdown failed")
		return err
	}
	logger.Info().Msg("server stopped")
	return nil
}

// newServer wires every handler onto a fresh echo instance. The pool is only
// used once requests arrive.
func newServer(cfg *config.Config, pool *pgxpool.Pool, logger zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = apperr.ErrorHandler
	e.IPExtractor = middleware.ClientIPExtractor(cfg.ProxyNets())

	// Global middleware
	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(middleware.SecurityHeaders())
	e.Use(middleware.BodyLimit(cfg.BodyLimit))
	e.Use(middleware.RequestTimeout(cfg.RequestTimeout))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowHeaders: []string{"Content-Type", middleware.RequestIDHeader},
	}))

	// Health checks
	e.GET("/health", db.LivenessHandler())
	e.GET("/health/db", db.HealthHandler(pool, logger))

	api := e.Group("/api", db.ConnMiddleware(pool))

	// Users and authentication
	adminSvc := admin.NewService(admin.NewUserRepo(pool), cfg.BcryptCost)
	loginLimit := middleware.RateLimit(middleware.RateLimitConfig{
		RequestsPerSecond: cfg.LoginRateRPS,
		BurstSize:         cfg.LoginRateBurst,
		IdleTTL:           10 * time.Minute,
	})
	admin.NewHandler(adminSvc).RegisterRoutes(api, loginLimit)

	// Patients and doctors
	identitySvc := identity.NewService(identity.NewPatientRepo(pool), identity.NewDoctorRepo(pool))
	identity.NewHandler(identitySvc).RegisterRoutes(api)

	// Appointments
	apptRepo := scheduling.NewAppointmentRepo(pool)
	scheduling.NewHandler(scheduling.NewService(apptRepo)).RegisterRoutes(api)

	// Bulk import
	importer := bulkimport.NewImporter(db.NewTxRunner(pool), bulkimport.NewStore(identitySvc, apptRepo), logger)
	bulkimport.NewHandler(importer, cfg.UploadDir, cfg.UploadMaxBytes, logger).RegisterRoutes(api)

	// Reports and the table helper
	reporting.NewHandler(reporting.NewRunner(pool)).RegisterRoutes(api)

	// Frontend
	if fi, err := os.Stat(cfg.StaticDir); err == nil && fi.IsDir() {
		e.Use(echomw.StaticWithConfig(echomw.StaticConfig{
			Root:    cfg.StaticDir,
			Index:   "index.html",
			HTML5:   true,
			Skipper: isBackendPath,
		}))
	} else {
		logger.Warn().Str("dir", cfg.StaticDir).Msg("static directory not found, frontend disabled")
	}

	return e
}

// isBackendPath keeps API and health responses, 404s included, away from the
// SPA fallback.
func isBackendPath(c echo.Context) bool {
	p := c.Request().URL.Path
	return p == "/api" || strings.HasPrefix(p, "/api/") ||
		p == "/health" || strings.HasPrefix(p, "/health/")
}
