package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/agendo/agendo/internal/config"
	"github.com/agendo/agendo/internal/domain/appointment"
	"github.com/agendo/agendo/internal/domain/branch"
	"github.com/agendo/agendo/internal/domain/catalog"
	"github.com/agendo/agendo/internal/domain/client"
	"github.com/agendo/agendo/internal/domain/staff"
	"github.com/agendo/agendo/internal/platform/apperr"
	"github.com/agendo/agendo/internal/platform/auth"
	"github.com/agendo/agendo/internal/platform/db"
	"github.com/agendo/agendo/internal/platform/middleware"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "agendo-server",
		Short: "Appointment scheduling API server",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(reconcileCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func poolConfig(cfg *config.Config) db.PoolConfig {
	return db.PoolConfig{
		URL:             cfg.DatabaseURL,
		MaxConns:        cfg.DBMaxConns,
		MinConns:        cfg.DBMinConns,
		MaxConnIdleTime: cfg.DBConnIdleTime,
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
			if dir == "" {
				dir = cfg.MigrationsDir
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, poolConfig(cfg))
			if err != nil {
				return err
			}
			defer pool.Close()

			count, err := db.NewMigrator(pool, dir).Up(ctx)
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}
			fmt.Printf("Applied %d migration(s).\n", count)
			return nil
		},
	}
	upCmd.Flags().String("dir", "", "Path to migrations directory")
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
			if dir == "" {
				dir = cfg.MigrationsDir
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, poolConfig(cfg))
			if err != nil {
				return err
			}
			defer pool.Close()

			statuses, err := db.NewMigrator(pool, dir).Status(ctx)
			if err != nil {
				return fmt.Errorf("failed to get migration status: %w", err)
			}

			fmt.Printf("%-10s %-40s %-10s %s\n", "VERSION", "NAME", "STATUS", "APPLIED AT")
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
	statusCmd.Flags().String("dir", "", "Path to migrations directory")
	cmd.AddCommand(statusCmd)

	return cmd
}

// reconcileCmd runs the no-show reconciliation once and prints the summary.
// External cron is expected to invoke it shortly after local midnight.
func reconcileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reconcile-noshows",
		Short: "Cancel the previous day's unresolved appointments as no-shows",
		RunE: func(cmd *cobra.Command, args []string) error {
			dateArg, _ := cmd.Flags().GetString("date")

			logger := newLogger()
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, poolConfig(cfg))
			if err != nil {
				return err
			}
			defer pool.Close()

			now := time.Now()
			if dateArg != "" {
				// Reconcile as if running just after midnight on the day
				// following the given date.
				day, err := time.ParseInLocation("2006-01-02", dateArg, cfg.Location())
				if err != nil {
					return fmt.Errorf("invalid --date, expected YYYY-MM-DD: %w", err)
				}
				now = day.AddDate(0, 0, 1)
			}

			repo := appointment.NewRepoPG(pool)
			svc := appointment.NewService(appointment.ServiceDeps{
				Repo:   repo,
				Logger: logger,
			})
			reconciler := appointment.NewReconciler(repo, svc, cfg.Location(), cfg.NoShowReason, logger)

			summary, err := reconciler.Run(ctx, now)
			if err != nil {
				return err
			}

			out, err := json.MarshalIndent(summary, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(out))
			if !summary.Success {
				return fmt.Errorf("%d of %d appointments failed to reconcile",
					summary.ErrorCount, summary.TotalFound)
			}
			return nil
		},
	}
	cmd.Flags().String("date", "", "Reconcile this day instead of yesterday (YYYY-MM-DD)")
	return cmd
}

func newLogger() zerolog.Logger {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if os.Getenv("ENV") == "development" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}
	return logger
}

func runServer() error {
	logger := newLogger()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}

	ctx := context.Background()
	pool, err := db.NewPool(ctx, poolConfig(cfg))
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	logger.Info().Msg("connected to database")

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = apperr.HTTPErrorHandler(logger)

	e.Use(middleware.Recovery(logger))
	e.Use(echomw.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(middleware.RequestTimeout(cfg.RequestTimeout))

	e.GET("/healthz", db.HealthHandler(pool))

	api := e.Group("/api")
	api.Use(auth.Middleware(auth.JWTConfig{
		SigningKey: []byte(cfg.JWTSigningKey),
		Issuer:     cfg.JWTIssuer,
	}))

	// Domain services
	staffSvc := staff.NewService(staff.NewRepoPG(pool))
	clientSvc := client.NewService(client.NewRepoPG(pool))
	branchSvc := branch.NewService(branch.NewRepoPG(pool))
	catalogSvc := catalog.NewCatalog(catalog.NewServiceRepoPG(pool), catalog.NewOverrideRepoPG(pool))

	apptSvc := appointment.NewService(appointment.ServiceDeps{
		Repo:    appointment.NewRepoPG(pool),
		Staff:   staffSvc,
		Clients: clientSvc,
		Branch:  branchSvc,
		Pricing: catalogSvc,
		InTx: func(ctx context.Context, fn func(ctx context.Context) error) error {
			return db.WithTx(ctx, pool, fn)
		},
		Logger: logger,
	})

	staff.NewHandler(staffSvc).RegisterRoutes(api)
	client.NewHandler(clientSvc).RegisterRoutes(api)
	branch.NewHandler(branchSvc).RegisterRoutes(api)
	catalog.NewHandler(catalogSvc).RegisterRoutes(api)
	appointment.NewHandler(apptSvc).RegisterRoutes(api)

	// Graceful shutdown
	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Msg("starting server")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
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
		logger.Fatal().Err(err).Msg("server shutdown failed")
	}
	logger.Info().Msg("server stopped")
	return nil
}
