package main

import (
	"context"
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

	"github.com/carechat/carechat/internal/config"
	"github.com/carechat/carechat/internal/domain/chat"
	"github.com/carechat/carechat/internal/domain/directory"
	"github.com/carechat/carechat/internal/domain/prescription"
	"github.com/carechat/carechat/internal/domain/reminder"
	"github.com/carechat/carechat/internal/domain/scheduling"
	"github.com/carechat/carechat/internal/platform/auth"
	"github.com/carechat/carechat/internal/platform/db"
	"github.com/carechat/carechat/internal/platform/middleware"
	"github.com/carechat/carechat/internal/platform/websocket"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "carechat-server",
		Short: "Hospital scheduling and medication reminder chatbot server",
	}

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}

	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Database migration commands",
	}

	var migrationsDir string

	migrateUpCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrate(migrationsDir, "up")
		},
	}

	migrateStatusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrate(migrationsDir, "status")
		},
	}

	migrateCmd.PersistentFlags().StringVar(&migrationsDir, "dir", "migrations", "directory containing migration files")
	migrateCmd.AddCommand(migrateUpCmd, migrateStatusCmd)
	rootCmd.AddCommand(serveCmd, migrateCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newLogger(cfg *config.Config) zerolog.Logger {
	if cfg.IsDev() {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	}
	return zerolog.New(os.Stderr).With().Timestamp().Logger()
}

func runMigrate(dir, action string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := newLogger(cfg)
	ctx := context.Background()

	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer pool.Close()

	migrator := db.NewMigrator(pool, dir)

	switch action {
	case "up":
		count, err := migrator.Up(ctx)
		if err != nil {
			return fmt.Errorf("apply migrations: %w", err)
		}
		logger.Info().Int("applied", count).Msg("migrations complete")
	case "status":
		statuses, err := migrator.Status(ctx)
		if err != nil {
			return fmt.Errorf("migration status: %w", err)
		}
		for _, st := range statuses {
			state := "pending"
			if st.Applied && st.AppliedAt != nil {
				state = "applied " + st.AppliedAt.Format(time.RFC3339)
			}
			fmt.Printf("%4d  %-40s %s\n", st.Version, st.Name, state)
		}
	}
	return nil
}

func runServer() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logger := newLogger(cfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer pool.Close()

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(middleware.SecurityHeaders())
	e.Use(middleware.BodyLimit("1M"))
	e.Use(middleware.RequestTimeout(30 * time.Second))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAuthorization},
	}))

	e.GET("/health", db.HealthHandler(pool))

	hub := websocket.NewHub(logger)
	websocket.NewHandler(hub).RegisterRoutes(e.Group(""))

	apiV1 := e.Group("/api/v1")
	if cfg.IsDev() {
		logger.Warn().Msg("development mode: using debug authentication")
		apiV1.Use(auth.DevAuthMiddleware())
	} else {
		apiV1.Use(auth.JWTMiddleware(auth.JWTConfig{SigningKey: []byte(cfg.AuthSecret)}))
	}

	doctorRepo := directory.NewDoctorRepoPG(pool)
	patientRepo := directory.NewPatientRepoPG(pool)
	slotRepo := scheduling.NewTimeSlotRepoPG(pool)
	apptRepo := scheduling.NewAppointmentRepoPG(pool)
	prescriptionRepo := prescription.NewRepoPG(pool)
	reminderRepo := reminder.NewRepoPG(pool)

	directorySvc := directory.NewService(doctorRepo, patientRepo)

	runTx := func(ctx context.Context, fn func(ctx context.Context) error) error {
		return db.WithTx(ctx, pool, fn)
	}
	schedulingSvc := scheduling.NewService(slotRepo, apptRepo, directorySvc, hub, runTx, logger)

	queue := reminder.NewDeliveryQueue()
	reminderSvc := reminder.NewService(reminderRepo, prescriptionRepo, queue, runTx, logger)
	prescriptionSvc := prescription.NewService(prescriptionRepo, reminderSvc, logger)

	var classifier chat.IntentClassifier
	if cfg.OpenAIAPIKey != "" {
		classifier = chat.NewOpenAIClassifier(cfg.OpenAIAPIKey, cfg.OpenAIModel)
	} else {
		logger.Warn().Msg("OPENAI_API_KEY not set: using keyword intent classifier")
		classifier = chat.NewKeywordClassifier()
	}
	chatSvc := chat.NewService(classifier, directorySvc, schedulingSvc, prescriptionSvc, reminderSvc, logger)

	directory.NewHandler(directorySvc).RegisterRoutes(apiV1)
	scheduling.NewHandler(schedulingSvc).RegisterRoutes(apiV1)
	prescription.NewHandler(prescriptionSvc).RegisterRoutes(apiV1)
	reminder.NewHandler(reminderSvc).RegisterRoutes(apiV1)
	chat.NewHandler(chatSvc, queue, logger).RegisterRoutes(apiV1)

	sweeper := reminder.NewSweeper(reminderSvc, cfg.ReminderSweepInterval, logger)
	go sweeper.Run(ctx)

	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Str("env", cfg.Env).Msg("starting server")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("server stopped")
			cancel()
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
