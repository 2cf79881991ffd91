package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/pflag"

	"github.com/Kerhoff/croowa/internal/api"
	"github.com/Kerhoff/croowa/internal/auth"
	"github.com/Kerhoff/croowa/internal/config"
	"github.com/Kerhoff/croowa/internal/handlers"
	"github.com/Kerhoff/croowa/internal/metrics"
	"github.com/Kerhoff/croowa/internal/realtime"
	"github.com/Kerhoff/croowa/internal/repository/postgres"
	"github.com/Kerhoff/croowa/internal/service"
	"github.com/Kerhoff/croowa/internal/telegram"
	"github.com/Kerhoff/croowa/pkg/logger"
)

func main() {
	envFile := pflag.String("env-file", ".env", "file with environment variables to load")
	migrations := pflag.String("migrations", "", "migrations directory (overrides MIGRATIONS_PATH)")
	noBot := pflag.Bool("no-bot", false, "run without the Telegram bot")
	pflag.Parse()

	cfg, err := config.Load(*envFile)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if *migrations != "" {
		cfg.MigrationsPath = *migrations
	}

	l := logger.New(cfg.LogLevel)
	l.Info("Starting Croowa...")

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		l.Info("Received shutdown signal...")
		cancel()
	}()

	// Database
	db, err := config.NewDatabase(ctx, cfg.DatabaseURL, l)
	if err != nil {
		l.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Run migrations
	if err := db.Migrate(cfg.MigrationsPath); err != nil {
		l.Fatalf("Failed to run migrations: %v", err)
	}

	// Metrics
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	// Repositories
	repos := service.Repositories{
		Users:         postgres.NewUserRepository(db.DB),
		Profiles:      postgres.NewProfileRepository(db.DB),
		Groups:        postgres.NewGroupRepository(db.DB),
		Goals:         postgres.NewGoalRepository(db.DB),
		Contributions: postgres.NewContributionRepository(db.DB),
		Milestones:    postgres.NewMilestoneRepository(db.DB),
		Chat:          postgres.NewChatRepository(db.DB),
		Gamification:  postgres.NewGamificationRepository(db.DB),
		Achievements:  postgres.NewAchievementRepository(db.DB),
		Reactions:     postgres.NewReactionRepository(db.DB),
		Friends:       postgres.NewFriendRepository(db.DB),
	}

	// Service layer
	svc := service.New(repos, auth.NewIssuer(cfg.JWTSecret, cfg.TokenTTL, nil), l,
		service.WithMetrics(m),
		service.WithCurrency(cfg.Currency),
		service.WithTextEscaper(handlers.Escape),
	)

	// Realtime chat notifications
	hub := realtime.NewHub()
	go func() {
		if err := realtime.Listen(ctx, cfg.DatabaseURL, hub, l); err != nil {
			l.Errorf("Chat listener error: %v", err)
		}
	}()

	// Telegram bot
	if cfg.BotEnabled() && !*noBot {
		bot, err := telegram.NewBot(cfg.TelegramToken, svc.Messages(), m, l)
		if err != nil {
			l.Fatalf("Failed to create Telegram bot: %v", err)
		}

		bot.RegisterCommand("start", handlers.NewStartHandler(svc.Messages(), l))
		bot.RegisterCommand("help", handlers.NewHelpHandler(svc.Messages(), l))

		// Goal handlers
		bot.RegisterCommand("goal", handlers.NewGoalHandler(svc, l))
		bot.RegisterCommand("goals", handlers.NewGoalsHandler(svc, l))
		bot.RegisterCommand("save", handlers.NewSaveHandler(svc, l))
		bot.RegisterCommand("coach", handlers.NewCoachHandler(svc, l))

		// Group handlers
		bot.RegisterCommand("ranking", handlers.NewRankingHandler(svc, l))
		bot.RegisterCommand("top", handlers.NewTopHandler(svc, l))
		bot.RegisterCommand("invite", handlers.NewInviteHandler(svc, l))
		bot.RegisterCommand("join", handlers.NewJoinHandler(svc, l))
		bot.RegisterCommand("me", handlers.NewMeHandler(svc, l))

		// Start coach scheduler
		go svc.StartCoachScheduler(ctx, cfg.CoachInterval, bot.Nudge)

		// Start Telegram bot polling
		go func() {
			if err := bot.Start(ctx); err != nil {
				l.Errorf("Bot error: %v", err)
			}
		}()
	} else {
		l.Warn("Telegram bot disabled, coach nudges will not be sent")
	}

	// Metrics server
	metricsServer := &http.Server{
		Addr:    ":" + cfg.PrometheusPort,
		Handler: metrics.Handler(reg),
	}

	go func() {
		l.Infof("Metrics server listening on :%s", cfg.PrometheusPort)
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			l.Errorf("Metrics server error: %v", err)
		}
	}()

	// Start HTTP server for the web client
	apiServer := api.NewServer(svc, hub, m, l)
	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           apiServer.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		l.Infof("HTTP server listening on :%s", cfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			l.Errorf("HTTP server error: %v", err)
		}
	}()

	l.Info("Croowa started successfully")

	<-ctx.Done()

	l.Info("Shutting down HTTP servers...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		l.Errorf("HTTP server shutdown error: %v", err)
	}
	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		l.Errorf("Metrics server shutdown error: %v", err)
	}

	l.Info("Croowa stopped")
}
