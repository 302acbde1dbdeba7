package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"price-tracker/config"
	"price-tracker/internal/api"
	"price-tracker/internal/bot"
	"price-tracker/internal/database"
	"price-tracker/internal/monitor"
	"price-tracker/internal/scraper"
	"price-tracker/internal/tracker"
)

// repository is a tracker store the health check can ping
type repository interface {
	tracker.Repository
	Ping(ctx context.Context) error
	Close() error
}

func main() {
	if err := godotenv.Load(); err != nil {
		logrus.Info(".env file not found, using system environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load configuration")
	}
	setupLogging(cfg.Log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repo, err := openRepository(ctx, cfg.Storage)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to initialize storage")
	}
	defer repo.Close()

	registry := scraper.NewRegistry(scraper.NewFetcher(cfg.Scraper.Timeout))
	service := tracker.NewService(repo, registry)

	var notifier monitor.Notifier
	if cfg.Telegram.BotToken != "" {
		botAPI, err := bot.Init(cfg.Telegram.BotToken)
		if err != nil {
			logrus.WithError(err).Error("Telegram bot disabled")
		} else {
			telegramBot := bot.New(botAPI, service)
			go telegramBot.Run(ctx, botAPI)
			notifier = telegramBot
		}
	}

	if cfg.Monitor.Interval > 0 {
		go monitor.New(service, notifier, cfg.Monitor.Interval).Start(ctx)
	}

	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}
	if cfg.AuthDisabled() {
		logrus.Warn("Telegram authentication is disabled, all requests act as the development user")
	}

	router := api.NewRouter(service, repo, api.Options{
		BotToken:           cfg.Telegram.BotToken,
		InitDataMaxAge:     cfg.Telegram.InitDataMaxAge,
		SkipAuth:           cfg.AuthDisabled(),
		RateLimitPerMinute: cfg.Server.RateLimitPerMinute,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.Scraper.Timeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logrus.WithField("port", cfg.Server.Port).Info("Starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.WithError(err).Fatal("Failed to start server")
		}
	}()

	<-ctx.Done()
	logrus.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logrus.WithError(err).Error("Server forced to shutdown")
	}
	logrus.Info("Server exited")
}

func openRepository(ctx context.Context, cfg config.StorageConfig) (repository, error) {
	switch cfg.Driver {
	case config.StorageFirestore:
		return database.NewFirestore(ctx, cfg.FirestoreProjectID, cfg.FirestoreCredentialsFile)
	default:
		return database.New(cfg.DatabasePath)
	}
}

func setupLogging(cfg config.LogConfig) {
	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)

	if cfg.Format == "json" {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
}
