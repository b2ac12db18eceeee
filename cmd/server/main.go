package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/anonto42/iblue/backend/internal/router"
	"github.com/anonto42/iblue/backend/pkg/circuitbreaker"
	"github.com/anonto42/iblue/backend/pkg/config"
	"github.com/anonto42/iblue/backend/pkg/firebase"
	"github.com/anonto42/iblue/backend/pkg/llm"
	"github.com/anonto42/iblue/backend/pkg/logger"
	"github.com/anonto42/iblue/backend/pkg/mailer"
	iredis "github.com/anonto42/iblue/backend/pkg/redis"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

func main() {
	cfg := config.Load()

	zl, err := logger.New(cfg.Env)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zl.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := config.InitDB(cfg, zl)
	if err != nil {
		zl.Fatal("Failed to initialize databases", zap.Error(err))
	}
	defer db.CloseDB()

	firebaseApp, err := firebase.InitFirebase(ctx, cfg.FirebaseCredentialsPath)
	if err != nil {
		zl.Fatal("Failed to initialize Firebase", zap.Error(err))
	}

	dialer := gomail.NewDialer(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.Username, cfg.SMTP.Password)
	smtpMailer := mailer.NewSMTPMailer(dialer, cfg.SMTP.From, cfg.SMTP.Domain, circuitbreaker.New("smtp", circuitbreaker.DefaultConfig()))
	llmClient := llm.NewClient(cfg.LLM.APIKey, cfg.LLM.BaseURL, cfg.LLM.Model, circuitbreaker.New("llm", circuitbreaker.DefaultConfig()))

	e := echo.New()
	e.HideBanner = true
	config.SetupMiddleware(e, zl)

	workers, err := router.SetupRoutes(ctx, e, router.Deps{
		Config:    cfg,
		Postgres:  db.Postgres,
		Mongo:     db.Mongo,
		Auth:      firebaseApp.AuthClient,
		Messaging: firebaseApp.MessagingClient,
		Mailer:    smtpMailer,
		LLM:       llmClient,
		Deduper:   iredis.NewDeduper(db.Redis, cfg.DedupeTTL, zl.Named("dedupe")),
		Logger:    zl,
	})
	if err != nil {
		zl.Fatal("Failed to set up routes", zap.Error(err))
	}

	var wg sync.WaitGroup
	if workers.Dispatcher != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			workers.Dispatcher.Start(ctx)
		}()
	}
	if workers.AutoPoster != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			workers.AutoPoster.Start(ctx)
		}()
	}

	metricsSrv := &http.Server{Addr: ":" + cfg.MetricsPort, Handler: promhttp.Handler()}
	go func() {
		zl.Info("Metrics server starting", zap.String("port", cfg.MetricsPort))
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zl.Error("Metrics server failed", zap.Error(err))
		}
	}()

	go func() {
		zl.Info("HTTP server starting", zap.String("port", cfg.Port))
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zl.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	zl.Info("Shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		zl.Error("HTTP server shutdown error", zap.Error(err))
	}
	if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
		zl.Error("Metrics server shutdown error", zap.Error(err))
	}
	wg.Wait()
	for _, d := range workers.Detached {
		d.Wait()
	}

	zl.Info("Shutdown complete")
}
