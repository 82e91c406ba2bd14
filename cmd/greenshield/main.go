package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/greenshield-crm/greenshield-crm/internal/app"
	"github.com/greenshield-crm/greenshield-crm/internal/clients"
	"github.com/greenshield-crm/greenshield-crm/internal/dashboard"
	"github.com/greenshield-crm/greenshield-crm/internal/inquiries"
	"github.com/greenshield-crm/greenshield-crm/internal/jobcards"
	"github.com/greenshield-crm/greenshield-crm/internal/platform/cache"
	"github.com/greenshield-crm/greenshield-crm/internal/platform/db"
	"github.com/greenshield-crm/greenshield-crm/internal/renewals"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Warn("redis unavailable, caching disabled", slog.Any("error", err))
		redisClient = nil
	}
	defer func() {
		if redisClient == nil {
			return
		}
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	renewalCache := renewals.NewCache(redisClient, cfg.SummaryCacheTTL)

	clientRepo := clients.NewRepository(pool)
	clientService := clients.NewService(clientRepo)
	clientHandler := clients.NewHandler(logger, clientService)

	renewalRepo := renewals.NewRepository(pool)
	renewalService := renewals.NewService(renewalRepo, renewalCache, cfg.Location())
	renewalHandler := renewals.NewHandler(logger, renewalService)

	jobCardRepo := jobcards.NewRepository(pool)
	jobCardService := jobcards.NewService(jobCardRepo, renewalCache)
	jobCardHandler := jobcards.NewHandler(logger, jobCardService, renewalService)

	inquiryRepo := inquiries.NewRepository(pool)
	inquiryService := inquiries.NewService(inquiryRepo, clientService, jobCardService, renewalService, logger)
	inquiryHandler := inquiries.NewHandler(logger, inquiryService)

	dashboardRepo := dashboard.NewRepository(pool)
	dashboardService := dashboard.NewService(dashboardRepo, jobCardService, renewalService, redisClient, cfg.SummaryCacheTTL)
	dashboardHandler := dashboard.NewHandler(logger, dashboardService)

	router := app.NewRouter(app.RouterParams{
		Logger:           logger,
		Config:           cfg,
		ClientHandler:    clientHandler,
		InquiryHandler:   inquiryHandler,
		JobCardHandler:   jobCardHandler,
		RenewalHandler:   renewalHandler,
		DashboardHandler: dashboardHandler,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
