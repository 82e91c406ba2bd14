package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/greenshield-crm/greenshield-crm/internal/app"
	"github.com/greenshield-crm/greenshield-crm/internal/notify"
	"github.com/greenshield-crm/greenshield-crm/internal/platform/cache"
	"github.com/greenshield-crm/greenshield-crm/internal/platform/db"
	"github.com/greenshield-crm/greenshield-crm/internal/renewals"
	"github.com/greenshield-crm/greenshield-crm/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
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
		logger.Warn("redis unavailable, summary cache disabled", slog.Any("error", err))
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

	renewalRepo := renewals.NewRepository(pool)
	renewalCache := renewals.NewCache(redisClient, cfg.SummaryCacheTTL)
	renewalService := renewals.NewService(renewalRepo, renewalCache, cfg.Location())

	sender := notify.NewLogSender(logger)
	scanJob := jobs.NewReminderScanJob(renewalService, sender, logger)

	scanTask, err := jobs.NewReminderScanTask(jobs.ReminderScanPayload{LeadDays: cfg.ReminderLeadDays})
	if err != nil {
		logger.Error("build reminder scan task", slog.Any("error", err))
		os.Exit(1)
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskRenewalReminderScan, Handler: scanJob.Handle},
		},
		Cron: []jobs.CronRegistration{
			{Spec: "0 6 * * *", Task: scanTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	if err := worker.Run(ctx); err != nil && err != context.Canceled {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
