package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"studysmart/internal/config"
	"studysmart/internal/logger"
	"studysmart/internal/notify"
	"studysmart/internal/plan"
	"studysmart/internal/repository"
	"studysmart/internal/service"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	zl, err := logger.New(logger.Config(cfg.Logger))
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer zl.Sync()

	var store repository.Store
	switch cfg.Storage.Backend {
	case config.BackendBolt:
		store, err = repository.OpenBolt(cfg.Storage.Path)
	default:
		store, err = repository.OpenSQLite(cfg.Storage.Path)
	}
	if err != nil {
		log.Fatalf("storage: %v", err)
	}
	defer store.Close()

	var notifier notify.Notifier = notify.Noop{}
	if cfg.Telegram.Token != "" {
		tg, err := notify.NewTelegram(cfg.Telegram.Token, cfg.Telegram.ChatID)
		if err != nil {
			zl.Warn("telegram notifier unavailable", zap.Error(err))
		} else {
			notifier = tg
		}
	}

	taskSvc := service.NewTaskService(store, zl)
	discipline := service.NewDisciplineService(store, store, zl)
	report := service.NewReportService(taskSvc, discipline, plan.Config(cfg.Planner), zl)

	// The missed-task sweep runs once at startup; the watermark makes
	// repeat launches on the same day a no-op.
	evalCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	if err := discipline.EvaluateDailyProgress(evalCtx); err != nil {
		zl.Warn("daily evaluation failed", zap.Error(err))
	}
	cancel()

	scheduler := service.NewCron(time.Local)
	if _, err := scheduler.ScheduleDaily(cfg.Jobs.EvaluationTime, func() {
		jobCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := discipline.EvaluateDailyProgress(jobCtx); err != nil {
			zl.Warn("daily evaluation failed", zap.Error(err))
		}
	}); err != nil {
		log.Fatalf("schedule evaluation: %v", err)
	}
	if _, err := scheduler.ScheduleDaily(cfg.Jobs.ReportTime, func() {
		jobCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		summary, err := report.DailySummary(jobCtx, time.Now())
		if err != nil {
			zl.Warn("daily report failed", zap.Error(err))
			return
		}
		if err := notifier.Send(jobCtx, "", summary); err != nil {
			zl.Warn("daily report delivery failed", zap.Error(err))
		}
	}); err != nil {
		log.Fatalf("schedule report: %v", err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	zl.Info("studysmart started",
		zap.String("backend", cfg.Storage.Backend),
		zap.String("start_time", cfg.Planner.StartTime),
		zap.Float64("max_daily_hours", cfg.Planner.MaxDailyHours))

	<-ctx.Done()
	zl.Info("shutdown complete")
}
