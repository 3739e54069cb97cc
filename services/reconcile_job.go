package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// StartReconcileScheduler периодически сверяет статистику команд с полным
// пересчетом и дописывает ожидающий снимок в хранилище. Если стартовая загрузка
// не удалась, сначала повторяет ее.
func StartReconcileScheduler(ctx context.Context, svc *TournamentService, interval time.Duration, logger *slog.Logger) (gocron.Scheduler, error) {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	_, err = sched.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			runReconcile(ctx, svc, logger)
		}),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to register reconcile job: %w", err)
	}

	sched.Start()
	logger.Info("reconcile scheduler started", slog.Duration("interval", interval))
	return sched, nil
}

func runReconcile(ctx context.Context, svc *TournamentService, logger *slog.Logger) {
	if svc.PersistenceSuspended() {
		if err := svc.Load(ctx); err != nil {
			logger.Warn("reconcile: stored tournament still unavailable", slog.Any("error", err))
			return
		}
		logger.Info("reconcile: stored tournament recovered, persistence resumed")
	}

	drifts, err := svc.CheckDrift(ctx)
	if err != nil {
		logger.Error("reconcile: drift check failed", slog.Any("error", err))
		return
	}
	for _, d := range drifts {
		logger.Warn("reconcile: corrected team statistics",
			slog.String("team_id", d.TeamID),
			slog.Any("actual", d.Actual),
			slog.Any("expected", d.Expected))
	}

	flushCtx, cancel := context.WithTimeout(ctx, saveTimeout)
	defer cancel()
	if err := svc.Flush(flushCtx); err != nil {
		logger.Error("reconcile: flush failed", slog.Any("error", err))
	}
}
