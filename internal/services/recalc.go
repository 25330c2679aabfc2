package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/fastygo/tasktrack/domain"
	"github.com/fastygo/tasktrack/internal/metrics"
	"github.com/fastygo/tasktrack/repository"
	"github.com/fastygo/tasktrack/usecase/lifecycle"
)

// RecalcConfig controls the periodic progress and priority recalculation.
type RecalcConfig struct {
	Schedule string
	PageSize int
	LockKey  string
	LockTTL  time.Duration
	Timeout  time.Duration
}

// RecalcSummary reports one run over the task population.
type RecalcSummary struct {
	Scanned   int
	Touched   int
	Failed    int
	FailedIDs []string
	StartedAt time.Time
	Took      time.Duration
}

// Recalculator re-derives progress, priority and lifecycle timestamps for
// every stored task and writes back the ones that changed. A failing record
// is logged and skipped; it never aborts the run.
type Recalculator struct {
	tasks   repository.TaskRepository
	locker  repository.Locker
	metrics *metrics.Metrics
	logger  *zap.Logger
	cfg     RecalcConfig
	now     func() time.Time
	cron    *cron.Cron
}

// RecalcOption customizes a Recalculator.
type RecalcOption func(*Recalculator)

// WithRecalcClock pins the time source, mostly for tests.
func WithRecalcClock(now func() time.Time) RecalcOption {
	return func(r *Recalculator) { r.now = now }
}

// WithRecalcLocker serializes runs across processes.
func WithRecalcLocker(locker repository.Locker) RecalcOption {
	return func(r *Recalculator) { r.locker = locker }
}

// WithRecalcMetrics records run outcomes.
func WithRecalcMetrics(m *metrics.Metrics) RecalcOption {
	return func(r *Recalculator) { r.metrics = m }
}

func NewRecalculator(tasks repository.TaskRepository, logger *zap.Logger, cfg RecalcConfig, opts ...RecalcOption) *Recalculator {
	if cfg.PageSize <= 0 {
		cfg.PageSize = 100
	}
	if cfg.LockKey == "" {
		cfg.LockKey = "tasktrack:recalc"
	}
	if cfg.LockTTL <= 0 {
		cfg.LockTTL = 10 * time.Minute
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &Recalculator{
		tasks:  tasks,
		logger: logger,
		cfg:    cfg,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Start schedules periodic runs on cfg.Schedule.
func (r *Recalculator) Start() error {
	if r.cfg.Schedule == "" {
		return errors.New("recalculation schedule is empty")
	}
	r.cron = newScheduler(r.logger)
	if _, err := r.cron.AddFunc(r.cfg.Schedule, r.scheduled); err != nil {
		return fmt.Errorf("schedule recalculation %q: %w", r.cfg.Schedule, err)
	}
	r.cron.Start()
	r.logger.Info("recalculation scheduled", zap.String("schedule", r.cfg.Schedule))
	return nil
}

// Stop waits for a running pass to finish or ctx to expire.
func (r *Recalculator) Stop(ctx context.Context) error {
	if r.cron == nil {
		return nil
	}
	stopCtx := r.cron.Stop()
	select {
	case <-stopCtx.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *Recalculator) scheduled() {
	ctx, cancel := context.WithTimeout(context.Background(), r.cfg.Timeout)
	defer cancel()
	if _, err := r.Run(ctx); err != nil {
		if errors.Is(err, domain.ErrLockHeld) {
			r.logger.Info("recalculation skipped, another run holds the lock")
			return
		}
		r.logger.Error("recalculation run failed", zap.Error(err))
	}
}

// Run performs one pass. "now" is fixed for the whole pass so every task is
// judged against the same instant. The returned error covers only failures
// that stopped the pass; per-task failures are in the summary.
func (r *Recalculator) Run(ctx context.Context) (RecalcSummary, error) {
	summary := RecalcSummary{StartedAt: r.now()}

	if r.locker != nil {
		release, err := r.locker.Acquire(ctx, r.cfg.LockKey, r.cfg.LockTTL)
		if err != nil {
			return summary, err
		}
		defer func() {
			if err := release(context.Background()); err != nil {
				r.logger.Warn("failed to release recalculation lock", zap.Error(err))
			}
		}()
	}

	now := summary.StartedAt
	offset := 0
	for {
		if err := ctx.Err(); err != nil {
			return r.finish(summary), err
		}
		page, err := r.tasks.List(ctx, repository.TaskFilter{Limit: r.cfg.PageSize, Offset: offset})
		if err != nil {
			return r.finish(summary), fmt.Errorf("list tasks at offset %d: %w", offset, err)
		}
		if len(page) == 0 {
			break
		}
		for _, task := range page {
			summary.Scanned++
			touched, err := r.recalculate(ctx, task, now)
			switch {
			case err != nil:
				summary.Failed++
				summary.FailedIDs = append(summary.FailedIDs, task.ID)
				r.logger.Warn("task recalculation failed",
					zap.String("task_id", task.ID),
					zap.String("project_id", task.ProjectID),
					zap.Error(err))
			case touched:
				summary.Touched++
			}
		}
		offset += len(page)
	}

	summary = r.finish(summary)
	r.logger.Info("recalculation finished",
		zap.Int("scanned", summary.Scanned),
		zap.Int("touched", summary.Touched),
		zap.Int("failed", summary.Failed),
		zap.Duration("took", summary.Took))
	return summary, nil
}

func (r *Recalculator) finish(summary RecalcSummary) RecalcSummary {
	summary.Took = time.Since(summary.StartedAt)
	if summary.Took < 0 {
		summary.Took = 0
	}
	r.metrics.RecalcRun(summary.Scanned, summary.Touched, summary.Failed, summary.Took)
	return summary
}

// recalculate writes back task when its derived fields moved. A version
// conflict means a user edit landed first; the fresh row is recalculated once.
func (r *Recalculator) recalculate(ctx context.Context, task domain.Task, now time.Time) (bool, error) {
	updated, changed := lifecycle.RecalculateAt(task, now)
	if !changed {
		return false, nil
	}
	err := r.tasks.Update(ctx, &updated)
	if !errors.Is(err, domain.ErrVersionConflict) {
		return err == nil, err
	}

	fresh, err := r.tasks.GetByID(ctx, task.ID)
	if err != nil {
		return false, err
	}
	updated, changed = lifecycle.RecalculateAt(*fresh, now)
	if !changed {
		return false, nil
	}
	if err := r.tasks.Update(ctx, &updated); err != nil {
		return false, err
	}
	return true, nil
}
