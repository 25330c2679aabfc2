package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/fastygo/tasktrack/domain"
	"github.com/fastygo/tasktrack/internal/infrastructure/buffer"
	"github.com/fastygo/tasktrack/repository"
)

// ConnectionHealth abstracts the connection monitor functionality.
type ConnectionHealth interface {
	IsOnline() bool
}

// ProcessorConfig controls how frequently the buffer is drained.
type ProcessorConfig struct {
	Interval   time.Duration
	BatchSize  int
	MaxRetries int
	Retention  time.Duration
}

// BufferProcessor replays buffered task and member writes against the record store.
type BufferProcessor struct {
	store      *buffer.Store
	monitor    ConnectionHealth
	taskRepo   repository.TaskRepository
	memberRepo repository.MemberRepository
	activities repository.ActivityRepository
	logger     *zap.Logger
	cron       *cron.Cron
	cfg        ProcessorConfig
}

func NewBufferProcessor(
	store *buffer.Store,
	monitor ConnectionHealth,
	taskRepo repository.TaskRepository,
	memberRepo repository.MemberRepository,
	activities repository.ActivityRepository,
	logger *zap.Logger,
	cfg ProcessorConfig,
) *BufferProcessor {
	if cfg.Interval <= 0 {
		cfg.Interval = 30 * time.Second
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 50
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &BufferProcessor{
		store:      store,
		monitor:    monitor,
		taskRepo:   taskRepo,
		memberRepo: memberRepo,
		activities: activities,
		logger:     logger,
		cfg:        cfg,
	}
}

// Start schedules draining and retention cleanup.
func (bp *BufferProcessor) Start() error {
	if bp == nil || bp.store == nil {
		return nil
	}
	bp.cron = newScheduler(bp.logger)

	schedule := fmt.Sprintf("@every %ds", int(bp.cfg.Interval.Seconds()))
	if _, err := bp.cron.AddFunc(schedule, bp.tick); err != nil {
		return fmt.Errorf("schedule buffer drain: %w", err)
	}
	bp.cron.Start()
	bp.logger.Info("buffer processor started", zap.Duration("interval", bp.cfg.Interval))
	return nil
}

// Stop gracefully stops the scheduler.
func (bp *BufferProcessor) Stop(ctx context.Context) error {
	if bp == nil || bp.cron == nil {
		return nil
	}
	stopCtx := bp.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-ctx.Done():
		return ctx.Err()
	}
	bp.logger.Info("buffer processor stopped")
	return nil
}

func (bp *BufferProcessor) tick() {
	ctx, cancel := context.WithTimeout(context.Background(), bp.cfg.Interval)
	defer cancel()
	if err := bp.Drain(ctx); err != nil {
		bp.logger.Error("buffer drain failed", zap.Error(err))
	}
	if bp.cfg.Retention > 0 {
		removed, err := bp.store.Cleanup(time.Now().Add(-bp.cfg.Retention))
		if err != nil {
			bp.logger.Warn("buffer cleanup failed", zap.Error(err))
		} else if removed > 0 {
			bp.logger.Warn("expired buffer items dropped", zap.Int("count", removed))
		}
	}
}

// Drain processes one batch of buffered items synchronously.
func (bp *BufferProcessor) Drain(ctx context.Context) error {
	if bp == nil || bp.store == nil {
		return nil
	}
	if bp.monitor != nil && !bp.monitor.IsOnline() {
		bp.logger.Debug("skipping buffer drain (offline)")
		return nil
	}

	items, err := bp.store.GetBatch(bp.cfg.BatchSize)
	if err != nil {
		return err
	}

	for _, item := range items {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		err := bp.processItem(ctx, item)
		if err == nil {
			if err := bp.store.Remove(item); err != nil {
				bp.logger.Warn("failed to purge processed buffer item", zap.Error(err))
			}
			bp.recordActivity(ctx, item)
			continue
		}

		log := bp.logger.With(
			zap.String("item_id", item.ID),
			zap.String("record_id", item.RecordID),
			zap.String("entity", item.Entity),
			zap.String("operation", item.Operation),
			zap.Error(err))

		item.Retries++
		if permanent(err) || item.Retries >= bp.cfg.MaxRetries {
			log.Warn("dropping buffer item", zap.Int("retries", item.Retries))
			_ = bp.store.Remove(item)
			continue
		}

		log.Info("buffer item replay failed, requeueing", zap.Int("retries", item.Retries))
		if err := bp.store.Requeue(item); err != nil {
			bp.logger.Error("failed to requeue buffer item", zap.Error(err))
		}
	}
	return nil
}

// BufferOperation attempts to run the operation immediately and falls back to persisting it.
func (bp *BufferProcessor) BufferOperation(ctx context.Context, item buffer.Item) error {
	if bp == nil || bp.store == nil {
		return fmt.Errorf("buffer processor not configured")
	}

	if bp.monitor == nil || bp.monitor.IsOnline() {
		err := bp.processItem(ctx, item)
		if err == nil {
			bp.recordActivity(ctx, item)
			return nil
		}
		if permanent(err) {
			return err
		}
		bp.logger.Warn("immediate processing failed, buffering", zap.Error(err))
	}
	return bp.store.Enqueue(item)
}

// Size returns the number of buffered items.
func (bp *BufferProcessor) Size() int {
	if bp == nil || bp.store == nil {
		return 0
	}
	size, err := bp.store.Size()
	if err != nil {
		return 0
	}
	return size
}

func (bp *BufferProcessor) processItem(ctx context.Context, item buffer.Item) error {
	switch item.Entity {
	case buffer.EntityTask:
		if item.Operation == buffer.OperationDelete {
			return bp.taskRepo.Delete(ctx, item.RecordID)
		}
		var task domain.Task
		if err := json.Unmarshal(item.Data, &task); err != nil {
			return domain.WrapError(domain.ErrCodeInvalid, "decode buffered task", err)
		}
		switch item.Operation {
		case buffer.OperationCreate:
			_, err := bp.taskRepo.Create(ctx, &task)
			return err
		case buffer.OperationUpdate:
			return bp.taskRepo.Update(ctx, &task)
		}

	case buffer.EntityMember:
		if item.Operation == buffer.OperationDelete {
			return bp.memberRepo.Delete(ctx, item.RecordID)
		}
		var member domain.ProjectMember
		if err := json.Unmarshal(item.Data, &member); err != nil {
			return domain.WrapError(domain.ErrCodeInvalid, "decode buffered member", err)
		}
		switch item.Operation {
		case buffer.OperationCreate:
			_, err := bp.memberRepo.Create(ctx, &member)
			return err
		case buffer.OperationUpdate:
			return bp.memberRepo.Update(ctx, &member)
		}
	}
	return domain.NewError(domain.ErrCodeInvalid,
		fmt.Sprintf("unsupported buffer item %s/%s", item.Entity, item.Operation))
}

// recordActivity appends the audit entry carried by a write that has landed.
func (bp *BufferProcessor) recordActivity(ctx context.Context, item buffer.Item) {
	if bp.activities == nil || len(item.Activity) == 0 {
		return
	}
	var activity domain.Activity
	if err := json.Unmarshal(item.Activity, &activity); err != nil {
		bp.logger.Warn("dropping undecodable buffered activity", zap.String("item_id", item.ID), zap.Error(err))
		return
	}
	if err := bp.activities.Append(ctx, activity); err != nil {
		bp.logger.Warn("failed to append replayed activity",
			zap.String("entity", activity.Entity),
			zap.String("entity_id", activity.EntityID),
			zap.String("action", activity.Action),
			zap.Error(err))
	}
}

// permanent reports errors that replaying cannot fix.
func permanent(err error) bool {
	var derr *domain.Error
	if !errors.As(err, &derr) {
		return false
	}
	return derr.Code != domain.ErrCodeInternal
}
