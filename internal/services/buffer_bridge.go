package services

import (
	"context"
	"encoding/json"

	"github.com/fastygo/tasktrack/domain"
	"github.com/fastygo/tasktrack/internal/infrastructure/buffer"
	"github.com/fastygo/tasktrack/usecase"
)

type BufferBridge struct {
	processor *BufferProcessor
}

func NewBufferBridge(processor *BufferProcessor) *BufferBridge {
	return &BufferBridge{processor: processor}
}

func (b *BufferBridge) BufferTask(ctx context.Context, operation string, task *domain.Task, activity domain.Activity) error {
	if b.processor == nil || task == nil {
		return domain.ErrInvalidPayload
	}
	payload, err := json.Marshal(task)
	if err != nil {
		return err
	}
	entry, err := json.Marshal(activity)
	if err != nil {
		return err
	}
	return b.processor.BufferOperation(ctx, buffer.Item{
		RecordID:  task.ID,
		ActorID:   activity.ActorID,
		Entity:    buffer.EntityTask,
		Operation: operation,
		Data:      payload,
		Priority:  buffer.PriorityTask,
		Activity:  entry,
	})
}

func (b *BufferBridge) BufferMember(ctx context.Context, operation string, member *domain.ProjectMember, activity domain.Activity) error {
	if b.processor == nil || member == nil {
		return domain.ErrInvalidPayload
	}
	payload, err := json.Marshal(member)
	if err != nil {
		return err
	}
	entry, err := json.Marshal(activity)
	if err != nil {
		return err
	}
	return b.processor.BufferOperation(ctx, buffer.Item{
		RecordID:  member.ID,
		ActorID:   activity.ActorID,
		Entity:    buffer.EntityMember,
		Operation: operation,
		Data:      payload,
		Priority:  buffer.PriorityMember,
		Activity:  entry,
	})
}

var _ usecase.OperationBuffer = (*BufferBridge)(nil)
