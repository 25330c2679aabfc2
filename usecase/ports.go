package usecase

import (
	"context"

	"github.com/fastygo/tasktrack/domain"
)

const (
	OperationCreate = "create"
	OperationUpdate = "update"
	OperationDelete = "delete"
)

// OperationBuffer defers record-store writes while the store is unreachable,
// keeping use cases storage-agnostic. activity is appended to the audit log
// once the write reaches the store.
type OperationBuffer interface {
	BufferTask(ctx context.Context, operation string, task *domain.Task, activity domain.Activity) error
	BufferMember(ctx context.Context, operation string, member *domain.ProjectMember, activity domain.Activity) error
}

// Recorder counts lifecycle outcomes. *metrics.Metrics implements it.
type Recorder interface {
	Accepted(operation string)
	Rejected(operation, code string)
	// Buffered counts requests whose write was deferred to the offline buffer.
	Buffered(operation string)
}

type nopRecorder struct{}

func (nopRecorder) Accepted(string)         {}
func (nopRecorder) Rejected(string, string) {}
func (nopRecorder) Buffered(string)         {}

// NopRecorder discards every observation.
var NopRecorder Recorder = nopRecorder{}
