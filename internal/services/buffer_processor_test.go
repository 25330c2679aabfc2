package services

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/tasktrack/domain"
	"github.com/fastygo/tasktrack/internal/infrastructure/buffer"
	"github.com/fastygo/tasktrack/usecase/usecasetest"
)

func openBuffer(t *testing.T) *buffer.Store {
	t.Helper()
	store, err := buffer.Open(filepath.Join(t.TempDir(), "buffer.db"), "", 0)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func sampleTask(id string) domain.Task {
	return domain.Task{
		ID: id, ProjectID: "p1", Name: "Buffered", Status: domain.StatusToDo,
		StartDate: day(1), Deadline: day(5),
	}
}

func TestBufferBridge_WritesThroughWhenOnline(t *testing.T) {
	store := openBuffer(t)
	tasks := newFakeTaskRepo()
	activities := &usecasetest.Activities{}
	bp := NewBufferProcessor(store, staticHealth(true), tasks, newFakeMemberRepo(), activities, nil, ProcessorConfig{})
	bridge := NewBufferBridge(bp)

	task := sampleTask("t1")
	entry := domain.NewActivity("p1", domain.EntityTask, "t1", "created", "u1", nil)
	require.NoError(t, bridge.BufferTask(context.Background(), buffer.OperationCreate, &task, entry))

	_, err := tasks.GetByID(context.Background(), "t1")
	assert.NoError(t, err)
	assert.Zero(t, bp.Size())
	assert.Equal(t, []string{"created"}, activities.Actions())
}

func TestBufferBridge_EnqueuesWhenOffline(t *testing.T) {
	store := openBuffer(t)
	members := newFakeMemberRepo()
	activities := &usecasetest.Activities{}
	health := &toggleHealth{}
	bp := NewBufferProcessor(store, health, newFakeTaskRepo(), members, activities, nil, ProcessorConfig{})
	bridge := NewBufferBridge(bp)

	member := domain.ProjectMember{ID: "m1", ProjectID: "p1", UserID: "u1", Email: "a@b.io", Role: domain.RoleTester}
	entry := domain.NewActivity("p1", domain.EntityMember, "m1", "added", "u-owner", nil)
	require.NoError(t, bridge.BufferMember(context.Background(), buffer.OperationCreate, &member, entry))
	assert.Equal(t, 1, bp.Size())
	assert.Empty(t, activities.Actions())

	items, err := store.GetBatch(1)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "m1", items[0].RecordID)
	assert.Equal(t, buffer.EntityMember, items[0].Entity)
	assert.Equal(t, buffer.PriorityMember, items[0].Priority)

	assert.Equal(t, "u-owner", items[0].ActorID)

	// nothing is replayed while offline
	require.NoError(t, bp.Drain(context.Background()))
	assert.Equal(t, 1, bp.Size())
	assert.Empty(t, activities.Actions())

	health.online = true
	require.NoError(t, bp.Drain(context.Background()))
	assert.Zero(t, bp.Size())
	_, err = members.GetByID(context.Background(), "m1")
	assert.NoError(t, err)
	require.Len(t, activities.Entries, 1)
	assert.Equal(t, "added", activities.Entries[0].Action)
	assert.Equal(t, "u-owner", activities.Entries[0].ActorID)
}

func TestBufferProcessor_DrainReplaysAndRetries(t *testing.T) {
	store := openBuffer(t)
	tasks := newFakeTaskRepo(sampleTask("t2"))
	bp := NewBufferProcessor(store, staticHealth(true), tasks, newFakeMemberRepo(), nil, nil, ProcessorConfig{MaxRetries: 2})

	created := sampleTask("t1")
	payload, err := json.Marshal(created)
	require.NoError(t, err)
	require.NoError(t, store.Enqueue(buffer.Item{
		RecordID: "t1", Entity: buffer.EntityTask, Operation: buffer.OperationCreate,
		Data: payload, Priority: buffer.PriorityTask,
	}))
	require.NoError(t, store.Enqueue(buffer.Item{
		RecordID: "t2", Entity: buffer.EntityTask, Operation: buffer.OperationDelete,
		Priority: buffer.PriorityTask, Timestamp: time.Now().Add(time.Second),
	}))

	flaky := sampleTask("t3")
	tasks.failIDs["t3"] = errStoreDown
	payload, err = json.Marshal(flaky)
	require.NoError(t, err)
	require.NoError(t, store.Enqueue(buffer.Item{
		RecordID: "t3", Entity: buffer.EntityTask, Operation: buffer.OperationCreate,
		Data: payload, Priority: buffer.PriorityTask, Timestamp: time.Now().Add(2 * time.Second),
	}))

	require.NoError(t, bp.Drain(context.Background()))
	_, err = tasks.GetByID(context.Background(), "t1")
	assert.NoError(t, err)
	_, err = tasks.GetByID(context.Background(), "t2")
	assert.ErrorIs(t, err, domain.ErrTaskNotFound)
	assert.Equal(t, 1, bp.Size())

	require.NoError(t, bp.Drain(context.Background()))
	assert.Zero(t, bp.Size())
}

func TestBufferProcessor_DropsPermanentFailures(t *testing.T) {
	store := openBuffer(t)
	bp := NewBufferProcessor(store, staticHealth(true), newFakeTaskRepo(), newFakeMemberRepo(), nil, nil, ProcessorConfig{MaxRetries: 5})

	require.NoError(t, store.Enqueue(buffer.Item{
		RecordID: "gone", Entity: buffer.EntityTask, Operation: buffer.OperationDelete,
	}))
	require.NoError(t, bp.Drain(context.Background()))
	assert.Zero(t, bp.Size())
}

func TestBufferProcessor_ImmediateDomainErrorIsReturned(t *testing.T) {
	store := openBuffer(t)
	bp := NewBufferProcessor(store, staticHealth(true), newFakeTaskRepo(), newFakeMemberRepo(), nil, nil, ProcessorConfig{})

	err := bp.BufferOperation(context.Background(), buffer.Item{
		RecordID: "missing", Entity: buffer.EntityTask, Operation: buffer.OperationDelete,
	})
	assert.ErrorIs(t, err, domain.ErrTaskNotFound)
	assert.Zero(t, bp.Size())
}
