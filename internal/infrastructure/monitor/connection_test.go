package monitor

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/fastygo/tasktrack/internal/infrastructure/buffer"
)

func openBuffer(t *testing.T, capacity int) *buffer.Store {
	t.Helper()
	store, err := buffer.Open(filepath.Join(t.TempDir(), "buffer.db"), "", capacity)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestMonitor_WithoutStoresIsOffline(t *testing.T) {
	store := openBuffer(t, 0)

	m := New(0, nil, store, RecordStore(nil), RunLock(nil), WriteBuffer(store))
	assert.False(t, m.Healthy(), "unchecked monitor")
	m.refresh()

	status := m.GetStatus()
	assert.False(t, status.OK(ProbeRecordStore))
	assert.Equal(t, "not configured", status.Probes[ProbeRecordStore].Error)
	assert.False(t, status.OK(ProbeRunLock))
	assert.True(t, status.OK(ProbeWriteBuffer))
	assert.Zero(t, status.PendingWrites)
	assert.False(t, status.LastCheck.IsZero())
	assert.False(t, m.IsOnline())
	assert.False(t, m.Healthy())

	m.Stop()
	assert.NotPanics(t, m.Stop)
}

func TestMonitor_RunLockIsNotCritical(t *testing.T) {
	store := openBuffer(t, 0)
	up := Probe{Name: ProbeRecordStore, Critical: true, Check: func(context.Context) error { return nil }}

	m := New(0, nil, store, up, RunLock(nil), WriteBuffer(store))
	m.refresh()

	assert.True(t, m.IsOnline())
	assert.False(t, m.GetStatus().OK(ProbeRunLock))
	assert.True(t, m.Healthy())
}

func TestMonitor_FullWriteBufferIsUnhealthy(t *testing.T) {
	store := openBuffer(t, 2)
	require.NoError(t, store.Enqueue(buffer.Item{ID: "w1"}))
	up := Probe{Name: ProbeRecordStore, Critical: true, Check: func(context.Context) error { return nil }}

	m := New(0, nil, store, up, WriteBuffer(store))
	m.refresh()
	assert.True(t, m.Healthy())
	assert.Equal(t, 1, m.GetStatus().PendingWrites)
	assert.Equal(t, 2, m.GetStatus().BufferCapacity)

	require.NoError(t, store.Enqueue(buffer.Item{ID: "w2"}))
	m.refresh()

	status := m.GetStatus()
	assert.False(t, status.OK(ProbeWriteBuffer))
	assert.Contains(t, status.Probes[ProbeWriteBuffer].Error, "2 of 2")
	assert.Equal(t, 2, status.PendingWrites)
	assert.False(t, m.Healthy())
	assert.True(t, m.IsOnline(), "replay still possible")
}

func TestMonitor_RecordsProbeFlips(t *testing.T) {
	down := true
	flaky := Probe{Name: ProbeRecordStore, Critical: true, Check: func(context.Context) error {
		if down {
			return errors.New("connection refused")
		}
		return nil
	}}

	core, logs := observer.New(zap.WarnLevel)
	m := New(0, zap.New(core), nil, flaky)
	m.refresh()
	assert.False(t, m.IsOnline())
	assert.Zero(t, logs.Len(), "first check has nothing to compare against")

	down = false
	m.refresh()
	assert.True(t, m.IsOnline())
	assert.Empty(t, m.GetStatus().Probes[ProbeRecordStore].Error)

	entries := logs.FilterMessage("probe state changed").AllUntimed()
	require.Len(t, entries, 1)
	assert.Equal(t, ProbeRecordStore, entries[0].ContextMap()["probe"])
	assert.Equal(t, true, entries[0].ContextMap()["ok"])
}
