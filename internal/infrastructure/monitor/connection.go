package monitor

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

const defaultProbeTimeout = 2 * time.Second

// Monitor runs its probes on an interval and keeps the last Status.
type Monitor struct {
	probes  []Probe
	backlog Backlog

	status   Status
	mu       sync.RWMutex
	interval time.Duration
	stopCh   chan struct{}
	stopOnce sync.Once
	logger   *zap.Logger
}

// New builds a Monitor. backlog may be nil when no write buffer is used.
func New(interval time.Duration, logger *zap.Logger, backlog Backlog, probes ...Probe) *Monitor {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Monitor{
		probes:   probes,
		backlog:  backlog,
		interval: interval,
		stopCh:   make(chan struct{}),
		logger:   logger,
	}
}

func (m *Monitor) Start() {
	go m.loop()
}

func (m *Monitor) Stop() {
	m.stopOnce.Do(func() { close(m.stopCh) })
}

// IsOnline reports whether buffered writes can be replayed.
func (m *Monitor) IsOnline() bool {
	return m.GetStatus().OK(ProbeRecordStore)
}

func (m *Monitor) Healthy() bool {
	return m.GetStatus().Healthy()
}

func (m *Monitor) GetStatus() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status
}

func (m *Monitor) loop() {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.refresh()
	for {
		select {
		case <-ticker.C:
			m.refresh()
		case <-m.stopCh:
			return
		}
	}
}

func (m *Monitor) refresh() {
	status := Status{
		Probes:    make(map[string]ProbeResult, len(m.probes)),
		LastCheck: time.Now(),
	}
	for _, probe := range m.probes {
		status.Probes[probe.Name] = run(probe)
	}
	if m.backlog != nil {
		status.BufferCapacity = m.backlog.Capacity()
		if size, err := m.backlog.Size(); err == nil {
			status.PendingWrites = size
		}
	}

	m.mu.Lock()
	prev := m.status
	m.status = status
	m.mu.Unlock()

	if prev.LastCheck.IsZero() {
		return
	}
	for name, result := range status.Probes {
		if before, ok := prev.Probes[name]; ok && before.OK != result.OK {
			m.logger.Warn("probe state changed",
				zap.String("probe", name),
				zap.Bool("ok", result.OK),
				zap.String("error", result.Error),
				zap.Int("pending_writes", status.PendingWrites))
		}
	}
}

func run(probe Probe) ProbeResult {
	timeout := probe.Timeout
	if timeout <= 0 {
		timeout = defaultProbeTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	result := ProbeResult{OK: true, Critical: probe.Critical}
	if err := probe.Check(ctx); err != nil {
		result.OK = false
		result.Error = err.Error()
	}
	return result
}
