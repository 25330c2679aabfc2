package monitor

import "time"

// Probe names reported on /health.
const (
	ProbeRecordStore = "record_store"
	ProbeRunLock     = "run_lock"
	ProbeWriteBuffer = "write_buffer"
)

// ProbeResult is the outcome of one probe on the last check.
type ProbeResult struct {
	OK       bool   `json:"ok"`
	Critical bool   `json:"critical"`
	Error    string `json:"error,omitempty"`
}

// Status is the last snapshot taken by the Monitor.
type Status struct {
	Probes         map[string]ProbeResult `json:"probes"`
	PendingWrites  int                    `json:"pending_writes"`
	BufferCapacity int                    `json:"buffer_capacity,omitempty"`
	LastCheck      time.Time              `json:"last_check"`
}

// OK reports whether the named probe passed. Unknown probes never pass.
func (s Status) OK(name string) bool {
	return s.Probes[name].OK
}

// Healthy reports whether every critical probe passed. A status that has
// never been checked is not healthy.
func (s Status) Healthy() bool {
	if s.LastCheck.IsZero() {
		return false
	}
	for _, result := range s.Probes {
		if result.Critical && !result.OK {
			return false
		}
	}
	return true
}
