package domain

import "time"

// Progress thresholds on timeSpent / estimate.
const (
	atRiskRatio  = 0.5
	delayedRatio = 1.0
)

// Priority thresholds on the fraction of the schedule still ahead.
const (
	relaxedLeft = 0.7
	urgentLeft  = 0.3
)

// Derivation is the time-dependent classification of a task.
type Derivation struct {
	Progress TaskProgress `json:"progress"`
	Priority TaskPriority `json:"priority"`
}

// DeriveProgress classifies a task by the share of its estimate already spent.
func DeriveProgress(t Task) TaskProgress {
	if t.Status == StatusDone {
		return ProgressCompleted
	}
	if t.EstimatedHours == nil || *t.EstimatedHours <= 0 {
		return ProgressOnTrack
	}
	ratio := float64(t.TimeSpentMinutes) / (*t.EstimatedHours * 60)
	switch {
	case ratio < atRiskRatio:
		return ProgressOnTrack
	case ratio < delayedRatio:
		return ProgressAtRisk
	default:
		return ProgressDelayed
	}
}

// DerivePriority suggests an urgency from the remaining schedule and progress.
func DerivePriority(t Task, progress TaskProgress, now time.Time) TaskPriority {
	left, ok := scheduleLeft(t, now)
	if !ok {
		return PriorityMedium
	}
	switch {
	case progress == ProgressDelayed:
		return PriorityHigh
	case left > relaxedLeft && progress == ProgressOnTrack:
		return PriorityLow
	case left < urgentLeft:
		return PriorityHigh
	default:
		return PriorityMedium
	}
}

// DeriveProgressAndPriority is a pure function of (t, now).
func DeriveProgressAndPriority(t Task, now time.Time) Derivation {
	progress := DeriveProgress(t)
	return Derivation{
		Progress: progress,
		Priority: DerivePriority(t, progress, now),
	}
}

// scheduleLeft is (deadline-now)/(deadline-start) clamped to [0,1].
func scheduleLeft(t Task, now time.Time) (float64, bool) {
	if t.StartDate.IsZero() || t.Deadline.IsZero() {
		return 0, false
	}
	total := t.Deadline.Sub(t.StartDate)
	if total <= 0 {
		return 0, false
	}
	left := float64(t.Deadline.Sub(now)) / float64(total)
	return clamp(left, 0, 1), true
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
