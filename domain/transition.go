package domain

import "time"

// TransitionClass selects which status changes are legal.
type TransitionClass int

const (
	// TransitionFull is the task edit path: any status may follow any other, Done included.
	TransitionFull TransitionClass = iota
	// TransitionStatusOnly is the assignee's quick toggle between InProgress and Pending.
	TransitionStatusOnly
)

func (c TransitionClass) String() string {
	switch c {
	case TransitionFull:
		return "full"
	case TransitionStatusOnly:
		return "status_only"
	}
	return "unknown"
}

// statusOnlyTargets is the closed set reachable through TransitionStatusOnly.
var statusOnlyTargets = map[TaskStatus]bool{
	StatusInProgress: true,
	StatusPending:    true,
}

// CheckTransition validates from -> to under class.
func CheckTransition(class TransitionClass, from, to TaskStatus) error {
	if !to.Valid() {
		return Invalid("unknown target status " + string(to))
	}
	switch class {
	case TransitionFull:
		return nil
	case TransitionStatusOnly:
		if !statusOnlyTargets[to] || !statusOnlyTargets[from] {
			return IllegalTransition(from, to)
		}
		return nil
	}
	return IllegalTransition(from, to)
}

// ApplyStatus moves t to status and stamps the lifecycle timestamps. It does not validate.
func ApplyStatus(t Task, to TaskStatus, now time.Time) Task {
	out := t.Clone()
	from := out.Status
	out.Status = to

	if to == StatusDone {
		if out.CompletedAt == nil {
			stamp := now
			out.CompletedAt = &stamp
		}
		out.Progress = ProgressCompleted
	} else {
		out.CompletedAt = nil
	}

	switch to {
	case StatusPending:
		if out.PausedAt == nil {
			stamp := now
			out.PausedAt = &stamp
		}
		out.ResumedAt = nil
	case StatusInProgress:
		if from == StatusPending {
			stamp := now
			out.ResumedAt = &stamp
		}
		if from == StatusToDo {
			out.Progress = ProgressOnTrack
		}
	default:
		out.PausedAt = nil
		out.ResumedAt = nil
	}
	return out
}

// NormalizeTimestamps repairs completed/paused/resumed stamps that disagree with the status.
func NormalizeTimestamps(t Task, now time.Time) Task {
	out := t.Clone()
	if out.Status == StatusDone {
		if out.CompletedAt == nil {
			stamp := now
			out.CompletedAt = &stamp
		}
	} else {
		out.CompletedAt = nil
	}

	switch out.Status {
	case StatusPending:
		if out.PausedAt == nil {
			stamp := now
			out.PausedAt = &stamp
		}
		out.ResumedAt = nil
	case StatusInProgress:
		if out.PausedAt == nil {
			out.ResumedAt = nil
		}
	default:
		out.PausedAt = nil
		out.ResumedAt = nil
	}
	return out
}
