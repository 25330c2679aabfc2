package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func est(h float64) *float64 { return &h }

func TestDeriveProgress(t *testing.T) {
	cases := []struct {
		name string
		task Task
		want TaskProgress
	}{
		{"ratio 0.4167 is on track", Task{Status: StatusInProgress, EstimatedHours: est(10), TimeSpentMinutes: 250}, ProgressOnTrack},
		{"ratio 1.1 is delayed", Task{Status: StatusInProgress, EstimatedHours: est(10), TimeSpentMinutes: 660}, ProgressDelayed},
		{"ratio 0.5 is at risk", Task{Status: StatusInProgress, EstimatedHours: est(10), TimeSpentMinutes: 300}, ProgressAtRisk},
		{"ratio 1.0 is delayed", Task{Status: StatusPending, EstimatedHours: est(10), TimeSpentMinutes: 600}, ProgressDelayed},
		{"done wins", Task{Status: StatusDone, EstimatedHours: est(1), TimeSpentMinutes: 600}, ProgressCompleted},
		{"no estimate", Task{Status: StatusInProgress, TimeSpentMinutes: 6000}, ProgressOnTrack},
		{"zero estimate", Task{Status: StatusInProgress, EstimatedHours: est(0), TimeSpentMinutes: 60}, ProgressOnTrack},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, DeriveProgress(tc.task))
		})
	}
}

func TestDerivePriority(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	day := func(n int) time.Time { return now.AddDate(0, 0, n) }

	cases := []struct {
		name     string
		task     Task
		progress TaskProgress
		want     TaskPriority
	}{
		{"delayed is always high", Task{StartDate: day(-1), Deadline: day(99)}, ProgressDelayed, PriorityHigh},
		{"plenty left and on track", Task{StartDate: day(-1), Deadline: day(9)}, ProgressOnTrack, PriorityLow},
		{"plenty left but at risk", Task{StartDate: day(-1), Deadline: day(9)}, ProgressAtRisk, PriorityMedium},
		{"little left", Task{StartDate: day(-9), Deadline: day(1)}, ProgressOnTrack, PriorityHigh},
		{"half left", Task{StartDate: day(-5), Deadline: day(5)}, ProgressOnTrack, PriorityMedium},
		{"past deadline clamps to zero", Task{StartDate: day(-10), Deadline: day(-5)}, ProgressOnTrack, PriorityHigh},
		{"not started clamps to one", Task{StartDate: day(5), Deadline: day(10)}, ProgressOnTrack, PriorityLow},
		{"missing dates", Task{}, ProgressDelayed, PriorityMedium},
		{"inverted dates", Task{StartDate: day(5), Deadline: day(1)}, ProgressOnTrack, PriorityMedium},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, DerivePriority(tc.task, tc.progress, now))
		})
	}
}

func TestDeriveProgressAndPriority_Idempotent(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	tasks := []Task{
		{Status: StatusInProgress, EstimatedHours: est(10), TimeSpentMinutes: 250, StartDate: now.AddDate(0, 0, -3), Deadline: now.AddDate(0, 0, 3)},
		{Status: StatusDone, StartDate: now.AddDate(0, 0, -3), Deadline: now.AddDate(0, 0, -1)},
		{Status: StatusToDo},
	}
	for _, task := range tasks {
		first := DeriveProgressAndPriority(task, now)
		applied := task
		applied.Progress, applied.Priority = first.Progress, first.Priority
		second := DeriveProgressAndPriority(applied, now)
		assert.Equal(t, first, second)
	}
}
