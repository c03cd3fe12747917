package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrInvalidPriority = errors.New("model: invalid task priority")
	ErrInvalidStatus   = errors.New("model: invalid task status")
)

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

func (p Priority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	default:
		return false
	}
}

// Rank maps priorities onto a comparable scale, higher is more urgent.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	default:
		return 1
	}
}

type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
)

func (s Status) IsValid() bool {
	return s == StatusPending || s == StatusCompleted
}

// Task is a single planner item. Completed mirrors Status; the two only
// change together through MarkCompleted and MarkPending.
type Task struct {
	ID            int64 `gorm:"primaryKey"`
	Title         string
	Description   string
	DueDate       time.Time
	Priority      Priority
	EstimatedTime int // minutes
	Status        Status
	IsDaily       bool `gorm:"default:false"`
	Completed     bool `gorm:"default:false"`
	CompletedAt   *time.Time
	IsToday       bool `gorm:"default:false"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (t Task) Validate() error {
	if strings.TrimSpace(t.Title) == "" {
		return errors.New("model: task title is required")
	}
	if !t.Priority.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidPriority, t.Priority)
	}
	if !t.Status.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, t.Status)
	}
	if t.EstimatedTime < 0 {
		return errors.New("model: estimated time must not be negative")
	}
	if t.Completed != (t.Status == StatusCompleted) {
		return errors.New("model: completed flag disagrees with status")
	}
	return nil
}

// MarkCompleted transitions the task to completed at the given time.
func (t *Task) MarkCompleted(at time.Time) {
	t.Status = StatusCompleted
	t.Completed = true
	t.CompletedAt = &at
}

// MarkPending clears completion state, used on toggle and daily reset.
func (t *Task) MarkPending() {
	t.Status = StatusPending
	t.Completed = false
	t.CompletedAt = nil
}

// Overdue reports the derived display state: pending past its due date.
// Never persisted.
func (t Task) Overdue(now time.Time) bool {
	return t.Status == StatusPending && t.DueDate.Before(now)
}
