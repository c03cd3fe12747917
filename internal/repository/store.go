package repository

import (
	"context"
	"errors"

	"studysmart/internal/model"
)

var ErrNotFound = errors.New("repository: not found")

// logLimit caps DisciplineLogs reads; history beyond it is display noise.
const logLimit = 50

// watermarkKey names the persisted date of the last daily discipline sweep.
const watermarkKey = "last_discipline_evaluation"

// TaskStore is durable storage for tasks and discipline log records.
type TaskStore interface {
	// CreateTask assigns the ID and forces the task to pending.
	CreateTask(ctx context.Context, task *model.Task) error
	// ListTasks returns every task. Daily tasks completed on a prior
	// calendar day are reset to pending as part of the read.
	ListTasks(ctx context.Context) ([]model.Task, error)
	UpdateTask(ctx context.Context, task *model.Task) error
	DeleteTask(ctx context.Context, id int64) error

	// AppendDisciplineLog records a score change; entries are never
	// mutated or deleted.
	AppendDisciplineLog(ctx context.Context, change int, reason string, taskID *int64) error
	// DisciplineLogs returns the most recent entries, newest first.
	DisciplineLogs(ctx context.Context) ([]model.DisciplineLog, error)
}

// ProfileStore is durable storage for the singleton user profile and the
// discipline engine's evaluation watermark.
type ProfileStore interface {
	// LoadProfile returns the stored profile, creating and persisting the
	// default one on first run.
	LoadProfile(ctx context.Context) (model.UserProfile, error)
	SaveProfile(ctx context.Context, profile model.UserProfile) error

	// LastEvaluation returns the watermark date ("2006-01-02"), empty if
	// the sweep has never run.
	LastEvaluation(ctx context.Context) (string, error)
	SetLastEvaluation(ctx context.Context, date string) error
}

// Store is what a storage backend provides; the host picks one at startup
// and the services never learn which.
type Store interface {
	TaskStore
	ProfileStore
	Close() error
}
