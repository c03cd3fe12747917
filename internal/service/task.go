package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"studysmart/internal/model"
	"studysmart/internal/repository"
)

// TaskInput is the data required to create a task.
type TaskInput struct {
	Title         string
	Description   string
	DueDate       time.Time
	Priority      model.Priority
	EstimatedTime int
	IsDaily       bool
	IsToday       bool
}

// TaskService wraps task CRUD and the toggle flows the screens use.
type TaskService struct {
	store  repository.TaskStore
	logger *zap.Logger
}

func NewTaskService(store repository.TaskStore, logger *zap.Logger) *TaskService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TaskService{store: store, logger: logger}
}

func (s *TaskService) Create(ctx context.Context, input TaskInput) (*model.Task, error) {
	task := model.Task{
		Title:         input.Title,
		Description:   input.Description,
		DueDate:       input.DueDate,
		Priority:      input.Priority,
		EstimatedTime: input.EstimatedTime,
		Status:        model.StatusPending,
		IsDaily:       input.IsDaily,
		IsToday:       input.IsToday,
	}
	if err := task.Validate(); err != nil {
		return nil, err
	}
	if err := s.store.CreateTask(ctx, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// List returns every task; the store performs the daily-reset sweep as part
// of the read.
func (s *TaskService) List(ctx context.Context) ([]model.Task, error) {
	return s.store.ListTasks(ctx)
}

func (s *TaskService) Update(ctx context.Context, task *model.Task) error {
	if err := task.Validate(); err != nil {
		return err
	}
	return s.store.UpdateTask(ctx, task)
}

func (s *TaskService) Delete(ctx context.Context, id int64) error {
	return s.store.DeleteTask(ctx, id)
}

// ToggleComplete flips completion state, stamping or clearing CompletedAt.
func (s *TaskService) ToggleComplete(ctx context.Context, id int64, at time.Time) (*model.Task, error) {
	task, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if task.Completed {
		task.MarkPending()
	} else {
		task.MarkCompleted(at)
	}
	if err := s.store.UpdateTask(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

// ToggleToday flips the manual pin that forces a task into today's schedule.
func (s *TaskService) ToggleToday(ctx context.Context, id int64) (*model.Task, error) {
	task, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	task.IsToday = !task.IsToday
	if err := s.store.UpdateTask(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

func (s *TaskService) find(ctx context.Context, id int64) (*model.Task, error) {
	tasks, err := s.store.ListTasks(ctx)
	if err != nil {
		return nil, err
	}
	for i := range tasks {
		if tasks[i].ID == id {
			return &tasks[i], nil
		}
	}
	return nil, fmt.Errorf("task %d: %w", id, repository.ErrNotFound)
}
