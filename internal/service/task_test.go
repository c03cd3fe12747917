package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"studysmart/internal/model"
	"studysmart/internal/repository"
)

func TestCreateTaskValidatesAndInitializesPending(t *testing.T) {
	store := newFakeStore()
	svc := NewTaskService(store, nil)
	ctx := context.Background()

	task, err := svc.Create(ctx, TaskInput{
		Title:         "write essay",
		DueDate:       time.Now().Add(48 * time.Hour),
		Priority:      model.PriorityHigh,
		EstimatedTime: 90,
		IsToday:       true,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if task.ID == 0 {
		t.Fatal("expected the store to assign an id")
	}
	if task.Status != model.StatusPending || task.Completed {
		t.Fatalf("new task must start pending: %+v", task)
	}

	if _, err := svc.Create(ctx, TaskInput{Title: "  "}); err == nil {
		t.Fatal("expected validation error for blank title")
	}
}

func TestToggleCompleteFlipsStateBothWays(t *testing.T) {
	store := newFakeStore()
	svc := NewTaskService(store, nil)
	ctx := context.Background()

	task, err := svc.Create(ctx, TaskInput{
		Title:         "laundry",
		DueDate:       time.Now(),
		Priority:      model.PriorityLow,
		EstimatedTime: 20,
		IsDaily:       true,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	at := time.Now()
	done, err := svc.ToggleComplete(ctx, task.ID, at)
	if err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if !done.Completed || done.Status != model.StatusCompleted || done.CompletedAt == nil {
		t.Fatalf("toggle to completed failed: %+v", done)
	}

	undone, err := svc.ToggleComplete(ctx, task.ID, at)
	if err != nil {
		t.Fatalf("toggle back: %v", err)
	}
	if undone.Completed || undone.Status != model.StatusPending || undone.CompletedAt != nil {
		t.Fatalf("toggle to pending failed: %+v", undone)
	}

	if _, err := svc.ToggleComplete(ctx, 999, at); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestToggleToday(t *testing.T) {
	store := newFakeStore()
	svc := NewTaskService(store, nil)
	ctx := context.Background()

	task, err := svc.Create(ctx, TaskInput{
		Title:         "revise notes",
		DueDate:       time.Now().Add(72 * time.Hour),
		Priority:      model.PriorityMedium,
		EstimatedTime: 40,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	pinned, err := svc.ToggleToday(ctx, task.ID)
	if err != nil {
		t.Fatalf("pin: %v", err)
	}
	if !pinned.IsToday {
		t.Fatal("task should be pinned for today")
	}

	unpinned, err := svc.ToggleToday(ctx, task.ID)
	if err != nil {
		t.Fatalf("unpin: %v", err)
	}
	if unpinned.IsToday {
		t.Fatal("task should be unpinned")
	}
}

func TestDeleteTask(t *testing.T) {
	store := newFakeStore()
	svc := NewTaskService(store, nil)
	ctx := context.Background()

	task, err := svc.Create(ctx, TaskInput{
		Title:         "old chore",
		DueDate:       time.Now(),
		Priority:      model.PriorityLow,
		EstimatedTime: 10,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := svc.Delete(ctx, task.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	tasks, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(tasks) != 0 {
		t.Fatalf("expected empty list, got %d tasks", len(tasks))
	}
	if err := svc.Delete(ctx, task.ID); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
