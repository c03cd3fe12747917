package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"studysmart/internal/model"
	"studysmart/internal/plan"
)

func TestDailySummaryRendersScheduleAndScore(t *testing.T) {
	store := newFakeStore()
	tasks := NewTaskService(store, nil)
	discipline := newDisciplineForTest(store)
	report := NewReportService(tasks, discipline, plan.Config{StartTime: "09:00", MaxDailyHours: 1}, nil)
	ctx := context.Background()

	if _, err := tasks.Create(ctx, TaskInput{
		Title:         "algebra homework",
		DueDate:       evalNow.Add(24 * time.Hour),
		Priority:      model.PriorityHigh,
		EstimatedTime: 60,
		IsToday:       true,
	}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := tasks.Create(ctx, TaskInput{
		Title:         "read novel",
		DueDate:       evalNow.Add(48 * time.Hour),
		Priority:      model.PriorityLow,
		EstimatedTime: 30,
	}); err != nil {
		t.Fatalf("create: %v", err)
	}

	summary, err := report.DailySummary(ctx, evalNow)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}

	for _, want := range []string{
		"algebra homework",
		"09:00–10:00",
		"Planned time: 65 min",
		"Deferred to upcoming: 1",
		"Discipline: 100/100",
		"focus mode off",
	} {
		if !strings.Contains(summary, want) {
			t.Fatalf("summary missing %q:\n%s", want, summary)
		}
	}
	if strings.Contains(summary, "read novel") {
		t.Fatalf("deferred task should not appear as a block:\n%s", summary)
	}
}

func TestDailySummaryEmptyDay(t *testing.T) {
	store := newFakeStore()
	tasks := NewTaskService(store, nil)
	discipline := newDisciplineForTest(store)
	report := NewReportService(tasks, discipline, plan.Config{StartTime: "09:00", MaxDailyHours: 4}, nil)

	summary, err := report.DailySummary(context.Background(), evalNow)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if !strings.Contains(summary, "Nothing scheduled") {
		t.Fatalf("expected empty-day message:\n%s", summary)
	}
}
