package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"studysmart/internal/plan"
)

// ReportService builds the human-readable daily summary sent through the
// notification channel.
type ReportService struct {
	tasks      *TaskService
	discipline *DisciplineService
	planner    plan.Config
	logger     *zap.Logger
}

func NewReportService(tasks *TaskService, discipline *DisciplineService, planner plan.Config, logger *zap.Logger) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportService{tasks: tasks, discipline: discipline, planner: planner, logger: logger}
}

// DailySummary renders today's schedule, the deferred backlog, and the
// current discipline state as notification text.
func (s *ReportService) DailySummary(ctx context.Context, now time.Time) (string, error) {
	tasks, err := s.tasks.List(ctx)
	if err != nil {
		return "", fmt.Errorf("daily summary: %w", err)
	}

	p := plan.GenerateAt(tasks, s.planner, now)

	profile, err := s.discipline.Profile(ctx)
	if err != nil {
		return "", fmt.Errorf("daily summary: %w", err)
	}

	var b strings.Builder
	b.WriteString("📋 Today's plan\n")
	b.WriteString(fmt.Sprintf("🗓 %s\n\n", now.Format("02.01.2006")))

	if len(p.Today) == 0 {
		b.WriteString("Nothing scheduled for today.\n")
	} else {
		for _, block := range p.Today {
			icon := "🟢"
			if block.Task.Overdue(now) {
				icon = "⚠️"
			}
			b.WriteString(fmt.Sprintf("%s %s–%s  %s (%s, %d min)\n",
				icon,
				block.Start.Format("15:04"),
				block.End.Format("15:04"),
				strings.TrimSpace(block.Task.Title),
				block.Task.Priority,
				block.Task.EstimatedTime,
			))
		}
		b.WriteString(fmt.Sprintf("\nPlanned time: %d min\n", p.Summary.TotalStudyMinutes))
	}

	if p.Summary.TasksDeferred > 0 {
		b.WriteString(fmt.Sprintf("⏳ Deferred to upcoming: %d\n", p.Summary.TasksDeferred))
	}

	focusState := "off"
	if profile.IsFocusModeActive {
		focusState = "on"
	}
	b.WriteString(fmt.Sprintf("\n🎯 Discipline: %d/100 · focus mode %s",
		profile.DisciplinePoints, focusState))

	return strings.TrimSpace(b.String()), nil
}
