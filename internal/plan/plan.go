// Package plan turns a task list into a time-blocked daily schedule. It is a
// pure computation: no clock reads beyond the injected reference time, no
// storage access.
package plan

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"studysmart/internal/model"
)

const (
	// breakMinutes is the fixed buffer appended after every scheduled block.
	breakMinutes = 5

	defaultStartHour = 9
)

// Config is the per-day scheduling window.
type Config struct {
	StartTime     string // "HH:MM"
	MaxDailyHours float64
}

// Block is a task with its assigned time slot.
type Block struct {
	Task  model.Task
	Start time.Time
	End   time.Time
}

type Summary struct {
	TotalStudyMinutes int
	TasksDeferred     int
}

// Plan partitions the pending tasks into today's schedule and the deferred
// backlog. Every pending input task appears in exactly one of the two.
type Plan struct {
	Today    []Block
	Upcoming []model.Task
	Summary  Summary
}

// Generate builds today's plan using the wall clock as the reference day.
func Generate(tasks []model.Task, cfg Config) Plan {
	return GenerateAt(tasks, cfg, time.Now())
}

// GenerateAt builds the plan for the calendar day of now.
//
// Ordering is a strict total order: user-pinned tasks first, then daily
// chores, then priority rank, then earliest due date. The sort is stable, so
// equal-rank tasks keep their input order.
func GenerateAt(tasks []model.Task, cfg Config, now time.Time) Plan {
	pending := make([]model.Task, 0, len(tasks))
	for _, t := range tasks {
		if !t.Completed {
			pending = append(pending, t)
		}
	}

	sort.SliceStable(pending, func(i, j int) bool {
		a, b := pending[i], pending[j]
		if a.IsToday != b.IsToday {
			return a.IsToday
		}
		if a.IsDaily != b.IsDaily {
			return a.IsDaily
		}
		if a.Priority.Rank() != b.Priority.Rank() {
			return a.Priority.Rank() > b.Priority.Rank()
		}
		return a.DueDate.Before(b.DueDate)
	})

	maxMinutes := int(cfg.MaxDailyHours * 60)
	hour, minute := parseStart(cfg.StartTime)
	clock := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())

	p := Plan{}
	currentMinutes := 0
	for _, t := range pending {
		// The admission test accounts for the task's own duration, so a
		// task that alone exceeds remaining capacity defers even when
		// pinned for today.
		if maxMinutes > 0 && currentMinutes+t.EstimatedTime <= maxMinutes {
			end := clock.Add(time.Duration(t.EstimatedTime) * time.Minute)
			p.Today = append(p.Today, Block{Task: t, Start: clock, End: end})
			clock = end.Add(breakMinutes * time.Minute)
			currentMinutes += t.EstimatedTime + breakMinutes
		} else {
			p.Upcoming = append(p.Upcoming, t)
		}
	}

	p.Summary = Summary{
		TotalStudyMinutes: currentMinutes,
		TasksDeferred:     len(p.Upcoming),
	}
	return p
}

func parseStart(s string) (hour, minute int) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return defaultStartHour, 0
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return defaultStartHour, 0
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return defaultStartHour, 0
	}
	return h, m
}
