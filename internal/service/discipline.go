package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"studysmart/internal/model"
	"studysmart/internal/repository"
)

const (
	scoreMin       = 0
	scoreMax       = 100
	focusThreshold = 50

	penaltyHigh   = 10
	penaltyMedium = 5
	penaltyLow    = 2
	// dailyPenaltyFloor keeps missed daily chores from being cheap.
	dailyPenaltyFloor = 5
)

var (
	// ErrFocusLocked means the user may not leave focus mode while the
	// score is below the threshold.
	ErrFocusLocked = errors.New("service: focus mode is locked while discipline is low")
	// ErrNoPendingTasks means there is nothing to focus on.
	ErrNoPendingTasks = errors.New("service: no pending tasks to focus on")
)

// DisciplineService converts task lifecycle events into score deltas and
// focus-mode transitions. It keeps the last known profile in memory so a
// failed store read or write degrades to stale data instead of an outage.
type DisciplineService struct {
	tasks    repository.TaskStore
	profiles repository.ProfileStore
	logger   *zap.Logger

	mu      sync.Mutex
	profile *model.UserProfile

	now func() time.Time
}

func NewDisciplineService(tasks repository.TaskStore, profiles repository.ProfileStore, logger *zap.Logger) *DisciplineService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DisciplineService{
		tasks:    tasks,
		profiles: profiles,
		logger:   logger,
		now:      time.Now,
	}
}

// Profile returns the current profile, preferring the store but falling back
// to the cached copy when the read fails.
func (s *DisciplineService) Profile(ctx context.Context) (model.UserProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentProfile(ctx)
}

// currentProfile must be called with mu held.
func (s *DisciplineService) currentProfile(ctx context.Context) (model.UserProfile, error) {
	profile, err := s.profiles.LoadProfile(ctx)
	if err != nil {
		if s.profile != nil {
			s.logger.Warn("profile load failed, using in-memory copy", zap.Error(err))
			return *s.profile, nil
		}
		return model.UserProfile{}, err
	}
	s.profile = &profile
	return profile, nil
}

// EvaluateDailyProgress runs the missed-task sweep for the current calendar
// day. The persisted watermark is the sole guard: the sweep runs at most once
// per day no matter how many times the app launches.
func (s *DisciplineService) EvaluateDailyProgress(ctx context.Context) error {
	today := s.now().Format(time.DateOnly)

	last, err := s.profiles.LastEvaluation(ctx)
	if err != nil {
		return fmt.Errorf("read evaluation watermark: %w", err)
	}
	if last == today {
		return nil
	}

	tasks, err := s.tasks.ListTasks(ctx)
	if err != nil {
		return fmt.Errorf("list tasks: %w", err)
	}

	totalPenalty := 0
	for _, task := range tasks {
		if !missedBefore(task, today) {
			continue
		}
		penalty := missedPenalty(task)
		totalPenalty += penalty

		taskID := task.ID
		reason := fmt.Sprintf("Missed overdue task: %s", task.Title)
		if err := s.tasks.AppendDisciplineLog(ctx, -penalty, reason, &taskID); err != nil {
			s.logger.Warn("discipline log append failed",
				zap.Int64("task_id", task.ID), zap.Error(err))
		}
	}

	if totalPenalty > 0 {
		if _, err := s.UpdateScore(ctx, -totalPenalty); err != nil {
			return err
		}
		s.logger.Info("daily discipline penalty applied", zap.Int("penalty", totalPenalty))
	}

	if err := s.profiles.SetLastEvaluation(ctx, today); err != nil {
		return fmt.Errorf("save evaluation watermark: %w", err)
	}
	return nil
}

// missedBefore reports whether the task was pinned for a prior day and never
// completed: pending, marked for today, and due strictly before today.
func missedBefore(task model.Task, today string) bool {
	if task.Status != model.StatusPending || !task.IsToday {
		return false
	}
	return task.DueDate.Format(time.DateOnly) < today
}

func missedPenalty(task model.Task) int {
	var penalty int
	switch task.Priority {
	case model.PriorityHigh:
		penalty = penaltyHigh
	case model.PriorityMedium:
		penalty = penaltyMedium
	case model.PriorityLow:
		penalty = penaltyLow
	default:
		penalty = penaltyMedium
	}
	if task.IsDaily && penalty < dailyPenaltyFloor {
		penalty = dailyPenaltyFloor
	}
	return penalty
}

// UpdateScore applies a delta to the discipline score, clamps it to
// [0, 100], and force-activates focus mode below the threshold. The focus
// flag is never cleared here, only SetFocusMode may do that.
func (s *DisciplineService) UpdateScore(ctx context.Context, delta int) (model.UserProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	profile, err := s.currentProfile(ctx)
	if err != nil {
		return model.UserProfile{}, err
	}

	points := profile.DisciplinePoints + delta
	if points < scoreMin {
		points = scoreMin
	}
	if points > scoreMax {
		points = scoreMax
	}

	profile.DisciplinePoints = points
	profile.DisciplineScore = points
	if points < focusThreshold {
		profile.IsFocusModeActive = true
	}

	s.persist(ctx, profile)
	return profile, nil
}

// SetFocusMode is the explicit user toggle, subject to the lock rules.
func (s *DisciplineService) SetFocusMode(ctx context.Context, active bool) (model.UserProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	profile, err := s.currentProfile(ctx)
	if err != nil {
		return model.UserProfile{}, err
	}

	if !active && profile.DisciplinePoints < focusThreshold {
		return profile, ErrFocusLocked
	}
	if active {
		tasks, err := s.tasks.ListTasks(ctx)
		if err != nil {
			return profile, fmt.Errorf("list tasks: %w", err)
		}
		if !anyPending(tasks) {
			return profile, ErrNoPendingTasks
		}
	}

	profile.IsFocusModeActive = active
	s.persist(ctx, profile)
	return profile, nil
}

func (s *DisciplineService) IncrementStreak(ctx context.Context) (model.UserProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	profile, err := s.currentProfile(ctx)
	if err != nil {
		return model.UserProfile{}, err
	}
	profile.Streak++
	s.persist(ctx, profile)
	return profile, nil
}

func (s *DisciplineService) ResetStreak(ctx context.Context) (model.UserProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	profile, err := s.currentProfile(ctx)
	if err != nil {
		return model.UserProfile{}, err
	}
	profile.Streak = 0
	s.persist(ctx, profile)
	return profile, nil
}

// Logs returns the recent discipline history, newest first.
func (s *DisciplineService) Logs(ctx context.Context) ([]model.DisciplineLog, error) {
	return s.tasks.DisciplineLogs(ctx)
}

// persist saves the profile, letting the in-memory update stand if the write
// fails; the next successful save reapplies it. Must be called with mu held.
func (s *DisciplineService) persist(ctx context.Context, profile model.UserProfile) {
	s.profile = &profile
	if err := s.profiles.SaveProfile(ctx, profile); err != nil {
		s.logger.Warn("profile save failed, keeping in-memory update", zap.Error(err))
	}
}

func anyPending(tasks []model.Task) bool {
	for _, t := range tasks {
		if t.Status == model.StatusPending {
			return true
		}
	}
	return false
}
