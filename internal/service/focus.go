package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"studysmart/internal/notify"
)

// AppState is an app lifecycle transition reported by the host.
type AppState int

const (
	AppStateActive AppState = iota
	AppStateBackground
)

const (
	focusPenalty = 5

	// DefaultGraceWindow is how long the user may stay backgrounded during
	// a focus session before the penalty lands.
	DefaultGraceWindow = 5 * time.Second

	penaltyTimeout = 10 * time.Second
)

// FocusMonitor watches app foreground/background transitions while a focus
// session is active. Leaving the app starts a single grace timer; returning
// before it fires cancels the penalty. Only one session runs per process.
type FocusMonitor struct {
	discipline *DisciplineService
	notifier   notify.Notifier
	states     <-chan AppState
	grace      time.Duration
	logger     *zap.Logger

	mu      sync.Mutex
	running bool
	timer   *time.Timer
	stopCh  chan struct{}
	doneCh  chan struct{}
}

func NewFocusMonitor(discipline *DisciplineService, notifier notify.Notifier, states <-chan AppState, grace time.Duration, logger *zap.Logger) *FocusMonitor {
	if grace <= 0 {
		grace = DefaultGraceWindow
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FocusMonitor{
		discipline: discipline,
		notifier:   notifier,
		states:     states,
		grace:      grace,
		logger:     logger,
	}
}

// Start begins observing app-state transitions. It requires the notification
// channel to be present and granted; otherwise the session does not start and
// the profile is left untouched. Starting twice is a no-op.
func (m *FocusMonitor) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.running {
		return nil
	}

	if !m.notifier.Available() {
		return notify.ErrUnavailable
	}
	if err := m.notifier.RequestPermission(ctx); err != nil {
		return fmt.Errorf("focus mode needs notifications: %w", err)
	}

	m.running = true
	m.stopCh = make(chan struct{})
	m.doneCh = make(chan struct{})
	go m.watch(m.stopCh, m.doneCh)

	m.logger.Info("focus session started", zap.Duration("grace", m.grace))
	return nil
}

// Stop cancels any pending penalty and stops observing. Idempotent.
func (m *FocusMonitor) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	m.running = false
	m.clearTimerLocked()
	close(m.stopCh)
	done := m.doneCh
	m.mu.Unlock()

	<-done
	m.logger.Info("focus session stopped")
}

func (m *FocusMonitor) Active() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}

func (m *FocusMonitor) watch(stopCh <-chan struct{}, doneCh chan<- struct{}) {
	defer close(doneCh)
	for {
		select {
		case state, ok := <-m.states:
			if !ok {
				return
			}
			switch state {
			case AppStateBackground:
				m.onBackground()
			case AppStateActive:
				m.onForeground()
			}
		case <-stopCh:
			return
		}
	}
}

func (m *FocusMonitor) onBackground() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.running || m.timer != nil {
		// A timer is already pending (or has fired without an
		// intervening foreground); one background episode may only
		// ever cost one penalty.
		return
	}
	m.timer = time.AfterFunc(m.grace, m.onGraceElapsed)
}

func (m *FocusMonitor) onForeground() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clearTimerLocked()
}

// clearTimerLocked must be called with mu held.
func (m *FocusMonitor) clearTimerLocked() {
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
}

// onGraceElapsed fires once per background episode: the score change commits
// first, then the notification is attempted and not retried on failure.
func (m *FocusMonitor) onGraceElapsed() {
	ctx, cancel := context.WithTimeout(context.Background(), penaltyTimeout)
	defer cancel()

	profile, err := m.discipline.UpdateScore(ctx, -focusPenalty)
	if err != nil {
		m.logger.Error("focus penalty failed", zap.Error(err))
		return
	}
	m.logger.Info("focus penalty applied", zap.Int("points", profile.DisciplinePoints))

	body := fmt.Sprintf("You lost %d discipline points for leaving the app. New score: %d",
		focusPenalty, profile.DisciplinePoints)
	if err := m.notifier.Send(ctx, "Focus Lost!", body); err != nil {
		m.logger.Warn("focus notification failed", zap.Error(err))
	}
}
