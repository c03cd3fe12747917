package model

import "time"

// UserProfile is the single per-installation profile. DisciplineScore is a
// legacy mirror of DisciplinePoints kept for consumers of the persisted
// layout; every write path updates both.
type UserProfile struct {
	Username          string
	DisciplinePoints  int
	DisciplineScore   int
	Streak            int
	IsFocusModeActive bool
}

// DefaultProfile is what a fresh installation starts with.
func DefaultProfile() UserProfile {
	return UserProfile{
		Username:         "Student",
		DisciplinePoints: 100,
		DisciplineScore:  100,
	}
}

// DisciplineLog is an append-only audit record of a score change.
type DisciplineLog struct {
	ID     int64 `gorm:"primaryKey"`
	Date   time.Time
	Change int
	Reason string
	TaskID *int64
}
