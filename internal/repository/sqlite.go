package repository

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"studysmart/internal/model"
)

// SQLiteStore is the structured on-device backend.
type SQLiteStore struct {
	db *gorm.DB
}

// profileRecord pins the singleton profile to a fixed row.
type profileRecord struct {
	ID      int64             `gorm:"primaryKey"`
	Profile model.UserProfile `gorm:"embedded"`
}

func (profileRecord) TableName() string { return "profile" }

type settingRecord struct {
	Key   string `gorm:"primaryKey"`
	Value string
}

func (settingRecord) TableName() string { return "settings" }

// OpenSQLite opens the database file and runs migrations.
func OpenSQLite(dsn string) (*SQLiteStore, error) {
	if dsn == "" {
		dsn = "studysmart.db"
	}

	if err := ensureDirForSQLite(dsn); err != nil {
		return nil, err
	}

	dbLogger := logger.New(
		log.New(os.Stdout, "", log.LstdFlags),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: dbLogger,
	})
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	if err := db.AutoMigrate(&model.Task{}, &model.DisciplineLog{}, &profileRecord{}, &settingRecord{}); err != nil {
		return nil, fmt.Errorf("migrate db: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *SQLiteStore) CreateTask(ctx context.Context, task *model.Task) error {
	task.MarkPending()
	if err := s.db.WithContext(ctx).Create(task).Error; err != nil {
		return fmt.Errorf("create task: %w", err)
	}
	return nil
}

func (s *SQLiteStore) ListTasks(ctx context.Context) ([]model.Task, error) {
	if err := s.resetDailyTasks(ctx, time.Now()); err != nil {
		return nil, err
	}

	var tasks []model.Task
	if err := s.db.WithContext(ctx).Order("due_date, id").Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, nil
}

// resetDailyTasks reopens daily chores completed before the current calendar
// day.
func (s *SQLiteStore) resetDailyTasks(ctx context.Context, now time.Time) error {
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	err := s.db.WithContext(ctx).Model(&model.Task{}).
		Where("is_daily = ? AND completed_at IS NOT NULL AND completed_at < ?", true, startOfDay).
		Updates(map[string]interface{}{
			"status":       model.StatusPending,
			"completed":    false,
			"completed_at": nil,
		}).Error
	if err != nil {
		return fmt.Errorf("reset daily tasks: %w", err)
	}
	return nil
}

func (s *SQLiteStore) UpdateTask(ctx context.Context, task *model.Task) error {
	res := s.db.WithContext(ctx).Model(&model.Task{}).Where("id = ?", task.ID).
		Select("*").Omit("id", "created_at").Updates(task)
	if res.Error != nil {
		return fmt.Errorf("update task: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) DeleteTask(ctx context.Context, id int64) error {
	res := s.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Task{})
	if res.Error != nil {
		return fmt.Errorf("delete task: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) AppendDisciplineLog(ctx context.Context, change int, reason string, taskID *int64) error {
	entry := model.DisciplineLog{
		Date:   time.Now(),
		Change: change,
		Reason: reason,
		TaskID: taskID,
	}
	if err := s.db.WithContext(ctx).Create(&entry).Error; err != nil {
		return fmt.Errorf("append discipline log: %w", err)
	}
	return nil
}

func (s *SQLiteStore) DisciplineLogs(ctx context.Context) ([]model.DisciplineLog, error) {
	var logs []model.DisciplineLog
	if err := s.db.WithContext(ctx).Order("date DESC, id DESC").Limit(logLimit).Find(&logs).Error; err != nil {
		return nil, fmt.Errorf("list discipline logs: %w", err)
	}
	return logs, nil
}

func (s *SQLiteStore) LoadProfile(ctx context.Context) (model.UserProfile, error) {
	var rec profileRecord
	err := s.db.WithContext(ctx).First(&rec, 1).Error
	switch {
	case err == nil:
		return rec.Profile, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		profile := model.DefaultProfile()
		if err := s.SaveProfile(ctx, profile); err != nil {
			return model.UserProfile{}, err
		}
		return profile, nil
	default:
		return model.UserProfile{}, fmt.Errorf("load profile: %w", err)
	}
}

func (s *SQLiteStore) SaveProfile(ctx context.Context, profile model.UserProfile) error {
	rec := profileRecord{ID: 1, Profile: profile}
	if err := s.db.WithContext(ctx).Save(&rec).Error; err != nil {
		return fmt.Errorf("save profile: %w", err)
	}
	return nil
}

func (s *SQLiteStore) LastEvaluation(ctx context.Context) (string, error) {
	var rec settingRecord
	err := s.db.WithContext(ctx).First(&rec, "key = ?", watermarkKey).Error
	switch {
	case err == nil:
		return rec.Value, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return "", nil
	default:
		return "", fmt.Errorf("load watermark: %w", err)
	}
}

func (s *SQLiteStore) SetLastEvaluation(ctx context.Context, date string) error {
	rec := settingRecord{Key: watermarkKey, Value: date}
	if err := s.db.WithContext(ctx).Save(&rec).Error; err != nil {
		return fmt.Errorf("save watermark: %w", err)
	}
	return nil
}

// ensureDirForSQLite creates the parent dir for the SQLite file if needed.
func ensureDirForSQLite(dsn string) error {
	if strings.Contains(dsn, ":memory:") || strings.Contains(dsn, "mode=memory") {
		return nil
	}
	clean := strings.TrimPrefix(dsn, "file:")
	clean = strings.Split(clean, "?")[0]
	dir := filepath.Dir(clean)
	if dir == "." || dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create db dir %q: %w", dir, err)
	}
	return nil
}
