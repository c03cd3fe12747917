package repository

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	bolt "go.etcd.io/bbolt"

	"studysmart/internal/model"
)

var (
	bucketTasks = []byte("tasks")
	bucketLogs  = []byte("discipline_logs")
	bucketMeta  = []byte("meta")

	keyProfile = []byte("profile")
)

// BoltStore is the flat key-value backend. Task and log records are JSON
// values under big-endian sequence keys, so cursor order is insert order.
type BoltStore struct {
	db *bolt.DB
}

// OpenBolt initializes the database file and ensures all buckets exist.
func OpenBolt(path string) (*BoltStore, error) {
	if path == "" {
		path = "studysmart.bolt"
	}
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir %q: %w", dir, err)
		}
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bolt db: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{bucketTasks, bucketLogs, bucketMeta} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("init buckets: %w", err)
	}

	return &BoltStore{db: db}, nil
}

func (s *BoltStore) Close() error {
	return s.db.Close()
}

func (s *BoltStore) CreateTask(ctx context.Context, task *model.Task) error {
	task.MarkPending()
	now := time.Now()
	task.CreatedAt = now
	task.UpdatedAt = now

	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketTasks)
		seq, err := b.NextSequence()
		if err != nil {
			return err
		}
		task.ID = int64(seq)
		payload, err := json.Marshal(task)
		if err != nil {
			return err
		}
		return b.Put(itob(task.ID), payload)
	})
	if err != nil {
		return fmt.Errorf("create task: %w", err)
	}
	return nil
}

func (s *BoltStore) ListTasks(ctx context.Context) ([]model.Task, error) {
	startOfDay := startOfToday(time.Now())

	var tasks []model.Task
	// An update transaction: the daily-reset sweep may write back.
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketTasks)
		c := b.Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			var task model.Task
			if err := json.Unmarshal(v, &task); err != nil {
				return fmt.Errorf("decode task %d: %w", btoi(k), err)
			}
			if task.IsDaily && task.CompletedAt != nil && task.CompletedAt.Before(startOfDay) {
				task.MarkPending()
				task.UpdatedAt = time.Now()
				payload, err := json.Marshal(&task)
				if err != nil {
					return err
				}
				if err := b.Put(append([]byte(nil), k...), payload); err != nil {
					return err
				}
			}
			tasks = append(tasks, task)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}

	sort.SliceStable(tasks, func(i, j int) bool {
		if !tasks[i].DueDate.Equal(tasks[j].DueDate) {
			return tasks[i].DueDate.Before(tasks[j].DueDate)
		}
		return tasks[i].ID < tasks[j].ID
	})
	return tasks, nil
}

func (s *BoltStore) UpdateTask(ctx context.Context, task *model.Task) error {
	task.UpdatedAt = time.Now()
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketTasks)
		key := itob(task.ID)
		if b.Get(key) == nil {
			return ErrNotFound
		}
		payload, err := json.Marshal(task)
		if err != nil {
			return err
		}
		return b.Put(key, payload)
	})
	if err == ErrNotFound {
		return err
	}
	if err != nil {
		return fmt.Errorf("update task: %w", err)
	}
	return nil
}

func (s *BoltStore) DeleteTask(ctx context.Context, id int64) error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketTasks)
		key := itob(id)
		if b.Get(key) == nil {
			return ErrNotFound
		}
		return b.Delete(key)
	})
	if err == ErrNotFound {
		return err
	}
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	return nil
}

func (s *BoltStore) AppendDisciplineLog(ctx context.Context, change int, reason string, taskID *int64) error {
	entry := model.DisciplineLog{
		Date:   time.Now(),
		Change: change,
		Reason: reason,
		TaskID: taskID,
	}
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketLogs)
		seq, err := b.NextSequence()
		if err != nil {
			return err
		}
		entry.ID = int64(seq)
		payload, err := json.Marshal(&entry)
		if err != nil {
			return err
		}
		return b.Put(itob(entry.ID), payload)
	})
	if err != nil {
		return fmt.Errorf("append discipline log: %w", err)
	}
	return nil
}

func (s *BoltStore) DisciplineLogs(ctx context.Context) ([]model.DisciplineLog, error) {
	var logs []model.DisciplineLog
	err := s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(bucketLogs).Cursor()
		// The bucket is append-only, so walking backwards yields newest
		// first.
		for k, v := c.Last(); k != nil && len(logs) < logLimit; k, v = c.Prev() {
			var entry model.DisciplineLog
			if err := json.Unmarshal(v, &entry); err != nil {
				return fmt.Errorf("decode log %d: %w", btoi(k), err)
			}
			logs = append(logs, entry)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list discipline logs: %w", err)
	}
	return logs, nil
}

func (s *BoltStore) LoadProfile(ctx context.Context) (model.UserProfile, error) {
	var profile model.UserProfile
	found := false
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucketMeta).Get(keyProfile)
		if v == nil {
			return nil
		}
		found = true
		return json.Unmarshal(v, &profile)
	})
	if err != nil {
		return model.UserProfile{}, fmt.Errorf("load profile: %w", err)
	}
	if !found {
		profile = model.DefaultProfile()
		if err := s.SaveProfile(ctx, profile); err != nil {
			return model.UserProfile{}, err
		}
	}
	return profile, nil
}

func (s *BoltStore) SaveProfile(ctx context.Context, profile model.UserProfile) error {
	payload, err := json.Marshal(&profile)
	if err != nil {
		return fmt.Errorf("encode profile: %w", err)
	}
	err = s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketMeta).Put(keyProfile, payload)
	})
	if err != nil {
		return fmt.Errorf("save profile: %w", err)
	}
	return nil
}

func (s *BoltStore) LastEvaluation(ctx context.Context) (string, error) {
	var date string
	err := s.db.View(func(tx *bolt.Tx) error {
		if v := tx.Bucket(bucketMeta).Get([]byte(watermarkKey)); v != nil {
			date = string(v)
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("load watermark: %w", err)
	}
	return date, nil
}

func (s *BoltStore) SetLastEvaluation(ctx context.Context, date string) error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketMeta).Put([]byte(watermarkKey), []byte(date))
	})
	if err != nil {
		return fmt.Errorf("save watermark: %w", err)
	}
	return nil
}

func startOfToday(now time.Time) time.Time {
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
}

func itob(id int64) []byte {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(id))
	return buf[:]
}

func btoi(b []byte) int64 {
	return int64(binary.BigEndian.Uint64(b))
}
