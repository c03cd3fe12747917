package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"studysmart/internal/model"
	"studysmart/internal/repository"
)

var errStoreDown = errors.New("store down")

// fakeStore is an in-memory Store for service tests. It does not run the
// daily-reset sweep; that behavior belongs to the repository tests.
type fakeStore struct {
	mu        sync.Mutex
	tasks     map[int64]model.Task
	nextID    int64
	logs      []model.DisciplineLog
	profile   *model.UserProfile
	watermark string

	failSave bool
	failLoad bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{tasks: make(map[int64]model.Task)}
}

func (f *fakeStore) CreateTask(ctx context.Context, task *model.Task) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	task.ID = f.nextID
	task.MarkPending()
	f.tasks[task.ID] = *task
	return nil
}

func (f *fakeStore) ListTasks(ctx context.Context) ([]model.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.Task, 0, len(f.tasks))
	for id := int64(1); id <= f.nextID; id++ {
		if t, ok := f.tasks[id]; ok {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeStore) UpdateTask(ctx context.Context, task *model.Task) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.tasks[task.ID]; !ok {
		return repository.ErrNotFound
	}
	f.tasks[task.ID] = *task
	return nil
}

func (f *fakeStore) DeleteTask(ctx context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.tasks[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.tasks, id)
	return nil
}

func (f *fakeStore) AppendDisciplineLog(ctx context.Context, change int, reason string, taskID *int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logs = append(f.logs, model.DisciplineLog{
		ID:     int64(len(f.logs) + 1),
		Change: change,
		Reason: reason,
		TaskID: taskID,
	})
	return nil
}

func (f *fakeStore) DisciplineLogs(ctx context.Context) ([]model.DisciplineLog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.DisciplineLog, len(f.logs))
	for i, entry := range f.logs {
		out[len(f.logs)-1-i] = entry
	}
	return out, nil
}

func (f *fakeStore) LoadProfile(ctx context.Context) (model.UserProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failLoad {
		return model.UserProfile{}, errStoreDown
	}
	if f.profile == nil {
		p := model.DefaultProfile()
		f.profile = &p
	}
	return *f.profile, nil
}

func (f *fakeStore) SaveProfile(ctx context.Context, profile model.UserProfile) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failSave {
		return errStoreDown
	}
	f.profile = &profile
	return nil
}

func (f *fakeStore) LastEvaluation(ctx context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.watermark, nil
}

func (f *fakeStore) SetLastEvaluation(ctx context.Context, date string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.watermark = date
	return nil
}

func (f *fakeStore) storedProfile() model.UserProfile {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.profile == nil {
		return model.UserProfile{}
	}
	return *f.profile
}

func (f *fakeStore) logCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.logs)
}

// fakeNotifier records sends and can simulate denial or absence.
type fakeNotifier struct {
	mu          sync.Mutex
	unavailable bool
	denied      bool
	sent        []string
}

func (f *fakeNotifier) Available() bool { return !f.unavailable }

func (f *fakeNotifier) RequestPermission(ctx context.Context) error {
	if f.denied {
		return errors.New("permission denied")
	}
	return nil
}

func (f *fakeNotifier) Send(ctx context.Context, title, body string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, fmt.Sprintf("%s: %s", title, body))
	return nil
}

func (f *fakeNotifier) sentCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}
