package inmemory

import (
	"context"
	"sort"
	"sync"
	"taskList/internal/logger"
	"taskList/internal/models/task"
	repo "taskList/internal/repository"
	"time"
)

// TaskStorage хранит копии задач; наружу всегда отдаются копии
type TaskStorage struct {
	storage map[int64]*task.Task
	mtx     *sync.RWMutex
	nextID  int64
	now     func() time.Time
}

func NewTaskStorage() *TaskStorage {
	return &TaskStorage{
		storage: make(map[int64]*task.Task),
		mtx:     &sync.RWMutex{},
		nextID:  1,
		now:     time.Now,
	}
}

func (s *TaskStorage) HealthCheck(ctx context.Context) error {
	logger.Info("Repository: Соединение стабильно")
	return nil
}

func (s *TaskStorage) Create(ctx context.Context, taskToCreate *task.Task) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	now := s.now()
	taskToCreate.ID = s.nextID
	taskToCreate.CreatedAt = now
	taskToCreate.UpdatedAt = now
	s.nextID++

	stored := *taskToCreate
	s.storage[stored.ID] = &stored
	return nil
}

func (s *TaskStorage) Update(ctx context.Context, id int64, patch task.Patch) (*task.Task, error) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	stored, ok := s.storage[id]
	if !ok {
		return nil, repo.ErrNotFound
	}

	patch.Apply(stored)
	stored.UpdatedAt = s.now()

	updated := *stored
	return &updated, nil
}

func (s *TaskStorage) Delete(ctx context.Context, id int64) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if _, ok := s.storage[id]; !ok {
		return repo.ErrNotFound
	}
	delete(s.storage, id)
	return nil
}

func (s *TaskStorage) DeleteAll(ctx context.Context) (int64, error) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	count := int64(len(s.storage))
	s.storage = make(map[int64]*task.Task)
	return count, nil
}

// List - новые задачи первыми, при равном времени больший id первым
func (s *TaskStorage) List(ctx context.Context) ([]*task.Task, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	res := make([]*task.Task, 0, len(s.storage))
	for _, stored := range s.storage {
		copied := *stored
		res = append(res, &copied)
	}

	sort.Slice(res, func(i, j int) bool {
		if res[i].CreatedAt.Equal(res[j].CreatedAt) {
			return res[i].ID > res[j].ID
		}
		return res[i].CreatedAt.After(res[j].CreatedAt)
	})

	return res, nil
}
