package service_test

import (
	"context"
	"errors"
	"fmt"
	"taskList/internal/models/task"
	"taskList/internal/repository"
	"taskList/internal/service"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockTaskRepository - мок репозитория
type MockTaskRepository struct {
	mock.Mock
}

func (m *MockTaskRepository) HealthCheck(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockTaskRepository) List(ctx context.Context) ([]*task.Task, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*task.Task), args.Error(1)
}

func (m *MockTaskRepository) Create(ctx context.Context, t *task.Task) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

func (m *MockTaskRepository) Update(ctx context.Context, id int64, patch task.Patch) (*task.Task, error) {
	args := m.Called(ctx, id, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*task.Task), args.Error(1)
}

func (m *MockTaskRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockTaskRepository) DeleteAll(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

var _ service.TaskRepository = (*MockTaskRepository)(nil)

func businessCode(t *testing.T, err error) string {
	t.Helper()
	var busErr *service.BusinessError
	require.True(t, errors.As(err, &busErr), "ожидалась BusinessError, получено %v", err)
	return busErr.Code
}

// TestTaskService_HealthCheck тестирует HealthCheck
func TestTaskService_HealthCheck(t *testing.T) {
	tests := []struct {
		name        string
		setupMock   func(*MockTaskRepository)
		expectError bool
	}{
		{
			name: "success - health check passes",
			setupMock: func(m *MockTaskRepository) {
				m.On("HealthCheck", mock.Anything).Return(nil)
			},
			expectError: false,
		},
		{
			name: "error - health check fails",
			setupMock: func(m *MockTaskRepository) {
				m.On("HealthCheck", mock.Anything).Return(errors.New("db connection failed"))
			},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockTaskRepository)
			tt.setupMock(mockRepo)

			svc := service.NewTaskService(mockRepo, service.PostgresType)
			err := svc.HealthCheck(context.Background())

			if tt.expectError {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), "проверка здоровья сервиса")
			} else {
				assert.NoError(t, err)
			}

			mockRepo.AssertExpectations(t)
		})
	}
}

// TestTaskService_ListTasks тестирует получение всех задач
func TestTaskService_ListTasks(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		mockRepo := new(MockTaskRepository)
		tasks := []*task.Task{
			{ID: 2, Description: "B"},
			{ID: 1, Description: "A"},
		}
		mockRepo.On("List", mock.Anything).Return(tasks, nil)

		svc := service.NewTaskService(mockRepo, service.InMemoryType)
		result, err := svc.ListTasks(ctx)

		require.NoError(t, err)
		assert.Equal(t, tasks, result)
		mockRepo.AssertExpectations(t)
	})

	t.Run("error - storage failure is not a business error", func(t *testing.T) {
		mockRepo := new(MockTaskRepository)
		storageErr := errors.New("connection refused")
		mockRepo.On("List", mock.Anything).Return(nil, storageErr)

		svc := service.NewTaskService(mockRepo, service.InMemoryType)
		result, err := svc.ListTasks(ctx)

		assert.Nil(t, result)
		assert.ErrorIs(t, err, storageErr)
		var busErr *service.BusinessError
		assert.False(t, errors.As(err, &busErr))
	})
}

// TestTaskService_CreateTask тестирует создание задачи
func TestTaskService_CreateTask(t *testing.T) {
	ctx := context.Background()

	t.Run("success - description trimmed, completed false", func(t *testing.T) {
		mockRepo := new(MockTaskRepository)
		mockRepo.On("Create", mock.Anything, mock.MatchedBy(func(t *task.Task) bool {
			return t.Description == "Buy milk" && !t.Completed
		})).Run(func(args mock.Arguments) {
			created := args.Get(1).(*task.Task)
			created.ID = 42
			created.CreatedAt = time.Now()
			created.UpdatedAt = created.CreatedAt
		}).Return(nil)

		svc := service.NewTaskService(mockRepo, service.InMemoryType)
		result, err := svc.CreateTask(ctx, "  Buy milk  ")

		require.NoError(t, err)
		assert.Equal(t, int64(42), result.ID)
		assert.Equal(t, "Buy milk", result.Description)
		assert.False(t, result.Completed)
		assert.False(t, result.CreatedAt.IsZero())
		mockRepo.AssertExpectations(t)
	})

	for _, blank := range []string{"", "   ", "\t\n"} {
		t.Run(fmt.Sprintf("error - blank description %q", blank), func(t *testing.T) {
			mockRepo := new(MockTaskRepository)

			svc := service.NewTaskService(mockRepo, service.InMemoryType)
			result, err := svc.CreateTask(ctx, blank)

			assert.Nil(t, result)
			assert.Equal(t, service.CodeValidation, businessCode(t, err))
			mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}

	t.Run("error - storage failure", func(t *testing.T) {
		mockRepo := new(MockTaskRepository)
		mockRepo.On("Create", mock.Anything, mock.Anything).Return(errors.New("insert failed"))

		svc := service.NewTaskService(mockRepo, service.InMemoryType)
		result, err := svc.CreateTask(ctx, "Buy milk")

		assert.Nil(t, result)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "создание задачи")
	})
}

// TestTaskService_UpdateTask тестирует обновление задачи
func TestTaskService_UpdateTask(t *testing.T) {
	ctx := context.Background()
	const taskID int64 = 7

	tests := []struct {
		name      string
		patch     task.Patch
		setupMock func(*MockTaskRepository)
		errCode   string
		expectErr bool
	}{
		{
			name:  "success - completed only",
			patch: task.NewPatch(task.WithCompleted(true)),
			setupMock: func(m *MockTaskRepository) {
				m.On("Update", mock.Anything, taskID, mock.MatchedBy(func(p task.Patch) bool {
					return p.Description == nil && p.Completed != nil && *p.Completed
				})).Return(&task.Task{ID: taskID, Description: "same", Completed: true}, nil)
			},
		},
		{
			name:  "success - description trimmed",
			patch: task.NewPatch(task.WithDescription("  new text ")),
			setupMock: func(m *MockTaskRepository) {
				m.On("Update", mock.Anything, taskID, mock.MatchedBy(func(p task.Patch) bool {
					return p.Description != nil && *p.Description == "new text" && p.Completed == nil
				})).Return(&task.Task{ID: taskID, Description: "new text"}, nil)
			},
		},
		{
			name:  "success - blank description ignored when completed given",
			patch: task.NewPatch(task.WithDescription("  "), task.WithCompleted(false)),
			setupMock: func(m *MockTaskRepository) {
				m.On("Update", mock.Anything, taskID, mock.MatchedBy(func(p task.Patch) bool {
					return p.Description == nil && p.Completed != nil && !*p.Completed
				})).Return(&task.Task{ID: taskID, Description: "same"}, nil)
			},
		},
		{
			name:      "error - no fields",
			patch:     task.NewPatch(),
			setupMock: func(m *MockTaskRepository) {},
			errCode:   service.CodeValidation,
			expectErr: true,
		},
		{
			name:      "error - blank description only",
			patch:     task.NewPatch(task.WithDescription("")),
			setupMock: func(m *MockTaskRepository) {},
			errCode:   service.CodeValidation,
			expectErr: true,
		},
		{
			name:  "error - not found",
			patch: task.NewPatch(task.WithCompleted(true)),
			setupMock: func(m *MockTaskRepository) {
				m.On("Update", mock.Anything, taskID, mock.Anything).Return(nil, repository.ErrNotFound)
			},
			errCode:   service.CodeNotFound,
			expectErr: true,
		},
		{
			name:  "error - storage failure",
			patch: task.NewPatch(task.WithCompleted(true)),
			setupMock: func(m *MockTaskRepository) {
				m.On("Update", mock.Anything, taskID, mock.Anything).Return(nil, errors.New("deadlock"))
			},
			expectErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockTaskRepository)
			tt.setupMock(mockRepo)

			svc := service.NewTaskService(mockRepo, service.InMemoryType)
			result, err := svc.UpdateTask(ctx, taskID, tt.patch)

			if tt.expectErr {
				assert.Nil(t, result)
				require.Error(t, err)
				if tt.errCode != "" {
					assert.Equal(t, tt.errCode, businessCode(t, err))
				} else {
					var busErr *service.BusinessError
					assert.False(t, errors.As(err, &busErr))
				}
			} else {
				require.NoError(t, err)
				assert.Equal(t, taskID, result.ID)
			}

			mockRepo.AssertExpectations(t)
		})
	}
}

// TestTaskService_DeleteTask тестирует удаление задачи
func TestTaskService_DeleteTask(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		mockRepo := new(MockTaskRepository)
		mockRepo.On("Delete", mock.Anything, int64(3)).Return(nil)

		svc := service.NewTaskService(mockRepo, service.InMemoryType)
		assert.NoError(t, svc.DeleteTask(ctx, 3))
		mockRepo.AssertExpectations(t)
	})

	t.Run("error - not found", func(t *testing.T) {
		mockRepo := new(MockTaskRepository)
		mockRepo.On("Delete", mock.Anything, int64(404)).Return(repository.ErrNotFound)

		svc := service.NewTaskService(mockRepo, service.InMemoryType)
		err := svc.DeleteTask(ctx, 404)

		assert.Equal(t, service.CodeNotFound, businessCode(t, err))
		assert.ErrorIs(t, err, repository.ErrNotFound)
	})

	t.Run("error - storage failure", func(t *testing.T) {
		mockRepo := new(MockTaskRepository)
		mockRepo.On("Delete", mock.Anything, int64(3)).Return(errors.New("timeout"))

		svc := service.NewTaskService(mockRepo, service.InMemoryType)
		err := svc.DeleteTask(ctx, 3)

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "удаление задачи")
	})
}

// TestTaskService_DeleteAllTasks тестирует удаление всех задач
func TestTaskService_DeleteAllTasks(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name      string
		count     int64
		repoErr   error
		expectErr bool
	}{
		{name: "three tasks", count: 3},
		{name: "empty table", count: 0},
		{name: "storage failure", count: 0, repoErr: errors.New("boom"), expectErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockTaskRepository)
			mockRepo.On("DeleteAll", mock.Anything).Return(tt.count, tt.repoErr)

			svc := service.NewTaskService(mockRepo, service.InMemoryType)
			count, err := svc.DeleteAllTasks(ctx)

			if tt.expectErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.count, count)
			}
			mockRepo.AssertExpectations(t)
		})
	}
}

func TestBusinessError_Error(t *testing.T) {
	err := service.NewValidationError("description", "пусто")
	assert.Equal(t, "[VALIDATION_ERROR] Неверное значение поля 'description': пусто", err.Error())
	assert.Equal(t, "description", err.Details["field"])

	notFound := service.NewNotFound("задача", 5, repository.ErrNotFound)
	assert.Contains(t, notFound.Error(), "задача 5 не найдена")
	assert.Equal(t, int64(5), notFound.Details["id"])
}
