package service

import (
	"context"
	"errors"
	"fmt"
	"taskList/internal/logger"
	"taskList/internal/models/task"
	rep "taskList/internal/repository"

	"go.uber.org/zap"
)

const resourceTask = "задача"

// здесь происходит проверка ошибок бизнес-логики

type TaskService struct {
	repo     TaskRepository
	repoType RepoType
}

func NewTaskService(repo TaskRepository, repoType RepoType) *TaskService {
	return &TaskService{
		repo:     repo,
		repoType: repoType,
	}
}

func (s *TaskService) RepoType() RepoType {
	return s.repoType
}

func (s *TaskService) HealthCheck(ctx context.Context) error {
	if err := s.repo.HealthCheck(ctx); err != nil {
		return fmt.Errorf("проверка здоровья сервиса: %w", err)
	}
	return nil
}

func (s *TaskService) ListTasks(ctx context.Context) ([]*task.Task, error) {
	tasks, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("получение задач: %w", err)
	}
	return tasks, nil
}

func (s *TaskService) CreateTask(ctx context.Context, description string) (*task.Task, error) {
	description, ok := task.NormalizeDescription(description)
	if !ok {
		logger.Info("Service: Пустое описание задачи")
		return nil, NewValidationError("description", "описание задачи не может быть пустым")
	}

	created := &task.Task{
		Description: description,
		Completed:   false,
	}

	if err := s.repo.Create(ctx, created); err != nil {
		return nil, fmt.Errorf("создание задачи: %w", err)
	}

	logger.Info("Service: Задача создана", zap.Int64("task_id", created.ID))
	return created, nil
}

func (s *TaskService) UpdateTask(ctx context.Context, id int64, patch task.Patch) (*task.Task, error) {
	patch = patch.Normalize()
	if patch.IsEmpty() {
		logger.Info("Service: Нет полей для обновления", zap.Int64("target_id", id))
		return nil, NewBusinessError(CodeValidation, "нет полей для обновления",
			ToDetail("fields", []string{"description", "completed"}),
		)
	}

	updated, err := s.repo.Update(ctx, id, patch)
	if err != nil {
		if errors.Is(err, rep.ErrNotFound) {
			logger.Info("Service: Задача не найдена", zap.Int64("target_id", id))
			return nil, NewNotFound(resourceTask, id, err)
		}
		return nil, fmt.Errorf("обновление задачи: %w", err)
	}
	return updated, nil
}

func (s *TaskService) DeleteTask(ctx context.Context, id int64) error {
	err := s.repo.Delete(ctx, id)
	if err != nil {
		if errors.Is(err, rep.ErrNotFound) {
			logger.Info("Service: Задача не найдена", zap.Int64("target_id", id))
			return NewNotFound(resourceTask, id, err)
		}
		return fmt.Errorf("удаление задачи: %w", err)
	}
	return nil
}

func (s *TaskService) DeleteAllTasks(ctx context.Context) (int64, error) {
	count, err := s.repo.DeleteAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("удаление всех задач: %w", err)
	}

	logger.Info("Service: Все задачи удалены", zap.Int64("count", count))
	return count, nil
}
