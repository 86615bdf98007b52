package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"taskList/internal/logger"
	"taskList/internal/models/task"
	repo "taskList/internal/repository"
	"time"

	"go.uber.org/zap"
)

const slowQuery = 100 * time.Millisecond

const selectColumns = `SELECT
				id,
				description,
				completed,
				created_at,
				updated_at
			FROM tasks`

// Storage работает с MySQL через database/sql; в MySQL нет RETURNING,
// поэтому создание и обновление делают запись, затем чтение
type Storage struct {
	db *sql.DB
}

func New(ctx context.Context, cfg Config) (*Storage, error) {
	db, err := openDatabase(ctx, cfg)
	if err != nil {
		logger.Error("Repository: Не удалось подключиться к MySQL", err)
		return nil, err
	}

	logger.Info("Repository: Успешное создание подключения к MySQL")
	return &Storage{db: db}, nil
}

func (s *Storage) Close() {
	if err := s.db.Close(); err != nil {
		logger.Warn("Repository: Ошибка закрытия соединений MySQL", zap.Error(err))
		return
	}
	logger.Info("Repository: Закрытие всех соединений MySQL")
}

func (s *Storage) HealthCheck(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		logger.Error("Repository: Неудачная проверка ping", err)
		return fmt.Errorf("проверка соединения ping: %w", err)
	}
	return nil
}

func (s *Storage) List(ctx context.Context) ([]*task.Task, error) {
	start := time.Now()

	rows, err := s.db.QueryContext(ctx, selectColumns+` ORDER BY created_at DESC, id DESC`)
	if err != nil {
		logger.Error("Repository: Не удалось получить задачи", err, zap.Duration("ms", time.Since(start)))
		return nil, fmt.Errorf("получение задач: %w", err)
	}
	defer rows.Close()

	tasks := []*task.Task{}
	for rows.Next() {
		t := &task.Task{}
		if err := rows.Scan(&t.ID, &t.Description, &t.Completed, &t.CreatedAt, &t.UpdatedAt); err != nil {
			logger.Error("Repository: Ошибка сканирования задачи", err)
			return nil, fmt.Errorf("сканирование задачи: %w", err)
		}
		tasks = append(tasks, t)
	}

	if err := rows.Err(); err != nil {
		logger.Error("Repository: Ошибка итерации по строкам", err)
		return nil, fmt.Errorf("итерация по строкам: %w", err)
	}

	warnIfSlow("list", start)
	return tasks, nil
}

func (s *Storage) Create(ctx context.Context, taskToCreate *task.Task) error {
	start := time.Now()

	result, err := s.db.ExecContext(ctx,
		`INSERT INTO tasks (description, completed) VALUES (?, ?)`,
		taskToCreate.Description,
		taskToCreate.Completed,
	)
	if err != nil {
		logger.Error("Repository: Не удалось добавить задачу", err, zap.Duration("ms", time.Since(start)))
		return fmt.Errorf("добавление задачи: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("получение id новой задачи: %w", err)
	}

	created, err := s.getByID(ctx, id)
	if err != nil {
		return fmt.Errorf("чтение новой задачи: %w", err)
	}
	*taskToCreate = *created

	warnIfSlow("create", start)
	return nil
}

func (s *Storage) Update(ctx context.Context, id int64, patch task.Patch) (*task.Task, error) {
	start := time.Now()

	query := `UPDATE tasks
			SET description = COALESCE(?, description),
				completed = COALESCE(?, completed),
				updated_at = CURRENT_TIMESTAMP(6)
			WHERE id = ?`

	result, err := s.db.ExecContext(ctx, query, patch.Description, patch.Completed, id)
	if err != nil {
		logger.Error("Repository: Не удалось обновить задачу", err, zap.Int64("task_id", id))
		return nil, fmt.Errorf("обновление задачи: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("обновление задачи: %w", err)
	}
	if affected == 0 {
		return nil, repo.ErrNotFound
	}

	updated, err := s.getByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("чтение обновлённой задачи: %w", err)
	}

	warnIfSlow("update", start)
	return updated, nil
}

func (s *Storage) Delete(ctx context.Context, id int64) error {
	start := time.Now()

	result, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		logger.Error("Repository: Удаление задачи", err, zap.Duration("ms", time.Since(start)))
		return fmt.Errorf("удаление задачи: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("удаление задачи: %w", err)
	}
	if affected == 0 {
		return repo.ErrNotFound
	}

	warnIfSlow("delete", start)
	return nil
}

func (s *Storage) DeleteAll(ctx context.Context) (int64, error) {
	start := time.Now()

	result, err := s.db.ExecContext(ctx, `DELETE FROM tasks`)
	if err != nil {
		logger.Error("Repository: Удаление всех задач", err, zap.Duration("ms", time.Since(start)))
		return 0, fmt.Errorf("удаление всех задач: %w", err)
	}

	count, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("удаление всех задач: %w", err)
	}

	warnIfSlow("delete_all", start)
	return count, nil
}

func (s *Storage) getByID(ctx context.Context, id int64) (*task.Task, error) {
	t := &task.Task{}
	err := s.db.QueryRowContext(ctx, selectColumns+` WHERE id = ?`, id).
		Scan(&t.ID, &t.Description, &t.Completed, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repo.ErrNotFound
		}
		logger.Error("Repository: Не удалось получить задачу", err, zap.Int64("task_id", id))
		return nil, fmt.Errorf("получение задачи: %w", err)
	}
	return t, nil
}

func warnIfSlow(operation string, start time.Time) {
	if elapsed := time.Since(start); elapsed > slowQuery {
		logger.Warn("Repository: Медленный запрос",
			zap.String("operation", operation),
			zap.Duration("ms", elapsed))
	}
}
