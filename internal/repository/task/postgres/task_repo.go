package postgres

import (
	"context"
	"errors"
	"fmt"
	"taskList/internal/logger"
	"taskList/internal/models/task"
	repo "taskList/internal/repository"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const slowQuery = 100 * time.Millisecond

type Storage struct {
	pool *pgxpool.Pool
}

type Option func(*pgxpool.Config)

func WithPoolSize(maxConns, minConns int32) Option {
	return func(c *pgxpool.Config) {
		if maxConns > 0 {
			c.MaxConns = maxConns
		}
		if minConns > 0 {
			c.MinConns = minConns
		}
	}
}

func WithIdleTimeout(timeout time.Duration) Option {
	return func(c *pgxpool.Config) {
		if timeout > 0 {
			c.MaxConnIdleTime = timeout
		}
	}
}

func New(ctx context.Context, connString string, options ...Option) (*Storage, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		logger.Error("Repository: Ошибка загрузки конфига", err)
		return nil, fmt.Errorf("загрузка конфига: %w", err)
	}

	config.MaxConns = 10
	config.MinConns = 2
	config.MaxConnIdleTime = time.Minute * 5
	for _, opt := range options {
		opt(config)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		logger.Error("Repository: Ошибка создания пула", err)
		return nil, fmt.Errorf("создание пула: %w", err)
	}

	err = pool.Ping(ctx)
	if err != nil {
		pool.Close()
		logger.Error("Repository: Неудачная проверка ping", err)
		return nil, fmt.Errorf("проверка соединения ping: %w", err)
	}

	logger.Info("Repository: Успешное создание подключения к PostgreSQL")
	return &Storage{pool: pool}, nil
}

func (s *Storage) Close() {
	s.pool.Close()
	logger.Info("Repository: Закрытие всех соединений PostgreSQL")
}

func (s *Storage) HealthCheck(ctx context.Context) error {
	err := s.pool.Ping(ctx)
	if err != nil {
		logger.Error("Repository: Неудачная проверка ping", err)
		return fmt.Errorf("проверка соединения ping: %w", err)
	}
	return nil
}

func (s *Storage) List(ctx context.Context) ([]*task.Task, error) {
	start := time.Now()

	query := `SELECT
				id,
				description,
				completed,
				created_at,
				updated_at
			FROM tasks
			ORDER BY created_at DESC, id DESC`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		logger.Error("Repository: Не удалось получить задачи", err, zap.Duration("ms", time.Since(start)))
		return nil, fmt.Errorf("получение задач: %w", err)
	}

	tasks, err := pgx.CollectRows(rows, pgx.RowToAddrOfStructByName[task.Task])
	if err != nil {
		logger.Error("Repository: Ошибка сканирования задач", err)
		return nil, fmt.Errorf("сканирование задач: %w", err)
	}

	warnIfSlow("list", start)
	return tasks, nil
}

func (s *Storage) Create(ctx context.Context, taskToCreate *task.Task) error {
	start := time.Now()

	query := `INSERT INTO tasks
				(description, completed)
				VALUES ($1, $2)
				RETURNING id, created_at, updated_at`

	err := s.pool.QueryRow(ctx, query,
		taskToCreate.Description,
		taskToCreate.Completed,
	).Scan(&taskToCreate.ID, &taskToCreate.CreatedAt, &taskToCreate.UpdatedAt)

	if err != nil {
		logger.Error("Repository: Не удалось добавить задачу", err, zap.Duration("ms", time.Since(start)))
		return fmt.Errorf("добавление задачи: %w", err)
	}

	warnIfSlow("create", start)
	return nil
}

// Update меняет только переданные поля; NULL в COALESCE оставляет старое значение
func (s *Storage) Update(ctx context.Context, id int64, patch task.Patch) (*task.Task, error) {
	start := time.Now()

	query := `UPDATE tasks
			SET description = COALESCE($1, description),
				completed = COALESCE($2, completed),
				updated_at = NOW()
			WHERE id = $3
			RETURNING id, description, completed, created_at, updated_at`

	updated := &task.Task{}
	err := s.pool.QueryRow(ctx, query, patch.Description, patch.Completed, id).Scan(
		&updated.ID,
		&updated.Description,
		&updated.Completed,
		&updated.CreatedAt,
		&updated.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repo.ErrNotFound
		}
		logger.Error("Repository: Не удалось обновить задачу", err, zap.Int64("task_id", id))
		return nil, fmt.Errorf("обновление задачи: %w", err)
	}

	warnIfSlow("update", start)
	return updated, nil
}

func (s *Storage) Delete(ctx context.Context, id int64) error {
	start := time.Now()

	query := `DELETE FROM tasks
				WHERE id = $1`

	tag, err := s.pool.Exec(ctx, query, id)
	if err != nil {
		logger.Error("Repository: Удаление задачи", err, zap.Duration("ms", time.Since(start)))
		return fmt.Errorf("удаление задачи: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return repo.ErrNotFound
	}

	warnIfSlow("delete", start)
	return nil
}

func (s *Storage) DeleteAll(ctx context.Context) (int64, error) {
	start := time.Now()

	tag, err := s.pool.Exec(ctx, `DELETE FROM tasks`)
	if err != nil {
		logger.Error("Repository: Удаление всех задач", err, zap.Duration("ms", time.Since(start)))
		return 0, fmt.Errorf("удаление всех задач: %w", err)
	}

	warnIfSlow("delete_all", start)
	return tag.RowsAffected(), nil
}

func warnIfSlow(operation string, start time.Time) {
	if elapsed := time.Since(start); elapsed > slowQuery {
		logger.Warn("Repository: Медленный запрос",
			zap.String("operation", operation),
			zap.Duration("ms", elapsed))
	}
}
