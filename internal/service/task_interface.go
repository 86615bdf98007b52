package service

import (
	"context"
	"taskList/internal/models/task"
)

type TaskRepository interface {
	HealthCheck(context.Context) error
	List(context.Context) ([]*task.Task, error)
	Create(context.Context, *task.Task) error
	Update(context.Context, int64, task.Patch) (*task.Task, error)
	Delete(context.Context, int64) error
	DeleteAll(context.Context) (int64, error)
}

type RepoType string

const (
	PostgresType RepoType = "postgres"
	MySQLType    RepoType = "mysql"
	InMemoryType RepoType = "inmemory"
)
