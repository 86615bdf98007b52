package handlers

import (
	"context"
	"taskList/internal/models/task"
	"taskList/internal/service"
)

type Service interface {
	HealthCheck(context.Context) error
	RepoType() service.RepoType
	ListTasks(context.Context) ([]*task.Task, error)
	CreateTask(context.Context, string) (*task.Task, error)
	UpdateTask(context.Context, int64, task.Patch) (*task.Task, error)
	DeleteTask(context.Context, int64) error
	DeleteAllTasks(context.Context) (int64, error)
}

var _ Service = (*service.TaskService)(nil)
