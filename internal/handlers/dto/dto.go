package dto

import (
	"taskList/internal/models/task"
	"time"
)

type CreateTaskRequest struct {
	Description string `json:"description"`
}

type UpdateTaskRequest struct {
	Description *string `json:"description,omitempty"`
	Completed   *bool   `json:"completed,omitempty"`
}

func (r UpdateTaskRequest) ToPatch() task.Patch {
	return task.Patch{
		Description: r.Description,
		Completed:   r.Completed,
	}
}

type TaskResponse struct {
	ID          int64     `json:"id" yaml:"id"`
	Description string    `json:"description" yaml:"description"`
	Completed   bool      `json:"completed" yaml:"completed"`
	CreatedAt   time.Time `json:"created_at" yaml:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" yaml:"updated_at"`
}

type DeleteTaskResponse struct {
	Message string `json:"message"`
	ID      int64  `json:"id"`
}

type DeleteAllResponse struct {
	Message string `json:"message"`
	Count   int64  `json:"count"`
}

type ErrorResponse struct {
	Error     string         `json:"error"`
	Message   string         `json:"message"`
	Details   map[string]any `json:"details,omitempty"`
	RequestID string         `json:"request_id,omitempty"`
}

type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Storage string `json:"storage"`
}

func FromTask(t *task.Task) TaskResponse {
	return TaskResponse{
		ID:          t.ID,
		Description: t.Description,
		Completed:   t.Completed,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

// FromTaskList никогда не возвращает nil, чтобы пустой список кодировался как []
func FromTaskList(tasks []*task.Task) []TaskResponse {
	result := make([]TaskResponse, len(tasks))
	for i, t := range tasks {
		result[i] = FromTask(t)
	}
	return result
}
