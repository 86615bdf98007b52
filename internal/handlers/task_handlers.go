package handlers

import (
	"net/http"
	"taskList/internal/handlers/dto"
	"taskList/internal/logger"

	"go.uber.org/zap"
)

const serviceName = "task-list"

type TaskHandler struct {
	TaskService Service
}

func NewTaskHandler(taskService Service) *TaskHandler {
	return &TaskHandler{
		TaskService: taskService,
	}
}

// GET /tasks
func (s *TaskHandler) GetTasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := s.TaskService.ListTasks(r.Context())
	if err != nil {
		handleServiceError(w, r, err, "list_tasks")
		return
	}

	logger.Info("Handler: Задачи получены", zap.Int("count", len(tasks)))

	responseWithJSON(w, http.StatusOK, dto.FromTaskList(tasks))
}

// POST /tasks
func (s *TaskHandler) PostTask(w http.ResponseWriter, r *http.Request) {
	if !requireJSON(w, r) {
		return
	}

	var request dto.CreateTaskRequest
	if err := decodeJSON(w, r, &request); err != nil {
		logger.Warn("HTTP: ошибка чтения JSON",
			zap.Error(err),
			zap.String("client_ip", r.RemoteAddr))

		responseWithError(w, r, http.StatusBadRequest, errCodeBadRequest, "неверное тело запроса: "+err.Error())
		return
	}

	created, err := s.TaskService.CreateTask(r.Context(), request.Description)
	if err != nil {
		handleServiceError(w, r, err, "create_task")
		return
	}

	logger.Info("Handler: Задача создана", zap.Int64("task_id", created.ID))

	responseWithJSON(w, http.StatusCreated, dto.FromTask(created))
}

// PUT /tasks/{id}
func (s *TaskHandler) UpdateTaskByID(w http.ResponseWriter, r *http.Request) {
	id, ok := taskIDFromPath(w, r)
	if !ok {
		return
	}

	if !requireJSON(w, r) {
		return
	}

	var request dto.UpdateTaskRequest
	if err := decodeJSON(w, r, &request); err != nil {
		logger.Warn("HTTP: ошибка чтения JSON",
			zap.Error(err),
			zap.String("client_ip", r.RemoteAddr))

		responseWithError(w, r, http.StatusBadRequest, errCodeBadRequest, "неверно переданы параметры обновления: "+err.Error())
		return
	}

	updated, err := s.TaskService.UpdateTask(r.Context(), id, request.ToPatch())
	if err != nil {
		handleServiceError(w, r, err, "update_task")
		return
	}

	logger.Info("Handler: Задача обновлена", zap.Int64("task_id", id))

	responseWithJSON(w, http.StatusOK, dto.FromTask(updated))
}

// DELETE /tasks/{id}
func (s *TaskHandler) DeleteTaskByID(w http.ResponseWriter, r *http.Request) {
	id, ok := taskIDFromPath(w, r)
	if !ok {
		return
	}

	if err := s.TaskService.DeleteTask(r.Context(), id); err != nil {
		handleServiceError(w, r, err, "delete_task")
		return
	}

	logger.Info("Handler: Задача удалена", zap.Int64("task_id", id))

	responseWithJSON(w, http.StatusOK, dto.DeleteTaskResponse{
		Message: "задача удалена",
		ID:      id,
	})
}

// DELETE /tasks
func (s *TaskHandler) DeleteAllTasks(w http.ResponseWriter, r *http.Request) {
	count, err := s.TaskService.DeleteAllTasks(r.Context())
	if err != nil {
		handleServiceError(w, r, err, "delete_all_tasks")
		return
	}

	logger.Info("Handler: Все задачи удалены", zap.Int64("count", count))

	responseWithJSON(w, http.StatusOK, dto.DeleteAllResponse{
		Message: "все задачи удалены",
		Count:   count,
	})
}

// GET /health
func (s *TaskHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	response := dto.HealthResponse{
		Status:  "ok",
		Service: serviceName,
		Storage: string(s.TaskService.RepoType()),
	}

	if err := s.TaskService.HealthCheck(r.Context()); err != nil {
		logger.Error("HTTP: Хранилище недоступно", err)
		response.Status = "unavailable"
		responseWithJSON(w, http.StatusServiceUnavailable, response)
		return
	}

	responseWithJSON(w, http.StatusOK, response)
}
