package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"taskList/internal/handlers/dto"
	"time"
)

const defaultTimeout = 10 * time.Second

// APIError - ответ сервера со статусом 4xx/5xx
type APIError struct {
	Status    int
	Code      string
	Message   string
	RequestID string
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("HTTP %d", e.Status)
	}
	return fmt.Sprintf("HTTP %d %s: %s", e.Status, e.Code, e.Message)
}

func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}

type Client struct {
	baseURL    string
	httpClient *http.Client
}

type Option func(*Client)

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

func New(baseURL string, options ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, option := range options {
		option(c)
	}
	return c
}

func (c *Client) List(ctx context.Context) ([]dto.TaskResponse, error) {
	var tasks []dto.TaskResponse
	if err := c.do(ctx, http.MethodGet, "/tasks", nil, &tasks); err != nil {
		return nil, fmt.Errorf("список задач: %w", err)
	}
	return tasks, nil
}

func (c *Client) Create(ctx context.Context, description string) (dto.TaskResponse, error) {
	var created dto.TaskResponse
	err := c.do(ctx, http.MethodPost, "/tasks", dto.CreateTaskRequest{Description: description}, &created)
	if err != nil {
		return dto.TaskResponse{}, fmt.Errorf("создание задачи: %w", err)
	}
	return created, nil
}

func (c *Client) Update(ctx context.Context, id int64, request dto.UpdateTaskRequest) (dto.TaskResponse, error) {
	var updated dto.TaskResponse
	if err := c.do(ctx, http.MethodPut, taskPath(id), request, &updated); err != nil {
		return dto.TaskResponse{}, fmt.Errorf("обновление задачи %d: %w", id, err)
	}
	return updated, nil
}

func (c *Client) Delete(ctx context.Context, id int64) (dto.DeleteTaskResponse, error) {
	var deleted dto.DeleteTaskResponse
	if err := c.do(ctx, http.MethodDelete, taskPath(id), nil, &deleted); err != nil {
		return dto.DeleteTaskResponse{}, fmt.Errorf("удаление задачи %d: %w", id, err)
	}
	return deleted, nil
}

func (c *Client) DeleteAll(ctx context.Context) (dto.DeleteAllResponse, error) {
	var deleted dto.DeleteAllResponse
	if err := c.do(ctx, http.MethodDelete, "/tasks", nil, &deleted); err != nil {
		return dto.DeleteAllResponse{}, fmt.Errorf("удаление всех задач: %w", err)
	}
	return deleted, nil
}

func taskPath(id int64) string {
	return "/tasks/" + strconv.FormatInt(id, 10)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("кодирование запроса: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		apiErr := &APIError{Status: resp.StatusCode}
		var errBody dto.ErrorResponse
		if json.NewDecoder(resp.Body).Decode(&errBody) == nil {
			apiErr.Code = errBody.Error
			apiErr.Message = errBody.Message
			apiErr.RequestID = errBody.RequestID
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("разбор ответа: %w", err)
	}
	return nil
}
