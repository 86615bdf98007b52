package client

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"taskList/internal/handlers/dto"
	"taskList/internal/logger"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var (
	ErrEmptyDescription = errors.New("описание задачи не может быть пустым")
	ErrCancelled        = errors.New("действие отменено")
)

// Confirmer спрашивает пользователя перед необратимым действием
type Confirmer interface {
	Confirm(prompt string) bool
}

type ConfirmFunc func(prompt string) bool

func (f ConfirmFunc) Confirm(prompt string) bool {
	return f(prompt)
}

// Session выполняет действия пользователя. После каждой мутации состояние
// перечитывается с сервера целиком, независимо от исхода запроса.
// Добавление, редактирование и удаление всех задач возвращают ошибку вызывающему,
// остальные действия только пишут предупреждение в лог
type Session struct {
	client  *Client
	confirm Confirmer
	view    View
}

func NewSession(client *Client, confirm Confirmer) *Session {
	return &Session{
		client:  client,
		confirm: confirm,
	}
}

func (s *Session) View() View {
	return s.view
}

// Refresh заменяет локальный View ответом сервера. При ошибке остаётся прежний
func (s *Session) Refresh(ctx context.Context) View {
	tasks, err := s.client.List(ctx)
	if err != nil {
		logger.Warn("Client: Не удалось загрузить задачи", zap.Error(err))
		return s.view
	}

	s.view = NewView(tasks)
	return s.view
}

func (s *Session) Add(ctx context.Context, description string) (dto.TaskResponse, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return dto.TaskResponse{}, ErrEmptyDescription
	}

	created, err := s.client.Create(ctx, description)
	s.Refresh(ctx)
	return created, err
}

func (s *Session) Toggle(ctx context.Context, id int64, completed bool) {
	_, err := s.client.Update(ctx, id, dto.UpdateTaskRequest{Completed: &completed})
	if err != nil {
		logger.Warn("Client: Не удалось изменить статус задачи",
			zap.Int64("task_id", id),
			zap.Error(err))
	}
	s.Refresh(ctx)
}

func (s *Session) Edit(ctx context.Context, id int64, description string) (dto.TaskResponse, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return dto.TaskResponse{}, ErrEmptyDescription
	}

	updated, err := s.client.Update(ctx, id, dto.UpdateTaskRequest{Description: &description})
	s.Refresh(ctx)
	return updated, err
}

// Remove возвращает false, если пользователь не подтвердил удаление
func (s *Session) Remove(ctx context.Context, id int64) bool {
	if !s.confirm.Confirm(fmt.Sprintf("Удалить задачу %d?", id)) {
		return false
	}

	if _, err := s.client.Delete(ctx, id); err != nil {
		logger.Warn("Client: Не удалось удалить задачу",
			zap.Int64("task_id", id),
			zap.Error(err))
	}
	s.Refresh(ctx)
	return true
}

// ClearCompleted удаляет выполненные задачи текущего View параллельно,
// дожидается всех запросов и только потом синхронизируется.
// Возвращает число успешно удалённых задач
func (s *Session) ClearCompleted(ctx context.Context) int {
	done := s.view.Completed()
	if len(done) == 0 {
		return 0
	}
	if !s.confirm.Confirm(fmt.Sprintf("Удалить выполненные задачи (%d)?", len(done))) {
		return 0
	}

	var removed atomic.Int64
	var g errgroup.Group
	for _, t := range done {
		g.Go(func() error {
			if _, err := s.client.Delete(ctx, t.ID); err != nil {
				logger.Warn("Client: Не удалось удалить выполненную задачу",
					zap.Int64("task_id", t.ID),
					zap.Error(err))
				return err
			}
			removed.Add(1)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		logger.Warn("Client: Удалены не все выполненные задачи",
			zap.Int64("removed", removed.Load()),
			zap.Int("total", len(done)))
	}

	s.Refresh(ctx)
	return int(removed.Load())
}

func (s *Session) DeleteAll(ctx context.Context) (int64, error) {
	if !s.confirm.Confirm(fmt.Sprintf("Удалить все задачи (%d)? Это действие нельзя отменить", s.view.Len())) {
		return 0, ErrCancelled
	}

	deleted, err := s.client.DeleteAll(ctx)
	s.Refresh(ctx)
	if err != nil {
		return 0, err
	}
	return deleted.Count, nil
}
