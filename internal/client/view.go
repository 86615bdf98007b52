package client

import (
	"slices"
	"taskList/internal/handlers/dto"
)

// View - снимок состояния сервера в порядке показа. Никогда не меняется на месте:
// каждая синхронизация строит новый View из ответа GET /tasks
type View struct {
	tasks []dto.TaskResponse
}

type Stats struct {
	Total     int `json:"total" yaml:"total"`
	Completed int `json:"completed" yaml:"completed"`
	Pending   int `json:"pending" yaml:"pending"`
}

// NewView ставит невыполненные задачи перед выполненными; внутри группы
// сохраняется порядок сервера
func NewView(state []dto.TaskResponse) View {
	tasks := slices.Clone(state)
	slices.SortStableFunc(tasks, func(a, b dto.TaskResponse) int {
		return rank(a) - rank(b)
	})
	return View{tasks: tasks}
}

func rank(t dto.TaskResponse) int {
	if t.Completed {
		return 1
	}
	return 0
}

func (v View) Tasks() []dto.TaskResponse {
	return slices.Clone(v.tasks)
}

func (v View) Len() int {
	return len(v.tasks)
}

func (v View) Completed() []dto.TaskResponse {
	var done []dto.TaskResponse
	for _, t := range v.tasks {
		if t.Completed {
			done = append(done, t)
		}
	}
	return done
}

func (v View) Find(id int64) (dto.TaskResponse, bool) {
	for _, t := range v.tasks {
		if t.ID == id {
			return t, true
		}
	}
	return dto.TaskResponse{}, false
}

func (v View) Stats() Stats {
	completed := len(v.Completed())
	return Stats{
		Total:     len(v.tasks),
		Completed: completed,
		Pending:   len(v.tasks) - completed,
	}
}
