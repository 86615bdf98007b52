package task

import (
	"strings"
	"time"
)

type Task struct {
	ID          int64     `json:"id" db:"id"`
	Description string    `json:"description" db:"description"`
	Completed   bool      `json:"completed" db:"completed"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// NormalizeDescription обрезает пробелы и сообщает, осталось ли что-то от текста
func NormalizeDescription(description string) (string, bool) {
	trimmed := strings.TrimSpace(description)
	return trimmed, trimmed != ""
}
