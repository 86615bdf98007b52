package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"
	"taskList/internal/logger"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const maxBodyBytes = 1 << 20

func checkContentType(r *http.Request, target string) bool {
	contentType := r.Header.Get("Content-Type")
	if contentType == "" {
		return false
	}

	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}

	return mediaType == target
}

func parseTaskID(r *http.Request) (int64, error) {
	idParam := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(idParam, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("id должен быть целым числом: %q", idParam)
	}
	if id <= 0 {
		return 0, fmt.Errorf("id должен быть положительным: %d", id)
	}
	return id, nil
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	defer r.Body.Close()

	if err := decoder.Decode(dst); err != nil {
		return err
	}
	if err := decoder.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return errors.New("после JSON объекта есть лишние данные")
	}
	return nil
}

// requireJSON отвечает 415, если клиент явно прислал не application/json.
// Запрос без Content-Type читается как JSON
func requireJSON(w http.ResponseWriter, r *http.Request) bool {
	if r.Header.Get("Content-Type") == "" || checkContentType(r, "application/json") {
		return true
	}

	logger.Warn("HTTP: Неверный тип контента",
		zap.String("expected", "application/json"),
		zap.String("received", r.Header.Get("Content-Type")),
		zap.String("client_ip", r.RemoteAddr))

	responseWithError(w, r, http.StatusUnsupportedMediaType, errCodeUnsupportedType, "Content-Type должен быть application/json")
	return false
}

// taskIDFromPath отвечает 400, если {id} не положительное целое
func taskIDFromPath(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := parseTaskID(r)
	if err != nil {
		logger.Warn("HTTP: Не удалось получить id",
			zap.Error(err),
			zap.String("client_ip", r.RemoteAddr))

		responseWithError(w, r, http.StatusBadRequest, errCodeBadRequest, err.Error())
		return 0, false
	}
	return id, true
}
