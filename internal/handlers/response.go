package handlers

import (
	"encoding/json"
	"net/http"
	"taskList/internal/handlers/dto"
	"taskList/internal/logger"
	"taskList/internal/middleware"

	"go.uber.org/zap"
)

const (
	errCodeInternal        = "INTERNAL_ERROR"
	errCodeBadRequest      = "BAD_REQUEST"
	errCodeUnsupportedType = "UNSUPPORTED_MEDIA_TYPE"
)

func responseWithJSON(w http.ResponseWriter, code int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Warn("HTTP: Ошибка записи ответа", zap.Error(err))
	}
}

func responseWithError(w http.ResponseWriter, r *http.Request, code int, errCode, message string) {
	responseWithJSON(w, code, dto.ErrorResponse{
		Error:     errCode,
		Message:   message,
		RequestID: middleware.GetRequestID(r.Context()),
	})
}
