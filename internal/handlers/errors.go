package handlers

import (
	"errors"
	"net/http"
	"taskList/internal/handlers/dto"
	"taskList/internal/logger"
	"taskList/internal/middleware"
	"taskList/internal/service"

	"go.uber.org/zap"
)

// handleServiceError отвечает клиенту: бизнес-ошибки с подробностями,
// всё остальное логируется и скрывается за 500
func handleServiceError(w http.ResponseWriter, r *http.Request, err error, operation string) {
	requestID := middleware.GetRequestID(r.Context())

	var businessErr *service.BusinessError
	if errors.As(err, &businessErr) {
		statusCode := mapBusinessErrorToHTTP(businessErr.Code)

		logger.Warn("HTTP: Бизнес-ошибка",
			zap.String("request_id", requestID),
			zap.String("operation", operation),
			zap.String("error_code", businessErr.Code),
			zap.Int("http_status", statusCode))

		responseWithJSON(w, statusCode, dto.ErrorResponse{
			Error:     businessErr.Code,
			Message:   businessErr.Message,
			Details:   businessErr.Details,
			RequestID: requestID,
		})
		return
	}

	logger.Error("HTTP: Ошибка Service", err,
		zap.String("request_id", requestID),
		zap.String("operation", operation),
		zap.String("client_ip", r.RemoteAddr))

	responseWithError(w, r, http.StatusInternalServerError, errCodeInternal, "внутренняя ошибка сервера")
}

func mapBusinessErrorToHTTP(code string) int {
	switch code {
	case service.CodeNotFound:
		return http.StatusNotFound
	case service.CodeValidation:
		return http.StatusBadRequest
	default:
		return http.StatusBadRequest
	}
}
