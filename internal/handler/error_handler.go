package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/Raymond9734/customer-registry/internal/models"
)

// handleError maps service errors to HTTP responses
func handleError(w http.ResponseWriter, err error, logger *slog.Logger) {
	var validationErr *models.ValidationError
	if errors.As(err, &validationErr) {
		respondJSON(w, http.StatusBadRequest, ErrorResponse{
			Error: ErrorDetail{
				Code:       models.CodeInvalidInput,
				Message:    "Validation failed",
				Violations: validationErr.Violations,
			},
		})
		return
	}

	var appErr *models.AppError
	if errors.As(err, &appErr) {
		status := mapErrorCodeToHTTPStatus(appErr.Code)
		if status >= http.StatusInternalServerError {
			// Log store failures but don't expose details to client
			logger.Error("store failure", slog.String("error", err.Error()))
			respondError(w, status, appErr.Code, "The customer store is unavailable")
			return
		}
		respondError(w, status, appErr.Code, appErr.Message)
		return
	}

	switch {
	case errors.Is(err, models.ErrNotFound):
		respondError(w, http.StatusNotFound, models.CodeNotFound, err.Error())

	case errors.Is(err, models.ErrConflict):
		respondError(w, http.StatusConflict, models.CodeConflict, err.Error())

	default:
		logger.Error("internal server error",
			slog.String("error", err.Error()),
		)
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An unexpected error occurred")
	}
}

// mapErrorCodeToHTTPStatus maps error codes to HTTP status codes
func mapErrorCodeToHTTPStatus(code string) int {
	switch code {
	case models.CodeInvalidInput:
		return http.StatusBadRequest
	case models.CodeNotFound:
		return http.StatusNotFound
	case models.CodeConflict:
		return http.StatusConflict
	case models.CodeUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
