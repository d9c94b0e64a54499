package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"octavia/internal/models"
)

// MsgUnexpected - ответ клиенту на любую непредвиденную ошибку
const MsgUnexpected = "An unexpected error occurred"

// SendJSON пишет body в формате JSON с заданным статусом
func SendJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("encode response", slog.String("error", err.Error()))
	}
}

// SendErrorResponse отправляет {"error": message}
func SendErrorResponse(w http.ResponseWriter, status int, message string) {
	SendJSON(w, status, models.ErrorResponse{Error: message})
}

// SendValidationError отправляет 400 со списком ошибок по полям
func SendValidationError(w http.ResponseWriter, fields []models.FieldError) {
	SendJSON(w, http.StatusBadRequest, models.ErrorResponse{
		Error:  "Validation failed",
		Errors: fields,
	})
}
