package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// Envelope is the uniform response wrapper shared by every endpoint.
type Envelope struct {
	Success   bool   `json:"success"`
	Message   string `json:"message,omitempty"`
	Data      any    `json:"data,omitempty"`
	Error     any    `json:"error,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

func WriteJSON(w http.ResponseWriter, status int, payload Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Warn("write json failed", "err", err)
	}
}

func Success(w http.ResponseWriter, data any, message, requestID string) {
	WriteJSON(w, http.StatusOK, Envelope{Success: true, Message: message, Data: data, RequestID: requestID})
}

func Fail(w http.ResponseWriter, status int, message, requestID string) {
	WriteJSON(w, status, Envelope{Success: false, Message: message, RequestID: requestID})
}

func FailWithDetails(w http.ResponseWriter, status int, message string, details any, requestID string) {
	WriteJSON(w, status, Envelope{Success: false, Message: message, Error: details, RequestID: requestID})
}

func NotFound(w http.ResponseWriter, message, requestID string) {
	Fail(w, http.StatusNotFound, message, requestID)
}

func Unauthorized(w http.ResponseWriter, message, requestID string) {
	Fail(w, http.StatusUnauthorized, message, requestID)
}

func Forbidden(w http.ResponseWriter, message, requestID string) {
	Fail(w, http.StatusForbidden, message, requestID)
}

func ServerError(w http.ResponseWriter, message, requestID string) {
	Fail(w, http.StatusInternalServerError, message, requestID)
}
