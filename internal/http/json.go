package httpx

import (
	"bytes"
	"encoding/json"
	"net/http"

	apperrors "github.com/target/event-planner/internal/errors"
)

// WriteJSON writes a JSON response with the given status code and data.
func WriteJSON(w http.ResponseWriter, code int, v any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if _, err := buf.WriteTo(w); err != nil {
		// Response writer errors (e.g., client disconnect) can't be recovered from here.
		return
	}
}

// WriteErrorMessage writes {"error": msg} with the given status.
func WriteErrorMessage(w http.ResponseWriter, code int, msg string) {
	WriteJSON(w, code, map[string]string{"error": msg})
}

// StatusForError maps an AppError code to an HTTP status. Unknown errors are 500.
func StatusForError(err error) int {
	switch apperrors.GetCode(err) {
	case apperrors.ErrCodeValidation:
		return http.StatusBadRequest
	case apperrors.ErrCodeNotFound:
		return http.StatusNotFound
	case apperrors.ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case apperrors.ErrCodeForbidden:
		return http.StatusForbidden
	case apperrors.ErrCodeConflict:
		return http.StatusConflict
	case apperrors.ErrCodeTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// writeAppError writes err as {"error": message}. Internal errors never expose their message.
func writeAppError(w http.ResponseWriter, err error, fallback string) {
	status := StatusForError(err)
	msg := fallback
	if status != http.StatusInternalServerError || apperrors.IsUpstream(err) {
		msg = apperrors.PublicMessage(err, fallback)
	}
	WriteErrorMessage(w, status, msg)
}
