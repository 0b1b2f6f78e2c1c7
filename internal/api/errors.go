package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrUnauthorized maps a 401 from any endpoint. The surrounding surface
// decides what to do with it (usually: tell the user to run `moia login`).
var ErrUnauthorized = errors.New("not authenticated")

// FieldError is a server-reported application error tied to one input field,
// e.g. a duplicate username on register. Status keeps the original HTTP
// status so callers can distinguish conflicts from plain validation.
type FieldError struct {
	Field   string
	Message string
	Status  int
}

func (e *FieldError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("server error (status %d): %s", e.Status, e.Message)
	}
	return fmt.Sprintf("%s: %s (status %d)", e.Field, e.Message, e.Status)
}

// errorBody is the structured error shape the backend uses on 4xx.
type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Field   string `json:"field"`
}

// decodeError converts a non-2xx response body into an error value.
// 401 always maps to ErrUnauthorized; a structured body becomes a
// *FieldError; anything else becomes a generic error with the status.
func decodeError(status int, body []byte) error {
	if status == http.StatusUnauthorized {
		return ErrUnauthorized
	}
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err == nil {
		msg := eb.Message
		if msg == "" {
			msg = eb.Error
		}
		if msg != "" {
			return &FieldError{Field: eb.Field, Message: msg, Status: status}
		}
	}
	text := strings.TrimSpace(string(body))
	if text == "" {
		return fmt.Errorf("request failed: status=%d", status)
	}
	return fmt.Errorf("request failed: status=%d body=%s", status, text)
}
