package backend

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/serenespa/admin-console/internal/refresh"
)

// APIError is a non-2xx answer from the backend.
type APIError struct {
	Status  int
	Message string
	Body    []byte
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("backend returned %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("backend returned %d", e.Status)
}

func (e *APIError) StatusCode() int { return e.Status }

// Is lets errors.Is(err, refresh.ErrUnauthorized) match a 401.
func (e *APIError) Is(target error) bool {
	return target == refresh.ErrUnauthorized && e.Status == http.StatusUnauthorized
}

func newAPIError(status int, body []byte) *APIError {
	return &APIError{Status: status, Message: messageFrom(body), Body: body}
}

// messageFrom reads the human readable field of an error payload; the
// backend is not consistent about its name.
func messageFrom(body []byte) string {
	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	for _, k := range []string{"message", "error", "msg"} {
		if s, ok := payload[k].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

// DisplayMessage returns the string to show a user for err.
func DisplayMessage(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}
