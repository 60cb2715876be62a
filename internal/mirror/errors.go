package mirror

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// APIError is a non-2xx response from the Mirror API.
type APIError struct {
	Operation  string
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: HTTP %d: %s", e.Operation, e.StatusCode, e.Message)
}

// The API reports failures as {"error": "..."}; anything else is passed
// through as text.
func newAPIError(operation string, status int, statusText string, body []byte) *APIError {
	var rs struct {
		Error string `json:"error"`
	}
	msg := strings.TrimSpace(string(body))
	if json.Unmarshal(body, &rs) == nil && rs.Error != "" {
		msg = rs.Error
	}
	if msg == "" {
		msg = statusText
	}
	return &APIError{Operation: operation, StatusCode: status, Message: msg}
}

// IsNotFound reports whether err is an APIError with status 404.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}
