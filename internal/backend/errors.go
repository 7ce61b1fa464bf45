package backend

import (
	"errors"
	"fmt"
	"strings"
)

// ErrBackendUnavailable wraps transport-level failures so callers can keep
// the all-or-nothing contract: nothing was committed.
var ErrBackendUnavailable = errors.New("booking backend unavailable")

// APIError is a non-2xx answer from the backend with whatever message the
// body carried.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("backend returned %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("backend returned %d", e.StatusCode)
}

// apiErrorBody matches the backend's error envelope: either a message, a
// list of errors, or a field->messages map.
type apiErrorBody struct {
	Message string      `json:"message"`
	Errors  interface{} `json:"errors"`
}

func (b *apiErrorBody) text() string {
	if strings.TrimSpace(b.Message) != "" {
		return b.Message
	}

	switch errs := b.Errors.(type) {
	case []interface{}:
		parts := make([]string, 0, len(errs))
		for _, e := range errs {
			if s, ok := e.(string); ok && s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, ", ")
	case map[string]interface{}:
		var parts []string
		for _, v := range errs {
			if list, ok := v.([]interface{}); ok {
				for _, e := range list {
					if s, ok := e.(string); ok && s != "" {
						parts = append(parts, s)
					}
				}
			}
		}
		return strings.Join(parts, ", ")
	}

	return ""
}
