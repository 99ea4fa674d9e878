package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/metatext-labs/metatext-cli/internal/core/domain"
)

// maxErrorBody bounds how much of an error response we read.
const maxErrorBody = 64 * 1024

// APIError is a non-2xx response from the backend. Detail carries the
// backend's human-readable message when the body included one.
type APIError struct {
	StatusCode int
	Detail     string
	RequestID  string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("backend returned %d: %s", e.StatusCode, e.Detail)
	}
	return fmt.Sprintf("backend returned %d", e.StatusCode)
}

// Message returns the backend's own description of the failure, falling
// back to a generic status line. Surfaced to users as-is.
func (e *APIError) Message() string {
	if e.Detail != "" {
		return e.Detail
	}
	return fmt.Sprintf("request failed with status %d", e.StatusCode)
}

// Is maps well-known statuses onto domain sentinel errors so callers
// can branch with errors.Is.
func (e *APIError) Is(target error) bool {
	switch target {
	case domain.ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	case domain.ErrNotAuthenticated:
		return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
	case domain.ErrInvalidInput:
		return e.StatusCode == http.StatusBadRequest || e.StatusCode == http.StatusUnprocessableEntity
	}
	return false
}

// decodeAPIError builds an *APIError from a non-2xx response,
// extracting the body's detail field when present.
func decodeAPIError(resp *http.Response) error {
	apiErr := &APIError{
		StatusCode: resp.StatusCode,
		RequestID:  resp.Header.Get("X-Request-ID"),
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil || len(body) == 0 {
		return apiErr
	}

	var payload struct {
		Detail  string `json:"detail"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if payload.Detail != "" {
			apiErr.Detail = payload.Detail
		} else if payload.Message != "" {
			apiErr.Detail = payload.Message
		}
	}
	return apiErr
}
