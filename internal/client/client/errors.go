package client

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/studysync/internal/common"
)

// APIError is a non-2xx backend response.
type APIError struct {
	StatusCode int
	Detail     string
	kind       error
}

func (e *APIError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("%s (HTTP %d)", e.kind, e.StatusCode)
	}
	return fmt.Sprintf("%s (HTTP %d): %s", e.kind, e.StatusCode, e.Detail)
}

// Unwrap exposes the sentinel kind so callers can use errors.Is.
func (e *APIError) Unwrap() error {
	return e.kind
}

// NewAPIError builds an APIError for status with the given detail text.
func NewAPIError(status int, detail string) *APIError {
	return &APIError{StatusCode: status, Detail: detail, kind: mapStatus(status)}
}

func mapStatus(status int) error {
	switch {
	case status == http.StatusBadRequest, status == http.StatusUnprocessableEntity, status == http.StatusConflict:
		return common.ErrValidation
	case status == http.StatusUnauthorized:
		return common.ErrUnauthenticated
	case status == http.StatusForbidden:
		return common.ErrForbidden
	case status == http.StatusNotFound:
		return common.ErrNotFound
	case status == http.StatusTooManyRequests:
		return common.ErrRateLimited
	default:
		return common.ErrServer
	}
}

// parseDetail extracts the {detail} field of an error body. Validation
// errors may carry a structured detail; it is kept as compact JSON text.
func parseDetail(body []byte) string {
	var env struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &env); err != nil || len(env.Detail) == 0 {
		return strings.TrimSpace(string(body))
	}
	var s string
	if err := json.Unmarshal(env.Detail, &s); err == nil {
		return s
	}
	return string(env.Detail)
}
