package netbox

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

// ErrMultipleResults is returned by Get* lookups that match more than one record.
var ErrMultipleResults = errors.New("more than one object matched")

// APIError is a non-2xx response from the NetBox API.
type APIError struct {
	StatusCode int
	Method     string
	Path       string
	Detail     string
	// Fields holds per-field validation messages of a 400 response.
	Fields map[string][]string
}

func (e *APIError) Error() string {
	msg := e.Detail
	if msg == "" && len(e.Fields) > 0 {
		keys := make([]string, 0, len(e.Fields))
		for k := range e.Fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, fmt.Sprintf("%s: %s", k, strings.Join(e.Fields[k], "; ")))
		}
		msg = strings.Join(parts, ", ")
	}
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	return fmt.Sprintf("netbox %s %s: %d %s", e.Method, e.Path, e.StatusCode, msg)
}

// decodeAPIError builds an APIError from a response body. NetBox answers with
// either {"detail": "..."} or a map of field names to message lists.
func decodeAPIError(method, path string, status int, body []byte) *APIError {
	apiErr := &APIError{StatusCode: status, Method: method, Path: path}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		apiErr.Detail = strings.TrimSpace(truncate(string(body), 200))
		return apiErr
	}

	if d, ok := raw["detail"]; ok {
		var detail string
		if json.Unmarshal(d, &detail) == nil {
			apiErr.Detail = detail
		}
		return apiErr
	}

	apiErr.Fields = make(map[string][]string, len(raw))
	for field, v := range raw {
		var msgs []string
		if json.Unmarshal(v, &msgs) == nil {
			apiErr.Fields[field] = msgs
			continue
		}
		var msg string
		if json.Unmarshal(v, &msg) == nil {
			apiErr.Fields[field] = []string{msg}
			continue
		}
		apiErr.Fields[field] = []string{string(v)}
	}
	return apiErr
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

func statusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

// IsNotFound checks if an error indicates a resource was not found.
func IsNotFound(err error) bool {
	return statusCode(err) == http.StatusNotFound
}

// IsConflict checks if an error indicates a conflict, typically an object
// that is still referenced by another one.
func IsConflict(err error) bool {
	return statusCode(err) == http.StatusConflict
}

// IsLocked checks if an error indicates the object is locked.
func IsLocked(err error) bool {
	return statusCode(err) == http.StatusLocked
}

// IsValidationRejected checks if the server rejected the request body.
func IsValidationRejected(err error) bool {
	return statusCode(err) == http.StatusBadRequest
}

// IsUnauthorized checks if the token was missing or rejected.
func IsUnauthorized(err error) bool {
	code := statusCode(err)
	return code == http.StatusUnauthorized || code == http.StatusForbidden
}

// IsTimeout checks if a call ran out of time.
func IsTimeout(err error) bool {
	return errors.Is(err, context.DeadlineExceeded)
}

// IsRetryable reports whether repeating the same call may succeed.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	code := statusCode(err)
	switch {
	case code == http.StatusConflict, code == http.StatusLocked, code == http.StatusTooManyRequests:
		return true
	case code >= 500:
		return true
	}
	return false
}
