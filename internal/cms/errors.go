package cms

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrNotFound is returned when a CMS resource cannot be located.
	ErrNotFound = errors.New("cms: not found")
	// ErrRequestFailed matches every non-2xx response.
	ErrRequestFailed = errors.New("cms: request failed")
	// ErrMissingIdentifier is returned before any request when a detail lookup has no slug or id.
	ErrMissingIdentifier = errors.New("cms: missing identifier")
)

// RequestError describes a non-2xx response from the CMS.
type RequestError struct {
	Method     string
	URL        string
	StatusCode int
	Status     string
	Body       string
}

func (e *RequestError) Error() string {
	status := strings.TrimSpace(e.Status)
	if status == "" {
		status = fmt.Sprintf("%d", e.StatusCode)
	}
	return fmt.Sprintf("cms: %s %s failed (%s)", e.Method, e.URL, status)
}

// Is lets errors.Is match ErrRequestFailed for every status and ErrNotFound for 404.
func (e *RequestError) Is(target error) bool {
	switch target {
	case ErrRequestFailed:
		return true
	case ErrNotFound:
		return e.StatusCode == 404
	}
	return false
}

// ValidationError carries per-field messages for a rejected submission. The
// message values are i18n keys.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "cms: invalid submission (" + strings.Join(parts, "; ") + ")"
}

// Field returns the message for name, or "".
func (e *ValidationError) Field(name string) string {
	if e == nil {
		return ""
	}
	return e.Fields[name]
}

// SubmitError is returned when the CMS rejects a form submission. Message is
// safe to show to visitors.
type SubmitError struct {
	Message string
	Err     error
}

func (e *SubmitError) Error() string { return e.Message }

func (e *SubmitError) Unwrap() error { return e.Err }
