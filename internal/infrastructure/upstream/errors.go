package upstream

import (
	"errors"
	"fmt"
	"strings"
)

// StatusError carries method, status and body for non-2xx responses so
// callers can tell "not found" apart from upstream outages.
type StatusError struct {
	Method     string
	URL        string
	StatusCode int
	Body       []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("upstream error: %s %s status=%d body=%s", e.Method, e.URL, e.StatusCode, snippet(e.Body, 300))
}

// StatusCode extracts the HTTP status of a StatusError anywhere in err's chain,
// or 0.
func StatusCode(err error) int {
	var sErr *StatusError
	if errors.As(err, &sErr) {
		return sErr.StatusCode
	}
	return 0
}

// PayloadError reports a 2xx response whose body is not the JSON we expected.
type PayloadError struct {
	URL string
	Err error
}

func (e *PayloadError) Error() string {
	return fmt.Sprintf("malformed upstream payload from %s: %v", e.URL, e.Err)
}

func (e *PayloadError) Unwrap() error { return e.Err }

func snippet(b []byte, max int) string {
	s := strings.TrimSpace(string(b))
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
