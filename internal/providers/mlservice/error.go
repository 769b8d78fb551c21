package mlservice

import "fmt"

type ErrorKind string

const (
	KindTimeout            ErrorKind = "timeout"
	KindServiceUnavailable ErrorKind = "service_unavailable"
	KindInvalidResponse    ErrorKind = "invalid_response"
)

// Error is the only error type this package returns. It never escapes as a
// panic; callers inspect Kind to pick a fallback policy.
type Error struct {
	Kind ErrorKind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("mlservice: %s: %s: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("mlservice: %s: %s", e.Op, e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }
