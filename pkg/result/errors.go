package result

import (
	"errors"
	"fmt"
	"runtime/debug"
)

// ErrUnknown is carried by failures built without an error.
var ErrUnknown = errors.New("result: unknown error")

// Normalizer converts an arbitrary failure cause into an error.
type Normalizer func(cause any) error

// ErrorInfo is the normalized failure payload.
type ErrorInfo struct {
	Cause   error  `json:"-"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
	Stack   string `json:"stack,omitempty"`
}

// NewErrorInfo normalizes cause into an *ErrorInfo.
// Errors are kept as the cause and remain reachable through errors.Is/As.
func NewErrorInfo(cause any) error {
	switch v := cause.(type) {
	case nil:
		return &ErrorInfo{Message: ErrUnknown.Error(), Cause: ErrUnknown}
	case *ErrorInfo:
		return v
	case error:
		return &ErrorInfo{Message: v.Error(), Cause: v}
	case string:
		return &ErrorInfo{Message: v}
	default:
		return &ErrorInfo{Message: fmt.Sprint(v)}
	}
}

func (e *ErrorInfo) Error() string {
	if e.Code != "" {
		return e.Code + ": " + e.Message
	}
	return e.Message
}

func (e *ErrorInfo) Unwrap() error {
	return e.Cause
}

// panicNormalizer wraps a recovered panic value and records the stack.
func panicNormalizer(normalize Normalizer) Normalizer {
	return func(cause any) error {
		err := normalize(fmt.Errorf("panic: %v", cause))
		var info *ErrorInfo
		if errors.As(err, &info) && info.Stack == "" {
			info.Code = "panic"
			info.Stack = string(debug.Stack())
		}
		return err
	}
}
