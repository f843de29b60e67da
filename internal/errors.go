package internal

import (
	"errors"
	"net/http"
)

// DefaultServerErrorMessage is the body message used by HandleServerError when none is given.
const DefaultServerErrorMessage = "An unexpected error occurred"

// HTTPError carries everything an error handler needs to answer a failed request.
type HTTPError struct {
	// Err is the underlying error. It is logged, never shown.
	Err error

	// Message is the user-facing error message.
	Message string

	// ErrorCode is a machine-readable code, e.g. "email_not_verified".
	ErrorCode string

	// Fields holds per-field validation messages.
	Fields map[string]string

	RequestID string

	Code int
}

func (e *HTTPError) Error() string {
	return e.Message
}

func (e *HTTPError) Unwrap() error {
	return e.Err
}

func (e *HTTPError) StatusCode() int {
	return e.Code
}

func (e *HTTPError) StatusText() string {
	return http.StatusText(e.Code)
}

// HTTPErrorOption configures an HTTPError.
type HTTPErrorOption func(*HTTPError)

func NewHTTPError(code int, message string, opts ...HTTPErrorOption) *HTTPError {
	e := &HTTPError{
		Code:    code,
		Message: message,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func WithErrorCode(code string) HTTPErrorOption {
	return func(e *HTTPError) {
		e.ErrorCode = code
	}
}

func WithFields(fields map[string]string) HTTPErrorOption {
	return func(e *HTTPError) {
		e.Fields = fields
	}
}

func WithRequestID(id string) HTTPErrorOption {
	return func(e *HTTPError) {
		e.RequestID = id
	}
}

func WithError(err error) HTTPErrorOption {
	return func(e *HTTPError) {
		e.Err = err
	}
}

func ErrBadRequest(message string, opts ...HTTPErrorOption) *HTTPError {
	return NewHTTPError(http.StatusBadRequest, message, opts...)
}

func ErrUnauthorized(message string, opts ...HTTPErrorOption) *HTTPError {
	return NewHTTPError(http.StatusUnauthorized, message, opts...)
}

func ErrForbidden(message string, opts ...HTTPErrorOption) *HTTPError {
	return NewHTTPError(http.StatusForbidden, message, opts...)
}

func ErrNotFound(message string, opts ...HTTPErrorOption) *HTTPError {
	return NewHTTPError(http.StatusNotFound, message, opts...)
}

func ErrConflict(message string, opts ...HTTPErrorOption) *HTTPError {
	return NewHTTPError(http.StatusConflict, message, opts...)
}

func ErrUnprocessable(message string, opts ...HTTPErrorOption) *HTTPError {
	return NewHTTPError(http.StatusUnprocessableEntity, message, opts...)
}

func ErrInternal(message string, opts ...HTTPErrorOption) *HTTPError {
	return NewHTTPError(http.StatusInternalServerError, message, opts...)
}

func ErrServiceUnavailable(message string, opts ...HTTPErrorOption) *HTTPError {
	return NewHTTPError(http.StatusServiceUnavailable, message, opts...)
}

func IsHTTPError(err error) bool {
	return AsHTTPError(err) != nil
}

// AsHTTPError finds the first HTTPError in err's chain, or returns nil.
func AsHTTPError(err error) *HTTPError {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}
	return nil
}

// serverErrorBody is the only shape a 500 ever has on the wire.
type serverErrorBody struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// HandleServerError logs err with request metadata and answers with a generic 500.
// Nothing from err reaches the client.
func HandleServerError(c Context, err error, msg string) error {
	if msg == "" {
		msg = DefaultServerErrorMessage
	}

	r := c.Request()
	c.LogError("server error",
		"error", err,
		"path", r.URL.Path,
		"method", r.Method,
		"request_id", c.RequestID(),
	)

	return c.JSON(http.StatusInternalServerError, serverErrorBody{
		Status:  "error",
		Message: msg,
	})
}

type errorBody struct {
	Success bool        `json:"success"`
	Error   errorDetail `json:"error"`
}

type errorDetail struct {
	Fields    map[string]string `json:"fields,omitempty"`
	Code      string            `json:"code,omitempty"`
	Message   string            `json:"message"`
	RequestID string            `json:"requestId,omitempty"`
}

// DefaultErrorHandler answers HTTPErrors with their status and a JSON body.
// Any other error becomes a plain 500 "Internal Server Error".
func DefaultErrorHandler(c Context, err error) error {
	httpErr := AsHTTPError(err)
	if httpErr == nil || httpErr.Code >= http.StatusInternalServerError {
		c.LogError("request failed", "error", err, "path", c.Request().URL.Path)
	}
	if httpErr == nil {
		return c.String(http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
	}

	reqID := httpErr.RequestID
	if reqID == "" {
		reqID = c.RequestID()
	}
	return c.JSON(httpErr.Code, errorBody{
		Error: errorDetail{
			Fields:    httpErr.Fields,
			Code:      httpErr.ErrorCode,
			Message:   httpErr.Message,
			RequestID: reqID,
		},
	})
}
