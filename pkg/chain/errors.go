package chain

import (
	"fmt"
	"net/http"
)

// StatusError is a handler failure carrying an explicit HTTP status. The
// dispatcher renders it verbatim: the status becomes the response code and
// the message becomes the body. Any other error a step returns is treated
// as an internal failure and rendered as a 500 with the error's text.
type StatusError struct {
	Code    int
	Message string
}

// Error returns the status line and message.
func (e *StatusError) Error() string {
	text := http.StatusText(e.Code)
	if e.Message == "" {
		return fmt.Sprintf("%d %s", e.Code, text)
	}
	return fmt.Sprintf("%d %s: %s", e.Code, text, e.Message)
}

// Status returns a StatusError with the given code and message.
func Status(code int, message string) error {
	return &StatusError{Code: code, Message: message}
}

// Statusf returns a StatusError with a formatted message.
func Statusf(code int, format string, args ...any) error {
	return &StatusError{Code: code, Message: fmt.Sprintf(format, args...)}
}
