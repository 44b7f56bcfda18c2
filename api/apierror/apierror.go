// Package apierror carries an HTTP status on errors raised during request
// validation and lookups, so a single place can render the uniform
// {"error": ...} envelope with the right code.
package apierror

import "fmt"

type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func New(status int, format string, args ...interface{}) *Error {
	return &Error{Status: status, Message: fmt.Sprintf(format, args...)}
}
