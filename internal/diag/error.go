package diag

import (
	"errors"
	"fmt"
)

// Error is a recoverable failure of the semantic core.
type Error struct {
	Code    Code
	Message string
	File    string // compilation unit, filled by the collector when known
	Err     error  // optional cause
}

// Errorf builds an *Error with a formatted message.
func Errorf(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap builds an *Error around a cause.
func Wrap(code Code, err error, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Err: err}
}

func (e *Error) Error() string {
	msg := e.Code.ID() + " " + e.Code.Title()
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.File != "" {
		msg = e.File + ": " + msg
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap exposes the class sentinel and the cause.
func (e *Error) Unwrap() []error {
	out := make([]error, 0, 2)
	if class := e.Code.Class(); class != nil {
		out = append(out, class)
	}
	if e.Err != nil {
		out = append(out, e.Err)
	}
	return out
}

// Is matches a bare Code target.
func (e *Error) Is(target error) bool {
	c, ok := target.(Code)
	return ok && c == e.Code
}

// InFile stamps the compilation unit on err when it is an *Error without one.
func InFile(err error, file string) error {
	var de *Error
	if errors.As(err, &de) && de.File == "" {
		de.File = file
	}
	return err
}

// CodeOf returns the code of the first *Error in err's chain.
func CodeOf(err error) (Code, bool) {
	var de *Error
	if errors.As(err, &de) {
		return de.Code, true
	}
	return UnknownCode, false
}
