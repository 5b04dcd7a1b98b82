package config

import (
	"errors"
	"fmt"
)

// ErrInvalidConfig is wrapped by every configuration error.
var ErrInvalidConfig = errors.New("invalid configuration")

// Error reports a missing or invalid configuration option.
type Error struct {
	Option string
	Reason string
}

func (e *Error) Error() string {
	return fmt.Sprintf("config option %q: %s", e.Option, e.Reason)
}

// Unwrap lets errors.Is match ErrInvalidConfig.
func (e *Error) Unwrap() error {
	return ErrInvalidConfig
}

func missing(option string) *Error {
	return &Error{Option: option, Reason: "missing"}
}

func invalid(option, format string, args ...interface{}) *Error {
	return &Error{Option: option, Reason: fmt.Sprintf(format, args...)}
}
