package main

import (
	"context"
	"errors"

	"github.com/Dicklesworthstone/coauthor_viewer/pkg/layout"
)

// Exit codes
const (
	ExitSuccess     = 0   // Success
	ExitError       = 1   // General error (invalid arguments, runtime failure)
	ExitConfigError = 2   // Configuration error (bad config file, unknown recipe)
	ExitDataError   = 3   // Data error (unreadable or malformed source)
	ExitInterrupted = 130 // Canceled by a signal or aborted by the user
)

// codedError carries the exit code a command failure maps to.
type codedError struct {
	code int
	err  error
}

func (e *codedError) Error() string { return e.err.Error() }
func (e *codedError) Unwrap() error { return e.err }

// withCode tags err with an exit code. A nil err stays nil.
func withCode(code int, err error) error {
	if err == nil {
		return nil
	}
	return &codedError{code: code, err: err}
}

// exitCode maps a command error to the process exit code.
func exitCode(err error) int {
	var ce *codedError
	switch {
	case err == nil:
		return ExitSuccess
	case errors.As(err, &ce):
		return ce.code
	case errors.Is(err, context.Canceled), errors.Is(err, layout.ErrCanceled):
		return ExitInterrupted
	}
	return ExitError
}
