// Package errors defines the sentinel errors shared across the clustering
// pipeline and a wrapper type that carries a process exit code for the CLI.
package errors

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidConfiguration = errors.New("invalid configuration")
	ErrEmptyCluster         = errors.New("empty cluster")
	ErrCorpusNotFound       = errors.New("corpus not found")
	ErrInvalidInput         = errors.New("invalid input")
	ErrInternal             = errors.New("internal error")
)

// Exit codes reported by the binaries. Anything unrecognized maps to
// ExitInternal.
const (
	ExitOK            = 0
	ExitInternal      = 1
	ExitInvalidConfig = 2
	ExitCorpus        = 3
	ExitEmptyCluster  = 4
	ExitInvalidInput  = 5
)

// AppError wraps a sentinel with context about what went wrong and which
// exit code the process should report.
type AppError struct {
	Err      error
	Message  string
	ExitCode int
}

func (e *AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.Err.Error(), e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func New(sentinel error, exitCode int, message string) *AppError {
	return &AppError{
		Err:      sentinel,
		Message:  message,
		ExitCode: exitCode,
	}
}

func Newf(sentinel error, exitCode int, format string, args ...any) *AppError {
	return &AppError{
		Err:      sentinel,
		Message:  fmt.Sprintf(format, args...),
		ExitCode: exitCode,
	}
}

// ProcessExitCode maps an error to the exit code the CLI should terminate
// with. An explicit AppError wins over sentinel matching.
func ProcessExitCode(err error) int {
	if err == nil {
		return ExitOK
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.ExitCode
	}

	switch {
	case errors.Is(err, ErrInvalidConfiguration):
		return ExitInvalidConfig
	case errors.Is(err, ErrCorpusNotFound):
		return ExitCorpus
	case errors.Is(err, ErrEmptyCluster):
		return ExitEmptyCluster
	case errors.Is(err, ErrInvalidInput):
		return ExitInvalidInput
	default:
		return ExitInternal
	}
}
