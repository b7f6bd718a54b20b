// Package errors formats command failures and maps them to process exit codes.
package errors

import (
	stderrors "errors"
	"fmt"
	"os"

	"github.com/julianstephens/versecue/internal/logger"
)

const (
	ExitFailure = 1
	// ExitPermission is returned when the platform refuses notification
	// permission; callers may retry later.
	ExitPermission = 2
)

// CodedError carries the exit code a command should terminate with.
type CodedError struct {
	Err  error
	Code int
}

func (e *CodedError) Error() string { return e.Err.Error() }

func (e *CodedError) Unwrap() error { return e.Err }

// WithCode attaches an exit code to err. A nil err stays nil.
func WithCode(err error, code int) error {
	if err == nil {
		return nil
	}
	return &CodedError{Err: err, Code: code}
}

// ExitCode returns the code attached with WithCode, ExitFailure for any other
// error and 0 for nil.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var coded *CodedError
	if stderrors.As(err, &coded) {
		return coded.Code
	}
	return ExitFailure
}

// Format formats an error message with a consistent "Error: " prefix
func Format(err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("Error: %v", err)
}

// Formatf formats an error message with a consistent "Error: " prefix using a format string
func Formatf(format string, args ...interface{}) string {
	return fmt.Sprintf("Error: "+format, args...)
}

// Fatal logs an error and exits with its exit code
func Fatal(err error) {
	if err != nil {
		logger.Error("Command execution failed", "error", err)
		fmt.Fprintf(os.Stderr, "%s\n", Format(err))
		os.Exit(ExitCode(err))
	}
}

// Fatalf logs and formats an error message, then exits the program with exit code 1
func Fatalf(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	logger.Error("Command execution failed", "error", msg)
	fmt.Fprintf(os.Stderr, "%s\n", Formatf(format, args...))
	os.Exit(ExitFailure)
}
