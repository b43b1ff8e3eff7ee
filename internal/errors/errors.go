package errors

import (
	"errors"
	"fmt"
	"os"

	"github.com/julianstephens/dailycal/internal/logger"
)

const (
	ExitFatal       = 1
	ExitRecoverable = 2
)

// Recoverable wraps an error the player can act on, such as trying to replay a
// finished day. It is reported without being logged as a failure.
type Recoverable struct {
	Err  error
	Hint string
}

func (e *Recoverable) Error() string { return e.Err.Error() }

func (e *Recoverable) Unwrap() error { return e.Err }

// NewRecoverable marks err as recoverable. A nil err stays nil.
func NewRecoverable(err error, hint string) error {
	if err == nil {
		return nil
	}
	return &Recoverable{Err: err, Hint: hint}
}

// IsRecoverable reports whether err or anything it wraps is Recoverable.
func IsRecoverable(err error) bool {
	var r *Recoverable
	return errors.As(err, &r)
}

// ExitCode maps err to the process exit status.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case IsRecoverable(err):
		return ExitRecoverable
	default:
		return ExitFatal
	}
}

// Format formats an error message with a consistent "Error: " prefix
func Format(err error) string {
	if err == nil {
		return ""
	}
	var r *Recoverable
	if errors.As(err, &r) && r.Hint != "" {
		return fmt.Sprintf("Error: %v\n  %s", err, r.Hint)
	}
	return fmt.Sprintf("Error: %v", err)
}

// Formatf formats an error message with a consistent "Error: " prefix using a format string
func Formatf(format string, args ...interface{}) string {
	return fmt.Sprintf("Error: "+format, args...)
}

// Exit reports err on stderr and exits with its ExitCode. Only fatal errors are logged.
func Exit(err error) {
	if err == nil {
		return
	}
	code := ExitCode(err)
	if code == ExitFatal {
		logger.Error("command failed", "error", err)
	}
	fmt.Fprintf(os.Stderr, "%s\n", Format(err))
	os.Exit(code)
}

// Fatalf logs and formats an error message, then exits the program with exit code 1
func Fatalf(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	logger.Error("command failed", "error", msg)
	fmt.Fprintf(os.Stderr, "%s\n", Formatf(format, args...))
	os.Exit(ExitFatal)
}
