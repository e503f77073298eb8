package cli

import (
	"errors"
	"fmt"

	"psitool/internal/config"
	"psitool/internal/core"
)

const (
	ExitSuccess           = 0
	ExitEmptyPool         = 1
	ExitInvalidInvocation = 2
	ExitConfigError       = 3
	ExitInternalError     = 4
	ExitNotFound          = 5
)

// InvocationError is a usage mistake: bad flags, bad arguments.
type InvocationError struct {
	ExitCode int
	Message  string
}

func (e *InvocationError) Error() string {
	if e == nil {
		return ""
	}
	return e.Message
}

func invalidInvocationf(format string, args ...any) error {
	return &InvocationError{ExitCode: ExitInvalidInvocation, Message: fmt.Sprintf(format, args...)}
}

// ExitCode maps an error returned by a command to the process exit status.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var invErr *InvocationError
	switch {
	case errors.As(err, &invErr):
		return invErr.ExitCode
	case errors.Is(err, config.ErrConfig):
		return ExitConfigError
	case errors.Is(err, core.ErrEmptyPool):
		return ExitEmptyPool
	case errors.Is(err, core.ErrNotFound):
		return ExitNotFound
	case errors.Is(err, core.ErrFormat):
		return ExitConfigError
	default:
		return ExitInternalError
	}
}
