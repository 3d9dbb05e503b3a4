package errx

import (
	"errors"
	"fmt"
)

// ErrUsage marks errors caused by how the command was invoked (bad flags, missing
// arguments) rather than by the portal. The CLI maps it to exit status 2.
var ErrUsage = errors.New("usage error")

type usageError struct{ msg string }

func (e *usageError) Error() string        { return e.msg }
func (e *usageError) Is(target error) bool { return target == ErrUsage }

// Usage returns a formatted error matching ErrUsage. The message is kept as given.
func Usage(format string, args ...any) error {
	return &usageError{msg: fmt.Sprintf(format, args...)}
}

// IsUsage reports whether err was caused by invocation.
func IsUsage(err error) bool {
	return errors.Is(err, ErrUsage)
}
