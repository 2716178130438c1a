package cli

import "errors"

// ErrUsage matches errors caused by missing or invalid command-line input.
var ErrUsage = errors.New("usage error")

// usageError is reported without a stack of wrapped causes; msg is shown as is.
type usageError struct {
	msg string
}

func newUsageError(msg string) error {
	return usageError{msg: msg}
}

func (e usageError) Error() string {
	return e.msg
}

func (e usageError) Is(target error) bool {
	return target == ErrUsage
}
