package cli

import "errors"

// ExitError carries a process exit code out of a command without printing
// anything further.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string { return "" }

// ExitCode maps a command error to a process exit code.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var ee *ExitError
	if errors.As(err, &ee) {
		return ee.Code
	}
	return 1
}
