package launcher

import "fmt"

// ExecutionError reports a runner process that exited non-zero (or failed to
// run at all, in which case ExitCode is -1).
type ExecutionError struct {
	ExitCode int
	Err      error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("nextflow runtime exited with code %d", e.ExitCode)
}

func (e *ExecutionError) Unwrap() error {
	return e.Err
}
