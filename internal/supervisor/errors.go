package supervisor

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"syscall"
)

// Admission and validation failures, returned synchronously to the
// caller of the triggering operation. None of them mutate the registry.
var (
	ErrCapacityExceeded = errors.New("capacity exceeded")
	ErrInvalidRequest   = errors.New("invalid request")
	ErrInvalidTarget    = errors.New("invalid target directory")
	ErrNotFound         = errors.New("task not found")
	ErrAlreadyTerminal  = errors.New("task already terminal")
)

// LaunchCause sub-classifies a worker launch failure for operator
// guidance.
type LaunchCause string

const (
	LaunchBinaryNotFound    LaunchCause = "binary_not_found"
	LaunchPermissionDenied  LaunchCause = "permission_denied"
	LaunchResourceExhausted LaunchCause = "resource_exhausted"
	LaunchOther             LaunchCause = "other"
)

// LaunchFailure is recorded on the Task when the worker process cannot
// be started. It is never returned from Dispatch; the failure becomes
// observable through subsequent status and output queries.
type LaunchFailure struct {
	Cause LaunchCause
	Bin   string
	Err   error
}

func (f *LaunchFailure) Error() string {
	switch f.Cause {
	case LaunchBinaryNotFound:
		return fmt.Sprintf("worker binary %q not found; install it or point AGENTPOOL_WORKER_BIN at it", f.Bin)
	case LaunchPermissionDenied:
		return fmt.Sprintf("worker binary %q is not executable; check its file permissions", f.Bin)
	case LaunchResourceExhausted:
		return fmt.Sprintf("cannot spawn worker %q: system resources exhausted: %v", f.Bin, f.Err)
	default:
		return fmt.Sprintf("failed to launch worker %q: %v", f.Bin, f.Err)
	}
}

func (f *LaunchFailure) Unwrap() error { return f.Err }

func classifyLaunchError(bin string, err error) *LaunchFailure {
	cause := LaunchOther
	switch {
	case errors.Is(err, exec.ErrNotFound), errors.Is(err, os.ErrNotExist):
		cause = LaunchBinaryNotFound
	case errors.Is(err, os.ErrPermission):
		cause = LaunchPermissionDenied
	case errors.Is(err, syscall.EAGAIN), errors.Is(err, syscall.ENOMEM),
		errors.Is(err, syscall.EMFILE), errors.Is(err, syscall.ENFILE):
		cause = LaunchResourceExhausted
	}
	return &LaunchFailure{Cause: cause, Bin: bin, Err: err}
}
