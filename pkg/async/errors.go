package async

import "errors"

var (
	// ErrTimeout is returned when awaiting a handle exceeds the given timeout.
	ErrTimeout = errors.New("async: await timed out")
	// ErrNotStarted is returned when awaiting a handle that was never started.
	ErrNotStarted = errors.New("async: handle not started")
)
