package launcher

import (
	"errors"
	"fmt"
)

// ErrNotInstalled is returned when no system browser executable exists.
var ErrNotInstalled = errors.New("no system Chrome installation found")

// ConnectionRefusedError reports a debugging port that did not accept
// connections.
type ConnectionRefusedError struct {
	Port int
	Err  error
}

func (e *ConnectionRefusedError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("connection refused on debugging port %d: %v", e.Port, e.Err)
	}
	return fmt.Sprintf("connection refused on debugging port %d", e.Port)
}

func (e *ConnectionRefusedError) Unwrap() error {
	return e.Err
}
