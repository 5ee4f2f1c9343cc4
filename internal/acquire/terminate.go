package acquire

import (
	"context"
	"errors"
	"fmt"
)

// Terminate releases an acquired browser. A system browser is only
// disconnected from, then killed by PID; a cached browser is shut down
// through the protocol, which also ends its process. Call it exactly once.
func Terminate(ctx context.Context, r Result) error {
	switch b := r.(type) {
	case *SystemBrowser:
		if b == nil {
			return errors.New("terminate: nil system browser")
		}
		disconnectErr := b.handle.Disconnect()
		killErr := b.Process.Kill(ctx)
		return errors.Join(disconnectErr, killErr)

	case *LocalBrowser:
		if b == nil {
			return errors.New("terminate: nil local browser")
		}
		return b.handle.Close(ctx)

	case nil:
		return errors.New("terminate: nil result")

	default:
		return fmt.Errorf("terminate: unsupported result %T", r)
	}
}
