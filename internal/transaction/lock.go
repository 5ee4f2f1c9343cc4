// Package transaction provides cross-process locking for operations that
// mutate the browser cache directory.
package transaction

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const (
	// StaleLockThreshold is the maximum age of a lock before it's considered stale.
	// A browser download on a slow link can take several minutes.
	StaleLockThreshold = 15 * time.Minute

	// DefaultPollInterval is how often WaitLock retries a held lock.
	DefaultPollInterval = 250 * time.Millisecond
)

var (
	ErrLockExists = errors.New("lock exists: another operation may be in progress")
)

// Lock represents an exclusive lock file.
type Lock struct {
	path string
	file *os.File
}

// AcquireLock attempts to acquire the lock file dir/name without waiting.
// Uses O_CREATE|O_EXCL for atomic lock creation. A lock older than
// StaleLockThreshold is removed and acquisition retried once.
func AcquireLock(ctx context.Context, dir, name string) (*Lock, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create lock directory: %w", err)
	}

	lockPath := filepath.Join(dir, name)

	file, err := os.OpenFile(lockPath, os.O_CREATE|os.O_EXCL|os.O_RDWR, 0o600)
	if err != nil {
		if !os.IsExist(err) {
			return nil, fmt.Errorf("create lock file: %w", err)
		}
		if isStale, _ := isLockStale(lockPath); !isStale {
			return nil, ErrLockExists
		}
		os.Remove(lockPath)
		file, err = os.OpenFile(lockPath, os.O_CREATE|os.O_EXCL|os.O_RDWR, 0o600)
		if err != nil {
			return nil, ErrLockExists
		}
	}

	lockData := fmt.Sprintf("pid=%d\ntimestamp=%s\n", os.Getpid(), time.Now().UTC().Format(time.RFC3339))
	if _, err := file.WriteString(lockData); err != nil {
		file.Close()
		os.Remove(lockPath)
		return nil, fmt.Errorf("write lock data: %w", err)
	}

	if err := file.Sync(); err != nil {
		file.Close()
		os.Remove(lockPath)
		return nil, fmt.Errorf("sync lock file: %w", err)
	}

	return &Lock{
		path: lockPath,
		file: file,
	}, nil
}

// WaitLock acquires the lock, polling every interval while another holder
// has it, until ctx is done.
func WaitLock(ctx context.Context, dir, name string, interval time.Duration) (*Lock, error) {
	if interval <= 0 {
		interval = DefaultPollInterval
	}

	for {
		lock, err := AcquireLock(ctx, dir, name)
		if !errors.Is(err, ErrLockExists) {
			return lock, err
		}

		select {
		case <-time.After(interval):
		case <-ctx.Done():
			return nil, fmt.Errorf("wait for %s: %w", name, ctx.Err())
		}
	}
}

// Release releases the lock. It is safe to call more than once.
func (l *Lock) Release() error {
	if l.file != nil {
		l.file.Close()
		l.file = nil
	}

	if l.path != "" {
		if err := os.Remove(l.path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("remove lock file: %w", err)
		}
		l.path = ""
	}

	return nil
}

// isLockStale checks if a lock file is older than the stale lock threshold.
func isLockStale(lockPath string) (bool, error) {
	info, err := os.Stat(lockPath)
	if err != nil {
		return false, err
	}

	return time.Since(info.ModTime()) > StaleLockThreshold, nil
}
