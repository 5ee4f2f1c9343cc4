package launcher

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"

	"github.com/shirou/gopsutil/v4/process"
)

// Process is a browser started by Launch. The caller owns it until Kill.
type Process struct {
	PID  int
	Port int

	userDataDir string
	cmd         *exec.Cmd
	done        chan struct{}
}

// Track wraps a started command and reaps it in the background so it never
// lingers as a zombie. userDataDir, when set, is removed by Kill.
func Track(cmd *exec.Cmd, port int, userDataDir string) *Process {
	p := &Process{
		PID:         cmd.Process.Pid,
		Port:        port,
		userDataDir: userDataDir,
		cmd:         cmd,
		done:        make(chan struct{}),
	}
	go func() {
		_ = cmd.Wait()
		close(p.done)
	}()
	return p
}

// Exited reports whether the process has terminated.
func (p *Process) Exited() bool {
	select {
	case <-p.done:
		return true
	default:
		return false
	}
}

// Done is closed once the process has terminated.
func (p *Process) Done() <-chan struct{} {
	return p.done
}

// Kill force-kills the process by PID, waits for it to be reaped and
// removes its private profile directory. Killing an exited process only
// cleans up.
func (p *Process) Kill(ctx context.Context) error {
	var killErr error
	if !p.Exited() {
		killErr = killPID(ctx, int32(p.PID))
		if killErr != nil {
			// Fall back to the handle we spawned.
			if err := p.cmd.Process.Kill(); err == nil || errors.Is(err, os.ErrProcessDone) {
				killErr = nil
			}
		}
		select {
		case <-p.done:
		case <-ctx.Done():
			return errors.Join(killErr, fmt.Errorf("wait for pid %d: %w", p.PID, ctx.Err()))
		}
	}

	if p.userDataDir != "" {
		if err := os.RemoveAll(p.userDataDir); err != nil {
			return errors.Join(killErr, fmt.Errorf("remove profile dir: %w", err))
		}
	}
	return killErr
}

func killPID(ctx context.Context, pid int32) error {
	proc, err := process.NewProcessWithContext(ctx, pid)
	if err != nil {
		return fmt.Errorf("find pid %d: %w", pid, err)
	}
	if err := proc.KillWithContext(ctx); err != nil {
		return fmt.Errorf("kill pid %d: %w", pid, err)
	}
	return nil
}

// Running reports whether a PID refers to a live process.
func Running(ctx context.Context, pid int) bool {
	ok, err := process.PidExistsWithContext(ctx, int32(pid))
	return err == nil && ok
}
