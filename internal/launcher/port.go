package launcher

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"sort"

	gnet "github.com/shirou/gopsutil/v4/net"
)

// KillPort force-kills every process with a TCP socket bound to port and
// returns their PIDs. The calling process is never killed. A failure to
// kill one process does not stop the others.
func KillPort(ctx context.Context, port int) ([]int32, error) {
	pids, err := PortOwners(ctx, port)
	if err != nil {
		return nil, err
	}

	var killed []int32
	var errs []error
	for _, pid := range pids {
		if err := killPID(ctx, pid); err != nil {
			errs = append(errs, err)
			continue
		}
		killed = append(killed, pid)
	}
	return killed, errors.Join(errs...)
}

// PortOwners lists the PIDs with a local TCP socket on port.
func PortOwners(ctx context.Context, port int) ([]int32, error) {
	conns, err := gnet.ConnectionsWithContext(ctx, "tcp")
	if err != nil {
		return nil, fmt.Errorf("list connections: %w", err)
	}

	self := int32(os.Getpid())
	seen := make(map[int32]bool)
	for _, c := range conns {
		if c.Laddr.Port != uint32(port) || c.Pid <= 0 || c.Pid == self {
			continue
		}
		seen[c.Pid] = true
	}

	pids := make([]int32, 0, len(seen))
	for pid := range seen {
		pids = append(pids, pid)
	}
	sort.Slice(pids, func(i, j int) bool { return pids[i] < pids[j] })
	return pids, nil
}

// freePort asks the kernel for an unused loopback port.
func freePort() (int, error) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return 0, fmt.Errorf("find free port: %w", err)
	}
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port, nil
}
