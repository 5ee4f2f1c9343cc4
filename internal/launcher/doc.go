// Package launcher starts a host-installed Chrome out of band and finds its
// DevTools endpoint.
//
// A system launch is tracked as a Process: the caller owns it and must
// Kill it, usually through the acquire package's Terminate. Failures are
// classified so callers can decide how to recover:
//
//   - ErrNotInstalled: no browser executable was found on the host
//   - *ConnectionRefusedError: the browser never accepted connections on
//     its debugging port; whatever is bound to that port may be a leaked
//     process and can be removed with KillPort
package launcher
