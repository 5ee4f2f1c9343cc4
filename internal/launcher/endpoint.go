package launcher

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"
)

// VersionInfo is the body of /json/version.
type VersionInfo struct {
	Browser              string `json:"Browser"`
	ProtocolVersion      string `json:"Protocol-Version"`
	UserAgent            string `json:"User-Agent"`
	V8Version            string `json:"V8-Version"`
	WebKitVersion        string `json:"WebKit-Version"`
	WebSocketDebuggerURL string `json:"webSocketDebuggerUrl"`
}

// endpointClient talks to loopback only and must ignore proxy settings.
var endpointClient = &http.Client{
	Timeout:   5 * time.Second,
	Transport: &http.Transport{Proxy: nil},
}

// FetchVersion queries http://localhost:<port>/json/version. A port that
// is not accepting connections yields *ConnectionRefusedError.
func FetchVersion(ctx context.Context, port int) (*VersionInfo, error) {
	url := fmt.Sprintf("http://localhost:%d/json/version", port)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := endpointClient.Do(req)
	if err != nil {
		var opErr *net.OpError
		if errors.As(err, &opErr) && opErr.Op == "dial" {
			return nil, &ConnectionRefusedError{Port: port, Err: err}
		}
		return nil, fmt.Errorf("query %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("query %s: unexpected status code: %d", url, resp.StatusCode)
	}

	var info VersionInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("decode %s: %w", url, err)
	}
	return &info, nil
}

// FetchDebugEndpoint returns the WebSocket debugger URL of a launched browser.
func FetchDebugEndpoint(ctx context.Context, p *Process) (string, error) {
	info, err := FetchVersion(ctx, p.Port)
	if err != nil {
		return "", err
	}
	if info.WebSocketDebuggerURL == "" {
		return "", fmt.Errorf("port %d: /json/version has no webSocketDebuggerUrl", p.Port)
	}
	return info.WebSocketDebuggerURL, nil
}
