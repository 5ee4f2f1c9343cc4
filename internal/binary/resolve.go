package binary

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"github.com/ZebulonRouseFrantzich/browserctl/internal/logging"
	"github.com/ZebulonRouseFrantzich/browserctl/internal/platform"
)

// DefaultVersionsURL lists the last known good build of every channel.
const DefaultVersionsURL = "https://googlechromelabs.github.io/chrome-for-testing/last-known-good-versions.json"

// exactBuildID matches a pinned build such as 131.0.6778.85.
var exactBuildID = regexp.MustCompile(`^\d+\.\d+\.\d+\.\d+$`)

// versionsResponse is the subset of last-known-good-versions.json we read.
type versionsResponse struct {
	Channels map[string]struct {
		Channel  string `json:"channel"`
		Version  string `json:"version"`
		Revision string `json:"revision"`
	} `json:"channels"`
}

// Resolver maps a channel to the preferred build for this host.
type Resolver struct {
	versionsURL string
	channel     string
	client      *http.Client
	detector    platform.Detector
	logger      logging.Logger
}

// NewResolver creates a resolver. Empty fields fall back to the defaults.
func NewResolver(versionsURL, channel string, client *http.Client, detector platform.Detector, logger logging.Logger) *Resolver {
	if versionsURL == "" {
		versionsURL = DefaultVersionsURL
	}
	if channel == "" {
		channel = DefaultChannel
	}
	if client == nil {
		client = newHTTPClient()
	}
	if detector == nil {
		detector = platform.NewDetector()
	}
	return &Resolver{
		versionsURL: versionsURL,
		channel:     channel,
		client:      client,
		detector:    detector,
		logger:      logging.OrNoop(logger),
	}
}

// Resolve returns the preferred build. A channel that already is a full
// build id is used as is without a network request.
func (r *Resolver) Resolve(ctx context.Context) (ResolvedBuild, error) {
	p, err := platform.Classify(ctx, r.detector)
	if err != nil {
		r.logger.Warn("falling back to default browser platform", "platform", p, "reason", err)
	}

	if exactBuildID.MatchString(r.channel) {
		return ResolvedBuild{Platform: p, BuildID: r.channel, Channel: r.channel}, nil
	}

	version, err := r.fetchChannelVersion(ctx)
	if err != nil {
		return ResolvedBuild{}, err
	}

	r.logger.Debug("resolved browser build", "channel", r.channel, "build", version, "platform", p)
	return ResolvedBuild{Platform: p, BuildID: version, Channel: r.channel}, nil
}

func (r *Resolver) fetchChannelVersion(ctx context.Context) (string, error) {
	netErr := func(err error) error {
		return &NetworkError{Op: "resolve", URL: r.versionsURL, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.versionsURL, nil)
	if err != nil {
		return "", netErr(fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("User-Agent", DefaultUserAgent)

	resp, err := r.client.Do(req)
	if err != nil {
		return "", netErr(fmt.Errorf("execute request: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", netErr(&statusError{code: resp.StatusCode})
	}

	var versions versionsResponse
	if err := json.NewDecoder(resp.Body).Decode(&versions); err != nil {
		return "", netErr(fmt.Errorf("decode versions: %w", err))
	}

	for name, ch := range versions.Channels {
		if strings.EqualFold(name, r.channel) {
			if ch.Version == "" {
				return "", netErr(fmt.Errorf("channel %s has no version", name))
			}
			return ch.Version, nil
		}
	}
	return "", netErr(fmt.Errorf("unknown channel %q", r.channel))
}
