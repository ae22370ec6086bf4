package download

import (
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/juju/ratelimit"
)

// HTTP transport settings for the native backend
const (
	ResponseHeaderTimeout = 30 * time.Second
	IdleConnTimeout       = 90 * time.Second
	MaxIdleConns          = 100
)

// ParseRate parses strings like "2MiB/s", "500KiB/s", "1.5M" or "800000"
// into bytes per second. An empty string means unlimited.
func ParseRate(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	trimmed := strings.TrimSuffix(strings.TrimSuffix(s, "/s"), "/S")

	bps, err := humanize.ParseBytes(trimmed)
	if err != nil {
		return 0, fmt.Errorf("invalid rate %q: %w", s, err)
	}
	if bps == 0 {
		return 0, fmt.Errorf("invalid rate %q: must be positive", s)
	}
	return int64(bps), nil
}

// NewHTTPClient returns a client for long running media transfers. When
// bytesPerSecond is positive every response body is throttled through a
// shared token bucket.
func NewHTTPClient(bytesPerSecond int64) *http.Client {
	var transport http.RoundTripper = &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		ForceAttemptHTTP2:     false,
		MaxIdleConns:          MaxIdleConns,
		IdleConnTimeout:       IdleConnTimeout,
		ResponseHeaderTimeout: ResponseHeaderTimeout,
	}
	if bytesPerSecond > 0 {
		transport = &throttledTransport{
			base:   transport,
			bucket: ratelimit.NewBucketWithRate(float64(bytesPerSecond), bytesPerSecond),
		}
	}
	// no overall Timeout: it would abort large downloads
	return &http.Client{Transport: transport}
}

type throttledTransport struct {
	base   http.RoundTripper
	bucket *ratelimit.Bucket
}

func (t *throttledTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := t.base.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	resp.Body = &throttledBody{
		Reader: ratelimit.Reader(resp.Body, t.bucket),
		Closer: resp.Body,
	}
	return resp, nil
}

type throttledBody struct {
	io.Reader
	io.Closer
}
