package crawler

import (
	"context"
	"errors"
	"log/slog"
	"net"

	"github.com/masahif/listharvest/internal/parser"
)

// HTTPFetcher implements PageFetcher over HTTPClient.
// The limiter and robots gate are optional.
type HTTPFetcher struct {
	client  *HTTPClient
	limiter *HostLimiter
	robots  *RobotsGate
}

// NewHTTPFetcher creates a fetcher. limiter and robots may be nil.
func NewHTTPFetcher(client *HTTPClient, limiter *HostLimiter, robots *RobotsGate) *HTTPFetcher {
	return &HTTPFetcher{
		client:  client,
		limiter: limiter,
		robots:  robots,
	}
}

// Fetch retrieves url and parses it. Any failure is returned as *FetchError.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (*parser.Page, error) {
	if f.robots != nil {
		allowed, err := f.robots.Allowed(ctx, url)
		if err != nil {
			return nil, &FetchError{URL: url, Kind: KindNetwork, Err: err}
		}
		if !allowed {
			return nil, &FetchError{URL: url, Kind: KindRobotsDisallowed}
		}
	}

	if f.limiter != nil {
		if err := f.limiter.Wait(ctx, url); err != nil {
			return nil, &FetchError{URL: url, Kind: classifyError(err), Err: err}
		}
	}

	resp, err := f.client.Get(ctx, url)
	if err != nil {
		return nil, &FetchError{URL: url, Kind: classifyError(err), Err: err}
	}

	slog.Debug("Fetched page", "url", url, "status", resp.StatusCode, "bytes", len(resp.Body), "ttfb", resp.TTFB, "download_time", resp.DownloadTime)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &FetchError{URL: url, Kind: KindHTTPStatus, StatusCode: resp.StatusCode}
	}

	page, err := parser.Parse(resp.FinalURL, resp.Body)
	if err != nil {
		return nil, &FetchError{URL: url, Kind: KindParse, Err: err}
	}

	return page, nil
}

// Close releases the underlying client's connections
func (f *HTTPFetcher) Close() {
	f.client.Close()
}

func classifyError(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return KindTimeout
	}
	return KindNetwork
}
