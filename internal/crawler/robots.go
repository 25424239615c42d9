package crawler

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"sync"

	"github.com/temoto/robotstxt"
)

// RobotsGate answers whether a URL may be fetched according to robots.txt.
// Rules are fetched once per scheme and host and cached for the gate's lifetime.
type RobotsGate struct {
	httpClient *HTTPClient
	userAgent  string
	rules      map[string]*robotstxt.RobotsData
	mu         sync.Mutex
}

// NewRobotsGate creates a gate that checks rules for userAgent
func NewRobotsGate(httpClient *HTTPClient, userAgent string) *RobotsGate {
	return &RobotsGate{
		httpClient: httpClient,
		userAgent:  userAgent,
		rules:      make(map[string]*robotstxt.RobotsData),
	}
}

// Allowed reports whether urlStr may be fetched.
// If robots.txt cannot be retrieved the URL is allowed.
func (r *RobotsGate) Allowed(ctx context.Context, urlStr string) (bool, error) {
	parsedURL, err := url.Parse(urlStr)
	if err != nil {
		return false, fmt.Errorf("invalid URL: %w", err)
	}

	data := r.getRules(ctx, parsedURL.Scheme, parsedURL.Host)
	if data == nil {
		return true, nil
	}

	path := parsedURL.RequestURI()
	return data.TestAgent(path, r.userAgent), nil
}

func (r *RobotsGate) getRules(ctx context.Context, scheme, host string) *robotstxt.RobotsData {
	key := scheme + "://" + host

	r.mu.Lock()
	data, ok := r.rules[key]
	r.mu.Unlock()
	if ok {
		return data
	}

	resp, err := r.httpClient.Get(ctx, key+"/robots.txt")
	switch {
	case err != nil:
		slog.Warn("Failed to fetch robots.txt", "host", host, "error", err)
	case resp.StatusCode >= 500:
		// server errors allow everything instead of blocking the host
		slog.Warn("robots.txt unavailable, allowing all", "host", host, "status", resp.StatusCode)
	default:
		if data, err = robotstxt.FromStatusAndBytes(resp.StatusCode, resp.Body); err != nil {
			slog.Warn("Failed to parse robots.txt", "host", host, "error", err)
			data = nil
		}
	}

	r.mu.Lock()
	r.rules[key] = data
	r.mu.Unlock()

	return data
}
