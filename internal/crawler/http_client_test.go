package crawler

import (
	"context"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestHTTPClient(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ua := r.Header.Get("User-Agent"); ua != "Test-Harvester/1.0" {
			t.Errorf("Expected User-Agent 'Test-Harvester/1.0', got '%s'", ua)
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		time.Sleep(20 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("<html><body>Test Page</body></html>"))
	}))
	defer server.Close()

	client := NewHTTPClient("Test-Harvester/1.0", 30*time.Second)
	defer client.Close()

	resp, err := client.Get(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Failed to get URL: %v", err)
	}

	if resp.StatusCode != 200 {
		t.Errorf("Expected status code 200, got %d", resp.StatusCode)
	}

	if resp.ContentType != "text/html; charset=utf-8" {
		t.Errorf("Expected content type 'text/html; charset=utf-8', got '%s'", resp.ContentType)
	}

	if resp.TTFB < 20*time.Millisecond {
		t.Errorf("TTFB should be at least 20ms, got %v", resp.TTFB)
	}

	if resp.DownloadTime < resp.TTFB {
		t.Errorf("Download time should not be less than TTFB")
	}

	if string(resp.Body) != "<html><body>Test Page</body></html>" {
		t.Errorf("Unexpected body '%s'", string(resp.Body))
	}
}

func TestHTTPClientRedirect(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/final" {
			http.Redirect(w, r, "/final", http.StatusFound)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("Final page"))
	}))
	defer server.Close()

	client := NewHTTPClient("Test-Harvester/1.0", 30*time.Second)
	defer client.Close()

	resp, err := client.Get(context.Background(), server.URL+"/start")
	if err != nil {
		t.Fatalf("Failed to get URL: %v", err)
	}

	if resp.FinalURL != server.URL+"/final" {
		t.Errorf("Expected final URL '%s', got '%s'", server.URL+"/final", resp.FinalURL)
	}
}

func TestHTTPClientTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewHTTPClient("Test-Harvester/1.0", 100*time.Millisecond)
	defer client.Close()

	if _, err := client.Get(context.Background(), server.URL); err == nil {
		t.Errorf("Expected timeout error, got nil")
	}
}

func TestHTTPClientErrorCases(t *testing.T) {
	client := NewHTTPClient("Test-Harvester/1.0", 30*time.Second)
	defer client.Close()

	ctx := context.Background()

	if _, err := client.Get(ctx, "invalid-url"); err == nil {
		t.Errorf("Expected error for invalid URL, got nil")
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("Internal Server Error"))
	}))
	defer server.Close()

	// Status codes are reported, not treated as errors
	resp, err := client.Get(ctx, server.URL)
	if err != nil {
		t.Errorf("Unexpected error for server error response: %v", err)
	}
	if resp.StatusCode != 500 {
		t.Errorf("Expected status code 500, got %d", resp.StatusCode)
	}

	cancelledCtx, cancel := context.WithCancel(ctx)
	cancel()

	if _, err := client.Get(cancelledCtx, server.URL); err == nil {
		t.Errorf("Expected error for cancelled context, got nil")
	}
}

func TestHTTPClientMaxBodySize(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(strings.Repeat("x", 1024)))
	}))
	defer server.Close()

	client := NewHTTPClient("Test-Harvester/1.0", 30*time.Second)
	defer client.Close()
	client.SetMaxBodySize(100)

	resp, err := client.Get(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Failed to get URL: %v", err)
	}
	if len(resp.Body) != 100 {
		t.Errorf("Expected body truncated to 100 bytes, got %d", len(resp.Body))
	}
}

func TestHTTPClientAuth(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Header.Get("X-API-Key") == "secret":
			_, _ = w.Write([]byte("apikey"))
		case r.Header.Get("Authorization") == "Bearer tok123":
			_, _ = w.Write([]byte("bearer"))
		case strings.HasPrefix(r.Header.Get("Authorization"), "Basic "):
			decoded, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(r.Header.Get("Authorization"), "Basic "))
			if err != nil || string(decoded) != "testuser:testpass" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			_, _ = w.Write([]byte("basic"))
		default:
			w.WriteHeader(http.StatusUnauthorized)
		}
	}))
	defer server.Close()

	tests := []struct {
		name     string
		setup    func(c *HTTPClient)
		wantCode int
		wantBody string
	}{
		{"no auth", func(c *HTTPClient) {}, http.StatusUnauthorized, ""},
		{"basic", func(c *HTTPClient) { c.SetBasicAuth("testuser", "testpass") }, http.StatusOK, "basic"},
		{"basic wrong password", func(c *HTTPClient) { c.SetBasicAuth("testuser", "nope") }, http.StatusUnauthorized, ""},
		{"bearer", func(c *HTTPClient) { c.SetBearerAuth("tok123") }, http.StatusOK, "bearer"},
		{"api key", func(c *HTTPClient) { c.SetAPIKeyAuth("X-API-Key", "secret") }, http.StatusOK, "apikey"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := NewHTTPClient("Test-Harvester/1.0", 30*time.Second)
			defer client.Close()
			tt.setup(client)

			resp, err := client.Get(context.Background(), server.URL)
			if err != nil {
				t.Fatalf("Failed to get URL: %v", err)
			}
			if resp.StatusCode != tt.wantCode {
				t.Errorf("Expected status %d, got %d", tt.wantCode, resp.StatusCode)
			}
			if string(resp.Body) != tt.wantBody {
				t.Errorf("Expected body '%s', got '%s'", tt.wantBody, string(resp.Body))
			}
		})
	}
}

func TestHTTPClientCustomHeaders(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Trace") != "abc" || r.Header.Get("Cookie") != "session=1" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewHTTPClient("Test-Harvester/1.0", 30*time.Second)
	defer client.Close()
	client.SetCustomHeaders(map[string]string{"X-Trace": "abc", "Cookie": "session=1"})

	resp, err := client.Get(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Failed to get URL: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected custom headers to be sent, got status %d", resp.StatusCode)
	}
}
