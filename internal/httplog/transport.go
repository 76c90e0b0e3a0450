// Package httplog logs outbound HTTP requests with structured logging.
package httplog

import (
	"log/slog"
	"net/http"
	"time"
)

// Transport wraps an http.RoundTripper and logs every exchange at debug
// level. Query strings are never logged since they carry access tokens.
type Transport struct {
	next   http.RoundTripper
	logger *slog.Logger
}

// NewTransport wraps next, or http.DefaultTransport when next is nil.
func NewTransport(next http.RoundTripper, logger *slog.Logger) *Transport {
	if next == nil {
		next = http.DefaultTransport
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Transport{next: next, logger: logger}
}

// RoundTrip implements http.RoundTripper.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()

	resp, err := t.next.RoundTrip(req)

	attrs := []any{
		slog.String("method", req.Method),
		slog.String("host", req.URL.Host),
		slog.String("path", req.URL.Path),
		slog.Duration("duration", time.Since(start)),
	}
	if err != nil {
		t.logger.DebugContext(req.Context(), "http request failed", append(attrs, slog.String("error", err.Error()))...)
		return nil, err
	}
	t.logger.DebugContext(req.Context(), "http request", append(attrs, slog.Int("status", resp.StatusCode))...)
	return resp, nil
}

// NewClient returns an HTTP client that logs through a Transport.
func NewClient(timeout time.Duration, logger *slog.Logger) *http.Client {
	return &http.Client{
		Timeout:   timeout,
		Transport: NewTransport(nil, logger),
	}
}
