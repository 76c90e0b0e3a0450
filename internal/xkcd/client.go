package xkcd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Static errors for xkcd client operations.
var (
	// ErrUnavailable is returned when the archive cannot be reached or answers with a server error.
	ErrUnavailable = errors.New("xkcd: source unavailable")
	// ErrNotFound is returned when the archive has no usable data for a requested comic.
	ErrNotFound = errors.New("xkcd: comic not found")
	// ErrInvalidID is returned for comic numbers below 1.
	ErrInvalidID = errors.New("xkcd: comic number must be positive")
)

// DefaultBaseURL is the public xkcd site.
const DefaultBaseURL = "https://xkcd.com"

// Client defines the interface for reading the xkcd archive.
type Client interface {
	// Latest returns the metadata of the newest comic. Its Num is the
	// highest comic number currently published.
	Latest(ctx context.Context) (Info, error)

	// Comic returns the metadata of comic num.
	Comic(ctx context.Context, num int) (Info, error)

	// Download opens the body at url. The caller must close it.
	Download(ctx context.Context, url string) (io.ReadCloser, error)
}

// HTTPClient is the HTTP implementation of the xkcd Client interface.
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
}

// ClientOption is a function that configures an HTTPClient.
type ClientOption func(*HTTPClient)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c *http.Client) ClientOption {
	return func(hc *HTTPClient) {
		hc.httpClient = c
	}
}

// WithBaseURL sets a custom base URL for the archive.
func WithBaseURL(url string) ClientOption {
	return func(hc *HTTPClient) {
		hc.baseURL = url
	}
}

// NewClient creates a new xkcd HTTP client.
func NewClient(opts ...ClientOption) *HTTPClient {
	c := &HTTPClient{
		baseURL:    DefaultBaseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Latest returns the metadata of the newest comic.
func (c *HTTPClient) Latest(ctx context.Context) (Info, error) {
	var info Info
	status, err := c.getJSON(ctx, c.baseURL+"/info.0.json", &info)
	if err != nil {
		return Info{}, err
	}
	if status != http.StatusOK {
		return Info{}, fmt.Errorf("%w: latest comic returned status %d", ErrUnavailable, status)
	}
	if info.Num < 1 {
		return Info{}, fmt.Errorf("%w: latest comic has no number", ErrUnavailable)
	}
	return info, nil
}

// Comic returns the metadata of comic num. A 4xx answer for the number is
// reported as ErrNotFound, a 5xx answer as ErrUnavailable.
func (c *HTTPClient) Comic(ctx context.Context, num int) (Info, error) {
	if num < 1 {
		return Info{}, fmt.Errorf("%w: %d", ErrInvalidID, num)
	}

	var info Info
	status, err := c.getJSON(ctx, fmt.Sprintf("%s/%d/info.0.json", c.baseURL, num), &info)
	if err != nil {
		return Info{}, err
	}
	if status < 200 || status >= 300 {
		return Info{}, fmt.Errorf("%w: comic %d returned status %d", ErrNotFound, num, status)
	}
	if info.Img == "" {
		return Info{}, fmt.Errorf("%w: comic %d has no image", ErrNotFound, num)
	}
	return info, nil
}

// Download opens the body at url. Read errors on the returned body other
// than io.EOF wrap ErrUnavailable.
func (c *HTTPClient) Download(ctx context.Context, url string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("xkcd: create download request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: download %s: %v", ErrUnavailable, url, err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		_ = resp.Body.Close()
		return nil, fmt.Errorf("%w: image %s returned status %d", ErrNotFound, url, resp.StatusCode)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		_ = resp.Body.Close()
		return nil, fmt.Errorf("%w: image %s returned status %d", ErrUnavailable, url, resp.StatusCode)
	}

	return &sourceBody{body: resp.Body, url: url}, nil
}

// sourceBody marks failures while streaming a download as the archive's.
type sourceBody struct {
	body io.ReadCloser
	url  string
}

func (b *sourceBody) Read(p []byte) (int, error) {
	n, err := b.body.Read(p)
	if err != nil && !errors.Is(err, io.EOF) {
		return n, fmt.Errorf("%w: read %s: %w", ErrUnavailable, b.url, err)
	}
	return n, err
}

func (b *sourceBody) Close() error {
	return b.body.Close()
}

// getJSON performs a GET and decodes a 2xx body into result. It returns the
// status code so callers can classify non-2xx answers themselves; 5xx is
// always ErrUnavailable.
func (c *HTTPClient) getJSON(ctx context.Context, url string, result any) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, fmt.Errorf("xkcd: create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 500 {
		return resp.StatusCode, fmt.Errorf("%w: %s returned status %d", ErrUnavailable, url, resp.StatusCode)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return resp.StatusCode, nil
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return resp.StatusCode, fmt.Errorf("%w: decode %s: %v", ErrUnavailable, url, err)
	}
	return resp.StatusCode, nil
}
