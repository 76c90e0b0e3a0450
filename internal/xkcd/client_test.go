package xkcd

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *HTTPClient) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return server, NewClient(WithBaseURL(server.URL))
}

func TestNewClient_Defaults(t *testing.T) {
	client := NewClient()
	if client.baseURL != DefaultBaseURL {
		t.Errorf("expected base URL %s, got %s", DefaultBaseURL, client.baseURL)
	}
	if client.httpClient == nil {
		t.Fatal("expected non-nil http client")
	}
}

func TestLatest_Success(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/info.0.json" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"num": 2800, "safe_title": "Newest", "alt": "alt", "img": "https://imgs.xkcd.com/comics/newest.png"}`))
	})

	info, err := client.Latest(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if info.Num != 2800 {
		t.Errorf("expected num 2800, got %d", info.Num)
	}
}

func TestLatest_Failures(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{"server error", http.StatusBadGateway, "", ErrUnavailable},
		{"not found", http.StatusNotFound, "", ErrUnavailable},
		{"missing number", http.StatusOK, `{"title": "x"}`, ErrUnavailable},
		{"malformed body", http.StatusOK, `{"num":`, ErrUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			_, err := client.Latest(context.Background())
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestLatest_TransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := server.URL
	server.Close()

	_, err := NewClient(WithBaseURL(url)).Latest(context.Background())
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("expected ErrUnavailable, got %v", err)
	}
}

func TestComic_Success(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/1500/info.0.json" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{
			"num": 1500,
			"title": "Upside-Down Map",
			"safe_title": "Upside-Down Map",
			"alt": "Due to their proximity across the channel...",
			"img": "https://imgs.xkcd.com/comics/upside_down_map.png"
		}`))
	})

	info, err := client.Comic(context.Background(), 1500)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if info.SafeTitle != "Upside-Down Map" {
		t.Errorf("unexpected safe title %q", info.SafeTitle)
	}
	if info.Alt == "" {
		t.Error("expected non-empty alt text")
	}
	if info.Img != "https://imgs.xkcd.com/comics/upside_down_map.png" {
		t.Errorf("unexpected image url %q", info.Img)
	}
}

func TestComic_Failures(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{"missing comic", http.StatusNotFound, "", ErrNotFound},
		{"forbidden", http.StatusForbidden, "", ErrNotFound},
		{"no image", http.StatusOK, `{"num": 404, "alt": "x"}`, ErrNotFound},
		{"server error", http.StatusServiceUnavailable, "", ErrUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			_, err := client.Comic(context.Background(), 404)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestComic_InvalidID(t *testing.T) {
	_, err := NewClient().Comic(context.Background(), 0)
	if !errors.Is(err, ErrInvalidID) {
		t.Errorf("expected ErrInvalidID, got %v", err)
	}
}

func TestDownload(t *testing.T) {
	server, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/comics/ok.png":
			_, _ = w.Write([]byte("\x89PNG"))
		case "/comics/broken.png":
			w.WriteHeader(http.StatusInternalServerError)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	t.Run("streams body", func(t *testing.T) {
		body, err := client.Download(context.Background(), server.URL+"/comics/ok.png")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		defer func() { _ = body.Close() }()

		data, _ := io.ReadAll(body)
		if string(data) != "\x89PNG" {
			t.Errorf("unexpected body %q", data)
		}
	})

	t.Run("missing image", func(t *testing.T) {
		_, err := client.Download(context.Background(), server.URL+"/comics/missing.png")
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("server error", func(t *testing.T) {
		_, err := client.Download(context.Background(), server.URL+"/comics/broken.png")
		if !errors.Is(err, ErrUnavailable) {
			t.Errorf("expected ErrUnavailable, got %v", err)
		}
	})
}

func TestDownload_ConnectionDrop(t *testing.T) {
	server, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", "100000")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("\x89PNG..."))
		w.(http.Flusher).Flush()
		conn, _, err := w.(http.Hijacker).Hijack()
		if err == nil {
			_ = conn.Close()
		}
	})

	body, err := client.Download(context.Background(), server.URL+"/comics/cut.png")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer func() { _ = body.Close() }()

	_, err = io.ReadAll(body)
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("expected ErrUnavailable, got %v", err)
	}
	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("expected cause to be kept, got %v", err)
	}
}
