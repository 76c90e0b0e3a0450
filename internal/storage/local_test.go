package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
)

func TestNewLocalStorage(t *testing.T) {
	t.Run("creates directory if not exists", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "nested", "comics")

		storage, err := NewLocalStorage(dir)
		if err != nil {
			t.Fatalf("NewLocalStorage() error = %v", err)
		}

		if storage.Dir() != dir {
			t.Errorf("Dir() = %v, want %v", storage.Dir(), dir)
		}

		info, err := os.Stat(dir)
		if err != nil {
			t.Fatalf("directory not created: %v", err)
		}
		if !info.IsDir() {
			t.Error("expected directory, got file")
		}
	})

	t.Run("rejects empty folder", func(t *testing.T) {
		_, err := NewLocalStorage("")
		if !errors.Is(err, ErrInvalidName) {
			t.Errorf("expected ErrInvalidName, got %v", err)
		}
	})
}

func TestLocalStorage_Save(t *testing.T) {
	storage := setupTestStorage(t)
	ctx := context.Background()

	t.Run("saves data under the given name", func(t *testing.T) {
		path, err := storage.Save(ctx, "Barrel - Part 1.png", bytes.NewReader([]byte("png data")))
		if err != nil {
			t.Fatalf("Save() error = %v", err)
		}

		want := filepath.Join(storage.Dir(), "Barrel - Part 1.png")
		if path != want {
			t.Errorf("path = %s, want %s", path, want)
		}

		content, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("failed to read saved file: %v", err)
		}
		if string(content) != "png data" {
			t.Errorf("got %q, want %q", string(content), "png data")
		}
	})

	t.Run("overwrites an existing file", func(t *testing.T) {
		if _, err := storage.Save(ctx, "dup.png", bytes.NewReader([]byte("first version"))); err != nil {
			t.Fatalf("Save() error = %v", err)
		}
		path, err := storage.Save(ctx, "dup.png", bytes.NewReader([]byte("second")))
		if err != nil {
			t.Fatalf("Save() error = %v", err)
		}

		content, _ := os.ReadFile(path)
		if string(content) != "second" {
			t.Errorf("got %q, want %q", string(content), "second")
		}
	})

	t.Run("rejects names with path elements", func(t *testing.T) {
		for _, name := range []string{"", ".", "..", "../escape.png", "a/b.png"} {
			if _, err := storage.Save(ctx, name, bytes.NewReader(nil)); !errors.Is(err, ErrInvalidName) {
				t.Errorf("Save(%q) expected ErrInvalidName, got %v", name, err)
			}
		}
	})

	t.Run("removes partial file when the reader fails", func(t *testing.T) {
		reader := io.MultiReader(bytes.NewReader([]byte("partial")), failingReader{})

		_, err := storage.Save(ctx, "broken.png", reader)
		if err == nil {
			t.Fatal("expected error from failing reader")
		}

		if _, statErr := os.Stat(filepath.Join(storage.Dir(), "broken.png")); !os.IsNotExist(statErr) {
			t.Errorf("partial file should be removed, stat err = %v", statErr)
		}
	})

	t.Run("respects context cancellation", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := storage.Save(ctx, "test.png", bytes.NewReader([]byte("data")))
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	})
}

func TestLocalStorage_Open(t *testing.T) {
	storage := setupTestStorage(t)
	ctx := context.Background()

	t.Run("opens saved file", func(t *testing.T) {
		path, err := storage.Save(ctx, "load.png", bytes.NewReader([]byte("load data")))
		if err != nil {
			t.Fatalf("Save() error = %v", err)
		}

		reader, err := storage.Open(ctx, path)
		if err != nil {
			t.Fatalf("Open() error = %v", err)
		}
		defer func() { _ = reader.Close() }()

		content, err := io.ReadAll(reader)
		if err != nil {
			t.Fatalf("failed to read: %v", err)
		}
		if string(content) != "load data" {
			t.Errorf("got %q, want %q", string(content), "load data")
		}
	})

	t.Run("returns error for non-existent file", func(t *testing.T) {
		_, err := storage.Open(ctx, "/non/existent/file")
		if err == nil {
			t.Error("expected error for non-existent file")
		}
	})
}

func TestLocalStorage_Remove(t *testing.T) {
	storage := setupTestStorage(t)
	ctx := context.Background()

	t.Run("removes file", func(t *testing.T) {
		path, err := storage.Save(ctx, "cleanup.png", bytes.NewReader([]byte("data")))
		if err != nil {
			t.Fatalf("Save() error = %v", err)
		}

		if err := storage.Remove(ctx, path); err != nil {
			t.Fatalf("Remove() error = %v", err)
		}

		if _, err := os.Stat(path); !os.IsNotExist(err) {
			t.Errorf("file %s still exists", path)
		}
	})

	t.Run("reports missing file", func(t *testing.T) {
		err := storage.Remove(ctx, filepath.Join(storage.Dir(), "gone.png"))
		if !errors.Is(err, os.ErrNotExist) {
			t.Errorf("expected os.ErrNotExist, got %v", err)
		}
	})

	t.Run("runs with a cancelled context", func(t *testing.T) {
		path, _ := storage.Save(ctx, "late.png", bytes.NewReader([]byte("data")))
		cancelled, cancel := context.WithCancel(context.Background())
		cancel()

		if err := storage.Remove(cancelled, path); err != nil {
			t.Errorf("Remove() error = %v", err)
		}
	})
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, errors.New("connection reset")
}

func setupTestStorage(t *testing.T) *LocalStorage {
	t.Helper()

	storage, err := NewLocalStorage(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create storage: %v", err)
	}
	return storage
}
