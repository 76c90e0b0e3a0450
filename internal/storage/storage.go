// Package storage provides the local file store that holds downloaded comic
// images for the lifetime of one run.
package storage

import (
	"context"
	"io"
)

// Storage defines the interface for the run's local image artifacts.
type Storage interface {
	// Save writes data to a file named after name inside the storage folder
	// and returns the file path. An existing file with the same name is
	// overwritten. A partially written file is removed on failure.
	Save(ctx context.Context, name string, data io.Reader) (path string, err error)

	// Open reads a stored file and returns a reader.
	// The caller is responsible for closing the returned ReadCloser.
	Open(ctx context.Context, path string) (io.ReadCloser, error)

	// Remove deletes a stored file. Unlike the write path it reports a
	// missing file as an error so the caller can log it.
	Remove(ctx context.Context, path string) error
}
