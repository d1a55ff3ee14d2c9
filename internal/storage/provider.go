package storage

import (
	"context"
	"errors"
	"io"
)

// ErrNotFound is returned by OpenFile when no object exists under the key.
var ErrNotFound = errors.New("storage: object not found")

// ErrInvalidKey is returned for keys that would escape the storage root.
var ErrInvalidKey = errors.New("storage: invalid key")

// Provider abstracts the media storage holding export assets (the logo) and
// archived export documents.
type Provider interface {
	// StreamToFile returns a WriteCloser. Data written to it is streamed to the storage destination.
	// The key is the relative path/filename for the object.
	// The returned channel receives a single error (or nil) when the storage operation completes.
	StreamToFile(ctx context.Context, key string) (io.WriteCloser, <-chan error)

	// OpenFile opens the stored object for reading. Missing objects yield an
	// error matching ErrNotFound.
	OpenFile(ctx context.Context, key string) (io.ReadCloser, error)

	// GetDownloadURL returns a viewable/downloadable URL for the stored item.
	GetDownloadURL(key string) string
}

// Save streams r to key and waits for the provider to confirm the write.
func Save(ctx context.Context, p Provider, key string, r io.Reader) error {
	w, done := p.StreamToFile(ctx, key)
	if w == nil {
		return <-done
	}
	if _, err := io.Copy(w, r); err != nil {
		_ = w.Close()
		<-done
		return err
	}
	if err := w.Close(); err != nil {
		<-done
		return err
	}
	return <-done
}
