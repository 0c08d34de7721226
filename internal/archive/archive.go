package archive

import (
	"context"
	"fmt"
	"os"
)

// Archiver disposes of a published media file once it is no longer
// needed locally.
type Archiver interface {
	Dispose(ctx context.Context, path string) error
}

// Cleaner deletes published files from disk.
type Cleaner struct{}

func NewCleaner() *Cleaner {
	return &Cleaner{}
}

func (c *Cleaner) Dispose(_ context.Context, path string) error {
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("failed to remove file: %w", err)
	}
	return nil
}
