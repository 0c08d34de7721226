package archive

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"time"

	"cloud.google.com/go/storage"
)

// GCSArchiver copies published files to a Cloud Storage bucket before
// deleting them locally.
type GCSArchiver struct {
	client *storage.Client
	bucket string
	prefix string
}

func NewGCSArchiver(ctx context.Context, bucket, prefix string) (*GCSArchiver, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCS client: %w", err)
	}

	return &GCSArchiver{
		client: client,
		bucket: bucket,
		prefix: prefix,
	}, nil
}

func (a *GCSArchiver) Close() error {
	return a.client.Close()
}

func (a *GCSArchiver) Dispose(ctx context.Context, localPath string) error {
	if err := a.uploadFile(ctx, localPath); err != nil {
		return fmt.Errorf("failed to archive file: %w", err)
	}

	if err := os.Remove(localPath); err != nil {
		return fmt.Errorf("failed to remove file: %w", err)
	}

	return nil
}

func (a *GCSArchiver) uploadFile(ctx context.Context, localPath string) error {
	f, err := os.Open(localPath)
	if err != nil {
		return fmt.Errorf("failed to open local file: %w", err)
	}
	defer func() { _ = f.Close() }()

	remotePath := path.Join(a.prefix, time.Now().Format("2006-01-02"), filepath.Base(localPath))
	w := a.client.Bucket(a.bucket).Object(remotePath).NewWriter(ctx)

	if _, err := io.Copy(w, f); err != nil {
		_ = w.Close()
		return fmt.Errorf("failed to upload file: %w", err)
	}

	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to finalize upload: %w", err)
	}

	return nil
}
