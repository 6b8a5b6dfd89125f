package storage

import (
	"context"
	"fmt"
	"io"
	"path"

	"cloud.google.com/go/storage"

	apperrors "github.com/fitai/fitai-server/pkg/errors"
)

// StorageAdapter reads and writes objects in Google Cloud Storage.
type StorageAdapter struct {
	Client *storage.Client
}

func (a *StorageAdapter) Write(ctx context.Context, bucketName, objectName string, data []byte) error {
	wc := a.Client.Bucket(bucketName).Object(objectName).NewWriter(ctx)
	wc.ContentType = ContentType(objectName)
	if _, err := wc.Write(data); err != nil {
		wc.Close()
		return apperrors.ErrStorageError.WithCause(fmt.Errorf("write gs://%s/%s: %w", bucketName, objectName, err))
	}
	if err := wc.Close(); err != nil {
		return apperrors.ErrStorageError.WithCause(fmt.Errorf("close gs://%s/%s: %w", bucketName, objectName, err))
	}
	return nil
}

func (a *StorageAdapter) Read(ctx context.Context, bucketName, objectName string) ([]byte, error) {
	rc, err := a.Client.Bucket(bucketName).Object(objectName).NewReader(ctx)
	if err != nil {
		return nil, apperrors.ErrStorageError.WithCause(fmt.Errorf("open gs://%s/%s: %w", bucketName, objectName, err))
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

// ContentType picks the object content type from its extension.
func ContentType(objectName string) string {
	switch path.Ext(objectName) {
	case ".fit":
		return "application/vnd.ant.fit"
	case ".json":
		return "application/json"
	}
	return "application/octet-stream"
}
