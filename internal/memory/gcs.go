package memory

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"cloud.google.com/go/storage"
	"google.golang.org/api/googleapi"
)

// GCSStore is the Google Cloud Storage backend.
type GCSStore struct {
	client *storage.Client
	bucket string
}

// NewGCSStore creates a backend using application default credentials.
func NewGCSStore(ctx context.Context, bucket string) (*GCSStore, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("creating storage client: %w", err)
	}
	return &GCSStore{
		client: client,
		bucket: bucket,
	}, nil
}

func gcsNotFound(err error) bool {
	if errors.Is(err, storage.ErrObjectNotExist) {
		return true
	}
	var apiErr *googleapi.Error
	return errors.As(err, &apiErr) && apiErr.Code == http.StatusNotFound
}

func (s *GCSStore) Get(ctx context.Context, key string) ([]byte, error) {
	reader, err := s.client.Bucket(s.bucket).Object(key).NewReader(ctx)
	if err != nil {
		if gcsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("opening object reader: %w", err)
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("reading object data: %w", err)
	}
	return data, nil
}

func (s *GCSStore) Put(ctx context.Context, key string, data []byte) error {
	writer := s.client.Bucket(s.bucket).Object(key).NewWriter(ctx)
	writer.ContentType = "application/json"

	if _, err := writer.Write(data); err != nil {
		writer.Close()
		return fmt.Errorf("writing object data: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("closing object writer: %w", err)
	}
	return nil
}

func (s *GCSStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Bucket(s.bucket).Object(key).Delete(ctx); err != nil && !gcsNotFound(err) {
		return fmt.Errorf("deleting object: %w", err)
	}
	return nil
}

// Close closes the underlying storage client.
func (s *GCSStore) Close() error {
	return s.client.Close()
}
