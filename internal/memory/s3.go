package memory

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/poltracker/poltracker/internal/config"
)

// S3Store is the Amazon S3 backend, the default for memory storage.
type S3Store struct {
	client *s3.Client
	bucket string
}

// NewS3Store creates a backend for the given region and bucket. When
// explicit credentials are empty the default AWS credential chain is used.
func NewS3Store(ctx context.Context, region, bucket, accessKeyID, secretAccessKey string) (*S3Store, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(region),
	}
	if accessKeyID != "" && secretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(accessKeyID, secretAccessKey, "")))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}
	return &S3Store{
		client: s3.NewFromConfig(awsCfg),
		bucket: bucket,
	}, nil
}

func s3NotFound(err error) bool {
	var noSuchKey *types.NoSuchKey
	if errors.As(err, &noSuchKey) {
		return true
	}
	var notFound *types.NotFound
	return errors.As(err, &notFound)
}

func (s *S3Store) Get(ctx context.Context, key string) ([]byte, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if s3NotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("getting object: %w", err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("reading object data: %w", err)
	}
	return data, nil
}

func (s *S3Store) Put(ctx context.Context, key string, data []byte) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("putting object: %w", err)
	}
	return nil
}

func (s *S3Store) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil && !s3NotFound(err) {
		return fmt.Errorf("deleting object: %w", err)
	}
	return nil
}

// NewBackend builds the configured object store backend: S3 by default,
// Cloud Storage when MEMORY_BACKEND=gcs. An empty bucket yields the
// Unconfigured backend so the server still boots and memory operations
// report the missing configuration per request.
func NewBackend(ctx context.Context, cfg *config.Config) (ObjectStore, error) {
	switch cfg.MemoryBackend {
	case "gcs":
		if cfg.GCSBucket == "" {
			return Unconfigured{}, nil
		}
		return NewGCSStore(ctx, cfg.GCSBucket)
	case "s3":
		if cfg.S3Bucket == "" {
			return Unconfigured{}, nil
		}
		return NewS3Store(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.AWSAccessKeyID, cfg.AWSSecretAccessKey)
	default:
		return nil, fmt.Errorf("unsupported memory backend: %s", cfg.MemoryBackend)
	}
}
