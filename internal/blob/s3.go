package blob

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"gearbook/internal/infrastructure/config"
)

// S3Store keeps photo blobs in a single S3-compatible bucket.
//
// An optional custom endpoint with path-style addressing supports MinIO
// for self-hosted deployments. Credentials come from the default AWS
// chain (environment, shared config, instance role).
type S3Store struct {
	client *s3.Client
	bucket string
}

// NewS3Store creates an S3-backed photo store from configuration.
func NewS3Store(ctx context.Context, cfg config.S3BlobConfig) (*S3Store, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("blob: s3 bucket is required")
	}

	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("blob: loading aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.PathStyle {
			o.UsePathStyle = true
		}
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})

	return &S3Store{client: client, bucket: cfg.Bucket}, nil
}

// Put stores the blob under key. Create-only is emulated with a Head
// check; S3 has no native create-if-absent for plain puts.
func (s *S3Store) Put(ctx context.Context, key string, r io.Reader, contentType string) (Info, error) {
	if err := validateKey(key); err != nil {
		return Info{}, err
	}

	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{Bucket: &s.bucket, Key: &key})
	if err == nil {
		return Info{}, fmt.Errorf("%w: %s", ErrExists, key)
	}
	var notFound *types.NotFound
	if !errors.As(err, &notFound) {
		return Info{}, fmt.Errorf("blob: checking %s: %w", key, err)
	}

	input := &s3.PutObjectInput{Bucket: &s.bucket, Key: &key, Body: r}
	if contentType != "" {
		input.ContentType = &contentType
	}
	if _, err := s.client.PutObject(ctx, input); err != nil {
		return Info{}, fmt.Errorf("blob: storing %s: %w", key, err)
	}

	out, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{Bucket: &s.bucket, Key: &key})
	if err != nil {
		return Info{}, fmt.Errorf("blob: confirming %s: %w", key, err)
	}

	return s.infoFrom(key, out.ContentLength, out.ContentType), nil
}

// Open returns the blob's info and content stream.
func (s *S3Store) Open(ctx context.Context, key string) (Info, io.ReadCloser, error) {
	if err := validateKey(key); err != nil {
		return Info{}, nil, err
	}

	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{Bucket: &s.bucket, Key: &key})
	if err != nil {
		var noSuchKey *types.NoSuchKey
		if errors.As(err, &noSuchKey) {
			return Info{}, nil, fmt.Errorf("%w: %s", ErrNotFound, key)
		}
		return Info{}, nil, fmt.Errorf("blob: opening %s: %w", key, err)
	}

	return s.infoFrom(key, out.ContentLength, out.ContentType), out.Body, nil
}

// Delete removes the blob. S3 deletes are idempotent, so a missing key
// is not an error.
func (s *S3Store) Delete(ctx context.Context, key string) error {
	if err := validateKey(key); err != nil {
		return err
	}

	if _, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{Bucket: &s.bucket, Key: &key}); err != nil {
		return fmt.Errorf("blob: deleting %s: %w", key, err)
	}
	return nil
}

func (s *S3Store) infoFrom(key string, contentLength *int64, contentType *string) Info {
	info := Info{Key: key}
	if contentLength != nil {
		info.Size = *contentLength
	}
	if contentType != nil {
		info.ContentType = *contentType
	}
	return info
}
