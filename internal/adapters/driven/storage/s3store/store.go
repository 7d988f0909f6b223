// Package s3store provides an ObjectStore backed by an S3 bucket.
package s3store

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"github.com/custodia-labs/kbrag/internal/core/domain"
	"github.com/custodia-labs/kbrag/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.ObjectStore = (*Store)(nil)

// API is the subset of the S3 client the store calls.
type API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// Config holds configuration for the S3 store.
type Config struct {
	// Bucket is the target bucket (required).
	Bucket string

	// Region overrides the region from the AWS config chain.
	Region string

	// Endpoint points at an S3-compatible service (MinIO, LocalStack).
	// Path-style addressing is used when set.
	Endpoint string

	// Prefix is prepended to every key.
	Prefix string
}

// Store writes objects to a bucket. Keys map to object keys unchanged,
// below the optional prefix.
type Store struct {
	api    API
	bucket string
	prefix string
}

// New creates a store using the default AWS credential chain.
func New(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("%w: s3 bucket is required", domain.ErrInvalidInput)
	}

	var opts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("loading aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})
	return NewWithAPI(client, cfg.Bucket, cfg.Prefix), nil
}

// NewWithAPI creates a store over an existing client.
func NewWithAPI(api API, bucket, prefix string) *Store {
	return &Store{api: api, bucket: bucket, prefix: strings.Trim(prefix, "/")}
}

// Bucket returns the bucket name.
func (s *Store) Bucket() string {
	return s.bucket
}

// Put uploads data under key, replacing any existing object.
func (s *Store) Put(ctx context.Context, key string, data []byte, contentType string) error {
	objectKey, err := s.objectKey(key)
	if err != nil {
		return err
	}

	input := &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(objectKey),
		Body:   bytes.NewReader(data),
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}

	if _, err := s.api.PutObject(ctx, input); err != nil {
		return fmt.Errorf("s3 put %s: %w", objectKey, err)
	}
	return nil
}

// Get downloads the object under key.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	objectKey, err := s.objectKey(key)
	if err != nil {
		return nil, err
	}

	out, err := s.api.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(objectKey),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("s3 get %s: %w", objectKey, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("s3 read %s: %w", objectKey, err)
	}
	return data, nil
}

func (s *Store) objectKey(key string) (string, error) {
	clean := strings.TrimPrefix(path.Clean("/"+key), "/")
	if key == "" || clean == "" || strings.HasSuffix(key, "/") {
		return "", fmt.Errorf("%w: invalid object key %q", domain.ErrInvalidInput, key)
	}
	if s.prefix != "" {
		clean = s.prefix + "/" + clean
	}
	return clean, nil
}

// isNotFound matches NoSuchKey, and the bare 404 S3 returns when the
// caller lacks ListBucket.
func isNotFound(err error) bool {
	var nsk *types.NoSuchKey
	if errors.As(err, &nsk) {
		return true
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NotFound":
			return true
		}
	}
	return false
}
