// Package blob wraps an S3-compatible object store behind the small
// surface the image tools need: put bytes, read bytes, copy to a local
// file, and mint time-limited presigned URLs.
package blob

import (
	"bytes"
	"context"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/Laisky/errors/v2"
	logSDK "github.com/Laisky/go-utils/v6/log"
	"github.com/Laisky/zap"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	appLog "github.com/Laisky/image-mcp/library/log"
)

// Store is a bucket-scoped object store client.
type Store struct {
	cli    *minio.Client
	bucket string
	logger logSDK.Logger
}

// Option customises a Store during construction.
type Option func(*Store)

// WithLogger overrides the default named logger.
func WithLogger(logger logSDK.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New connects to an S3-compatible endpoint and scopes all operations to
// the given bucket.
func New(endpoint, accessKey, secretKey, bucket string, secure bool, opts ...Option) (*Store, error) {
	if endpoint == "" {
		return nil, errors.New("endpoint is required")
	}
	if bucket == "" {
		return nil, errors.New("bucket is required")
	}

	cli, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: secure,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "create minio client for `%s`", endpoint)
	}

	s := &Store{
		cli:    cli,
		bucket: bucket,
		logger: appLog.Logger.Named("blob"),
	}
	for _, opt := range opts {
		opt(s)
	}

	return s, nil
}

// Ensure creates the bucket when it does not exist yet.
func (s *Store) Ensure(ctx context.Context) error {
	exists, err := s.cli.BucketExists(ctx, s.bucket)
	if err != nil {
		return errors.Wrapf(err, "check bucket `%s`", s.bucket)
	}
	if exists {
		return nil
	}

	if err := s.cli.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
		return errors.Wrapf(err, "make bucket `%s`", s.bucket)
	}

	s.logger.Info("created bucket", zap.String("bucket", s.bucket))
	return nil
}

// Put stores data under name, overwriting any existing object.
func (s *Store) Put(ctx context.Context, name string, data []byte, contentType string) error {
	_, err := s.cli.PutObject(ctx, s.bucket, name,
		bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: contentType},
	)
	if err != nil {
		return errors.Wrapf(err, "put object `%s`", name)
	}

	s.logger.Debug("put object",
		zap.String("name", name),
		zap.Int("size", len(data)))
	return nil
}

// SignedURL mints a presigned GET URL valid for ttl.
func (s *Store) SignedURL(ctx context.Context, name string, ttl time.Duration) (string, error) {
	signed, err := s.cli.PresignedGetObject(ctx, s.bucket, name, ttl, url.Values{})
	if err != nil {
		return "", errors.Wrapf(err, "presign object `%s`", name)
	}
	return signed.String(), nil
}

// Get reads the full object body.
func (s *Store) Get(ctx context.Context, name string) ([]byte, error) {
	obj, err := s.cli.GetObject(ctx, s.bucket, name, minio.GetObjectOptions{})
	if err != nil {
		return nil, errors.Wrapf(err, "get object `%s`", name)
	}
	defer func() { _ = obj.Close() }()

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, errors.Wrapf(err, "read object `%s`", name)
	}
	return data, nil
}

// Download copies the object to a local path, creating parent directories.
func (s *Store) Download(ctx context.Context, name, path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrapf(err, "create directory `%s`", dir)
		}
	}

	if err := s.cli.FGetObject(ctx, s.bucket, name, path, minio.GetObjectOptions{}); err != nil {
		return errors.Wrapf(err, "download object `%s` to `%s`", name, path)
	}

	s.logger.Debug("downloaded object",
		zap.String("name", name),
		zap.String("path", path))
	return nil
}
