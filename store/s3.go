package store

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/gabriel-vasile/mimetype"

	uperrors "github.com/fenice-io/upload/errors"
	"github.com/fenice-io/upload/internal/storeapi"
	"github.com/fenice-io/upload/internal/validation"
)

// DefaultContentType is used when content type detection fails.
const DefaultContentType = "application/octet-stream"

// S3 is an ObjectStore backed by an S3 bucket.
// All objects live under one bucket; keys are used verbatim.
type S3 struct {
	api     storeapi.ObjectAPI
	presign storeapi.PresignAPI

	bucket    string
	region    string
	endpoint  string
	pathStyle bool
}

// S3Config holds construction settings for the S3 backend.
type S3Config struct {
	// Region is the AWS region; falls back to the credential chain's region.
	Region string

	// Endpoint overrides the S3 endpoint, for S3-compatible services or
	// local testing.
	Endpoint string

	// ForcePathStyle uses path-style URLs instead of virtual-hosted style.
	ForcePathStyle bool

	// Timeout applies to individual S3 requests. Zero means no timeout.
	Timeout time.Duration

	// CustomAWSConfig overrides the default AWS configuration loading.
	CustomAWSConfig *aws.Config
}

// S3Option configures the S3 backend.
type S3Option func(*S3Config)

// WithRegion sets the AWS region for S3 operations.
func WithRegion(region string) S3Option {
	return func(c *S3Config) {
		c.Region = region
	}
}

// WithEndpoint sets a custom S3 endpoint URL.
// Useful for S3-compatible services or local testing.
func WithEndpoint(endpoint string) S3Option {
	return func(c *S3Config) {
		c.Endpoint = endpoint
	}
}

// WithForcePathStyle forces path-style URLs instead of virtual-hosted style.
// Required for S3-compatible services that don't support virtual hosting.
func WithForcePathStyle(forcePathStyle bool) S3Option {
	return func(c *S3Config) {
		c.ForcePathStyle = forcePathStyle
	}
}

// WithRequestTimeout sets the timeout for individual S3 requests.
func WithRequestTimeout(timeout time.Duration) S3Option {
	return func(c *S3Config) {
		c.Timeout = timeout
	}
}

// WithAWSConfig provides a custom AWS configuration, overriding the default
// credential chain loading.
func WithAWSConfig(cfg *aws.Config) S3Option {
	return func(c *S3Config) {
		c.CustomAWSConfig = cfg
	}
}

// NewS3 creates an S3-backed object store for the given bucket.
// Credentials are loaded from the default AWS credential chain unless
// WithAWSConfig is supplied.
func NewS3(ctx context.Context, bucket string, opts ...S3Option) (*S3, error) {
	if bucket == "" {
		return nil, uperrors.NewError("newS3", uperrors.ErrInvalidInput).
			WithMessage("bucket name cannot be empty")
	}

	storeCfg := &S3Config{}
	for _, opt := range opts {
		opt(storeCfg)
	}

	var cfg aws.Config
	var err error
	if storeCfg.CustomAWSConfig != nil {
		cfg = *storeCfg.CustomAWSConfig
	} else {
		cfg, err = config.LoadDefaultConfig(ctx)
		if err != nil {
			return nil, uperrors.NewError("newS3", err)
		}
	}

	if storeCfg.Region != "" {
		cfg.Region = storeCfg.Region
	} else if cfg.Region == "" {
		cfg.Region = "us-east-1"
	}

	var s3Opts []func(*s3.Options)
	if storeCfg.ForcePathStyle {
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.UsePathStyle = true
		})
	}
	if storeCfg.Endpoint != "" {
		endpoint := storeCfg.Endpoint
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(endpoint)
		})
	}
	if storeCfg.Timeout > 0 {
		httpClient := &http.Client{Timeout: storeCfg.Timeout}
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.HTTPClient = httpClient
		})
	}

	client := s3.NewFromConfig(cfg, s3Opts...)

	return &S3{
		api:       client,
		presign:   s3.NewPresignClient(client),
		bucket:    bucket,
		region:    cfg.Region,
		endpoint:  storeCfg.Endpoint,
		pathStyle: storeCfg.ForcePathStyle,
	}, nil
}

// NewS3WithClient creates an S3 backend with custom API implementations.
// This is primarily used for testing with mocked clients.
func NewS3WithClient(api storeapi.ObjectAPI, presign storeapi.PresignAPI, bucket string) *S3 {
	return &S3{
		api:     api,
		presign: presign,
		bucket:  bucket,
		region:  "us-east-1",
	}
}

// Upload stores data under key and returns the object's URL.
// When contentType is empty, the type is sniffed from the data.
func (s *S3) Upload(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	if err := validation.ValidateKey(key); err != nil {
		return "", uperrors.NewError("upload", uperrors.ErrInvalidInput).
			WithKey(key).
			WithMessage(err.Error())
	}

	if contentType == "" {
		contentType = detectContentType(data)
	}

	input := &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(data))),
	}

	if _, err := s.api.PutObject(ctx, input); err != nil {
		return "", uperrors.NewError("upload", err).WithKey(key)
	}

	return s.objectURL(key), nil
}

// Download returns the bytes stored under key.
func (s *S3) Download(ctx context.Context, key string) ([]byte, error) {
	if err := validation.ValidateKey(key); err != nil {
		return nil, uperrors.NewError("download", uperrors.ErrInvalidInput).
			WithKey(key).
			WithMessage(err.Error())
	}

	input := &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}

	output, err := s.api.GetObject(ctx, input)
	if err != nil {
		if isNoSuchKey(err) {
			return nil, uperrors.NewError("download", uperrors.ErrKeyNotFound).WithKey(key)
		}
		return nil, uperrors.NewError("download", err).WithKey(key)
	}
	defer output.Body.Close()

	data, err := io.ReadAll(output.Body)
	if err != nil {
		return nil, uperrors.NewError("download", err).WithKey(key)
	}
	return data, nil
}

// Delete removes the object under key.
// S3 object deletion is idempotent: deleting an absent key succeeds.
func (s *S3) Delete(ctx context.Context, key string) error {
	if err := validation.ValidateKey(key); err != nil {
		return uperrors.NewError("delete", uperrors.ErrInvalidInput).
			WithKey(key).
			WithMessage(err.Error())
	}

	input := &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}

	if _, err := s.api.DeleteObject(ctx, input); err != nil {
		return uperrors.NewError("delete", err).WithKey(key)
	}
	return nil
}

// SignedURL returns a presigned GET URL for key that expires after ttl.
func (s *S3) SignedURL(ctx context.Context, key string, ttl time.Duration) (string, error) {
	if err := validation.ValidateKey(key); err != nil {
		return "", uperrors.NewError("signedURL", uperrors.ErrInvalidInput).
			WithKey(key).
			WithMessage(err.Error())
	}
	if s.presign == nil {
		return "", uperrors.NewError("signedURL", uperrors.ErrNotSupported).WithKey(key)
	}

	input := &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}

	req, err := s.presign.PresignGetObject(ctx, input, func(o *s3.PresignOptions) {
		o.Expires = ttl
	})
	if err != nil {
		return "", uperrors.NewError("signedURL", err).WithKey(key)
	}
	return req.URL, nil
}

// objectURL builds the canonical URL for an object in this bucket.
func (s *S3) objectURL(key string) string {
	if s.endpoint != "" {
		return fmt.Sprintf("%s/%s/%s", strings.TrimSuffix(s.endpoint, "/"), s.bucket, key)
	}
	if s.pathStyle {
		return fmt.Sprintf("https://s3.%s.amazonaws.com/%s/%s", s.region, s.bucket, key)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, key)
}

// detectContentType sniffs the content type from the payload, falling back to
// the octet-stream default.
func detectContentType(data []byte) string {
	if len(data) == 0 {
		return DefaultContentType
	}
	if mt := mimetype.Detect(data); mt != nil {
		return mt.String()
	}
	return DefaultContentType
}

// isNoSuchKey reports whether err is the S3 missing-key error.
func isNoSuchKey(err error) bool {
	var noSuchKey *types.NoSuchKey
	if errors.As(err, &noSuchKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "NoSuchKey") || strings.Contains(msg, "NotFound")
}

var _ ObjectStore = (*S3)(nil)
