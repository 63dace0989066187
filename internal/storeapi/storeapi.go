// Package storeapi defines interfaces for the S3 operations the store
// backend uses, to enable testing and mocking.
package storeapi

import (
	"context"

	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ObjectAPI is the narrow slice of the S3 API the store backend depends on.
type ObjectAPI interface {
	// PutObject uploads an object to S3
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)

	// GetObject retrieves an object from S3
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)

	// DeleteObject deletes an object from S3
	DeleteObject(
		ctx context.Context,
		params *s3.DeleteObjectInput,
		optFns ...func(*s3.Options),
	) (*s3.DeleteObjectOutput, error)
}

// PresignAPI issues presigned request URLs for S3 objects.
type PresignAPI interface {
	// PresignGetObject returns a presigned GET request for an object
	PresignGetObject(
		ctx context.Context,
		params *s3.GetObjectInput,
		optFns ...func(*s3.PresignOptions),
	) (*v4.PresignedHTTPRequest, error)
}

// Verify that the AWS SDK clients implement our interfaces
var (
	_ ObjectAPI  = (*s3.Client)(nil)
	_ PresignAPI = (*s3.PresignClient)(nil)
)
