package storage

import (
	"bytes"
	"context"
	"fmt"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Store keeps objects in a single S3 (or MinIO) bucket, using the
// role bucket as a key prefix.
type S3Store struct {
	client *s3.Client
	bucket string
}

// S3Options configures the S3 backend. Endpoint may point at a MinIO
// deployment; credentials are static.
type S3Options struct {
	Endpoint  string
	Region    string
	Bucket    string
	AccessKey string
	SecretKey string
}

// NewS3 builds an S3-backed store.
func NewS3(ctx context.Context, opts S3Options) (*S3Store, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(opts.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			opts.AccessKey,
			opts.SecretKey,
			"",
		)))
	if err != nil {
		return nil, fmt.Errorf("could not load S3 config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
			o.UsePathStyle = true // MinIO does not support virtual-host addressing
		}
	})

	return &S3Store{client: client, bucket: opts.Bucket}, nil
}

// Write uploads data to bucket-prefix/name.
func (s *S3Store) Write(ctx context.Context, bucket, name string, data []byte) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(path.Join(bucket, name)),
		Body:   bytes.NewReader(data),
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrWrite, err)
	}
	return nil
}

// Delete removes bucket-prefix/name. S3 DeleteObject is idempotent, so a
// missing key already behaves as "not an error".
func (s *S3Store) Delete(ctx context.Context, bucket, name string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(path.Join(bucket, name)),
	})
	return err
}
