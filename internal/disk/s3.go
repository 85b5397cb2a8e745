package disk

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

	"medialib/internal/config"
)

// S3 stores files as objects in a bucket.
type S3 struct {
	client *s3.Client
	bucket string
	prefix string
}

var _ Disk = (*S3)(nil)

// NewS3 builds an S3 disk using the default AWS credential chain.
func NewS3(ctx context.Context, cfg config.S3Disk) (*S3, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.UsePathStyle
	})
	return NewS3WithClient(client, cfg.Bucket, cfg.Prefix), nil
}

// NewS3WithClient wraps an existing client.
func NewS3WithClient(client *s3.Client, bucket, prefix string) *S3 {
	return &S3{client: client, bucket: bucket, prefix: strings.Trim(prefix, "/")}
}

func (s *S3) Name() string { return config.DiskS3 }

// Key maps a relative path to the object key.
func (s *S3) Key(relPath string) string {
	cleaned := strings.TrimPrefix(path.Clean("/"+relPath), "/")
	if s.prefix == "" {
		return cleaned
	}
	return s.prefix + "/" + cleaned
}

func (s *S3) Open(ctx context.Context, relPath string) (io.ReadCloser, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.Key(relPath)),
	})
	if err != nil {
		var noSuchKey *types.NoSuchKey
		if errors.As(err, &noSuchKey) {
			return nil, fmt.Errorf("%s on s3 disk: %w", relPath, ErrNotExist)
		}
		return nil, fmt.Errorf("get object %s: %w", s.Key(relPath), err)
	}
	return out.Body, nil
}

func (s *S3) Put(ctx context.Context, relPath string, data []byte, contentType string) error {
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(s.Key(relPath)),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("put object %s: %w", s.Key(relPath), err)
	}
	return nil
}

func (s *S3) Delete(ctx context.Context, relPath string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.Key(relPath)),
	})
	if err != nil {
		return fmt.Errorf("delete object %s: %w", s.Key(relPath), err)
	}
	return nil
}

func (s *S3) Exists(ctx context.Context, relPath string) (bool, error) {
	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.Key(relPath)),
	})
	if err == nil {
		return true, nil
	}
	var notFound *types.NotFound
	if errors.As(err, &notFound) {
		return false, nil
	}
	return false, fmt.Errorf("head object %s: %w", s.Key(relPath), err)
}
