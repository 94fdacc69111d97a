package media

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3API is the subset of the S3 client used by S3Store.
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3Config configures an S3 or S3-compatible (R2, MinIO) bucket.
type S3Config struct {
	Bucket        string
	Region        string
	Endpoint      string
	AccessKey     string
	SecretKey     string
	PublicBaseURL string
}

// S3Store keeps objects in an S3-compatible bucket. The object key is the
// deletion handle.
type S3Store struct {
	client  S3API
	bucket  string
	baseURL string
}

// NewS3Client builds an S3 client for cfg. A custom endpoint switches to
// path-style addressing.
func NewS3Client(ctx context.Context, cfg S3Config) (*s3.Client, error) {
	opts := []func(*awsconfig.LoadOptions) error{}
	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}
	if cfg.AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("unable to load SDK config: %w", err)
	}

	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	}), nil
}

// NewS3Store returns a Store writing to bucket through client.
func NewS3Store(client S3API, cfg S3Config) *S3Store {
	base := strings.TrimRight(cfg.PublicBaseURL, "/")
	if base == "" {
		switch {
		case cfg.Endpoint != "":
			base = strings.TrimRight(cfg.Endpoint, "/") + "/" + cfg.Bucket
		default:
			base = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, cfg.Region)
		}
	}
	return &S3Store{client: client, bucket: cfg.Bucket, baseURL: base}
}

func (s *S3Store) Backend() string { return "s3" }

func (s *S3Store) Put(ctx context.Context, key, contentType string, body []byte) (Object, error) {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return Object{}, fmt.Errorf("could not upload %s: %w", key, err)
	}
	return Object{URL: s.baseURL + "/" + key, PublicID: key}, nil
}

func (s *S3Store) Delete(ctx context.Context, publicID string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(publicID),
	})
	if err != nil {
		return fmt.Errorf("could not delete %s: %w", publicID, err)
	}
	return nil
}
