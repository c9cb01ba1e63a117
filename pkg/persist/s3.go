package persist

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// S3API is the subset of *s3.Client the backend calls.
type S3API interface {
	GetObject(ctx context.Context, in *s3.GetObjectInput, opts ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, in *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, opts ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	ListObjectsV2(ctx context.Context, in *s3.ListObjectsV2Input, opts ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

// S3 is a durable Backend that stores each record as an object.
//
// Example usage:
//
//	cfg, _ := config.LoadDefaultConfig(context.Background())
//	backend := persist.NewS3(s3.NewFromConfig(cfg), "my-bucket", persist.WithS3Prefix("app/"))
type S3 struct {
	client  S3API
	bucket  string
	prefix  string
	timeout time.Duration
}

// S3Option configures an S3 backend.
type S3Option func(*s3Config)

type s3Config struct {
	prefix  string
	timeout time.Duration
}

// WithS3Prefix sets an object key prefix, e.g. "records/". Default: "".
func WithS3Prefix(prefix string) S3Option {
	return func(c *s3Config) {
		c.prefix = prefix
	}
}

// WithS3Timeout bounds each request. Default: DefaultTimeout.
func WithS3Timeout(d time.Duration) S3Option {
	return func(c *s3Config) {
		c.timeout = d
	}
}

// NewS3 creates an S3 backend writing to bucket.
func NewS3(client S3API, bucket string, opts ...S3Option) *S3 {
	cfg := &s3Config{timeout: DefaultTimeout}
	for _, opt := range opts {
		opt(cfg)
	}

	return &S3{
		client:  client,
		bucket:  bucket,
		prefix:  cfg.prefix,
		timeout: cfg.timeout,
	}
}

func (s *S3) ctx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), s.timeout)
}

func isS3NotFound(err error) bool {
	var noSuchKey *types.NoSuchKey
	var notFound *types.NotFound
	return errors.As(err, &noSuchKey) || errors.As(err, &notFound)
}

// Get implements Backend.
func (s *S3) Get(key string) (string, bool, error) {
	ctx, cancel := s.ctx()
	defer cancel()

	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.prefix + key),
	})
	if err != nil {
		if isS3NotFound(err) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("persist: s3 get %q: %w", key, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return "", false, fmt.Errorf("persist: s3 read %q: %w", key, err)
	}
	return string(data), true, nil
}

// Set implements Backend.
func (s *S3) Set(key, value string) error {
	ctx, cancel := s.ctx()
	defer cancel()

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(s.prefix + key),
		Body:        strings.NewReader(value),
		ContentType: aws.String("text/plain; charset=utf-8"),
		Metadata: map[string]string{
			"written-at": time.Now().UTC().Format(time.RFC3339),
		},
	})
	if err != nil {
		return fmt.Errorf("persist: s3 put %q: %w", key, err)
	}
	return nil
}

// Delete implements Deleter.
func (s *S3) Delete(key string) error {
	ctx, cancel := s.ctx()
	defer cancel()

	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.prefix + key),
	})
	if err != nil && !isS3NotFound(err) {
		return fmt.Errorf("persist: s3 delete %q: %w", key, err)
	}
	return nil
}

// Keys implements Lister.
func (s *S3) Keys(prefix string) ([]string, error) {
	ctx, cancel := s.ctx()
	defer cancel()

	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(s.prefix + prefix),
	})

	var keys []string
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("persist: s3 list: %w", err)
		}
		for _, obj := range page.Contents {
			if obj.Key != nil {
				keys = append(keys, strings.TrimPrefix(*obj.Key, s.prefix))
			}
		}
	}
	sort.Strings(keys)
	return keys, nil
}
