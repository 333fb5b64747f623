package s3

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/kirillkom/contractor-compliance/internal/core/domain"
)

type Config struct {
	Bucket    string
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
	// PathStyle addresses objects as endpoint/bucket/key, as MinIO expects.
	PathStyle bool
}

type objectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// Seams for tests.
var (
	loadDefaultAWSConfig  = config.LoadDefaultConfig
	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) objectAPI {
		return s3.NewFromConfig(cfg, optFns...)
	}
)

type Storage struct {
	client objectAPI
	cfg    Config
}

func New(ctx context.Context, cfg Config) (*Storage, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3 storage: bucket is required")
	}
	opts := []func(*config.LoadOptions) error{config.WithRegion(cfg.Region)}
	if cfg.AccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}
	awsCfg, err := loadDefaultAWSConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := newS3ClientFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.PathStyle
	})
	return &Storage{client: client, cfg: cfg}, nil
}

func (s *Storage) Upload(ctx context.Context, key string, body io.Reader, size int64, mimeType string) (domain.StoredObject, error) {
	key = strings.TrimPrefix(strings.TrimSpace(key), "/")
	if key == "" {
		return domain.StoredObject{}, domain.Validation("s3.upload", "object key is required")
	}

	input := &s3.PutObjectInput{
		Bucket: aws.String(s.cfg.Bucket),
		Key:    aws.String(key),
		Body:   body,
	}
	if size > 0 {
		input.ContentLength = aws.Int64(size)
	}
	if mimeType != "" {
		input.ContentType = aws.String(mimeType)
	}
	if _, err := s.client.PutObject(ctx, input); err != nil {
		return domain.StoredObject{}, fmt.Errorf("s3 put object %s: %w", key, err)
	}

	return domain.StoredObject{URL: s.objectURL(key), SizeBytes: size, MimeType: mimeType}, nil
}

// Delete relies on S3 treating a missing key as a successful delete.
func (s *Storage) Delete(ctx context.Context, key string) error {
	key = strings.TrimPrefix(strings.TrimSpace(key), "/")
	if key == "" {
		return domain.Validation("s3.delete", "object key is required")
	}
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.cfg.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("s3 delete object %s: %w", key, err)
	}
	return nil
}

func (s *Storage) objectURL(key string) string {
	if s.cfg.Endpoint == "" {
		return (&url.URL{Scheme: "s3", Host: s.cfg.Bucket, Path: "/" + key}).String()
	}
	base := strings.TrimRight(s.cfg.Endpoint, "/")
	if s.cfg.PathStyle {
		return base + "/" + s.cfg.Bucket + "/" + key
	}
	u, err := url.Parse(base)
	if err != nil || u.Host == "" {
		return base + "/" + s.cfg.Bucket + "/" + key
	}
	u.Host = s.cfg.Bucket + "." + u.Host
	return u.String() + "/" + key
}
