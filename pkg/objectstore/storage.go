// Package objectstore writes objects to an S3-compatible bucket.
package objectstore

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dentclinicai/dentclinicai-api/pkg/logger"
	"github.com/dentclinicai/dentclinicai-api/pkg/metrics"
	"go.uber.org/zap"
)

const defaultRegion = "us-east-1"

// Config describes the target bucket. Endpoint is only needed for
// S3-compatible providers; static keys are optional when the default AWS
// credential chain is available.
type Config struct {
	Bucket          string
	Prefix          string
	Endpoint        string
	Region          string
	AccessKeyID     string
	SecretAccessKey string
}

// PutObjectAPI is the part of the S3 client used by StorageClient
type PutObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// StorageClient uploads objects under a fixed key prefix
type StorageClient struct {
	api    PutObjectAPI
	bucket string
	prefix string
}

// NewStorageClient creates an S3 client from cfg. Without static keys the
// default AWS credential chain is used.
func NewStorageClient(ctx context.Context, cfg Config) (*StorageClient, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("bucket is required")
	}

	region := cfg.Region
	if region == "" {
		region = defaultRegion
	}

	loadOpts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(region)}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	api := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	logger.Info("Object storage client initialized",
		zap.String("bucket", cfg.Bucket),
		zap.String("endpoint", cfg.Endpoint),
		zap.String("region", region),
	)

	return NewWithAPI(api, cfg.Bucket, cfg.Prefix), nil
}

// NewWithAPI creates a client around an existing S3 API implementation
func NewWithAPI(api PutObjectAPI, bucket, prefix string) *StorageClient {
	return &StorageClient{
		api:    api,
		bucket: bucket,
		prefix: strings.Trim(prefix, "/"),
	}
}

// Key returns the full object key for name
func (s *StorageClient) Key(name string) string {
	if s.prefix == "" {
		return name
	}
	return path.Join(s.prefix, name)
}

// PutObject uploads data under name and returns the full object key
func (s *StorageClient) PutObject(ctx context.Context, name string, data []byte, contentType string) (string, error) {
	start := time.Now()
	operation := "putObject"
	key := s.Key(name)

	_, err := s.api.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})

	duration := metrics.MeasureDuration(start)

	if err != nil {
		metrics.ObjectStoreRequestDuration.WithLabelValues(operation, "error").Observe(duration)
		metrics.ObjectStoreRequestTotal.WithLabelValues(operation, "error").Inc()
		logger.LogAPICall("object_storage", operation, "error", duration,
			zap.Error(err),
			zap.String("key", key),
		)
		return "", fmt.Errorf("failed to upload %s: %w", key, err)
	}

	metrics.ObjectStoreRequestDuration.WithLabelValues(operation, "success").Observe(duration)
	metrics.ObjectStoreRequestTotal.WithLabelValues(operation, "success").Inc()
	logger.LogAPICall("object_storage", operation, "success", duration,
		zap.String("key", key),
		zap.Int("size_bytes", len(data)),
	)

	return key, nil
}
