// Package s3 issues presigned URLs against a MinIO/S3 bucket so file bytes
// never pass through the API process.
package s3

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Presigner hands out short-lived upload and download URLs.
type Presigner interface {
	PresignPut(ctx context.Context, tenderRequestID, filename string) (PresignedUpload, error)
	PresignGet(ctx context.Context, key string) (string, error)
}

// PresignedUpload carries everything a browser needs to PUT a file directly.
type PresignedUpload struct {
	UploadURL string
	ObjectURL string
	Key       string
}

// Client wraps a MinIO client for one bucket.
type Client struct {
	bucket         string
	publicBaseURL  string
	ttl            time.Duration
	client         *minio.Client
	logger         *slog.Logger
	bucketInitOnce sync.Once
	bucketInitErr  error
}

// NewClient configures a presigner using the provided endpoint and credentials.
func NewClient(endpoint string, useSSL bool, accessKey, secretKey, bucket, publicBaseURL string, ttl time.Duration, logger *slog.Logger) (*Client, error) {
	cleanEndpoint := strings.TrimSpace(endpoint)
	if cleanEndpoint == "" {
		return nil, errors.New("s3: endpoint is required")
	}
	if bucket = strings.TrimSpace(bucket); bucket == "" {
		return nil, errors.New("s3: bucket is required")
	}
	opts := &minio.Options{
		Creds:  credentials.NewStaticV4(strings.TrimSpace(accessKey), strings.TrimSpace(secretKey), ""),
		Secure: useSSL,
	}
	minioClient, err := minio.New(parseEndpoint(cleanEndpoint), opts)
	if err != nil {
		return nil, fmt.Errorf("s3: create client: %w", err)
	}
	base := strings.TrimSpace(publicBaseURL)
	if base == "" {
		base = cleanEndpoint
	}
	if ttl <= 0 {
		ttl = 60 * time.Second
	}
	return &Client{
		bucket:        bucket,
		publicBaseURL: strings.TrimRight(base, "/"),
		ttl:           ttl,
		client:        minioClient,
		logger:        logger,
	}, nil
}

// PresignPut returns a PUT URL for a fresh object key under the tender's prefix.
func (c *Client) PresignPut(ctx context.Context, tenderRequestID, filename string) (PresignedUpload, error) {
	filename = strings.TrimSpace(filename)
	if filename == "" {
		return PresignedUpload{}, errors.New("s3: filename is required")
	}
	if err := c.ensureBucket(ctx); err != nil {
		return PresignedUpload{}, err
	}
	prefix := strings.TrimSpace(tenderRequestID)
	if prefix == "" {
		prefix = "misc"
	}
	key := fmt.Sprintf("tenders/%s/%s-%s", prefix, uuid.NewString(), sanitizeFilename(filename))
	uploadURL, err := c.client.PresignedPutObject(ctx, c.bucket, key, c.ttl)
	if err != nil {
		return PresignedUpload{}, fmt.Errorf("s3: presign put: %w", err)
	}
	out := PresignedUpload{
		UploadURL: uploadURL.String(),
		ObjectURL: c.objectURL(key),
		Key:       key,
	}
	if c.logger != nil {
		c.logger.Debug("presigned upload", "bucket", c.bucket, "key", key)
	}
	return out, nil
}

// PresignGet returns a short-lived download URL for an existing object.
func (c *Client) PresignGet(ctx context.Context, key string) (string, error) {
	key = strings.Trim(strings.TrimSpace(key), "/")
	if key == "" {
		return "", errors.New("s3: object key is required")
	}
	downloadURL, err := c.client.PresignedGetObject(ctx, c.bucket, key, c.ttl, url.Values{})
	if err != nil {
		return "", fmt.Errorf("s3: presign get: %w", err)
	}
	return downloadURL.String(), nil
}

// NoopPresigner fails fast when S3 is unavailable.
type NoopPresigner struct{}

func (NoopPresigner) PresignPut(context.Context, string, string) (PresignedUpload, error) {
	return PresignedUpload{}, errors.New("s3 presigner is not configured")
}

func (NoopPresigner) PresignGet(context.Context, string) (string, error) {
	return "", errors.New("s3 presigner is not configured")
}

func (c *Client) ensureBucket(ctx context.Context) error {
	c.bucketInitOnce.Do(func() {
		exists, err := c.client.BucketExists(ctx, c.bucket)
		if err != nil {
			c.bucketInitErr = fmt.Errorf("s3: check bucket: %w", err)
			return
		}
		if exists {
			return
		}
		if err := c.client.MakeBucket(ctx, c.bucket, minio.MakeBucketOptions{}); err != nil {
			c.bucketInitErr = fmt.Errorf("s3: create bucket: %w", err)
		}
	})
	return c.bucketInitErr
}

func (c *Client) objectURL(key string) string {
	return fmt.Sprintf("%s/%s/%s", c.publicBaseURL, c.bucket, strings.TrimLeft(key, "/"))
}

func sanitizeFilename(name string) string {
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	return strings.ReplaceAll(name, " ", "_")
}

func parseEndpoint(endpoint string) string {
	if parsed, err := url.Parse(endpoint); err == nil && parsed.Host != "" {
		return parsed.Host
	}
	return endpoint
}

var _ Presigner = (*Client)(nil)
var _ Presigner = NoopPresigner{}
