package storage

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/satonic/satonic-storefront/internal/config"
)

// MinIOUploader stores submitted assets in a MinIO or S3 bucket
type MinIOUploader struct {
	client    *minio.Client
	bucket    string
	publicURL string
}

// NewMinIOUploader connects to the configured endpoint and creates the
// bucket when it does not exist yet.
func NewMinIOUploader(ctx context.Context, cfg config.MinIOConfig) (*MinIOUploader, error) {
	if cfg.Endpoint == "" || cfg.AccessKey == "" || cfg.SecretKey == "" || cfg.Bucket == "" {
		return nil, fmt.Errorf("minio: endpoint, credentials and bucket are required")
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("init minio client: %w", err)
	}

	bucketCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	exists, err := client.BucketExists(bucketCtx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(bucketCtx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket: %w", err)
		}
	}

	publicURL := strings.TrimSpace(cfg.PublicBaseURL)
	if publicURL == "" {
		scheme := "http"
		if cfg.UseSSL {
			scheme = "https"
		}
		publicURL = fmt.Sprintf("%s://%s", scheme, cfg.Endpoint)
	}

	return &MinIOUploader{
		client:    client,
		bucket:    cfg.Bucket,
		publicURL: strings.TrimSuffix(publicURL, "/"),
	}, nil
}

// Put uploads data under key and returns its public URL
func (u *MinIOUploader) Put(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	objectName, err := sanitizeKey(key)
	if err != nil {
		return "", err
	}

	uploadCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err = u.client.PutObject(uploadCtx, u.bucket, objectName, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType:  contentType,
		CacheControl: "public, max-age=604800",
	})
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", objectName, err)
	}
	return u.buildPublicURL(objectName), nil
}

// Remove deletes the object at key
func (u *MinIOUploader) Remove(ctx context.Context, key string) error {
	objectName, err := sanitizeKey(key)
	if err != nil {
		return err
	}

	removeCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	return u.client.RemoveObject(removeCtx, u.bucket, objectName, minio.RemoveObjectOptions{})
}

func (u *MinIOUploader) buildPublicURL(objectName string) string {
	return fmt.Sprintf("%s/%s/%s", u.publicURL, u.bucket, strings.TrimPrefix(objectName, "/"))
}
