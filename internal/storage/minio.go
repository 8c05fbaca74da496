package storage

import (
	"context"
	"fmt"

	"hospital-equipment-tracker/internal/config"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"
)

// NewClient returns nil when no endpoint is configured
func NewClient(cfg config.StorageConfig, log *zap.Logger) (*minio.Client, error) {
	if cfg.Endpoint == "" {
		log.Info("MINIO_ENDPOINT not set; backups are kept locally only")
		return nil, nil
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}
	return client, nil
}

// EnsureBucket creates bucket when it does not exist yet
func EnsureBucket(ctx context.Context, client *minio.Client, bucket string, log *zap.Logger) error {
	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket %s: %w", bucket, err)
	}
	if exists {
		return nil
	}
	if err := client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("failed to create bucket %s: %w", bucket, err)
	}
	log.Info("Backup bucket created", zap.String("bucket", bucket))
	return nil
}
