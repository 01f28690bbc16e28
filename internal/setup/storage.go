package setup

import (
	"context"
	"fmt"
	"time"

	"github.com/cloudyhq/cloudy-server/internal/config"
	"github.com/cloudyhq/cloudy-server/internal/pkg/logger"
	"github.com/cloudyhq/cloudy-server/internal/pkg/storage"
	"go.uber.org/zap"
)

// InitStorage builds the configured blob backend and ensures its bucket
// exists.
func InitStorage(cfg *config.Config) (storage.StorageService, error) {
	svc, err := storage.NewStorageService(cfg)
	if err != nil {
		return nil, err
	}

	bucketName := cfg.MinIO.BucketName
	if cfg.Storage.Type == "aliyun_oss" {
		bucketName = cfg.AliyunOSS.BucketName
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	exists, err := svc.IsBucketExist(ctx, bucketName)
	if err != nil {
		return nil, fmt.Errorf("check bucket: %w", err)
	}
	if !exists {
		if err := svc.MakeBucket(ctx, bucketName); err != nil {
			return nil, fmt.Errorf("create bucket: %w", err)
		}
		logger.Info("Bucket created", zap.String("bucket", bucketName))
	}

	logger.Info("Storage backend initialized",
		zap.String("type", cfg.Storage.Type),
		zap.String("bucket", bucketName))
	return svc, nil
}
