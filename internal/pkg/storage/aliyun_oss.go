package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"
	"github.com/cloudyhq/cloudy-server/internal/config"
	"github.com/cloudyhq/cloudy-server/internal/pkg/logger"
	"go.uber.org/zap"
)

type AliyunOSSStorageService struct {
	client *oss.Client
	cfg    *config.AliyunOSSConfig
}

var _ StorageService = (*AliyunOSSStorageService)(nil)

// NewAliyunOSSStorageService creates an Aliyun-OSS-backed gateway. The
// endpoint must carry its http:// or https:// prefix.
func NewAliyunOSSStorageService(cfg *config.AliyunOSSConfig) (*AliyunOSSStorageService, error) {
	ossClient, err := oss.New(cfg.Endpoint, cfg.AccessKeyID, cfg.SecretAccessKey)
	if err != nil {
		logger.Error("Failed to initialize Aliyun OSS client", zap.Error(err))
		return nil, fmt.Errorf("initialize Aliyun OSS client: %w", err)
	}
	logger.Info("Aliyun OSS client initialized", zap.String("endpoint", cfg.Endpoint))
	return &AliyunOSSStorageService{
		client: ossClient,
		cfg:    cfg,
	}, nil
}

func (s *AliyunOSSStorageService) PresignedPutURL(ctx context.Context, bucketName, objectName string, expiry time.Duration) (string, error) {
	bucket, err := s.client.Bucket(bucketName)
	if err != nil {
		return "", fmt.Errorf("OSS bucket handle: %w", err)
	}
	url, err := bucket.SignURL(objectName, oss.HTTPPut, int64(expiry.Seconds()))
	if err != nil {
		return "", fmt.Errorf("OSS presigned PUT URL: %w", err)
	}
	return url, nil
}

func (s *AliyunOSSStorageService) PresignedGetURL(ctx context.Context, bucketName, objectName string, expiry time.Duration) (string, error) {
	bucket, err := s.client.Bucket(bucketName)
	if err != nil {
		return "", fmt.Errorf("OSS bucket handle: %w", err)
	}
	url, err := bucket.SignURL(objectName, oss.HTTPGet, int64(expiry.Seconds()))
	if err != nil {
		return "", fmt.Errorf("OSS presigned GET URL: %w", err)
	}
	return url, nil
}

func (s *AliyunOSSStorageService) RemoveObject(ctx context.Context, bucketName, objectName string) error {
	bucket, err := s.client.Bucket(bucketName)
	if err != nil {
		return fmt.Errorf("OSS bucket handle: %w", err)
	}
	if err := bucket.DeleteObject(objectName); err != nil {
		return fmt.Errorf("OSS remove object: %w", err)
	}
	return nil
}

func (s *AliyunOSSStorageService) IsBucketExist(ctx context.Context, bucketName string) (bool, error) {
	found, err := s.client.IsBucketExist(bucketName)
	if err != nil {
		return false, fmt.Errorf("OSS bucket exists check: %w", err)
	}
	return found, nil
}

func (s *AliyunOSSStorageService) MakeBucket(ctx context.Context, bucketName string) error {
	err := s.client.CreateBucket(bucketName)
	if err != nil {
		exists, errExist := s.client.IsBucketExist(bucketName)
		if errExist == nil && exists {
			return nil
		}
		return fmt.Errorf("OSS create bucket: %w", err)
	}
	logger.Info("OSS bucket created", zap.String("bucket", bucketName))
	return nil
}
