package storage

import (
	"context"
	"errors"
	"time"

	"github.com/cloudyhq/cloudy-server/internal/config"
)

// StorageService is the blob-store gateway. The server never streams file
// bytes itself; clients PUT and GET directly against presigned URLs, so the
// surface is limited to presigning, deletion and bucket management. Every
// call is a possibly-failing remote call with no built-in retry.
type StorageService interface {
	// PresignedPutURL returns a time-limited URL authorizing a direct upload.
	PresignedPutURL(ctx context.Context, bucketName, objectName string, expiry time.Duration) (string, error)
	// PresignedGetURL returns a time-limited URL authorizing a direct download.
	PresignedGetURL(ctx context.Context, bucketName, objectName string, expiry time.Duration) (string, error)
	// RemoveObject deletes one object. Removing a missing object is not an error.
	RemoveObject(ctx context.Context, bucketName, objectName string) error
	// IsBucketExist checks for the bucket.
	IsBucketExist(ctx context.Context, bucketName string) (bool, error)
	// MakeBucket creates the bucket; creating an existing bucket is a no-op.
	MakeBucket(ctx context.Context, bucketName string) error
}

// NewStorageService selects the backend from config.
func NewStorageService(cfg *config.Config) (StorageService, error) {
	switch cfg.Storage.Type {
	case "minio":
		return NewMinIOStorageService(&cfg.MinIO)
	case "aliyun_oss":
		return NewAliyunOSSStorageService(&cfg.AliyunOSS)
	default:
		return nil, errors.New("invalid storage type: " + cfg.Storage.Type)
	}
}
