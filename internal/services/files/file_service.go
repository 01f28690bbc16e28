package files

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cloudyhq/cloudy-server/internal/config"
	"github.com/cloudyhq/cloudy-server/internal/models"
	"github.com/cloudyhq/cloudy-server/internal/pkg/logger"
	"github.com/cloudyhq/cloudy-server/internal/pkg/search"
	"github.com/cloudyhq/cloudy-server/internal/pkg/storage"
	"github.com/cloudyhq/cloudy-server/internal/pkg/utils"
	"github.com/cloudyhq/cloudy-server/internal/pkg/xerr"
	"github.com/cloudyhq/cloudy-server/internal/repositories"
	"go.uber.org/zap"
)

const searchResultLimit = 50

type fileService struct {
	fileRepo  repositories.FileRepository
	quotaRepo repositories.QuotaPolicyRepository
	storage   storage.StorageService
	indexer   search.FileIndexer
	cfg       *config.Config

	now func() time.Time
}

var _ FileService = (*fileService)(nil)

func NewFileService(
	fileRepo repositories.FileRepository,
	quotaRepo repositories.QuotaPolicyRepository,
	storageSvc storage.StorageService,
	indexer search.FileIndexer,
	cfg *config.Config,
) FileService {
	return &fileService{
		fileRepo:  fileRepo,
		quotaRepo: quotaRepo,
		storage:   storageSvc,
		indexer:   indexer,
		cfg:       cfg,
		now:       time.Now,
	}
}

// bucket returns the bucket of the configured blob backend.
func (s *fileService) bucket() string {
	if s.cfg.Storage.Type == "aliyun_oss" {
		return s.cfg.AliyunOSS.BucketName
	}
	return s.cfg.MinIO.BucketName
}

// resolveQuota returns the owner's storage ceiling: the policy row when one
// exists, otherwise the configured default.
func (s *fileService) resolveQuota(ctx context.Context, ownerID uint64) (uint64, error) {
	policy, err := s.quotaRepo.FindByOwnerID(ctx, ownerID)
	if err != nil {
		if err == repositories.ErrNoQuotaPolicy {
			return s.cfg.Storage.DefaultQuotaBytes, nil
		}
		return 0, err
	}
	return policy.MaxBytes, nil
}

// checkQuota verifies that requested bytes fit under the ceiling given the
// current usage, returning the detailed quota error when they do not.
func checkQuota(used, requested, max uint64) error {
	if used+requested <= max {
		return nil
	}
	var available uint64
	if max > used {
		available = max - used
	}
	return xerr.NewQuotaExceededError(available, requested, max)
}

func (s *fileService) CreateUploadIntent(ctx context.Context, ownerID uint64, req UploadIntentRequest) (*UploadIntent, error) {
	// Validation comes before any quota arithmetic so an unusable request
	// never surfaces as a quota error.
	if strings.TrimSpace(req.FileName) == "" {
		return nil, xerr.ErrFileNameRequired
	}
	if req.SizeInBytes == 0 {
		return nil, fmt.Errorf("%w: size must be positive", xerr.ErrInvalidParams)
	}

	max, err := s.resolveQuota(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	used, err := s.fileRepo.SumUsedSizeByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if err := checkQuota(used, req.SizeInBytes, max); err != nil {
		logger.Info("Upload intent rejected by quota",
			zap.Uint64("ownerID", ownerID),
			zap.Uint64("requested", req.SizeInBytes),
			zap.Uint64("used", used),
			zap.Uint64("max", max))
		return nil, err
	}

	now := s.now().UTC()
	objectKey := utils.GenerateStorageKey(req.FileName, now)
	expiry := s.cfg.Storage.PresignedURLExpiry
	reservedUntil := now.Add(expiry + s.cfg.Storage.ReservationGrace)

	file, err := models.NewReservedFile(ownerID, req.FileName, req.ContentType, req.SizeInBytes, s.bucket(), objectKey, reservedUntil)
	if err != nil {
		return nil, err
	}
	if err := s.fileRepo.Create(ctx, file); err != nil {
		return nil, err
	}

	url, err := s.storage.PresignedPutURL(ctx, file.Bucket, file.ObjectKey, expiry)
	if err != nil {
		// The reservation was never handed to the client; drop it so it does
		// not hold quota until the sweeper gets to it.
		if delErr := s.fileRepo.Delete(ctx, file); delErr != nil {
			logger.Warn("Failed to roll back reservation after presign failure",
				zap.Uint64("fileID", file.ID), zap.Error(delErr))
		}
		logger.Error("Failed to presign upload URL", zap.String("objectKey", objectKey), zap.Error(err))
		return nil, fmt.Errorf("%w: presign upload: %v", xerr.ErrStorageError, err)
	}

	logger.Info("Upload intent created",
		zap.Uint64("ownerID", ownerID),
		zap.Uint64("fileID", file.ID),
		zap.String("objectKey", objectKey),
		zap.Uint64("size", req.SizeInBytes))

	return &UploadIntent{
		ObjectKey:        objectKey,
		UploadURL:        url,
		ExpiresInSeconds: int64(expiry.Seconds()),
	}, nil
}

func (s *fileService) FinalizeUpload(ctx context.Context, ownerID uint64, objectKey string, req FinalizeRequest) (*models.File, error) {
	if objectKey == "" {
		return nil, xerr.ErrObjectKeyRequired
	}

	file, err := s.fileRepo.FindByObjectKey(ctx, ownerID, s.bucket(), objectKey)
	if err != nil {
		return nil, err
	}
	if file.Status == models.FileStatusActive {
		return file, nil
	}
	// Past the deadline the reservation belongs to the sweep; accepting it
	// here would race the purge worker over the blob.
	if file.ReservedUntil != nil && s.now().UTC().After(*file.ReservedUntil) {
		return nil, xerr.ErrReservationExpired
	}

	name := req.FileName
	if name == "" {
		name = file.Name
	}
	contentType := req.ContentType
	if contentType == "" {
		contentType = file.ContentType
	}
	size := req.SizeInBytes
	if size == 0 {
		size = file.Size
	}

	// The actual upload may be larger than declared at intent time; re-check
	// the quota against the delta before accepting it.
	if size > file.Size {
		max, err := s.resolveQuota(ctx, ownerID)
		if err != nil {
			return nil, err
		}
		used, err := s.fileRepo.SumUsedSizeByOwner(ctx, ownerID)
		if err != nil {
			return nil, err
		}
		// A stale cached sum can report less than the reservation itself;
		// clamp instead of underflowing the delta.
		if used >= file.Size {
			used -= file.Size
		} else {
			used = 0
		}
		if err := checkQuota(used, size, max); err != nil {
			return nil, err
		}
	}

	if err := file.Activate(name, contentType, size, ownerID); err != nil {
		return nil, err
	}
	if err := s.fileRepo.Update(ctx, file); err != nil {
		return nil, err
	}

	if err := s.indexer.Index(ctx, file); err != nil {
		logger.Warn("Failed to index finalized file", zap.Uint64("fileID", file.ID), zap.Error(err))
	}

	logger.Info("Upload finalized",
		zap.Uint64("ownerID", ownerID),
		zap.Uint64("fileID", file.ID),
		zap.String("objectKey", objectKey))
	return file, nil
}

func (s *fileService) GetFile(ctx context.Context, ownerID, fileID uint64) (*models.File, error) {
	return s.fileRepo.FindByIDForOwner(ctx, ownerID, fileID)
}

func (s *fileService) ListFiles(ctx context.Context, ownerID uint64) ([]models.File, error) {
	return s.fileRepo.FindByOwnerID(ctx, ownerID)
}

func (s *fileService) ListTrash(ctx context.Context, ownerID uint64) ([]models.File, error) {
	return s.fileRepo.FindTrashedByOwnerID(ctx, ownerID)
}

func (s *fileService) SearchFiles(ctx context.Context, ownerID uint64, query string) ([]models.File, error) {
	ids, err := s.indexer.Search(ctx, ownerID, query, searchResultLimit)
	if err != nil {
		logger.Error("File search failed", zap.Uint64("ownerID", ownerID), zap.Error(err))
		return nil, fmt.Errorf("%w: search: %v", xerr.ErrInternalServer, err)
	}
	return s.fileRepo.FindVisibleByIDs(ctx, ownerID, ids)
}

func (s *fileService) GetDownloadURL(ctx context.Context, ownerID, fileID uint64) (string, error) {
	file, err := s.fileRepo.FindByIDForOwner(ctx, ownerID, fileID)
	if err != nil {
		return "", err
	}
	if file.Status != models.FileStatusActive {
		return "", xerr.ErrFileStatusInvalid
	}

	url, err := s.storage.PresignedGetURL(ctx, file.Bucket, file.ObjectKey, s.cfg.Storage.PresignedURLExpiry)
	if err != nil {
		logger.Error("Failed to presign download URL", zap.Uint64("fileID", fileID), zap.Error(err))
		return "", fmt.Errorf("%w: presign download: %v", xerr.ErrStorageError, err)
	}
	return url, nil
}

func (s *fileService) RenameFile(ctx context.Context, ownerID, fileID uint64, newName string) (*models.File, error) {
	file, err := s.fileRepo.FindByIDForOwner(ctx, ownerID, fileID)
	if err != nil {
		return nil, err
	}
	if err := file.Rename(newName, ownerID); err != nil {
		return nil, err
	}
	if err := s.fileRepo.Update(ctx, file); err != nil {
		return nil, err
	}

	if err := s.indexer.Index(ctx, file); err != nil {
		logger.Warn("Failed to reindex renamed file", zap.Uint64("fileID", file.ID), zap.Error(err))
	}
	return file, nil
}

func (s *fileService) MarkPendingDeletion(ctx context.Context, ownerID, fileID uint64) error {
	file, err := s.fileRepo.FindByIDForOwner(ctx, ownerID, fileID)
	if err != nil {
		return err
	}
	if err := file.MarkPendingDeletion(ownerID); err != nil {
		return err
	}
	return s.fileRepo.Update(ctx, file)
}

func (s *fileService) RestorePendingDeletion(ctx context.Context, ownerID, fileID uint64) error {
	file, err := s.fileRepo.FindByIDForOwner(ctx, ownerID, fileID)
	if err != nil {
		return err
	}
	if err := file.RestorePendingDeletion(ownerID); err != nil {
		return err
	}
	return s.fileRepo.Update(ctx, file)
}

func (s *fileService) DeleteFile(ctx context.Context, ownerID, fileID uint64) error {
	file, err := s.fileRepo.FindByIDForOwner(ctx, ownerID, fileID)
	if err != nil {
		return err
	}

	// Blob first. If the blob cannot be removed the row stays visible, so
	// nothing is lost and the client can retry.
	if err := s.storage.RemoveObject(ctx, file.Bucket, file.ObjectKey); err != nil {
		logger.Error("Failed to remove blob, keeping metadata",
			zap.Uint64("fileID", fileID),
			zap.String("objectKey", file.ObjectKey),
			zap.Error(err))
		return fmt.Errorf("%w: remove object: %v", xerr.ErrStorageError, err)
	}

	if err := file.SoftDelete(ownerID); err != nil {
		return err
	}
	if err := s.fileRepo.Update(ctx, file); err != nil {
		return err
	}

	if err := s.indexer.Delete(ctx, file.ID); err != nil {
		logger.Warn("Failed to remove file from index", zap.Uint64("fileID", file.ID), zap.Error(err))
	}

	logger.Info("File deleted",
		zap.Uint64("ownerID", ownerID),
		zap.Uint64("fileID", fileID),
		zap.String("objectKey", file.ObjectKey))
	return nil
}

func (s *fileService) GetStorageUsage(ctx context.Context, ownerID uint64) (*models.StorageUsage, error) {
	used, err := s.fileRepo.SumUsedSizeByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	max, err := s.resolveQuota(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	usage := &models.StorageUsage{
		UsedBytes: used,
		MaxBytes:  max,
	}
	if max > 0 {
		usage.UsagePercentage = float64(used) / float64(max) * 100
	}
	return usage, nil
}
