package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/cloudyhq/cloudy-server/internal/models"
	"github.com/cloudyhq/cloudy-server/internal/pkg/cache"
	"github.com/cloudyhq/cloudy-server/internal/pkg/logger"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	fileMetadataTTL = 30 * time.Minute
	storageUsageTTL = 1 * time.Minute
)

// cachedFileRepository decorates the DB repository with a Redis layer for the
// two hot reads: point lookups by id and the owner's usage sum. Cache errors
// are logged and fall through to the database.
type cachedFileRepository struct {
	db    FileRepository
	cache cache.Cache
}

var _ FileRepository = (*cachedFileRepository)(nil)

// NewFileRepository builds the cached repository used by the services.
func NewFileRepository(db *gorm.DB, c cache.Cache) FileRepository {
	return &cachedFileRepository{
		db:    NewDBFileRepository(db),
		cache: c,
	}
}

func (r *cachedFileRepository) Create(ctx context.Context, file *models.File) error {
	if err := r.db.Create(ctx, file); err != nil {
		return err
	}
	r.invalidateUsage(ctx, file.OwnerID)
	return nil
}

func (r *cachedFileRepository) FindByIDForOwner(ctx context.Context, ownerID, id uint64) (*models.File, error) {
	key := cache.FileMetadataKey(id)

	var cached models.File
	err := r.cache.Get(ctx, key, &cached)
	if err == nil {
		// The cache key is id-scoped; re-check ownership and visibility
		// before trusting the hit.
		if cached.OwnerID == ownerID && cached.IsVisible() {
			return &cached, nil
		}
	} else if !errors.Is(err, cache.ErrCacheMiss) {
		logger.Warn("File metadata cache read failed", zap.Uint64("fileID", id), zap.Error(err))
	}

	file, err := r.db.FindByIDForOwner(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	if err := r.cache.Set(ctx, key, file, fileMetadataTTL); err != nil {
		logger.Warn("File metadata cache write failed", zap.Uint64("fileID", id), zap.Error(err))
	}
	return file, nil
}

func (r *cachedFileRepository) FindByObjectKey(ctx context.Context, ownerID uint64, bucket, objectKey string) (*models.File, error) {
	return r.db.FindByObjectKey(ctx, ownerID, bucket, objectKey)
}

func (r *cachedFileRepository) FindByOwnerID(ctx context.Context, ownerID uint64) ([]models.File, error) {
	return r.db.FindByOwnerID(ctx, ownerID)
}

func (r *cachedFileRepository) FindTrashedByOwnerID(ctx context.Context, ownerID uint64) ([]models.File, error) {
	return r.db.FindTrashedByOwnerID(ctx, ownerID)
}

func (r *cachedFileRepository) FindVisibleByIDs(ctx context.Context, ownerID uint64, ids []uint64) ([]models.File, error) {
	return r.db.FindVisibleByIDs(ctx, ownerID, ids)
}

func (r *cachedFileRepository) FindExpiredReservations(ctx context.Context, before time.Time, limit int) ([]models.File, error) {
	return r.db.FindExpiredReservations(ctx, before, limit)
}

func (r *cachedFileRepository) FindByID(ctx context.Context, id uint64) (*models.File, error) {
	return r.db.FindByID(ctx, id)
}

func (r *cachedFileRepository) SumUsedSizeByOwner(ctx context.Context, ownerID uint64) (uint64, error) {
	key := cache.StorageUsageKey(ownerID)

	var cached uint64
	err := r.cache.Get(ctx, key, &cached)
	if err == nil {
		return cached, nil
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		logger.Warn("Storage usage cache read failed", zap.Uint64("ownerID", ownerID), zap.Error(err))
	}

	total, err := r.db.SumUsedSizeByOwner(ctx, ownerID)
	if err != nil {
		return 0, err
	}

	if err := r.cache.Set(ctx, key, total, storageUsageTTL); err != nil {
		logger.Warn("Storage usage cache write failed", zap.Uint64("ownerID", ownerID), zap.Error(err))
	}
	return total, nil
}

func (r *cachedFileRepository) Update(ctx context.Context, file *models.File) error {
	if err := r.db.Update(ctx, file); err != nil {
		return err
	}
	r.invalidateFile(ctx, file)
	return nil
}

func (r *cachedFileRepository) Delete(ctx context.Context, file *models.File) error {
	if err := r.db.Delete(ctx, file); err != nil {
		return err
	}
	r.invalidateFile(ctx, file)
	return nil
}

func (r *cachedFileRepository) invalidateFile(ctx context.Context, file *models.File) {
	if err := r.cache.Del(ctx, cache.FileMetadataKey(file.ID), cache.StorageUsageKey(file.OwnerID)); err != nil {
		logger.Warn("File cache invalidation failed", zap.Uint64("fileID", file.ID), zap.Error(err))
	}
}

func (r *cachedFileRepository) invalidateUsage(ctx context.Context, ownerID uint64) {
	if err := r.cache.Del(ctx, cache.StorageUsageKey(ownerID)); err != nil {
		logger.Warn("Storage usage cache invalidation failed", zap.Uint64("ownerID", ownerID), zap.Error(err))
	}
}
