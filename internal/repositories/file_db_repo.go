package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cloudyhq/cloudy-server/internal/models"
	"github.com/cloudyhq/cloudy-server/internal/pkg/logger"
	"github.com/cloudyhq/cloudy-server/internal/pkg/xerr"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// visibleStatuses are the states exposed by owner listings and point reads.
var visibleStatuses = []uint8{models.FileStatusActive, models.FileStatusPendingDeletion}

// countedStatuses are the states whose sizes count against the quota.
var countedStatuses = []uint8{models.FileStatusActive, models.FileStatusPendingDeletion, models.FileStatusReserved}

type dbFileRepository struct {
	db *gorm.DB
}

var _ FileRepository = (*dbFileRepository)(nil)

// NewDBFileRepository creates the plain GORM-backed repository. Most callers
// want NewFileRepository, which layers the Redis cache on top.
func NewDBFileRepository(db *gorm.DB) FileRepository {
	return &dbFileRepository{db: db}
}

func (r *dbFileRepository) Create(ctx context.Context, file *models.File) error {
	if err := r.db.WithContext(ctx).Create(file).Error; err != nil {
		logger.Error("Failed to create file row", zap.Uint64("ownerID", file.OwnerID), zap.String("objectKey", file.ObjectKey), zap.Error(err))
		return fmt.Errorf("create file: %w", err)
	}
	return nil
}

func (r *dbFileRepository) FindByIDForOwner(ctx context.Context, ownerID, id uint64) (*models.File, error) {
	var file models.File
	err := r.db.WithContext(ctx).
		Where("id = ? AND owner_id = ? AND status IN ?", id, ownerID, visibleStatuses).
		First(&file).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, xerr.ErrFileNotFound
		}
		return nil, fmt.Errorf("find file by id: %w", err)
	}
	return &file, nil
}

func (r *dbFileRepository) FindByObjectKey(ctx context.Context, ownerID uint64, bucket, objectKey string) (*models.File, error) {
	var file models.File
	err := r.db.WithContext(ctx).
		Where("owner_id = ? AND bucket = ? AND object_key = ? AND status <> ?",
			ownerID, bucket, objectKey, models.FileStatusDeleted).
		First(&file).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, xerr.ErrFileNotFound
		}
		return nil, fmt.Errorf("find file by object key: %w", err)
	}
	return &file, nil
}

func (r *dbFileRepository) FindByOwnerID(ctx context.Context, ownerID uint64) ([]models.File, error) {
	var files []models.File
	err := r.db.WithContext(ctx).
		Where("owner_id = ? AND status IN ?", ownerID, visibleStatuses).
		Order("name ASC").
		Find(&files).Error
	if err != nil {
		logger.Error("Failed to list files", zap.Uint64("ownerID", ownerID), zap.Error(err))
		return nil, fmt.Errorf("list files: %w", err)
	}
	return files, nil
}

func (r *dbFileRepository) FindTrashedByOwnerID(ctx context.Context, ownerID uint64) ([]models.File, error) {
	var files []models.File
	err := r.db.WithContext(ctx).
		Where("owner_id = ? AND status = ?", ownerID, models.FileStatusPendingDeletion).
		Order("updated_at DESC").
		Find(&files).Error
	if err != nil {
		logger.Error("Failed to list trashed files", zap.Uint64("ownerID", ownerID), zap.Error(err))
		return nil, fmt.Errorf("list trashed files: %w", err)
	}
	return files, nil
}

func (r *dbFileRepository) FindVisibleByIDs(ctx context.Context, ownerID uint64, ids []uint64) ([]models.File, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var files []models.File
	err := r.db.WithContext(ctx).
		Where("owner_id = ? AND id IN ? AND status IN ?", ownerID, ids, visibleStatuses).
		Find(&files).Error
	if err != nil {
		return nil, fmt.Errorf("find files by ids: %w", err)
	}
	return files, nil
}

func (r *dbFileRepository) FindExpiredReservations(ctx context.Context, before time.Time, limit int) ([]models.File, error) {
	var files []models.File
	err := r.db.WithContext(ctx).
		Where("status = ? AND reserved_until < ?", models.FileStatusReserved, before).
		Limit(limit).
		Find(&files).Error
	if err != nil {
		return nil, fmt.Errorf("find expired reservations: %w", err)
	}
	return files, nil
}

func (r *dbFileRepository) FindByID(ctx context.Context, id uint64) (*models.File, error) {
	var file models.File
	if err := r.db.WithContext(ctx).First(&file, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, xerr.ErrFileNotFound
		}
		return nil, fmt.Errorf("find file by id: %w", err)
	}
	return &file, nil
}

func (r *dbFileRepository) SumUsedSizeByOwner(ctx context.Context, ownerID uint64) (uint64, error) {
	var total *uint64
	err := r.db.WithContext(ctx).
		Model(&models.File{}).
		Select("SUM(size)").
		Where("owner_id = ? AND status IN ?", ownerID, countedStatuses).
		Scan(&total).Error
	if err != nil {
		logger.Error("Failed to sum storage usage", zap.Uint64("ownerID", ownerID), zap.Error(err))
		return 0, fmt.Errorf("sum storage usage: %w", err)
	}
	if total == nil {
		return 0, nil
	}
	return *total, nil
}

func (r *dbFileRepository) Update(ctx context.Context, file *models.File) error {
	if err := r.db.WithContext(ctx).Save(file).Error; err != nil {
		logger.Error("Failed to update file row", zap.Uint64("fileID", file.ID), zap.Error(err))
		return fmt.Errorf("update file: %w", err)
	}
	return nil
}

// Delete physically removes a row. Only the intent rollback path uses it,
// for reservations that were never visible to anyone.
func (r *dbFileRepository) Delete(ctx context.Context, file *models.File) error {
	if err := r.db.WithContext(ctx).Delete(file).Error; err != nil {
		return fmt.Errorf("delete file row: %w", err)
	}
	return nil
}
