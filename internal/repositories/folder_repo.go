package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/cloudyhq/cloudy-server/internal/models"
	"github.com/cloudyhq/cloudy-server/internal/pkg/logger"
	"github.com/cloudyhq/cloudy-server/internal/pkg/xerr"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type FolderRepository interface {
	Create(ctx context.Context, folder *models.Folder) error
	// FindByIDForOwner returns a live folder owned by ownerID, or
	// xerr.ErrFolderNotFound.
	FindByIDForOwner(ctx context.Context, ownerID, id uint64) (*models.Folder, error)
	// FindByOwnerAndParent lists live folders directly under parentID; a nil
	// parent means the root level.
	FindByOwnerAndParent(ctx context.Context, ownerID uint64, parentID *uint64) ([]models.Folder, error)
	// CountChildren counts live subfolders, used to restrict deletion of
	// non-empty folders.
	CountChildren(ctx context.Context, ownerID, folderID uint64) (int64, error)
	Update(ctx context.Context, folder *models.Folder) error
}

type dbFolderRepository struct {
	db *gorm.DB
}

var _ FolderRepository = (*dbFolderRepository)(nil)

func NewFolderRepository(db *gorm.DB) FolderRepository {
	return &dbFolderRepository{db: db}
}

func (r *dbFolderRepository) Create(ctx context.Context, folder *models.Folder) error {
	if err := r.db.WithContext(ctx).Create(folder).Error; err != nil {
		logger.Error("Failed to create folder row", zap.Uint64("ownerID", folder.OwnerID), zap.Error(err))
		return fmt.Errorf("create folder: %w", err)
	}
	return nil
}

func (r *dbFolderRepository) FindByIDForOwner(ctx context.Context, ownerID, id uint64) (*models.Folder, error) {
	var folder models.Folder
	err := r.db.WithContext(ctx).
		Where("id = ? AND owner_id = ? AND status = ?", id, ownerID, models.FileStatusActive).
		First(&folder).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, xerr.ErrFolderNotFound
		}
		return nil, fmt.Errorf("find folder by id: %w", err)
	}
	return &folder, nil
}

func (r *dbFolderRepository) FindByOwnerAndParent(ctx context.Context, ownerID uint64, parentID *uint64) ([]models.Folder, error) {
	q := r.db.WithContext(ctx).
		Where("owner_id = ? AND status = ?", ownerID, models.FileStatusActive)
	if parentID == nil {
		q = q.Where("parent_folder_id IS NULL")
	} else {
		q = q.Where("parent_folder_id = ?", *parentID)
	}

	var folders []models.Folder
	if err := q.Order("name ASC").Find(&folders).Error; err != nil {
		logger.Error("Failed to list folders", zap.Uint64("ownerID", ownerID), zap.Error(err))
		return nil, fmt.Errorf("list folders: %w", err)
	}
	return folders, nil
}

func (r *dbFolderRepository) CountChildren(ctx context.Context, ownerID, folderID uint64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Folder{}).
		Where("owner_id = ? AND parent_folder_id = ? AND status = ?", ownerID, folderID, models.FileStatusActive).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("count subfolders: %w", err)
	}
	return count, nil
}

func (r *dbFolderRepository) Update(ctx context.Context, folder *models.Folder) error {
	if err := r.db.WithContext(ctx).Save(folder).Error; err != nil {
		logger.Error("Failed to update folder row", zap.Uint64("folderID", folder.ID), zap.Error(err))
		return fmt.Errorf("update folder: %w", err)
	}
	return nil
}
