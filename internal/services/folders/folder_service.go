package folders

import (
	"context"

	"github.com/cloudyhq/cloudy-server/internal/models"
	"github.com/cloudyhq/cloudy-server/internal/pkg/logger"
	"github.com/cloudyhq/cloudy-server/internal/pkg/xerr"
	"github.com/cloudyhq/cloudy-server/internal/repositories"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// FolderService manages the folder hierarchy. Folders are organizational
// only; files do not move when folders change.
type FolderService interface {
	CreateFolder(ctx context.Context, ownerID uint64, name string, parentID *uint64) (*models.Folder, error)
	GetFolder(ctx context.Context, ownerID, folderID uint64) (*models.Folder, error)
	// ListFolders lists direct children of parentID; nil means the root.
	ListFolders(ctx context.Context, ownerID uint64, parentID *uint64) ([]models.Folder, error)
	RenameFolder(ctx context.Context, ownerID, folderID uint64, newName string) (*models.Folder, error)
	// DeleteFolder soft-deletes an empty folder. Folders with live children
	// are rejected with xerr.ErrFolderNotEmpty, never cascaded.
	DeleteFolder(ctx context.Context, ownerID, folderID uint64) error
}

type folderService struct {
	folderRepo repositories.FolderRepository
	tm         repositories.TransactionManager

	// txRepo builds a repository bound to an open transaction.
	txRepo func(tx *gorm.DB) repositories.FolderRepository
}

var _ FolderService = (*folderService)(nil)

func NewFolderService(folderRepo repositories.FolderRepository, tm repositories.TransactionManager) FolderService {
	return &folderService{
		folderRepo: folderRepo,
		tm:         tm,
		txRepo:     repositories.NewFolderRepository,
	}
}

func (s *folderService) CreateFolder(ctx context.Context, ownerID uint64, name string, parentID *uint64) (*models.Folder, error) {
	if parentID != nil {
		if _, err := s.folderRepo.FindByIDForOwner(ctx, ownerID, *parentID); err != nil {
			return nil, err
		}
	}

	folder, err := models.NewFolder(ownerID, name, parentID)
	if err != nil {
		return nil, err
	}
	if err := s.folderRepo.Create(ctx, folder); err != nil {
		return nil, err
	}

	logger.Info("Folder created",
		zap.Uint64("ownerID", ownerID),
		zap.Uint64("folderID", folder.ID),
		zap.String("name", folder.Name))
	return folder, nil
}

func (s *folderService) GetFolder(ctx context.Context, ownerID, folderID uint64) (*models.Folder, error) {
	return s.folderRepo.FindByIDForOwner(ctx, ownerID, folderID)
}

func (s *folderService) ListFolders(ctx context.Context, ownerID uint64, parentID *uint64) ([]models.Folder, error) {
	if parentID != nil {
		if _, err := s.folderRepo.FindByIDForOwner(ctx, ownerID, *parentID); err != nil {
			return nil, err
		}
	}
	return s.folderRepo.FindByOwnerAndParent(ctx, ownerID, parentID)
}

func (s *folderService) RenameFolder(ctx context.Context, ownerID, folderID uint64, newName string) (*models.Folder, error) {
	folder, err := s.folderRepo.FindByIDForOwner(ctx, ownerID, folderID)
	if err != nil {
		return nil, err
	}
	if err := folder.Rename(newName, ownerID); err != nil {
		return nil, err
	}
	if err := s.folderRepo.Update(ctx, folder); err != nil {
		return nil, err
	}
	return folder, nil
}

func (s *folderService) DeleteFolder(ctx context.Context, ownerID, folderID uint64) error {
	// Check and delete inside one transaction so a child created concurrently
	// cannot slip past the emptiness check.
	return s.tm.WithTransaction(ctx, func(tx *gorm.DB) error {
		repo := s.txRepo(tx)

		folder, err := repo.FindByIDForOwner(ctx, ownerID, folderID)
		if err != nil {
			return err
		}

		children, err := repo.CountChildren(ctx, ownerID, folderID)
		if err != nil {
			return err
		}
		if children > 0 {
			return xerr.ErrFolderNotEmpty
		}

		if err := folder.SoftDelete(ownerID); err != nil {
			return err
		}
		if err := repo.Update(ctx, folder); err != nil {
			return err
		}

		logger.Info("Folder deleted", zap.Uint64("ownerID", ownerID), zap.Uint64("folderID", folderID))
		return nil
	})
}
