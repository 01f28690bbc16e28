package repositories

import (
	"context"
	"time"

	"github.com/cloudyhq/cloudy-server/internal/models"
)

// FileRepository is the persistence gateway for file metadata. Reads carry
// the owner id and the standing status predicate, so tombstoned rows never
// surface to callers.
type FileRepository interface {
	Create(ctx context.Context, file *models.File) error

	// FindByIDForOwner returns a visible (active or trashed) file owned by
	// ownerID, or xerr.ErrFileNotFound.
	FindByIDForOwner(ctx context.Context, ownerID, id uint64) (*models.File, error)
	// FindByObjectKey returns the owner's non-deleted row for an object key,
	// whatever its status; used to locate reservations at finalize time.
	FindByObjectKey(ctx context.Context, ownerID uint64, bucket, objectKey string) (*models.File, error)
	// FindByOwnerID lists the owner's visible files, trash included.
	FindByOwnerID(ctx context.Context, ownerID uint64) ([]models.File, error)
	// FindTrashedByOwnerID lists pending-deletion files only.
	FindTrashedByOwnerID(ctx context.Context, ownerID uint64) ([]models.File, error)
	// FindVisibleByIDs resolves search hits back to visible owned rows.
	FindVisibleByIDs(ctx context.Context, ownerID uint64, ids []uint64) ([]models.File, error)
	// FindExpiredReservations returns reservations whose deadline passed
	// before the given instant.
	FindExpiredReservations(ctx context.Context, before time.Time, limit int) ([]models.File, error)
	// FindByID returns the row in any status, or xerr.ErrFileNotFound. Only
	// background workers use it, to re-check state before destructive work;
	// request paths go through the owner-scoped reads.
	FindByID(ctx context.Context, id uint64) (*models.File, error)

	// SumUsedSizeByOwner aggregates the bytes counted against the owner's
	// quota: active, trashed and still-reserved rows.
	SumUsedSizeByOwner(ctx context.Context, ownerID uint64) (uint64, error)

	Update(ctx context.Context, file *models.File) error
	Delete(ctx context.Context, file *models.File) error
}
