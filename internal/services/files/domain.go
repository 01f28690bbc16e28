package files

import (
	"context"

	"github.com/cloudyhq/cloudy-server/internal/models"
)

// UploadIntentRequest declares an upload before any bytes move.
type UploadIntentRequest struct {
	FileName    string `json:"file_name" binding:"required"`
	SizeInBytes uint64 `json:"size_in_bytes" binding:"required"`
	ContentType string `json:"content_type"`
}

// UploadIntent is the server's answer to an intent: where to PUT the bytes
// and for how long the URL stays valid.
type UploadIntent struct {
	ObjectKey        string `json:"object_key"`
	UploadURL        string `json:"upload_url"`
	ExpiresInSeconds int64  `json:"expires_in_seconds"`
}

// FinalizeRequest confirms a completed upload. Fields left empty fall back to
// the values recorded at intent time.
type FinalizeRequest struct {
	FileName    string `json:"file_name"`
	ContentType string `json:"content_type"`
	SizeInBytes uint64 `json:"size_in_bytes"`
}

// FileService drives the file lifecycle: reserve, finalize, list, trash,
// restore, delete. Every operation is scoped to the calling owner.
type FileService interface {
	// CreateUploadIntent checks quota, reserves a metadata row and presigns a
	// PUT URL. The reservation counts against quota until finalized or swept.
	CreateUploadIntent(ctx context.Context, ownerID uint64, req UploadIntentRequest) (*UploadIntent, error)
	// FinalizeUpload promotes the reservation behind objectKey to an active
	// file. Finalizing an already active file is a no-op returning the file.
	FinalizeUpload(ctx context.Context, ownerID uint64, objectKey string, req FinalizeRequest) (*models.File, error)

	GetFile(ctx context.Context, ownerID, fileID uint64) (*models.File, error)
	ListFiles(ctx context.Context, ownerID uint64) ([]models.File, error)
	ListTrash(ctx context.Context, ownerID uint64) ([]models.File, error)
	// SearchFiles matches file names through the search index and resolves
	// hits back to the owner's visible rows.
	SearchFiles(ctx context.Context, ownerID uint64, query string) ([]models.File, error)

	// GetDownloadURL presigns a GET URL for an active file.
	GetDownloadURL(ctx context.Context, ownerID, fileID uint64) (string, error)

	RenameFile(ctx context.Context, ownerID, fileID uint64, newName string) (*models.File, error)
	MarkPendingDeletion(ctx context.Context, ownerID, fileID uint64) error
	RestorePendingDeletion(ctx context.Context, ownerID, fileID uint64) error
	// DeleteFile removes the blob first, then tombstones the row. A blob
	// removal failure leaves the metadata untouched.
	DeleteFile(ctx context.Context, ownerID, fileID uint64) error

	GetStorageUsage(ctx context.Context, ownerID uint64) (*models.StorageUsage, error)
}
