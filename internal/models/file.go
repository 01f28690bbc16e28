package models

import (
	"strings"
	"time"

	"github.com/cloudyhq/cloudy-server/internal/pkg/xerr"
)

const (
	FileStatusDeleted         uint8 = 0 // tombstoned, hidden from every listing
	FileStatusActive          uint8 = 1
	FileStatusReserved        uint8 = 2 // intent issued, bytes possibly in flight
	FileStatusPendingDeletion uint8 = 3 // in trash, restorable
)

// File maps the files table. Size and ObjectKey are set once during the
// intent/finalize flow and never mutated afterwards.
type File struct {
	ID          uint64     `gorm:"primaryKey;autoIncrement" json:"id"`
	OwnerID     uint64     `gorm:"not null;index" json:"owner_id"`
	Name        string     `gorm:"type:varchar(255);not null" json:"name"`
	Size        uint64     `gorm:"type:bigint unsigned;not null" json:"size"`
	ContentType string     `gorm:"type:varchar(128);not null;default:'application/octet-stream'" json:"content_type"`
	UploadedAt  *time.Time `gorm:"default:null" json:"uploaded_at,omitempty"`

	Bucket    string `gorm:"type:varchar(64);not null" json:"bucket"`
	ObjectKey string `gorm:"type:varchar(255);not null;uniqueIndex:idx_bucket_object_key,composite:bucket" json:"object_key"`

	Status        uint8      `gorm:"type:tinyint unsigned;not null;default:1;index" json:"status"`
	ReservedUntil *time.Time `gorm:"default:null" json:"-"`

	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
	CreatedBy uint64     `gorm:"not null" json:"-"`
	UpdatedBy uint64     `gorm:"not null" json:"-"`
	DeletedAt *time.Time `gorm:"index" json:"deleted_at,omitempty"`
	DeletedBy *uint64    `gorm:"default:null" json:"-"`

	Owner *User `gorm:"foreignKey:OwnerID" json:"-"`
}

func (File) TableName() string {
	return "files"
}

// NewReservedFile builds the reservation row persisted at intent time. The
// reservation counts against quota until it is finalized or swept.
func NewReservedFile(ownerID uint64, name, contentType string, size uint64, bucket, objectKey string, reservedUntil time.Time) (*File, error) {
	if strings.TrimSpace(name) == "" {
		return nil, xerr.ErrFileNameRequired
	}
	return &File{
		OwnerID:       ownerID,
		Name:          name,
		Size:          size,
		ContentType:   contentType,
		Bucket:        bucket,
		ObjectKey:     objectKey,
		Status:        FileStatusReserved,
		ReservedUntil: &reservedUntil,
		CreatedBy:     ownerID,
		UpdatedBy:     ownerID,
	}, nil
}

func (f *File) touch(userID uint64) {
	f.UpdatedAt = time.Now().UTC()
	f.UpdatedBy = userID
}

// Rename validates the new name and touches audit fields. Size and object key
// are unaffected.
func (f *File) Rename(newName string, userID uint64) error {
	if strings.TrimSpace(newName) == "" {
		return xerr.ErrFileNameRequired
	}
	f.Name = newName
	f.touch(userID)
	return nil
}

// Activate promotes a reservation once the client confirms the upload.
// Activating an already active file is a no-op so finalize stays idempotent.
func (f *File) Activate(name, contentType string, size uint64, userID uint64) error {
	switch f.Status {
	case FileStatusActive:
		return nil
	case FileStatusReserved:
	default:
		return xerr.ErrFileStatusInvalid
	}
	if strings.TrimSpace(name) == "" {
		return xerr.ErrFileNameRequired
	}
	now := time.Now().UTC()
	f.Name = name
	f.ContentType = contentType
	f.Size = size
	f.Status = FileStatusActive
	f.UploadedAt = &now
	f.ReservedUntil = nil
	f.touch(userID)
	return nil
}

func (f *File) MarkPendingDeletion(userID uint64) error {
	if f.Status != FileStatusActive {
		return xerr.ErrFileStatusInvalid
	}
	f.Status = FileStatusPendingDeletion
	f.touch(userID)
	return nil
}

func (f *File) RestorePendingDeletion(userID uint64) error {
	if f.Status != FileStatusPendingDeletion {
		return xerr.ErrFileNotInTrash
	}
	f.Status = FileStatusActive
	f.touch(userID)
	return nil
}

// SoftDelete tombstones the row. The row stays in storage for audit but is
// excluded from all reads. DELETED is terminal.
func (f *File) SoftDelete(userID uint64) error {
	switch f.Status {
	case FileStatusDeleted:
		return nil
	case FileStatusActive, FileStatusPendingDeletion:
	default:
		return xerr.ErrFileStatusInvalid
	}
	now := time.Now().UTC()
	f.Status = FileStatusDeleted
	f.DeletedAt = &now
	f.DeletedBy = &userID
	f.touch(userID)
	return nil
}

// Expire tombstones a reservation whose deadline passed without a finalize.
func (f *File) Expire() error {
	if f.Status != FileStatusReserved {
		return xerr.ErrFileStatusInvalid
	}
	now := time.Now().UTC()
	f.Status = FileStatusDeleted
	f.DeletedAt = &now
	f.ReservedUntil = nil
	return nil
}

// IsVisible reports whether the file shows up in owner listings.
func (f *File) IsVisible() bool {
	return f.Status == FileStatusActive || f.Status == FileStatusPendingDeletion
}
