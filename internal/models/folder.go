package models

import (
	"strings"
	"time"

	"github.com/cloudyhq/cloudy-server/internal/pkg/xerr"
)

// MaxFolderNameLen bounds folder names at the column width.
const MaxFolderNameLen = 255

// Folder maps the folders table. The parent link is self-referencing and
// nullable; root folders carry a nil parent. Deleting a parent with children
// is restricted, never cascaded.
type Folder struct {
	ID             uint64  `gorm:"primaryKey;autoIncrement" json:"id"`
	OwnerID        uint64  `gorm:"not null;index" json:"owner_id"`
	Name           string  `gorm:"type:varchar(255);not null" json:"name"`
	ParentFolderID *uint64 `gorm:"default:null" json:"parent_folder_id"`

	Status uint8 `gorm:"type:tinyint unsigned;not null;default:1;index" json:"status"`

	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
	CreatedBy uint64     `gorm:"not null" json:"-"`
	UpdatedBy uint64     `gorm:"not null" json:"-"`
	DeletedAt *time.Time `gorm:"index" json:"deleted_at,omitempty"`
	DeletedBy *uint64    `gorm:"default:null" json:"-"`

	ParentFolder *Folder `gorm:"foreignKey:ParentFolderID" json:"-"`
}

func (Folder) TableName() string {
	return "folders"
}

func NewFolder(ownerID uint64, name string, parentFolderID *uint64) (*Folder, error) {
	if err := validateFolderName(name); err != nil {
		return nil, err
	}
	return &Folder{
		OwnerID:        ownerID,
		Name:           name,
		ParentFolderID: parentFolderID,
		Status:         FileStatusActive,
		CreatedBy:      ownerID,
		UpdatedBy:      ownerID,
	}, nil
}

func validateFolderName(name string) error {
	if strings.TrimSpace(name) == "" {
		return xerr.ErrFolderNameRequired
	}
	if len(name) > MaxFolderNameLen {
		return xerr.ErrFolderNameTooLong
	}
	return nil
}

func (d *Folder) Rename(newName string, userID uint64) error {
	if err := validateFolderName(newName); err != nil {
		return err
	}
	d.Name = newName
	d.UpdatedAt = time.Now().UTC()
	d.UpdatedBy = userID
	return nil
}

func (d *Folder) SoftDelete(userID uint64) error {
	if d.Status == FileStatusDeleted {
		return nil
	}
	now := time.Now().UTC()
	d.Status = FileStatusDeleted
	d.DeletedAt = &now
	d.DeletedBy = &userID
	d.UpdatedAt = now
	d.UpdatedBy = userID
	return nil
}
