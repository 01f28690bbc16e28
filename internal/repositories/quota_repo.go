package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/cloudyhq/cloudy-server/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrNoQuotaPolicy signals that the owner has no policy row and the
// configured default ceiling applies.
var ErrNoQuotaPolicy = errors.New("no quota policy for owner")

type QuotaPolicyRepository interface {
	// FindByOwnerID returns the owner's policy or ErrNoQuotaPolicy.
	FindByOwnerID(ctx context.Context, ownerID uint64) (*models.QuotaPolicy, error)
	// Upsert creates or replaces the owner's policy row.
	Upsert(ctx context.Context, policy *models.QuotaPolicy) error
}

type dbQuotaPolicyRepository struct {
	db *gorm.DB
}

var _ QuotaPolicyRepository = (*dbQuotaPolicyRepository)(nil)

func NewQuotaPolicyRepository(db *gorm.DB) QuotaPolicyRepository {
	return &dbQuotaPolicyRepository{db: db}
}

func (r *dbQuotaPolicyRepository) FindByOwnerID(ctx context.Context, ownerID uint64) (*models.QuotaPolicy, error) {
	var policy models.QuotaPolicy
	err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		First(&policy).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoQuotaPolicy
		}
		return nil, fmt.Errorf("find quota policy: %w", err)
	}
	return &policy, nil
}

func (r *dbQuotaPolicyRepository) Upsert(ctx context.Context, policy *models.QuotaPolicy) error {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "owner_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"max_bytes"}),
		}).
		Create(policy).Error
	if err != nil {
		return fmt.Errorf("upsert quota policy: %w", err)
	}
	return nil
}
