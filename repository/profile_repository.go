// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"
	"fmt"

	"github.com/amirphl/Takaramono/models"
	"gorm.io/gorm"
)

// ProfileRepositoryImpl implements ProfileRepository interface
type ProfileRepositoryImpl struct {
	*BaseRepository[models.Profile, models.ProfileFilter]
}

// NewProfileRepository creates a new profile repository
func NewProfileRepository(db *gorm.DB) ProfileRepository {
	return &ProfileRepositoryImpl{
		BaseRepository: NewBaseRepository[models.Profile, models.ProfileFilter](db),
	}
}

func (r *ProfileRepositoryImpl) apply(db *gorm.DB, filter models.ProfileFilter) *gorm.DB {
	if filter.ID != nil {
		db = db.Where("id = ?", *filter.ID)
	}
	if filter.AccountID != nil {
		db = db.Where("account_id = ?", *filter.AccountID)
	}
	return db
}

// ByFilter retrieves profiles matching the filter criteria
func (r *ProfileRepositoryImpl) ByFilter(ctx context.Context, filter models.ProfileFilter, orderBy string, limit, offset int) ([]*models.Profile, error) {
	db := r.apply(r.getDB(ctx).Model(&models.Profile{}), filter)

	if orderBy != "" {
		db = db.Order(orderBy)
	}
	if limit > 0 {
		db = db.Limit(limit)
	}
	if offset > 0 {
		db = db.Offset(offset)
	}

	var profiles []*models.Profile
	if err := db.Find(&profiles).Error; err != nil {
		return nil, fmt.Errorf("failed to find profiles by filter: %w", err)
	}

	return profiles, nil
}

// Count returns the number of profiles matching the filter criteria
func (r *ProfileRepositoryImpl) Count(ctx context.Context, filter models.ProfileFilter) (int64, error) {
	db := r.apply(r.getDB(ctx).Model(&models.Profile{}), filter)

	var count int64
	if err := db.Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count profiles: %w", err)
	}

	return count, nil
}

// Exists reports whether any profile matches the filter criteria
func (r *ProfileRepositoryImpl) Exists(ctx context.Context, filter models.ProfileFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// ByAccountID retrieves the profile attached to an account
func (r *ProfileRepositoryImpl) ByAccountID(ctx context.Context, accountID uint) (*models.Profile, error) {
	profiles, err := r.ByFilter(ctx, models.ProfileFilter{AccountID: &accountID}, "", 1, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to find profile by account ID: %w", err)
	}

	if len(profiles) == 0 {
		return nil, nil
	}

	return profiles[0], nil
}
