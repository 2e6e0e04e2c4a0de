// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/amirphl/Takaramono/models"
	"gorm.io/gorm"
)

// ProductRepositoryImpl implements ProductRepository interface
type ProductRepositoryImpl struct {
	*BaseRepository[models.Product, models.ProductFilter]
}

// NewProductRepository creates a new product repository
func NewProductRepository(db *gorm.DB) ProductRepository {
	return &ProductRepositoryImpl{
		BaseRepository: NewBaseRepository[models.Product, models.ProductFilter](db),
	}
}

func (r *ProductRepositoryImpl) apply(db *gorm.DB, filter models.ProductFilter) *gorm.DB {
	if filter.ID != nil {
		db = db.Where("id = ?", *filter.ID)
	}
	if filter.OwnerID != nil {
		db = db.Where("owner_id = ?", *filter.OwnerID)
	}
	if filter.CategoryID != nil {
		db = db.Where("category_id = ?", *filter.CategoryID)
	}
	if filter.Slug != nil {
		db = db.Where("slug = ?", *filter.Slug)
	}
	if filter.IsActive != nil {
		db = db.Where("is_active = ?", *filter.IsActive)
	}
	if filter.Search != nil && *filter.Search != "" {
		pattern := "%" + *filter.Search + "%"
		db = db.Where("name ILIKE ? OR description ILIKE ?", pattern, pattern)
	}
	return db
}

// ByFilter retrieves products matching the filter criteria
func (r *ProductRepositoryImpl) ByFilter(ctx context.Context, filter models.ProductFilter, orderBy string, limit, offset int) ([]*models.Product, error) {
	db := r.apply(r.getDB(ctx).Model(&models.Product{}), filter)

	if orderBy != "" {
		db = db.Order(orderBy)
	}
	if limit > 0 {
		db = db.Limit(limit)
	}
	if offset > 0 {
		db = db.Offset(offset)
	}

	var products []*models.Product
	if err := db.Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to find products by filter: %w", err)
	}

	return products, nil
}

// Count returns the number of products matching the filter criteria
func (r *ProductRepositoryImpl) Count(ctx context.Context, filter models.ProductFilter) (int64, error) {
	db := r.apply(r.getDB(ctx).Model(&models.Product{}), filter)

	var count int64
	if err := db.Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count products: %w", err)
	}

	return count, nil
}

// Exists reports whether any product matches the filter criteria
func (r *ProductRepositoryImpl) Exists(ctx context.Context, filter models.ProductFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// productOrderColumns maps the public ordering keys onto SQL columns.
var productOrderColumns = map[string]string{
	"name":       "name",
	"price":      "price",
	"created_at": "created_at",
}

// List retrieves products with search, visibility, ordering and
// pagination applied. It returns the page of rows and the total number
// of rows matching the filters.
func (r *ProductRepositoryImpl) List(ctx context.Context, q ProductListQuery) ([]*models.Product, int64, error) {
	filter := models.ProductFilter{
		CategoryID: q.CategoryID,
		OwnerID:    q.OwnerID,
	}
	if q.Search != "" {
		filter.Search = &q.Search
	}
	if q.ActiveOnly {
		active := true
		filter.IsActive = &active
	}

	total, err := r.Count(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	products, err := r.ByFilter(ctx, filter, productOrderClause(q.OrderBy), q.Limit, q.Offset)
	if err != nil {
		return nil, 0, err
	}

	return products, total, nil
}

func productOrderClause(orderBy string) string {
	direction := "ASC"
	key := orderBy
	if strings.HasPrefix(key, "-") {
		direction = "DESC"
		key = key[1:]
	}

	column, ok := productOrderColumns[key]
	if !ok {
		return "created_at DESC"
	}
	return column + " " + direction
}

// SlugExists reports whether another product already uses the slug
func (r *ProductRepositoryImpl) SlugExists(ctx context.Context, slug string, excludeID uint) (bool, error) {
	db := r.getDB(ctx).Model(&models.Product{}).
		Where("slug = ?", slug)
	if excludeID != 0 {
		db = db.Where("id <> ?", excludeID)
	}

	var count int64
	if err := db.Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check product slug existence: %w", err)
	}

	return count > 0, nil
}

// CountByCategory returns the number of products attached to a category
func (r *ProductRepositoryImpl) CountByCategory(ctx context.Context, categoryID uint) (int64, error) {
	return r.Count(ctx, models.ProductFilter{CategoryID: &categoryID})
}

// DeleteByCategory removes every product attached to a category and
// returns the number of rows deleted.
func (r *ProductRepositoryImpl) DeleteByCategory(ctx context.Context, categoryID uint) (int64, error) {
	db, shouldCommit, err := r.getDBForWrite(ctx)
	if err != nil {
		return 0, err
	}

	if shouldCommit {
		defer func() {
			if err != nil {
				db.Rollback()
			} else {
				db.Commit()
			}
		}()
	}

	result := db.Where("category_id = ?", categoryID).Delete(&models.Product{})
	if result.Error != nil {
		err = fmt.Errorf("failed to delete products by category: %w", result.Error)
		return 0, err
	}

	return result.RowsAffected, nil
}

// ReassignCategory moves every product from one category to another and
// returns the number of rows moved.
func (r *ProductRepositoryImpl) ReassignCategory(ctx context.Context, fromCategoryID, toCategoryID uint) (int64, error) {
	db, shouldCommit, err := r.getDBForWrite(ctx)
	if err != nil {
		return 0, err
	}

	if shouldCommit {
		defer func() {
			if err != nil {
				db.Rollback()
			} else {
				db.Commit()
			}
		}()
	}

	result := db.Model(&models.Product{}).
		Where("category_id = ?", fromCategoryID).
		Update("category_id", toCategoryID)
	if result.Error != nil {
		err = fmt.Errorf("failed to reassign products to category: %w", result.Error)
		return 0, err
	}

	return result.RowsAffected, nil
}
