// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/amirphl/Takaramono/models"
	"gorm.io/gorm"
)

// productsCountExpr is the correlated subquery that annotates each
// category row with the number of products attached to it.
const productsCountExpr = "(SELECT COUNT(*) FROM products WHERE products.category_id = categories.id)"

// CategoryRepositoryImpl implements CategoryRepository interface
type CategoryRepositoryImpl struct {
	*BaseRepository[models.Category, models.CategoryFilter]
}

// NewCategoryRepository creates a new category repository
func NewCategoryRepository(db *gorm.DB) CategoryRepository {
	return &CategoryRepositoryImpl{
		BaseRepository: NewBaseRepository[models.Category, models.CategoryFilter](db),
	}
}

func (r *CategoryRepositoryImpl) apply(db *gorm.DB, filter models.CategoryFilter) *gorm.DB {
	if filter.ID != nil {
		db = db.Where("id = ?", *filter.ID)
	}
	if filter.Name != nil {
		db = db.Where("LOWER(name) = LOWER(?)", *filter.Name)
	}
	if filter.Slug != nil {
		db = db.Where("slug = ?", *filter.Slug)
	}
	if filter.ParentID != nil {
		db = db.Where("parent_id = ?", *filter.ParentID)
	}
	if filter.Search != nil && *filter.Search != "" {
		pattern := "%" + *filter.Search + "%"
		db = db.Where("name ILIKE ? OR description ILIKE ?", pattern, pattern)
	}
	if filter.MinProducts != nil {
		db = db.Where(productsCountExpr+" >= ?", *filter.MinProducts)
	}
	if filter.MaxProducts != nil {
		db = db.Where(productsCountExpr+" <= ?", *filter.MaxProducts)
	}
	return db
}

// ByFilter retrieves categories matching the filter criteria
func (r *CategoryRepositoryImpl) ByFilter(ctx context.Context, filter models.CategoryFilter, orderBy string, limit, offset int) ([]*models.Category, error) {
	db := r.apply(r.getDB(ctx).Model(&models.Category{}), filter).
		Select("categories.*, " + productsCountExpr + " AS products_count")

	if orderBy != "" {
		db = db.Order(orderBy)
	}
	if limit > 0 {
		db = db.Limit(limit)
	}
	if offset > 0 {
		db = db.Offset(offset)
	}

	var categories []*models.Category
	if err := db.Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("failed to find categories by filter: %w", err)
	}

	return categories, nil
}

// Count returns the number of categories matching the filter criteria
func (r *CategoryRepositoryImpl) Count(ctx context.Context, filter models.CategoryFilter) (int64, error) {
	db := r.apply(r.getDB(ctx).Model(&models.Category{}), filter)

	var count int64
	if err := db.Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count categories: %w", err)
	}

	return count, nil
}

// Exists reports whether any category matches the filter criteria
func (r *CategoryRepositoryImpl) Exists(ctx context.Context, filter models.CategoryFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// ByIDAnnotated retrieves a category by ID with its products count populated
func (r *CategoryRepositoryImpl) ByIDAnnotated(ctx context.Context, id uint) (*models.Category, error) {
	db := r.getDB(ctx)

	var category models.Category
	err := db.Model(&models.Category{}).
		Select("categories.*, "+productsCountExpr+" AS products_count").
		Where("id = ?", id).
		First(&category).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find category by ID %d: %w", id, err)
	}

	return &category, nil
}

// categoryOrderColumns maps the public ordering keys onto SQL expressions.
var categoryOrderColumns = map[string]string{
	"name":           "name",
	"created_at":     "created_at",
	"products_count": "products_count",
}

// List retrieves categories with the products-count annotation, search,
// count bounds, ordering and pagination applied. It returns the page of
// rows and the total number of rows matching the filters.
func (r *CategoryRepositoryImpl) List(ctx context.Context, q CategoryListQuery) ([]*models.Category, int64, error) {
	filter := models.CategoryFilter{
		MinProducts: q.MinProducts,
		MaxProducts: q.MaxProducts,
	}
	if q.Search != "" {
		filter.Search = &q.Search
	}

	total, err := r.Count(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	categories, err := r.ByFilter(ctx, filter, categoryOrderClause(q.OrderBy), q.Limit, q.Offset)
	if err != nil {
		return nil, 0, err
	}

	return categories, total, nil
}

func categoryOrderClause(orderBy string) string {
	direction := "ASC"
	key := orderBy
	if strings.HasPrefix(key, "-") {
		direction = "DESC"
		key = key[1:]
	}

	column, ok := categoryOrderColumns[key]
	if !ok {
		return "name ASC"
	}
	return column + " " + direction
}

// NameExists reports whether another category already uses the name,
// compared case-insensitively.
func (r *CategoryRepositoryImpl) NameExists(ctx context.Context, name string, excludeID uint) (bool, error) {
	db := r.getDB(ctx).Model(&models.Category{}).
		Where("LOWER(name) = LOWER(?)", name)
	if excludeID != 0 {
		db = db.Where("id <> ?", excludeID)
	}

	var count int64
	if err := db.Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check category name existence: %w", err)
	}

	return count > 0, nil
}

// SlugExists reports whether another category already uses the slug
func (r *CategoryRepositoryImpl) SlugExists(ctx context.Context, slug string, excludeID uint) (bool, error) {
	db := r.getDB(ctx).Model(&models.Category{}).
		Where("slug = ?", slug)
	if excludeID != 0 {
		db = db.Where("id <> ?", excludeID)
	}

	var count int64
	if err := db.Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check category slug existence: %w", err)
	}

	return count > 0, nil
}
