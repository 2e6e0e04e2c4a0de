// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"
	"time"

	"github.com/amirphl/Takaramono/models"
)

// RepositoryContext key for transaction in context
type contextKey string

const TxContextKey contextKey = "tx"

type Repository[T any, F any] interface {
	ByID(ctx context.Context, id uint) (*T, error)
	ByFilter(ctx context.Context, filter F, orderBy string, limit, offset int) ([]*T, error)
	Save(ctx context.Context, entity *T) error
	Update(ctx context.Context, entity *T) error
	Delete(ctx context.Context, entity *T) error
	Count(ctx context.Context, filter F) (int64, error)
	Exists(ctx context.Context, filter F) (bool, error)
}

// AccountRepository defines operations for accounts
type AccountRepository interface {
	Repository[models.Account, models.AccountFilter]
	ByEmail(ctx context.Context, email string) (*models.Account, error)
	ByUsername(ctx context.Context, username string) (*models.Account, error)
	UpdateLastLogin(ctx context.Context, accountID uint, at time.Time) error
}

// ProfileRepository defines operations for account profiles
type ProfileRepository interface {
	Repository[models.Profile, models.ProfileFilter]
	ByAccountID(ctx context.Context, accountID uint) (*models.Profile, error)
}

// CategoryListQuery carries the knobs for the annotated category listing.
type CategoryListQuery struct {
	Search      string
	MinProducts *int
	MaxProducts *int
	OrderBy     string // name | created_at | products_count, "-" prefix for descending
	Limit       int
	Offset      int
}

// CategoryRepository defines operations for catalog categories
type CategoryRepository interface {
	Repository[models.Category, models.CategoryFilter]
	ByIDAnnotated(ctx context.Context, id uint) (*models.Category, error)
	List(ctx context.Context, q CategoryListQuery) ([]*models.Category, int64, error)
	NameExists(ctx context.Context, name string, excludeID uint) (bool, error)
	SlugExists(ctx context.Context, slug string, excludeID uint) (bool, error)
}

// ProductListQuery carries the knobs for product listings.
type ProductListQuery struct {
	Search     string
	CategoryID *uint
	OwnerID    *uint
	ActiveOnly bool
	OrderBy    string // name | price | created_at, "-" prefix for descending
	Limit      int
	Offset     int
}

// ProductRepository defines operations for products
type ProductRepository interface {
	Repository[models.Product, models.ProductFilter]
	List(ctx context.Context, q ProductListQuery) ([]*models.Product, int64, error)
	SlugExists(ctx context.Context, slug string, excludeID uint) (bool, error)
	CountByCategory(ctx context.Context, categoryID uint) (int64, error)
	DeleteByCategory(ctx context.Context, categoryID uint) (int64, error)
	ReassignCategory(ctx context.Context, fromCategoryID, toCategoryID uint) (int64, error)
}

// AccountSessionRepository defines operations for account sessions
type AccountSessionRepository interface {
	Repository[models.AccountSession, models.AccountSessionFilter]
	BySessionToken(ctx context.Context, token string) (*models.AccountSession, error)
	DeactivateSession(ctx context.Context, sessionID uint) error
	DeactivateAllAccountSessions(ctx context.Context, accountID uint) error
}

// AuditLogRepository defines operations for audit logs
type AuditLogRepository interface {
	Repository[models.AuditLog, models.AuditLogFilter]
	ListByAccount(ctx context.Context, accountID uint, limit, offset int) ([]*models.AuditLog, error)
}
