package models

import "time"

// Product belongs to the account that created it and optionally to one
// category. When the category is deleted without an explicit policy
// modifier the reference is nulled, never cascaded.
//
// Invariant: an inactive product always has zero stock.
type Product struct {
	ID uint `gorm:"primaryKey" json:"id"`

	OwnerID uint     `gorm:"not null;index:idx_products_owner_id" json:"owner_id"`
	Owner   *Account `gorm:"foreignKey:OwnerID;references:ID" json:"owner,omitempty"`

	CategoryID *uint     `gorm:"index:idx_products_category_id" json:"category_id,omitempty"`
	Category   *Category `gorm:"foreignKey:CategoryID;references:ID;constraint:OnDelete:SET NULL" json:"category,omitempty"`

	Name        string  `gorm:"size:255;not null" json:"name"`
	Slug        string  `gorm:"size:280;not null;uniqueIndex:uk_products_slug" json:"slug"`
	Description string  `gorm:"type:text" json:"description"`
	Price       float64 `gorm:"type:numeric(10,2);not null" json:"price"`
	Stock       int     `gorm:"not null;default:0" json:"stock"`
	IsActive    *bool   `gorm:"default:true;index:idx_products_is_active" json:"is_active"`

	CreatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC');index:idx_products_created_at" json:"created_at"`
	UpdatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"updated_at"`
}

func (Product) TableName() string {
	return "products"
}

// ProductFilter represents filter criteria for product queries
type ProductFilter struct {
	ID         *uint
	OwnerID    *uint
	CategoryID *uint
	Slug       *string
	IsActive   *bool

	// Search matches name and description, case-insensitively.
	Search *string
}

func (p *Product) Active() bool {
	return p.IsActive != nil && *p.IsActive
}
