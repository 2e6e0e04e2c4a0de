package models

import "time"

// Category is a node in the catalog taxonomy. Names are unique
// case-insensitively (enforced in the business flow on top of the
// functional index), slugs are globally unique. Deleting a parent does
// not cascade; children keep living with a nulled parent reference.
type Category struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:100;not null;uniqueIndex:uk_categories_name" json:"name"`
	Slug        string    `gorm:"size:120;not null;uniqueIndex:uk_categories_slug" json:"slug"`
	Description string    `gorm:"type:text" json:"description"`
	ParentID    *uint     `gorm:"index:idx_categories_parent_id" json:"parent_id,omitempty"`
	Parent      *Category `gorm:"foreignKey:ParentID;references:ID;constraint:OnDelete:SET NULL" json:"parent,omitempty"`

	CreatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC');index:idx_categories_created_at" json:"created_at"`
	UpdatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"updated_at"`

	Products []Product `gorm:"foreignKey:CategoryID" json:"-"`

	// Populated by list/retrieve queries, not a column.
	ProductsCount int64 `gorm:"->;-:migration" json:"products_count"`
}

func (Category) TableName() string {
	return "categories"
}

// CategoryFilter represents filter criteria for category queries
type CategoryFilter struct {
	ID       *uint
	Name     *string
	Slug     *string
	ParentID *uint

	// Search matches name and description, case-insensitively.
	Search *string

	// Inclusive bounds on the annotated product count.
	MinProducts *int
	MaxProducts *int
}
