// Package models contains domain entities and business models for the storefront system
package models

import (
	"time"

	"github.com/google/uuid"
)

type Account struct {
	ID   uint      `gorm:"primaryKey" json:"id"`
	UUID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uk_accounts_uuid" json:"uuid"`

	Username     string `gorm:"size:150;not null;uniqueIndex:uk_accounts_username" json:"username"`
	Email        string `gorm:"size:255;not null;uniqueIndex:uk_accounts_email;index:idx_accounts_email" json:"email"`
	PasswordHash string `gorm:"size:255;not null" json:"-"` // Never serialize password hash

	// Status flags
	IsStaff  *bool `gorm:"default:false;index:idx_accounts_is_staff" json:"is_staff"`
	IsActive *bool `gorm:"default:true;index:idx_accounts_is_active" json:"is_active"`

	// Timestamps
	CreatedAt   time.Time  `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC');index:idx_accounts_created_at" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"updated_at"`
	LastLoginAt *time.Time `gorm:"index:idx_accounts_last_login_at" json:"last_login_at,omitempty"`

	// Relations
	Profile   *Profile         `gorm:"foreignKey:AccountID" json:"profile,omitempty"`
	Products  []Product        `gorm:"foreignKey:OwnerID" json:"-"`
	Sessions  []AccountSession `gorm:"foreignKey:AccountID" json:"-"`
	AuditLogs []AuditLog       `gorm:"foreignKey:AccountID" json:"-"`
}

func (Account) TableName() string {
	return "accounts"
}

// AccountFilter represents filter criteria for account queries
type AccountFilter struct {
	ID            *uint
	UUID          *uuid.UUID
	Username      *string
	Email         *string
	IsStaff       *bool
	IsActive      *bool
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
}

func (a *Account) Staff() bool {
	return a.IsStaff != nil && *a.IsStaff
}

func (a *Account) Active() bool {
	return a.IsActive != nil && *a.IsActive
}
