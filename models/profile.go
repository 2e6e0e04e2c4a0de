package models

import "time"

// Profile holds the per-account public profile. Exactly one row exists per
// account; it is created inside the same transaction as the account itself.
type Profile struct {
	ID        uint     `gorm:"primaryKey" json:"id"`
	AccountID uint     `gorm:"not null;uniqueIndex:uk_profiles_account_id" json:"account_id"`
	Account   *Account `gorm:"foreignKey:AccountID;references:ID;constraint:OnDelete:CASCADE" json:"-"`

	Bio       string `gorm:"type:text" json:"bio"`
	AvatarURL string `gorm:"size:500" json:"avatar_url"`

	CreatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"created_at"`
	UpdatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"updated_at"`
}

func (Profile) TableName() string {
	return "profiles"
}

// ProfileFilter represents filter criteria for profile queries
type ProfileFilter struct {
	ID        *uint
	AccountID *uint
}
