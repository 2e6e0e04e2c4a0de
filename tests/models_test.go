package tests

import (
	"testing"
	"time"

	"github.com/amirphl/Takaramono/models"
	"github.com/amirphl/Takaramono/utils"
	"github.com/stretchr/testify/assert"
)

func TestAccountFlags(t *testing.T) {
	t.Run("Staff", func(t *testing.T) {
		account := &models.Account{}
		assert.False(t, account.Staff())

		account.IsStaff = utils.ToPtr(false)
		assert.False(t, account.Staff())

		account.IsStaff = utils.ToPtr(true)
		assert.True(t, account.Staff())
	})

	t.Run("Active", func(t *testing.T) {
		account := &models.Account{}
		assert.False(t, account.Active())

		account.IsActive = utils.ToPtr(true)
		assert.True(t, account.Active())

		account.IsActive = utils.ToPtr(false)
		assert.False(t, account.Active())
	})
}

func TestProductActive(t *testing.T) {
	product := &models.Product{}
	assert.False(t, product.Active())

	product.IsActive = utils.ToPtr(true)
	assert.True(t, product.Active())

	product.IsActive = utils.ToPtr(false)
	assert.False(t, product.Active())
}

func TestAccountSessionValidity(t *testing.T) {
	t.Run("ActiveAndUnexpired", func(t *testing.T) {
		session := &models.AccountSession{
			IsActive:  utils.ToPtr(true),
			ExpiresAt: time.Now().Add(time.Hour),
		}
		assert.False(t, session.IsExpired())
		assert.True(t, session.IsValid())
	})

	t.Run("Expired", func(t *testing.T) {
		session := &models.AccountSession{
			IsActive:  utils.ToPtr(true),
			ExpiresAt: time.Now().Add(-time.Hour),
		}
		assert.True(t, session.IsExpired())
		assert.False(t, session.IsValid())
	})

	t.Run("Deactivated", func(t *testing.T) {
		session := &models.AccountSession{
			IsActive:  utils.ToPtr(false),
			ExpiresAt: time.Now().Add(time.Hour),
		}
		assert.False(t, session.IsExpired())
		assert.False(t, session.IsValid())
	})
}

func TestAuditLogHelpers(t *testing.T) {
	t.Run("IsFailed", func(t *testing.T) {
		entry := &models.AuditLog{}
		assert.False(t, entry.IsFailed())

		entry.Success = utils.ToPtr(true)
		assert.False(t, entry.IsFailed())

		entry.Success = utils.ToPtr(false)
		assert.True(t, entry.IsFailed())
	})

	t.Run("IsSecurityEvent", func(t *testing.T) {
		security := []string{
			models.AuditActionLoginSuccessful,
			models.AuditActionLoginFailed,
			models.AuditActionLogout,
		}
		for _, action := range security {
			entry := &models.AuditLog{Action: action}
			assert.True(t, entry.IsSecurityEvent(), action)
		}

		entry := &models.AuditLog{Action: models.AuditActionCategoryDeleted}
		assert.False(t, entry.IsSecurityEvent())
	})
}
