package businessflow

import (
	"context"
	"fmt"

	"github.com/amirphl/Takaramono/app/dto"
	"github.com/amirphl/Takaramono/models"
	"github.com/amirphl/Takaramono/repository"
	"github.com/amirphl/Takaramono/utils"
	"gorm.io/gorm"
)

// ProfileFlow handles reads and updates of the authenticated account's profile
type ProfileFlow interface {
	GetProfile(ctx context.Context, accountID uint) (*dto.ProfileResponse, error)
	UpdateProfile(ctx context.Context, accountID uint, request *dto.UpdateProfileRequest, metadata *ClientMetadata) (*dto.ProfileResponse, error)
}

// ProfileFlowImpl implements the profile business flow
type ProfileFlowImpl struct {
	accountRepo repository.AccountRepository
	profileRepo repository.ProfileRepository
	auditRepo   repository.AuditLogRepository
	db          *gorm.DB
}

// NewProfileFlow creates a new profile flow instance
func NewProfileFlow(
	accountRepo repository.AccountRepository,
	profileRepo repository.ProfileRepository,
	auditRepo repository.AuditLogRepository,
	db *gorm.DB,
) ProfileFlow {
	return &ProfileFlowImpl{
		accountRepo: accountRepo,
		profileRepo: profileRepo,
		auditRepo:   auditRepo,
		db:          db,
	}
}

// GetProfile returns the profile attached to the account
func (pf *ProfileFlowImpl) GetProfile(ctx context.Context, accountID uint) (*dto.ProfileResponse, error) {
	account, profile, err := pf.loadAccountAndProfile(ctx, accountID)
	if err != nil {
		return nil, NewBusinessError("GET_PROFILE_FAILED", "Failed to get profile", err)
	}

	return &dto.ProfileResponse{
		Message: "Profile retrieved successfully",
		Profile: ToProfileDTO(*account, *profile),
	}, nil
}

// UpdateProfile applies partial updates to the account's profile
func (pf *ProfileFlowImpl) UpdateProfile(ctx context.Context, accountID uint, request *dto.UpdateProfileRequest, metadata *ClientMetadata) (*dto.ProfileResponse, error) {
	var account *models.Account

	resp, err := runInTransaction(ctx, pf.db, func(ctx context.Context) (*dto.ProfileResponse, error) {
		var profile *models.Profile
		var err error
		account, profile, err = pf.loadAccountAndProfile(ctx, accountID)
		if err != nil {
			return nil, err
		}

		if request.Bio != nil {
			profile.Bio = *request.Bio
		}
		if request.AvatarURL != nil {
			profile.AvatarURL = *request.AvatarURL
		}
		profile.UpdatedAt = utils.UTCNow()

		if err := pf.profileRepo.Update(ctx, profile); err != nil {
			return nil, err
		}

		return &dto.ProfileResponse{
			Message: "Profile updated successfully",
			Profile: ToProfileDTO(*account, *profile),
		}, nil
	})

	if err != nil {
		errMsg := fmt.Sprintf("Profile update failed: %s", err.Error())
		_ = pf.createAuditLog(ctx, account, models.AuditActionProfileUpdated, errMsg, false, &errMsg, metadata)

		return nil, NewBusinessError("UPDATE_PROFILE_FAILED", "Failed to update profile", err)
	} else {
		msg := fmt.Sprintf("Profile updated successfully: %d", accountID)
		_ = pf.createAuditLog(ctx, account, models.AuditActionProfileUpdated, msg, true, nil, metadata)
	}

	return resp, nil
}

// Private helper methods

func (pf *ProfileFlowImpl) loadAccountAndProfile(ctx context.Context, accountID uint) (*models.Account, *models.Profile, error) {
	account, err := pf.accountRepo.ByID(ctx, accountID)
	if err != nil {
		return nil, nil, err
	}
	if account == nil {
		return nil, nil, ErrAccountNotFound
	}

	profile, err := pf.profileRepo.ByAccountID(ctx, accountID)
	if err != nil {
		return nil, nil, err
	}
	if profile == nil {
		return nil, nil, ErrProfileNotFound
	}

	return account, profile, nil
}

func (pf *ProfileFlowImpl) createAuditLog(ctx context.Context, account *models.Account, action string, description string, success bool, errMsg *string, metadata *ClientMetadata) error {
	var accountID *uint
	if account != nil {
		accountID = &account.ID
	}

	ipAddress := "127.0.0.1"
	userAgent := ""
	if metadata != nil {
		ipAddress = metadata.IPAddress
		userAgent = metadata.UserAgent
	}

	audit := &models.AuditLog{
		AccountID:    accountID,
		Action:       action,
		Description:  &description,
		Success:      utils.ToPtr(success),
		IPAddress:    &ipAddress,
		UserAgent:    &userAgent,
		ErrorMessage: errMsg,
	}

	requestID := ctx.Value(RequestIDKey)
	if requestID != nil {
		requestIDStr, ok := requestID.(string)
		if ok {
			audit.RequestID = &requestIDStr
		}
	}

	return pf.auditRepo.Save(ctx, audit)
}
