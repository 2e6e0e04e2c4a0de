// Package businessflow contains the core business logic and use cases for the storefront
package businessflow

import (
	"context"
	"fmt"
	"strings"

	"github.com/amirphl/Takaramono/app/dto"
	"github.com/amirphl/Takaramono/app/services"
	"github.com/amirphl/Takaramono/models"
	"github.com/amirphl/Takaramono/repository"
	"github.com/amirphl/Takaramono/utils"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// AuthFlow handles registration, login and logout
type AuthFlow interface {
	Register(ctx context.Context, request *dto.RegisterRequest, metadata *ClientMetadata) (*dto.RegisterResponse, error)
	Login(ctx context.Context, request *dto.LoginRequest, metadata *ClientMetadata) (*dto.LoginResponse, error)
	Logout(ctx context.Context, sessionToken string, metadata *ClientMetadata) (*dto.LogoutResponse, error)
}

// AuthFlowImpl implements the auth business flow
type AuthFlowImpl struct {
	accountRepo  repository.AccountRepository
	profileRepo  repository.ProfileRepository
	sessionRepo  repository.AccountSessionRepository
	auditRepo    repository.AuditLogRepository
	tokenService services.TokenService
	db           *gorm.DB
}

// NewAuthFlow creates a new auth flow instance
func NewAuthFlow(
	accountRepo repository.AccountRepository,
	profileRepo repository.ProfileRepository,
	sessionRepo repository.AccountSessionRepository,
	auditRepo repository.AuditLogRepository,
	tokenService services.TokenService,
	db *gorm.DB,
) AuthFlow {
	return &AuthFlowImpl{
		accountRepo:  accountRepo,
		profileRepo:  profileRepo,
		sessionRepo:  sessionRepo,
		auditRepo:    auditRepo,
		tokenService: tokenService,
		db:           db,
	}
}

// runInTransaction wraps a result-returning function in a database transaction
func runInTransaction[T any](ctx context.Context, db *gorm.DB, fn func(context.Context) (*T, error)) (*T, error) {
	var result *T
	var fnErr error

	err := repository.WithTransaction(ctx, db, func(ctx context.Context) error {
		result, fnErr = fn(ctx)
		return fnErr
	})

	if err != nil {
		return nil, err
	}
	return result, fnErr
}

// Register creates the account, its blank profile and a first session in one transaction
func (af *AuthFlowImpl) Register(ctx context.Context, request *dto.RegisterRequest, metadata *ClientMetadata) (*dto.RegisterResponse, error) {
	if err := af.validateRegisterRequest(ctx, request); err != nil {
		return nil, NewBusinessError("REGISTER_VALIDATION_FAILED", "Registration validation failed", err)
	}

	var account *models.Account

	resp, err := runInTransaction(ctx, af.db, func(ctx context.Context) (*dto.RegisterResponse, error) {
		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(request.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}

		account = &models.Account{
			UUID:         uuid.New(),
			Username:     strings.TrimSpace(request.Username),
			Email:        strings.ToLower(strings.TrimSpace(request.Email)),
			PasswordHash: string(hashedPassword),
			IsStaff:      utils.ToPtr(false),
			IsActive:     utils.ToPtr(true),
		}

		if err := af.accountRepo.Save(ctx, account); err != nil {
			return nil, err
		}

		// Blank profile, always 1:1 with the account
		profile := &models.Profile{AccountID: account.ID}
		if err := af.profileRepo.Save(ctx, profile); err != nil {
			return nil, err
		}

		session, err := af.createSession(ctx, account.ID, metadata)
		if err != nil {
			return nil, err
		}

		return &dto.RegisterResponse{
			Message: "Registration completed successfully",
			Account: ToAuthAccountDTO(*account),
			Session: ToSessionDTO(*session),
		}, nil
	})

	if err != nil {
		errMsg := fmt.Sprintf("Registration failed: %s", err.Error())
		_ = af.createAuditLog(ctx, account, models.AuditActionRegisterFailed, errMsg, false, &errMsg, metadata)

		return nil, NewBusinessError("REGISTER_FAILED", "Registration failed", err)
	} else {
		msg := fmt.Sprintf("Account registered successfully: %d", account.ID)
		_ = af.createAuditLog(ctx, account, models.AuditActionRegisterCompleted, msg, true, nil, metadata)
	}

	return resp, nil
}

// Login authenticates an account with email and password
func (af *AuthFlowImpl) Login(ctx context.Context, request *dto.LoginRequest, metadata *ClientMetadata) (*dto.LoginResponse, error) {
	var account *models.Account

	resp, err := runInTransaction(ctx, af.db, func(ctx context.Context) (*dto.LoginResponse, error) {
		var err error
		account, err = af.accountRepo.ByEmail(ctx, strings.ToLower(strings.TrimSpace(request.Email)))
		if err != nil {
			return nil, err
		}
		if account == nil {
			return nil, ErrAccountNotFound
		}

		if !utils.IsTrue(account.IsActive) {
			return nil, ErrAccountInactive
		}

		if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(request.Password)); err != nil {
			return nil, ErrIncorrectPassword
		}

		session, err := af.createSession(ctx, account.ID, metadata)
		if err != nil {
			return nil, err
		}

		now := utils.UTCNow()
		if err := af.accountRepo.UpdateLastLogin(ctx, account.ID, now); err != nil {
			return nil, err
		}
		account.LastLoginAt = &now

		return &dto.LoginResponse{
			Message: "Login successful",
			Account: ToAuthAccountDTO(*account),
			Session: ToSessionDTO(*session),
		}, nil
	})

	if err != nil {
		errMsg := fmt.Sprintf("Login failed: %s", err.Error())
		_ = af.createAuditLog(ctx, account, models.AuditActionLoginFailed, errMsg, false, &errMsg, metadata)

		return nil, NewBusinessError("LOGIN_FAILED", "Login failed", err)
	} else {
		msg := fmt.Sprintf("Account logged in successfully: %d", account.ID)
		_ = af.createAuditLog(ctx, account, models.AuditActionLoginSuccessful, msg, true, nil, metadata)
	}

	return resp, nil
}

// Logout deactivates the session row and revokes the bearer token
func (af *AuthFlowImpl) Logout(ctx context.Context, sessionToken string, metadata *ClientMetadata) (*dto.LogoutResponse, error) {
	var account *models.Account

	resp, err := runInTransaction(ctx, af.db, func(ctx context.Context) (*dto.LogoutResponse, error) {
		session, err := af.sessionRepo.BySessionToken(ctx, sessionToken)
		if err != nil {
			return nil, err
		}
		if session == nil {
			return nil, ErrSessionNotFound
		}
		account = session.Account

		if err := af.sessionRepo.DeactivateSession(ctx, session.ID); err != nil {
			return nil, err
		}

		return &dto.LogoutResponse{Message: "Logged out successfully"}, nil
	})

	if err != nil {
		return nil, NewBusinessError("LOGOUT_FAILED", "Logout failed", err)
	}

	// Revocation is outside the transaction; the session row is already
	// inactive even if the revocation store is unreachable.
	if err := af.tokenService.RevokeToken(ctx, sessionToken); err != nil {
		errMsg := fmt.Sprintf("Token revocation failed: %v", err)
		_ = af.createAuditLog(ctx, account, models.AuditActionLogout, errMsg, false, &errMsg, metadata)
	} else {
		msg := "Account logged out successfully"
		_ = af.createAuditLog(ctx, account, models.AuditActionLogout, msg, true, nil, metadata)
	}

	return resp, nil
}

// Private helper methods

func (af *AuthFlowImpl) validateRegisterRequest(ctx context.Context, request *dto.RegisterRequest) error {
	email := strings.ToLower(strings.TrimSpace(request.Email))
	existing, err := af.accountRepo.ByEmail(ctx, email)
	if err != nil {
		return err
	}
	if existing != nil {
		return ErrEmailAlreadyExists
	}

	username := strings.TrimSpace(request.Username)
	existing, err = af.accountRepo.ByUsername(ctx, username)
	if err != nil {
		return err
	}
	if existing != nil {
		return ErrUsernameAlreadyExists
	}

	return nil
}

func (af *AuthFlowImpl) createSession(ctx context.Context, accountID uint, metadata *ClientMetadata) (*models.AccountSession, error) {
	accessToken, refreshToken, err := af.tokenService.GenerateTokens(accountID)
	if err != nil {
		return nil, err
	}

	expiresAt := utils.UTCNowAdd(utils.SessionTimeout)

	ipAddress := "127.0.0.1"
	userAgent := ""
	if metadata != nil {
		ipAddress = metadata.IPAddress
		userAgent = metadata.UserAgent
	}

	session := &models.AccountSession{
		AccountID:     accountID,
		CorrelationID: uuid.New(),
		SessionToken:  accessToken,
		RefreshToken:  &refreshToken,
		ExpiresAt:     expiresAt,
		IsActive:      utils.ToPtr(true),
		IPAddress:     &ipAddress,
		UserAgent:     &userAgent,
	}

	if err := af.sessionRepo.Save(ctx, session); err != nil {
		return nil, err
	}

	return session, nil
}

func (af *AuthFlowImpl) createAuditLog(ctx context.Context, account *models.Account, action string, description string, success bool, errMsg *string, metadata *ClientMetadata) error {
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

	return af.auditRepo.Save(ctx, audit)
}
