package tests

import (
	"context"
	"testing"
	"time"

	"github.com/amirphl/Takaramono/app/dto"
	"github.com/amirphl/Takaramono/app/services"
	businessflow "github.com/amirphl/Takaramono/business_flow"
	"github.com/amirphl/Takaramono/models"
	"github.com/amirphl/Takaramono/repository"
	testingutil "github.com/amirphl/Takaramono/testing"
	"github.com/amirphl/Takaramono/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testTokenSecret = "takaramono-test-secret-key-0123456789"

// newTestTokenService builds an HMAC token service with no revocation store
func newTestTokenService(t *testing.T) services.TokenService {
	tokenService, err := services.NewTokenService(
		1*time.Hour, 24*time.Hour,
		"test-issuer", "test-audience",
		false, "", "", testTokenSecret,
		nil,
	)
	require.NoError(t, err)
	return tokenService
}

func newTestMetadata() *businessflow.ClientMetadata {
	return businessflow.NewClientMetadata("127.0.0.1", "takaramono-tests")
}

func newAuthFlow(t *testing.T, testDB *testingutil.TestDB) businessflow.AuthFlow {
	return businessflow.NewAuthFlow(
		repository.NewAccountRepository(testDB.DB),
		repository.NewProfileRepository(testDB.DB),
		repository.NewAccountSessionRepository(testDB.DB),
		repository.NewAuditLogRepository(testDB.DB),
		newTestTokenService(t),
		testDB.DB,
	)
}

func TestRegister(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		accountRepo := repository.NewAccountRepository(testDB.DB)
		profileRepo := repository.NewProfileRepository(testDB.DB)
		sessionRepo := repository.NewAccountSessionRepository(testDB.DB)
		auditRepo := repository.NewAuditLogRepository(testDB.DB)

		authFlow := businessflow.NewAuthFlow(
			accountRepo, profileRepo, sessionRepo, auditRepo,
			newTestTokenService(t), testDB.DB,
		)

		t.Run("SuccessfulRegistration", func(t *testing.T) {
			req := &dto.RegisterRequest{
				Username:        "ayako",
				Email:           "Ayako@Example.com",
				Password:        "SecurePass123",
				ConfirmPassword: "SecurePass123",
			}

			result, err := authFlow.Register(context.Background(), req, newTestMetadata())
			require.NoError(t, err)
			require.NotNil(t, result)
			assert.Equal(t, "ayako", result.Account.Username)
			assert.Equal(t, "ayako@example.com", result.Account.Email)
			assert.False(t, utils.IsTrue(result.Account.IsStaff))
			assert.True(t, utils.IsTrue(result.Account.IsActive))
			assert.NotEmpty(t, result.Session.AccessToken)
			assert.Equal(t, "Bearer", result.Session.TokenType)
			assert.Greater(t, result.Session.ExpiresIn, 0)

			// Verify the account was persisted with a lowercased email
			account, err := accountRepo.ByEmail(context.Background(), "ayako@example.com")
			require.NoError(t, err)
			require.NotNil(t, account)
			assert.NotEmpty(t, account.UUID)
			assert.NotEqual(t, "SecurePass123", account.PasswordHash)

			// Verify the blank profile was created alongside
			profile, err := profileRepo.ByAccountID(context.Background(), account.ID)
			require.NoError(t, err)
			require.NotNil(t, profile)
			assert.Empty(t, profile.Bio)
			assert.Empty(t, profile.AvatarURL)

			// Verify the first session was opened
			sessions, err := sessionRepo.ByFilter(context.Background(), models.AccountSessionFilter{
				AccountID: &account.ID,
			}, "", 0, 0)
			require.NoError(t, err)
			require.Len(t, sessions, 1)
			assert.True(t, sessions[0].IsValid())
			assert.Equal(t, result.Session.AccessToken, sessions[0].SessionToken)

			// Verify audit log was created
			auditLogs, err := auditRepo.ByFilter(context.Background(), models.AuditLogFilter{
				AccountID: &account.ID,
				Action:    utils.ToPtr(models.AuditActionRegisterCompleted),
			}, "", 0, 0)
			require.NoError(t, err)
			require.Len(t, auditLogs, 1)
			assert.True(t, utils.IsTrue(auditLogs[0].Success))
		})

		t.Run("DuplicateEmail", func(t *testing.T) {
			req := &dto.RegisterRequest{
				Username:        "ayako2",
				Email:           "AYAKO@example.com",
				Password:        "SecurePass123",
				ConfirmPassword: "SecurePass123",
			}

			result, err := authFlow.Register(context.Background(), req, newTestMetadata())
			require.Error(t, err)
			assert.Nil(t, result)
			assert.True(t, businessflow.IsEmailAlreadyExists(err))
		})

		t.Run("DuplicateUsername", func(t *testing.T) {
			req := &dto.RegisterRequest{
				Username:        "ayako",
				Email:           "someone.else@example.com",
				Password:        "SecurePass123",
				ConfirmPassword: "SecurePass123",
			}

			result, err := authFlow.Register(context.Background(), req, newTestMetadata())
			require.Error(t, err)
			assert.Nil(t, result)
			assert.True(t, businessflow.IsUsernameAlreadyExists(err))
		})

		return nil
	})
	require.NoError(t, err)
}

func TestLogin(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)

		accountRepo := repository.NewAccountRepository(testDB.DB)
		sessionRepo := repository.NewAccountSessionRepository(testDB.DB)
		auditRepo := repository.NewAuditLogRepository(testDB.DB)

		authFlow := businessflow.NewAuthFlow(
			accountRepo,
			repository.NewProfileRepository(testDB.DB),
			sessionRepo, auditRepo,
			newTestTokenService(t), testDB.DB,
		)

		account, err := fixtures.CreateTestAccount(false)
		require.NoError(t, err)

		t.Run("SuccessfulLogin", func(t *testing.T) {
			req := &dto.LoginRequest{
				Email:    account.Email,
				Password: testingutil.TestPassword,
			}

			result, err := authFlow.Login(context.Background(), req, newTestMetadata())
			require.NoError(t, err)
			require.NotNil(t, result)
			assert.Equal(t, account.ID, result.Account.ID)
			assert.NotEmpty(t, result.Session.AccessToken)
			require.NotNil(t, result.Account.LastLoginAt)

			// Verify last login timestamp was persisted
			refreshed, err := accountRepo.ByID(context.Background(), account.ID)
			require.NoError(t, err)
			require.NotNil(t, refreshed)
			require.NotNil(t, refreshed.LastLoginAt)
			assert.WithinDuration(t, time.Now().UTC(), *refreshed.LastLoginAt, time.Minute)

			// Verify a fresh session row exists for the token
			session, err := sessionRepo.BySessionToken(context.Background(), result.Session.AccessToken)
			require.NoError(t, err)
			require.NotNil(t, session)
			assert.Equal(t, account.ID, session.AccountID)
			assert.True(t, session.IsValid())

			auditLogs, err := auditRepo.ByFilter(context.Background(), models.AuditLogFilter{
				AccountID: &account.ID,
				Action:    utils.ToPtr(models.AuditActionLoginSuccessful),
			}, "", 0, 0)
			require.NoError(t, err)
			require.Len(t, auditLogs, 1)
			assert.True(t, utils.IsTrue(auditLogs[0].Success))
		})

		t.Run("WrongPassword", func(t *testing.T) {
			req := &dto.LoginRequest{
				Email:    account.Email,
				Password: "DefinitelyWrong1",
			}

			result, err := authFlow.Login(context.Background(), req, newTestMetadata())
			require.Error(t, err)
			assert.Nil(t, result)
			assert.True(t, businessflow.IsIncorrectPassword(err))

			auditLogs, err := auditRepo.ByFilter(context.Background(), models.AuditLogFilter{
				AccountID: &account.ID,
				Action:    utils.ToPtr(models.AuditActionLoginFailed),
			}, "", 0, 0)
			require.NoError(t, err)
			require.Len(t, auditLogs, 1)
			assert.True(t, auditLogs[0].IsFailed())
		})

		t.Run("UnknownEmail", func(t *testing.T) {
			req := &dto.LoginRequest{
				Email:    "nobody.here@example.com",
				Password: testingutil.TestPassword,
			}

			result, err := authFlow.Login(context.Background(), req, newTestMetadata())
			require.Error(t, err)
			assert.Nil(t, result)
			assert.True(t, businessflow.IsAccountNotFound(err))
		})

		t.Run("InactiveAccount", func(t *testing.T) {
			inactive, err := fixtures.CreateInactiveTestAccount()
			require.NoError(t, err)

			req := &dto.LoginRequest{
				Email:    inactive.Email,
				Password: testingutil.TestPassword,
			}

			result, err := authFlow.Login(context.Background(), req, newTestMetadata())
			require.Error(t, err)
			assert.Nil(t, result)
			assert.True(t, businessflow.IsAccountInactive(err))
		})

		return nil
	})
	require.NoError(t, err)
}

func TestLogout(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		sessionRepo := repository.NewAccountSessionRepository(testDB.DB)
		authFlow := newAuthFlow(t, testDB)

		req := &dto.RegisterRequest{
			Username:        "kenta",
			Email:           "kenta@example.com",
			Password:        "SecurePass123",
			ConfirmPassword: "SecurePass123",
		}
		registered, err := authFlow.Register(context.Background(), req, newTestMetadata())
		require.NoError(t, err)
		token := registered.Session.AccessToken

		t.Run("SuccessfulLogout", func(t *testing.T) {
			result, err := authFlow.Logout(context.Background(), token, newTestMetadata())
			require.NoError(t, err)
			require.NotNil(t, result)
			assert.Equal(t, "Logged out successfully", result.Message)

			// The session row is inactive and no longer resolvable by token
			session, err := sessionRepo.BySessionToken(context.Background(), token)
			require.NoError(t, err)
			assert.Nil(t, session)

			sessions, err := sessionRepo.ByFilter(context.Background(), models.AccountSessionFilter{
				AccountID: &registered.Account.ID,
			}, "", 0, 0)
			require.NoError(t, err)
			require.Len(t, sessions, 1)
			assert.False(t, utils.IsTrue(sessions[0].IsActive))
		})

		t.Run("LogoutTwice", func(t *testing.T) {
			result, err := authFlow.Logout(context.Background(), token, newTestMetadata())
			require.Error(t, err)
			assert.Nil(t, result)
			assert.True(t, businessflow.IsSessionNotFound(err))
		})

		t.Run("UnknownToken", func(t *testing.T) {
			result, err := authFlow.Logout(context.Background(), "not-a-session-token", newTestMetadata())
			require.Error(t, err)
			assert.Nil(t, result)
			assert.True(t, businessflow.IsSessionNotFound(err))
		})

		return nil
	})
	require.NoError(t, err)
}
