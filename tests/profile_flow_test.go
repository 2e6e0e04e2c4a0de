package tests

import (
	"context"
	"testing"

	"github.com/amirphl/Takaramono/app/dto"
	businessflow "github.com/amirphl/Takaramono/business_flow"
	"github.com/amirphl/Takaramono/models"
	"github.com/amirphl/Takaramono/repository"
	testingutil "github.com/amirphl/Takaramono/testing"
	"github.com/amirphl/Takaramono/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfileFlow(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)

		profileRepo := repository.NewProfileRepository(testDB.DB)
		auditRepo := repository.NewAuditLogRepository(testDB.DB)

		profileFlow := businessflow.NewProfileFlow(
			repository.NewAccountRepository(testDB.DB),
			profileRepo,
			auditRepo,
			testDB.DB,
		)

		account, err := fixtures.CreateTestAccount(false)
		require.NoError(t, err)

		t.Run("GetProfile", func(t *testing.T) {
			result, err := profileFlow.GetProfile(context.Background(), account.ID)
			require.NoError(t, err)
			require.NotNil(t, result)
			assert.Equal(t, account.Username, result.Profile.Username)
			assert.Equal(t, account.Email, result.Profile.Email)
			assert.Empty(t, result.Profile.Bio)
			assert.Empty(t, result.Profile.AvatarURL)
		})

		t.Run("GetProfileUnknownAccount", func(t *testing.T) {
			result, err := profileFlow.GetProfile(context.Background(), 999999)
			require.Error(t, err)
			assert.Nil(t, result)
			assert.True(t, businessflow.IsAccountNotFound(err))
		})

		t.Run("UpdateBioOnly", func(t *testing.T) {
			req := &dto.UpdateProfileRequest{
				Bio: utils.ToPtr("Collector of rare teapots"),
			}

			result, err := profileFlow.UpdateProfile(context.Background(), account.ID, req, newTestMetadata())
			require.NoError(t, err)
			require.NotNil(t, result)
			assert.Equal(t, "Collector of rare teapots", result.Profile.Bio)
			assert.Empty(t, result.Profile.AvatarURL)

			profile, err := profileRepo.ByAccountID(context.Background(), account.ID)
			require.NoError(t, err)
			require.NotNil(t, profile)
			assert.Equal(t, "Collector of rare teapots", profile.Bio)

			auditLogs, err := auditRepo.ByFilter(context.Background(), models.AuditLogFilter{
				AccountID: &account.ID,
				Action:    utils.ToPtr(models.AuditActionProfileUpdated),
			}, "", 0, 0)
			require.NoError(t, err)
			require.Len(t, auditLogs, 1)
			assert.True(t, utils.IsTrue(auditLogs[0].Success))
		})

		t.Run("UpdateAvatarKeepsBio", func(t *testing.T) {
			req := &dto.UpdateProfileRequest{
				AvatarURL: utils.ToPtr("https://cdn.example.com/avatars/ayako.png"),
			}

			result, err := profileFlow.UpdateProfile(context.Background(), account.ID, req, newTestMetadata())
			require.NoError(t, err)
			require.NotNil(t, result)
			assert.Equal(t, "Collector of rare teapots", result.Profile.Bio)
			assert.Equal(t, "https://cdn.example.com/avatars/ayako.png", result.Profile.AvatarURL)
		})

		t.Run("UpdateUnknownAccount", func(t *testing.T) {
			req := &dto.UpdateProfileRequest{
				Bio: utils.ToPtr("ghost"),
			}

			result, err := profileFlow.UpdateProfile(context.Background(), 999999, req, newTestMetadata())
			require.Error(t, err)
			assert.Nil(t, result)
			assert.True(t, businessflow.IsAccountNotFound(err))
		})

		return nil
	})
	require.NoError(t, err)
}
