package tests

import (
	"context"
	"fmt"
	"strings"
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

func newProductFlow(testDB *testingutil.TestDB) businessflow.ProductFlow {
	return businessflow.NewProductFlow(
		repository.NewProductRepository(testDB.DB),
		repository.NewCategoryRepository(testDB.DB),
		repository.NewAuditLogRepository(testDB.DB),
		testDB.DB,
	)
}

func TestCreateProduct(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)
		productFlow := newProductFlow(testDB)

		owner, err := fixtures.CreateTestAccount(false)
		require.NoError(t, err)
		category, err := fixtures.CreateTestCategory("Kettles")
		require.NoError(t, err)

		t.Run("SuccessfulCreate", func(t *testing.T) {
			req := &dto.ProductRequest{
				Name:        "Copper Kettle",
				Description: "Hand-hammered, 1.2L",
				Price:       49.90,
				Stock:       5,
				CategoryID:  &category.ID,
			}

			result, err := productFlow.CreateProduct(context.Background(), owner, req, newTestMetadata())
			require.NoError(t, err)
			require.NotNil(t, result)
			assert.Equal(t, owner.ID, result.OwnerID)
			assert.Equal(t, "Copper Kettle", result.Name)
			assert.Equal(t, "copper-kettle", result.Slug)
			assert.Equal(t, 49.90, result.Price)
			assert.Equal(t, 5, result.Stock)
			assert.True(t, utils.IsTrue(result.IsActive))
			require.NotNil(t, result.CategoryID)
			assert.Equal(t, category.ID, *result.CategoryID)
		})

		t.Run("SlugCollisionSuffixed", func(t *testing.T) {
			req := &dto.ProductRequest{
				Name:  "Copper Kettle",
				Price: 59.90,
				Stock: 2,
			}

			second, err := productFlow.CreateProduct(context.Background(), owner, req, newTestMetadata())
			require.NoError(t, err)
			assert.Equal(t, "copper-kettle-1", second.Slug)

			third, err := productFlow.CreateProduct(context.Background(), owner, req, newTestMetadata())
			require.NoError(t, err)
			assert.Equal(t, "copper-kettle-2", third.Slug)
		})

		t.Run("SuppliedSlugCollisionSuffixed", func(t *testing.T) {
			req := &dto.ProductRequest{
				Name:  "Kupfer Kessel",
				Slug:  "copper-kettle",
				Price: 39.90,
				Stock: 1,
			}

			result, err := productFlow.CreateProduct(context.Background(), owner, req, newTestMetadata())
			require.NoError(t, err)
			assert.Equal(t, "copper-kettle-3", result.Slug)
		})

		t.Run("AnonymousDenied", func(t *testing.T) {
			req := &dto.ProductRequest{Name: "Nameless", Price: 1.00}

			result, err := productFlow.CreateProduct(context.Background(), nil, req, newTestMetadata())
			require.Error(t, err)
			assert.Nil(t, result)
			assert.True(t, businessflow.IsNotAuthenticated(err))
		})

		t.Run("InactiveAccountDenied", func(t *testing.T) {
			inactive, err := fixtures.CreateInactiveTestAccount()
			require.NoError(t, err)

			req := &dto.ProductRequest{Name: "Forbidden Fruit", Price: 1.00}

			result, err := productFlow.CreateProduct(context.Background(), inactive, req, newTestMetadata())
			require.Error(t, err)
			assert.Nil(t, result)
			assert.True(t, businessflow.IsAccountInactive(err))
		})

		t.Run("NameTooShort", func(t *testing.T) {
			req := &dto.ProductRequest{Name: "ab", Price: 1.00}

			result, err := productFlow.CreateProduct(context.Background(), owner, req, newTestMetadata())
			require.Error(t, err)
			assert.Nil(t, result)
			assert.True(t, businessflow.IsProductNameTooShort(err))
		})

		t.Run("PriceNotPositive", func(t *testing.T) {
			req := &dto.ProductRequest{Name: "Free Sample", Price: 0}

			result, err := productFlow.CreateProduct(context.Background(), owner, req, newTestMetadata())
			require.Error(t, err)
			assert.Nil(t, result)
			assert.True(t, businessflow.IsPriceNotPositive(err))
		})

		t.Run("StockNegative", func(t *testing.T) {
			req := &dto.ProductRequest{Name: "Phantom Stock", Price: 1.00, Stock: -1}

			result, err := productFlow.CreateProduct(context.Background(), owner, req, newTestMetadata())
			require.Error(t, err)
			assert.Nil(t, result)
			assert.True(t, businessflow.IsStockNegative(err))
		})

		t.Run("InactiveWithStockRejected", func(t *testing.T) {
			req := &dto.ProductRequest{
				Name:     "Shelved Kettle",
				Price:    1.00,
				Stock:    3,
				IsActive: utils.ToPtr(false),
			}

			result, err := productFlow.CreateProduct(context.Background(), owner, req, newTestMetadata())
			require.Error(t, err)
			assert.Nil(t, result)
			assert.True(t, businessflow.IsInactiveStock(err))
		})

		t.Run("InactiveWithZeroStockAllowed", func(t *testing.T) {
			req := &dto.ProductRequest{
				Name:     "Shelved Kettle",
				Price:    1.00,
				Stock:    0,
				IsActive: utils.ToPtr(false),
			}

			result, err := productFlow.CreateProduct(context.Background(), owner, req, newTestMetadata())
			require.NoError(t, err)
			assert.False(t, utils.IsTrue(result.IsActive))
			assert.Equal(t, 0, result.Stock)
		})

		t.Run("CategoryNotFound", func(t *testing.T) {
			req := &dto.ProductRequest{
				Name:       "Orphan Kettle",
				Price:      1.00,
				CategoryID: utils.ToPtr(uint(999999)),
			}

			result, err := productFlow.CreateProduct(context.Background(), owner, req, newTestMetadata())
			require.Error(t, err)
			assert.Nil(t, result)
			assert.True(t, businessflow.IsCategoryNotFound(err))
		})

		return nil
	})
	require.NoError(t, err)
}

func TestGetProduct(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)
		productFlow := newProductFlow(testDB)

		owner, err := fixtures.CreateTestAccount(false)
		require.NoError(t, err)
		staff, err := fixtures.CreateTestAccount(true)
		require.NoError(t, err)

		active, err := fixtures.CreateTestProduct(owner.ID, nil, "Visible Teapot", 22.00)
		require.NoError(t, err)
		inactive, err := fixtures.CreateInactiveTestProduct(owner.ID, nil, "Hidden Teapot")
		require.NoError(t, err)

		t.Run("ActiveVisibleToAnonymous", func(t *testing.T) {
			result, err := productFlow.GetProduct(context.Background(), nil, active.ID)
			require.NoError(t, err)
			require.NotNil(t, result)
			assert.Equal(t, "Visible Teapot", result.Name)
		})

		t.Run("InactiveHiddenFromAnonymous", func(t *testing.T) {
			result, err := productFlow.GetProduct(context.Background(), nil, inactive.ID)
			require.Error(t, err)
			assert.Nil(t, result)
			assert.True(t, businessflow.IsProductNotFound(err))
		})

		t.Run("InactiveHiddenFromOwner", func(t *testing.T) {
			// Visibility is a staff privilege, ownership does not grant it
			result, err := productFlow.GetProduct(context.Background(), owner, inactive.ID)
			require.Error(t, err)
			assert.Nil(t, result)
			assert.True(t, businessflow.IsProductNotFound(err))
		})

		t.Run("InactiveVisibleToStaff", func(t *testing.T) {
			result, err := productFlow.GetProduct(context.Background(), staff, inactive.ID)
			require.NoError(t, err)
			require.NotNil(t, result)
			assert.Equal(t, "Hidden Teapot", result.Name)
		})

		t.Run("NotFound", func(t *testing.T) {
			result, err := productFlow.GetProduct(context.Background(), nil, 999999)
			require.Error(t, err)
			assert.Nil(t, result)
			assert.True(t, businessflow.IsProductNotFound(err))
		})

		return nil
	})
	require.NoError(t, err)
}

func TestListProducts(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)
		productFlow := newProductFlow(testDB)

		owner, err := fixtures.CreateTestAccount(false)
		require.NoError(t, err)
		staff, err := fixtures.CreateTestAccount(true)
		require.NoError(t, err)
		category, err := fixtures.CreateTestCategory("Cookware")
		require.NoError(t, err)

		_, err = fixtures.CreateTestProduct(owner.ID, &category.ID, "Iron Skillet", 35.00)
		require.NoError(t, err)
		_, err = fixtures.CreateTestProduct(owner.ID, nil, "Bamboo Steamer", 15.00)
		require.NoError(t, err)
		_, err = fixtures.CreateInactiveTestProduct(owner.ID, &category.ID, "Rusty Skillet")
		require.NoError(t, err)

		t.Run("AnonymousSeesActiveOnly", func(t *testing.T) {
			result, err := productFlow.ListProducts(context.Background(), nil, &dto.ProductListQueryParams{})
			require.NoError(t, err)
			assert.Len(t, result.Items, 2)
			assert.Equal(t, int64(2), result.Pagination.Total)
		})

		t.Run("StaffSeesAll", func(t *testing.T) {
			result, err := productFlow.ListProducts(context.Background(), staff, &dto.ProductListQueryParams{})
			require.NoError(t, err)
			assert.Len(t, result.Items, 3)
			assert.Equal(t, int64(3), result.Pagination.Total)
		})

		t.Run("CategoryFilter", func(t *testing.T) {
			result, err := productFlow.ListProducts(context.Background(), nil, &dto.ProductListQueryParams{
				Category: fmt.Sprintf("%d", category.ID),
			})
			require.NoError(t, err)
			require.Len(t, result.Items, 1)
			assert.Equal(t, "Iron Skillet", result.Items[0].Name)
		})

		t.Run("NonNumericCategoryIgnored", func(t *testing.T) {
			result, err := productFlow.ListProducts(context.Background(), nil, &dto.ProductListQueryParams{
				Category: "cookware",
			})
			require.NoError(t, err)
			assert.Len(t, result.Items, 2)
		})

		t.Run("Search", func(t *testing.T) {
			result, err := productFlow.ListProducts(context.Background(), nil, &dto.ProductListQueryParams{
				Search: "skillet",
			})
			require.NoError(t, err)
			require.Len(t, result.Items, 1)
			assert.Equal(t, "Iron Skillet", result.Items[0].Name)
		})

		t.Run("OrderByPriceAscending", func(t *testing.T) {
			result, err := productFlow.ListProducts(context.Background(), nil, &dto.ProductListQueryParams{
				Ordering: "price",
			})
			require.NoError(t, err)
			require.Len(t, result.Items, 2)
			assert.Equal(t, "Bamboo Steamer", result.Items[0].Name)
			assert.Equal(t, "Iron Skillet", result.Items[1].Name)
		})

		t.Run("Pagination", func(t *testing.T) {
			result, err := productFlow.ListProducts(context.Background(), nil, &dto.ProductListQueryParams{
				Ordering: "name",
				Page:     2,
				PageSize: 1,
			})
			require.NoError(t, err)
			require.Len(t, result.Items, 1)
			assert.Equal(t, "Iron Skillet", result.Items[0].Name)
			assert.Equal(t, int64(2), result.Pagination.Total)
			assert.Equal(t, 2, result.Pagination.TotalPages)
		})

		t.Run("InvalidPageSize", func(t *testing.T) {
			result, err := productFlow.ListProducts(context.Background(), nil, &dto.ProductListQueryParams{
				PageSize: utils.MaxPageSize + 1,
			})
			require.Error(t, err)
			assert.Nil(t, result)
			assert.True(t, businessflow.IsInvalidPageSize(err))
		})

		return nil
	})
	require.NoError(t, err)
}

func TestUpdateProduct(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)
		productRepo := repository.NewProductRepository(testDB.DB)
		productFlow := businessflow.NewProductFlow(
			productRepo,
			repository.NewCategoryRepository(testDB.DB),
			repository.NewAuditLogRepository(testDB.DB),
			testDB.DB,
		)

		owner, err := fixtures.CreateTestAccount(false)
		require.NoError(t, err)
		other, err := fixtures.CreateTestAccount(false)
		require.NoError(t, err)
		staff, err := fixtures.CreateTestAccount(true)
		require.NoError(t, err)

		product, err := fixtures.CreateTestProduct(owner.ID, nil, "Cast Iron Pot", 45.00)
		require.NoError(t, err)

		t.Run("OwnerCanUpdate", func(t *testing.T) {
			req := &dto.ProductRequest{
				Name:  "Enameled Cast Iron Pot",
				Price: 55.00,
				Stock: 8,
			}

			result, err := productFlow.UpdateProduct(context.Background(), owner, product.ID, req, newTestMetadata())
			require.NoError(t, err)
			require.NotNil(t, result)
			assert.Equal(t, "Enameled Cast Iron Pot", result.Name)
			assert.Equal(t, 55.00, result.Price)

			// The slug was assigned at creation and never changes
			assert.Equal(t, product.Slug, result.Slug)
		})

		t.Run("OtherUserForbidden", func(t *testing.T) {
			req := &dto.ProductRequest{Name: "Hijacked Pot", Price: 1.00}

			result, err := productFlow.UpdateProduct(context.Background(), other, product.ID, req, newTestMetadata())
			require.Error(t, err)
			assert.Nil(t, result)
			assert.True(t, businessflow.IsForbidden(err))
		})

		t.Run("StaffCanUpdate", func(t *testing.T) {
			req := &dto.ProductRequest{
				Name:  "Moderated Pot",
				Price: 50.00,
				Stock: 8,
			}

			result, err := productFlow.UpdateProduct(context.Background(), staff, product.ID, req, newTestMetadata())
			require.NoError(t, err)
			assert.Equal(t, "Moderated Pot", result.Name)

			// Ownership does not move to the staff editor
			refreshed, err := productRepo.ByID(context.Background(), product.ID)
			require.NoError(t, err)
			require.NotNil(t, refreshed)
			assert.Equal(t, owner.ID, refreshed.OwnerID)
		})

		t.Run("AnonymousDenied", func(t *testing.T) {
			req := &dto.ProductRequest{Name: "Ghost Edit", Price: 1.00}

			result, err := productFlow.UpdateProduct(context.Background(), nil, product.ID, req, newTestMetadata())
			require.Error(t, err)
			assert.Nil(t, result)
			assert.True(t, businessflow.IsNotAuthenticated(err))
		})

		t.Run("NotFound", func(t *testing.T) {
			req := &dto.ProductRequest{Name: "Missing Pot", Price: 1.00}

			result, err := productFlow.UpdateProduct(context.Background(), owner, 999999, req, newTestMetadata())
			require.Error(t, err)
			assert.Nil(t, result)
			assert.True(t, businessflow.IsProductNotFound(err))
		})

		return nil
	})
	require.NoError(t, err)
}

func TestDeleteProduct(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)
		productRepo := repository.NewProductRepository(testDB.DB)
		productFlow := businessflow.NewProductFlow(
			productRepo,
			repository.NewCategoryRepository(testDB.DB),
			repository.NewAuditLogRepository(testDB.DB),
			testDB.DB,
		)

		owner, err := fixtures.CreateTestAccount(false)
		require.NoError(t, err)
		other, err := fixtures.CreateTestAccount(false)
		require.NoError(t, err)
		staff, err := fixtures.CreateTestAccount(true)
		require.NoError(t, err)

		t.Run("OtherUserForbidden", func(t *testing.T) {
			product, err := fixtures.CreateTestProduct(owner.ID, nil, "Guarded Pan", 20.00)
			require.NoError(t, err)

			err = productFlow.DeleteProduct(context.Background(), other, product.ID, newTestMetadata())
			require.Error(t, err)
			assert.True(t, businessflow.IsForbidden(err))

			still, err := productRepo.ByID(context.Background(), product.ID)
			require.NoError(t, err)
			assert.NotNil(t, still)
		})

		t.Run("OwnerCanDelete", func(t *testing.T) {
			product, err := fixtures.CreateTestProduct(owner.ID, nil, "Owned Pan", 20.00)
			require.NoError(t, err)

			err = productFlow.DeleteProduct(context.Background(), owner, product.ID, newTestMetadata())
			require.NoError(t, err)

			gone, err := productRepo.ByID(context.Background(), product.ID)
			require.NoError(t, err)
			assert.Nil(t, gone)
		})

		t.Run("StaffCanDelete", func(t *testing.T) {
			product, err := fixtures.CreateTestProduct(owner.ID, nil, "Moderated Pan", 20.00)
			require.NoError(t, err)

			err = productFlow.DeleteProduct(context.Background(), staff, product.ID, newTestMetadata())
			require.NoError(t, err)

			gone, err := productRepo.ByID(context.Background(), product.ID)
			require.NoError(t, err)
			assert.Nil(t, gone)
		})

		t.Run("AnonymousDenied", func(t *testing.T) {
			product, err := fixtures.CreateTestProduct(owner.ID, nil, "Public Pan", 20.00)
			require.NoError(t, err)

			err = productFlow.DeleteProduct(context.Background(), nil, product.ID, newTestMetadata())
			require.Error(t, err)
			assert.True(t, businessflow.IsNotAuthenticated(err))
		})

		t.Run("NotFound", func(t *testing.T) {
			err := productFlow.DeleteProduct(context.Background(), owner, 999999, newTestMetadata())
			require.Error(t, err)
			assert.True(t, businessflow.IsProductNotFound(err))
		})

		return nil
	})
	require.NoError(t, err)
}

func TestExportCatalog(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)
		auditRepo := repository.NewAuditLogRepository(testDB.DB)
		productFlow := businessflow.NewProductFlow(
			repository.NewProductRepository(testDB.DB),
			repository.NewCategoryRepository(testDB.DB),
			auditRepo,
			testDB.DB,
		)

		owner, err := fixtures.CreateTestAccount(false)
		require.NoError(t, err)
		staff, err := fixtures.CreateTestAccount(true)
		require.NoError(t, err)

		category, err := fixtures.CreateTestCategory("Exports")
		require.NoError(t, err)
		_, err = fixtures.CreateTestProduct(owner.ID, &category.ID, "Export Mug", 9.99)
		require.NoError(t, err)
		_, err = fixtures.CreateInactiveTestProduct(owner.ID, nil, "Export Draft")
		require.NoError(t, err)

		t.Run("StaffExport", func(t *testing.T) {
			filename, content, err := productFlow.ExportCatalog(context.Background(), staff, newTestMetadata())
			require.NoError(t, err)
			assert.True(t, strings.HasPrefix(filename, "catalog_"))
			assert.True(t, strings.HasSuffix(filename, ".xlsx"))
			assert.NotEmpty(t, content)

			// xlsx files are zip archives
			assert.Equal(t, byte('P'), content[0])
			assert.Equal(t, byte('K'), content[1])

			auditLogs, err := auditRepo.ByFilter(context.Background(), models.AuditLogFilter{
				AccountID: &staff.ID,
				Action:    utils.ToPtr(models.AuditActionCatalogExported),
			}, "", 0, 0)
			require.NoError(t, err)
			require.Len(t, auditLogs, 1)
			assert.True(t, utils.IsTrue(auditLogs[0].Success))
		})

		t.Run("NonStaffForbidden", func(t *testing.T) {
			filename, content, err := productFlow.ExportCatalog(context.Background(), owner, newTestMetadata())
			require.Error(t, err)
			assert.Empty(t, filename)
			assert.Nil(t, content)
			assert.True(t, businessflow.IsForbidden(err))
		})

		t.Run("AnonymousDenied", func(t *testing.T) {
			_, _, err := productFlow.ExportCatalog(context.Background(), nil, newTestMetadata())
			require.Error(t, err)
			assert.True(t, businessflow.IsNotAuthenticated(err))
		})

		return nil
	})
	require.NoError(t, err)
}
