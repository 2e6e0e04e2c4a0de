package tests

import (
	"context"
	"fmt"
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

func newCategoryFlow(testDB *testingutil.TestDB) businessflow.CategoryFlow {
	return businessflow.NewCategoryFlow(
		repository.NewCategoryRepository(testDB.DB),
		repository.NewProductRepository(testDB.DB),
		repository.NewAuditLogRepository(testDB.DB),
		testDB.DB,
	)
}

func TestCreateCategory(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)
		categoryFlow := newCategoryFlow(testDB)

		principal, err := fixtures.CreateTestAccount(false)
		require.NoError(t, err)

		t.Run("DerivedSlug", func(t *testing.T) {
			req := &dto.CategoryRequest{
				Name:        "Board Games",
				Description: "Tabletop and card games",
			}

			result, err := categoryFlow.CreateCategory(context.Background(), principal, req, newTestMetadata())
			require.NoError(t, err)
			require.NotNil(t, result)
			assert.Equal(t, "Board Games", result.Name)
			assert.Equal(t, "board-games", result.Slug)
			assert.Equal(t, int64(0), result.ProductsCount)
			assert.Nil(t, result.ParentID)
		})

		t.Run("SuppliedSlugKept", func(t *testing.T) {
			req := &dto.CategoryRequest{
				Name: "Jigsaw Puzzles",
				Slug: "puzzles",
			}

			result, err := categoryFlow.CreateCategory(context.Background(), principal, req, newTestMetadata())
			require.NoError(t, err)
			assert.Equal(t, "puzzles", result.Slug)
		})

		t.Run("AnonymousDenied", func(t *testing.T) {
			req := &dto.CategoryRequest{Name: "Anonymous Attempt"}

			result, err := categoryFlow.CreateCategory(context.Background(), nil, req, newTestMetadata())
			require.Error(t, err)
			assert.Nil(t, result)
			assert.True(t, businessflow.IsNotAuthenticated(err))
		})

		t.Run("InactiveAccountDenied", func(t *testing.T) {
			inactive, err := fixtures.CreateInactiveTestAccount()
			require.NoError(t, err)

			req := &dto.CategoryRequest{Name: "Inactive Attempt"}

			result, err := categoryFlow.CreateCategory(context.Background(), inactive, req, newTestMetadata())
			require.Error(t, err)
			assert.Nil(t, result)
			assert.True(t, businessflow.IsAccountInactive(err))
		})

		t.Run("NameTooShort", func(t *testing.T) {
			req := &dto.CategoryRequest{Name: " A "}

			result, err := categoryFlow.CreateCategory(context.Background(), principal, req, newTestMetadata())
			require.Error(t, err)
			assert.Nil(t, result)
			assert.True(t, businessflow.IsCategoryNameTooShort(err))
		})

		t.Run("DuplicateNameCaseInsensitive", func(t *testing.T) {
			req := &dto.CategoryRequest{Name: "BOARD games"}

			result, err := categoryFlow.CreateCategory(context.Background(), principal, req, newTestMetadata())
			require.Error(t, err)
			assert.Nil(t, result)
			assert.True(t, businessflow.IsCategoryNameTaken(err))
		})

		t.Run("DuplicateSlugRejected", func(t *testing.T) {
			// "Board Games 2" would not collide, but the supplied slug does.
			// Category slugs are never suffixed; the request is refused.
			req := &dto.CategoryRequest{
				Name: "Board Games 2",
				Slug: "board-games",
			}

			result, err := categoryFlow.CreateCategory(context.Background(), principal, req, newTestMetadata())
			require.Error(t, err)
			assert.Nil(t, result)
			assert.True(t, businessflow.IsCategorySlugTaken(err))
		})

		t.Run("DerivedSlugCollisionRejected", func(t *testing.T) {
			_, err := fixtures.CreateTestCategory("Tea Pots")
			require.NoError(t, err)

			req := &dto.CategoryRequest{Name: "Tea  Pots!"}

			result, err := categoryFlow.CreateCategory(context.Background(), principal, req, newTestMetadata())
			require.Error(t, err)
			assert.Nil(t, result)
			assert.True(t, businessflow.IsCategorySlugTaken(err))
		})

		t.Run("ParentNotFound", func(t *testing.T) {
			req := &dto.CategoryRequest{
				Name:     "Orphan",
				ParentID: utils.ToPtr(uint(999999)),
			}

			result, err := categoryFlow.CreateCategory(context.Background(), principal, req, newTestMetadata())
			require.Error(t, err)
			assert.Nil(t, result)
			assert.True(t, businessflow.IsParentCategoryNotFound(err))
		})

		t.Run("ValidParent", func(t *testing.T) {
			parent, err := fixtures.CreateTestCategory("Games")
			require.NoError(t, err)

			req := &dto.CategoryRequest{
				Name:     "Card Games",
				ParentID: &parent.ID,
			}

			result, err := categoryFlow.CreateCategory(context.Background(), principal, req, newTestMetadata())
			require.NoError(t, err)
			require.NotNil(t, result.ParentID)
			assert.Equal(t, parent.ID, *result.ParentID)
		})

		return nil
	})
	require.NoError(t, err)
}

func TestUpdateCategory(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)
		categoryFlow := newCategoryFlow(testDB)

		principal, err := fixtures.CreateTestAccount(false)
		require.NoError(t, err)

		category, err := fixtures.CreateTestCategory("Vinyl Records")
		require.NoError(t, err)

		t.Run("RenameKeepsSlug", func(t *testing.T) {
			req := &dto.CategoryRequest{
				Name:        "Records and Tapes",
				Description: "Analog audio",
			}

			result, err := categoryFlow.UpdateCategory(context.Background(), principal, category.ID, req, newTestMetadata())
			require.NoError(t, err)
			require.NotNil(t, result)
			assert.Equal(t, "Records and Tapes", result.Name)
			assert.Equal(t, "vinyl-records", result.Slug)
			assert.Equal(t, "Analog audio", result.Description)
		})

		t.Run("SelfParentRejected", func(t *testing.T) {
			req := &dto.CategoryRequest{
				Name:     "Records and Tapes",
				ParentID: &category.ID,
			}

			result, err := categoryFlow.UpdateCategory(context.Background(), principal, category.ID, req, newTestMetadata())
			require.Error(t, err)
			assert.Nil(t, result)
			assert.True(t, businessflow.IsParentCategoryNotFound(err))
		})

		t.Run("NotFound", func(t *testing.T) {
			req := &dto.CategoryRequest{Name: "Ghost"}

			result, err := categoryFlow.UpdateCategory(context.Background(), principal, 999999, req, newTestMetadata())
			require.Error(t, err)
			assert.Nil(t, result)
			assert.True(t, businessflow.IsCategoryNotFound(err))
		})

		t.Run("AnonymousDenied", func(t *testing.T) {
			req := &dto.CategoryRequest{Name: "Records and Tapes"}

			result, err := categoryFlow.UpdateCategory(context.Background(), nil, category.ID, req, newTestMetadata())
			require.Error(t, err)
			assert.Nil(t, result)
			assert.True(t, businessflow.IsNotAuthenticated(err))
		})

		return nil
	})
	require.NoError(t, err)
}

func TestListCategories(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)
		categoryFlow := newCategoryFlow(testDB)

		owner, err := fixtures.CreateTestAccount(false)
		require.NoError(t, err)

		ceramics, err := fixtures.CreateTestCategory("Ceramics")
		require.NoError(t, err)
		glassware, err := fixtures.CreateTestCategory("Glassware")
		require.NoError(t, err)
		_, err = fixtures.CreateTestCategory("Woodwork")
		require.NoError(t, err)

		for i := 0; i < 3; i++ {
			_, err = fixtures.CreateTestProduct(owner.ID, &ceramics.ID, fmt.Sprintf("Bowl %d", i), 25.00)
			require.NoError(t, err)
		}
		_, err = fixtures.CreateTestProduct(owner.ID, &glassware.ID, "Tumbler", 12.50)
		require.NoError(t, err)
		_, err = fixtures.CreateInactiveTestProduct(owner.ID, &ceramics.ID, "Cracked Vase")
		require.NoError(t, err)

		t.Run("DefaultListing", func(t *testing.T) {
			result, err := categoryFlow.ListCategories(context.Background(), nil, &dto.CategoryListQueryParams{})
			require.NoError(t, err)
			require.Len(t, result.Items, 3)
			assert.Equal(t, int64(3), result.Pagination.Total)
			assert.Equal(t, 1, result.Pagination.Page)
			assert.Equal(t, utils.DefaultPageSize, result.Pagination.PageSize)

			// Default ordering is by name; counts include inactive products
			assert.Equal(t, "Ceramics", result.Items[0].Name)
			assert.Equal(t, int64(4), result.Items[0].ProductsCount)
			assert.Equal(t, "Glassware", result.Items[1].Name)
			assert.Equal(t, int64(1), result.Items[1].ProductsCount)
			assert.Equal(t, "Woodwork", result.Items[2].Name)
			assert.Equal(t, int64(0), result.Items[2].ProductsCount)
		})

		t.Run("Search", func(t *testing.T) {
			result, err := categoryFlow.ListCategories(context.Background(), nil, &dto.CategoryListQueryParams{
				Search: "glass",
			})
			require.NoError(t, err)
			require.Len(t, result.Items, 1)
			assert.Equal(t, "Glassware", result.Items[0].Name)
		})

		t.Run("ProductCountBounds", func(t *testing.T) {
			result, err := categoryFlow.ListCategories(context.Background(), nil, &dto.CategoryListQueryParams{
				MinProducts: "1",
				MaxProducts: "2",
			})
			require.NoError(t, err)
			require.Len(t, result.Items, 1)
			assert.Equal(t, "Glassware", result.Items[0].Name)
		})

		t.Run("NonNumericBoundsIgnored", func(t *testing.T) {
			result, err := categoryFlow.ListCategories(context.Background(), nil, &dto.CategoryListQueryParams{
				MinProducts: "many",
				MaxProducts: "",
			})
			require.NoError(t, err)
			assert.Len(t, result.Items, 3)
		})

		t.Run("OrderByProductsCountDescending", func(t *testing.T) {
			result, err := categoryFlow.ListCategories(context.Background(), nil, &dto.CategoryListQueryParams{
				Ordering: "-products_count",
			})
			require.NoError(t, err)
			require.Len(t, result.Items, 3)
			assert.Equal(t, "Ceramics", result.Items[0].Name)
			assert.Equal(t, "Woodwork", result.Items[2].Name)
		})

		t.Run("UnknownOrderingFallsBack", func(t *testing.T) {
			result, err := categoryFlow.ListCategories(context.Background(), nil, &dto.CategoryListQueryParams{
				Ordering: "price",
			})
			require.NoError(t, err)
			require.Len(t, result.Items, 3)
			assert.Equal(t, "Ceramics", result.Items[0].Name)
		})

		t.Run("IncludeProductsHidesInactiveForAnonymous", func(t *testing.T) {
			result, err := categoryFlow.ListCategories(context.Background(), nil, &dto.CategoryListQueryParams{
				IncludeProducts: "true",
			})
			require.NoError(t, err)
			require.Len(t, result.Items, 3)
			assert.Len(t, result.Items[0].Products, 3) // Ceramics, inactive vase hidden
			assert.Len(t, result.Items[1].Products, 1)
			assert.Empty(t, result.Items[2].Products)
		})

		t.Run("IncludeProductsShowsInactiveForStaff", func(t *testing.T) {
			staff, err := fixtures.CreateTestAccount(true)
			require.NoError(t, err)

			result, err := categoryFlow.ListCategories(context.Background(), staff, &dto.CategoryListQueryParams{
				IncludeProducts: "1",
			})
			require.NoError(t, err)
			require.Len(t, result.Items, 3)
			assert.Len(t, result.Items[0].Products, 4)
		})

		t.Run("Pagination", func(t *testing.T) {
			result, err := categoryFlow.ListCategories(context.Background(), nil, &dto.CategoryListQueryParams{
				Page:     2,
				PageSize: 2,
			})
			require.NoError(t, err)
			require.Len(t, result.Items, 1)
			assert.Equal(t, int64(3), result.Pagination.Total)
			assert.Equal(t, 2, result.Pagination.TotalPages)
			assert.Equal(t, "Woodwork", result.Items[0].Name)
		})

		t.Run("InvalidPage", func(t *testing.T) {
			result, err := categoryFlow.ListCategories(context.Background(), nil, &dto.CategoryListQueryParams{
				Page: -1,
			})
			require.Error(t, err)
			assert.Nil(t, result)
			assert.True(t, businessflow.IsInvalidPage(err))
		})

		t.Run("InvalidPageSize", func(t *testing.T) {
			result, err := categoryFlow.ListCategories(context.Background(), nil, &dto.CategoryListQueryParams{
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

func TestGetCategory(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)
		categoryFlow := newCategoryFlow(testDB)

		owner, err := fixtures.CreateTestAccount(false)
		require.NoError(t, err)
		category, err := fixtures.CreateTestCategory("Lanterns")
		require.NoError(t, err)
		_, err = fixtures.CreateTestProduct(owner.ID, &category.ID, "Paper Lantern", 18.00)
		require.NoError(t, err)
		_, err = fixtures.CreateInactiveTestProduct(owner.ID, &category.ID, "Broken Lantern")
		require.NoError(t, err)

		t.Run("WithProductsCount", func(t *testing.T) {
			result, err := categoryFlow.GetCategory(context.Background(), nil, category.ID, false)
			require.NoError(t, err)
			require.NotNil(t, result)
			assert.Equal(t, "Lanterns", result.Name)
			assert.Equal(t, int64(2), result.ProductsCount)
			assert.Empty(t, result.Products)
		})

		t.Run("WithNestedProducts", func(t *testing.T) {
			result, err := categoryFlow.GetCategory(context.Background(), nil, category.ID, true)
			require.NoError(t, err)
			require.Len(t, result.Products, 1)
			assert.Equal(t, "Paper Lantern", result.Products[0].Name)
		})

		t.Run("NotFound", func(t *testing.T) {
			result, err := categoryFlow.GetCategory(context.Background(), nil, 999999, false)
			require.Error(t, err)
			assert.Nil(t, result)
			assert.True(t, businessflow.IsCategoryNotFound(err))
		})

		return nil
	})
	require.NoError(t, err)
}

func TestDeleteCategory(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)
		categoryRepo := repository.NewCategoryRepository(testDB.DB)
		productRepo := repository.NewProductRepository(testDB.DB)
		auditRepo := repository.NewAuditLogRepository(testDB.DB)
		categoryFlow := businessflow.NewCategoryFlow(categoryRepo, productRepo, auditRepo, testDB.DB)

		principal, err := fixtures.CreateTestAccount(false)
		require.NoError(t, err)

		t.Run("EmptyCategoryDeleted", func(t *testing.T) {
			category, err := fixtures.CreateTestCategory("Empty Shelf")
			require.NoError(t, err)

			err = categoryFlow.DeleteCategory(context.Background(), principal, category.ID,
				businessflow.DeleteCategoryOptions{}, newTestMetadata())
			require.NoError(t, err)

			gone, err := categoryRepo.ByID(context.Background(), category.ID)
			require.NoError(t, err)
			assert.Nil(t, gone)

			auditLogs, err := auditRepo.ByFilter(context.Background(), models.AuditLogFilter{
				AccountID: &principal.ID,
				Action:    utils.ToPtr(models.AuditActionCategoryDeleted),
			}, "", 0, 0)
			require.NoError(t, err)
			require.Len(t, auditLogs, 1)
			assert.True(t, utils.IsTrue(auditLogs[0].Success))
		})

		t.Run("PopulatedWithoutModifier", func(t *testing.T) {
			category, err := fixtures.CreateTestCategory("Stoneware")
			require.NoError(t, err)
			_, err = fixtures.CreateTestProduct(principal.ID, &category.ID, "Stone Mug", 14.00)
			require.NoError(t, err)

			err = categoryFlow.DeleteCategory(context.Background(), principal, category.ID,
				businessflow.DeleteCategoryOptions{}, newTestMetadata())
			require.Error(t, err)
			assert.True(t, businessflow.IsCategoryHasProducts(err))

			// Nothing was removed
			still, err := categoryRepo.ByID(context.Background(), category.ID)
			require.NoError(t, err)
			assert.NotNil(t, still)
		})

		t.Run("DeleteProducts", func(t *testing.T) {
			category, err := fixtures.CreateTestCategory("Closeouts")
			require.NoError(t, err)
			product, err := fixtures.CreateTestProduct(principal.ID, &category.ID, "Last Unit", 5.00)
			require.NoError(t, err)

			err = categoryFlow.DeleteCategory(context.Background(), principal, category.ID,
				businessflow.DeleteCategoryOptions{DeleteProducts: true}, newTestMetadata())
			require.NoError(t, err)

			gone, err := categoryRepo.ByID(context.Background(), category.ID)
			require.NoError(t, err)
			assert.Nil(t, gone)

			removed, err := productRepo.ByID(context.Background(), product.ID)
			require.NoError(t, err)
			assert.Nil(t, removed)
		})

		t.Run("ReassignTo", func(t *testing.T) {
			source, err := fixtures.CreateTestCategory("Seasonal")
			require.NoError(t, err)
			target, err := fixtures.CreateTestCategory("Clearance")
			require.NoError(t, err)
			product, err := fixtures.CreateTestProduct(principal.ID, &source.ID, "Winter Kettle", 30.00)
			require.NoError(t, err)

			err = categoryFlow.DeleteCategory(context.Background(), principal, source.ID,
				businessflow.DeleteCategoryOptions{ReassignTo: fmt.Sprintf("%d", target.ID)}, newTestMetadata())
			require.NoError(t, err)

			moved, err := productRepo.ByID(context.Background(), product.ID)
			require.NoError(t, err)
			require.NotNil(t, moved)
			require.NotNil(t, moved.CategoryID)
			assert.Equal(t, target.ID, *moved.CategoryID)
		})

		t.Run("ConflictingModifiers", func(t *testing.T) {
			category, err := fixtures.CreateTestCategory("Conflicted")
			require.NoError(t, err)

			err = categoryFlow.DeleteCategory(context.Background(), principal, category.ID,
				businessflow.DeleteCategoryOptions{DeleteProducts: true, ReassignTo: "1"}, newTestMetadata())
			require.Error(t, err)
			assert.True(t, businessflow.IsConflictingDeleteParams(err))
		})

		t.Run("ReassignTargetInvalid", func(t *testing.T) {
			category, err := fixtures.CreateTestCategory("Bad Target")
			require.NoError(t, err)
			_, err = fixtures.CreateTestProduct(principal.ID, &category.ID, "Stray Item", 2.00)
			require.NoError(t, err)

			err = categoryFlow.DeleteCategory(context.Background(), principal, category.ID,
				businessflow.DeleteCategoryOptions{ReassignTo: "abc"}, newTestMetadata())
			require.Error(t, err)
			assert.True(t, businessflow.IsReassignTargetInvalid(err))
		})

		t.Run("ReassignTargetIsSource", func(t *testing.T) {
			category, err := fixtures.CreateTestCategory("Self Loop")
			require.NoError(t, err)
			_, err = fixtures.CreateTestProduct(principal.ID, &category.ID, "Loop Item", 2.00)
			require.NoError(t, err)

			err = categoryFlow.DeleteCategory(context.Background(), principal, category.ID,
				businessflow.DeleteCategoryOptions{ReassignTo: fmt.Sprintf("%d", category.ID)}, newTestMetadata())
			require.Error(t, err)
			assert.True(t, businessflow.IsReassignTargetIsSource(err))
		})

		t.Run("ReassignTargetNotFound", func(t *testing.T) {
			category, err := fixtures.CreateTestCategory("Missing Target")
			require.NoError(t, err)
			_, err = fixtures.CreateTestProduct(principal.ID, &category.ID, "Misc Item", 2.00)
			require.NoError(t, err)

			err = categoryFlow.DeleteCategory(context.Background(), principal, category.ID,
				businessflow.DeleteCategoryOptions{ReassignTo: "999999"}, newTestMetadata())
			require.Error(t, err)
			assert.True(t, businessflow.IsReassignTargetNotFound(err))
		})

		t.Run("AnonymousDenied", func(t *testing.T) {
			category, err := fixtures.CreateTestCategory("Protected")
			require.NoError(t, err)

			err = categoryFlow.DeleteCategory(context.Background(), nil, category.ID,
				businessflow.DeleteCategoryOptions{}, newTestMetadata())
			require.Error(t, err)
			assert.True(t, businessflow.IsNotAuthenticated(err))
		})

		t.Run("NotFound", func(t *testing.T) {
			err := categoryFlow.DeleteCategory(context.Background(), principal, 999999,
				businessflow.DeleteCategoryOptions{}, newTestMetadata())
			require.Error(t, err)
			assert.True(t, businessflow.IsCategoryNotFound(err))
		})

		return nil
	})
	require.NoError(t, err)
}

func TestListCategoryProducts(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)
		categoryFlow := newCategoryFlow(testDB)

		owner, err := fixtures.CreateTestAccount(false)
		require.NoError(t, err)
		staff, err := fixtures.CreateTestAccount(true)
		require.NoError(t, err)

		category, err := fixtures.CreateTestCategory("Kitchenware")
		require.NoError(t, err)
		_, err = fixtures.CreateTestProduct(owner.ID, &category.ID, "Whisk", 6.00)
		require.NoError(t, err)
		_, err = fixtures.CreateInactiveTestProduct(owner.ID, &category.ID, "Retired Whisk")
		require.NoError(t, err)

		t.Run("AnonymousSeesActiveOnly", func(t *testing.T) {
			result, err := categoryFlow.ListCategoryProducts(context.Background(), nil, category.ID, 0, 0)
			require.NoError(t, err)
			require.Len(t, result.Items, 1)
			assert.Equal(t, "Whisk", result.Items[0].Name)
			assert.Equal(t, int64(1), result.Pagination.Total)
		})

		t.Run("StaffSeesAll", func(t *testing.T) {
			result, err := categoryFlow.ListCategoryProducts(context.Background(), staff, category.ID, 0, 0)
			require.NoError(t, err)
			assert.Len(t, result.Items, 2)
			assert.Equal(t, int64(2), result.Pagination.Total)
		})

		t.Run("CategoryNotFound", func(t *testing.T) {
			result, err := categoryFlow.ListCategoryProducts(context.Background(), nil, 999999, 0, 0)
			require.Error(t, err)
			assert.Nil(t, result)
			assert.True(t, businessflow.IsCategoryNotFound(err))
		})

		return nil
	})
	require.NoError(t, err)
}
