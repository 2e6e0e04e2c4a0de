package businessflow

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/amirphl/Takaramono/app/dto"
	"github.com/amirphl/Takaramono/models"
	"github.com/amirphl/Takaramono/repository"
	"github.com/amirphl/Takaramono/utils"
	"gorm.io/gorm"
)

// DeleteCategoryOptions carries the deletion-policy modifiers taken from
// the query string. ReassignTo holds the raw value so the flow can
// distinguish a malformed id from an absent one.
type DeleteCategoryOptions struct {
	DeleteProducts bool
	ReassignTo     string
}

// CategoryFlow handles catalog category use cases
type CategoryFlow interface {
	ListCategories(ctx context.Context, principal *models.Account, params *dto.CategoryListQueryParams) (*dto.CategoryListResponse, error)
	GetCategory(ctx context.Context, principal *models.Account, id uint, includeProducts bool) (*dto.CategoryDTO, error)
	CreateCategory(ctx context.Context, principal *models.Account, request *dto.CategoryRequest, metadata *ClientMetadata) (*dto.CategoryDTO, error)
	UpdateCategory(ctx context.Context, principal *models.Account, id uint, request *dto.CategoryRequest, metadata *ClientMetadata) (*dto.CategoryDTO, error)
	DeleteCategory(ctx context.Context, principal *models.Account, id uint, opts DeleteCategoryOptions, metadata *ClientMetadata) error
	ListCategoryProducts(ctx context.Context, principal *models.Account, id uint, page, pageSize int) (*dto.ProductListResponse, error)
}

// CategoryFlowImpl implements the category business flow
type CategoryFlowImpl struct {
	categoryRepo repository.CategoryRepository
	productRepo  repository.ProductRepository
	auditRepo    repository.AuditLogRepository
	db           *gorm.DB
}

// NewCategoryFlow creates a new category flow instance
func NewCategoryFlow(
	categoryRepo repository.CategoryRepository,
	productRepo repository.ProductRepository,
	auditRepo repository.AuditLogRepository,
	db *gorm.DB,
) CategoryFlow {
	return &CategoryFlowImpl{
		categoryRepo: categoryRepo,
		productRepo:  productRepo,
		auditRepo:    auditRepo,
		db:           db,
	}
}

// categoryOrderingKeys is the whitelist of ordering values accepted from
// the query string. Anything else falls back to the default.
var categoryOrderingKeys = map[string]bool{
	"name": true, "-name": true,
	"created_at": true, "-created_at": true,
	"products_count": true, "-products_count": true,
}

// ListCategories returns a page of categories annotated with product counts
func (cf *CategoryFlowImpl) ListCategories(ctx context.Context, principal *models.Account, params *dto.CategoryListQueryParams) (*dto.CategoryListResponse, error) {
	pagination, err := NormalizePagination(params.Page, params.PageSize)
	if err != nil {
		return nil, NewBusinessError("LIST_CATEGORIES_VALIDATION_FAILED", "Category listing validation failed", err)
	}

	query := repository.CategoryListQuery{
		Search:  strings.TrimSpace(params.Search),
		OrderBy: normalizeCategoryOrdering(params.Ordering),
		Limit:   pagination.Limit(),
		Offset:  pagination.Offset(),
	}

	// Non-numeric bounds are silently ignored
	if v, err := strconv.Atoi(strings.TrimSpace(params.MinProducts)); err == nil {
		query.MinProducts = &v
	}
	if v, err := strconv.Atoi(strings.TrimSpace(params.MaxProducts)); err == nil {
		query.MaxProducts = &v
	}

	categories, total, err := cf.categoryRepo.List(ctx, query)
	if err != nil {
		return nil, NewBusinessError("LIST_CATEGORIES_FAILED", "Failed to list categories", err)
	}

	includeProducts := isQueryFlagSet(params.IncludeProducts)

	items := make([]dto.CategoryDTO, 0, len(categories))
	for _, category := range categories {
		item := ToCategoryDTO(*category)
		if includeProducts {
			nested, err := cf.nestedProducts(ctx, principal, category.ID)
			if err != nil {
				return nil, NewBusinessError("LIST_CATEGORIES_FAILED", "Failed to load category products", err)
			}
			item.Products = nested
		}
		items = append(items, item)
	}

	return &dto.CategoryListResponse{
		Items:      items,
		Pagination: pagination.ToDTO(total),
	}, nil
}

// GetCategory returns a single category with its product count
func (cf *CategoryFlowImpl) GetCategory(ctx context.Context, principal *models.Account, id uint, includeProducts bool) (*dto.CategoryDTO, error) {
	category, err := cf.categoryRepo.ByIDAnnotated(ctx, id)
	if err != nil {
		return nil, NewBusinessError("GET_CATEGORY_FAILED", "Failed to get category", err)
	}
	if category == nil {
		return nil, NewBusinessError("GET_CATEGORY_FAILED", "Category not found", ErrCategoryNotFound)
	}

	item := ToCategoryDTO(*category)
	if includeProducts {
		nested, err := cf.nestedProducts(ctx, principal, category.ID)
		if err != nil {
			return nil, NewBusinessError("GET_CATEGORY_FAILED", "Failed to load category products", err)
		}
		item.Products = nested
	}

	return &item, nil
}

// CreateCategory validates and stores a new category
func (cf *CategoryFlowImpl) CreateCategory(ctx context.Context, principal *models.Account, request *dto.CategoryRequest, metadata *ClientMetadata) (*dto.CategoryDTO, error) {
	if decision := CanModifyCatalog(principal); !decision.Allowed {
		return nil, NewBusinessError("CREATE_CATEGORY_DENIED", "Category creation denied", decision.Reason)
	}

	category := &models.Category{}
	if err := cf.applyCategoryRequest(ctx, category, request); err != nil {
		return nil, NewBusinessError("CREATE_CATEGORY_VALIDATION_FAILED", "Category validation failed", err)
	}

	if err := cf.categoryRepo.Save(ctx, category); err != nil {
		return nil, NewBusinessError("CREATE_CATEGORY_FAILED", "Failed to create category", err)
	}

	item := ToCategoryDTO(*category)
	return &item, nil
}

// UpdateCategory validates and stores changes to an existing category
func (cf *CategoryFlowImpl) UpdateCategory(ctx context.Context, principal *models.Account, id uint, request *dto.CategoryRequest, metadata *ClientMetadata) (*dto.CategoryDTO, error) {
	if decision := CanModifyCatalog(principal); !decision.Allowed {
		return nil, NewBusinessError("UPDATE_CATEGORY_DENIED", "Category update denied", decision.Reason)
	}

	category, err := cf.categoryRepo.ByID(ctx, id)
	if err != nil {
		return nil, NewBusinessError("UPDATE_CATEGORY_FAILED", "Failed to get category", err)
	}
	if category == nil {
		return nil, NewBusinessError("UPDATE_CATEGORY_FAILED", "Category not found", ErrCategoryNotFound)
	}

	if err := cf.applyCategoryRequest(ctx, category, request); err != nil {
		return nil, NewBusinessError("UPDATE_CATEGORY_VALIDATION_FAILED", "Category validation failed", err)
	}

	category.UpdatedAt = utils.UTCNow()
	if err := cf.categoryRepo.Update(ctx, category); err != nil {
		return nil, NewBusinessError("UPDATE_CATEGORY_FAILED", "Failed to update category", err)
	}

	updated, err := cf.categoryRepo.ByIDAnnotated(ctx, category.ID)
	if err != nil || updated == nil {
		item := ToCategoryDTO(*category)
		return &item, nil
	}

	item := ToCategoryDTO(*updated)
	return &item, nil
}

// DeleteCategory applies the deletion policy: an empty category is
// removed outright; a populated one requires exactly one of the
// delete_products or reassign_to modifiers, and the batch work happens
// inside one transaction so a failure leaves no partial state.
func (cf *CategoryFlowImpl) DeleteCategory(ctx context.Context, principal *models.Account, id uint, opts DeleteCategoryOptions, metadata *ClientMetadata) error {
	if decision := CanModifyCatalog(principal); !decision.Allowed {
		return NewBusinessError("DELETE_CATEGORY_DENIED", "Category deletion denied", decision.Reason)
	}

	category, err := cf.categoryRepo.ByID(ctx, id)
	if err != nil {
		return NewBusinessError("DELETE_CATEGORY_FAILED", "Failed to get category", err)
	}
	if category == nil {
		return NewBusinessError("DELETE_CATEGORY_FAILED", "Category not found", ErrCategoryNotFound)
	}

	if opts.DeleteProducts && opts.ReassignTo != "" {
		return NewBusinessError("DELETE_CATEGORY_VALIDATION_FAILED", "Conflicting deletion modifiers", ErrConflictingDeleteParams)
	}

	count, err := cf.productRepo.CountByCategory(ctx, id)
	if err != nil {
		return NewBusinessError("DELETE_CATEGORY_FAILED", "Failed to count category products", err)
	}

	var removed int64
	switch {
	case count == 0:
		if err := cf.categoryRepo.Delete(ctx, category); err != nil {
			return NewBusinessError("DELETE_CATEGORY_FAILED", "Failed to delete category", err)
		}

	case opts.DeleteProducts:
		err := repository.WithTransaction(ctx, cf.db, func(txCtx context.Context) error {
			var err error
			removed, err = cf.productRepo.DeleteByCategory(txCtx, id)
			if err != nil {
				return err
			}
			return cf.categoryRepo.Delete(txCtx, category)
		})
		if err != nil {
			return NewBusinessError("DELETE_CATEGORY_FAILED", "Failed to delete category with products", err)
		}

	case opts.ReassignTo != "":
		target, err := cf.resolveReassignTarget(ctx, id, opts.ReassignTo)
		if err != nil {
			return err
		}

		err = repository.WithTransaction(ctx, cf.db, func(txCtx context.Context) error {
			var err error
			removed, err = cf.productRepo.ReassignCategory(txCtx, id, target.ID)
			if err != nil {
				return err
			}
			return cf.categoryRepo.Delete(txCtx, category)
		})
		if err != nil {
			return NewBusinessError("DELETE_CATEGORY_FAILED", "Failed to reassign category products", err)
		}

	default:
		return NewBusinessErrorf("DELETE_CATEGORY_BLOCKED",
			"Category has %d products; pass delete_products=true or reassign_to=<category id>",
			ErrCategoryHasProducts, count)
	}

	msg := fmt.Sprintf("Category %d (%s) deleted, %d products affected", category.ID, category.Name, removed)
	_ = cf.createAuditLog(ctx, principal, models.AuditActionCategoryDeleted, msg, true, nil, metadata)

	return nil
}

// ListCategoryProducts returns a page of the category's products
func (cf *CategoryFlowImpl) ListCategoryProducts(ctx context.Context, principal *models.Account, id uint, page, pageSize int) (*dto.ProductListResponse, error) {
	pagination, err := NormalizePagination(page, pageSize)
	if err != nil {
		return nil, NewBusinessError("LIST_CATEGORY_PRODUCTS_VALIDATION_FAILED", "Listing validation failed", err)
	}

	category, err := cf.categoryRepo.ByID(ctx, id)
	if err != nil {
		return nil, NewBusinessError("LIST_CATEGORY_PRODUCTS_FAILED", "Failed to get category", err)
	}
	if category == nil {
		return nil, NewBusinessError("LIST_CATEGORY_PRODUCTS_FAILED", "Category not found", ErrCategoryNotFound)
	}

	query := repository.ProductListQuery{
		CategoryID: &id,
		ActiveOnly: !SeesInactiveProducts(principal),
		Limit:      pagination.Limit(),
		Offset:     pagination.Offset(),
	}

	products, total, err := cf.productRepo.List(ctx, query)
	if err != nil {
		return nil, NewBusinessError("LIST_CATEGORY_PRODUCTS_FAILED", "Failed to list category products", err)
	}

	items := make([]dto.ProductDTO, 0, len(products))
	for _, product := range products {
		items = append(items, ToProductDTO(*product))
	}

	return &dto.ProductListResponse{
		Items:      items,
		Pagination: pagination.ToDTO(total),
	}, nil
}

// Private helper methods

// applyCategoryRequest validates the request and writes it onto the
// model. The slug is kept when the record already has one and none is
// supplied; a supplied or derived slug must be free or the request is
// rejected with a field-level error.
func (cf *CategoryFlowImpl) applyCategoryRequest(ctx context.Context, category *models.Category, request *dto.CategoryRequest) error {
	name := strings.TrimSpace(request.Name)
	if len([]rune(name)) < 2 {
		return ErrCategoryNameTooShort
	}

	taken, err := cf.categoryRepo.NameExists(ctx, name, category.ID)
	if err != nil {
		return err
	}
	if taken {
		return ErrCategoryNameTaken
	}

	slug := strings.TrimSpace(request.Slug)
	if slug == "" {
		slug = category.Slug
	}
	if slug == "" {
		slug = utils.Slugify(name)
	}

	taken, err = cf.categoryRepo.SlugExists(ctx, slug, category.ID)
	if err != nil {
		return err
	}
	if taken {
		return ErrCategorySlugTaken
	}

	if request.ParentID != nil {
		if category.ID != 0 && *request.ParentID == category.ID {
			return ErrParentCategoryNotFound
		}
		parent, err := cf.categoryRepo.ByID(ctx, *request.ParentID)
		if err != nil {
			return err
		}
		if parent == nil {
			return ErrParentCategoryNotFound
		}
	}

	category.Name = name
	category.Slug = slug
	category.Description = strings.TrimSpace(request.Description)
	category.ParentID = request.ParentID

	return nil
}

func (cf *CategoryFlowImpl) resolveReassignTarget(ctx context.Context, sourceID uint, raw string) (*models.Category, error) {
	targetID, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 32)
	if err != nil {
		return nil, NewBusinessError("DELETE_CATEGORY_VALIDATION_FAILED", "Invalid reassignment target", ErrReassignTargetInvalid)
	}

	if uint(targetID) == sourceID {
		return nil, NewBusinessError("DELETE_CATEGORY_VALIDATION_FAILED", "Invalid reassignment target", ErrReassignTargetIsSource)
	}

	target, err := cf.categoryRepo.ByID(ctx, uint(targetID))
	if err != nil {
		return nil, NewBusinessError("DELETE_CATEGORY_FAILED", "Failed to resolve reassignment target", err)
	}
	if target == nil {
		return nil, NewBusinessError("DELETE_CATEGORY_FAILED", "Reassignment target not found", ErrReassignTargetNotFound)
	}

	return target, nil
}

func (cf *CategoryFlowImpl) nestedProducts(ctx context.Context, principal *models.Account, categoryID uint) ([]dto.ProductBriefDTO, error) {
	query := repository.ProductListQuery{
		CategoryID: &categoryID,
		ActiveOnly: !SeesInactiveProducts(principal),
		OrderBy:    "name",
	}

	products, _, err := cf.productRepo.List(ctx, query)
	if err != nil {
		return nil, err
	}

	nested := make([]dto.ProductBriefDTO, 0, len(products))
	for _, product := range products {
		nested = append(nested, ToProductBriefDTO(*product))
	}

	return nested, nil
}

func normalizeCategoryOrdering(ordering string) string {
	ordering = strings.TrimSpace(ordering)
	if categoryOrderingKeys[ordering] {
		return ordering
	}
	return "name"
}

// isQueryFlagSet interprets the truthy spellings accepted in query strings
func isQueryFlagSet(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "true", "1", "yes":
		return true
	}
	return false
}

func (cf *CategoryFlowImpl) createAuditLog(ctx context.Context, account *models.Account, action string, description string, success bool, errMsg *string, metadata *ClientMetadata) error {
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

	return cf.auditRepo.Save(ctx, audit)
}
