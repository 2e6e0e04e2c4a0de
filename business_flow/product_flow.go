package businessflow

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/amirphl/Takaramono/app/dto"
	"github.com/amirphl/Takaramono/models"
	"github.com/amirphl/Takaramono/repository"
	"github.com/amirphl/Takaramono/utils"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// ProductFlow handles product use cases
type ProductFlow interface {
	ListProducts(ctx context.Context, principal *models.Account, params *dto.ProductListQueryParams) (*dto.ProductListResponse, error)
	GetProduct(ctx context.Context, principal *models.Account, id uint) (*dto.ProductDTO, error)
	CreateProduct(ctx context.Context, principal *models.Account, request *dto.ProductRequest, metadata *ClientMetadata) (*dto.ProductDTO, error)
	UpdateProduct(ctx context.Context, principal *models.Account, id uint, request *dto.ProductRequest, metadata *ClientMetadata) (*dto.ProductDTO, error)
	DeleteProduct(ctx context.Context, principal *models.Account, id uint, metadata *ClientMetadata) error
	ExportCatalog(ctx context.Context, principal *models.Account, metadata *ClientMetadata) (string, []byte, error)
}

// ProductFlowImpl implements the product business flow
type ProductFlowImpl struct {
	productRepo  repository.ProductRepository
	categoryRepo repository.CategoryRepository
	auditRepo    repository.AuditLogRepository
	db           *gorm.DB
}

// NewProductFlow creates a new product flow instance
func NewProductFlow(
	productRepo repository.ProductRepository,
	categoryRepo repository.CategoryRepository,
	auditRepo repository.AuditLogRepository,
	db *gorm.DB,
) ProductFlow {
	return &ProductFlowImpl{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		auditRepo:    auditRepo,
		db:           db,
	}
}

var productOrderingKeys = map[string]bool{
	"name": true, "-name": true,
	"price": true, "-price": true,
	"created_at": true, "-created_at": true,
}

// ListProducts returns a page of products. Non-staff principals,
// anonymous ones included, only see active products.
func (pf *ProductFlowImpl) ListProducts(ctx context.Context, principal *models.Account, params *dto.ProductListQueryParams) (*dto.ProductListResponse, error) {
	pagination, err := NormalizePagination(params.Page, params.PageSize)
	if err != nil {
		return nil, NewBusinessError("LIST_PRODUCTS_VALIDATION_FAILED", "Product listing validation failed", err)
	}

	query := repository.ProductListQuery{
		Search:     strings.TrimSpace(params.Search),
		ActiveOnly: !SeesInactiveProducts(principal),
		OrderBy:    normalizeProductOrdering(params.Ordering),
		Limit:      pagination.Limit(),
		Offset:     pagination.Offset(),
	}

	// Non-numeric category filters are silently ignored
	if v, err := strconv.ParseUint(strings.TrimSpace(params.Category), 10, 32); err == nil {
		query.CategoryID = utils.ToPtr(uint(v))
	}

	products, total, err := pf.productRepo.List(ctx, query)
	if err != nil {
		return nil, NewBusinessError("LIST_PRODUCTS_FAILED", "Failed to list products", err)
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

// GetProduct returns a single product under the same visibility rule as listings
func (pf *ProductFlowImpl) GetProduct(ctx context.Context, principal *models.Account, id uint) (*dto.ProductDTO, error) {
	product, err := pf.productRepo.ByID(ctx, id)
	if err != nil {
		return nil, NewBusinessError("GET_PRODUCT_FAILED", "Failed to get product", err)
	}
	if product == nil {
		return nil, NewBusinessError("GET_PRODUCT_FAILED", "Product not found", ErrProductNotFound)
	}

	// An inactive product is invisible to everyone but staff
	if !product.Active() && !SeesInactiveProducts(principal) {
		return nil, NewBusinessError("GET_PRODUCT_FAILED", "Product not found", ErrProductNotFound)
	}

	item := ToProductDTO(*product)
	return &item, nil
}

// CreateProduct validates and stores a new product owned by the principal
func (pf *ProductFlowImpl) CreateProduct(ctx context.Context, principal *models.Account, request *dto.ProductRequest, metadata *ClientMetadata) (*dto.ProductDTO, error) {
	if decision := CanCreate(principal); !decision.Allowed {
		return nil, NewBusinessError("CREATE_PRODUCT_DENIED", "Product creation denied", decision.Reason)
	}

	product := &models.Product{OwnerID: principal.ID}
	if err := pf.applyProductRequest(ctx, product, request); err != nil {
		return nil, NewBusinessError("CREATE_PRODUCT_VALIDATION_FAILED", "Product validation failed", err)
	}

	if err := pf.productRepo.Save(ctx, product); err != nil {
		return nil, NewBusinessError("CREATE_PRODUCT_FAILED", "Failed to create product", err)
	}

	item := ToProductDTO(*product)
	return &item, nil
}

// UpdateProduct validates and stores changes to a product; staff or the owner only
func (pf *ProductFlowImpl) UpdateProduct(ctx context.Context, principal *models.Account, id uint, request *dto.ProductRequest, metadata *ClientMetadata) (*dto.ProductDTO, error) {
	product, err := pf.productRepo.ByID(ctx, id)
	if err != nil {
		return nil, NewBusinessError("UPDATE_PRODUCT_FAILED", "Failed to get product", err)
	}
	if product == nil {
		return nil, NewBusinessError("UPDATE_PRODUCT_FAILED", "Product not found", ErrProductNotFound)
	}

	if decision := CanModifyOwned(principal, product.OwnerID); !decision.Allowed {
		return nil, NewBusinessError("UPDATE_PRODUCT_DENIED", "Product update denied", decision.Reason)
	}

	if err := pf.applyProductRequest(ctx, product, request); err != nil {
		return nil, NewBusinessError("UPDATE_PRODUCT_VALIDATION_FAILED", "Product validation failed", err)
	}

	product.UpdatedAt = utils.UTCNow()
	if err := pf.productRepo.Update(ctx, product); err != nil {
		return nil, NewBusinessError("UPDATE_PRODUCT_FAILED", "Failed to update product", err)
	}

	item := ToProductDTO(*product)
	return &item, nil
}

// DeleteProduct removes a product; staff or the owner only
func (pf *ProductFlowImpl) DeleteProduct(ctx context.Context, principal *models.Account, id uint, metadata *ClientMetadata) error {
	product, err := pf.productRepo.ByID(ctx, id)
	if err != nil {
		return NewBusinessError("DELETE_PRODUCT_FAILED", "Failed to get product", err)
	}
	if product == nil {
		return NewBusinessError("DELETE_PRODUCT_FAILED", "Product not found", ErrProductNotFound)
	}

	if decision := CanModifyOwned(principal, product.OwnerID); !decision.Allowed {
		return NewBusinessError("DELETE_PRODUCT_DENIED", "Product deletion denied", decision.Reason)
	}

	if err := pf.productRepo.Delete(ctx, product); err != nil {
		return NewBusinessError("DELETE_PRODUCT_FAILED", "Failed to delete product", err)
	}

	return nil
}

// ExportCatalog builds an xlsx workbook of the whole catalog; staff only
func (pf *ProductFlowImpl) ExportCatalog(ctx context.Context, principal *models.Account, metadata *ClientMetadata) (string, []byte, error) {
	if decision := CanExport(principal); !decision.Allowed {
		return "", nil, NewBusinessError("EXPORT_CATALOG_DENIED", "Catalog export denied", decision.Reason)
	}

	products, _, err := pf.productRepo.List(ctx, repository.ProductListQuery{OrderBy: "created_at"})
	if err != nil {
		return "", nil, NewBusinessError("EXPORT_CATALOG_FAILED", "Failed to fetch products", err)
	}

	categoryNames, err := pf.categoryNamesByID(ctx)
	if err != nil {
		return "", nil, NewBusinessError("EXPORT_CATALOG_FAILED", "Failed to fetch categories", err)
	}

	xl := excelize.NewFile()
	defer func() { _ = xl.Close() }()

	sheet := "Products"
	xl.SetSheetName(xl.GetSheetName(0), sheet)

	header := []string{"id", "owner_id", "category", "name", "slug", "description", "price", "stock", "is_active", "created_at"}
	_ = xl.SetSheetRow(sheet, "A1", &header)

	for ri, product := range products {
		categoryName := ""
		if product.CategoryID != nil {
			categoryName = categoryNames[*product.CategoryID]
		}

		record := []any{
			product.ID,
			product.OwnerID,
			categoryName,
			product.Name,
			product.Slug,
			product.Description,
			product.Price,
			product.Stock,
			product.Active(),
			product.CreatedAt.UTC().Format(time.RFC3339),
		}
		cellRef, _ := excelize.CoordinatesToCellName(1, ri+2)
		_ = xl.SetSheetRow(sheet, cellRef, &record)
	}

	buf, err := xl.WriteToBuffer()
	if err != nil {
		return "", nil, NewBusinessError("EXCEL_WRITE_ERROR", "Failed to write Excel file", err)
	}

	msg := fmt.Sprintf("Catalog exported: %d products", len(products))
	_ = pf.createAuditLog(ctx, principal, models.AuditActionCatalogExported, msg, true, nil, metadata)

	filename := fmt.Sprintf("catalog_%s.xlsx", utils.UTCNow().Format("2006-01-02"))
	return filename, buf.Bytes(), nil
}

// Private helper methods

// applyProductRequest validates the request and writes it onto the
// model. The slug is assigned once: an existing slug is never
// regenerated, a fresh record gets the supplied slug or a derived one,
// suffixed until free.
func (pf *ProductFlowImpl) applyProductRequest(ctx context.Context, product *models.Product, request *dto.ProductRequest) error {
	name := strings.TrimSpace(request.Name)
	if len([]rune(name)) < 3 {
		return ErrProductNameTooShort
	}

	if request.Price <= 0 {
		return ErrPriceNotPositive
	}
	if request.Stock < 0 {
		return ErrStockNegative
	}

	isActive := true
	if request.IsActive != nil {
		isActive = *request.IsActive
	} else if product.IsActive != nil {
		isActive = *product.IsActive
	}
	if !isActive && request.Stock != 0 {
		return ErrInactiveStock
	}

	if request.CategoryID != nil {
		category, err := pf.categoryRepo.ByID(ctx, *request.CategoryID)
		if err != nil {
			return err
		}
		if category == nil {
			return ErrCategoryNotFound
		}
	}

	if product.Slug == "" {
		seed := strings.TrimSpace(request.Slug)
		if seed == "" {
			seed = name
		}
		slug, err := AssignSlug(ctx, "", seed, product.ID, pf.productRepo.SlugExists)
		if err != nil {
			return err
		}
		product.Slug = slug
	}

	product.Name = name
	product.Description = strings.TrimSpace(request.Description)
	product.Price = request.Price
	product.Stock = request.Stock
	product.CategoryID = request.CategoryID
	product.IsActive = utils.ToPtr(isActive)

	return nil
}

func (pf *ProductFlowImpl) categoryNamesByID(ctx context.Context) (map[uint]string, error) {
	categories, err := pf.categoryRepo.ByFilter(ctx, models.CategoryFilter{}, "id", 0, 0)
	if err != nil {
		return nil, err
	}

	names := make(map[uint]string, len(categories))
	for _, category := range categories {
		names[category.ID] = category.Name
	}

	return names, nil
}

func normalizeProductOrdering(ordering string) string {
	ordering = strings.TrimSpace(ordering)
	if productOrderingKeys[ordering] {
		return ordering
	}
	return "-created_at"
}

func (pf *ProductFlowImpl) createAuditLog(ctx context.Context, account *models.Account, action string, description string, success bool, errMsg *string, metadata *ClientMetadata) error {
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
