// Package handlers contains HTTP request handlers and presentation layer logic for the API endpoints
package handlers

import (
	"log"

	"github.com/amirphl/Takaramono/app/dto"
	"github.com/amirphl/Takaramono/app/middleware"
	businessflow "github.com/amirphl/Takaramono/business_flow"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
)

// ProductHandlerInterface defines the contract for product handlers
type ProductHandlerInterface interface {
	ListProducts(c fiber.Ctx) error
	GetProduct(c fiber.Ctx) error
	CreateProduct(c fiber.Ctx) error
	UpdateProduct(c fiber.Ctx) error
	DeleteProduct(c fiber.Ctx) error
	ExportCatalog(c fiber.Ctx) error
}

// ProductHandler handles product-related HTTP requests
type ProductHandler struct {
	productFlow businessflow.ProductFlow
	validator   *validator.Validate
}

// NewProductHandler creates a new product handler
func NewProductHandler(productFlow businessflow.ProductFlow) *ProductHandler {
	return &ProductHandler{
		productFlow: productFlow,
		validator:   newValidator(),
	}
}

func (h *ProductHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

func (h *ProductHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// ListProducts returns a paginated product listing
// @Summary List Products
// @Description List products with search, category filtering, and ordering; inactive products are hidden from non-staff callers
// @Tags Products
// @Accept json
// @Produce json
// @Param search query string false "Case-insensitive name or description search"
// @Param category query int false "Filter by category id"
// @Param ordering query string false "Ordering key: name, price, created_at (prefix with - for descending)"
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Success 200 {object} dto.APIResponse{data=dto.ProductListResponse} "Products retrieved successfully"
// @Failure 400 {object} dto.APIResponse "Invalid pagination"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/products [get]
func (h *ProductHandler) ListProducts(c fiber.Ctx) error {
	var params dto.ProductListQueryParams
	if err := c.Bind().Query(&params); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid query parameters", "INVALID_QUERY", err.Error())
	}

	principal := principalFromContext(c)

	result, err := h.productFlow.ListProducts(createRequestContext(c, "/api/v1/products"), principal, &params)
	if err != nil {
		if businessflow.IsInvalidPage(err) || businessflow.IsInvalidPageSize(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid pagination parameters", "INVALID_PAGINATION", nil)
		}

		log.Println("List products failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to list products", "LIST_PRODUCTS_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Products retrieved successfully", result)
}

// GetProduct returns a single product
// @Summary Get Product
// @Description Retrieve a product by id; inactive products are visible to staff only
// @Tags Products
// @Accept json
// @Produce json
// @Param id path int true "Product ID"
// @Success 200 {object} dto.APIResponse{data=dto.ProductDTO} "Product retrieved successfully"
// @Failure 404 {object} dto.APIResponse "Product not found"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/products/{id} [get]
func (h *ProductHandler) GetProduct(c fiber.Ctx) error {
	id, ok := parseIDParam(c)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusNotFound, "Product not found", "PRODUCT_NOT_FOUND", nil)
	}

	principal := principalFromContext(c)

	result, err := h.productFlow.GetProduct(createRequestContext(c, "/api/v1/products/:id"), principal, id)
	if err != nil {
		if businessflow.IsProductNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Product not found", "PRODUCT_NOT_FOUND", nil)
		}

		log.Println("Get product failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to get product", "GET_PRODUCT_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Product retrieved successfully", result)
}

// CreateProduct creates a new product owned by the caller
// @Summary Create Product
// @Description Create a product; the slug is derived from the name when omitted, with a numeric suffix on collision
// @Tags Products
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.ProductRequest true "Product data"
// @Success 201 {object} dto.APIResponse{data=dto.ProductDTO} "Product created successfully"
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Failure 401 {object} dto.APIResponse "Not authenticated"
// @Failure 403 {object} dto.APIResponse "Account inactive"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/products [post]
func (h *ProductHandler) CreateProduct(c fiber.Ctx) error {
	var req dto.ProductRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}

	// Validate request
	if err := h.validator.Struct(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationMessages(err))
	}

	principal := principalFromContext(c)
	metadata := clientMetadataFromRequest(c)

	result, err := h.productFlow.CreateProduct(createRequestContext(c, "/api/v1/products"), principal, &req, metadata)
	if err != nil {
		if status, code, message, handled := productErrorResponse(err); handled {
			return h.ErrorResponse(c, status, message, code, nil)
		}

		log.Println("Create product failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create product", "CREATE_PRODUCT_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusCreated, "Product created successfully", result)
}

// UpdateProduct updates a product owned by the caller
// @Summary Update Product
// @Description Update a product; only the owner or staff may modify it
// @Tags Products
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Product ID"
// @Param request body dto.ProductRequest true "Product data"
// @Success 200 {object} dto.APIResponse{data=dto.ProductDTO} "Product updated successfully"
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Failure 401 {object} dto.APIResponse "Not authenticated"
// @Failure 403 {object} dto.APIResponse "Not the owner"
// @Failure 404 {object} dto.APIResponse "Product not found"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/products/{id} [put]
func (h *ProductHandler) UpdateProduct(c fiber.Ctx) error {
	id, ok := parseIDParam(c)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusNotFound, "Product not found", "PRODUCT_NOT_FOUND", nil)
	}

	var req dto.ProductRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}

	// Validate request
	if err := h.validator.Struct(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationMessages(err))
	}

	principal := principalFromContext(c)
	metadata := clientMetadataFromRequest(c)

	result, err := h.productFlow.UpdateProduct(createRequestContext(c, "/api/v1/products/:id"), principal, id, &req, metadata)
	if err != nil {
		if status, code, message, handled := productErrorResponse(err); handled {
			return h.ErrorResponse(c, status, message, code, nil)
		}

		log.Println("Update product failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update product", "UPDATE_PRODUCT_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Product updated successfully", result)
}

// DeleteProduct deletes a product owned by the caller
// @Summary Delete Product
// @Description Delete a product; only the owner or staff may delete it
// @Tags Products
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Product ID"
// @Success 204 "Product deleted"
// @Failure 401 {object} dto.APIResponse "Not authenticated"
// @Failure 403 {object} dto.APIResponse "Not the owner"
// @Failure 404 {object} dto.APIResponse "Product not found"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/products/{id} [delete]
func (h *ProductHandler) DeleteProduct(c fiber.Ctx) error {
	id, ok := parseIDParam(c)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusNotFound, "Product not found", "PRODUCT_NOT_FOUND", nil)
	}

	principal := principalFromContext(c)
	metadata := clientMetadataFromRequest(c)

	err := h.productFlow.DeleteProduct(createRequestContext(c, "/api/v1/products/:id"), principal, id, metadata)
	if err != nil {
		if status, code, message, handled := productErrorResponse(err); handled {
			return h.ErrorResponse(c, status, message, code, nil)
		}

		log.Println("Delete product failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to delete product", "DELETE_PRODUCT_FAILED", nil)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// ExportCatalog streams the full catalog as an Excel workbook
// @Summary Export Catalog
// @Description Export every product, including inactive ones, as an xlsx workbook. Staff only.
// @Tags Products
// @Accept json
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security BearerAuth
// @Success 200 {file} binary "Catalog workbook"
// @Failure 401 {object} dto.APIResponse "Not authenticated"
// @Failure 403 {object} dto.APIResponse "Staff only"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/products/export [get]
func (h *ProductHandler) ExportCatalog(c fiber.Ctx) error {
	principal := principalFromContext(c)
	metadata := clientMetadataFromRequest(c)

	filename, content, err := h.productFlow.ExportCatalog(createRequestContext(c, "/api/v1/products/export"), principal, metadata)
	if err != nil {
		if businessflow.IsNotAuthenticated(err) {
			middleware.RecordCatalogExport("forbidden")
			return h.ErrorResponse(c, fiber.StatusUnauthorized, "Authentication required", "NOT_AUTHENTICATED", nil)
		}
		if businessflow.IsForbidden(err) {
			middleware.RecordCatalogExport("forbidden")
			return h.ErrorResponse(c, fiber.StatusForbidden, "Catalog export is restricted to staff", "EXPORT_FORBIDDEN", nil)
		}

		middleware.RecordCatalogExport("error")
		log.Println("Catalog export failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to export catalog", "EXPORT_CATALOG_FAILED", nil)
	}

	middleware.RecordCatalogExport("success")
	c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Send(content)
}

// productErrorResponse maps product mutation errors to HTTP responses
func productErrorResponse(err error) (status int, code string, message string, handled bool) {
	switch {
	case businessflow.IsNotAuthenticated(err):
		return fiber.StatusUnauthorized, "NOT_AUTHENTICATED", "Authentication required", true
	case businessflow.IsAccountInactive(err):
		return fiber.StatusForbidden, dto.ErrorAccountInactive, "Account is inactive", true
	case businessflow.IsForbidden(err):
		return fiber.StatusForbidden, "NOT_OWNER", "Only the owner or staff may modify this product", true
	case businessflow.IsProductNotFound(err):
		return fiber.StatusNotFound, "PRODUCT_NOT_FOUND", "Product not found", true
	case businessflow.IsProductNameTooShort(err):
		return fiber.StatusBadRequest, "PRODUCT_NAME_TOO_SHORT", "Product name must be at least 3 characters", true
	case businessflow.IsPriceNotPositive(err):
		return fiber.StatusBadRequest, "PRICE_NOT_POSITIVE", "Price must be greater than zero", true
	case businessflow.IsStockNegative(err):
		return fiber.StatusBadRequest, "STOCK_NEGATIVE", "Stock cannot be negative", true
	case businessflow.IsInactiveStock(err):
		return fiber.StatusBadRequest, "INACTIVE_PRODUCT_STOCK", "Inactive products must have zero stock", true
	case businessflow.IsCategoryNotFound(err):
		return fiber.StatusBadRequest, "CATEGORY_NOT_FOUND", "Category not found", true
	}
	return 0, "", "", false
}
