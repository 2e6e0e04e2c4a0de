// Package handlers contains HTTP request handlers and presentation layer logic for the API endpoints
package handlers

import (
	"log"
	"strings"

	"github.com/amirphl/Takaramono/app/dto"
	"github.com/amirphl/Takaramono/app/middleware"
	businessflow "github.com/amirphl/Takaramono/business_flow"
	"github.com/amirphl/Takaramono/models"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
)

// CategoryHandlerInterface defines the contract for category handlers
type CategoryHandlerInterface interface {
	ListCategories(c fiber.Ctx) error
	GetCategory(c fiber.Ctx) error
	CreateCategory(c fiber.Ctx) error
	UpdateCategory(c fiber.Ctx) error
	DeleteCategory(c fiber.Ctx) error
	ListCategoryProducts(c fiber.Ctx) error
}

// CategoryHandler handles category-related HTTP requests
type CategoryHandler struct {
	categoryFlow businessflow.CategoryFlow
	validator    *validator.Validate
}

// NewCategoryHandler creates a new category handler
func NewCategoryHandler(categoryFlow businessflow.CategoryFlow) *CategoryHandler {
	return &CategoryHandler{
		categoryFlow: categoryFlow,
		validator:    newValidator(),
	}
}

func (h *CategoryHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

func (h *CategoryHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// ListCategories returns a paginated category listing
// @Summary List Categories
// @Description List categories with search, product-count bounds, ordering, and optional nested products
// @Tags Categories
// @Accept json
// @Produce json
// @Param search query string false "Case-insensitive name or description search"
// @Param min_products query int false "Minimum annotated product count"
// @Param max_products query int false "Maximum annotated product count"
// @Param ordering query string false "Ordering key: name, created_at, products_count (prefix with - for descending)"
// @Param include_products query bool false "Nest the products of each category"
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Success 200 {object} dto.APIResponse{data=dto.CategoryListResponse} "Categories retrieved successfully"
// @Failure 400 {object} dto.APIResponse "Invalid pagination"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/categories [get]
func (h *CategoryHandler) ListCategories(c fiber.Ctx) error {
	var params dto.CategoryListQueryParams
	if err := c.Bind().Query(&params); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid query parameters", "INVALID_QUERY", err.Error())
	}

	principal := principalFromContext(c)

	result, err := h.categoryFlow.ListCategories(createRequestContext(c, "/api/v1/categories"), principal, &params)
	if err != nil {
		if businessflow.IsInvalidPage(err) || businessflow.IsInvalidPageSize(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid pagination parameters", "INVALID_PAGINATION", nil)
		}

		log.Println("List categories failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to list categories", "LIST_CATEGORIES_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Categories retrieved successfully", result)
}

// GetCategory returns a single category with its product count
// @Summary Get Category
// @Description Retrieve a category by id, optionally with its nested products
// @Tags Categories
// @Accept json
// @Produce json
// @Param id path int true "Category ID"
// @Param include_products query bool false "Nest the category's products"
// @Success 200 {object} dto.APIResponse{data=dto.CategoryDTO} "Category retrieved successfully"
// @Failure 404 {object} dto.APIResponse "Category not found"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/categories/{id} [get]
func (h *CategoryHandler) GetCategory(c fiber.Ctx) error {
	id, ok := parseIDParam(c)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusNotFound, "Category not found", "CATEGORY_NOT_FOUND", nil)
	}

	principal := principalFromContext(c)
	includeProducts := isTruthyQuery(c.Query("include_products"))

	result, err := h.categoryFlow.GetCategory(createRequestContext(c, "/api/v1/categories/:id"), principal, id, includeProducts)
	if err != nil {
		if businessflow.IsCategoryNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Category not found", "CATEGORY_NOT_FOUND", nil)
		}

		log.Println("Get category failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to get category", "GET_CATEGORY_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Category retrieved successfully", result)
}

// CreateCategory creates a new category
// @Summary Create Category
// @Description Create a category; the slug is derived from the name when omitted
// @Tags Categories
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CategoryRequest true "Category data"
// @Success 201 {object} dto.APIResponse{data=dto.CategoryDTO} "Category created successfully"
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Failure 401 {object} dto.APIResponse "Not authenticated"
// @Failure 403 {object} dto.APIResponse "Account inactive"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/categories [post]
func (h *CategoryHandler) CreateCategory(c fiber.Ctx) error {
	var req dto.CategoryRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}

	// Validate request
	if err := h.validator.Struct(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationMessages(err))
	}

	principal := principalFromContext(c)
	metadata := clientMetadataFromRequest(c)

	result, err := h.categoryFlow.CreateCategory(createRequestContext(c, "/api/v1/categories"), principal, &req, metadata)
	if err != nil {
		if status, code, message, handled := categoryErrorResponse(err); handled {
			return h.ErrorResponse(c, status, message, code, nil)
		}

		log.Println("Create category failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create category", "CREATE_CATEGORY_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusCreated, "Category created successfully", result)
}

// UpdateCategory updates an existing category
// @Summary Update Category
// @Description Update a category's name, slug, description, or parent
// @Tags Categories
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Category ID"
// @Param request body dto.CategoryRequest true "Category data"
// @Success 200 {object} dto.APIResponse{data=dto.CategoryDTO} "Category updated successfully"
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Failure 401 {object} dto.APIResponse "Not authenticated"
// @Failure 403 {object} dto.APIResponse "Account inactive"
// @Failure 404 {object} dto.APIResponse "Category not found"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/categories/{id} [put]
func (h *CategoryHandler) UpdateCategory(c fiber.Ctx) error {
	id, ok := parseIDParam(c)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusNotFound, "Category not found", "CATEGORY_NOT_FOUND", nil)
	}

	var req dto.CategoryRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}

	// Validate request
	if err := h.validator.Struct(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationMessages(err))
	}

	principal := principalFromContext(c)
	metadata := clientMetadataFromRequest(c)

	result, err := h.categoryFlow.UpdateCategory(createRequestContext(c, "/api/v1/categories/:id"), principal, id, &req, metadata)
	if err != nil {
		if status, code, message, handled := categoryErrorResponse(err); handled {
			return h.ErrorResponse(c, status, message, code, nil)
		}

		log.Println("Update category failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update category", "UPDATE_CATEGORY_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Category updated successfully", result)
}

// DeleteCategory deletes a category, honoring the product-handling modifiers
// @Summary Delete Category
// @Description Delete a category; pass delete_products or reassign_to when it still has products
// @Tags Categories
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Category ID"
// @Param delete_products query bool false "Also delete the category's products"
// @Param reassign_to query int false "Reassign the category's products to this category id"
// @Success 204 "Category deleted"
// @Failure 400 {object} dto.APIResponse "Category still has products or modifiers conflict"
// @Failure 401 {object} dto.APIResponse "Not authenticated"
// @Failure 403 {object} dto.APIResponse "Account inactive"
// @Failure 404 {object} dto.APIResponse "Category or reassign target not found"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/categories/{id} [delete]
func (h *CategoryHandler) DeleteCategory(c fiber.Ctx) error {
	id, ok := parseIDParam(c)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusNotFound, "Category not found", "CATEGORY_NOT_FOUND", nil)
	}

	opts := businessflow.DeleteCategoryOptions{
		DeleteProducts: isTruthyQuery(c.Query("delete_products")),
		ReassignTo:     strings.TrimSpace(c.Query("reassign_to")),
	}

	principal := principalFromContext(c)
	metadata := clientMetadataFromRequest(c)

	err := h.categoryFlow.DeleteCategory(createRequestContext(c, "/api/v1/categories/:id"), principal, id, opts, metadata)
	if err != nil {
		switch {
		case businessflow.IsNotAuthenticated(err):
			return h.ErrorResponse(c, fiber.StatusUnauthorized, "Authentication required", "NOT_AUTHENTICATED", nil)
		case businessflow.IsAccountInactive(err):
			return h.ErrorResponse(c, fiber.StatusForbidden, "Account is inactive", dto.ErrorAccountInactive, nil)
		case businessflow.IsCategoryNotFound(err):
			return h.ErrorResponse(c, fiber.StatusNotFound, "Category not found", "CATEGORY_NOT_FOUND", nil)
		case businessflow.IsConflictingDeleteParams(err):
			return h.ErrorResponse(c, fiber.StatusBadRequest, "delete_products and reassign_to cannot be combined", "CONFLICTING_DELETE_PARAMS", nil)
		case businessflow.IsReassignTargetInvalid(err):
			return h.ErrorResponse(c, fiber.StatusBadRequest, "reassign_to must be a valid category id", "REASSIGN_TARGET_INVALID", nil)
		case businessflow.IsReassignTargetIsSource(err):
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Cannot reassign products to the category being deleted", "REASSIGN_TARGET_IS_SOURCE", nil)
		case businessflow.IsReassignTargetNotFound(err):
			return h.ErrorResponse(c, fiber.StatusNotFound, "Reassign target category not found", "REASSIGN_TARGET_NOT_FOUND", nil)
		case businessflow.IsCategoryHasProducts(err):
			return h.ErrorResponse(c, fiber.StatusBadRequest,
				"Category still has products; pass delete_products=true or reassign_to=<category_id>",
				"CATEGORY_HAS_PRODUCTS", nil)
		}

		log.Println("Delete category failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to delete category", "DELETE_CATEGORY_FAILED", nil)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// ListCategoryProducts returns the products attached to a category
// @Summary List Category Products
// @Description List the products of a category; inactive products are hidden from non-staff callers
// @Tags Categories
// @Accept json
// @Produce json
// @Param id path int true "Category ID"
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Success 200 {object} dto.APIResponse{data=dto.ProductListResponse} "Products retrieved successfully"
// @Failure 404 {object} dto.APIResponse "Category not found"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/categories/{id}/products [get]
func (h *CategoryHandler) ListCategoryProducts(c fiber.Ctx) error {
	id, ok := parseIDParam(c)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusNotFound, "Category not found", "CATEGORY_NOT_FOUND", nil)
	}

	principal := principalFromContext(c)
	page := fiber.Query(c, "page", 0)
	pageSize := fiber.Query(c, "page_size", 0)

	result, err := h.categoryFlow.ListCategoryProducts(createRequestContext(c, "/api/v1/categories/:id/products"), principal, id, page, pageSize)
	if err != nil {
		if businessflow.IsCategoryNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Category not found", "CATEGORY_NOT_FOUND", nil)
		}
		if businessflow.IsInvalidPage(err) || businessflow.IsInvalidPageSize(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid pagination parameters", "INVALID_PAGINATION", nil)
		}

		log.Println("List category products failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to list category products", "LIST_CATEGORY_PRODUCTS_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Products retrieved successfully", result)
}

// categoryErrorResponse maps category mutation errors to HTTP responses
func categoryErrorResponse(err error) (status int, code string, message string, handled bool) {
	switch {
	case businessflow.IsNotAuthenticated(err):
		return fiber.StatusUnauthorized, "NOT_AUTHENTICATED", "Authentication required", true
	case businessflow.IsAccountInactive(err):
		return fiber.StatusForbidden, dto.ErrorAccountInactive, "Account is inactive", true
	case businessflow.IsCategoryNotFound(err):
		return fiber.StatusNotFound, "CATEGORY_NOT_FOUND", "Category not found", true
	case businessflow.IsCategoryNameTooShort(err):
		return fiber.StatusBadRequest, "CATEGORY_NAME_TOO_SHORT", "Category name must be at least 2 characters", true
	case businessflow.IsCategoryNameTaken(err):
		return fiber.StatusBadRequest, "CATEGORY_NAME_TAKEN", "A category with this name already exists", true
	case businessflow.IsCategorySlugTaken(err):
		return fiber.StatusBadRequest, "CATEGORY_SLUG_TAKEN", "A category with this slug already exists", true
	case businessflow.IsParentCategoryNotFound(err):
		return fiber.StatusBadRequest, "PARENT_CATEGORY_NOT_FOUND", "Parent category not found", true
	}
	return 0, "", "", false
}

// principalFromContext returns the authenticated account or nil for anonymous callers
func principalFromContext(c fiber.Ctx) *models.Account {
	if account, ok := middleware.GetAccountFromContext(c); ok {
		return account
	}
	return nil
}

// isTruthyQuery interprets the truthy spellings accepted in query strings
func isTruthyQuery(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "true", "1", "yes":
		return true
	}
	return false
}
