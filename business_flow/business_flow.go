// Package businessflow contains the business logic for the storefront.
package businessflow

import (
	"time"

	"github.com/amirphl/Takaramono/app/dto"
	"github.com/amirphl/Takaramono/models"
	"github.com/amirphl/Takaramono/utils"
)

const RequestIDKey = "X-Request-ID"

// ClientMetadata holds all client-related information for audit logging and session tracking
type ClientMetadata struct {
	IPAddress  string            `json:"ip_address"`
	UserAgent  string            `json:"user_agent"`
	RequestID  string            `json:"request_id,omitempty"`
	SessionID  string            `json:"session_id,omitempty"`
	Additional map[string]string `json:"additional,omitempty"`
}

// NewClientMetadata creates a new ClientMetadata instance with basic information
func NewClientMetadata(ipAddress, userAgent string) *ClientMetadata {
	return &ClientMetadata{
		IPAddress:  ipAddress,
		UserAgent:  userAgent,
		Additional: make(map[string]string),
	}
}

// SetRequestID sets the request ID
func (cm *ClientMetadata) SetRequestID(requestID string) {
	cm.RequestID = requestID
}

// SetSessionID sets the session ID
func (cm *ClientMetadata) SetSessionID(sessionID string) {
	cm.SessionID = sessionID
}

// AddAdditional adds additional custom information to the metadata
func (cm *ClientMetadata) AddAdditional(key, value string) {
	if cm.Additional == nil {
		cm.Additional = make(map[string]string)
	}
	cm.Additional[key] = value
}

// Pagination carries normalized page parameters for listings
type Pagination struct {
	Page     int
	PageSize int
}

// NormalizePagination applies the default and maximum page size and
// rejects out-of-range values.
func NormalizePagination(page, pageSize int) (Pagination, error) {
	if page == 0 {
		page = 1
	}
	if page < 1 {
		return Pagination{}, ErrInvalidPage
	}

	if pageSize == 0 {
		pageSize = utils.DefaultPageSize
	}
	if pageSize < 1 || pageSize > utils.MaxPageSize {
		return Pagination{}, ErrInvalidPageSize
	}

	return Pagination{Page: page, PageSize: pageSize}, nil
}

// Limit returns the page size as a query limit
func (p Pagination) Limit() int {
	return p.PageSize
}

// Offset returns the row offset of the page
func (p Pagination) Offset() int {
	return (p.Page - 1) * p.PageSize
}

// ToDTO builds the pagination envelope for a total row count
func (p Pagination) ToDTO(total int64) dto.PaginationDTO {
	totalPages := int((total + int64(p.PageSize) - 1) / int64(p.PageSize))
	return dto.PaginationDTO{
		Page:       p.Page,
		PageSize:   p.PageSize,
		Total:      total,
		TotalPages: totalPages,
	}
}

// ToAuthAccountDTO converts an account model to AuthAccountDTO for authentication responses
func ToAuthAccountDTO(account models.Account) dto.AuthAccountDTO {
	d := dto.AuthAccountDTO{
		ID:        account.ID,
		UUID:      account.UUID.String(),
		Username:  account.Username,
		Email:     account.Email,
		IsStaff:   account.IsStaff,
		IsActive:  account.IsActive,
		CreatedAt: account.CreatedAt.Format(time.RFC3339),
	}

	if account.LastLoginAt != nil {
		d.LastLoginAt = utils.ToPtr(account.LastLoginAt.Format(time.RFC3339))
	}

	return d
}

// ToSessionDTO converts a session model to the DTO returned by auth endpoints
func ToSessionDTO(session models.AccountSession) dto.SessionDTO {
	return dto.SessionDTO{
		AccessToken:  session.SessionToken,
		RefreshToken: session.RefreshToken,
		ExpiresIn:    int(time.Until(session.ExpiresAt).Seconds()),
		TokenType:    "Bearer",
		CreatedAt:    session.CreatedAt.Format(time.RFC3339),
	}
}

// ToProfileDTO converts an account and its profile to the profile DTO
func ToProfileDTO(account models.Account, profile models.Profile) dto.ProfileDTO {
	return dto.ProfileDTO{
		Username:  account.Username,
		Email:     account.Email,
		Bio:       profile.Bio,
		AvatarURL: profile.AvatarURL,
		UpdatedAt: profile.UpdatedAt.Format(time.RFC3339),
	}
}

// ToCategoryDTO converts a category model to its API shape
func ToCategoryDTO(category models.Category) dto.CategoryDTO {
	return dto.CategoryDTO{
		ID:            category.ID,
		Name:          category.Name,
		Slug:          category.Slug,
		Description:   category.Description,
		ParentID:      category.ParentID,
		ProductsCount: category.ProductsCount,
		CreatedAt:     category.CreatedAt.Format(time.RFC3339),
	}
}

// ToProductDTO converts a product model to its API shape
func ToProductDTO(product models.Product) dto.ProductDTO {
	return dto.ProductDTO{
		ID:          product.ID,
		OwnerID:     product.OwnerID,
		CategoryID:  product.CategoryID,
		Name:        product.Name,
		Slug:        product.Slug,
		Description: product.Description,
		Price:       product.Price,
		Stock:       product.Stock,
		IsActive:    product.IsActive,
		CreatedAt:   product.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   product.UpdatedAt.Format(time.RFC3339),
	}
}

// ToProductBriefDTO converts a product model to the nested shape used in category payloads
func ToProductBriefDTO(product models.Product) dto.ProductBriefDTO {
	return dto.ProductBriefDTO{
		ID:       product.ID,
		Name:     product.Name,
		Slug:     product.Slug,
		Price:    product.Price,
		IsActive: product.IsActive,
	}
}
