package dto

// ProductRequest represents the request payload for creating or updating a product
type ProductRequest struct {
	Name        string  `json:"name" validate:"required,max=200" example:"Mechanical Keyboard"`
	Slug        string  `json:"slug,omitempty" validate:"omitempty,max=220,slug_format" example:"mechanical-keyboard"`
	Description string  `json:"description,omitempty" validate:"omitempty,max=5000" example:"Hot-swappable, 87 keys"`
	Price       float64 `json:"price" validate:"required,gt=0" example:"129.90"`
	Stock       int     `json:"stock" validate:"gte=0" example:"25"`
	CategoryID  *uint   `json:"category_id,omitempty" example:"7"`
	IsActive    *bool   `json:"is_active,omitempty" example:"true"`
}

// ProductDTO represents a product in API responses
type ProductDTO struct {
	ID          uint    `json:"id" example:"42"`
	OwnerID     uint    `json:"owner_id" example:"123"`
	CategoryID  *uint   `json:"category_id,omitempty" example:"7"`
	Name        string  `json:"name" example:"Mechanical Keyboard"`
	Slug        string  `json:"slug" example:"mechanical-keyboard"`
	Description string  `json:"description" example:"Hot-swappable, 87 keys"`
	Price       float64 `json:"price" example:"129.90"`
	Stock       int     `json:"stock" example:"25"`
	IsActive    *bool   `json:"is_active" example:"true"`
	CreatedAt   string  `json:"created_at" example:"2025-01-15T10:30:00Z"`
	UpdatedAt   string  `json:"updated_at" example:"2025-01-15T16:30:00Z"`
}

// ProductBriefDTO is the nested product shape used inside category payloads
type ProductBriefDTO struct {
	ID       uint    `json:"id" example:"42"`
	Name     string  `json:"name" example:"Mechanical Keyboard"`
	Slug     string  `json:"slug" example:"mechanical-keyboard"`
	Price    float64 `json:"price" example:"129.90"`
	IsActive *bool   `json:"is_active" example:"true"`
}

// ProductListResponse represents a paginated product listing
type ProductListResponse struct {
	Items      []ProductDTO  `json:"items"`
	Pagination PaginationDTO `json:"pagination"`
}

// ProductListQueryParams captures the supported query string of product listings
type ProductListQueryParams struct {
	Search   string `query:"search"`
	Category string `query:"category"`
	Ordering string `query:"ordering"`
	Page     int    `query:"page"`
	PageSize int    `query:"page_size"`
}
