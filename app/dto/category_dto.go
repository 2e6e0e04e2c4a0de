package dto

// CategoryRequest represents the request payload for creating or updating a category
type CategoryRequest struct {
	Name        string `json:"name" validate:"required,max=100" example:"Electronics"`
	Slug        string `json:"slug,omitempty" validate:"omitempty,max=120,slug_format" example:"electronics"`
	Description string `json:"description,omitempty" validate:"omitempty,max=2000" example:"Gadgets and devices"`
	ParentID    *uint  `json:"parent_id,omitempty" example:"3"`
}

// CategoryDTO represents a category in API responses, annotated with the
// number of products attached to it.
type CategoryDTO struct {
	ID            uint              `json:"id" example:"7"`
	Name          string            `json:"name" example:"Electronics"`
	Slug          string            `json:"slug" example:"electronics"`
	Description   string            `json:"description" example:"Gadgets and devices"`
	ParentID      *uint             `json:"parent_id,omitempty" example:"3"`
	ProductsCount int64             `json:"products_count" example:"12"`
	CreatedAt     string            `json:"created_at" example:"2025-01-15T10:30:00Z"`
	Products      []ProductBriefDTO `json:"products,omitempty"`
}

// CategoryListResponse represents a paginated category listing
type CategoryListResponse struct {
	Items      []CategoryDTO `json:"items"`
	Pagination PaginationDTO `json:"pagination"`
}

// CategoryListQueryParams captures the supported query string of category listings
type CategoryListQueryParams struct {
	Search          string `query:"search"`
	MinProducts     string `query:"min_products"`
	MaxProducts     string `query:"max_products"`
	Ordering        string `query:"ordering"`
	IncludeProducts string `query:"include_products"`
	Page            int    `query:"page"`
	PageSize        int    `query:"page_size"`
}
