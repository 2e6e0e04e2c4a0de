package dto

// ProfileDTO represents the authenticated account's profile
type ProfileDTO struct {
	Username  string `json:"username" example:"ayako"`
	Email     string `json:"email" example:"ayako@example.com"`
	Bio       string `json:"bio" example:"Collector of rare teapots"`
	AvatarURL string `json:"avatar_url" example:"https://cdn.example.com/avatars/ayako.png"`
	UpdatedAt string `json:"updated_at" example:"2025-01-15T16:30:00Z"`
}

// UpdateProfileRequest represents the request payload for profile updates
type UpdateProfileRequest struct {
	Bio       *string `json:"bio,omitempty" validate:"omitempty,max=500"`
	AvatarURL *string `json:"avatar_url,omitempty" validate:"omitempty,url,max=500"`
}

// ProfileResponse represents the profile read/update response
type ProfileResponse struct {
	Message string     `json:"message" example:"Profile retrieved successfully"`
	Profile ProfileDTO `json:"profile"`
}
