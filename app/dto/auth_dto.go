// Package dto contains Data Transfer Objects for API request and response structures
package dto

// RegisterRequest represents the request payload for account registration
type RegisterRequest struct {
	Username        string `json:"username" validate:"required,min=3,max=150,username_format" example:"ayako"`
	Email           string `json:"email" validate:"required,email,max=255" example:"ayako@example.com"`
	Password        string `json:"password" validate:"required,min=8,max=100,password_strength" example:"SecurePass123!"`
	ConfirmPassword string `json:"confirm_password" validate:"required,eqfield=Password" example:"SecurePass123!"`
}

// LoginRequest represents the request payload for account login
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email,max=255" example:"ayako@example.com"`
	Password string `json:"password" validate:"required,min=8,max=100" example:"SecurePass123!"`
}

// AuthAccountDTO represents account information returned by auth endpoints
type AuthAccountDTO struct {
	ID          uint    `json:"id" example:"123"`
	UUID        string  `json:"uuid" example:"550e8400-e29b-41d4-a716-446655440000"`
	Username    string  `json:"username" example:"ayako"`
	Email       string  `json:"email" example:"ayako@example.com"`
	IsStaff     *bool   `json:"is_staff" example:"false"`
	IsActive    *bool   `json:"is_active" example:"true"`
	CreatedAt   string  `json:"created_at" example:"2025-01-15T10:30:00Z"`
	LastLoginAt *string `json:"last_login_at,omitempty" example:"2025-01-15T16:30:00Z"`
}

// SessionDTO represents the issued session returned by auth endpoints
type SessionDTO struct {
	AccessToken  string  `json:"access_token" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
	RefreshToken *string `json:"refresh_token,omitempty" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
	TokenType    string  `json:"token_type" example:"Bearer"`
	ExpiresIn    int     `json:"expires_in" example:"86400"`
	CreatedAt    string  `json:"created_at" example:"2025-01-15T10:30:00Z"`
}

// RegisterResponse represents the successful registration response
type RegisterResponse struct {
	Message string         `json:"message" example:"Registration completed successfully"`
	Account AuthAccountDTO `json:"account"`
	Session SessionDTO     `json:"session"`
}

// LoginResponse represents the successful login response
type LoginResponse struct {
	Message string         `json:"message" example:"Login successful"`
	Account AuthAccountDTO `json:"account"`
	Session SessionDTO     `json:"session"`
}

// LogoutResponse represents the successful logout response
type LogoutResponse struct {
	Message string `json:"message" example:"Logged out successfully"`
}

// Common error codes for auth operations
const (
	ErrorAccountNotFound   = "ACCOUNT_NOT_FOUND"
	ErrorIncorrectPassword = "INCORRECT_PASSWORD"
	ErrorAccountInactive   = "ACCOUNT_INACTIVE"
	ErrorEmailTaken        = "EMAIL_ALREADY_EXISTS"
	ErrorUsernameTaken     = "USERNAME_ALREADY_EXISTS"
)
