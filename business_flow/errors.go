// Package businessflow contains the core business logic and use cases for the storefront
package businessflow

import (
	"errors"
	"fmt"
)

// Business flow error constants
var (
	// Account-related errors
	ErrAccountNotFound       = errors.New("account not found")
	ErrAccountInactive       = errors.New("account is inactive")
	ErrIncorrectPassword     = errors.New("incorrect password")
	ErrEmailAlreadyExists    = errors.New("email already exists")
	ErrUsernameAlreadyExists = errors.New("username already exists")
	ErrSessionNotFound       = errors.New("session not found")
	ErrProfileNotFound       = errors.New("profile not found")

	// Permission errors
	ErrNotAuthenticated = errors.New("authentication required")
	ErrForbidden        = errors.New("permission denied")

	// Category errors
	ErrCategoryNotFound        = errors.New("category not found")
	ErrCategoryNameTooShort    = errors.New("category name must be at least 2 characters")
	ErrCategoryNameTaken       = errors.New("category name already in use")
	ErrCategorySlugTaken       = errors.New("category slug already in use")
	ErrParentCategoryNotFound  = errors.New("parent category not found")
	ErrCategoryHasProducts     = errors.New("category has products; pass delete_products or reassign_to")
	ErrReassignTargetNotFound  = errors.New("reassignment target category not found")
	ErrReassignTargetInvalid   = errors.New("reassign_to must be a category id")
	ErrReassignTargetIsSource  = errors.New("cannot reassign products to the category being deleted")
	ErrConflictingDeleteParams = errors.New("delete_products and reassign_to are mutually exclusive")

	// Product errors
	ErrProductNotFound     = errors.New("product not found")
	ErrProductNameTooShort = errors.New("product name must be at least 3 characters")
	ErrPriceNotPositive    = errors.New("price must be greater than zero")
	ErrStockNegative       = errors.New("stock cannot be negative")
	ErrInactiveStock       = errors.New("inactive products must have zero stock")

	// Filter errors
	ErrInvalidPage     = errors.New("page must be at least 1")
	ErrInvalidPageSize = errors.New("page size must be between 1 and 100")
)

type BusinessError struct {
	Code    string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

func NewBusinessErrorf(code, message string, err error, args ...any) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: fmt.Sprintf(message, args...),
		Err:     err,
	}
}

func IsAccountNotFound(err error) bool {
	return errors.Is(err, ErrAccountNotFound)
}

func IsAccountInactive(err error) bool {
	return errors.Is(err, ErrAccountInactive)
}

func IsIncorrectPassword(err error) bool {
	return errors.Is(err, ErrIncorrectPassword)
}

func IsEmailAlreadyExists(err error) bool {
	return errors.Is(err, ErrEmailAlreadyExists)
}

func IsUsernameAlreadyExists(err error) bool {
	return errors.Is(err, ErrUsernameAlreadyExists)
}

func IsSessionNotFound(err error) bool {
	return errors.Is(err, ErrSessionNotFound)
}

func IsProfileNotFound(err error) bool {
	return errors.Is(err, ErrProfileNotFound)
}

func IsNotAuthenticated(err error) bool {
	return errors.Is(err, ErrNotAuthenticated)
}

func IsForbidden(err error) bool {
	return errors.Is(err, ErrForbidden)
}

func IsCategoryNotFound(err error) bool {
	return errors.Is(err, ErrCategoryNotFound)
}

func IsCategoryNameTooShort(err error) bool {
	return errors.Is(err, ErrCategoryNameTooShort)
}

func IsCategoryNameTaken(err error) bool {
	return errors.Is(err, ErrCategoryNameTaken)
}

func IsCategorySlugTaken(err error) bool {
	return errors.Is(err, ErrCategorySlugTaken)
}

func IsParentCategoryNotFound(err error) bool {
	return errors.Is(err, ErrParentCategoryNotFound)
}

func IsCategoryHasProducts(err error) bool {
	return errors.Is(err, ErrCategoryHasProducts)
}

func IsReassignTargetNotFound(err error) bool {
	return errors.Is(err, ErrReassignTargetNotFound)
}

func IsReassignTargetInvalid(err error) bool {
	return errors.Is(err, ErrReassignTargetInvalid)
}

func IsReassignTargetIsSource(err error) bool {
	return errors.Is(err, ErrReassignTargetIsSource)
}

func IsConflictingDeleteParams(err error) bool {
	return errors.Is(err, ErrConflictingDeleteParams)
}

func IsProductNotFound(err error) bool {
	return errors.Is(err, ErrProductNotFound)
}

func IsProductNameTooShort(err error) bool {
	return errors.Is(err, ErrProductNameTooShort)
}

func IsPriceNotPositive(err error) bool {
	return errors.Is(err, ErrPriceNotPositive)
}

func IsStockNegative(err error) bool {
	return errors.Is(err, ErrStockNegative)
}

func IsInactiveStock(err error) bool {
	return errors.Is(err, ErrInactiveStock)
}

func IsInvalidPage(err error) bool {
	return errors.Is(err, ErrInvalidPage)
}

func IsInvalidPageSize(err error) bool {
	return errors.Is(err, ErrInvalidPageSize)
}
