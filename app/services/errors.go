package services

import (
	"errors"
	"fmt"
)

var (
	ErrUserNotFound         = errors.New("user not found")
	ErrProductNotFound      = errors.New("product not found")
	ErrInsufficientStock    = errors.New("insufficient stock")
	ErrPersistence          = errors.New("could not save order, please retry")
	ErrInvalidOrder         = errors.New("invalid order")
	ErrOrderNotFound        = errors.New("order not found")
	ErrInvalidTransition    = errors.New("invalid order status transition")
	ErrCategoryNotFound     = errors.New("category not found")
	ErrDuplicateSKU         = errors.New("a product with this SKU already exists")
	ErrDuplicateCategory    = errors.New("a category with this name already exists")
	ErrDuplicateEmail       = errors.New("email is already registered")
	ErrInvalidCredentials   = errors.New("invalid email or password")
	ErrNotificationNotFound = errors.New("notification not found")
)

// InsufficientStockError names the product that could not cover its line.
type InsufficientStockError struct {
	ProductID   uint
	ProductName string
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("Insufficient stock for product: %s", e.ProductName)
}

func (e *InsufficientStockError) Unwrap() error { return ErrInsufficientStock }

// ProductNotFoundError carries the id that did not resolve.
type ProductNotFoundError struct {
	ProductID uint
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("Product not found with id: %d", e.ProductID)
}

func (e *ProductNotFoundError) Unwrap() error { return ErrProductNotFound }
