package services

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/app/repositories"
)

// InventoryLedger reserves stock for order lines.
type InventoryLedger struct {
	products *repositories.ProductRepository
}

func NewInventoryLedger(products *repositories.ProductRepository) *InventoryLedger {
	return &InventoryLedger{products: products}
}

// WithTx binds the ledger to tx so reservations commit or roll back with it.
func (l *InventoryLedger) WithTx(tx *gorm.DB) *InventoryLedger {
	return &InventoryLedger{products: l.products.WithTx(tx)}
}

// Settled drops cached catalog data. Call it after the transaction that
// made the reservations has committed.
func (l *InventoryLedger) Settled() { l.products.InvalidateCatalog() }

// Reserve takes quantity units of the product, or fails without touching
// stock. It returns the product as read after the decrement, so its Price
// is the price at reservation time.
//
// Inactive or deleted products report a *ProductNotFoundError; a product
// that exists but cannot cover quantity reports an *InsufficientStockError.
func (l *InventoryLedger) Reserve(ctx context.Context, productID uint, quantity int) (models.Product, error) {
	if quantity <= 0 {
		return models.Product{}, fmt.Errorf("%w: quantity must be positive", ErrInvalidOrder)
	}

	ok, err := l.products.DecrementStock(ctx, productID, quantity)
	if err != nil {
		return models.Product{}, fmt.Errorf("%w: reserve product %d: %v", ErrPersistence, productID, err)
	}

	product, err := l.products.FindByID(ctx, productID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Product{}, &ProductNotFoundError{ProductID: productID}
	}
	if err != nil {
		return models.Product{}, fmt.Errorf("%w: load product %d: %v", ErrPersistence, productID, err)
	}

	if !ok {
		if !product.Active {
			return models.Product{}, &ProductNotFoundError{ProductID: productID}
		}
		return models.Product{}, &InsufficientStockError{ProductID: product.ID, ProductName: product.Name}
	}
	return product, nil
}
