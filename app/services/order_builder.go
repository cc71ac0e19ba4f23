package services

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/shashiranjanraj/storefront/app/models"
)

// OrderLine is one cart entry.
type OrderLine struct {
	ProductID uint `json:"productId" validate:"required"`
	Quantity  int  `json:"quantity"  validate:"required,min=1"`
}

// PlaceOrderRequest is the cart submitted at checkout.
type PlaceOrderRequest struct {
	ShippingAddress string      `json:"shippingAddress" validate:"max=500"`
	PaymentMethod   string      `json:"paymentMethod"   validate:"max=100"`
	Items           []OrderLine `json:"items"           validate:"required,min=1,dive"`
}

// BuildOrder assembles an unsaved PENDING order from the cart and the
// products reserved for it, line by line in cart order. Each item snapshots
// the product name and price; the total is the exact sum of the lines.
func BuildOrder(user models.User, req PlaceOrderRequest, reserved []models.Product, now time.Time) (models.Order, error) {
	if len(req.Items) == 0 {
		return models.Order{}, fmt.Errorf("%w: order has no items", ErrInvalidOrder)
	}
	if len(reserved) != len(req.Items) {
		return models.Order{}, fmt.Errorf("%w: %d lines but %d reserved products", ErrInvalidOrder, len(req.Items), len(reserved))
	}

	order := models.Order{
		Reference:       uuid.NewString(),
		UserID:          user.ID,
		ShippingAddress: req.ShippingAddress,
		PaymentMethod:   req.PaymentMethod,
		Status:          models.StatusPending,
		CreatedAt:       now,
		Items:           make([]models.OrderItem, 0, len(req.Items)),
	}

	total := decimal.Zero
	for i, line := range req.Items {
		product := reserved[i]
		if product.ID != line.ProductID {
			return models.Order{}, fmt.Errorf("%w: line %d is for product %d, reserved %d", ErrInvalidOrder, i, line.ProductID, product.ID)
		}
		if line.Quantity <= 0 {
			return models.Order{}, fmt.Errorf("%w: line %d has quantity %d", ErrInvalidOrder, i, line.Quantity)
		}

		item := models.OrderItem{
			ProductID:   product.ID,
			ProductName: product.Name,
			Quantity:    line.Quantity,
			Price:       product.Price,
		}
		total = total.Add(item.Subtotal())
		order.Items = append(order.Items, item)
	}
	order.TotalAmount = total

	return order, nil
}
