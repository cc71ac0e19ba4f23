package services_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/app/services"
)

func priced(id uint, name, price string) models.Product {
	return models.Product{ID: id, Name: name, Price: decimal.RequireFromString(price)}
}

func TestBuildOrder(t *testing.T) {
	user := models.User{ID: 7}
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	req := services.PlaceOrderRequest{
		ShippingAddress: "1 Main St",
		PaymentMethod:   "CARD",
		Items:           []services.OrderLine{{ProductID: 1, Quantity: 3}, {ProductID: 2, Quantity: 1}},
	}

	order, err := services.BuildOrder(user, req, []models.Product{priced(1, "Tea", "0.10"), priced(2, "Pot", "24.95")}, now)
	require.NoError(t, err)

	assert.Equal(t, uint(7), order.UserID)
	assert.Equal(t, models.StatusPending, order.Status)
	assert.Equal(t, now, order.CreatedAt)
	assert.Equal(t, "1 Main St", order.ShippingAddress)
	assert.Equal(t, "CARD", order.PaymentMethod)
	assert.Len(t, order.Reference, 36)
	require.Len(t, order.Items, 2)
	assert.Equal(t, "Tea", order.Items[0].ProductName)
	assert.Equal(t, "0.30", order.Items[0].Subtotal().StringFixed(2))
	assert.True(t, order.TotalAmount.Equal(decimal.RequireFromString("25.25")), order.TotalAmount.String())
}

func TestBuildOrderRejectsMismatchedInput(t *testing.T) {
	user := models.User{ID: 1}
	now := time.Now()
	one := services.PlaceOrderRequest{Items: []services.OrderLine{{ProductID: 1, Quantity: 1}}}

	_, err := services.BuildOrder(user, services.PlaceOrderRequest{}, nil, now)
	assert.ErrorIs(t, err, services.ErrInvalidOrder)

	_, err = services.BuildOrder(user, one, nil, now)
	assert.ErrorIs(t, err, services.ErrInvalidOrder)

	_, err = services.BuildOrder(user, one, []models.Product{priced(2, "Other", "1.00")}, now)
	assert.ErrorIs(t, err, services.ErrInvalidOrder)

	neg := services.PlaceOrderRequest{Items: []services.OrderLine{{ProductID: 1, Quantity: -1}}}
	_, err = services.BuildOrder(user, neg, []models.Product{priced(1, "Tea", "1.00")}, now)
	assert.ErrorIs(t, err, services.ErrInvalidOrder)
}

func TestStatusTransitions(t *testing.T) {
	allowed := map[models.OrderStatus][]models.OrderStatus{
		models.StatusPending:    {models.StatusProcessing, models.StatusCancelled},
		models.StatusProcessing: {models.StatusShipped},
		models.StatusShipped:    {models.StatusDelivered},
	}
	all := []models.OrderStatus{
		models.StatusPending, models.StatusProcessing, models.StatusShipped,
		models.StatusDelivered, models.StatusCancelled,
	}

	for _, from := range all {
		for _, to := range all {
			want := false
			for _, a := range allowed[from] {
				if a == to {
					want = true
				}
			}
			assert.Equal(t, want, from.CanTransitionTo(to), "%s -> %s", from, to)
		}
	}
	assert.False(t, models.OrderStatus("LOST").Valid())
}
