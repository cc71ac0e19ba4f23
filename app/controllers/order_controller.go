package controllers

import (
	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/app/services"
	"github.com/shashiranjanraj/storefront/pkg/ctx"
)

type OrderController struct {
	service *services.OrderService
}

func NewOrderController(service *services.OrderService) *OrderController {
	return &OrderController{service: service}
}

// Place checks out the caller's cart.
func (oc *OrderController) Place(c *ctx.Context) {
	var in services.PlaceOrderRequest
	if !c.BindJSON(&in) {
		return
	}
	order, err := oc.service.PlaceOrder(c.Context(), in, c.UserID())
	if err != nil {
		respondError(c, err)
		return
	}
	c.Success(order)
}

func (oc *OrderController) Mine(c *ctx.Context) {
	orders, err := oc.service.ListForUser(c.Context(), c.UserID())
	if err != nil {
		respondError(c, err)
		return
	}
	c.Success(orders)
}

func (oc *OrderController) All(c *ctx.Context) {
	orders, err := oc.service.ListAll(c.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.Success(orders)
}

type statusInput struct {
	Status string `json:"status" validate:"required,in=PENDING|PROCESSING|SHIPPED|DELIVERED|CANCELLED"`
}

func (oc *OrderController) UpdateStatus(c *ctx.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var in statusInput
	if !c.BindJSON(&in) {
		return
	}
	order, err := oc.service.UpdateStatus(c.Context(), id, models.OrderStatus(in.Status))
	if err != nil {
		respondError(c, err)
		return
	}
	c.Success(order)
}
