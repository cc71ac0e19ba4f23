package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	StatusPending    OrderStatus = "PENDING"
	StatusProcessing OrderStatus = "PROCESSING"
	StatusShipped    OrderStatus = "SHIPPED"
	StatusDelivered  OrderStatus = "DELIVERED"
	StatusCancelled  OrderStatus = "CANCELLED"
)

var transitions = map[OrderStatus][]OrderStatus{
	StatusPending:    {StatusProcessing, StatusCancelled},
	StatusProcessing: {StatusShipped},
	StatusShipped:    {StatusDelivered},
}

// Valid reports whether s is a known status.
func (s OrderStatus) Valid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

// CanTransitionTo reports whether an order may move from s to next.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Order is a placed purchase. It owns its items: they are created and
// deleted with it. TotalAmount is always the sum of the item lines.
type Order struct {
	ID              uint            `gorm:"primaryKey"                                 json:"id"`
	Reference       string          `gorm:"uniqueIndex;size:36;not null"               json:"reference"`
	UserID          uint            `gorm:"not null;index"                             json:"userId"`
	User            *User           `json:"-"`
	Items           []OrderItem     `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
	TotalAmount     decimal.Decimal `gorm:"type:decimal(12,2);not null"                json:"totalAmount"`
	ShippingAddress string          `gorm:"size:500"                                   json:"shippingAddress"`
	PaymentMethod   string          `gorm:"size:100"                                   json:"paymentMethod"`
	Status          OrderStatus     `gorm:"size:20;not null;default:PENDING;index"     json:"status"`
	CreatedAt       time.Time       `gorm:"index"                                      json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

// OrderItem is one line of an order. ProductID is a weak reference; the
// name and price are snapshots taken when the order was placed.
type OrderItem struct {
	ID          uint            `gorm:"primaryKey"                  json:"id"`
	OrderID     uint            `gorm:"not null;index"              json:"-"`
	ProductID   uint            `gorm:"not null;index"              json:"productId"`
	ProductName string          `gorm:"size:255;not null"           json:"productName"`
	Quantity    int             `gorm:"not null;check:quantity > 0" json:"quantity"`
	Price       decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"price"`
}

// Subtotal is price × quantity for the line.
func (i OrderItem) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}
