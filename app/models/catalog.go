package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Category struct {
	ID          uint           `gorm:"primaryKey"                    json:"id"`
	Name        string         `gorm:"uniqueIndex;size:150;not null" json:"name"`
	Description string         `gorm:"type:text"                     json:"description"`
	ImageURL    string         `gorm:"size:500"                      json:"imageUrl"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

// Product is a sellable catalog entry. StockQuantity is only ever lowered
// through a conditional update, so it cannot go negative.
type Product struct {
	ID            uint             `gorm:"primaryKey"                                    json:"id"`
	Name          string           `gorm:"size:255;not null;index"                       json:"name"`
	Description   string           `gorm:"type:text"                                     json:"description"`
	SKU           string           `gorm:"uniqueIndex;size:100;not null"                 json:"sku"`
	Price         decimal.Decimal  `gorm:"type:decimal(12,2);not null"                   json:"price"`
	DiscountPrice *decimal.Decimal `gorm:"type:decimal(12,2)"                            json:"discountPrice,omitempty"`
	StockQuantity int              `gorm:"not null;default:0;check:stock_quantity >= 0"  json:"stockQuantity"`
	Active        bool             `gorm:"not null;index"                                json:"active"`
	CategoryID    uint             `gorm:"index"                                         json:"categoryId"`
	Category      *Category        `json:"category,omitempty"`
	ImageURLs     []string         `gorm:"serializer:json;type:text"                     json:"imageUrls"`
	CreatedAt     time.Time        `json:"createdAt"`
	UpdatedAt     time.Time        `json:"updatedAt"`
	DeletedAt     gorm.DeletedAt   `gorm:"index" json:"-"`
}
