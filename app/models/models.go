// Package models holds the gorm-mapped storefront entities.
package models

// All lists every model in dependency order, for migrations and tests.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Category{},
		&Product{},
		&Order{},
		&OrderItem{},
		&Notification{},
	}
}
