package migrations

import (
	"gorm.io/gorm"

	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/pkg/queue"
)

type CreateUsersTable struct{}

func (CreateUsersTable) Up(db *gorm.DB) error   { return db.AutoMigrate(&models.User{}) }
func (CreateUsersTable) Down(db *gorm.DB) error { return drop(db, &models.User{}) }

type CreateCategoriesTable struct{}

func (CreateCategoriesTable) Up(db *gorm.DB) error   { return db.AutoMigrate(&models.Category{}) }
func (CreateCategoriesTable) Down(db *gorm.DB) error { return drop(db, &models.Category{}) }

type CreateProductsTable struct{}

func (CreateProductsTable) Up(db *gorm.DB) error   { return db.AutoMigrate(&models.Product{}) }
func (CreateProductsTable) Down(db *gorm.DB) error { return drop(db, &models.Product{}) }

// CreateOrdersTables creates orders and their owned order_items.
type CreateOrdersTables struct{}

func (CreateOrdersTables) Up(db *gorm.DB) error {
	return db.AutoMigrate(&models.Order{}, &models.OrderItem{})
}

func (CreateOrdersTables) Down(db *gorm.DB) error {
	return drop(db, &models.OrderItem{}, &models.Order{})
}

type CreateNotificationsTable struct{}

func (CreateNotificationsTable) Up(db *gorm.DB) error   { return db.AutoMigrate(&models.Notification{}) }
func (CreateNotificationsTable) Down(db *gorm.DB) error { return drop(db, &models.Notification{}) }

type CreateFailedJobsTable struct{}

func (CreateFailedJobsTable) Up(db *gorm.DB) error   { return db.AutoMigrate(&queue.FailedJobRecord{}) }
func (CreateFailedJobsTable) Down(db *gorm.DB) error { return drop(db, &queue.FailedJobRecord{}) }
