package repositories

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/pkg/orm"
)

type OrderRepository struct{ base }

func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{base{db}}
}

func (r *OrderRepository) WithTx(tx *gorm.DB) *OrderRepository {
	return &OrderRepository{base{tx}}
}

// Create inserts the order together with its items.
func (r *OrderRepository) Create(ctx context.Context, o *models.Order) error {
	return r.q(ctx).Omit("User").Create(o)
}

func (r *OrderRepository) FindByID(ctx context.Context, id uint) (models.Order, error) {
	var o models.Order
	err := r.withItems(ctx).Where("id = ?", id).First(&o)
	return o, err
}

// ForUser lists the user's orders, newest first.
func (r *OrderRepository) ForUser(ctx context.Context, userID uint) ([]models.Order, error) {
	var orders []models.Order
	err := r.withItems(ctx).Where("user_id = ?", userID).Order("created_at desc, id desc").Get(&orders)
	return orders, err
}

// All lists every order, newest first.
func (r *OrderRepository) All(ctx context.Context) ([]models.Order, error) {
	var orders []models.Order
	err := r.withItems(ctx).Order("created_at desc, id desc").Get(&orders)
	return orders, err
}

// WithoutNotification finds orders placed before cutoff that have no
// NEW_ORDER notification, oldest first.
func (r *OrderRepository) WithoutNotification(ctx context.Context, cutoff time.Time, limit int) ([]models.Order, error) {
	var orders []models.Order
	err := r.withItems(ctx).
		Where("created_at <= ?", cutoff).
		Where("NOT EXISTS (SELECT 1 FROM notifications n WHERE n.target_id = orders.id AND n.type = ?)", models.NotificationNewOrder).
		Order("id asc").
		Limit(limit).
		Get(&orders)
	return orders, err
}

func (r *OrderRepository) Count(ctx context.Context) (int64, error) {
	return r.q(ctx).Model(&models.Order{}).Count()
}

func (r *OrderRepository) UpdateStatus(ctx context.Context, id uint, status models.OrderStatus) error {
	return r.db.WithContext(ctx).Model(&models.Order{ID: id}).Update("status", status).Error
}

// Delete removes an order and its items.
func (r *OrderRepository) Delete(ctx context.Context, id uint) (bool, error) {
	return orm.On(r.db.WithContext(ctx).Select("Items")).Delete(&models.Order{ID: id})
}

func (r *OrderRepository) withItems(ctx context.Context) *orm.Query {
	return r.q(ctx).Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("order_items.id asc")
	})
}
