package repositories

import (
	"context"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/storefront/app/models"
)

type NotificationRepository struct{ base }

func NewNotificationRepository(db *gorm.DB) *NotificationRepository {
	return &NotificationRepository{base{db}}
}

func (r *NotificationRepository) Create(ctx context.Context, n *models.Notification) error {
	return r.q(ctx).Create(n)
}

func (r *NotificationRepository) All(ctx context.Context) ([]models.Notification, error) {
	var out []models.Notification
	err := r.q(ctx).Order("created_at desc, id desc").Get(&out)
	return out, err
}

func (r *NotificationRepository) ForTarget(ctx context.Context, targetID uint) ([]models.Notification, error) {
	var out []models.Notification
	err := r.q(ctx).Where("target_id = ?", targetID).Order("id asc").Get(&out)
	return out, err
}

func (r *NotificationRepository) UnreadCount(ctx context.Context) (int64, error) {
	return r.q(ctx).Model(&models.Notification{}).Where("is_read = ?", false).Count()
}

func (r *NotificationRepository) FindByID(ctx context.Context, id uint) (models.Notification, error) {
	var n models.Notification
	err := r.q(ctx).Where("id = ?", id).First(&n)
	return n, err
}

func (r *NotificationRepository) MarkRead(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Model(&models.Notification{}).Where("id = ?", id).Update("is_read", true).Error
}
