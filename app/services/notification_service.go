package services

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/app/repositories"
)

// NotificationService records and serves the admin inbox.
type NotificationService struct {
	repo  *repositories.NotificationRepository
	users *repositories.UserRepository
}

func NewNotificationService(repo *repositories.NotificationRepository, users *repositories.UserRepository) *NotificationService {
	return &NotificationService{repo: repo, users: users}
}

// Emit records one NEW_ORDER notification for a persisted order.
func (s *NotificationService) Emit(ctx context.Context, order models.Order) (models.Notification, error) {
	if order.ID == 0 {
		return models.Notification{}, fmt.Errorf("%w: order is not persisted", ErrInvalidOrder)
	}

	email, err := s.customerEmail(ctx, order)
	if err != nil {
		return models.Notification{}, err
	}

	n := models.Notification{
		Message:  NewOrderMessage(order.ID, email, order.TotalAmount.StringFixed(2)),
		Type:     models.NotificationNewOrder,
		TargetID: order.ID,
		IsRead:   false,
	}
	if err := s.repo.Create(ctx, &n); err != nil {
		return models.Notification{}, fmt.Errorf("record notification for order %d: %w", order.ID, err)
	}
	return n, nil
}

// NewOrderMessage renders the inbox text for a new order.
func NewOrderMessage(orderID uint, email, total string) string {
	return fmt.Sprintf("Order #%d received from %s. Total: $%s", orderID, email, total)
}

func (s *NotificationService) customerEmail(ctx context.Context, order models.Order) (string, error) {
	if order.User != nil && order.User.Email != "" {
		return order.User.Email, nil
	}
	user, err := s.users.FindByID(ctx, order.UserID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", ErrUserNotFound
	}
	if err != nil {
		return "", fmt.Errorf("load customer %d: %w", order.UserID, err)
	}
	return user.Email, nil
}

// HasForOrder reports whether the order already has a notification.
func (s *NotificationService) HasForOrder(ctx context.Context, orderID uint) (bool, error) {
	found, err := s.repo.ForTarget(ctx, orderID)
	return len(found) > 0, err
}

func (s *NotificationService) List(ctx context.Context) ([]models.Notification, error) {
	return s.repo.All(ctx)
}

func (s *NotificationService) UnreadCount(ctx context.Context) (int64, error) {
	return s.repo.UnreadCount(ctx)
}

func (s *NotificationService) MarkRead(ctx context.Context, id uint) (models.Notification, error) {
	n, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Notification{}, ErrNotificationNotFound
	}
	if err != nil {
		return models.Notification{}, err
	}
	if err := s.repo.MarkRead(ctx, id); err != nil {
		return models.Notification{}, err
	}
	n.IsRead = true
	return n, nil
}
