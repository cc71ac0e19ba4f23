package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/app/repositories"
	"github.com/shashiranjanraj/storefront/pkg/logger"
	"github.com/shashiranjanraj/storefront/pkg/queue"
)

const JobRetryNotification = "notifications.retry"

// RetryNotificationJob writes the NEW_ORDER notification for an order
// whose notification failed at placement time. Running it twice is safe.
type RetryNotificationJob struct {
	OrderID uint `json:"orderId"`

	notifications *NotificationService
	orders        *repositories.OrderRepository
	events        EventPublisher
}

func (RetryNotificationJob) Name() string { return JobRetryNotification }

func (j *RetryNotificationJob) Handle(ctx context.Context) error {
	done, err := j.notifications.HasForOrder(ctx, j.OrderID)
	if err != nil {
		return err
	}
	if done {
		return nil
	}

	order, err := j.orders.FindByID(ctx, j.OrderID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("load order %d: %w", j.OrderID, err)
	}

	_, err = backfill(ctx, j.notifications, j.events, order)
	return err
}

// RetryNotificationFactory builds decodable retry jobs for queue.Register.
func RetryNotificationFactory(n *NotificationService, orders *repositories.OrderRepository, events EventPublisher) func() queue.Job {
	return func() queue.Job {
		return &RetryNotificationJob{notifications: n, orders: orders, events: events}
	}
}

// SweepMissingNotifications emits the notification for every order older
// than grace that still has none. Retry jobs live in the queue driver and
// can be lost on restart; the sweep is the backstop. It reports how many
// notifications it wrote.
func SweepMissingNotifications(ctx context.Context, n *NotificationService, orders *repositories.OrderRepository, events EventPublisher, grace time.Duration) (int, error) {
	missing, err := orders.WithoutNotification(ctx, time.Now().Add(-grace), 100)
	if err != nil {
		return 0, err
	}

	written := 0
	for _, order := range missing {
		wrote, err := backfill(ctx, n, events, order)
		if err != nil {
			return written, fmt.Errorf("order %d: %w", order.ID, err)
		}
		if wrote {
			written++
		}
	}
	if written > 0 {
		logger.WithCtx(ctx).Info("missing order notifications written", "count", written)
	}
	return written, nil
}

// backfill emits the late notification for order and announces it as a
// placed order. Losing the insert to a concurrent writer counts as done.
func backfill(ctx context.Context, n *NotificationService, events EventPublisher, order models.Order) (bool, error) {
	note, err := n.Emit(ctx, order)
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		logger.WithCtx(ctx).Debug("order notification already written", "order_id", order.ID)
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if events != nil {
		events.FireAsync(ctx, EventOrderPlaced, OrderPlaced{Order: order, Notification: note})
	}
	return true, nil
}
