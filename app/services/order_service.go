package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/app/repositories"
	"github.com/shashiranjanraj/storefront/pkg/logger"
	"github.com/shashiranjanraj/storefront/pkg/metrics"
	"github.com/shashiranjanraj/storefront/pkg/queue"
)

// EventOrderPlaced is fired after an order commits. Its payload is OrderPlaced.
const EventOrderPlaced = "order.placed"

// OrderPlaced is the payload of EventOrderPlaced.
type OrderPlaced struct {
	Order        models.Order
	Notification models.Notification
}

// NotificationEmitter records the admin notification for a placed order.
type NotificationEmitter interface {
	Emit(ctx context.Context, order models.Order) (models.Notification, error)
}

// JobDispatcher queues background work.
type JobDispatcher interface {
	Dispatch(ctx context.Context, job queue.Job) error
}

// EventPublisher announces domain events to listeners.
type EventPublisher interface {
	FireAsync(ctx context.Context, name string, payload any)
}

// OrderService places orders and answers order queries.
type OrderService struct {
	db       *gorm.DB
	users    *repositories.UserRepository
	orders   *repositories.OrderRepository
	ledger   *InventoryLedger
	notifier NotificationEmitter
	jobs     JobDispatcher
	events   EventPublisher
	now      func() time.Time
}

type OrderServiceDeps struct {
	DB       *gorm.DB
	Users    *repositories.UserRepository
	Orders   *repositories.OrderRepository
	Ledger   *InventoryLedger
	Notifier NotificationEmitter
	Jobs     JobDispatcher
	Events   EventPublisher
	Now      func() time.Time
}

func NewOrderService(d OrderServiceDeps) *OrderService {
	if d.Now == nil {
		d.Now = time.Now
	}
	return &OrderService{
		db:       d.DB,
		users:    d.Users,
		orders:   d.Orders,
		ledger:   d.Ledger,
		notifier: d.Notifier,
		jobs:     d.Jobs,
		events:   d.Events,
		now:      d.Now,
	}
}

// PlaceOrder turns the cart into a persisted PENDING order for userID.
//
// Resolving the user, reserving stock for every line and writing the order
// share one transaction: either all of it commits or none of it is visible.
// The admin notification is written after the commit; if that fails the
// order still stands, the failure is logged and a retry job is queued.
func (s *OrderService) PlaceOrder(ctx context.Context, req PlaceOrderRequest, userID uint) (models.Order, error) {
	log := logger.WithCtx(ctx).With("user_id", userID)
	log.Debug("placement started", "lines", len(req.Items))

	if len(req.Items) == 0 {
		return models.Order{}, s.rejected(log, fmt.Errorf("%w: order has no items", ErrInvalidOrder))
	}

	var order models.Order
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		user, err := s.users.WithTx(tx).FindByID(ctx, userID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		if err != nil {
			return fmt.Errorf("%w: load user: %v", ErrPersistence, err)
		}

		log.Debug("reserving stock")
		ledger := s.ledger.WithTx(tx)
		reserved := make([]models.Product, 0, len(req.Items))
		for _, line := range req.Items {
			product, err := ledger.Reserve(ctx, line.ProductID, line.Quantity)
			if err != nil {
				return err
			}
			reserved = append(reserved, product)
		}

		built, err := BuildOrder(user, req, reserved, s.now())
		if err != nil {
			return err
		}
		log.Debug("persisting order", "reference", built.Reference)

		if err := s.orders.WithTx(tx).Create(ctx, &built); err != nil {
			return fmt.Errorf("%w: %v", ErrPersistence, err)
		}
		built.User = &user
		order = built
		return nil
	})
	if err != nil {
		return models.Order{}, s.rejected(log, classify(err))
	}
	s.ledger.Settled()

	metrics.OrdersPlaced.WithLabelValues("placed").Inc()
	metrics.OrderValue.Observe(order.TotalAmount.InexactFloat64())
	log.Info("order placed", "order_id", order.ID, "reference", order.Reference, "total", order.TotalAmount.StringFixed(2))

	s.notify(ctx, order)
	return order, nil
}

func (s *OrderService) notify(ctx context.Context, order models.Order) {
	log := logger.WithCtx(ctx).With("order_id", order.ID)

	n, err := s.notifier.Emit(ctx, order)
	if err != nil {
		metrics.NotificationFailures.Inc()
		log.Error("order notification failed; queuing retry", "error", err)
		if s.jobs != nil {
			if derr := s.jobs.Dispatch(ctx, &RetryNotificationJob{OrderID: order.ID}); derr != nil {
				log.Error("could not queue notification retry", "error", derr)
			}
		}
		return
	}
	log.Debug("notification recorded", "notification_id", n.ID)

	if s.events != nil {
		s.events.FireAsync(ctx, EventOrderPlaced, OrderPlaced{Order: order, Notification: n})
	}
}

func (s *OrderService) rejected(log *slog.Logger, err error) error {
	outcome := "failed"
	switch {
	case errors.Is(err, ErrInsufficientStock):
		outcome = "insufficient_stock"
	case errors.Is(err, ErrProductNotFound), errors.Is(err, ErrUserNotFound):
		outcome = "not_found"
	case errors.Is(err, ErrInvalidOrder):
		outcome = "invalid"
	}
	metrics.OrdersPlaced.WithLabelValues(outcome).Inc()
	log.Info("placement aborted", "outcome", outcome, "error", err)
	return err
}

// classify keeps domain errors and reports anything else from the store
// as ErrPersistence.
func classify(err error) error {
	for _, known := range []error{ErrUserNotFound, ErrProductNotFound, ErrInsufficientStock, ErrInvalidOrder, ErrPersistence} {
		if errors.Is(err, known) {
			return err
		}
	}
	return fmt.Errorf("%w: %v", ErrPersistence, err)
}

// ListForUser returns the user's orders, newest first.
func (s *OrderService) ListForUser(ctx context.Context, userID uint) ([]models.Order, error) {
	return s.orders.ForUser(ctx, userID)
}

// ListAll returns every order, newest first.
func (s *OrderService) ListAll(ctx context.Context) ([]models.Order, error) {
	return s.orders.All(ctx)
}

// UpdateStatus moves an order along its lifecycle.
func (s *OrderService) UpdateStatus(ctx context.Context, id uint, next models.OrderStatus) (models.Order, error) {
	order, err := s.orders.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Order{}, ErrOrderNotFound
	}
	if err != nil {
		return models.Order{}, err
	}
	if !next.Valid() || !order.Status.CanTransitionTo(next) {
		return models.Order{}, fmt.Errorf("%w: %s to %s", ErrInvalidTransition, order.Status, next)
	}

	if err := s.orders.UpdateStatus(ctx, id, next); err != nil {
		return models.Order{}, err
	}
	order.Status = next
	logger.WithCtx(ctx).Info("order status changed", "order_id", id, "status", next)
	return order, nil
}
