package services_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/app/repositories"
	"github.com/shashiranjanraj/storefront/app/services"
	"github.com/shashiranjanraj/storefront/pkg/database/dbtest"
	"github.com/shashiranjanraj/storefront/pkg/queue"
)

type fixture struct {
	db            *gorm.DB
	users         *repositories.UserRepository
	categories    *repositories.CategoryRepository
	products      *repositories.ProductRepository
	orders        *repositories.OrderRepository
	inbox         *repositories.NotificationRepository
	notifications *services.NotificationService
	jobs          *recordingJobs
	events        *recordingEvents
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := dbtest.New(t, models.All()...)
	f := &fixture{
		db:         db,
		users:      repositories.NewUserRepository(db),
		categories: repositories.NewCategoryRepository(db),
		products:   repositories.NewProductRepository(db),
		orders:     repositories.NewOrderRepository(db),
		inbox:      repositories.NewNotificationRepository(db),
		jobs:       &recordingJobs{},
		events:     &recordingEvents{},
	}
	f.notifications = services.NewNotificationService(f.inbox, f.users)
	return f
}

// orderService builds the service; a nil emitter means the real inbox.
func (f *fixture) orderService(emitter services.NotificationEmitter, now func() time.Time) *services.OrderService {
	if emitter == nil {
		emitter = f.notifications
	}
	return services.NewOrderService(services.OrderServiceDeps{
		DB:       f.db,
		Users:    f.users,
		Orders:   f.orders,
		Ledger:   services.NewInventoryLedger(f.products),
		Notifier: emitter,
		Jobs:     f.jobs,
		Events:   f.events,
		Now:      now,
	})
}

func (f *fixture) user(t *testing.T, email string) models.User {
	t.Helper()
	u := models.User{FirstName: "Ada", LastName: "Lovelace", Email: email, Password: "x", Role: models.RoleUser}
	require.NoError(t, f.users.Create(context.Background(), &u))
	return u
}

func (f *fixture) category(t *testing.T, name string) models.Category {
	t.Helper()
	c := models.Category{Name: name}
	require.NoError(t, f.categories.Create(context.Background(), &c))
	return c
}

func (f *fixture) product(t *testing.T, cat models.Category, sku, price string, stock int, active bool) models.Product {
	t.Helper()
	p := models.Product{
		Name:          "Product " + sku,
		SKU:           sku,
		Price:         decimal.RequireFromString(price),
		StockQuantity: stock,
		Active:        active,
		CategoryID:    cat.ID,
	}
	require.NoError(t, f.products.Create(context.Background(), &p))
	return p
}

func (f *fixture) stock(t *testing.T, id uint) int {
	t.Helper()
	p, err := f.products.FindByID(context.Background(), id)
	require.NoError(t, err)
	return p.StockQuantity
}

func (f *fixture) orderCount(t *testing.T) int64 {
	t.Helper()
	n, err := f.orders.Count(context.Background())
	require.NoError(t, err)
	return n
}

func cart(lines ...services.OrderLine) services.PlaceOrderRequest {
	return services.PlaceOrderRequest{ShippingAddress: "1 Analytical Way", PaymentMethod: "CARD", Items: lines}
}

func line(productID uint, qty int) services.OrderLine {
	return services.OrderLine{ProductID: productID, Quantity: qty}
}

// clock hands out strictly increasing times, one minute apart.
func clock(start time.Time) func() time.Time {
	var mu sync.Mutex
	next := start
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		now := next
		next = next.Add(time.Minute)
		return now
	}
}

type failingEmitter struct {
	mu    sync.Mutex
	calls int
}

func (e *failingEmitter) Emit(context.Context, models.Order) (models.Notification, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.calls++
	return models.Notification{}, errors.New("inbox unavailable")
}

type recordingJobs struct {
	mu   sync.Mutex
	jobs []queue.Job
}

func (r *recordingJobs) Dispatch(_ context.Context, job queue.Job) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.jobs = append(r.jobs, job)
	return nil
}

type recordingEvents struct {
	mu       sync.Mutex
	names    []string
	payloads []any
}

func (r *recordingEvents) FireAsync(_ context.Context, name string, payload any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.names = append(r.names, name)
	r.payloads = append(r.payloads, payload)
}
