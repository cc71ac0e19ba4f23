package routes_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/app/providers"
	"github.com/shashiranjanraj/storefront/app/routes"
	"github.com/shashiranjanraj/storefront/config"
	"github.com/shashiranjanraj/storefront/pkg/app"
	"github.com/shashiranjanraj/storefront/pkg/auth"
	"github.com/shashiranjanraj/storefront/pkg/database/dbtest"
	"github.com/shashiranjanraj/storefront/pkg/event"
	"github.com/shashiranjanraj/storefront/pkg/queue"
	"github.com/shashiranjanraj/storefront/pkg/router"
	"github.com/shashiranjanraj/storefront/pkg/schedule"
	"github.com/shashiranjanraj/storefront/pkg/storage"
	"github.com/shashiranjanraj/storefront/pkg/testkit"
	"github.com/shashiranjanraj/storefront/pkg/workerpool"
	"github.com/shashiranjanraj/storefront/pkg/ws"
)

type world struct {
	handler   http.Handler
	container *providers.Container
	tokens    map[string]string
}

// newWorld boots the routes over a fresh database holding an admin, a
// customer, the "Mugs" category and one product (id 1, 19.99, 5 in stock).
func newWorld(t *testing.T) *world {
	t.Helper()
	config.Set("JWT_SECRET", "routes-test")
	t.Cleanup(config.Reset)

	db := dbtest.New(t, models.All()...)
	pool := workerpool.New("routes-test", 1, 16)
	t.Cleanup(pool.Shutdown)

	in := &app.Infra{
		DB:       db,
		Disk:     storage.NewLocalDisk(t.TempDir(), "/storage"),
		Hub:      ws.NewHub(),
		Events:   event.NewBus(pool),
		Queue:    queue.New(queue.NewMemoryDriver(16)),
		Schedule: schedule.New(),
	}
	c, err := providers.Boot(in)
	require.NoError(t, err)

	ctx := context.Background()
	admin := models.User{FirstName: "Site", LastName: "Admin", Email: "admin@shop.test", Password: "x", Role: models.RoleAdmin}
	customer := models.User{FirstName: "Ada", LastName: "Lovelace", Email: "ada@shop.test", Password: "x", Role: models.RoleUser}
	require.NoError(t, db.WithContext(ctx).Create(&admin).Error)
	require.NoError(t, db.WithContext(ctx).Create(&customer).Error)

	mugs := models.Category{Name: "Mugs"}
	require.NoError(t, db.Create(&mugs).Error)
	require.NoError(t, db.Create(&models.Product{
		Name:          "Enamel Mug",
		SKU:           "MUG-1",
		Price:         decimal.RequireFromString("19.99"),
		StockQuantity: 5,
		Active:        true,
		CategoryID:    mugs.ID,
	}).Error)

	w := &world{container: c, tokens: map[string]string{}}
	for name, u := range map[string]models.User{"admin": admin, "customer": customer} {
		token, err := auth.GenerateToken(u.ID, u.Email, string(u.Role))
		require.NoError(t, err)
		w.tokens[name] = token
	}

	r := router.New()
	routes.RegisterAPI(r, c)
	w.handler = r.Handler()
	return w
}

func TestAPIScenarios(t *testing.T) {
	w := newWorld(t)
	runner := &testkit.Runner{Handler: w.handler, Tokens: w.tokens}
	runner.RunDir(t, "testdata")
}

func TestOrderPlacementLeavesOneUnreadNotification(t *testing.T) {
	w := newWorld(t)
	runner := &testkit.Runner{Handler: w.handler, Tokens: w.tokens}

	runner.Run(t, &testkit.Scenario{
		Name:         "place",
		Method:       http.MethodPost,
		URL:          "/api/v1/orders",
		As:           "customer",
		Body:         []byte(`{"items":[{"productId":1,"quantity":1}]}`),
		ExpectedCode: http.StatusOK,
	})

	unread, err := w.container.Notifications.UnreadCount(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 1, unread)

	list, err := w.container.Notifications.List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Contains(t, list[0].Message, "ada@shop.test")
	assert.Contains(t, list[0].Message, "19.99")
}

func TestOrderThatCannotBeSavedAnswersUnavailable(t *testing.T) {
	w := newWorld(t)
	require.NoError(t, w.container.Infra.DB.Migrator().DropTable(&models.OrderItem{}))
	runner := &testkit.Runner{Handler: w.handler, Tokens: w.tokens}

	rec := runner.Run(t, &testkit.Scenario{
		Name:         "place without order_items",
		Method:       http.MethodPost,
		URL:          "/api/v1/orders",
		As:           "customer",
		Body:         []byte(`{"items":[{"productId":1,"quantity":2}]}`),
		ExpectedCode: http.StatusServiceUnavailable,
		Expect:       []byte(`{"status":503,"message":"could not save order, please retry"}`),
	})
	assert.NotContains(t, rec.Body.String(), "no such table")
	assert.NotContains(t, rec.Body.String(), "order_items")

	runner.Run(t, &testkit.Scenario{
		Name:         "stock untouched",
		Method:       http.MethodGet,
		URL:          "/api/products/1",
		ExpectedCode: http.StatusOK,
		Expect:       []byte(`{"data":{"stockQuantity":5}}`),
	})
}

func TestAdminStreamRequiresAdmin(t *testing.T) {
	w := newWorld(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/notifications/stream?token="+w.tokens["customer"], nil)
	rec := httptest.NewRecorder()
	w.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
