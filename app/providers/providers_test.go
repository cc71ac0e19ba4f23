package providers_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/app/providers"
	"github.com/shashiranjanraj/storefront/app/services"
	"github.com/shashiranjanraj/storefront/pkg/app"
	"github.com/shashiranjanraj/storefront/pkg/database/dbtest"
	"github.com/shashiranjanraj/storefront/pkg/event"
	"github.com/shashiranjanraj/storefront/pkg/notification"
	"github.com/shashiranjanraj/storefront/pkg/queue"
	"github.com/shashiranjanraj/storefront/pkg/schedule"
	"github.com/shashiranjanraj/storefront/pkg/storage"
	"github.com/shashiranjanraj/storefront/pkg/workerpool"
	"github.com/shashiranjanraj/storefront/pkg/ws"
)

type capture struct{ sent []notification.Message }

func (c *capture) Send(_ context.Context, msg notification.Message) error {
	c.sent = append(c.sent, msg)
	return nil
}

func TestOrderPlacedListener(t *testing.T) {
	out := &capture{}
	listen := providers.OrderPlacedListener(out)

	placed := services.OrderPlaced{
		Order: models.Order{
			ID:          9,
			Reference:   "5f0c6c1e-6f0e-4c39-9a57-0c0f3b8e7d21",
			TotalAmount: decimal.RequireFromString("39.98"),
			Items:       []models.OrderItem{{ProductID: 1, Quantity: 2}},
		},
		Notification: models.Notification{
			ID:      3,
			Type:    models.NotificationNewOrder,
			Message: "Order #9 received from ada@shop.test. Total: $39.98",
		},
	}
	require.NoError(t, listen(context.Background(), placed))

	require.Len(t, out.sent, 1)
	msg := out.sent[0]
	assert.Equal(t, "NEW_ORDER", msg.Type)
	assert.Equal(t, uint(9), msg.TargetID)
	assert.Equal(t, placed.Notification.Message, msg.Text)
	assert.Equal(t, "39.98", msg.Data["total"])
	assert.Equal(t, 1, msg.Data["items"])
}

func TestOrderPlacedListenerRejectsOtherPayloads(t *testing.T) {
	listen := providers.OrderPlacedListener(&capture{})
	assert.Error(t, listen(context.Background(), "not an order"))
}

func TestBootRegistersBackgroundWork(t *testing.T) {
	pool := workerpool.New("providers-test", 1, 4)
	t.Cleanup(pool.Shutdown)
	in := &app.Infra{
		DB:       dbtest.New(t, models.All()...),
		Disk:     storage.NewLocalDisk(t.TempDir(), "/storage"),
		Hub:      ws.NewHub(),
		Events:   event.NewBus(pool),
		Queue:    queue.New(queue.NewMemoryDriver(4)),
		Schedule: schedule.New(),
	}

	c, err := providers.Boot(in)
	require.NoError(t, err)
	assert.NotNil(t, c.OrderController)
	assert.NotNil(t, c.Stream)

	tasks := in.Schedule.List()
	require.Len(t, tasks, 1)
	assert.Contains(t, tasks[0], "notifications.sweep")

	// A retry for an order that does not exist is a no-op, so the job
	// factory must be registered for Process to succeed.
	payload := []byte(`{"name":"` + services.JobRetryNotification + `","payload":{"orderId":404}}`)
	assert.NoError(t, in.Queue.Process(context.Background(), payload))
}
