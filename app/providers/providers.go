// Package providers builds the storefront object graph: repositories,
// services and controllers over the infrastructure pkg/app boots. It also
// registers the background pieces: event listeners, queue jobs and
// scheduled tasks.
package providers

import (
	"context"
	"fmt"
	"time"

	"github.com/graphql-go/graphql"

	"github.com/shashiranjanraj/storefront/app/controllers"
	catalogql "github.com/shashiranjanraj/storefront/app/graphql"
	"github.com/shashiranjanraj/storefront/app/repositories"
	"github.com/shashiranjanraj/storefront/app/services"
	"github.com/shashiranjanraj/storefront/config"
	"github.com/shashiranjanraj/storefront/pkg/app"
	"github.com/shashiranjanraj/storefront/pkg/mail"
	"github.com/shashiranjanraj/storefront/pkg/notification"
	"github.com/shashiranjanraj/storefront/pkg/sse"
)

// Container holds everything routes need.
type Container struct {
	Infra *app.Infra

	Orders        *services.OrderService
	Catalog       *services.CatalogService
	Notifications *services.NotificationService
	Stream        *sse.Broker

	AuthController    *controllers.AuthController
	UserController    *controllers.UserController
	OrderController   *controllers.OrderController
	CatalogController *controllers.CatalogController
	AdminController   *controllers.AdminController

	CatalogSchema graphql.Schema
}

// Boot wires the container on in and registers background work.
func Boot(in *app.Infra) (*Container, error) {
	users := repositories.NewUserRepository(in.DB)
	categories := repositories.NewCategoryRepository(in.DB)
	products := repositories.NewProductRepository(in.DB)
	orders := repositories.NewOrderRepository(in.DB)
	inbox := repositories.NewNotificationRepository(in.DB)

	notifications := services.NewNotificationService(inbox, users)
	catalog := services.NewCatalogService(categories, products, in.Disk)
	orderService := services.NewOrderService(services.OrderServiceDeps{
		DB:       in.DB,
		Users:    users,
		Orders:   orders,
		Ledger:   services.NewInventoryLedger(products),
		Notifier: notifications,
		Jobs:     in.Queue,
		Events:   in.Events,
	})

	stream := sse.NewBroker()

	schema, err := catalogql.NewSchema(catalog)
	if err != nil {
		return nil, fmt.Errorf("providers: graphql schema: %w", err)
	}

	c := &Container{
		Infra:         in,
		Orders:        orderService,
		Catalog:       catalog,
		Notifications: notifications,
		Stream:        stream,

		AuthController:    controllers.NewAuthController(services.NewAuthService(users)),
		UserController:    controllers.NewUserController(services.NewUserService(users)),
		OrderController:   controllers.NewOrderController(orderService),
		CatalogController: controllers.NewCatalogController(catalog),
		AdminController: controllers.NewAdminController(
			services.NewStatsService(products, categories, orders),
			notifications,
			in.Hub,
			stream,
		),

		CatalogSchema: schema,
	}

	in.Queue.Register(services.JobRetryNotification, services.RetryNotificationFactory(notifications, orders, in.Events))
	in.Events.Listen(services.EventOrderPlaced, OrderPlacedListener(newAdminNotifier(in, stream)))
	in.Schedule.Every(config.Duration("NOTIFICATION_SWEEP_INTERVAL", 5*time.Minute), "notifications.sweep", func(ctx context.Context) error {
		_, err := services.SweepMissingNotifications(ctx, notifications, orders, in.Events, time.Minute)
		return err
	})

	return c, nil
}

// newAdminNotifier fans new-order messages out to the admin websocket hub
// and SSE stream. Slack, a JSON webhook, Kafka and email join when
// SLACK_WEBHOOK_URL, ORDER_WEBHOOK_URL, KAFKA_BROKERS and MAIL_HOST are set.
func newAdminNotifier(in *app.Infra, stream *sse.Broker) *notification.Notifier {
	channels := []notification.Channel{
		notification.HubChannel{Hub: in.Hub},
		notification.StreamChannel{Broker: stream},
	}
	if url := config.SlackWebhookURL(); url != "" {
		channels = append(channels, notification.SlackChannel{WebhookURL: url, Attempts: 3})
	}
	if url := config.Get("ORDER_WEBHOOK_URL", ""); url != "" {
		channels = append(channels, notification.WebhookChannel{URL: url, Attempts: 3})
	}
	if brokers := config.Get("KAFKA_BROKERS", ""); brokers != "" {
		w := notification.NewKafkaWriter(brokers, config.Get("KAFKA_ORDER_TOPIC", "orders.placed"))
		channels = append(channels, notification.KafkaChannel{Writer: w})
	}
	if cfg := mail.FromConfig(); cfg.Enabled() {
		to := config.Get("ORDER_ALERT_EMAIL", config.AdminEmail())
		channels = append(channels, notification.MailChannel{Mailer: mail.New(cfg), To: []string{to}})
	}
	return notification.NewNotifier(channels...)
}
