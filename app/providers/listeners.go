package providers

import (
	"context"
	"fmt"

	"github.com/shashiranjanraj/storefront/app/services"
	"github.com/shashiranjanraj/storefront/pkg/event"
	"github.com/shashiranjanraj/storefront/pkg/notification"
)

// Sender delivers a message on every configured channel.
type Sender interface {
	Send(ctx context.Context, msg notification.Message) error
}

// OrderPlacedListener pushes the stored admin notification to the live
// channels.
func OrderPlacedListener(out Sender) event.Listener {
	return func(ctx context.Context, payload any) error {
		placed, ok := payload.(services.OrderPlaced)
		if !ok {
			return fmt.Errorf("order.placed: unexpected payload %T", payload)
		}
		return out.Send(ctx, notification.Message{
			Type:     placed.Notification.Type,
			Title:    "New order received",
			Text:     placed.Notification.Message,
			TargetID: placed.Order.ID,
			Data: map[string]any{
				"notificationId": placed.Notification.ID,
				"reference":      placed.Order.Reference,
				"total":          placed.Order.TotalAmount.StringFixed(2),
				"items":          len(placed.Order.Items),
			},
		})
	}
}
