package controllers

import (
	"github.com/shashiranjanraj/storefront/app/services"
	"github.com/shashiranjanraj/storefront/pkg/ctx"
	"github.com/shashiranjanraj/storefront/pkg/sse"
	"github.com/shashiranjanraj/storefront/pkg/ws"
)

// AdminController serves the dashboard summary and the notification inbox.
type AdminController struct {
	stats         *services.StatsService
	notifications *services.NotificationService
	hub           *ws.Hub
	stream        *sse.Broker
}

func NewAdminController(stats *services.StatsService, notifications *services.NotificationService, hub *ws.Hub, stream *sse.Broker) *AdminController {
	return &AdminController{stats: stats, notifications: notifications, hub: hub, stream: stream}
}

func (ac *AdminController) Stats(c *ctx.Context) {
	st, err := ac.stats.Summary(c.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.Success(st)
}

func (ac *AdminController) Notifications(c *ctx.Context) {
	list, err := ac.notifications.List(c.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.Success(list)
}

func (ac *AdminController) UnreadCount(c *ctx.Context) {
	n, err := ac.notifications.UnreadCount(c.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.Success(n)
}

func (ac *AdminController) MarkRead(c *ctx.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	n, err := ac.notifications.MarkRead(c.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Success(n)
}

// Live upgrades to a websocket that receives every new-order notification.
func (ac *AdminController) Live(c *ctx.Context) {
	ws.Upgrade(c.W, c.R, ac.hub)
}

// Stream is the Server-Sent Events variant of Live.
func (ac *AdminController) Stream(c *ctx.Context) {
	ac.stream.Serve(c.W, c.R)
}
