// Package routes maps URLs to controller actions.
package routes

import (
	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/app/providers"
	"github.com/shashiranjanraj/storefront/pkg/ctx"
	"github.com/shashiranjanraj/storefront/pkg/graphql"
	"github.com/shashiranjanraj/storefront/pkg/middleware"
	"github.com/shashiranjanraj/storefront/pkg/rbac"
	"github.com/shashiranjanraj/storefront/pkg/router"
	"github.com/shashiranjanraj/storefront/pkg/storage"
)

func RegisterAPI(r *router.Router, c *providers.Container) {
	catalog := c.CatalogController
	users := c.UserController
	orders := c.OrderController
	admin := c.AdminController

	// Public catalog.
	public := r.Group("/api")
	public.Get("/products", "catalog.products", ctx.Wrap(catalog.ActiveProducts))
	public.Get("/products/{id}", "catalog.products.show", ctx.Wrap(catalog.ShowProduct))
	public.Get("/categories", "catalog.categories", ctx.Wrap(catalog.Categories))

	r.HandleFunc("/graphql", graphql.Handler(c.CatalogSchema))

	if local, ok := c.Infra.Disk.(*storage.LocalDisk); ok {
		r.Mount("/storage", local.Handler("/storage"))
	}

	v1 := r.Group("/api/v1")

	authGroup := v1.Group("/auth")
	authGroup.Post("/register", "auth.register", ctx.Wrap(c.AuthController.Register))
	authGroup.Post("/authenticate", "auth.authenticate", ctx.Wrap(c.AuthController.Authenticate))
	authGroup.Post("/logout", "auth.logout", ctx.Wrap(c.AuthController.Logout))

	member := v1.Group("", middleware.Auth)
	member.Get("/users/me", "users.me", ctx.Wrap(users.Me))
	member.Put("/users/me", "users.me.update", ctx.Wrap(users.UpdateMe))
	member.Delete("/users/me", "users.me.delete", ctx.Wrap(users.DeleteMe))
	member.Post("/orders", "orders.place", ctx.Wrap(orders.Place))
	member.Get("/orders/my-orders", "orders.mine", ctx.Wrap(orders.Mine))

	staff := v1.Group("/admin", middleware.Auth, rbac.HasRole(string(models.RoleAdmin)))
	staff.Get("/stats", "admin.stats", ctx.Wrap(admin.Stats))

	staff.Get("/categories", "admin.categories", ctx.Wrap(catalog.Categories))
	staff.Post("/categories", "admin.categories.store", ctx.Wrap(catalog.CreateCategory))
	staff.Put("/categories/{id}", "admin.categories.update", ctx.Wrap(catalog.UpdateCategory))
	staff.Delete("/categories/{id}", "admin.categories.destroy", ctx.Wrap(catalog.DeleteCategory))

	staff.Get("/products", "admin.products", ctx.Wrap(catalog.AllProducts))
	staff.Post("/products", "admin.products.store", ctx.Wrap(catalog.CreateProduct))
	staff.Put("/products/{id}", "admin.products.update", ctx.Wrap(catalog.UpdateProduct))
	staff.Delete("/products/{id}", "admin.products.destroy", ctx.Wrap(catalog.DeleteProduct))
	staff.Post("/products/{id}/images", "admin.products.images", ctx.Wrap(catalog.UploadImages))

	staff.Get("/orders", "admin.orders", ctx.Wrap(orders.All))
	staff.Patch("/orders/{id}/status", "admin.orders.status", ctx.Wrap(orders.UpdateStatus))

	staff.Get("/notifications", "admin.notifications", ctx.Wrap(admin.Notifications))
	staff.Get("/notifications/unread-count", "admin.notifications.unread", ctx.Wrap(admin.UnreadCount))
	staff.Patch("/notifications/{id}/read", "admin.notifications.read", ctx.Wrap(admin.MarkRead))
	staff.Get("/notifications/ws", "admin.notifications.ws", ctx.Wrap(admin.Live))
	staff.Get("/notifications/stream", "admin.notifications.stream", ctx.Wrap(admin.Stream))
}
