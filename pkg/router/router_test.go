package router_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/storefront/pkg/router"
)

func tag(value string) router.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Add("X-Chain", value)
			next.ServeHTTP(w, r)
		})
	}
}

func TestGroupsComposePrefixAndMiddleware(t *testing.T) {
	r := router.New()
	api := r.Group("/api/v1", tag("api"))
	admin := api.Group("admin", tag("admin"))
	admin.Patch("/orders/{id}/status", "admin.orders.status", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPatch, "/api/v1/admin/orders/3/status", nil))

	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, []string{"api", "admin"}, rec.Header().Values("X-Chain"))
}

func TestNamedRoutesAndListing(t *testing.T) {
	r := router.New()
	noop := func(http.ResponseWriter, *http.Request) {}
	r.Get("/api/products/{id}", "products.show", noop)
	r.Delete("/api/products/{id}", "", noop)
	r.Post("/api/v1/orders", "orders.place", noop)

	url, err := r.URL("products.show", map[string]string{"id": "9"})
	require.NoError(t, err)
	assert.Equal(t, "/api/products/9", url)

	_, err = r.URL("products.show", nil)
	assert.Error(t, err)

	routes := r.Routes()
	require.Len(t, routes, 3)
	assert.Equal(t, router.RouteInfo{Method: http.MethodDelete, Path: "/api/products/{id}"}, routes[0])
	assert.Equal(t, "orders.place", routes[2].Name)
}
