package app

import (
	"net/http"
	"time"

	"github.com/shashiranjanraj/storefront/config"
	"github.com/shashiranjanraj/storefront/pkg/metrics"
	"github.com/shashiranjanraj/storefront/pkg/middleware"
	"github.com/shashiranjanraj/storefront/pkg/reqid"
	"github.com/shashiranjanraj/storefront/pkg/router"
)

// buildHandler mounts the global middleware, /metrics and the project
// routes. Middleware runs outermost first:
//
//  1. metrics    total latency per route pattern
//  2. recovery   panics become 500
//  3. reqid      request id before anything logs
//  4. logger     one line per request
//  5. cors
//  6. rate limit per client IP
func buildHandler(routes func(*router.Router)) http.Handler {
	r := newRouter()
	if routes != nil {
		routes(r)
	}
	return r.Handler()
}

func newRouter() *router.Router {
	r := router.New()
	r.Use(metrics.Middleware())
	r.Use(middleware.Recovery)
	r.Use(reqid.Middleware())
	r.Use(middleware.Logger)
	r.Use(middleware.CORS(middleware.CORSFromConfig()))
	r.Use(middleware.RateLimit(config.Int("RATE_LIMIT_PER_MINUTE", 200), time.Minute))

	r.HandleFunc("/metrics", metrics.Handler())
	return r
}
