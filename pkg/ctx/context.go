// Package ctx gives controllers a single request/response handle:
//
//	func (c *ProductController) Show(x *ctx.Context) {
//	    id, ok := x.ParamUint("id")
//	    ...
//	    x.Success(product)
//	}
//
//	r.Get("/api/products/{id}", "products.show", ctx.Wrap(pc.Show))
package ctx

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/shashiranjanraj/storefront/pkg/bind"
	"github.com/shashiranjanraj/storefront/pkg/logger"
	"github.com/shashiranjanraj/storefront/pkg/middleware"
	"github.com/shashiranjanraj/storefront/pkg/response"
	"github.com/shashiranjanraj/storefront/pkg/validate"
)

type HandlerFunc func(c *Context)

// Wrap adapts h to http.HandlerFunc.
func Wrap(h HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := acquire(w, r)
		defer release(c)
		h(c)
	}
}

type Context struct {
	W      http.ResponseWriter
	R      *http.Request
	status int
}

var pool = sync.Pool{
	New: func() any { return &Context{} },
}

func acquire(w http.ResponseWriter, r *http.Request) *Context {
	c := pool.Get().(*Context)
	c.W, c.R, c.status = w, r, 0
	return c
}

func release(c *Context) {
	c.W, c.R = nil, nil
	pool.Put(c)
}

// ─── Request ──────────────────────────────────────────────────────────────────

func (c *Context) Param(key string) string {
	return chi.URLParam(c.R, key)
}

// ParamUint parses a numeric path id. ok is false for anything but a
// positive integer.
func (c *Context) ParamUint(key string) (uint, bool) {
	n, err := strconv.ParseUint(c.Param(key), 10, 64)
	if err != nil || n == 0 {
		return 0, false
	}
	return uint(n), true
}

func (c *Context) Query(key string) string {
	return c.R.URL.Query().Get(key)
}

func (c *Context) Context() context.Context { return c.R.Context() }

// Log returns the request-scoped logger.
func (c *Context) Log() *slog.Logger { return logger.WithCtx(c.R.Context()) }

// Identity returns the authenticated caller.
func (c *Context) Identity() (middleware.Identity, bool) {
	return middleware.IdentityFromCtx(c.R.Context())
}

// UserID returns the caller's user id, or 0 on public routes.
func (c *Context) UserID() uint {
	id, _ := c.Identity()
	return id.UserID
}

func (c *Context) Role() string {
	id, _ := c.Identity()
	return id.Role
}

// BindJSON decodes and validates the body into dest. On failure it writes
// 400 (malformed body) or 422 (validation) and returns false.
//
//	var in PlaceOrderInput
//	if !c.BindJSON(&in) {
//	    return
//	}
func (c *Context) BindJSON(dest any) bool {
	errs, err := bind.JSON(c.R, dest)
	if err != nil {
		c.Error(http.StatusBadRequest, err.Error())
		return false
	}
	if validate.HasErrors(errs) {
		c.ValidationError(errs)
		return false
	}
	return true
}

// ─── Response ─────────────────────────────────────────────────────────────────

func (c *Context) JSON(code int, body response.Envelope) {
	c.status = code
	response.Write(c.W, code, body)
}

func (c *Context) Success(data any) {
	c.JSON(http.StatusOK, response.Envelope{Status: http.StatusOK, Data: data})
}

func (c *Context) Created(data any) {
	c.JSON(http.StatusCreated, response.Envelope{Status: http.StatusCreated, Data: data})
}

// Message sends a 200 with only a message, e.g. after a delete.
func (c *Context) Message(message string) {
	c.JSON(http.StatusOK, response.Envelope{Status: http.StatusOK, Message: message})
}

func (c *Context) Error(code int, message string) {
	c.JSON(code, response.Envelope{Status: code, Message: message})
}

func (c *Context) ValidationError(errs map[string]string) {
	c.JSON(http.StatusUnprocessableEntity, response.Envelope{
		Status:  http.StatusUnprocessableEntity,
		Message: "Validation failed",
		Errors:  errs,
	})
}

func (c *Context) Unauthorized() { c.Error(http.StatusUnauthorized, "Unauthorized") }

func (c *Context) NotFound(message string) { c.Error(http.StatusNotFound, message) }

// WrittenStatus returns the status written so far, or 0.
func (c *Context) WrittenStatus() int { return c.status }
