// Package controllers adapts HTTP requests to the services and renders the
// JSON envelope. Domain errors are translated in one place, respondError.
package controllers

import (
	"errors"
	"net/http"

	"github.com/shashiranjanraj/storefront/app/services"
	"github.com/shashiranjanraj/storefront/pkg/ctx"
)

func respondError(c *ctx.Context, err error) {
	switch {
	case errors.Is(err, services.ErrUserNotFound),
		errors.Is(err, services.ErrProductNotFound),
		errors.Is(err, services.ErrOrderNotFound),
		errors.Is(err, services.ErrCategoryNotFound),
		errors.Is(err, services.ErrNotificationNotFound):
		c.NotFound(err.Error())

	case errors.Is(err, services.ErrInsufficientStock),
		errors.Is(err, services.ErrInvalidOrder),
		errors.Is(err, services.ErrInvalidTransition):
		c.Error(http.StatusBadRequest, err.Error())

	case errors.Is(err, services.ErrDuplicateSKU),
		errors.Is(err, services.ErrDuplicateCategory),
		errors.Is(err, services.ErrDuplicateEmail):
		c.Error(http.StatusConflict, err.Error())

	case errors.Is(err, services.ErrInvalidCredentials):
		c.Error(http.StatusUnauthorized, err.Error())

	case errors.Is(err, services.ErrPersistence):
		c.Log().Error("persistence failure", "error", err)
		c.Error(http.StatusServiceUnavailable, services.ErrPersistence.Error())

	default:
		c.Log().Error("unhandled error", "error", err)
		c.Error(http.StatusInternalServerError, "Internal server error")
	}
}

// pathID reads a positive numeric path parameter or answers 400.
func pathID(c *ctx.Context, key string) (uint, bool) {
	id, ok := c.ParamUint(key)
	if !ok {
		c.Error(http.StatusBadRequest, "invalid "+key)
	}
	return id, ok
}
