package controllers

import (
	"github.com/shashiranjanraj/storefront/app/services"
	"github.com/shashiranjanraj/storefront/pkg/ctx"
)

type AuthController struct {
	service *services.AuthService
}

func NewAuthController(service *services.AuthService) *AuthController {
	return &AuthController{service: service}
}

func (ac *AuthController) Register(c *ctx.Context) {
	var in services.RegisterRequest
	if !c.BindJSON(&in) {
		return
	}
	out, err := ac.service.Register(c.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Success(out)
}

func (ac *AuthController) Authenticate(c *ctx.Context) {
	var in services.AuthenticateRequest
	if !c.BindJSON(&in) {
		return
	}
	out, err := ac.service.Authenticate(c.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Success(out)
}

// Logout is a client-side operation for stateless tokens.
func (ac *AuthController) Logout(c *ctx.Context) {
	c.Message("Logged out successfully")
}
