package controllers

import (
	"github.com/shashiranjanraj/storefront/app/services"
	"github.com/shashiranjanraj/storefront/pkg/ctx"
)

type UserController struct {
	service *services.UserService
}

func NewUserController(service *services.UserService) *UserController {
	return &UserController{service: service}
}

func (uc *UserController) Me(c *ctx.Context) {
	user, err := uc.service.Profile(c.Context(), c.UserID())
	if err != nil {
		respondError(c, err)
		return
	}
	c.Success(user)
}

func (uc *UserController) UpdateMe(c *ctx.Context) {
	var in services.UpdateProfileRequest
	if !c.BindJSON(&in) {
		return
	}
	user, err := uc.service.UpdateProfile(c.Context(), c.UserID(), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Success(user)
}

func (uc *UserController) DeleteMe(c *ctx.Context) {
	if err := uc.service.Delete(c.Context(), c.UserID()); err != nil {
		respondError(c, err)
		return
	}
	c.Message("Account deleted")
}
