package services

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/app/repositories"
)

// UpdateProfileRequest is a partial update: blank fields keep their value.
type UpdateProfileRequest struct {
	FirstName string `json:"firstName" validate:"max=100"`
	LastName  string `json:"lastName"  validate:"max=100"`
	Address   string `json:"address"   validate:"max=500"`
	Telephone string `json:"telephone" validate:"max=50"`
	Mobile    string `json:"mobile"    validate:"max=50"`
}

type UserService struct {
	users *repositories.UserRepository
}

func NewUserService(users *repositories.UserRepository) *UserService {
	return &UserService{users: users}
}

func (s *UserService) Profile(ctx context.Context, id uint) (models.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.User{}, ErrUserNotFound
	}
	return user, err
}

func (s *UserService) UpdateProfile(ctx context.Context, id uint, req UpdateProfileRequest) (models.User, error) {
	user, err := s.Profile(ctx, id)
	if err != nil {
		return models.User{}, err
	}

	apply := func(dst *string, v string) {
		if v = strings.TrimSpace(v); v != "" {
			*dst = v
		}
	}
	apply(&user.FirstName, req.FirstName)
	apply(&user.LastName, req.LastName)
	apply(&user.Address, req.Address)
	apply(&user.Telephone, req.Telephone)
	apply(&user.Mobile, req.Mobile)

	if err := s.users.Update(ctx, &user); err != nil {
		return models.User{}, err
	}
	return user, nil
}

func (s *UserService) Delete(ctx context.Context, id uint) error {
	ok, err := s.users.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return ErrUserNotFound
	}
	return nil
}
