package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/app/repositories"
	"github.com/shashiranjanraj/storefront/pkg/auth"
)

type RegisterRequest struct {
	FirstName string `json:"firstName" validate:"required,max=100"`
	LastName  string `json:"lastName"  validate:"required,max=100"`
	Email     string `json:"email"     validate:"required,email"`
	Password  string `json:"password"  validate:"required,min=8"`
}

type AuthenticateRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse is returned by register and authenticate.
type AuthResponse struct {
	Token     string      `json:"token"`
	Role      models.Role `json:"role"`
	FirstName string      `json:"firstName"`
	LastName  string      `json:"lastName"`
	Email     string      `json:"email"`
}

type AuthService struct {
	users *repositories.UserRepository
}

func NewAuthService(users *repositories.UserRepository) *AuthService {
	return &AuthService{users: users}
}

// Register creates a USER account and signs a token for it.
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (AuthResponse, error) {
	email := normalizeEmail(req.Email)

	taken, err := s.users.EmailTaken(ctx, email)
	if err != nil {
		return AuthResponse{}, err
	}
	if taken {
		return AuthResponse{}, ErrDuplicateEmail
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return AuthResponse{}, fmt.Errorf("hash password: %w", err)
	}

	user := models.User{
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
		Email:     email,
		Password:  hash,
		Role:      models.RoleUser,
	}
	if err := s.users.Create(ctx, &user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return AuthResponse{}, ErrDuplicateEmail
		}
		return AuthResponse{}, err
	}

	return issue(user)
}

// Authenticate checks the credentials and signs a fresh token.
func (s *AuthService) Authenticate(ctx context.Context, req AuthenticateRequest) (AuthResponse, error) {
	user, err := s.users.FindByEmail(ctx, normalizeEmail(req.Email))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return AuthResponse{}, ErrInvalidCredentials
	}
	if err != nil {
		return AuthResponse{}, err
	}
	if !auth.CheckPassword(user.Password, req.Password) {
		return AuthResponse{}, ErrInvalidCredentials
	}
	return issue(user)
}

func issue(user models.User) (AuthResponse, error) {
	token, err := auth.GenerateToken(user.ID, user.Email, string(user.Role))
	if err != nil {
		return AuthResponse{}, fmt.Errorf("sign token: %w", err)
	}
	return AuthResponse{
		Token:     token,
		Role:      user.Role,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Email:     user.Email,
	}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
