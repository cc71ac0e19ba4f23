package seeders

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/config"
	"github.com/shashiranjanraj/storefront/pkg/auth"
)

// StarterCategory is created so products can be added right away.
const StarterCategory = "General"

func init() {
	Register("admin user", SeedAdmin)
	Register("starter category", SeedStarterCategory)
}

// SeedAdmin creates the ADMIN account from ADMIN_EMAIL / ADMIN_PASSWORD
// unless a user with that email exists.
func SeedAdmin(ctx context.Context, db *gorm.DB) error {
	email := config.AdminEmail()
	var existing models.User
	err := db.WithContext(ctx).Where("email = ?", email).First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	hash, err := auth.HashPassword(config.AdminPassword())
	if err != nil {
		return err
	}
	return db.WithContext(ctx).Create(&models.User{
		FirstName: "Admin",
		LastName:  "User",
		Email:     email,
		Password:  hash,
		Role:      models.RoleAdmin,
	}).Error
}

func SeedStarterCategory(ctx context.Context, db *gorm.DB) error {
	return db.WithContext(ctx).
		Where(models.Category{Name: StarterCategory}).
		Attrs(models.Category{Description: "Everything else"}).
		FirstOrCreate(&models.Category{}).Error
}
