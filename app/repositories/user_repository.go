package repositories

import (
	"context"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/storefront/app/models"
)

type UserRepository struct{ base }

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{base{db}}
}

func (r *UserRepository) WithTx(tx *gorm.DB) *UserRepository {
	return &UserRepository{base{tx}}
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (models.User, error) {
	var user models.User
	err := r.q(ctx).Where("email = ?", email).First(&user)
	return user, err
}

func (r *UserRepository) FindByID(ctx context.Context, id uint) (models.User, error) {
	var user models.User
	err := r.q(ctx).Where("id = ?", id).First(&user)
	return user, err
}

func (r *UserRepository) EmailTaken(ctx context.Context, email string) (bool, error) {
	return r.q(ctx).Model(&models.User{}).Where("email = ?", email).Exists()
}

func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	return r.q(ctx).Create(user)
}

func (r *UserRepository) Update(ctx context.Context, user *models.User) error {
	return r.q(ctx).Save(user)
}

func (r *UserRepository) Delete(ctx context.Context, id uint) (bool, error) {
	return r.q(ctx).Delete(&models.User{ID: id})
}
