package repositories

import (
	"context"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/storefront/app/models"
)

type CategoryRepository struct{ base }

func NewCategoryRepository(db *gorm.DB) *CategoryRepository {
	return &CategoryRepository{base{db}}
}

func (r *CategoryRepository) All(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	err := r.q(ctx).Order("name asc").Get(&categories)
	return categories, err
}

func (r *CategoryRepository) FindByID(ctx context.Context, id uint) (models.Category, error) {
	var c models.Category
	err := r.q(ctx).Where("id = ?", id).First(&c)
	return c, err
}

// NameTaken reports whether another category (not exceptID) uses name.
func (r *CategoryRepository) NameTaken(ctx context.Context, name string, exceptID uint) (bool, error) {
	return r.q(ctx).Model(&models.Category{}).
		Where("LOWER(name) = LOWER(?) AND id <> ?", name, exceptID).
		Exists()
}

func (r *CategoryRepository) Count(ctx context.Context) (int64, error) {
	return r.q(ctx).Model(&models.Category{}).Count()
}

func (r *CategoryRepository) Create(ctx context.Context, c *models.Category) error {
	return r.q(ctx).Create(c)
}

func (r *CategoryRepository) Update(ctx context.Context, c *models.Category) error {
	return r.q(ctx).Save(c)
}

func (r *CategoryRepository) Delete(ctx context.Context, id uint) (bool, error) {
	return r.q(ctx).Delete(&models.Category{ID: id})
}
