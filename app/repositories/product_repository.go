package repositories

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/config"
	"github.com/shashiranjanraj/storefront/pkg/logger"
	"github.com/shashiranjanraj/storefront/pkg/orm"
)

// CatalogCacheKey holds the public list of active products.
const CatalogCacheKey = "catalog:products"

type ProductRepository struct{ base }

func NewProductRepository(db *gorm.DB) *ProductRepository {
	return &ProductRepository{base{db}}
}

func (r *ProductRepository) WithTx(tx *gorm.DB) *ProductRepository {
	return &ProductRepository{base{tx}}
}

// Active lists purchasable products, served from the catalog cache when warm.
func (r *ProductRepository) Active(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	err := r.q(ctx).
		Where("active = ?", true).
		Order("id asc").
		Cache(CatalogCacheKey, config.CatalogCacheTTL(), &products)
	return products, err
}

func (r *ProductRepository) All(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	err := r.q(ctx).Preload("Category").Order("id asc").Get(&products)
	return products, err
}

func (r *ProductRepository) FindByID(ctx context.Context, id uint) (models.Product, error) {
	var p models.Product
	err := r.q(ctx).Preload("Category").Where("id = ?", id).First(&p)
	return p, err
}

// SKUTaken reports whether another product (not exceptID) uses sku.
func (r *ProductRepository) SKUTaken(ctx context.Context, sku string, exceptID uint) (bool, error) {
	return r.q(ctx).Model(&models.Product{}).Where("sku = ? AND id <> ?", sku, exceptID).Exists()
}

func (r *ProductRepository) Count(ctx context.Context) (int64, error) {
	return r.q(ctx).Model(&models.Product{}).Count()
}

// StockLevels loads only the price and stock of every product.
func (r *ProductRepository) StockLevels(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	err := r.q(ctx).Select("id", "price", "stock_quantity").Get(&products)
	return products, err
}

func (r *ProductRepository) Create(ctx context.Context, p *models.Product) error {
	if err := r.q(ctx).Omit("Category").Create(p); err != nil {
		return err
	}
	r.InvalidateCatalog()
	return nil
}

// Update writes only the named fields of p. Stock sold while the caller held
// p is not overwritten unless StockQuantity is one of them.
func (r *ProductRepository) Update(ctx context.Context, p *models.Product, fields ...string) error {
	if len(fields) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).Model(p).Select(fields).Updates(p).Error; err != nil {
		return err
	}
	r.InvalidateCatalog()
	return nil
}

// AppendImages adds urls to the product's image list. The list is read and
// written under a row lock so concurrent uploads keep each other's URLs; no
// other column is touched.
func (r *ProductRepository) AppendImages(ctx context.Context, id uint, urls []string) (models.Product, error) {
	var p models.Product
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		read := tx.Select("id", "image_urls")
		if tx.Dialector.Name() != "sqlite" {
			read = read.Clauses(clause.Locking{Strength: "UPDATE"})
		}
		if err := read.Where("id = ?", id).First(&p).Error; err != nil {
			return err
		}

		p.ImageURLs = append(p.ImageURLs, urls...)
		return tx.Model(&models.Product{ID: id}).
			Select("ImageURLs").
			Updates(&models.Product{ImageURLs: p.ImageURLs}).Error
	})
	if err != nil {
		return models.Product{}, err
	}
	r.InvalidateCatalog()
	return p, nil
}

func (r *ProductRepository) Delete(ctx context.Context, id uint) (bool, error) {
	ok, err := r.q(ctx).Delete(&models.Product{ID: id})
	if ok {
		r.InvalidateCatalog()
	}
	return ok, err
}

// DecrementStock lowers stock by qty only if the product is active and has
// at least qty units. It reports false when no row qualified. The check and
// the write are one statement, so concurrent callers cannot oversell.
//
// The catalog cache is left alone: the caller runs this inside a
// transaction and calls InvalidateCatalog once it commits.
func (r *ProductRepository) DecrementStock(ctx context.Context, id uint, qty int) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ? AND active = ? AND stock_quantity >= ?", id, true, qty).
		UpdateColumn("stock_quantity", gorm.Expr("stock_quantity - ?", qty))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// InvalidateCatalog drops the cached public product list.
func (r *ProductRepository) InvalidateCatalog() {
	if err := orm.Forget(CatalogCacheKey); err != nil {
		logger.Warn("catalog cache invalidation failed", "error", err)
	}
}
