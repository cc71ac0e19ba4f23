package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/app/repositories"
	"github.com/shashiranjanraj/storefront/pkg/logger"
	"github.com/shashiranjanraj/storefront/pkg/storage"
)

type CategoryRequest struct {
	Name        string `json:"name"        validate:"required,max=150"`
	Description string `json:"description" validate:"max=2000"`
	ImageURL    string `json:"imageUrl"    validate:"nullable,url"`
}

// ProductRequest creates or replaces a product. Active defaults to true.
type ProductRequest struct {
	Name          string           `json:"name"          validate:"required,max=255"`
	Description   string           `json:"description"`
	SKU           string           `json:"sku"           validate:"required,max=100"`
	Price         decimal.Decimal  `json:"price"         validate:"required,gte=0"`
	DiscountPrice *decimal.Decimal `json:"discountPrice" validate:"nullable,gte=0"`
	StockQuantity int              `json:"stockQuantity" validate:"gte=0"`
	Active        *bool            `json:"active"`
	CategoryID    uint             `json:"categoryId"    validate:"required"`
	ImageURLs     []string         `json:"imageUrls"`
}

// Upload is one file received for a product.
type Upload struct {
	Filename    string
	ContentType string
	Body        io.Reader
}

// CatalogService manages categories and products.
type CatalogService struct {
	categories *repositories.CategoryRepository
	products   *repositories.ProductRepository
	disk       storage.Disk
}

func NewCatalogService(categories *repositories.CategoryRepository, products *repositories.ProductRepository, disk storage.Disk) *CatalogService {
	return &CatalogService{categories: categories, products: products, disk: disk}
}

// ─── Categories ───────────────────────────────────────────────────────────────

func (s *CatalogService) Categories(ctx context.Context) ([]models.Category, error) {
	return s.categories.All(ctx)
}

func (s *CatalogService) Category(ctx context.Context, id uint) (models.Category, error) {
	c, err := s.categories.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Category{}, ErrCategoryNotFound
	}
	return c, err
}

func (s *CatalogService) CreateCategory(ctx context.Context, req CategoryRequest) (models.Category, error) {
	c := models.Category{}
	if err := s.saveCategory(ctx, &c, req); err != nil {
		return models.Category{}, err
	}
	return c, nil
}

func (s *CatalogService) UpdateCategory(ctx context.Context, id uint, req CategoryRequest) (models.Category, error) {
	c, err := s.Category(ctx, id)
	if err != nil {
		return models.Category{}, err
	}
	if err := s.saveCategory(ctx, &c, req); err != nil {
		return models.Category{}, err
	}
	return c, nil
}

func (s *CatalogService) saveCategory(ctx context.Context, c *models.Category, req CategoryRequest) error {
	name := strings.TrimSpace(req.Name)
	taken, err := s.categories.NameTaken(ctx, name, c.ID)
	if err != nil {
		return err
	}
	if taken {
		return ErrDuplicateCategory
	}

	c.Name = name
	c.Description = req.Description
	c.ImageURL = req.ImageURL

	if c.ID == 0 {
		err = s.categories.Create(ctx, c)
	} else {
		err = s.categories.Update(ctx, c)
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicateCategory
	}
	return err
}

func (s *CatalogService) DeleteCategory(ctx context.Context, id uint) error {
	ok, err := s.categories.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return ErrCategoryNotFound
	}
	return nil
}

// ─── Products ─────────────────────────────────────────────────────────────────

// ActiveProducts is the public catalog.
func (s *CatalogService) ActiveProducts(ctx context.Context) ([]models.Product, error) {
	return s.products.Active(ctx)
}

// Products lists every product, active or not.
func (s *CatalogService) Products(ctx context.Context) ([]models.Product, error) {
	return s.products.All(ctx)
}

func (s *CatalogService) Product(ctx context.Context, id uint) (models.Product, error) {
	p, err := s.products.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Product{}, &ProductNotFoundError{ProductID: id}
	}
	return p, err
}

func (s *CatalogService) CreateProduct(ctx context.Context, req ProductRequest) (models.Product, error) {
	p := models.Product{}
	if err := s.saveProduct(ctx, &p, req); err != nil {
		return models.Product{}, err
	}
	return s.Product(ctx, p.ID)
}

func (s *CatalogService) UpdateProduct(ctx context.Context, id uint, req ProductRequest) (models.Product, error) {
	p, err := s.Product(ctx, id)
	if err != nil {
		return models.Product{}, err
	}
	if err := s.saveProduct(ctx, &p, req); err != nil {
		return models.Product{}, err
	}
	return s.Product(ctx, id)
}

func (s *CatalogService) saveProduct(ctx context.Context, p *models.Product, req ProductRequest) error {
	sku := strings.TrimSpace(req.SKU)
	taken, err := s.products.SKUTaken(ctx, sku, p.ID)
	if err != nil {
		return err
	}
	if taken {
		return ErrDuplicateSKU
	}
	if _, err := s.Category(ctx, req.CategoryID); err != nil {
		return err
	}

	p.Name = strings.TrimSpace(req.Name)
	p.Description = req.Description
	p.SKU = sku
	p.Price = req.Price.Round(2)
	p.DiscountPrice = req.DiscountPrice
	p.StockQuantity = req.StockQuantity
	p.CategoryID = req.CategoryID
	p.Category = nil
	p.Active = req.Active == nil || *req.Active
	fields := []string{"Name", "Description", "SKU", "Price", "DiscountPrice", "StockQuantity", "CategoryID", "Active"}
	if req.ImageURLs != nil {
		p.ImageURLs = req.ImageURLs
		fields = append(fields, "ImageURLs")
	}

	if p.ID == 0 {
		err = s.products.Create(ctx, p)
	} else {
		err = s.products.Update(ctx, p, fields...)
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicateSKU
	}
	return err
}

func (s *CatalogService) DeleteProduct(ctx context.Context, id uint) error {
	ok, err := s.products.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return &ProductNotFoundError{ProductID: id}
	}
	return nil
}

// AddImages stores each upload under products/<id>/ and appends its public
// URL to the product. Only the image list is written, so stock sold during
// a slow upload stays sold. Files already stored are removed if a later one
// fails.
func (s *CatalogService) AddImages(ctx context.Context, id uint, uploads []Upload) (models.Product, error) {
	if _, err := s.Product(ctx, id); err != nil {
		return models.Product{}, err
	}
	if s.disk == nil {
		return models.Product{}, errors.New("no storage disk configured")
	}

	stored := make([]string, 0, len(uploads))
	cleanup := func() {
		for _, key := range stored {
			if derr := s.disk.Delete(ctx, key); derr != nil {
				logger.WithCtx(ctx).Warn("orphaned product image", "key", key, "error", derr)
			}
		}
	}

	for _, u := range uploads {
		key := ImageKey(id, u.Filename)
		if err := s.disk.Put(ctx, key, u.Body, u.ContentType); err != nil {
			cleanup()
			return models.Product{}, fmt.Errorf("store %s: %w", u.Filename, err)
		}
		stored = append(stored, key)
	}

	urls := make([]string, 0, len(stored))
	for _, key := range stored {
		urls = append(urls, s.disk.URL(key))
	}
	if _, err := s.products.AppendImages(ctx, id, urls); err != nil {
		cleanup()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Product{}, &ProductNotFoundError{ProductID: id}
		}
		return models.Product{}, err
	}
	return s.Product(ctx, id)
}

// ImageKey names a stored product image: products/<id>/<uuid><ext>.
func ImageKey(productID uint, filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	return fmt.Sprintf("products/%d/%s%s", productID, uuid.NewString(), ext)
}
