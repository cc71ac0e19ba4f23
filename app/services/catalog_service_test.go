package services_test

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/storefront/app/services"
	"github.com/shashiranjanraj/storefront/pkg/storage"
)

func productRequest(sku string, categoryID uint) services.ProductRequest {
	return services.ProductRequest{
		Name:          "Mug " + sku,
		SKU:           sku,
		Price:         decimal.RequireFromString("12.499"),
		StockQuantity: 4,
		CategoryID:    categoryID,
	}
}

func TestCategoriesRejectDuplicateNames(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := services.NewCatalogService(f.categories, f.products, nil)

	mugs, err := svc.CreateCategory(ctx, services.CategoryRequest{Name: " Mugs "})
	require.NoError(t, err)
	assert.Equal(t, "Mugs", mugs.Name)

	_, err = svc.CreateCategory(ctx, services.CategoryRequest{Name: "Mugs"})
	assert.ErrorIs(t, err, services.ErrDuplicateCategory)

	tea, err := svc.CreateCategory(ctx, services.CategoryRequest{Name: "Tea"})
	require.NoError(t, err)
	_, err = svc.UpdateCategory(ctx, tea.ID, services.CategoryRequest{Name: "Mugs"})
	assert.ErrorIs(t, err, services.ErrDuplicateCategory)

	renamed, err := svc.UpdateCategory(ctx, mugs.ID, services.CategoryRequest{Name: "Mugs", Description: "Ceramic"})
	require.NoError(t, err)
	assert.Equal(t, "Ceramic", renamed.Description)

	require.NoError(t, svc.DeleteCategory(ctx, tea.ID))
	assert.ErrorIs(t, svc.DeleteCategory(ctx, tea.ID), services.ErrCategoryNotFound)
	_, err = svc.Category(ctx, tea.ID)
	assert.ErrorIs(t, err, services.ErrCategoryNotFound)
}

func TestCreateProduct(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	cat := f.category(t, "Mugs")
	svc := services.NewCatalogService(f.categories, f.products, nil)

	p, err := svc.CreateProduct(ctx, productRequest("MUG-1", cat.ID))
	require.NoError(t, err)
	assert.True(t, p.Active, "active defaults to true")
	assert.Equal(t, "12.50", p.Price.StringFixed(2))
	require.NotNil(t, p.Category)
	assert.Equal(t, "Mugs", p.Category.Name)

	_, err = svc.CreateProduct(ctx, productRequest("MUG-1", cat.ID))
	assert.ErrorIs(t, err, services.ErrDuplicateSKU)

	_, err = svc.CreateProduct(ctx, productRequest("MUG-2", 999))
	assert.ErrorIs(t, err, services.ErrCategoryNotFound)

	inactive := false
	req := productRequest("MUG-3", cat.ID)
	req.Active = &inactive
	hidden, err := svc.CreateProduct(ctx, req)
	require.NoError(t, err)
	assert.False(t, hidden.Active)

	public, err := svc.ActiveProducts(ctx)
	require.NoError(t, err)
	require.Len(t, public, 1)
	assert.Equal(t, "MUG-1", public[0].SKU)

	everything, err := svc.Products(ctx)
	require.NoError(t, err)
	assert.Len(t, everything, 2)

	shown, err := svc.Product(ctx, hidden.ID)
	require.NoError(t, err, "by id returns inactive products too")
	assert.Equal(t, "MUG-3", shown.SKU)
}

func TestUpdateAndDeleteProduct(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	cat := f.category(t, "Mugs")
	svc := services.NewCatalogService(f.categories, f.products, nil)

	p, err := svc.CreateProduct(ctx, productRequest("MUG-1", cat.ID))
	require.NoError(t, err)

	req := productRequest("MUG-1", cat.ID)
	req.Price = decimal.RequireFromString("15")
	req.StockQuantity = 9
	updated, err := svc.UpdateProduct(ctx, p.ID, req)
	require.NoError(t, err)
	assert.Equal(t, "15.00", updated.Price.StringFixed(2))
	assert.Equal(t, 9, updated.StockQuantity)

	require.NoError(t, svc.DeleteProduct(ctx, p.ID))
	_, err = svc.Product(ctx, p.ID)
	var missing *services.ProductNotFoundError
	assert.True(t, errors.As(err, &missing))
	assert.ErrorIs(t, svc.DeleteProduct(ctx, p.ID), services.ErrProductNotFound)

	_, err = svc.UpdateProduct(ctx, p.ID, req)
	assert.ErrorIs(t, err, services.ErrProductNotFound)
}

func TestAddImagesStoresFilesAndAppendsURLs(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	cat := f.category(t, "Mugs")
	root := t.TempDir()
	disk := storage.NewLocalDisk(root, "http://shop.test/storage")
	svc := services.NewCatalogService(f.categories, f.products, disk)

	p, err := svc.CreateProduct(ctx, productRequest("MUG-1", cat.ID))
	require.NoError(t, err)

	withImages, err := svc.AddImages(ctx, p.ID, []services.Upload{
		{Filename: "front.JPG", ContentType: "image/jpeg", Body: strings.NewReader("front")},
		{Filename: "back.png", ContentType: "image/png", Body: strings.NewReader("back")},
	})
	require.NoError(t, err)
	require.Len(t, withImages.ImageURLs, 2)

	pattern := regexp.MustCompile(`^http://shop\.test/storage/products/\d+/[0-9a-f-]{36}\.(jpg|png)$`)
	for _, u := range withImages.ImageURLs {
		assert.Regexp(t, pattern, u)
	}

	key := strings.TrimPrefix(withImages.ImageURLs[0], "http://shop.test/storage/")
	data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(key)))
	require.NoError(t, err)
	assert.Equal(t, "front", string(data))

	_, err = svc.AddImages(ctx, 999, nil)
	assert.ErrorIs(t, err, services.ErrProductNotFound)
}

// hookedDisk runs onPut once, the first time a file is stored, to stand in
// for work that lands while an upload is in flight.
type hookedDisk struct {
	storage.Disk
	onPut func()
}

func (d *hookedDisk) Put(ctx context.Context, key string, r io.Reader, contentType string) error {
	if hook := d.onPut; hook != nil {
		d.onPut = nil
		hook()
	}
	return d.Disk.Put(ctx, key, r, contentType)
}

func TestAddImagesKeepsStockSoldDuringUpload(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.user(t, "ada@example.com")
	cat := f.category(t, "Mugs")
	p := f.product(t, cat, "MUG-1", "19.99", 5, true)
	orders := f.orderService(nil, nil)

	disk := &hookedDisk{Disk: storage.NewLocalDisk(t.TempDir(), "/storage")}
	disk.onPut = func() {
		_, err := orders.PlaceOrder(ctx, cart(line(p.ID, 5)), u.ID)
		require.NoError(t, err)
	}
	svc := services.NewCatalogService(f.categories, f.products, disk)

	withImage, err := svc.AddImages(ctx, p.ID, []services.Upload{
		{Filename: "front.jpg", ContentType: "image/jpeg", Body: strings.NewReader("front")},
	})
	require.NoError(t, err)
	assert.Len(t, withImage.ImageURLs, 1)
	assert.Zero(t, withImage.StockQuantity)
	assert.Zero(t, f.stock(t, p.ID))

	_, err = orders.PlaceOrder(ctx, cart(line(p.ID, 5)), u.ID)
	assert.ErrorIs(t, err, services.ErrInsufficientStock)
	assert.EqualValues(t, 1, f.orderCount(t))
}

func TestAddImagesKeepsConcurrentUploads(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	cat := f.category(t, "Mugs")
	p := f.product(t, cat, "MUG-1", "19.99", 5, true)

	disk := &hookedDisk{Disk: storage.NewLocalDisk(t.TempDir(), "/storage")}
	svc := services.NewCatalogService(f.categories, f.products, disk)
	disk.onPut = func() {
		_, err := svc.AddImages(ctx, p.ID, []services.Upload{
			{Filename: "side.png", ContentType: "image/png", Body: strings.NewReader("side")},
		})
		require.NoError(t, err)
	}

	withImages, err := svc.AddImages(ctx, p.ID, []services.Upload{
		{Filename: "front.jpg", ContentType: "image/jpeg", Body: strings.NewReader("front")},
	})
	require.NoError(t, err)
	require.Len(t, withImages.ImageURLs, 2)
	assert.True(t, strings.HasSuffix(withImages.ImageURLs[0], ".png"))
	assert.True(t, strings.HasSuffix(withImages.ImageURLs[1], ".jpg"))
}

func TestUpdateProductLeavesImagesAlone(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	cat := f.category(t, "Mugs")
	disk := storage.NewLocalDisk(t.TempDir(), "/storage")
	svc := services.NewCatalogService(f.categories, f.products, disk)

	p, err := svc.CreateProduct(ctx, productRequest("MUG-1", cat.ID))
	require.NoError(t, err)
	_, err = svc.AddImages(ctx, p.ID, []services.Upload{
		{Filename: "front.jpg", ContentType: "image/jpeg", Body: strings.NewReader("front")},
	})
	require.NoError(t, err)

	req := productRequest("MUG-1", cat.ID)
	req.Name = "Big Mug"
	updated, err := svc.UpdateProduct(ctx, p.ID, req)
	require.NoError(t, err)
	assert.Equal(t, "Big Mug", updated.Name)
	assert.Len(t, updated.ImageURLs, 1)

	req.ImageURLs = []string{}
	cleared, err := svc.UpdateProduct(ctx, p.ID, req)
	require.NoError(t, err)
	assert.Empty(t, cleared.ImageURLs)
}

func TestImageKey(t *testing.T) {
	assert.Regexp(t, `^products/12/[0-9a-f-]{36}\.webp$`, services.ImageKey(12, "Photo.WEBP"))
	assert.Regexp(t, `^products/3/[0-9a-f-]{36}$`, services.ImageKey(3, "noext"))
}
