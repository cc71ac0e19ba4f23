package controllers

import (
	"net/http"

	"github.com/shashiranjanraj/storefront/app/services"
	"github.com/shashiranjanraj/storefront/pkg/ctx"
)

const maxUploadBytes = 32 << 20

// CatalogController serves the public catalog and its admin management.
type CatalogController struct {
	service *services.CatalogService
}

func NewCatalogController(service *services.CatalogService) *CatalogController {
	return &CatalogController{service: service}
}

// ─── Public ───────────────────────────────────────────────────────────────────

func (cc *CatalogController) ActiveProducts(c *ctx.Context) {
	products, err := cc.service.ActiveProducts(c.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.Success(products)
}

func (cc *CatalogController) ShowProduct(c *ctx.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	product, err := cc.service.Product(c.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Success(product)
}

func (cc *CatalogController) Categories(c *ctx.Context) {
	categories, err := cc.service.Categories(c.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.Success(categories)
}

// ─── Admin: categories ────────────────────────────────────────────────────────

func (cc *CatalogController) CreateCategory(c *ctx.Context) {
	var in services.CategoryRequest
	if !c.BindJSON(&in) {
		return
	}
	category, err := cc.service.CreateCategory(c.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Created(category)
}

func (cc *CatalogController) UpdateCategory(c *ctx.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var in services.CategoryRequest
	if !c.BindJSON(&in) {
		return
	}
	category, err := cc.service.UpdateCategory(c.Context(), id, in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Success(category)
}

func (cc *CatalogController) DeleteCategory(c *ctx.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := cc.service.DeleteCategory(c.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Message("Category deleted")
}

// ─── Admin: products ──────────────────────────────────────────────────────────

func (cc *CatalogController) AllProducts(c *ctx.Context) {
	products, err := cc.service.Products(c.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.Success(products)
}

func (cc *CatalogController) CreateProduct(c *ctx.Context) {
	var in services.ProductRequest
	if !c.BindJSON(&in) {
		return
	}
	product, err := cc.service.CreateProduct(c.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Created(product)
}

func (cc *CatalogController) UpdateProduct(c *ctx.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var in services.ProductRequest
	if !c.BindJSON(&in) {
		return
	}
	product, err := cc.service.UpdateProduct(c.Context(), id, in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Success(product)
}

func (cc *CatalogController) DeleteProduct(c *ctx.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := cc.service.DeleteProduct(c.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Message("Product deleted")
}

// UploadImages accepts multipart files under the "images" field.
func (cc *CatalogController) UploadImages(c *ctx.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	c.R.Body = http.MaxBytesReader(c.W, c.R.Body, maxUploadBytes)
	if err := c.R.ParseMultipartForm(maxUploadBytes); err != nil {
		c.Error(http.StatusBadRequest, "invalid multipart form: "+err.Error())
		return
	}
	defer c.R.MultipartForm.RemoveAll()

	headers := c.R.MultipartForm.File["images"]
	if len(headers) == 0 {
		c.ValidationError(map[string]string{"images": "The images field is required."})
		return
	}

	uploads := make([]services.Upload, 0, len(headers))
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			c.Error(http.StatusBadRequest, "cannot read "+fh.Filename)
			return
		}
		defer f.Close()
		uploads = append(uploads, services.Upload{
			Filename:    fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Body:        f,
		})
	}

	product, err := cc.service.AddImages(c.Context(), id, uploads)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Success(product)
}
