// Package graphql exposes the public catalog as a read-only GraphQL schema:
//
//	{ products { id name sku price stockQuantity category { name } } }
//	{ product(id: 3) { name price imageUrls } }
//	{ categories { id name } }
package graphql

import (
	"context"
	"errors"

	"github.com/graphql-go/graphql"

	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/app/services"
	gql "github.com/shashiranjanraj/storefront/pkg/graphql"
)

// Catalog is the part of the catalog service the schema reads.
type Catalog interface {
	ActiveProducts(ctx context.Context) ([]models.Product, error)
	Product(ctx context.Context, id uint) (models.Product, error)
	Categories(ctx context.Context) ([]models.Category, error)
}

var categoryType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Category",
	Fields: graphql.Fields{
		"id":          &graphql.Field{Type: graphql.Int, Resolve: category(func(c models.Category) any { return int(c.ID) })},
		"name":        &graphql.Field{Type: graphql.String, Resolve: category(func(c models.Category) any { return c.Name })},
		"description": &graphql.Field{Type: graphql.String, Resolve: category(func(c models.Category) any { return c.Description })},
		"imageUrl":    &graphql.Field{Type: graphql.String, Resolve: category(func(c models.Category) any { return c.ImageURL })},
	},
})

var productType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Product",
	Fields: graphql.Fields{
		"id":            &graphql.Field{Type: graphql.Int, Resolve: product(func(p models.Product) any { return int(p.ID) })},
		"name":          &graphql.Field{Type: graphql.String, Resolve: product(func(p models.Product) any { return p.Name })},
		"description":   &graphql.Field{Type: graphql.String, Resolve: product(func(p models.Product) any { return p.Description })},
		"sku":           &graphql.Field{Type: graphql.String, Resolve: product(func(p models.Product) any { return p.SKU })},
		"price":         &graphql.Field{Type: graphql.String, Resolve: product(func(p models.Product) any { return p.Price.StringFixed(2) })},
		"stockQuantity": &graphql.Field{Type: graphql.Int, Resolve: product(func(p models.Product) any { return p.StockQuantity })},
		"active":        &graphql.Field{Type: graphql.Boolean, Resolve: product(func(p models.Product) any { return p.Active })},
		"imageUrls":     &graphql.Field{Type: graphql.NewList(graphql.String), Resolve: product(func(p models.Product) any { return p.ImageURLs })},
		"discountPrice": &graphql.Field{Type: graphql.String, Resolve: product(func(p models.Product) any {
			if p.DiscountPrice == nil {
				return nil
			}
			return p.DiscountPrice.StringFixed(2)
		})},
		"category": &graphql.Field{Type: categoryType, Resolve: product(func(p models.Product) any {
			if p.Category == nil {
				return nil
			}
			return *p.Category
		})},
	},
})

func product(get func(models.Product) any) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (any, error) {
		if v, ok := p.Source.(models.Product); ok {
			return get(v), nil
		}
		return nil, nil
	}
}

func category(get func(models.Category) any) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (any, error) {
		if v, ok := p.Source.(models.Category); ok {
			return get(v), nil
		}
		return nil, nil
	}
}

// NewSchema builds the catalog schema on top of c.
func NewSchema(c Catalog) (graphql.Schema, error) {
	query := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"products": &graphql.Field{
				Type: graphql.NewList(productType),
				Resolve: func(p graphql.ResolveParams) (any, error) {
					return c.ActiveProducts(p.Context)
				},
			},
			"product": &graphql.Field{
				Type: productType,
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Int)},
				},
				Resolve: func(p graphql.ResolveParams) (any, error) {
					id, _ := p.Args["id"].(int)
					if id <= 0 {
						return nil, nil
					}
					found, err := c.Product(p.Context, uint(id))
					if errors.Is(err, services.ErrProductNotFound) {
						return nil, nil
					}
					return found, err
				},
			},
			"categories": &graphql.Field{
				Type: graphql.NewList(categoryType),
				Resolve: func(p graphql.ResolveParams) (any, error) {
					return c.Categories(p.Context)
				},
			},
		},
	})
	return gql.NewSchema(query)
}
