package services

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/shashiranjanraj/storefront/app/repositories"
)

// Stats is the admin dashboard summary.
type Stats struct {
	TotalProducts       int64           `json:"totalProducts"`
	TotalCategories     int64           `json:"totalCategories"`
	TotalInventoryValue decimal.Decimal `json:"totalInventoryValue"`
	TotalOrders         int64           `json:"totalOrders"`
}

type StatsService struct {
	products   *repositories.ProductRepository
	categories *repositories.CategoryRepository
	orders     *repositories.OrderRepository
}

func NewStatsService(p *repositories.ProductRepository, c *repositories.CategoryRepository, o *repositories.OrderRepository) *StatsService {
	return &StatsService{products: p, categories: c, orders: o}
}

// Summary counts the catalog and orders. Inventory value is the sum of
// price × stock over every product.
func (s *StatsService) Summary(ctx context.Context) (Stats, error) {
	var st Stats
	var err error

	if st.TotalProducts, err = s.products.Count(ctx); err != nil {
		return Stats{}, err
	}
	if st.TotalCategories, err = s.categories.Count(ctx); err != nil {
		return Stats{}, err
	}
	if st.TotalOrders, err = s.orders.Count(ctx); err != nil {
		return Stats{}, err
	}

	levels, err := s.products.StockLevels(ctx)
	if err != nil {
		return Stats{}, err
	}
	st.TotalInventoryValue = decimal.Zero
	for _, p := range levels {
		st.TotalInventoryValue = st.TotalInventoryValue.Add(p.Price.Mul(decimal.NewFromInt(int64(p.StockQuantity))))
	}
	return st, nil
}
