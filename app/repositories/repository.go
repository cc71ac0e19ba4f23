// Package repositories is the persistence layer. Each repository wraps a
// *gorm.DB and can be rebound to a transaction with WithTx, so services can
// compose several repositories inside one db.Transaction.
package repositories

import (
	"context"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/storefront/pkg/orm"
)

type base struct {
	db *gorm.DB
}

func (b base) q(ctx context.Context) *orm.Query {
	return orm.On(b.db.WithContext(ctx))
}

// DB returns the handle the repository runs on.
func (b base) DB() *gorm.DB { return b.db }
