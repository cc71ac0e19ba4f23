// Package migrations registers the storefront schema. Import it for its
// side effects wherever migration.New(db).Run() is called.
package migrations

import (
	"gorm.io/gorm"

	"github.com/shashiranjanraj/storefront/pkg/migration"
)

func init() {
	migration.Register("20260301000000_create_users_table", &CreateUsersTable{})
	migration.Register("20260301000100_create_categories_table", &CreateCategoriesTable{})
	migration.Register("20260301000200_create_products_table", &CreateProductsTable{})
	migration.Register("20260301000300_create_orders_tables", &CreateOrdersTables{})
	migration.Register("20260301000400_create_notifications_table", &CreateNotificationsTable{})
	migration.Register("20260301000500_create_failed_jobs_table", &CreateFailedJobsTable{})
}

func drop(db *gorm.DB, tables ...interface{}) error {
	return db.Migrator().DropTable(tables...)
}
