// Package seeders fills a fresh database with the rows the storefront
// needs to be usable. Seeders are idempotent: running `seed` twice changes
// nothing the second time.
package seeders

import (
	"context"
	"fmt"
	"io"
	"sync"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/storefront/pkg/logger"
)

type SeederFunc func(ctx context.Context, db *gorm.DB) error

type entry struct {
	name string
	fn   SeederFunc
}

var (
	mu      sync.Mutex
	entries []entry
)

// Register adds a seeder. Call it from init().
func Register(name string, fn SeederFunc) {
	mu.Lock()
	defer mu.Unlock()
	entries = append(entries, entry{name: name, fn: fn})
}

// RunAll runs every seeder in registration order and stops at the first error.
func RunAll(ctx context.Context, db *gorm.DB, out io.Writer) error {
	mu.Lock()
	current := append([]entry(nil), entries...)
	mu.Unlock()

	for _, e := range current {
		fmt.Fprintf(out, "Seeding: %s\n", e.name)
		if err := e.fn(ctx, db); err != nil {
			return fmt.Errorf("seeder %q: %w", e.name, err)
		}
	}
	logger.Info("seeders: done", "count", len(current))
	return nil
}
