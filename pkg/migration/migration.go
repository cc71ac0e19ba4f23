// Package migration runs versioned schema changes and records them in the
// storefront_migrations table.
//
//	func init() {
//	    migration.Register("20260301000000_create_users_table", &CreateUsersTable{})
//	}
//
// Migrations run in name order, so names start with a timestamp. Every
// `migrate` invocation forms one batch; `migrate:rollback` undoes the last.
package migration

import (
	"fmt"
	"io"
	"os"
	"sort"
	"text/tabwriter"
	"time"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/storefront/pkg/logger"
)

type Migration interface {
	Up(db *gorm.DB) error
	Down(db *gorm.DB) error
}

type record struct {
	ID    uint      `gorm:"primaryKey;autoIncrement"`
	Name  string    `gorm:"uniqueIndex;size:255;not null"`
	Batch int       `gorm:"not null"`
	RunAt time.Time `gorm:"autoCreateTime"`
}

func (record) TableName() string { return "storefront_migrations" }

type named struct {
	name string
	m    Migration
}

var registry []named

// Register adds m to the global registry. Call it from init().
func Register(name string, m Migration) {
	registry = append(registry, named{name: name, m: m})
}

type Runner struct {
	db  *gorm.DB
	out io.Writer
}

func New(db *gorm.DB) *Runner {
	return &Runner{db: db, out: os.Stdout}
}

// Output redirects progress lines, e.g. to io.Discard in tests.
func (r *Runner) Output(w io.Writer) *Runner {
	r.out = w
	return r
}

func (r *Runner) ensureTable() error {
	if err := r.db.AutoMigrate(&record{}); err != nil {
		return fmt.Errorf("migration: ensure table: %w", err)
	}
	return nil
}

func (r *Runner) ran() (map[string]record, error) {
	var rows []record
	if err := r.db.Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[string]record, len(rows))
	for _, rec := range rows {
		out[rec.Name] = rec
	}
	return out, nil
}

func sorted() []named {
	all := append([]named(nil), registry...)
	sort.SliceStable(all, func(i, j int) bool { return all[i].name < all[j].name })
	return all
}

// Pending lists the names not yet applied, in run order.
func (r *Runner) Pending() ([]string, error) {
	if err := r.ensureTable(); err != nil {
		return nil, err
	}
	done, err := r.ran()
	if err != nil {
		return nil, err
	}
	var names []string
	for _, n := range sorted() {
		if _, ok := done[n.name]; !ok {
			names = append(names, n.name)
		}
	}
	return names, nil
}

// Run applies every pending migration as one batch. Each migration and
// its record commit together.
func (r *Runner) Run() error {
	if err := r.ensureTable(); err != nil {
		return err
	}
	done, err := r.ran()
	if err != nil {
		return fmt.Errorf("migration: read applied: %w", err)
	}

	batch := r.lastBatch() + 1
	count := 0
	for _, n := range sorted() {
		if _, ok := done[n.name]; ok {
			continue
		}
		fmt.Fprintf(r.out, "Migrating: %s\n", n.name)
		err := r.db.Transaction(func(tx *gorm.DB) error {
			if err := n.m.Up(tx); err != nil {
				return err
			}
			return tx.Create(&record{Name: n.name, Batch: batch}).Error
		})
		if err != nil {
			return fmt.Errorf("migration: %s up: %w", n.name, err)
		}
		count++
	}

	if count == 0 {
		fmt.Fprintln(r.out, "Nothing to migrate.")
		return nil
	}
	logger.Info("migration: done", "ran", count, "batch", batch)
	return nil
}

// Rollback reverses the most recent batch, newest first.
func (r *Runner) Rollback() error {
	if err := r.ensureTable(); err != nil {
		return err
	}
	batch := r.lastBatch()
	if batch == 0 {
		fmt.Fprintln(r.out, "Nothing to roll back.")
		return nil
	}

	var rows []record
	if err := r.db.Where("batch = ?", batch).Order("id desc").Find(&rows).Error; err != nil {
		return err
	}

	byName := make(map[string]Migration, len(registry))
	for _, n := range registry {
		byName[n.name] = n.m
	}

	for _, rec := range rows {
		m, ok := byName[rec.Name]
		if !ok {
			return fmt.Errorf("migration: cannot roll back %s: not registered", rec.Name)
		}
		fmt.Fprintf(r.out, "Rolling back: %s\n", rec.Name)
		err := r.db.Transaction(func(tx *gorm.DB) error {
			if err := m.Down(tx); err != nil {
				return err
			}
			return tx.Delete(&record{}, rec.ID).Error
		})
		if err != nil {
			return fmt.Errorf("migration: %s down: %w", rec.Name, err)
		}
	}
	logger.Info("migration: rolled back", "batch", batch, "count", len(rows))
	return nil
}

// Status prints every registered migration with its batch.
func (r *Runner) Status() error {
	if err := r.ensureTable(); err != nil {
		return err
	}
	done, err := r.ran()
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(r.out, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "MIGRATION\tSTATUS\tBATCH")
	for _, n := range sorted() {
		if rec, ok := done[n.name]; ok {
			fmt.Fprintf(w, "%s\tRan\t%d\n", n.name, rec.Batch)
		} else {
			fmt.Fprintf(w, "%s\tPending\t-\n", n.name)
		}
	}
	return w.Flush()
}

func (r *Runner) lastBatch() int {
	var max struct{ Max int }
	r.db.Model(&record{}).Select("COALESCE(MAX(batch), 0) AS max").Scan(&max)
	return max.Max
}
