// Package app is the storefront process runner. It boots the shared
// infrastructure (database, cache, queue, storage, websocket hub, event bus
// and scheduler), hands it to the project Provider and exposes the result
// through a cobra command tree:
//
//	storefront serve
//	storefront migrate
//	storefront migrate:rollback
//	storefront migrate:status
//	storefront seed
//	storefront queue:work --workers 4
//	storefront route:list
package app

import (
	"context"
	"io"
	"os"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/storefront/pkg/event"
	"github.com/shashiranjanraj/storefront/pkg/queue"
	"github.com/shashiranjanraj/storefront/pkg/router"
	"github.com/shashiranjanraj/storefront/pkg/schedule"
	"github.com/shashiranjanraj/storefront/pkg/storage"
	"github.com/shashiranjanraj/storefront/pkg/ws"
)

// Infra is the infrastructure a Provider builds on. DB and Disk are nil
// for commands that never touch them (route:list).
type Infra struct {
	DB       *gorm.DB
	Disk     storage.Disk
	Hub      *ws.Hub
	Events   *event.Bus
	Queue    *queue.Manager
	Schedule *schedule.Scheduler
}

// Provider wires the project on top of in and returns the route
// registration callback for the HTTP kernel.
type Provider func(ctx context.Context, in *Infra) (func(*router.Router), error)

// Seeder fills db with baseline rows for the seed command.
type Seeder func(ctx context.Context, db *gorm.DB, out io.Writer) error

type Application struct {
	name     string
	provider Provider
	seeder   Seeder
}

// New returns an application named after the binary.
func New(name string, p Provider) *Application {
	return &Application{name: name, provider: p}
}

// Seeds sets the seeder run by the seed command.
func (a *Application) Seeds(s Seeder) *Application {
	a.seeder = s
	return a
}

// Execute runs the command selected by os.Args and returns the exit code.
func (a *Application) Execute() int {
	if err := a.Command().Execute(); err != nil {
		return 1
	}
	return 0
}

// Run is Execute followed by os.Exit.
func (a *Application) Run() {
	os.Exit(a.Execute())
}
