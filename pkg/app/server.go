package app

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/shashiranjanraj/storefront/config"
	"github.com/shashiranjanraj/storefront/internal/server"
	"github.com/shashiranjanraj/storefront/pkg/cache"
	"github.com/shashiranjanraj/storefront/pkg/database"
	"github.com/shashiranjanraj/storefront/pkg/event"
	"github.com/shashiranjanraj/storefront/pkg/logger"
	"github.com/shashiranjanraj/storefront/pkg/migration"
	"github.com/shashiranjanraj/storefront/pkg/orm"
	"github.com/shashiranjanraj/storefront/pkg/queue"
	"github.com/shashiranjanraj/storefront/pkg/schedule"
	"github.com/shashiranjanraj/storefront/pkg/storage"
	"github.com/shashiranjanraj/storefront/pkg/ws"
)

// boot connects everything a long-running command needs. The returned
// cleanup must run after the command finishes.
func boot(ctx context.Context) (*Infra, func(), error) {
	if err := config.Load(); err != nil {
		return nil, nil, fmt.Errorf("config: %w", err)
	}

	cleanup := func() {}
	if uri := config.LogMongoURI(); uri != "" {
		sink, err := logger.DialMongoSink(ctx, uri,
			config.Get("LOG_MONGO_DB", config.AppName()),
			config.Get("LOG_MONGO_COLLECTION", "logs"))
		if err != nil {
			logger.Warn("logger: mongo sink disabled", "error", err)
		} else {
			logger.Attach(sink)
			cleanup = sink.Close
		}
	}

	if err := database.Connect(); err != nil {
		cleanup()
		return nil, nil, err
	}

	if err := cache.Connect(); err != nil {
		logger.Warn("cache: running without redis", "error", err)
	}
	orm.CacheStore = cache.Store{}

	jobs := queue.Default()
	if config.QueueDriver() == "redis" {
		if cache.RDB == nil {
			logger.Warn("queue: redis unavailable, using memory driver")
		} else {
			jobs.SetDriver(queue.NewRedisDriver(cache.RDB))
		}
	}
	jobs.UseStore(queue.GormStore{DB: database.DB})

	disk, err := storage.FromConfig(ctx)
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("storage: %w", err)
	}

	in := &Infra{
		DB:       database.DB,
		Disk:     disk,
		Hub:      ws.NewHub(),
		Events:   event.Default(),
		Queue:    jobs,
		Schedule: schedule.New(),
	}
	return in, func() {
		_ = database.Close()
		cleanup()
	}, nil
}

// serve runs the HTTP and gRPC servers together with the websocket hub,
// the queue workers and the scheduler until ctx ends.
func (a *Application) serve(ctx context.Context, workers int) error {
	in, cleanup, err := boot(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	if config.Get("AUTO_MIGRATE", "false") == "true" {
		if err := migration.New(in.DB).Run(); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}

	routes, err := a.provider(ctx, in)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var background errgroup.Group
	background.Go(func() error {
		in.Hub.Run(ctx)
		return nil
	})
	background.Go(func() error {
		in.Queue.Run(ctx, workers)
		return nil
	})
	in.Schedule.Start(ctx)

	err = server.Run(ctx, buildHandler(routes))

	cancel()
	_ = background.Wait()
	in.Schedule.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
