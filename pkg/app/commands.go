package app

import (
	"context"
	"fmt"
	"io"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/storefront/config"
	"github.com/shashiranjanraj/storefront/pkg/database"
	"github.com/shashiranjanraj/storefront/pkg/event"
	"github.com/shashiranjanraj/storefront/pkg/migration"
	"github.com/shashiranjanraj/storefront/pkg/queue"
	"github.com/shashiranjanraj/storefront/pkg/router"
	"github.com/shashiranjanraj/storefront/pkg/schedule"
	"github.com/shashiranjanraj/storefront/pkg/workerpool"
	"github.com/shashiranjanraj/storefront/pkg/ws"
)

// Command builds the root command. serve runs when no sub-command is given.
func (a *Application) Command() *cobra.Command {
	var workers int

	root := &cobra.Command{
		Use:          a.name,
		Short:        "Storefront backend: catalog, accounts and order placement",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signalContext(cmd)
			defer stop()
			return a.serve(ctx, workers)
		},
	}
	root.Flags().IntVar(&workers, "workers", config.Int("QUEUE_WORKERS", 2), "queue workers started alongside the server")

	serve := &cobra.Command{
		Use:     "serve",
		Aliases: []string{"start", "run"},
		Short:   "Start the HTTP and gRPC servers with workers and scheduler",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signalContext(cmd)
			defer stop()
			return a.serve(ctx, workers)
		},
	}
	serve.Flags().IntVar(&workers, "workers", config.Int("QUEUE_WORKERS", 2), "queue workers started alongside the server")

	root.AddCommand(
		serve,
		a.migrateCmd(),
		a.rollbackCmd(),
		a.statusCmd(),
		a.seedCmd(),
		a.queueWorkCmd(),
		a.scheduleListCmd(),
		a.routeListCmd(),
	)
	return root
}

func signalContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
}

// withDB loads config, connects and closes the database around fn.
func withDB(fn func() error) error {
	if err := config.Load(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if err := database.Connect(); err != nil {
		return err
	}
	defer database.Close()
	return fn()
}

func (a *Application) migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Run all pending database migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withDB(func() error {
				return migration.New(database.DB).Output(cmd.OutOrStdout()).Run()
			})
		},
	}
}

func (a *Application) rollbackCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "migrate:rollback",
		Aliases: []string{"migrate:down"},
		Short:   "Roll back the last batch of migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withDB(func() error {
				return migration.New(database.DB).Output(cmd.OutOrStdout()).Rollback()
			})
		},
	}
}

func (a *Application) statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate:status",
		Short: "Show which migrations have run",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withDB(func() error {
				return migration.New(database.DB).Output(cmd.OutOrStdout()).Status()
			})
		},
	}
}

func (a *Application) seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Seed the admin account and starter data",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if a.seeder == nil {
				fmt.Fprintln(cmd.OutOrStdout(), "no seeders registered")
				return nil
			}
			return withDB(func() error {
				return a.seeder(cmd.Context(), database.DB, cmd.OutOrStdout())
			})
		},
	}
}

func (a *Application) queueWorkCmd() *cobra.Command {
	var workers int
	cmd := &cobra.Command{
		Use:   "queue:work",
		Short: "Process queued jobs until interrupted",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signalContext(cmd)
			defer stop()
			in, cleanup, err := boot(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			// Registers job factories; the routes are not served here.
			if _, err := a.provider(ctx, in); err != nil {
				return err
			}
			if workers < 1 {
				workers = 1
			}
			in.Queue.Run(ctx, workers)
			return nil
		},
	}
	cmd.Flags().IntVar(&workers, "workers", config.Int("QUEUE_WORKERS", 2), "number of workers")
	return cmd
}

func (a *Application) scheduleListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schedule:list",
		Short: "List the scheduled tasks",
		RunE: func(cmd *cobra.Command, _ []string) error {
			in := offlineInfra()
			if _, err := a.provider(cmd.Context(), in); err != nil {
				return err
			}
			for _, line := range in.Schedule.List() {
				fmt.Fprintln(cmd.OutOrStdout(), line)
			}
			return nil
		},
	}
}

func (a *Application) routeListCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "route:list",
		Aliases: []string{"routes"},
		Short:   "List the registered HTTP routes",
		RunE: func(cmd *cobra.Command, _ []string) error {
			routes, err := a.provider(cmd.Context(), offlineInfra())
			if err != nil {
				return err
			}
			r := router.New()
			routes(r)
			return printRoutes(cmd.OutOrStdout(), r.Routes())
		},
	}
}

// offlineInfra lets a Provider build its object graph without any
// connection, for commands that only inspect registrations.
func offlineInfra() *Infra {
	return &Infra{
		Hub:      ws.NewHub(),
		Events:   event.NewBus(workerpool.New("offline", 1, 1)),
		Queue:    queue.New(queue.NewMemoryDriver(1)),
		Schedule: schedule.New(),
	}
}

func printRoutes(w io.Writer, routes []router.RouteInfo) error {
	if len(routes) == 0 {
		_, err := fmt.Fprintln(w, "no routes registered")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "METHOD\tPATH\tNAME")
	for _, r := range routes {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", r.Method, r.Path, r.Name)
	}
	return tw.Flush()
}
