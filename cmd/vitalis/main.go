package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/spf13/cobra"
	"github.com/vitalislabs/vitalis/internal/checkout"
	"github.com/vitalislabs/vitalis/internal/clock"
	"github.com/vitalislabs/vitalis/internal/config"
	"github.com/vitalislabs/vitalis/internal/db"
	"github.com/vitalislabs/vitalis/internal/gateway"
	"github.com/vitalislabs/vitalis/internal/kyc"
	"github.com/vitalislabs/vitalis/internal/ledger"
	"github.com/vitalislabs/vitalis/internal/migration"
	"github.com/vitalislabs/vitalis/internal/observability"
	"github.com/vitalislabs/vitalis/internal/organization"
	"github.com/vitalislabs/vitalis/internal/professional"
	"github.com/vitalislabs/vitalis/internal/redis"
	"github.com/vitalislabs/vitalis/internal/scheduler"
	"github.com/vitalislabs/vitalis/internal/server"
	"github.com/vitalislabs/vitalis/internal/wallet"
	"github.com/vitalislabs/vitalis/internal/webhook"
	"go.uber.org/fx"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:     "vitalis",
		Short:   "Vitalis CLI",
		Version: readVersionFromEnv(),
	}
	root.AddCommand(newMigrateCmd(), newServeCmd(), newSchedulerCmd(), newAllCmd())
	return root
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrate()
		},
	}
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			runServe()
			return nil
		},
	}
}

func newSchedulerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scheduler",
		Short: "Run the settlement and rental billing scheduler",
		RunE: func(cmd *cobra.Command, args []string) error {
			runScheduler()
			return nil
		},
	}
}

func newAllCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "all",
		Short: "Run migrations, then start the API server and scheduler",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := runMigrate(); err != nil {
				return err
			}
			runMonolith()
			return nil
		},
	}
}

func runMigrate() error {
	app := fx.New(
		config.Module,
		observability.Module,
		db.Module,
		fx.Invoke(migration.Run),
	)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := app.Start(ctx); err != nil {
		return fmt.Errorf("migrate failed: %w", err)
	}
	_ = app.Stop(context.Background())
	return nil
}

func runServe() {
	app := fx.New(
		append(coreModules(),
			server.Module,
		)...,
	)
	app.Run()
}

func runScheduler() {
	app := fx.New(
		append(coreModules(),
			scheduler.Module,
			fx.Invoke(startScheduler),
		)...,
	)
	app.Run()
}

func runMonolith() {
	app := fx.New(
		append(coreModules(),
			server.Module,
			scheduler.Module,
			fx.Invoke(startScheduler),
		)...,
	)
	app.Run()
}

func coreModules() []fx.Option {
	return []fx.Option{
		config.Module,
		observability.Module,
		fx.Provide(registerSnowflake),
		db.Module,
		clock.Module,
		redis.Module,
		gateway.Module,
		organization.Module,
		professional.Module,
		wallet.Module,
		ledger.Module,
		kyc.Module,
		checkout.Module,
		webhook.Module,
	}
}

func registerSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}

func readVersionFromEnv() string {
	if v := strings.TrimSpace(os.Getenv("APP_VERSION")); v != "" {
		return v
	}
	return "dev"
}

func startScheduler(lc fx.Lifecycle, s *scheduler.Scheduler) {
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go s.RunForever(context.Background())
			return nil
		},
	})
}
