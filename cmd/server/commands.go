package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-redis/redis/v8"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/SinaHo/investment-backend/internal/config"
	"github.com/SinaHo/investment-backend/internal/database"
	"github.com/SinaHo/investment-backend/internal/logger"
	"github.com/SinaHo/investment-backend/internal/repository"
	"github.com/SinaHo/investment-backend/internal/server"
)

// bootstrap loads config and builds the process logger.
func bootstrap(configDir string) (*config.Config, *zap.Logger, error) {
	cfg, err := config.LoadConfig(configDir)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	log, err := logger.New(cfg.Logging)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize zap logger: %w", err)
	}
	return cfg, log, nil
}

// withComponents connects to the databases, wires the services and calls fn.
func withComponents(ctx context.Context, cfg *config.Config, log *zap.SugaredLogger, fn func(*server.Components) error) error {
	db, err := database.ConnectPostgres(cfg.Postgres)
	if err != nil {
		return err
	}
	defer db.Close()

	rdb, err := database.ConnectRedis(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	if rdb != nil {
		defer func(c *redis.Client) { _ = c.Close() }(rdb)
	}

	comps, err := server.Wire(cfg, repository.NewStore(db), rdb, log)
	if err != nil {
		return err
	}
	return fn(comps)
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func serveCmd(configDir *string) *cobra.Command {
	var migrate bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the REST API, the ops gRPC server and the daily returns scheduler",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := bootstrap(*configDir)
			if err != nil {
				return err
			}
			defer log.Sync()
			sugar := log.Sugar()

			ctx, stop := signalContext()
			defer stop()

			if migrate {
				db, err := database.ConnectPostgres(cfg.Postgres)
				if err != nil {
					return err
				}
				_, err = database.Migrate(ctx, db, sugar)
				db.Close()
				if err != nil {
					return err
				}
			}

			app, err := server.NewAppServer(ctx, cfg, log)
			if err != nil {
				return fmt.Errorf("failed to initialize server: %w", err)
			}
			if err := app.Run(ctx); err != nil {
				return err
			}
			sugar.Info("Server stopped")
			return nil
		},
	}
	cmd.Flags().BoolVar(&migrate, "migrate", false, "apply pending migrations before serving")
	return cmd
}

func migrateCmd(configDir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := bootstrap(*configDir)
			if err != nil {
				return err
			}
			defer log.Sync()

			db, err := database.ConnectPostgres(cfg.Postgres)
			if err != nil {
				return err
			}
			defer db.Close()

			n, err := database.Migrate(cmd.Context(), db, log.Sugar())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "applied %d migration(s)\n", n)
			return nil
		},
	}
}

func seedCmd(configDir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Insert default plans, payment methods and the admin account",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := bootstrap(*configDir)
			if err != nil {
				return err
			}
			defer log.Sync()

			return withComponents(cmd.Context(), cfg, log.Sugar(), func(comps *server.Components) error {
				res, err := comps.Seeder.Seed(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "plans: %d, admin created: %t, payment methods: %d\n",
					res.Plans, res.AdminCreated, res.PaymentMethods)
				return nil
			})
		},
	}
}

func processReturnsCmd(configDir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "process-returns",
		Short: "Credit accrued daily returns once and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := bootstrap(*configDir)
			if err != nil {
				return err
			}
			defer log.Sync()

			ctx, stop := signalContext()
			defer stop()

			return withComponents(ctx, cfg, log.Sugar(), func(comps *server.Components) error {
				summary, ran, err := comps.Worker.RunOnce(ctx)
				if err != nil {
					return err
				}
				if !ran {
					fmt.Fprintln(cmd.OutOrStdout(), "another instance is processing daily returns")
					return nil
				}
				fmt.Fprintf(cmd.OutOrStdout(), "processed %d, credited %d (₹%s), completed %d, failed %d\n",
					summary.Processed, summary.Credited, summary.CreditedAmount.StringFixed(2),
					summary.Completed, summary.Failed)
				return nil
			})
		},
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), Version)
		},
	}
}
