package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"food-delivery-orders/config"
	"food-delivery-orders/store"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type rootOptions struct {
	envFile string
	cfg     *config.Config
	log     *logrus.Logger
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "food-delivery",
		Short:         "Food delivery order management API",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(opts.envFile)
			if err != nil {
				return err
			}
			opts.cfg = cfg
			opts.log = config.NewLogger(cfg.LogLevel)
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), opts)
		},
	}
	cmd.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "dotenv file to load before reading the environment")

	cmd.AddCommand(newServeCommand(opts))
	cmd.AddCommand(newSeedCommand(opts))
	cmd.AddCommand(newMigrateCommand(opts))
	return cmd
}

func newServeCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API (default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), opts)
		},
	}
}

func runServe(ctx context.Context, opts *rootOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(opts.cfg, opts.log)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.seed(ctx); err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              ":" + opts.cfg.Port,
		Handler:           a.router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		opts.log.WithField("addr", srv.Addr).Info("Server running")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	opts.log.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func newSeedCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Insert the sample menu and users into an empty store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(opts.cfg, opts.log)
			if err != nil {
				return err
			}
			defer a.Close()
			return a.seed(cmd.Context())
		},
	}
}

func newMigrateCommand(opts *rootOptions) *cobra.Command {
	var from, to string
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Copy a JSON data file into a SQLite database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := *opts.cfg
			cfg.DataFile, cfg.DBPath = from, to

			src, _, err := openStore(config.DriverJSON, &cfg, opts.log)
			if err != nil {
				return err
			}
			defer src.Close()
			dst, _, err := openStore(config.DriverSQLite, &cfg, opts.log)
			if err != nil {
				return err
			}
			defer dst.Close()

			stats, err := store.Copy(cmd.Context(), src, dst)
			if err != nil {
				return err
			}
			opts.log.WithFields(logrus.Fields{
				"users":      stats.Users,
				"menu_items": stats.MenuItems,
				"agents":     stats.Agents,
				"orders":     stats.Orders,
				"history":    stats.History,
			}).Info("Migration complete")
			return nil
		},
	}
	cmd.Flags().StringVar(&from, "from", "food_delivery_data.json", "JSON data file to read")
	cmd.Flags().StringVar(&to, "to", "food_delivery.db", "SQLite database to write")
	return cmd
}
