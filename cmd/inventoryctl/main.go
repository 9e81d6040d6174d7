package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/tripdesk/backoffice/internal/app"
	"github.com/tripdesk/backoffice/pkg/config"
	"github.com/tripdesk/backoffice/pkg/db"
	"github.com/tripdesk/backoffice/pkg/logger"
	"github.com/tripdesk/backoffice/pkg/redis"
)

// cli holds what every subcommand needs. services is filled lazily by
// bootstrap unless already injected.
type cli struct {
	out      io.Writer
	output   string
	logg     *logger.Logger
	services *app.Services
	closers  []func() error
}

func newRootCmd(c *cli) *cobra.Command {
	root := &cobra.Command{
		Use:   "inventoryctl",
		Short: "Operate partner allotments, price periods and reservations",
		Long: `inventoryctl talks to the backoffice database directly. It quotes variant
prices, checks partner allotment for a stay, manages allotment and price
period rows, and records or cancels reservations.

Configuration is read from TRIPDESK_* environment variables and an optional
.env file in the working directory.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "help" || cmd.Name() == "completion" {
				return nil
			}
			switch c.output {
			case "table", "json":
			default:
				return fmt.Errorf("invalid output format: %s (use 'table' or 'json')", c.output)
			}
			if c.services != nil {
				return nil
			}
			return c.bootstrap(cmd.Context())
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			return c.close()
		},
	}
	root.SetOut(c.out)
	root.PersistentFlags().StringVarP(&c.output, "output", "o", "table", "Output format: table or json")

	root.AddCommand(
		newQuoteCmd(c),
		newCheckCmd(c),
		newAllotmentCmd(c),
		newPeriodCmd(c),
		newReserveCmd(c),
		newShowCmd(c),
		newListCmd(c),
		newCancelCmd(c),
	)
	return root
}

func (c *cli) bootstrap(ctx context.Context) error {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	c.logg = logger.New(logger.Options{
		ServiceName: "inventoryctl",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		Output:      os.Stderr,
		Format:      "console",
	})

	dbClient, err := db.New(ctx, cfg.DB, cfg.FeatureFlags.UseSQLite, c.logg)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	c.closers = append(c.closers, dbClient.Close)

	var redisClient *redis.Client
	if cfg.Redis.Configured() {
		redisClient, err = redis.New(ctx, cfg.Redis, c.logg)
		if err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		c.closers = append(c.closers, redisClient.Close)
	}

	services, err := app.NewServices(app.ServiceParams{
		Config: cfg,
		Logger: c.logg,
		DB:     dbClient,
		Redis:  redisClient,
	})
	if err != nil {
		return err
	}
	c.services = services
	return nil
}

func (c *cli) close() error {
	var firstErr error
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	c.closers = nil
	return firstErr
}

func (c *cli) json() bool {
	return strings.EqualFold(c.output, "json")
}

func (c *cli) writeJSON(v any) error {
	enc := json.NewEncoder(c.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func main() {
	c := &cli{out: os.Stdout}
	if err := newRootCmd(c).Execute(); err != nil {
		_ = c.close()
		os.Exit(1)
	}
}
