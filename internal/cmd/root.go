package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/matthieukhl/commercial-manager/internal/config"
	"github.com/matthieukhl/commercial-manager/internal/database"
	"github.com/matthieukhl/commercial-manager/internal/events"
	"github.com/matthieukhl/commercial-manager/internal/logging"
	"github.com/matthieukhl/commercial-manager/internal/orders"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	cfgFile      string
	outputFormat string
)

var rootCmd = &cobra.Command{
	Use:   "commercial-manager",
	Short: "Commercial Manager - customers, products, purchase orders and payments",
	Long: `Commercial Manager keeps the records of a small trading business in a
MySQL database: customers, the product catalog, purchase orders with their
line items, and the payments made against those orders.

Every record can be managed from the command line, and purchase orders are
also served over a small HTTP API with the serve command.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if outputFormat != "table" && outputFormat != "json" {
			return fmt.Errorf("unknown output format %q (want table or json)", outputFormat)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (default: search ./deploy, ., $HOME/.commercial-manager, /etc/commercial-manager)")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "table", "Output format: table or json")
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// app is what a subcommand needs once config is loaded and the database is
// reachable.
type app struct {
	cfg       *config.Config
	db        *database.DB
	log       zerolog.Logger
	publisher events.Publisher
	orders    *orders.Manager
}

func newApp() (*app, error) {
	cfg, err := config.LoadConfig(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	log := logging.New(cfg.Log)

	db, err := database.NewConnection(&cfg.DB)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	publisher := events.New(cfg.Events)
	return &app{
		cfg:       cfg,
		db:        db,
		log:       log,
		publisher: publisher,
		orders: orders.NewManager(db,
			orders.WithPublisher(publisher),
			orders.WithLogger(log),
			orders.WithTimeout(cfg.DB.QueryTimeout),
		),
	}, nil
}

func (a *app) Close() {
	if err := a.publisher.Close(); err != nil {
		a.log.Warn().Err(err).Msg("failed to close event publisher")
	}
	a.db.Close()
}

// queryContext bounds a single repository call by db.queryTimeout.
func (a *app) queryContext(parent context.Context) (context.Context, context.CancelFunc) {
	if a.cfg.DB.QueryTimeout <= 0 {
		return context.WithCancel(parent)
	}
	return context.WithTimeout(parent, a.cfg.DB.QueryTimeout)
}
