package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ajitpratap0/magesync/internal/pipeline"
	"github.com/ajitpratap0/magesync/pkg/clients"
	"github.com/ajitpratap0/magesync/pkg/config"
	"github.com/ajitpratap0/magesync/pkg/connector/base"
	"github.com/ajitpratap0/magesync/pkg/connector/destination/woowup"
	"github.com/ajitpratap0/magesync/pkg/connector/registry"
	"github.com/ajitpratap0/magesync/pkg/connector/source/magento"
	"github.com/ajitpratap0/magesync/pkg/json"
	"github.com/ajitpratap0/magesync/pkg/logger"
	"github.com/ajitpratap0/magesync/pkg/metrics"
	"github.com/ajitpratap0/magesync/pkg/observability"

	// Register the built-in mapping filters
	_ "github.com/ajitpratap0/magesync/internal/filters"
)

var version = "0.1.0"

const dateLayout = "2006-01-02"

// globalFlags are shared by every import command
type globalFlags struct {
	configFile  string
	logLevel    string
	trace       bool
	metricsAddr string
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	var flags globalFlags

	root := &cobra.Command{
		Use:   "magesync",
		Short: "magesync - Magento to WoowUp synchronization",
		Long: `magesync pulls customers, orders and products from a Magento 1 store through its
RPC web services and reconciles them into a WoowUp account.`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVarP(&flags.configFile, "config", "c", "magesync.yaml", "Path to the YAML configuration file")
	root.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "Log level (debug, info, warn, error); overrides the configuration")
	root.PersistentFlags().BoolVar(&flags.trace, "trace", false, "Export tracing spans to stderr")
	root.PersistentFlags().StringVar(&flags.metricsAddr, "metrics-addr", "", "Expose Prometheus metrics on this address (e.g. :9090)")

	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("magesync v%s\n", version)
			fmt.Printf("Go version: %s\n", runtime.Version())
			fmt.Printf("OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "filters",
		Short: "List available mapping filters",
		Run: func(cmd *cobra.Command, args []string) {
			for _, info := range registry.ListFilters() {
				fmt.Printf("  - %s: %s %v\n", info.Name, info.Description, info.Hooks)
			}
		},
	})

	configCmd := &cobra.Command{Use: "config", Short: "Manage the configuration file"}
	configCmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Write a configuration file with every default filled in",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := os.Stat(flags.configFile); err == nil {
				return fmt.Errorf("%s already exists", flags.configFile)
			}
			if err := config.Save(flags.configFile, config.Default()); err != nil {
				return err
			}
			fmt.Printf("wrote %s\n", flags.configFile)
			return nil
		},
	})
	root.AddCommand(configCmd)

	var customerDays int
	customersCmd := &cobra.Command{
		Use:   "customers",
		Short: "Import customers created or updated in the last days",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), flags, func(ctx context.Context, imp *pipeline.Importer) (*pipeline.Summary, error) {
				return imp.ImportCustomers(ctx, customerDays)
			})
		},
	}
	customersCmd.Flags().IntVar(&customerDays, "days", pipeline.DefaultCustomerDays, "Days to look back")
	root.AddCommand(customersCmd)

	var orderDays int
	var orderTo string
	var orderUpdate, orderImporting bool
	ordersCmd := &cobra.Command{
		Use:   "orders",
		Short: "Import orders with an allowed status",
		Long: `Import orders placed in the last days, or in the days before --to.
Orders whose status is not configured are counted but not sent.

Example:
  magesync orders --days 30 --to 2024-03-01 --update --importing`,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := pipeline.OrderOptions{Days: orderDays, Update: orderUpdate, Importing: orderImporting}
			if orderTo != "" {
				to, err := time.ParseInLocation(dateLayout, orderTo, time.Local)
				if err != nil {
					return fmt.Errorf("invalid --to date %q: %w", orderTo, err)
				}
				opts.To = to
			}
			return run(cmd.Context(), flags, func(ctx context.Context, imp *pipeline.Importer) (*pipeline.Summary, error) {
				return imp.ImportOrders(ctx, opts)
			})
		},
	}
	ordersCmd.Flags().IntVar(&orderDays, "days", pipeline.DefaultOrderDays, "Days to look back")
	ordersCmd.Flags().StringVar(&orderTo, "to", "", "Last day of the window (YYYY-MM-DD); walks backwards from it")
	ordersCmd.Flags().BoolVar(&orderUpdate, "update", false, "Update purchases that already exist")
	ordersCmd.Flags().BoolVar(&orderImporting, "importing", false, "Use the order creation time as approval time (historical import)")
	root.AddCommand(ordersCmd)

	var productMonths int
	productsCmd := &cobra.Command{
		Use:   "products",
		Short: "Import products and retire the ones no longer listed",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), flags, func(ctx context.Context, imp *pipeline.Importer) (*pipeline.Summary, error) {
				return imp.ImportProducts(ctx, productMonths)
			})
		},
	}
	productsCmd.Flags().IntVar(&productMonths, "months", pipeline.DefaultProductMonths, "Months to look back")
	root.AddCommand(productsCmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type importFunc func(ctx context.Context, imp *pipeline.Importer) (*pipeline.Summary, error)

// run loads the configuration, wires both ends and runs one import
func run(ctx context.Context, flags globalFlags, fn importFunc) error {
	cfg, err := config.Load(flags.configFile)
	if err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}
	if flags.logLevel != "" {
		cfg.Logging.Level = flags.logLevel
	}
	if flags.trace {
		cfg.Observability.Tracing = true
	}
	if flags.metricsAddr != "" {
		cfg.Observability.MetricsAddr = flags.metricsAddr
	}

	log, err := logger.New(logger.Config{
		Level:       cfg.Logging.Level,
		Encoding:    cfg.Logging.Encoding,
		Development: cfg.Logging.Development,
	})
	if err != nil {
		return err
	}
	logger.Set(log)
	defer func() { _ = log.Sync() }()
	cli := log.With(zap.String("component", "magesync-cli"), zap.String("host", cfg.Source.Host))

	shutdown, err := observability.InitTracing(observability.TracingConfig{
		ServiceName:    "magesync",
		ServiceVersion: version,
		Enabled:        cfg.Observability.Tracing,
	})
	if err != nil {
		return err
	}
	defer func() {
		if err := shutdown(context.Background()); err != nil {
			cli.Warn("failed to flush spans", zap.Error(err))
		}
	}()

	if addr := cfg.Observability.MetricsAddr; addr != "" {
		go func() {
			if err := metrics.Serve(ctx, addr); err != nil {
				cli.Error("metrics listener stopped", zap.String("addr", addr), zap.Error(err))
			}
		}()
	}

	imp, err := newImporter(cfg, log)
	if err != nil {
		return err
	}

	sum, err := fn(ctx, imp)
	if sum != nil {
		printSummary(sum)
	}
	if err != nil {
		return fmt.Errorf("%s import aborted: %w", sumEntity(sum), err)
	}
	return nil
}

// newImporter builds the source repository, the destination reconciler and the filter chain
func newImporter(cfg *config.Config, log *zap.Logger) (*pipeline.Importer, error) {
	srcHTTP := clients.DefaultHTTPConfig()
	srcHTTP.RequestTimeout = cfg.Source.RequestTimeout
	srcHTTP.UserAgent = cfg.Source.UserAgent
	transport := magento.NewJSONRPCTransport(cfg.Source.Host+cfg.Source.EndpointPath, clients.NewHTTPClient(srcHTTP, log))

	policy := base.NewRetryPolicy(cfg.Reliability.RetryAttempts, cfg.Reliability.RetryBase).
		WithUnit(cfg.Reliability.RetryUnit).
		WithFilter(magento.RetryFilter(cfg.Reliability.RetryFilter))
	gateway := magento.NewGateway(transport, cfg.Source.APIUser, cfg.Source.APIKey, policy,
		magento.WithSessionTimeout(cfg.Source.SessionTimeout),
		magento.WithLogger(log),
	)
	client, err := magento.NewClient(cfg.Source.Version, gateway)
	if err != nil {
		return nil, err
	}
	repo := magento.NewRepository(client, log)

	dstHTTP := clients.DefaultHTTPConfig()
	dstHTTP.RequestTimeout = cfg.Destination.Timeout
	dstHTTP.RateLimit = cfg.Destination.RateLimit
	dstHTTP.RateBurst = cfg.Destination.RateBurst
	dstHTTP.EnableHTTP2 = cfg.Destination.EnableHTTP2
	api := woowup.NewClient(cfg.Destination.BaseURL, cfg.Destination.APIKey, clients.NewHTTPClient(dstHTTP, log), log)
	rec := woowup.NewReconciler(api, woowup.NewStatistics(), log).WithPageSize(cfg.Destination.PageSize)

	filters, err := registry.GetRegistry().Build(cfg.FilterSpecs())
	if err != nil {
		return nil, err
	}
	hooks := pipeline.NewHooks(filters...)
	log.Info("filters enabled", zap.String("component", "magesync-cli"), zap.Strings("filters", hooks.Names()))

	return pipeline.NewImporter(repo, rec, hooks, pipeline.Config{
		Transform: pipeline.TransformConfig{
			Host:            cfg.Source.Host,
			BranchName:      cfg.Sync.BranchName,
			Variations:      cfg.Sync.Variations,
			Categories:      cfg.Sync.Categories,
			CategoriesField: cfg.Sync.CategoriesField,
			URLField:        cfg.Sync.URLField,
		},
		Stores:           cfg.Source.Stores,
		Statuses:         cfg.Sync.Statuses,
		StoreID:          cfg.Source.StoreID,
		ProductTypes:     cfg.Sync.ProductTypes,
		ProgressInterval: cfg.Observability.ProgressInterval,
	}, log), nil
}

// summaryReport is the JSON printed on stdout after a run
type summaryReport struct {
	RunID    string                        `json:"run_id"`
	Entity   string                        `json:"entity"`
	Started  time.Time                     `json:"started"`
	Duration string                        `json:"duration"`
	Stats    map[string]woowup.EntityStats `json:"stats"`
	Failed   map[string]int                `json:"failed"`
	Statuses pipeline.StatusBreakdown      `json:"statuses,omitempty"`
	Retired  int                           `json:"retired,omitempty"`
}

func printSummary(sum *pipeline.Summary) {
	report := summaryReport{
		RunID:    sum.RunID,
		Entity:   sum.Entity,
		Started:  sum.Started,
		Duration: sum.Duration.String(),
		Stats:    sum.Stats,
		Failed:   make(map[string]int, len(sum.Stats)),
		Statuses: sum.Statuses,
		Retired:  sum.Retired,
	}
	for entity, s := range sum.Stats {
		report.Failed[entity] = s.FailedCount()
	}
	out, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return
	}
	fmt.Println(string(out))
}

func sumEntity(sum *pipeline.Summary) string {
	if sum == nil || sum.Entity == "" {
		return "sync"
	}
	return sum.Entity
}
