package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/ogulcanaydogan/focusboard/internal/config"
	"github.com/ogulcanaydogan/focusboard/pkg/aggregate"
	"github.com/ogulcanaydogan/focusboard/pkg/alerts"
	"github.com/ogulcanaydogan/focusboard/pkg/ledger"
	"github.com/ogulcanaydogan/focusboard/pkg/storage"
	"github.com/ogulcanaydogan/focusboard/pkg/taxsim"
)

// Version is set at build time via ldflags.
var Version = "dev"

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "fbctl",
	Short: "focusboard admin CLI - usage quotas, reports and session tokens",
	Long: `fbctl operates on the focusboard database directly. It inspects and adjusts
monthly API usage quotas, prints accounting, attendance and productivity
reports, runs the dependent income simulator and issues session tokens.`,
	SilenceUsage: true,
}

// Execute runs the CLI.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ~/.focusboard/config.yaml)")
}

// loadConfig loads the configuration.
func loadConfig() (*config.Config, error) {
	return config.Load(cfgFile)
}

// newLogger creates a structured logger from config.
func newLogger(cfg *config.Config, w io.Writer) *slog.Logger {
	level := slog.LevelInfo
	switch cfg.Logging.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	var handler slog.Handler
	if cfg.Logging.Format == "text" {
		handler = slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	} else {
		handler = slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	}

	return slog.New(handler)
}

// initNotifiers creates alert notifiers from config.
func initNotifiers(cfg *config.Config) []alerts.Notifier {
	var notifiers []alerts.Notifier

	if cfg.Alerts.Slack.Enabled && cfg.Alerts.Slack.WebhookURL != "" {
		notifiers = append(notifiers, alerts.NewSlackNotifier(
			cfg.Alerts.Slack.WebhookURL,
			cfg.Alerts.Slack.Channel,
		))
	}

	if cfg.Alerts.Webhook.Enabled && cfg.Alerts.Webhook.URL != "" {
		notifiers = append(notifiers, alerts.NewWebhookNotifier(
			cfg.Alerts.Webhook.URL,
			cfg.Alerts.Webhook.Secret,
		))
	}

	return notifiers
}

// env is what most subcommands operate on.
type env struct {
	cfg    *config.Config
	store  *storage.SQLite
	ledger *ledger.Ledger
	engine *aggregate.Engine
	logger *slog.Logger
}

// openEnv loads config and opens the database. Callers must call close.
func openEnv(cmd *cobra.Command) (*env, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	logger := newLogger(cfg, cmd.ErrOrStderr())

	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	limits, err := ledger.ParseLimits(cfg.Usage.DefaultLimit, cfg.Usage.Limits)
	if err != nil {
		return nil, err
	}

	store, err := storage.NewSQLite(cfg.Storage.Path)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}

	l := ledger.NewLedger(store, ledger.Options{
		Limits:   limits,
		Location: loc,
		Alerts:   ledger.NewAlertManager(cfg.Usage.AlertThresholdPct, initNotifiers(cfg), logger),
	}, logger)
	engine := aggregate.NewEngine(store, aggregate.Options{
		BlueReturnDeduction:  cfg.Accounting.BlueReturnDeduction,
		DependentIncomeLimit: cfg.Accounting.DependentIncomeLimit,
		Location:             loc,
	}, logger)

	return &env{cfg: cfg, store: store, ledger: l, engine: engine, logger: logger}, nil
}

func (e *env) close() {
	e.store.Close()
}

// initSimulator loads the configured tax table, falling back to the
// embedded one.
func initSimulator(cfg *config.Config) (*taxsim.Simulator, error) {
	if cfg.TaxSim.Table == "" {
		table, err := taxsim.DefaultTable()
		if err != nil {
			return nil, err
		}
		return taxsim.NewSimulator(table), nil
	}
	table, err := taxsim.LoadTable(cfg.TaxSim.Table)
	if err != nil {
		return nil, fmt.Errorf("load tax table: %w", err)
	}
	return taxsim.NewSimulator(table), nil
}
