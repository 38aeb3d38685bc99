package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ogulcanaydogan/focusboard/internal/config"
	"github.com/ogulcanaydogan/focusboard/internal/server"
	"github.com/ogulcanaydogan/focusboard/pkg/aggregate"
	"github.com/ogulcanaydogan/focusboard/pkg/alerts"
	"github.com/ogulcanaydogan/focusboard/pkg/attendance"
	"github.com/ogulcanaydogan/focusboard/pkg/gateway"
	"github.com/ogulcanaydogan/focusboard/pkg/integrations"
	"github.com/ogulcanaydogan/focusboard/pkg/ledger"
	"github.com/ogulcanaydogan/focusboard/pkg/metrics"
	"github.com/ogulcanaydogan/focusboard/pkg/storage"
	"github.com/ogulcanaydogan/focusboard/pkg/taxsim"
)

func main() {
	cfgFile := flag.String("config", "", "config file (default: ~/.focusboard/config.yaml)")
	flag.Parse()

	if err := run(*cfgFile); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(cfgFile string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := setupLogger(cfg)

	loc, err := cfg.Location()
	if err != nil {
		return err
	}
	limits, err := ledger.ParseLimits(cfg.Usage.DefaultLimit, cfg.Usage.Limits)
	if err != nil {
		return err
	}

	// Initialize storage
	store, err := storage.NewSQLite(cfg.Storage.Path)
	if err != nil {
		return fmt.Errorf("init storage: %w", err)
	}
	defer store.Close()

	// Initialize alerts
	var notifiers []alerts.Notifier
	if cfg.Alerts.Slack.Enabled {
		notifiers = append(notifiers, alerts.NewSlackNotifier(cfg.Alerts.Slack.WebhookURL, cfg.Alerts.Slack.Channel))
	}
	if cfg.Alerts.Webhook.Enabled {
		notifiers = append(notifiers, alerts.NewWebhookNotifier(cfg.Alerts.Webhook.URL, cfg.Alerts.Webhook.Secret))
	}

	collector := metrics.New()

	// Wire up ledger and aggregates
	usageLedger := ledger.NewLedger(store, ledger.Options{
		Limits:   limits,
		Location: loc,
		Alerts:   ledger.NewAlertManager(cfg.Usage.AlertThresholdPct, notifiers, logger),
		Metrics:  collector,
	}, logger)
	engine := aggregate.NewEngine(store, aggregate.Options{
		BlueReturnDeduction:  cfg.Accounting.BlueReturnDeduction,
		DependentIncomeLimit: cfg.Accounting.DependentIncomeLimit,
		Location:             loc,
	}, logger)

	// Initialize integrations
	registry, signer, err := setupIntegrations(cfg)
	if err != nil {
		return err
	}
	logger.Info("integrations configured", "enabled", registry.List(), "signed_urls", signer != nil)

	gw := gateway.New(usageLedger, store, gateway.Options{
		Integrations:    registry,
		Signer:          signer,
		Metrics:         collector,
		SideCallTimeout: config.Duration(cfg.Integrations.SideCallTimeout),
	}, logger)

	table, err := taxsim.DefaultTable()
	if cfg.TaxSim.Table != "" {
		table, err = taxsim.LoadTable(cfg.TaxSim.Table)
	}
	if err != nil {
		return fmt.Errorf("load tax table: %w", err)
	}

	tokens, err := server.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.Issuer, config.Duration(cfg.Auth.TokenTTL))
	if err != nil {
		return err
	}

	apiServer := server.NewServer(server.Deps{
		Ledger:         usageLedger,
		Engine:         engine,
		Gateway:        gw,
		Attendance:     attendance.NewService(store, loc, logger),
		TaxSim:         taxsim.NewSimulator(table),
		Accounting:     store,
		Tokens:         tokens,
		Metrics:        collector,
		RequestTimeout: config.Duration(cfg.Server.RequestTimeout),
		MaxBodySize:    cfg.Server.MaxBodySize,
	}, logger)

	srv := &http.Server{
		Addr:         cfg.Server.Listen,
		Handler:      apiServer.Handler(),
		ReadTimeout:  config.Duration(cfg.Server.ReadTimeout),
		WriteTimeout: config.Duration(cfg.Server.WriteTimeout),
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("focusboard started", "listen", cfg.Server.Listen, "timezone", loc.String())
		errCh <- srv.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case sig := <-quit:
		logger.Info("shutting down", "signal", sig.String())
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(ctx)
	}
}

// setupIntegrations registers the enabled external API clients. The signer
// is nil when object storage is disabled.
func setupIntegrations(cfg *config.Config) (*integrations.Registry, gateway.URLSigner, error) {
	registry := integrations.NewRegistry()

	if c := cfg.Integrations.Calendar; c.Enabled {
		err := registry.Register(integrations.NewCalendarClient(integrations.CalendarConfig{
			BaseURL:    c.BaseURL,
			Token:      c.Token,
			CalendarID: c.CalendarID,
		}, nil))
		if err != nil {
			return nil, nil, err
		}
	}

	if c := cfg.Integrations.Tasks; c.Enabled {
		err := registry.Register(integrations.NewTasksClient(integrations.TasksConfig{
			BaseURL:    c.BaseURL,
			Token:      c.Token,
			TaskListID: c.TaskListID,
		}, nil))
		if err != nil {
			return nil, nil, err
		}
	}

	s := cfg.Integrations.Storage
	if !s.Enabled {
		return registry, nil, nil
	}
	if s.BaseURL == "" || s.ServiceKey == "" {
		return nil, nil, errors.New("integrations.storage requires base_url and service_key")
	}
	signer := integrations.NewStorageSigner(integrations.StorageConfig{
		BaseURL:    s.BaseURL,
		ServiceKey: s.ServiceKey,
		Bucket:     s.Bucket,
		TTL:        config.Duration(s.SignedURLTTL),
	}, nil)
	return registry, signer, nil
}

func setupLogger(cfg *config.Config) *slog.Logger {
	level := slog.LevelInfo
	switch cfg.Logging.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	opts := &slog.HandlerOptions{Level: level}
	if cfg.Logging.Format == "text" {
		return slog.New(slog.NewTextHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, opts))
}
