// Package gateway wraps calls to metered external APIs with the usage
// ledger's check-then-increment discipline.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ogulcanaydogan/focusboard/pkg/integrations"
	"github.com/ogulcanaydogan/focusboard/pkg/ledger"
	"github.com/ogulcanaydogan/focusboard/pkg/metrics"
	"github.com/ogulcanaydogan/focusboard/pkg/model"
)

// DefaultSideCallTimeout bounds best-effort calls made alongside a write.
const DefaultSideCallTimeout = 5 * time.Second

// Store is the persistence the gateway flows write to.
type Store interface {
	CreateReceipt(ctx context.Context, r *model.Receipt) error
	ListReceipts(ctx context.Context, userID string) ([]model.Receipt, error)
	CreateSession(ctx context.Context, s *model.PomodoroSession) error
	SetSessionCalendarEvent(ctx context.Context, userID, id, eventID string) error
}

// URLSigner issues readable URLs for stored object paths.
type URLSigner interface {
	SignURL(ctx context.Context, path string) (string, error)
}

// Options configures a Gateway.
type Options struct {
	Integrations    *integrations.Registry
	Signer          URLSigner
	Metrics         *metrics.Collector
	SideCallTimeout time.Duration
	// SignConcurrency caps concurrent signing requests per listing.
	SignConcurrency int
}

// Gateway sequences quota checks, external calls and usage recording.
type Gateway struct {
	ledger          *ledger.Ledger
	store           Store
	integrations    *integrations.Registry
	signer          URLSigner
	metrics         *metrics.Collector
	sideCallTimeout time.Duration
	signLimit       int
	logger          *slog.Logger
}

// New creates a gateway.
func New(l *ledger.Ledger, store Store, opts Options, logger *slog.Logger) *Gateway {
	g := &Gateway{
		ledger:          l,
		store:           store,
		integrations:    opts.Integrations,
		signer:          opts.Signer,
		metrics:         opts.Metrics,
		sideCallTimeout: opts.SideCallTimeout,
		signLimit:       opts.SignConcurrency,
		logger:          logger,
	}
	if g.integrations == nil {
		g.integrations = integrations.NewRegistry()
	}
	if g.sideCallTimeout <= 0 {
		g.sideCallTimeout = DefaultSideCallTimeout
	}
	if g.signLimit <= 0 {
		g.signLimit = 8
	}
	return g
}

// Advisory runs action regardless of quota and records one use when the
// action succeeded while still under the limit. The returned usage reflects
// the state after the call so callers can warn the user.
func (g *Gateway) Advisory(ctx context.Context, userID string, apiType model.APIType, action func(ctx context.Context) error) (model.UsageInfo, error) {
	usage, err := g.ledger.GetUsage(ctx, userID, apiType)
	if err != nil {
		return usage, err
	}

	if err := action(ctx); err != nil {
		return usage, err
	}
	if usage.IsOverLimit {
		return usage, nil
	}

	after, err := g.ledger.IncrementUsage(ctx, userID, apiType)
	switch {
	case err == nil:
		return after, nil
	case errors.Is(err, model.ErrQuotaExceeded):
		// Another request used the last call first.
		return after, nil
	default:
		g.logger.Error("record advisory usage", "user_id", userID, "api_type", apiType, "error", err)
		return usage, nil
	}
}

// Enforced consumes one call before running action. When the quota is
// exhausted the action is not run and model.ErrQuotaExceeded is returned.
func (g *Gateway) Enforced(ctx context.Context, userID string, apiType model.APIType, action func(ctx context.Context) error) (model.UsageInfo, error) {
	usage, err := g.ledger.IncrementUsage(ctx, userID, apiType)
	if err != nil {
		return usage, err
	}
	if err := action(ctx); err != nil {
		return usage, err
	}
	return usage, nil
}

// BestEffort runs fn under the side-call timeout. Failures are logged and
// counted, never returned.
func (g *Gateway) BestEffort(ctx context.Context, name string, fn func(ctx context.Context) error) (ok bool) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), g.sideCallTimeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			g.metrics.IncUpstreamError(name)
			g.logger.Error("best-effort call panicked", "integration", name, "panic", fmt.Sprint(r))
			ok = false
		}
	}()

	if err := fn(ctx); err != nil {
		if !errors.Is(err, model.ErrQuotaExceeded) {
			g.metrics.IncUpstreamError(name)
		}
		g.logger.Warn("best-effort call failed", "integration", name, "error", err)
		return false
	}
	return true
}
