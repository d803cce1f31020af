package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"binance_pnl/config"
	"binance_pnl/internal/analysis"
	"binance_pnl/internal/exchange"
	"binance_pnl/internal/logger"
	"binance_pnl/internal/models"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
)

const historySize = 50

// ReportEngine fetches account data for one pair and turns it into a report.
// Each run owns its records and totals; only the recent-report history is shared.
type ReportEngine struct {
	exchange     exchange.AccountClient
	opts         analysis.Options
	defaultLimit int

	mu      sync.RWMutex
	history []analysis.Report
	now     func() time.Time
}

func NewReportEngine(client exchange.AccountClient, cfg *config.Config) *ReportEngine {
	return &ReportEngine{
		exchange:     client,
		opts:         cfg.AnalysisOptions(),
		defaultLimit: cfg.Report.DefaultLimit,
		history:      make([]analysis.Report, 0),
		now:          time.Now,
	}
}

func (e *ReportEngine) Options() analysis.Options {
	return e.opts
}

// NormalizeLimit applies the default when limit is unset and caps it at the
// exchange maximum.
func (e *ReportEngine) NormalizeLimit(limit int) int {
	if limit <= 0 {
		return e.defaultLimit
	}
	if limit > config.MaxLimit {
		return config.MaxLimit
	}
	return limit
}

// FetchSnapshot collects records, quote and position for pair.
func (e *ReportEngine) FetchSnapshot(ctx context.Context, pair string, limit int) (models.Snapshot, error) {
	pair = strings.ToUpper(strings.TrimSpace(pair))
	if pair == "" {
		return models.Snapshot{}, fmt.Errorf("trading pair is required")
	}
	limit = e.NormalizeLimit(limit)

	ctx, span := logger.StartSpan(ctx, "engine.FetchSnapshot")
	span.SetAttributes(attribute.String("pair", pair), attribute.Int("limit", limit))
	defer span.End()

	records, err := traced(ctx, "exchange.FetchTradeRecords", func(ctx context.Context) ([]models.TradeRecord, error) {
		return e.exchange.FetchTradeRecords(ctx, pair, limit)
	})
	if err != nil {
		return models.Snapshot{}, err
	}
	slog.Info("📥 Fetched trade records", "pair", pair, "count", len(records), "limit", limit)

	quote, err := traced(ctx, "exchange.FetchMarketQuote", func(ctx context.Context) (models.MarketQuote, error) {
		return e.exchange.FetchMarketQuote(ctx, pair)
	})
	if err != nil {
		return models.Snapshot{}, err
	}

	asset := e.resolveAsset(ctx, pair)
	if asset == "" {
		return models.Snapshot{}, fmt.Errorf("%w: cannot resolve base asset of %s", exchange.ErrUnknownSymbol, pair)
	}

	position, err := traced(ctx, "exchange.FetchPositionSnapshot", func(ctx context.Context) (models.PositionSnapshot, error) {
		return e.exchange.FetchPositionSnapshot(ctx, asset)
	})
	if err != nil {
		return models.Snapshot{}, err
	}

	return models.Snapshot{
		Pair:      pair,
		Limit:     limit,
		FetchedAt: e.now().UTC(),
		Records:   records,
		Quote:     quote,
		Position:  position,
	}, nil
}

func (e *ReportEngine) resolveAsset(ctx context.Context, pair string) string {
	asset, err := traced(ctx, "exchange.BaseAsset", func(ctx context.Context) (string, error) {
		return e.exchange.BaseAsset(ctx, pair)
	})
	if err == nil && asset != "" {
		return asset
	}

	fallback, ok := exchange.BaseAssetFromPair(pair)
	if !ok {
		return ""
	}
	slog.Warn("⚠️ Base asset lookup failed, guessing from pair", "pair", pair, "asset", fallback, "error", err)
	return fallback
}

// Compute builds a report from an already fetched snapshot.
func (e *ReportEngine) Compute(snap models.Snapshot) analysis.Report {
	r := analysis.ComputeReport(snap.Pair, snap.Records, snap.Quote, snap.Position, e.opts)
	r.RunID = uuid.NewString()
	r.GeneratedAt = e.now().UTC()

	if d := r.Reconciliation.DefectiveBuys + r.Reconciliation.DefectiveSells; d > 0 {
		slog.Warn("⚠️ Defective records excluded from averages", "run_id", r.RunID, "pair", r.Coin, "count", d)
	}
	slog.Info("📊 Report computed", "run_id", r.RunID, "pair", r.Coin,
		"records", r.TransactionCount, "realized_pl", r.RealizedPL.String())

	e.remember(r)
	return r
}

// Report fetches and computes in one call.
func (e *ReportEngine) Report(ctx context.Context, pair string, limit int) (analysis.Report, error) {
	snap, err := e.FetchSnapshot(ctx, pair, limit)
	if err != nil {
		slog.Error("❌ Failed to fetch account data", "pair", pair, "error", err)
		return analysis.Report{}, err
	}
	return e.Compute(snap), nil
}

// Quote fetches the current price only; used by health checks.
func (e *ReportEngine) Quote(ctx context.Context, pair string) (models.MarketQuote, error) {
	return traced(ctx, "exchange.FetchMarketQuote", func(ctx context.Context) (models.MarketQuote, error) {
		return e.exchange.FetchMarketQuote(ctx, strings.ToUpper(pair))
	})
}

func (e *ReportEngine) remember(r analysis.Report) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.history = append(e.history, r)
	if len(e.history) > historySize {
		e.history = e.history[len(e.history)-historySize:]
	}
}

// History returns recent reports, newest last.
func (e *ReportEngine) History() []analysis.Report {
	e.mu.RLock()
	defer e.mu.RUnlock()
	// Return a copy to avoid race conditions
	history := make([]analysis.Report, len(e.history))
	copy(history, e.history)
	return history
}

func traced[T any](ctx context.Context, name string, fn func(context.Context) (T, error)) (T, error) {
	ctx, span := logger.StartSpan(ctx, name)
	defer span.End()

	v, err := fn(ctx)
	if err != nil {
		span.RecordError(err)
	}
	return v, err
}
