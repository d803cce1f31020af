package exchange

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"binance_pnl/internal/models"

	"github.com/adshao/go-binance/v2/common"
	"github.com/jpillora/backoff"
)

// Binance error codes worth another attempt.
var retryableCodes = map[int64]bool{
	-1000: true, // unknown
	-1001: true, // disconnected
	-1003: true, // too many requests
	-1007: true, // timeout waiting for backend
	-1015: true, // too many new orders
}

// RetryPolicy configures RetryClient.
type RetryPolicy struct {
	MaxRetries int
	Timeout    time.Duration // per attempt, 0 disables
	MinBackoff time.Duration
	MaxBackoff time.Duration
}

// RetryClient retries failed calls of the wrapped client with exponential backoff.
type RetryClient struct {
	base   AccountClient
	policy RetryPolicy
	sleep  func(ctx context.Context, d time.Duration) error
}

func NewRetryClient(base AccountClient, policy RetryPolicy) *RetryClient {
	return &RetryClient{base: base, policy: policy, sleep: sleepCtx}
}

func (r *RetryClient) FetchTradeRecords(ctx context.Context, pair string, limit int) ([]models.TradeRecord, error) {
	return retry(ctx, r, "fetch trade records", func(ctx context.Context) ([]models.TradeRecord, error) {
		return r.base.FetchTradeRecords(ctx, pair, limit)
	})
}

func (r *RetryClient) FetchMarketQuote(ctx context.Context, pair string) (models.MarketQuote, error) {
	return retry(ctx, r, "fetch market quote", func(ctx context.Context) (models.MarketQuote, error) {
		return r.base.FetchMarketQuote(ctx, pair)
	})
}

func (r *RetryClient) FetchPositionSnapshot(ctx context.Context, asset string) (models.PositionSnapshot, error) {
	return retry(ctx, r, "fetch position", func(ctx context.Context) (models.PositionSnapshot, error) {
		return r.base.FetchPositionSnapshot(ctx, asset)
	})
}

func (r *RetryClient) BaseAsset(ctx context.Context, pair string) (string, error) {
	return retry(ctx, r, "resolve base asset", func(ctx context.Context) (string, error) {
		return r.base.BaseAsset(ctx, pair)
	})
}

func retry[T any](ctx context.Context, r *RetryClient, op string, fn func(context.Context) (T, error)) (T, error) {
	b := &backoff.Backoff{
		Min:    r.policy.MinBackoff,
		Max:    r.policy.MaxBackoff,
		Factor: 2,
		Jitter: true,
	}

	var zero T
	for attempt := 0; ; attempt++ {
		v, err := attemptOnce(ctx, r.policy.Timeout, fn)
		if err == nil {
			return v, nil
		}
		if !Retryable(err) || attempt >= r.policy.MaxRetries {
			return zero, fmt.Errorf("%s: %w", op, err)
		}

		wait := b.Duration()
		slog.Warn("🔁 Exchange call failed, retrying", "op", op, "attempt", attempt+1, "wait", wait, "error", err)
		if err := r.sleep(ctx, wait); err != nil {
			return zero, fmt.Errorf("%s: %w", op, err)
		}
	}
}

func attemptOnce[T any](ctx context.Context, timeout time.Duration, fn func(context.Context) (T, error)) (T, error) {
	if timeout <= 0 {
		return fn(ctx)
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return fn(ctx)
}

// Retryable reports whether err is transient. Bad symbols, auth failures and
// unparseable data are not; network errors, gateway outages and rate limits are.
func Retryable(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, ErrUnknownSymbol) ||
		errors.Is(err, ErrNoPrice) || errors.Is(err, ErrMalformedRecord) {
		return false
	}
	var apiErr *common.APIError
	if errors.As(err, &apiErr) {
		// Code 0: the body carried no Binance error, e.g. a 5xx page from the gateway.
		return apiErr.Code == 0 || retryableCodes[apiErr.Code]
	}
	return true
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
