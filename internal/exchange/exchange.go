package exchange

import (
	"context"
	"errors"
	"strings"

	"binance_pnl/internal/models"
)

var (
	ErrNoPrice       = errors.New("no price data")
	ErrUnknownSymbol = errors.New("unknown symbol")
	// ErrMalformedRecord marks exchange data that cannot be parsed. Refetching
	// returns the same bytes, so it is never retried.
	ErrMalformedRecord = errors.New("malformed exchange data")
)

// AccountClient is the market-data/account collaborator a report is built from.
// Implementations: SpotClient (Binance), FileClient (replayed dump) and
// RetryClient wrapping either.
type AccountClient interface {
	// FetchTradeRecords returns up to limit orders for pair, oldest first.
	FetchTradeRecords(ctx context.Context, pair string, limit int) ([]models.TradeRecord, error)
	FetchMarketQuote(ctx context.Context, pair string) (models.MarketQuote, error)
	FetchPositionSnapshot(ctx context.Context, asset string) (models.PositionSnapshot, error)
	// BaseAsset resolves the traded asset of a pair (ADAUSDT -> ADA).
	BaseAsset(ctx context.Context, pair string) (string, error)
}

// Longest suffixes first so FDUSD wins over USD.
var quoteAssets = []string{"FDUSD", "USDT", "USDC", "BUSD", "TUSD", "EUR", "TRY", "BTC", "ETH", "BNB", "USD"}

// BaseAssetFromPair strips a known quote asset from pair. It is the fallback
// when the exchange cannot be asked.
func BaseAssetFromPair(pair string) (string, bool) {
	pair = strings.ToUpper(pair)
	for _, q := range quoteAssets {
		if strings.HasSuffix(pair, q) && len(pair) > len(q) {
			return strings.TrimSuffix(pair, q), true
		}
	}
	return "", false
}
