package exchange

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"binance_pnl/internal/models"

	"github.com/adshao/go-binance/v2"
	"github.com/shopspring/decimal"
)

// SpotClient - real Binance Spot client, read-only
type SpotClient struct {
	client *binance.Client
}

func NewSpotClient(apiKey, secretKey string, testnet bool) *SpotClient {
	if testnet {
		binance.UseTestnet = true
	}
	client := binance.NewClient(apiKey, secretKey)
	return &SpotClient{client: client}
}

// WithBaseURL points the client at another endpoint (used by tests).
func (s *SpotClient) WithBaseURL(url string, hc *http.Client) *SpotClient {
	s.client.BaseURL = url
	if hc != nil {
		s.client.HTTPClient = hc
	}
	return s
}

func (s *SpotClient) FetchTradeRecords(ctx context.Context, pair string, limit int) ([]models.TradeRecord, error) {
	orders, err := s.client.NewListOrdersService().
		Symbol(pair).
		Limit(limit).
		Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("list orders %s: %w", pair, err)
	}

	records := make([]models.TradeRecord, 0, len(orders))
	for _, o := range orders {
		r, err := toTradeRecord(o)
		if err != nil {
			return nil, fmt.Errorf("order %d: %w", o.OrderID, err)
		}
		records = append(records, r)
	}
	return records, nil
}

func (s *SpotClient) FetchMarketQuote(ctx context.Context, pair string) (models.MarketQuote, error) {
	prices, err := s.client.NewListPricesService().Symbol(pair).Do(ctx)
	if err != nil {
		return models.MarketQuote{}, fmt.Errorf("ticker price %s: %w", pair, err)
	}
	if len(prices) == 0 {
		return models.MarketQuote{}, fmt.Errorf("%w for %s", ErrNoPrice, pair)
	}
	price, err := parseDecimal(prices[0].Price)
	if err != nil {
		return models.MarketQuote{}, fmt.Errorf("ticker price %s: %w", pair, err)
	}
	return models.MarketQuote{Symbol: prices[0].Symbol, Price: price}, nil
}

func (s *SpotClient) FetchPositionSnapshot(ctx context.Context, asset string) (models.PositionSnapshot, error) {
	account, err := s.client.NewGetAccountService().Do(ctx)
	if err != nil {
		return models.PositionSnapshot{}, fmt.Errorf("account: %w", err)
	}

	snap := models.PositionSnapshot{Asset: asset, Free: decimal.Zero, Locked: decimal.Zero}
	for _, balance := range account.Balances {
		if !strings.EqualFold(balance.Asset, asset) {
			continue
		}
		if snap.Free, err = parseDecimal(balance.Free); err != nil {
			return snap, fmt.Errorf("free balance %s: %w", asset, err)
		}
		if snap.Locked, err = parseDecimal(balance.Locked); err != nil {
			return snap, fmt.Errorf("locked balance %s: %w", asset, err)
		}
		break
	}
	// An asset missing from the account is simply not held.
	return snap, nil
}

func (s *SpotClient) BaseAsset(ctx context.Context, pair string) (string, error) {
	info, err := s.client.NewExchangeInfoService().Symbol(pair).Do(ctx)
	if err != nil {
		return "", fmt.Errorf("exchange info %s: %w", pair, err)
	}
	for _, sym := range info.Symbols {
		if strings.EqualFold(sym.Symbol, pair) {
			return sym.BaseAsset, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrUnknownSymbol, pair)
}

func toTradeRecord(o *binance.Order) (models.TradeRecord, error) {
	qty, err := parseDecimal(o.ExecutedQuantity)
	if err != nil {
		return models.TradeRecord{}, fmt.Errorf("executedQty: %w", err)
	}
	price, err := parseDecimal(o.Price)
	if err != nil {
		return models.TradeRecord{}, fmt.Errorf("price: %w", err)
	}
	cost, err := parseDecimal(o.CummulativeQuoteQuantity)
	if err != nil {
		return models.TradeRecord{}, fmt.Errorf("cummulativeQuoteQty: %w", err)
	}

	return models.TradeRecord{
		Symbol:              o.Symbol,
		OrderID:             o.OrderID,
		Side:                models.Side(o.Side),
		Status:              models.OrderStatus(o.Status),
		Type:                string(o.Type),
		QuantityExecuted:    qty,
		Price:               price,
		CumulativeQuoteCost: cost,
		Time:                time.UnixMilli(o.Time).UTC(),
	}, nil
}

// Binance sends empty strings for some fields of old orders.
func parseDecimal(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	v, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %w", ErrMalformedRecord, err)
	}
	return v, nil
}
