package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

type OrderStatus string

const (
	StatusFilled          OrderStatus = "FILLED"
	StatusPartiallyFilled OrderStatus = "PARTIALLY_FILLED"
	StatusCanceled        OrderStatus = "CANCELED"
	StatusNew             OrderStatus = "NEW"
)

// TradeRecord is one order from the exchange history, as reported.
type TradeRecord struct {
	Symbol              string          `json:"symbol"`
	OrderID             int64           `json:"order_id"`
	Side                Side            `json:"side"`
	Status              OrderStatus     `json:"status"`
	Type                string          `json:"type"` // "LIMIT", "MARKET", ...
	QuantityExecuted    decimal.Decimal `json:"executed_qty"`
	Price               decimal.Decimal `json:"price"`
	CumulativeQuoteCost decimal.Decimal `json:"cumulative_quote_qty"`
	Time                time.Time       `json:"time"`
}

func (r TradeRecord) IsFilled() bool {
	return r.Status == StatusFilled
}

// MarketQuote is the current mark price of a pair
type MarketQuote struct {
	Symbol string          `json:"symbol"`
	Price  decimal.Decimal `json:"price"`
}

// PositionSnapshot is the held balance of a base asset.
// Free excludes quantity locked by open orders.
type PositionSnapshot struct {
	Asset  string          `json:"asset"`
	Free   decimal.Decimal `json:"free"`
	Locked decimal.Decimal `json:"locked"`
}

// Snapshot bundles everything fetched for one report run
type Snapshot struct {
	Pair      string           `json:"pair"`
	Limit     int              `json:"limit"`
	FetchedAt time.Time        `json:"fetched_at"`
	Records   []TradeRecord    `json:"records"`
	Quote     MarketQuote      `json:"quote"`
	Position  PositionSnapshot `json:"position"`
}
