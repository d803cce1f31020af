package analysis

import (
	"time"

	"github.com/shopspring/decimal"
)

// Report is the position and P&L summary for one pair.
// Fields typed decimal.NullDecimal are undefined (Valid == false) when the
// underlying average has no contributing records.
type Report struct {
	RunID       string    `json:"run_id,omitempty"`
	GeneratedAt time.Time `json:"generated_at,omitempty"`

	Coin             string          `json:"coin"`
	TransactionCount int             `json:"transaction_count"`
	CurrentPrice     decimal.Decimal `json:"current_price"`

	// Cost-basis realized P&L, in quote currency.
	RealizedPL decimal.Decimal `json:"realized_pl"`
	// Average-spread realized P&L, in percent, after trimming unmatched buys.
	RealizedPLPercent decimal.Decimal `json:"realized_pl_percent"`
	TrimmedBuys       int             `json:"trimmed_buys"`

	PriceDelta     decimal.NullDecimal `json:"price_delta"`
	OpenPosition   decimal.Decimal     `json:"open_position"`
	LockedPosition decimal.Decimal     `json:"locked_position"`
	LastBuyPrice   decimal.NullDecimal `json:"last_buy_price"`

	AvgBuyPrice      decimal.NullDecimal `json:"avg_buy_price"`
	TotalCoinsBought decimal.Decimal     `json:"total_coins_bought"`
	TotalBuyCost     decimal.Decimal     `json:"total_buy_cost"`
	// Buy cost of the priced records only; the base of RealizedPL.
	PricedBuyCost decimal.Decimal `json:"priced_buy_cost"`

	AvgSellPrice   decimal.NullDecimal `json:"avg_sell_price"`
	TotalCoinsSold decimal.Decimal     `json:"total_coins_sold"`
	TotalSellCost  decimal.Decimal     `json:"total_sell_cost"`
	PricedSellCost decimal.Decimal     `json:"priced_sell_cost"`
	UnrealizedPL   decimal.NullDecimal `json:"unrealized_pl"`
	RealizedMode   RealizedMode        `json:"realized_mode"`
	Reconciliation Reconciliation      `json:"reconciliation"`
}

// Reconciliation explains how the raw records were used.
type Reconciliation struct {
	ExecutedQuantity decimal.Decimal `json:"executed_quantity"`
	Ignored          int             `json:"ignored"`
	FilledBuys       int             `json:"filled_buys"`
	FilledSells      int             `json:"filled_sells"`
	DefectiveBuys    int             `json:"defective_buys"`
	DefectiveSells   int             `json:"defective_sells"`
}

// ShowCostBasis reports whether the cost-basis figure should be presented.
func (r Report) ShowCostBasis() bool {
	return r.RealizedMode != RealizedSpread
}

// ShowSpread reports whether the spread percentage should be presented.
func (r Report) ShowSpread() bool {
	return r.RealizedMode == RealizedSpread || r.RealizedMode == RealizedBoth
}
