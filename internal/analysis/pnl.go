package analysis

import (
	"fmt"
	"strings"

	"binance_pnl/internal/ledger"
	"binance_pnl/internal/models"

	"github.com/shopspring/decimal"
)

// RealizedMode selects which realized P&L figure a report presents.
type RealizedMode string

const (
	RealizedCostBasis RealizedMode = "cost-basis"
	RealizedSpread    RealizedMode = "spread"
	RealizedBoth      RealizedMode = "both"
)

func ParseRealizedMode(s string) (RealizedMode, error) {
	switch m := RealizedMode(strings.ToLower(strings.TrimSpace(s))); m {
	case RealizedCostBasis, RealizedSpread, RealizedBoth:
		return m, nil
	case "":
		return RealizedCostBasis, nil
	default:
		return "", fmt.Errorf("unknown realized mode %q (want cost-basis, spread or both)", s)
	}
}

// SpreadSign is the sign convention of the spread percentage.
type SpreadSign string

const (
	// (avgBuy - avgSell) / avgBuy * 100
	SpreadBuyMinusSell SpreadSign = "buy-minus-sell"
	// (avgSell - avgBuy) / avgBuy * 100
	SpreadSellMinusBuy SpreadSign = "sell-minus-buy"
)

func ParseSpreadSign(s string) (SpreadSign, error) {
	switch sign := SpreadSign(strings.ToLower(strings.TrimSpace(s))); sign {
	case SpreadBuyMinusSell, SpreadSellMinusBuy:
		return sign, nil
	case "":
		return SpreadBuyMinusSell, nil
	default:
		return "", fmt.Errorf("unknown spread sign %q (want buy-minus-sell or sell-minus-buy)", s)
	}
}

// Options control report computation.
type Options struct {
	Classify     ledger.ClassifyOptions
	SpreadSign   SpreadSign
	RealizedMode RealizedMode
}

var hundred = decimal.NewFromInt(100)

// AveragePrice divides cost by quantity, undefined when quantity is zero.
func AveragePrice(cost, quantity decimal.Decimal) decimal.NullDecimal {
	if quantity.IsZero() {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(cost.Div(quantity))
}

func mean(prices []decimal.Decimal) decimal.NullDecimal {
	if len(prices) == 0 {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(decimal.Sum(prices[0], prices[1:]...).Div(decimal.NewFromInt(int64(len(prices)))))
}

// CostBasisRealized is sell proceeds minus buy cost over the priced records.
func CostBasisRealized(t ledger.Totals) decimal.Decimal {
	return t.Sells.PricedQuoteCost.Sub(t.Buys.PricedQuoteCost)
}

// MatchedBuyPrices drops the buy prices that have no sell to pair with.
// The surplus max(0, countBuys-countSells) is cut from the tail of the
// chronological list. The returned slice never aliases the ledger's.
func MatchedBuyPrices(t ledger.Totals) (matched []decimal.Decimal, dropped int) {
	dropped = t.CountBuys() - t.CountSells()
	if dropped < 0 {
		dropped = 0
	}
	keep := t.CountBuys() - dropped
	matched = make([]decimal.Decimal, keep)
	copy(matched, t.Buys.Prices[:keep])
	return matched, dropped
}

// SpreadRealizedPercent compares the average matched buy price with the
// average sell price. Zero when either side has no priced entries.
func SpreadRealizedPercent(t ledger.Totals, sign SpreadSign) (pct decimal.Decimal, dropped int) {
	matched, dropped := MatchedBuyPrices(t)
	avgBuy := mean(matched)
	avgSell := mean(t.Sells.Prices)
	if !avgBuy.Valid || !avgSell.Valid || avgBuy.Decimal.IsZero() {
		return decimal.Zero, dropped
	}

	diff := avgBuy.Decimal.Sub(avgSell.Decimal)
	if sign == SpreadSellMinusBuy {
		diff = diff.Neg()
	}
	return diff.Div(avgBuy.Decimal).Mul(hundred), dropped
}

// Unrealized is the paper P&L of the free quantity at the market price.
func Unrealized(market decimal.Decimal, avgBuy decimal.NullDecimal, quantity decimal.Decimal) decimal.NullDecimal {
	if !avgBuy.Valid {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(market.Sub(avgBuy.Decimal).Mul(quantity))
}

// ComputeReport derives the report from raw records. It never fails: an
// empty side yields undefined averages rather than an error.
func ComputeReport(pair string, records []models.TradeRecord, quote models.MarketQuote, position models.PositionSnapshot, opts Options) Report {
	totals := ledger.Build(records, opts.Classify)
	return ReportFromTotals(pair, totals, quote, position, opts)
}

func ReportFromTotals(pair string, t ledger.Totals, quote models.MarketQuote, position models.PositionSnapshot, opts Options) Report {
	avgBuy := AveragePrice(t.Buys.PricedQuoteCost, t.Buys.PricedQuantity)
	avgSell := AveragePrice(t.Sells.PricedQuoteCost, t.Sells.PricedQuantity)
	pct, dropped := SpreadRealizedPercent(t, opts.SpreadSign)

	r := Report{
		Coin:              pair,
		TransactionCount:  t.Records,
		CurrentPrice:      quote.Price,
		RealizedPL:        CostBasisRealized(t),
		RealizedPLPercent: pct,
		TrimmedBuys:       dropped,
		OpenPosition:      position.Free,
		LockedPosition:    position.Locked,
		AvgBuyPrice:       avgBuy,
		TotalCoinsBought:  t.Buys.Quantity,
		TotalBuyCost:      t.Buys.QuoteCost,
		PricedBuyCost:     t.Buys.PricedQuoteCost,
		AvgSellPrice:      avgSell,
		TotalCoinsSold:    t.Sells.Quantity,
		TotalSellCost:     t.Sells.QuoteCost,
		PricedSellCost:    t.Sells.PricedQuoteCost,
		UnrealizedPL:      Unrealized(quote.Price, avgBuy, position.Free),
		RealizedMode:      opts.RealizedMode,
		Reconciliation: Reconciliation{
			ExecutedQuantity: t.ExecutedQuantity,
			Ignored:          t.Ignored,
			FilledBuys:       t.Buys.Count() + t.Buys.Defective,
			FilledSells:      t.Sells.Count() + t.Sells.Defective,
			DefectiveBuys:    t.Buys.Defective,
			DefectiveSells:   t.Sells.Defective,
		},
	}
	if r.RealizedMode == "" {
		r.RealizedMode = RealizedCostBasis
	}
	if t.HasBuy {
		r.LastBuyPrice = decimal.NewNullDecimal(t.LastBuyPrice)
	}
	if avgBuy.Valid {
		r.PriceDelta = decimal.NewNullDecimal(quote.Price.Sub(avgBuy.Decimal))
	}
	return r
}
