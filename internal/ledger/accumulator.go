package ledger

import (
	"binance_pnl/internal/models"

	"github.com/shopspring/decimal"
)

// SideTotals accumulates one side (buys or sells) of the ledger.
type SideTotals struct {
	Quantity  decimal.Decimal // every filled record of this side
	QuoteCost decimal.Decimal

	// Non-defective records only; used for averaging.
	PricedQuantity  decimal.Decimal
	PricedQuoteCost decimal.Decimal
	Prices          []decimal.Decimal // chronological

	Defective int
}

// Count is the number of entries in the price list.
func (s SideTotals) Count() int {
	return len(s.Prices)
}

func (s *SideTotals) add(e Event) {
	s.Quantity = s.Quantity.Add(e.Quantity)
	s.QuoteCost = s.QuoteCost.Add(e.QuoteCost)
	if e.Defective {
		s.Defective++
		return
	}
	s.PricedQuantity = s.PricedQuantity.Add(e.Quantity)
	s.PricedQuoteCost = s.PricedQuoteCost.Add(e.QuoteCost)
	s.Prices = append(s.Prices, e.Price)
}

// Totals is the folded ledger for one report run. It is built by Accumulate
// and not modified afterwards.
type Totals struct {
	Buys  SideTotals
	Sells SideTotals

	// LastBuyPrice is the price of the last buy in input order, defective or not.
	LastBuyPrice decimal.Decimal
	HasBuy       bool

	// ExecutedQuantity sums executed quantity over every record, filled or not.
	ExecutedQuantity decimal.Decimal
	Records          int
	Ignored          int
}

func (t Totals) CountBuys() int  { return t.Buys.Count() }
func (t Totals) CountSells() int { return t.Sells.Count() }

// Accumulate folds events in order into a fresh Totals value.
func Accumulate(events []Event) Totals {
	var t Totals
	for _, e := range events {
		t.Records++
		t.ExecutedQuantity = t.ExecutedQuantity.Add(e.Quantity)

		switch e.Kind {
		case EventBuy:
			t.Buys.add(e)
			t.LastBuyPrice = e.Price
			t.HasBuy = true
		case EventSell:
			t.Sells.add(e)
		default:
			t.Ignored++
		}
	}
	return t
}

// Build classifies and folds records in one pass.
func Build(records []models.TradeRecord, opts ClassifyOptions) Totals {
	return Accumulate(ClassifyAll(records, opts))
}
