package ledger

import (
	"binance_pnl/internal/models"

	"github.com/shopspring/decimal"
)

type EventKind int

const (
	EventIgnored EventKind = iota
	EventBuy
	EventSell
)

func (k EventKind) String() string {
	switch k {
	case EventBuy:
		return "BUY"
	case EventSell:
		return "SELL"
	default:
		return "IGNORED"
	}
}

// Event is a classified trade record. Ignored events only carry the raw
// executed quantity, used for reconciliation.
type Event struct {
	Kind      EventKind
	Quantity  decimal.Decimal
	QuoteCost decimal.Decimal
	Price     decimal.Decimal
	// Defective events count toward quantity/cost totals but never toward price averages.
	Defective bool
}

// ClassifyOptions tweak how raw exchange records are read
type ClassifyOptions struct {
	// DeriveMarketPrice fills in cost/qty as the price of filled MARKET orders,
	// which Binance reports with price 0.
	DeriveMarketPrice bool
}

// Classify turns one record into an event. Only filled orders contribute.
func Classify(r models.TradeRecord, opts ClassifyOptions) Event {
	if !r.IsFilled() {
		return Event{Kind: EventIgnored, Quantity: r.QuantityExecuted}
	}

	var kind EventKind
	switch r.Side {
	case models.SideBuy:
		kind = EventBuy
	case models.SideSell:
		kind = EventSell
	default:
		return Event{Kind: EventIgnored, Quantity: r.QuantityExecuted}
	}

	price := r.Price
	if opts.DeriveMarketPrice && r.Type == "MARKET" && !price.IsPositive() &&
		r.QuantityExecuted.IsPositive() && r.CumulativeQuoteCost.IsPositive() {
		price = r.CumulativeQuoteCost.Div(r.QuantityExecuted)
	}

	return Event{
		Kind:      kind,
		Quantity:  r.QuantityExecuted,
		QuoteCost: r.CumulativeQuoteCost,
		Price:     price,
		Defective: !price.IsPositive() || !r.CumulativeQuoteCost.IsPositive(),
	}
}

// ClassifyAll keeps input order.
func ClassifyAll(records []models.TradeRecord, opts ClassifyOptions) []Event {
	events := make([]Event, len(records))
	for i, r := range records {
		events[i] = Classify(r, opts)
	}
	return events
}
