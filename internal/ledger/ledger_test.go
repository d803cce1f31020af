package ledger

import (
	"testing"

	"binance_pnl/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func record(side models.Side, status models.OrderStatus, qty, price, cost string) models.TradeRecord {
	return models.TradeRecord{
		Symbol:              "ADAUSDT",
		Side:                side,
		Status:              status,
		Type:                "LIMIT",
		QuantityExecuted:    d(qty),
		Price:               d(price),
		CumulativeQuoteCost: d(cost),
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name      string
		rec       models.TradeRecord
		kind      EventKind
		defective bool
	}{
		{"filled buy", record(models.SideBuy, models.StatusFilled, "2", "10", "20"), EventBuy, false},
		{"filled sell", record(models.SideSell, models.StatusFilled, "2", "12", "24"), EventSell, false},
		{"canceled buy", record(models.SideBuy, models.StatusCanceled, "0", "10", "0"), EventIgnored, false},
		{"partial sell", record(models.SideSell, models.StatusPartiallyFilled, "1", "10", "10"), EventIgnored, false},
		{"zero price", record(models.SideBuy, models.StatusFilled, "1", "0", "0"), EventBuy, true},
		{"zero cost", record(models.SideSell, models.StatusFilled, "1", "5", "0"), EventSell, true},
		{"negative price", record(models.SideSell, models.StatusFilled, "1", "-5", "5"), EventSell, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := Classify(tt.rec, ClassifyOptions{})
			assert.Equal(t, tt.kind, e.Kind)
			if tt.kind != EventIgnored {
				assert.Equal(t, tt.defective, e.Defective)
				assert.True(t, tt.rec.QuantityExecuted.Equal(e.Quantity))
			}
		})
	}
}

func TestClassifyDerivesMarketPrice(t *testing.T) {
	rec := record(models.SideBuy, models.StatusFilled, "4", "0", "10")
	rec.Type = "MARKET"

	plain := Classify(rec, ClassifyOptions{})
	assert.True(t, plain.Defective)

	derived := Classify(rec, ClassifyOptions{DeriveMarketPrice: true})
	assert.False(t, derived.Defective)
	assert.Equal(t, "2.5", derived.Price.String())

	// limit orders are never rewritten
	rec.Type = "LIMIT"
	assert.True(t, Classify(rec, ClassifyOptions{DeriveMarketPrice: true}).Defective)
}

func TestAccumulate(t *testing.T) {
	records := []models.TradeRecord{
		record(models.SideBuy, models.StatusFilled, "1", "100", "100"),
		record(models.SideBuy, models.StatusCanceled, "0.5", "90", "45"),
		record(models.SideBuy, models.StatusFilled, "1", "0", "0"),
		record(models.SideSell, models.StatusFilled, "1", "150", "150"),
	}

	totals := Build(records, ClassifyOptions{})

	assert.Equal(t, "2", totals.Buys.Quantity.String())
	assert.Equal(t, "100", totals.Buys.QuoteCost.String())
	assert.Equal(t, "1", totals.Buys.PricedQuantity.String())
	require.Len(t, totals.Buys.Prices, 1)
	assert.Equal(t, "100", totals.Buys.Prices[0].String())
	assert.Equal(t, 1, totals.CountBuys())
	assert.Equal(t, 1, totals.Buys.Defective)

	assert.Equal(t, "1", totals.Sells.Quantity.String())
	assert.Equal(t, 1, totals.CountSells())

	// last buy in sequence was the defective one
	assert.True(t, totals.HasBuy)
	assert.True(t, totals.LastBuyPrice.IsZero())

	assert.Equal(t, 4, totals.Records)
	assert.Equal(t, 1, totals.Ignored)
	assert.Equal(t, "3.5", totals.ExecutedQuantity.String())
}

func TestAccumulateLastBuyFollowsOrder(t *testing.T) {
	first := record(models.SideBuy, models.StatusFilled, "1", "10", "10")
	second := record(models.SideBuy, models.StatusFilled, "1", "20", "20")

	a := Build([]models.TradeRecord{first, second}, ClassifyOptions{})
	b := Build([]models.TradeRecord{second, first}, ClassifyOptions{})

	assert.Equal(t, "20", a.LastBuyPrice.String())
	assert.Equal(t, "10", b.LastBuyPrice.String())
	// same-side sums do not depend on order
	assert.True(t, a.Buys.Quantity.Equal(b.Buys.Quantity))
	assert.True(t, a.Buys.QuoteCost.Equal(b.Buys.QuoteCost))
}

func TestAccumulateEmpty(t *testing.T) {
	totals := Accumulate(nil)

	assert.True(t, totals.Buys.Quantity.IsZero())
	assert.True(t, totals.Sells.Quantity.IsZero())
	assert.False(t, totals.HasBuy)
	assert.Zero(t, totals.CountBuys())
	assert.Zero(t, totals.CountSells())
}
