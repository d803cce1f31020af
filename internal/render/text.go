package render

import (
	"fmt"
	"strings"

	"binance_pnl/internal/analysis"

	"github.com/shopspring/decimal"
)

// ANSI escapes for terminal output.
const (
	colorBlue  = "\033[94m"
	colorGreen = "\033[92m"
	colorRed   = "\033[91m"
	colorReset = "\033[0m"
)

const rule = "-----------------------------------"

type textWriter struct {
	b     strings.Builder
	color bool
}

func (t *textWriter) line(format string, args ...any) {
	fmt.Fprintf(&t.b, format, args...)
	t.b.WriteByte('\n')
}

func (t *textWriter) paint(color, s string) string {
	if !t.color {
		return s
	}
	return color + s + colorReset
}

// signed colors negative values red and the rest green.
func (t *textWriter) signed(v decimal.Decimal, s string) string {
	if v.IsNegative() {
		return t.paint(colorRed, s)
	}
	return t.paint(colorGreen, s)
}

func (t *textWriter) signedNull(v decimal.NullDecimal, places int32) string {
	if !v.Valid {
		return Undefined
	}
	return t.signed(v.Decimal, round(v.Decimal, places))
}

// Text renders the report the way the terminal tool always printed it.
func Text(r analysis.Report, opts Options) string {
	t := &textWriter{color: opts.Color}

	t.line("Last %d Transactions", r.TransactionCount)
	t.line("COIN: %s", r.Coin)
	t.line("Current: %s", r.CurrentPrice.String())
	t.line("  ")
	t.line(rule)

	if r.ShowCostBasis() {
		t.line("P/L: %s", t.signed(r.RealizedPL, r.RealizedPL.String()))
	}
	if r.ShowSpread() {
		t.line("P/L %%: %s (trimmed %d unmatched buys)",
			t.signed(r.RealizedPLPercent, round(r.RealizedPLPercent, 2)), r.TrimmedBuys)
	}
	t.line("Price Delta: %s", t.signedNull(r.PriceDelta, 4))
	t.line("Unrealized P/L: %s", t.signedNull(r.UnrealizedPL, 4))
	t.line("Open Position: %s", round(r.OpenPosition, 2))
	if r.LockedPosition.IsPositive() {
		t.line("Locked in orders: %s", round(r.LockedPosition, 2))
	}
	t.line("LPP: %s", nullString(r.LastBuyPrice, 8))
	t.line(rule)
	t.line(" ")

	t.line("Coins Bought: %s", round(r.TotalCoinsBought, 4))
	t.line("Cost total: %s", r.TotalBuyCost.String())
	if r.Reconciliation.DefectiveBuys > 0 {
		t.line("Cost in P/L: %s (%d unpriced buys excluded)", r.PricedBuyCost.String(), r.Reconciliation.DefectiveBuys)
	}
	t.line("Avg Buy Price: %s", t.paint(colorBlue, nullString(r.AvgBuyPrice, 4)))
	t.line("  ")
	t.line("Coins Sold: %s", round(r.TotalCoinsSold, 4))
	t.line("Price Total: %s", r.TotalSellCost.String())
	if r.Reconciliation.DefectiveSells > 0 {
		t.line("Price in P/L: %s (%d unpriced sells excluded)", r.PricedSellCost.String(), r.Reconciliation.DefectiveSells)
	}
	t.line("Avg Sell Price: %s", nullString(r.AvgSellPrice, 4))

	rec := r.Reconciliation
	if rec.DefectiveBuys+rec.DefectiveSells > 0 || rec.Ignored > 0 {
		t.line("  ")
		t.line("Ignored: %d  Defective buys: %d  Defective sells: %d",
			rec.Ignored, rec.DefectiveBuys, rec.DefectiveSells)
	}
	return t.b.String()
}
