package telegram

import (
	"testing"
	"time"

	"binance_pnl/internal/analysis"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseArgs(t *testing.T) {
	tests := []struct {
		args    []string
		pair    string
		limit   int
		wantErr bool
	}{
		{[]string{"adausdt"}, "ADAUSDT", 0, false},
		{[]string{"ADAUSDT", "200"}, "ADAUSDT", 200, false},
		{[]string{"200", "adausdt"}, "ADAUSDT", 200, false},
		{[]string{"200"}, "", 0, true},
		{[]string{"ADAUSDT", "many"}, "", 0, true},
		{[]string{"ADAUSDT", "0"}, "", 0, true},
		{nil, "", 0, true},
		{[]string{"a", "b", "c"}, "", 0, true},
	}

	for _, tt := range tests {
		pair, limit, err := parseArgs(tt.args)
		if tt.wantErr {
			assert.Error(t, err, "%v", tt.args)
			continue
		}
		require.NoError(t, err, "%v", tt.args)
		assert.Equal(t, tt.pair, pair)
		assert.Equal(t, tt.limit, limit)
	}
}

func TestHistoryMessage(t *testing.T) {
	assert.Equal(t, "📜 No reports yet", historyMessage(nil))

	at := time.Date(2026, 3, 1, 12, 30, 0, 0, time.UTC)
	msg := historyMessage([]analysis.Report{
		{Coin: "ADAUSDT", GeneratedAt: at, RealizedPL: decimal.RequireFromString("-1.234"), TransactionCount: 3},
		{Coin: "BTCUSDT", GeneratedAt: at, RealizedPL: decimal.RequireFromString("5"), TransactionCount: 7},
	})

	assert.Contains(t, msg, "Recent reports (2)")
	assert.Contains(t, msg, "🔴 *ADAUSDT* 12:30:00 | P/L -1.23 | 3 records")
	assert.Contains(t, msg, "🟢 *BTCUSDT*")
	// newest first
	assert.Less(t, indexOf(msg, "BTCUSDT"), indexOf(msg, "ADAUSDT"))
}

func TestSettingsMessage(t *testing.T) {
	opts := analysis.Options{RealizedMode: analysis.RealizedBoth, SpreadSign: analysis.SpreadSellMinusBuy}
	opts.Classify.DeriveMarketPrice = true

	msg := settingsMessage(opts, 500)
	assert.Contains(t, msg, "Realized P/L: both")
	assert.Contains(t, msg, "Spread sign: sell-minus-buy")
	assert.Contains(t, msg, "Market order prices: on")
	assert.Contains(t, msg, "Default limit: 500")
}

func TestFormatUptime(t *testing.T) {
	assert.Equal(t, "5min", formatUptime(5*time.Minute))
	assert.Equal(t, "2h 15min", formatUptime(2*time.Hour+15*time.Minute))
}

func indexOf(s, sub string) int {
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			return i
		}
	}
	return -1
}
