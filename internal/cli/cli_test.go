package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"binance_pnl/internal/exchange"
	"binance_pnl/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func writeSnapshot(t *testing.T) string {
	t.Helper()
	snap := models.Snapshot{
		Pair: "ADAUSDT",
		Records: []models.TradeRecord{
			{Symbol: "ADAUSDT", OrderID: 1, Side: models.SideBuy, Status: models.StatusFilled, Type: "LIMIT",
				QuantityExecuted: d("10"), Price: d("1"), CumulativeQuoteCost: d("10")},
			{Symbol: "ADAUSDT", OrderID: 2, Side: models.SideSell, Status: models.StatusFilled, Type: "LIMIT",
				QuantityExecuted: d("5"), Price: d("1.2"), CumulativeQuoteCost: d("6")},
			{Symbol: "ADAUSDT", OrderID: 3, Side: models.SideBuy, Status: models.StatusCanceled, Type: "LIMIT",
				Price: d("0.9")},
		},
		Quote:    models.MarketQuote{Symbol: "ADAUSDT", Price: d("1.1")},
		Position: models.PositionSnapshot{Asset: "ADA", Free: d("5")},
	}

	path := filepath.Join(t.TempDir(), "ada.json")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, exchange.WriteSnapshot(f, snap))
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("LOG_LEVEL", "ERROR")

	var out, errOut bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestParseReportArgs(t *testing.T) {
	tests := []struct {
		args    []string
		pair    string
		limit   int
		wantErr bool
	}{
		{[]string{"adausdt"}, "ADAUSDT", 0, false},
		{[]string{"ADAUSDT", "200"}, "ADAUSDT", 200, false},
		{[]string{"200", "ADAUSDT"}, "ADAUSDT", 200, false},
		{[]string{"200"}, "", 0, true},
		{[]string{"ADAUSDT", "BTCUSDT"}, "", 0, true},
		{[]string{"-5", "ADAUSDT"}, "", 0, true},
		{[]string{}, "", 0, true},
	}

	for _, tt := range tests {
		pair, limit, err := parseReportArgs(tt.args)
		if tt.wantErr {
			assert.Error(t, err, "%v", tt.args)
			continue
		}
		require.NoError(t, err, "%v", tt.args)
		assert.Equal(t, tt.pair, pair)
		assert.Equal(t, tt.limit, limit)
	}
}

func TestReportFromSnapshot(t *testing.T) {
	path := writeSnapshot(t)

	out, err := run(t, "report", "ADAUSDT", "--from", path, "--no-color")
	require.NoError(t, err)

	assert.Contains(t, out, "Last 3 Transactions")
	assert.Contains(t, out, "COIN: ADAUSDT")
	assert.Contains(t, out, "\nP/L: -4\n")
	assert.Contains(t, out, "Avg Buy Price: 1\n")
	assert.NotContains(t, out, "\x1b[")
}

func TestReportLegacyArgOrderAndLimit(t *testing.T) {
	path := writeSnapshot(t)

	out, err := run(t, "report", "2", "adausdt", "--from", path, "--format", "json")
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	// newest two: the sell and the canceled buy
	assert.EqualValues(t, 2, got["transaction_count"])
	assert.Equal(t, "6", got["realized_pl"])
}

func TestReportDumpRoundTrip(t *testing.T) {
	path := writeSnapshot(t)

	out, err := run(t, "report", "ADAUSDT", "--from", path, "--dump")
	require.NoError(t, err)

	snap, err := exchange.ReadSnapshot(bytes.NewReader([]byte(out)))
	require.NoError(t, err)
	assert.Equal(t, "ADAUSDT", snap.Pair)
	assert.Len(t, snap.Records, 3)
	assert.Equal(t, "ADA", snap.Position.Asset)
}

func TestReportErrors(t *testing.T) {
	path := writeSnapshot(t)

	_, err := run(t, "report", "ADAUSDT", "--from", path, "--format", "xml")
	assert.Error(t, err)

	_, err = run(t, "report", "ADAUSDT", "--from", path, "--limit", "0")
	assert.Error(t, err)

	_, err = run(t, "report", "BTCUSDT", "--from", path)
	assert.ErrorIs(t, err, exchange.ErrUnknownSymbol)

	t.Setenv("BINANCE_API_KEY", "")
	t.Setenv("BINANCE_SECRET_KEY", "")
	t.Setenv("BINKEY", "")
	t.Setenv("BINSEC", "")
	_, err = run(t, "report", "ADAUSDT")
	assert.ErrorContains(t, err, "BINANCE_API_KEY")
}

func TestInvalidConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pnl.yaml")
	require.NoError(t, os.WriteFile(path, []byte("report:\n  realized_mode: fifo\n"), 0o600))

	_, err := run(t, "--config", path, "report", "ADAUSDT", "--from", writeSnapshot(t))
	assert.ErrorContains(t, err, "realized_mode")
}

func TestBotRequiresToken(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "")
	_, err := run(t, "bot")
	assert.ErrorContains(t, err, "TELEGRAM_BOT_TOKEN")
}
