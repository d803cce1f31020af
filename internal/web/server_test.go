package web

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"binance_pnl/config"
	"binance_pnl/internal/engine"
	"binance_pnl/internal/exchange"
	"binance_pnl/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	snap := models.Snapshot{
		Pair: "ADAUSDT",
		Records: []models.TradeRecord{
			{Side: models.SideBuy, Status: models.StatusFilled, QuantityExecuted: d("10"), Price: d("1"), CumulativeQuoteCost: d("10")},
			{Side: models.SideSell, Status: models.StatusFilled, QuantityExecuted: d("5"), Price: d("1.2"), CumulativeQuoteCost: d("6")},
		},
		Quote:    models.MarketQuote{Symbol: "ADAUSDT", Price: d("1.1")},
		Position: models.PositionSnapshot{Asset: "ADA", Free: d("5")},
	}
	eng := engine.NewReportEngine(exchange.NewFileClient(snap), config.Default())
	srv := httptest.NewServer(NewServer(eng, "0", "ADAUSDT").Handler())
	t.Cleanup(srv.Close)
	return srv
}

func TestReportJSON(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/report?pair=adausdt&limit=10")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var got map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.Equal(t, "ADAUSDT", got["coin"])
	assert.Equal(t, "-4", got["realized_pl"])
	assert.Equal(t, "1", got["avg_buy_price"])
	assert.Equal(t, "0.5", got["unrealized_pl"])
}

func TestReportText(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/report?pair=ADAUSDT&format=text")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "COIN: ADAUSDT")
}

func TestReportBadRequests(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		query  string
		status int
	}{
		{"", http.StatusBadRequest},
		{"pair=ADAUSDT&limit=abc", http.StatusBadRequest},
		{"pair=ADAUSDT&limit=-1", http.StatusBadRequest},
		{"pair=ADAUSDT&format=xml", http.StatusBadRequest},
		{"pair=BTCUSDT", http.StatusNotFound},
	}
	for _, tt := range tests {
		resp, err := http.Get(srv.URL + "/api/report?" + tt.query)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, tt.status, resp.StatusCode, tt.query)
	}
}

func TestHistoryAndHealth(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/report?pair=ADAUSDT")
	require.NoError(t, err)
	resp.Body.Close()

	resp, err = http.Get(srv.URL + "/api/history")
	require.NoError(t, err)
	var history []map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&history))
	resp.Body.Close()
	require.Len(t, history, 1)
	assert.NotEmpty(t, history[0]["run_id"])

	resp, err = http.Get(srv.URL + "/api/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var health []map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&health))
	require.Len(t, health, 1)
	assert.Equal(t, "ok", health[0]["status"])
}

func TestIndex(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/missing")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
