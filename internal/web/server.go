package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"binance_pnl/internal/engine"
	"binance_pnl/internal/exchange"
	"binance_pnl/internal/render"
)

type Server struct {
	engine     *engine.ReportEngine
	port       string
	healthPair string
	srv        *http.Server
}

func NewServer(engine *engine.ReportEngine, port, healthPair string) *Server {
	if healthPair == "" {
		healthPair = "BTCUSDT"
	}
	return &Server{
		engine:     engine,
		port:       port,
		healthPair: healthPair,
	}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/api/report", s.handleReport)
	mux.HandleFunc("/api/history", s.handleHistory)
	mux.HandleFunc("/api/health", s.handleHealth)
	return mux
}

// Start serves in the background until Shutdown.
func (s *Server) Start() {
	s.srv = &http.Server{
		Addr:              ":" + s.port,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	slog.Info("🌐 Web server starting", "url", "http://localhost:"+s.port)
	go func() {
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Web server error", "error", err)
		}
	}()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	return s.srv.Shutdown(ctx)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprint(w, indexHTML)
}

// GET /api/report?pair=ADAUSDT&limit=500&format=json
func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	q := r.URL.Query()
	pair := q.Get("pair")
	if pair == "" {
		http.Error(w, "pair is required", http.StatusBadRequest)
		return
	}

	limit := 0
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			http.Error(w, "limit must be a positive integer", http.StatusBadRequest)
			return
		}
		limit = n
	}

	format := render.FormatJSON
	if v := q.Get("format"); v != "" {
		f, err := render.ParseFormat(v)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		format = f
	}

	report, err := s.engine.Report(r.Context(), pair, limit)
	if err != nil {
		status := http.StatusBadGateway
		if errors.Is(err, exchange.ErrUnknownSymbol) {
			status = http.StatusNotFound
		}
		http.Error(w, err.Error(), status)
		return
	}

	switch format {
	case render.FormatJSON:
		w.Header().Set("Content-Type", "application/json")
	case render.FormatMarkdown:
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	default:
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	}
	if err := render.Write(w, report, format, render.Options{}); err != nil {
		slog.Error("❌ Failed to write report", "run_id", report.RunID, "error", err)
	}
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(s.engine.History())
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	type serviceStatus struct {
		Name    string `json:"name"`
		Status  string `json:"status"`
		Message string `json:"message"`
		Latency int64  `json:"latency_ms"`
	}

	start := time.Now()
	quote, err := s.engine.Quote(ctx, s.healthPair)
	status := serviceStatus{
		Name:    "Binance Market Data",
		Latency: time.Since(start).Milliseconds(),
	}
	code := http.StatusOK
	if err != nil {
		status.Status = "error"
		status.Message = err.Error()
		code = http.StatusServiceUnavailable
	} else {
		status.Status = "ok"
		status.Message = fmt.Sprintf("%s at %s", s.healthPair, quote.Price)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode([]serviceStatus{status})
}

const indexHTML = `<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>P&amp;L report</title></head>
<body>
<h1>P&amp;L report</h1>
<form action="/api/report" method="get">
  <input name="pair" placeholder="ADAUSDT" required>
  <input name="limit" type="number" min="1" max="1000" value="500">
  <select name="format">
    <option value="text">text</option>
    <option value="json">json</option>
    <option value="markdown">markdown</option>
  </select>
  <button type="submit">Report</button>
</form>
</body>
</html>
`
