package exchange

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"binance_pnl/internal/models"
)

// FileClient replays a snapshot written by WriteSnapshot, so a report can be
// recomputed offline from a previous dump.
type FileClient struct {
	snap models.Snapshot
}

func NewFileClient(snap models.Snapshot) *FileClient {
	return &FileClient{snap: snap}
}

// OpenFileClient loads a dumped snapshot from path.
func OpenFileClient(path string) (*FileClient, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open snapshot: %w", err)
	}
	defer f.Close()

	snap, err := ReadSnapshot(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return NewFileClient(snap), nil
}

func (c *FileClient) checkPair(pair string) error {
	if !strings.EqualFold(pair, c.snap.Pair) {
		return fmt.Errorf("%w: snapshot holds %s, not %s", ErrUnknownSymbol, c.snap.Pair, pair)
	}
	return nil
}

// FetchTradeRecords returns the newest limit records, oldest first.
func (c *FileClient) FetchTradeRecords(ctx context.Context, pair string, limit int) ([]models.TradeRecord, error) {
	if err := c.checkPair(pair); err != nil {
		return nil, err
	}
	records := c.snap.Records
	if limit > 0 && len(records) > limit {
		records = records[len(records)-limit:]
	}
	out := make([]models.TradeRecord, len(records))
	copy(out, records)
	return out, nil
}

func (c *FileClient) FetchMarketQuote(ctx context.Context, pair string) (models.MarketQuote, error) {
	if err := c.checkPair(pair); err != nil {
		return models.MarketQuote{}, err
	}
	if c.snap.Quote.Price.IsZero() {
		return models.MarketQuote{}, fmt.Errorf("%w for %s", ErrNoPrice, pair)
	}
	return c.snap.Quote, nil
}

func (c *FileClient) FetchPositionSnapshot(ctx context.Context, asset string) (models.PositionSnapshot, error) {
	if !strings.EqualFold(asset, c.snap.Position.Asset) {
		return models.PositionSnapshot{Asset: asset}, nil
	}
	return c.snap.Position, nil
}

func (c *FileClient) BaseAsset(ctx context.Context, pair string) (string, error) {
	if err := c.checkPair(pair); err != nil {
		return "", err
	}
	if c.snap.Position.Asset != "" {
		return c.snap.Position.Asset, nil
	}
	if base, ok := BaseAssetFromPair(pair); ok {
		return base, nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnknownSymbol, pair)
}

func WriteSnapshot(w io.Writer, snap models.Snapshot) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(snap)
}

func ReadSnapshot(r io.Reader) (models.Snapshot, error) {
	var snap models.Snapshot
	if err := json.NewDecoder(r).Decode(&snap); err != nil {
		return snap, fmt.Errorf("decode snapshot: %w", err)
	}
	if snap.Pair == "" {
		return snap, fmt.Errorf("decode snapshot: missing pair")
	}
	return snap, nil
}
