package render

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"binance_pnl/internal/analysis"

	"github.com/shopspring/decimal"
)

type Format string

const (
	FormatText     Format = "text"
	FormatMarkdown Format = "markdown"
	FormatJSON     Format = "json"
)

func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatText, FormatMarkdown, FormatJSON:
		return f, nil
	case "", "txt":
		return FormatText, nil
	case "md":
		return FormatMarkdown, nil
	default:
		return "", fmt.Errorf("unknown format %q (want text, markdown or json)", s)
	}
}

// Undefined is printed for fields without contributing records.
const Undefined = "none"

// Options tune presentation only.
type Options struct {
	Color bool
}

// Write renders r to w in the given format.
func Write(w io.Writer, r analysis.Report, f Format, opts Options) error {
	switch f {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	case FormatMarkdown:
		md, err := Markdown(r)
		if err != nil {
			return err
		}
		_, err = io.WriteString(w, md)
		return err
	default:
		_, err := io.WriteString(w, Text(r, opts))
		return err
	}
}

func round(v decimal.Decimal, places int32) string {
	return v.Round(places).String()
}

func nullString(v decimal.NullDecimal, places int32) string {
	if !v.Valid {
		return Undefined
	}
	return round(v.Decimal, places)
}
