package cli

import (
	"fmt"
	"strconv"
	"strings"

	"binance_pnl/internal/exchange"
	"binance_pnl/internal/render"

	"github.com/spf13/cobra"
)

type reportFlags struct {
	limit   int
	format  string
	noColor bool
	dump    bool
	from    string
}

func newReportCmd(a *app) *cobra.Command {
	f := &reportFlags{}

	cmd := &cobra.Command{
		Use:   "report PAIR [LIMIT]",
		Short: "Report position and P&L over the most recent orders of PAIR",
		Example: `  pnl report ADAUSDT --limit 200
  pnl report 200 ADAUSDT
  pnl report ADAUSDT --dump > ada.json
  pnl report ADAUSDT --from ada.json --format markdown`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReport(cmd, a, f, args)
		},
	}

	cmd.Flags().IntVarP(&f.limit, "limit", "n", 0, "Number of most recent orders (default from config)")
	cmd.Flags().StringVarP(&f.format, "format", "f", "text", "Output format: text, markdown or json")
	cmd.Flags().BoolVar(&f.noColor, "no-color", false, "Disable ANSI colors in text output")
	cmd.Flags().BoolVar(&f.dump, "dump", false, "Write the fetched snapshot as JSON instead of a report")
	cmd.Flags().StringVar(&f.from, "from", "", "Replay a snapshot written by --dump instead of calling Binance")

	return cmd
}

func runReport(cmd *cobra.Command, a *app, f *reportFlags, args []string) error {
	pair, limit, err := parseReportArgs(args)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("limit") {
		if f.limit <= 0 {
			return fmt.Errorf("--limit must be positive")
		}
		limit = f.limit
	}

	format, err := render.ParseFormat(f.format)
	if err != nil {
		return err
	}

	eng, err := a.engine(f.from)
	if err != nil {
		return err
	}

	snap, err := eng.FetchSnapshot(cmd.Context(), pair, limit)
	if err != nil {
		return fmt.Errorf("fetch %s: %w", pair, err)
	}

	out := cmd.OutOrStdout()
	if f.dump {
		return exchange.WriteSnapshot(out, snap)
	}

	report := eng.Compute(snap)
	return render.Write(out, report, format, render.Options{Color: !f.noColor})
}

// parseReportArgs accepts "PAIR", "PAIR LIMIT" and the older "LIMIT PAIR".
// A zero limit means the configured default.
func parseReportArgs(args []string) (pair string, limit int, err error) {
	switch len(args) {
	case 1:
		if _, err := strconv.Atoi(args[0]); err == nil {
			return "", 0, fmt.Errorf("trading pair is required")
		}
		pair = args[0]
	case 2:
		if n, err := strconv.Atoi(args[0]); err == nil {
			pair, limit = args[1], n
		} else if n, err := strconv.Atoi(args[1]); err == nil {
			pair, limit = args[0], n
		} else {
			return "", 0, fmt.Errorf("invalid limit: expected a number in %q", strings.Join(args, " "))
		}
		if limit <= 0 {
			return "", 0, fmt.Errorf("limit must be positive")
		}
	default:
		return "", 0, fmt.Errorf("usage: pnl report PAIR [LIMIT]")
	}
	return strings.ToUpper(pair), limit, nil
}
