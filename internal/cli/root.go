package cli

import (
	"context"
	"fmt"
	"time"

	"binance_pnl/config"
	"binance_pnl/internal/engine"
	"binance_pnl/internal/exchange"
	"binance_pnl/internal/logger"

	"github.com/spf13/cobra"
)

// app carries state shared by subcommands once the root has loaded config.
type app struct {
	configPath string
	cfg        *config.Config
}

func NewRootCmd() *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:           "pnl",
		Short:         "Position and profit/loss reports for a Binance spot pair",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(a.configPath)
			if err != nil {
				return err
			}
			if err := logger.InitWriter(cfg.Log, cmd.ErrOrStderr()); err != nil {
				return err
			}
			a.cfg = cfg
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return logger.Shutdown(ctx)
		},
	}

	cmd.PersistentFlags().StringVar(&a.configPath, "config", "", "Path to YAML config file")

	cmd.AddCommand(
		newReportCmd(a),
		newServeCmd(a),
		newBotCmd(a),
	)

	return cmd
}

// client builds the live Binance client, or a replay client when from is set,
// wrapped with the configured retry policy.
func (a *app) client(from string) (exchange.AccountClient, error) {
	var base exchange.AccountClient
	if from != "" {
		fc, err := exchange.OpenFileClient(from)
		if err != nil {
			return nil, err
		}
		base = fc
	} else {
		if a.cfg.BinanceAPIKey == "" || a.cfg.BinanceSecretKey == "" {
			return nil, fmt.Errorf("BINANCE_API_KEY and BINANCE_SECRET_KEY are required")
		}
		base = exchange.NewSpotClient(a.cfg.BinanceAPIKey, a.cfg.BinanceSecretKey, a.cfg.Testnet)
	}

	return exchange.NewRetryClient(base, exchange.RetryPolicy{
		MaxRetries: a.cfg.Fetch.MaxRetries,
		Timeout:    a.cfg.Fetch.Timeout,
		MinBackoff: a.cfg.Fetch.MinBackoff,
		MaxBackoff: a.cfg.Fetch.MaxBackoff,
	}), nil
}

func (a *app) engine(from string) (*engine.ReportEngine, error) {
	client, err := a.client(from)
	if err != nil {
		return nil, err
	}
	return engine.NewReportEngine(client, a.cfg), nil
}
