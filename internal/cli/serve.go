package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"binance_pnl/internal/web"

	"github.com/spf13/cobra"
)

func newServeCmd(a *app) *cobra.Command {
	var healthPair, from string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve reports over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, err := a.engine(from)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			server := web.NewServer(eng, a.cfg.Port, healthPair)
			server.Start()
			slog.Info("✅ Server ready", "port", a.cfg.Port)

			<-ctx.Done()
			slog.Info("🛑 Shutting down...")

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := server.Shutdown(shutdownCtx); err != nil {
				return fmt.Errorf("shutdown: %w", err)
			}
			slog.Info("👋 Goodbye!")
			return nil
		},
	}

	cmd.Flags().StringVar(&healthPair, "health-pair", "BTCUSDT", "Pair quoted by /api/health")
	cmd.Flags().StringVar(&from, "from", "", "Serve a snapshot written by report --dump")

	return cmd
}
