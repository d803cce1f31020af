package cli

import (
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"binance_pnl/internal/telegram"

	"github.com/spf13/cobra"
)

func newBotCmd(a *app) *cobra.Command {
	var from string

	cmd := &cobra.Command{
		Use:   "bot",
		Short: "Answer /pnl requests from the authorized Telegram user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.cfg.TelegramToken == "" || a.cfg.AuthorizedUserID == 0 {
				return fmt.Errorf("TELEGRAM_BOT_TOKEN and AUTHORIZED_USER_ID are required")
			}

			eng, err := a.engine(from)
			if err != nil {
				return err
			}

			bot, err := telegram.NewBot(a.cfg.TelegramToken, a.cfg.AuthorizedUserID, eng)
			if err != nil {
				return fmt.Errorf("create telegram bot: %w", err)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			go bot.Start()
			slog.Info("📱 Telegram bot is ready")

			<-ctx.Done()
			slog.Info("🛑 Shutting down...")
			bot.Stop()
			return nil
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "Answer from a snapshot written by report --dump")

	return cmd
}
