package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"binance_pnl/internal/analysis"
	"binance_pnl/internal/engine"
	"binance_pnl/internal/render"

	tele "gopkg.in/telebot.v3"
)

const reportTimeout = 60 * time.Second

type Bot struct {
	bot          *tele.Bot
	engine       *engine.ReportEngine
	authorizedID int64
	startTime    time.Time
}

func NewBot(token string, authorizedID int64, engine *engine.ReportEngine) (*Bot, error) {
	pref := tele.Settings{
		Token:  token,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
	}

	b, err := tele.NewBot(pref)
	if err != nil {
		return nil, err
	}

	bot := &Bot{
		bot:          b,
		engine:       engine,
		authorizedID: authorizedID,
		startTime:    time.Now(),
	}

	bot.setupHandlers()
	return bot, nil
}

// Start blocks until Stop is called.
func (b *Bot) Start() {
	slog.Info("📱 Telegram bot started")
	b.bot.Start()
}

func (b *Bot) Stop() {
	b.bot.Stop()
}

func (b *Bot) setupHandlers() {
	// Middleware for authorization
	b.bot.Use(func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			if c.Sender() == nil || c.Sender().ID != b.authorizedID {
				return c.Send("⛔ Unauthorized")
			}
			return next(c)
		}
	})

	b.bot.Handle("/start", b.handleStart)
	b.bot.Handle("/help", b.handleStart)
	b.bot.Handle("/pnl", b.handlePnL)
	b.bot.Handle("/history", b.handleHistory)
	b.bot.Handle("/settings", b.handleSettings)

	b.bot.Handle(&btnHistory, b.handleHistory)
	b.bot.Handle(&btnSettings, b.handleSettings)
	b.bot.Handle(&btnBack, b.handleStart)
}

var (
	btnHistory  = tele.Btn{Text: "📜 History", Unique: "history"}
	btnSettings = tele.Btn{Text: "⚙️ Settings", Unique: "settings"}
	btnBack     = tele.Btn{Text: "🔙 Back", Unique: "back"}
)

func (b *Bot) handleStart(c tele.Context) error {
	menu := &tele.ReplyMarkup{}
	menu.Inline(menu.Row(btnHistory, btnSettings))

	msg := fmt.Sprintf(`🤖 *Binance P&L reporter*

/pnl PAIR [LIMIT] - position and P&L report
/history - recent reports

🕐 Uptime: %s`, formatUptime(time.Since(b.startTime)))

	return c.Send(msg, menu, tele.ModeMarkdown)
}

func (b *Bot) handlePnL(c tele.Context) error {
	pair, limit, err := parseArgs(c.Args())
	if err != nil {
		return c.Send("⚠️ " + err.Error())
	}

	ctx, cancel := context.WithTimeout(context.Background(), reportTimeout)
	defer cancel()

	report, err := b.engine.Report(ctx, pair, limit)
	if err != nil {
		return c.Send("❌ " + err.Error())
	}

	msg, err := render.Markdown(report)
	if err != nil {
		return err
	}
	return c.Send(msg, tele.ModeMarkdown)
}

func (b *Bot) handleHistory(c tele.Context) error {
	menu := &tele.ReplyMarkup{}
	menu.Inline(menu.Row(btnBack))
	return c.Send(historyMessage(b.engine.History()), menu, tele.ModeMarkdown)
}

func (b *Bot) handleSettings(c tele.Context) error {
	menu := &tele.ReplyMarkup{}
	menu.Inline(menu.Row(btnBack))
	return c.Send(settingsMessage(b.engine.Options(), b.engine.NormalizeLimit(0)), menu, tele.ModeMarkdown)
}

// parseArgs accepts "PAIR [LIMIT]" and, like the terminal tool, "LIMIT PAIR".
func parseArgs(args []string) (pair string, limit int, err error) {
	switch len(args) {
	case 1:
		if _, err := strconv.Atoi(args[0]); err == nil {
			return "", 0, fmt.Errorf("usage: /pnl PAIR [LIMIT]")
		}
		return strings.ToUpper(args[0]), 0, nil
	case 2:
		if n, err := strconv.Atoi(args[1]); err == nil {
			pair, limit = args[0], n
		} else if n, err := strconv.Atoi(args[0]); err == nil {
			pair, limit = args[1], n
		} else {
			return "", 0, fmt.Errorf("limit must be a number")
		}
		if limit <= 0 {
			return "", 0, fmt.Errorf("limit must be positive")
		}
		return strings.ToUpper(pair), limit, nil
	default:
		return "", 0, fmt.Errorf("usage: /pnl PAIR [LIMIT]")
	}
}

func historyMessage(history []analysis.Report) string {
	if len(history) == 0 {
		return "📜 No reports yet"
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("📜 *Recent reports (%d)*\n\n", len(history)))
	for i := len(history) - 1; i >= 0; i-- {
		r := history[i]
		emoji := "🟢"
		if r.RealizedPL.IsNegative() {
			emoji = "🔴"
		}
		sb.WriteString(fmt.Sprintf("%s *%s* %s | P/L %s | %d records\n",
			emoji, r.Coin, r.GeneratedAt.Format("15:04:05"), r.RealizedPL.Round(2), r.TransactionCount))
	}
	return sb.String()
}

func settingsMessage(opts analysis.Options, defaultLimit int) string {
	derive := "off"
	if opts.Classify.DeriveMarketPrice {
		derive = "on"
	}
	return fmt.Sprintf(`⚙️ *Settings*

Realized P/L: %s
Spread sign: %s
Market order prices: %s
Default limit: %d`, opts.RealizedMode, opts.SpreadSign, derive, defaultLimit)
}

func formatUptime(d time.Duration) string {
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	if hours > 0 {
		return fmt.Sprintf("%dh %dmin", hours, minutes)
	}
	return fmt.Sprintf("%dmin", minutes)
}
