package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"signal_bot/internal/models"
	"signal_bot/pkg/logger"
)

const helpText = `Commands:
/price SYMBOL - current price (e.g. /price BTC/USDT)
/prices - prices for all watched symbols
/status - bot status and signal stats
/history [n] [SYMBOL] - recent signals
/timeframe [tf] - show or set confirmation timeframe
/trade BUY|SELL SYMBOL QTY - place a market order
/balance - account balances
/help - this message`

func (t *Telegram) handleCommand(ctx context.Context, chatID int64, command, args string) {
	switch command {
	case "price":
		t.handlePrice(ctx, chatID, strings.TrimSpace(args))
	case "prices":
		t.handlePrices(ctx, chatID)
	case "status":
		t.handleStatus(chatID)
	case "history":
		t.handleHistory(chatID, strings.Fields(args))
	case "timeframe":
		t.handleTimeframe(chatID, strings.TrimSpace(args))
	case "trade":
		t.handleTrade(ctx, chatID, strings.Fields(args))
	case "balance":
		t.handleBalance(ctx, chatID)
	case "help", "start":
		t.reply(chatID, helpText)
	default:
		t.replyF(chatID, "Unknown command /%s, try /help", command)
	}
}

func (t *Telegram) handlePrice(ctx context.Context, chatID int64, symbol string) {
	if symbol == "" {
		t.reply(chatID, "Usage: /price SYMBOL")
		return
	}
	symbol = strings.ToUpper(symbol)

	p, err := t.exchange.FetchPrice(ctx, symbol)
	if err != nil {
		logger.Warn("price command %s: %v", symbol, err)
		t.replyF(chatID, "Could not fetch %s: %v", symbol, err)
		return
	}
	t.replyF(chatID, "%s: %.4f (24h H %.4f / L %.4f)", p.Symbol, p.Last, p.High, p.Low)
}

func (t *Telegram) handlePrices(ctx context.Context, chatID int64) {
	var b strings.Builder
	for _, symbol := range t.monitor.Symbols() {
		p, err := t.exchange.FetchPrice(ctx, symbol)
		if err != nil {
			fmt.Fprintf(&b, "%s: error (%v)\n", symbol, err)
			continue
		}
		fmt.Fprintf(&b, "%s: %.4f\n", symbol, p.Last)
	}
	if b.Len() == 0 {
		t.reply(chatID, "No symbols configured.")
		return
	}
	t.reply(chatID, b.String())
}

func (t *Telegram) handleStatus(chatID int64) {
	stats, err := t.monitor.Stats("")
	if err != nil {
		t.replyF(chatID, "Stats unavailable: %v", err)
		return
	}

	state := "stopped"
	if t.monitor.Running() {
		state = "running"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Monitor: %s\n", state)
	fmt.Fprintf(&b, "Uptime: %s\n", t.uptime())
	fmt.Fprintf(&b, "Timeframe: %s\n", t.monitor.Timeframe())
	fmt.Fprintf(&b, "Symbols: %s\n", strings.Join(t.monitor.Symbols(), ", "))
	fmt.Fprintf(&b, "Signals stored: %d (BUY %d / SELL %d)\n", stats.HistoryCount, stats.TotalBuy, stats.TotalSell)
	if stats.LastSignalAt != nil {
		fmt.Fprintf(&b, "Last signal: %s\n", stats.LastSignalAt.Format("2006-01-02 15:04:05 MST"))
	}
	t.reply(chatID, b.String())
}

func (t *Telegram) handleHistory(chatID int64, args []string) {
	count := 5
	symbol := ""
	for _, a := range args {
		if n, err := strconv.Atoi(a); err == nil {
			count = n
			continue
		}
		symbol = strings.ToUpper(a)
	}
	if count <= 0 || count > 50 {
		count = 5
	}

	signals, err := t.monitor.RecentSignals(count, symbol)
	if err != nil {
		t.replyF(chatID, "History unavailable: %v", err)
		return
	}
	if len(signals) == 0 {
		t.reply(chatID, "No signals recorded yet.")
		return
	}

	var b strings.Builder
	for _, s := range signals {
		fmt.Fprintf(&b, "%s %s %s @ %.4f (strength %d)\n",
			s.Timestamp.Format("01-02 15:04"), s.Side, s.Symbol, s.Price, s.Strength)
	}
	t.reply(chatID, b.String())
}

func (t *Telegram) handleTimeframe(chatID int64, arg string) {
	if arg == "" {
		t.replyF(chatID, "Current timeframe: %s\nValid: %s",
			t.monitor.Timeframe(), strings.Join(t.monitor.ValidTimeframes(), ", "))
		return
	}

	res := t.monitor.SetTimeframe(strings.ToLower(arg))
	if !res.OK {
		t.reply(chatID, res.Err)
		return
	}
	t.replyF(chatID, "Timeframe changed: %s -> %s", res.Previous, res.Current)
}

func (t *Telegram) handleTrade(ctx context.Context, chatID int64, args []string) {
	if len(args) != 3 {
		t.reply(chatID, "Usage: /trade BUY|SELL SYMBOL QTY")
		return
	}

	side := models.Side(strings.ToUpper(args[0]))
	if side != models.SideBuy && side != models.SideSell {
		t.replyF(chatID, "Side must be BUY or SELL, got %q", args[0])
		return
	}
	symbol := strings.ToUpper(args[1])
	qty, err := strconv.ParseFloat(args[2], 64)
	if err != nil || qty <= 0 {
		t.replyF(chatID, "Bad quantity %q", args[2])
		return
	}

	result, err := t.exchange.ExecuteTrade(ctx, side, symbol, qty)
	if err != nil {
		logger.Error("manual trade %s %s: %v", side, symbol, err)
		t.replyF(chatID, "Trade failed: %v", err)
		return
	}
	t.replyF(chatID, "Order %s: %s %s qty=%v filled=%v (%s)",
		result.OrderID, result.Side, result.Symbol, result.Qty, result.Filled, result.Status)
}

func (t *Telegram) uptime() string {
	return logger.UptimeFormatted()
}

func (t *Telegram) handleBalance(ctx context.Context, chatID int64) {
	balances, err := t.exchange.FetchBalance(ctx)
	if err != nil {
		t.replyF(chatID, "Balance unavailable: %v", err)
		return
	}
	if len(balances) == 0 {
		t.reply(chatID, "No balances.")
		return
	}

	var b strings.Builder
	for _, bal := range balances {
		fmt.Fprintf(&b, "%s: %.8f (free %.8f / used %.8f)\n", bal.Currency, bal.Total, bal.Free, bal.Used)
	}
	t.reply(chatID, b.String())
}
