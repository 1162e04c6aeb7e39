package service

import (
	"context"
	"fmt"
	"sync"

	"signal_bot/internal/models"
	"signal_bot/internal/modules/config"
	metricsvc "signal_bot/internal/modules/metrics/service"
	monitorsvc "signal_bot/internal/modules/monitor/service"
	"signal_bot/pkg/logger"

	tgbot "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Exchange is the slice of the exchange client the chat commands need.
type Exchange interface {
	FetchPrice(ctx context.Context, symbol string) (models.PricePoint, error)
	FetchBalance(ctx context.Context) ([]models.Balance, error)
	ExecuteTrade(ctx context.Context, side models.Side, symbol string, qty float64) (models.TradeResult, error)
}

// Telegram delivers signal and summary notifications to the configured chat
// and serves the command interface over long polling.
type Telegram struct {
	bot      *tgbot.BotAPI
	cfg      *config.Config
	monitor  *monitorsvc.Monitor
	exchange Exchange
	metrics  *metricsvc.Metrics
	limiter  *rateLimiter

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
}

func NewTelegram(cfg *config.Config, monitor *monitorsvc.Monitor, exchange Exchange, metrics *metricsvc.Metrics) (*Telegram, error) {
	b, err := tgbot.NewBotAPI(cfg.Telegram.Token)
	if err != nil {
		return nil, err
	}

	return &Telegram{
		bot:      b,
		cfg:      cfg,
		monitor:  monitor,
		exchange: exchange,
		metrics:  metrics,
		limiter:  newRateLimiter(cfg.Telegram.RateWindow, cfg.Telegram.RateMax),
	}, nil
}

// Notify sends text to the configured chat.
func (t *Telegram) Notify(text string) {
	if t.cfg.Telegram.ChatID == 0 {
		return
	}
	if _, err := t.bot.Send(tgbot.NewMessage(t.cfg.Telegram.ChatID, text)); err != nil {
		logger.Error("telegram send: %v", err)
	}
}

func (t *Telegram) reply(chatID int64, text string) {
	if _, err := t.bot.Send(tgbot.NewMessage(chatID, text)); err != nil {
		logger.Error("telegram reply: %v", err)
	}
}

func (t *Telegram) replyF(chatID int64, format string, args ...any) {
	t.reply(chatID, fmt.Sprintf(format, args...))
}

// Start begins the update loop. Safe to call once per Telegram instance.
func (t *Telegram) Start(ctx context.Context) {
	t.mu.Lock()
	if t.running {
		t.mu.Unlock()
		return
	}
	t.running = true
	ctx, t.cancel = context.WithCancel(ctx)
	t.mu.Unlock()

	logger.Info("telegram bot @%s started", t.bot.Self.UserName)

	go func() {
		u := tgbot.NewUpdate(0)
		u.Timeout = 30
		updates := t.bot.GetUpdatesChan(u)

		for {
			select {
			case <-ctx.Done():
				return
			case update, ok := <-updates:
				if !ok {
					return
				}
				t.handleUpdate(ctx, update)
			}
		}
	}()
}

func (t *Telegram) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.running {
		return
	}
	t.running = false
	t.cancel()
	t.bot.StopReceivingUpdates()
	logger.Info("telegram bot stopped")
}

func (t *Telegram) handleUpdate(ctx context.Context, update tgbot.Update) {
	msg := update.Message
	if msg == nil || !msg.IsCommand() {
		return
	}

	chatID := msg.Chat.ID
	if !t.limiter.allow(chatID) {
		t.reply(chatID, "Too many commands, slow down.")
		return
	}

	t.metrics.IncCommand(msg.Command())
	t.handleCommand(ctx, chatID, msg.Command(), msg.CommandArguments())
}
