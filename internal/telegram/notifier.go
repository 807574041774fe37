package telegram

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/camuig/stockgrowth/internal/config"
	"github.com/camuig/stockgrowth/internal/logger"
)

type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

type Notifier struct {
	bot     sender
	chatID  int64
	enabled bool
	logger  *logger.Logger
}

func NewNotifier(cfg *config.Config, log *logger.Logger) *Notifier {
	if !cfg.Telegram.Enabled {
		return &Notifier{enabled: false, logger: log}
	}

	bot, err := tgbotapi.NewBotAPI(cfg.Telegram.BotToken)
	if err != nil {
		log.Error("failed to create telegram bot", "error", err)
		return &Notifier{enabled: false, logger: log}
	}

	log.Info("telegram bot connected", "username", bot.Self.UserName)

	return &Notifier{
		bot:     bot,
		chatID:  cfg.Telegram.ChatID,
		enabled: true,
		logger:  log,
	}
}

// NotifyHighGrowth announces a watchlist stock that reached the threshold.
func (n *Notifier) NotifyHighGrowth(symbol, companyName string, score, threshold float64) {
	msg := fmt.Sprintf("📈 *%s* %s\n成長分數: %.1f (目標 %.1f)\n符合成長標準",
		tgbotapi.EscapeText(tgbotapi.ModeMarkdown, symbol),
		tgbotapi.EscapeText(tgbotapi.ModeMarkdown, companyName),
		score, threshold)
	n.send(msg)
}

// NotifyDropped announces a watchlist stock that fell below the threshold.
func (n *Notifier) NotifyDropped(symbol, companyName string, score, threshold float64) {
	msg := fmt.Sprintf("📉 *%s* %s\n成長分數: %.1f (目標 %.1f)\n未達成長標準",
		tgbotapi.EscapeText(tgbotapi.ModeMarkdown, symbol),
		tgbotapi.EscapeText(tgbotapi.ModeMarkdown, companyName),
		score, threshold)
	n.send(msg)
}

func (n *Notifier) NotifyError(context string, err error) {
	msg := fmt.Sprintf("⚠️ *錯誤* [%s]\n%s",
		tgbotapi.EscapeText(tgbotapi.ModeMarkdown, context),
		tgbotapi.EscapeText(tgbotapi.ModeMarkdown, err.Error()))
	n.send(msg)
}

func (n *Notifier) NotifyStatus(message string) {
	n.send(message)
}

func (n *Notifier) send(text string) {
	if !n.enabled {
		return
	}

	msg := tgbotapi.NewMessage(n.chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown

	if _, err := n.bot.Send(msg); err != nil {
		n.logger.Error("send telegram message", "error", err)
	}
}
