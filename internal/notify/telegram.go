// Package notify sends operator notifications over Telegram: executed
// paper trades and rate-limit backoffs. Notifications are best effort
// and never block the main loop on failure.
package notify

import (
	"fmt"
	"strconv"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"scryptbot/internal/types"
)

// Notifier delivers messages to a Telegram chat with retry.
type Notifier struct {
	bot        *tgbotapi.BotAPI
	chatID     int64
	maxRetries int
	retryDelay time.Duration
}

// NewNotifier creates a Notifier for the given bot token and chat id.
func NewNotifier(botToken, chatID string) (*Notifier, error) {
	bot, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create Telegram bot: %w", err)
	}

	chatIDInt, err := strconv.ParseInt(chatID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid chat ID: %w", err)
	}

	return &Notifier{
		bot:        bot,
		chatID:     chatIDInt,
		maxRetries: 3,
		retryDelay: time.Second,
	}, nil
}

func (n *Notifier) send(message string) error {
	msg := tgbotapi.NewMessage(n.chatID, message)

	var lastErr error
	for i := 0; i < n.maxRetries; i++ {
		if _, err := n.bot.Send(msg); err == nil {
			return nil
		} else {
			lastErr = err
		}
		time.Sleep(n.retryDelay * time.Duration(i+1))
	}
	return fmt.Errorf("failed to send message after %d retries: %w", n.maxRetries, lastErr)
}

// Trade reports an executed paper trade.
func (n *Notifier) Trade(rec types.TradeRecord) error {
	emoji := "💰"
	if rec.Action == "sell" {
		emoji = "🛑"
	}
	message := fmt.Sprintf("%s Paper %s: %d %s @ $%.2f\nValue: $%.2f | Cash after: $%.2f",
		emoji, rec.Action, rec.Quantity, rec.Ticker, rec.Price, rec.Value, rec.CashAfter)
	return n.send(message)
}

// Backoff reports that the publisher rate limit kicked in.
func (n *Notifier) Backoff(until time.Time) error {
	message := fmt.Sprintf("⏳ Publisher rate limited, backing off until %s",
		until.UTC().Format("2006-01-02 15:04:05 MST"))
	return n.send(message)
}

// Published reports a successfully published signal post.
func (n *Notifier) Published(instrument, postID string) error {
	message := fmt.Sprintf("📤 Published signal for %s (post %s)", instrument, postID)
	return n.send(message)
}
