package main

import (
	"fmt"
	"log"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// TelegramNotifier pushes post summaries to an admin chat. Disabled (all
// methods no-op) when the api key or chat id is not configured.
type TelegramNotifier struct {
	bot    *tgbotapi.BotAPI
	chatID int64
}

func NewTelegramNotifier(apiKey, chatID string) (*TelegramNotifier, error) {
	if apiKey == "" || chatID == "" {
		return &TelegramNotifier{}, nil
	}

	id, err := strconv.ParseInt(chatID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid telegram chat id %q: %w", chatID, err)
	}

	bot, err := tgbotapi.NewBotAPI(apiKey)
	if err != nil {
		return nil, fmt.Errorf("telegram bot init error: %w", err)
	}

	return &TelegramNotifier{bot: bot, chatID: id}, nil
}

func (n *TelegramNotifier) Enabled() bool {
	return n != nil && n.bot != nil
}

// Notify sends a markdown message, retrying once as plain text when
// telegram rejects the formatting. Failures are logged and swallowed,
// notification problems must never affect tool results.
func (n *TelegramNotifier) Notify(message string) {
	if !n.Enabled() {
		return
	}

	msg := tgbotapi.NewMessage(n.chatID, message)
	msg.ParseMode = tgbotapi.ModeMarkdown
	if _, err := n.bot.Send(msg); err != nil {
		log.Printf("Telegram send error: %v, retrying without markdown", err)
		retry := tgbotapi.NewMessage(n.chatID, message)
		if _, err := n.bot.Send(retry); err != nil {
			log.Printf("Telegram retry failed: %v", err)
		}
	}
}
