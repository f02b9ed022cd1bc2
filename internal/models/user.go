package models

import "time"

// User represents a Telegram-authenticated autohunt operator.
//
// Created on first contact, never deleted. A user owns exactly one
// active Wallet per chain.
type User struct {
	TelegramID int64     `json:"telegram_id"`
	ChatID     int64     `json:"chat_id"`
	CreatedAt  time.Time `json:"created_at"`
}
