package store

import (
	"database/sql"
	"errors"
	"time"

	"raptor/internal/models"
)

// UserRepository works with the users table.
type UserRepository struct {
	db *sql.DB
}

// Upsert creates a user on first contact; a repeat contact only refreshes
// chat_id (spec.md §3: "created on first contact, never deleted").
func (r *UserRepository) Upsert(telegramID, chatID int64) (*models.User, error) {
	query := `
		INSERT INTO users (telegram_id, chat_id, created_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (telegram_id) DO UPDATE SET chat_id = EXCLUDED.chat_id
		RETURNING telegram_id, chat_id, created_at`

	u := &models.User{}
	err := r.db.QueryRow(query, telegramID, chatID, time.Now()).
		Scan(&u.TelegramID, &u.ChatID, &u.CreatedAt)
	if err != nil {
		return nil, err
	}
	return u, nil
}

// GetByTelegramID returns a user by their Telegram id.
func (r *UserRepository) GetByTelegramID(telegramID int64) (*models.User, error) {
	query := `SELECT telegram_id, chat_id, created_at FROM users WHERE telegram_id = $1`

	u := &models.User{}
	err := r.db.QueryRow(query, telegramID).Scan(&u.TelegramID, &u.ChatID, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return u, nil
}
