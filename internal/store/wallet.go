package store

import (
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"raptor/internal/models"
)

// WalletRepository works with the wallets table.
type WalletRepository struct {
	db *sql.DB
}

// Create inserts a new wallet row.
func (r *WalletRepository) Create(w *models.Wallet) error {
	if w.ID == uuid.Nil {
		w.ID = uuid.New()
	}
	w.CreatedAt = time.Now()

	query := `
		INSERT INTO wallets (id, user_telegram_id, chain, public_key, encrypted_secret, backed_up_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.db.Exec(query, w.ID, w.UserTelegramID, w.Chain, w.PublicKey,
		w.EncryptedSecret, w.BackedUpAt, w.CreatedAt)
	return err
}

// GetActiveByUserAndChain returns the user's single active wallet for a
// chain (spec.md §3 invariant: "exactly one active wallet per chain").
func (r *WalletRepository) GetActiveByUserAndChain(userTelegramID int64, chain models.Chain) (*models.Wallet, error) {
	query := `
		SELECT id, user_telegram_id, chain, public_key, encrypted_secret, backed_up_at, created_at
		FROM wallets
		WHERE user_telegram_id = $1 AND chain = $2
		ORDER BY created_at DESC
		LIMIT 1`

	w := &models.Wallet{}
	err := r.db.QueryRow(query, userTelegramID, chain).Scan(
		&w.ID, &w.UserTelegramID, &w.Chain, &w.PublicKey, &w.EncryptedSecret, &w.BackedUpAt, &w.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return w, nil
}

// GetByID returns a wallet by id.
func (r *WalletRepository) GetByID(id uuid.UUID) (*models.Wallet, error) {
	query := `
		SELECT id, user_telegram_id, chain, public_key, encrypted_secret, backed_up_at, created_at
		FROM wallets
		WHERE id = $1`

	w := &models.Wallet{}
	err := r.db.QueryRow(query, id).Scan(
		&w.ID, &w.UserTelegramID, &w.Chain, &w.PublicKey, &w.EncryptedSecret, &w.BackedUpAt, &w.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return w, nil
}
