package wallets

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/walletkeeper/internal/common"
	"github.com/dmitrijs2005/walletkeeper/internal/dbx"
	"github.com/dmitrijs2005/walletkeeper/internal/server/models"
	"github.com/dmitrijs2005/walletkeeper/internal/server/repositories/pgerr"
	"github.com/google/uuid"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, wallet *models.Wallet) (*models.Wallet, error) {

	if wallet.ID == "" {
		wallet.ID = uuid.NewString()
	}

	query :=
		`INSERT INTO wallets (id, address, encrypted_private_key, key_salt, account_id)
	     VALUES ($1, $2, $3, $4, $5)
		 RETURNING created_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		wallet.ID, wallet.Address, wallet.EncryptedPrivateKey, wallet.KeySalt, wallet.AccountID).
		Scan(&wallet.CreatedAt)

	if err != nil {
		if translated := pgerr.Translate(err); translated != err {
			return nil, translated
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return wallet, nil
}

func (r *PostgresRepository) GetByAccountID(ctx context.Context, accountID string) (*models.Wallet, error) {
	query :=
		`SELECT id, address, encrypted_private_key, key_salt, account_id, created_at, last_used
		 FROM wallets
		 WHERE account_id = $1
		 `

	wallet := &models.Wallet{}
	var lastUsed sql.NullTime

	err := r.db.QueryRowContext(ctx, query, accountID).Scan(
		&wallet.ID, &wallet.Address, &wallet.EncryptedPrivateKey, &wallet.KeySalt,
		&wallet.AccountID, &wallet.CreatedAt, &lastUsed)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	if lastUsed.Valid {
		wallet.LastUsed = &lastUsed.Time
	}

	return wallet, nil
}

func (r *PostgresRepository) UpdateLastUsed(ctx context.Context, id string, at time.Time) error {
	query := `UPDATE wallets SET last_used = $2 WHERE id = $1`

	res, err := r.db.ExecContext(ctx, query, id, at)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return common.ErrorNotFound
	}

	return nil
}
