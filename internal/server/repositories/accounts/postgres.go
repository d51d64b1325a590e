package accounts

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

const accountColumns = `id, email, username, password_hash, wallet_address, is_active,
	 created_at, last_login, identity_address, identity_created_at`

func (r *PostgresRepository) Create(ctx context.Context, account *models.Account) (*models.Account, error) {

	if account.ID == "" {
		account.ID = uuid.NewString()
	}

	query :=
		`INSERT INTO accounts (id, email, username, password_hash, wallet_address)
	     VALUES ($1, $2, $3, $4, $5)
		 RETURNING created_at, is_active
		 `

	err := r.db.QueryRowContext(ctx, query,
		account.ID, account.Email, account.Username, account.PasswordHash, account.WalletAddress).
		Scan(&account.CreatedAt, &account.IsActive)

	if err != nil {
		if translated := pgerr.Translate(err); translated != err {
			return nil, translated
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return account, nil
}

func (r *PostgresRepository) getByPredicate(ctx context.Context, predicate string, arg any) (*models.Account, error) {
	query := fmt.Sprintf(`SELECT %s FROM accounts WHERE %s`, accountColumns, predicate)

	account := &models.Account{}
	var username sql.NullString
	var lastLogin, identityCreatedAt sql.NullTime
	var identityAddress sql.NullString

	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&account.ID, &account.Email, &username, &account.PasswordHash,
		&account.WalletAddress, &account.IsActive, &account.CreatedAt,
		&lastLogin, &identityAddress, &identityCreatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	account.Username = username.String
	if lastLogin.Valid {
		account.LastLogin = &lastLogin.Time
	}
	if identityAddress.Valid {
		account.IdentityAddress = &identityAddress.String
	}
	if identityCreatedAt.Valid {
		account.IdentityCreatedAt = &identityCreatedAt.Time
	}

	return account, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Account, error) {
	return r.getByPredicate(ctx, "id = $1", id)
}

func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	return r.getByPredicate(ctx, "email = $1", email)
}

func (r *PostgresRepository) GetByUsername(ctx context.Context, username string) (*models.Account, error) {
	return r.getByPredicate(ctx, "username = $1", username)
}

func (r *PostgresRepository) GetByWalletAddress(ctx context.Context, address string) (*models.Account, error) {
	return r.getByPredicate(ctx, "wallet_address = $1", address)
}

func (r *PostgresRepository) UpdateLastLogin(ctx context.Context, id string, at time.Time) error {
	query := `UPDATE accounts SET last_login = $2 WHERE id = $1`

	res, err := r.db.ExecContext(ctx, query, id, at)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return common.ErrorNotFound
	}

	return nil
}

// SetIdentity writes the account's cached identity fields. It is called
// inside the same transaction that inserts the Identity row.
func (r *PostgresRepository) SetIdentity(ctx context.Context, id string, address string, at time.Time) error {
	query := `UPDATE accounts SET identity_address = $2, identity_created_at = $3 WHERE id = $1`

	res, err := r.db.ExecContext(ctx, query, id, address, at)
	if err != nil {
		if translated := pgerr.Translate(err); translated != err {
			return translated
		}
		return fmt.Errorf("db error: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return common.ErrorNotFound
	}

	return nil
}
