package identities

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

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

func (r *PostgresRepository) Create(ctx context.Context, identity *models.Identity) (*models.Identity, error) {

	if identity.ID == "" {
		identity.ID = uuid.NewString()
	}

	query :=
		`INSERT INTO identities (id, address, name, symbol, account_id)
	     VALUES ($1, $2, $3, $4, $5)
		 RETURNING created_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		identity.ID, identity.Address, identity.Name, identity.Symbol, identity.AccountID).
		Scan(&identity.CreatedAt)

	if err != nil {
		if translated := pgerr.Translate(err); translated != err {
			return nil, translated
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return identity, nil
}

func (r *PostgresRepository) getByPredicate(ctx context.Context, predicate string, arg any) (*models.Identity, error) {
	query := fmt.Sprintf(
		`SELECT id, address, name, symbol, account_id, created_at, last_updated
		 FROM identities
		 WHERE %s`, predicate)

	identity := &models.Identity{}
	var lastUpdated sql.NullTime

	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&identity.ID, &identity.Address, &identity.Name, &identity.Symbol,
		&identity.AccountID, &identity.CreatedAt, &lastUpdated)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	if lastUpdated.Valid {
		identity.LastUpdated = &lastUpdated.Time
	}

	return identity, nil
}

func (r *PostgresRepository) GetByAccountID(ctx context.Context, accountID string) (*models.Identity, error) {
	return r.getByPredicate(ctx, "account_id = $1", accountID)
}

func (r *PostgresRepository) GetByAddress(ctx context.Context, address string) (*models.Identity, error) {
	return r.getByPredicate(ctx, "address = $1", address)
}
