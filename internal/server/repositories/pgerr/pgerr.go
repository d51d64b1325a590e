// Package pgerr translates PostgreSQL constraint violations into the typed
// duplicate errors of the account directory. The unique constraints are the
// authoritative arbiter under concurrent registration, so a violation must
// surface as the same error the application-level pre-check would return.
package pgerr

import (
	"errors"

	"github.com/dmitrijs2005/walletkeeper/internal/common"
	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

// Translate maps a unique-violation error to the matching duplicate
// sentinel, keyed by constraint name. Any other error is returned unchanged.
func Translate(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != uniqueViolation {
		return err
	}

	switch pgErr.ConstraintName {
	case "accounts_email_key":
		return common.ErrDuplicateEmail
	case "accounts_username_key":
		return common.ErrDuplicateUsername
	case "accounts_wallet_address_key", "wallets_address_key":
		return common.ErrDuplicateWalletAddress
	case "accounts_identity_address_key", "identities_address_key", "identities_account_id_key":
		return common.ErrDuplicateIdentity
	}

	return err
}
