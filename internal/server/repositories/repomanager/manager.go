// Package repomanager hands out per-entity repositories bound to a database
// handle. Passing a dbx.DBTX lets services obtain repositories bound either
// to the pooled *sql.DB or to an open transaction.
package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/walletkeeper/internal/dbx"
	"github.com/dmitrijs2005/walletkeeper/internal/server/repositories/accounts"
	"github.com/dmitrijs2005/walletkeeper/internal/server/repositories/identities"
	"github.com/dmitrijs2005/walletkeeper/internal/server/repositories/wallets"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Accounts(db dbx.DBTX) accounts.Repository
	Wallets(db dbx.DBTX) wallets.Repository
	Identities(db dbx.DBTX) identities.Repository
}
