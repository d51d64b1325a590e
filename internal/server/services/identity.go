package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/dmitrijs2005/walletkeeper/internal/common"
	"github.com/dmitrijs2005/walletkeeper/internal/dbx"
	"github.com/dmitrijs2005/walletkeeper/internal/logging"
	"github.com/dmitrijs2005/walletkeeper/internal/server/identity"
	"github.com/dmitrijs2005/walletkeeper/internal/server/models"
	"github.com/dmitrijs2005/walletkeeper/internal/server/repositories/repomanager"
)

// Provisioner creates on-chain identities for wallet owners.
type Provisioner interface {
	Provision(ctx context.Context, ownerAddress, name, symbol string) (*identity.Result, error)
}

var _ Provisioner = (*identity.Provisioner)(nil)

const maxIdentityNameLen = 64

// IdentityService issues on-chain identities and records them against
// accounts. One identity per account; issuing is idempotent.
type IdentityService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	provisioner Provisioner
	logger      logging.Logger
}

func NewIdentityService(db *sql.DB, m repomanager.RepositoryManager, p Provisioner, logger logging.Logger) *IdentityService {
	return &IdentityService{db: db, repomanager: m, provisioner: p, logger: logger}
}

func validateIdentityName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return common.NewValidationError("name", "must not be empty")
	}
	if len(name) > maxIdentityNameLen {
		return common.NewValidationError("name", fmt.Sprintf("must be at most %d characters", maxIdentityNameLen))
	}
	return nil
}

func validateIdentitySymbol(symbol string) error {
	if symbol == "" || len(symbol) > 10 {
		return common.NewValidationError("symbol", "must be 1-10 characters")
	}
	for _, c := range symbol {
		if !unicode.IsUpper(c) && !unicode.IsDigit(c) {
			return common.NewValidationError("symbol", "must contain only uppercase letters and digits")
		}
	}
	return nil
}

// Issue provisions an identity for the account's wallet and records it. If
// the account already has an identity, or the chain already maps the wallet
// to one, the existing address is returned without submitting a new
// transaction. The identity row and the account's cached identity fields
// are written in one transaction, only after on-chain confirmation.
func (s *IdentityService) Issue(ctx context.Context, accountID, name, symbol string) (*models.Identity, error) {
	if err := validateIdentityName(name); err != nil {
		return nil, err
	}
	if err := validateIdentitySymbol(symbol); err != nil {
		return nil, err
	}

	account, err := s.repomanager.Accounts(s.db).GetByID(ctx, accountID)
	if err != nil {
		return nil, err
	}

	if account.IdentityAddress != nil {
		return s.repomanager.Identities(s.db).GetByAccountID(ctx, accountID)
	}

	res, err := s.provisioner.Provision(ctx, account.WalletAddress, name, symbol)
	if err != nil {
		return nil, err
	}
	if res.AlreadyExisted {
		// the chain knows this identity but we have no row for it yet,
		// record it now
		s.logger.Warn(ctx, "recording identity already present on chain",
			"account_id", accountID, "identity", res.IdentityAddress)
	}

	now := time.Now().UTC()
	var created *models.Identity
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		id := &models.Identity{
			Address:   res.IdentityAddress,
			Name:      strings.TrimSpace(name),
			Symbol:    symbol,
			AccountID: accountID,
		}
		i, err := s.repomanager.Identities(tx).Create(ctx, id)
		if err != nil {
			return err
		}
		if err := s.repomanager.Accounts(tx).SetIdentity(ctx, accountID, i.Address, now); err != nil {
			return err
		}
		created = i
		return nil
	})
	if err != nil {
		// a concurrent request won the race; return its record
		if errors.Is(err, common.ErrDuplicateIdentity) {
			return s.repomanager.Identities(s.db).GetByAccountID(ctx, accountID)
		}
		return nil, err
	}

	s.logger.Info(ctx, "identity recorded",
		"account_id", accountID, "identity", created.Address, "tx", res.TxHash)

	return created, nil
}

// GetForAccount returns the identity recorded for an account, or
// common.ErrorNotFound when none exists.
func (s *IdentityService) GetForAccount(ctx context.Context, accountID string) (*models.Identity, error) {
	return s.repomanager.Identities(s.db).GetByAccountID(ctx, accountID)
}

// GetByAddress returns the identity recorded under an on-chain address.
func (s *IdentityService) GetByAddress(ctx context.Context, address string) (*models.Identity, error) {
	address, err := models.NormalizeAddress(address)
	if err != nil {
		return nil, err
	}
	return s.repomanager.Identities(s.db).GetByAddress(ctx, address)
}
