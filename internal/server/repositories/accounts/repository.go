package accounts

import (
	"context"
	"time"

	"github.com/dmitrijs2005/walletkeeper/internal/server/models"
)

// Repository is the account lookup/update contract of the directory.
// Lookups return common.ErrorNotFound when no row matches; Create returns
// the typed duplicate errors on uniqueness violations.
type Repository interface {
	Create(ctx context.Context, account *models.Account) (*models.Account, error)
	GetByID(ctx context.Context, id string) (*models.Account, error)
	GetByEmail(ctx context.Context, email string) (*models.Account, error)
	GetByUsername(ctx context.Context, username string) (*models.Account, error)
	GetByWalletAddress(ctx context.Context, address string) (*models.Account, error)
	UpdateLastLogin(ctx context.Context, id string, at time.Time) error
	SetIdentity(ctx context.Context, id string, address string, at time.Time) error
}
