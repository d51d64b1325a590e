package wallets

import (
	"context"
	"time"

	"github.com/dmitrijs2005/walletkeeper/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, wallet *models.Wallet) (*models.Wallet, error)
	GetByAccountID(ctx context.Context, accountID string) (*models.Wallet, error)
	UpdateLastUsed(ctx context.Context, id string, at time.Time) error
}
