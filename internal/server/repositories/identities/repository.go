package identities

import (
	"context"

	"github.com/dmitrijs2005/walletkeeper/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, identity *models.Identity) (*models.Identity, error)
	GetByAccountID(ctx context.Context, accountID string) (*models.Identity, error)
	GetByAddress(ctx context.Context, address string) (*models.Identity, error)
}
