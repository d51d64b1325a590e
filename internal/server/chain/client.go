// Package chain wraps the JSON-RPC node client and the identity-factory
// contract. It exposes the narrow set of primitives the provisioner needs:
// a read-only owner→identity lookup, gas estimation, nonce/gas-price/chain-id
// queries, calldata packing, broadcast, and receipt retrieval.
package chain

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// Client is the provisioner's view of the chain. *EthClient implements it;
// tests substitute a fake.
type Client interface {
	// Ping verifies node connectivity.
	Ping(ctx context.Context) error

	// IdentityOf returns the identity contract address bound to the owner,
	// or the zero address when none exists.
	IdentityOf(ctx context.Context, owner common.Address) (common.Address, error)

	// EstimateCreateIdentity estimates gas for a createIdentity call.
	EstimateCreateIdentity(ctx context.Context, from common.Address, name, symbol string, salt [32]byte) (uint64, error)

	// CreateIdentityCallData packs the createIdentity calldata.
	CreateIdentityCallData(name, symbol string, salt [32]byte) ([]byte, error)

	// FactoryAddress is the deployed identity-factory contract address.
	FactoryAddress() common.Address

	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)
	SuggestGasPrice(ctx context.Context) (*big.Int, error)
	ChainID(ctx context.Context) (*big.Int, error)
	SendTransaction(ctx context.Context, tx *types.Transaction) error
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
}
