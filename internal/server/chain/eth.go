package chain

import (
	"context"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/pkg/errors"
)

// factoryABIJSON is the subset of the identity-factory interface the service
// uses: creation plus the owner→identity mapping.
const factoryABIJSON = `[
	{
		"inputs": [
			{"internalType": "string", "name": "name", "type": "string"},
			{"internalType": "string", "name": "symbol", "type": "string"},
			{"internalType": "bytes32", "name": "salt", "type": "bytes32"}
		],
		"name": "createIdentity",
		"outputs": [{"internalType": "address", "name": "", "type": "address"}],
		"stateMutability": "nonpayable",
		"type": "function"
	},
	{
		"inputs": [{"internalType": "address", "name": "", "type": "address"}],
		"name": "identities",
		"outputs": [{"internalType": "address", "name": "", "type": "address"}],
		"stateMutability": "view",
		"type": "function"
	}
]`

// EthClient talks to a real node over JSON-RPC.
type EthClient struct {
	rpc     *ethclient.Client
	factory common.Address
	abi     abi.ABI
}

// Dial connects to the node at rpcURL and binds the factory contract.
func Dial(ctx context.Context, rpcURL, factoryAddress string) (*EthClient, error) {
	rpc, err := ethclient.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, errors.Wrap(err, "dialing chain rpc")
	}

	parsed, err := abi.JSON(strings.NewReader(factoryABIJSON))
	if err != nil {
		return nil, errors.Wrap(err, "parsing factory abi")
	}

	return &EthClient{
		rpc:     rpc,
		factory: common.HexToAddress(factoryAddress),
		abi:     parsed,
	}, nil
}

func (c *EthClient) Ping(ctx context.Context) error {
	_, err := c.rpc.BlockNumber(ctx)
	return errors.Wrap(err, "chain unreachable")
}

func (c *EthClient) FactoryAddress() common.Address {
	return c.factory
}

func (c *EthClient) IdentityOf(ctx context.Context, owner common.Address) (common.Address, error) {
	data, err := c.abi.Pack("identities", owner)
	if err != nil {
		return common.Address{}, errors.Wrap(err, "packing identities call")
	}

	out, err := c.rpc.CallContract(ctx, ethereum.CallMsg{To: &c.factory, Data: data}, nil)
	if err != nil {
		return common.Address{}, errors.Wrap(err, "calling identities")
	}

	results, err := c.abi.Unpack("identities", out)
	if err != nil {
		return common.Address{}, errors.Wrap(err, "unpacking identities result")
	}

	return *abi.ConvertType(results[0], new(common.Address)).(*common.Address), nil
}

func (c *EthClient) CreateIdentityCallData(name, symbol string, salt [32]byte) ([]byte, error) {
	data, err := c.abi.Pack("createIdentity", name, symbol, salt)
	if err != nil {
		return nil, errors.Wrap(err, "packing createIdentity call")
	}
	return data, nil
}

func (c *EthClient) EstimateCreateIdentity(ctx context.Context, from common.Address, name, symbol string, salt [32]byte) (uint64, error) {
	data, err := c.CreateIdentityCallData(name, symbol, salt)
	if err != nil {
		return 0, err
	}

	gas, err := c.rpc.EstimateGas(ctx, ethereum.CallMsg{From: from, To: &c.factory, Data: data})
	if err != nil {
		return 0, errors.Wrap(err, "estimating createIdentity gas")
	}

	return gas, nil
}

func (c *EthClient) PendingNonceAt(ctx context.Context, account common.Address) (uint64, error) {
	nonce, err := c.rpc.PendingNonceAt(ctx, account)
	return nonce, errors.Wrap(err, "fetching nonce")
}

func (c *EthClient) SuggestGasPrice(ctx context.Context) (*big.Int, error) {
	price, err := c.rpc.SuggestGasPrice(ctx)
	return price, errors.Wrap(err, "fetching gas price")
}

func (c *EthClient) ChainID(ctx context.Context) (*big.Int, error) {
	id, err := c.rpc.ChainID(ctx)
	return id, errors.Wrap(err, "fetching chain id")
}

func (c *EthClient) SendTransaction(ctx context.Context, tx *types.Transaction) error {
	return errors.Wrap(c.rpc.SendTransaction(ctx, tx), "broadcasting transaction")
}

func (c *EthClient) TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error) {
	return c.rpc.TransactionReceipt(ctx, txHash)
}
