// Package identity implements on-chain identity provisioning as an explicit
// state machine:
//
//	CHECKING_EXISTING → ESTIMATING_GAS → BUILDING_TX → SIGNING →
//	BROADCASTING → CONFIRMING → RECORDED
//
// A failure in any phase surfaces as a ChainError naming the phase and
// whether the caller may safely retry. Broadcast failures are never marked
// retryable (nonce reuse risk): the caller must re-enter at BUILDING_TX with
// a fresh nonce. Confirmation timeouts are likewise non-retryable until the
// caller has re-queried the transaction by hash, because the transaction may
// still be mined later.
package identity

import (
	"crypto/ecdsa"
	"fmt"
	"strconv"
	"strings"
	"time"

	"context"

	"github.com/dmitrijs2005/walletkeeper/internal/logging"
	"github.com/dmitrijs2005/walletkeeper/internal/server/chain"
	"github.com/dmitrijs2005/walletkeeper/internal/server/config"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/sethvargo/go-retry"
)

// Phase identifies a provisioning state.
type Phase string

const (
	PhaseCheckingExisting Phase = "checking_existing"
	PhaseEstimatingGas    Phase = "estimating_gas"
	PhaseBuildingTx       Phase = "building_tx"
	PhaseSigning          Phase = "signing"
	PhaseBroadcasting     Phase = "broadcasting"
	PhaseConfirming       Phase = "confirming"
	PhaseRecorded         Phase = "recorded"
)

// ChainError reports a provisioning failure with enough context for the
// caller to decide retry-vs-abort. It never carries key material.
type ChainError struct {
	Phase     Phase
	Retryable bool
	Err       error
}

func (e *ChainError) Error() string {
	return fmt.Sprintf("identity provisioning failed at %s: %v", e.Phase, e.Err)
}

func (e *ChainError) Unwrap() error {
	return e.Err
}

func failed(phase Phase, retryable bool, err error) *ChainError {
	return &ChainError{Phase: phase, Retryable: retryable, Err: err}
}

// Result is the outcome of a completed provisioning run.
type Result struct {
	IdentityAddress string
	TxHash          string
	AlreadyExisted  bool
}

// Provisioner drives identity creation through the deployer account. The
// deployer key sponsors and signs the transactions; it is operationally
// distinct from any user wallet key.
type Provisioner struct {
	client       chain.Client
	deployerKey  *ecdsa.PrivateKey
	deployerAddr common.Address
	logger       logging.Logger

	estimateTimeout  time.Duration
	broadcastTimeout time.Duration
	confirmTimeout   time.Duration
	pollInterval     time.Duration
}

// NewProvisioner parses the deployer key and captures the per-phase timeouts.
func NewProvisioner(client chain.Client, cfg *config.Config, logger logging.Logger) (*Provisioner, error) {
	key, err := crypto.HexToECDSA(strings.TrimPrefix(cfg.DeployerKey, "0x"))
	if err != nil {
		return nil, fmt.Errorf("invalid deployer key: %w", err)
	}

	return &Provisioner{
		client:           client,
		deployerKey:      key,
		deployerAddr:     crypto.PubkeyToAddress(key.PublicKey),
		logger:           logger,
		estimateTimeout:  cfg.GasEstimateTimeout,
		broadcastTimeout: cfg.BroadcastTimeout,
		confirmTimeout:   cfg.ConfirmTimeout,
		pollInterval:     cfg.ReceiptPollInterval,
	}, nil
}

// identitySalt derives the on-chain naming salt from a sanitized form of the
// display name plus a monotonic component, so repeated names cannot collide.
func identitySalt(name string) [32]byte {
	var sanitized strings.Builder
	for _, c := range strings.ToLower(name) {
		if (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9') {
			sanitized.WriteRune(c)
		}
	}

	payload := sanitized.String() + strconv.FormatInt(time.Now().UnixNano(), 10)

	var salt [32]byte
	copy(salt[:], crypto.Keccak256([]byte(payload)))
	return salt
}

var zeroAddress = common.Address{}

// Provision runs the state machine for the given owner address. It is
// idempotent: if the factory already maps the owner to an identity, that
// address is returned without submitting a new transaction. Only phases up
// to CONFIRMING run here; recording is left to the caller so that the
// identity row and the account's cached fields can be written atomically.
func (p *Provisioner) Provision(ctx context.Context, ownerAddress, name, symbol string) (*Result, error) {
	owner := common.HexToAddress(ownerAddress)

	log := p.logger.With("owner", ownerAddress)

	// CHECKING_EXISTING
	log.Debug(ctx, "provisioning phase", "phase", string(PhaseCheckingExisting))
	existing, err := p.identityOf(ctx, owner)
	if err != nil {
		return nil, failed(PhaseCheckingExisting, true, err)
	}
	if existing != zeroAddress {
		log.Info(ctx, "identity already exists on chain", "identity", existing.Hex())
		return &Result{
			IdentityAddress: strings.ToLower(existing.Hex()),
			AlreadyExisted:  true,
		}, nil
	}

	salt := identitySalt(name)

	// ESTIMATING_GAS
	log.Debug(ctx, "provisioning phase", "phase", string(PhaseEstimatingGas))
	ectx, cancel := context.WithTimeout(ctx, p.estimateTimeout)
	gas, err := p.client.EstimateCreateIdentity(ectx, p.deployerAddr, name, symbol, salt)
	cancel()
	if err != nil {
		return nil, failed(PhaseEstimatingGas, true, err)
	}

	// BUILDING_TX
	log.Debug(ctx, "provisioning phase", "phase", string(PhaseBuildingTx))
	tx, err := p.buildTx(ctx, gas, name, symbol, salt)
	if err != nil {
		return nil, failed(PhaseBuildingTx, true, err)
	}

	// SIGNING
	log.Debug(ctx, "provisioning phase", "phase", string(PhaseSigning))
	chainID, err := p.client.ChainID(ctx)
	if err != nil {
		return nil, failed(PhaseSigning, true, err)
	}
	signed, err := types.SignTx(tx, types.LatestSignerForChainID(chainID), p.deployerKey)
	if err != nil {
		return nil, failed(PhaseSigning, true, err)
	}

	// BROADCASTING: no automatic retry here, resubmitting with the same
	// nonce risks a duplicate. The caller re-enters at BUILDING_TX.
	log.Debug(ctx, "provisioning phase", "phase", string(PhaseBroadcasting))
	bctx, cancel := context.WithTimeout(ctx, p.broadcastTimeout)
	err = p.client.SendTransaction(bctx, signed)
	cancel()
	if err != nil {
		return nil, failed(PhaseBroadcasting, false, err)
	}

	txHash := signed.Hash()
	log = log.With("tx", txHash.Hex())

	// CONFIRMING: the transaction may still be mined after a timeout, so
	// the caller must re-query by hash before retrying.
	log.Debug(ctx, "provisioning phase", "phase", string(PhaseConfirming))
	receipt, err := p.waitMined(ctx, txHash)
	if err != nil {
		return nil, failed(PhaseConfirming, false, err)
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return nil, failed(PhaseConfirming, false, fmt.Errorf("transaction reverted"))
	}

	// The factory records the new identity under the owner; read it back.
	created, err := p.identityOf(ctx, owner)
	if err != nil {
		return nil, failed(PhaseConfirming, false, err)
	}
	if created == zeroAddress {
		return nil, failed(PhaseConfirming, false, fmt.Errorf("identity not found after confirmation"))
	}

	log.Info(ctx, "identity provisioned", "identity", created.Hex())

	return &Result{
		IdentityAddress: strings.ToLower(created.Hex()),
		TxHash:          txHash.Hex(),
	}, nil
}

func (p *Provisioner) identityOf(ctx context.Context, owner common.Address) (common.Address, error) {
	cctx, cancel := context.WithTimeout(ctx, p.estimateTimeout)
	defer cancel()
	return p.client.IdentityOf(cctx, owner)
}

func (p *Provisioner) buildTx(ctx context.Context, gas uint64, name, symbol string, salt [32]byte) (*types.Transaction, error) {
	nonce, err := p.client.PendingNonceAt(ctx, p.deployerAddr)
	if err != nil {
		return nil, err
	}

	gasPrice, err := p.client.SuggestGasPrice(ctx)
	if err != nil {
		return nil, err
	}

	data, err := p.client.CreateIdentityCallData(name, symbol, salt)
	if err != nil {
		return nil, err
	}

	factory := p.client.FactoryAddress()

	return types.NewTx(&types.LegacyTx{
		Nonce:    nonce,
		GasPrice: gasPrice,
		Gas:      gas,
		To:       &factory,
		Data:     data,
	}), nil
}

// waitMined polls for the receipt until the confirmation deadline expires.
func (p *Provisioner) waitMined(ctx context.Context, txHash common.Hash) (*types.Receipt, error) {
	cctx, cancel := context.WithTimeout(ctx, p.confirmTimeout)
	defer cancel()

	var receipt *types.Receipt

	backoff := retry.NewConstant(p.pollInterval)
	err := retry.Do(cctx, backoff, func(ctx context.Context) error {
		r, err := p.client.TransactionReceipt(ctx, txHash)
		if err != nil {
			// not mined yet (or transient rpc failure), keep polling
			return retry.RetryableError(err)
		}
		receipt = r
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("confirmation wait: %w", err)
	}

	return receipt, nil
}
