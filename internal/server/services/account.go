// Package services contains server-side business logic. This file implements
// AccountService, which handles registration, login, token validation, and
// decrypting stored wallet keys for export.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/walletkeeper/internal/common"
	"github.com/dmitrijs2005/walletkeeper/internal/cryptox"
	"github.com/dmitrijs2005/walletkeeper/internal/dbx"
	"github.com/dmitrijs2005/walletkeeper/internal/logging"
	"github.com/dmitrijs2005/walletkeeper/internal/server/auth"
	"github.com/dmitrijs2005/walletkeeper/internal/server/config"
	"github.com/dmitrijs2005/walletkeeper/internal/server/models"
	"github.com/dmitrijs2005/walletkeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/walletkeeper/internal/wallet"
)

// AccountSummary is the public projection of an account returned to clients.
// It never includes the password hash or any key material.
type AccountSummary struct {
	ID              string
	Email           string
	Username        string
	WalletAddress   string
	IdentityAddress *string
}

// LoginResult bundles a freshly minted bearer token with the account summary.
type LoginResult struct {
	Token   string
	Account *AccountSummary
}

// AccountService provides account lifecycle operations:
// - Register: create an account with a generated, encrypted wallet
// - Login: verify credentials and mint a bearer token
// - ValidateToken: resolve a bearer token back to its account
// - DecryptWalletKey: recover the plaintext private key for export
type AccountService struct {
	db                    *sql.DB
	repomanager           repomanager.RepositoryManager
	jwtSecret             []byte
	tokenValidityDuration time.Duration
	logger                logging.Logger
}

// NewAccountService constructs an AccountService using repositories and
// server config.
func NewAccountService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config, logger logging.Logger) *AccountService {
	return &AccountService{
		db:                    db,
		repomanager:           m,
		jwtSecret:             []byte(cfg.SecretKey),
		tokenValidityDuration: cfg.TokenValidityDuration,
		logger:                logger,
	}
}

func summarize(a *models.Account) *AccountSummary {
	return &AccountSummary{
		ID:              a.ID,
		Email:           a.Email,
		Username:        a.Username,
		WalletAddress:   a.WalletAddress,
		IdentityAddress: a.IdentityAddress,
	}
}

// Register validates and normalizes the credentials, generates a wallet,
// encrypts its private key under the account password, and writes the
// account and wallet rows in one transaction. Duplicate email/username
// surface as the typed duplicate errors from the storage layer.
func (s *AccountService) Register(ctx context.Context, email, username, password string) (*AccountSummary, error) {
	email, err := models.NormalizeEmail(email)
	if err != nil {
		return nil, err
	}
	username, err = models.NormalizeUsername(username)
	if err != nil {
		return nil, err
	}
	if err := models.ValidatePassword(password); err != nil {
		return nil, err
	}

	passwordHash, err := cryptox.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %v", err)
	}

	kp, err := wallet.Generate()
	if err != nil {
		return nil, fmt.Errorf("error generating wallet: %v", err)
	}

	privKey := []byte(kp.PrivateKey)
	blob, salt, err := cryptox.EncryptSecret(privKey, []byte(password))
	common.WipeByteArray(privKey)
	if err != nil {
		return nil, fmt.Errorf("error encrypting wallet key: %v", err)
	}

	var created *models.Account
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		account := &models.Account{
			Email:         email,
			Username:      username,
			PasswordHash:  passwordHash,
			WalletAddress: kp.Address,
		}
		a, err := s.repomanager.Accounts(tx).Create(ctx, account)
		if err != nil {
			return err
		}

		w := &models.Wallet{
			Address:             kp.Address,
			EncryptedPrivateKey: blob,
			KeySalt:             salt,
			AccountID:           a.ID,
		}
		if _, err := s.repomanager.Wallets(tx).Create(ctx, w); err != nil {
			return err
		}

		created = a
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "account registered",
		"account_id", created.ID, "username", created.Username, "wallet", created.WalletAddress)

	return summarize(created), nil
}

// Login verifies the password against the stored hash and, on success,
// updates the last-login timestamp and returns a bearer token. Unknown
// usernames and wrong passwords both yield ErrInvalidCredentials so the
// response does not reveal which accounts exist.
func (s *AccountService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	username, err := models.NormalizeUsername(username)
	if err != nil {
		return nil, common.ErrInvalidCredentials
	}

	repo := s.repomanager.Accounts(s.db)
	account, err := repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrInvalidCredentials
		}
		return nil, common.ErrorInternal
	}
	if !account.IsActive {
		return nil, common.ErrInvalidCredentials
	}
	if !cryptox.VerifyPassword(password, account.PasswordHash) {
		return nil, common.ErrInvalidCredentials
	}

	if err := repo.UpdateLastLogin(ctx, account.ID, time.Now().UTC()); err != nil {
		// non-fatal; the login itself succeeded
		s.logger.Warn(ctx, "failed to update last login", "account_id", account.ID, "error", err.Error())
	}

	token, err := auth.GenerateToken(account.Username, s.jwtSecret, s.tokenValidityDuration)
	if err != nil {
		return nil, common.ErrorInternal
	}

	return &LoginResult{Token: token, Account: summarize(account)}, nil
}

// ValidateToken resolves a bearer token to its account. Expired tokens yield
// ErrTokenExpired, any other verification failure ErrInvalidToken; a token
// whose subject no longer matches an active account is also invalid.
func (s *AccountService) ValidateToken(ctx context.Context, token string) (*AccountSummary, error) {
	subject, err := auth.GetSubjectFromToken(token, s.jwtSecret)
	if err != nil {
		return nil, err
	}

	account, err := s.repomanager.Accounts(s.db).GetByUsername(ctx, subject)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrInvalidToken
		}
		return nil, common.ErrorInternal
	}
	if !account.IsActive {
		return nil, common.ErrInvalidToken
	}

	return summarize(account), nil
}

// GetByUsername returns the public directory entry for a username.
func (s *AccountService) GetByUsername(ctx context.Context, username string) (*AccountSummary, error) {
	username, err := models.NormalizeUsername(username)
	if err != nil {
		return nil, err
	}
	account, err := s.repomanager.Accounts(s.db).GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	return summarize(account), nil
}

// GetByWalletAddress returns the public directory entry for a wallet address.
func (s *AccountService) GetByWalletAddress(ctx context.Context, address string) (*AccountSummary, error) {
	address, err := models.NormalizeAddress(address)
	if err != nil {
		return nil, err
	}
	account, err := s.repomanager.Accounts(s.db).GetByWalletAddress(ctx, address)
	if err != nil {
		return nil, err
	}
	return summarize(account), nil
}

// DecryptWalletKey verifies the password and returns the plaintext private
// key of the account's wallet. A wrong password yields ErrInvalidCredentials;
// a blob that fails to open under the verified password is a fatal storage
// problem and surfaces as ErrDecryption, never as a substitute key. The
// caller owns the returned slice and should wipe it when done.
func (s *AccountService) DecryptWalletKey(ctx context.Context, accountID, password string) ([]byte, error) {
	account, err := s.repomanager.Accounts(s.db).GetByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, common.ErrorInternal
	}
	if !cryptox.VerifyPassword(password, account.PasswordHash) {
		return nil, common.ErrInvalidCredentials
	}

	walletsRepo := s.repomanager.Wallets(s.db)
	w, err := walletsRepo.GetByAccountID(ctx, accountID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, common.ErrorInternal
	}

	key, err := cryptox.DecryptSecret(w.EncryptedPrivateKey, w.KeySalt, []byte(password))
	if err != nil {
		if errors.Is(err, common.ErrDecryption) {
			// the password was already verified against the hash, so this
			// envelope is damaged; retrying credentials cannot help
			s.logger.Error(ctx, "wallet key envelope failed to open",
				"wallet_id", w.ID, "account_id", accountID)
			return nil, fmt.Errorf("wallet %s: %w", w.ID, common.ErrDecryption)
		}
		return nil, common.ErrorInternal
	}

	if err := walletsRepo.UpdateLastUsed(ctx, w.ID, time.Now().UTC()); err != nil {
		s.logger.Warn(ctx, "failed to update wallet last used", "wallet_id", w.ID, "error", err.Error())
	}

	return key, nil
}
