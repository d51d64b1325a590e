// Package models defines the persisted entities of the account directory
// (Account, Wallet, Identity) and the normalization/validation rules applied
// to their fields before storage and lookup.
package models

import "time"

// Account is a registered user. Email and username are stored normalized to
// lowercase and are globally unique; the wallet address is set at creation
// and immutable thereafter. IdentityAddress and IdentityCreatedAt cache the
// owned Identity record for fast lookup and are written in the same
// transaction as the Identity row.
type Account struct {
	ID                string
	Email             string
	Username          string
	PasswordHash      string
	WalletAddress     string
	IsActive          bool
	CreatedAt         time.Time
	LastLogin         *time.Time
	IdentityAddress   *string
	IdentityCreatedAt *time.Time
}
