package models

import "time"

// Wallet stores the encrypted private key of an account's wallet. The raw
// key never touches the database: EncryptedPrivateKey is an AES-GCM blob
// (nonce||ciphertext) sealed under a key derived from the owner's password
// and KeySalt. Exactly one wallet per account.
type Wallet struct {
	ID                  string
	Address             string
	EncryptedPrivateKey []byte
	KeySalt             []byte
	AccountID           string
	CreatedAt           time.Time
	LastUsed            *time.Time
}
