// Package wallet generates secp256k1 keypairs and derives their Ethereum
// addresses. The generator never persists or logs key material; callers must
// hand the private key to cryptox for encryption immediately.
package wallet

import (
	"encoding/hex"
	"strings"

	"github.com/ethereum/go-ethereum/crypto"
)

// Keypair holds a freshly generated wallet.
type Keypair struct {
	// Address is the checksummable account address, normalized to
	// lowercase: "0x" followed by 40 hex characters.
	Address string

	// PrivateKey is the hex-encoded private key with a "0x" prefix.
	PrivateKey string
}

// Generate produces a cryptographically random private key and derives the
// corresponding address via Keccak-256 of the public key.
func Generate() (*Keypair, error) {
	priv, err := crypto.GenerateKey()
	if err != nil {
		return nil, err
	}

	addr := crypto.PubkeyToAddress(priv.PublicKey)

	return &Keypair{
		Address:    strings.ToLower(addr.Hex()),
		PrivateKey: "0x" + hex.EncodeToString(crypto.FromECDSA(priv)),
	}, nil
}
