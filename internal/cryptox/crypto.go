// Package cryptox implements the credential and key-custody primitives:
// bcrypt password hashing/verification, argon2id key derivation, and AES-GCM
// encryption of wallet private keys at rest.
//
// Decryption fails closed: a wrong password or tampered ciphertext yields
// common.ErrDecryption, never a fallback value.
package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"fmt"

	"github.com/dmitrijs2005/walletkeeper/internal/common"
	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/bcrypt"
)

const (
	// SaltSize is the length of the per-secret random salt in bytes.
	SaltSize = 16

	keySize   = 32
	nonceSize = 12

	// bcrypt cost tuned so verification takes tens of milliseconds.
	bcryptCost = 12
)

// HashPassword produces a salted, one-way bcrypt hash of the plaintext
// password. The hash embeds its own salt and cost factor.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", fmt.Errorf("error hashing password: %w", err)
	}
	return string(hash), nil
}

// VerifyPassword reports whether the plaintext password matches the stored
// bcrypt hash. It never returns an error on mismatch, only false.
func VerifyPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// DeriveKey derives a 32-byte symmetric key from a password using argon2id.
// If salt is nil, a fresh random 16-byte salt is generated. The same
// (password, salt) pair always yields the same key, which is required for
// later decryption.
func DeriveKey(password []byte, salt []byte) (key, usedSalt []byte) {
	if salt == nil {
		salt = common.GenerateRandByteArray(SaltSize)
	}
	key = argon2.IDKey(password, salt, 1, 64*1024, 4, keySize)
	return key, salt
}

// EncryptSecret encrypts plaintext with a key derived from the password and
// a freshly generated random salt. The returned blob is nonce||ciphertext;
// the salt is returned separately and must be stored alongside the blob.
func EncryptSecret(plaintext, password []byte) (blob, salt []byte, err error) {
	key, salt := DeriveKey(password, nil)
	defer common.WipeByteArray(key)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", common.ErrEncryption, err)
	}

	aesgcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", common.ErrEncryption, err)
	}

	nonce := common.GenerateRandByteArray(nonceSize)
	ciphertext := aesgcm.Seal(nil, nonce, plaintext, nil)

	return append(nonce, ciphertext...), salt, nil
}

// DecryptSecret re-derives the key from the password and stored salt, then
// decrypts and authenticates the blob produced by EncryptSecret. A wrong
// password or tampered ciphertext yields common.ErrDecryption.
func DecryptSecret(blob, salt, password []byte) ([]byte, error) {
	if len(blob) < nonceSize {
		return nil, common.ErrDecryption
	}

	key, _ := DeriveKey(password, salt)
	defer common.WipeByteArray(key)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrDecryption, err)
	}

	aesgcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrDecryption, err)
	}

	nonce, ciphertext := blob[:nonceSize], blob[nonceSize:]

	plaintext, err := aesgcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		// Authentication failure: wrong password or tampered data.
		return nil, common.ErrDecryption
	}

	return plaintext, nil
}
