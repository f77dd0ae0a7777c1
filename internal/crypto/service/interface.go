// Package service provides the cipher services used for PII field encryption.
// Implements AEAD ciphers (AES-256-GCM, ChaCha20-Poly1305) over the versioned
// key chain, plus the external key source used to unwrap wrapped key material.
package service

import (
	"context"

	cryptoDomain "github.com/copp1723/seorylie-sub000/internal/crypto/domain"
)

// AEAD defines the interface for Authenticated Encryption with Associated Data.
type AEAD interface {
	// Encrypt encrypts plaintext with optional AAD and returns ciphertext and nonce.
	Encrypt(plaintext, aad []byte) (ciphertext, nonce []byte, err error)

	// Decrypt decrypts ciphertext using the provided nonce and AAD.
	Decrypt(ciphertext, nonce, aad []byte) ([]byte, error)
}

// AEADManager defines the interface for creating AEAD cipher instances.
type AEADManager interface {
	// CreateCipher creates an AEAD cipher instance for the specified algorithm.
	CreateCipher(key []byte, alg cryptoDomain.Algorithm) (AEAD, error)
}

// Cipher encrypts and decrypts individual PII values against the key chain.
type Cipher interface {
	// Encrypt encrypts plaintext under the current key version. Two calls on
	// identical input produce different ciphertexts (fresh random nonce).
	Encrypt(ctx context.Context, plaintext []byte) (cryptoDomain.Ciphertext, error)

	// EncryptValue encrypts a string and returns the encoded storage envelope.
	EncryptValue(ctx context.Context, plaintext string) ([]byte, error)

	// Decrypt selects the key by the ciphertext's version tag and decrypts.
	// An unknown version is ErrUnknownKeyVersion, never a guess.
	Decrypt(ctx context.Context, ct cryptoDomain.Ciphertext) ([]byte, error)

	// DecryptValue decodes a storage envelope and decrypts it to a string.
	DecryptValue(ctx context.Context, raw []byte) (string, error)

	// LookupHash computes the deterministic equality-lookup hash of a value
	// under the current key.
	LookupHash(value string) []byte

	// CurrentKeyVersion reports the version used for new encryption.
	CurrentKeyVersion() uint32

	// Rotate installs new key material as the next version and invalidates
	// cached cipher instances.
	Rotate(material []byte) (uint32, error)
}
