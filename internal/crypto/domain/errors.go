package domain

import (
	"github.com/copp1723/seorylie-sub000/internal/errors"
)

// Cryptographic error definitions.
//
// Startup errors wrap ErrConfiguration and are fatal: the process must not
// start without valid key material. Per-value decryption errors wrap
// ErrInvalidInput and are recoverable: a batch skips the record and continues.
var (
	// ErrKeysNotSet indicates no data key material was configured.
	ErrKeysNotSet = errors.Wrap(errors.ErrConfiguration, "PII_KEYS not set")

	// ErrCurrentKeyVersionNotSet indicates the current key version was not configured.
	ErrCurrentKeyVersionNotSet = errors.Wrap(errors.ErrConfiguration, "PII_CURRENT_KEY_VERSION not set")

	// ErrInvalidKeyMaterial indicates key material could not be parsed or decoded.
	ErrInvalidKeyMaterial = errors.Wrap(errors.ErrConfiguration, "invalid key material")

	// ErrInvalidKeySize indicates a data key is not exactly 32 bytes.
	ErrInvalidKeySize = errors.Wrap(errors.ErrConfiguration, "invalid key size")

	// ErrCurrentKeyNotFound indicates the configured current version has no key material.
	ErrCurrentKeyNotFound = errors.Wrap(errors.ErrConfiguration, "current key version not found")

	// ErrUnsupportedAlgorithm indicates the requested AEAD algorithm is not supported.
	ErrUnsupportedAlgorithm = errors.Wrap(errors.ErrInvalidInput, "unsupported algorithm")

	// ErrUnknownKeyVersion indicates a ciphertext references a key version that
	// is neither current nor the retained previous version. Decryption fails
	// loudly rather than guessing a key.
	ErrUnknownKeyVersion = errors.Wrap(errors.ErrInvalidInput, "unknown key version")

	// ErrDecryptionFailed indicates an authentication failure, corrupt
	// ciphertext, or malformed envelope. The specific cause is not disclosed.
	ErrDecryptionFailed = errors.Wrap(errors.ErrInvalidInput, "decryption failed")
)
