package domain

// Algorithm identifies the AEAD algorithm used for field encryption.
type Algorithm string

const (
	// AESGCM is AES-256-GCM (hardware accelerated on most server CPUs).
	AESGCM Algorithm = "aes-gcm"
	// ChaCha20 is ChaCha20-Poly1305 (better on CPUs without AES-NI).
	ChaCha20 Algorithm = "chacha20-poly1305"
)

// KeySize is the required key length in bytes for both supported algorithms.
const KeySize = 32
