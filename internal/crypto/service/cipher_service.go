package service

import (
	"context"
	"sync"

	cryptoDomain "github.com/copp1723/seorylie-sub000/internal/crypto/domain"
)

// CipherService encrypts and decrypts individual PII values against the
// process-wide key chain.
//
// Every encryption uses the current key version and a fresh random nonce, so
// identical plaintexts produce different ciphertexts. Decryption selects the
// key strictly by the envelope's version tag. Derived AEAD instances (key
// schedules, never plaintext) are cached per version; the cache is dropped
// whenever the chain rotates so no call can encrypt under a retired schedule.
type CipherService struct {
	chain       *cryptoDomain.KeyChain
	aeadManager AEADManager

	mu    sync.RWMutex
	cache map[uint32]AEAD
}

// NewCipherService creates a CipherService over the given key chain.
func NewCipherService(chain *cryptoDomain.KeyChain, aeadManager AEADManager) *CipherService {
	return &CipherService{
		chain:       chain,
		aeadManager: aeadManager,
		cache:       make(map[uint32]AEAD),
	}
}

// cipherFor returns the AEAD instance for a key version, creating and caching
// it on first use. Versions outside the chain (current + one previous) fail
// with ErrUnknownKeyVersion.
func (c *CipherService) cipherFor(version uint32) (AEAD, error) {
	c.mu.RLock()
	aead, ok := c.cache[version]
	c.mu.RUnlock()
	if ok {
		return aead, nil
	}

	key, ok := c.chain.Get(version)
	if !ok {
		return nil, cryptoDomain.ErrUnknownKeyVersion
	}

	aead, err := c.aeadManager.CreateCipher(key.Key, c.chain.Algorithm())
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.cache[version] = aead
	c.mu.Unlock()
	return aead, nil
}

// Encrypt encrypts plaintext under the current key version.
func (c *CipherService) Encrypt(ctx context.Context, plaintext []byte) (cryptoDomain.Ciphertext, error) {
	version := c.chain.CurrentVersion()
	aead, err := c.cipherFor(version)
	if err != nil {
		return cryptoDomain.Ciphertext{}, err
	}

	data, nonce, err := aead.Encrypt(plaintext, nil)
	if err != nil {
		return cryptoDomain.Ciphertext{}, err
	}

	return cryptoDomain.Ciphertext{KeyVersion: version, Nonce: nonce, Data: data}, nil
}

// EncryptValue encrypts a string and returns the encoded storage envelope.
func (c *CipherService) EncryptValue(ctx context.Context, plaintext string) ([]byte, error) {
	ct, err := c.Encrypt(ctx, []byte(plaintext))
	if err != nil {
		return nil, err
	}
	return ct.Encode(), nil
}

// Decrypt decrypts a ciphertext, selecting the key by its version tag.
func (c *CipherService) Decrypt(ctx context.Context, ct cryptoDomain.Ciphertext) ([]byte, error) {
	aead, err := c.cipherFor(ct.KeyVersion)
	if err != nil {
		return nil, err
	}

	plaintext, err := aead.Decrypt(ct.Data, ct.Nonce, nil)
	if err != nil {
		return nil, cryptoDomain.ErrDecryptionFailed
	}
	return plaintext, nil
}

// DecryptValue decodes a storage envelope and decrypts it to a string.
func (c *CipherService) DecryptValue(ctx context.Context, raw []byte) (string, error) {
	ct, err := cryptoDomain.DecodeCiphertext(raw)
	if err != nil {
		return "", err
	}

	plaintext, err := c.Decrypt(ctx, ct)
	if err != nil {
		return "", err
	}
	return string(plaintext), nil
}

// LookupHash computes the deterministic equality-lookup hash under the current key.
func (c *CipherService) LookupHash(value string) []byte {
	return c.chain.LookupHash(value)
}

// CurrentKeyVersion reports the version used for new encryption.
func (c *CipherService) CurrentKeyVersion() uint32 {
	return c.chain.CurrentVersion()
}

// Rotate installs new key material as the next version and drops the derived
// cipher cache, so the swap is observed atomically by subsequent calls.
func (c *CipherService) Rotate(material []byte) (uint32, error) {
	version, err := c.chain.Rotate(material)
	if err != nil {
		return 0, err
	}

	c.mu.Lock()
	c.cache = make(map[uint32]AEAD)
	c.mu.Unlock()
	return version, nil
}
