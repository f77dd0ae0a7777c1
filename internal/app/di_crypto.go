package app

import (
	"context"
	"fmt"

	cryptoDomain "github.com/copp1723/seorylie-sub000/internal/crypto/domain"
	cryptoService "github.com/copp1723/seorylie-sub000/internal/crypto/service"
)

// KeyChain returns the process key chain loaded from configuration. When
// KMS_KEY_URI is set the supplied key material is unwrapped through the
// external keeper first.
func (c *Container) KeyChain() (*cryptoDomain.KeyChain, error) {
	c.keyChainInit.Do(func() {
		chain, err := c.initKeyChain()
		if err != nil {
			c.initErrors["keyChain"] = err
			return
		}
		c.keyChain = chain
	})
	if storedErr, exists := c.initErrors["keyChain"]; exists {
		return nil, storedErr
	}
	return c.keyChain, nil
}

// Cipher returns the cipher service over the key chain.
func (c *Container) Cipher() (cryptoService.Cipher, error) {
	c.cipherInit.Do(func() {
		chain, err := c.KeyChain()
		if err != nil {
			c.initErrors["cipher"] = fmt.Errorf("failed to get key chain for cipher: %w", err)
			return
		}
		c.cipher = cryptoService.NewCipherService(chain, cryptoService.NewAEADManager())
	})
	if storedErr, exists := c.initErrors["cipher"]; exists {
		return nil, storedErr
	}
	return c.cipher, nil
}

// initKeyChain loads the key chain, opening the KMS keeper when configured.
func (c *Container) initKeyChain() (*cryptoDomain.KeyChain, error) {
	ctx := context.Background()

	var unwrapper cryptoDomain.KeyUnwrapper
	if c.config.KMSKeyURI != "" {
		source, err := cryptoService.OpenKeySource(ctx, c.config.KMSKeyURI)
		if err != nil {
			return nil, fmt.Errorf("failed to open key source: %w", err)
		}
		c.keySource = source
		unwrapper = source
	}

	chain, err := cryptoDomain.LoadKeyChain(ctx, c.config, unwrapper, c.Logger())
	if err != nil {
		return nil, fmt.Errorf("failed to load key chain: %w", err)
	}
	return chain, nil
}
