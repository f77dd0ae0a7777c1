package service

import (
	"context"
	"fmt"

	"gocloud.dev/secrets"

	// Register the secret keeper drivers for the supported providers.
	_ "gocloud.dev/secrets/awskms"
	_ "gocloud.dev/secrets/azurekeyvault"
	_ "gocloud.dev/secrets/gcpkms"
	_ "gocloud.dev/secrets/hashivault"
	_ "gocloud.dev/secrets/localsecrets"
)

// KeySource unwraps KMS-wrapped data key material supplied by the external
// secret store. It implements cryptoDomain.KeyUnwrapper.
type KeySource struct {
	keeper *secrets.Keeper
}

// OpenKeySource opens a secrets keeper for the configured provider URI.
// Supports: gcpkms://, awskms://, azurekeyvault://, hashivault://, base64key://.
// A cold-start fetch failure is fatal; the caller must not proceed without
// usable key material.
func OpenKeySource(ctx context.Context, keyURI string) (*KeySource, error) {
	keeper, err := secrets.OpenKeeper(ctx, keyURI)
	if err != nil {
		return nil, fmt.Errorf("failed to open key source %q: %w", keyURI, err)
	}
	return &KeySource{keeper: keeper}, nil
}

// Unwrap decrypts wrapped key material through the keeper. The context bounds
// the external call so a secret-store stall cannot hang startup indefinitely.
func (k *KeySource) Unwrap(ctx context.Context, wrapped []byte) ([]byte, error) {
	material, err := k.keeper.Decrypt(ctx, wrapped)
	if err != nil {
		return nil, fmt.Errorf("failed to unwrap key material: %w", err)
	}
	return material, nil
}

// Wrap encrypts raw key material through the keeper so it can be stored in
// configuration. The inverse of Unwrap.
func (k *KeySource) Wrap(ctx context.Context, material []byte) ([]byte, error) {
	wrapped, err := k.keeper.Encrypt(ctx, material)
	if err != nil {
		return nil, fmt.Errorf("failed to wrap key material: %w", err)
	}
	return wrapped, nil
}

// Close releases the underlying keeper.
func (k *KeySource) Close() error {
	return k.keeper.Close()
}
