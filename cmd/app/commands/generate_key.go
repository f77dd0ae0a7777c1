package commands

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"
)

// KeyWrapper encrypts generated key material with an external KMS before
// output. *cryptoService.KeySource satisfies it.
type KeyWrapper interface {
	Wrap(ctx context.Context, material []byte) ([]byte, error)
}

// RunGenerateKey generates a cryptographically secure 32-byte data key and
// prints it as environment variable configuration. Key material is zeroed from
// memory after encoding.
//
// When wrapper is non-nil the key is encrypted with KMS before output and the
// printed configuration includes the keeper URI. Without a wrapper the key is
// printed in plaintext, which is only acceptable for local development.
//
// Output format:
//   - PII_KEYS="<version>:<base64-encoded-key>"
//   - PII_CURRENT_KEY_VERSION="<version>"
//   - KMS_KEY_URI="<uri>" (KMS mode only)
func RunGenerateKey(ctx context.Context, wrapper KeyWrapper, out io.Writer, version int, kmsKeyURI string) error {
	if version < 1 {
		return fmt.Errorf("version must be 1 or greater, got: %d", version)
	}

	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		return fmt.Errorf("failed to generate key: %w", err)
	}

	material := key
	if wrapper != nil {
		wrapped, err := wrapper.Wrap(ctx, key)
		if err != nil {
			return fmt.Errorf("failed to wrap key with KMS: %w", err)
		}
		material = wrapped
	}

	encodedKey := base64.StdEncoding.EncodeToString(material)

	if wrapper != nil {
		fmt.Fprintln(out, "# Data Key Configuration (KMS Mode)")
	} else {
		fmt.Fprintln(out, "# Data Key Configuration (plaintext, local development only)")
	}
	fmt.Fprintln(out, "# Copy these environment variables to your .env file or secrets manager")
	fmt.Fprintln(out)
	if kmsKeyURI != "" {
		fmt.Fprintf(out, "KMS_KEY_URI=\"%s\"\n", kmsKeyURI)
	}
	fmt.Fprintf(out, "PII_KEYS=\"%d:%s\"\n", version, encodedKey)
	fmt.Fprintf(out, "PII_CURRENT_KEY_VERSION=\"%d\"\n", version)
	fmt.Fprintln(out)
	fmt.Fprintln(out, "# For key rotation, append the new version and bump the current version:")
	fmt.Fprintf(out, "# PII_KEYS=\"%d:%s,%d:<base64-encoded-key>\"\n", version, encodedKey, version+1)
	fmt.Fprintf(out, "# PII_CURRENT_KEY_VERSION=\"%d\"\n", version+1)

	// Zero out the raw key from memory
	for i := range key {
		key[i] = 0
	}

	return nil
}
