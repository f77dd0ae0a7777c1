// Package domain defines the versioned data key model used for PII field encryption.
//
// Key material is supplied by an external secret source at process start. The
// chain retains the current key plus exactly one previous version so legacy
// ciphertext stays readable across a rotation; older versions are retired.
// Stored ciphertext is not re-encrypted at rotation time: records pick up the
// current key lazily on their next write.
package domain

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	validation "github.com/jellydator/validation"

	"github.com/copp1723/seorylie-sub000/internal/config"
	appValidation "github.com/copp1723/seorylie-sub000/internal/validation"
)

// DataKey represents a versioned symmetric key for PII field encryption.
type DataKey struct {
	Version uint32 // Monotonically increasing; the highest version is current
	Key     []byte // 32-byte key material, never persisted
}

// KeyUnwrapper decrypts KMS-wrapped key material supplied by the external
// secret source. Implemented by the crypto service layer via gocloud.dev/secrets.
type KeyUnwrapper interface {
	Unwrap(ctx context.Context, wrapped []byte) ([]byte, error)
}

// chainState is the immutable snapshot published by a KeyChain. Readers always
// see either the pre-rotation or post-rotation state, never a mix.
type chainState struct {
	current  *DataKey
	previous *DataKey // nil before the first rotation
}

// KeyChain holds the process-wide current and previous data keys.
//
// The chain is read-mostly: every encrypt/decrypt loads the published state,
// and only Rotate replaces it. Rotation builds the complete next state and
// swaps it in with a single atomic store, so no caller ever observes a
// half-rotated chain.
type KeyChain struct {
	state    atomic.Pointer[chainState]
	rotateMu sync.Mutex
	alg      Algorithm
}

// NewKeyChain creates a KeyChain from the supplied keys. The current key is
// required; previous may be nil.
func NewKeyChain(current, previous *DataKey, alg Algorithm) (*KeyChain, error) {
	if current == nil {
		return nil, ErrCurrentKeyNotFound
	}
	if len(current.Key) != KeySize {
		return nil, fmt.Errorf("%w: version %d has %d bytes", ErrInvalidKeySize, current.Version, len(current.Key))
	}
	if previous != nil && len(previous.Key) != KeySize {
		return nil, fmt.Errorf("%w: version %d has %d bytes", ErrInvalidKeySize, previous.Version, len(previous.Key))
	}

	kc := &KeyChain{alg: alg}
	kc.state.Store(&chainState{current: current, previous: previous})
	return kc, nil
}

// Algorithm returns the AEAD algorithm configured for this chain.
func (k *KeyChain) Algorithm() Algorithm {
	return k.alg
}

// CurrentVersion returns the version used for all new encryption.
func (k *KeyChain) CurrentVersion() uint32 {
	return k.state.Load().current.Version
}

// Current returns the current data key.
func (k *KeyChain) Current() *DataKey {
	return k.state.Load().current
}

// Get retrieves a data key by version. Only the current and the retained
// previous version are resolvable; anything else reports not found.
func (k *KeyChain) Get(version uint32) (*DataKey, bool) {
	s := k.state.Load()
	if s.current.Version == version {
		return s.current, true
	}
	if s.previous != nil && s.previous.Version == version {
		return s.previous, true
	}
	return nil, false
}

// Rotate installs new key material as version current+1. The old current key
// is demoted to previous and the old previous key is retired and wiped.
// Stored ciphertext is not re-encrypted here; records re-encrypt lazily on
// their next write.
func (k *KeyChain) Rotate(material []byte) (uint32, error) {
	if len(material) != KeySize {
		return 0, fmt.Errorf("%w: rotation material has %d bytes", ErrInvalidKeySize, len(material))
	}

	k.rotateMu.Lock()
	defer k.rotateMu.Unlock()

	old := k.state.Load()
	key := make([]byte, KeySize)
	copy(key, material)

	next := &chainState{
		current:  &DataKey{Version: old.current.Version + 1, Key: key},
		previous: old.current,
	}
	k.state.Store(next)

	if old.previous != nil {
		Zero(old.previous.Key)
	}
	return next.current.Version, nil
}

// LookupHash computes a deterministic HMAC-SHA256 of value under the current
// key. Used for equality lookups (e.g., matching an erasure request's email)
// where nondeterministic AEAD output cannot serve. Hashes computed under a
// retired key will not match until the record is rewritten.
func (k *KeyChain) LookupHash(value string) []byte {
	mac := hmac.New(sha256.New, k.state.Load().current.Key)
	mac.Write([]byte(strings.ToLower(strings.TrimSpace(value))))
	return mac.Sum(nil)
}

// Close wipes all key material and leaves the chain unusable.
func (k *KeyChain) Close() {
	s := k.state.Load()
	if s == nil {
		return
	}
	Zero(s.current.Key)
	if s.previous != nil {
		Zero(s.previous.Key)
	}
}

// LoadKeyChain builds the process key chain from configuration.
//
// PII_KEYS carries entries in "version:base64key" format, comma separated.
// PII_CURRENT_KEY_VERSION selects the current key; the highest version below
// it (when present) is retained as previous and everything older is discarded.
// When KMS_KEY_URI is configured each decoded entry is unwrapped through the
// external keeper before use. Any defect in the material is fatal.
func LoadKeyChain(
	ctx context.Context,
	cfg *config.Config,
	unwrapper KeyUnwrapper,
	logger *slog.Logger,
) (*KeyChain, error) {
	if cfg.PIIKeys == "" {
		return nil, ErrKeysNotSet
	}
	if cfg.PIICurrentKeyVersion == 0 {
		return nil, ErrCurrentKeyVersionNotSet
	}

	keys := make([]*DataKey, 0, 2)
	for part := range strings.SplitSeq(cfg.PIIKeys, ",") {
		p := strings.SplitN(strings.TrimSpace(part), ":", 2)
		if len(p) != 2 {
			return nil, fmt.Errorf("%w: %q", ErrInvalidKeyMaterial, part)
		}

		version, err := strconv.ParseUint(p[0], 10, 32)
		if err != nil || version == 0 {
			return nil, fmt.Errorf("%w: bad version %q", ErrInvalidKeyMaterial, p[0])
		}

		if err := validation.Validate(p[1], appValidation.Base64); err != nil {
			return nil, fmt.Errorf("%w: key material for version %d: %v", ErrInvalidKeyMaterial, version, err)
		}

		material, err := base64.StdEncoding.DecodeString(p[1])
		if err != nil {
			return nil, fmt.Errorf("%w: base64 decode for version %d: %v", ErrInvalidKeyMaterial, version, err)
		}

		if cfg.KMSKeyURI != "" && unwrapper != nil {
			unwrapped, err := unwrapper.Unwrap(ctx, material)
			Zero(material)
			if err != nil {
				return nil, fmt.Errorf("%w: kms unwrap for version %d: %v", ErrInvalidKeyMaterial, version, err)
			}
			material = unwrapped
		}

		if len(material) != KeySize {
			Zero(material)
			return nil, fmt.Errorf("%w: version %d has %d bytes", ErrInvalidKeySize, version, len(material))
		}

		keys = append(keys, &DataKey{Version: uint32(version), Key: material})
	}

	sort.Slice(keys, func(i, j int) bool { return keys[i].Version > keys[j].Version })

	var current, previous *DataKey
	for _, key := range keys {
		switch {
		case key.Version == uint32(cfg.PIICurrentKeyVersion):
			current = key
		case key.Version < uint32(cfg.PIICurrentKeyVersion) && previous == nil:
			previous = key
		default:
			// Retired or future version: discard.
			Zero(key.Key)
		}
	}

	if current == nil {
		if previous != nil {
			Zero(previous.Key)
		}
		return nil, fmt.Errorf("%w: PII_CURRENT_KEY_VERSION=%d", ErrCurrentKeyNotFound, cfg.PIICurrentKeyVersion)
	}

	kc, err := NewKeyChain(current, previous, AESGCM)
	if err != nil {
		return nil, err
	}

	logger.Info("key chain loaded",
		slog.Uint64("current_version", uint64(current.Version)),
		slog.Bool("has_previous", previous != nil),
		slog.Bool("kms_wrapped", cfg.KMSKeyURI != ""),
	)
	return kc, nil
}
