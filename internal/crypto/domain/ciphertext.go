package domain

import (
	"encoding/binary"
	"fmt"
)

// envelopeFormatV1 tags the binary envelope layout. Bumped only if the layout changes.
const envelopeFormatV1 = 0x01

// Ciphertext is an encrypted value tagged with the key version that produced
// it. The version tag selects the decryption key; an unknown tag is a hard
// decryption failure, never a guess.
type Ciphertext struct {
	KeyVersion uint32
	Nonce      []byte
	Data       []byte // AEAD output, authentication tag included
}

// Encode serializes the ciphertext into an opaque binary envelope suitable
// for storage in a bytea/blob column:
//
//	[1-byte format tag][4-byte big-endian key version][1-byte nonce length][nonce][data]
func (c Ciphertext) Encode() []byte {
	out := make([]byte, 0, 6+len(c.Nonce)+len(c.Data))
	out = append(out, envelopeFormatV1)
	out = binary.BigEndian.AppendUint32(out, c.KeyVersion)
	out = append(out, byte(len(c.Nonce)))
	out = append(out, c.Nonce...)
	out = append(out, c.Data...)
	return out
}

// DecodeCiphertext parses a stored envelope. A malformed or truncated envelope
// (including plaintext sentinel bytes in an anonymized row) fails with
// ErrDecryptionFailed.
func DecodeCiphertext(raw []byte) (Ciphertext, error) {
	if len(raw) < 6 {
		return Ciphertext{}, fmt.Errorf("%w: envelope too short", ErrDecryptionFailed)
	}
	if raw[0] != envelopeFormatV1 {
		return Ciphertext{}, fmt.Errorf("%w: unknown envelope format 0x%02x", ErrDecryptionFailed, raw[0])
	}

	version := binary.BigEndian.Uint32(raw[1:5])
	nonceLen := int(raw[5])
	if len(raw) < 6+nonceLen {
		return Ciphertext{}, fmt.Errorf("%w: truncated nonce", ErrDecryptionFailed)
	}

	return Ciphertext{
		KeyVersion: version,
		Nonce:      raw[6 : 6+nonceLen],
		Data:       raw[6+nonceLen:],
	}, nil
}
