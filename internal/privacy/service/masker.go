// Package service implements the PII protection services: masking, pattern
// detection, field classification, and the recursive redaction engine.
package service

import (
	"strings"

	privacyDomain "github.com/copp1723/seorylie-sub000/internal/privacy/domain"
)

// fullMask replaces values that cannot be partially masked without revealing
// too much (short inputs, unknown kinds).
const fullMask = "***"

// Masker applies one-way, format-preserving partial obfuscation for display
// and log output. Masking is lossy and distinct from encryption: output never
// fully reveals the input but keeps enough structure to stay debuggable.
// Masked output is a fixed point of the pattern detectors, so re-masking or
// re-scanning masked text is a no-op.
type Masker struct{}

// NewMasker creates a Masker.
func NewMasker() *Masker {
	return &Masker{}
}

// Mask dispatches to the rule for the given kind. Unknown kinds return the
// full mask rather than echoing the input.
func (m *Masker) Mask(value string, kind privacyDomain.MaskKind) (string, error) {
	switch kind {
	case privacyDomain.MaskKindEmail:
		return m.MaskEmail(value), nil
	case privacyDomain.MaskKindPhone:
		return m.MaskPhone(value), nil
	case privacyDomain.MaskKindName:
		return m.MaskName(value), nil
	default:
		return fullMask, privacyDomain.ErrUnknownMaskKind
	}
}

// MaskEmail keeps the first local-part character and the full domain:
// "john.doe@example.com" becomes "j***@example.com". Values without a
// usable local part or domain collapse to the full mask.
func (m *Masker) MaskEmail(value string) string {
	at := strings.LastIndex(value, "@")
	if at < 1 || at == len(value)-1 {
		return fullMask
	}

	local := []rune(value[:at])
	return string(local[0]) + fullMask + value[at:]
}

// MaskPhone masks all but the last four digits, preserving separator
// structure: "555-123-4567" becomes "***-***-4567". Numbers with four or
// fewer digits collapse to the full mask.
func (m *Masker) MaskPhone(value string) string {
	digits := 0
	for _, r := range value {
		if r >= '0' && r <= '9' {
			digits++
		}
	}
	if digits <= 4 {
		return fullMask
	}

	var b strings.Builder
	seen := 0
	for _, r := range value {
		if r >= '0' && r <= '9' {
			seen++
			if seen <= digits-4 {
				b.WriteRune('*')
				continue
			}
		}
		b.WriteRune(r)
	}
	return b.String()
}

// MaskName keeps each token's initial: "Jane Doe" becomes "J*** D***".
func (m *Masker) MaskName(value string) string {
	tokens := strings.Fields(value)
	if len(tokens) == 0 {
		return fullMask
	}

	masked := make([]string, 0, len(tokens))
	for _, token := range tokens {
		runes := []rune(token)
		masked = append(masked, string(runes[0])+fullMask)
	}
	return strings.Join(masked, " ")
}
