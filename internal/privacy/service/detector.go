package service

import (
	"regexp"

	privacyDomain "github.com/copp1723/seorylie-sub000/internal/privacy/domain"
)

// detector pairs a named pattern with its replacement. A nil replace func
// means the match is replaced by the redaction marker.
type detector struct {
	name    string
	re      *regexp.Regexp
	replace func(match string) string
}

// PatternDetector scans free text for PII-shaped substrings.
//
// Detectors run in a fixed order; the first detector to claim a span wins,
// which resolves overlapping matches by precedence rather than surfacing an
// ambiguity error:
//
//	1. email           -> masked (debuggable)
//	2. phone           -> masked (debuggable)
//	3. ssn             -> marker
//	4. credit card     -> marker
//	5. ipv4            -> marker
//	6. date of birth   -> marker
//	7. id code         -> marker
//	8. long alnum      -> marker
//
// The pass is idempotent: the marker and the masked forms do not re-match any
// detector. The generic detectors (7, 8) are intentionally broad and can
// false-positive on structured business codes such as ticket or stock
// numbers; that trade-off is accepted rather than special-cased.
type PatternDetector struct {
	detectors []detector
	marker    string
}

// NewPatternDetector builds the fixed detector registry. Email and phone
// matches are routed through the masker so logs stay debuggable; all other
// matches collapse to the marker.
func NewPatternDetector(masker *Masker) *PatternDetector {
	return &PatternDetector{
		marker: privacyDomain.RedactionMarker,
		detectors: []detector{
			{
				name:    "email",
				re:      regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`),
				replace: masker.MaskEmail,
			},
			{
				name:    "phone",
				re:      regexp.MustCompile(`\+?\d{0,2}[\s.\-]?\(?\d{3}\)?[\s.\-]\d{3}[\s.\-]\d{4}\b|\b\d{10}\b`),
				replace: masker.MaskPhone,
			},
			{
				name: "ssn",
				re:   regexp.MustCompile(`\b\d{3}-\d{2}-\d{4}\b`),
			},
			{
				name: "credit_card",
				re:   regexp.MustCompile(`\b\d{4}[\s\-]\d{4}[\s\-]\d{4}[\s\-]\d{4}\b|\b\d{13,16}\b`),
			},
			{
				name: "ipv4",
				re:   regexp.MustCompile(`\b(?:\d{1,3}\.){3}\d{1,3}\b`),
			},
			{
				name: "date_of_birth",
				re:   regexp.MustCompile(`\b\d{4}-\d{2}-\d{2}\b|\b\d{2}/\d{2}/\d{4}\b`),
			},
			{
				name: "id_code",
				re:   regexp.MustCompile(`\b[A-Z]{1,4}-?\d{5,}\b`),
			},
			{
				name: "long_alnum",
				re:   regexp.MustCompile(`\b[A-Za-z0-9]{20,}\b`),
			},
		},
	}
}

// Scan applies every detector to the text in registry order and returns the
// redacted result. Already-redacted text passes through unchanged.
func (d *PatternDetector) Scan(text string) string {
	for _, det := range d.detectors {
		if det.replace != nil {
			text = det.re.ReplaceAllStringFunc(text, det.replace)
			continue
		}
		text = det.re.ReplaceAllString(text, d.marker)
	}
	return text
}
