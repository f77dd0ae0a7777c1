package service

import (
	privacyDomain "github.com/copp1723/seorylie-sub000/internal/privacy/domain"
)

// RedactionEngine combines the field classifier and the pattern detector into
// a pure, total, recursive pass over tagged values.
//
// Rules, applied per node:
//   - non-string primitives pass through unchanged
//   - strings run through the pattern detector
//   - sequences map recursively, order preserved
//   - mapping entries whose key the classifier flags are replaced entirely by
//     the marker, whatever their shape; other string values run through the
//     detector; other containers recurse
//   - containers nested beyond the policy's depth bound collapse to a
//     placeholder instead of descending further
//
// The engine never mutates its input, never fails on well-formed input, and
// is idempotent on its own output. The same pass serves outbound request,
// response, header, and query logging as well as ad hoc payloads.
type RedactionEngine struct {
	policy     *privacyDomain.RedactionPolicy
	classifier *FieldClassifier
	detector   *PatternDetector
}

// NewRedactionEngine builds an engine over the given policy. The classifier
// dictionary is the built-in set extended by the policy's extra tokens.
func NewRedactionEngine(policy *privacyDomain.RedactionPolicy, masker *Masker) *RedactionEngine {
	if policy == nil {
		policy = privacyDomain.DefaultRedactionPolicy()
	}
	return &RedactionEngine{
		policy:     policy,
		classifier: NewFieldClassifier(policy.ExtraTokens()...),
		detector:   NewPatternDetector(masker),
	}
}

// Redact returns the redacted form of the value.
func (e *RedactionEngine) Redact(value privacyDomain.Value) privacyDomain.Value {
	return e.redact(value, "", 0)
}

// RedactAny converts a JSON-shaped Go value, redacts it, and converts back.
func (e *RedactionEngine) RedactAny(raw any) any {
	return e.Redact(privacyDomain.FromAny(raw)).ToAny()
}

// RedactString applies the pattern detector pass to a bare string.
func (e *RedactionEngine) RedactString(text string) string {
	return e.detector.Scan(text)
}

func (e *RedactionEngine) redact(value privacyDomain.Value, path string, depth int) privacyDomain.Value {
	switch value.Kind() {
	case privacyDomain.KindNull, privacyDomain.KindBool, privacyDomain.KindNumber:
		return value

	case privacyDomain.KindString:
		return privacyDomain.StringValue(e.detector.Scan(value.String()))

	case privacyDomain.KindSequence:
		if depth >= e.policy.MaxDepth() {
			return privacyDomain.StringValue(privacyDomain.DepthPlaceholder)
		}
		items := make([]privacyDomain.Value, 0, len(value.Sequence()))
		for _, item := range value.Sequence() {
			items = append(items, e.redact(item, path, depth+1))
		}
		return privacyDomain.SequenceValue(items...)

	case privacyDomain.KindMapping:
		if depth >= e.policy.MaxDepth() {
			return privacyDomain.StringValue(privacyDomain.DepthPlaceholder)
		}
		entries := make([]privacyDomain.Entry, 0, len(value.Mapping()))
		for _, entry := range value.Mapping() {
			childPath := joinPath(path, entry.Key)
			if !e.policy.IsExcluded(childPath) && e.classifier.IsSensitive(entry.Key) {
				entries = append(entries, privacyDomain.Entry{
					Key:   entry.Key,
					Value: privacyDomain.StringValue(e.policy.Marker()),
				})
				continue
			}
			entries = append(entries, privacyDomain.Entry{
				Key:   entry.Key,
				Value: e.redact(entry.Value, childPath, depth+1),
			})
		}
		return privacyDomain.MappingValue(entries...)

	default:
		return privacyDomain.Null()
	}
}

func joinPath(parent, key string) string {
	if parent == "" {
		return key
	}
	return parent + "." + key
}
