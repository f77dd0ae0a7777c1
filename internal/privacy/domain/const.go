package domain

// Sentinel values written over PII fields when a record leaves the Active
// state. The two lifecycle paths use distinct sentinels so an audit can tell
// a scheduled expiry from a subject-initiated erasure.
const (
	// AnonymizedSentinel overwrites PII fields during a scheduled retention sweep.
	AnonymizedSentinel = "[ANONYMIZED]"

	// ErasedSentinel overwrites PII fields on an explicit erasure request.
	ErasedSentinel = "[ERASED]"
)

// RedactionMarker replaces sensitive content detected in logged or exported
// payloads. It is a fixed point of the pattern detectors, which makes the
// redaction pass idempotent.
const RedactionMarker = "[REDACTED]"

// DepthPlaceholder replaces subtrees nested beyond the redaction depth bound.
const DepthPlaceholder = "[TRUNCATED]"

// MaskKind selects the masking rule applied by the masking service.
type MaskKind string

const (
	MaskKindEmail MaskKind = "email"
	MaskKindPhone MaskKind = "phone"
	MaskKindName  MaskKind = "name"
)

// Lifecycle transition reason tags recorded in audit entries.
const (
	ReasonScheduledExpiry = "scheduled_expiry"
	ReasonErasureRequest  = "erasure_request"
	ReasonScheduledPurge  = "scheduled_purge"
)
