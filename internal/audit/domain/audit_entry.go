// Package domain defines the audit trail entities for PII operations.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Operations recorded in the audit trail. Every mutation and disclosure of a
// PII record emits exactly one entry, including failed attempts.
const (
	OperationIntake        = "pii.intake"
	OperationConsentUpdate = "pii.consent_update"
	OperationRectify       = "pii.rectify"
	OperationErasure       = "pii.erasure"
	OperationExport        = "pii.export"
	OperationAnonymize     = "lifecycle.anonymize"
	OperationPurge         = "lifecycle.purge"
	OperationKeyRotation   = "crypto.key_rotation"
)

// AuditEntry records a PII operation for compliance review. Entries are
// append-only: the domain never updates or deletes them; retention cleanup is
// a separate administrative command.
//
// Detail must be redacted before it reaches the repository. SubjectID is
// uuid.Nil when the operation resolved no record (e.g. an erasure request for
// an unknown address).
type AuditEntry struct {
	ID        uuid.UUID
	Operation string
	SubjectID uuid.UUID
	ActorID   string
	Success   bool
	Detail    map[string]any
	CreatedAt time.Time
}
