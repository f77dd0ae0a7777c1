// Package domain defines the PII record model and its consent, retention, and
// redaction value types.
//
// A record is created at intake with consent captured, mutated only through
// consent updates, rectification, and lifecycle transitions, and reaches its
// anonymized/purged terminal state irreversibly. PII fields are stored as
// opaque ciphertext envelopes tagged with the key version that produced them.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// PiiRecord is the persisted PII entity. Each PII field holds an encoded
// ciphertext envelope (see crypto/domain.Ciphertext) or, after a lifecycle
// transition, the raw bytes of a sentinel string.
//
// Invariant: Anonymized == true implies every PII field equals a sentinel and
// DataRetentionDate is not in the future.
type PiiRecord struct {
	ID         uuid.UUID
	Name       []byte
	Email      []byte
	Phone      []byte
	Address    []byte
	EmailHash  []byte // Deterministic lookup hash of the email under KeyVersion
	KeyVersion uint32 // Key version used at the last write

	ConsentGiven      bool
	ConsentTimestamp  time.Time
	ConsentSource     string
	DataRetentionDate time.Time
	Anonymized        bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// PIIFields returns pointers to the record's PII field slots, keyed by field
// name. Used by export, lazy re-encryption, and sentinel overwrite so the
// field set is defined in exactly one place.
func (r *PiiRecord) PIIFields() map[string]*[]byte {
	return map[string]*[]byte{
		"name":    &r.Name,
		"email":   &r.Email,
		"phone":   &r.Phone,
		"address": &r.Address,
	}
}

// ApplySentinel overwrites every PII field with the given sentinel, clears the
// lookup hash, and moves the record into the terminal anonymized state. The
// transition is irreversible.
func (r *PiiRecord) ApplySentinel(sentinel string, now time.Time) {
	for _, field := range r.PIIFields() {
		*field = []byte(sentinel)
	}
	r.EmailHash = nil
	r.Anonymized = true
	r.DataRetentionDate = now
	r.UpdatedAt = now
}

// ConsentState is the derived view of a record's consent fields. It is only
// produced by read paths and the consent-update operation.
type ConsentState struct {
	RecordID      uuid.UUID
	Given         bool
	Timestamp     time.Time
	Source        string
	RetentionDate time.Time
	Anonymized    bool
}

// ConsentState derives the consent view of the record.
func (r *PiiRecord) ConsentState() *ConsentState {
	return &ConsentState{
		RecordID:      r.ID,
		Given:         r.ConsentGiven,
		Timestamp:     r.ConsentTimestamp,
		Source:        r.ConsentSource,
		RetentionDate: r.DataRetentionDate,
		Anonymized:    r.Anonymized,
	}
}

// ErasureReceipt is the uniform response of an erasure request. The shape is
// identical whether or not a record matched, so the endpoint cannot be used
// to probe which addresses exist.
type ErasureReceipt struct {
	Accepted bool `json:"accepted"`
}

// RecordExport is a decrypted snapshot of a record produced for a data
// subject access request. Fields that failed decryption carry a marker in
// Flags instead of a value.
type RecordExport struct {
	RecordID      uuid.UUID         `json:"record_id"`
	Fields        map[string]string `json:"fields"`
	Flags         map[string]string `json:"flags,omitempty"`
	ConsentGiven  bool              `json:"consent_given"`
	ConsentSource string            `json:"consent_source"`
	RetentionDate time.Time         `json:"retention_date"`
	CreatedAt     time.Time         `json:"created_at"`
}
