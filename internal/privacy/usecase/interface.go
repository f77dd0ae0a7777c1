// Package usecase defines the interfaces and implementations for PII record
// management: intake, consent, rectification, erasure, and export.
package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	privacyDomain "github.com/copp1723/seorylie-sub000/internal/privacy/domain"
)

// PiiRecordRepository defines the interface for PII record persistence.
type PiiRecordRepository interface {
	Create(ctx context.Context, record *privacyDomain.PiiRecord) error
	GetByID(ctx context.Context, id uuid.UUID) (*privacyDomain.PiiRecord, error)
	ListByEmailHash(ctx context.Context, emailHash []byte) ([]*privacyDomain.PiiRecord, error)
	ListActivePastRetention(ctx context.Context, cutoff time.Time, limit int) ([]*privacyDomain.PiiRecord, error)
	ListAnonymizedBefore(ctx context.Context, cutoff time.Time, limit int) ([]*privacyDomain.PiiRecord, error)
	// ListByMaxKeyVersion pages by record ID: only rows with id greater than
	// afterID are returned, in ID order. Pass uuid.Nil for the first page.
	ListByMaxKeyVersion(ctx context.Context, version uint32, afterID uuid.UUID, limit int) ([]*privacyDomain.PiiRecord, error)
	// Update is optimistic: it writes only if the row's updated_at still
	// equals prevUpdatedAt and reports ErrLifecycleConflict otherwise.
	Update(ctx context.Context, record *privacyDomain.PiiRecord, prevUpdatedAt time.Time) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// AuditRecorder defines the audit trail dependency of the PII use cases.
// Satisfied by the audit use case; detail payloads may carry raw values, the
// recorder redacts before persisting.
type AuditRecorder interface {
	Record(
		ctx context.Context,
		operation string,
		subjectID uuid.UUID,
		actorID string,
		success bool,
		detail map[string]any,
	) error
}

// IntakeInput contains the input data for PII record intake.
type IntakeInput struct {
	Name          string `json:"name"`
	Email         string `json:"email"`
	Phone         string `json:"phone"`
	Address       string `json:"address"`
	ConsentGiven  bool   `json:"consent_given"`
	ConsentSource string `json:"consent_source"`
	Actor         string `json:"actor"`
}

// RectifyInput carries replacement plaintext for a subset of PII fields.
// Nil pointers leave the stored value unchanged.
type RectifyInput struct {
	Name    *string `json:"name"`
	Email   *string `json:"email"`
	Phone   *string `json:"phone"`
	Address *string `json:"address"`
	Actor   string  `json:"actor"`
}

// PiiUseCase defines the interface for PII record business logic.
type PiiUseCase interface {
	// Intake creates a record with its PII encrypted under the current key
	// and the base retention horizon.
	Intake(ctx context.Context, input IntakeInput) (*privacyDomain.ConsentState, error)

	// RecordConsent updates the consent flags and recomputes the retention
	// date from now (long horizon when granted, short when revoked). Stale
	// ciphertexts are re-encrypted under the current key on the way through.
	RecordConsent(ctx context.Context, recordID uuid.UUID, given bool, source, actor string) (*privacyDomain.ConsentState, error)

	// Rectify replaces the supplied PII fields and re-encrypts the record
	// under the current key.
	Rectify(ctx context.Context, recordID uuid.UUID, input RectifyInput) (*privacyDomain.ConsentState, error)

	// RequestErasure overwrites all matching records with the erasure
	// sentinel. The receipt is identical whether or not anything matched.
	RequestErasure(ctx context.Context, emailOrID, actor string) (*privacyDomain.ErasureReceipt, error)

	// ExportRecord decrypts a record into a portable snapshot. Fields that
	// fail decryption are flagged and skipped, not fatal.
	ExportRecord(ctx context.Context, emailOrID, format, actor string) (*privacyDomain.RecordExport, error)
}
