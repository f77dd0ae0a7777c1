// Package usecase implements the scheduled data lifecycle sweeps: anonymization
// of records past their retention date and permanent purge of anonymized rows
// past the purge window.
package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	privacyDomain "github.com/copp1723/seorylie-sub000/internal/privacy/domain"
)

// PiiRecordRepository is the slice of record persistence the sweeps need.
type PiiRecordRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*privacyDomain.PiiRecord, error)
	ListActivePastRetention(ctx context.Context, cutoff time.Time, limit int) ([]*privacyDomain.PiiRecord, error)
	ListAnonymizedBefore(ctx context.Context, cutoff time.Time, limit int) ([]*privacyDomain.PiiRecord, error)
	// Update is optimistic: it writes only if the row's updated_at still
	// equals prevUpdatedAt and reports ErrLifecycleConflict otherwise.
	Update(ctx context.Context, record *privacyDomain.PiiRecord, prevUpdatedAt time.Time) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// AuditRecorder defines the audit trail dependency of the sweeps.
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

// SweepConfig bounds a sweep run. Parallelism caps concurrent per-record
// transactions, RatePerSec throttles overall record processing (0 disables),
// and Timeout aborts a run instead of holding transactions across a stall.
type SweepConfig struct {
	BatchSize   int
	Parallelism int
	RatePerSec  float64
	Timeout     time.Duration
	PurgeWindow time.Duration
}

// SweepReport summarizes a sweep run. Skipped counts records another writer
// transitioned between selection and processing.
type SweepReport struct {
	Examined  int `json:"examined"`
	Processed int `json:"processed"`
	Skipped   int `json:"skipped"`
	Failed    int `json:"failed"`
}

// LifecycleUseCase defines the scheduled sweep operations.
type LifecycleUseCase interface {
	// RunAnonymizationSweep overwrites the PII of every active record whose
	// retention date has passed. Re-running is a no-op for records already
	// transitioned.
	RunAnonymizationSweep(ctx context.Context) (*SweepReport, error)

	// RunPurgeSweep permanently deletes anonymized rows older than the purge
	// window.
	RunPurgeSweep(ctx context.Context) (*SweepReport, error)
}
