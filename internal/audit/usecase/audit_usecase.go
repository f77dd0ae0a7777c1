// Package usecase implements the audit trail business logic.
package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	auditDomain "github.com/copp1723/seorylie-sub000/internal/audit/domain"
	apperrors "github.com/copp1723/seorylie-sub000/internal/errors"
)

// auditUseCase records PII operations. Every detail payload passes through
// the redactor first, so the audit store never holds unredacted PII even when
// a caller hands over raw field values.
type auditUseCase struct {
	auditRepo AuditEntryRepository
	redactor  Redactor
}

// NewAuditUseCase creates a new AuditUseCase with the provided dependencies.
func NewAuditUseCase(auditRepo AuditEntryRepository, redactor Redactor) AuditUseCase {
	return &auditUseCase{
		auditRepo: auditRepo,
		redactor:  redactor,
	}
}

// Record persists a redacted audit entry with a UUIDv7 identifier.
func (a *auditUseCase) Record(
	ctx context.Context,
	operation string,
	subjectID uuid.UUID,
	actorID string,
	success bool,
	detail map[string]any,
) error {
	var redacted map[string]any
	if detail != nil {
		// RedactAny preserves the mapping shape of its input.
		redacted, _ = a.redactor.RedactAny(detail).(map[string]any)
	}

	entry := &auditDomain.AuditEntry{
		ID:        uuid.Must(uuid.NewV7()),
		Operation: operation,
		SubjectID: subjectID,
		ActorID:   actorID,
		Success:   success,
		Detail:    redacted,
		CreatedAt: time.Now().UTC(),
	}

	if err := a.auditRepo.Create(ctx, entry); err != nil {
		return apperrors.Wrap(err, "failed to record audit entry")
	}

	return nil
}

// List retrieves audit entries, newest first.
func (a *auditUseCase) List(ctx context.Context, offset, limit int) ([]*auditDomain.AuditEntry, error) {
	entries, err := a.auditRepo.List(ctx, offset, limit)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list audit entries")
	}

	return entries, nil
}

// DeleteOlderThan removes entries created more than the given number of days
// ago. With dryRun it only counts.
func (a *auditUseCase) DeleteOlderThan(ctx context.Context, days int, dryRun bool) (int64, error) {
	if days <= 0 {
		return 0, apperrors.Wrap(apperrors.ErrInvalidInput, "days must be positive")
	}

	olderThan := time.Now().UTC().AddDate(0, 0, -days)

	count, err := a.auditRepo.DeleteOlderThan(ctx, olderThan, dryRun)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to delete audit entries")
	}

	return count, nil
}
