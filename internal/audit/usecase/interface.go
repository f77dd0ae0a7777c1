// Package usecase defines the interfaces and implementations for the audit trail.
package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	auditDomain "github.com/copp1723/seorylie-sub000/internal/audit/domain"
)

// AuditEntryRepository defines the interface for audit entry persistence.
type AuditEntryRepository interface {
	Create(ctx context.Context, entry *auditDomain.AuditEntry) error
	List(ctx context.Context, offset, limit int) ([]*auditDomain.AuditEntry, error)
	DeleteOlderThan(ctx context.Context, olderThan time.Time, dryRun bool) (int64, error)
}

// Redactor removes PII from free-form detail payloads before persistence.
type Redactor interface {
	RedactAny(raw any) any
}

// AuditUseCase defines the interface for audit trail business logic.
type AuditUseCase interface {
	// Record persists an audit entry. Detail is redacted before it reaches
	// the store; callers may pass raw payloads.
	Record(
		ctx context.Context,
		operation string,
		subjectID uuid.UUID,
		actorID string,
		success bool,
		detail map[string]any,
	) error
	List(ctx context.Context, offset, limit int) ([]*auditDomain.AuditEntry, error)
	// DeleteOlderThan removes entries older than the given number of days.
	// With dryRun it only reports how many entries would be removed.
	DeleteOlderThan(ctx context.Context, days int, dryRun bool) (int64, error)
}
