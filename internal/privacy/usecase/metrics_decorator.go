package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/copp1723/seorylie-sub000/internal/metrics"
	privacyDomain "github.com/copp1723/seorylie-sub000/internal/privacy/domain"
)

// piiUseCaseWithMetrics decorates PiiUseCase with metrics instrumentation.
type piiUseCaseWithMetrics struct {
	next    PiiUseCase
	metrics metrics.BusinessMetrics
}

// NewPiiUseCaseWithMetrics wraps a PiiUseCase with metrics recording.
func NewPiiUseCaseWithMetrics(useCase PiiUseCase, m metrics.BusinessMetrics) PiiUseCase {
	return &piiUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

func (p *piiUseCaseWithMetrics) record(ctx context.Context, operation string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}

	p.metrics.RecordOperation(ctx, "privacy", operation, status)
	p.metrics.RecordDuration(ctx, "privacy", operation, time.Since(start), status)
}

// Intake records metrics for record intake operations.
func (p *piiUseCaseWithMetrics) Intake(ctx context.Context, input IntakeInput) (*privacyDomain.ConsentState, error) {
	start := time.Now()
	state, err := p.next.Intake(ctx, input)
	p.record(ctx, "pii_intake", start, err)
	return state, err
}

// RecordConsent records metrics for consent update operations.
func (p *piiUseCaseWithMetrics) RecordConsent(
	ctx context.Context,
	recordID uuid.UUID,
	given bool,
	source, actor string,
) (*privacyDomain.ConsentState, error) {
	start := time.Now()
	state, err := p.next.RecordConsent(ctx, recordID, given, source, actor)
	p.record(ctx, "pii_consent_update", start, err)
	return state, err
}

// Rectify records metrics for rectification operations.
func (p *piiUseCaseWithMetrics) Rectify(
	ctx context.Context,
	recordID uuid.UUID,
	input RectifyInput,
) (*privacyDomain.ConsentState, error) {
	start := time.Now()
	state, err := p.next.Rectify(ctx, recordID, input)
	p.record(ctx, "pii_rectify", start, err)
	return state, err
}

// RequestErasure records metrics for erasure requests.
func (p *piiUseCaseWithMetrics) RequestErasure(
	ctx context.Context,
	emailOrID, actor string,
) (*privacyDomain.ErasureReceipt, error) {
	start := time.Now()
	receipt, err := p.next.RequestErasure(ctx, emailOrID, actor)
	p.record(ctx, "pii_erasure", start, err)
	return receipt, err
}

// ExportRecord records metrics for export operations.
func (p *piiUseCaseWithMetrics) ExportRecord(
	ctx context.Context,
	emailOrID, format, actor string,
) (*privacyDomain.RecordExport, error) {
	start := time.Now()
	export, err := p.next.ExportRecord(ctx, emailOrID, format, actor)
	p.record(ctx, "pii_export", start, err)
	return export, err
}
