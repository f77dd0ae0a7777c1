package usecase

import (
	"context"
	"time"

	"github.com/copp1723/seorylie-sub000/internal/metrics"
)

// lifecycleUseCaseWithMetrics decorates LifecycleUseCase with metrics
// instrumentation.
type lifecycleUseCaseWithMetrics struct {
	next    LifecycleUseCase
	metrics metrics.BusinessMetrics
}

// NewLifecycleUseCaseWithMetrics wraps a LifecycleUseCase with metrics recording.
func NewLifecycleUseCaseWithMetrics(useCase LifecycleUseCase, m metrics.BusinessMetrics) LifecycleUseCase {
	return &lifecycleUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

func (l *lifecycleUseCaseWithMetrics) record(ctx context.Context, operation string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}

	l.metrics.RecordOperation(ctx, "lifecycle", operation, status)
	l.metrics.RecordDuration(ctx, "lifecycle", operation, time.Since(start), status)
}

// RunAnonymizationSweep records metrics for anonymization sweep runs.
func (l *lifecycleUseCaseWithMetrics) RunAnonymizationSweep(ctx context.Context) (*SweepReport, error) {
	start := time.Now()
	report, err := l.next.RunAnonymizationSweep(ctx)
	l.record(ctx, "anonymization_sweep", start, err)
	return report, err
}

// RunPurgeSweep records metrics for purge sweep runs.
func (l *lifecycleUseCaseWithMetrics) RunPurgeSweep(ctx context.Context) (*SweepReport, error) {
	start := time.Now()
	report, err := l.next.RunPurgeSweep(ctx)
	l.record(ctx, "purge_sweep", start, err)
	return report, err
}
