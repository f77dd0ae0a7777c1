package usecase

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	auditDomain "github.com/copp1723/seorylie-sub000/internal/audit/domain"
	"github.com/copp1723/seorylie-sub000/internal/database"
	apperrors "github.com/copp1723/seorylie-sub000/internal/errors"
	privacyDomain "github.com/copp1723/seorylie-sub000/internal/privacy/domain"
)

// sweepActor identifies scheduled sweeps in the audit trail.
const sweepActor = "scheduler"

// errAlreadyTransitioned marks a record another writer moved between selection
// and processing. Counted as skipped, never as a failure.
var errAlreadyTransitioned = apperrors.New("record already transitioned")

type lifecycleUseCase struct {
	txManager  database.TxManager
	recordRepo PiiRecordRepository
	audit      AuditRecorder
	cfg        SweepConfig
	logger     *slog.Logger
}

// NewLifecycleUseCase creates a new lifecycle use case.
func NewLifecycleUseCase(
	txManager database.TxManager,
	recordRepo PiiRecordRepository,
	audit AuditRecorder,
	cfg SweepConfig,
	logger *slog.Logger,
) LifecycleUseCase {
	return &lifecycleUseCase{
		txManager:  txManager,
		recordRepo: recordRepo,
		audit:      audit,
		cfg:        cfg,
		logger:     logger,
	}
}

func (l *lifecycleUseCase) RunAnonymizationSweep(ctx context.Context) (*SweepReport, error) {
	return l.runSweep(ctx, "anonymization",
		func(ctx context.Context) ([]*privacyDomain.PiiRecord, error) {
			return l.recordRepo.ListActivePastRetention(ctx, time.Now().UTC(), l.cfg.BatchSize)
		},
		l.anonymizeRecord,
	)
}

func (l *lifecycleUseCase) RunPurgeSweep(ctx context.Context) (*SweepReport, error) {
	return l.runSweep(ctx, "purge",
		func(ctx context.Context) ([]*privacyDomain.PiiRecord, error) {
			cutoff := time.Now().UTC().Add(-l.cfg.PurgeWindow)
			return l.recordRepo.ListAnonymizedBefore(ctx, cutoff, l.cfg.BatchSize)
		},
		l.purgeRecord,
	)
}

// runSweep pages through the selection, processing each record in its own
// transaction with bounded parallelism and an overall rate limit. A per-record
// failure is logged and counted; the batch proceeds. The run as a whole aborts
// on timeout rather than holding transactions across a stall.
func (l *lifecycleUseCase) runSweep(
	ctx context.Context,
	name string,
	list func(ctx context.Context) ([]*privacyDomain.PiiRecord, error),
	process func(ctx context.Context, record *privacyDomain.PiiRecord) error,
) (*SweepReport, error) {
	ctx, cancel := context.WithTimeout(ctx, l.cfg.Timeout)
	defer cancel()

	var limiter *rate.Limiter
	if l.cfg.RatePerSec > 0 {
		limiter = rate.NewLimiter(rate.Limit(l.cfg.RatePerSec), 1)
	}

	counters := &sweepCounters{}
	for {
		batch, err := list(ctx)
		if err != nil {
			return counters.report(), apperrors.Wrap(err, name+" sweep selection")
		}
		if len(batch) == 0 {
			break
		}

		removedBefore := counters.removed()

		group, groupCtx := errgroup.WithContext(ctx)
		group.SetLimit(l.cfg.Parallelism)
		for _, record := range batch {
			group.Go(func() error {
				if limiter != nil {
					if err := limiter.Wait(groupCtx); err != nil {
						return err
					}
				}

				counters.examined.Add(1)
				switch err := process(groupCtx, record); {
				case err == nil:
					counters.processed.Add(1)
				case apperrors.Is(err, errAlreadyTransitioned):
					counters.skipped.Add(1)
				default:
					counters.failed.Add(1)
					l.logger.Error("sweep record failed",
						"sweep", name, "record_id", record.ID, "error", err)
				}
				return nil
			})
		}
		if err := group.Wait(); err != nil {
			return counters.report(), apperrors.Wrap(err, name+" sweep aborted")
		}

		// Transitioned records drop out of the next selection; records that
		// only failed do not. Stop when a pass removes nothing so persistent
		// failures cannot loop the sweep forever.
		if len(batch) < l.cfg.BatchSize || counters.removed() == removedBefore {
			break
		}
	}

	report := counters.report()
	l.logger.Info("sweep finished", "sweep", name,
		"examined", report.Examined, "processed", report.Processed,
		"skipped", report.Skipped, "failed", report.Failed)
	return report, nil
}

// anonymizeRecord overwrites the record's PII with the scheduled-expiry
// sentinel inside a transaction, retrying the optimistic update once.
func (l *lifecycleUseCase) anonymizeRecord(ctx context.Context, record *privacyDomain.PiiRecord) error {
	return l.withConflictRetry(func() error {
		current, err := l.recordRepo.GetByID(ctx, record.ID)
		if apperrors.Is(err, privacyDomain.ErrRecordNotFound) {
			return errAlreadyTransitioned
		}
		if err != nil {
			return err
		}
		if current.Anonymized {
			return errAlreadyTransitioned
		}

		now := time.Now().UTC()
		prev := current.UpdatedAt
		retention := current.DataRetentionDate
		current.ApplySentinel(privacyDomain.AnonymizedSentinel, now)

		return l.txManager.WithTx(ctx, func(txCtx context.Context) error {
			if err := l.recordRepo.Update(txCtx, current, prev); err != nil {
				return err
			}

			return l.audit.Record(txCtx, auditDomain.OperationAnonymize, current.ID, sweepActor, true, map[string]any{
				"reason":         privacyDomain.ReasonScheduledExpiry,
				"retention_date": retention,
			})
		})
	})
}

// purgeRecord hard-deletes an anonymized row and its lookup ability for good.
func (l *lifecycleUseCase) purgeRecord(ctx context.Context, record *privacyDomain.PiiRecord) error {
	err := l.txManager.WithTx(ctx, func(txCtx context.Context) error {
		if err := l.recordRepo.Delete(txCtx, record.ID); err != nil {
			return err
		}

		return l.audit.Record(txCtx, auditDomain.OperationPurge, record.ID, sweepActor, true, map[string]any{
			"reason": privacyDomain.ReasonScheduledPurge,
		})
	})
	if apperrors.Is(err, privacyDomain.ErrRecordNotFound) {
		return errAlreadyTransitioned
	}
	return err
}

// withConflictRetry runs fn and, when a concurrent lifecycle write wins the
// optimistic update race, retries exactly once before surfacing the conflict.
func (l *lifecycleUseCase) withConflictRetry(fn func() error) error {
	err := fn()
	if apperrors.Is(err, privacyDomain.ErrLifecycleConflict) {
		err = fn()
	}
	return err
}

// sweepCounters aggregates per-record outcomes across sweep goroutines.
type sweepCounters struct {
	examined  atomic.Int64
	processed atomic.Int64
	skipped   atomic.Int64
	failed    atomic.Int64
}

// removed is the number of records that left the sweep's selection.
func (c *sweepCounters) removed() int64 {
	return c.processed.Load() + c.skipped.Load()
}

func (c *sweepCounters) report() *SweepReport {
	return &SweepReport{
		Examined:  int(c.examined.Load()),
		Processed: int(c.processed.Load()),
		Skipped:   int(c.skipped.Load()),
		Failed:    int(c.failed.Load()),
	}
}
