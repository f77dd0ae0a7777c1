package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	auditDomain "github.com/copp1723/seorylie-sub000/internal/audit/domain"
	apperrors "github.com/copp1723/seorylie-sub000/internal/errors"
	privacyDomain "github.com/copp1723/seorylie-sub000/internal/privacy/domain"
)

// RequestErasure overwrites every matching record with the erasure sentinel
// and pulls its retention date to now. The receipt is identical whether the
// subject matched zero, one, or many records, so the endpoint cannot be used
// to probe which addresses exist. Internal failures are logged and audited
// but never surfaced to the caller.
func (p *piiUseCase) RequestErasure(ctx context.Context, emailOrID, actor string) (*privacyDomain.ErasureReceipt, error) {
	receipt := &privacyDomain.ErasureReceipt{Accepted: true}

	records, err := p.resolveSubject(ctx, emailOrID, true)
	if err != nil {
		p.logger.Error("erasure subject resolution failed", "error", err)
		_ = p.audit.Record(ctx, auditDomain.OperationErasure, uuid.Nil, actor, false, map[string]any{
			"error": err.Error(),
		})
		return receipt, nil
	}

	if len(records) == 0 {
		// No match still leaves a trace for compliance review.
		_ = p.audit.Record(ctx, auditDomain.OperationErasure, uuid.Nil, actor, true, map[string]any{
			"matched": false,
		})
		return receipt, nil
	}

	for _, record := range records {
		if record.Anonymized {
			// Already terminal. Re-invocation is a no-op and produces no
			// duplicate audit mutation.
			continue
		}
		if err := p.eraseRecord(ctx, record, actor); err != nil {
			p.logger.Error("erasure failed", "record_id", record.ID, "error", err)
			_ = p.audit.Record(ctx, auditDomain.OperationErasure, record.ID, actor, false, map[string]any{
				"error": err.Error(),
			})
		}
	}

	return receipt, nil
}

// eraseRecord applies the erasure sentinel inside a transaction, retrying the
// optimistic update once.
func (p *piiUseCase) eraseRecord(ctx context.Context, record *privacyDomain.PiiRecord, actor string) error {
	return p.withConflictRetry(func() error {
		current, err := p.recordRepo.GetByID(ctx, record.ID)
		if err != nil {
			return err
		}
		if current.Anonymized {
			return nil
		}

		now := time.Now().UTC()
		prev := current.UpdatedAt
		current.ApplySentinel(privacyDomain.ErasedSentinel, now)

		return p.txManager.WithTx(ctx, func(txCtx context.Context) error {
			if err := p.recordRepo.Update(txCtx, current, prev); err != nil {
				return err
			}

			return p.audit.Record(txCtx, auditDomain.OperationErasure, current.ID, actor, true, map[string]any{
				"reason": privacyDomain.ReasonErasureRequest,
			})
		})
	})
}

// resolveSubject resolves an erasure or export subject to its records, either
// by record UUID or by email address.
//
// Email resolution has two legs. The fast path matches the lookup hash
// computed under the current key. Records written before the last rotation
// still carry a hash under the retired key, so a second leg walks those
// records and compares decrypted addresses directly. With heal set, walked
// records that do not match are re-encrypted under the current key, which
// repairs their lookup hash so later lookups take the fast path.
func (p *piiUseCase) resolveSubject(ctx context.Context, emailOrID string, heal bool) ([]*privacyDomain.PiiRecord, error) {
	subject := strings.TrimSpace(emailOrID)

	if id, err := uuid.Parse(subject); err == nil {
		record, err := p.recordRepo.GetByID(ctx, id)
		if apperrors.Is(err, privacyDomain.ErrRecordNotFound) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		return []*privacyDomain.PiiRecord{record}, nil
	}

	email := strings.ToLower(subject)

	matches, err := p.recordRepo.ListByEmailHash(ctx, p.cipher.LookupHash(email))
	if err != nil {
		return nil, err
	}

	stale, err := p.scanStaleRecords(ctx, email, heal)
	if err != nil {
		return nil, err
	}

	return append(matches, stale...), nil
}

// scanStaleRecords walks records whose key version predates the current key
// and compares their decrypted email to the target. The walk pages by record
// ID; IDs are UUIDv7, so the keyset order is creation order and the cursor
// advances monotonically even while records are healed mid-scan.
func (p *piiUseCase) scanStaleRecords(ctx context.Context, email string, heal bool) ([]*privacyDomain.PiiRecord, error) {
	currentVersion := p.cipher.CurrentKeyVersion()

	var matches []*privacyDomain.PiiRecord
	afterID := uuid.Nil
	for {
		batch, err := p.recordRepo.ListByMaxKeyVersion(ctx, currentVersion, afterID, p.scanBatch)
		if err != nil {
			return nil, err
		}

		for _, record := range batch {
			afterID = record.ID

			stored, err := p.cipher.DecryptValue(ctx, record.Email)
			if err != nil {
				// Undecryptable under any chained key. Logged and skipped;
				// the record stays for the lifecycle sweeps to deal with.
				p.logger.Warn("stale record email decryption failed", "record_id", record.ID)
				continue
			}

			if strings.ToLower(stored) == email {
				matches = append(matches, record)
				continue
			}

			if heal {
				if err := p.healRecord(ctx, record); err != nil {
					p.logger.Warn("stale record re-encryption failed", "record_id", record.ID, "error", err)
				}
			}
		}

		if len(batch) < p.scanBatch {
			break
		}
	}

	return matches, nil
}

// healRecord re-encrypts a stale record under the current key.
func (p *piiUseCase) healRecord(ctx context.Context, record *privacyDomain.PiiRecord) error {
	prev := record.UpdatedAt
	if err := p.reencryptRecord(ctx, record); err != nil {
		return err
	}
	record.UpdatedAt = time.Now().UTC()
	return p.recordRepo.Update(ctx, record, prev)
}
