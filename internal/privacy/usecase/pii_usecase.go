// Package usecase implements the PII record business logic.
package usecase

import (
	"context"
	"log/slog"
	"strings"
	"time"

	validation "github.com/jellydator/validation"

	"github.com/google/uuid"

	auditDomain "github.com/copp1723/seorylie-sub000/internal/audit/domain"
	cryptoService "github.com/copp1723/seorylie-sub000/internal/crypto/service"
	"github.com/copp1723/seorylie-sub000/internal/database"
	apperrors "github.com/copp1723/seorylie-sub000/internal/errors"
	privacyDomain "github.com/copp1723/seorylie-sub000/internal/privacy/domain"
	appValidation "github.com/copp1723/seorylie-sub000/internal/validation"
)

// RetentionPolicy holds the retention horizons applied by the use case.
// Base covers intake, Long applies after consent is granted, Short after it
// is revoked.
type RetentionPolicy struct {
	Base  time.Duration
	Long  time.Duration
	Short time.Duration
}

// piiUseCase implements the PiiUseCase interface.
type piiUseCase struct {
	txManager  database.TxManager
	recordRepo PiiRecordRepository
	cipher     cryptoService.Cipher
	audit      AuditRecorder
	retention  RetentionPolicy
	scanBatch  int
	logger     *slog.Logger
}

// NewPiiUseCase creates a new PII use case instance with the provided dependencies.
func NewPiiUseCase(
	txManager database.TxManager,
	recordRepo PiiRecordRepository,
	cipher cryptoService.Cipher,
	audit AuditRecorder,
	retention RetentionPolicy,
	scanBatch int,
	logger *slog.Logger,
) PiiUseCase {
	return &piiUseCase{
		txManager:  txManager,
		recordRepo: recordRepo,
		cipher:     cipher,
		audit:      audit,
		retention:  retention,
		scanBatch:  scanBatch,
		logger:     logger,
	}
}

// validateIntakeInput validates the intake input using jellydator/validation.
func (p *piiUseCase) validateIntakeInput(input IntakeInput) error {
	err := validation.ValidateStruct(&input,
		validation.Field(&input.Name,
			validation.Required.Error("name is required"),
			appValidation.NotBlank,
			validation.Length(1, 255).Error("name must be between 1 and 255 characters"),
		),
		validation.Field(&input.Email,
			validation.Required.Error("email is required"),
			appValidation.NotBlank,
			appValidation.Email,
			validation.Length(5, 255).Error("email must be between 5 and 255 characters"),
		),
		validation.Field(&input.Phone,
			validation.Length(0, 64).Error("phone must be at most 64 characters"),
		),
		validation.Field(&input.Address,
			validation.Length(0, 1024).Error("address must be at most 1024 characters"),
		),
		validation.Field(&input.ConsentSource,
			validation.Required.Error("consent_source is required"),
			appValidation.NotBlank,
			validation.Length(1, 128).Error("consent_source must be between 1 and 128 characters"),
		),
	)
	return appValidation.WrapValidationError(err)
}

// Intake creates a new PII record with all fields encrypted under the current
// key and the base retention horizon. The first RecordConsent call moves the
// record onto the long or short horizon.
func (p *piiUseCase) Intake(ctx context.Context, input IntakeInput) (*privacyDomain.ConsentState, error) {
	if err := p.validateIntakeInput(input); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	email := strings.TrimSpace(strings.ToLower(input.Email))

	record := &privacyDomain.PiiRecord{
		ID:                uuid.Must(uuid.NewV7()),
		EmailHash:         p.cipher.LookupHash(email),
		KeyVersion:        p.cipher.CurrentKeyVersion(),
		ConsentGiven:      input.ConsentGiven,
		ConsentTimestamp:  now,
		ConsentSource:     strings.TrimSpace(input.ConsentSource),
		DataRetentionDate: now.Add(p.retention.Base),
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	plaintexts := map[string]string{
		"name":    strings.TrimSpace(input.Name),
		"email":   email,
		"phone":   strings.TrimSpace(input.Phone),
		"address": strings.TrimSpace(input.Address),
	}
	for field, slot := range record.PIIFields() {
		encrypted, err := p.cipher.EncryptValue(ctx, plaintexts[field])
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to encrypt pii field")
		}
		*slot = encrypted
	}

	err := p.txManager.WithTx(ctx, func(txCtx context.Context) error {
		if err := p.recordRepo.Create(txCtx, record); err != nil {
			return err
		}

		return p.audit.Record(txCtx, auditDomain.OperationIntake, record.ID, input.Actor, true, map[string]any{
			"consent_given":  record.ConsentGiven,
			"consent_source": record.ConsentSource,
			"retention_date": record.DataRetentionDate,
		})
	})
	if err != nil {
		return nil, err
	}

	return record.ConsentState(), nil
}

// RecordConsent updates consent and recomputes retention from now: the long
// horizon when consent is granted, the short one when it is revoked. The
// previous retention date never carries over.
func (p *piiUseCase) RecordConsent(
	ctx context.Context,
	recordID uuid.UUID,
	given bool,
	source, actor string,
) (*privacyDomain.ConsentState, error) {
	err := validation.Validate(source,
		validation.Required.Error("consent_source is required"),
		appValidation.NotBlank,
		validation.Length(1, 128).Error("consent_source must be between 1 and 128 characters"),
	)
	if err != nil {
		return nil, appValidation.WrapValidationError(err)
	}

	var state *privacyDomain.ConsentState
	err = p.withConflictRetry(func() error {
		record, err := p.recordRepo.GetByID(ctx, recordID)
		if err != nil {
			return err
		}
		if record.Anonymized {
			return privacyDomain.ErrRecordAnonymized
		}

		now := time.Now().UTC()
		prev := record.UpdatedAt

		// Writes always land on the current key. Records carrying older
		// ciphertexts are re-encrypted on the way through.
		if record.KeyVersion != p.cipher.CurrentKeyVersion() {
			if err := p.reencryptRecord(ctx, record); err != nil {
				return err
			}
		}

		horizon := p.retention.Short
		if given {
			horizon = p.retention.Long
		}

		record.ConsentGiven = given
		record.ConsentTimestamp = now
		record.ConsentSource = strings.TrimSpace(source)
		record.DataRetentionDate = now.Add(horizon)
		record.UpdatedAt = now

		err = p.txManager.WithTx(ctx, func(txCtx context.Context) error {
			if err := p.recordRepo.Update(txCtx, record, prev); err != nil {
				return err
			}

			return p.audit.Record(txCtx, auditDomain.OperationConsentUpdate, record.ID, actor, true, map[string]any{
				"consent_given":  given,
				"consent_source": record.ConsentSource,
				"retention_date": record.DataRetentionDate,
			})
		})
		if err != nil {
			return err
		}

		state = record.ConsentState()
		return nil
	})
	if err != nil {
		return nil, err
	}

	return state, nil
}

// Rectify replaces the supplied PII fields and re-encrypts the whole record
// under the current key, so the stored key version stays accurate for every
// field.
func (p *piiUseCase) Rectify(
	ctx context.Context,
	recordID uuid.UUID,
	input RectifyInput,
) (*privacyDomain.ConsentState, error) {
	if input.Name == nil && input.Email == nil && input.Phone == nil && input.Address == nil {
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "at least one field is required")
	}
	if input.Email != nil {
		err := validation.Validate(*input.Email,
			validation.Required.Error("email is required"),
			appValidation.Email,
			validation.Length(5, 255).Error("email must be between 5 and 255 characters"),
		)
		if err != nil {
			return nil, appValidation.WrapValidationError(err)
		}
	}

	replacements := map[string]*string{
		"name":    input.Name,
		"email":   input.Email,
		"phone":   input.Phone,
		"address": input.Address,
	}

	var state *privacyDomain.ConsentState
	err := p.withConflictRetry(func() error {
		record, err := p.recordRepo.GetByID(ctx, recordID)
		if err != nil {
			return err
		}
		if record.Anonymized {
			return privacyDomain.ErrRecordAnonymized
		}

		now := time.Now().UTC()
		prev := record.UpdatedAt

		rectified := make([]string, 0, len(replacements))
		for field, slot := range record.PIIFields() {
			var plaintext string
			if replacement := replacements[field]; replacement != nil {
				plaintext = strings.TrimSpace(*replacement)
				rectified = append(rectified, field)
			} else {
				plaintext, err = p.cipher.DecryptValue(ctx, *slot)
				if err != nil {
					return apperrors.Wrap(err, "failed to decrypt pii field")
				}
			}
			if field == "email" {
				plaintext = strings.ToLower(plaintext)
				record.EmailHash = p.cipher.LookupHash(plaintext)
			}

			encrypted, err := p.cipher.EncryptValue(ctx, plaintext)
			if err != nil {
				return apperrors.Wrap(err, "failed to encrypt pii field")
			}
			*slot = encrypted
		}

		record.KeyVersion = p.cipher.CurrentKeyVersion()
		record.UpdatedAt = now

		err = p.txManager.WithTx(ctx, func(txCtx context.Context) error {
			if err := p.recordRepo.Update(txCtx, record, prev); err != nil {
				return err
			}

			return p.audit.Record(txCtx, auditDomain.OperationRectify, record.ID, input.Actor, true, map[string]any{
				"rectified_fields": rectified,
			})
		})
		if err != nil {
			return err
		}

		state = record.ConsentState()
		return nil
	})
	if err != nil {
		return nil, err
	}

	return state, nil
}

// reencryptRecord decrypts every PII field and encrypts it again under the
// current key, refreshing the lookup hash along the way. The caller persists.
func (p *piiUseCase) reencryptRecord(ctx context.Context, record *privacyDomain.PiiRecord) error {
	for field, slot := range record.PIIFields() {
		plaintext, err := p.cipher.DecryptValue(ctx, *slot)
		if err != nil {
			return apperrors.Wrap(err, "failed to decrypt pii field")
		}

		if field == "email" {
			record.EmailHash = p.cipher.LookupHash(plaintext)
		}

		encrypted, err := p.cipher.EncryptValue(ctx, plaintext)
		if err != nil {
			return apperrors.Wrap(err, "failed to encrypt pii field")
		}
		*slot = encrypted
	}

	record.KeyVersion = p.cipher.CurrentKeyVersion()
	return nil
}

// withConflictRetry runs fn and, when a concurrent lifecycle write wins the
// optimistic update race, retries exactly once before surfacing the conflict.
func (p *piiUseCase) withConflictRetry(fn func() error) error {
	err := fn()
	if apperrors.Is(err, privacyDomain.ErrLifecycleConflict) {
		err = fn()
	}
	return err
}
