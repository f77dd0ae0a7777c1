package usecase

import (
	"context"

	validation "github.com/jellydator/validation"

	auditDomain "github.com/copp1723/seorylie-sub000/internal/audit/domain"
	apperrors "github.com/copp1723/seorylie-sub000/internal/errors"
	privacyDomain "github.com/copp1723/seorylie-sub000/internal/privacy/domain"
	appValidation "github.com/copp1723/seorylie-sub000/internal/validation"
)

// ExportRecord produces a decrypted snapshot of a record for a data subject
// access request. The caller is pre-authorized; authorization is not this
// layer's concern. A field that fails decryption is flagged in the result and
// the export continues. A concurrent lifecycle write detected mid-export is
// retried once, then surfaces ErrLifecycleConflict.
func (p *piiUseCase) ExportRecord(
	ctx context.Context,
	emailOrID, format, actor string,
) (*privacyDomain.RecordExport, error) {
	err := validation.Validate(format, appValidation.ExportFormat)
	if err != nil {
		return nil, apperrors.Wrap(privacyDomain.ErrUnsupportedExportFormat, err.Error())
	}

	records, err := p.resolveSubject(ctx, emailOrID, false)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, privacyDomain.ErrRecordNotFound
	}

	// An email may match several records; export the most recently updated.
	record := records[0]
	for _, candidate := range records[1:] {
		if candidate.UpdatedAt.After(record.UpdatedAt) {
			record = candidate
		}
	}

	export, retry := p.exportSnapshot(ctx, record)
	if retry {
		record, err = p.recordRepo.GetByID(ctx, record.ID)
		if err != nil {
			return nil, err
		}
		export, retry = p.exportSnapshot(ctx, record)
		if retry {
			return nil, privacyDomain.ErrLifecycleConflict
		}
	}

	if err := p.audit.Record(ctx, auditDomain.OperationExport, record.ID, actor, true, map[string]any{
		"format":  "json",
		"flagged": len(export.Flags),
	}); err != nil {
		return nil, err
	}

	return export, nil
}

// exportSnapshot decrypts the record's fields into an export. The boolean
// result requests a retry: a decryption failure on a record that moved under
// our feet means a lifecycle transition rewrote the fields mid-read.
func (p *piiUseCase) exportSnapshot(
	ctx context.Context,
	record *privacyDomain.PiiRecord,
) (*privacyDomain.RecordExport, bool) {
	export := &privacyDomain.RecordExport{
		RecordID:      record.ID,
		Fields:        make(map[string]string),
		ConsentGiven:  record.ConsentGiven,
		ConsentSource: record.ConsentSource,
		RetentionDate: record.DataRetentionDate,
		CreatedAt:     record.CreatedAt,
	}

	failed := false
	for field, slot := range record.PIIFields() {
		if record.Anonymized {
			// Terminal records hold sentinel strings, not ciphertext.
			export.Fields[field] = string(*slot)
			continue
		}

		plaintext, err := p.cipher.DecryptValue(ctx, *slot)
		if err != nil {
			failed = true
			if export.Flags == nil {
				export.Flags = make(map[string]string)
			}
			export.Flags[field] = "decryption_failed"
			continue
		}
		export.Fields[field] = plaintext
	}

	if !failed {
		return export, false
	}

	// Distinguish a genuine bad ciphertext from a mid-read transition: only
	// a record whose updated_at moved is worth a second pass.
	current, err := p.recordRepo.GetByID(ctx, record.ID)
	if err == nil && !current.UpdatedAt.Equal(record.UpdatedAt) {
		return export, true
	}

	return export, false
}
