package domain

import (
	"github.com/copp1723/seorylie-sub000/internal/errors"
)

var (
	// ErrRecordNotFound indicates the requested PII record does not exist.
	ErrRecordNotFound = errors.Wrap(errors.ErrNotFound, "pii record")

	// ErrRecordAnonymized indicates the record reached its terminal state and
	// the requested mutation no longer applies.
	ErrRecordAnonymized = errors.Wrap(errors.ErrConflict, "record anonymized")

	// ErrLifecycleConflict indicates a concurrent lifecycle transition won the
	// write race. The operation was retried once before surfacing this signal.
	ErrLifecycleConflict = errors.Wrap(errors.ErrConflict, "lifecycle conflict")

	// ErrUnknownMaskKind indicates an unrecognized masking rule was requested.
	ErrUnknownMaskKind = errors.Wrap(errors.ErrInvalidInput, "unknown mask kind")

	// ErrUnsupportedExportFormat indicates the export serialization format is
	// not supported.
	ErrUnsupportedExportFormat = errors.Wrap(errors.ErrInvalidInput, "unsupported export format")
)
