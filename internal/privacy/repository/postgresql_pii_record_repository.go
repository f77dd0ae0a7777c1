// Package repository provides data persistence implementations for PII records.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/copp1723/seorylie-sub000/internal/database"
	"github.com/copp1723/seorylie-sub000/internal/privacy/domain"

	apperrors "github.com/copp1723/seorylie-sub000/internal/errors"
)

const piiRecordColumns = `id, name, email, phone, address, email_hash, key_version,
			  consent_given, consent_timestamp, consent_source, data_retention_date,
			  anonymized, created_at, updated_at`

// PostgreSQLPiiRecordRepository handles PII record persistence for PostgreSQL.
// PII fields are stored as BYTEA ciphertext envelopes; the repository never
// sees plaintext.
type PostgreSQLPiiRecordRepository struct {
	db *sql.DB
}

// NewPostgreSQLPiiRecordRepository creates a new PostgreSQLPiiRecordRepository
func NewPostgreSQLPiiRecordRepository(db *sql.DB) *PostgreSQLPiiRecordRepository {
	return &PostgreSQLPiiRecordRepository{
		db: db,
	}
}

// Create inserts a new PII record
func (r *PostgreSQLPiiRecordRepository) Create(ctx context.Context, record *domain.PiiRecord) error {
	querier := database.GetTx(ctx, r.db)

	query := `INSERT INTO pii_records (` + piiRecordColumns + `)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`

	_, err := querier.ExecContext(ctx, query,
		record.ID, record.Name, record.Email, record.Phone, record.Address,
		record.EmailHash, record.KeyVersion,
		record.ConsentGiven, record.ConsentTimestamp, record.ConsentSource,
		record.DataRetentionDate, record.Anonymized,
		record.CreatedAt, record.UpdatedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create pii record")
	}
	return nil
}

// GetByID retrieves a PII record by ID
func (r *PostgreSQLPiiRecordRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.PiiRecord, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT ` + piiRecordColumns + `
			  FROM pii_records WHERE id = $1`

	var record domain.PiiRecord
	err := querier.QueryRowContext(ctx, query, id).Scan(
		&record.ID, &record.Name, &record.Email, &record.Phone, &record.Address,
		&record.EmailHash, &record.KeyVersion,
		&record.ConsentGiven, &record.ConsentTimestamp, &record.ConsentSource,
		&record.DataRetentionDate, &record.Anonymized,
		&record.CreatedAt, &record.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrRecordNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get pii record by id")
	}

	return &record, nil
}

// ListByEmailHash retrieves all non-anonymized records whose lookup hash
// matches. More than one record can share an email address.
func (r *PostgreSQLPiiRecordRepository) ListByEmailHash(ctx context.Context, emailHash []byte) ([]*domain.PiiRecord, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT ` + piiRecordColumns + `
			  FROM pii_records
			  WHERE email_hash = $1 AND anonymized = FALSE
			  ORDER BY created_at ASC`

	rows, err := querier.QueryContext(ctx, query, emailHash)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list pii records by email hash")
	}

	return scanPiiRecords(rows)
}

// ListActivePastRetention retrieves non-anonymized records whose retention
// date is at or before the cutoff, oldest first, bounded by limit.
func (r *PostgreSQLPiiRecordRepository) ListActivePastRetention(
	ctx context.Context,
	cutoff time.Time,
	limit int,
) ([]*domain.PiiRecord, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT ` + piiRecordColumns + `
			  FROM pii_records
			  WHERE anonymized = FALSE AND data_retention_date <= $1
			  ORDER BY data_retention_date ASC
			  LIMIT $2`

	rows, err := querier.QueryContext(ctx, query, cutoff, limit)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list records past retention")
	}

	return scanPiiRecords(rows)
}

// ListAnonymizedBefore retrieves anonymized records whose retention date is
// at or before the cutoff, oldest first, bounded by limit. The caller derives
// the cutoff from the purge window.
func (r *PostgreSQLPiiRecordRepository) ListAnonymizedBefore(
	ctx context.Context,
	cutoff time.Time,
	limit int,
) ([]*domain.PiiRecord, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT ` + piiRecordColumns + `
			  FROM pii_records
			  WHERE anonymized = TRUE AND data_retention_date <= $1
			  ORDER BY data_retention_date ASC
			  LIMIT $2`

	rows, err := querier.QueryContext(ctx, query, cutoff, limit)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list anonymized records")
	}

	return scanPiiRecords(rows)
}

// ListByMaxKeyVersion retrieves non-anonymized records last written under a
// key version strictly below the given one. Used to find records whose lookup
// hash predates the current key. Pages by keyset: only rows with id greater
// than afterID are returned, in ID order, which is creation order for
// UUIDv7 IDs.
func (r *PostgreSQLPiiRecordRepository) ListByMaxKeyVersion(
	ctx context.Context,
	version uint32,
	afterID uuid.UUID,
	limit int,
) ([]*domain.PiiRecord, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT ` + piiRecordColumns + `
			  FROM pii_records
			  WHERE anonymized = FALSE AND key_version < $1 AND id > $2
			  ORDER BY id ASC
			  LIMIT $3`

	rows, err := querier.QueryContext(ctx, query, version, afterID, limit)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list records by key version")
	}

	return scanPiiRecords(rows)
}

// Update persists the record with optimistic concurrency: the row is written
// only if its updated_at still equals prevUpdatedAt. A zero-row update means
// a concurrent transition won the race.
func (r *PostgreSQLPiiRecordRepository) Update(ctx context.Context, record *domain.PiiRecord, prevUpdatedAt time.Time) error {
	querier := database.GetTx(ctx, r.db)

	query := `UPDATE pii_records
			  SET name = $1, email = $2, phone = $3, address = $4, email_hash = $5,
			      key_version = $6, consent_given = $7, consent_timestamp = $8,
			      consent_source = $9, data_retention_date = $10, anonymized = $11,
			      updated_at = $12
			  WHERE id = $13 AND updated_at = $14`

	result, err := querier.ExecContext(ctx, query,
		record.Name, record.Email, record.Phone, record.Address, record.EmailHash,
		record.KeyVersion, record.ConsentGiven, record.ConsentTimestamp,
		record.ConsentSource, record.DataRetentionDate, record.Anonymized,
		record.UpdatedAt,
		record.ID, prevUpdatedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to update pii record")
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to read affected rows")
	}
	if affected == 0 {
		return domain.ErrLifecycleConflict
	}

	return nil
}

// Delete removes the record row entirely. Used only by the purge sweep.
func (r *PostgreSQLPiiRecordRepository) Delete(ctx context.Context, id uuid.UUID) error {
	querier := database.GetTx(ctx, r.db)

	query := `DELETE FROM pii_records WHERE id = $1`

	result, err := querier.ExecContext(ctx, query, id)
	if err != nil {
		return apperrors.Wrap(err, "failed to delete pii record")
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to read affected rows")
	}
	if affected == 0 {
		return domain.ErrRecordNotFound
	}

	return nil
}

func scanPiiRecords(rows *sql.Rows) ([]*domain.PiiRecord, error) {
	defer rows.Close() //nolint:errcheck

	records := make([]*domain.PiiRecord, 0)
	for rows.Next() {
		var record domain.PiiRecord

		err := rows.Scan(
			&record.ID, &record.Name, &record.Email, &record.Phone, &record.Address,
			&record.EmailHash, &record.KeyVersion,
			&record.ConsentGiven, &record.ConsentTimestamp, &record.ConsentSource,
			&record.DataRetentionDate, &record.Anonymized,
			&record.CreatedAt, &record.UpdatedAt,
		)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan pii record")
		}

		records = append(records, &record)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate pii records")
	}

	return records, nil
}
