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

// MySQLPiiRecordRepository handles PII record persistence for MySQL.
// Uses BINARY(16) for UUIDs and BLOB for ciphertext envelopes.
type MySQLPiiRecordRepository struct {
	db *sql.DB
}

// NewMySQLPiiRecordRepository creates a new MySQLPiiRecordRepository
func NewMySQLPiiRecordRepository(db *sql.DB) *MySQLPiiRecordRepository {
	return &MySQLPiiRecordRepository{
		db: db,
	}
}

// Create inserts a new PII record
func (r *MySQLPiiRecordRepository) Create(ctx context.Context, record *domain.PiiRecord) error {
	querier := database.GetTx(ctx, r.db)

	query := `INSERT INTO pii_records (` + piiRecordColumns + `)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	// Convert UUID to bytes for MySQL BINARY(16)
	uuidBytes, err := record.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal UUID")
	}

	_, err = querier.ExecContext(ctx, query,
		uuidBytes, record.Name, record.Email, record.Phone, record.Address,
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
func (r *MySQLPiiRecordRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.PiiRecord, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT ` + piiRecordColumns + `
			  FROM pii_records WHERE id = ?`

	uuidBytes, err := id.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal UUID")
	}

	var record domain.PiiRecord
	var idBytes []byte
	err = querier.QueryRowContext(ctx, query, uuidBytes).Scan(
		&idBytes, &record.Name, &record.Email, &record.Phone, &record.Address,
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

	if err := record.ID.UnmarshalBinary(idBytes); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal UUID")
	}

	return &record, nil
}

// ListByEmailHash retrieves all non-anonymized records whose lookup hash
// matches. More than one record can share an email address.
func (r *MySQLPiiRecordRepository) ListByEmailHash(ctx context.Context, emailHash []byte) ([]*domain.PiiRecord, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT ` + piiRecordColumns + `
			  FROM pii_records
			  WHERE email_hash = ? AND anonymized = FALSE
			  ORDER BY created_at ASC`

	rows, err := querier.QueryContext(ctx, query, emailHash)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list pii records by email hash")
	}

	return scanMySQLPiiRecords(rows)
}

// ListActivePastRetention retrieves non-anonymized records whose retention
// date is at or before the cutoff, oldest first, bounded by limit.
func (r *MySQLPiiRecordRepository) ListActivePastRetention(
	ctx context.Context,
	cutoff time.Time,
	limit int,
) ([]*domain.PiiRecord, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT ` + piiRecordColumns + `
			  FROM pii_records
			  WHERE anonymized = FALSE AND data_retention_date <= ?
			  ORDER BY data_retention_date ASC
			  LIMIT ?`

	rows, err := querier.QueryContext(ctx, query, cutoff, limit)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list records past retention")
	}

	return scanMySQLPiiRecords(rows)
}

// ListAnonymizedBefore retrieves anonymized records whose retention date is
// at or before the cutoff, oldest first, bounded by limit.
func (r *MySQLPiiRecordRepository) ListAnonymizedBefore(
	ctx context.Context,
	cutoff time.Time,
	limit int,
) ([]*domain.PiiRecord, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT ` + piiRecordColumns + `
			  FROM pii_records
			  WHERE anonymized = TRUE AND data_retention_date <= ?
			  ORDER BY data_retention_date ASC
			  LIMIT ?`

	rows, err := querier.QueryContext(ctx, query, cutoff, limit)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list anonymized records")
	}

	return scanMySQLPiiRecords(rows)
}

// ListByMaxKeyVersion retrieves non-anonymized records last written under a
// key version strictly below the given one. Pages by keyset: only rows with
// id greater than afterID are returned, in ID order. UUIDv7 IDs start with
// the timestamp, so BINARY(16) order is creation order.
func (r *MySQLPiiRecordRepository) ListByMaxKeyVersion(
	ctx context.Context,
	version uint32,
	afterID uuid.UUID,
	limit int,
) ([]*domain.PiiRecord, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT ` + piiRecordColumns + `
			  FROM pii_records
			  WHERE anonymized = FALSE AND key_version < ? AND id > ?
			  ORDER BY id ASC
			  LIMIT ?`

	afterBytes, err := afterID.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal UUID")
	}

	rows, err := querier.QueryContext(ctx, query, version, afterBytes, limit)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list records by key version")
	}

	return scanMySQLPiiRecords(rows)
}

// Update persists the record with optimistic concurrency: the row is written
// only if its updated_at still equals prevUpdatedAt.
func (r *MySQLPiiRecordRepository) Update(ctx context.Context, record *domain.PiiRecord, prevUpdatedAt time.Time) error {
	querier := database.GetTx(ctx, r.db)

	query := `UPDATE pii_records
			  SET name = ?, email = ?, phone = ?, address = ?, email_hash = ?,
			      key_version = ?, consent_given = ?, consent_timestamp = ?,
			      consent_source = ?, data_retention_date = ?, anonymized = ?,
			      updated_at = ?
			  WHERE id = ? AND updated_at = ?`

	uuidBytes, err := record.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal UUID")
	}

	result, err := querier.ExecContext(ctx, query,
		record.Name, record.Email, record.Phone, record.Address, record.EmailHash,
		record.KeyVersion, record.ConsentGiven, record.ConsentTimestamp,
		record.ConsentSource, record.DataRetentionDate, record.Anonymized,
		record.UpdatedAt,
		uuidBytes, prevUpdatedAt,
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
func (r *MySQLPiiRecordRepository) Delete(ctx context.Context, id uuid.UUID) error {
	querier := database.GetTx(ctx, r.db)

	query := `DELETE FROM pii_records WHERE id = ?`

	uuidBytes, err := id.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal UUID")
	}

	result, err := querier.ExecContext(ctx, query, uuidBytes)
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

func scanMySQLPiiRecords(rows *sql.Rows) ([]*domain.PiiRecord, error) {
	defer rows.Close() //nolint:errcheck

	records := make([]*domain.PiiRecord, 0)
	for rows.Next() {
		var record domain.PiiRecord
		var idBytes []byte

		err := rows.Scan(
			&idBytes, &record.Name, &record.Email, &record.Phone, &record.Address,
			&record.EmailHash, &record.KeyVersion,
			&record.ConsentGiven, &record.ConsentTimestamp, &record.ConsentSource,
			&record.DataRetentionDate, &record.Anonymized,
			&record.CreatedAt, &record.UpdatedAt,
		)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan pii record")
		}

		if err := record.ID.UnmarshalBinary(idBytes); err != nil {
			return nil, apperrors.Wrap(err, "failed to unmarshal UUID")
		}

		records = append(records, &record)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate pii records")
	}

	return records, nil
}
