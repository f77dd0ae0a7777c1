// Package repository provides data persistence implementations for audit entries.
package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/copp1723/seorylie-sub000/internal/audit/domain"
	"github.com/copp1723/seorylie-sub000/internal/database"

	apperrors "github.com/copp1723/seorylie-sub000/internal/errors"
)

// PostgreSQLAuditEntryRepository implements audit entry persistence for PostgreSQL.
// Uses native UUID types with transaction support via database.GetTx().
type PostgreSQLAuditEntryRepository struct {
	db *sql.DB
}

// NewPostgreSQLAuditEntryRepository creates a new PostgreSQL audit entry repository.
func NewPostgreSQLAuditEntryRepository(db *sql.DB) *PostgreSQLAuditEntryRepository {
	return &PostgreSQLAuditEntryRepository{db: db}
}

// Create inserts a new audit entry. Handles nil detail as database NULL.
func (p *PostgreSQLAuditEntryRepository) Create(ctx context.Context, entry *domain.AuditEntry) error {
	querier := database.GetTx(ctx, p.db)

	var detailJSON []byte
	var err error

	if entry.Detail != nil {
		detailJSON, err = json.Marshal(entry.Detail)
		if err != nil {
			return apperrors.Wrap(err, "failed to marshal audit entry detail")
		}
	}

	query := `INSERT INTO audit_entries (id, operation, subject_id, actor_id, success, detail, created_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err = querier.ExecContext(
		ctx,
		query,
		entry.ID,
		entry.Operation,
		entry.SubjectID,
		entry.ActorID,
		entry.Success,
		detailJSON,
		entry.CreatedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create audit entry")
	}

	return nil
}

// List retrieves audit entries ordered by ID descending (newest first) with
// pagination. Handles NULL detail gracefully.
func (p *PostgreSQLAuditEntryRepository) List(
	ctx context.Context,
	offset, limit int,
) ([]*domain.AuditEntry, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, operation, subject_id, actor_id, success, detail, created_at
			  FROM audit_entries
			  ORDER BY id DESC
			  LIMIT $1 OFFSET $2`

	rows, err := querier.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list audit entries")
	}
	defer func() {
		_ = rows.Close()
	}()

	entries := make([]*domain.AuditEntry, 0)
	for rows.Next() {
		var entry domain.AuditEntry
		var detailJSON []byte

		err := rows.Scan(
			&entry.ID,
			&entry.Operation,
			&entry.SubjectID,
			&entry.ActorID,
			&entry.Success,
			&detailJSON,
			&entry.CreatedAt,
		)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan audit entry")
		}

		if detailJSON != nil {
			if err := json.Unmarshal(detailJSON, &entry.Detail); err != nil {
				return nil, apperrors.Wrap(err, "failed to unmarshal audit entry detail")
			}
		}

		entries = append(entries, &entry)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate audit entries")
	}

	return entries, nil
}

// DeleteOlderThan removes audit entries created before the specified timestamp.
// When dryRun is true, returns the count via SELECT COUNT(*) without deletion.
// All timestamps are expected in UTC.
func (p *PostgreSQLAuditEntryRepository) DeleteOlderThan(
	ctx context.Context,
	olderThan time.Time,
	dryRun bool,
) (int64, error) {
	querier := database.GetTx(ctx, p.db)

	if dryRun {
		query := `SELECT COUNT(*) FROM audit_entries WHERE created_at < $1`
		var count int64
		err := querier.QueryRowContext(ctx, query, olderThan).Scan(&count)
		if err != nil {
			return 0, apperrors.Wrap(err, "failed to count audit entries")
		}
		return count, nil
	}

	query := `DELETE FROM audit_entries WHERE created_at < $1`
	result, err := querier.ExecContext(ctx, query, olderThan)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to delete audit entries")
	}

	count, err := result.RowsAffected()
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to get affected rows count")
	}

	return count, nil
}
