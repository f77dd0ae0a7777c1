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

// MySQLAuditEntryRepository implements audit entry persistence for MySQL.
// Uses BINARY(16) for UUIDs with transaction support via database.GetTx().
type MySQLAuditEntryRepository struct {
	db *sql.DB
}

// NewMySQLAuditEntryRepository creates a new MySQL audit entry repository.
func NewMySQLAuditEntryRepository(db *sql.DB) *MySQLAuditEntryRepository {
	return &MySQLAuditEntryRepository{db: db}
}

// Create inserts a new audit entry. Handles nil detail as database NULL.
func (m *MySQLAuditEntryRepository) Create(ctx context.Context, entry *domain.AuditEntry) error {
	querier := database.GetTx(ctx, m.db)

	var detailJSON []byte
	var err error

	if entry.Detail != nil {
		detailJSON, err = json.Marshal(entry.Detail)
		if err != nil {
			return apperrors.Wrap(err, "failed to marshal audit entry detail")
		}
	}

	idBytes, err := entry.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal UUID")
	}
	subjectBytes, err := entry.SubjectID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal subject UUID")
	}

	query := `INSERT INTO audit_entries (id, operation, subject_id, actor_id, success, detail, created_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?)`

	_, err = querier.ExecContext(
		ctx,
		query,
		idBytes,
		entry.Operation,
		subjectBytes,
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
func (m *MySQLAuditEntryRepository) List(
	ctx context.Context,
	offset, limit int,
) ([]*domain.AuditEntry, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT id, operation, subject_id, actor_id, success, detail, created_at
			  FROM audit_entries
			  ORDER BY id DESC
			  LIMIT ? OFFSET ?`

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
		var idBytes, subjectBytes []byte

		err := rows.Scan(
			&idBytes,
			&entry.Operation,
			&subjectBytes,
			&entry.ActorID,
			&entry.Success,
			&detailJSON,
			&entry.CreatedAt,
		)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan audit entry")
		}

		if err := entry.ID.UnmarshalBinary(idBytes); err != nil {
			return nil, apperrors.Wrap(err, "failed to unmarshal UUID")
		}
		if err := entry.SubjectID.UnmarshalBinary(subjectBytes); err != nil {
			return nil, apperrors.Wrap(err, "failed to unmarshal subject UUID")
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
func (m *MySQLAuditEntryRepository) DeleteOlderThan(
	ctx context.Context,
	olderThan time.Time,
	dryRun bool,
) (int64, error) {
	querier := database.GetTx(ctx, m.db)

	if dryRun {
		query := `SELECT COUNT(*) FROM audit_entries WHERE created_at < ?`
		var count int64
		err := querier.QueryRowContext(ctx, query, olderThan).Scan(&count)
		if err != nil {
			return 0, apperrors.Wrap(err, "failed to count audit entries")
		}
		return count, nil
	}

	query := `DELETE FROM audit_entries WHERE created_at < ?`
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
