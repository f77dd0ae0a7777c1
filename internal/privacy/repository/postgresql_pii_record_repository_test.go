package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/copp1723/seorylie-sub000/internal/privacy/domain"
)

var piiRecordTestColumns = []string{
	"id", "name", "email", "phone", "address", "email_hash", "key_version",
	"consent_given", "consent_timestamp", "consent_source", "data_retention_date",
	"anonymized", "created_at", "updated_at",
}

func testRecord() *domain.PiiRecord {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	return &domain.PiiRecord{
		ID:                uuid.Must(uuid.NewV7()),
		Name:              []byte("ct-name"),
		Email:             []byte("ct-email"),
		Phone:             []byte("ct-phone"),
		Address:           []byte("ct-address"),
		EmailHash:         []byte("hash"),
		KeyVersion:        1,
		ConsentGiven:      true,
		ConsentTimestamp:  now,
		ConsentSource:     "web_form",
		DataRetentionDate: now.AddDate(0, 0, 730),
		Anonymized:        false,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
}

func recordRow(record *domain.PiiRecord) *sqlmock.Rows {
	return sqlmock.NewRows(piiRecordTestColumns).AddRow(
		record.ID, record.Name, record.Email, record.Phone, record.Address,
		record.EmailHash, record.KeyVersion,
		record.ConsentGiven, record.ConsentTimestamp, record.ConsentSource,
		record.DataRetentionDate, record.Anonymized,
		record.CreatedAt, record.UpdatedAt,
	)
}

func TestPostgreSQLPiiRecordRepository_Create(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	record := testRecord()

	mock.ExpectExec("INSERT INTO pii_records").
		WithArgs(
			record.ID, record.Name, record.Email, record.Phone, record.Address,
			record.EmailHash, record.KeyVersion,
			record.ConsentGiven, record.ConsentTimestamp, record.ConsentSource,
			record.DataRetentionDate, record.Anonymized,
			record.CreatedAt, record.UpdatedAt,
		).
		WillReturnResult(sqlmock.NewResult(0, 1))

	repo := NewPostgreSQLPiiRecordRepository(db)
	err = repo.Create(context.Background(), record)

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgreSQLPiiRecordRepository_GetByID(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
		require.NoError(t, err)
		defer func() { _ = db.Close() }()

		record := testRecord()

		mock.ExpectQuery("FROM pii_records WHERE id").
			WithArgs(record.ID).
			WillReturnRows(recordRow(record))

		repo := NewPostgreSQLPiiRecordRepository(db)
		got, err := repo.GetByID(context.Background(), record.ID)

		require.NoError(t, err)
		assert.Equal(t, record.ID, got.ID)
		assert.Equal(t, record.Email, got.Email)
		assert.Equal(t, record.EmailHash, got.EmailHash)
		assert.Equal(t, record.KeyVersion, got.KeyVersion)
		assert.True(t, got.ConsentGiven)
		assert.False(t, got.Anonymized)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
		require.NoError(t, err)
		defer func() { _ = db.Close() }()

		id := uuid.Must(uuid.NewV7())
		mock.ExpectQuery("FROM pii_records WHERE id").
			WithArgs(id).
			WillReturnRows(sqlmock.NewRows(piiRecordTestColumns))

		repo := NewPostgreSQLPiiRecordRepository(db)
		got, err := repo.GetByID(context.Background(), id)

		assert.Nil(t, got)
		assert.ErrorIs(t, err, domain.ErrRecordNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPostgreSQLPiiRecordRepository_ListByEmailHash(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	first := testRecord()
	second := testRecord()
	second.CreatedAt = first.CreatedAt.Add(time.Hour)

	rows := recordRow(first).AddRow(
		second.ID, second.Name, second.Email, second.Phone, second.Address,
		second.EmailHash, second.KeyVersion,
		second.ConsentGiven, second.ConsentTimestamp, second.ConsentSource,
		second.DataRetentionDate, second.Anonymized,
		second.CreatedAt, second.UpdatedAt,
	)

	mock.ExpectQuery("WHERE email_hash").
		WithArgs(first.EmailHash).
		WillReturnRows(rows)

	repo := NewPostgreSQLPiiRecordRepository(db)
	records, err := repo.ListByEmailHash(context.Background(), first.EmailHash)

	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, first.ID, records[0].ID)
	assert.Equal(t, second.ID, records[1].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgreSQLPiiRecordRepository_ListActivePastRetention(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	record := testRecord()
	cutoff := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery("anonymized = FALSE AND data_retention_date").
		WithArgs(cutoff, 100).
		WillReturnRows(recordRow(record))

	repo := NewPostgreSQLPiiRecordRepository(db)
	records, err := repo.ListActivePastRetention(context.Background(), cutoff, 100)

	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, record.ID, records[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgreSQLPiiRecordRepository_ListAnonymizedBefore(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	record := testRecord()
	record.Anonymized = true
	cutoff := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery("anonymized = TRUE AND data_retention_date").
		WithArgs(cutoff, 50).
		WillReturnRows(recordRow(record))

	repo := NewPostgreSQLPiiRecordRepository(db)
	records, err := repo.ListAnonymizedBefore(context.Background(), cutoff, 50)

	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.True(t, records[0].Anonymized)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgreSQLPiiRecordRepository_ListByMaxKeyVersion(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	record := testRecord()

	mock.ExpectQuery("anonymized = FALSE AND key_version").
		WithArgs(uint32(2), uuid.Nil, 100).
		WillReturnRows(recordRow(record))

	repo := NewPostgreSQLPiiRecordRepository(db)
	records, err := repo.ListByMaxKeyVersion(context.Background(), 2, uuid.Nil, 100)

	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, uint32(1), records[0].KeyVersion)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgreSQLPiiRecordRepository_Update(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
		require.NoError(t, err)
		defer func() { _ = db.Close() }()

		record := testRecord()
		prev := record.UpdatedAt
		record.UpdatedAt = prev.Add(time.Minute)

		mock.ExpectExec("UPDATE pii_records").
			WithArgs(
				record.Name, record.Email, record.Phone, record.Address, record.EmailHash,
				record.KeyVersion, record.ConsentGiven, record.ConsentTimestamp,
				record.ConsentSource, record.DataRetentionDate, record.Anonymized,
				record.UpdatedAt,
				record.ID, prev,
			).
			WillReturnResult(sqlmock.NewResult(0, 1))

		repo := NewPostgreSQLPiiRecordRepository(db)
		err = repo.Update(context.Background(), record, prev)

		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("stale updated_at loses the race", func(t *testing.T) {
		db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
		require.NoError(t, err)
		defer func() { _ = db.Close() }()

		record := testRecord()
		prev := record.UpdatedAt

		mock.ExpectExec("UPDATE pii_records").
			WillReturnResult(sqlmock.NewResult(0, 0))

		repo := NewPostgreSQLPiiRecordRepository(db)
		err = repo.Update(context.Background(), record, prev)

		assert.ErrorIs(t, err, domain.ErrLifecycleConflict)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPostgreSQLPiiRecordRepository_Delete(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
		require.NoError(t, err)
		defer func() { _ = db.Close() }()

		id := uuid.Must(uuid.NewV7())
		mock.ExpectExec("DELETE FROM pii_records").
			WithArgs(id).
			WillReturnResult(sqlmock.NewResult(0, 1))

		repo := NewPostgreSQLPiiRecordRepository(db)
		err = repo.Delete(context.Background(), id)

		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing row", func(t *testing.T) {
		db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
		require.NoError(t, err)
		defer func() { _ = db.Close() }()

		id := uuid.Must(uuid.NewV7())
		mock.ExpectExec("DELETE FROM pii_records").
			WithArgs(id).
			WillReturnResult(sqlmock.NewResult(0, 0))

		repo := NewPostgreSQLPiiRecordRepository(db)
		err = repo.Delete(context.Background(), id)

		assert.ErrorIs(t, err, domain.ErrRecordNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
