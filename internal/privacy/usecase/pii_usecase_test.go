package usecase

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	auditDomain "github.com/copp1723/seorylie-sub000/internal/audit/domain"
	cryptoDomain "github.com/copp1723/seorylie-sub000/internal/crypto/domain"
	cryptoService "github.com/copp1723/seorylie-sub000/internal/crypto/service"
	databaseMocks "github.com/copp1723/seorylie-sub000/internal/database/mocks"
	apperrors "github.com/copp1723/seorylie-sub000/internal/errors"
	privacyDomain "github.com/copp1723/seorylie-sub000/internal/privacy/domain"
	usecaseMocks "github.com/copp1723/seorylie-sub000/internal/privacy/usecase/mocks"
)

var testRetention = RetentionPolicy{
	Base:  730 * 24 * time.Hour,
	Long:  1095 * 24 * time.Hour,
	Short: 730 * 24 * time.Hour,
}

func newTestCipher(t *testing.T) *cryptoService.CipherService {
	t.Helper()

	key := bytes.Repeat([]byte{0x42}, cryptoDomain.KeySize)
	chain, err := cryptoDomain.NewKeyChain(
		&cryptoDomain.DataKey{Version: 1, Key: key},
		nil,
		cryptoDomain.AESGCM,
	)
	require.NoError(t, err)

	return cryptoService.NewCipherService(chain, cryptoService.NewAEADManager())
}

func newTestUseCase(
	t *testing.T,
	repo *usecaseMocks.MockPiiRecordRepository,
	audit *usecaseMocks.MockAuditRecorder,
) (PiiUseCase, *cryptoService.CipherService) {
	t.Helper()

	cipher := newTestCipher(t)
	useCase := NewPiiUseCase(
		&databaseMocks.FakeTxManager{},
		repo,
		cipher,
		audit,
		testRetention,
		100,
		slog.New(slog.DiscardHandler),
	)
	return useCase, cipher
}

// encryptedRecord builds a persisted-looking record whose fields are
// encrypted with the given cipher.
func encryptedRecord(t *testing.T, cipher *cryptoService.CipherService, email string, createdAt time.Time) *privacyDomain.PiiRecord {
	t.Helper()
	ctx := context.Background()

	record := &privacyDomain.PiiRecord{
		ID:                uuid.Must(uuid.NewV7()),
		EmailHash:         cipher.LookupHash(email),
		KeyVersion:        cipher.CurrentKeyVersion(),
		ConsentGiven:      true,
		ConsentTimestamp:  createdAt,
		ConsentSource:     "web_form",
		DataRetentionDate: createdAt.Add(testRetention.Base),
		CreatedAt:         createdAt,
		UpdatedAt:         createdAt,
	}

	plaintexts := map[string]string{
		"name":    "Jane Doe",
		"email":   email,
		"phone":   "555-123-4567",
		"address": "42 Main St",
	}
	for field, slot := range record.PIIFields() {
		encrypted, err := cipher.EncryptValue(ctx, plaintexts[field])
		require.NoError(t, err)
		*slot = encrypted
	}

	return record
}

func TestPiiUseCase_Intake(t *testing.T) {
	ctx := context.Background()

	t.Run("Success_EncryptsAndPersists", func(t *testing.T) {
		mockRepo := new(usecaseMocks.MockPiiRecordRepository)
		mockAudit := new(usecaseMocks.MockAuditRecorder)
		useCase, cipher := newTestUseCase(t, mockRepo, mockAudit)

		var created *privacyDomain.PiiRecord
		mockRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.PiiRecord")).
			Run(func(args mock.Arguments) {
				created = args.Get(1).(*privacyDomain.PiiRecord)
			}).
			Return(nil)
		mockAudit.On("Record", mock.Anything, auditDomain.OperationIntake,
			mock.AnythingOfType("uuid.UUID"), "system", true, mock.Anything).
			Return(nil)

		state, err := useCase.Intake(ctx, IntakeInput{
			Name:          "Jane Doe",
			Email:         "Jane.Doe@Example.com",
			Phone:         "555-123-4567",
			Address:       "42 Main St",
			ConsentGiven:  true,
			ConsentSource: "web_form",
			Actor:         "system",
		})

		require.NoError(t, err)
		require.NotNil(t, created)
		assert.Equal(t, created.ID, state.RecordID)
		assert.True(t, state.Given)
		assert.Equal(t, "web_form", state.Source)

		// Stored fields are ciphertext envelopes, not plaintext.
		assert.NotContains(t, string(created.Name), "Jane")
		assert.NotContains(t, string(created.Email), "jane.doe")

		// The email address is normalized before hashing and encryption.
		assert.Equal(t, cipher.LookupHash("jane.doe@example.com"), created.EmailHash)
		email, err := cipher.DecryptValue(ctx, created.Email)
		require.NoError(t, err)
		assert.Equal(t, "jane.doe@example.com", email)

		// Intake always lands on the base horizon.
		expected := time.Now().UTC().Add(testRetention.Base)
		assert.WithinDuration(t, expected, created.DataRetentionDate, time.Minute)
		assert.Equal(t, uint32(1), created.KeyVersion)

		mockRepo.AssertExpectations(t)
		mockAudit.AssertExpectations(t)
	})

	t.Run("Error_InvalidInput", func(t *testing.T) {
		tests := []struct {
			name  string
			input IntakeInput
		}{
			{"missing name", IntakeInput{Email: "a@b.com", ConsentSource: "web_form"}},
			{"missing email", IntakeInput{Name: "Jane", ConsentSource: "web_form"}},
			{"malformed email", IntakeInput{Name: "Jane", Email: "not-an-email", ConsentSource: "web_form"}},
			{"missing consent source", IntakeInput{Name: "Jane", Email: "a@b.com"}},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				mockRepo := new(usecaseMocks.MockPiiRecordRepository)
				mockAudit := new(usecaseMocks.MockAuditRecorder)
				useCase, _ := newTestUseCase(t, mockRepo, mockAudit)

				_, err := useCase.Intake(ctx, tt.input)

				assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
				mockRepo.AssertNotCalled(t, "Create")
			})
		}
	})
}

func TestPiiUseCase_RecordConsent(t *testing.T) {
	ctx := context.Background()
	createdAt := time.Now().UTC().Add(-24 * time.Hour)

	t.Run("Success_GrantMovesToLongHorizon", func(t *testing.T) {
		mockRepo := new(usecaseMocks.MockPiiRecordRepository)
		mockAudit := new(usecaseMocks.MockAuditRecorder)
		useCase, cipher := newTestUseCase(t, mockRepo, mockAudit)

		record := encryptedRecord(t, cipher, "jane.doe@example.com", createdAt)
		record.ConsentGiven = false

		var updated *privacyDomain.PiiRecord
		mockRepo.On("GetByID", mock.Anything, record.ID).Return(record, nil)
		mockRepo.On("Update", mock.Anything, mock.AnythingOfType("*domain.PiiRecord"), createdAt).
			Run(func(args mock.Arguments) {
				updated = args.Get(1).(*privacyDomain.PiiRecord)
			}).
			Return(nil)
		mockAudit.On("Record", mock.Anything, auditDomain.OperationConsentUpdate,
			record.ID, "admin-1", true, mock.Anything).
			Return(nil)

		state, err := useCase.RecordConsent(ctx, record.ID, true, "support_call", "admin-1")

		require.NoError(t, err)
		assert.True(t, state.Given)
		assert.Equal(t, "support_call", state.Source)

		// Retention is recomputed from now, never extended from the old date.
		expected := time.Now().UTC().Add(testRetention.Long)
		assert.WithinDuration(t, expected, updated.DataRetentionDate, time.Minute)

		mockRepo.AssertExpectations(t)
		mockAudit.AssertExpectations(t)
	})

	t.Run("Success_RevokeMovesToShortHorizon", func(t *testing.T) {
		mockRepo := new(usecaseMocks.MockPiiRecordRepository)
		mockAudit := new(usecaseMocks.MockAuditRecorder)
		useCase, cipher := newTestUseCase(t, mockRepo, mockAudit)

		record := encryptedRecord(t, cipher, "jane.doe@example.com", createdAt)

		var updated *privacyDomain.PiiRecord
		mockRepo.On("GetByID", mock.Anything, record.ID).Return(record, nil)
		mockRepo.On("Update", mock.Anything, mock.Anything, createdAt).
			Run(func(args mock.Arguments) {
				updated = args.Get(1).(*privacyDomain.PiiRecord)
			}).
			Return(nil)
		mockAudit.On("Record", mock.Anything, auditDomain.OperationConsentUpdate,
			record.ID, "admin-1", true, mock.Anything).
			Return(nil)

		state, err := useCase.RecordConsent(ctx, record.ID, false, "support_call", "admin-1")

		require.NoError(t, err)
		assert.False(t, state.Given)

		expected := time.Now().UTC().Add(testRetention.Short)
		assert.WithinDuration(t, expected, updated.DataRetentionDate, time.Minute)
	})

	t.Run("Success_LazyReencryptionAfterRotation", func(t *testing.T) {
		mockRepo := new(usecaseMocks.MockPiiRecordRepository)
		mockAudit := new(usecaseMocks.MockAuditRecorder)
		useCase, cipher := newTestUseCase(t, mockRepo, mockAudit)

		// Written under version 1, then the key rotates.
		record := encryptedRecord(t, cipher, "jane.doe@example.com", createdAt)
		_, err := cipher.Rotate(bytes.Repeat([]byte{0x7f}, cryptoDomain.KeySize))
		require.NoError(t, err)

		var updated *privacyDomain.PiiRecord
		mockRepo.On("GetByID", mock.Anything, record.ID).Return(record, nil)
		mockRepo.On("Update", mock.Anything, mock.Anything, createdAt).
			Run(func(args mock.Arguments) {
				updated = args.Get(1).(*privacyDomain.PiiRecord)
			}).
			Return(nil)
		mockAudit.On("Record", mock.Anything, auditDomain.OperationConsentUpdate,
			record.ID, "admin-1", true, mock.Anything).
			Return(nil)

		_, err = useCase.RecordConsent(ctx, record.ID, true, "support_call", "admin-1")
		require.NoError(t, err)

		// The write landed on the current key with a refreshed lookup hash.
		assert.Equal(t, uint32(2), updated.KeyVersion)
		assert.Equal(t, cipher.LookupHash("jane.doe@example.com"), updated.EmailHash)
		email, err := cipher.DecryptValue(ctx, updated.Email)
		require.NoError(t, err)
		assert.Equal(t, "jane.doe@example.com", email)
	})

	t.Run("Error_RecordAnonymized", func(t *testing.T) {
		mockRepo := new(usecaseMocks.MockPiiRecordRepository)
		mockAudit := new(usecaseMocks.MockAuditRecorder)
		useCase, cipher := newTestUseCase(t, mockRepo, mockAudit)

		record := encryptedRecord(t, cipher, "jane.doe@example.com", createdAt)
		record.ApplySentinel(privacyDomain.AnonymizedSentinel, time.Now().UTC())

		mockRepo.On("GetByID", mock.Anything, record.ID).Return(record, nil)

		_, err := useCase.RecordConsent(ctx, record.ID, true, "support_call", "admin-1")

		assert.ErrorIs(t, err, privacyDomain.ErrRecordAnonymized)
		mockRepo.AssertNotCalled(t, "Update")
	})

	t.Run("Error_RecordNotFound", func(t *testing.T) {
		mockRepo := new(usecaseMocks.MockPiiRecordRepository)
		mockAudit := new(usecaseMocks.MockAuditRecorder)
		useCase, _ := newTestUseCase(t, mockRepo, mockAudit)

		id := uuid.Must(uuid.NewV7())
		mockRepo.On("GetByID", mock.Anything, id).Return(nil, privacyDomain.ErrRecordNotFound)

		_, err := useCase.RecordConsent(ctx, id, true, "support_call", "admin-1")

		assert.ErrorIs(t, err, privacyDomain.ErrRecordNotFound)
	})

	t.Run("Retry_ConflictOnceThenSuccess", func(t *testing.T) {
		mockRepo := new(usecaseMocks.MockPiiRecordRepository)
		mockAudit := new(usecaseMocks.MockAuditRecorder)
		useCase, cipher := newTestUseCase(t, mockRepo, mockAudit)

		first := encryptedRecord(t, cipher, "jane.doe@example.com", createdAt)
		second := encryptedRecord(t, cipher, "jane.doe@example.com", createdAt.Add(time.Second))
		second.ID = first.ID

		mockRepo.On("GetByID", mock.Anything, first.ID).Return(first, nil).Once()
		mockRepo.On("Update", mock.Anything, mock.Anything, createdAt).
			Return(privacyDomain.ErrLifecycleConflict).Once()
		mockRepo.On("GetByID", mock.Anything, first.ID).Return(second, nil).Once()
		mockRepo.On("Update", mock.Anything, mock.Anything, second.UpdatedAt).
			Return(nil).Once()
		mockAudit.On("Record", mock.Anything, auditDomain.OperationConsentUpdate,
			first.ID, "admin-1", true, mock.Anything).
			Return(nil)

		_, err := useCase.RecordConsent(ctx, first.ID, true, "support_call", "admin-1")

		require.NoError(t, err)
		mockRepo.AssertExpectations(t)
	})

	t.Run("Error_ConflictTwice", func(t *testing.T) {
		mockRepo := new(usecaseMocks.MockPiiRecordRepository)
		mockAudit := new(usecaseMocks.MockAuditRecorder)
		useCase, cipher := newTestUseCase(t, mockRepo, mockAudit)

		record := encryptedRecord(t, cipher, "jane.doe@example.com", createdAt)

		mockRepo.On("GetByID", mock.Anything, record.ID).Return(record, nil)
		mockRepo.On("Update", mock.Anything, mock.Anything, mock.Anything).
			Return(privacyDomain.ErrLifecycleConflict)

		_, err := useCase.RecordConsent(ctx, record.ID, true, "support_call", "admin-1")

		assert.ErrorIs(t, err, privacyDomain.ErrLifecycleConflict)
	})
}

func TestPiiUseCase_Rectify(t *testing.T) {
	ctx := context.Background()
	createdAt := time.Now().UTC().Add(-24 * time.Hour)

	t.Run("Success_ReplacesEmailAndHash", func(t *testing.T) {
		mockRepo := new(usecaseMocks.MockPiiRecordRepository)
		mockAudit := new(usecaseMocks.MockAuditRecorder)
		useCase, cipher := newTestUseCase(t, mockRepo, mockAudit)

		record := encryptedRecord(t, cipher, "jane.doe@example.com", createdAt)

		var updated *privacyDomain.PiiRecord
		mockRepo.On("GetByID", mock.Anything, record.ID).Return(record, nil)
		mockRepo.On("Update", mock.Anything, mock.Anything, createdAt).
			Run(func(args mock.Arguments) {
				updated = args.Get(1).(*privacyDomain.PiiRecord)
			}).
			Return(nil)
		mockAudit.On("Record", mock.Anything, auditDomain.OperationRectify,
			record.ID, "admin-1", true, mock.Anything).
			Return(nil)

		newEmail := "Jane.New@Example.com"
		_, err := useCase.Rectify(ctx, record.ID, RectifyInput{Email: &newEmail, Actor: "admin-1"})

		require.NoError(t, err)
		assert.Equal(t, cipher.LookupHash("jane.new@example.com"), updated.EmailHash)

		email, err := cipher.DecryptValue(ctx, updated.Email)
		require.NoError(t, err)
		assert.Equal(t, "jane.new@example.com", email)

		// Untouched fields survive re-encryption.
		name, err := cipher.DecryptValue(ctx, updated.Name)
		require.NoError(t, err)
		assert.Equal(t, "Jane Doe", name)
	})

	t.Run("Error_NoFields", func(t *testing.T) {
		mockRepo := new(usecaseMocks.MockPiiRecordRepository)
		mockAudit := new(usecaseMocks.MockAuditRecorder)
		useCase, _ := newTestUseCase(t, mockRepo, mockAudit)

		_, err := useCase.Rectify(ctx, uuid.Must(uuid.NewV7()), RectifyInput{Actor: "admin-1"})

		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
		mockRepo.AssertNotCalled(t, "GetByID")
	})

	t.Run("Error_RecordAnonymized", func(t *testing.T) {
		mockRepo := new(usecaseMocks.MockPiiRecordRepository)
		mockAudit := new(usecaseMocks.MockAuditRecorder)
		useCase, cipher := newTestUseCase(t, mockRepo, mockAudit)

		record := encryptedRecord(t, cipher, "jane.doe@example.com", createdAt)
		record.ApplySentinel(privacyDomain.ErasedSentinel, time.Now().UTC())

		mockRepo.On("GetByID", mock.Anything, record.ID).Return(record, nil)

		name := "New Name"
		_, err := useCase.Rectify(ctx, record.ID, RectifyInput{Name: &name, Actor: "admin-1"})

		assert.ErrorIs(t, err, privacyDomain.ErrRecordAnonymized)
	})
}
