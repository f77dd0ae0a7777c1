// Package mocks provides mock implementations for testing the lifecycle sweeps.
package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	privacyDomain "github.com/copp1723/seorylie-sub000/internal/privacy/domain"
)

// MockPiiRecordRepository is a mock implementation of PiiRecordRepository.
type MockPiiRecordRepository struct {
	mock.Mock
}

// GetByID mocks the GetByID method.
func (m *MockPiiRecordRepository) GetByID(ctx context.Context, id uuid.UUID) (*privacyDomain.PiiRecord, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*privacyDomain.PiiRecord), args.Error(1)
}

// ListActivePastRetention mocks the ListActivePastRetention method.
func (m *MockPiiRecordRepository) ListActivePastRetention(
	ctx context.Context,
	cutoff time.Time,
	limit int,
) ([]*privacyDomain.PiiRecord, error) {
	args := m.Called(ctx, cutoff, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*privacyDomain.PiiRecord), args.Error(1)
}

// ListAnonymizedBefore mocks the ListAnonymizedBefore method.
func (m *MockPiiRecordRepository) ListAnonymizedBefore(
	ctx context.Context,
	cutoff time.Time,
	limit int,
) ([]*privacyDomain.PiiRecord, error) {
	args := m.Called(ctx, cutoff, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*privacyDomain.PiiRecord), args.Error(1)
}

// Update mocks the Update method.
func (m *MockPiiRecordRepository) Update(
	ctx context.Context,
	record *privacyDomain.PiiRecord,
	prevUpdatedAt time.Time,
) error {
	args := m.Called(ctx, record, prevUpdatedAt)
	return args.Error(0)
}

// Delete mocks the Delete method.
func (m *MockPiiRecordRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
