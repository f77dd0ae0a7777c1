package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockAuditRecorder is a mock implementation of AuditRecorder.
type MockAuditRecorder struct {
	mock.Mock
}

// Record mocks the Record method.
func (m *MockAuditRecorder) Record(
	ctx context.Context,
	operation string,
	subjectID uuid.UUID,
	actorID string,
	success bool,
	detail map[string]any,
) error {
	args := m.Called(ctx, operation, subjectID, actorID, success, detail)
	return args.Error(0)
}
