package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	apperrors "github.com/copp1723/seorylie-sub000/internal/errors"
	"github.com/copp1723/seorylie-sub000/internal/metrics"
)

// mockBusinessMetrics is a mock implementation of metrics.BusinessMetrics for testing.
type mockBusinessMetrics struct {
	mock.Mock
}

func (m *mockBusinessMetrics) RecordOperation(ctx context.Context, domain, operation, status string) {
	m.Called(ctx, domain, operation, status)
}

func (m *mockBusinessMetrics) RecordDuration(
	ctx context.Context,
	domain, operation string,
	duration time.Duration,
	status string,
) {
	m.Called(ctx, domain, operation, duration, status)
}

var _ metrics.BusinessMetrics = (*mockBusinessMetrics)(nil)

// mockLifecycleUseCase is a mock implementation of LifecycleUseCase for testing.
type mockLifecycleUseCase struct {
	mock.Mock
}

func (m *mockLifecycleUseCase) RunAnonymizationSweep(ctx context.Context) (*SweepReport, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*SweepReport), args.Error(1)
}

func (m *mockLifecycleUseCase) RunPurgeSweep(ctx context.Context) (*SweepReport, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*SweepReport), args.Error(1)
}

func TestMetricsDecorator_RunAnonymizationSweep(t *testing.T) {
	ctx := context.Background()

	t.Run("Success_RecordsSuccessMetrics", func(t *testing.T) {
		mockUseCase := &mockLifecycleUseCase{}
		mockMetrics := &mockBusinessMetrics{}

		expectedReport := &SweepReport{Examined: 3, Processed: 3}

		mockUseCase.On("RunAnonymizationSweep", ctx).Return(expectedReport, nil).Once()
		mockMetrics.On("RecordOperation", ctx, "lifecycle", "anonymization_sweep", "success").
			Return().
			Once()
		mockMetrics.On("RecordDuration", ctx, "lifecycle", "anonymization_sweep", mock.AnythingOfType("time.Duration"), "success").
			Return().
			Once()

		decorator := NewLifecycleUseCaseWithMetrics(mockUseCase, mockMetrics)
		report, err := decorator.RunAnonymizationSweep(ctx)

		assert.NoError(t, err)
		assert.Equal(t, expectedReport, report)
		mockMetrics.AssertExpectations(t)
	})

	t.Run("Error_RecordsErrorMetrics", func(t *testing.T) {
		mockUseCase := &mockLifecycleUseCase{}
		mockMetrics := &mockBusinessMetrics{}

		expectedError := apperrors.New("sweep aborted")

		mockUseCase.On("RunAnonymizationSweep", ctx).Return(nil, expectedError).Once()
		mockMetrics.On("RecordOperation", ctx, "lifecycle", "anonymization_sweep", "error").
			Return().
			Once()
		mockMetrics.On("RecordDuration", ctx, "lifecycle", "anonymization_sweep", mock.AnythingOfType("time.Duration"), "error").
			Return().
			Once()

		decorator := NewLifecycleUseCaseWithMetrics(mockUseCase, mockMetrics)
		report, err := decorator.RunAnonymizationSweep(ctx)

		assert.Error(t, err)
		assert.Nil(t, report)
		mockMetrics.AssertExpectations(t)
	})
}

func TestMetricsDecorator_RunPurgeSweep(t *testing.T) {
	ctx := context.Background()

	t.Run("Success_RecordsSuccessMetrics", func(t *testing.T) {
		mockUseCase := &mockLifecycleUseCase{}
		mockMetrics := &mockBusinessMetrics{}

		expectedReport := &SweepReport{Examined: 1, Processed: 1}

		mockUseCase.On("RunPurgeSweep", ctx).Return(expectedReport, nil).Once()
		mockMetrics.On("RecordOperation", ctx, "lifecycle", "purge_sweep", "success").
			Return().
			Once()
		mockMetrics.On("RecordDuration", ctx, "lifecycle", "purge_sweep", mock.AnythingOfType("time.Duration"), "success").
			Return().
			Once()

		decorator := NewLifecycleUseCaseWithMetrics(mockUseCase, mockMetrics)
		report, err := decorator.RunPurgeSweep(ctx)

		assert.NoError(t, err)
		assert.Equal(t, expectedReport, report)
		mockMetrics.AssertExpectations(t)
	})
}
