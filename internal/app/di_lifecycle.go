package app

import (
	"fmt"

	lifecycleUsecase "github.com/copp1723/seorylie-sub000/internal/lifecycle/usecase"
)

// LifecycleUseCase returns the sweep use case wrapped with metrics
// instrumentation.
func (c *Container) LifecycleUseCase() (lifecycleUsecase.LifecycleUseCase, error) {
	c.lifecycleUseCaseInit.Do(func() {
		useCase, err := c.initLifecycleUseCase()
		if err != nil {
			c.initErrors["lifecycleUseCase"] = err
			return
		}
		c.lifecycleUseCase = useCase
	})
	if storedErr, exists := c.initErrors["lifecycleUseCase"]; exists {
		return nil, storedErr
	}
	return c.lifecycleUseCase, nil
}

// initLifecycleUseCase creates the lifecycle use case with all its dependencies.
func (c *Container) initLifecycleUseCase() (lifecycleUsecase.LifecycleUseCase, error) {
	txManager, err := c.TxManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get tx manager for lifecycle use case: %w", err)
	}

	recordRepo, err := c.PiiRecordRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get record repository for lifecycle use case: %w", err)
	}

	auditUseCase, err := c.AuditUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get audit use case for lifecycle use case: %w", err)
	}

	businessMetrics, err := c.BusinessMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to get business metrics for lifecycle use case: %w", err)
	}

	useCase := lifecycleUsecase.NewLifecycleUseCase(
		txManager,
		recordRepo,
		auditUseCase,
		lifecycleUsecase.SweepConfig{
			BatchSize:   c.config.SweepBatchSize,
			Parallelism: c.config.SweepParallelism,
			RatePerSec:  c.config.SweepRatePerSec,
			Timeout:     c.config.SweepTimeout,
			PurgeWindow: c.config.PurgeWindow(),
		},
		c.Logger(),
	)

	return lifecycleUsecase.NewLifecycleUseCaseWithMetrics(useCase, businessMetrics), nil
}
