package app

import (
	"fmt"
	"strings"

	privacyDomain "github.com/copp1723/seorylie-sub000/internal/privacy/domain"
	privacyRepository "github.com/copp1723/seorylie-sub000/internal/privacy/repository"
	privacyService "github.com/copp1723/seorylie-sub000/internal/privacy/service"
	privacyUsecase "github.com/copp1723/seorylie-sub000/internal/privacy/usecase"
)

// RedactionEngine returns the redaction engine configured from the extra
// sensitive tokens and depth bound in configuration. The engine is pure, so a
// single instance serves logging, audit, and HTTP concerns.
func (c *Container) RedactionEngine() *privacyService.RedactionEngine {
	c.redactionEngineInit.Do(func() {
		policy := privacyDomain.NewRedactionPolicy(
			splitAndTrim(c.config.ExtraSensitiveTokens),
			c.config.RedactionMaxDepth,
			nil,
		)
		c.redactionEngine = privacyService.NewRedactionEngine(policy, privacyService.NewMasker())
	})
	return c.redactionEngine
}

// PiiRecordRepository returns the PII record repository for the configured
// database driver.
func (c *Container) PiiRecordRepository() (privacyUsecase.PiiRecordRepository, error) {
	c.piiRecordRepoInit.Do(func() {
		repo, err := c.initPiiRecordRepository()
		if err != nil {
			c.initErrors["piiRecordRepo"] = err
			return
		}
		c.piiRecordRepo = repo
	})
	if storedErr, exists := c.initErrors["piiRecordRepo"]; exists {
		return nil, storedErr
	}
	return c.piiRecordRepo, nil
}

// PiiUseCase returns the PII use case wrapped with metrics instrumentation.
func (c *Container) PiiUseCase() (privacyUsecase.PiiUseCase, error) {
	c.piiUseCaseInit.Do(func() {
		useCase, err := c.initPiiUseCase()
		if err != nil {
			c.initErrors["piiUseCase"] = err
			return
		}
		c.piiUseCase = useCase
	})
	if storedErr, exists := c.initErrors["piiUseCase"]; exists {
		return nil, storedErr
	}
	return c.piiUseCase, nil
}

// initPiiRecordRepository selects the repository for the database driver.
func (c *Container) initPiiRecordRepository() (privacyUsecase.PiiRecordRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for pii record repository: %w", err)
	}

	switch c.config.DBDriver {
	case "mysql":
		return privacyRepository.NewMySQLPiiRecordRepository(db), nil
	case "postgres":
		return privacyRepository.NewPostgreSQLPiiRecordRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

// initPiiUseCase creates the PII use case with all its dependencies.
func (c *Container) initPiiUseCase() (privacyUsecase.PiiUseCase, error) {
	txManager, err := c.TxManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get tx manager for pii use case: %w", err)
	}

	recordRepo, err := c.PiiRecordRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get record repository for pii use case: %w", err)
	}

	cipher, err := c.Cipher()
	if err != nil {
		return nil, fmt.Errorf("failed to get cipher for pii use case: %w", err)
	}

	auditUseCase, err := c.AuditUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get audit use case for pii use case: %w", err)
	}

	businessMetrics, err := c.BusinessMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to get business metrics for pii use case: %w", err)
	}

	useCase := privacyUsecase.NewPiiUseCase(
		txManager,
		recordRepo,
		cipher,
		auditUseCase,
		privacyUsecase.RetentionPolicy{
			Base:  c.config.RetentionBase(),
			Long:  c.config.RetentionLong(),
			Short: c.config.RetentionShort(),
		},
		c.config.SweepBatchSize,
		c.Logger(),
	)

	return privacyUsecase.NewPiiUseCaseWithMetrics(useCase, businessMetrics), nil
}

// splitAndTrim splits a comma-separated configuration value into its non-empty
// trimmed entries.
func splitAndTrim(value string) []string {
	if value == "" {
		return nil
	}

	parts := strings.Split(value, ",")
	entries := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			entries = append(entries, trimmed)
		}
	}
	return entries
}
