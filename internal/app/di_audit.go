package app

import (
	"fmt"

	auditRepository "github.com/copp1723/seorylie-sub000/internal/audit/repository"
	auditUsecase "github.com/copp1723/seorylie-sub000/internal/audit/usecase"
)

// AuditRepository returns the audit entry repository for the configured
// database driver.
func (c *Container) AuditRepository() (auditUsecase.AuditEntryRepository, error) {
	c.auditRepoInit.Do(func() {
		repo, err := c.initAuditRepository()
		if err != nil {
			c.initErrors["auditRepo"] = err
			return
		}
		c.auditRepo = repo
	})
	if storedErr, exists := c.initErrors["auditRepo"]; exists {
		return nil, storedErr
	}
	return c.auditRepo, nil
}

// AuditUseCase returns the audit use case instance.
func (c *Container) AuditUseCase() (auditUsecase.AuditUseCase, error) {
	c.auditUseCaseInit.Do(func() {
		auditRepo, err := c.AuditRepository()
		if err != nil {
			c.initErrors["auditUseCase"] = fmt.Errorf("failed to get audit repository for audit use case: %w", err)
			return
		}
		c.auditUseCase = auditUsecase.NewAuditUseCase(auditRepo, c.RedactionEngine())
	})
	if storedErr, exists := c.initErrors["auditUseCase"]; exists {
		return nil, storedErr
	}
	return c.auditUseCase, nil
}

// initAuditRepository selects the repository for the database driver.
func (c *Container) initAuditRepository() (auditUsecase.AuditEntryRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for audit repository: %w", err)
	}

	switch c.config.DBDriver {
	case "mysql":
		return auditRepository.NewMySQLAuditEntryRepository(db), nil
	case "postgres":
		return auditRepository.NewPostgreSQLAuditEntryRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}
