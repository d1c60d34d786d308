package app

import (
	"fmt"

	recordsRepository "github.com/allisson/pii-vault/internal/records/repository"
	recordsUsecase "github.com/allisson/pii-vault/internal/records/usecase"
)

// RecordRepository returns the record repository based on the configured database driver.
// It also serves the registries as their reference counter.
func (c *Container) RecordRepository() (recordsUsecase.RecordRepository, error) {
	c.recordRepoInit.Do(func() {
		db, err := c.DB()
		if err != nil {
			c.initErrors["recordRepo"] = fmt.Errorf("failed to get database for record repository: %w", err)
			return
		}

		switch c.config.DBDriver {
		case "postgres":
			c.recordRepo = recordsRepository.NewPostgreSQLRecordRepository(db)
		case "mysql":
			c.recordRepo = recordsRepository.NewMySQLRecordRepository(db)
		default:
			c.initErrors["recordRepo"] = fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
		}
	})
	if storedErr, exists := c.initErrors["recordRepo"]; exists {
		return nil, storedErr
	}
	return c.recordRepo, nil
}

// RecordUseCase returns the record use case for sealing, unsealing and lookup.
func (c *Container) RecordUseCase() (recordsUsecase.RecordUseCase, error) {
	c.recordUseCaseInit.Do(func() {
		txManager, err := c.TxManager()
		if err != nil {
			c.initErrors["recordUseCase"] = err
			return
		}

		recordRepo, err := c.RecordRepository()
		if err != nil {
			c.initErrors["recordUseCase"] = err
			return
		}

		registry, err := c.RegistryUseCase()
		if err != nil {
			c.initErrors["recordUseCase"] = err
			return
		}

		indexKeys, err := c.IndexKeyUseCase()
		if err != nil {
			c.initErrors["recordUseCase"] = err
			return
		}

		c.recordUseCase = recordsUsecase.NewRecordUseCase(
			txManager,
			recordRepo,
			registry,
			indexKeys,
		)
	})
	if storedErr, exists := c.initErrors["recordUseCase"]; exists {
		return nil, storedErr
	}
	return c.recordUseCase, nil
}

// ReencryptUseCase returns the re-encryption migration worker use case.
func (c *Container) ReencryptUseCase() (recordsUsecase.ReencryptUseCase, error) {
	c.reencryptUseCaseInit.Do(func() {
		recordRepo, err := c.RecordRepository()
		if err != nil {
			c.initErrors["reencryptUseCase"] = err
			return
		}

		registry, err := c.RegistryUseCase()
		if err != nil {
			c.initErrors["reencryptUseCase"] = err
			return
		}

		migrationMetrics, err := c.MigrationMetrics()
		if err != nil {
			c.initErrors["reencryptUseCase"] = err
			return
		}

		c.reencryptUseCase = recordsUsecase.NewReencryptUseCase(
			c.workerConfig(),
			recordRepo,
			registry,
			migrationMetrics,
			c.Logger(),
		)
	})
	if storedErr, exists := c.initErrors["reencryptUseCase"]; exists {
		return nil, storedErr
	}
	return c.reencryptUseCase, nil
}

// RotateIndexUseCase returns the blind-index rotation worker use case.
func (c *Container) RotateIndexUseCase() (recordsUsecase.RotateIndexUseCase, error) {
	c.rotateIndexUseCaseInit.Do(func() {
		recordRepo, err := c.RecordRepository()
		if err != nil {
			c.initErrors["rotateIndexUseCase"] = err
			return
		}

		registry, err := c.RegistryUseCase()
		if err != nil {
			c.initErrors["rotateIndexUseCase"] = err
			return
		}

		indexKeys, err := c.IndexKeyUseCase()
		if err != nil {
			c.initErrors["rotateIndexUseCase"] = err
			return
		}

		migrationMetrics, err := c.MigrationMetrics()
		if err != nil {
			c.initErrors["rotateIndexUseCase"] = err
			return
		}

		c.rotateIndexUseCase = recordsUsecase.NewRotateIndexUseCase(
			c.workerConfig(),
			recordRepo,
			registry,
			indexKeys,
			migrationMetrics,
			c.Logger(),
		)
	})
	if storedErr, exists := c.initErrors["rotateIndexUseCase"]; exists {
		return nil, storedErr
	}
	return c.rotateIndexUseCase, nil
}
