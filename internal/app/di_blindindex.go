package app

import (
	"fmt"

	blindindexRepository "github.com/allisson/pii-vault/internal/blindindex/repository"
	blindindexUsecase "github.com/allisson/pii-vault/internal/blindindex/usecase"
)

// IndexKeyRepository returns the blind-index key repository based on the configured database driver.
func (c *Container) IndexKeyRepository() (blindindexUsecase.IndexKeyRepository, error) {
	c.indexKeyRepoInit.Do(func() {
		db, err := c.DB()
		if err != nil {
			c.initErrors["indexKeyRepo"] = fmt.Errorf("failed to get database for index key repository: %w", err)
			return
		}

		switch c.config.DBDriver {
		case "postgres":
			c.indexKeyRepo = blindindexRepository.NewPostgreSQLIndexKeyRepository(db)
		case "mysql":
			c.indexKeyRepo = blindindexRepository.NewMySQLIndexKeyRepository(db)
		default:
			c.initErrors["indexKeyRepo"] = fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
		}
	})
	if storedErr, exists := c.initErrors["indexKeyRepo"]; exists {
		return nil, storedErr
	}
	return c.indexKeyRepo, nil
}

// IndexKeyUseCase returns the blind-index key registry use case.
func (c *Container) IndexKeyUseCase() (blindindexUsecase.IndexKeyUseCase, error) {
	c.indexKeyUseCaseInit.Do(func() {
		txManager, err := c.TxManager()
		if err != nil {
			c.initErrors["indexKeyUseCase"] = err
			return
		}

		indexKeyRepo, err := c.IndexKeyRepository()
		if err != nil {
			c.initErrors["indexKeyUseCase"] = err
			return
		}

		recordRepo, err := c.RecordRepository()
		if err != nil {
			c.initErrors["indexKeyUseCase"] = err
			return
		}

		material, err := c.MaterialService()
		if err != nil {
			c.initErrors["indexKeyUseCase"] = err
			return
		}

		c.indexKeyUseCase = blindindexUsecase.NewIndexKeyUseCase(
			txManager,
			indexKeyRepo,
			recordRepo,
			material,
		)
	})
	if storedErr, exists := c.initErrors["indexKeyUseCase"]; exists {
		return nil, storedErr
	}
	return c.indexKeyUseCase, nil
}
