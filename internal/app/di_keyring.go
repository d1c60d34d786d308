package app

import (
	"context"
	"fmt"

	cryptoService "github.com/allisson/pii-vault/internal/crypto/service"
	keyringDomain "github.com/allisson/pii-vault/internal/keyring/domain"
	keyringRepository "github.com/allisson/pii-vault/internal/keyring/repository"
	keyringService "github.com/allisson/pii-vault/internal/keyring/service"
	keyringUsecase "github.com/allisson/pii-vault/internal/keyring/usecase"
)

// AEADManager returns the payload cipher factory.
func (c *Container) AEADManager() cryptoService.AEADManager {
	c.aeadManagerInit.Do(func() {
		c.aeadManager = cryptoService.NewAEADManager()
	})
	return c.aeadManager
}

// KMSService returns the KMS service for opening keepers.
func (c *Container) KMSService() keyringService.KMSService {
	c.kmsServiceInit.Do(func() {
		c.kmsService = keyringService.NewKMSService()
	})
	return c.kmsService
}

// KMSKeeper returns the opened KMS keeper used to wrap and unwrap key material.
func (c *Container) KMSKeeper() (keyringDomain.KMSKeeper, error) {
	c.kmsKeeperInit.Do(func() {
		keeper, err := c.KMSService().OpenKeeper(context.Background(), c.config.KMSKeyURI)
		if err != nil {
			c.initErrors["kmsKeeper"] = fmt.Errorf("failed to open kms keeper: %w", err)
			return
		}
		c.kmsKeeper = keeper
	})
	if storedErr, exists := c.initErrors["kmsKeeper"]; exists {
		return nil, storedErr
	}
	return c.kmsKeeper, nil
}

// MaterialService returns the key material service backed by the KMS keeper.
func (c *Container) MaterialService() (keyringService.MaterialService, error) {
	c.materialServiceInit.Do(func() {
		keeper, err := c.KMSKeeper()
		if err != nil {
			c.initErrors["materialService"] = err
			return
		}
		c.materialService = keyringService.NewMaterialService(keeper)
	})
	if storedErr, exists := c.initErrors["materialService"]; exists {
		return nil, storedErr
	}
	return c.materialService, nil
}

// KeyVersionRepository returns the key-version repository based on the configured database driver.
func (c *Container) KeyVersionRepository() (keyringUsecase.KeyVersionRepository, error) {
	c.keyVersionRepoInit.Do(func() {
		db, err := c.DB()
		if err != nil {
			c.initErrors["keyVersionRepo"] = fmt.Errorf("failed to get database for key version repository: %w", err)
			return
		}

		switch c.config.DBDriver {
		case "postgres":
			c.keyVersionRepo = keyringRepository.NewPostgreSQLKeyVersionRepository(db)
		case "mysql":
			c.keyVersionRepo = keyringRepository.NewMySQLKeyVersionRepository(db)
		default:
			c.initErrors["keyVersionRepo"] = fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
		}
	})
	if storedErr, exists := c.initErrors["keyVersionRepo"]; exists {
		return nil, storedErr
	}
	return c.keyVersionRepo, nil
}

// RegistryUseCase returns the key-version registry use case.
func (c *Container) RegistryUseCase() (keyringUsecase.RegistryUseCase, error) {
	c.registryUseCaseInit.Do(func() {
		txManager, err := c.TxManager()
		if err != nil {
			c.initErrors["registryUseCase"] = err
			return
		}

		keyVersionRepo, err := c.KeyVersionRepository()
		if err != nil {
			c.initErrors["registryUseCase"] = err
			return
		}

		recordRepo, err := c.RecordRepository()
		if err != nil {
			c.initErrors["registryUseCase"] = err
			return
		}

		material, err := c.MaterialService()
		if err != nil {
			c.initErrors["registryUseCase"] = err
			return
		}

		c.registryUseCase = keyringUsecase.NewRegistryUseCase(
			txManager,
			keyVersionRepo,
			recordRepo,
			material,
			c.AEADManager(),
		)
	})
	if storedErr, exists := c.initErrors["registryUseCase"]; exists {
		return nil, storedErr
	}
	return c.registryUseCase, nil
}
