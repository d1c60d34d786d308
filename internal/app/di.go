// Package app provides dependency injection container for assembling application components.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"sync"

	blindindexUsecase "github.com/allisson/pii-vault/internal/blindindex/usecase"
	"github.com/allisson/pii-vault/internal/config"
	cryptoService "github.com/allisson/pii-vault/internal/crypto/service"
	"github.com/allisson/pii-vault/internal/database"
	appHTTP "github.com/allisson/pii-vault/internal/http"
	keyringDomain "github.com/allisson/pii-vault/internal/keyring/domain"
	keyringService "github.com/allisson/pii-vault/internal/keyring/service"
	keyringUsecase "github.com/allisson/pii-vault/internal/keyring/usecase"
	"github.com/allisson/pii-vault/internal/metrics"
	recordsUsecase "github.com/allisson/pii-vault/internal/records/usecase"
)

// Container holds all application dependencies and provides methods to access them.
// It follows the lazy initialization pattern - components are created on first access.
type Container struct {
	// Configuration
	config *config.Config

	// Infrastructure
	logger *slog.Logger
	db     *sql.DB

	// Managers
	txManager database.TxManager

	// Metrics
	metricsProvider  *metrics.Provider
	migrationMetrics metrics.MigrationMetrics
	metricsServer    *appHTTP.MetricsServer

	// Crypto services
	aeadManager     cryptoService.AEADManager
	kmsService      keyringService.KMSService
	kmsKeeper       keyringDomain.KMSKeeper
	materialService keyringService.MaterialService

	// Repositories
	keyVersionRepo keyringUsecase.KeyVersionRepository
	indexKeyRepo   blindindexUsecase.IndexKeyRepository
	recordRepo     recordsUsecase.RecordRepository

	// Use Cases
	registryUseCase    keyringUsecase.RegistryUseCase
	indexKeyUseCase    blindindexUsecase.IndexKeyUseCase
	recordUseCase      recordsUsecase.RecordUseCase
	reencryptUseCase   recordsUsecase.ReencryptUseCase
	rotateIndexUseCase recordsUsecase.RotateIndexUseCase

	// Initialization flags and mutex for thread-safety
	mu                     sync.Mutex
	loggerInit             sync.Once
	dbInit                 sync.Once
	txManagerInit          sync.Once
	metricsProviderInit    sync.Once
	migrationMetricsInit   sync.Once
	metricsServerInit      sync.Once
	aeadManagerInit        sync.Once
	kmsServiceInit         sync.Once
	kmsKeeperInit          sync.Once
	materialServiceInit    sync.Once
	keyVersionRepoInit     sync.Once
	indexKeyRepoInit       sync.Once
	recordRepoInit         sync.Once
	registryUseCaseInit    sync.Once
	indexKeyUseCaseInit    sync.Once
	recordUseCaseInit      sync.Once
	reencryptUseCaseInit   sync.Once
	rotateIndexUseCaseInit sync.Once
	initErrors             map[string]error
}

// NewContainer creates a new dependency injection container with the provided configuration.
func NewContainer(cfg *config.Config) *Container {
	return &Container{
		config:     cfg,
		initErrors: make(map[string]error),
	}
}

// Config returns the application configuration.
func (c *Container) Config() *config.Config {
	return c.config
}

// Logger returns the configured logger instance.
// It creates a new logger on first access based on the log level in configuration.
func (c *Container) Logger() *slog.Logger {
	c.loggerInit.Do(func() {
		c.logger = c.initLogger()
	})
	return c.logger
}

// DB returns the database connection.
// It creates and configures the database connection on first access.
func (c *Container) DB() (*sql.DB, error) {
	c.dbInit.Do(func() {
		db, err := c.initDB()
		if err != nil {
			c.initErrors["db"] = err
			return
		}
		c.db = db
	})
	if storedErr, exists := c.initErrors["db"]; exists {
		return nil, storedErr
	}
	return c.db, nil
}

// TxManager returns the transaction manager.
// It requires a database connection to be initialized first.
func (c *Container) TxManager() (database.TxManager, error) {
	c.txManagerInit.Do(func() {
		db, err := c.DB()
		if err != nil {
			c.initErrors["txManager"] = fmt.Errorf("failed to get database for tx manager: %w", err)
			return
		}
		c.txManager = database.NewTxManager(db)
	})
	if storedErr, exists := c.initErrors["txManager"]; exists {
		return nil, storedErr
	}
	return c.txManager, nil
}

// MetricsProvider returns the OpenTelemetry metrics provider with Prometheus
// export. Returns nil without error when metrics are disabled.
func (c *Container) MetricsProvider() (*metrics.Provider, error) {
	c.metricsProviderInit.Do(func() {
		if !c.config.MetricsEnabled {
			return
		}

		provider, err := metrics.NewProvider(c.config.MetricsNamespace)
		if err != nil {
			c.initErrors["metricsProvider"] = fmt.Errorf("failed to create metrics provider: %w", err)
			return
		}
		c.metricsProvider = provider
	})
	if storedErr, exists := c.initErrors["metricsProvider"]; exists {
		return nil, storedErr
	}
	return c.metricsProvider, nil
}

// MigrationMetrics returns the migration metrics recorder. When metrics are
// disabled a no-op implementation is returned.
func (c *Container) MigrationMetrics() (metrics.MigrationMetrics, error) {
	c.migrationMetricsInit.Do(func() {
		provider, err := c.MetricsProvider()
		if err != nil {
			c.initErrors["migrationMetrics"] = err
			return
		}
		if provider == nil {
			c.migrationMetrics = metrics.NewNoOpMigrationMetrics()
			return
		}

		migrationMetrics, err := metrics.NewMigrationMetrics(
			provider.MeterProvider(), c.config.MetricsNamespace,
		)
		if err != nil {
			c.initErrors["migrationMetrics"] = fmt.Errorf("failed to create migration metrics: %w", err)
			return
		}
		c.migrationMetrics = migrationMetrics
	})
	if storedErr, exists := c.initErrors["migrationMetrics"]; exists {
		return nil, storedErr
	}
	return c.migrationMetrics, nil
}

// MetricsServer returns the HTTP server exposing the Prometheus endpoint.
func (c *Container) MetricsServer() (*appHTTP.MetricsServer, error) {
	c.metricsServerInit.Do(func() {
		provider, err := c.MetricsProvider()
		if err != nil {
			c.initErrors["metricsServer"] = err
			return
		}

		c.metricsServer = appHTTP.NewMetricsServer(
			c.config.MetricsHost,
			c.config.MetricsPort,
			c.Logger(),
			provider,
		)
	})
	if storedErr, exists := c.initErrors["metricsServer"]; exists {
		return nil, storedErr
	}
	return c.metricsServer, nil
}

// Shutdown performs cleanup of all initialized resources.
// It should be called when the application is shutting down.
func (c *Container) Shutdown(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var shutdownErrors []error

	if c.metricsServer != nil {
		if err := c.metricsServer.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("metrics server shutdown: %w", err))
		}
	}

	if c.metricsProvider != nil {
		if err := c.metricsProvider.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("metrics provider shutdown: %w", err))
		}
	}

	if c.kmsKeeper != nil {
		if err := c.kmsKeeper.Close(); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("kms keeper close: %w", err))
		}
	}

	if c.db != nil {
		if err := c.db.Close(); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("database close: %w", err))
		}
	}

	if len(shutdownErrors) > 0 {
		return fmt.Errorf("shutdown errors: %v", shutdownErrors)
	}

	return nil
}

// initLogger creates and configures a structured logger based on the log level.
func (c *Container) initLogger() *slog.Logger {
	var logLevel slog.Level
	switch c.config.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})

	return slog.New(handler)
}

// initDB creates and configures the database connection.
func (c *Container) initDB() (*sql.DB, error) {
	db, err := database.Connect(database.Config{
		Driver:             c.config.DBDriver,
		ConnectionString:   c.config.DBConnectionString,
		MaxOpenConnections: c.config.DBMaxOpenConnections,
		MaxIdleConnections: c.config.DBMaxIdleConnections,
		ConnMaxLifetime:    c.config.DBConnMaxLifetime,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

// workerConfig builds the migration worker policy from configuration.
func (c *Container) workerConfig() recordsUsecase.WorkerConfig {
	return recordsUsecase.WorkerConfig{
		BatchSize:      c.config.WorkerBatchSize,
		Concurrency:    c.config.WorkerConcurrency,
		RatePerSec:     c.config.WorkerRatePerSec,
		RetryAttempts:  c.config.WorkerRetryAttempts,
		RetryBaseDelay: c.config.WorkerRetryBaseDelay,
		RetryMaxDelay:  c.config.WorkerRetryMaxDelay,
	}
}
