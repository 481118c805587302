package app

import (
	"fmt"
	"sync"

	recordsRepository "github.com/allisson/fieldvault/internal/records/repository"
	recordsUseCase "github.com/allisson/fieldvault/internal/records/usecase"
)

// recordsContainer holds the encrypted record components of the container.
type recordsContainer struct {
	recordRepo     recordsUseCase.RecordRepository
	blindIndexRepo recordsUseCase.BlindIndexRepository
	recordCodec    recordsUseCase.RecordCodec
	recordUseCase  recordsUseCase.RecordUseCase

	recordRepoInit     sync.Once
	blindIndexRepoInit sync.Once
	recordCodecInit    sync.Once
	recordUseCaseInit  sync.Once
}

// RecordRepository returns the encrypted record repository based on the database driver.
func (c *Container) RecordRepository() (recordsUseCase.RecordRepository, error) {
	var err error
	c.recordRepoInit.Do(func() {
		c.recordRepo, err = c.initRecordRepository()
		if err != nil {
			c.initErrors["recordRepo"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["recordRepo"]; exists {
		return nil, storedErr
	}
	return c.recordRepo, nil
}

// BlindIndexRepository returns the blind index entry repository based on the database driver.
func (c *Container) BlindIndexRepository() (recordsUseCase.BlindIndexRepository, error) {
	var err error
	c.blindIndexRepoInit.Do(func() {
		c.blindIndexRepo, err = c.initBlindIndexRepository()
		if err != nil {
			c.initErrors["blindIndexRepo"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["blindIndexRepo"]; exists {
		return nil, storedErr
	}
	return c.blindIndexRepo, nil
}

// RecordCodec returns the record sealing/opening codec.
func (c *Container) RecordCodec() (recordsUseCase.RecordCodec, error) {
	var err error
	c.recordCodecInit.Do(func() {
		c.recordCodec, err = c.initRecordCodec()
		if err != nil {
			c.initErrors["recordCodec"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["recordCodec"]; exists {
		return nil, storedErr
	}
	return c.recordCodec, nil
}

// RecordUseCase returns the record use case, instrumented with business metrics.
func (c *Container) RecordUseCase() (recordsUseCase.RecordUseCase, error) {
	var err error
	c.recordUseCaseInit.Do(func() {
		c.recordUseCase, err = c.initRecordUseCase()
		if err != nil {
			c.initErrors["recordUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["recordUseCase"]; exists {
		return nil, storedErr
	}
	return c.recordUseCase, nil
}

// initRecordRepository creates the record repository based on the database driver.
func (c *Container) initRecordRepository() (recordsUseCase.RecordRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for record repository: %w", err)
	}

	switch c.config.DBDriver {
	case "postgres":
		return recordsRepository.NewPostgreSQLRecordRepository(db), nil
	case "mysql":
		return recordsRepository.NewMySQLRecordRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

// initBlindIndexRepository creates the blind index repository based on the database driver.
func (c *Container) initBlindIndexRepository() (recordsUseCase.BlindIndexRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for blind index repository: %w", err)
	}

	switch c.config.DBDriver {
	case "postgres":
		return recordsRepository.NewPostgreSQLBlindIndexRepository(db), nil
	case "mysql":
		return recordsRepository.NewMySQLBlindIndexRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

// initRecordCodec creates the record codec with its crypto dependencies.
func (c *Container) initRecordCodec() (recordsUseCase.RecordCodec, error) {
	keyDeriver, err := c.KeyDeriver()
	if err != nil {
		return nil, fmt.Errorf("failed to get key deriver for record codec: %w", err)
	}

	blindIndexer, err := c.BlindIndexer()
	if err != nil {
		return nil, fmt.Errorf("failed to get blind indexer for record codec: %w", err)
	}

	versionState, err := c.KeyVersionState()
	if err != nil {
		return nil, fmt.Errorf("failed to get key version state for record codec: %w", err)
	}

	return recordsUseCase.NewRecordCodec(keyDeriver, c.Codec(), blindIndexer, versionState), nil
}

// initRecordUseCase creates the record use case with all its dependencies.
func (c *Container) initRecordUseCase() (recordsUseCase.RecordUseCase, error) {
	txManager, err := c.TxManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get tx manager for record use case: %w", err)
	}

	recordRepo, err := c.RecordRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get record repository for record use case: %w", err)
	}

	blindIndexRepo, err := c.BlindIndexRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get blind index repository for record use case: %w", err)
	}

	recordCodec, err := c.RecordCodec()
	if err != nil {
		return nil, fmt.Errorf("failed to get record codec for record use case: %w", err)
	}

	useCase := recordsUseCase.NewRecordUseCase(txManager, recordRepo, blindIndexRepo, recordCodec)

	businessMetrics, err := c.BusinessMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to get business metrics for record use case: %w", err)
	}

	return recordsUseCase.NewRecordUseCaseWithMetrics(useCase, businessMetrics), nil
}
