package app

import (
	"fmt"
	"sync"

	rotationUseCase "github.com/allisson/fieldvault/internal/rotation/usecase"
)

// rotationContainer holds the key rotation components of the container.
type rotationContainer struct {
	rotationUseCase rotationUseCase.RotationUseCase

	rotationUseCaseInit sync.Once
}

// RotationUseCase returns the key rotation coordinator, instrumented with
// business metrics.
func (c *Container) RotationUseCase() (rotationUseCase.RotationUseCase, error) {
	var err error
	c.rotationUseCaseInit.Do(func() {
		c.rotationUseCase, err = c.initRotationUseCase()
		if err != nil {
			c.initErrors["rotationUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["rotationUseCase"]; exists {
		return nil, storedErr
	}
	return c.rotationUseCase, nil
}

// initRotationUseCase creates the rotation coordinator with all its dependencies.
func (c *Container) initRotationUseCase() (rotationUseCase.RotationUseCase, error) {
	txManager, err := c.TxManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get tx manager for rotation use case: %w", err)
	}

	keyVersionRepo, err := c.KeyVersionRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get key version repository for rotation use case: %w", err)
	}

	recordRepo, err := c.RecordRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get record repository for rotation use case: %w", err)
	}

	recordCodec, err := c.RecordCodec()
	if err != nil {
		return nil, fmt.Errorf("failed to get record codec for rotation use case: %w", err)
	}

	versionState, err := c.KeyVersionState()
	if err != nil {
		return nil, fmt.Errorf("failed to get key version state for rotation use case: %w", err)
	}

	useCase := rotationUseCase.NewRotationUseCase(
		txManager,
		keyVersionRepo,
		recordRepo,
		recordCodec,
		versionState,
		c.KeyCache(),
	)

	businessMetrics, err := c.BusinessMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to get business metrics for rotation use case: %w", err)
	}

	return rotationUseCase.NewRotationUseCaseWithMetrics(useCase, businessMetrics), nil
}
