package app

import (
	"context"
	"fmt"
	"sync"

	cryptoDomain "github.com/allisson/fieldvault/internal/crypto/domain"
	cryptoRepository "github.com/allisson/fieldvault/internal/crypto/repository"
	cryptoService "github.com/allisson/fieldvault/internal/crypto/service"
	rotationUseCase "github.com/allisson/fieldvault/internal/rotation/usecase"
)

// cryptoContainer holds the cryptographic components of the container.
type cryptoContainer struct {
	masterSecret    *cryptoDomain.MasterSecret
	keyVersionState *cryptoDomain.KeyVersionState
	keyVersionRepo  rotationUseCase.KeyVersionRepository
	kmsService      cryptoService.KMSService
	keyCache        cryptoService.KeyCache
	keyDeriver      cryptoService.KeyDeriver
	codec           cryptoService.Codec
	blindIndexer    cryptoService.BlindIndexer

	masterSecretInit    sync.Once
	keyVersionStateInit sync.Once
	keyVersionRepoInit  sync.Once
	kmsServiceInit      sync.Once
	keyCacheInit        sync.Once
	keyDeriverInit      sync.Once
	codecInit           sync.Once
	blindIndexerInit    sync.Once
}

// MasterSecret returns the master secret loaded from configuration, unwrapping
// it via KMS when configured. Fails fast on missing or malformed configuration.
func (c *Container) MasterSecret() (*cryptoDomain.MasterSecret, error) {
	var err error
	c.masterSecretInit.Do(func() {
		c.masterSecret, err = c.initMasterSecret()
		if err != nil {
			c.initErrors["masterSecret"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["masterSecret"]; exists {
		return nil, storedErr
	}
	return c.masterSecret, nil
}

// KMSService returns the KMS service used to unwrap the master secret.
func (c *Container) KMSService() cryptoService.KMSService {
	c.kmsServiceInit.Do(func() {
		c.kmsService = cryptoService.NewKMSService()
	})
	return c.kmsService
}

// KeyVersionRepository returns the key version repository based on the database driver.
func (c *Container) KeyVersionRepository() (rotationUseCase.KeyVersionRepository, error) {
	var err error
	c.keyVersionRepoInit.Do(func() {
		c.keyVersionRepo, err = c.initKeyVersionRepository()
		if err != nil {
			c.initErrors["keyVersionRepo"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["keyVersionRepo"]; exists {
		return nil, storedErr
	}
	return c.keyVersionRepo, nil
}

// KeyVersionState returns the in-memory key version lifecycle state, loaded
// from the key_versions table at first access. Startup fails when the table
// does not hold exactly one active version.
func (c *Container) KeyVersionState() (*cryptoDomain.KeyVersionState, error) {
	var err error
	c.keyVersionStateInit.Do(func() {
		c.keyVersionState, err = c.initKeyVersionState()
		if err != nil {
			c.initErrors["keyVersionState"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["keyVersionState"]; exists {
		return nil, storedErr
	}
	return c.keyVersionState, nil
}

// KeyCache returns the TTL cache for derived tenant keys.
func (c *Container) KeyCache() cryptoService.KeyCache {
	c.keyCacheInit.Do(func() {
		c.keyCache = cryptoService.NewTTLKeyCache(c.config.KeyCacheTTL)
	})
	return c.keyCache
}

// KeyDeriver returns the tenant key derivation service.
func (c *Container) KeyDeriver() (cryptoService.KeyDeriver, error) {
	var err error
	c.keyDeriverInit.Do(func() {
		c.keyDeriver, err = c.initKeyDeriver()
		if err != nil {
			c.initErrors["keyDeriver"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["keyDeriver"]; exists {
		return nil, storedErr
	}
	return c.keyDeriver, nil
}

// Codec returns the authenticated encryption codec.
func (c *Container) Codec() cryptoService.Codec {
	c.codecInit.Do(func() {
		c.codec = cryptoService.NewAESGCMCodec()
	})
	return c.codec
}

// BlindIndexer returns the blind index token service.
func (c *Container) BlindIndexer() (cryptoService.BlindIndexer, error) {
	var err error
	c.blindIndexerInit.Do(func() {
		deriver, derr := c.KeyDeriver()
		if derr != nil {
			err = derr
			c.initErrors["blindIndexer"] = derr
			return
		}
		c.blindIndexer = cryptoService.NewHMACBlindIndexer(deriver)
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["blindIndexer"]; exists {
		return nil, storedErr
	}
	return c.blindIndexer, nil
}

// initMasterSecret loads the master secret from configuration.
func (c *Container) initMasterSecret() (*cryptoDomain.MasterSecret, error) {
	ctx := context.Background()

	var keeper cryptoDomain.KMSKeeper
	if c.config.KMSKeyURI != "" {
		var err error
		keeper, err = c.KMSService().OpenKeeper(ctx, c.config.KMSKeyURI)
		if err != nil {
			return nil, fmt.Errorf("failed to open KMS keeper: %w", err)
		}
	}

	masterSecret, err := cryptoDomain.LoadMasterSecret(
		ctx,
		c.config.MasterSecret,
		c.config.MasterSecretCiphertext,
		keeper,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load master secret: %w", err)
	}
	return masterSecret, nil
}

// initKeyVersionRepository creates the key version repository based on the database driver.
func (c *Container) initKeyVersionRepository() (rotationUseCase.KeyVersionRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for key version repository: %w", err)
	}

	switch c.config.DBDriver {
	case "postgres":
		return cryptoRepository.NewPostgreSQLKeyVersionRepository(db), nil
	case "mysql":
		return cryptoRepository.NewMySQLKeyVersionRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

// initKeyVersionState loads all key versions from the store and builds the
// in-memory lifecycle state.
func (c *Container) initKeyVersionState() (*cryptoDomain.KeyVersionState, error) {
	repo, err := c.KeyVersionRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get key version repository: %w", err)
	}

	versions, err := repo.ListAll(context.Background())
	if err != nil {
		return nil, fmt.Errorf("failed to load key versions: %w", err)
	}

	state, err := cryptoDomain.NewKeyVersionState(versions)
	if err != nil {
		return nil, fmt.Errorf("failed to build key version state: %w", err)
	}
	return state, nil
}

// initKeyDeriver creates the key derivation service with its dependencies.
func (c *Container) initKeyDeriver() (cryptoService.KeyDeriver, error) {
	masterSecret, err := c.MasterSecret()
	if err != nil {
		return nil, fmt.Errorf("failed to get master secret for key deriver: %w", err)
	}

	versionState, err := c.KeyVersionState()
	if err != nil {
		return nil, fmt.Errorf("failed to get key version state for key deriver: %w", err)
	}

	return cryptoService.NewKeyDerivationService(masterSecret, versionState, c.KeyCache()), nil
}
