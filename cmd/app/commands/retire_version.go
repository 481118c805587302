package commands

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/allisson/fieldvault/internal/app"
	"github.com/allisson/fieldvault/internal/config"
)

// RunRetireVersion marks a retained key version as retired once no stored
// envelope references it. Retired versions can no longer seal or open records.
func RunRetireVersion(ctx context.Context, version uint, io IOTuple) error {
	cfg := config.Load()
	container := app.NewContainer(cfg)
	logger := container.Logger()
	defer closeContainer(container, logger)

	rotationUseCase, err := container.RotationUseCase()
	if err != nil {
		return fmt.Errorf("failed to initialize rotation use case: %w", err)
	}

	if err := rotationUseCase.Retire(ctx, version); err != nil {
		return fmt.Errorf("failed to retire version: %w", err)
	}

	logger.Info("key version retired", slog.Uint64("version", uint64(version)))

	fmt.Fprintf(io.Writer, "Key version %d is retired; its derived keys were dropped from the cache.\n", version)

	return nil
}
