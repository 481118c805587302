package commands

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/allisson/fieldvault/internal/app"
	"github.com/allisson/fieldvault/internal/config"
)

// RunBeginRotation activates a new key version for all subsequent writes and
// moves the previous active version to retained. Stored envelopes are not
// touched; run migrate-records afterwards to drain the retained version.
func RunBeginRotation(ctx context.Context, newVersion uint, io IOTuple) error {
	if newVersion == 0 {
		return fmt.Errorf("--version must be greater than zero")
	}

	cfg := config.Load()
	container := app.NewContainer(cfg)
	logger := container.Logger()
	defer closeContainer(container, logger)

	rotationUseCase, err := container.RotationUseCase()
	if err != nil {
		return fmt.Errorf("failed to initialize rotation use case: %w", err)
	}

	if err := rotationUseCase.BeginRotation(ctx, newVersion); err != nil {
		return fmt.Errorf("failed to begin rotation: %w", err)
	}

	logger.Info("rotation started", slog.Uint64("new_version", uint64(newVersion)))

	fmt.Fprintf(io.Writer, "Key version %d is now active; new records are sealed under it.\n", newVersion)
	fmt.Fprintln(io.Writer, "Run 'migrate-records' to re-seal existing records, then 'retire-version' once drained.")

	return nil
}
