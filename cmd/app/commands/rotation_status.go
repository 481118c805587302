package commands

import (
	"context"
	"fmt"

	"github.com/allisson/fieldvault/internal/app"
	"github.com/allisson/fieldvault/internal/config"
)

// RunRotationStatus prints the lifecycle status and stored-record count for
// every known key version, including the legacy pseudo-version when plaintext
// records are still waiting for first encryption.
func RunRotationStatus(ctx context.Context, io IOTuple) error {
	cfg := config.Load()
	container := app.NewContainer(cfg)
	logger := container.Logger()
	defer closeContainer(container, logger)

	rotationUseCase, err := container.RotationUseCase()
	if err != nil {
		return fmt.Errorf("failed to initialize rotation use case: %w", err)
	}

	statuses, err := rotationUseCase.Status(ctx)
	if err != nil {
		return fmt.Errorf("failed to get rotation status: %w", err)
	}

	fmt.Fprintf(io.Writer, "%-10s %-10s %s\n", "VERSION", "STATUS", "RECORDS")
	for _, status := range statuses {
		fmt.Fprintf(io.Writer, "%-10d %-10s %d\n", status.Version, status.Status, status.RecordCount)
	}

	return nil
}
