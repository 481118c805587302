package commands

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/allisson/fieldvault/internal/app"
	"github.com/allisson/fieldvault/internal/config"
	rotationDomain "github.com/allisson/fieldvault/internal/rotation/domain"
)

// RunMigrateRecords re-seals records from fromVersion under the currently
// active key version, batchSize records per transaction. With runAll set it
// keeps sweeping batches until no records under fromVersion remain or a batch
// makes no progress. Per-record failures are reported and do not stop the sweep.
func RunMigrateRecords(ctx context.Context, fromVersion uint, batchSize int, runAll bool, io IOTuple) error {
	cfg := config.Load()
	container := app.NewContainer(cfg)
	logger := container.Logger()
	defer closeContainer(container, logger)

	rotationUseCase, err := container.RotationUseCase()
	if err != nil {
		return fmt.Errorf("failed to initialize rotation use case: %w", err)
	}

	var totalMigrated, totalFailed int

	for {
		report, err := rotationUseCase.MigrateBatch(ctx, fromVersion, batchSize)
		if err != nil {
			return fmt.Errorf("failed to migrate records: %w", err)
		}

		totalMigrated += report.Migrated
		totalFailed += report.Failed
		printMigrationReport(io, report)

		logger.Info("migration batch completed",
			slog.Uint64("from_version", uint64(report.FromVersion)),
			slog.Uint64("to_version", uint64(report.ToVersion)),
			slog.Int("migrated", report.Migrated),
			slog.Int("failed", report.Failed),
			slog.Int64("remaining", report.Remaining),
		)

		if !runAll || report.Done() {
			break
		}

		// A batch that moved nothing cannot drain the rest; stop instead of spinning
		if report.Migrated == 0 {
			fmt.Fprintln(io.Writer, "No progress in last batch; fix the reported records and re-run.")
			break
		}
	}

	fmt.Fprintf(io.Writer, "Totals: %d migrated, %d failed.\n", totalMigrated, totalFailed)

	return nil
}

// printMigrationReport writes one batch report in operator-readable form.
func printMigrationReport(io IOTuple, report *rotationDomain.MigrationReport) {
	fmt.Fprintf(
		io.Writer,
		"Batch: %d migrated, %d failed, %d remaining under version %d.\n",
		report.Migrated,
		report.Failed,
		report.Remaining,
		report.FromVersion,
	)
	for _, failure := range report.Failures {
		fmt.Fprintf(
			io.Writer,
			"  failed: record=%s tenant=%s reason=%s\n",
			failure.RecordID,
			failure.TenantID,
			failure.Reason,
		)
	}
}
