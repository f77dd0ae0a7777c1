package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	lifecycleUsecase "github.com/copp1723/seorylie-sub000/internal/lifecycle/usecase"
)

// RunAnonymizeSweep executes one anonymization sweep over records past their
// retention date and reports the outcome in text or JSON format.
//
// Requirements: Database must be migrated and accessible.
func RunAnonymizeSweep(
	ctx context.Context,
	useCase lifecycleUsecase.LifecycleUseCase,
	logger *slog.Logger,
	out io.Writer,
	format string,
) error {
	return runSweepCommand(ctx, "anonymization", useCase.RunAnonymizationSweep, logger, out, format)
}

// RunPurgeSweep executes one purge sweep over anonymized records past the
// purge window and reports the outcome in text or JSON format.
//
// Requirements: Database must be migrated and accessible.
func RunPurgeSweep(
	ctx context.Context,
	useCase lifecycleUsecase.LifecycleUseCase,
	logger *slog.Logger,
	out io.Writer,
	format string,
) error {
	return runSweepCommand(ctx, "purge", useCase.RunPurgeSweep, logger, out, format)
}

// runSweepCommand runs a sweep and renders its report.
func runSweepCommand(
	ctx context.Context,
	name string,
	sweep func(ctx context.Context) (*lifecycleUsecase.SweepReport, error),
	logger *slog.Logger,
	out io.Writer,
	format string,
) error {
	if err := validateFormat(format); err != nil {
		return err
	}

	logger.Info("running sweep", slog.String("sweep", name))

	report, err := sweep(ctx)
	if err != nil {
		return fmt.Errorf("failed to run %s sweep: %w", name, err)
	}

	if format == "json" {
		writeJSON(out, report)
	} else {
		fmt.Fprintf(
			out,
			"Completed %s sweep: examined=%d processed=%d skipped=%d failed=%d\n",
			name,
			report.Examined,
			report.Processed,
			report.Skipped,
			report.Failed,
		)
	}

	logger.Info("sweep completed",
		slog.String("sweep", name),
		slog.Int("examined", report.Examined),
		slog.Int("processed", report.Processed),
		slog.Int("skipped", report.Skipped),
		slog.Int("failed", report.Failed),
	)

	return nil
}
