package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	auditUsecase "github.com/copp1723/seorylie-sub000/internal/audit/usecase"
)

// RunCleanAuditEntries deletes audit entries older than the specified number of days.
// Supports dry-run mode to preview deletion count and both text/JSON output formats.
//
// Requirements: Database must be migrated and accessible.
func RunCleanAuditEntries(
	ctx context.Context,
	useCase auditUsecase.AuditUseCase,
	logger *slog.Logger,
	out io.Writer,
	days int,
	dryRun bool,
	format string,
) error {
	if days < 0 {
		return fmt.Errorf("days must be a positive number, got: %d", days)
	}
	if err := validateFormat(format); err != nil {
		return err
	}

	logger.Info("cleaning audit entries",
		slog.Int("days", days),
		slog.Bool("dry_run", dryRun),
	)

	count, err := useCase.DeleteOlderThan(ctx, days, dryRun)
	if err != nil {
		return fmt.Errorf("failed to delete audit entries: %w", err)
	}

	if format == "json" {
		writeJSON(out, map[string]any{
			"count":   count,
			"days":    days,
			"dry_run": dryRun,
		})
	} else if dryRun {
		fmt.Fprintf(out, "Dry-run mode: Would delete %d audit entry(ies) older than %d day(s)\n", count, days)
	} else {
		fmt.Fprintf(out, "Successfully deleted %d audit entry(ies) older than %d day(s)\n", count, days)
	}

	logger.Info("cleanup completed",
		slog.Int64("count", count),
		slog.Int("days", days),
		slog.Bool("dry_run", dryRun),
	)

	return nil
}
