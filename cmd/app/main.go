// Package main provides the entry point for the application with CLI commands.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/copp1723/seorylie-sub000/cmd/app/commands"
	"github.com/copp1723/seorylie-sub000/internal/app"
	"github.com/copp1723/seorylie-sub000/internal/config"
	cryptoService "github.com/copp1723/seorylie-sub000/internal/crypto/service"
)

const version = "1.0.0"

// containerAction wraps a command action with container setup and teardown.
func containerAction(
	run func(ctx context.Context, cmd *cli.Command, container *app.Container, logger *slog.Logger) error,
) func(ctx context.Context, cmd *cli.Command) error {
	return func(ctx context.Context, cmd *cli.Command) error {
		cfg := config.Load()
		container := app.NewContainer(cfg)
		logger := container.Logger()
		defer func() {
			if err := container.Shutdown(context.Background()); err != nil {
				logger.Error("failed to shutdown container", slog.Any("error", err))
			}
		}()
		return run(ctx, cmd, container, logger)
	}
}

func main() {
	cmd := &cli.Command{
		Name:    "app",
		Usage:   "PII protection and data lifecycle service",
		Version: version,
		Commands: []*cli.Command{
			{
				Name:  "server",
				Usage: "Start the HTTP server",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return commands.RunServer(ctx, version)
				},
			},
			{
				Name:  "migrate",
				Usage: "Run database migrations",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					cfg := config.Load()
					container := app.NewContainer(cfg)
					return commands.RunMigrations(container.Logger(), cfg.DBDriver, cfg.DBConnectionString)
				},
			},
			{
				Name:  "generate-key",
				Usage: "Generate a new data key for field encryption",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:    "version",
						Aliases: []string{"v"},
						Value:   1,
						Usage:   "Key version to assign to the generated key",
					},
					&cli.StringFlag{
						Name:    "kms-key-uri",
						Aliases: []string{"k"},
						Value:   "",
						Usage:   "gocloud.dev secrets keeper URI used to wrap the key (omit for plaintext output)",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					kmsKeyURI := cmd.String("kms-key-uri")
					var wrapper commands.KeyWrapper
					if kmsKeyURI != "" {
						source, err := cryptoService.OpenKeySource(ctx, kmsKeyURI)
						if err != nil {
							return fmt.Errorf("failed to open key source: %w", err)
						}
						defer func() {
							if closeErr := source.Close(); closeErr != nil {
								fmt.Fprintf(os.Stderr, "failed to close key source: %v\n", closeErr)
							}
						}()
						wrapper = source
					}
					return commands.RunGenerateKey(ctx, wrapper, os.Stdout, cmd.Int("version"), kmsKeyURI)
				},
			},
			{
				Name:  "anonymize-sweep",
				Usage: "Anonymize records past their retention date",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Value:   "text",
						Usage:   "Output format: 'text' or 'json'",
					},
				},
				Action: containerAction(func(ctx context.Context, cmd *cli.Command, container *app.Container, logger *slog.Logger) error {
					useCase, err := container.LifecycleUseCase()
					if err != nil {
						return fmt.Errorf("failed to initialize lifecycle use case: %w", err)
					}
					return commands.RunAnonymizeSweep(ctx, useCase, logger, os.Stdout, cmd.String("format"))
				}),
			},
			{
				Name:  "purge-sweep",
				Usage: "Delete anonymized records past the purge window",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Value:   "text",
						Usage:   "Output format: 'text' or 'json'",
					},
				},
				Action: containerAction(func(ctx context.Context, cmd *cli.Command, container *app.Container, logger *slog.Logger) error {
					useCase, err := container.LifecycleUseCase()
					if err != nil {
						return fmt.Errorf("failed to initialize lifecycle use case: %w", err)
					}
					return commands.RunPurgeSweep(ctx, useCase, logger, os.Stdout, cmd.String("format"))
				}),
			},
			{
				Name:  "clean-audit-entries",
				Usage: "Delete audit entries older than specified days",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:     "days",
						Aliases:  []string{"d"},
						Required: true,
						Usage:    "Delete audit entries older than this many days",
					},
					&cli.BoolFlag{
						Name:    "dry-run",
						Aliases: []string{"n"},
						Value:   false,
						Usage:   "Show how many entries would be deleted without deleting",
					},
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Value:   "text",
						Usage:   "Output format: 'text' or 'json'",
					},
				},
				Action: containerAction(func(ctx context.Context, cmd *cli.Command, container *app.Container, logger *slog.Logger) error {
					useCase, err := container.AuditUseCase()
					if err != nil {
						return fmt.Errorf("failed to initialize audit use case: %w", err)
					}
					return commands.RunCleanAuditEntries(
						ctx,
						useCase,
						logger,
						os.Stdout,
						cmd.Int("days"),
						cmd.Bool("dry-run"),
						cmd.String("format"),
					)
				}),
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.Any("error", err))
		os.Exit(1)
	}
}
