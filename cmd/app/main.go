// Package main provides the entry point for the application with CLI commands.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/allisson/fieldvault/cmd/app/commands"
	"github.com/allisson/fieldvault/internal/config"
	cryptoService "github.com/allisson/fieldvault/internal/crypto/service"
)

const version = "1.0.0"

func main() {
	cmd := &cli.Command{
		Name:    "fieldvault",
		Usage:   "Multi-tenant field-level encryption service",
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
					logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
					return commands.RunMigrations(logger, cfg.DBDriver, cfg.DBConnectionString)
				},
			},
			{
				Name:  "create-master-secret",
				Usage: "Generate a new master secret for tenant key derivation",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "kms-key-uri",
						Aliases: []string{"k"},
						Value:   "",
						Usage:   "KMS wrapping key URI; when set the secret is output KMS-wrapped",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return commands.RunCreateMasterSecret(
						ctx,
						cryptoService.NewKMSService(),
						commands.DefaultIO().Writer,
						cmd.String("kms-key-uri"),
					)
				},
			},
			{
				Name:  "create-api-key",
				Usage: "Generate a new service API key and its hash",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return commands.RunCreateAPIKey(commands.DefaultIO().Writer)
				},
			},
			{
				Name:  "begin-rotation",
				Usage: "Activate a new key version for all subsequent writes",
				Flags: []cli.Flag{
					&cli.UintFlag{
						Name:     "version",
						Aliases:  []string{"v"},
						Required: true,
						Usage:    "New key version number (must be greater than the active version)",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return commands.RunBeginRotation(ctx, uint(cmd.Uint("version")), commands.DefaultIO())
				},
			},
			{
				Name:  "migrate-records",
				Usage: "Re-seal records from a retained key version under the active version",
				Flags: []cli.Flag{
					&cli.UintFlag{
						Name:     "from",
						Aliases:  []string{"f"},
						Required: true,
						Usage:    "Key version to migrate records away from (0 for legacy plaintext records)",
					},
					&cli.IntFlag{
						Name:    "batch-size",
						Aliases: []string{"b"},
						Value:   100,
						Usage:   "Number of records to re-seal per batch",
					},
					&cli.BoolFlag{
						Name:    "all",
						Aliases: []string{"a"},
						Value:   false,
						Usage:   "Keep running batches until the source version is drained",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return commands.RunMigrateRecords(
						ctx,
						uint(cmd.Uint("from")),
						int(cmd.Int("batch-size")),
						cmd.Bool("all"),
						commands.DefaultIO(),
					)
				},
			},
			{
				Name:  "retire-version",
				Usage: "Retire a fully drained key version",
				Flags: []cli.Flag{
					&cli.UintFlag{
						Name:     "version",
						Aliases:  []string{"v"},
						Required: true,
						Usage:    "Key version to retire",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return commands.RunRetireVersion(ctx, uint(cmd.Uint("version")), commands.DefaultIO())
				},
			},
			{
				Name:  "rotation-status",
				Usage: "Show lifecycle status and record counts for all key versions",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return commands.RunRotationStatus(ctx, commands.DefaultIO())
				},
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.Any("error", err))
		os.Exit(1)
	}
}
