package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/allisson/pii-vault/cmd/app/commands"
	"github.com/allisson/pii-vault/internal/app"
	"github.com/allisson/pii-vault/internal/config"
)

func getKeyCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "create-key-version",
			Usage: "Provision a new sealing key version in the future state",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:    "algorithm",
					Aliases: []string{"alg"},
					Value:   "aes-gcm",
					Usage:   "Payload encryption algorithm (aes-gcm or chacha20-poly1305)",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				registry, err := container.RegistryUseCase()
				if err != nil {
					return err
				}

				return commands.RunCreateKeyVersion(
					ctx,
					registry,
					container.Logger(),
					commands.DefaultIO().Writer,
					cmd.String("algorithm"),
				)
			},
		},
		{
			Name:  "promote-key-version",
			Usage: "Promote a future key version to active_write",
			Flags: []cli.Flag{
				&cli.UintFlag{
					Name:     "version",
					Aliases:  []string{"v"},
					Required: true,
					Usage:    "Key version number to promote",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				registry, err := container.RegistryUseCase()
				if err != nil {
					return err
				}

				return commands.RunPromoteKeyVersion(ctx, registry, container.Logger(), uint(cmd.Uint("version")))
			},
		},
		{
			Name:  "rollback-key-version",
			Usage: "Re-promote a decrypt_only key version to active_write",
			Flags: []cli.Flag{
				&cli.UintFlag{
					Name:     "version",
					Aliases:  []string{"v"},
					Required: true,
					Usage:    "Key version number to reinstate",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				registry, err := container.RegistryUseCase()
				if err != nil {
					return err
				}

				return commands.RunRollbackKeyVersion(ctx, registry, container.Logger(), uint(cmd.Uint("version")))
			},
		},
		{
			Name:  "retire-key-version",
			Usage: "Retire a decrypt_only key version",
			Flags: []cli.Flag{
				&cli.UintFlag{
					Name:     "version",
					Aliases:  []string{"v"},
					Required: true,
					Usage:    "Key version number to retire",
				},
				&cli.BoolFlag{
					Name:  "force",
					Value: false,
					Usage: "Retire even if live records still reference the version (they become unreadable)",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				registry, err := container.RegistryUseCase()
				if err != nil {
					return err
				}

				return commands.RunRetireKeyVersion(
					ctx,
					registry,
					container.Logger(),
					uint(cmd.Uint("version")),
					cmd.Bool("force"),
				)
			},
		},
		{
			Name:  "list-key-versions",
			Usage: "List all registered sealing key versions",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:    "format",
					Aliases: []string{"f"},
					Value:   "text",
					Usage:   "Output format: 'text' or 'json'",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				registry, err := container.RegistryUseCase()
				if err != nil {
					return err
				}

				return commands.RunListKeyVersions(
					ctx,
					registry,
					commands.DefaultIO().Writer,
					cmd.String("format"),
				)
			},
		},
		{
			Name:  "export-public-key",
			Usage: "Export the PEM public key of a readable key version",
			Flags: []cli.Flag{
				&cli.UintFlag{
					Name:     "version",
					Aliases:  []string{"v"},
					Required: true,
					Usage:    "Key version number to export",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				registry, err := container.RegistryUseCase()
				if err != nil {
					return err
				}

				return commands.RunExportPublicKey(
					ctx,
					registry,
					commands.DefaultIO().Writer,
					uint(cmd.Uint("version")),
				)
			},
		},
	}
}
