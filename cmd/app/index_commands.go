package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/allisson/pii-vault/cmd/app/commands"
	"github.com/allisson/pii-vault/internal/app"
	"github.com/allisson/pii-vault/internal/config"
)

func getIndexKeyCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "create-index-key",
			Usage: "Provision a new blind-index key in the future state",
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				indexKeys, err := container.IndexKeyUseCase()
				if err != nil {
					return err
				}

				return commands.RunCreateIndexKey(
					ctx,
					indexKeys,
					container.Logger(),
					commands.DefaultIO().Writer,
				)
			},
		},
		{
			Name:  "promote-index-key",
			Usage: "Promote a future blind-index key to active_write",
			Flags: []cli.Flag{
				&cli.UintFlag{
					Name:     "version",
					Aliases:  []string{"v"},
					Required: true,
					Usage:    "Index key version number to promote",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				indexKeys, err := container.IndexKeyUseCase()
				if err != nil {
					return err
				}

				return commands.RunPromoteIndexKey(ctx, indexKeys, container.Logger(), uint(cmd.Uint("version")))
			},
		},
		{
			Name:  "rollback-index-key",
			Usage: "Re-promote a decrypt_only blind-index key to active_write",
			Flags: []cli.Flag{
				&cli.UintFlag{
					Name:     "version",
					Aliases:  []string{"v"},
					Required: true,
					Usage:    "Index key version number to reinstate",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				indexKeys, err := container.IndexKeyUseCase()
				if err != nil {
					return err
				}

				return commands.RunRollbackIndexKey(ctx, indexKeys, container.Logger(), uint(cmd.Uint("version")))
			},
		},
		{
			Name:  "retire-index-key",
			Usage: "Retire a decrypt_only blind-index key",
			Flags: []cli.Flag{
				&cli.UintFlag{
					Name:     "version",
					Aliases:  []string{"v"},
					Required: true,
					Usage:    "Index key version number to retire",
				},
				&cli.BoolFlag{
					Name:  "force",
					Value: false,
					Usage: "Retire even if live records still carry tokens under the version",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				indexKeys, err := container.IndexKeyUseCase()
				if err != nil {
					return err
				}

				return commands.RunRetireIndexKey(
					ctx,
					indexKeys,
					container.Logger(),
					uint(cmd.Uint("version")),
					cmd.Bool("force"),
				)
			},
		},
		{
			Name:  "list-index-keys",
			Usage: "List all registered blind-index keys",
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

				indexKeys, err := container.IndexKeyUseCase()
				if err != nil {
					return err
				}

				return commands.RunListIndexKeys(
					ctx,
					indexKeys,
					commands.DefaultIO().Writer,
					cmd.String("format"),
				)
			},
		},
	}
}
