package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/allisson/pii-vault/cmd/app/commands"
	"github.com/allisson/pii-vault/internal/app"
	"github.com/allisson/pii-vault/internal/config"
)

func getWorkerCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "reencrypt-records",
			Usage: "Re-encrypt all records from a source key version to the active one",
			Flags: []cli.Flag{
				&cli.UintFlag{
					Name:     "source-version",
					Aliases:  []string{"s"},
					Required: true,
					Usage:    "Key version to migrate records away from",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				reencrypt, err := container.ReencryptUseCase()
				if err != nil {
					return err
				}

				return commands.RunReencryptRecords(
					ctx,
					reencrypt,
					container.Logger(),
					uint(cmd.Uint("source-version")),
				)
			},
		},
		{
			Name:  "rotate-blind-index",
			Usage: "Recompute all blind-index tokens from a source index key version",
			Flags: []cli.Flag{
				&cli.UintFlag{
					Name:     "source-version",
					Aliases:  []string{"s"},
					Required: true,
					Usage:    "Index key version to migrate tokens away from",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				rotateIndex, err := container.RotateIndexUseCase()
				if err != nil {
					return err
				}

				return commands.RunRotateBlindIndex(
					ctx,
					rotateIndex,
					container.Logger(),
					uint(cmd.Uint("source-version")),
				)
			},
		},
		{
			Name:  "worker",
			Usage: "Run migration workers continuously with the metrics endpoint",
			Flags: []cli.Flag{
				&cli.UintFlag{
					Name:  "key-source",
					Value: 0,
					Usage: "Source sealing key version for re-encryption (0 disables)",
				},
				&cli.UintFlag{
					Name:  "index-source",
					Value: 0,
					Usage: "Source blind-index key version for token rotation (0 disables)",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return commands.RunWorker(ctx, uint(cmd.Uint("key-source")), uint(cmd.Uint("index-source")))
			},
		},
	}
}
