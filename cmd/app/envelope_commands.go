package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/allisson/pii-vault/cmd/app/commands"
	"github.com/allisson/pii-vault/internal/app"
	"github.com/allisson/pii-vault/internal/config"
)

func getEnvelopeCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "seal-value",
			Usage: "Seal a value under the active_write key version and print the JSON envelope",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "value",
					Required: true,
					Usage:    "Value to seal",
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

				return commands.RunSealValue(
					ctx,
					registry,
					container.Logger(),
					commands.DefaultIO().Writer,
					cmd.String("value"),
				)
			},
		},
		{
			Name:  "reveal-envelope",
			Usage: "Unseal a JSON envelope read from stdin",
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				registry, err := container.RegistryUseCase()
				if err != nil {
					return err
				}

				return commands.RunRevealEnvelope(
					ctx,
					registry,
					container.Logger(),
					commands.DefaultIO(),
				)
			},
		},
	}
}
