package main

import (
	"github.com/urfave/cli/v3"
)

func getCommands() []*cli.Command {
	cmds := []*cli.Command{}
	cmds = append(cmds, getSystemCommands()...)
	cmds = append(cmds, getKeyCommands()...)
	cmds = append(cmds, getEnvelopeCommands()...)
	cmds = append(cmds, getIndexKeyCommands()...)
	cmds = append(cmds, getWorkerCommands()...)
	return cmds
}
