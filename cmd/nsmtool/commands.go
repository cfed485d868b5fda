package main

import "github.com/urfave/cli"

// commands assembles every subcommand nsmtool exposes, grouped by the
// file that defines their Actions.
func commands() []cli.Command {
	var out []cli.Command
	out = append(out, capabilityCommands()...)
	out = append(out, platformCommands()...)
	out = append(out, modeCommands()...)
	out = append(out, gpmCommands()...)
	out = append(out, histogramCommands()...)
	return out
}
