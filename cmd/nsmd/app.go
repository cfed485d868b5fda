package main

import (
	"github.com/urfave/cli"

	"github.com/NVIDIA/nsmd-sub002/nsm/mctp"
	"github.com/NVIDIA/nsmd-sub002/version"
)

func newApp() *cli.App {
	app := cli.NewApp()
	app.Name = "nsmd"
	app.Version = version.Version
	app.Usage = "poll NVIDIA NSM-over-MCTP endpoints and serve diagnostics"
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:   "socket",
			Usage:  "abstract-namespace name of the local MCTP mux socket",
			Value:  mctp.DefaultSocketName,
			EnvVar: "NSM_MCTP_SOCKET",
		},
		cli.StringFlag{
			Name:  "config",
			Usage: "path to the sensor configuration file (JSON or YAML)",
		},
		cli.StringSliceFlag{
			Name:  "device",
			Usage: "uuid=eid pair identifying a device to poll; may be repeated",
		},
		cli.StringFlag{
			Name:  "listen",
			Usage: "diagnostics HTTP listen address",
			Value: ":8980",
		},
		cli.StringFlag{
			Name:   "log-level",
			Usage:  "debug, info, warn, error",
			Value:  "info",
			EnvVar: "NSM_LOG_LEVEL",
		},
		cli.StringFlag{
			Name:  "log-file",
			Usage: "optional log file path; stderr when empty",
		},
		cli.BoolFlag{
			Name:  "publish-log",
			Usage: "publish sensor readings through the log instead of discarding them (no object-bus adapter is wired up yet)",
		},
	}
	app.Action = cmdRun
	return app
}
