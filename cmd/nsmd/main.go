// Command nsmd is the long-running host daemon: it dials the local
// MCTP mux, builds a device registry from its --device uuid=eid flags,
// attaches sensors to those devices from an optional configuration file,
// drives the polling scheduler, and exposes a diagnostics HTTP surface.
// It does not publish to an object bus itself -- that is left to a
// nsm/publish.Surface implementation callers wire in (NoopSurface and
// LoggingSurface ship here; a real bus client is an external concern).
package main

import (
	"fmt"
	"os"
)

func main() {
	os.Exit(run(os.Args))
}

func run(args []string) int {
	app := newApp()
	if err := app.Run(args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}
