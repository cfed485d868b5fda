package main

import (
	"context"
	"os"
	"time"

	"golang.org/x/sys/unix"

	"github.com/NVIDIA/nsmd-sub002/nsm/diag"
	"github.com/NVIDIA/nsmd-sub002/nsm/mctp"
	"github.com/NVIDIA/nsmd-sub002/nsm/systemd"
	"github.com/NVIDIA/nsmd-sub002/pkg/log"
)

var handledSignals = []os.Signal{
	unix.SIGTERM,
	unix.SIGINT,
	unix.SIGPIPE,
}

// nsmDaemon bundles the pieces a signal needs to tear down cleanly.
type nsmDaemon struct {
	diag      *diag.Server
	transport *mctp.Transport
}

func (d *nsmDaemon) Stop() {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := d.diag.Shutdown(ctx); err != nil {
		log.Logger.Warnw("diagnostics server shutdown failed", "error", err)
	}
	if err := d.transport.Close(); err != nil {
		log.Logger.Warnw("transport close failed", "error", err)
	}
}

// handleSignals starts the goroutine that reacts to OS signals: it
// cancels ctx and tears down d on SIGTERM/SIGINT, ignoring SIGPIPE
// (which would otherwise fire repeatedly on a broken socket write).
func handleSignals(ctx context.Context, cancel context.CancelFunc, signals chan os.Signal, d *nsmDaemon) chan struct{} {
	done := make(chan struct{})
	go func() {
		for s := range signals {
			if s == unix.SIGPIPE {
				continue
			}
			log.Logger.Debugw("received signal", "signal", s)
			cancel()
			if systemd.SystemctlExists() {
				notifyCtx, notifyCancel := context.WithTimeout(context.Background(), time.Second)
				if err := systemd.NotifyStopping(notifyCtx); err != nil {
					log.Logger.Warnw("systemd stopping notification failed", "error", err)
				}
				notifyCancel()
			}
			d.Stop()
			close(done)
			return
		}
	}()
	return done
}
