// Package systemd wraps the bits of systemd integration nsmd needs when
// started as a unit: detecting whether systemctl is present, and sending
// readiness/stopping notifications over the sd_notify socket.
package systemd

import (
	"context"
	"os/exec"

	sd "github.com/coreos/go-systemd/v22/daemon"

	"github.com/NVIDIA/nsmd-sub002/pkg/log"
)

// SystemctlExists reports whether systemctl is on PATH -- nsmd uses this
// to decide whether a stopping notification is worth attempting.
func SystemctlExists() bool {
	_, err := exec.LookPath("systemctl")
	return err == nil
}

// NotifyReady tells the service manager the daemon finished startup and
// is ready to serve requests.
func NotifyReady(ctx context.Context) error {
	return notify(ctx, sd.SdNotifyReady)
}

// NotifyStopping tells the service manager the daemon is shutting down.
func NotifyStopping(ctx context.Context) error {
	return notify(ctx, sd.SdNotifyStopping)
}

func notify(_ context.Context, state string) error {
	notified, err := sd.SdNotify(false, state)
	log.Logger.Debugw("sd notification", "state", state, "notified", notified, "error", err)
	return err
}
