package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/urfave/cli"

	"github.com/NVIDIA/nsmd-sub002/nsm/config"
	"github.com/NVIDIA/nsmd-sub002/nsm/diag"
	"github.com/NVIDIA/nsmd-sub002/nsm/mctp"
	"github.com/NVIDIA/nsmd-sub002/nsm/publish"
	"github.com/NVIDIA/nsmd-sub002/nsm/sched"
	"github.com/NVIDIA/nsmd-sub002/nsm/sensor"
	"github.com/NVIDIA/nsmd-sub002/nsm/systemd"
	"github.com/NVIDIA/nsmd-sub002/pkg/log"
)

func cmdRun(c *cli.Context) error {
	lvl, err := log.ParseLogLevel(c.String("log-level"))
	if err != nil {
		return err
	}
	log.Logger = log.CreateLogger(lvl, c.String("log-file"))

	seeds, err := parseDeviceSeeds(c.StringSlice("device"))
	if err != nil {
		return err
	}
	if len(seeds) == 0 {
		return fmt.Errorf("no --device uuid=eid given, nothing to poll")
	}

	sock, err := mctp.Dial(c.String("socket"))
	if err != nil {
		return fmt.Errorf("dial mctp socket: %w", err)
	}
	transport := mctp.NewTransport(sock)
	defer transport.Close()

	registry := sensor.NewRegistry()
	caps := sensor.NewCapabilityCache()
	for _, seed := range seeds {
		registry.Register(sensor.NewDevice(seed.uuid, seed.eid, transport))
	}

	var surface publish.Surface = publish.NoopSurface{}
	if c.Bool("publish-log") {
		surface = publish.NewLoggingSurface(log.Logger)
	}

	if path := c.String("config"); path != "" {
		if err := loadSensorConfig(registry, path, surface); err != nil {
			return fmt.Errorf("load sensor config: %w", err)
		}
	}

	promReg := prometheus.NewRegistry()
	if err := sched.RegisterCollectors(promReg); err != nil {
		return fmt.Errorf("register scheduler metrics: %w", err)
	}
	scheduler := sched.New(registry, caps, transport)
	diagServer := diag.New(registry, promReg)

	rootCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	d := &nsmDaemon{diag: diagServer, transport: transport}
	signals := make(chan os.Signal, 2048)
	done := handleSignals(rootCtx, cancel, signals, d)
	signal.Notify(signals, handledSignals...)

	go scheduler.Run(rootCtx)
	go func() {
		if err := diagServer.ListenAndServe(c.String("listen")); err != nil {
			log.Logger.Errorw("diagnostics server stopped", "error", err)
		}
	}()

	log.Logger.Infow("nsmd ready", "devices", len(seeds), "listen", c.String("listen"))
	if systemd.SystemctlExists() {
		if err := systemd.NotifyReady(rootCtx); err != nil {
			log.Logger.Warnw("systemd ready notification failed", "error", err)
		}
	}

	<-done
	return nil
}

// loadSensorConfig loads descriptor entries from path and wires each
// onto the registered device it names, publishing through surface.
// Entries naming a device not in registry are skipped with a warning --
// nsmd only polls devices given via --device.
func loadSensorConfig(registry *sensor.Registry, path string, surface publish.Surface) error {
	entries, err := config.Load(path)
	if err != nil {
		return err
	}
	byUUID := make(map[string][]config.Entry, len(entries))
	for _, e := range entries {
		byUUID[e.DeviceUUID] = append(byUUID[e.DeviceUUID], e)
	}
	for uuid, group := range byUUID {
		id, ok := registry.Lookup(uuid)
		if !ok {
			log.Logger.Warnw("config names unregistered device, skipping", "uuid", uuid)
			continue
		}
		d, _ := registry.Get(id)
		if err := config.Build(d, group, surface); err != nil {
			return fmt.Errorf("device %s: %w", uuid, err)
		}
	}
	return nil
}

const shutdownGrace = 5 * time.Second
