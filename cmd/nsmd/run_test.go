package main

import (
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/sys/unix"

	"github.com/NVIDIA/nsmd-sub002/nsm/mctp"
	"github.com/NVIDIA/nsmd-sub002/nsm/publish"
	"github.com/NVIDIA/nsmd-sub002/nsm/sensor"
)

func newLoopbackTransport(t *testing.T) *mctp.Transport {
	t.Helper()
	fds, err := unix.Socketpair(unix.AF_UNIX, unix.SOCK_SEQPACKET, 0)
	if err != nil {
		t.Fatalf("Socketpair: %v", err)
	}
	t.Cleanup(func() { unix.Close(fds[1]) })
	transport := mctp.NewTransport(mctp.NewSocket(fds[0]))
	t.Cleanup(func() { transport.Close() })
	return transport
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sensors.json")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestLoadSensorConfigWiresMatchingDevice(t *testing.T) {
	transport := newLoopbackTransport(t)
	registry := sensor.NewRegistry()
	registry.Register(sensor.NewDevice("gpu-0", 8, transport))

	path := writeConfig(t, `[
		{"device_uuid": "gpu-0", "type": "driver_info"},
		{"device_uuid": "gpu-0", "type": "temp", "sensor_id": 0, "priority": true}
	]`)

	if err := loadSensorConfig(registry, path, publish.NoopSurface{}); err != nil {
		t.Fatalf("loadSensorConfig: %v", err)
	}

	id, ok := registry.Lookup("gpu-0")
	if !ok {
		t.Fatal("device gpu-0 not found")
	}
	d, _ := registry.Get(id)
	if got := len(d.PrioritySensors()); got != 1 {
		t.Fatalf("len(PrioritySensors()) = %d, want 1", got)
	}
	if got := d.RoundRobinLen(); got != 1 {
		t.Fatalf("RoundRobinLen() = %d, want 1", got)
	}
}

func TestLoadSensorConfigSkipsUnregisteredDevice(t *testing.T) {
	transport := newLoopbackTransport(t)
	registry := sensor.NewRegistry()
	registry.Register(sensor.NewDevice("gpu-0", 8, transport))

	path := writeConfig(t, `[{"device_uuid": "gpu-missing", "type": "driver_info"}]`)

	if err := loadSensorConfig(registry, path, publish.NoopSurface{}); err != nil {
		t.Fatalf("loadSensorConfig: %v", err)
	}

	id, _ := registry.Lookup("gpu-0")
	d, _ := registry.Get(id)
	if got := d.RoundRobinLen(); got != 0 {
		t.Fatalf("RoundRobinLen() = %d, want 0", got)
	}
}
