package diag

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sys/unix"

	"github.com/NVIDIA/nsmd-sub002/nsm/mctp"
	"github.com/NVIDIA/nsmd-sub002/nsm/sensor"
	"github.com/NVIDIA/nsmd-sub002/nsm/wire"
)

func newTestRegistry(t *testing.T) *sensor.Registry {
	t.Helper()
	fds, err := unix.Socketpair(unix.AF_UNIX, unix.SOCK_SEQPACKET, 0)
	if err != nil {
		t.Fatalf("Socketpair: %v", err)
	}
	t.Cleanup(func() { unix.Close(fds[1]) })
	transport := mctp.NewTransport(mctp.NewSocket(fds[0]))
	t.Cleanup(func() { transport.Close() })

	d := sensor.NewDevice("gpu-0", 8, transport)
	d.AddPrioritySensor(sensor.NewLeafSensor("ping", true, func(id uint8) ([]byte, wire.SoftwareCode) {
		return wire.EncodePingReq(id)
	}, func(msg []byte) wire.SoftwareCode {
		_, _, sw := wire.DecodePingResp(msg)
		return sw
	}))

	reg := sensor.NewRegistry()
	reg.Register(d)
	return reg
}

func TestHealthzReturnsOK(t *testing.T) {
	s := New(newTestRegistry(t), prometheus.NewRegistry())
	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/healthz", nil)
	s.Engine().ServeHTTP(rec, req)
	if rec.Code != 200 {
		t.Fatalf("GET /healthz = %d, want 200", rec.Code)
	}
}

func TestDevicesDumpsRegisteredDevices(t *testing.T) {
	s := New(newTestRegistry(t), prometheus.NewRegistry())
	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/devices", nil)
	s.Engine().ServeHTTP(rec, req)
	if rec.Code != 200 {
		t.Fatalf("GET /devices = %d, want 200", rec.Code)
	}

	var body struct {
		Devices []struct {
			UUID            string   `json:"uuid"`
			PrioritySensors []string `json:"priority_sensors"`
		} `json:"devices"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if len(body.Devices) != 1 || body.Devices[0].UUID != "gpu-0" {
		t.Fatalf("devices = %+v, want one device gpu-0", body.Devices)
	}
	if len(body.Devices[0].PrioritySensors) != 1 || body.Devices[0].PrioritySensors[0] != "ping" {
		t.Fatalf("priority_sensors = %v, want [ping]", body.Devices[0].PrioritySensors)
	}
}

func TestMetricsExposesPrometheusFormat(t *testing.T) {
	promReg := prometheus.NewRegistry()
	s := New(newTestRegistry(t), promReg)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/metrics", nil)
	s.Engine().ServeHTTP(rec, req)
	if rec.Code != 200 {
		t.Fatalf("GET /metrics = %d, want 200", rec.Code)
	}
}
