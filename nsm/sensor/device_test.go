package sensor

import (
	"context"
	"testing"
	"time"

	"golang.org/x/sys/unix"

	"github.com/NVIDIA/nsmd-sub002/nsm/mctp"
	"github.com/NVIDIA/nsmd-sub002/nsm/wire"
)

// newLoopbackTransport builds a Transport over an in-process socketpair
// with a goroutine on the far end answering Ping requests, mirroring
// nsm/mctp's own transport_test.go harness.
func newLoopbackTransport(t *testing.T) *mctp.Transport {
	t.Helper()
	fds, err := unix.Socketpair(unix.AF_UNIX, unix.SOCK_SEQPACKET, 0)
	if err != nil {
		t.Fatalf("Socketpair: %v", err)
	}
	client := mctp.NewSocket(fds[0])
	server := mctp.NewSocket(fds[1])

	go func() {
		buf := make([]byte, 4096)
		for {
			tag, eid, _, payload, err := server.ReadFrame(buf)
			if err != nil {
				return
			}
			hdr, _, sw := wire.UnpackHeader(payload)
			if sw != wire.SWSuccess {
				continue
			}
			resp, _ := wire.EncodePingResp(hdr.InstanceID)
			server.WriteFrame(tag, eid, resp)
		}
	}()

	return mctp.NewTransport(client)
}

func TestDeviceEmitRoundTrip(t *testing.T) {
	transport := newLoopbackTransport(t)
	defer transport.Close()

	d := NewDevice("gpu-0", 8, transport)
	var handled bool
	s := NewLeafSensor("ping", true,
		func(instanceID uint8) ([]byte, wire.SoftwareCode) {
			return wire.EncodePingReq(instanceID)
		},
		func(msg []byte) wire.SoftwareCode {
			cc, _, sw := wire.DecodePingResp(msg)
			if sw == wire.SWSuccess && cc == wire.Success {
				handled = true
			}
			return sw
		},
	)
	d.AddPrioritySensor(s)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	for _, ps := range d.PrioritySensors() {
		if outcome, err := d.Emit(ctx, ps); err != nil || outcome != OutcomeSuccess {
			t.Fatalf("Emit: outcome=%v err=%v", outcome, err)
		}
	}
	if !handled {
		t.Fatal("response handler was not invoked")
	}
}

func TestDeviceRoundRobinRotation(t *testing.T) {
	transport := newLoopbackTransport(t)
	defer transport.Close()

	d := NewDevice("gpu-1", 8, transport)
	names := []string{"a", "b", "c"}
	for _, n := range names {
		name := n
		d.AddRoundRobinSensor(NewLeafSensor(name, false,
			func(instanceID uint8) ([]byte, wire.SoftwareCode) {
				return wire.EncodePingReq(instanceID)
			},
			func(msg []byte) wire.SoftwareCode {
				_, _, sw := wire.DecodePingResp(msg)
				return sw
			},
		))
	}

	var seen []string
	for i := 0; i < len(names)*2; i++ {
		s, ok := d.NextRoundRobin()
		if !ok {
			t.Fatal("NextRoundRobin: empty vector")
		}
		seen = append(seen, s.Name())
	}
	for i, want := range append(names, names...) {
		if seen[i] != want {
			t.Fatalf("rotation[%d] = %q, want %q (no starvation within |round_robin_sensors| ticks)", i, seen[i], want)
		}
	}
}
