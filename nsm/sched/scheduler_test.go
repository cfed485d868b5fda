package sched

import (
	"context"
	"sync"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"golang.org/x/sys/unix"

	"github.com/NVIDIA/nsmd-sub002/nsm/mctp"
	"github.com/NVIDIA/nsmd-sub002/nsm/sensor"
	"github.com/NVIDIA/nsmd-sub002/nsm/wire"
)

func TestScheduler(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Scheduler Suite")
}

// loopbackPair builds a Transport whose far end always answers Ping with
// success, mirroring nsm/mctp's and nsm/sensor's own test harnesses.
func loopbackPair() (*mctp.Transport, func()) {
	fds, err := unix.Socketpair(unix.AF_UNIX, unix.SOCK_SEQPACKET, 0)
	if err != nil {
		panic(err)
	}
	client := mctp.NewSocket(fds[0])
	server := mctp.NewSocket(fds[1])

	done := make(chan struct{})
	go func() {
		buf := make([]byte, 4096)
		for {
			select {
			case <-done:
				return
			default:
			}
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

	return mctp.NewTransport(client), func() { close(done); server.Close() }
}

var _ = Describe("scheduler tick ordering", func() {
	It("emits every priority sensor before the tick's round-robin sensor", func() {
		transport, stop := loopbackPair()
		defer stop()
		defer transport.Close()

		d := sensor.NewDevice("gpu-0", 8, transport)
		var mu sync.Mutex
		var order []string
		record := func(name string) func(msg []byte) wire.SoftwareCode {
			return func(msg []byte) wire.SoftwareCode {
				mu.Lock()
				order = append(order, name)
				mu.Unlock()
				_, _, sw := wire.DecodePingResp(msg)
				return sw
			}
		}
		d.AddPrioritySensor(sensor.NewLeafSensor("p1", true, func(id uint8) ([]byte, wire.SoftwareCode) {
			return wire.EncodePingReq(id)
		}, record("p1")))
		d.AddPrioritySensor(sensor.NewLeafSensor("p2", true, func(id uint8) ([]byte, wire.SoftwareCode) {
			return wire.EncodePingReq(id)
		}, record("p2")))
		d.AddRoundRobinSensor(sensor.NewLeafSensor("rr1", false, func(id uint8) ([]byte, wire.SoftwareCode) {
			return wire.EncodePingReq(id)
		}, record("rr1")))

		reg := sensor.NewRegistry()
		reg.Register(d)
		s := New(reg, sensor.NewCapabilityCache(), transport)

		ctx := context.Background()
		s.tick(ctx, d)

		mu.Lock()
		defer mu.Unlock()
		Expect(order).To(HaveLen(3))
		Expect(order[2]).To(Equal("rr1"), "round-robin sensor must be emitted last in the tick")
		Expect(order[:2]).To(ConsistOf("p1", "p2"))
	})

	It("emits every round-robin sensor at least once within |round_robin_sensors| ticks", func() {
		transport, stop := loopbackPair()
		defer stop()
		defer transport.Close()

		d := sensor.NewDevice("gpu-1", 8, transport)
		var mu sync.Mutex
		counts := map[string]int{}
		for _, name := range []string{"a", "b", "c"} {
			n := name
			d.AddRoundRobinSensor(sensor.NewLeafSensor(n, false, func(id uint8) ([]byte, wire.SoftwareCode) {
				return wire.EncodePingReq(id)
			}, func(msg []byte) wire.SoftwareCode {
				mu.Lock()
				counts[n]++
				mu.Unlock()
				_, _, sw := wire.DecodePingResp(msg)
				return sw
			}))
		}

		reg := sensor.NewRegistry()
		reg.Register(d)
		s := New(reg, sensor.NewCapabilityCache(), transport)

		ctx := context.Background()
		for i := 0; i < d.RoundRobinLen(); i++ {
			s.tick(ctx, d)
		}

		mu.Lock()
		defer mu.Unlock()
		for _, name := range []string{"a", "b", "c"} {
			Expect(counts[name]).To(BeNumerically(">=", 1), "sensor %q starved within one rotation window", name)
		}
	})
})

var _ = Describe("rediscovery handling", func() {
	It("invalidates the capability cache on the rediscovery signal", func() {
		transport, stop := loopbackPair()
		defer stop()
		defer transport.Close()

		d := sensor.NewDevice("gpu-2", 8, transport)
		reg := sensor.NewRegistry()
		reg.Register(d)

		caps := sensor.NewCapabilityCache()
		caps.Set("gpu-2", sensor.Capabilities{})
		s := New(reg, caps, transport)

		ev, _ := wire.EncodeEvent(wire.Event{
			NvidiaMsgType: wire.TypeCapabilityDiscovery,
			EventID:       0,
			Class:         wire.EventClassGeneral,
		})
		s.handleEvent(context.Background(), mctp.Event{EID: 8, Msg: ev})

		_, ok := caps.Get("gpu-2")
		Expect(ok).To(BeFalse(), "capability cache should be invalidated by a rediscovery event")
	})

	It("ignores non-rediscovery events", func() {
		transport, stop := loopbackPair()
		defer stop()
		defer transport.Close()

		d := sensor.NewDevice("gpu-3", 9, transport)
		reg := sensor.NewRegistry()
		reg.Register(d)

		caps := sensor.NewCapabilityCache()
		caps.Set("gpu-3", sensor.Capabilities{})
		s := New(reg, caps, transport)

		ev, _ := wire.EncodeEvent(wire.Event{
			NvidiaMsgType: wire.TypePlatformEnvironmental,
			EventID:       5,
			Class:         wire.EventClassAssertionDeassertion,
		})
		s.handleEvent(context.Background(), mctp.Event{EID: 9, Msg: ev})

		_, ok := caps.Get("gpu-3")
		Expect(ok).To(BeTrue(), "non-rediscovery events must not invalidate the capability cache")
	})
})

// busyThenOKPair replies BUSY to the first n Pings for a given instance
// count, then Success forever after, so a test can drive a sensor through
// one OutcomeRetry before it succeeds.
func busyThenOKPair(busyCount int) (*mctp.Transport, func()) {
	fds, err := unix.Socketpair(unix.AF_UNIX, unix.SOCK_SEQPACKET, 0)
	if err != nil {
		panic(err)
	}
	client := mctp.NewSocket(fds[0])
	server := mctp.NewSocket(fds[1])

	done := make(chan struct{})
	var mu sync.Mutex
	seen := 0
	go func() {
		buf := make([]byte, 4096)
		for {
			select {
			case <-done:
				return
			default:
			}
			tag, eid, _, payload, err := server.ReadFrame(buf)
			if err != nil {
				return
			}
			hdr, _, sw := wire.UnpackHeader(payload)
			if sw != wire.SWSuccess {
				continue
			}
			mu.Lock()
			seen++
			busy := seen <= busyCount
			mu.Unlock()
			var resp []byte
			if busy {
				resp, _ = wire.EncodePingErrorResp(hdr.InstanceID, wire.Busy, 0)
			} else {
				resp, _ = wire.EncodePingResp(hdr.InstanceID)
			}
			server.WriteFrame(tag, eid, resp)
		}
	}()

	return mctp.NewTransport(client), func() { close(done); server.Close() }
}

// acceptedThenOKPair replies ACCEPTED to the first n Pings, then Success,
// so a test can drive a sensor through the polling_long_running path.
func acceptedThenOKPair(acceptedCount int) (*mctp.Transport, func()) {
	fds, err := unix.Socketpair(unix.AF_UNIX, unix.SOCK_SEQPACKET, 0)
	if err != nil {
		panic(err)
	}
	client := mctp.NewSocket(fds[0])
	server := mctp.NewSocket(fds[1])

	done := make(chan struct{})
	var mu sync.Mutex
	seen := 0
	go func() {
		buf := make([]byte, 4096)
		for {
			select {
			case <-done:
				return
			default:
			}
			tag, eid, _, payload, err := server.ReadFrame(buf)
			if err != nil {
				return
			}
			hdr, _, sw := wire.UnpackHeader(payload)
			if sw != wire.SWSuccess {
				continue
			}
			mu.Lock()
			seen++
			accepted := seen <= acceptedCount
			mu.Unlock()
			var resp []byte
			if accepted {
				resp, _ = wire.EncodePingErrorResp(hdr.InstanceID, wire.Accepted, 0)
			} else {
				resp, _ = wire.EncodePingResp(hdr.InstanceID)
			}
			server.WriteFrame(tag, eid, resp)
		}
	}()

	return mctp.NewTransport(client), func() { close(done); server.Close() }
}

func TestEmitSkipsSensorStillUnderBackoff(t *testing.T) {
	transport, stop := busyThenOKPair(1)
	defer stop()
	defer transport.Close()

	var mu sync.Mutex
	handled := 0
	d := sensor.NewDevice("gpu-5", 8, transport)
	d.AddRoundRobinSensor(sensor.NewLeafSensor("rr", false, func(id uint8) ([]byte, wire.SoftwareCode) {
		return wire.EncodePingReq(id)
	}, func(msg []byte) wire.SoftwareCode {
		mu.Lock()
		handled++
		mu.Unlock()
		_, _, sw := wire.DecodePingResp(msg)
		return sw
	}))

	reg := sensor.NewRegistry()
	reg.Register(d)
	s := New(reg, sensor.NewCapabilityCache(), transport)

	ctx := context.Background()
	rr, ok := d.NextRoundRobin()
	if !ok {
		t.Fatal("expected a round-robin sensor")
	}

	// First emit: BUSY, no HandleResponse call, backoff armed.
	s.emit(ctx, d, rr)
	mu.Lock()
	got := handled
	mu.Unlock()
	if got != 0 {
		t.Fatalf("handled = %d, want 0 after a BUSY response", got)
	}

	// Second emit, immediately after: still inside the backoff window,
	// so the sensor must be skipped rather than re-sent.
	s.emit(ctx, d, rr)
	mu.Lock()
	got = handled
	mu.Unlock()
	if got != 0 {
		t.Fatalf("handled = %d, want 0 while still under backoff", got)
	}

	key := deviceSensorKey{uuid: d.UUID, sensor: rr}
	s.mu.Lock()
	bo := s.backoffs[key]
	s.mu.Unlock()
	if bo == nil {
		t.Fatal("expected a backoffState to have been armed for rr")
	}
	bo.readyAt = time.Time{}

	// Third emit, backoff cleared: the server's second Ping answers
	// Success, so HandleResponse finally runs.
	s.emit(ctx, d, rr)
	mu.Lock()
	got = handled
	mu.Unlock()
	if got != 1 {
		t.Fatalf("handled = %d, want 1 once backoff clears and the retry succeeds", got)
	}
}

func TestEmitPollsLongRunningUntilTerminal(t *testing.T) {
	transport, stop := acceptedThenOKPair(2)
	defer stop()
	defer transport.Close()

	var mu sync.Mutex
	handled := 0
	d := sensor.NewDevice("gpu-6", 8, transport)
	d.AddRoundRobinSensor(sensor.NewLeafSensor("rr", false, func(id uint8) ([]byte, wire.SoftwareCode) {
		return wire.EncodePingReq(id)
	}, func(msg []byte) wire.SoftwareCode {
		mu.Lock()
		handled++
		mu.Unlock()
		_, _, sw := wire.DecodePingResp(msg)
		return sw
	}))

	reg := sensor.NewRegistry()
	reg.Register(d)
	s := New(reg, sensor.NewCapabilityCache(), transport)

	ctx := context.Background()
	rr, ok := d.NextRoundRobin()
	if !ok {
		t.Fatal("expected a round-robin sensor")
	}

	done := make(chan struct{})
	go func() {
		s.emit(ctx, d, rr)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("emit did not return after the long-running poll resolved")
	}

	mu.Lock()
	got := handled
	mu.Unlock()
	if got != 1 {
		t.Fatalf("handled = %d, want 1: only the eventual Success response should reach HandleResponse", got)
	}
}

func TestSchedulerRunRespectsCancellation(t *testing.T) {
	transport, stop := loopbackPair()
	defer stop()
	defer transport.Close()

	d := sensor.NewDevice("gpu-4", 8, transport)
	d.AddRoundRobinSensor(sensor.NewLeafSensor("rr", false, func(id uint8) ([]byte, wire.SoftwareCode) {
		return wire.EncodePingReq(id)
	}, func(msg []byte) wire.SoftwareCode {
		_, _, sw := wire.DecodePingResp(msg)
		return sw
	}))

	reg := sensor.NewRegistry()
	reg.Register(d)
	s := New(reg, sensor.NewCapabilityCache(), transport)
	s.tickInterval = 10 * time.Millisecond

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after context cancellation")
	}
}
