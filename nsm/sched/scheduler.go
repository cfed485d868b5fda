// Package sched implements the polling scheduler: one cooperative
// per-device loop that drives priority and round-robin sensor classes,
// applies exponential backoff on BUSY completion codes, polls ACCEPTED
// requests until they finish, and reacts to rediscovery events by
// invalidating a device's capability cache. It does not re-issue the
// capability discovery requests after a rediscovery event.
//
// Grounded on leptonai-gpud/pkg/poller's ticker-driven loop shape (only
// poller_test.go survived retrieval, which pins the expected
// readLast/processResult ring-buffer contract this package's tick loop
// follows) and onsi/ginkgo + onsi/gomega for its own behavioral spec, a
// teacher dependency used the same way across its test suite.
package sched

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/NVIDIA/nsmd-sub002/nsm/mctp"
	"github.com/NVIDIA/nsmd-sub002/nsm/sensor"
	"github.com/NVIDIA/nsmd-sub002/nsm/wire"
	"github.com/NVIDIA/nsmd-sub002/pkg/log"
)

// DefaultTickInterval is the spacing between one device's scheduler
// ticks; sensors under backoff are skipped on a tick, the spacing does
// not change.
const DefaultTickInterval = 100 * time.Millisecond

// Scheduler drives every registered device's poll loop and routes events
// from a shared Transport to the owning device.
type Scheduler struct {
	registry  *sensor.Registry
	caps      *sensor.CapabilityCache
	transport *mctp.Transport

	tickInterval time.Duration

	mu       sync.Mutex
	backoffs map[deviceSensorKey]*backoffState
}

type deviceSensorKey struct {
	uuid   string
	sensor sensor.Sensor
}

// New builds a Scheduler over the given registry, capability cache and
// shared transport. Callers register devices into registry before
// calling Run.
func New(registry *sensor.Registry, caps *sensor.CapabilityCache, transport *mctp.Transport) *Scheduler {
	return &Scheduler{
		registry:     registry,
		caps:         caps,
		transport:    transport,
		tickInterval: DefaultTickInterval,
		backoffs:     make(map[deviceSensorKey]*backoffState),
	}
}

// Run drives every device in the registry until ctx is cancelled: one
// goroutine per device runs its tick loop, and a shared goroutine
// dispatches inbound transport events to their owning device by EID.
func (s *Scheduler) Run(ctx context.Context) {
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		s.dispatchEvents(ctx)
	}()

	for _, d := range s.registry.All() {
		wg.Add(1)
		go func(d *sensor.Device) {
			defer wg.Done()
			s.runDevice(ctx, d)
		}(d)
	}

	wg.Wait()
}

func (s *Scheduler) dispatchEvents(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-s.transport.Events():
			if !ok {
				return
			}
			s.handleEvent(ctx, ev)
		}
	}
}

func (s *Scheduler) deviceByEID(eid uint8) (*sensor.Device, bool) {
	for _, d := range s.registry.All() {
		if d.EID == eid {
			return d, true
		}
	}
	return nil, false
}

// handleEvent decodes an inbound event and, when it is the capability
// rediscovery signal (nvidia_msg_type=capability-discovery, event_id=0,
// class=general per the S6 seed scenario), invalidates the device's
// capability cache.
func (s *Scheduler) handleEvent(ctx context.Context, ev mctp.Event) {
	d, ok := s.deviceByEID(ev.EID)
	if !ok {
		log.Logger.Debugw("sched: event for unknown device", "eid", ev.EID)
		return
	}
	decoded, sw := wire.DecodeEvent(ev.Msg)
	if sw != wire.SWSuccess {
		log.Logger.Debugw("sched: failed to decode event", "eid", ev.EID, "sw", sw)
		return
	}
	eventsTotal.WithLabelValues(d.UUID, decoded.Class.String()).Inc()

	if isRediscoverySignal(decoded) {
		s.caps.Invalidate(d.UUID)
		rediscoveriesTotal.WithLabelValues(d.UUID).Inc()
		log.Logger.Infow("sched: capability rediscovery triggered", "device", d.UUID)
	}
}

func isRediscoverySignal(e wire.Event) bool {
	return e.NvidiaMsgType == wire.TypeCapabilityDiscovery &&
		e.EventID == 0 &&
		e.Class == wire.EventClassGeneral
}

// runDevice loops ticks for d until ctx is cancelled.
func (s *Scheduler) runDevice(ctx context.Context, d *sensor.Device) {
	ticker := time.NewTicker(s.tickInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.tick(ctx, d)
		}
	}
}

// tick runs one scheduling pass: every priority sensor completes (or
// times out) before the tick's single round-robin sensor is emitted,
// per spec §5's ordering guarantee.
func (s *Scheduler) tick(ctx context.Context, d *sensor.Device) {
	ticksTotal.WithLabelValues(d.UUID).Inc()

	for _, ps := range d.PrioritySensors() {
		s.emit(ctx, d, ps)
	}

	if rr, ok := d.NextRoundRobin(); ok {
		s.emit(ctx, d, rr)
	}
}

// emit runs one sensor through Device.Emit, applying and tracking
// per-sensor exponential backoff on a BUSY outcome and driving the
// polling_long_running state on an ACCEPTED outcome (spec §4.5/§5/§7).
// A sensor still under backoff from a previous BUSY is skipped this
// tick rather than re-emitted.
func (s *Scheduler) emit(ctx context.Context, d *sensor.Device, sn sensor.Sensor) {
	key := deviceSensorKey{uuid: d.UUID, sensor: sn}

	s.mu.Lock()
	bo, ok := s.backoffs[key]
	if !ok {
		bo = newBackoffState()
		s.backoffs[key] = bo
	}
	s.mu.Unlock()

	now := time.Now()
	if !bo.ready(now) {
		emitsTotal.WithLabelValues(d.UUID, sn.Name(), "backoff").Inc()
		return
	}

	outcome, err := d.Emit(ctx, sn)
	if outcome == sensor.OutcomeLongRunning {
		outcome, err = s.pollLongRunning(ctx, d, sn)
	}
	emitsTotal.WithLabelValues(d.UUID, sn.Name(), outcomeLabel(outcome)).Inc()
	if err != nil {
		log.Logger.Debugw("sched: emit failed", "device", d.UUID, "sensor", sn.Name(), "err", err)
	}

	switch outcome {
	case sensor.OutcomeRetry:
		delay := bo.next()
		bo.arm(now, delay)
		log.Logger.Debugw("sched: backing off", "device", d.UUID, "sensor", sn.Name(), "delay", delay)
	default:
		bo.reset()
	}
}

// pollLongRunning re-issues sn's request at sensor.LongRunningPollInterval
// while the device keeps responding ACCEPTED, per the request state
// machine's polling_long_running state (spec §4.5): idle ->
// awaiting_iid -> sent -> (response | timeout | cancelled), with an
// ACCEPTED response parking the request here instead of a terminal
// state until a later poll succeeds, errors, or the wait runs out.
func (s *Scheduler) pollLongRunning(ctx context.Context, d *sensor.Device, sn sensor.Sensor) (sensor.Outcome, error) {
	deadline := time.Now().Add(sensor.LongRunningMaxWait)
	ticker := time.NewTicker(sensor.LongRunningPollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return sensor.OutcomeError, ctx.Err()
		case <-ticker.C:
			if time.Now().After(deadline) {
				return sensor.OutcomeError, fmt.Errorf("device %s: sensor %s: long-running request exceeded %s", d.UUID, sn.Name(), sensor.LongRunningMaxWait)
			}
			outcome, err := d.Emit(ctx, sn)
			if outcome != sensor.OutcomeLongRunning {
				return outcome, err
			}
		}
	}
}

func outcomeLabel(o sensor.Outcome) string {
	switch o {
	case sensor.OutcomeSkipped:
		return "skipped"
	case sensor.OutcomeSuccess:
		return "success"
	case sensor.OutcomeRetry:
		return "retry"
	case sensor.OutcomeLongRunning:
		return "long_running"
	default:
		return "error"
	}
}
