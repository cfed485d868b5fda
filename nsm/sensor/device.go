package sensor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/NVIDIA/nsmd-sub002/nsm/mctp"
	"github.com/NVIDIA/nsmd-sub002/nsm/wire"
	"github.com/NVIDIA/nsmd-sub002/pkg/log"
)

// DefaultResponseTimeout bounds a single send_recv wait (spec §5).
const DefaultResponseTimeout = 2 * time.Second

// LongRunningPollInterval and LongRunningMaxWait govern the
// polling_long_running state a request enters on ACCEPTED (spec §4.5):
// the scheduler keeps re-issuing the same request at this cadence until
// a terminal completion code arrives or the wait is exceeded.
const (
	LongRunningPollInterval = 250 * time.Millisecond
	LongRunningMaxWait      = 30 * time.Second
)

// Device holds one discovered endpoint's identity, sensor populations
// and transport bookkeeping. Per spec §5's shared-resource policy, the
// instance-id pool, outstanding-request map and round-robin cursor are
// mutated only by the device's own event-loop goroutine; a mutex guards
// PrioritySensors/RoundRobinSensors/Aggregators against the rare
// concurrent read from a diagnostics surface.
type Device struct {
	UUID string
	EID  uint8

	transport *mctp.Transport
	instances *mctp.InstancePool

	mu               sync.RWMutex
	prioritySensors  []Sensor
	roundRobin       []Sensor
	roundRobinCursor int
	aggregators      map[uint8]*NumericAggregator
	eventMode        uint8
}

// NewDevice builds a device bound to an already-connected transport. The
// caller is expected to add sensors (AddPrioritySensor/AddRoundRobinSensor)
// and aggregators before starting the device's poll loop.
func NewDevice(uuid string, eid uint8, transport *mctp.Transport) *Device {
	return &Device{
		UUID:        uuid,
		EID:         eid,
		transport:   transport,
		instances:   mctp.NewInstancePool(),
		aggregators: make(map[uint8]*NumericAggregator),
	}
}

// AddPrioritySensor appends s to the priority vector.
func (d *Device) AddPrioritySensor(s Sensor) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.prioritySensors = append(d.prioritySensors, s)
}

// AddRoundRobinSensor appends s to the round-robin vector.
func (d *Device) AddRoundRobinSensor(s Sensor) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.roundRobin = append(d.roundRobin, s)
}

// AddAggregator registers agg under command tag, as both an addressable
// aggregator (for routing aggregate responses) and a sensor (in whichever
// vector matches its current Priority()).
func (d *Device) AddAggregator(command uint8, agg *NumericAggregator) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.aggregators[command] = agg
	if agg.Priority() {
		d.prioritySensors = append(d.prioritySensors, agg)
	} else {
		d.roundRobin = append(d.roundRobin, agg)
	}
}

// PromoteAggregator splices agg out of the round-robin vector and into
// the priority vector, per spec §4.2: once any of an aggregator's
// children turns priority after the aggregator was already registered
// round-robin, the aggregator itself must move rather than wait for a
// re-registration that never happens. A no-op if agg is not currently
// in the round-robin vector (already priority, or not registered here).
func (d *Device) PromoteAggregator(agg *NumericAggregator) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i, s := range d.roundRobin {
		if s != Sensor(agg) {
			continue
		}
		d.roundRobin = append(d.roundRobin[:i], d.roundRobin[i+1:]...)
		if d.roundRobinCursor > i {
			d.roundRobinCursor--
		}
		if d.roundRobinCursor >= len(d.roundRobin) {
			d.roundRobinCursor = 0
		}
		d.prioritySensors = append(d.prioritySensors, agg)
		return
	}
}

// PrioritySensors returns a snapshot of the priority vector.
func (d *Device) PrioritySensors() []Sensor {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]Sensor, len(d.prioritySensors))
	copy(out, d.prioritySensors)
	return out
}

// RoundRobinSensors returns a snapshot of the round-robin vector, for
// read-only inspection (e.g. a diagnostics surface) that must not
// disturb NextRoundRobin's cursor.
func (d *Device) RoundRobinSensors() []Sensor {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]Sensor, len(d.roundRobin))
	copy(out, d.roundRobin)
	return out
}

// RoundRobinLen reports the round-robin vector's length, the window
// within which every sensor must be emitted at least once (spec §5
// invariant 9).
func (d *Device) RoundRobinLen() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.roundRobin)
}

// NextRoundRobin returns the sensor at the current cursor and advances
// it, wrapping around the vector. Returns false if the vector is empty.
func (d *Device) NextRoundRobin() (Sensor, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.roundRobin) == 0 {
		return nil, false
	}
	s := d.roundRobin[d.roundRobinCursor]
	d.roundRobinCursor = (d.roundRobinCursor + 1) % len(d.roundRobin)
	return s, true
}

// EventMode returns the device's current NSM event mode byte.
func (d *Device) EventMode() uint8 {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.eventMode
}

// SetEventMode records the event mode reported by the device (e.g. via
// NSM_SET_EVENT_SUBSCRIPTION) or learned from a rediscovery.
func (d *Device) SetEventMode(mode uint8) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.eventMode = mode
}

// Aggregator returns the aggregator registered for command, if any.
func (d *Device) Aggregator(command uint8) (*NumericAggregator, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	a, ok := d.aggregators[command]
	return a, ok
}

// Outcome classifies the result of one Emit, so a caller (the scheduler)
// can decide whether to back off and retry this sensor without needing
// to know its wire-level completion code.
type Outcome int

const (
	// OutcomeSkipped means the sensor had nothing to send this tick.
	OutcomeSkipped Outcome = iota
	// OutcomeSuccess means a response was decoded successfully.
	OutcomeSuccess
	// OutcomeRetry means the device responded BUSY: the request is
	// legitimate but not ready, and should be retried after an
	// exponential backoff (spec §7).
	OutcomeRetry
	// OutcomeLongRunning means the device responded ACCEPTED: the
	// request is now polling_long_running (spec §4.5) and the caller
	// should keep re-emitting it at LongRunningPollInterval until a
	// terminal completion code arrives or LongRunningMaxWait elapses.
	OutcomeLongRunning
	// OutcomeError means a transport failure, timeout, or a non-retry
	// non-success completion code.
	OutcomeError
)

// Emit performs one sensor's full request/response cycle: allocate an
// instance id, build the request, send_recv it, hand the response to the
// sensor, and release the id.
func (d *Device) Emit(ctx context.Context, s Sensor) (Outcome, error) {
	id, ok := d.instances.Alloc()
	if !ok {
		return OutcomeError, fmt.Errorf("device %s: no free instance ids", d.UUID)
	}
	defer d.instances.Free(id)

	req, sw := s.GenRequest(id)
	if req == nil {
		return OutcomeSkipped, nil
	}
	if sw != wire.SWSuccess {
		return OutcomeError, fmt.Errorf("device %s: sensor %s gen_request failed: %v", d.UUID, s.Name(), sw)
	}

	waitCtx, cancel := context.WithTimeout(ctx, DefaultResponseTimeout)
	defer cancel()
	resp, err := d.transport.SendRecv(waitCtx, d.EID, id, req)
	if err != nil {
		log.Logger.Debugw("send_recv failed", "device", d.UUID, "sensor", s.Name(), "err", err)
		return OutcomeError, err
	}

	if cc, sw := wire.PeekCompletionCode(resp); sw == wire.SWSuccess {
		switch cc {
		case wire.Accepted:
			return OutcomeLongRunning, nil
		case wire.Busy:
			return OutcomeRetry, nil
		}
	}

	if hsw := s.HandleResponse(resp); hsw != wire.SWSuccess {
		log.Logger.Debugw("handle_response failed", "device", d.UUID, "sensor", s.Name(), "sw", hsw)
		return OutcomeError, nil
	}
	return OutcomeSuccess, nil
}
