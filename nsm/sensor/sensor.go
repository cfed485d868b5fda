// Package sensor implements the per-device sensor model: the Sensor
// capability trait, the NumericAggregator fan-out sensor, a Device
// holding its sensor vectors and transport bookkeeping, and the
// process-wide device registry.
//
// The original NsmObject -> NsmSensor -> NsmNumericAggregator
// inheritance hierarchy with a polymorphic handleResponseMsg is recast
// per the closed-sum-type guidance as an interface plus a handful of
// concrete implementations, the idiomatic Go substitute for a sealed
// class hierarchy.
package sensor

import (
	"github.com/NVIDIA/nsmd-sub002/nsm/publish"
	"github.com/NVIDIA/nsmd-sub002/nsm/wire"
)

// Sensor is the capability trait every sensor kind implements:
// GenRequest produces the next outbound request (nil if this sensor has
// nothing to emit this tick), HandleResponse absorbs the matching
// response.
type Sensor interface {
	Name() string
	Priority() bool
	GenRequest(instanceID uint8) ([]byte, wire.SoftwareCode)
	HandleResponse(msg []byte) wire.SoftwareCode
}

// GenRequestFunc and HandleResponseFunc let a leaf sensor be built from
// two closures rather than a dedicated type, mirroring the
// gen_request/handle_response capability pair from spec §4.4.
type GenRequestFunc func(instanceID uint8) ([]byte, wire.SoftwareCode)
type HandleResponseFunc func(msg []byte) wire.SoftwareCode

// LeafSensor is a sensor with its own wire command: it owns a
// publishing path, a priority flag, and the gen/handle closures.
type LeafSensor struct {
	name        string
	priority    bool
	genRequest  GenRequestFunc
	handleResp  HandleResponseFunc
	errBitmap   *ErrorBitmap
	path        string
	surface     publish.Surface
}

// NewLeafSensor builds a LeafSensor from its name and capability
// closures. It publishes nowhere until SetSurface binds it.
func NewLeafSensor(name string, priority bool, gen GenRequestFunc, handle HandleResponseFunc) *LeafSensor {
	return &LeafSensor{
		name:       name,
		priority:   priority,
		genRequest: gen,
		handleResp: handle,
		errBitmap:  NewErrorBitmap(),
		surface:    publish.NoopSurface{},
	}
}

func (s *LeafSensor) Name() string       { return s.name }
func (s *LeafSensor) Priority() bool     { return s.priority }
func (s *LeafSensor) SetPriority(p bool) { s.priority = p }

// SetSurface binds the publishing path and surface this sensor's
// decode closures publish through; config.Build calls this once per
// descriptor after constructing its sensor.
func (s *LeafSensor) SetSurface(path string, surface publish.Surface) {
	s.path = path
	s.surface = surface
}

// Path returns the publishing path bound via SetSurface, or "" if none.
func (s *LeafSensor) Path() string { return s.path }

// Surface returns the publishing surface bound via SetSurface, or the
// NoopSurface default if none was bound.
func (s *LeafSensor) Surface() publish.Surface { return s.surface }

func (s *LeafSensor) GenRequest(instanceID uint8) ([]byte, wire.SoftwareCode) {
	return s.genRequest(instanceID)
}

func (s *LeafSensor) HandleResponse(msg []byte) wire.SoftwareCode {
	return s.handleResp(msg)
}

// ShouldLog reports whether an error with the given (cc, reason, sw)
// triple should be logged -- false once that exact triple has already
// been logged since the last success, throttling error-storm spam.
func (s *LeafSensor) ShouldLog(cc wire.CompletionCode, reason wire.ReasonCode, sw wire.SoftwareCode) bool {
	return s.errBitmap.ShouldLog(cc, reason, sw)
}

// ClearErrors resets the error bitmap on any success.
func (s *LeafSensor) ClearErrors() {
	s.errBitmap.Clear()
}

// AsyncSensor reacts only to events (rediscovery, assertions); it never
// emits a request of its own, so GenRequest always returns nil.
type AsyncSensor struct {
	name       string
	handleResp HandleResponseFunc
}

// NewAsyncSensor builds an event-only sensor.
func NewAsyncSensor(name string, handle HandleResponseFunc) *AsyncSensor {
	return &AsyncSensor{name: name, handleResp: handle}
}

func (s *AsyncSensor) Name() string   { return s.name }
func (s *AsyncSensor) Priority() bool { return false }
func (s *AsyncSensor) GenRequest(uint8) ([]byte, wire.SoftwareCode) {
	return nil, wire.SWSuccess
}
func (s *AsyncSensor) HandleResponse(msg []byte) wire.SoftwareCode {
	return s.handleResp(msg)
}
