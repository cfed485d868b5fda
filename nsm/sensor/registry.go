package sensor

import (
	"fmt"
	"sync"
)

// DeviceID is an index into a Registry. Sensors hold a DeviceID rather
// than a *Device back-pointer, the resolution adopted for the
// sensor<->device<->scheduler cyclic reference noted in spec §9: "device
// owns sensors; sensor holds a weak back-pointer (by DeviceId index into
// a registry) rather than a strong reference."
type DeviceID uint32

// Registry is the process-wide table of discovered devices, addressed
// by DeviceID. It is the one piece of cross-device shared mutable state
// the scheduler touches (spec §5); all mutation is protected by mu.
type Registry struct {
	mu      sync.RWMutex
	devices map[DeviceID]*Device
	byUUID  map[string]DeviceID
	nextID  DeviceID
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		devices: make(map[DeviceID]*Device),
		byUUID:  make(map[string]DeviceID),
	}
}

// Register adds d and returns its assigned DeviceID. Registering a UUID
// that is already present replaces the prior device and reuses its id.
func (r *Registry) Register(d *Device) DeviceID {
	r.mu.Lock()
	defer r.mu.Unlock()
	if id, ok := r.byUUID[d.UUID]; ok {
		r.devices[id] = d
		return id
	}
	id := r.nextID
	r.nextID++
	r.devices[id] = d
	r.byUUID[d.UUID] = id
	return id
}

// Get resolves a DeviceID to its Device, or false if it has been
// deregistered.
func (r *Registry) Get(id DeviceID) (*Device, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.devices[id]
	return d, ok
}

// Lookup resolves a UUID to its DeviceID.
func (r *Registry) Lookup(uuid string) (DeviceID, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byUUID[uuid]
	return id, ok
}

// Deregister removes the device registered under uuid, if any.
func (r *Registry) Deregister(uuid string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	id, ok := r.byUUID[uuid]
	if !ok {
		return fmt.Errorf("sensor: no device registered for uuid %q", uuid)
	}
	delete(r.devices, id)
	delete(r.byUUID, uuid)
	return nil
}

// All returns a snapshot of every currently registered device.
func (r *Registry) All() []*Device {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Device, 0, len(r.devices))
	for _, d := range r.devices {
		out = append(out, d)
	}
	return out
}
