// Package publish defines the adapter boundary between the NSM core and
// whatever actually exposes readings to the outside world -- an
// object-bus inventory layer in production, nothing in a unit test.
// The core depends only on the Surface interface below; it never opens
// a bus itself.
package publish

import "time"

// Surface is the publishing contract spec.md §6 names: a sensor's
// HandleResponse (or the device/config layer wiring it) calls these
// methods instead of touching any bus client directly.
type Surface interface {
	// SetReading publishes a scalar value at path, tagged with its unit
	// and the time it was sampled.
	SetReading(path string, value float64, unit string, timestamp time.Time)
	// SetAvailable marks whether the object at path currently exists
	// (e.g. a device disappearing on rediscovery failure).
	SetAvailable(path string, available bool)
	// SetFunctional marks whether the object at path is operating
	// correctly, independent of whether it's available.
	SetFunctional(path string, functional bool)
	// SetProperty publishes an arbitrary (interface, property) pair --
	// the escape hatch for values that don't fit SetReading, such as
	// UUID, MIG/ECC mode, driver info, and PCIe error groups.
	SetProperty(path, iface, prop string, value any)
	// AddAssociation records a bus association triple: forward and
	// backward relationship names plus the absolute path on the other
	// end, e.g. linking a GPU to its owning baseboard.
	AddAssociation(path, forward, backward, absolute string)
}
