package sensor

import (
	"time"

	"github.com/patrickmn/go-cache"
)

// Capabilities is the result of a device's NSM_SUPPORTED_NVIDIA_MESSAGE_TYPES
// and NSM_SUPPORTED_COMMAND_CODES discovery, cached per UUID so the
// scheduler does not re-issue discovery every tick.
type Capabilities struct {
	SupportedTypes    [32]bool
	SupportedCommands map[uint8][32]bool
}

// capabilityCacheTTL has no practical effect: entries only leave the
// cache via explicit Invalidate on rediscovery (spec §5's "invalidated
// by rediscovery events"), but go-cache requires a default expiration.
const capabilityCacheTTL = 24 * time.Hour

// CapabilityCache is the read-mostly store described in spec §5: "the
// configuration store is read-only after startup, except for a
// capability cache keyed by UUID which is invalidated by rediscovery
// events."
type CapabilityCache struct {
	c *cache.Cache
}

// NewCapabilityCache returns an empty cache with no background sweep;
// entries live until explicitly invalidated.
func NewCapabilityCache() *CapabilityCache {
	return &CapabilityCache{c: cache.New(capabilityCacheTTL, 0)}
}

// Get returns the cached capabilities for uuid, if present.
func (c *CapabilityCache) Get(uuid string) (Capabilities, bool) {
	v, ok := c.c.Get(uuid)
	if !ok {
		return Capabilities{}, false
	}
	return v.(Capabilities), true
}

// Set stores caps for uuid, replacing any previous entry.
func (c *CapabilityCache) Set(uuid string, caps Capabilities) {
	c.c.Set(uuid, caps, cache.NoExpiration)
}

// Invalidate drops uuid's cached capabilities, called on a rediscovery
// event (nvidia_msg_type=capability-discovery, event_id=0) for that
// device.
func (c *CapabilityCache) Invalidate(uuid string) {
	c.c.Delete(uuid)
}
