package mctp

import "sync"

// InstancePool tracks which of the 32 legal instance ids are currently
// "busy" -- allocated to a request awaiting its response -- for one
// device. An id is busy between emission of a REQUEST and the matching
// RESPONSE or its timeout (spec §3); the core never reuses a busy id.
// Mutated only by the owning device's event-loop goroutine, per the
// shared-resource policy in spec §5, but guarded by a mutex anyway since
// CLI one-shot commands and the daemon's scheduler can both hold a
// Transport.
type InstancePool struct {
	mu   sync.Mutex
	busy [32]bool
}

// NewInstancePool returns a pool with all 32 ids free.
func NewInstancePool() *InstancePool {
	return &InstancePool{}
}

// Alloc returns the lowest free instance id and marks it busy, or false
// if every id is currently in flight.
func (p *InstancePool) Alloc() (uint8, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i := 0; i < len(p.busy); i++ {
		if !p.busy[i] {
			p.busy[i] = true
			return uint8(i), true
		}
	}
	return 0, false
}

// Free marks id available for reuse.
func (p *InstancePool) Free(id uint8) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if int(id) < len(p.busy) {
		p.busy[id] = false
	}
}
