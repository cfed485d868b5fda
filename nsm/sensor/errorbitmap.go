package sensor

import (
	"hash/fnv"
	"sync"

	"github.com/NVIDIA/nsmd-sub002/nsm/wire"
)

// ErrorBitmap is the per-sensor 256-bit map keyed by a (cc, reason,
// sw_code)-digest, used to log a given failure triple at most once until
// cleared by a success (spec §4.4).
type ErrorBitmap struct {
	mu   sync.Mutex
	bits [4]uint64
}

// NewErrorBitmap returns an empty bitmap.
func NewErrorBitmap() *ErrorBitmap {
	return &ErrorBitmap{}
}

func digest(cc wire.CompletionCode, reason wire.ReasonCode, sw wire.SoftwareCode) uint {
	h := fnv.New32a()
	h.Write([]byte{byte(cc), byte(reason), byte(reason >> 8), byte(sw)})
	return uint(h.Sum32() & 0xFF)
}

// ShouldLog reports true the first time this (cc, reason, sw) triple is
// seen since the last Clear, and false on every repeat.
func (b *ErrorBitmap) ShouldLog(cc wire.CompletionCode, reason wire.ReasonCode, sw wire.SoftwareCode) bool {
	idx := digest(cc, reason, sw)
	word, bit := idx/64, idx%64

	b.mu.Lock()
	defer b.mu.Unlock()
	mask := uint64(1) << bit
	if b.bits[word]&mask != 0 {
		return false
	}
	b.bits[word] |= mask
	return true
}

// Clear resets the bitmap, called on any successful response.
func (b *ErrorBitmap) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.bits = [4]uint64{}
}
