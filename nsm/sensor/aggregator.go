package sensor

import (
	"sort"
	"sync"

	"github.com/NVIDIA/nsmd-sub002/nsm/wire"
	"github.com/NVIDIA/nsmd-sub002/pkg/errdefs"
	"github.com/NVIDIA/nsmd-sub002/pkg/log"
)

// Child is what a NumericAggregator dispatches a sample to: a tag, a
// handler, and a Priority flag that AddChild uses to promote the
// aggregator.
type Child struct {
	Tag     uint8
	Handle  func(sample wire.Sample, timestampMicros uint64)
	Priority bool
}

// NumericAggregator is a sensor that owns one outbound aggregate command
// and fans its response out to child sensors keyed by sample tag.
// Promotion: once any added child is priority, the aggregator itself is
// priority (NumericAggregator.Priority() reports true); the caller of
// AddChild moves it out of the round-robin queue with
// Device.PromoteAggregator -- this type only tracks the resulting flag.
type NumericAggregator struct {
	name       string
	nvidiaType wire.NvidiaMsgType
	genRequest GenRequestFunc

	mu       sync.Mutex
	children map[uint8]Child
	priority bool
	errBitmap *ErrorBitmap
}

// NewNumericAggregator builds an aggregator sensor for the given command,
// identified by name for logging.
func NewNumericAggregator(name string, nvidiaType wire.NvidiaMsgType, gen GenRequestFunc) *NumericAggregator {
	return &NumericAggregator{
		name:       name,
		nvidiaType: nvidiaType,
		genRequest: gen,
		children:   make(map[uint8]Child),
		errBitmap:  NewErrorBitmap(),
	}
}

func (a *NumericAggregator) Name() string { return a.name }

func (a *NumericAggregator) Priority() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.priority
}

func (a *NumericAggregator) GenRequest(instanceID uint8) ([]byte, wire.SoftwareCode) {
	return a.genRequest(instanceID)
}

// AddChild registers a child sensor for tag. A duplicate tag is rejected
// with the Go error errdefs.ErrAlreadyExists, not a wire.SoftwareCode;
// the existing child is kept. Adding a
// priority child promotes the whole aggregator to priority; promoted
// reports true exactly once, the tick the promotion actually happens,
// so a caller holding a *Device can splice the aggregator over with
// Device.PromoteAggregator only when it matters.
func (a *NumericAggregator) AddChild(c Child) (promoted bool, err error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, exists := a.children[c.Tag]; exists {
		return false, errdefs.ErrAlreadyExists
	}
	a.children[c.Tag] = c
	if c.Priority && !a.priority {
		a.priority = true
		return true, nil
	}
	return false, nil
}

// RemoveChild drops the child registered for tag, if any.
func (a *NumericAggregator) RemoveChild(tag uint8) {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.children, tag)
}

// ChildTags returns the registered tags in ascending order, for
// deterministic iteration in tests and diagnostics.
func (a *NumericAggregator) ChildTags() []uint8 {
	a.mu.Lock()
	defer a.mu.Unlock()
	tags := make([]uint8, 0, len(a.children))
	for t := range a.children {
		tags = append(tags, t)
	}
	sort.Slice(tags, func(i, j int) bool { return tags[i] < tags[j] })
	return tags
}

// reservedTagsLowerBound is the first tag in the reserved range; samples
// with this tag or any higher one are never dispatched to a child (the
// timestamp tag is read separately) per spec §4.2.
const reservedTagsLowerBound = 0xF0

// timestampTag is the reserved tag carrying the response's monotonic
// timestamp in microseconds.
const timestampTag = 0xFF

// HandleResponse decodes the aggregate response and dispatches each
// sample to its registered child, attaching the response's timestamp
// sample (if present) to every value update from that response.
func (a *NumericAggregator) HandleResponse(msg []byte) wire.SoftwareCode {
	count, cc, stream, sw := wire.DecodeAggregateResp(msg, a.nvidiaType)
	if sw != wire.SWSuccess {
		return sw
	}
	if cc != wire.Success {
		if a.errBitmap.ShouldLog(cc, 0, wire.SWSuccess) {
			log.Logger.Warnw("aggregate response non-success", "sensor", a.name, "cc", cc)
		}
		return wire.SWSuccess
	}
	a.errBitmap.Clear()

	samples, sw := wire.DecodeSamples(stream)
	if sw != wire.SWSuccess {
		return sw
	}
	if uint16(len(samples)) != count {
		return wire.SWErrorLength
	}

	var timestampMicros uint64
	for _, s := range samples {
		if s.Tag == timestampTag {
			if ts, sw := wire.DecodeTimestampSample(s.Data); sw == wire.SWSuccess {
				timestampMicros = ts
			}
		}
	}

	a.mu.Lock()
	children := make(map[uint8]Child, len(a.children))
	for k, v := range a.children {
		children[k] = v
	}
	a.mu.Unlock()

	for _, s := range samples {
		if s.Tag >= reservedTagsLowerBound {
			continue
		}
		child, ok := children[s.Tag]
		if !ok {
			log.Logger.Debugw("aggregate sample for unmapped tag dropped", "sensor", a.name, "tag", s.Tag)
			continue
		}
		if !s.Valid {
			continue
		}
		child.Handle(s, timestampMicros)
	}
	return wire.SWSuccess
}
