package mctp

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/NVIDIA/nsmd-sub002/nsm/wire"
	"github.com/NVIDIA/nsmd-sub002/pkg/log"
)

type pendingKey struct {
	eid        uint8
	instanceID uint8
}

// Transport multiplexes NSM requests and responses over a single MCTP
// socket by (eid, instance_id). One Transport serves every device the
// daemon talks to; each device's event-loop goroutine calls SendRecv
// with its own InstancePool-allocated instance id, so responses are
// routed back to their originator regardless of interleaving (S5).
type Transport struct {
	sock *Socket
	tag  uint8

	mu      sync.Mutex
	pending map[pendingKey]chan frame

	events chan Event
	closed atomic.Bool
	errCh  chan error
}

type frame struct {
	payload []byte
	err     error
}

// Event is an inbound MCTP frame whose NSM header identifies it as an
// EVENT rather than a RESPONSE; the scheduler drains Events() to detect
// rediscovery and other asynchronous notifications.
type Event struct {
	EID uint8
	Msg []byte
}

// NewTransport wraps an already-dialed socket. The returned Transport
// owns a background goroutine reading frames until Close; callers must
// not read sock directly afterwards.
func NewTransport(sock *Socket) *Transport {
	t := &Transport{
		sock:    sock,
		pending: make(map[pendingKey]chan frame),
		events:  make(chan Event, 64),
		errCh:   make(chan error, 1),
	}
	go t.readLoop()
	return t
}

// Events returns the channel of inbound EVENT/EVENT_ACK frames.
func (t *Transport) Events() <-chan Event {
	return t.events
}

// Close shuts the socket down and stops the read loop.
func (t *Transport) Close() error {
	t.closed.Store(true)
	return t.sock.Close()
}

func (t *Transport) readLoop() {
	buf := make([]byte, 4096)
	for {
		_, eid, msgType, payload, err := t.sock.ReadFrame(buf)
		if err != nil {
			if t.closed.Load() {
				return
			}
			select {
			case t.errCh <- newError(KindRecvFail, err):
			default:
			}
			continue
		}
		if msgType != PCIVDM {
			continue
		}
		hdr, _, sw := wire.UnpackHeader(payload)
		if sw != wire.SWSuccess {
			log.Logger.Debugw("mctp: dropping non-NSM frame", "eid", eid, "sw", sw)
			continue
		}
		switch hdr.Class {
		case wire.ClassResponse:
			t.deliver(eid, hdr.InstanceID, payload, nil)
		case wire.ClassEvent, wire.ClassEventAck:
			select {
			case t.events <- Event{EID: eid, Msg: append([]byte(nil), payload...)}:
			default:
				log.Logger.Warnw("mctp: event channel full, dropping event", "eid", eid)
			}
		default:
			log.Logger.Debugw("mctp: dropping unexpected request-class frame on transport", "eid", eid)
		}
	}
}

func (t *Transport) deliver(eid, instanceID uint8, payload []byte, err error) {
	key := pendingKey{eid: eid, instanceID: instanceID}
	t.mu.Lock()
	ch, ok := t.pending[key]
	if ok {
		delete(t.pending, key)
	}
	t.mu.Unlock()
	if !ok {
		// No waiter: either a retired timeout or an instance mismatch.
		// Per spec §7 InstanceMismatch, the message is dropped and the
		// wait (if any) continues.
		return
	}
	ch <- frame{payload: payload, err: err}
}

// SendRecv writes req to eid and waits for the matching response
// (matched on req's own instance id), or returns a transport Error on
// send failure (KindSendFail) or ctx expiry (KindTimeout). Frames too
// short to carry an NSM header are dropped by the read loop, and the
// wait continues.
func (t *Transport) SendRecv(ctx context.Context, eid uint8, instanceID uint8, req []byte) ([]byte, error) {
	key := pendingKey{eid: eid, instanceID: instanceID}
	ch := make(chan frame, 1)

	t.mu.Lock()
	t.pending[key] = ch
	t.mu.Unlock()

	if err := t.sock.WriteFrame(t.nextTag(), eid, req); err != nil {
		t.mu.Lock()
		delete(t.pending, key)
		t.mu.Unlock()
		return nil, newError(KindSendFail, err)
	}

	select {
	case f := <-ch:
		if f.err != nil {
			return nil, f.err
		}
		return f.payload, nil
	case <-ctx.Done():
		t.mu.Lock()
		delete(t.pending, key)
		t.mu.Unlock()
		return nil, newError(KindTimeout, ctx.Err())
	}
}

var tagCounter atomic.Uint32

func (t *Transport) nextTag() uint8 {
	return uint8(tagCounter.Add(1))
}
