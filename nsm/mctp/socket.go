// Package mctp implements the MCTP framing and transport the core talks
// over: an AF_UNIX SOCK_SEQPACKET connection to the local "mctp-mux"
// daemon, abstract-namespace addressed, carrying PCI Vendor-Defined
// Messages (NSM's MCTP message type).
//
// None of the example repos retrieved for this spec touch raw MCTP
// sockets; this package is built directly from spec.md's framing
// description (§6) using golang.org/x/sys/unix, the low-level socket
// package the teacher already depends on, since the standard library's
// net package has no SOCK_SEQPACKET or abstract-namespace support.
package mctp

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// PCIVDM is the MCTP message type NSM messages are carried under.
const PCIVDM = 0x7E

// DefaultSocketName is the abstract-namespace name of the local MCTP
// multiplexer socket.
const DefaultSocketName = "mctp-mux"

// FramePrefixLen is [tag(1), eid(1), mctp_msg_type(1)].
const FramePrefixLen = 3

// Socket is a connected MCTP multiplexer socket.
type Socket struct {
	fd int
}

// NewSocket wraps an already-connected seqpacket file descriptor, for
// callers that set up their own connection (e.g. a socketpair in tests,
// or a pre-registered fd handed off by a supervisor).
func NewSocket(fd int) *Socket {
	return &Socket{fd: fd}
}

// Dial connects to the abstract-namespace MCTP multiplexer socket named
// name (DefaultSocketName if empty) and registers this connection for
// PCI_VDM traffic.
func Dial(name string) (*Socket, error) {
	if name == "" {
		name = DefaultSocketName
	}
	fd, err := unix.Socket(unix.AF_UNIX, unix.SOCK_SEQPACKET, 0)
	if err != nil {
		return nil, fmt.Errorf("mctp: socket: %w", err)
	}
	addr := &unix.SockaddrUnix{Name: "@" + name}
	if err := unix.Connect(fd, addr); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("mctp: connect %s: %w", name, err)
	}
	if err := unix.Write(fd, []byte{PCIVDM}); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("mctp: register: %w", err)
	}
	return &Socket{fd: fd}, nil
}

// Close closes the underlying socket.
func (s *Socket) Close() error {
	return unix.Close(s.fd)
}

// WriteFrame writes [tag, eid, PCIVDM] + payload as one seqpacket message.
func (s *Socket) WriteFrame(tag, eid uint8, payload []byte) error {
	frame := make([]byte, FramePrefixLen+len(payload))
	frame[0] = tag
	frame[1] = eid
	frame[2] = PCIVDM
	copy(frame[FramePrefixLen:], payload)
	n, err := unix.Write(s.fd, frame)
	if err != nil {
		return err
	}
	if n != len(frame) {
		return fmt.Errorf("mctp: short write: %d of %d bytes", n, len(frame))
	}
	return nil
}

// ReadFrame reads one seqpacket message and splits it into its
// [tag, eid, mctp_msg_type] prefix and payload.
func (s *Socket) ReadFrame(buf []byte) (tag, eid, msgType uint8, payload []byte, err error) {
	n, err := unix.Read(s.fd, buf)
	if err != nil {
		return 0, 0, 0, nil, err
	}
	if n < FramePrefixLen {
		return 0, 0, 0, nil, fmt.Errorf("mctp: frame too short: %d bytes", n)
	}
	return buf[0], buf[1], buf[2], buf[FramePrefixLen:n], nil
}
