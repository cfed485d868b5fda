package wire

import "encoding/binary"

// Event is the host-side, unpacked view of an NSM event message, grounded
// on struct nsm_event in _examples/original_source/libnsm/base.h.
type Event struct {
	InstanceID    uint8
	Version       uint8
	AckRequested  bool
	NvidiaMsgType NvidiaMsgType
	EventID       uint8
	Class         EventClass
	State         uint16
	Data          []byte
}

// EncodeEvent packs an event message: header (class=Event) + version/ackr
// nibble + event_id + event_class + event_state(2, LE) + data_size + data.
func EncodeEvent(e Event) ([]byte, SoftwareCode) {
	if e.Version > 0x0F {
		return nil, SWErrorData
	}
	hdr := Header{Class: ClassEvent, InstanceID: e.InstanceID, NvidiaMsgType: e.NvidiaMsgType}
	out := make([]byte, HeaderLen+6+len(e.Data))
	if _, sw := PackHeader(&hdr, out); sw != SWSuccess {
		return nil, sw
	}
	p := out[HeaderLen:]
	ackr := uint8(0)
	if e.AckRequested {
		ackr = 1
	}
	p[0] = (e.Version & 0x0F) | (ackr << 4)
	p[1] = e.EventID
	p[2] = uint8(e.Class)
	binary.LittleEndian.PutUint16(p[3:5], e.State)
	p[5] = uint8(len(e.Data))
	copy(p[6:], e.Data)
	return out, SWSuccess
}

// DecodeEvent validates and unpacks an inbound event message.
func DecodeEvent(msg []byte) (Event, SoftwareCode) {
	if msg == nil {
		return Event{}, SWErrorNull
	}
	hdr, n, sw := UnpackHeader(msg)
	if sw != SWSuccess {
		return Event{}, sw
	}
	if hdr.Class != ClassEvent {
		return Event{}, SWErrorData
	}
	p := msg[n:]
	if len(p) < 6 {
		return Event{}, SWErrorLength
	}
	dataSize := int(p[5])
	if len(p) != 6+dataSize {
		return Event{}, SWErrorLength
	}
	return Event{
		InstanceID:    hdr.InstanceID,
		Version:       p[0] & 0x0F,
		AckRequested:  (p[0]>>4)&0x1 != 0,
		NvidiaMsgType: hdr.NvidiaMsgType,
		EventID:       p[1],
		Class:         EventClass(p[2]),
		State:         binary.LittleEndian.Uint16(p[3:5]),
		Data:          append([]byte(nil), p[6:]...),
	}, SWSuccess
}

// EncodeEventAcknowledgement packs an event-ack message (class=EventAck):
// header + event_id. Sent back by the host after consuming an event whose
// ackr bit was set.
func EncodeEventAcknowledgement(instanceID uint8, nsmType NvidiaMsgType, eventID uint8) ([]byte, SoftwareCode) {
	hdr := Header{Class: ClassEventAck, InstanceID: instanceID, NvidiaMsgType: nsmType}
	out := make([]byte, HeaderLen+1)
	if _, sw := PackHeader(&hdr, out); sw != SWSuccess {
		return nil, sw
	}
	out[HeaderLen] = eventID
	return out, SWSuccess
}

// DecodeEventAcknowledgement validates and unpacks an inbound event-ack.
func DecodeEventAcknowledgement(msg []byte) (instanceID uint8, nsmType NvidiaMsgType, eventID uint8, sw SoftwareCode) {
	if msg == nil {
		return 0, 0, 0, SWErrorNull
	}
	hdr, n, sw := UnpackHeader(msg)
	if sw != SWSuccess {
		return 0, 0, 0, sw
	}
	if hdr.Class != ClassEventAck {
		return 0, 0, 0, SWErrorData
	}
	p := msg[n:]
	if len(p) != 1 {
		return 0, 0, 0, SWErrorLength
	}
	return hdr.InstanceID, hdr.NvidiaMsgType, p[0], SWSuccess
}
