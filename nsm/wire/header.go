// Package wire implements the bit-exact NSM wire codec: pure pack/unpack
// functions for the message header and every supported command's request
// and response payloads. Nothing in this package performs I/O; every
// function takes and returns byte slices and a SoftwareCode.
//
// Grounded on _examples/original_source/libnsm/base.{h,c} and
// platform-environmental.{h,c} (NVIDIA's reference C implementation).
package wire

import "encoding/binary"

const (
	// PCIVendorID is NVIDIA's PCI vendor id, carried big-endian on the wire.
	PCIVendorID uint16 = 0x10DE

	ocpType    = 8
	ocpVersion = 9

	// InstanceIDMax is the largest legal 5-bit instance id.
	InstanceIDMax = 31

	// HeaderLen is the packed size of the NSM message header on the wire:
	// pci_vendor_id(2) + instance/reserved/datagram/request(1) +
	// ocp_version/ocp_type(1) + nvidia_msg_type(1).
	HeaderLen = 5

	// RequestConventionLen is command(1) + data_size(1).
	RequestConventionLen = 2
	// ResponseConventionLen is command(1) + cc(1) + reserved(2) + data_size(2).
	ResponseConventionLen = 6
	// ResponseErrorLen is command(1) + cc(1) + reason_code(2): the
	// truncated shape of every non-success response.
	ResponseErrorLen = 4
)

// MessageClass is the (request, datagram) pair decoded into one of the
// four NSM message kinds.
type MessageClass uint8

const (
	ClassResponse     MessageClass = 0
	ClassEventAck     MessageClass = 1
	ClassRequest      MessageClass = 2
	ClassEvent        MessageClass = 3
)

// Header is the host-side, unpacked view of the 5-byte wire header.
type Header struct {
	Class         MessageClass
	InstanceID    uint8
	NvidiaMsgType NvidiaMsgType
}

// PackHeader writes the 5-byte wire header for hdr into out (which must be
// at least HeaderLen bytes) and returns the number of bytes written.
func PackHeader(hdr *Header, out []byte) (int, SoftwareCode) {
	if hdr == nil || out == nil {
		return 0, SWErrorNull
	}
	if len(out) < HeaderLen {
		return 0, SWErrorLength
	}
	if hdr.InstanceID > InstanceIDMax {
		return 0, SWErrorData
	}

	var datagram, request uint8
	switch hdr.Class {
	case ClassResponse:
		datagram, request = 0, 0
	case ClassEventAck:
		datagram, request = 1, 0
	case ClassRequest:
		datagram, request = 0, 1
	case ClassEvent:
		datagram, request = 1, 1
	default:
		return 0, SWErrorData
	}

	binary.BigEndian.PutUint16(out[0:2], PCIVendorID)
	out[2] = (hdr.InstanceID & 0x1F) | (datagram << 6) | (request << 7)
	out[3] = (ocpVersion & 0x0F) | (ocpType << 4)
	out[4] = uint8(hdr.NvidiaMsgType)

	return HeaderLen, SWSuccess
}

// UnpackHeader validates and decodes the 5-byte wire header from in,
// returning the number of bytes consumed.
func UnpackHeader(in []byte) (Header, int, SoftwareCode) {
	if in == nil {
		return Header{}, 0, SWErrorNull
	}
	if len(in) < HeaderLen {
		return Header{}, 0, SWErrorLength
	}
	if binary.BigEndian.Uint16(in[0:2]) != PCIVendorID {
		return Header{}, 0, SWErrorData
	}

	instanceByte := in[2]
	ocpByte := in[3]

	gotOCPVersion := ocpByte & 0x0F
	gotOCPType := ocpByte >> 4
	if gotOCPType != ocpType || gotOCPVersion != ocpVersion {
		return Header{}, 0, SWErrorData
	}

	datagram := (instanceByte >> 6) & 0x1
	request := (instanceByte >> 7) & 0x1

	var class MessageClass
	switch {
	case request == 0 && datagram == 0:
		class = ClassResponse
	case request == 0 && datagram == 1:
		class = ClassEventAck
	case request == 1 && datagram == 0:
		class = ClassRequest
	case request == 1 && datagram == 1:
		class = ClassEvent
	}

	hdr := Header{
		Class:         class,
		InstanceID:    instanceByte & 0x1F,
		NvidiaMsgType: NvidiaMsgType(in[4]),
	}
	return hdr, HeaderLen, SWSuccess
}
