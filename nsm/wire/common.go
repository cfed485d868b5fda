package wire

import "encoding/binary"

// EncodeRequest packs a full NSM request message: header + command(1) +
// data_size(1) + body. body may be nil/empty for commands with no
// parameters.
func EncodeRequest(instanceID uint8, t NvidiaMsgType, command uint8, body []byte) ([]byte, SoftwareCode) {
	hdr := Header{Class: ClassRequest, InstanceID: instanceID, NvidiaMsgType: t}
	out := make([]byte, HeaderLen+RequestConventionLen+len(body))
	if _, sw := PackHeader(&hdr, out); sw != SWSuccess {
		return nil, sw
	}
	out[HeaderLen] = command
	out[HeaderLen+1] = uint8(len(body))
	copy(out[HeaderLen+RequestConventionLen:], body)
	return out, SWSuccess
}

// DecodeRequest validates the header of an inbound request and returns the
// payload (command, data_size, body) that follows it.
func DecodeRequest(msg []byte, t NvidiaMsgType) (payload []byte, sw SoftwareCode) {
	if msg == nil {
		return nil, SWErrorNull
	}
	hdr, n, sw := UnpackHeader(msg)
	if sw != SWSuccess {
		return nil, sw
	}
	if hdr.Class != ClassRequest {
		return nil, SWErrorData
	}
	if hdr.NvidiaMsgType != t {
		return nil, SWErrorData
	}
	if len(msg) < n+RequestConventionLen {
		return nil, SWErrorLength
	}
	return msg[n:], SWSuccess
}

// EncodeSuccessResponse packs a full successful NSM response message:
// header + command(1) + cc=Success(1) + reserved(2) + data_size(2, LE) + body.
func EncodeSuccessResponse(instanceID uint8, t NvidiaMsgType, command uint8, body []byte) ([]byte, SoftwareCode) {
	hdr := Header{Class: ClassResponse, InstanceID: instanceID, NvidiaMsgType: t}
	out := make([]byte, HeaderLen+ResponseConventionLen+len(body))
	if _, sw := PackHeader(&hdr, out); sw != SWSuccess {
		return nil, sw
	}
	p := out[HeaderLen:]
	p[0] = command
	p[1] = uint8(Success)
	binary.LittleEndian.PutUint16(p[2:4], 0)
	binary.LittleEndian.PutUint16(p[4:6], uint16(len(body)))
	copy(p[ResponseConventionLen:], body)
	return out, SWSuccess
}

// EncodeErrorResponse packs the truncated non-success response shape:
// header + command(1) + cc(1) + reason_code(2, LE). Every response
// encoder in this package calls this once cc != Success.
func EncodeErrorResponse(instanceID uint8, t NvidiaMsgType, command uint8, cc CompletionCode, reason ReasonCode) ([]byte, SoftwareCode) {
	if cc == Success {
		return nil, SWErrorData
	}
	hdr := Header{Class: ClassResponse, InstanceID: instanceID, NvidiaMsgType: t}
	out := make([]byte, HeaderLen+ResponseErrorLen)
	if _, sw := PackHeader(&hdr, out); sw != SWSuccess {
		return nil, sw
	}
	p := out[HeaderLen:]
	p[0] = command
	p[1] = uint8(cc)
	binary.LittleEndian.PutUint16(p[2:4], uint16(reason))
	return out, SWSuccess
}

// DecodeResponseHeader validates the header of an inbound response
// (rejecting cross-type opcode collisions) and returns the payload that
// follows it (starting at the command byte).
func DecodeResponseHeader(msg []byte, t NvidiaMsgType) (payload []byte, sw SoftwareCode) {
	if msg == nil {
		return nil, SWErrorNull
	}
	hdr, n, sw := UnpackHeader(msg)
	if sw != SWSuccess {
		return nil, sw
	}
	if hdr.Class != ClassResponse {
		return nil, SWErrorData
	}
	if hdr.NvidiaMsgType != t {
		return nil, SWErrorData
	}
	return msg[n:], SWSuccess
}

// PeekCompletionCode extracts the completion code from a response message
// without knowing its nvidia_msg_type or decoding a specific command's
// body, for callers (like the scheduler) that only need to branch on cc
// -- e.g. ACCEPTED/BUSY retry handling -- across arbitrary sensors.
func PeekCompletionCode(msg []byte) (cc CompletionCode, sw SoftwareCode) {
	if msg == nil {
		return 0, SWErrorNull
	}
	hdr, n, sw := UnpackHeader(msg)
	if sw != SWSuccess {
		return 0, sw
	}
	if hdr.Class != ClassResponse {
		return 0, SWErrorData
	}
	if len(msg) < n+2 {
		return 0, SWErrorLength
	}
	return CompletionCode(msg[n+1]), SWSuccess
}

// DecodeReasonCodeAndCC inspects the completion code at the front of a
// response payload (the byte layout is identical for the success and
// non-success shapes up to that point). If cc != Success, it additionally
// requires the payload be exactly the truncated ResponseErrorLen shape and
// extracts the reason code; every decoder in this package calls this
// first and returns immediately when cc != Success, since deeper decode
// of a non-success response is illegal (§3).
func DecodeReasonCodeAndCC(payload []byte) (cc CompletionCode, reason ReasonCode, sw SoftwareCode) {
	if payload == nil || len(payload) < 2 {
		return 0, 0, SWErrorLength
	}
	cc = CompletionCode(payload[1])
	if cc == Success {
		return cc, 0, SWSuccess
	}
	if len(payload) != ResponseErrorLen {
		return cc, 0, SWErrorLength
	}
	reason = ReasonCode(binary.LittleEndian.Uint16(payload[2:4]))
	return cc, reason, SWSuccess
}
