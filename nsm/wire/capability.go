package wire

// Capability discovery commands (nvidia_msg_type = TypeCapabilityDiscovery),
// grounded on _examples/original_source/libnsm/device-capability-discovery.c
// and the nsm_device_capability_discovery_commands enum in base.h.
const (
	CmdPing                         uint8 = 0x00
	CmdSupportedNvidiaMessageTypes  uint8 = 0x01
	CmdSupportedCommandCodes        uint8 = 0x02
	CmdGetEventLogRecord            uint8 = 0x08
	CmdQueryDeviceIdentification    uint8 = 0x09
	CmdDiscoverHistogram            uint8 = 0x0C
	CmdGetHistogramFormat           uint8 = 0x0D
	CmdGetHistogramData             uint8 = 0x0E
)

// SupportedTypesBitmapLen and SupportedCommandsBitmapLen are the fixed
// 32-byte (256-bit) bitmaps libnsm carries for these two commands.
const (
	SupportedTypesBitmapLen    = 32
	SupportedCommandsBitmapLen = 32
)

// EncodePingReq packs a Ping request: the bare common-request convention,
// no body. This is the S1 seed scenario: instance 0 packs to
// 10 DE 80 89 00 00 00.
func EncodePingReq(instanceID uint8) ([]byte, SoftwareCode) {
	return EncodeRequest(instanceID, TypeCapabilityDiscovery, CmdPing, nil)
}

// DecodePingReq validates an inbound Ping request carries no body.
func DecodePingReq(msg []byte) SoftwareCode {
	payload, sw := DecodeRequest(msg, TypeCapabilityDiscovery)
	if sw != SWSuccess {
		return sw
	}
	if payload[1] != 0 {
		return SWErrorLength
	}
	return SWSuccess
}

// EncodePingResp packs a successful, empty Ping response.
func EncodePingResp(instanceID uint8) ([]byte, SoftwareCode) {
	return EncodeSuccessResponse(instanceID, TypeCapabilityDiscovery, CmdPing, nil)
}

// EncodePingErrorResp packs a non-success Ping response.
func EncodePingErrorResp(instanceID uint8, cc CompletionCode, reason ReasonCode) ([]byte, SoftwareCode) {
	return EncodeErrorResponse(instanceID, TypeCapabilityDiscovery, CmdPing, cc, reason)
}

// DecodePingResp decodes a Ping response, returning only its completion
// and reason codes: success carries no body.
func DecodePingResp(msg []byte) (cc CompletionCode, reason ReasonCode, sw SoftwareCode) {
	payload, sw := DecodeResponseHeader(msg, TypeCapabilityDiscovery)
	if sw != SWSuccess {
		return 0, 0, sw
	}
	if payload[0] != CmdPing {
		return 0, 0, SWErrorData
	}
	return DecodeReasonCodeAndCC(payload)
}

// EncodeSupportedNvidiaMessageTypesReq packs a get-supported-message-types
// request (no body).
func EncodeSupportedNvidiaMessageTypesReq(instanceID uint8) ([]byte, SoftwareCode) {
	return EncodeRequest(instanceID, TypeCapabilityDiscovery, CmdSupportedNvidiaMessageTypes, nil)
}

// EncodeSupportedNvidiaMessageTypesResp packs the 32-byte supported-types
// bitmap into a success response.
func EncodeSupportedNvidiaMessageTypesResp(instanceID uint8, bitmap [SupportedTypesBitmapLen]byte) ([]byte, SoftwareCode) {
	return EncodeSuccessResponse(instanceID, TypeCapabilityDiscovery, CmdSupportedNvidiaMessageTypes, bitmap[:])
}

// DecodeSupportedNvidiaMessageTypesResp decodes the supported-types bitmap.
func DecodeSupportedNvidiaMessageTypesResp(msg []byte) (bitmap [SupportedTypesBitmapLen]byte, cc CompletionCode, reason ReasonCode, sw SoftwareCode) {
	payload, sw := DecodeResponseHeader(msg, TypeCapabilityDiscovery)
	if sw != SWSuccess {
		return bitmap, 0, 0, sw
	}
	if payload[0] != CmdSupportedNvidiaMessageTypes {
		return bitmap, 0, 0, SWErrorData
	}
	cc, reason, sw = DecodeReasonCodeAndCC(payload)
	if sw != SWSuccess || cc != Success {
		return bitmap, cc, reason, sw
	}
	body := payload[ResponseConventionLen:]
	if len(body) != SupportedTypesBitmapLen {
		return bitmap, 0, 0, SWErrorLength
	}
	copy(bitmap[:], body)
	return bitmap, cc, reason, SWSuccess
}

// EncodeSupportedCommandCodesReq packs a get-supported-command-codes
// request for the given target nvidia message type.
func EncodeSupportedCommandCodesReq(instanceID uint8, target NvidiaMsgType) ([]byte, SoftwareCode) {
	return EncodeRequest(instanceID, TypeCapabilityDiscovery, CmdSupportedCommandCodes, []byte{uint8(target)})
}

// DecodeSupportedCommandCodesReq extracts the target nvidia message type
// from an inbound request.
func DecodeSupportedCommandCodesReq(msg []byte) (target NvidiaMsgType, sw SoftwareCode) {
	payload, sw := DecodeRequest(msg, TypeCapabilityDiscovery)
	if sw != SWSuccess {
		return 0, sw
	}
	if payload[1] != 1 || len(payload) < RequestConventionLen+1 {
		return 0, SWErrorLength
	}
	return NvidiaMsgType(payload[RequestConventionLen]), SWSuccess
}

// EncodeSupportedCommandCodesResp packs the 32-byte supported-commands
// bitmap into a success response.
func EncodeSupportedCommandCodesResp(instanceID uint8, bitmap [SupportedCommandsBitmapLen]byte) ([]byte, SoftwareCode) {
	return EncodeSuccessResponse(instanceID, TypeCapabilityDiscovery, CmdSupportedCommandCodes, bitmap[:])
}

// DecodeSupportedCommandCodesResp decodes the supported-commands bitmap.
func DecodeSupportedCommandCodesResp(msg []byte) (bitmap [SupportedCommandsBitmapLen]byte, cc CompletionCode, reason ReasonCode, sw SoftwareCode) {
	payload, sw := DecodeResponseHeader(msg, TypeCapabilityDiscovery)
	if sw != SWSuccess {
		return bitmap, 0, 0, sw
	}
	if payload[0] != CmdSupportedCommandCodes {
		return bitmap, 0, 0, SWErrorData
	}
	cc, reason, sw = DecodeReasonCodeAndCC(payload)
	if sw != SWSuccess || cc != Success {
		return bitmap, cc, reason, sw
	}
	body := payload[ResponseConventionLen:]
	if len(body) != SupportedCommandsBitmapLen {
		return bitmap, 0, 0, SWErrorLength
	}
	copy(bitmap[:], body)
	return bitmap, cc, reason, SWSuccess
}

// EncodeQueryDeviceIdentificationReq packs a query-device-identification
// request (no body).
func EncodeQueryDeviceIdentificationReq(instanceID uint8) ([]byte, SoftwareCode) {
	return EncodeRequest(instanceID, TypeCapabilityDiscovery, CmdQueryDeviceIdentification, nil)
}

// EncodeQueryDeviceIdentificationResp packs the device_identification and
// device_instance byte pair into a success response.
func EncodeQueryDeviceIdentificationResp(instanceID uint8, deviceIdentification, deviceInstance uint8) ([]byte, SoftwareCode) {
	return EncodeSuccessResponse(instanceID, TypeCapabilityDiscovery, CmdQueryDeviceIdentification, []byte{deviceIdentification, deviceInstance})
}

// DecodeQueryDeviceIdentificationResp decodes the device_identification and
// device_instance byte pair.
func DecodeQueryDeviceIdentificationResp(msg []byte) (deviceIdentification, deviceInstance uint8, cc CompletionCode, reason ReasonCode, sw SoftwareCode) {
	payload, sw := DecodeResponseHeader(msg, TypeCapabilityDiscovery)
	if sw != SWSuccess {
		return 0, 0, 0, 0, sw
	}
	if payload[0] != CmdQueryDeviceIdentification {
		return 0, 0, 0, 0, SWErrorData
	}
	cc, reason, sw = DecodeReasonCodeAndCC(payload)
	if sw != SWSuccess || cc != Success {
		return 0, 0, cc, reason, sw
	}
	body := payload[ResponseConventionLen:]
	if len(body) != 2 {
		return 0, 0, 0, 0, SWErrorLength
	}
	return body[0], body[1], cc, reason, SWSuccess
}

// EventLogRecord is the host-side view of a single event log record
// returned by GET_EVENT_LOG_RECORD.
type EventLogRecord struct {
	RecordID uint16
	Class    EventClass
	Data     []byte
}

// EncodeGetEventLogRecordReq packs a get-event-log-record request for the
// given record id.
func EncodeGetEventLogRecordReq(instanceID uint8, recordID uint16) ([]byte, SoftwareCode) {
	body := []byte{uint8(recordID), uint8(recordID >> 8)}
	return EncodeRequest(instanceID, TypeCapabilityDiscovery, CmdGetEventLogRecord, body)
}

// EncodeGetEventLogRecordResp packs an event log record into a success
// response.
func EncodeGetEventLogRecordResp(instanceID uint8, rec EventLogRecord) ([]byte, SoftwareCode) {
	body := make([]byte, 3+len(rec.Data))
	body[0] = uint8(rec.RecordID)
	body[1] = uint8(rec.RecordID >> 8)
	body[2] = uint8(rec.Class)
	copy(body[3:], rec.Data)
	return EncodeSuccessResponse(instanceID, TypeCapabilityDiscovery, CmdGetEventLogRecord, body)
}

// DecodeGetEventLogRecordResp decodes an event log record response.
func DecodeGetEventLogRecordResp(msg []byte) (rec EventLogRecord, cc CompletionCode, reason ReasonCode, sw SoftwareCode) {
	payload, sw := DecodeResponseHeader(msg, TypeCapabilityDiscovery)
	if sw != SWSuccess {
		return EventLogRecord{}, 0, 0, sw
	}
	if payload[0] != CmdGetEventLogRecord {
		return EventLogRecord{}, 0, 0, SWErrorData
	}
	cc, reason, sw = DecodeReasonCodeAndCC(payload)
	if sw != SWSuccess || cc != Success {
		return EventLogRecord{}, cc, reason, sw
	}
	body := payload[ResponseConventionLen:]
	if len(body) < 3 {
		return EventLogRecord{}, 0, 0, SWErrorLength
	}
	rec = EventLogRecord{
		RecordID: uint16(body[0]) | uint16(body[1])<<8,
		Class:    EventClass(body[2]),
		Data:     append([]byte(nil), body[3:]...),
	}
	return rec, cc, reason, SWSuccess
}

// HistogramFormat describes one histogram's bucket layout, returned by
// GET_HISTOGRAM_FORMAT.
type HistogramFormat struct {
	NameSpace           uint8
	Revision            uint8
	HistogramInstanceID uint16
	BucketOffsets       []uint32
}

// EncodeDiscoverHistogramReq packs a discover-histogram request (no body).
func EncodeDiscoverHistogramReq(instanceID uint8) ([]byte, SoftwareCode) {
	return EncodeRequest(instanceID, TypeCapabilityDiscovery, CmdDiscoverHistogram, nil)
}

// EncodeGetHistogramFormatReq packs a get-histogram-format request for the
// given histogram id.
func EncodeGetHistogramFormatReq(instanceID uint8, histogramID uint8) ([]byte, SoftwareCode) {
	return EncodeRequest(instanceID, TypeCapabilityDiscovery, CmdGetHistogramFormat, []byte{histogramID})
}

// EncodeGetHistogramDataReq packs a get-histogram-data request for the
// given histogram id.
func EncodeGetHistogramDataReq(instanceID uint8, histogramID uint8) ([]byte, SoftwareCode) {
	return EncodeRequest(instanceID, TypeCapabilityDiscovery, CmdGetHistogramData, []byte{histogramID})
}

// DecodeGetHistogramFormatResp decodes a histogram format response: a
// 4-byte header followed by one uint32 bucket offset per bucket.
func DecodeGetHistogramFormatResp(msg []byte) (fmtInfo HistogramFormat, cc CompletionCode, reason ReasonCode, sw SoftwareCode) {
	payload, sw := DecodeResponseHeader(msg, TypeCapabilityDiscovery)
	if sw != SWSuccess {
		return HistogramFormat{}, 0, 0, sw
	}
	if payload[0] != CmdGetHistogramFormat {
		return HistogramFormat{}, 0, 0, SWErrorData
	}
	cc, reason, sw = DecodeReasonCodeAndCC(payload)
	if sw != SWSuccess || cc != Success {
		return HistogramFormat{}, cc, reason, sw
	}
	body := payload[ResponseConventionLen:]
	if len(body) < 4 || (len(body)-4)%4 != 0 {
		return HistogramFormat{}, 0, 0, SWErrorLength
	}
	fmtInfo.NameSpace = body[0]
	fmtInfo.Revision = body[1]
	fmtInfo.HistogramInstanceID = uint16(body[2]) | uint16(body[3])<<8
	for off := 4; off < len(body); off += 4 {
		v := uint32(body[off]) | uint32(body[off+1])<<8 | uint32(body[off+2])<<16 | uint32(body[off+3])<<24
		fmtInfo.BucketOffsets = append(fmtInfo.BucketOffsets, v)
	}
	return fmtInfo, cc, reason, SWSuccess
}

// DecodeGetHistogramDataResp decodes a histogram data response: one
// uint32 bucket count per bucket, in format order.
func DecodeGetHistogramDataResp(msg []byte) (counts []uint32, cc CompletionCode, reason ReasonCode, sw SoftwareCode) {
	payload, sw := DecodeResponseHeader(msg, TypeCapabilityDiscovery)
	if sw != SWSuccess {
		return nil, 0, 0, sw
	}
	if payload[0] != CmdGetHistogramData {
		return nil, 0, 0, SWErrorData
	}
	cc, reason, sw = DecodeReasonCodeAndCC(payload)
	if sw != SWSuccess || cc != Success {
		return nil, cc, reason, sw
	}
	body := payload[ResponseConventionLen:]
	if len(body)%4 != 0 {
		return nil, 0, 0, SWErrorLength
	}
	for off := 0; off < len(body); off += 4 {
		v := uint32(body[off]) | uint32(body[off+1])<<8 | uint32(body[off+2])<<16 | uint32(body[off+3])<<24
		counts = append(counts, v)
	}
	return counts, cc, reason, SWSuccess
}
