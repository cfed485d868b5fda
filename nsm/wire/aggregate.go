package wire

import "encoding/binary"

// AggregateHeaderLen is command(1) + completion_code(1) + telemetry_count(2),
// the aggregate response's own header shape -- distinct from the common
// response convention, since aggregate responses carry no reserved/data_size
// fields before the sample stream.
const AggregateHeaderLen = 4

// Sample is one decoded telemetry sample out of an aggregate response,
// grounded on struct nsm_aggregate_resp_sample in
// _examples/original_source/libnsm/platform-environmental.h.
type Sample struct {
	Tag   uint8
	Valid bool
	Data  []byte
}

// DecodeAggregateResp validates the aggregate response header and returns
// the declared telemetry_count and the byte offset (within payload) where
// the sample stream begins.
func DecodeAggregateResp(msg []byte, t NvidiaMsgType) (telemetryCount uint16, cc CompletionCode, sampleStream []byte, sw SoftwareCode) {
	payload, sw := DecodeResponseHeader(msg, t)
	if sw != SWSuccess {
		return 0, 0, nil, sw
	}
	if len(payload) < AggregateHeaderLen {
		return 0, 0, nil, SWErrorLength
	}
	cc = CompletionCode(payload[1])
	telemetryCount = binary.LittleEndian.Uint16(payload[2:4])
	return telemetryCount, cc, payload[AggregateHeaderLen:], SWSuccess
}

// DecodeSample decodes one sample off the front of stream and returns the
// number of bytes consumed. Sample data length is 2^length, length being a
// 3-bit power-of-2 exponent capped at 7 (128 bytes), per
// NSM_AGGREGATE_MAX_SAMPLE_SIZE_AS_POWER_OF_2.
func DecodeSample(stream []byte) (sample Sample, consumed int, sw SoftwareCode) {
	if len(stream) < 2 {
		return Sample{}, 0, SWErrorLength
	}
	tag := stream[0]
	flags := stream[1]
	valid := flags&0x1 != 0
	length := (flags >> 1) & 0x7
	dataLen := 1 << length
	consumed = 2 + dataLen
	if len(stream) < consumed {
		return Sample{}, 0, SWErrorData
	}
	return Sample{Tag: tag, Valid: valid, Data: append([]byte(nil), stream[2:consumed]...)}, consumed, SWSuccess
}

// EncodeSample packs one telemetry sample. data must be exactly a power of
// two in length, up to 128 bytes; any other length is ERROR_DATA.
func EncodeSample(tag uint8, valid bool, data []byte) ([]byte, SoftwareCode) {
	length := -1
	for i := 0; i <= 7; i++ {
		if len(data) == 1<<i {
			length = i
			break
		}
	}
	if length < 0 {
		return nil, SWErrorData
	}
	out := make([]byte, 2+len(data))
	out[0] = tag
	v := uint8(0)
	if valid {
		v = 1
	}
	out[1] = v | (uint8(length) << 1)
	copy(out[2:], data)
	return out, SWSuccess
}

// DecodeSamples decodes every sample in stream, in order.
func DecodeSamples(stream []byte) ([]Sample, SoftwareCode) {
	var samples []Sample
	for len(stream) > 0 {
		s, n, sw := DecodeSample(stream)
		if sw != SWSuccess {
			return nil, sw
		}
		samples = append(samples, s)
		stream = stream[n:]
	}
	return samples, SWSuccess
}

// EncodeAggregateResp packs an aggregate response header followed by the
// concatenation of the given pre-encoded samples.
func EncodeAggregateResp(instanceID uint8, t NvidiaMsgType, command uint8, cc CompletionCode, samples [][]byte) ([]byte, SoftwareCode) {
	total := 0
	for _, s := range samples {
		total += len(s)
	}
	hdr := Header{Class: ClassResponse, InstanceID: instanceID, NvidiaMsgType: t}
	out := make([]byte, HeaderLen+AggregateHeaderLen+total)
	if _, sw := PackHeader(&hdr, out); sw != SWSuccess {
		return nil, sw
	}
	p := out[HeaderLen:]
	p[0] = command
	p[1] = uint8(cc)
	binary.LittleEndian.PutUint16(p[2:4], uint16(len(samples)))
	off := AggregateHeaderLen
	for _, s := range samples {
		copy(p[off:], s)
		off += len(s)
	}
	return out, SWSuccess
}

// Per-sample value codecs. Each interprets the fixed-width data payload of
// one Sample according to its physical unit, grounded on the
// encode/decode_aggregate_*_data family in platform-environmental.c.

// DecodeTemperatureSample interprets a 4-byte sample as a Q23.8
// fixed-point degree-Celsius reading.
func DecodeTemperatureSample(data []byte) (celsius float64, sw SoftwareCode) {
	if len(data) != 4 {
		return 0, SWErrorLength
	}
	raw := int32(binary.LittleEndian.Uint32(data))
	return float64(raw) / 256.0, SWSuccess
}

// EncodeTemperatureSampleData packs a Q23.8 fixed-point Celsius reading.
func EncodeTemperatureSampleData(celsius float64) []byte {
	raw := int32(celsius * 256.0)
	data := make([]byte, 4)
	binary.LittleEndian.PutUint32(data, uint32(raw))
	return data
}

// DecodeEnergySample interprets an 8-byte sample as cumulative millijoules.
func DecodeEnergySample(data []byte) (milliJoules uint64, sw SoftwareCode) {
	if len(data) != 8 {
		return 0, SWErrorLength
	}
	return binary.LittleEndian.Uint64(data), SWSuccess
}

// DecodeVoltageSample interprets a 4-byte sample as millivolts.
func DecodeVoltageSample(data []byte) (milliVolts uint32, sw SoftwareCode) {
	if len(data) != 4 {
		return 0, SWErrorLength
	}
	return binary.LittleEndian.Uint32(data), SWSuccess
}

// DecodePowerSample interprets a 4-byte sample as milliwatts.
func DecodePowerSample(data []byte) (milliWatts uint32, sw SoftwareCode) {
	if len(data) != 4 {
		return 0, SWErrorLength
	}
	return binary.LittleEndian.Uint32(data), SWSuccess
}

// DecodePercentageSample interprets a 4-byte sample as a Q23.8 fixed-point
// percentage, the same physical encoding libnsm uses for GPM utilization
// metrics.
func DecodePercentageSample(data []byte) (percent float64, sw SoftwareCode) {
	if len(data) != 4 {
		return 0, SWErrorLength
	}
	raw := int32(binary.LittleEndian.Uint32(data))
	return float64(raw) / 256.0, SWSuccess
}

// DecodeBandwidthSample interprets an 8-byte sample as bytes-per-second.
func DecodeBandwidthSample(data []byte) (bytesPerSec uint64, sw SoftwareCode) {
	if len(data) != 8 {
		return 0, SWErrorLength
	}
	return binary.LittleEndian.Uint64(data), SWSuccess
}

// DecodeThermalParameterSample interprets a 4-byte sample as a signed
// integer thermal parameter value.
func DecodeThermalParameterSample(data []byte) (value int32, sw SoftwareCode) {
	if len(data) != 4 {
		return 0, SWErrorLength
	}
	return int32(binary.LittleEndian.Uint32(data)), SWSuccess
}

// DecodeTimestampSample interprets an 8-byte sample as a little-endian
// uptime timestamp in microseconds, used by long-running aggregate
// commands to stamp when a sample was collected.
func DecodeTimestampSample(data []byte) (micros uint64, sw SoftwareCode) {
	if len(data) != 8 {
		return 0, SWErrorLength
	}
	return binary.LittleEndian.Uint64(data), SWSuccess
}
