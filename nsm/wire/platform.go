package wire

import "encoding/binary"

// Platform environmental commands (nvidia_msg_type = TypePlatformEnvironmental),
// grounded on _examples/original_source/libnsm/platform-environmental.{h,c}.
const (
	CmdGetTemperatureReading          uint8 = 0x00
	CmdReadThermalParameter           uint8 = 0x02
	CmdGetPower                       uint8 = 0x03
	CmdGetPowerLimits                 uint8 = 0x07
	CmdGetProgrammableEDPpScalingFactor uint8 = 0x09
	CmdGetCurrentClockFrequency       uint8 = 0x0B
	CmdGetInventoryInformation        uint8 = 0x0C
	CmdGetDriverInfo                  uint8 = 0x0E
	CmdGetVoltage                     uint8 = 0x0F
	CmdSetClockLimit                  uint8 = 0x10
	CmdGetClockLimit                  uint8 = 0x11
	CmdGetEnergyCount                 uint8 = 0x06
	CmdQueryAggregateGPMMetrics       uint8 = 0x49
	CmdQueryPerInstanceGPMMetrics     uint8 = 0x4A
	CmdGetMigMode                     uint8 = 0x4D
	CmdSetMigMode                     uint8 = 0x4E
	CmdGetEccMode                     uint8 = 0x4F
	CmdSetEccMode                     uint8 = 0x7C
	CmdGetEccErrorCounts              uint8 = 0x7D
	CmdGetRowRemapStateFlags          uint8 = 0x7F
	CmdGetRowRemappingCounts          uint8 = 0x7E
	CmdGetMemoryCapacityUtilization   uint8 = 0xAD
)

// encodeNumericSensorReq packs the common one-byte sensor-id request body
// shared by temperature, power, voltage and energy reads.
func encodeNumericSensorReq(instanceID uint8, command uint8, sensorID uint8) ([]byte, SoftwareCode) {
	return EncodeRequest(instanceID, TypePlatformEnvironmental, command, []byte{sensorID})
}

func decodeNumericSensorReq(msg []byte, command uint8) (sensorID uint8, sw SoftwareCode) {
	payload, sw := DecodeRequest(msg, TypePlatformEnvironmental)
	if sw != SWSuccess {
		return 0, sw
	}
	if payload[0] != command {
		return 0, SWErrorData
	}
	if payload[1] != 1 || len(payload) < RequestConventionLen+1 {
		return 0, SWErrorLength
	}
	return payload[RequestConventionLen], SWSuccess
}

func decodeInt32Resp(msg []byte, command uint8) (reading int32, cc CompletionCode, reason ReasonCode, sw SoftwareCode) {
	payload, sw := DecodeResponseHeader(msg, TypePlatformEnvironmental)
	if sw != SWSuccess {
		return 0, 0, 0, sw
	}
	if payload[0] != command {
		return 0, 0, 0, SWErrorData
	}
	cc, reason, sw = DecodeReasonCodeAndCC(payload)
	if sw != SWSuccess || cc != Success {
		return 0, cc, reason, sw
	}
	body := payload[ResponseConventionLen:]
	if len(body) != 4 {
		return 0, 0, 0, SWErrorLength
	}
	return int32(binary.LittleEndian.Uint32(body)), cc, reason, SWSuccess
}

func encodeInt32Resp(instanceID uint8, command uint8, reading int32) ([]byte, SoftwareCode) {
	body := make([]byte, 4)
	binary.LittleEndian.PutUint32(body, uint32(reading))
	return EncodeSuccessResponse(instanceID, TypePlatformEnvironmental, command, body)
}

func decodeUint32Resp(msg []byte, command uint8) (reading uint32, cc CompletionCode, reason ReasonCode, sw SoftwareCode) {
	payload, sw := DecodeResponseHeader(msg, TypePlatformEnvironmental)
	if sw != SWSuccess {
		return 0, 0, 0, sw
	}
	if payload[0] != command {
		return 0, 0, 0, SWErrorData
	}
	cc, reason, sw = DecodeReasonCodeAndCC(payload)
	if sw != SWSuccess || cc != Success {
		return 0, cc, reason, sw
	}
	body := payload[ResponseConventionLen:]
	if len(body) != 4 {
		return 0, 0, 0, SWErrorLength
	}
	return binary.LittleEndian.Uint32(body), cc, reason, SWSuccess
}

func encodeUint32Resp(instanceID uint8, command uint8, reading uint32) ([]byte, SoftwareCode) {
	body := make([]byte, 4)
	binary.LittleEndian.PutUint32(body, reading)
	return EncodeSuccessResponse(instanceID, TypePlatformEnvironmental, command, body)
}

// Temperature: signed S24.8 fixed-point reading in degrees C (raw/256).

func EncodeGetTemperatureReadingReq(instanceID, sensorID uint8) ([]byte, SoftwareCode) {
	return encodeNumericSensorReq(instanceID, CmdGetTemperatureReading, sensorID)
}

func DecodeGetTemperatureReadingReq(msg []byte) (sensorID uint8, sw SoftwareCode) {
	return decodeNumericSensorReq(msg, CmdGetTemperatureReading)
}

func EncodeGetTemperatureReadingResp(instanceID uint8, raw int32) ([]byte, SoftwareCode) {
	return encodeInt32Resp(instanceID, CmdGetTemperatureReading, raw)
}

func DecodeGetTemperatureReadingResp(msg []byte) (raw int32, cc CompletionCode, reason ReasonCode, sw SoftwareCode) {
	return decodeInt32Resp(msg, CmdGetTemperatureReading)
}

// ReadThermalParameter: signed reading keyed by a parameter id.

func EncodeReadThermalParameterReq(instanceID, parameterID uint8) ([]byte, SoftwareCode) {
	return EncodeRequest(instanceID, TypePlatformEnvironmental, CmdReadThermalParameter, []byte{parameterID})
}

func DecodeReadThermalParameterResp(msg []byte) (value int32, cc CompletionCode, reason ReasonCode, sw SoftwareCode) {
	return decodeInt32Resp(msg, CmdReadThermalParameter)
}

// Power: instantaneous power draw in milliwatts.

func EncodeGetPowerReq(instanceID, sensorID uint8) ([]byte, SoftwareCode) {
	return encodeNumericSensorReq(instanceID, CmdGetPower, sensorID)
}

func DecodeGetPowerReq(msg []byte) (sensorID uint8, sw SoftwareCode) {
	return decodeNumericSensorReq(msg, CmdGetPower)
}

func EncodeGetPowerResp(instanceID uint8, milliWatts uint32) ([]byte, SoftwareCode) {
	return encodeUint32Resp(instanceID, CmdGetPower, milliWatts)
}

func DecodeGetPowerResp(msg []byte) (milliWatts uint32, cc CompletionCode, reason ReasonCode, sw SoftwareCode) {
	return decodeUint32Resp(msg, CmdGetPower)
}

// PowerLimits: min/max requested and present limits in milliwatts, mirroring
// nsm_clock_limit's four-uint32 shape (struct reused across commands in
// libnsm; here as a dedicated struct since the units differ).
type PowerLimits struct {
	RequestedMin uint32
	RequestedMax uint32
	PresentMin   uint32
	PresentMax   uint32
}

func EncodeGetPowerLimitsReq(instanceID, sensorID uint8) ([]byte, SoftwareCode) {
	return encodeNumericSensorReq(instanceID, CmdGetPowerLimits, sensorID)
}

func EncodeGetPowerLimitsResp(instanceID uint8, limits PowerLimits) ([]byte, SoftwareCode) {
	body := make([]byte, 16)
	binary.LittleEndian.PutUint32(body[0:4], limits.RequestedMin)
	binary.LittleEndian.PutUint32(body[4:8], limits.RequestedMax)
	binary.LittleEndian.PutUint32(body[8:12], limits.PresentMin)
	binary.LittleEndian.PutUint32(body[12:16], limits.PresentMax)
	return EncodeSuccessResponse(instanceID, TypePlatformEnvironmental, CmdGetPowerLimits, body)
}

func DecodeGetPowerLimitsResp(msg []byte) (limits PowerLimits, cc CompletionCode, reason ReasonCode, sw SoftwareCode) {
	payload, sw := DecodeResponseHeader(msg, TypePlatformEnvironmental)
	if sw != SWSuccess {
		return PowerLimits{}, 0, 0, sw
	}
	if payload[0] != CmdGetPowerLimits {
		return PowerLimits{}, 0, 0, SWErrorData
	}
	cc, reason, sw = DecodeReasonCodeAndCC(payload)
	if sw != SWSuccess || cc != Success {
		return PowerLimits{}, cc, reason, sw
	}
	body := payload[ResponseConventionLen:]
	if len(body) != 16 {
		return PowerLimits{}, 0, 0, SWErrorLength
	}
	limits = PowerLimits{
		RequestedMin: binary.LittleEndian.Uint32(body[0:4]),
		RequestedMax: binary.LittleEndian.Uint32(body[4:8]),
		PresentMin:   binary.LittleEndian.Uint32(body[8:12]),
		PresentMax:   binary.LittleEndian.Uint32(body[12:16]),
	}
	return limits, cc, reason, SWSuccess
}

// Energy count: cumulative millijoules.

func EncodeGetEnergyCountReq(instanceID, sensorID uint8) ([]byte, SoftwareCode) {
	return encodeNumericSensorReq(instanceID, CmdGetEnergyCount, sensorID)
}

func EncodeGetEnergyCountResp(instanceID uint8, milliJoules uint64) ([]byte, SoftwareCode) {
	body := make([]byte, 8)
	binary.LittleEndian.PutUint64(body, milliJoules)
	return EncodeSuccessResponse(instanceID, TypePlatformEnvironmental, CmdGetEnergyCount, body)
}

func DecodeGetEnergyCountResp(msg []byte) (milliJoules uint64, cc CompletionCode, reason ReasonCode, sw SoftwareCode) {
	payload, sw := DecodeResponseHeader(msg, TypePlatformEnvironmental)
	if sw != SWSuccess {
		return 0, 0, 0, sw
	}
	if payload[0] != CmdGetEnergyCount {
		return 0, 0, 0, SWErrorData
	}
	cc, reason, sw = DecodeReasonCodeAndCC(payload)
	if sw != SWSuccess || cc != Success {
		return 0, cc, reason, sw
	}
	body := payload[ResponseConventionLen:]
	if len(body) != 8 {
		return 0, 0, 0, SWErrorLength
	}
	return binary.LittleEndian.Uint64(body), cc, reason, SWSuccess
}

// Voltage: reading in millivolts.

func EncodeGetVoltageReq(instanceID, sensorID uint8) ([]byte, SoftwareCode) {
	return encodeNumericSensorReq(instanceID, CmdGetVoltage, sensorID)
}

func EncodeGetVoltageResp(instanceID uint8, milliVolts uint32) ([]byte, SoftwareCode) {
	return encodeUint32Resp(instanceID, CmdGetVoltage, milliVolts)
}

func DecodeGetVoltageResp(msg []byte) (milliVolts uint32, cc CompletionCode, reason ReasonCode, sw SoftwareCode) {
	return decodeUint32Resp(msg, CmdGetVoltage)
}

// EDPpScalingFactors: default/maximum/minimum scaling percentages.
type EDPpScalingFactors struct {
	Default uint8
	Maximum uint8
	Minimum uint8
}

func EncodeGetProgrammableEDPpScalingFactorReq(instanceID uint8) ([]byte, SoftwareCode) {
	return EncodeRequest(instanceID, TypePlatformEnvironmental, CmdGetProgrammableEDPpScalingFactor, nil)
}

func EncodeGetProgrammableEDPpScalingFactorResp(instanceID uint8, f EDPpScalingFactors) ([]byte, SoftwareCode) {
	return EncodeSuccessResponse(instanceID, TypePlatformEnvironmental, CmdGetProgrammableEDPpScalingFactor, []byte{f.Default, f.Maximum, f.Minimum})
}

func DecodeGetProgrammableEDPpScalingFactorResp(msg []byte) (f EDPpScalingFactors, cc CompletionCode, reason ReasonCode, sw SoftwareCode) {
	payload, sw := DecodeResponseHeader(msg, TypePlatformEnvironmental)
	if sw != SWSuccess {
		return EDPpScalingFactors{}, 0, 0, sw
	}
	if payload[0] != CmdGetProgrammableEDPpScalingFactor {
		return EDPpScalingFactors{}, 0, 0, SWErrorData
	}
	cc, reason, sw = DecodeReasonCodeAndCC(payload)
	if sw != SWSuccess || cc != Success {
		return EDPpScalingFactors{}, cc, reason, sw
	}
	body := payload[ResponseConventionLen:]
	if len(body) != 3 {
		return EDPpScalingFactors{}, 0, 0, SWErrorLength
	}
	return EDPpScalingFactors{Default: body[0], Maximum: body[1], Minimum: body[2]}, cc, reason, SWSuccess
}

// ClockLimit mirrors libnsm's nsm_clock_limit: requested/present min/max
// in MHz.
type ClockLimit struct {
	RequestedMin uint32
	RequestedMax uint32
	PresentMin   uint32
	PresentMax   uint32
}

func EncodeGetClockLimitReq(instanceID, clockID uint8) ([]byte, SoftwareCode) {
	return EncodeRequest(instanceID, TypePlatformEnvironmental, CmdGetClockLimit, []byte{clockID})
}

func EncodeGetClockLimitResp(instanceID uint8, limit ClockLimit) ([]byte, SoftwareCode) {
	body := make([]byte, 16)
	binary.LittleEndian.PutUint32(body[0:4], limit.RequestedMin)
	binary.LittleEndian.PutUint32(body[4:8], limit.RequestedMax)
	binary.LittleEndian.PutUint32(body[8:12], limit.PresentMin)
	binary.LittleEndian.PutUint32(body[12:16], limit.PresentMax)
	return EncodeSuccessResponse(instanceID, TypePlatformEnvironmental, CmdGetClockLimit, body)
}

func DecodeGetClockLimitResp(msg []byte) (limit ClockLimit, cc CompletionCode, reason ReasonCode, sw SoftwareCode) {
	payload, sw := DecodeResponseHeader(msg, TypePlatformEnvironmental)
	if sw != SWSuccess {
		return ClockLimit{}, 0, 0, sw
	}
	if payload[0] != CmdGetClockLimit {
		return ClockLimit{}, 0, 0, SWErrorData
	}
	cc, reason, sw = DecodeReasonCodeAndCC(payload)
	if sw != SWSuccess || cc != Success {
		return ClockLimit{}, cc, reason, sw
	}
	body := payload[ResponseConventionLen:]
	if len(body) != 16 {
		return ClockLimit{}, 0, 0, SWErrorLength
	}
	limit = ClockLimit{
		RequestedMin: binary.LittleEndian.Uint32(body[0:4]),
		RequestedMax: binary.LittleEndian.Uint32(body[4:8]),
		PresentMin:   binary.LittleEndian.Uint32(body[8:12]),
		PresentMax:   binary.LittleEndian.Uint32(body[12:16]),
	}
	return limit, cc, reason, SWSuccess
}

func EncodeSetClockLimitReq(instanceID, clockID uint8, requestedMin, requestedMax uint32) ([]byte, SoftwareCode) {
	body := make([]byte, 9)
	body[0] = clockID
	binary.LittleEndian.PutUint32(body[1:5], requestedMin)
	binary.LittleEndian.PutUint32(body[5:9], requestedMax)
	return EncodeRequest(instanceID, TypePlatformEnvironmental, CmdSetClockLimit, body)
}

func DecodeSetClockLimitReq(msg []byte) (clockID uint8, requestedMin, requestedMax uint32, sw SoftwareCode) {
	payload, sw := DecodeRequest(msg, TypePlatformEnvironmental)
	if sw != SWSuccess {
		return 0, 0, 0, sw
	}
	if payload[0] != CmdSetClockLimit {
		return 0, 0, 0, SWErrorData
	}
	if payload[1] != 9 || len(payload) < RequestConventionLen+9 {
		return 0, 0, 0, SWErrorLength
	}
	body := payload[RequestConventionLen:]
	return body[0], binary.LittleEndian.Uint32(body[1:5]), binary.LittleEndian.Uint32(body[5:9]), SWSuccess
}

func EncodeSetClockLimitResp(instanceID uint8) ([]byte, SoftwareCode) {
	return EncodeSuccessResponse(instanceID, TypePlatformEnvironmental, CmdSetClockLimit, nil)
}

// Current clock frequency in MHz.

func EncodeGetCurrentClockFrequencyReq(instanceID, clockID uint8) ([]byte, SoftwareCode) {
	return EncodeRequest(instanceID, TypePlatformEnvironmental, CmdGetCurrentClockFrequency, []byte{clockID})
}

func EncodeGetCurrentClockFrequencyResp(instanceID uint8, mhz uint32) ([]byte, SoftwareCode) {
	return encodeUint32Resp(instanceID, CmdGetCurrentClockFrequency, mhz)
}

func DecodeGetCurrentClockFrequencyResp(msg []byte) (mhz uint32, cc CompletionCode, reason ReasonCode, sw SoftwareCode) {
	return decodeUint32Resp(msg, CmdGetCurrentClockFrequency)
}

// DriverInfo: driver state plus a NUL-terminated version string.
type DriverInfo struct {
	State   uint8
	Version string
}

func EncodeGetDriverInfoReq(instanceID uint8) ([]byte, SoftwareCode) {
	return EncodeRequest(instanceID, TypePlatformEnvironmental, CmdGetDriverInfo, nil)
}

func EncodeGetDriverInfoResp(instanceID uint8, info DriverInfo) ([]byte, SoftwareCode) {
	strBuf := make([]byte, len(info.Version)+1)
	if _, sw := EncodeFixedString(info.Version, strBuf); sw != SWSuccess {
		return nil, sw
	}
	body := append([]byte{info.State}, strBuf...)
	return EncodeSuccessResponse(instanceID, TypePlatformEnvironmental, CmdGetDriverInfo, body)
}

func DecodeGetDriverInfoResp(msg []byte) (info DriverInfo, cc CompletionCode, reason ReasonCode, sw SoftwareCode) {
	payload, sw := DecodeResponseHeader(msg, TypePlatformEnvironmental)
	if sw != SWSuccess {
		return DriverInfo{}, 0, 0, sw
	}
	if payload[0] != CmdGetDriverInfo {
		return DriverInfo{}, 0, 0, SWErrorData
	}
	cc, reason, sw = DecodeReasonCodeAndCC(payload)
	if sw != SWSuccess || cc != Success {
		return DriverInfo{}, cc, reason, sw
	}
	body := payload[ResponseConventionLen:]
	if len(body) < 2 {
		return DriverInfo{}, 0, 0, SWErrorLength
	}
	version, sw := DecodeFixedString(body[1:])
	if sw != SWSuccess {
		return DriverInfo{}, 0, 0, sw
	}
	return DriverInfo{State: body[0], Version: version}, cc, reason, SWSuccess
}

// InventoryInformation: a NUL-terminated board/part/serial style string
// keyed by a property id.
func EncodeGetInventoryInformationReq(instanceID, propertyID uint8) ([]byte, SoftwareCode) {
	return EncodeRequest(instanceID, TypePlatformEnvironmental, CmdGetInventoryInformation, []byte{propertyID})
}

func EncodeGetInventoryInformationResp(instanceID uint8, value string) ([]byte, SoftwareCode) {
	buf := make([]byte, len(value)+1)
	if _, sw := EncodeFixedString(value, buf); sw != SWSuccess {
		return nil, sw
	}
	return EncodeSuccessResponse(instanceID, TypePlatformEnvironmental, CmdGetInventoryInformation, buf)
}

func DecodeGetInventoryInformationResp(msg []byte) (value string, cc CompletionCode, reason ReasonCode, sw SoftwareCode) {
	payload, sw := DecodeResponseHeader(msg, TypePlatformEnvironmental)
	if sw != SWSuccess {
		return "", 0, 0, sw
	}
	if payload[0] != CmdGetInventoryInformation {
		return "", 0, 0, SWErrorData
	}
	cc, reason, sw = DecodeReasonCodeAndCC(payload)
	if sw != SWSuccess || cc != Success {
		return "", cc, reason, sw
	}
	value, sw = DecodeFixedString(payload[ResponseConventionLen:])
	return value, cc, reason, sw
}

// MIG mode and ECC mode: a single flags byte, bit 0 is the enabled bit.

func EncodeGetMigModeReq(instanceID uint8) ([]byte, SoftwareCode) {
	return EncodeRequest(instanceID, TypePlatformEnvironmental, CmdGetMigMode, nil)
}

func EncodeGetMigModeResp(instanceID uint8, enabled bool) ([]byte, SoftwareCode) {
	return EncodeSuccessResponse(instanceID, TypePlatformEnvironmental, CmdGetMigMode, []byte{boolToFlag(enabled)})
}

func DecodeGetMigModeResp(msg []byte) (enabled bool, cc CompletionCode, reason ReasonCode, sw SoftwareCode) {
	return decodeFlagResp(msg, CmdGetMigMode)
}

func EncodeSetMigModeReq(instanceID uint8, requestedMode uint8) ([]byte, SoftwareCode) {
	return EncodeRequest(instanceID, TypePlatformEnvironmental, CmdSetMigMode, []byte{requestedMode})
}

func EncodeSetMigModeResp(instanceID uint8) ([]byte, SoftwareCode) {
	return EncodeSuccessResponse(instanceID, TypePlatformEnvironmental, CmdSetMigMode, nil)
}

func EncodeGetEccModeReq(instanceID uint8) ([]byte, SoftwareCode) {
	return EncodeRequest(instanceID, TypePlatformEnvironmental, CmdGetEccMode, nil)
}

func EncodeGetEccModeResp(instanceID uint8, enabled bool) ([]byte, SoftwareCode) {
	return EncodeSuccessResponse(instanceID, TypePlatformEnvironmental, CmdGetEccMode, []byte{boolToFlag(enabled)})
}

func DecodeGetEccModeResp(msg []byte) (enabled bool, cc CompletionCode, reason ReasonCode, sw SoftwareCode) {
	return decodeFlagResp(msg, CmdGetEccMode)
}

func EncodeSetEccModeReq(instanceID uint8, requestedMode uint8) ([]byte, SoftwareCode) {
	return EncodeRequest(instanceID, TypePlatformEnvironmental, CmdSetEccMode, []byte{requestedMode})
}

func EncodeSetEccModeResp(instanceID uint8) ([]byte, SoftwareCode) {
	return EncodeSuccessResponse(instanceID, TypePlatformEnvironmental, CmdSetEccMode, nil)
}

func boolToFlag(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}

func decodeFlagResp(msg []byte, command uint8) (enabled bool, cc CompletionCode, reason ReasonCode, sw SoftwareCode) {
	payload, sw := DecodeResponseHeader(msg, TypePlatformEnvironmental)
	if sw != SWSuccess {
		return false, 0, 0, sw
	}
	if payload[0] != command {
		return false, 0, 0, SWErrorData
	}
	cc, reason, sw = DecodeReasonCodeAndCC(payload)
	if sw != SWSuccess || cc != Success {
		return false, cc, reason, sw
	}
	body := payload[ResponseConventionLen:]
	if len(body) != 1 {
		return false, 0, 0, SWErrorLength
	}
	return body[0]&0x1 != 0, cc, reason, SWSuccess
}

// ECCErrorCounts mirrors libnsm's nsm_ECC_error_counts.
type ECCErrorCounts struct {
	Flags                uint16
	SRAMCorrected        uint32
	SRAMUncorrectedSECDED uint32
	SRAMUncorrectedParity uint32
	DRAMCorrected        uint32
	DRAMUncorrected      uint32
}

func EncodeGetEccErrorCountsReq(instanceID uint8) ([]byte, SoftwareCode) {
	return EncodeRequest(instanceID, TypePlatformEnvironmental, CmdGetEccErrorCounts, nil)
}

func EncodeGetEccErrorCountsResp(instanceID uint8, c ECCErrorCounts) ([]byte, SoftwareCode) {
	body := make([]byte, 18)
	binary.LittleEndian.PutUint16(body[0:2], c.Flags)
	binary.LittleEndian.PutUint32(body[2:6], c.SRAMCorrected)
	binary.LittleEndian.PutUint32(body[6:10], c.SRAMUncorrectedSECDED)
	binary.LittleEndian.PutUint32(body[10:14], c.SRAMUncorrectedParity)
	binary.LittleEndian.PutUint32(body[14:18], c.DRAMCorrected)
	body = append(body, make([]byte, 4)...)
	binary.LittleEndian.PutUint32(body[18:22], c.DRAMUncorrected)
	return EncodeSuccessResponse(instanceID, TypePlatformEnvironmental, CmdGetEccErrorCounts, body)
}

func DecodeGetEccErrorCountsResp(msg []byte) (c ECCErrorCounts, cc CompletionCode, reason ReasonCode, sw SoftwareCode) {
	payload, sw := DecodeResponseHeader(msg, TypePlatformEnvironmental)
	if sw != SWSuccess {
		return ECCErrorCounts{}, 0, 0, sw
	}
	if payload[0] != CmdGetEccErrorCounts {
		return ECCErrorCounts{}, 0, 0, SWErrorData
	}
	cc, reason, sw = DecodeReasonCodeAndCC(payload)
	if sw != SWSuccess || cc != Success {
		return ECCErrorCounts{}, cc, reason, sw
	}
	body := payload[ResponseConventionLen:]
	if len(body) != 22 {
		return ECCErrorCounts{}, 0, 0, SWErrorLength
	}
	c = ECCErrorCounts{
		Flags:                 binary.LittleEndian.Uint16(body[0:2]),
		SRAMCorrected:         binary.LittleEndian.Uint32(body[2:6]),
		SRAMUncorrectedSECDED: binary.LittleEndian.Uint32(body[6:10]),
		SRAMUncorrectedParity: binary.LittleEndian.Uint32(body[10:14]),
		DRAMCorrected:         binary.LittleEndian.Uint32(body[14:18]),
		DRAMUncorrected:       binary.LittleEndian.Uint32(body[18:22]),
	}
	return c, cc, reason, SWSuccess
}

// RowRemapState: a flags byte (pending/failed) plus correctable and
// uncorrectable remap counters.
type RowRemapState struct {
	Flags         uint8
	CorrectableRows   uint32
	UncorrectableRows uint32
}

func EncodeGetRowRemapStateFlagsReq(instanceID uint8) ([]byte, SoftwareCode) {
	return EncodeRequest(instanceID, TypePlatformEnvironmental, CmdGetRowRemapStateFlags, nil)
}

func EncodeGetRowRemapStateFlagsResp(instanceID uint8, flags uint8) ([]byte, SoftwareCode) {
	return EncodeSuccessResponse(instanceID, TypePlatformEnvironmental, CmdGetRowRemapStateFlags, []byte{flags})
}

func DecodeGetRowRemapStateFlagsResp(msg []byte) (flags uint8, cc CompletionCode, reason ReasonCode, sw SoftwareCode) {
	payload, sw := DecodeResponseHeader(msg, TypePlatformEnvironmental)
	if sw != SWSuccess {
		return 0, 0, 0, sw
	}
	if payload[0] != CmdGetRowRemapStateFlags {
		return 0, 0, 0, SWErrorData
	}
	cc, reason, sw = DecodeReasonCodeAndCC(payload)
	if sw != SWSuccess || cc != Success {
		return 0, cc, reason, sw
	}
	body := payload[ResponseConventionLen:]
	if len(body) != 1 {
		return 0, 0, 0, SWErrorLength
	}
	return body[0], cc, reason, SWSuccess
}

func EncodeGetRowRemappingCountsReq(instanceID uint8) ([]byte, SoftwareCode) {
	return EncodeRequest(instanceID, TypePlatformEnvironmental, CmdGetRowRemappingCounts, nil)
}

func EncodeGetRowRemappingCountsResp(instanceID uint8, correctable, uncorrectable uint32) ([]byte, SoftwareCode) {
	body := make([]byte, 8)
	binary.LittleEndian.PutUint32(body[0:4], correctable)
	binary.LittleEndian.PutUint32(body[4:8], uncorrectable)
	return EncodeSuccessResponse(instanceID, TypePlatformEnvironmental, CmdGetRowRemappingCounts, body)
}

func DecodeGetRowRemappingCountsResp(msg []byte) (correctable, uncorrectable uint32, cc CompletionCode, reason ReasonCode, sw SoftwareCode) {
	payload, sw := DecodeResponseHeader(msg, TypePlatformEnvironmental)
	if sw != SWSuccess {
		return 0, 0, 0, 0, sw
	}
	if payload[0] != CmdGetRowRemappingCounts {
		return 0, 0, 0, 0, SWErrorData
	}
	cc, reason, sw = DecodeReasonCodeAndCC(payload)
	if sw != SWSuccess || cc != Success {
		return 0, 0, cc, reason, sw
	}
	body := payload[ResponseConventionLen:]
	if len(body) != 8 {
		return 0, 0, 0, 0, SWErrorLength
	}
	return binary.LittleEndian.Uint32(body[0:4]), binary.LittleEndian.Uint32(body[4:8]), cc, reason, SWSuccess
}

// MemoryCapacityUtilization: total and used capacity in MiB.

func EncodeGetMemoryCapacityUtilizationReq(instanceID uint8) ([]byte, SoftwareCode) {
	return EncodeRequest(instanceID, TypePlatformEnvironmental, CmdGetMemoryCapacityUtilization, nil)
}

func EncodeGetMemoryCapacityUtilizationResp(instanceID uint8, totalMiB, usedMiB uint32) ([]byte, SoftwareCode) {
	body := make([]byte, 8)
	binary.LittleEndian.PutUint32(body[0:4], totalMiB)
	binary.LittleEndian.PutUint32(body[4:8], usedMiB)
	return EncodeSuccessResponse(instanceID, TypePlatformEnvironmental, CmdGetMemoryCapacityUtilization, body)
}

func DecodeGetMemoryCapacityUtilizationResp(msg []byte) (totalMiB, usedMiB uint32, cc CompletionCode, reason ReasonCode, sw SoftwareCode) {
	payload, sw := DecodeResponseHeader(msg, TypePlatformEnvironmental)
	if sw != SWSuccess {
		return 0, 0, 0, 0, sw
	}
	if payload[0] != CmdGetMemoryCapacityUtilization {
		return 0, 0, 0, 0, SWErrorData
	}
	cc, reason, sw = DecodeReasonCodeAndCC(payload)
	if sw != SWSuccess || cc != Success {
		return 0, 0, cc, reason, sw
	}
	body := payload[ResponseConventionLen:]
	if len(body) != 8 {
		return 0, 0, 0, 0, SWErrorLength
	}
	return binary.LittleEndian.Uint32(body[0:4]), binary.LittleEndian.Uint32(body[4:8]), cc, reason, SWSuccess
}

// GPM (GPU Performance Metrics) aggregate and per-instance queries return
// a bundle of per-tag samples, decoded through the aggregate codec in
// aggregate.go; these two functions only pack/unpack the request and the
// raw aggregate-sample blob that wraps them.

func EncodeQueryAggregateGPMMetricsReq(instanceID uint8, retrievalSource uint8) ([]byte, SoftwareCode) {
	return EncodeRequest(instanceID, TypePlatformEnvironmental, CmdQueryAggregateGPMMetrics, []byte{retrievalSource})
}

func EncodeQueryPerInstanceGPMMetricsReq(instanceID uint8, retrievalSource, instanceBitmap uint8) ([]byte, SoftwareCode) {
	return EncodeRequest(instanceID, TypePlatformEnvironmental, CmdQueryPerInstanceGPMMetrics, []byte{retrievalSource, instanceBitmap})
}
