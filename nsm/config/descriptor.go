// Package config implements the declarative sensor configuration
// contract from spec.md §6: a list of (device_uuid, sensor_descriptor)
// entries the core ingests to build a device's sensors, plus a
// reference JSON/YAML loader. The loader reads the file once; it does
// not watch it for changes.
//
// This whole package is, per the spec, a consumer contract rather than
// core NSM behavior -- but it is implemented concretely here per the
// ambient-stack rule, in the style of
// leptonai-gpud/components/query/config's JSON-tagged Config structs.
package config

// Descriptor is the closed sum type spec.md §6 names: "a declarative
// list of (device_uuid, sensor_descriptor) where a descriptor is one
// of: Temp, Power, Energy, ...". Go has no sealed union, so each
// variant below implements the unexported marker method, the idiomatic
// substitute also used for wire.SoftwareCode-style closed value sets
// elsewhere in this tree.
type Descriptor interface {
	descriptor()
}

// Assoc is the association triple a descriptor can attach to its
// published reading, mirroring PublishingSurface.AddAssociation's
// (forward, backward, absolute) path arguments.
type Assoc struct {
	Forward  string `json:"forward,omitempty"`
	Backward string `json:"backward,omitempty"`
	Absolute string `json:"absolute,omitempty"`
}

// Temp describes a temperature sensor read via NSM_GET_TEMPERATURE_READING.
type Temp struct {
	SensorID   uint8 `json:"sensor_id"`
	Aggregated bool  `json:"aggregated,omitempty"`
	Priority   bool  `json:"priority,omitempty"`
	Assoc      Assoc `json:"assoc,omitempty"`
}

func (Temp) descriptor() {}

// Power describes a power sensor read via NSM_GET_POWER. AveragingInterval
// is parsed from configuration but is not sent: Build encodes the request
// with wire.EncodeGetPowerReq, whose body carries only the sensor id.
type Power struct {
	SensorID          uint8 `json:"sensor_id"`
	AveragingInterval uint8 `json:"averaging_interval,omitempty"`
	Aggregated        bool  `json:"aggregated,omitempty"`
	Priority          bool  `json:"priority,omitempty"`
	Assoc             Assoc `json:"assoc,omitempty"`
}

func (Power) descriptor() {}

// Energy describes an energy-count sensor (NSM_GET_ENERGY_COUNT).
type Energy struct {
	SensorID   uint8 `json:"sensor_id"`
	Aggregated bool  `json:"aggregated,omitempty"`
	Priority   bool  `json:"priority,omitempty"`
	Assoc      Assoc `json:"assoc,omitempty"`
}

func (Energy) descriptor() {}

// Voltage describes a voltage sensor (NSM_GET_VOLTAGE).
type Voltage struct {
	SensorID   uint8 `json:"sensor_id"`
	Aggregated bool  `json:"aggregated,omitempty"`
	Priority   bool  `json:"priority,omitempty"`
	Assoc      Assoc `json:"assoc,omitempty"`
}

func (Voltage) descriptor() {}

// Threshold describes a thermal-parameter threshold sensor
// (NSM_READ_THERMAL_PARAMETER).
type Threshold struct {
	ParameterID uint8 `json:"parameter_id"`
	Aggregated  bool  `json:"aggregated,omitempty"`
	Priority    bool  `json:"priority,omitempty"`
}

func (Threshold) descriptor() {}

// PeakPower describes the device's peak/instantaneous power reading.
type PeakPower struct {
	AveragingInterval uint8 `json:"averaging_interval,omitempty"`
}

func (PeakPower) descriptor() {}

// Mig toggles MIG mode reporting (NSM_GET_MIG_MODE).
type Mig struct{}

func (Mig) descriptor() {}

// Ecc toggles ECC mode reporting (NSM_GET_ECC_MODE).
type Ecc struct{}

func (Ecc) descriptor() {}

// EccErrorCounts enables the ECC error-count sensor (NSM_GET_ECC_ERROR_COUNTS).
type EccErrorCounts struct{}

func (EccErrorCounts) descriptor() {}

// EdPpScalingFactor enables the programmable EDPp scaling-factor sensor.
type EdPpScalingFactor struct{}

func (EdPpScalingFactor) descriptor() {}

// ClockType distinguishes which clock domain a clock-related descriptor
// targets.
type ClockType uint8

const (
	ClockGraphics ClockType = iota
	ClockMemory
)

// ClockLimit enables the clock-limit sensor for ClockType.
type ClockLimit struct {
	ClockType ClockType `json:"clock_type"`
}

func (ClockLimit) descriptor() {}

// CurrentClockFreq enables the current-clock-frequency sensor for ClockType.
type CurrentClockFreq struct {
	ClockType ClockType `json:"clock_type"`
}

func (CurrentClockFreq) descriptor() {}

// MemoryCapacityUtilization enables the memory capacity/utilization sensor.
type MemoryCapacityUtilization struct{}

func (MemoryCapacityUtilization) descriptor() {}

// RemappingKind distinguishes row-remapping state vs. counts.
type RemappingKind uint8

const (
	RemappingState RemappingKind = iota
	RemappingCounts
)

// RowRemapping enables the row-remapping sensor of the given Kind.
type RowRemapping struct {
	Kind RemappingKind `json:"kind"`
}

func (RowRemapping) descriptor() {}

// PciGroup enables a PCIe error-group sensor for group GroupIndex on the
// PCIe device identified by DeviceID.
type PciGroup struct {
	GroupIndex uint8  `json:"group_index"`
	DeviceID   uint32 `json:"device_id"`
}

func (PciGroup) descriptor() {}

// DriverInfo enables the driver-version identification sensor.
type DriverInfo struct{}

func (DriverInfo) descriptor() {}

// Reset describes a device reset descriptor. Deferred: no NSM_RESET_*
// wire command opcode was found anywhere in the retrieved reference
// implementation (only NSM_RESET_REQUIRED_EVENT, an event rather than a
// request/response command), so Build rejects this descriptor rather
// than invent an unattested opcode -- see DESIGN.md.
type Reset struct {
	DeviceIndex uint8 `json:"device_index"`
}

func (Reset) descriptor() {}
