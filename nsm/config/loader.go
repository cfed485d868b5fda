package config

import (
	"encoding/json"
	"fmt"
	"os"

	"sigs.k8s.io/yaml"

	"github.com/NVIDIA/nsmd-sub002/pkg/errdefs"
)

// Entry is one (device_uuid, sensor_descriptor) pair from spec.md §6's
// configuration contract.
type Entry struct {
	DeviceUUID string     `json:"device_uuid"`
	Descriptor Descriptor `json:"-"`
}

// descriptorKinds maps which concrete Descriptor a raw entry's "type"
// field names, and builds a zero-valued Descriptor to unmarshal into.
var descriptorKinds = map[string]func() Descriptor{
	"temp":                        func() Descriptor { return &Temp{} },
	"power":                       func() Descriptor { return &Power{} },
	"energy":                      func() Descriptor { return &Energy{} },
	"voltage":                     func() Descriptor { return &Voltage{} },
	"threshold":                   func() Descriptor { return &Threshold{} },
	"peak_power":                  func() Descriptor { return &PeakPower{} },
	"mig":                         func() Descriptor { return &Mig{} },
	"ecc":                         func() Descriptor { return &Ecc{} },
	"ecc_error_counts":            func() Descriptor { return &EccErrorCounts{} },
	"edpp_scaling_factor":         func() Descriptor { return &EdPpScalingFactor{} },
	"clock_limit":                 func() Descriptor { return &ClockLimit{} },
	"current_clock_freq":          func() Descriptor { return &CurrentClockFreq{} },
	"memory_capacity_utilization": func() Descriptor { return &MemoryCapacityUtilization{} },
	"row_remapping":               func() Descriptor { return &RowRemapping{} },
	"pci_group":                   func() Descriptor { return &PciGroup{} },
	"driver_info":                 func() Descriptor { return &DriverInfo{} },
	"reset":                       func() Descriptor { return &Reset{} },
}

// UnmarshalJSON dispatches on the "type" field to the concrete Descriptor
// and unmarshals the remaining fields into it.
func (e *Entry) UnmarshalJSON(data []byte) error {
	var raw struct {
		DeviceUUID string `json:"device_uuid"`
		Type       string `json:"type"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	newDescriptor, ok := descriptorKinds[raw.Type]
	if !ok {
		return fmt.Errorf("nsm/config: unknown descriptor type %q: %w", raw.Type, errdefs.ErrInvalidArgument)
	}
	d := newDescriptor()
	if err := json.Unmarshal(data, d); err != nil {
		return fmt.Errorf("nsm/config: decoding %q descriptor: %w", raw.Type, err)
	}
	e.DeviceUUID = raw.DeviceUUID
	e.Descriptor = derefDescriptor(d)
	return nil
}

// derefDescriptor copies a *Temp/*Power/... back to its value type, so
// Entry.Descriptor holds the same value-type Descriptor that Build and
// hand-authored entries use.
func derefDescriptor(d Descriptor) Descriptor {
	switch v := d.(type) {
	case *Temp:
		return *v
	case *Power:
		return *v
	case *Energy:
		return *v
	case *Voltage:
		return *v
	case *Threshold:
		return *v
	case *PeakPower:
		return *v
	case *Mig:
		return *v
	case *Ecc:
		return *v
	case *EccErrorCounts:
		return *v
	case *EdPpScalingFactor:
		return *v
	case *ClockLimit:
		return *v
	case *CurrentClockFreq:
		return *v
	case *MemoryCapacityUtilization:
		return *v
	case *RowRemapping:
		return *v
	case *PciGroup:
		return *v
	case *DriverInfo:
		return *v
	case *Reset:
		return *v
	default:
		return d
	}
}

// Load reads a descriptor list from a JSON or YAML file at path (format
// detected by sigs.k8s.io/yaml, which accepts both).
func Load(path string) ([]Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("nsm/config: reading %s: %w", path, err)
	}
	jsonData, err := yaml.YAMLToJSON(data)
	if err != nil {
		return nil, fmt.Errorf("nsm/config: %s is not valid JSON/YAML: %w", path, err)
	}
	var entries []Entry
	if err := json.Unmarshal(jsonData, &entries); err != nil {
		return nil, fmt.Errorf("nsm/config: decoding %s: %w", path, err)
	}
	return entries, nil
}
