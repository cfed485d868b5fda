package config

import (
	"fmt"
	"time"

	"github.com/NVIDIA/nsmd-sub002/nsm/publish"
	"github.com/NVIDIA/nsmd-sub002/nsm/sensor"
	"github.com/NVIDIA/nsmd-sub002/nsm/wire"
)

// Build turns a device's descriptor list into sensors and aggregators
// attached to d, honoring each descriptor's Aggregated/Priority flags
// per spec.md §4: an Aggregated leaf becomes a Child of the shared
// NumericAggregator for its command rather than its own LeafSensor, so
// the device issues one aggregate request instead of N separate ones.
// Every descriptor's decoded reading is published through surface at a
// path derived from the device's UUID and the descriptor's kind/id; a
// nil surface is treated as publish.NoopSurface{}.
func Build(d *sensor.Device, entries []Entry, surface publish.Surface) error {
	if surface == nil {
		surface = publish.NoopSurface{}
	}
	for _, e := range entries {
		if err := buildOne(d, e.Descriptor, surface); err != nil {
			return fmt.Errorf("nsm/config: building descriptor for %s: %w", e.DeviceUUID, err)
		}
	}
	return nil
}

// sensorPath builds the publishing path for a descriptor of kind on
// device uuid, optionally keyed by id (sensor id, parameter id, ...).
func sensorPath(uuid, kind string, id uint8, keyed bool) string {
	if keyed {
		return fmt.Sprintf("/nsm/%s/%s/%d", uuid, kind, id)
	}
	return fmt.Sprintf("/nsm/%s/%s", uuid, kind)
}

// publishAssoc forwards a descriptor's Assoc triple to surface, if any
// of its fields are set.
func publishAssoc(surface publish.Surface, path string, a Assoc) {
	if a.Forward == "" && a.Backward == "" && a.Absolute == "" {
		return
	}
	surface.AddAssociation(path, a.Forward, a.Backward, a.Absolute)
}

func buildOne(d *sensor.Device, desc Descriptor, surface publish.Surface) error {
	switch v := desc.(type) {
	case Temp:
		path := sensorPath(d.UUID, "temp", v.SensorID, true)
		publishAssoc(surface, path, v.Assoc)
		return buildLeafOrChild(d, "temp", wire.TypePlatformEnvironmental, wire.CmdQueryAggregateGPMMetrics,
			v.Aggregated, v.Priority, v.SensorID, path, surface,
			func(id uint8) ([]byte, wire.SoftwareCode) {
				return wire.EncodeGetTemperatureReadingReq(id, v.SensorID)
			},
			func(msg []byte) wire.SoftwareCode {
				raw, _, _, sw := wire.DecodeGetTemperatureReadingResp(msg)
				if sw == wire.SWSuccess {
					surface.SetReading(path, float64(raw)/256, "celsius", time.Now())
				}
				return sw
			},
			func(sample wire.Sample, _ uint64) {
				celsius, sw := wire.DecodeTemperatureSample(sample.Data)
				if sw == wire.SWSuccess {
					surface.SetReading(path, celsius, "celsius", time.Now())
				}
			},
		)

	case Power:
		path := sensorPath(d.UUID, "power", v.SensorID, true)
		publishAssoc(surface, path, v.Assoc)
		return buildLeafOrChild(d, "power", wire.TypePlatformEnvironmental, wire.CmdQueryAggregateGPMMetrics,
			v.Aggregated, v.Priority, v.SensorID, path, surface,
			func(id uint8) ([]byte, wire.SoftwareCode) {
				return wire.EncodeGetPowerReq(id, v.SensorID)
			},
			func(msg []byte) wire.SoftwareCode {
				milliWatts, _, _, sw := wire.DecodeGetPowerResp(msg)
				if sw == wire.SWSuccess {
					surface.SetReading(path, float64(milliWatts)/1000, "watt", time.Now())
				}
				return sw
			},
			func(sample wire.Sample, _ uint64) {
				milliWatts, sw := wire.DecodePowerSample(sample.Data)
				if sw == wire.SWSuccess {
					surface.SetReading(path, float64(milliWatts)/1000, "watt", time.Now())
				}
			},
		)

	case Energy:
		path := sensorPath(d.UUID, "energy", v.SensorID, true)
		publishAssoc(surface, path, v.Assoc)
		return buildLeafOrChild(d, "energy", wire.TypePlatformEnvironmental, wire.CmdQueryAggregateGPMMetrics,
			v.Aggregated, v.Priority, v.SensorID, path, surface,
			func(id uint8) ([]byte, wire.SoftwareCode) {
				return wire.EncodeGetEnergyCountReq(id, v.SensorID)
			},
			func(msg []byte) wire.SoftwareCode {
				milliJoules, _, _, sw := wire.DecodeGetEnergyCountResp(msg)
				if sw == wire.SWSuccess {
					surface.SetReading(path, float64(milliJoules)/1000, "joule", time.Now())
				}
				return sw
			},
			func(sample wire.Sample, _ uint64) {
				milliJoules, sw := wire.DecodeEnergySample(sample.Data)
				if sw == wire.SWSuccess {
					surface.SetReading(path, float64(milliJoules)/1000, "joule", time.Now())
				}
			},
		)

	case Voltage:
		path := sensorPath(d.UUID, "voltage", v.SensorID, true)
		publishAssoc(surface, path, v.Assoc)
		return buildLeafOrChild(d, "voltage", wire.TypePlatformEnvironmental, wire.CmdQueryAggregateGPMMetrics,
			v.Aggregated, v.Priority, v.SensorID, path, surface,
			func(id uint8) ([]byte, wire.SoftwareCode) {
				return wire.EncodeGetVoltageReq(id, v.SensorID)
			},
			func(msg []byte) wire.SoftwareCode {
				milliVolts, _, _, sw := wire.DecodeGetVoltageResp(msg)
				if sw == wire.SWSuccess {
					surface.SetReading(path, float64(milliVolts)/1000, "volt", time.Now())
				}
				return sw
			},
			func(sample wire.Sample, _ uint64) {
				milliVolts, sw := wire.DecodeVoltageSample(sample.Data)
				if sw == wire.SWSuccess {
					surface.SetReading(path, float64(milliVolts)/1000, "volt", time.Now())
				}
			},
		)

	case Threshold:
		path := sensorPath(d.UUID, "threshold", v.ParameterID, true)
		return buildLeafOrChild(d, "threshold", wire.TypePlatformEnvironmental, wire.CmdQueryAggregateGPMMetrics,
			v.Aggregated, v.Priority, v.ParameterID, path, surface,
			func(id uint8) ([]byte, wire.SoftwareCode) {
				return wire.EncodeReadThermalParameterReq(id, v.ParameterID)
			},
			func(msg []byte) wire.SoftwareCode {
				value, _, _, sw := wire.DecodeReadThermalParameterResp(msg)
				if sw == wire.SWSuccess {
					surface.SetReading(path, float64(value), "raw", time.Now())
				}
				return sw
			},
			func(sample wire.Sample, _ uint64) {
				value, sw := wire.DecodeThermalParameterSample(sample.Data)
				if sw == wire.SWSuccess {
					surface.SetReading(path, float64(value), "raw", time.Now())
				}
			},
		)

	case PeakPower:
		path := sensorPath(d.UUID, "peak_power", 0, false)
		addLeaf(d, "peak_power", false, path, surface, func(id uint8) ([]byte, wire.SoftwareCode) {
			return wire.EncodeGetPowerLimitsReq(id, 0)
		}, func(msg []byte) wire.SoftwareCode {
			limits, _, _, sw := wire.DecodeGetPowerLimitsResp(msg)
			if sw == wire.SWSuccess {
				surface.SetProperty(path, "com.nvidia.NSM.Power", "Limits", limits)
			}
			return sw
		})
		return nil

	case Mig:
		path := sensorPath(d.UUID, "mig", 0, false)
		addLeaf(d, "mig", false, path, surface, wire.EncodeGetMigModeReq, func(msg []byte) wire.SoftwareCode {
			enabled, _, _, sw := wire.DecodeGetMigModeResp(msg)
			if sw == wire.SWSuccess {
				surface.SetProperty(path, "com.nvidia.NSM.Mig", "Enabled", enabled)
			}
			return sw
		})
		return nil

	case Ecc:
		path := sensorPath(d.UUID, "ecc", 0, false)
		addLeaf(d, "ecc", false, path, surface, wire.EncodeGetEccModeReq, func(msg []byte) wire.SoftwareCode {
			enabled, _, _, sw := wire.DecodeGetEccModeResp(msg)
			if sw == wire.SWSuccess {
				surface.SetProperty(path, "com.nvidia.NSM.Ecc", "Enabled", enabled)
			}
			return sw
		})
		return nil

	case EccErrorCounts:
		path := sensorPath(d.UUID, "ecc_error_counts", 0, false)
		addLeaf(d, "ecc_error_counts", false, path, surface, wire.EncodeGetEccErrorCountsReq, func(msg []byte) wire.SoftwareCode {
			counts, _, _, sw := wire.DecodeGetEccErrorCountsResp(msg)
			if sw == wire.SWSuccess {
				surface.SetProperty(path, "com.nvidia.NSM.Ecc", "ErrorCounts", counts)
			}
			return sw
		})
		return nil

	case EdPpScalingFactor:
		path := sensorPath(d.UUID, "edpp_scaling_factor", 0, false)
		addLeaf(d, "edpp_scaling_factor", false, path, surface, wire.EncodeGetProgrammableEDPpScalingFactorReq, func(msg []byte) wire.SoftwareCode {
			factors, _, _, sw := wire.DecodeGetProgrammableEDPpScalingFactorResp(msg)
			if sw == wire.SWSuccess {
				surface.SetProperty(path, "com.nvidia.NSM.Power", "EDPpScalingFactors", factors)
			}
			return sw
		})
		return nil

	case ClockLimit:
		clockID := uint8(v.ClockType)
		path := sensorPath(d.UUID, "clock_limit", clockID, true)
		addLeaf(d, "clock_limit", false, path, surface, func(id uint8) ([]byte, wire.SoftwareCode) {
			return wire.EncodeGetClockLimitReq(id, clockID)
		}, func(msg []byte) wire.SoftwareCode {
			limit, _, _, sw := wire.DecodeGetClockLimitResp(msg)
			if sw == wire.SWSuccess {
				surface.SetProperty(path, "com.nvidia.NSM.Clock", "Limit", limit)
			}
			return sw
		})
		return nil

	case CurrentClockFreq:
		clockID := uint8(v.ClockType)
		path := sensorPath(d.UUID, "current_clock_freq", clockID, true)
		addLeaf(d, "current_clock_freq", false, path, surface, func(id uint8) ([]byte, wire.SoftwareCode) {
			return wire.EncodeGetCurrentClockFrequencyReq(id, clockID)
		}, func(msg []byte) wire.SoftwareCode {
			mhz, _, _, sw := wire.DecodeGetCurrentClockFrequencyResp(msg)
			if sw == wire.SWSuccess {
				surface.SetReading(path, float64(mhz), "MHz", time.Now())
			}
			return sw
		})
		return nil

	case MemoryCapacityUtilization:
		path := sensorPath(d.UUID, "memory_capacity_utilization", 0, false)
		addLeaf(d, "memory_capacity_utilization", false, path, surface, wire.EncodeGetMemoryCapacityUtilizationReq, func(msg []byte) wire.SoftwareCode {
			totalMiB, usedMiB, _, _, sw := wire.DecodeGetMemoryCapacityUtilizationResp(msg)
			if sw == wire.SWSuccess {
				surface.SetReading(path+"/total", float64(totalMiB), "MiB", time.Now())
				surface.SetReading(path+"/used", float64(usedMiB), "MiB", time.Now())
			}
			return sw
		})
		return nil

	case RowRemapping:
		if v.Kind == RemappingCounts {
			path := sensorPath(d.UUID, "row_remapping_counts", 0, false)
			addLeaf(d, "row_remapping_counts", false, path, surface, wire.EncodeGetRowRemappingCountsReq, func(msg []byte) wire.SoftwareCode {
				correctable, uncorrectable, _, _, sw := wire.DecodeGetRowRemappingCountsResp(msg)
				if sw == wire.SWSuccess {
					surface.SetReading(path+"/correctable", float64(correctable), "count", time.Now())
					surface.SetReading(path+"/uncorrectable", float64(uncorrectable), "count", time.Now())
				}
				return sw
			})
			return nil
		}
		path := sensorPath(d.UUID, "row_remapping_state", 0, false)
		addLeaf(d, "row_remapping_state", false, path, surface, wire.EncodeGetRowRemapStateFlagsReq, func(msg []byte) wire.SoftwareCode {
			flags, _, _, sw := wire.DecodeGetRowRemapStateFlagsResp(msg)
			if sw == wire.SWSuccess {
				surface.SetProperty(path, "com.nvidia.NSM.Memory", "RowRemapState", flags)
			}
			return sw
		})
		return nil

	case DriverInfo:
		path := sensorPath(d.UUID, "driver_info", 0, false)
		addLeaf(d, "driver_info", false, path, surface, wire.EncodeGetDriverInfoReq, func(msg []byte) wire.SoftwareCode {
			info, _, _, sw := wire.DecodeGetDriverInfoResp(msg)
			if sw == wire.SWSuccess {
				surface.SetProperty(path, "com.nvidia.NSM.Device", "DriverInfo", info)
			}
			return sw
		})
		return nil

	case PciGroup:
		// Deferred: no PCIe error-group scalar telemetry command opcode
		// was found anywhere in the retrieved reference implementation,
		// see descriptor.go's Reset comment and DESIGN.md for the same
		// reasoning applied here.
		return fmt.Errorf("nsm/config: pci_group descriptor has no known wire command")

	case Reset:
		return fmt.Errorf("nsm/config: reset descriptor has no known wire command")

	default:
		return fmt.Errorf("nsm/config: unhandled descriptor type %T", desc)
	}
}

// buildLeafOrChild wires a descriptor either as its own round-robin/priority
// LeafSensor (one request per tick) or, when Aggregated, as a Child of the
// command's shared NumericAggregator (one request serving every aggregated
// child of that command). A Child added to an already-registered
// round-robin aggregator that flips it to priority triggers
// Device.PromoteAggregator, splicing the aggregator into the priority
// vector immediately instead of leaving it stuck round-robin.
func buildLeafOrChild(
	d *sensor.Device,
	name string,
	nvidiaType wire.NvidiaMsgType,
	aggregateCommand uint8,
	aggregated, priority bool,
	tag uint8,
	path string,
	surface publish.Surface,
	gen sensor.GenRequestFunc,
	handle sensor.HandleResponseFunc,
	handleSample func(sample wire.Sample, timestampMicros uint64),
) error {
	if !aggregated {
		addLeaf(d, name, priority, path, surface, gen, handle)
		return nil
	}
	agg, ok := d.Aggregator(aggregateCommand)
	if !ok {
		agg = sensor.NewNumericAggregator(name+"_aggregate", nvidiaType, func(id uint8) ([]byte, wire.SoftwareCode) {
			return wire.EncodeQueryAggregateGPMMetricsReq(id, 0)
		})
		// AddAggregator places a freshly built aggregator round-robin
		// (it has no children yet, so Priority() is false); a priority
		// first child promotes it via the AddChild/PromoteAggregator
		// path below, same as a priority child added to an aggregator
		// that already existed.
		d.AddAggregator(aggregateCommand, agg)
	}
	promoted, err := agg.AddChild(sensor.Child{Tag: tag, Handle: handleSample, Priority: priority})
	if err != nil {
		return err
	}
	if promoted {
		d.PromoteAggregator(agg)
	}
	return nil
}

func addLeaf(d *sensor.Device, name string, priority bool, path string, surface publish.Surface, gen sensor.GenRequestFunc, handle sensor.HandleResponseFunc) {
	s := sensor.NewLeafSensor(name, priority, gen, handle)
	s.SetSurface(path, surface)
	if priority {
		d.AddPrioritySensor(s)
	} else {
		d.AddRoundRobinSensor(s)
	}
}
