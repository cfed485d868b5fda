package config

import "testing"

func TestDescriptorMarkerMethodsImplementClosedSum(t *testing.T) {
	descriptors := []Descriptor{
		Temp{SensorID: 1},
		Power{SensorID: 2, AveragingInterval: 1},
		Energy{SensorID: 0},
		Voltage{SensorID: 0},
		Threshold{ParameterID: 3},
		PeakPower{},
		Mig{},
		Ecc{},
		EccErrorCounts{},
		EdPpScalingFactor{},
		ClockLimit{ClockType: ClockGraphics},
		CurrentClockFreq{ClockType: ClockMemory},
		MemoryCapacityUtilization{},
		RowRemapping{Kind: RemappingState},
		PciGroup{GroupIndex: 1, DeviceID: 0},
		DriverInfo{},
		Reset{DeviceIndex: 0},
	}
	if len(descriptors) != len(descriptorKinds) {
		t.Fatalf("test covers %d descriptor kinds, descriptorKinds has %d -- keep these in sync", len(descriptors), len(descriptorKinds))
	}
}

func TestAssocJSONTagsOmitEmpty(t *testing.T) {
	a := Assoc{}
	if a.Forward != "" || a.Backward != "" || a.Absolute != "" {
		t.Fatalf("zero-value Assoc should have all-empty fields")
	}
}
