package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestLoadJSON(t *testing.T) {
	path := writeTemp(t, "sensors.json", `[
		{"device_uuid": "gpu-0", "type": "temp", "sensor_id": 1, "priority": true},
		{"device_uuid": "gpu-0", "type": "power", "sensor_id": 0, "aggregated": true}
	]`)

	entries, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("len(entries) = %d, want 2", len(entries))
	}
	temp, ok := entries[0].Descriptor.(Temp)
	if !ok {
		t.Fatalf("entries[0].Descriptor = %T, want Temp", entries[0].Descriptor)
	}
	if temp.SensorID != 1 || !temp.Priority {
		t.Fatalf("temp = %+v, want SensorID=1 Priority=true", temp)
	}
	power, ok := entries[1].Descriptor.(Power)
	if !ok {
		t.Fatalf("entries[1].Descriptor = %T, want Power", entries[1].Descriptor)
	}
	if !power.Aggregated {
		t.Fatalf("power.Aggregated = false, want true")
	}
}

func TestLoadYAML(t *testing.T) {
	path := writeTemp(t, "sensors.yaml", `
- device_uuid: gpu-1
  type: mig
- device_uuid: gpu-1
  type: clock_limit
  clock_type: 1
`)
	entries, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("len(entries) = %d, want 2", len(entries))
	}
	if _, ok := entries[0].Descriptor.(Mig); !ok {
		t.Fatalf("entries[0].Descriptor = %T, want Mig", entries[0].Descriptor)
	}
	cl, ok := entries[1].Descriptor.(ClockLimit)
	if !ok {
		t.Fatalf("entries[1].Descriptor = %T, want ClockLimit", entries[1].Descriptor)
	}
	if cl.ClockType != ClockMemory {
		t.Fatalf("cl.ClockType = %v, want ClockMemory", cl.ClockType)
	}
}

func TestLoadUnknownDescriptorType(t *testing.T) {
	path := writeTemp(t, "bad.json", `[{"device_uuid": "gpu-0", "type": "not_a_real_type"}]`)
	if _, err := Load(path); err == nil {
		t.Fatalf("Load with unknown descriptor type should fail")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatalf("Load of a missing file should fail")
	}
}
