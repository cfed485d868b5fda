package sensor

import "testing"

func TestEIDTableAddAndPreferred(t *testing.T) {
	tbl := NewEIDTable()
	tbl.Add("gpu-0", EIDBinding{EID: 9, Medium: MediumSMBus, Binding: "smbus0"})
	tbl.Add("gpu-0", EIDBinding{EID: 8, Medium: MediumPCIe, Binding: "pcie0"})
	tbl.Add("gpu-0", EIDBinding{EID: 9, Medium: MediumSMBus, Binding: "smbus0"})

	bindings := tbl.Bindings("gpu-0")
	if len(bindings) != 2 {
		t.Fatalf("len(bindings) = %d, want 2 (duplicate insert should be a no-op)", len(bindings))
	}

	best, ok := tbl.PreferredEID("gpu-0")
	if !ok {
		t.Fatal("PreferredEID: not found")
	}
	if best.Medium != MediumPCIe || best.EID != 8 {
		t.Fatalf("PreferredEID = %+v, want PCIe/8", best)
	}
}

func TestEIDTableUnknownUUID(t *testing.T) {
	tbl := NewEIDTable()
	if _, ok := tbl.PreferredEID("missing"); ok {
		t.Fatal("expected PreferredEID to fail for unregistered uuid")
	}
}

func TestEIDTableRemove(t *testing.T) {
	tbl := NewEIDTable()
	tbl.Add("gpu-0", EIDBinding{EID: 8, Medium: MediumPCIe})
	tbl.Remove("gpu-0")
	if bindings := tbl.Bindings("gpu-0"); len(bindings) != 0 {
		t.Fatalf("len(bindings) = %d, want 0 after Remove", len(bindings))
	}
}
