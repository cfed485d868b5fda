package sensor

import "testing"

func TestRegistryRegisterLookupGet(t *testing.T) {
	r := NewRegistry()
	d := NewDevice("gpu-0", 8, nil)
	id := r.Register(d)

	got, ok := r.Get(id)
	if !ok || got != d {
		t.Fatalf("Get(%v) = (%v, %v), want (%v, true)", id, got, ok, d)
	}

	lookedUp, ok := r.Lookup("gpu-0")
	if !ok || lookedUp != id {
		t.Fatalf("Lookup = (%v, %v), want (%v, true)", lookedUp, ok, id)
	}
}

func TestRegistryReRegisterReusesID(t *testing.T) {
	r := NewRegistry()
	d1 := NewDevice("gpu-0", 8, nil)
	id1 := r.Register(d1)

	d2 := NewDevice("gpu-0", 9, nil)
	id2 := r.Register(d2)

	if id1 != id2 {
		t.Fatalf("re-registering the same uuid changed DeviceID: %v != %v", id1, id2)
	}
	got, _ := r.Get(id1)
	if got.EID != 9 {
		t.Fatalf("Get after re-register returned stale device (EID=%d, want 9)", got.EID)
	}
}

func TestRegistryDeregister(t *testing.T) {
	r := NewRegistry()
	d := NewDevice("gpu-0", 8, nil)
	id := r.Register(d)

	if err := r.Deregister("gpu-0"); err != nil {
		t.Fatalf("Deregister: %v", err)
	}
	if _, ok := r.Get(id); ok {
		t.Fatal("expected Get to fail after Deregister")
	}
	if err := r.Deregister("gpu-0"); err == nil {
		t.Fatal("expected second Deregister to fail")
	}
}

func TestRegistryAll(t *testing.T) {
	r := NewRegistry()
	r.Register(NewDevice("gpu-0", 8, nil))
	r.Register(NewDevice("gpu-1", 9, nil))

	all := r.All()
	if len(all) != 2 {
		t.Fatalf("len(All()) = %d, want 2", len(all))
	}
}
