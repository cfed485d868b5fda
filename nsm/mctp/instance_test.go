package mctp

import "testing"

func TestInstancePoolAllocFree(t *testing.T) {
	p := NewInstancePool()
	seen := make(map[uint8]bool)
	for i := 0; i < 32; i++ {
		id, ok := p.Alloc()
		if !ok {
			t.Fatalf("Alloc() failed at i=%d", i)
		}
		if seen[id] {
			t.Fatalf("Alloc() returned duplicate id %d", id)
		}
		seen[id] = true
	}
	if _, ok := p.Alloc(); ok {
		t.Fatal("Alloc() should fail once all 32 ids are busy")
	}
	p.Free(5)
	id, ok := p.Alloc()
	if !ok || id != 5 {
		t.Fatalf("Alloc() after Free(5) = (%d, %v), want (5, true)", id, ok)
	}
}

func TestInstancePoolNoSharedIDWhileBusy(t *testing.T) {
	// S8 (testable property): no two concurrent in-flight requests on one
	// device share an instance id.
	p := NewInstancePool()
	a, _ := p.Alloc()
	b, _ := p.Alloc()
	if a == b {
		t.Fatalf("Alloc() returned the same id twice: %d", a)
	}
}
