package sensor

import "testing"

func TestCapabilityCacheSetGetInvalidate(t *testing.T) {
	c := NewCapabilityCache()
	if _, ok := c.Get("gpu-0"); ok {
		t.Fatal("expected empty cache miss")
	}

	caps := Capabilities{SupportedCommands: map[uint8][32]bool{}}
	caps.SupportedTypes[3] = true
	c.Set("gpu-0", caps)

	got, ok := c.Get("gpu-0")
	if !ok {
		t.Fatal("expected cache hit after Set")
	}
	if !got.SupportedTypes[3] {
		t.Fatal("cached capabilities lost SupportedTypes bit")
	}

	c.Invalidate("gpu-0")
	if _, ok := c.Get("gpu-0"); ok {
		t.Fatal("expected cache miss after Invalidate (rediscovery)")
	}
}
