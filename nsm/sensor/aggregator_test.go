package sensor

import (
	"testing"

	"github.com/NVIDIA/nsmd-sub002/nsm/wire"
)

func buildAggregateResp(t *testing.T, samples []wire.Sample) []byte {
	t.Helper()
	encoded := make([][]byte, len(samples))
	for i, s := range samples {
		b, sw := wire.EncodeSample(s.Tag, s.Valid, s.Data)
		if sw != wire.SWSuccess {
			t.Fatalf("EncodeSample: %v", sw)
		}
		encoded[i] = b
	}
	msg, sw := wire.EncodeAggregateResp(0, wire.TypePlatformEnvironmental, 0x49, wire.Success, encoded)
	if sw != wire.SWSuccess {
		t.Fatalf("EncodeAggregateResp: %v", sw)
	}
	return msg
}

func TestNumericAggregatorDispatch(t *testing.T) {
	agg := NewNumericAggregator("gpm", wire.TypePlatformEnvironmental, func(uint8) ([]byte, wire.SoftwareCode) {
		return nil, wire.SWSuccess
	})

	var got float64
	if _, err := agg.AddChild(Child{Tag: 1, Handle: func(s wire.Sample, ts uint64) {
		v, sw := wire.DecodeTemperatureSample(s.Data)
		if sw != wire.SWSuccess {
			t.Fatalf("DecodeTemperatureSample: %v", sw)
		}
		got = v
	}}); err != nil {
		t.Fatalf("AddChild: %v", err)
	}

	tempData := make([]byte, 4)
	tempData[0] = 0x00
	tempData[1] = 0x0C
	tempData[2] = 0x57
	tempData[3] = 0x00
	msg := buildAggregateResp(t, []wire.Sample{
		{Tag: 1, Valid: true, Data: tempData},
	})

	if sw := agg.HandleResponse(msg); sw != wire.SWSuccess {
		t.Fatalf("HandleResponse: %v", sw)
	}
	if got == 0 {
		t.Fatalf("child handler was not invoked")
	}
}

func TestNumericAggregatorDuplicateTagRejected(t *testing.T) {
	agg := NewNumericAggregator("gpm", wire.TypePlatformEnvironmental, nil)
	c := Child{Tag: 5, Handle: func(wire.Sample, uint64) {}}
	if _, err := agg.AddChild(c); err != nil {
		t.Fatalf("first AddChild: %v", err)
	}
	if _, err := agg.AddChild(c); err == nil {
		t.Fatal("expected duplicate tag to fail")
	}
}

func TestNumericAggregatorPriorityPromotion(t *testing.T) {
	agg := NewNumericAggregator("gpm", wire.TypePlatformEnvironmental, nil)
	if agg.Priority() {
		t.Fatal("fresh aggregator should not be priority")
	}
	if promoted, _ := agg.AddChild(Child{Tag: 1, Handle: func(wire.Sample, uint64) {}, Priority: false}); promoted {
		t.Fatal("non-priority child should not report promotion")
	}
	if agg.Priority() {
		t.Fatal("aggregator should stay round-robin with only non-priority children")
	}
	promoted, _ := agg.AddChild(Child{Tag: 2, Handle: func(wire.Sample, uint64) {}, Priority: true})
	if !promoted {
		t.Fatal("priority child should report promotion")
	}
	if !agg.Priority() {
		t.Fatal("aggregator should be promoted once any child is priority")
	}
	if promoted, _ := agg.AddChild(Child{Tag: 3, Handle: func(wire.Sample, uint64) {}, Priority: true}); promoted {
		t.Fatal("an already-priority aggregator should not report promotion again")
	}
}

func TestNumericAggregatorUnmappedTagDropped(t *testing.T) {
	agg := NewNumericAggregator("gpm", wire.TypePlatformEnvironmental, nil)
	called := false
	_, _ = agg.AddChild(Child{Tag: 9, Handle: func(wire.Sample, uint64) { called = true }})

	msg := buildAggregateResp(t, []wire.Sample{
		{Tag: 1, Valid: true, Data: []byte{0x00}},
	})
	if sw := agg.HandleResponse(msg); sw != wire.SWSuccess {
		t.Fatalf("HandleResponse: %v", sw)
	}
	if called {
		t.Fatal("handler for unmapped tag should not be called")
	}
}

func TestNumericAggregatorReservedTagsIgnored(t *testing.T) {
	agg := NewNumericAggregator("gpm", wire.TypePlatformEnvironmental, nil)
	called := false
	_, _ = agg.AddChild(Child{Tag: 0xF1, Handle: func(wire.Sample, uint64) { called = true }})

	msg := buildAggregateResp(t, []wire.Sample{
		{Tag: 0xF1, Valid: true, Data: []byte{0x00}},
	})
	if sw := agg.HandleResponse(msg); sw != wire.SWSuccess {
		t.Fatalf("HandleResponse: %v", sw)
	}
	if called {
		t.Fatal("reserved-range tag should be ignored by numeric aggregators")
	}
}
