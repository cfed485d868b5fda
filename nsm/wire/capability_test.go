package wire

import "testing"

// S1: encode_ping_req(instance=0) -> 10 DE 80 89 00 00 00;
// decode_ping_resp on 10 DE 00 89 00 00 00 00 00 00 00 -> (cc=SUCCESS, reason=0).
func TestPingRequestSeedScenario(t *testing.T) {
	msg, sw := EncodePingReq(0)
	if sw != SWSuccess {
		t.Fatalf("EncodePingReq: sw = %v", sw)
	}
	want := []byte{0x10, 0xDE, 0x80, 0x89, 0x00, 0x00, 0x00}
	if len(msg) != len(want) {
		t.Fatalf("len(msg) = %d, want %d", len(msg), len(want))
	}
	for i := range want {
		if msg[i] != want[i] {
			t.Fatalf("msg[%d] = %#x, want %#x", i, msg[i], want[i])
		}
	}
}

func TestPingResponseSeedScenario(t *testing.T) {
	resp := []byte{0x10, 0xDE, 0x00, 0x89, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00}
	cc, reason, sw := DecodePingResp(resp)
	if sw != SWSuccess {
		t.Fatalf("DecodePingResp: sw = %v", sw)
	}
	if cc != Success {
		t.Fatalf("cc = %v, want Success", cc)
	}
	if reason != 0 {
		t.Fatalf("reason = %v, want 0", reason)
	}
}

func TestPingRoundTrip(t *testing.T) {
	req, sw := EncodePingReq(12)
	if sw != SWSuccess {
		t.Fatalf("EncodePingReq: sw = %v", sw)
	}
	if sw := DecodePingReq(req); sw != SWSuccess {
		t.Fatalf("DecodePingReq: sw = %v", sw)
	}
	resp, sw := EncodePingResp(12)
	if sw != SWSuccess {
		t.Fatalf("EncodePingResp: sw = %v", sw)
	}
	cc, _, sw := DecodePingResp(resp)
	if sw != SWSuccess || cc != Success {
		t.Fatalf("DecodePingResp(own resp) = (%v, %v)", cc, sw)
	}
}

func TestSupportedNvidiaMessageTypesRoundTrip(t *testing.T) {
	var bitmap [SupportedTypesBitmapLen]byte
	bitmap[0] = 0x7F // types 0-6 set

	resp, sw := EncodeSupportedNvidiaMessageTypesResp(3, bitmap)
	if sw != SWSuccess {
		t.Fatalf("EncodeSupportedNvidiaMessageTypesResp: sw = %v", sw)
	}
	got, cc, _, sw := DecodeSupportedNvidiaMessageTypesResp(resp)
	if sw != SWSuccess || cc != Success {
		t.Fatalf("decode = (%v, %v)", cc, sw)
	}
	if got != bitmap {
		t.Fatalf("got = %v, want %v", got, bitmap)
	}
}

func TestSupportedCommandCodesRoundTrip(t *testing.T) {
	req, sw := EncodeSupportedCommandCodesReq(1, TypePlatformEnvironmental)
	if sw != SWSuccess {
		t.Fatalf("encode: sw = %v", sw)
	}
	target, sw := DecodeSupportedCommandCodesReq(req)
	if sw != SWSuccess {
		t.Fatalf("decode: sw = %v", sw)
	}
	if target != TypePlatformEnvironmental {
		t.Fatalf("target = %v, want TypePlatformEnvironmental", target)
	}
}

func TestQueryDeviceIdentificationRoundTrip(t *testing.T) {
	resp, sw := EncodeQueryDeviceIdentificationResp(0, 1, 2)
	if sw != SWSuccess {
		t.Fatalf("encode: sw = %v", sw)
	}
	ident, inst, cc, _, sw := DecodeQueryDeviceIdentificationResp(resp)
	if sw != SWSuccess || cc != Success {
		t.Fatalf("decode = (%v, %v)", cc, sw)
	}
	if ident != 1 || inst != 2 {
		t.Fatalf("got (%d, %d), want (1, 2)", ident, inst)
	}
}

func TestPingRejectsCrossTypeResponse(t *testing.T) {
	resp, _ := EncodeSuccessResponse(0, TypePlatformEnvironmental, CmdPing, nil)
	if _, _, sw := DecodePingResp(resp); sw != SWErrorData {
		t.Fatalf("sw = %v, want SWErrorData", sw)
	}
}
