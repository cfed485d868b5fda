package wire

import "testing"

func TestEncodeDecodeRequestRoundTrip(t *testing.T) {
	msg, sw := EncodeRequest(7, TypePlatformEnvironmental, CmdGetTemperatureReading, []byte{3})
	if sw != SWSuccess {
		t.Fatalf("encode: sw = %v", sw)
	}
	payload, sw := DecodeRequest(msg, TypePlatformEnvironmental)
	if sw != SWSuccess {
		t.Fatalf("decode: sw = %v", sw)
	}
	if payload[0] != CmdGetTemperatureReading || payload[1] != 1 || payload[2] != 3 {
		t.Fatalf("payload = %v", payload)
	}
}

func TestDecodeRequestRejectsWrongClass(t *testing.T) {
	msg, _ := EncodeSuccessResponse(0, TypePlatformEnvironmental, CmdPing, nil)
	if _, sw := DecodeRequest(msg, TypePlatformEnvironmental); sw != SWErrorData {
		t.Fatalf("sw = %v, want SWErrorData", sw)
	}
}

func TestDecodeResponseHeaderRejectsTypeMismatch(t *testing.T) {
	msg, _ := EncodeSuccessResponse(0, TypePlatformEnvironmental, CmdPing, nil)
	if _, sw := DecodeResponseHeader(msg, TypeCapabilityDiscovery); sw != SWErrorData {
		t.Fatalf("sw = %v, want SWErrorData", sw)
	}
}

func TestEncodeErrorResponseRejectsSuccess(t *testing.T) {
	if _, sw := EncodeErrorResponse(0, TypePlatformEnvironmental, CmdPing, Success, 0); sw != SWErrorData {
		t.Fatalf("sw = %v, want SWErrorData", sw)
	}
}

func TestDecodeReasonCodeAndCCSuccessShape(t *testing.T) {
	payload := []byte{CmdPing, uint8(Success), 0, 0, 0, 0}
	cc, reason, sw := DecodeReasonCodeAndCC(payload)
	if sw != SWSuccess || cc != Success || reason != 0 {
		t.Fatalf("got (%v, %v, %v)", cc, reason, sw)
	}
}

func TestDecodeReasonCodeAndCCWrongLengthOnError(t *testing.T) {
	payload := []byte{CmdPing, uint8(Error), 0, 0, 0, 0}
	if _, _, sw := DecodeReasonCodeAndCC(payload); sw != SWErrorLength {
		t.Fatalf("sw = %v, want SWErrorLength", sw)
	}
}

func TestDecodeReasonCodeAndCCTooShort(t *testing.T) {
	if _, _, sw := DecodeReasonCodeAndCC([]byte{CmdPing}); sw != SWErrorLength {
		t.Fatalf("sw = %v, want SWErrorLength", sw)
	}
}

func TestPeekCompletionCode(t *testing.T) {
	msg, _ := EncodeErrorResponse(5, TypePlatformEnvironmental, CmdGetTemperatureReading, Busy, 0)
	cc, sw := PeekCompletionCode(msg)
	if sw != SWSuccess || cc != Busy {
		t.Fatalf("got (%v, %v), want (Busy, SWSuccess)", cc, sw)
	}
}

func TestPeekCompletionCodeRejectsRequest(t *testing.T) {
	msg, _ := EncodeRequest(5, TypePlatformEnvironmental, CmdGetTemperatureReading, nil)
	if _, sw := PeekCompletionCode(msg); sw != SWErrorData {
		t.Fatalf("sw = %v, want SWErrorData", sw)
	}
}
