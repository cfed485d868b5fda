package wire

import "testing"

func TestFixedStringRoundTrip(t *testing.T) {
	buf := make([]byte, 16)
	n, sw := EncodeFixedString("H100-80GB", buf)
	if sw != SWSuccess {
		t.Fatalf("encode: sw = %v", sw)
	}
	got, sw := DecodeFixedString(buf[:n])
	if sw != SWSuccess {
		t.Fatalf("decode: sw = %v", sw)
	}
	if got != "H100-80GB" {
		t.Fatalf("got = %q", got)
	}
}

func TestDecodeFixedStringRejectsUnterminated(t *testing.T) {
	buf := []byte("no-nul-here")
	if _, sw := DecodeFixedString(buf); sw != SWErrorLength {
		t.Fatalf("sw = %v, want SWErrorLength", sw)
	}
}

func TestEncodeFixedStringRejectsOverlong(t *testing.T) {
	long := make([]byte, MaxStringLen)
	for i := range long {
		long[i] = 'a'
	}
	out := make([]byte, MaxStringLen+1)
	if _, sw := EncodeFixedString(string(long), out); sw != SWErrorLength {
		t.Fatalf("sw = %v, want SWErrorLength", sw)
	}
}
