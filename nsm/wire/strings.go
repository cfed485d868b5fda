package wire

import "bytes"

// MaxStringLen is the spec-imposed ceiling on an inventory string or
// driver version, NUL included.
const MaxStringLen = 100

// DecodeFixedString decodes a NUL-terminated byte string out of in,
// rejecting it as ERROR_LENGTH if it is unterminated or if the
// terminated string (NUL included) would exceed MaxStringLen.
func DecodeFixedString(in []byte) (string, SoftwareCode) {
	if in == nil {
		return "", SWErrorNull
	}
	if len(in) > MaxStringLen {
		in = in[:MaxStringLen]
	}
	nul := bytes.IndexByte(in, 0)
	if nul < 0 {
		return "", SWErrorLength
	}
	return string(in[:nul]), SWSuccess
}

// EncodeFixedString writes s NUL-terminated into out, which must be at
// least len(s)+1 bytes and no more than MaxStringLen bytes total.
func EncodeFixedString(s string, out []byte) (int, SoftwareCode) {
	if out == nil {
		return 0, SWErrorNull
	}
	n := len(s) + 1
	if n > MaxStringLen {
		return 0, SWErrorLength
	}
	if len(out) < n {
		return 0, SWErrorLength
	}
	copy(out, s)
	out[len(s)] = 0
	return n, SWSuccess
}
