package fec

import "testing"

func TestGF8MulInverse(t *testing.T) {
	for a := 1; a < 256; a++ {
		inv := gfInv(byte(a))
		if got := gfMul(byte(a), inv); got != 1 {
			t.Fatalf("gfMul(%d, inv(%d)=%d) = %d, want 1", a, a, inv, got)
		}
	}
}

func TestGF8MulAddSlice(t *testing.T) {
	a := []byte{1, 2, 3, 4, 5, 6, 7, 8, 9}
	out := make([]byte, len(a))
	gfMulAddSlice(1, a, out)
	for i := range a {
		if out[i] != a[i] {
			t.Fatalf("mulAddSlice coeff=1 at %d: got %d want %d", i, out[i], a[i])
		}
	}

	out2 := make([]byte, len(a))
	gfMulAddSlice(0, a, out2)
	for i := range out2 {
		if out2[i] != 0 {
			t.Fatalf("mulAddSlice coeff=0 at %d: got %d want 0", i, out2[i])
		}
	}
}

func TestGF16MulInverse(t *testing.T) {
	samples := []uint16{1, 2, 3, 255, 256, 1000, 0xFFFE, 0xFFFF}
	for _, a := range samples {
		inv := gf16Inv(a)
		if got := gf16Mul(a, inv); got != 1 {
			t.Fatalf("gf16Mul(%d, inv=%d) = %d, want 1", a, inv, got)
		}
	}
}

func TestGF16EncodeDecodeBE(t *testing.T) {
	buf := make([]byte, 2)
	for _, v := range []uint16{0, 1, 255, 256, 0x1234, 0xFFFF} {
		gf16EncodeBE(v, buf)
		if got := gf16DecodeBE(buf); got != v {
			t.Fatalf("round-trip %d: got %d", v, got)
		}
	}
}
