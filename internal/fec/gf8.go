package fec

import "sync"

// GF(2^8) arithmetic, polynomial x^8+x^4+x^3+x^2+1 (0x11D).
const (
	gfOrder           = 256
	gfIrreduciblePoly = 0x11D
)

var (
	gfLogTable  [gfOrder]byte
	gfExpTable  [gfOrder * 2]byte
	gfInitOnce  sync.Once
)

// initGFTables builds the log/exp tables used by the scalar GF(2^8) kernel.
// Runs exactly once regardless of how many goroutines call into the package.
func initGFTables() {
	gfInitOnce.Do(func() {
		x := uint16(1)
		for i := 0; i < 255; i++ {
			gfExpTable[i] = byte(x)
			gfExpTable[i+255] = byte(x)
			gfLogTable[x] = byte(i)
			x <<= 1
			if x >= 256 {
				x ^= gfIrreduciblePoly
			}
		}
	})
}

// gfMulTable multiplies two GF(2^8) elements via log/exp lookup.
func gfMulTable(a, b byte) byte {
	if a == 0 || b == 0 {
		return 0
	}
	sum := uint16(gfLogTable[a]) + uint16(gfLogTable[b])
	return gfExpTable[sum]
}

// gfMul multiplies two GF(2^8) elements via the log/exp table kernel. It
// does not consult the SIMD policy; only gfMulSlice batches by policy.
func gfMul(a, b byte) byte {
	return gfMulTable(a, b)
}

// gfInv returns the multiplicative inverse of a. a == 0 is a contract
// violation: callers must guarantee non-zero Cauchy coefficients.
func gfInv(a byte) byte {
	if a == 0 {
		panic("fec: inverse of 0 is undefined in GF(2^8)")
	}
	return gfExpTable[255-int(gfLogTable[a])]
}

// gfInvPrefetch mirrors gfInv; Go has no portable prefetch intrinsic outside
// assembly, so this is a thin alias kept to preserve the call site shape the
// original serial inverse chain uses (index reuse across consecutive calls
// keeps the log/exp tables in cache without an explicit prefetch hint).
func gfInvPrefetch(a byte) byte {
	return gfInv(a)
}

// gfMulAdd computes a*b XOR c.
func gfMulAdd(a, b, c byte) byte {
	return gfMul(a, b) ^ c
}

// gfMulSlice multiplies a and b element-wise into out. When the detected
// SIMD policy is wide (AVX2/NEON-class), eight bytes are processed per
// iteration via a batched table lookup to reduce loop overhead; scalar
// policy falls back to one byte at a time. Both paths compute the identical
// value per element.
func gfMulSlice(a, b, out []byte) {
	if len(a) != len(b) || len(out) != len(a) {
		panic("fec: gfMulSlice length mismatch")
	}
	policy := activeSIMDPolicy()
	if policy == simdPolicyScalar || len(a) < 8 {
		for i := range a {
			out[i] = gfMulTable(a[i], b[i])
		}
		return
	}
	n := len(a)
	i := 0
	for ; i+8 <= n; i += 8 {
		for j := 0; j < 8; j++ {
			out[i+j] = gfMulTable(a[i+j], b[i+j])
		}
	}
	for ; i < n; i++ {
		out[i] = gfMulTable(a[i], b[i])
	}
}

// gfMulAddSlice computes out[i] ^= coeff*a[i] for every element, the inner
// kernel of repair synthesis and CSR row reduction.
func gfMulAddSlice(coeff byte, a, out []byte) {
	if len(a) != len(out) {
		panic("fec: gfMulAddSlice length mismatch")
	}
	if coeff == 0 {
		return
	}
	if coeff == 1 {
		for i := range a {
			out[i] ^= a[i]
		}
		return
	}
	logC := uint16(gfLogTable[coeff])
	for i := range a {
		v := a[i]
		if v == 0 {
			continue
		}
		out[i] ^= gfExpTable[logC+uint16(gfLogTable[v])]
	}
}

func init() {
	initGFTables()
}
