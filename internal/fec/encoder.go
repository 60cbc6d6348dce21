package fec

// sourceWindowG8 is a bounded FIFO of the most recent k source packets,
// the coding context for GF(2^8) repair synthesis.
type sourceWindowG8 struct {
	packets []*Packet
	k       int
}

func newSourceWindow(k int) *sourceWindowG8 {
	return &sourceWindowG8{packets: make([]*Packet, 0, k), k: k}
}

// push appends pkt, evicting and releasing the oldest packet if full.
func (w *sourceWindowG8) push(pkt *Packet) {
	if len(w.packets) == w.k {
		evicted := w.packets[0]
		copy(w.packets, w.packets[1:])
		w.packets = w.packets[:len(w.packets)-1]
		evicted.Release()
	}
	w.packets = append(w.packets, pkt)
}

func (w *sourceWindowG8) full() bool { return len(w.packets) == w.k }

// Encoder is the GF(2^8) systematic Cauchy RLNC encoder.
type Encoder struct {
	k, n   int
	window *sourceWindowG8
}

// NewEncoder constructs a GF(2^8) encoder for the given (k, n) parameters.
func NewEncoder(k, n int) *Encoder {
	return &Encoder{k: k, n: n, window: newSourceWindow(k)}
}

func (e *Encoder) AddSourcePacket(pkt *Packet) { e.window.push(pkt) }

// generateCauchyCoefficients builds the j-th row of the n x k Cauchy
// generator matrix: C[i] = inv(i XOR (k+j)).
func (e *Encoder) generateCauchyCoefficients(repairIndex int) []byte {
	if e.k == 0 {
		return nil
	}
	y := byte(e.k + repairIndex)
	coeffs := make([]byte, e.k)
	for i := 0; i < e.k; i++ {
		coeffs[i] = gfInvPrefetch(byte(i) ^ y)
	}
	return coeffs
}

// GenerateRepairPacket returns repair packet j (0 <= j < n-k), or nil until
// the source window is full.
func (e *Encoder) GenerateRepairPacket(repairIndex int, pool *Pool) *Packet {
	if !e.window.full() {
		return nil
	}
	packetLen := e.window.packets[0].Len
	repairData := pool.Alloc()
	for i := range repairData {
		repairData[i] = 0
	}

	coeffs := e.generateCauchyCoefficients(repairIndex)
	applyRepairFanout(e.window.packets, coeffs, repairData[:packetLen])

	coeffBlock := pool.Alloc()
	copy(coeffBlock, coeffs)

	lastID := e.window.packets[len(e.window.packets)-1].ID
	return &Packet{
		ID:           lastID + 1 + uint64(repairIndex),
		Data:         repairData,
		Len:          packetLen,
		IsSystematic: false,
		Coefficients: coeffBlock,
		CoeffLen:     len(coeffs),
		pool:         pool,
	}
}

// applyRepairFanout accumulates repairData[j] ^= coeff_i * source_i[j] for
// every source in window. When the active SIMD policy is "wide" and the
// payload is large enough to be worth sharding, the output is partitioned
// into disjoint byte ranges processed by a worker pool — each worker owns
// a distinct slice of repairData, so no synchronization is needed despite
// the concurrent writes. Otherwise a simple serial accumulation runs. Both
// produce byte-identical results.
func applyRepairFanout(sources []*Packet, coeffs []byte, repairData []byte) {
	if activeSIMDPolicy() == simdPolicyWide && len(repairData) >= minFanoutShardBytes {
		shardRepairAccumulation(sources, coeffs, repairData)
		return
	}
	accumulateRepairRange(sources, coeffs, repairData, 0, len(repairData))
}

// accumulateRepairRange XORs coeff_i*source_i[lo:hi] into repairData[lo:hi]
// for every source, serially.
func accumulateRepairRange(sources []*Packet, coeffs []byte, repairData []byte, lo, hi int) {
	for i, src := range sources {
		coeff := coeffs[i]
		if coeff == 0 {
			continue
		}
		data := src.Payload()
		end := hi
		if len(data) < end {
			end = len(data)
		}
		if lo >= end {
			continue
		}
		gfMulAddSlice(coeff, data[lo:end], repairData[lo:end])
	}
}

// Encoder16 is the GF(2^16) systematic Cauchy RLNC encoder used for
// Extreme mode.
type Encoder16 struct {
	k, n   int
	window *sourceWindowG8
}

func NewEncoder16(k, n int) *Encoder16 {
	return &Encoder16{k: k, n: n, window: newSourceWindow(k)}
}

func (e *Encoder16) AddSourcePacket(pkt *Packet) { e.window.push(pkt) }

func (e *Encoder16) generateCauchyCoefficients(repairIndex int) []uint16 {
	if e.k == 0 {
		return nil
	}
	y := uint16(e.k + repairIndex)
	coeffs := make([]uint16, e.k)
	for i := 0; i < e.k; i++ {
		coeffs[i] = gf16Inv(uint16(i) ^ y)
	}
	return coeffs
}

func (e *Encoder16) GenerateRepairPacket(repairIndex int, pool *Pool) *Packet {
	if !e.window.full() {
		return nil
	}
	packetLen := e.window.packets[0].Len
	repairData := pool.Alloc()
	for i := range repairData {
		repairData[i] = 0
	}

	coeffs := e.generateCauchyCoefficients(repairIndex)
	for i, src := range e.window.packets {
		coeff := coeffs[i]
		if coeff == 0 {
			continue
		}
		data := src.Payload()
		limit := packetLen
		if len(data) < limit {
			limit = len(data)
		}
		j := 0
		for j+1 < limit {
			s := gf16DecodeBE(data[j : j+2])
			r := gf16DecodeBE(repairData[j : j+2])
			v := gf16MulAdd(coeff, s, r)
			gf16EncodeBE(v, repairData[j:j+2])
			j += 2
		}
	}

	coeffBlock := pool.Alloc()
	for i, c := range coeffs {
		gf16EncodeBE(c, coeffBlock[2*i:2*i+2])
	}

	lastID := e.window.packets[len(e.window.packets)-1].ID
	return &Packet{
		ID:           lastID + 1 + uint64(repairIndex),
		Data:         repairData,
		Len:          packetLen,
		IsSystematic: false,
		Coefficients: coeffBlock,
		CoeffLen:     len(coeffs) * 2,
		pool:         pool,
	}
}

// K returns the source-window capacity.
func (e *Encoder) K() int { return e.k }

// N returns the total (source + repair) packet count.
func (e *Encoder) N() int { return e.n }

// K returns the source-window capacity.
func (e *Encoder16) K() int { return e.k }

// N returns the total (source + repair) packet count.
func (e *Encoder16) N() int { return e.n }
