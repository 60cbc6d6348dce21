package fec

// decodingStrategy selects the elimination algorithm by window size,
// independent of field variant (SPEC_FULL.md §4.4).
type decodingStrategy int

const (
	strategyGaussian decodingStrategy = iota
	strategyWiedemann
)

// maxWiedemannRetries bounds retry attempts per window before the decoder
// gives up silently and waits for a mode transition to retire it. See
// DESIGN.md Open Question decisions.
const maxWiedemannRetries = 8

// Decoder reconstructs a source window over GF(2^8) from a mix of
// systematic and repair packets.
type Decoder struct {
	k                int
	pool             *Pool
	matrix           *csrMatrix
	systematic       []*Packet
	isDecoded        bool
	strategy         decodingStrategy
	wiedemannRetries int
}

// NewDecoder constructs a decoder for a window of size k, selecting sparse
// Gaussian elimination for k<=256 and Wiedemann for k>256.
func NewDecoder(k int, pool *Pool) *Decoder {
	strategy := strategyGaussian
	if k > 256 {
		strategy = strategyWiedemann
	}
	return &Decoder{
		k:          k,
		pool:       pool,
		matrix:     newCSRMatrix(k),
		systematic: make([]*Packet, k),
		strategy:   strategy,
	}
}

func (d *Decoder) IsDecoded() bool { return d.isDecoded }

// AddPacket admits pkt into the decoding matrix and attempts decode.
// Returns the current is_decoded state, or ErrMissingCoefficients for a
// malformed repair packet.
func (d *Decoder) AddPacket(pkt *Packet) (bool, error) {
	if d.isDecoded || d.matrix.numRows() >= d.k {
		return d.isDecoded, nil
	}

	if pkt.IsSystematic {
		index := int(pkt.ID) % d.k
		if d.systematic[index] != nil {
			return d.isDecoded, nil // duplicate, silently ignored
		}
		d.systematic[index] = pkt
		identityRow := make([]byte, d.k)
		identityRow[index] = 1
		d.matrix.appendRow(identityRow, pkt.Data[:pkt.Len])
		return d.tryDecode(), nil
	}

	if pkt.Coefficients == nil {
		return false, ErrMissingCoefficients
	}
	d.matrix.appendRow(pkt.Coefficients[:pkt.CoeffLen], pkt.Data[:pkt.Len])
	return d.tryDecode(), nil
}

func (d *Decoder) tryDecode() bool {
	if d.isDecoded {
		return true
	}
	if d.matrix.numRows() < d.k {
		return false
	}
	switch d.strategy {
	case strategyWiedemann:
		if d.wiedemannAlgorithm() {
			return true
		}
		d.wiedemannRetries++
		return false
	default:
		return d.gaussianElimination()
	}
}

// gaussianElimination performs sparse row reduction to full rank. Pivot
// search scans from row i onward and takes the first nonzero candidate.
func (d *Decoder) gaussianElimination() bool {
	k := d.k
	rank := 0

	for i := 0; i < k; i++ {
		pivotRow := -1
		for r := i; r < d.matrix.numRows(); r++ {
			if d.matrix.getVal(r, i) != 0 {
				pivotRow = r
				break
			}
		}
		if pivotRow == -1 {
			continue
		}
		d.matrix.swapRows(i, pivotRow)
		pivotVal := d.matrix.getVal(i, i)
		d.matrix.scaleRow(i, gfInv(pivotVal))

		for row := 0; row < d.matrix.numRows(); row++ {
			if row == i {
				continue
			}
			factor := d.matrix.getVal(row, i)
			if factor != 0 {
				d.matrix.addScaledRow(row, i, factor)
			}
		}
		rank++
		if rank == k {
			break
		}
	}

	if rank < k {
		return false
	}

	d.isDecoded = true
	for i := 0; i < k; i++ {
		if d.systematic[i] != nil {
			continue
		}
		payload := d.matrix.getPayload(i)
		if payload == nil {
			continue
		}
		data := d.pool.Alloc()
		n := copy(data, payload)
		d.systematic[i] = &Packet{
			ID:           uint64(i),
			Data:         data,
			Len:          n,
			IsSystematic: true,
			pool:         d.pool,
		}
	}
	return true
}

// GetDecodedPackets drains the reconstructed systematic set in index order.
func (d *Decoder) GetDecodedPackets() []*Packet {
	out := make([]*Packet, 0, d.k)
	for i, p := range d.systematic {
		if p != nil {
			out = append(out, p)
			d.systematic[i] = nil
		}
	}
	return out
}

// --- Wiedemann (block-Lanczos + Berlekamp-Massey) ---

func (d *Decoder) wiedemannAlgorithm() bool {
	if d.wiedemannRetries >= maxWiedemannRetries {
		return false
	}
	k := d.k

	block := k / 256
	if block < 1 {
		block = 1
	}
	if block > 32 {
		block = 32
	}
	init := make([][]byte, block)
	for b := 0; b < block; b++ {
		v := make([]byte, k)
		for i := 0; i < k; i++ {
			v[i] = byte((i + b + 1) % 255)
		}
		init[b] = v
	}

	seq := d.blockLanczosIteration(init)

	a := make([][]byte, k)
	for row := 0; row < k; row++ {
		a[row] = make([]byte, k)
		for _, e := range d.matrix.rowEntries(row) {
			a[row][e.col] = e.val
		}
	}

	maxLen := 0
	for _, p := range d.matrix.payloads {
		if p != nil && len(p) > maxLen {
			maxLen = len(p)
		}
	}
	bMat := make([][]byte, k)
	for r := 0; r < k; r++ {
		bMat[r] = make([]byte, maxLen)
		if p := d.matrix.payloads[r]; p != nil {
			copy(bMat[r], p)
		}
	}

	poly := berlekampMassey(seq[0])
	if poly == nil || len(poly) <= 1 || poly[0] == 0 {
		return false
	}

	powers := make([][][]byte, len(poly))
	id := make([][]byte, k)
	for i := 0; i < k; i++ {
		id[i] = make([]byte, k)
		id[i][i] = 1
	}
	powers[0] = id
	for p := 1; p < len(poly); p++ {
		powers[p] = matMul(powers[p-1], a)
	}

	c0Inv := gfInv(poly[0])
	aInv := make([][]byte, k)
	for r := 0; r < k; r++ {
		aInv[r] = make([]byte, k)
	}
	for idx := 1; idx < len(poly); idx++ {
		coef := gfMul(poly[idx], c0Inv)
		mat := powers[idx-1]
		for r := 0; r < k; r++ {
			for c := 0; c < k; c++ {
				aInv[r][c] ^= gfMul(coef, mat[r][c])
			}
		}
	}

	result := matMul(aInv, bMat)

	for i := 0; i < k; i++ {
		if d.systematic[i] != nil {
			continue
		}
		data := d.pool.Alloc()
		n := copy(data, result[i])
		d.systematic[i] = &Packet{
			ID:           uint64(i),
			Data:         data,
			Len:          n,
			IsSystematic: true,
			pool:         d.pool,
		}
	}
	d.isDecoded = true
	return true
}

// blockLanczosIteration builds the Krylov sequence s[b][t] = <init[b], A^t init[b]>.
func (d *Decoder) blockLanczosIteration(init [][]byte) [][]byte {
	k := d.k
	block := len(init)
	seq := make([][]byte, block)
	for b := range seq {
		seq[b] = make([]byte, 2*k)
	}

	a := make([][]byte, k)
	for row := 0; row < k; row++ {
		a[row] = make([]byte, k)
		for _, e := range d.matrix.rowEntries(row) {
			a[row][e.col] = e.val
		}
	}

	matVecMul := func(m [][]byte, x []byte) []byte {
		n := len(x)
		out := make([]byte, n)
		for r := 0; r < n; r++ {
			var acc byte
			row := m[r]
			for c := 0; c < n; c++ {
				if row[c] != 0 {
					acc ^= gfMul(row[c], x[c])
				}
			}
			out[r] = acc
		}
		return out
	}

	for b := 0; b < block; b++ {
		v := append([]byte(nil), init[b]...)
		for t := 0; t < 2*k; t++ {
			var dot byte
			for i := 0; i < k; i++ {
				dot ^= gfMul(init[b][i], v[i])
			}
			seq[b][t] = dot
			v = matVecMul(a, v)
		}
	}
	return seq
}

// berlekampMassey recovers the minimal polynomial of a GF(2^8) linear
// recurrence sequence.
func berlekampMassey(s []byte) []byte {
	n := len(s)
	c := make([]byte, n+1)
	b := make([]byte, n+1)
	c[0] = 1
	b[0] = 1
	l := 0
	m := 0
	bb := append([]byte(nil), b...)

	for i := 0; i < n; i++ {
		delta := s[i]
		for j := 1; j <= l; j++ {
			delta ^= gfMul(c[j], s[i-j])
		}
		if delta != 0 {
			t := append([]byte(nil), c...)
			coef := gfMul(delta, gfInv(bb[0]))
			shift := i - m
			for j := 0; j < n-shift; j++ {
				c[j+shift] ^= gfMul(coef, bb[j])
			}
			if 2*l <= i {
				l = i + 1 - l
				m = i
				bb = t
			}
		}
	}
	return c[:l+1]
}

// matMul multiplies two dense GF(2^8) matrices.
func matMul(a, b [][]byte) [][]byte {
	rows := len(a)
	if rows == 0 || len(b) == 0 {
		return nil
	}
	cols := len(b[0])
	mid := len(b)
	out := make([][]byte, rows)
	for i := 0; i < rows; i++ {
		out[i] = make([]byte, cols)
		for kk := 0; kk < mid; kk++ {
			if a[i][kk] == 0 {
				continue
			}
			for j := 0; j < cols; j++ {
				out[i][j] ^= gfMul(a[i][kk], b[kk][j])
			}
		}
	}
	return out
}

// --- GF(2^16) dense decoder (Extreme mode) ---

// Decoder16 reconstructs a source window over GF(2^16).
type Decoder16 struct {
	k         int
	pool      *Pool
	matrix    *denseMatrixG16
	isDecoded bool
}

func NewDecoder16(k int, pool *Pool) *Decoder16 {
	return &Decoder16{k: k, pool: pool, matrix: newDenseMatrixG16()}
}

func (d *Decoder16) IsDecoded() bool { return d.isDecoded }

func (d *Decoder16) AddPacket(pkt *Packet) (bool, error) {
	if d.isDecoded || d.matrix.numRows() >= d.k {
		return d.isDecoded, nil
	}

	if pkt.IsSystematic {
		row := make([]uint16, d.k)
		idx := int(pkt.ID) % d.k
		row[idx] = 1
		d.matrix.appendRow(row, pkt.Data[:pkt.Len])
		return d.tryDecode(), nil
	}

	if pkt.Coefficients == nil {
		return false, ErrMissingCoefficients
	}
	row := make([]uint16, d.k)
	for i := 0; i < d.k; i++ {
		row[i] = gf16DecodeBE(pkt.Coefficients[2*i : 2*i+2])
	}
	d.matrix.appendRow(row, pkt.Data[:pkt.Len])
	return d.tryDecode(), nil
}

// tryDecode performs dense Gauss-Jordan elimination over all admitted
// rows, eliminating from every other row (no early-rank-exit), matching
// the original dense-matrix decode path. Returns false, leaving the
// matrix in its partially-reduced state, if a pivot column is missing —
// a caller should keep admitting packets and retry.
func (d *Decoder16) tryDecode() bool {
	if d.matrix.numRows() < d.k {
		return false
	}
	k := d.k
	for i := 0; i < k; i++ {
		pivot := i
		for pivot < k && d.matrix.rows[pivot][i] == 0 {
			pivot++
		}
		if pivot == k {
			return false
		}
		d.matrix.swapRows(i, pivot)
		inv := gf16Inv(d.matrix.rows[i][i])
		row := d.matrix.rows[i]
		for c := range row {
			row[c] = gf16Mul(row[c], inv)
		}
		if p := d.matrix.payloads[i]; p != nil {
			j := 0
			for j+1 < len(p) {
				v := gf16DecodeBE(p[j : j+2])
				v = gf16Mul(v, inv)
				gf16EncodeBE(v, p[j:j+2])
				j += 2
			}
		}
		for r := 0; r < k; r++ {
			if r == i {
				continue
			}
			factor := d.matrix.rows[r][i]
			if factor == 0 {
				continue
			}
			for c := 0; c < k; c++ {
				d.matrix.rows[r][c] ^= gf16Mul(factor, d.matrix.rows[i][c])
			}
			src := d.matrix.payloads[i]
			tgt := d.matrix.payloads[r]
			if src != nil && tgt != nil {
				j := 0
				n := len(src)
				if len(tgt) < n {
					n = len(tgt)
				}
				for j+1 < n {
					s := gf16DecodeBE(src[j : j+2])
					t := gf16DecodeBE(tgt[j : j+2])
					v := gf16MulAdd(factor, s, t)
					gf16EncodeBE(v, tgt[j:j+2])
					j += 2
				}
			}
		}
	}
	d.isDecoded = true
	return true
}

// GetDecodedPackets drains every row's reconstructed payload in index
// order. After full elimination the matrix is the identity, so row i's
// payload holds source packet i regardless of whether it arrived
// systematic or was recovered from repair rows.
func (d *Decoder16) GetDecodedPackets() []*Packet {
	out := make([]*Packet, 0, d.k)
	for i, payload := range d.matrix.payloads {
		if payload == nil {
			continue
		}
		data := d.pool.Alloc()
		n := copy(data, payload)
		out = append(out, &Packet{
			ID:           uint64(i),
			Data:         data,
			Len:          n,
			IsSystematic: true,
			pool:         d.pool,
		})
		d.matrix.payloads[i] = nil
	}
	return out
}
