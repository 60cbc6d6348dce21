package fec

// csrMatrix is a compressed-sparse-row matrix over GF(2^8), used by the
// sparse Gaussian-elimination decoding path (k <= 256). Rows are tagged
// with an optional payload buffer; the decoder attaches one to every row
// it appends, systematic identity rows included, so that elimination can
// subtract known sources out of the repair payloads.
type csrMatrix struct {
	values     []byte
	colIndices []int
	rowPtr     []int
	payloads   [][]byte
	numCols    int
}

func newCSRMatrix(numCols int) *csrMatrix {
	return &csrMatrix{rowPtr: []int{0}, numCols: numCols}
}

func (m *csrMatrix) numRows() int { return len(m.rowPtr) - 1 }

// appendRow appends a dense row to the matrix, sparsifying it.
func (m *csrMatrix) appendRow(row []byte, payload []byte) {
	for col, v := range row {
		if v != 0 {
			m.values = append(m.values, v)
			m.colIndices = append(m.colIndices, col)
		}
	}
	m.rowPtr = append(m.rowPtr, len(m.values))
	m.payloads = append(m.payloads, payload)
}

func (m *csrMatrix) getVal(row, col int) byte {
	start, end := m.rowPtr[row], m.rowPtr[row+1]
	for i := start; i < end; i++ {
		if m.colIndices[i] == col {
			return m.values[i]
		}
	}
	return 0
}

func (m *csrMatrix) getPayload(row int) []byte { return m.payloads[row] }

type csrEntry struct {
	col int
	val byte
}

func (m *csrMatrix) rowEntries(row int) []csrEntry {
	start, end := m.rowPtr[row], m.rowPtr[row+1]
	entries := make([]csrEntry, 0, end-start)
	for i := start; i < end; i++ {
		entries = append(entries, csrEntry{m.colIndices[i], m.values[i]})
	}
	return entries
}

func (m *csrMatrix) clearRow(row int) {
	start, end := m.rowPtr[row], m.rowPtr[row+1]
	diff := end - start
	if diff == 0 {
		return
	}
	m.values = append(m.values[:start], m.values[end:]...)
	m.colIndices = append(m.colIndices[:start], m.colIndices[end:]...)
	for i := row + 1; i < len(m.rowPtr); i++ {
		m.rowPtr[i] -= diff
	}
}

func (m *csrMatrix) insertRow(row int, entries []csrEntry) {
	start := m.rowPtr[row]
	vals := make([]byte, len(entries))
	cols := make([]int, len(entries))
	for i, e := range entries {
		cols[i] = e.col
		vals[i] = e.val
	}
	m.values = append(m.values[:start], append(append([]byte{}, vals...), m.values[start:]...)...)
	m.colIndices = append(m.colIndices[:start], append(append([]int{}, cols...), m.colIndices[start:]...)...)
	diff := len(entries)
	for i := row + 1; i < len(m.rowPtr); i++ {
		m.rowPtr[i] += diff
	}
}

func (m *csrMatrix) swapRows(r1, r2 int) {
	if r1 == r2 {
		return
	}
	row1 := m.rowEntries(r1)
	row2 := m.rowEntries(r2)
	hi, lo, hiRow, loRow := r1, r2, row1, row2
	if r1 < r2 {
		hi, lo, hiRow, loRow = r2, r1, row2, row1
	}
	m.clearRow(hi)
	m.clearRow(lo)
	m.insertRow(hi, loRow)
	m.insertRow(lo, hiRow)
	m.payloads[r1], m.payloads[r2] = m.payloads[r2], m.payloads[r1]
}

func (m *csrMatrix) scaleRow(row int, factor byte) {
	start, end := m.rowPtr[row], m.rowPtr[row+1]
	for i := start; i < end; i++ {
		m.values[i] = gfMul(m.values[i], factor)
	}
	if p := m.payloads[row]; p != nil {
		for i := range p {
			p[i] = gfMul(p[i], factor)
		}
	}
}

// addScaledRow computes targetRow += factor * sourceRow, both in
// coefficient space and payload space. When either row's payload is
// absent (nil), the payload update is skipped for that combination and
// only the coefficient row is updated.
func (m *csrMatrix) addScaledRow(targetRow, sourceRow int, factor byte) {
	dense := make([]byte, m.numCols)
	for _, e := range m.rowEntries(targetRow) {
		dense[e.col] = e.val
	}
	for _, e := range m.rowEntries(sourceRow) {
		dense[e.col] ^= gfMul(e.val, factor)
	}
	m.clearRow(targetRow)
	entries := make([]csrEntry, 0, m.numCols)
	for col, v := range dense {
		if v != 0 {
			entries = append(entries, csrEntry{col, v})
		}
	}
	m.insertRow(targetRow, entries)

	src := m.payloads[sourceRow]
	tgt := m.payloads[targetRow]
	if src != nil && tgt != nil {
		n := len(tgt)
		if len(src) < n {
			n = len(src)
		}
		gfMulAddSlice(factor, src[:n], tgt[:n])
	}
}

// denseMatrixG16 is the dense coefficient matrix used for the GF(2^16)
// Extreme-mode decoding path.
type denseMatrixG16 struct {
	rows     [][]uint16
	payloads [][]byte
}

func newDenseMatrixG16() *denseMatrixG16 {
	return &denseMatrixG16{}
}

func (m *denseMatrixG16) numRows() int { return len(m.rows) }

func (m *denseMatrixG16) appendRow(row []uint16, payload []byte) {
	m.rows = append(m.rows, row)
	m.payloads = append(m.payloads, payload)
}

func (m *denseMatrixG16) swapRows(r1, r2 int) {
	m.rows[r1], m.rows[r2] = m.rows[r2], m.rows[r1]
	m.payloads[r1], m.payloads[r2] = m.payloads[r2], m.payloads[r1]
}
