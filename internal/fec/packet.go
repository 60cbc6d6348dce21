package fec

import "encoding/binary"

// Packet is the unit of work flowing through the engine. Every buffer it
// holds was allocated from, and must be returned to, the same Pool — see
// Release. Go has no destructors, so callers must call Release explicitly
// once a Packet leaves their ownership (encoder eviction, decoder
// consumption, or upper-layer handoff), mirroring the Drop impl this type
// is grounded on.
type Packet struct {
	ID            uint64
	Data          []byte // valid prefix is Data[:Len], backed by a pool buffer
	Len           int
	IsSystematic  bool
	Coefficients  []byte // present iff !IsSystematic, backed by a pool buffer
	CoeffLen      int    // bytes, always — see Open Question resolution in DESIGN.md
	pool          *Pool
}

// Payload returns the valid payload bytes.
func (p *Packet) Payload() []byte {
	return p.Data[:p.Len]
}

// Release returns this packet's buffers to its pool. Safe to call once;
// a second call is a no-op since the fields are cleared after release.
func (p *Packet) Release() {
	if p.pool == nil {
		return
	}
	if p.Data != nil {
		p.pool.Free(p.Data)
		p.Data = nil
	}
	if p.Coefficients != nil {
		p.pool.Free(p.Coefficients)
		p.Coefficients = nil
	}
	p.pool = nil
}

// CloneForEncoder deep-copies this packet's data into fresh pool buffers,
// used to feed both the primary and shadow encoder during cross-fade
// without aliasing ownership.
func (p *Packet) CloneForEncoder(pool *Pool) *Packet {
	data := pool.Alloc()
	copy(data, p.Data[:p.Len])

	var coeffs []byte
	if p.Coefficients != nil {
		coeffs = pool.Alloc()
		copy(coeffs, p.Coefficients[:p.CoeffLen])
	}

	return &Packet{
		ID:           p.ID,
		Data:         data,
		Len:          p.Len,
		IsSystematic: p.IsSystematic,
		Coefficients: coeffs,
		CoeffLen:     p.CoeffLen,
		pool:         pool,
	}
}

// NewSystematicPacket wraps payload (copied into a pool buffer) as a
// systematic packet with the given id.
func NewSystematicPacket(id uint64, payload []byte, pool *Pool) *Packet {
	data := pool.Alloc()
	n := copy(data, payload)
	return &Packet{ID: id, Data: data, Len: n, IsSystematic: true, pool: pool}
}

// ParsePacket deserializes the wire frame described in SPEC_FULL.md §4.2:
//
//	byte 0        : flag (1 = systematic, 0 = repair)
//	if repair:
//	  bytes 1..3  : coeff_len (big-endian u16)
//	  bytes 3..3+coeff_len : coefficients
//	payload       : remaining bytes
func ParsePacket(id uint64, raw []byte, pool *Pool) (*Packet, error) {
	if len(raw) < 1 {
		return nil, ErrBufferTooShort
	}

	isSystematic := raw[0] == 1
	offset := 1

	var coeffs []byte
	var coeffLen int
	if !isSystematic {
		if len(raw) < 3 {
			return nil, ErrBufferTooShort
		}
		coeffLen = int(binary.BigEndian.Uint16(raw[offset : offset+2]))
		offset += 2
		if len(raw) < offset+coeffLen {
			return nil, ErrBufferTooShort
		}
		coeffs = pool.Alloc()
		if coeffLen > len(coeffs) {
			pool.Free(coeffs)
			return nil, ErrBufferTooShort
		}
		copy(coeffs, raw[offset:offset+coeffLen])
		offset += coeffLen
	}

	payload := raw[offset:]
	data := pool.Alloc()
	if len(payload) > len(data) {
		if coeffs != nil {
			pool.Free(coeffs)
		}
		return nil, ErrBufferTooShort
	}
	n := copy(data, payload)

	return &Packet{
		ID:           id,
		Data:         data,
		Len:          n,
		IsSystematic: isSystematic,
		Coefficients: coeffs,
		CoeffLen:     coeffLen,
		pool:         pool,
	}, nil
}

// requiredWireLen returns the number of bytes Serialize will write.
func (p *Packet) requiredWireLen() int {
	n := 1 + p.Len
	if !p.IsSystematic {
		n += 2 + p.CoeffLen
	}
	return n
}

// Serialize writes the wire frame for p into out, returning the number of
// bytes written. Returns ErrBufferTooShort if out cannot hold the frame.
func (p *Packet) Serialize(out []byte) (int, error) {
	if !p.IsSystematic && p.Coefficients == nil {
		return 0, ErrMissingCoefficients
	}
	required := p.requiredWireLen()
	if len(out) < required {
		return 0, ErrBufferTooShort
	}

	offset := 0
	if p.IsSystematic {
		out[offset] = 1
	} else {
		out[offset] = 0
	}
	offset++

	if !p.IsSystematic {
		binary.BigEndian.PutUint16(out[offset:offset+2], uint16(p.CoeffLen))
		offset += 2
		copy(out[offset:offset+p.CoeffLen], p.Coefficients[:p.CoeffLen])
		offset += p.CoeffLen
	}

	copy(out[offset:offset+p.Len], p.Data[:p.Len])
	offset += p.Len

	return offset, nil
}
