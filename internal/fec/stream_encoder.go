package fec

import (
	"fmt"
	"math"
)

// StreamEncoder adapts the systematic Cauchy Encoder to a simple
// per-call shape for callers that push one raw payload at a time and
// want a redundancy packet back whenever a source window fills,
// mirroring the call-site shape client/client.go already uses.
type StreamEncoder struct {
	k, n      int
	pool      *Pool
	enc       *Encoder
	pushed    uint64
	repairIdx int
}

// NewStreamEncoder builds a stream encoder with a fixed k=16 source
// window and n derived from the requested redundancy ratio (fraction
// of extra repair capacity over k). A ratio outside (0, 1] is replaced
// by 0.1.
func NewStreamEncoder(redundancy float64) *StreamEncoder {
	if redundancy <= 0 || redundancy > 1 {
		redundancy = 0.1
	}
	const k = 16
	n := int(math.Ceil(float64(k) * (1 + redundancy)))
	if n <= k {
		n = k + 1
	}
	return &StreamEncoder{
		k:    k,
		n:    n,
		pool: NewPool(64, 1500),
		enc:  NewEncoder(k, n),
	}
}

// AddPacket pushes payload as source packet seq. groupComplete is true,
// with redundancy holding the serialized repair frame, exactly when
// this call fills the current k-packet window.
func (s *StreamEncoder) AddPacket(payload []byte, seq uint64) (groupComplete bool, redundancy []byte, err error) {
	s.enc.AddSourcePacket(NewSystematicPacket(seq, payload, s.pool))
	s.pushed++
	if s.pushed%uint64(s.k) != 0 {
		return false, nil, nil
	}

	rp := s.enc.GenerateRepairPacket(s.repairIdx%(s.n-s.k), s.pool)
	if rp == nil {
		return false, nil, nil
	}
	buf := make([]byte, rp.requiredWireLen())
	written, err := rp.Serialize(buf)
	if err != nil {
		return false, nil, fmt.Errorf("serializing repair packet: %w", err)
	}
	s.repairIdx++
	return true, buf[:written], nil
}

// Flush has nothing buffered beyond whole windows already emitted by
// AddPacket; it returns nil.
func (s *StreamEncoder) Flush() ([]byte, error) { return nil, nil }

// Close does nothing: the encoder holds no resources that need explicit
// release.
func (s *StreamEncoder) Close() {}

// UseCXX always reports false: this engine has no CGO-accelerated path.
func (s *StreamEncoder) UseCXX() bool { return false }
