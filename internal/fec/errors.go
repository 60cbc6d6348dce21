package fec

import "errors"

// Sentinel errors surfaced to callers. RankDeficient and pool exhaustion
// are internal states, never returned — see §7 of the design notes.
var (
	// ErrBufferTooShort is returned by ParsePacket or Serialize when the
	// supplied buffer cannot hold the declared framing.
	ErrBufferTooShort = errors.New("fec: buffer too short for frame")

	// ErrMissingCoefficients is returned when a repair packet without its
	// coefficient block is serialized or handed to a decoder.
	ErrMissingCoefficients = errors.New("fec: repair packet missing coefficients")
)
