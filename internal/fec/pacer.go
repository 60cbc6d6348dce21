package fec

import "time"

// RepairPacer shapes the rate of repair-packet emission using a token
// bucket, adapted from the teacher's congestion-control pacer
// (internal/congestion/pacer.go). Repurposed here from connection-level
// congestion pacing (out of scope for this engine — provided by the
// underlying QUIC library) to repair-burst shaping: bounding how fast the
// encoder's own repair packets are allowed onto the outgoing queue so a
// mode transition's double-coverage window doesn't emit an instantaneous
// burst disproportionate to the configured rate.
type RepairPacer struct {
	rateBps  int64
	tokens   float64
	lastTick time.Time
	mtu      int
}

// NewRepairPacer creates a pacer with burst capacity of 10 MTUs.
func NewRepairPacer(mtu int) *RepairPacer {
	if mtu <= 0 {
		mtu = 1200
	}
	return &RepairPacer{mtu: mtu}
}

// SetRate sets the pacing rate in bytes per second. A rate of 0 disables
// pacing (Allow always returns true).
func (p *RepairPacer) SetRate(bps int64) {
	if bps < 0 {
		bps = 0
	}
	p.rateBps = bps
}

// Allow reports whether a repair packet of the given size may be emitted
// now, consuming tokens on success.
func (p *RepairPacer) Allow(now time.Time, size int) bool {
	if p.rateBps == 0 {
		return true
	}
	if p.lastTick.IsZero() {
		p.lastTick = now
	}
	elapsed := now.Sub(p.lastTick).Seconds()
	p.lastTick = now

	p.tokens += float64(p.rateBps) * elapsed
	maxBurst := float64(10 * p.mtu)
	if p.tokens > maxBurst {
		p.tokens = maxBurst
	}

	need := float64(size)
	if p.tokens >= need {
		p.tokens -= need
		return true
	}
	return false
}
