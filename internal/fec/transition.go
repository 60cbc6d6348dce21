package fec

// fecVariant is the active field representation for an encoder/decoder
// pair, selected by mode and window size.
type fecVariant int

const (
	variantG8 fecVariant = iota
	variantG16
)

// codecPair bundles an encoder and decoder under a single field variant,
// so the façade and transition controller can treat primary and shadow
// state uniformly regardless of which field is active.
type codecPair struct {
	variant fecVariant
	enc8    *Encoder
	dec8    *Decoder
	enc16   *Encoder16
	dec16   *Decoder16
}

func newCodecPair(mode Mode, k, n int, pool *Pool) *codecPair {
	if mode == ModeExtreme {
		return &codecPair{
			variant: variantG16,
			enc16:   NewEncoder16(k, n),
			dec16:   NewDecoder16(k, pool),
		}
	}
	return &codecPair{
		variant: variantG8,
		enc8:    NewEncoder(k, n),
		dec8:    NewDecoder(k, pool),
	}
}

func (c *codecPair) addSource(pkt *Packet) {
	if c.variant == variantG16 {
		c.enc16.AddSourcePacket(pkt)
		return
	}
	c.enc8.AddSourcePacket(pkt)
}

func (c *codecPair) generateRepair(j int, pool *Pool) *Packet {
	if c.variant == variantG16 {
		return c.enc16.GenerateRepairPacket(j, pool)
	}
	return c.enc8.GenerateRepairPacket(j, pool)
}

func (c *codecPair) addToDecoder(pkt *Packet) (bool, error) {
	if c.variant == variantG16 {
		return c.dec16.AddPacket(pkt)
	}
	return c.dec8.AddPacket(pkt)
}

func (c *codecPair) isDecoded() bool {
	if c.variant == variantG16 {
		return c.dec16.IsDecoded()
	}
	return c.dec8.IsDecoded()
}

func (c *codecPair) drainDecoded() []*Packet {
	if c.variant == variantG16 {
		return c.dec16.GetDecodedPackets()
	}
	return c.dec8.GetDecodedPackets()
}

func (c *codecPair) repairCount(k, n int) int { return n - k }

// transitionState tracks the shadow codec pair kept alive across a mode
// change's cross-fade window. The shadow covers in-flight traffic coded
// under the previous parameters while the primary ramps up under the
// new ones.
type transitionState struct {
	active   bool
	shadow   *codecPair
	shadowK  int
	shadowN  int
	fading   bool // true until halfway mark, when shadow repair emission and feeding stop
	counter  int  // counts down from CrossFadeLen to 0
}

func (t *transitionState) start(prevMode Mode, prevK, prevN int, pool *Pool) {
	t.active = true
	t.fading = true
	t.counter = CrossFadeLen
	t.shadowK = prevK
	t.shadowN = prevN
	t.shadow = nil // caller installs the actual prior codec pair
}

// tick decrements the cross-fade counter by one source packet, flipping
// to the second half at the midpoint and clearing transition state at
// zero.
func (t *transitionState) tick() {
	if !t.active {
		return
	}
	t.counter--
	if t.fading && t.counter <= CrossFadeLen/2 {
		t.fading = false
		t.shadow = nil
	}
	if t.counter <= 0 {
		t.active = false
		t.shadow = nil
	}
}
