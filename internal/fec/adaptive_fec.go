package fec

import (
	"context"
	"time"

	"github.com/Christopher-Schulze/QuicFuscate-sub000/internal/telemetry"

	"go.uber.org/zap"
)

// Transport is the minimal contract the façade needs from the
// underlying connection: emit a payload, and report loss statistics.
type Transport interface {
	Send(payload []byte) error
	Stats() (sent, lost uint64, rtt time.Duration)
}

// Stealth lets a collaborator rewrite datagrams in and out of the
// engine, e.g. for traffic obfuscation. Both methods are pass-through
// by default.
type Stealth interface {
	ProcessOutgoing(payload []byte) []byte
	ProcessIncoming(payload []byte) []byte
}

// Crypto seals/opens payloads at the boundary of the engine. The
// no-op default passes bytes through unchanged.
type Crypto interface {
	Seal(plaintext []byte) []byte
	Open(ciphertext []byte) ([]byte, error)
}

// noopTransport, noopStealth and noopCrypto are pass-through defaults
// so AdaptiveFec is never parameterized over an uninstantiable type,
// usable standalone in tests and demo binaries.
type noopTransport struct{}

func (noopTransport) Send(payload []byte) error                         { return nil }
func (noopTransport) Stats() (sent, lost uint64, rtt time.Duration)     { return 0, 0, 0 }

type noopStealth struct{}

func (noopStealth) ProcessOutgoing(payload []byte) []byte { return payload }
func (noopStealth) ProcessIncoming(payload []byte) []byte { return payload }

type noopCrypto struct{}

func (noopCrypto) Seal(plaintext []byte) []byte            { return plaintext }
func (noopCrypto) Open(ciphertext []byte) ([]byte, error) { return ciphertext, nil }

// AdaptiveFec is the public façade binding the coding pipeline to the
// adaptive control loop: pool, primary/shadow codec pairs, loss
// estimator, mode manager, and transition controller.
type AdaptiveFec struct {
	pool      *Pool
	estimator *LossEstimator
	modes     *ModeManager
	log       *zap.Logger

	transport Transport
	stealth   Stealth
	crypto    Crypto

	primary    *codecPair
	primaryK   int
	primaryN   int
	transition transitionState

	nextSourceID  uint64
	nextRepairIdx int

	telemetry *Telemetry
	tracer    *telemetry.TelemetryManager
}

// AdaptiveFecOption configures optional collaborators at construction.
type AdaptiveFecOption func(*AdaptiveFec)

func WithTransport(t Transport) AdaptiveFecOption { return func(a *AdaptiveFec) { a.transport = t } }
func WithStealth(s Stealth) AdaptiveFecOption     { return func(a *AdaptiveFec) { a.stealth = s } }
func WithCrypto(c Crypto) AdaptiveFecOption       { return func(a *AdaptiveFec) { a.crypto = c } }
func WithLogger(l *zap.Logger) AdaptiveFecOption  { return func(a *AdaptiveFec) { a.log = l } }
func WithTelemetry(t *Telemetry) AdaptiveFecOption {
	return func(a *AdaptiveFec) { a.telemetry = t }
}

// WithTracer attaches an OpenTelemetry tracer; when set, every mode
// transition is wrapped in its own span via RecordFECModeTransition.
func WithTracer(tm *telemetry.TelemetryManager) AdaptiveFecOption {
	return func(a *AdaptiveFec) { a.tracer = tm }
}

// NewAdaptiveFec constructs the façade starting in ModeZero, with the
// given pool capacity/block size and PID gains.
func NewAdaptiveFec(poolCapacity, blockSize int, lambda float64, burstWindow int, kalman *kalmanFilter, pidKp, pidKi, pidKd float64, opts ...AdaptiveFecOption) *AdaptiveFec {
	pool := NewPool(poolCapacity, blockSize)
	modes := NewModeManager(pidKp, pidKi, pidKd)
	k, n := modes.Params()

	a := &AdaptiveFec{
		pool:      pool,
		estimator: NewLossEstimator(lambda, burstWindow, kalman),
		modes:     modes,
		log:       zap.NewNop(),
		transport: noopTransport{},
		stealth:   noopStealth{},
		crypto:    noopCrypto{},
		primary:   newCodecPair(modes.Mode(), k, n, pool),
		primaryK:  k,
		primaryN:  n,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// OnSend enqueues a source payload: the systematic packet is dispatched
// verbatim first, then any due repair packets, matching the
// systematic-first ordering invariant.
func (a *AdaptiveFec) OnSend(payload []byte) error {
	id := a.nextSourceID
	a.nextSourceID++

	pkt := NewSystematicPacket(id, payload, a.pool)

	if err := a.emit(pkt); err != nil {
		return err
	}

	// ModeZero carries a zero-size window: FEC is fully disabled and the
	// encoder/shadow never see a source packet, matching spec.md's
	// Zero-mode window range of (0, 0).
	if a.primaryK > 0 {
		a.primary.addSource(pkt.CloneForEncoder(a.pool))
	}
	if a.transition.active && a.transition.shadow != nil && a.transition.shadowK > 0 {
		// During the first half of the fade the shadow also receives
		// every source, so its own repair packets stay correct.
		a.transition.shadow.addSource(pkt.CloneForEncoder(a.pool))
	}

	if a.primaryK > 0 {
		repairs := a.primaryN - a.primaryK
		for j := 0; j < repairs; j++ {
			if rp := a.primary.generateRepair(j, a.pool); rp != nil {
				if err := a.emit(rp); err != nil {
					return err
				}
				if a.telemetry != nil {
					a.telemetry.IncEncoded()
				}
			}
		}
	}

	if a.transition.active && a.transition.fading && a.transition.shadow != nil && a.transition.shadowK > 0 {
		shadowRepairs := a.transition.shadowN - a.transition.shadowK
		for j := 0; j < shadowRepairs; j++ {
			if rp := a.transition.shadow.generateRepair(j, a.pool); rp != nil {
				if err := a.emit(rp); err != nil {
					return err
				}
			}
		}
	}

	if a.telemetry != nil {
		a.telemetry.IncEncoded()
	}

	a.transition.tick()
	return nil
}

func (a *AdaptiveFec) emit(pkt *Packet) error {
	buf := make([]byte, pkt.requiredWireLen())
	if _, err := pkt.Serialize(buf); err != nil {
		return err
	}
	buf = a.stealth.ProcessOutgoing(buf)
	buf = a.crypto.Seal(buf)
	return a.transport.Send(buf)
}

// OnReceive feeds an incoming datagram to the primary decoder (and the
// shadow decoder, if one is fading) and returns every newly reconstructed
// systematic packet.
func (a *AdaptiveFec) OnReceive(id uint64, raw []byte) ([]*Packet, error) {
	raw, err := a.crypto.Open(raw)
	if err != nil {
		return nil, err
	}
	raw = a.stealth.ProcessIncoming(raw)

	pkt, err := ParsePacket(id, raw, a.pool)
	if err != nil {
		return nil, err
	}

	var recovered []*Packet

	wasDecoded := a.primary.isDecoded()
	if _, err := a.primary.addToDecoder(pkt); err != nil {
		return nil, err
	}
	if !wasDecoded && a.primary.isDecoded() {
		recovered = append(recovered, a.primary.drainDecoded()...)
		if a.telemetry != nil {
			a.telemetry.IncDecoded()
		}
	}

	if a.transition.active && a.transition.fading && a.transition.shadow != nil {
		shadowClone := pkt.CloneForEncoder(a.pool)
		wasShadowDecoded := a.transition.shadow.isDecoded()
		if _, err := a.transition.shadow.addToDecoder(shadowClone); err == nil {
			if !wasShadowDecoded && a.transition.shadow.isDecoded() {
				recovered = append(recovered, a.transition.shadow.drainDecoded()...)
			}
		}
	}

	return recovered, nil
}

// ReportLoss updates the loss estimator and applies the resulting
// mode/window decision, installing shadow state on a transition.
func (a *AdaptiveFec) ReportLoss(lost, total int) {
	a.estimator.ReportLoss(lost, total)
	estimated := a.estimator.EstimatedLoss()

	if a.telemetry != nil {
		a.telemetry.SetLossRatePermille(estimated * 1000)
	}

	mode, window, prev := a.modes.Update(estimated, time.Now())
	if prev == nil {
		return
	}

	a.log.Info("fec mode transition",
		zap.String("from", prev.mode.String()),
		zap.String("to", mode.String()),
		zap.Int("window", window),
	)

	var endSpan func()
	if a.tracer != nil {
		endSpan = a.tracer.RecordFECModeTransition(context.Background(), prev.mode.String(), mode.String(), window)
	}

	prevPair := a.primary
	prevK, prevN := a.primaryK, a.primaryN

	a.primaryK = window
	var ratio float64
	switch mode {
	case ModeZero:
		ratio = 1.00
	case ModeLight:
		ratio = 1.05
	case ModeNormal:
		ratio = 1.15
	case ModeMedium:
		ratio = 1.30
	case ModeStrong:
		ratio = 1.50
	case ModeExtreme:
		ratio = 2.00
	}
	a.primaryN = ceilInt(float64(window) * ratio)
	a.primary = newCodecPair(mode, a.primaryK, a.primaryN, a.pool)

	a.transition.start(prev.mode, prevK, prevN, a.pool)
	a.transition.shadow = prevPair

	if a.telemetry != nil {
		a.telemetry.IncModeSwitch()
		a.telemetry.SetMode(mode.String())
		a.telemetry.SetWindow(window)
	}
	if endSpan != nil {
		endSpan()
	}
}

func ceilInt(v float64) int {
	i := int(v)
	if float64(i) < v {
		i++
	}
	return i
}
