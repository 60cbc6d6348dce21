package fec

import (
	"testing"
	"time"
)

type recordingTransport struct {
	sent [][]byte
}

func (r *recordingTransport) Send(payload []byte) error {
	cp := append([]byte(nil), payload...)
	r.sent = append(r.sent, cp)
	return nil
}

func (r *recordingTransport) Stats() (sent, lost uint64, rtt time.Duration) {
	return uint64(len(r.sent)), 0, 0
}

func TestAdaptiveFecSystematicFirstOrdering(t *testing.T) {
	transport := &recordingTransport{}
	a := NewAdaptiveFec(64, 1500, 0.1, 20, nil, 1.2, 0.5, 0.1, WithTransport(transport))

	payload := make([]byte, 64)
	payload[0] = 0xAB
	if err := a.OnSend(payload); err != nil {
		t.Fatalf("OnSend: %v", err)
	}

	if len(transport.sent) == 0 {
		t.Fatal("expected at least one frame sent")
	}
	first := transport.sent[0]
	if first[0] != 1 {
		t.Fatalf("first emitted frame flag = %d, want 1 (systematic)", first[0])
	}
}

func TestAdaptiveFecReportLossInstallsTransition(t *testing.T) {
	transport := &recordingTransport{}
	a := NewAdaptiveFec(256, 1500, 0.1, 20, nil, 1.2, 0.5, 0.1, WithTransport(transport))

	a.ReportLoss(18, 20) // emergency override: loss ratio 0.9

	if a.modes.Mode() != ModeExtreme {
		t.Fatalf("mode after emergency loss report = %v, want Extreme", a.modes.Mode())
	}
	if !a.transition.active {
		t.Fatal("expected a transition to be installed after an emergency override")
	}
}
