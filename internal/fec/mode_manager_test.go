package fec

import (
	"testing"
	"time"
)

func TestLossEstimatorEmergencyTriggersExtreme(t *testing.T) {
	mm := NewModeManager(1.2, 0.5, 0.1)
	est := NewLossEstimator(0.1, 20, nil)

	est.ReportLoss(18, 20)
	mode, _, prev := mm.Update(est.EstimatedLoss(), time.Now())

	if mode != ModeExtreme {
		t.Fatalf("mode = %v, want Extreme", mode)
	}
	if prev == nil {
		t.Fatal("expected a transition on emergency override")
	}
}

func TestModeManagerDwellGateBlocksRapidChanges(t *testing.T) {
	mm := NewModeManager(1.2, 0.5, 0.1)
	now := time.Now()

	// First update seeds lastChange via a forced transition.
	mm.Update(0.80, now)

	// A wildly different estimate moments later should not move the
	// mode again before min_dwell elapses.
	mode, _, prev := mm.Update(0.0, now.Add(10*time.Millisecond))
	if prev != nil {
		t.Fatalf("expected no transition within dwell window, got prev=%+v", prev)
	}
	if mode != ModeExtreme {
		t.Fatalf("mode changed during dwell window: got %v", mode)
	}
}

func TestModeManagerSettlesUnderSteadyLowLoss(t *testing.T) {
	mm := NewModeManager(1.2, 0.5, 0.1)
	now := time.Now()

	for i := 0; i < 50; i++ {
		now = now.Add(600 * time.Millisecond)
		mm.Update(0.0, now)
	}
	if mm.Mode() != ModeZero {
		t.Fatalf("mode under sustained zero loss = %v, want Zero", mm.Mode())
	}
}

func TestCrossFadeCounterReachesZeroAfterFullWindow(t *testing.T) {
	var ts transitionState
	ts.start(ModeLight, 8, 9, nil)
	for i := 0; i < CrossFadeLen; i++ {
		ts.tick()
	}
	if ts.active {
		t.Fatal("expected transition to clear after CrossFadeLen ticks")
	}
}

func TestCrossFadeShadowReleasedAtHalfway(t *testing.T) {
	var ts transitionState
	ts.start(ModeLight, 8, 9, nil)
	ts.shadow = &codecPair{} // stand-in, just checking release timing
	for i := 0; i < CrossFadeLen/2; i++ {
		ts.tick()
	}
	if ts.fading {
		t.Fatal("expected fading to end at the halfway mark")
	}
	if ts.shadow != nil {
		t.Fatal("expected shadow to be released at the halfway mark")
	}
}
