package fec

import "testing"

func TestLossEstimatorEMASmoothing(t *testing.T) {
	est := NewLossEstimator(0.5, 20, nil)
	est.ReportLoss(0, 10) // r=0
	if got := est.EstimatedLoss(); got != 0 {
		t.Fatalf("estimated loss after all-success sample = %v, want 0", got)
	}

	est.ReportLoss(10, 10) // r=1, ema = 0.5*1 + 0.5*0 = 0.5
	if got := est.EstimatedLoss(); got < 0.49 || got > 0.51 {
		t.Fatalf("estimated loss = %v, want ~0.5", got)
	}
}

func TestLossEstimatorBurstOverridesEMA(t *testing.T) {
	est := NewLossEstimator(0.01, 10, nil)
	// Long steady low-loss history keeps the EMA small...
	for i := 0; i < 100; i++ {
		est.ReportLoss(0, 10)
	}
	// ...then a sudden burst should be reflected immediately via the
	// burst window even though the EMA barely moves.
	est.ReportLoss(10, 10)
	if got := est.EstimatedLoss(); got < 0.5 {
		t.Fatalf("estimated loss after burst = %v, want burst window to dominate", got)
	}
}

func TestKalmanFilterConvergesToConstantMeasurement(t *testing.T) {
	kf := newKalmanFilter(0.001, 0.01)
	var out float64
	for i := 0; i < 200; i++ {
		out = kf.update(0.2)
	}
	if out < 0.18 || out > 0.22 {
		t.Fatalf("kalman estimate = %v, want ~0.2", out)
	}
}
