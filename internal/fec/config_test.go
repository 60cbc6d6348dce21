package fec

import "testing"

func TestParseConfigAppliesModeOverrides(t *testing.T) {
	doc := []byte(`
[adaptive_fec]
lambda = 0.05

[[adaptive_fec.modes]]
name = "light"
w0 = 20

[[adaptive_fec.modes]]
name = "extreme"
w0 = 2048
`)
	cfg, err := Parse(doc)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.Lambda != 0.05 {
		t.Fatalf("Lambda = %v, want 0.05", cfg.Lambda)
	}
	if len(cfg.Modes) != 2 {
		t.Fatalf("Modes = %v, want 2 entries", cfg.Modes)
	}

	mm := NewModeManager(cfg.PID.Kp, cfg.PID.Ki, cfg.PID.Kd)
	cfg.ApplyTo(mm)
	if mm.initWindow[ModeLight] != 20 {
		t.Fatalf("Light initial window = %d, want 20", mm.initWindow[ModeLight])
	}
	if mm.initWindow[ModeExtreme] != 2048 {
		t.Fatalf("Extreme initial window = %d, want 2048", mm.initWindow[ModeExtreme])
	}
}

func TestDefaultConfigMatchesDocumentedDefaults(t *testing.T) {
	cfg, err := Parse([]byte(``))
	if err != nil {
		t.Fatalf("Parse empty doc: %v", err)
	}
	if cfg.Lambda != 0.1 {
		t.Fatalf("default Lambda = %v, want 0.1", cfg.Lambda)
	}
	if cfg.BurstWindow != 20 {
		t.Fatalf("default BurstWindow = %v, want 20", cfg.BurstWindow)
	}
	if cfg.PID.Kp != 1.2 || cfg.PID.Ki != 0.5 || cfg.PID.Kd != 0.1 {
		t.Fatalf("default PID = %+v", cfg.PID)
	}
}
