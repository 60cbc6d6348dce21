package integration

import (
	"context"
	"testing"

	"go.uber.org/zap"
)

func TestFECIntegrationStartStop(t *testing.T) {
	logger, _ := zap.NewDevelopment()

	fi := NewFECIntegration(logger, 0.2)

	if err := fi.Initialize(); err != nil {
		t.Fatalf("Failed to initialize integration: %v", err)
	}

	if fi.IsActive() {
		t.Error("Integration should not be active before Start")
	}

	if err := fi.Start(context.Background()); err != nil {
		t.Fatalf("Failed to start integration: %v", err)
	}

	if !fi.IsActive() {
		t.Error("Integration should be active after Start")
	}

	if err := fi.Stop(); err != nil {
		t.Fatalf("Failed to stop integration: %v", err)
	}

	if fi.IsActive() {
		t.Error("Integration should not be active after Stop")
	}
}

func TestFECIntegrationRedundancyHint(t *testing.T) {
	logger, _ := zap.NewDevelopment()

	fi := NewFECIntegration(logger, 0.1)
	_ = fi.Initialize()
	_ = fi.Start(context.Background())
	defer fi.Stop()

	if got := fi.GetRedundancy(); got != 0.1 {
		t.Errorf("GetRedundancy() = %v, want 0.1", got)
	}

	if err := fi.SetRedundancy(0.3); err != nil {
		t.Fatalf("SetRedundancy() error: %v", err)
	}
	if got := fi.GetRedundancy(); got != 0.3 {
		t.Errorf("GetRedundancy() after SetRedundancy = %v, want 0.3", got)
	}
}
