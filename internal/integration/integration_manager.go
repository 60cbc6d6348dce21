package integration

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// IntegrationManager owns the lifecycle of the FEC integration layered
// on top of quic-go connections.
type IntegrationManager struct {
	logger *zap.Logger

	fecIntegration *FECIntegration

	mu       sync.RWMutex
	isActive bool

	config *IntegrationConfig
}

// IntegrationConfig configures the managed integrations.
type IntegrationConfig struct {
	FECEnabled    bool    `json:"fec_enabled"`
	FECRedundancy float64 `json:"fec_redundancy"`

	EnableMetrics   bool          `json:"enable_metrics"`
	MetricsInterval time.Duration `json:"metrics_interval"`
}

// NewIntegrationManager creates a new integration manager.
func NewIntegrationManager(logger *zap.Logger, config *IntegrationConfig) *IntegrationManager {
	return &IntegrationManager{
		logger: logger,
		config: config,
	}
}

// Initialize initializes every configured integration.
func (im *IntegrationManager) Initialize() error {
	im.mu.Lock()
	defer im.mu.Unlock()

	im.logger.Info("Initializing integration manager")

	if im.config.FECEnabled {
		im.fecIntegration = NewFECIntegration(im.logger, im.config.FECRedundancy)
		if err := im.fecIntegration.Initialize(); err != nil {
			return fmt.Errorf("failed to initialize FEC: %w", err)
		}
		im.logger.Info("FEC integration initialized",
			zap.Float64("redundancy", im.config.FECRedundancy))
	}

	im.logger.Info("Integration manager initialized successfully")
	return nil
}

// Start starts every configured integration.
func (im *IntegrationManager) Start(ctx context.Context) error {
	im.mu.Lock()
	defer im.mu.Unlock()

	if im.isActive {
		return fmt.Errorf("integration manager is already active")
	}

	im.logger.Info("Starting integration manager")

	if im.fecIntegration != nil {
		if err := im.fecIntegration.Start(ctx); err != nil {
			return fmt.Errorf("failed to start FEC: %w", err)
		}
	}

	im.isActive = true
	im.logger.Info("Integration manager started successfully")

	return nil
}

// Stop stops every configured integration.
func (im *IntegrationManager) Stop() error {
	im.mu.Lock()
	defer im.mu.Unlock()

	if !im.isActive {
		return fmt.Errorf("integration manager is not active")
	}

	im.logger.Info("Stopping integration manager")

	if im.fecIntegration != nil {
		if err := im.fecIntegration.Stop(); err != nil {
			im.logger.Error("Failed to stop FEC", zap.Error(err))
		}
	}

	im.isActive = false
	im.logger.Info("Integration manager stopped")

	return nil
}

// GetFECIntegration returns the managed FEC integration.
func (im *IntegrationManager) GetFECIntegration() *FECIntegration {
	im.mu.RLock()
	defer im.mu.RUnlock()

	return im.fecIntegration
}

// IsActive reports whether the manager is active.
func (im *IntegrationManager) IsActive() bool {
	im.mu.RLock()
	defer im.mu.RUnlock()

	return im.isActive
}

// GetConfig returns the current configuration.
func (im *IntegrationManager) GetConfig() *IntegrationConfig {
	im.mu.RLock()
	defer im.mu.RUnlock()

	return im.config
}

// UpdateConfig replaces the configuration while inactive.
func (im *IntegrationManager) UpdateConfig(newConfig *IntegrationConfig) error {
	im.mu.Lock()
	defer im.mu.Unlock()

	if im.isActive {
		return fmt.Errorf("cannot update config while integration manager is active")
	}

	im.config = newConfig
	im.logger.Info("Integration manager config updated")

	return nil
}

// GetStatus returns the status of every managed integration.
func (im *IntegrationManager) GetStatus() map[string]interface{} {
	im.mu.RLock()
	defer im.mu.RUnlock()

	status := map[string]interface{}{
		"active": im.isActive,
		"config": im.config,
	}

	if im.fecIntegration != nil {
		status["fec"] = map[string]interface{}{
			"active":     im.fecIntegration.IsActive(),
			"redundancy": im.fecIntegration.GetRedundancy(),
		}
	}

	return status
}
