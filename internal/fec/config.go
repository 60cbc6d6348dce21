package fec

import (
	"fmt"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// FecConfig is the `[adaptive_fec]` TOML section, the engine's only
// externally-tunable state.
type FecConfig struct {
	Lambda        float64      `toml:"lambda"`
	BurstWindow   int          `toml:"burst_window"`
	Hysteresis    float64      `toml:"hysteresis"`
	PID           PIDConfig    `toml:"pid"`
	KalmanEnabled bool         `toml:"kalman_enabled"`
	KalmanQ       float64      `toml:"kalman_q"`
	KalmanR       float64      `toml:"kalman_r"`
	Modes         []ModeConfig `toml:"modes"`
}

// PIDConfig holds the controller gains.
type PIDConfig struct {
	Kp float64 `toml:"kp"`
	Ki float64 `toml:"ki"`
	Kd float64 `toml:"kd"`
}

// ModeConfig overrides a single mode's initial window.
type ModeConfig struct {
	Name string `toml:"name"`
	W0   int    `toml:"w0"`
}

// DefaultFecConfig returns the documented defaults.
func DefaultFecConfig() *FecConfig {
	return &FecConfig{
		Lambda:      0.1,
		BurstWindow: 20,
		Hysteresis:  0.02,
		PID:         PIDConfig{Kp: 1.2, Ki: 0.5, Kd: 0.1},
		KalmanQ:     0.001,
		KalmanR:     0.01,
	}
}

// Load reads path and parses its `[adaptive_fec]` section, falling back
// to documented defaults for any field not present.
func Load(path string) (*FecConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultFecConfig(), nil
		}
		return nil, fmt.Errorf("reading fec config: %w", err)
	}
	return Parse(data)
}

// Parse unmarshals a TOML document and overlays it on top of the
// documented defaults.
func Parse(data []byte) (*FecConfig, error) {
	type wrapper struct {
		AdaptiveFec FecConfig `toml:"adaptive_fec"`
	}
	w := wrapper{AdaptiveFec: *DefaultFecConfig()}
	if err := toml.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("parsing fec config: %w", err)
	}
	return &w.AdaptiveFec, nil
}

// modeNameToMode maps the TOML mode name strings to Mode values.
func modeNameToMode(name string) (Mode, bool) {
	switch strings.ToLower(name) {
	case "zero":
		return ModeZero, true
	case "light":
		return ModeLight, true
	case "normal":
		return ModeNormal, true
	case "medium":
		return ModeMedium, true
	case "strong":
		return ModeStrong, true
	case "extreme":
		return ModeExtreme, true
	default:
		return ModeZero, false
	}
}

// ApplyTo installs this config's window overrides and PID gains onto an
// existing ModeManager, and returns a configured LossEstimator.
func (c *FecConfig) ApplyTo(mm *ModeManager) *LossEstimator {
	mm.pid.kp, mm.pid.ki, mm.pid.kd = c.PID.Kp, c.PID.Ki, c.PID.Kd
	for _, mc := range c.Modes {
		if mode, ok := modeNameToMode(mc.Name); ok {
			mm.SetInitialWindow(mode, mc.W0)
		}
	}
	var kalman *kalmanFilter
	if c.KalmanEnabled {
		kalman = newKalmanFilter(c.KalmanQ, c.KalmanR)
	}
	return NewLossEstimator(c.Lambda, c.BurstWindow, kalman)
}
