// Package config loads pipeline parameters from JSON files. Fields omitted
// from a file retain their defaults through the Get* accessors, so partial
// configs are safe.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ebsd-data/linescan.report/internal/linescan"
)

// PipelineConfig is the on-disk form of the pipeline parameters. Pointer
// fields distinguish "unset" from an explicit value; use the Get* methods
// for defaulted access.
type PipelineConfig struct {
	// QuantizationStep is the distance grid step, in the distance unit of
	// the input data.
	QuantizationStep *float64 `json:"quantization_step,omitempty"`
	// TrimPolicy is "none" or "trim_to_average_max".
	TrimPolicy *string `json:"trim_policy,omitempty"`
	// BaselineWindow is the trailing window length, in distance units, used
	// for the baseline statistics.
	BaselineWindow *float64 `json:"baseline_window,omitempty"`
}

// LoadPipelineConfig loads a PipelineConfig from a JSON file. The path must
// have a .json extension and the file must be under the size cap.
func LoadPipelineConfig(path string) (*PipelineConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := &PipelineConfig{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks that the configured values are usable.
func (c *PipelineConfig) Validate() error {
	if c.QuantizationStep != nil && *c.QuantizationStep <= 0 {
		return fmt.Errorf("quantization_step must be positive, got %g", *c.QuantizationStep)
	}
	if c.TrimPolicy != nil {
		if _, err := linescan.ParseTrimPolicy(*c.TrimPolicy); err != nil {
			return fmt.Errorf("invalid trim_policy: %w", err)
		}
	}
	if c.BaselineWindow != nil && *c.BaselineWindow < 0 {
		return fmt.Errorf("baseline_window must be non-negative, got %g", *c.BaselineWindow)
	}
	return nil
}

// GetQuantizationStep returns the quantization_step value or the default.
func (c *PipelineConfig) GetQuantizationStep() float64 {
	if c.QuantizationStep == nil {
		return 0.2
	}
	return *c.QuantizationStep
}

// GetTrimPolicy returns the trim_policy value or the default. Invalid names
// fall back to the default; Validate rejects them up front.
func (c *PipelineConfig) GetTrimPolicy() linescan.TrimPolicy {
	if c.TrimPolicy == nil {
		return linescan.TrimToAverageMax
	}
	p, err := linescan.ParseTrimPolicy(*c.TrimPolicy)
	if err != nil {
		return linescan.TrimToAverageMax
	}
	return p
}

// GetBaselineWindow returns the baseline_window value or the default.
func (c *PipelineConfig) GetBaselineWindow() float64 {
	if c.BaselineWindow == nil {
		return 50
	}
	return *c.BaselineWindow
}

// Pipeline converts the on-disk config to the core pipeline Config.
func (c *PipelineConfig) Pipeline() linescan.Config {
	return linescan.Config{
		Step:           c.GetQuantizationStep(),
		Trim:           c.GetTrimPolicy(),
		BaselineWindow: c.GetBaselineWindow(),
	}
}
