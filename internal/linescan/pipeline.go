package linescan

import (
	"fmt"

	"github.com/ebsd-data/linescan.report/internal/monitoring"
)

// Config are the policy parameters of one pipeline run. The variant
// behaviours of the analysis (trim vs no-trim, baseline window size) are
// configuration, not separate code paths.
type Config struct {
	// Step is the quantization step of the distance axis, in the distance
	// unit of the input data.
	Step float64
	// Trim selects how the unified axis is bounded.
	Trim TrimPolicy
	// BaselineWindow is the length of the trailing window, in distance
	// units, over which baseline statistics are computed.
	BaselineWindow float64
}

// DefaultConfig returns the standard pipeline parameters: 0.2 distance units
// per grid cell, trim to the average per-scan maximum, 50 distance units of
// baseline window.
func DefaultConfig() Config {
	return Config{
		Step:           0.2,
		Trim:           TrimToAverageMax,
		BaselineWindow: 50,
	}
}

// Validate checks the configuration for values the pipeline cannot run with.
func (c Config) Validate() error {
	if c.Step <= 0 {
		return fmt.Errorf("quantization step must be positive, got %g", c.Step)
	}
	if c.BaselineWindow < 0 {
		return fmt.Errorf("baseline window must be non-negative, got %g", c.BaselineWindow)
	}
	return nil
}

// Report is the full output of one pipeline run: the aligned table, the trim
// limit (nil under TrimNone), the deformation statistics, and any soft
// warnings accumulated along the way.
type Report struct {
	Config      Config
	Table       Table
	TrimLimit   *float64
	Deformation Deformation
	Warnings    []Warning
}

// Run executes the whole pipeline over one batch of raw scans: normalise
// each scan, unify the distance axes, average point-wise, and analyse the
// averaged trace. Fatal errors abort with no report; soft conditions are
// logged and accumulated on the report.
//
// A scan left with no present values after cleaning is excluded from the run
// entirely: it contributes neither axis points nor a column. The exclusion
// is reported as a warning.
func Run(scans []RawScan, cfg Config) (*Report, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("pipeline config: %w", err)
	}
	if len(scans) == 0 {
		return nil, fmt.Errorf("pipeline: empty scan set: %w", ErrNoValidData)
	}

	var warnings []Warning
	normalized := make([]NormalizedScan, 0, len(scans))
	for _, raw := range scans {
		ns, ws := Normalize(raw, cfg.Step)
		warnings = append(warnings, ws...)
		if !ns.HasValues() {
			warnings = append(warnings, Warning{Scan: raw.Label, Message: "no usable points after cleaning; scan excluded"})
			continue
		}
		normalized = append(normalized, ns)
	}
	for _, w := range warnings {
		monitoring.Logf("WARNING: %s", w)
	}
	if len(normalized) == 0 {
		return nil, fmt.Errorf("pipeline: no scan has usable points: %w", ErrNoValidData)
	}

	axis, limit, err := UnifyAxis(normalized, cfg.Trim)
	if err != nil {
		return nil, err
	}

	table := Average(normalized, axis)
	deformation := AnalyzeDeformation(table.Trace(), cfg.BaselineWindow)

	return &Report{
		Config:      cfg,
		Table:       table,
		TrimLimit:   limit,
		Deformation: deformation,
		Warnings:    warnings,
	}, nil
}
