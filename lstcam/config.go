// Copyright 2015 Marc-Antoine Ruel. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package lstcam

// Config holds all the reader's tunable options, mirroring §6 of the
// specification. Pass a zero Config to NewReader only after populating it
// from DefaultConfig; the zero value of every bool defaults to "off", which
// does not match the spec's defaults.
type Config struct {
	ApplyDRS4Corrections         bool
	ApplyPedestalCorrection      bool
	ApplyTimelapseCorrection     bool
	ApplySpikeCorrection         bool

	Offset         int
	R1SampleStart  int
	R1SampleEnd    int

	SelectGain             bool
	GainSelectionThreshold float64

	CalibScaleHighGain float64
	CalibScaleLowGain  float64

	CalibrationPath         string
	DRS4PedestalPath        string
	DRS4TimeCalibrationPath string
	PedestalIDsPath         string

	DefaultTriggerType TriggerSource

	// UseFlatfieldHeuristic, if nil, auto-decides based on the run-start date
	// (enabled for runs before 2022-01-01). Set explicitly to override.
	UseFlatfieldHeuristic *bool

	MinFlatfieldADC          float64
	MaxFlatfieldADC          float64
	MinFlatfieldPixelFraction float64

	AllStreams bool
	AllSubruns bool
}

// DefaultConfig returns a Config populated with every default from §6.
func DefaultConfig() Config {
	return Config{
		ApplyDRS4Corrections:     true,
		ApplyPedestalCorrection:  true,
		ApplyTimelapseCorrection: true,
		ApplySpikeCorrection:     true,

		Offset:        400,
		R1SampleStart: 3,
		R1SampleEnd:   39,

		SelectGain:             true,
		GainSelectionThreshold: 3500,

		CalibScaleHighGain: 1.0,
		CalibScaleLowGain:  1.0,

		DefaultTriggerType: TriggerSourceUCTS,

		MinFlatfieldADC:           3000,
		MaxFlatfieldADC:           12000,
		MinFlatfieldPixelFraction: 0.8,
	}
}

// wantsFlatfieldHeuristic resolves the auto default against a run date.
func (c *Config) wantsFlatfieldHeuristic(runDateUnix int64) bool {
	if c.UseFlatfieldHeuristic != nil {
		return *c.UseFlatfieldHeuristic
	}
	return runDateUnix < NoFFHeuristicDateUnix
}
