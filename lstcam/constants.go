// Copyright 2015 Marc-Antoine Ruel. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package lstcam reads a stream of LSTCam camera events from one or more
// input files and applies the DRS4 correction pipeline to produce calibrated
// R1 waveforms.
package lstcam

// Fixed camera geometry. These never change for a given camera generation.
const (
	NumGains             = 2
	NumModules           = 265
	NumPixelsPerModule   = 7
	NumPixels            = NumModules * NumPixelsPerModule // 1855
	NumCapacitorsChannel = 1024
	NumCapacitorsPixel   = 4 * NumCapacitorsChannel // 4096
	NumSamples           = 40
	NumChannelsModule    = 8 // 8 DRS4 channels per module, only 7 carry a pixel.

	HighGain = 0
	LowGain  = 1

	ClockFrequencyKHz = 133e3
)

// LastRunWithOldFirmware is the boundary run id: runs at or below this value
// use the old-firmware time-lapse/spike-A formulas (see drs4.go).
const LastRunWithOldFirmware = 1574

// channelOrderHighGain and channelOrderLowGain map pixel-in-module (0..6) to
// the DRS4 channel carrying that pixel's high/low gain reading, per the
// Dragon v5 board data format.
var (
	channelOrderHighGain = [NumPixelsPerModule]int{0, 0, 1, 1, 2, 2, 3}
	channelOrderLowGain  = [NumPixelsPerModule]int{4, 4, 5, 5, 6, 6, 7}
)

// NoFFHeuristicDateUnix is the run-start date, as a Unix timestamp, on or after
// which the flatfield ADC-range heuristic defaults to disabled. Runs taken
// from 2022-01-01T00:00:00Z onward are assumed to carry reliable flatfield
// tagging upstream and no longer need the heuristic override.
const NoFFHeuristicDateUnix = 1640995200
