// Copyright 2015 Marc-Antoine Ruel. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package lstcam

import (
	"fmt"

	"gonum.org/v1/hdf5"
)

// Calibration holds the per-(gain, pixel) DC-to-photoelectron conversion
// factors used to convert a trimmed R1 waveform into calibrated units.
type Calibration struct {
	dcToPe [NumGains][NumPixels]float32
}

// LoadCalibration reads the per-pixel dc_to_pe factors from an HDF5
// calibration file.
func LoadCalibration(path string) (*Calibration, error) {
	f, err := hdf5.OpenFile(path, hdf5.F_ACC_RDONLY)
	if err != nil {
		return nil, fmt.Errorf("lstcam: opening calibration file %s: %w", path, err)
	}
	defer f.Close()

	dset, err := f.OpenDataset("dc_to_pe")
	if err != nil {
		return nil, fmt.Errorf("lstcam: opening dc_to_pe dataset in %s: %w", path, err)
	}
	defer dset.Close()

	flat := make([]float32, NumGains*NumPixels)
	if err := dset.Read(&flat); err != nil {
		return nil, fmt.Errorf("lstcam: reading dc_to_pe dataset in %s: %w", path, err)
	}

	var c Calibration
	for g := 0; g < NumGains; g++ {
		for p := 0; p < NumPixels; p++ {
			c.dcToPe[g][p] = flat[g*NumPixels+p]
		}
	}
	return &c, nil
}

// selectAndCalibrate converts a (2, NumPixels, n) R1 waveform to the
// gain-selected (NumPixels, n) form when cfg.SelectGain is set, applies the
// calib_scale_*_gain factors and the per-(gain,pixel) dc_to_pe factor, and
// records the DRS4 time-correction shift per pixel when a time calibration
// table is loaded.
func selectAndCalibrate(w *Waveform, fc FirstCapacitorTable, cal *Calibration, timeCal *TimeCalibration, cfg Config) (*Waveform, []float32) {
	var shift []float32
	if timeCal != nil {
		shift = make([]float32, NumPixels)
	}

	if !cfg.SelectGain || w.GainSelected {
		out := w
		for g := range out.Samples {
			for p := 0; p < NumPixels; p++ {
				gain := g
				if out.GainSelected {
					if out.SelectedGain[p] < 0 {
						continue
					}
					gain = int(out.SelectedGain[p])
				}
				scale := float32(cfg.CalibScaleHighGain)
				if gain == LowGain {
					scale = float32(cfg.CalibScaleLowGain)
				}
				factor := scale
				if cal != nil {
					factor *= cal.dcToPe[gain][p]
				}
				for s := range out.Samples[g][p] {
					out.Samples[g][p][s] *= factor
				}
				if timeCal != nil {
					shift[p] = timeCal.timeCorrection(gain, p, fc[gain][p])
				}
			}
		}
		return out, shift
	}

	out := newWaveform(true, len(w.Samples[0][0]))
	out.HardwareFailingPixels = w.HardwareFailingPixels
	out.BrokenPixels = w.BrokenPixels
	for p := 0; p < NumPixels; p++ {
		if w.BrokenPixels[p] {
			continue
		}
		gain := HighGain
		if maxOf(w.Samples[HighGain][p]) >= float32(cfg.GainSelectionThreshold) {
			gain = LowGain
		}
		out.SelectedGain[p] = int8(gain)
		scale := float32(cfg.CalibScaleHighGain)
		if gain == LowGain {
			scale = float32(cfg.CalibScaleLowGain)
		}
		factor := scale
		if cal != nil {
			factor *= cal.dcToPe[gain][p]
		}
		for s, v := range w.Samples[gain][p] {
			out.Samples[0][p][s] = v * factor
		}
		if timeCal != nil {
			shift[p] = timeCal.timeCorrection(gain, p, fc[gain][p])
		}
	}
	return out, shift
}

func maxOf(s []float32) float32 {
	m := float32(0)
	for i, v := range s {
		if i == 0 || v > m {
			m = v
		}
	}
	return m
}
