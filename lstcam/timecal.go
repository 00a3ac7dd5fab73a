// Copyright 2015 Marc-Antoine Ruel. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package lstcam

import (
	"fmt"
	"math"

	"gonum.org/v1/hdf5"
)

// TimeCalibration holds the DRS4 time-correction Fourier coefficients,
// addressed [gain][pixel][harmonic].
type TimeCalibration struct {
	harmonics int
	fan       [NumGains][NumPixels][]float32
	fbn       [NumGains][NumPixels][]float32
}

// LoadTimeCalibration reads the `fan`/`fbn` datasets from an HDF5
// time-calibration file.
func LoadTimeCalibration(path string) (*TimeCalibration, error) {
	f, err := hdf5.OpenFile(path, hdf5.F_ACC_RDONLY)
	if err != nil {
		return nil, fmt.Errorf("lstcam: opening time calibration file %s: %w", path, err)
	}
	defer f.Close()

	fan, h, err := readFourierDataset(f, "fan")
	if err != nil {
		return nil, err
	}
	fbn, h2, err := readFourierDataset(f, "fbn")
	if err != nil {
		return nil, err
	}
	if h != h2 {
		return nil, fmt.Errorf("lstcam: time calibration file %s: fan/fbn harmonic count mismatch (%d vs %d)", path, h, h2)
	}

	tc := &TimeCalibration{harmonics: h}
	for g := 0; g < NumGains; g++ {
		for p := 0; p < NumPixels; p++ {
			base := (g*NumPixels + p) * h
			tc.fan[g][p] = fan[base : base+h]
			tc.fbn[g][p] = fbn[base : base+h]
		}
	}
	return tc, nil
}

func readFourierDataset(f *hdf5.File, name string) ([]float32, int, error) {
	dset, err := f.OpenDataset(name)
	if err != nil {
		return nil, 0, fmt.Errorf("lstcam: opening dataset %s: %w", name, err)
	}
	defer dset.Close()

	space := dset.Space()
	dims, _, err := space.SimpleExtentDims()
	if err != nil {
		return nil, 0, fmt.Errorf("lstcam: reading dataset %s dims: %w", name, err)
	}
	if len(dims) != 3 {
		return nil, 0, fmt.Errorf("lstcam: dataset %s has %d dims, want 3", name, len(dims))
	}
	harmonics := int(dims[2])

	total := int(dims[0] * dims[1] * dims[2])
	data := make([]float32, total)
	if err := dset.Read(&data); err != nil {
		return nil, 0, fmt.Errorf("lstcam: reading dataset %s: %w", name, err)
	}
	return data, harmonics, nil
}

// timeCorrection evaluates the truncated Fourier series for one (gain,
// pixel) at the given first-capacitor value.
func (tc *TimeCalibration) timeCorrection(gain, pixel int, fc uint16) float32 {
	if tc == nil {
		return 0
	}
	const omega = 2 * math.Pi / NumCapacitorsChannel
	var total float64
	for h := 0; h < tc.harmonics; h++ {
		angle := float64(h) * omega * float64(fc)
		total += float64(tc.fan[gain][pixel][h])*math.Cos(angle) + float64(tc.fbn[gain][pixel][h])*math.Sin(angle)
	}
	return float32(total)
}
