// Copyright 2015 Marc-Antoine Ruel. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package lstcam

import (
	"fmt"

	"github.com/astrogo/fitsio"
)

// pedestalExtend is the number of trailing samples copied from the start of
// each pixel's capacitor row, eliminating modulo wrap-around in the DRS4
// corrector's inner loop (§3).
const pedestalExtend = NumSamples

// PedestalTable is the immutable per-capacitor pedestal reference, loaded
// once per run and cached for the reader's lifetime.
type PedestalTable struct {
	// data is addressed [gain][pixel][capacitor], capacitor in
	// [0, NumCapacitorsPixel+pedestalExtend).
	data [NumGains][NumPixels][]int16
}

// value returns the pedestal for (gain, pixel, capacitor), where capacitor
// may run past NumCapacitorsPixel by up to pedestalExtend thanks to the
// trailing circular copy.
func (t *PedestalTable) value(gain, pixel, capacitor int) float32 {
	return float32(t.data[gain][pixel][capacitor])
}

// LoadPedestal reads a FITS pedestal reference file (HDU 1, shape
// (NumGains, NumPixels, NumCapacitorsPixel) int16), subtracts the optional
// constant offset, and appends the trailing circular copy.
func LoadPedestal(path string, offset int16) (*PedestalTable, error) {
	f, err := fitsio.Open(path)
	if err != nil {
		return nil, fmt.Errorf("lstcam: opening pedestal file %s: %w", path, err)
	}
	defer f.Close()

	hdus := f.HDUs()
	if len(hdus) < 2 {
		return nil, fmt.Errorf("lstcam: pedestal file %s has no HDU1 image", path)
	}
	img, ok := hdus[1].(fitsio.Image)
	if !ok {
		return nil, fmt.Errorf("lstcam: pedestal file %s HDU1 is not an image", path)
	}

	raw := make([]int16, NumGains*NumPixels*NumCapacitorsPixel)
	if err := img.Read(&raw); err != nil {
		return nil, fmt.Errorf("lstcam: reading pedestal file %s: %w", path, err)
	}

	var t PedestalTable
	for g := 0; g < NumGains; g++ {
		for p := 0; p < NumPixels; p++ {
			row := make([]int16, NumCapacitorsPixel+pedestalExtend)
			base := (g*NumPixels + p) * NumCapacitorsPixel
			for c := 0; c < NumCapacitorsPixel; c++ {
				row[c] = raw[base+c] - offset
			}
			copy(row[NumCapacitorsPixel:], row[:pedestalExtend])
			t.data[g][p] = row
		}
	}
	return &t, nil
}
