// Copyright 2015 Marc-Antoine Ruel. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package lstcam

import "testing"

// TestSelectAndCalibrateMatchesPreselected covers scenario 6: selecting gain
// from a both-gains waveform must produce the same calibrated samples as a
// file that arrived already gain-selected with the same underlying values.
func TestSelectAndCalibrateMatchesPreselected(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SelectGain = true
	cfg.GainSelectionThreshold = 3000
	cfg.CalibScaleHighGain = 1
	cfg.CalibScaleLowGain = 1

	var fc FirstCapacitorTable

	// Pixel 0: high gain saturates (above threshold), so low gain should be
	// selected. Pixel 1: high gain stays low, so high gain should be selected.
	both := newWaveform(false, 4)
	for s := 0; s < 4; s++ {
		both.Samples[HighGain][0][s] = 3500 + float32(s)
		both.Samples[LowGain][0][s] = 200 + float32(s)
		both.Samples[HighGain][1][s] = 100 + float32(s)
		both.Samples[LowGain][1][s] = 50 + float32(s)
	}

	preselected := newWaveform(true, 4)
	preselected.SelectedGain[0] = LowGain
	preselected.SelectedGain[1] = HighGain
	for s := 0; s < 4; s++ {
		preselected.Samples[0][0][s] = both.Samples[LowGain][0][s]
		preselected.Samples[0][1][s] = both.Samples[HighGain][1][s]
	}

	outBoth, _ := selectAndCalibrate(both, fc, nil, nil, cfg)
	outPre, _ := selectAndCalibrate(preselected, fc, nil, nil, cfg)

	if !outBoth.GainSelected || !outPre.GainSelected {
		t.Fatal("expected both outputs to be gain-selected")
	}
	for p := 0; p < 2; p++ {
		if outBoth.SelectedGain[p] != outPre.SelectedGain[p] {
			t.Fatalf("pixel %d: selected gain mismatch: %d vs %d", p, outBoth.SelectedGain[p], outPre.SelectedGain[p])
		}
		for s := 0; s < 4; s++ {
			a, b := outBoth.Samples[0][p][s], outPre.Samples[0][p][s]
			if a != b {
				t.Fatalf("pixel %d sample %d: %v != %v", p, s, a, b)
			}
		}
	}
}

func TestSelectAndCalibrateAppliesDcToPe(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SelectGain = false
	cfg.CalibScaleHighGain = 1
	cfg.CalibScaleLowGain = 1

	var cal Calibration
	cal.dcToPe[HighGain][0] = 2.0

	w := newWaveform(false, 1)
	w.Samples[HighGain][0][0] = 10

	out, _ := selectAndCalibrate(w, FirstCapacitorTable{}, &cal, nil, cfg)
	if out.Samples[HighGain][0][0] != 20 {
		t.Fatalf("got %v, want 20", out.Samples[HighGain][0][0])
	}
}
