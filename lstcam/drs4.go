// Copyright 2015 Marc-Antoine Ruel. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package lstcam

import "math"

// LastReadout is the per-telescope, per-capacitor "last time this capacitor
// was read" state (§3). It must survive for the lifetime of a Reader.
type LastReadout [NumGains][NumPixels][NumCapacitorsPixel]uint64

// FirstCapacitorTable is the per-event fc[gain][logical pixel] table.
type FirstCapacitorTable [NumGains][NumPixels]uint16

// DRS4Corrector runs the three-stage correction pipeline (§4.3) and owns the
// mutable state that must persist across events for one telescope. It is not
// safe for concurrent use: a single goroutine drives one DRS4Corrector.
type DRS4Corrector struct {
	cfg      Config
	pedestal *PedestalTable

	lastReadout *LastReadout
	previousFC  *FirstCapacitorTable
	havePrevFC  bool
}

// NewDRS4Corrector builds a corrector with freshly-zeroed mutable state.
func NewDRS4Corrector(cfg Config, pedestal *PedestalTable) *DRS4Corrector {
	return &DRS4Corrector{
		cfg:         cfg,
		pedestal:    pedestal,
		lastReadout: &LastReadout{},
		previousFC:  &FirstCapacitorTable{},
	}
}

// Correct runs the full pipeline over w in place, given this event's fc
// table, the expected_pixels_id mapping (for the time-lapse module loop),
// the per-module Dragon counters, and whether this run predates
// LastRunWithOldFirmware.
func (d *DRS4Corrector) Correct(w *Waveform, fc FirstCapacitorTable, expectedPixelsID []int, counters []DragonCounters, oldFirmware bool) error {
	if d.cfg.ApplyPedestalCorrection {
		if d.pedestal == nil {
			return ErrMissingPedestal
		}
		pedestalSubtract(w, fc, d.pedestal)
	}
	if d.cfg.ApplyTimelapseCorrection {
		timelapseCorrect(w, fc, expectedPixelsID, counters, oldFirmware, d.lastReadout)
	}
	if d.cfg.ApplySpikeCorrection && d.havePrevFC {
		spikeACorrect(w, fc, *d.previousFC, oldFirmware)
	}

	*d.previousFC = fc
	d.havePrevFC = true
	return nil
}

// Finish trims the sample window, subtracts the telescope offset, and zeros
// broken pixels, returning the final R1 waveform. It must be called exactly
// once per event, after Correct.
func (d *DRS4Corrector) Finish(w *Waveform) *Waveform {
	start, end := d.cfg.R1SampleStart, d.cfg.R1SampleEnd
	out := newWaveform(w.GainSelected, end-start)
	out.HardwareFailingPixels = w.HardwareFailingPixels
	out.BrokenPixels = w.BrokenPixels
	if w.GainSelected {
		out.SelectedGain = w.SelectedGain
	}
	offset := float32(d.cfg.Offset)
	for g := range w.Samples {
		for p := 0; p < NumPixels; p++ {
			if w.BrokenPixels[p] {
				continue // left at zero
			}
			for s := start; s < end; s++ {
				out.Samples[g][p][s-start] = w.Samples[g][p][s] - offset
			}
		}
	}
	return out
}

// pedestalSubtract implements §4.3.1.
func pedestalSubtract(w *Waveform, fc FirstCapacitorTable, pedestal *PedestalTable) {
	for p := 0; p < NumPixels; p++ {
		if w.GainSelected {
			g := w.SelectedGain[p]
			if g < 0 {
				continue
			}
			f := int(fc[g][p])
			for s := 0; s < len(w.Samples[0][p]); s++ {
				w.Samples[0][p][s] -= pedestal.value(int(g), p, f+s)
			}
			continue
		}
		for g := 0; g < NumGains; g++ {
			f := int(fc[g][p])
			for s := 0; s < len(w.Samples[g][p]); s++ {
				w.Samples[g][p][s] -= pedestal.value(g, p, f+s)
			}
		}
	}
}

// pedTime is the fixed power-law baseline drift model.
func pedTime(dtMs float64) float64 {
	return 32.99*math.Pow(dtMs, -0.22) - 11.9
}

// sampleCapacitorOffsets returns, for the given firmware variant, the 40
// capacitor offsets relative to fc that correspond to waveform sample
// indices 0..39 (§4.3.2(C)).
func sampleCapacitorOffsets(oldFirmware bool) [NumSamples]int {
	var offs [NumSamples]int
	shift := 0
	if oldFirmware {
		shift = -1
	}
	for i := range offs {
		offs[i] = i + shift
	}
	return offs
}

// timelapseCorrect implements §4.3.2, stages (A) and (B). Only stage (B)'s
// bookkeeping update (and stampExtra) is firmware-shifted; stage (A)'s
// baseline read always walks the unshifted capacitor range (§4.3.2(A),
// apply_timelapse_correction_pixel in the reference implementation).
func timelapseCorrect(w *Waveform, fc FirstCapacitorTable, expectedPixelsID []int, counters []DragonCounters, oldFirmware bool, lastReadout *LastReadout) {
	offsets := sampleCapacitorOffsets(oldFirmware)

	for m := 0; m < len(counters); m++ {
		tNow := counters[m].LocalClockCounter
		for k := 0; k < NumPixelsPerModule; k++ {
			idx := m*NumPixelsPerModule + k
			if idx >= len(expectedPixelsID) {
				continue
			}
			p := expectedPixelsID[idx]

			for g := 0; g < NumGains; g++ {
				f := int(fc[g][p])

				selected := !w.GainSelected || (w.SelectedGain[p] >= 0 && int(w.SelectedGain[p]) == g)
				wg := g
				if w.GainSelected {
					wg = 0
				}

				// (A) baseline correction — only applied to the gain actually
				// present in the waveform. Unshifted regardless of firmware.
				if selected {
					for s := 0; s < NumSamples; s++ {
						c := mod4096(f + s)
						prev := lastReadout[g][p][c]
						if prev > 0 {
							dtMs := float64(tNow-prev) / ClockFrequencyKHz
							if dtMs < 100 {
								corr := float32(pedTime(dtMs))
								cur := w.Samples[wg][p][s]
								if corr > cur {
									corr = cur
								}
								w.Samples[wg][p][s] -= corr
							}
						}
					}
				}

				// (B) last-readout update — always performed for both gains,
				// even when only one is present in the waveform (the hardware
				// clocked both regardless of what was kept downstream).
				for s := 0; s < NumSamples; s++ {
					c := mod4096(f + offsets[s])
					lastReadout[g][p][c] = tNow
				}
				stampExtra(lastReadout, g, p, f, k, oldFirmware, tNow)
			}
		}
	}
}

// stampExtra implements the even-channel "extra capacitors" hardware quirk
// of §4.3.2(B)/(C).
func stampExtra(lastReadout *LastReadout, g, p, f, k int, oldFirmware bool, tNow uint64) {
	if k%2 != 0 {
		return
	}
	fMod := f % NumCapacitorsChannel
	channelOfF := f / NumCapacitorsChannel

	start := f + NumCapacitorsChannel
	if oldFirmware {
		start = f + NumCapacitorsChannel - 1
	}

	lowBound := 767
	if oldFirmware {
		lowBound = 766
	}

	switch {
	case fMod > lowBound && fMod < 1013:
		for i := 0; i < 12; i++ {
			lastReadout[g][p][mod4096(start+i)] = tNow
		}
	case fMod >= 1013:
		end := (channelOfF + 2) * NumCapacitorsChannel
		for c := start; c < end; c++ {
			lastReadout[g][p][mod4096(c)] = tNow
		}
	}
}

func mod4096(v int) int {
	v %= NumCapacitorsPixel
	if v < 0 {
		v += NumCapacitorsPixel
	}
	return v
}

// spikeACorrect implements §4.3.3.
func spikeACorrect(w *Waveform, fc, fcPrev FirstCapacitorTable, oldFirmware bool) {
	maxLastCapChannel := 511
	if oldFirmware {
		maxLastCapChannel = 510
	}

	for p := 0; p < NumPixels; p++ {
		gains := []int{0, 1}
		if w.GainSelected {
			if w.SelectedGain[p] < 0 {
				continue
			}
			gains = []int{int(w.SelectedGain[p])}
		}
		for _, g := range gains {
			wg := g
			if w.GainSelected {
				wg = 0
			}
			fcCur := int(fc[g][p])
			fcPr := int(fcPrev[g][p])

			lastCap := mod4096(fcPr + NumSamples - 1)
			if lastCap%2 != 0 || lastCap%NumCapacitorsChannel > maxLastCapChannel {
				continue
			}

			for _, absPos := range spikeCandidates(fcPr, oldFirmware) {
				pos := mod4096(absPos - fcCur)
				if pos <= 2 || pos >= 38 {
					continue
				}
				w0 := w.Samples[wg][p][pos-1]
				w3 := w.Samples[wg][p][pos+2]
				w.Samples[wg][p][pos] = w0 + 0.33*(w3-w0)
				w.Samples[wg][p][pos+1] = w0 + 0.66*(w3-w0)
			}
		}
	}
}

// spikeCandidates returns the 8 candidate absolute positions for a given
// previous first-capacitor and firmware variant (§4.3.3).
func spikeCandidates(fcPrev int, oldFirmware bool) []int {
	out := make([]int, 0, 8)
	for k := 0; k < 4; k++ {
		var case1, case2 int
		if oldFirmware {
			case1 = NumCapacitorsChannel - NumSamples - 2 - fcPrev + k*NumCapacitorsChannel + NumCapacitorsPixel
			case2 = NumSamples - 2 + fcPrev + k*NumCapacitorsChannel
		} else {
			case1 = NumCapacitorsChannel + 1 - NumSamples - 2 - fcPrev + k*NumCapacitorsChannel + NumCapacitorsPixel
			case2 = NumSamples - 1 + fcPrev + k*NumCapacitorsChannel
		}
		out = append(out, case1, case2)
	}
	return out
}
