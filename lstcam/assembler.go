// Copyright 2015 Marc-Antoine Ruel. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package lstcam

import "math"

// sentinelU16 fills logical slots that no hardware pixel targets, and marks
// a pixel as "broken this event" after reorder (§4.2).
const sentinelU16 = math.MaxUint16

// assemble reorders a raw event's hardware-ordered arrays into logical pixel
// order, detects gain selection, decodes external-device sub-records, and
// returns the R0/R1 waveform plus event metadata.
func assemble(cfg *CameraConfig, raw *RawEvent) (*Waveform, *EventInfo, error) {
	gainSelected := raw.GainSelectedFile
	if !gainSelected {
		gainSelected = detectGainSelected(raw.PixelStatus)
	}

	w, err := reorderWaveform(cfg, raw, gainSelected)
	if err != nil {
		return nil, nil, err
	}

	info, err := buildEventInfo(cfg, raw)
	if err != nil {
		return nil, nil, err
	}
	return w, info, nil
}

// detectGainSelected implements §4.2's "has_hi XOR has_lo for any pixel"
// rule.
func detectGainSelected(status []PixelStatus) bool {
	for _, s := range status {
		if s.hasHighGain() != s.hasLowGain() {
			return true
		}
	}
	return false
}

// reorderWaveform performs the hardware-to-logical pixel reorder, filling
// untargeted logical slots with the dtype-max sentinel and recording
// hardware-failing pixels.
func reorderWaveform(cfg *CameraConfig, raw *RawEvent, gainSelected bool) (*Waveform, error) {
	w := newWaveform(gainSelected, NumSamples)
	for g := 0; g < len(w.Samples); g++ {
		for p := 0; p < NumPixels; p++ {
			for s := 0; s < NumSamples; s++ {
				w.Samples[g][p][s] = float32(sentinelU16)
			}
		}
	}

	var targeted [NumPixels]bool
	defer func() {
		// Logical slots no hardware pixel reached (missing modules) keep the
		// sentinel and are recorded as hardware-failing and broken in both gains.
		for p := 0; p < NumPixels; p++ {
			if !targeted[p] {
				w.HardwareFailingPixels[HighGain][p] = true
				w.HardwareFailingPixels[LowGain][p] = true
				w.BrokenPixels[p] = true
			}
		}
	}()

	nHW := len(raw.PixelStatus)
	for i, p := range cfg.ExpectedPixelsID {
		if i >= nHW {
			break
		}
		targeted[p] = true
		status := raw.PixelStatus[i]
		hasHi, hasLo := status.hasHighGain(), status.hasLowGain()
		broken := !hasHi && !hasLo

		if gainSelected {
			off := i * NumSamples
			if off+NumSamples > len(raw.Waveform) {
				if broken {
					return nil, ErrShapeMismatch
				}
				continue
			}
			if broken {
				w.BrokenPixels[p] = true
				continue
			}
			selected := int8(LowGain)
			if hasHi {
				selected = HighGain
			}
			w.SelectedGain[p] = selected
			for s := 0; s < NumSamples; s++ {
				w.Samples[0][p][s] = float32(raw.Waveform[off+s])
			}
			continue
		}

		for g := 0; g < NumGains; g++ {
			off := (g*nHW + i) * NumSamples
			if off+NumSamples > len(raw.Waveform) {
				if broken {
					return nil, ErrShapeMismatch
				}
				continue
			}
			for s := 0; s < NumSamples; s++ {
				w.Samples[g][p][s] = float32(raw.Waveform[off+s])
			}
		}
		if broken {
			w.BrokenPixels[p] = true
		}
		if !hasHi {
			w.HardwareFailingPixels[HighGain][p] = true
		}
		if !hasLo {
			w.HardwareFailingPixels[LowGain][p] = true
		}
	}

	// Logical slots no hardware pixel reached (missing modules) keep the
	// sentinel and are recorded as hardware-failing and broken in both gains.
	for p := 0; p < NumPixels; p++ {
		if !targeted[p] {
			w.HardwareFailingPixels[HighGain][p] = true
			w.HardwareFailingPixels[LowGain][p] = true
			w.BrokenPixels[p] = true
		}
	}
	return w, nil
}

// buildEventInfo decodes the event's metadata and any present external
// device sub-records.
func buildEventInfo(cfg *CameraConfig, raw *RawEvent) (*EventInfo, error) {
	info := &EventInfo{
		EventID:         raw.EventID,
		TelEventID:      raw.TelEventID,
		ConfigurationID: raw.ConfigurationID,
		PedestalID:      raw.PedestalID,
		ModuleStatus:    raw.ModuleStatus,
		PixelStatus:     raw.PixelStatus,
	}

	if raw.ExtDevicesPresence&presenceTIB != 0 && len(raw.TIBData) > 0 {
		tib, err := decodeTIB(raw.TIBData)
		if err != nil {
			return nil, err
		}
		info.TIB = tib
	}
	if raw.ExtDevicesPresence&presenceUCTS != 0 && len(raw.CDTSData) > 0 {
		ucts, err := decodeUCTS(raw.CDTSData, cfg.IdaqVersion)
		if err != nil {
			return nil, err
		}
		info.UCTS = ucts
	}
	if raw.ExtDevicesPresence&presenceSWAT != 0 && len(raw.SWATData) > 0 {
		swat, err := decodeSWAT(raw.SWATData)
		if err != nil {
			return nil, err
		}
		info.SWAT = swat
	}
	if len(raw.Counters) > 0 {
		counters, err := decodeDragonCounters(raw.Counters, cfg.NumModules)
		if err != nil {
			return nil, err
		}
		info.DragonCounters = counters
	}
	return info, nil
}

// firstCapacitorTable expands a raw first_capacitor_id array into the
// fc[gain][logical pixel] table used throughout the DRS4 corrector (§3).
func firstCapacitorTable(cfg *CameraConfig, fcID []uint16) (fc [NumGains][NumPixels]uint16) {
	for m := 0; m < cfg.NumModules; m++ {
		for k := 0; k < NumPixelsPerModule; k++ {
			if m*NumPixelsPerModule+k >= len(cfg.ExpectedPixelsID) {
				continue
			}
			p := cfg.ExpectedPixelsID[m*NumPixelsPerModule+k]
			hiCh := channelOrderHighGain[k]
			loCh := channelOrderLowGain[k]
			base := m * NumChannelsModule
			if base+hiCh < len(fcID) {
				fc[HighGain][p] = fcID[base+hiCh]
			}
			if base+loCh < len(fcID) {
				fc[LowGain][p] = fcID[base+loCh]
			}
		}
	}
	return fc
}
