// Copyright 2015 Marc-Antoine Ruel. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package lstcam

import "log"

// classifyEventType implements §4.4's exact-match classifier.
func classifyEventType(bits TriggerBits) EventType {
	if bits&TriggerPhysics != 0 && bits&^TriggerPhysics == 0 {
		return EventTypeSubarray
	}
	switch bits {
	case TriggerCalibration, TriggerCalibration | TriggerMono:
		return EventTypeFlatfield
	case TriggerPedestal:
		return EventTypeSkyPedestal
	case TriggerSinglePE:
		return EventTypeSinglePE
	default:
		return EventTypeUnknown
	}
}

// triggerBitsForEvent selects TIB or UCTS trigger bits: whichever record is
// present, or the configured default source when both are. It logs the
// UCTS-unreliable warning when UCTS is the default source and applicable.
func triggerBitsForEvent(info *EventInfo, source TriggerSource) (TriggerBits, bool) {
	switch {
	case info.UCTS != nil && (source == TriggerSourceUCTS || info.TIB == nil):
		if source == TriggerSourceUCTS && info.UCTS.TriggerType == 42 {
			log.Printf(warnUCTSUnreliable+" (event_id=%d)", info.EventID)
		}
		return info.UCTS.TriggerBits(), true
	case info.TIB != nil:
		return info.TIB.TriggerBits(), true
	}
	return 0, false
}

// fillTriggerInfo determines info.EventType from the configured trigger
// source, logging a warning for unclassifiable trigger bit patterns.
func fillTriggerInfo(info *EventInfo, cfg Config) {
	bits, ok := triggerBitsForEvent(info, cfg.DefaultTriggerType)
	if !ok {
		info.EventType = EventTypeUnknown
		return
	}
	info.EventType = classifyEventType(bits)
	if info.EventType == EventTypeUnknown {
		log.Printf(warnUnknownEventType+" (event_id=%d, bits=%#x)", info.EventID, bits)
	}
}

// tagFlatfieldEvents implements the ADC-range heuristic override (§4.4),
// reversible in both directions: an event that qualifies is tagged
// FLATFIELD, and an event already tagged FLATFIELD (by its trigger bits or
// otherwise) that does not qualify is set to UNKNOWN.
func tagFlatfieldEvents(info *EventInfo, w *Waveform, cfg Config) {
	total := 0
	inRange := 0
	for p := 0; p < NumPixels; p++ {
		if w.BrokenPixels[p] {
			continue
		}
		gain := HighGain
		if w.GainSelected {
			if w.SelectedGain[p] < 0 {
				continue
			}
			gain = int(w.SelectedGain[p])
		}
		wg := gain
		if w.GainSelected {
			wg = 0
		}
		sum := float32(0)
		for _, v := range w.Samples[wg][p] {
			sum += v
		}
		total++
		if float64(sum) >= cfg.MinFlatfieldADC && float64(sum) <= cfg.MaxFlatfieldADC {
			inRange++
		}
	}

	looksLikeFlatfield := total > 0 && float64(inRange) >= cfg.MinFlatfieldPixelFraction*float64(total)
	switch {
	case looksLikeFlatfield:
		info.EventType = EventTypeFlatfield
	case info.EventType == EventTypeFlatfield:
		info.EventType = EventTypeUnknown
	}
}
