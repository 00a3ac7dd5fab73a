// Copyright 2015 Marc-Antoine Ruel. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package lstcam

import "testing"

func TestClassifyEventType(t *testing.T) {
	cases := []struct {
		bits TriggerBits
		want EventType
	}{
		{0b0000_0001, EventTypeSubarray},    // MONO
		{0b0000_0100, EventTypeFlatfield},   // CALIBRATION
		{0b0000_0101, EventTypeFlatfield},   // CALIBRATION|MONO
		{0b0010_0000, EventTypeSkyPedestal}, // PEDESTAL
		{0b0001_0000, EventTypeUnknown},     // SOFTWARE
		{0b0000_1000, EventTypeSinglePE},    // SINGLE_PE
		{0b0000_0011, EventTypeSubarray},    // MONO|STEREO
	}
	for _, c := range cases {
		if got := classifyEventType(c.bits); got != c.want {
			t.Errorf("classifyEventType(%#b) = %v, want %v", c.bits, got, c.want)
		}
	}
}

func TestTagFlatfieldEventsReversible(t *testing.T) {
	cfg := DefaultConfig()
	w := newWaveform(false, NumSamples)
	for p := 0; p < NumPixels; p++ {
		for s := 0; s < NumSamples; s++ {
			w.Samples[HighGain][p][s] = 150 // sum = 6000, within [3000,12000]
		}
	}

	info := &EventInfo{EventType: EventTypeUnknown}
	tagFlatfieldEvents(info, w, cfg)
	if info.EventType != EventTypeFlatfield {
		t.Fatalf("EventType = %v, want FLATFIELD", info.EventType)
	}

	for p := 0; p < NumPixels; p++ {
		for s := 0; s < NumSamples; s++ {
			w.Samples[HighGain][p][s] = 0
		}
	}
	tagFlatfieldEvents(info, w, cfg)
	if info.EventType != EventTypeUnknown {
		t.Fatalf("EventType = %v, want UNKNOWN after reversal", info.EventType)
	}
}
