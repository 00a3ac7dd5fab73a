// Copyright 2015 Marc-Antoine Ruel. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package lstcam

import "testing"

func TestReaderWithFakeSourceNoCorrections(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ApplyDRS4Corrections = false

	src := NewFakeSource(5, 0)
	r, err := NewReader(cfg, []EventSource{src})
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()

	events, err := ReadAll(r)
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 5 {
		t.Fatalf("got %d events, want 5", len(events))
	}
	for i, ev := range events {
		if ev.Info.EventID != uint64(i+1) {
			t.Fatalf("event %d: EventID = %d, want %d", i, ev.Info.EventID, i+1)
		}
		if ev.Waveform.GainSelected {
			t.Fatalf("event %d: expected non-gain-selected waveform", i)
		}
		if len(ev.Waveform.Samples[HighGain][0]) != NumSamples {
			t.Fatalf("event %d: sample count = %d, want %d (corrections disabled)", i, len(ev.Waveform.Samples[HighGain][0]), NumSamples)
		}
	}
}

func TestReaderStampsLastReadoutFromClock(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ApplyPedestalCorrection = false
	cfg.ApplySpikeCorrection = false

	src := NewFakeSource(3, 0)
	r, err := NewReader(cfg, []EventSource{src})
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()

	if _, err := ReadAll(r); err != nil {
		t.Fatal(err)
	}

	lr := r.corrector.lastReadout
	for g := 0; g < NumGains; g++ {
		for p := 0; p < 5; p++ {
			for c := 0; c < NumCapacitorsPixel; c++ {
				if lr[g][p][c] != 0 && lr[g][p][c] < 1000 {
					t.Fatalf("last_readout[%d][%d][%d] = %d looks unset for a touched capacitor", g, p, c, lr[g][p][c])
				}
			}
		}
	}
}

func TestEventIDZeroSkipped(t *testing.T) {
	a := newSliceSource(1, 0, 1, 0, 2)
	cfg := DefaultConfig()
	cfg.ApplyDRS4Corrections = false
	r, err := NewReader(cfg, []EventSource{a})
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()

	events, err := ReadAll(r)
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2 (event_id==0 skipped)", len(events))
	}
	if events[0].Info.EventID != 1 || events[1].Info.EventID != 2 {
		t.Fatalf("unexpected event ids: %d, %d", events[0].Info.EventID, events[1].Info.EventID)
	}
}
