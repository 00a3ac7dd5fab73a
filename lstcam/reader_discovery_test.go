// Copyright 2015 Marc-Antoine Ruel. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package lstcam

import (
	"os"
	"path/filepath"
	"testing"
)

// pathOpener returns a fake OpenSourceFunc that opens a sliceSource keyed by
// file path, so tests can exercise NewReaderFromPaths/AddSource.
func pathOpener(t *testing.T, events map[string][]uint64) OpenSourceFunc {
	return func(path string) (EventSource, error) {
		ids, ok := events[path]
		if !ok {
			t.Fatalf("unexpected open of %s", path)
		}
		return newSliceSource(1, ids...), nil
	}
}

// TestNewReaderFromPathsDiscoversSubruns covers the all_subruns wiring end
// to end: two on-disk subrun files sharing a run segment are both opened
// and merged, not just the one path given to the reader.
func TestNewReaderFromPathsDiscoversSubruns(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "1Run2008.0000.fits.fz")
	b := filepath.Join(dir, "1Run2008.0001.fits.fz")
	if err := os.WriteFile(a, nil, 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(b, nil, 0644); err != nil {
		t.Fatal(err)
	}

	cfg := DefaultConfig()
	cfg.ApplyDRS4Corrections = false
	cfg.AllSubruns = true

	open := pathOpener(t, map[string][]uint64{
		a: {1, 3},
		b: {2, 4},
	})

	r, err := NewReaderFromPaths(cfg, []string{a}, open)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()

	if r.Len() != 4 {
		t.Fatalf("Len() = %d, want 4 (both subrun files opened)", r.Len())
	}
	if !r.WantsFile(filepath.Join(dir, "1Run2008.0002.fits.fz")) {
		t.Fatal("expected reader to want a later subrun of the same run/stream")
	}
	if r.WantsFile(filepath.Join(dir, "2Run2008.0002.fits.fz")) {
		t.Fatal("expected reader to reject a different stream when AllStreams is false")
	}
}

// TestReaderAddSourceMidStream covers a file discovered after the reader
// was already open (the watcher's use case): it must be admitted and its
// events merged into subsequent Next() calls.
func TestReaderAddSourceMidStream(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "1Run2008.0000.fits.fz")
	b := filepath.Join(dir, "1Run2008.0001.fits.fz")
	if err := os.WriteFile(a, nil, 0644); err != nil {
		t.Fatal(err)
	}

	cfg := DefaultConfig()
	cfg.ApplyDRS4Corrections = false
	cfg.AllSubruns = true

	open := pathOpener(t, map[string][]uint64{
		a: {1, 3},
		b: {2},
	})

	r, err := NewReaderFromPaths(cfg, []string{a}, open)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()

	if !r.WantsFile(b) {
		t.Fatal("expected reader to want the newly discovered subrun")
	}
	if err := r.AddSource(b, open); err != nil {
		t.Fatal(err)
	}

	events, err := ReadAll(r)
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 3 {
		t.Fatalf("got %d events, want 3", len(events))
	}
	ids := []uint64{events[0].Info.EventID, events[1].Info.EventID, events[2].Info.EventID}
	want := []uint64{1, 2, 3}
	for i := range want {
		if ids[i] != want[i] {
			t.Fatalf("got %v, want %v", ids, want)
		}
	}
}
