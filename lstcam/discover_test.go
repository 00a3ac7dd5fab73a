// Copyright 2015 Marc-Antoine Ruel. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package lstcam

import (
	"os"
	"path/filepath"
	"testing"
)

func TestParseSubrunName(t *testing.T) {
	stream, run, subrun, ok := ParseSubrunName("/data/1Run2008.0000.fits.fz")
	if !ok || stream != 1 || run != 2008 || subrun != 0 {
		t.Fatalf("got (%d, %d, %d, %v)", stream, run, subrun, ok)
	}
	if _, _, _, ok := ParseSubrunName("not-a-camera-file.bin"); ok {
		t.Fatal("expected no match")
	}
}

func writeEmpty(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, nil, 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDiscoverSiblingFilesSubrunsOnly(t *testing.T) {
	dir := t.TempDir()
	writeEmpty(t, dir, "1Run2008.0000.fits.fz")
	writeEmpty(t, dir, "1Run2008.0001.fits.fz")
	writeEmpty(t, dir, "2Run2008.0000.fits.fz") // different stream
	writeEmpty(t, dir, "1Run2009.0000.fits.fz") // different run

	got, err := DiscoverSiblingFiles(filepath.Join(dir, "1Run2008.0000.fits.fz"), false, true)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{
		filepath.Join(dir, "1Run2008.0000.fits.fz"),
		filepath.Join(dir, "1Run2008.0001.fits.fz"),
	}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestDiscoverSiblingFilesAllStreams(t *testing.T) {
	dir := t.TempDir()
	writeEmpty(t, dir, "1Run2008.0000.fits.fz")
	writeEmpty(t, dir, "2Run2008.0000.fits.fz")
	writeEmpty(t, dir, "3Run2009.0000.fits.fz")

	got, err := DiscoverSiblingFiles(filepath.Join(dir, "1Run2008.0000.fits.fz"), true, false)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("got %v, want 2 entries", got)
	}
}

func TestDiscoverSiblingFilesNoConvention(t *testing.T) {
	got, err := DiscoverSiblingFiles("/tmp/whatever.bin", true, true)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0] != "/tmp/whatever.bin" {
		t.Fatalf("got %v", got)
	}
}
