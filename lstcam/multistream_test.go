// Copyright 2015 Marc-Antoine Ruel. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package lstcam

import (
	"io"
	"testing"
)

// sliceSource is a minimal EventSource backed by a fixed slice of event ids,
// used to exercise the merger without a real file.
type sliceSource struct {
	ids    []uint64
	pos    int
	cfg    CameraConfig
	closed bool
}

func newSliceSource(configID uint64, ids ...uint64) *sliceSource {
	return &sliceSource{ids: ids, cfg: CameraConfig{ConfigurationID: configID, ExpectedPixelsID: []int{0}}}
}

func (s *sliceSource) Config() (*CameraConfig, bool) { return &s.cfg, true }
func (s *sliceSource) Len() int                      { return len(s.ids) }
func (s *sliceSource) Close() error                  { s.closed = true; return nil }
func (s *sliceSource) Rewind() error                 { s.pos = 0; return nil }

func (s *sliceSource) NextEvent() (*RawEvent, error) {
	if s.pos >= len(s.ids) {
		return nil, io.EOF
	}
	ev := &RawEvent{EventID: s.ids[s.pos]}
	s.pos++
	return ev, nil
}

func TestMultiStreamMergesByEventID(t *testing.T) {
	a := newSliceSource(1, 1, 3, 5)
	b := newSliceSource(1, 2, 4, 6)

	m, err := OpenMultiStream([]EventSource{a, b})
	if err != nil {
		t.Fatal(err)
	}
	defer m.Close()

	if got := m.Len(); got != 6 {
		t.Fatalf("Len() = %d, want 6", got)
	}

	var got []uint64
	for {
		ev, err := m.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatal(err)
		}
		got = append(got, ev.EventID)
	}

	want := []uint64{1, 2, 3, 4, 5, 6}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestMultiStreamConfigMismatch(t *testing.T) {
	a := newSliceSource(1, 1)
	b := newSliceSource(2, 2)
	if _, err := OpenMultiStream([]EventSource{a, b}); err == nil {
		t.Fatal("expected ConfigMismatch error")
	}
}

func TestMultiStreamAddSource(t *testing.T) {
	a := newSliceSource(1, 1, 5)
	m, err := OpenMultiStream([]EventSource{a})
	if err != nil {
		t.Fatal(err)
	}
	defer m.Close()

	b := newSliceSource(1, 2, 3)
	if err := m.AddSource(b); err != nil {
		t.Fatal(err)
	}
	if m.NumInputs() != 2 {
		t.Fatalf("NumInputs() = %d, want 2", m.NumInputs())
	}

	var got []uint64
	for {
		ev, err := m.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatal(err)
		}
		got = append(got, ev.EventID)
	}
	want := []uint64{1, 2, 3, 5}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestMultiStreamAddSourceConfigMismatch(t *testing.T) {
	a := newSliceSource(1, 1)
	m, err := OpenMultiStream([]EventSource{a})
	if err != nil {
		t.Fatal(err)
	}
	defer m.Close()

	b := newSliceSource(2, 2)
	if err := m.AddSource(b); err == nil {
		t.Fatal("expected ConfigMismatch error")
	}
	if m.NumInputs() != 1 {
		t.Fatalf("NumInputs() = %d, want 1 (mismatched source must not be admitted)", m.NumInputs())
	}
}

func TestMultiStreamEmptyInputs(t *testing.T) {
	if _, err := OpenMultiStream(nil); err != ErrEmptyInputs {
		t.Fatalf("err = %v, want ErrEmptyInputs", err)
	}
}
