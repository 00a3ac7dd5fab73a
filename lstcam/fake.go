// Copyright 2015 Marc-Antoine Ruel. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package lstcam

import (
	"io"
	"math/rand"
)

// FakeSource is a synthetic EventSource standing in for a real
// protobuf-zfits file, for use in tests and the CLI's -simulate mode. It is
// cheezy but gets us going without a real camera file, in the same spirit as
// a hand-rolled noise generator.
type FakeSource struct {
	config      CameraConfig
	rnd         *rand.Rand
	count       int
	total       int
	eventIDBase uint64
	closed      bool
}

// NewFakeSource builds a deterministic synthetic source of n events, with a
// full, contiguous 265-module camera configuration.
func NewFakeSource(n int, eventIDBase uint64) *FakeSource {
	pix := make([]int, NumPixels)
	for i := range pix {
		pix[i] = i
	}
	mods := make([]int, NumModules)
	for i := range mods {
		mods[i] = i
	}
	return &FakeSource{
		config: CameraConfig{
			ConfigurationID:  1,
			TelescopeID:      1,
			NumPixels:        NumPixels,
			NumSamples:       NumSamples,
			NumModules:       NumModules,
			ExpectedPixelsID: pix,
			ExpectedModules:  mods,
			IdaqVersion:      40000,
			RunID:            2000,
		},
		rnd:         rand.New(rand.NewSource(0)),
		total:       n,
		eventIDBase: eventIDBase,
	}
}

// Config implements EventSource.
func (f *FakeSource) Config() (*CameraConfig, bool) { return &f.config, true }

// Len implements EventSource.
func (f *FakeSource) Len() int { return f.total }

// Close implements EventSource.
func (f *FakeSource) Close() error { f.closed = true; return nil }

// Rewind implements EventSource.
func (f *FakeSource) Rewind() error {
	f.count = 0
	f.rnd = rand.New(rand.NewSource(0))
	return nil
}

// NextEvent implements EventSource, synthesizing one full-camera event with
// a flat pedestal-like baseline plus noise, and monotonically advancing
// first-capacitor positions to exercise the time-lapse and spike-A kernels.
func (f *FakeSource) NextEvent() (*RawEvent, error) {
	if f.closed {
		return nil, io.ErrClosedPipe
	}
	if f.count >= f.total {
		return nil, io.EOF
	}
	f.count++

	nHW := f.config.NumPixels
	status := make([]PixelStatus, nHW)
	for i := range status {
		status[i] = PixelStatusBothGainsStored
	}

	waveform := make([]uint16, NumGains*nHW*NumSamples)
	for i := range waveform {
		waveform[i] = uint16(400 + f.rnd.Intn(20))
	}

	fcID := make([]uint16, NumModules*NumChannelsModule)
	step := uint16(f.count * 40 % NumCapacitorsPixel)
	for i := range fcID {
		fcID[i] = step
	}

	counters := make([]byte, NumModules*dragonCountersWireSize)
	for m := 0; m < NumModules; m++ {
		putDragonCounters(counters[m*dragonCountersWireSize:(m+1)*dragonCountersWireSize], uint64(f.count)*1000)
	}

	return &RawEvent{
		EventID:            f.eventIDBase + uint64(f.count),
		TelEventID:         f.eventIDBase + uint64(f.count),
		ConfigurationID:    f.config.ConfigurationID,
		PixelStatus:        status,
		Waveform:           waveform,
		FirstCapacitorID:   fcID,
		ModuleStatus:       make([]uint8, NumModules),
		ExtDevicesPresence: 0,
		Counters:           counters,
	}, nil
}

const dragonCountersWireSize = 2 + 4 + 4 + 4 + 8 // matches the DragonCounters wire layout

// putDragonCounters writes a minimal DragonCounters record with only
// LocalClockCounter populated, in WireOrder.
func putDragonCounters(b []byte, localClock uint64) {
	WireOrder.PutUint64(b[len(b)-8:], localClock)
}
