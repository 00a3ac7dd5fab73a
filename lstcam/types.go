// Copyright 2015 Marc-Antoine Ruel. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package lstcam

import "io"

// PixelStatus is a per-hardware-pixel bitmask describing what the camera
// actually stored for that pixel this event.
type PixelStatus uint8

// Bits of PixelStatus. Bits 0 and 1 are reserved by the hardware and carry no
// meaning the core interprets.
const (
	PixelStatusReserved0      PixelStatus = 1 << 0
	PixelStatusReserved1      PixelStatus = 1 << 1
	PixelStatusHighGainStored PixelStatus = 1 << 2
	PixelStatusLowGainStored  PixelStatus = 1 << 3
	PixelStatusSaturated      PixelStatus = 1 << 4
	PixelStatusTrigger1       PixelStatus = 1 << 5
	PixelStatusTrigger2       PixelStatus = 1 << 6
	PixelStatusTrigger3       PixelStatus = 1 << 7

	PixelStatusBothGainsStored = PixelStatusHighGainStored | PixelStatusLowGainStored
)

// channelInfo returns the (has_high, has_low) bits of a pixel status as a
// small 0..3 code: bit 0 is high gain, bit 1 is low gain.
func (s PixelStatus) channelInfo() int {
	return int(s&PixelStatusBothGainsStored) >> 2
}

func (s PixelStatus) hasHighGain() bool { return s&PixelStatusHighGainStored != 0 }
func (s PixelStatus) hasLowGain() bool  { return s&PixelStatusLowGainStored != 0 }
func (s PixelStatus) broken() bool      { return !s.hasHighGain() && !s.hasLowGain() }

// TriggerBits is the 7-bit trigger classification set carried by TIB/UCTS.
type TriggerBits uint8

const (
	TriggerMono         TriggerBits = 1 << 0
	TriggerStereo       TriggerBits = 1 << 1
	TriggerCalibration  TriggerBits = 1 << 2
	TriggerSinglePE     TriggerBits = 1 << 3
	TriggerSoftware     TriggerBits = 1 << 4
	TriggerPedestal     TriggerBits = 1 << 5
	TriggerSlowControl  TriggerBits = 1 << 6
	TriggerPhysics                  = TriggerMono | TriggerStereo
	TriggerOther                    = TriggerCalibration | TriggerSinglePE | TriggerSoftware | TriggerPedestal | TriggerSlowControl
)

// EventType is the classifier's output (§4.4).
type EventType int

const (
	EventTypeUnknown EventType = iota
	EventTypeSubarray
	EventTypeFlatfield
	EventTypeSkyPedestal
	EventTypeSinglePE
)

func (t EventType) String() string {
	switch t {
	case EventTypeSubarray:
		return "SUBARRAY"
	case EventTypeFlatfield:
		return "FLATFIELD"
	case EventTypeSkyPedestal:
		return "SKY_PEDESTAL"
	case EventTypeSinglePE:
		return "SINGLE_PE"
	default:
		return "UNKNOWN"
	}
}

// TriggerSource selects which subsystem's trigger bits drive classification.
type TriggerSource int

const (
	TriggerSourceUCTS TriggerSource = iota
	TriggerSourceTIB
)

// CameraConfig is the per-run configuration record, read once per input
// file. All per-run geometry (expected_pixels_id, expected_modules_id) comes
// from here.
type CameraConfig struct {
	ConfigurationID  uint64
	TelescopeID      int
	NumPixels        int
	NumSamples       int
	NumModules       int
	ExpectedPixelsID []int // length NumPixels, hardware index -> logical pixel id
	ExpectedModules  []int
	IdaqVersion      uint32
	CdhsVersion      uint32
	Algorithms       string
	RunID            int64
	DateUnix         int64 // run-start date, seconds since epoch
}

// RawEvent is the decoded shape of one camera event message, as delivered by
// an EventSource. The wire codec that produces this shape is an external
// collaborator; this module only consumes the decoded fields.
type RawEvent struct {
	EventID          uint64
	TelEventID       uint64
	ConfigurationID  uint64
	PedestalID       uint64
	PixelStatus      []PixelStatus // hardware-pixel order, len == file's n_pixels
	Waveform         []uint16      // packed (2,n_pixels,NumSamples) or (n_pixels,NumSamples) flat
	GainSelectedFile bool          // true if Waveform is already (n_pixels,NumSamples)
	FirstCapacitorID []uint16      // len NumModules*NumChannelsModule
	ModuleStatus     []uint8       // len NumModules
	ExtDevicesPresence uint8       // bit0=TIB, bit1=UCTS, bit2=SWAT
	TIBData          []byte
	CDTSData         []byte
	SWATData         []byte
	Counters         []byte // packed DragonCounters, one per module
	ChipsFlags       []uint8
	DRSTagStatus     []uint8
	DRSTag           []uint8
}

// EventSource yields camera events in ascending event_id order from a single
// input. It is the Go-native contract the "wire format reader" external
// collaborator must satisfy; this module does not implement a concrete
// protobuf-zfits decoder (see fake.go for the synthetic implementation used
// by tests and the CLI's -simulate mode).
type EventSource interface {
	io.Closer
	// NextEvent returns the next event in ascending event_id order, or
	// io.EOF when exhausted.
	NextEvent() (*RawEvent, error)
	// Config returns the CameraConfig read from this source, if any.
	Config() (*CameraConfig, bool)
	// Rewind resets the source to its first event.
	Rewind() error
	// Len returns the total number of event rows in this source.
	Len() int
}

// Waveform holds a reordered, logically-indexed R0/R1 sample tensor.
//
// When GainSelected is false, Samples is addressed [gain][pixel][sample] with
// shape (NumGains, NumPixels, n) and SelectedGain is nil. When GainSelected is
// true, Samples is addressed [0][pixel][sample] (gain axis collapsed) and
// SelectedGain[pixel] holds which gain was kept, or -1 for absent/broken
// pixels.
type Waveform struct {
	GainSelected bool
	Samples      [][][]float32 // [gain or 1][pixel][sample]
	SelectedGain []int8        // len NumPixels, only valid if GainSelected
	HardwareFailingPixels [NumGains][NumPixels]bool
	BrokenPixels          [NumPixels]bool
}

// newWaveform allocates a Waveform with nSamples columns, either in
// both-gains or gain-selected shape.
func newWaveform(gainSelected bool, nSamples int) *Waveform {
	w := &Waveform{GainSelected: gainSelected}
	gains := NumGains
	if gainSelected {
		gains = 1
		w.SelectedGain = make([]int8, NumPixels)
		for i := range w.SelectedGain {
			w.SelectedGain[i] = -1
		}
	}
	w.Samples = make([][][]float32, gains)
	for g := range w.Samples {
		w.Samples[g] = make([][]float32, NumPixels)
		for p := range w.Samples[g] {
			w.Samples[g][p] = make([]float32, nSamples)
		}
	}
	return w
}

// EventInfo is the per-event structured metadata record produced by the
// assembler and enriched by the orchestrator.
type EventInfo struct {
	EventID         uint64
	TelEventID      uint64
	ConfigurationID uint64
	PedestalID      uint64
	ModuleStatus    []uint8
	PixelStatus     []PixelStatus // hardware order, as delivered

	TIB  *TIBRecord
	UCTS *UCTSRecord
	SWAT *SWATRecord

	DragonCounters []DragonCounters

	EventType    EventType
	TimeShift    []float32 // len NumPixels, set only if time calibration loaded
	UCTSJump     bool
}
