// Copyright 2015 Marc-Antoine Ruel. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package lstcam

import (
	"bytes"
	"encoding/binary"
)

// WireOrder is the byte order used by the camera's fixed-layout sub-records
// (TIB, UCTS, SWAT, Dragon counters). It is a plain alias of
// binary.LittleEndian, named for symmetry with the internal Big16 type this
// package's decoding style is adapted from.
var WireOrder = binary.LittleEndian

// presence bits of RawEvent.ExtDevicesPresence.
const (
	presenceTIB  = 1 << 0
	presenceUCTS = 1 << 1
	presenceSWAT = 1 << 2
)

// idaqVersionUCTSExtended is the idaq_version boundary above which the UCTS
// sub-record uses the 11-field extended layout instead of the 7-field legacy
// one.
const idaqVersionUCTSExtended = 37201

// TIBRecord is the decoded Trigger Interface Board sub-record.
type TIBRecord struct {
	TriggerCounter    uint32
	Timestamp         uint64
	StereoPatternBits uint16
	MaskedTriggerBits uint8
	PpsCounter        uint16
	TenMHzCounter     uint32
}

// TriggerBits extracts the 7-bit trigger set from the masked trigger byte.
func (t *TIBRecord) TriggerBits() TriggerBits {
	return TriggerBits(t.MaskedTriggerBits & 0x7f)
}

// UCTSRecord is the decoded Central Trigger and Distribution System
// ("CDTS"/UCTS) sub-record, normalized across the legacy and extended wire
// layouts (§3).
type UCTSRecord struct {
	Timestamp            uint64
	AddressCounter       uint32
	EventCounter         uint32
	BusyCounter          uint32
	PpsCounter           uint32
	ClockCounter         uint32
	TriggerType          uint8
	StereoPatternBits    uint8
	CDTSVersion          uint32 // extended layout only
	NumInBunch           uint16 // extended layout only
	CameraTriggerCounter uint32 // extended layout only
	Extended             bool
}

type uctsLegacyWire struct {
	Timestamp               uint64
	AddressCounter          uint32
	EventCounter            uint32
	BusyCounter             uint32
	PpsCounter              uint32
	ClockCounter            uint32
	TriggerTypeAndPattern   uint16
}

type uctsExtendedWire struct {
	uctsLegacyWire
	CDTSVersion          uint32
	NumInBunch           uint16
	CameraTriggerCounter uint32
	TriggerCounter        uint32
}

// TriggerBits extracts the 7-bit trigger set from the UCTS trigger type byte.
func (u *UCTSRecord) TriggerBits() TriggerBits {
	return TriggerBits(u.TriggerType & 0x7f)
}

// SWATRecord is the decoded Slow Wave-form Array Trigger sub-record.
type SWATRecord struct {
	Timestamp           uint64
	CountersBitmask     uint32
	EventCounter        uint32
	EventRequestBitmask uint32
}

// DragonCounters is the per-module hardware counter block, unpacked
// unconditionally (no presence bit gates it) once per module per event.
type DragonCounters struct {
	PPSCounter        uint16
	TenMHzCounter     uint32
	EventCounter      uint32
	TriggerCounter    uint32
	LocalClockCounter uint64
}

// decodeTIB decodes a TIB sub-record, mirroring the teacher's
// binary.Read(bytes.NewBuffer(data), internal.Big16, &rowA) pattern.
func decodeTIB(blob []byte) (*TIBRecord, error) {
	var rec TIBRecord
	if err := binary.Read(bytes.NewReader(blob), WireOrder, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// decodeUCTS decodes a UCTS sub-record, choosing the legacy or extended
// layout by idaqVersion.
func decodeUCTS(blob []byte, idaqVersion uint32) (*UCTSRecord, error) {
	if idaqVersion > idaqVersionUCTSExtended {
		var w uctsExtendedWire
		if err := binary.Read(bytes.NewReader(blob), WireOrder, &w); err != nil {
			return nil, err
		}
		return &UCTSRecord{
			Timestamp:            w.Timestamp,
			AddressCounter:       w.AddressCounter,
			EventCounter:         w.EventCounter,
			BusyCounter:          w.BusyCounter,
			PpsCounter:           w.PpsCounter,
			ClockCounter:         w.ClockCounter,
			TriggerType:          uint8(w.TriggerTypeAndPattern & 0xff),
			StereoPatternBits:    uint8(w.TriggerTypeAndPattern >> 8),
			CDTSVersion:          w.CDTSVersion,
			NumInBunch:           w.NumInBunch,
			CameraTriggerCounter: w.CameraTriggerCounter,
			Extended:             true,
		}, nil
	}
	var w uctsLegacyWire
	if err := binary.Read(bytes.NewReader(blob), WireOrder, &w); err != nil {
		return nil, err
	}
	return &UCTSRecord{
		Timestamp:         w.Timestamp,
		AddressCounter:    w.AddressCounter,
		EventCounter:      w.EventCounter,
		BusyCounter:       w.BusyCounter,
		PpsCounter:        w.PpsCounter,
		ClockCounter:      w.ClockCounter,
		TriggerType:       uint8(w.TriggerTypeAndPattern & 0xff),
		StereoPatternBits: uint8(w.TriggerTypeAndPattern >> 8),
	}, nil
}

// decodeSWAT decodes a SWAT sub-record.
func decodeSWAT(blob []byte) (*SWATRecord, error) {
	var rec SWATRecord
	if err := binary.Read(bytes.NewReader(blob), WireOrder, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// decodeDragonCounters unpacks one DragonCounters record per module from a
// flat byte blob.
func decodeDragonCounters(blob []byte, numModules int) ([]DragonCounters, error) {
	r := bytes.NewReader(blob)
	out := make([]DragonCounters, numModules)
	for m := 0; m < numModules; m++ {
		if err := binary.Read(r, WireOrder, &out[m]); err != nil {
			return nil, err
		}
	}
	return out, nil
}
