// Copyright 2015 Marc-Antoine Ruel. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package lstcam

import (
	"fmt"
	"io"
)

// Event is one fully-processed camera event: the calibrated R1 waveform (or
// R0, if corrections were disabled) plus its metadata.
type Event struct {
	Info     *EventInfo
	Waveform *Waveform
	// TimeShift is set only when a time-calibration table is loaded; it
	// records the per-pixel DRS4 time correction without resampling the
	// waveform, matching the reference implementation's bookkeeping.
	TimeShift []float32
}

// Reader drives the full pipeline over a MultiStream: assemble, correct,
// classify, calibrate. It owns all per-telescope mutable state and is not
// safe for concurrent use (§5).
type Reader struct {
	cfg    Config
	stream *MultiStream
	config *CameraConfig

	corrector *DRS4Corrector
	pedestal  *PedestalTable
	timeCal   *TimeCalibration
	cal       *Calibration
	pedIDs    PedestalIDs

	oldFirmware bool

	// watchRun/watchStream record the (run, stream) of the path(s) the
	// reader was opened with, so AddSource/WantsFile can decide whether a
	// file discovered later belongs to this session (§6 "Multi-file
	// discovery"). watchOK is false when the opening path(s) didn't follow
	// the "<stream>Run<run>.<subrun>.fits.fz" convention.
	watchRun    int
	watchStream int
	watchOK     bool
}

// NewReader opens a Reader over the given sources. Calibration files named
// in cfg are loaded eagerly except the pedestal and time-calibration
// tables, which are loaded lazily on first need (§3 Lifecycle).
func NewReader(cfg Config, sources []EventSource) (*Reader, error) {
	stream, err := OpenMultiStream(sources)
	if err != nil {
		return nil, err
	}
	r := &Reader{
		cfg:         cfg,
		stream:      stream,
		config:      stream.Config(),
		oldFirmware: stream.Config().RunID <= LastRunWithOldFirmware,
	}

	if cfg.PedestalIDsPath != "" {
		ids, err := LoadPedestalIDs(cfg.PedestalIDsPath)
		if err != nil {
			stream.Close()
			return nil, err
		}
		r.pedIDs = ids
	}
	if cfg.CalibrationPath != "" {
		cal, err := LoadCalibration(cfg.CalibrationPath)
		if err != nil {
			stream.Close()
			return nil, err
		}
		r.cal = cal
	}

	r.corrector = NewDRS4Corrector(cfg, nil)
	return r, nil
}

// OpenSourceFunc opens one concrete EventSource from a file path. It is the
// external wire-format reader's entry point (§6 "Input event stream"); this
// module supplies no concrete implementation of it.
type OpenSourceFunc func(path string) (EventSource, error)

// NewReaderFromPaths expands each of paths to its sibling subrun/stream
// files per cfg.AllStreams/cfg.AllSubruns (§6 "Multi-file discovery"),
// opens every resulting file with open, and builds a Reader over the
// union. Paths that don't follow the naming convention are opened as-is,
// with no sibling discovery.
func NewReaderFromPaths(cfg Config, paths []string, open OpenSourceFunc) (*Reader, error) {
	seen := map[string]bool{}
	var files []string
	for _, p := range paths {
		siblings, err := DiscoverSiblingFiles(p, cfg.AllStreams, cfg.AllSubruns)
		if err != nil {
			return nil, fmt.Errorf("lstcam: discovering siblings of %s: %w", p, err)
		}
		for _, f := range siblings {
			if !seen[f] {
				seen[f] = true
				files = append(files, f)
			}
		}
	}

	sources := make([]EventSource, 0, len(files))
	for _, f := range files {
		src, err := open(f)
		if err != nil {
			for _, s := range sources {
				s.Close()
			}
			return nil, fmt.Errorf("lstcam: opening %s: %w", f, err)
		}
		sources = append(sources, src)
	}

	r, err := NewReader(cfg, sources)
	if err != nil {
		return nil, err
	}
	if len(paths) > 0 {
		if stream, run, _, ok := ParseSubrunName(paths[0]); ok {
			r.watchStream, r.watchRun, r.watchOK = stream, run, true
		}
	}
	return r, nil
}

// WantsFile reports whether a file discovered after opening (e.g. by a
// directory watcher) belongs to this reader's run, per cfg.AllSubruns and
// cfg.AllStreams. A newly-arrived subrun is only wanted when AllSubruns is
// set; a different stream is only wanted when AllStreams is also set.
func (r *Reader) WantsFile(path string) bool {
	if !r.watchOK || !r.cfg.AllSubruns {
		return false
	}
	stream, run, _, ok := ParseSubrunName(path)
	if !ok || run != r.watchRun {
		return false
	}
	return r.cfg.AllStreams || stream == r.watchStream
}

// AddSource opens path and admits it into the live merge, for a file
// discovered after the reader was already running (§6 "Multi-file
// discovery"). Must not be called
// concurrently with Next (§5).
func (r *Reader) AddSource(path string, open OpenSourceFunc) error {
	src, err := open(path)
	if err != nil {
		return fmt.Errorf("lstcam: opening %s: %w", path, err)
	}
	if err := r.stream.AddSource(src); err != nil {
		return fmt.Errorf("lstcam: adding %s: %w", path, err)
	}
	return nil
}

// ensurePedestal lazily loads the pedestal reference on first use.
func (r *Reader) ensurePedestal() error {
	if r.pedestal != nil || !r.cfg.ApplyPedestalCorrection {
		return nil
	}
	if r.cfg.DRS4PedestalPath == "" {
		return ErrMissingPedestal
	}
	p, err := LoadPedestal(r.cfg.DRS4PedestalPath, int16(r.cfg.Offset))
	if err != nil {
		return err
	}
	r.pedestal = p
	r.corrector.pedestal = p
	return nil
}

// ensureTimeCalibration lazily loads the DRS4 time-calibration table.
func (r *Reader) ensureTimeCalibration() error {
	if r.timeCal != nil || r.cfg.DRS4TimeCalibrationPath == "" {
		return nil
	}
	tc, err := LoadTimeCalibration(r.cfg.DRS4TimeCalibrationPath)
	if err != nil {
		return err
	}
	r.timeCal = tc
	return nil
}

// Config returns the adopted camera configuration.
func (r *Reader) Config() *CameraConfig { return r.config }

// Len returns the merger's total row count.
func (r *Reader) Len() int { return r.stream.Len() }

// Close releases all input files and calibration resources.
func (r *Reader) Close() error { return r.stream.Close() }

// Next produces the next fully-processed event, or io.EOF when the stream is
// exhausted. Events with event_id == 0 are skipped transparently (§4.1).
func (r *Reader) Next() (*Event, error) {
	for {
		raw, err := r.stream.Next()
		if err != nil {
			return nil, err
		}
		if raw.EventID == 0 {
			continue
		}
		return r.process(raw)
	}
}

func (r *Reader) process(raw *RawEvent) (*Event, error) {
	w, info, err := assemble(r.config, raw)
	if err != nil {
		return nil, fmt.Errorf("lstcam: event %d: %w", raw.EventID, err)
	}

	fc := firstCapacitorTable(r.config, raw.FirstCapacitorID)

	var timeShift []float32

	if r.cfg.ApplyDRS4Corrections {
		if r.cfg.ApplyPedestalCorrection {
			if err := r.ensurePedestal(); err != nil {
				return nil, fmt.Errorf("lstcam: event %d: %w", raw.EventID, err)
			}
		}
		if err := r.corrector.Correct(w, fc, r.config.ExpectedPixelsID, info.DragonCounters, r.oldFirmware); err != nil {
			return nil, fmt.Errorf("lstcam: event %d: %w", raw.EventID, err)
		}
		w = r.corrector.Finish(w)

		fillTriggerInfo(info, r.cfg)
		if r.cfg.wantsFlatfieldHeuristic(r.config.DateUnix) && !w.GainSelected {
			tagFlatfieldEvents(info, w, r.cfg)
		}
	} else {
		fillTriggerInfo(info, r.cfg)
	}

	if r.pedIDs != nil {
		r.applyPedestalIDs(info)
	}

	if r.cfg.CalibrationPath != "" {
		skip := info.EventType == EventTypeFlatfield || info.EventType == EventTypeSkyPedestal
		if !skip {
			if err := r.ensureTimeCalibration(); err != nil {
				return nil, fmt.Errorf("lstcam: event %d: %w", raw.EventID, err)
			}
			w, timeShift = selectAndCalibrate(w, fc, r.cal, r.timeCal, r.cfg)
			info.TimeShift = timeShift
		}
	}

	return &Event{Info: info, Waveform: w, TimeShift: timeShift}, nil
}

// applyPedestalIDs implements check_interleaved_pedestal's bidirectional
// reclassification: force SKY_PEDESTAL for known ids, and set any other
// event tagged SKY_PEDESTAL (e.g. by its trigger bits) to SUBARRAY.
func (r *Reader) applyPedestalIDs(info *EventInfo) {
	if r.pedIDs[info.EventID] {
		info.EventType = EventTypeSkyPedestal
	} else if info.EventType == EventTypeSkyPedestal {
		info.EventType = EventTypeSubarray
	}
}

// ReadAll drains the reader into a slice, mainly useful for tests and the
// CLI's non-streaming modes. It stops at the first error, returning it
// alongside whatever events were collected, unless the error is io.EOF.
func ReadAll(r *Reader) ([]*Event, error) {
	var events []*Event
	for {
		ev, err := r.Next()
		if err == io.EOF {
			return events, nil
		}
		if err != nil {
			return events, err
		}
		events = append(events, ev)
	}
}
