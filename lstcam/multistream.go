// Copyright 2015 Marc-Antoine Ruel. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package lstcam

import (
	"fmt"
	"io"
)

// cursor tracks one input's current head event, matching the dict-of-heads
// shape of the reference merger: a map keyed by input index would work just
// as well, but a slice with explicit "done" tombstones keeps Next's hot path
// allocation-free.
type cursor struct {
	source EventSource
	head   *RawEvent
	done   bool
}

// MultiStream merges N event sources into a single stream ordered by
// ascending event_id (§4.1). It is not safe for concurrent use.
type MultiStream struct {
	cursors []*cursor
	config  *CameraConfig
}

// OpenMultiStream opens a MultiStream over the given sources, priming each
// one's head event and validating that exactly one camera configuration is
// present and that all configurations agree.
func OpenMultiStream(sources []EventSource) (*MultiStream, error) {
	if len(sources) == 0 {
		return nil, ErrEmptyInputs
	}
	m := &MultiStream{cursors: make([]*cursor, len(sources))}
	var configIDs = map[uint64]bool{}
	for i, s := range sources {
		c := &cursor{source: s}
		ev, err := s.NextEvent()
		if err == io.EOF {
			c.done = true
		} else if err != nil {
			m.Close()
			return nil, fmt.Errorf("lstcam: priming input %d: %w", i, err)
		} else {
			c.head = ev
		}
		if cfg, ok := s.Config(); ok {
			if m.config == nil {
				m.config = cfg
			}
			configIDs[cfg.ConfigurationID] = true
		}
		m.cursors[i] = c
	}
	if len(configIDs) > 1 {
		m.Close()
		return nil, fmt.Errorf("%w: found %d distinct configuration ids", ErrConfigMismatch, len(configIDs))
	}
	if m.config == nil {
		m.Close()
		return nil, ErrNoConfig
	}
	return m, nil
}

// Config returns the single adopted camera configuration.
func (m *MultiStream) Config() *CameraConfig { return m.config }

// Next returns the lowest-event_id head across all live inputs, advancing
// that input's cursor. Ties are broken by input index, ascending. Returns
// io.EOF once every input is exhausted.
func (m *MultiStream) Next() (*RawEvent, error) {
	best := -1
	for i, c := range m.cursors {
		if c.done {
			continue
		}
		if best == -1 || c.head.EventID < m.cursors[best].head.EventID {
			best = i
		}
	}
	if best == -1 {
		return nil, io.EOF
	}
	c := m.cursors[best]
	ev := c.head
	next, err := c.source.NextEvent()
	if err == io.EOF {
		c.done = true
		c.head = nil
	} else if err != nil {
		return nil, fmt.Errorf("lstcam: advancing input %d: %w", best, err)
	} else {
		c.head = next
	}
	return ev, nil
}

// Len returns the sum of per-input row counts.
func (m *MultiStream) Len() int {
	total := 0
	for _, c := range m.cursors {
		total += c.source.Len()
	}
	return total
}

// Rewind resets every input to its first event.
func (m *MultiStream) Rewind() error {
	for i, c := range m.cursors {
		if err := c.source.Rewind(); err != nil {
			return fmt.Errorf("lstcam: rewinding input %d: %w", i, err)
		}
		ev, err := c.source.NextEvent()
		if err == io.EOF {
			c.done, c.head = true, nil
		} else if err != nil {
			return fmt.Errorf("lstcam: rewinding input %d: %w", i, err)
		} else {
			c.done, c.head = false, ev
		}
	}
	return nil
}

// NumInputs returns how many sources this merger holds.
func (m *MultiStream) NumInputs() int { return len(m.cursors) }

// AddSource admits a new input mid-stream, e.g. a subrun file discovered
// after the merger was opened (§6 "Multi-file discovery": all_subruns may
// pick up files arriving after the reader was opened). The source's
// configuration_id must match the one adopted at Open time. Must not be
// called concurrently with Next (§5: single caller goroutine).
func (m *MultiStream) AddSource(src EventSource) error {
	cfg, ok := src.Config()
	if !ok {
		src.Close()
		return ErrNoConfig
	}
	if cfg.ConfigurationID != m.config.ConfigurationID {
		src.Close()
		return fmt.Errorf("%w: new input has configuration id %d, want %d", ErrConfigMismatch, cfg.ConfigurationID, m.config.ConfigurationID)
	}
	c := &cursor{source: src}
	ev, err := src.NextEvent()
	if err == io.EOF {
		c.done = true
	} else if err != nil {
		src.Close()
		return fmt.Errorf("lstcam: priming new input: %w", err)
	} else {
		c.head = ev
	}
	m.cursors = append(m.cursors, c)
	return nil
}

// Close closes every input source, returning the first error encountered
// (and still attempting to close the rest).
func (m *MultiStream) Close() error {
	var first error
	for _, c := range m.cursors {
		if c == nil || c.source == nil {
			continue
		}
		if err := c.source.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
