// Copyright 2015 Marc-Antoine Ruel. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package lstcam

import "errors"

// Construction-time and stream-time error sentinels. Callers should use
// errors.Is against these, since implementations wrap them with context via
// fmt.Errorf("...: %w", ...).
var (
	// ErrNoConfig is returned by NewReader when no CameraConfig record was
	// found in any input file.
	ErrNoConfig = errors.New("lstcam: no camera configuration found in any input file")

	// ErrConfigMismatch is returned by NewReader when input files disagree on
	// configuration_id.
	ErrConfigMismatch = errors.New("lstcam: input files disagree on configuration_id")

	// ErrMissingPedestal is returned by the DRS4 corrector when pedestal
	// correction is requested but no pedestal path was configured.
	ErrMissingPedestal = errors.New("lstcam: pedestal correction requested but no pedestal path configured")

	// ErrShapeMismatch is returned per-event when broken pixels are marked in
	// pixel_status but the raw waveform buffer is too short to address them.
	ErrShapeMismatch = errors.New("lstcam: broken pixels present but waveform buffer too short")

	// ErrEmptyInputs is returned by NewReader when given zero input sources.
	ErrEmptyInputs = errors.New("lstcam: at least one input source is required")
)

// Warning conditions. These are never returned as errors; they are logged
// once per offending event via log.Printf and do not interrupt the stream.
// They are declared here, alongside the fatal sentinels, purely so callers
// that want to match on the log text can refer to one string constant.
const (
	warnUCTSUnreliable   = "lstcam: UCTS trigger_type == 42, trigger assignment unreliable"
	warnUnknownEventType = "lstcam: trigger bits do not match any known event type pattern"
)
