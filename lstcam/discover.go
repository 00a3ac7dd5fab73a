// Copyright 2015 Marc-Antoine Ruel. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package lstcam

import (
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
)

// subrunNamePattern matches the camera's file naming convention
// "<stream>Run<run>.<subrun>.fits.fz" (§6 "Multi-file discovery").
var subrunNamePattern = regexp.MustCompile(`^(\d+)Run(\d+)\.(\d+)\.fits\.fz$`)

// ParseSubrunName extracts the (stream, run, subrun) triple from a camera
// data file name. ok is false if name does not follow the convention.
func ParseSubrunName(name string) (stream, run, subrun int, ok bool) {
	m := subrunNamePattern.FindStringSubmatch(filepath.Base(name))
	if m == nil {
		return 0, 0, 0, false
	}
	stream, _ = strconv.Atoi(m[1])
	run, _ = strconv.Atoi(m[2])
	subrun, _ = strconv.Atoi(m[3])
	return stream, run, subrun, true
}

// DiscoverSiblingFiles lists path's directory for files sharing its `<run>`
// segment, widening the match across streams or subruns per allStreams and
// allSubruns (§6 "Multi-file discovery"). If path does not follow the
// `<stream>Run<run>.<subrun>.fits.fz` convention, it is returned alone.
// Results are sorted by (stream, subrun) and list only files present in the
// directory, so path itself is included only if it exists there.
func DiscoverSiblingFiles(path string, allStreams, allSubruns bool) ([]string, error) {
	wantStream, wantRun, wantSubrun, ok := ParseSubrunName(path)
	if !ok {
		return []string{path}, nil
	}

	dir := filepath.Dir(path)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	type match struct {
		path           string
		stream, subrun int
	}
	var matches []match
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		stream, run, subrun, ok := ParseSubrunName(e.Name())
		if !ok || run != wantRun {
			continue
		}
		if !allStreams && stream != wantStream {
			continue
		}
		if !allSubruns && subrun != wantSubrun {
			continue
		}
		matches = append(matches, match{filepath.Join(dir, e.Name()), stream, subrun})
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].stream != matches[j].stream {
			return matches[i].stream < matches[j].stream
		}
		return matches[i].subrun < matches[j].subrun
	})

	out := make([]string, len(matches))
	for i, m := range matches {
		out[i] = m.path
	}
	return out, nil
}
