// Copyright 2015 Marc-Antoine Ruel. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package lstcam

import (
	"fmt"

	"gonum.org/v1/hdf5"
)

// PedestalIDs is the in-memory set of event ids known, from an external
// interleaved-pedestal catalogue, to be pedestal events.
type PedestalIDs map[uint64]bool

// LoadPedestalIDs reads the optional `/interleaved_pedestal_ids` HDF5 table
// into memory.
func LoadPedestalIDs(path string) (PedestalIDs, error) {
	f, err := hdf5.OpenFile(path, hdf5.F_ACC_RDONLY)
	if err != nil {
		return nil, fmt.Errorf("lstcam: opening pedestal ids file %s: %w", path, err)
	}
	defer f.Close()

	dset, err := f.OpenDataset("/interleaved_pedestal_ids/event_id")
	if err != nil {
		return nil, fmt.Errorf("lstcam: opening event_id column in %s: %w", path, err)
	}
	defer dset.Close()

	space := dset.Space()
	dims, _, err := space.SimpleExtentDims()
	if err != nil {
		return nil, fmt.Errorf("lstcam: reading event_id dims in %s: %w", path, err)
	}
	n := int(dims[0])
	ids := make([]uint64, n)
	if err := dset.Read(&ids); err != nil {
		return nil, fmt.Errorf("lstcam: reading event_id column in %s: %w", path, err)
	}

	set := make(PedestalIDs, n)
	for _, id := range ids {
		set[id] = true
	}
	return set, nil
}
