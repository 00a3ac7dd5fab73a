// Copyright 2016 Marc-Antoine Ruel. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package main

import (
	"log"
	"strings"

	fsnotify "gopkg.in/fsnotify.v1"
)

// watchDirectory watches dir for newly created subrun files (a run is split
// across multiple numbered files, e.g. 1Run2008.0000.fits.fz, 1Run2008.0001.fits.fz)
// and calls onNewFile for each one, until the returned stop func is called.
func watchDirectory(dir string, onNewFile func(path string)) (func(), error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return nil, err
	}

	done := make(chan struct{})
	go func() {
		for {
			select {
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if ev.Op&fsnotify.Create == fsnotify.Create && isSubrunFile(ev.Name) {
					onNewFile(ev.Name)
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Printf("lstread: watch %s: %s", dir, err)
			case <-done:
				return
			}
		}
	}()

	return func() {
		close(done)
		watcher.Close()
	}, nil
}

func isSubrunFile(name string) bool {
	return strings.HasSuffix(name, ".fits.fz") || strings.HasSuffix(name, ".fits")
}
