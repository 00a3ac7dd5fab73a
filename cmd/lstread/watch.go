// Copyright 2016 Marc-Antoine Ruel. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

//+build !linux

package main

import "github.com/maruel/interrupt"

// watchDirectory on non-Linux platforms has no inotify-backed watcher
// available; it returns at once, never reports new files, and its helper
// goroutine waits only for an interrupt or the stop func.
func watchDirectory(dir string, onNewFile func(path string)) (func(), error) {
	stop := make(chan struct{})
	go func() {
		select {
		case <-interrupt.Channel:
		case <-stop:
		}
	}()
	return func() { close(stop) }, nil
}
