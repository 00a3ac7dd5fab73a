// Copyright 2015 Marc-Antoine Ruel. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Command lstread drives an lstcam.Reader over one or more input files (or a
// synthetic stream, with -simulate), printing live stats and optionally
// serving a debug waveform inspector over HTTP.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/user"
	"path/filepath"
	"runtime/pprof"
	"time"

	"github.com/maruel/interrupt"

	"github.com/lstcam-project/go-lstcam/lstcam"
)

// openProtozfits is the lstcam.OpenSourceFunc used for real input files. This
// module owns event assembly and correction, not the protobuf-zfits wire
// decoder itself (§6 "Input event stream" names it an external collaborator),
// so every open fails; the sibling-file discovery and dynamic AddSource
// wiring around it are real regardless of what backs this function.
func openProtozfits(path string) (lstcam.EventSource, error) {
	return nil, fmt.Errorf("opening %s: reading real protobuf-zfits files requires a wire-format reader, which is an external collaborator of this module; pass -simulate to exercise the pipeline", path)
}

// toolConfig is the on-disk JSON configuration, analogous to the teacher's
// cmd/lepton Config, loaded from/written to ~/.config/lstread/lstread.json.
type toolConfig struct {
	DRS4PedestalPath        string
	DRS4TimeCalibrationPath string
	CalibrationPath         string
	PedestalIDsPath         string
}

func loadToolConfig(path string) (*toolConfig, error) {
	c := &toolConfig{}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return c, nil
		}
		return nil, err
	}
	defer f.Close()
	if err := json.NewDecoder(f).Decode(c); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *toolConfig) save(path string) error {
	os.MkdirAll(filepath.Dir(path), 0700)
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	e := json.NewEncoder(f)
	e.SetIndent("", "  ")
	return e.Encode(c)
}

func defaultConfigPath() string {
	if u, err := user.Current(); err == nil {
		return filepath.Join(u.HomeDir, ".config", "lstread", "lstread.json")
	}
	return "lstread.json"
}

func mainImpl() error {
	cpuprofile := flag.String("cpuprofile", "", "dump CPU profile in file")
	port := flag.Int("port", 8020, "http port for the debug waveform inspector")
	simulate := flag.Bool("simulate", false, "use a synthetic event source instead of real input files")
	simCount := flag.Int("simulate-count", 100, "number of synthetic events to generate with -simulate")
	noCorrections := flag.Bool("no-corrections", false, "disable the DRS4 correction pipeline")
	allSubruns := flag.Bool("all-subruns", false, "watch the input directory for sibling subrun files")
	writeConfig := flag.Bool("write-config", false, "write the default config file and exit")
	configPath := flag.String("config", defaultConfigPath(), "path to the JSON config file")
	flag.Parse()

	if *writeConfig {
		return (&toolConfig{}).save(*configPath)
	}

	if *cpuprofile != "" {
		f, err := os.Create(*cpuprofile)
		if err != nil {
			return err
		}
		pprof.StartCPUProfile(f)
		defer pprof.StopCPUProfile()
	}

	interrupt.HandleCtrlC()

	toolCfg, err := loadToolConfig(*configPath)
	if err != nil {
		return err
	}

	cfg := lstcam.DefaultConfig()
	cfg.DRS4PedestalPath = toolCfg.DRS4PedestalPath
	cfg.DRS4TimeCalibrationPath = toolCfg.DRS4TimeCalibrationPath
	cfg.CalibrationPath = toolCfg.CalibrationPath
	cfg.PedestalIDsPath = toolCfg.PedestalIDsPath
	cfg.AllSubruns = *allSubruns
	if *noCorrections {
		cfg.ApplyDRS4Corrections = false
	}

	var paths []string
	var watchDir string
	if !*simulate {
		paths = flag.Args()
		if len(paths) == 0 {
			return fmt.Errorf("provide at least one input file, or pass -simulate")
		}
		watchDir = filepath.Dir(paths[0])
	}

	// discovered carries paths found by the directory watcher, which runs on
	// its own goroutine, to the main loop below; Reader.AddSource must only
	// ever be called from the same goroutine as Reader.Next (§5), so the
	// watcher itself never touches the Reader directly. The watcher is
	// started before the input files are opened/scanned below, so a subrun
	// file that lands in the narrow window between the initial sibling scan
	// and the watcher install is still queued here rather than silently
	// missed.
	discovered := make(chan string, 16)
	if *allSubruns && watchDir != "" {
		stop, err := watchDirectory(watchDir, func(path string) {
			select {
			case discovered <- path:
			default:
				log.Printf("lstread: dropping discovered file %s: backlog full", path)
			}
		})
		if err != nil {
			return err
		}
		defer stop()
	}

	var r *lstcam.Reader
	if *simulate {
		r, err = lstcam.NewReader(cfg, []lstcam.EventSource{lstcam.NewFakeSource(*simCount, 0)})
	} else {
		r, err = lstcam.NewReaderFromPaths(cfg, paths, openProtozfits)
	}
	if err != nil {
		return err
	}
	defer r.Close()

	srv := newDebugServer()
	go srv.listen(*port)
	defer srv.close()

	var processed, warnings int
	start := time.Now()
	for !interrupt.IsSet() {
	drainDiscovered:
		for {
			select {
			case path := <-discovered:
				if !r.WantsFile(path) {
					continue
				}
				if err := r.AddSource(path, openProtozfits); err != nil {
					log.Printf("lstread: adding discovered file %s: %s", path, err)
					continue
				}
				log.Printf("lstread: admitted sibling subrun file %s", path)
			default:
				break drainDiscovered
			}
		}
		ev, err := r.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		processed++
		if ev.Info.EventType == lstcam.EventTypeUnknown {
			warnings++
		}
		srv.publish(ev)
		fmt.Printf("%d events (%d unknown type) in %s\r", processed, warnings, time.Since(start).Round(time.Millisecond))
	}
	fmt.Print("\n")
	return nil
}

func main() {
	if err := mainImpl(); err != nil {
		fmt.Fprintf(os.Stderr, "lstread: %s.\n", err)
		os.Exit(1)
	}
}
