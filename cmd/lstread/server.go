// Copyright 2015 Marc-Antoine Ruel. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package main

import (
	"fmt"
	"log"
	"net/http"
	"sync"

	"golang.org/x/net/websocket"

	"github.com/lstcam-project/go-lstcam/lstcam"
)

// debugServer exposes a tiny HTTP endpoint plus a websocket feed of the
// high-gain waveform of pixel 0 for each processed event, for quick visual
// sanity-checking of a run while it is being read.
type debugServer struct {
	mu      sync.Mutex
	clients map[*websocket.Conn]chan streamFrame
	srv     *http.Server
}

func newDebugServer() *debugServer {
	return &debugServer{clients: map[*websocket.Conn]chan streamFrame{}}
}

type streamFrame struct {
	EventID   uint64    `json:"event_id"`
	EventType string    `json:"event_type"`
	Pixel0    []float32 `json:"pixel0_high_gain"`
}

func (s *debugServer) listen(port int) {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, "lstread debug server; connect to /stream for a live waveform feed")
	})
	mux.Handle("/stream", websocket.Handler(s.handleStream))
	s.srv = &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux}
	if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Printf("lstread: debug server: %s", err)
	}
}

func (s *debugServer) handleStream(ws *websocket.Conn) {
	ch := make(chan streamFrame, 8)
	s.mu.Lock()
	s.clients[ws] = ch
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		delete(s.clients, ws)
		s.mu.Unlock()
		ws.Close()
	}()
	for frame := range ch {
		if err := websocket.JSON.Send(ws, frame); err != nil {
			return
		}
	}
}

func (s *debugServer) publish(ev *lstcam.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.clients) == 0 {
		return
	}
	frame := streamFrame{EventID: ev.Info.EventID, EventType: ev.Info.EventType.String()}
	if ev.Waveform != nil && (!ev.Waveform.GainSelected || ev.Waveform.SelectedGain[0] == lstcam.HighGain) {
		frame.Pixel0 = ev.Waveform.Samples[lstcam.HighGain][0]
	}
	for _, ch := range s.clients {
		select {
		case ch <- frame:
		default:
		}
	}
}

func (s *debugServer) close() {
	s.mu.Lock()
	for ws, ch := range s.clients {
		close(ch)
		ws.Close()
	}
	s.clients = map[*websocket.Conn]chan streamFrame{}
	s.mu.Unlock()
	if s.srv != nil {
		s.srv.Close()
	}
}
