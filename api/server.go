// Package api exposes the tracker over HTTP: device enumeration for the
// selection UI, the latest output sample, recenter, and the lifecycle event
// log.
package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/cadence-vr/headtrack/internal/eventlog"
	"github.com/cadence-vr/headtrack/internal/openvr"
	"github.com/cadence-vr/headtrack/internal/posestream"
	"github.com/cadence-vr/headtrack/internal/tracker"
)

type Server struct {
	session *openvr.Session
	binding *tracker.Binding
	stream  *posestream.Streamer
	db      *eventlog.DB
}

func NewServer(session *openvr.Session, binding *tracker.Binding, stream *posestream.Streamer, db *eventlog.DB) *Server {
	return &Server{
		session: session,
		binding: binding,
		stream:  stream,
		db:      db,
	}
}

func (s *Server) ServeMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/devices", s.listDevices)
	mux.HandleFunc("/pose", s.latestPose)
	mux.HandleFunc("/recenter", s.recenter)
	mux.HandleFunc("/events", s.listEvents)
	mux.HandleFunc("/status", s.status)
	mux.HandleFunc("/", s.homeHandler)
	return mux
}

func (s *Server) homeHandler(w http.ResponseWriter, r *http.Request) {
	w.Write([]byte("Welcome to the headtrack server!"))
}

// deviceEntry augments a DeviceSpec with the formatted identity string the
// selection dialog displays and the binding matches against.
type deviceEntry struct {
	openvr.DeviceSpec
	Identity string `json:"identity"`
}

func (s *Server) listDevices(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	specs := s.session.Devices()
	entries := make([]deviceEntry, 0, len(specs))
	for _, spec := range specs {
		entries = append(entries, deviceEntry{DeviceSpec: spec, Identity: spec.String()})
	}
	writeJSON(w, entries)
}

func (s *Server) latestPose(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	sample, ok := s.stream.Latest()
	if !ok {
		http.Error(w, "No pose sampled yet", http.StatusNotFound)
		return
	}
	writeJSON(w, sample)
}

func (s *Server) recenter(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	s.binding.Recenter()
	if s.db != nil {
		if err := s.db.Record(eventlog.KindRecenter, "seated origin reset requested"); err != nil {
			http.Error(w, "Failed to record recenter", http.StatusInternalServerError)
			return
		}
	}
	w.Write([]byte("Recentered"))
}

func (s *Server) listEvents(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if s.db == nil {
		http.Error(w, "Event log disabled", http.StatusNotFound)
		return
	}

	limit := 100
	if l := r.URL.Query().Get("limit"); l != "" {
		if v, err := strconv.Atoi(l); err == nil {
			limit = v
		}
	}

	events, err := s.db.Events(limit)
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to retrieve events: %v", err), http.StatusInternalServerError)
		return
	}
	writeJSON(w, events)
}

func (s *Server) status(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	st := struct {
		State       tracker.State `json:"state"`
		DeviceIndex int           `json:"device_index"`
		Error       string        `json:"error,omitempty"`
	}{
		State:       s.binding.State(),
		DeviceIndex: s.binding.DeviceIndex(),
	}
	if err := s.binding.Err(); err != nil {
		st.Error = err.Error()
	}
	writeJSON(w, st)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}
