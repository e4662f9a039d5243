package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"tailscale.com/tsweb"
)

// AttachDebugRoutes mounts the tracker's debugging surface under /debug/:
// a live SSE tail of output samples and an HTML chart of the recent ring.
// These routes are reachable only over localhost/via Tailscale.
func (s *Server) AttachDebugRoutes(mux *http.ServeMux) {
	debug := tsweb.Debugger(mux)

	// Server-Side Events stream of output samples, one JSON object per frame.
	debug.HandleSilentFunc("tail", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.Header().Set("X-Accel-Buffering", "no") // Disable buffering for nginx

		id, c := s.stream.Subscribe()
		defer s.stream.Unsubscribe(id)

		// Send initial ping to establish connection
		w.Write([]byte(": ping\n\n"))
		w.(http.Flusher).Flush()

		for {
			select {
			case sample, ok := <-c:
				if !ok {
					return
				}
				payload, err := json.Marshal(sample)
				if err != nil {
					return
				}
				if _, err := fmt.Fprintf(w, "data: %s\n\n", payload); err != nil {
					return
				}
				w.(http.Flusher).Flush()
			case <-r.Context().Done():
				return
			}
		}
	})

	// HTML line chart of the recent yaw/pitch/roll ring. Debugging-only; the
	// ring lives in memory and nothing here persists pose data.
	debug.HandleSilentFunc("pose-chart", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		samples := s.stream.Recent()
		if len(samples) == 0 {
			http.Error(w, "No samples yet", http.StatusNotFound)
			return
		}

		xs := make([]string, len(samples))
		yaw := make([]opts.LineData, len(samples))
		pitch := make([]opts.LineData, len(samples))
		roll := make([]opts.LineData, len(samples))
		for i, sample := range samples {
			xs[i] = strconv.Itoa(i - len(samples))
			yaw[i] = opts.LineData{Value: sample.Yaw}
			pitch[i] = opts.LineData{Value: sample.Pitch}
			roll[i] = opts.LineData{Value: sample.Roll}
		}

		line := charts.NewLine()
		line.SetGlobalOptions(
			charts.WithInitializationOpts(opts.Initialization{PageTitle: "Tracker orientation", Theme: "dark", Width: "1200px", Height: "500px"}),
			charts.WithTitleOpts(opts.Title{Title: "Tracker orientation", Subtitle: fmt.Sprintf("last %d frames, degrees", len(samples))}),
			charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
			charts.WithYAxisOpts(opts.YAxis{Name: "degrees"}),
		)
		line.SetXAxis(xs).
			AddSeries("yaw", yaw).
			AddSeries("pitch", pitch).
			AddSeries("roll", roll)

		var buf bytes.Buffer
		if err := line.Render(&buf); err != nil {
			http.Error(w, fmt.Sprintf("Failed to render chart: %v", err), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write(buf.Bytes())
	})
}
