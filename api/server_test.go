package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cadence-vr/headtrack/internal/eventlog"
	"github.com/cadence-vr/headtrack/internal/openvr"
	"github.com/cadence-vr/headtrack/internal/pose"
	"github.com/cadence-vr/headtrack/internal/posestream"
	"github.com/cadence-vr/headtrack/internal/tracker"
)

type testEnv struct {
	sim     *openvr.SimRuntime
	session *openvr.Session
	binding *tracker.Binding
	stream  *posestream.Streamer
	db      *eventlog.DB
	ts      *httptest.Server
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	sim := openvr.NewSimRuntime()
	sim.SetDevice(0, openvr.SimDevice{
		Class: openvr.ClassHMD, Model: "Vive MV", Serial: "LHR-12345",
		Connected: true, PoseValid: true,
		Transform: pose.Compose(0.2, 0.1, 0, 0.5, 0.1, -0.3),
	})
	sim.SetDevice(3, openvr.SimDevice{
		Class: openvr.ClassController, Model: "Wand", Serial: "CTL-007",
		Connected: true, PoseValid: true,
	})

	session := openvr.NewSession(func() (openvr.Runtime, openvr.InitError) {
		return sim, openvr.InitErrorNone
	})
	t.Cleanup(session.Close)

	binding := tracker.New(session)
	require.NoError(t, binding.Start(""))

	stream := posestream.New(binding, 200)
	t.Cleanup(stream.Close)

	db, err := eventlog.NewDB(filepath.Join(t.TempDir(), "events.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	ts := httptest.NewServer(NewServer(session, binding, stream, db).ServeMux())
	t.Cleanup(ts.Close)

	return &testEnv{sim: sim, session: session, binding: binding, stream: stream, db: db, ts: ts}
}

// runStream drives the poll loop until at least one sample lands.
func (e *testEnv) runStream(t *testing.T) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go e.stream.Run(ctx)

	require.Eventually(t, func() bool {
		_, ok := e.stream.Latest()
		return ok
	}, 2*time.Second, 5*time.Millisecond)
}

func getJSON(t *testing.T, url string, v any) *http.Response {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	if v != nil && resp.StatusCode == http.StatusOK {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
	}
	return resp
}

func TestDevicesEndpoint(t *testing.T) {
	env := newTestEnv(t)

	var entries []struct {
		Index    int    `json:"index"`
		Class    string `json:"class"`
		Model    string `json:"model"`
		Serial   string `json:"serial"`
		Identity string `json:"identity"`
	}
	resp := getJSON(t, env.ts.URL+"/devices", &entries)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	require.Len(t, entries, 2)
	assert.Equal(t, 0, entries[0].Index)
	assert.Equal(t, "HMD", entries[0].Class)
	assert.Equal(t, "<HMD> Vive MV [LHR-12345]", entries[0].Identity)
	assert.Equal(t, 3, entries[1].Index)
	assert.Equal(t, "<Controller> Wand [CTL-007]", entries[1].Identity)
}

func TestPoseEndpointBeforeFirstSample(t *testing.T) {
	env := newTestEnv(t)

	resp := getJSON(t, env.ts.URL+"/pose", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestPoseEndpoint(t *testing.T) {
	env := newTestEnv(t)
	env.runStream(t)

	var sample pose.Sample
	resp := getJSON(t, env.ts.URL+"/pose", &sample)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// The HMD transform carries tx=0.5 which negates and scales to -5.
	assert.InDelta(t, -5.0, sample.TX, 1e-9)
	assert.InDelta(t, 1.0, sample.TY, 1e-9)
	assert.InDelta(t, -3.0, sample.TZ, 1e-9)
	assert.NotZero(t, sample.Yaw)
}

func TestRecenterEndpoint(t *testing.T) {
	env := newTestEnv(t)

	resp, err := http.Post(env.ts.URL+"/recenter", "text/plain", nil)
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Recentered", string(body))
	assert.Equal(t, 1, env.sim.Recenters())

	events, err := env.db.Events(10)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, eventlog.KindRecenter, events[0].Kind)
}

func TestRecenterRequiresPost(t *testing.T) {
	env := newTestEnv(t)

	resp := getJSON(t, env.ts.URL+"/recenter", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
	assert.Equal(t, 0, env.sim.Recenters())
}

func TestEventsEndpoint(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, env.db.Record(eventlog.KindInit, "ok"))
	require.NoError(t, env.db.RecordDevice(eventlog.KindBind, "bound", "<HMD> Vive MV [LHR-12345]", 0))

	var events []eventlog.Event
	resp := getJSON(t, env.ts.URL+"/events?limit=1", &events)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, events, 1)
	assert.Equal(t, eventlog.KindBind, events[0].Kind)
}

func TestStatusEndpoint(t *testing.T) {
	env := newTestEnv(t)

	var st struct {
		State       string `json:"state"`
		DeviceIndex int    `json:"device_index"`
		Error       string `json:"error"`
	}
	resp := getJSON(t, env.ts.URL+"/status", &st)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "bound", st.State)
	assert.Equal(t, 0, st.DeviceIndex)
	assert.Empty(t, st.Error)
}

func TestDevicesRejectsPost(t *testing.T) {
	env := newTestEnv(t)

	resp, err := http.Post(env.ts.URL+"/devices", "text/plain", nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestHome(t *testing.T) {
	env := newTestEnv(t)

	resp, err := http.Get(env.ts.URL + "/")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Contains(t, string(body), "headtrack")
}
