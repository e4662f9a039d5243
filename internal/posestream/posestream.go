// Package posestream drives the tracker's polling loop and fans output
// samples out to subscribers, so several consumers (SSE tails, debug charts)
// can watch one bound device without touching the session themselves.
package posestream

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/cadence-vr/headtrack/internal/pose"
	"github.com/cadence-vr/headtrack/internal/tracker"
)

// ringCap bounds the in-memory sample ring used by the debug chart. The ring
// is the only sample retention anywhere: nothing is persisted.
const ringCap = 600

// Streamer polls a bound tracker at a fixed rate on its own goroutine and
// publishes each frame's output to every subscriber.
type Streamer struct {
	binding  *tracker.Binding
	interval time.Duration

	mu          sync.Mutex
	subscribers map[string]chan pose.Sample
	ring        []pose.Sample
	latest      pose.Sample
	haveLatest  bool
	closing     bool
}

// New creates a streamer polling at the given rate.
func New(binding *tracker.Binding, hz int) *Streamer {
	if hz < 1 {
		hz = 1
	}
	return &Streamer{
		binding:     binding,
		interval:    time.Second / time.Duration(hz),
		subscribers: make(map[string]chan pose.Sample),
	}
}

// Subscribe registers a new sample channel. The returned ID identifies the
// channel for Unsubscribe.
func (st *Streamer) Subscribe() (string, chan pose.Sample) {
	id := uuid.NewString()
	ch := make(chan pose.Sample, 1)
	st.mu.Lock()
	defer st.mu.Unlock()
	if st.closing {
		close(ch)
		return id, ch
	}
	st.subscribers[id] = ch
	return id, ch
}

// Unsubscribe removes a subscriber and closes its channel.
func (st *Streamer) Unsubscribe(id string) {
	st.mu.Lock()
	defer st.mu.Unlock()
	if ch, ok := st.subscribers[id]; ok {
		close(ch)
		delete(st.subscribers, id)
	}
}

// Latest returns the most recently published sample, if any frame has been
// published yet.
func (st *Streamer) Latest() (pose.Sample, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.latest, st.haveLatest
}

// Recent returns a copy of the in-memory ring, oldest first.
func (st *Streamer) Recent() []pose.Sample {
	st.mu.Lock()
	defer st.mu.Unlock()
	out := make([]pose.Sample, len(st.ring))
	copy(out, st.ring)
	return out
}

// Run polls the binding until the context is cancelled or the binding stops
// being sampleable. Each frame's output is fanned out with non-blocking
// sends: a slow subscriber drops frames rather than stalling the polling
// loop.
func (st *Streamer) Run(ctx context.Context) error {
	ticker := time.NewTicker(st.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			sample, err := st.binding.SampleFrame()
			if err != nil {
				return err
			}
			st.publish(sample)
		}
	}
}

func (st *Streamer) publish(sample pose.Sample) {
	st.mu.Lock()
	defer st.mu.Unlock()
	if st.closing {
		return
	}
	st.latest = sample
	st.haveLatest = true
	st.ring = append(st.ring, sample)
	if len(st.ring) > ringCap {
		st.ring = st.ring[len(st.ring)-ringCap:]
	}
	for _, ch := range st.subscribers {
		select {
		case ch <- sample:
		default:
			// subscriber is behind; skip this frame for it
		}
	}
}

// Close closes every subscriber channel. Subsequent Subscribe calls return
// an already-closed channel so readers never block on a dead streamer.
func (st *Streamer) Close() {
	st.mu.Lock()
	defer st.mu.Unlock()
	if st.closing {
		return
	}
	st.closing = true
	for id, ch := range st.subscribers {
		close(ch)
		delete(st.subscribers, id)
	}
}
