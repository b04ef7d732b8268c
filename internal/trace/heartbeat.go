package trace

import (
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"
)

// Heartbeat wraps a tracer and, every interval, emits a liveness event
// naming the pass and file spans still open, e.g. "#4 collect > main".
// Install the heartbeat itself in the context so it sees those spans.
type Heartbeat struct {
	Tracer
	interval time.Duration

	mu   sync.Mutex
	open []openSpan // begin order

	beats uint64
	stop  chan struct{}
	once  sync.Once
	wg    sync.WaitGroup
}

type openSpan struct {
	id   uint64
	name string
}

// StartHeartbeat returns nil when tracing is off or interval is not
// positive; Stop on a nil heartbeat is a no-op.
func StartHeartbeat(t Tracer, interval time.Duration) *Heartbeat {
	if t == nil || !t.Enabled() || interval <= 0 {
		return nil
	}
	h := &Heartbeat{Tracer: t, interval: interval, stop: make(chan struct{})}
	h.wg.Add(1)
	go h.run()
	return h
}

// Emit records pass and file spans before forwarding ev.
func (h *Heartbeat) Emit(ev *Event) {
	if ev.Scope == ScopePass || ev.Scope == ScopeFile {
		h.mu.Lock()
		switch ev.Kind {
		case KindSpanBegin:
			h.open = append(h.open, openSpan{id: ev.SpanID, name: ev.Name})
		case KindSpanEnd:
			h.open = slices.DeleteFunc(h.open, func(s openSpan) bool { return s.id == ev.SpanID })
		}
		h.mu.Unlock()
	}
	h.Tracer.Emit(ev)
}

// Phase lists the open pass and file spans, outermost first.
func (h *Heartbeat) Phase() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.open) == 0 {
		return "idle"
	}
	names := make([]string, len(h.open))
	for i, s := range h.open {
		names[i] = s.name
	}
	return strings.Join(names, " > ")
}

func (h *Heartbeat) run() {
	defer h.wg.Done()
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			h.beat()
		case <-h.stop:
			return
		}
	}
}

func (h *Heartbeat) beat() {
	h.beats++
	h.Tracer.Emit(&Event{
		Time:   time.Now(),
		Kind:   KindHeartbeat,
		Scope:  ScopeSession,
		GID:    goroutineID(),
		Name:   "heartbeat",
		Detail: fmt.Sprintf("#%d %s", h.beats, h.Phase()),
	})
}

// Stop ends the ticker; the wrapped tracer stays open.
func (h *Heartbeat) Stop() {
	if h == nil {
		return
	}
	h.once.Do(func() { close(h.stop) })
	h.wg.Wait()
}
