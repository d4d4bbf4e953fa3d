package http

import (
	"fmt"
	"net/http"
	"sync"
)

// streamBuffer is how many events a subscriber may lag behind before it
// starts missing them.
const streamBuffer = 16

// Event is one server-sent event.
type Event struct {
	Name string
	Data []byte
}

// StreamManager fans interaction outcomes out to SSE subscribers, per session.
type StreamManager struct {
	mu   sync.RWMutex
	subs map[string]map[chan Event]struct{}
}

// NewStreamManager creates an empty StreamManager.
func NewStreamManager() *StreamManager {
	return &StreamManager{subs: make(map[string]map[chan Event]struct{})}
}

// Subscribe registers a listener for sessionID. cancel unsubscribes and
// closes the channel; calling it again is a no-op.
func (sm *StreamManager) Subscribe(sessionID string) (events <-chan Event, cancel func()) {
	ch := make(chan Event, streamBuffer)

	sm.mu.Lock()
	if sm.subs[sessionID] == nil {
		sm.subs[sessionID] = make(map[chan Event]struct{})
	}
	sm.subs[sessionID][ch] = struct{}{}
	sm.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			sm.mu.Lock()
			defer sm.mu.Unlock()
			delete(sm.subs[sessionID], ch)
			if len(sm.subs[sessionID]) == 0 {
				delete(sm.subs, sessionID)
			}
			close(ch)
		})
	}
}

// Broadcast delivers ev to every subscriber of sessionID without blocking
// and reports how many received it.
func (sm *StreamManager) Broadcast(sessionID string, ev Event) int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	delivered := 0
	for ch := range sm.subs[sessionID] {
		select {
		case ch <- ev:
			delivered++
		default:
		}
	}
	return delivered
}

// SubscribeEvents handles GET /interactions/{sid}/events. The stream opens
// with a ping, then carries one "outcome" event per start, select or cancel,
// and a final "closed" event when the interaction ends.
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := s.pathParam(w, r, "sid")
	if !ok {
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	events, cancel := s.Streams.Subscribe(sessionID)
	defer cancel()

	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	writeEvent(w, Event{Name: "ping", Data: []byte("connected")})
	flusher.Flush()
	s.logger.Debug("event stream opened", "session", sessionID)

	for {
		select {
		case <-r.Context().Done():
			s.logger.Debug("event stream closed by client", "session", sessionID)
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			writeEvent(w, ev)
			flusher.Flush()
		}
	}
}

func writeEvent(w http.ResponseWriter, ev Event) {
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Name, ev.Data)
}
