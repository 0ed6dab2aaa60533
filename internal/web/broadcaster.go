package web

import (
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/cjeanneret/JoyPanel/internal/logic/control"
)

// Event kinds.
const (
	KindLog   = "log"
	KindTick  = "tick"
	KindFault = "fault"
)

// Event is a single message pushed to SSE clients.
type Event struct {
	Time  string              `json:"t"`
	Kind  string              `json:"kind"`
	Level string              `json:"l,omitempty"`
	Msg   string              `json:"msg,omitempty"`
	Tick  *control.TickReport `json:"tick,omitempty"`
}

// Broadcaster distributes events to multiple SSE clients.
type Broadcaster struct {
	mu      sync.RWMutex
	clients map[chan string]struct{}
}

// NewBroadcaster creates a new broadcaster.
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{
		clients: make(map[chan string]struct{}),
	}
}

// Subscribe returns a channel that receives broadcast events and a cleanup function.
// The caller must call the returned cleanup when done (e.g. on client disconnect).
func (b *Broadcaster) Subscribe() (<-chan string, func()) {
	ch := make(chan string, 64)
	b.mu.Lock()
	b.clients[ch] = struct{}{}
	b.mu.Unlock()

	var once sync.Once
	unsub := func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.clients, ch)
			b.mu.Unlock()
			close(ch)
		})
	}
	return ch, unsub
}

// Clients returns the number of subscribed clients.
func (b *Broadcaster) Clients() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.clients)
}

// Log sends a log line to all clients.
func (b *Broadcaster) Log(level, msg string) {
	b.publish(Event{Kind: KindLog, Level: level, Msg: msg})
}

// Tick sends a tick report to all clients.
func (b *Broadcaster) Tick(r control.TickReport) {
	b.publish(Event{Kind: KindTick, Tick: &r})
}

// Fault reports a fatal error to all clients.
func (b *Broadcaster) Fault(err error) {
	b.publish(Event{Kind: KindFault, Level: "error", Msg: err.Error()})
}

// publish marshals evt and hands it to every client.
// Slow clients may miss events (non-blocking, buffered).
func (b *Broadcaster) publish(evt Event) {
	if b.Clients() == 0 {
		return
	}
	evt.Time = time.Now().Format(time.RFC3339Nano)
	data, err := json.Marshal(evt)
	if err != nil {
		return
	}
	payload := string(data)

	b.mu.RLock()
	defer b.mu.RUnlock()
	for ch := range b.clients {
		select {
		case ch <- payload:
		default:
			// channel full, skip
		}
	}
}

// LogWriter implements io.Writer; each line written is broadcast as a log event.
// It is meant to be added next to stdout with debug.SetOutput.
func LogWriter(b *Broadcaster) *logWriter {
	return &logWriter{b: b}
}

type logWriter struct {
	b *Broadcaster
}

func (w *logWriter) Write(p []byte) (n int, err error) {
	for _, line := range strings.Split(string(p), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		w.b.Log(levelOf(line), line)
	}
	return len(p), nil
}

// levelOf extracts the level from a logrus text line ("... level=info ...").
func levelOf(line string) string {
	i := strings.Index(line, "level=")
	if i < 0 {
		return "info"
	}
	lvl := line[i+len("level="):]
	if j := strings.IndexByte(lvl, ' '); j >= 0 {
		lvl = lvl[:j]
	}
	return lvl
}
