package web

import (
	"bytes"
	"encoding/json"
	"io/fs"
	"net/http"
	"strconv"
	"time"

	"github.com/cjeanneret/JoyPanel/internal/debug"
)

// Handlers holds dependencies for HTTP handlers. Every route is read-only.
type Handlers struct {
	Broadcaster *Broadcaster
	Mirror      *Mirror
	staticFS    fs.FS
}

// NewHandlers creates handlers with the given dependencies.
func NewHandlers(broadcaster *Broadcaster, mirror *Mirror, staticFS fs.FS) *Handlers {
	return &Handlers{
		Broadcaster: broadcaster,
		Mirror:      mirror,
		staticFS:    staticFS,
	}
}

// HandleState returns the mirror status as JSON.
func (h *Handlers) HandleState(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	if err := json.NewEncoder(w).Encode(h.Mirror.Status()); err != nil {
		debug.Error(err)
	}
}

// HandleFrame returns the last flushed frame as a PNG. The optional "scale"
// query parameter enlarges it (1 to MaxScale, default 4).
func (h *Handlers) HandleFrame(w http.ResponseWriter, r *http.Request) {
	scale := 4
	if s := r.URL.Query().Get("scale"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v < 1 || v > MaxScale {
			http.Error(w, "scale must be an integer between 1 and "+strconv.Itoa(MaxScale), http.StatusBadRequest)
			return
		}
		scale = v
	}

	var buf bytes.Buffer
	if err := h.Mirror.WritePNG(&buf, scale); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.Write(buf.Bytes())
}

// ServeIndex serves the main HTML page (root path only).
func (h *Handlers) ServeIndex(w http.ResponseWriter, r *http.Request) {
	data, err := fs.ReadFile(h.staticFS, "index.html")
	if err != nil {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(data)
}

// HandleStatusStream handles GET /status/stream for SSE.
func (h *Handlers) HandleStatusStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no") // nginx

	ch, unsub := h.Broadcaster.Subscribe()
	debug.Live("SSE client connected (%d open)", h.Broadcaster.Clients())
	defer func() {
		unsub()
		debug.Live("SSE client gone (%d open)", h.Broadcaster.Clients())
	}()

	// Send initial comment to establish connection
	w.Write([]byte(": connected\n\n"))
	flusher.Flush()

	// Heartbeat while idle
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case msg, ok := <-ch:
			if !ok {
				return
			}
			w.Write([]byte("data: " + msg + "\n\n"))
			flusher.Flush()

		case <-ticker.C:
			w.Write([]byte(": heartbeat\n\n"))
			flusher.Flush()

		case <-r.Context().Done():
			return
		}
	}
}
