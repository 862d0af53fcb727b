package mode

import (
	"sync"

	"github.com/dshills/tedit/internal/engine"
	"github.com/dshills/tedit/internal/engine/buffer"
)

// Highlighter keeps the highlights of one document current. Results are
// cached until the document reports a change.
type Highlighter struct {
	doc  *engine.Document
	mode *Mode

	mu       sync.Mutex
	stale    bool
	revision uint64
	cache    []Highlight
	builds   int

	unsubscribe func()
}

// NewHighlighter attaches a highlighter to doc. Call Close to detach it.
func NewHighlighter(doc *engine.Document, m *Mode) *Highlighter {
	h := &Highlighter{doc: doc, mode: m, stale: true}
	h.unsubscribe = doc.Subscribe(func(engine.Change) {
		h.mu.Lock()
		h.stale = true
		h.mu.Unlock()
	})
	return h
}

// Mode returns the mode used for highlighting.
func (h *Highlighter) Mode() *Mode {
	return h.mode
}

// Highlights returns the highlights for the whole document.
func (h *Highlighter) Highlights() []Highlight {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.stale && h.doc.Revision() == h.revision {
		return h.cache
	}
	snap := h.doc.Snapshot()
	end := buffer.Point{Line: snap.LineCount() - 1, Column: len(snap.LineRunes(snap.LineCount() - 1))}
	h.cache = h.mode.Highlights(snap, buffer.Point{}, end)
	h.revision = snap.Revision()
	h.stale = false
	h.builds++
	return h.cache
}

// Line returns the highlights that start on line.
func (h *Highlighter) Line(line int) []Highlight {
	var out []Highlight
	for _, hl := range h.Highlights() {
		if hl.Span.Start.Line == line {
			out = append(out, hl)
		}
	}
	return out
}

// Builds reports how many times highlights were computed.
func (h *Highlighter) Builds() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.builds
}

// Close stops listening for document changes.
func (h *Highlighter) Close() {
	h.unsubscribe()
}
