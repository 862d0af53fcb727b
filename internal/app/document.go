package app

import (
	"path/filepath"
	"sync"

	"github.com/google/uuid"

	"github.com/dshills/tedit/internal/engine"
	"github.com/dshills/tedit/internal/mode"
)

// Document is an open document with its mode and highlighter.
type Document struct {
	*engine.Document

	mu          sync.Mutex
	mode        *mode.Mode
	highlighter *mode.Highlighter
}

func newDocument(doc *engine.Document, m *mode.Mode) *Document {
	d := &Document{Document: doc}
	d.setMode(m)
	return d
}

// EditMode returns the document's editing mode, or nil.
func (d *Document) EditMode() *mode.Mode {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.mode
}

// Highlights returns the current highlights, or nil without a mode.
func (d *Document) Highlights() []mode.Highlight {
	d.mu.Lock()
	h := d.highlighter
	d.mu.Unlock()
	if h == nil {
		return nil
	}
	return h.Highlights()
}

func (d *Document) setMode(m *mode.Mode) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.highlighter != nil {
		d.highlighter.Close()
		d.highlighter = nil
	}
	d.mode = m
	if m != nil {
		d.Document.SetMode(m.Name)
		d.highlighter = mode.NewHighlighter(d.Document, m)
	}
}

func (d *Document) close() {
	d.setMode(nil)
}

// DocumentManager indexes open documents by ID and by absolute path.
type DocumentManager struct {
	mu     sync.RWMutex
	byID   map[uuid.UUID]*Document
	byPath map[string]uuid.UUID
	order  []uuid.UUID // open order
}

// NewDocumentManager creates a new document manager.
func NewDocumentManager() *DocumentManager {
	return &DocumentManager{
		byID:   make(map[uuid.UUID]*Document),
		byPath: make(map[string]uuid.UUID),
	}
}

func (dm *DocumentManager) add(doc *Document) {
	dm.mu.Lock()
	defer dm.mu.Unlock()
	dm.byID[doc.ID()] = doc
	if doc.Path() != "" {
		dm.byPath[doc.Path()] = doc.ID()
	}
	dm.order = append(dm.order, doc.ID())
}

func (dm *DocumentManager) remove(id uuid.UUID) (*Document, bool) {
	dm.mu.Lock()
	defer dm.mu.Unlock()
	doc, ok := dm.byID[id]
	if !ok {
		return nil, false
	}
	delete(dm.byID, id)
	if doc.Path() != "" {
		delete(dm.byPath, doc.Path())
	}
	for i, o := range dm.order {
		if o == id {
			dm.order = append(dm.order[:i], dm.order[i+1:]...)
			break
		}
	}
	return doc, true
}

// Get returns a document by ID.
func (dm *DocumentManager) Get(id uuid.UUID) (*Document, bool) {
	dm.mu.RLock()
	defer dm.mu.RUnlock()
	doc, ok := dm.byID[id]
	return doc, ok
}

// ByPath returns the document open for path.
func (dm *DocumentManager) ByPath(path string) (*Document, bool) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, false
	}
	dm.mu.RLock()
	defer dm.mu.RUnlock()
	id, ok := dm.byPath[abs]
	if !ok {
		return nil, false
	}
	return dm.byID[id], true
}

// All returns all open documents in open order.
func (dm *DocumentManager) All() []*Document {
	dm.mu.RLock()
	defer dm.mu.RUnlock()
	docs := make([]*Document, 0, len(dm.order))
	for _, id := range dm.order {
		docs = append(docs, dm.byID[id])
	}
	return docs
}

// Count returns the number of open documents.
func (dm *DocumentManager) Count() int {
	dm.mu.RLock()
	defer dm.mu.RUnlock()
	return len(dm.byID)
}

// Modified returns the documents with unsaved changes.
func (dm *DocumentManager) Modified() []*Document {
	var out []*Document
	for _, doc := range dm.All() {
		if doc.Modified() {
			out = append(out, doc)
		}
	}
	return out
}
