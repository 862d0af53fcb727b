package watch

import (
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Source delivers raw file events for watched directories.
type Source interface {
	Add(dir string) error
	Remove(dir string) error
	Events() <-chan Event
	Errors() <-chan error
	Close() error
}

// fsSource is a Source backed by fsnotify.
type fsSource struct {
	w *fsnotify.Watcher

	events chan Event
	errors chan error

	mu      sync.Mutex
	closed  bool
	closeCh chan struct{}
	wg      sync.WaitGroup
}

// NewFSSource starts an fsnotify watcher.
func NewFSSource(bufSize int) (Source, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if bufSize <= 0 {
		bufSize = 100
	}
	s := &fsSource{
		w:       w,
		events:  make(chan Event, bufSize),
		errors:  make(chan error, bufSize),
		closeCh: make(chan struct{}),
	}
	s.wg.Add(1)
	go s.processLoop()
	return s, nil
}

func (s *fsSource) Add(dir string) error    { return s.w.Add(dir) }
func (s *fsSource) Remove(dir string) error { return s.w.Remove(dir) }
func (s *fsSource) Events() <-chan Event    { return s.events }
func (s *fsSource) Errors() <-chan error    { return s.errors }

// Close stops the event loop and closes both channels.
func (s *fsSource) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	close(s.closeCh)
	s.mu.Unlock()

	s.wg.Wait()
	close(s.events)
	close(s.errors)
	return s.w.Close()
}

func (s *fsSource) processLoop() {
	defer s.wg.Done()

	for {
		select {
		case <-s.closeCh:
			return

		case fe, ok := <-s.w.Events:
			if !ok {
				return
			}
			op := convertOp(fe.Op)
			if op == 0 {
				continue
			}
			select {
			case s.events <- Event{Path: fe.Name, Op: op, Timestamp: time.Now()}:
			case <-s.closeCh:
				return
			}

		case err, ok := <-s.w.Errors:
			if !ok {
				return
			}
			select {
			case s.errors <- err:
			default:
				// Channel full, drop error
			}
		}
	}
}

func convertOp(fsOp fsnotify.Op) Op {
	var op Op
	if fsOp.Has(fsnotify.Create) {
		op |= OpCreate
	}
	if fsOp.Has(fsnotify.Write) {
		op |= OpWrite
	}
	if fsOp.Has(fsnotify.Remove) {
		op |= OpRemove
	}
	if fsOp.Has(fsnotify.Rename) {
		op |= OpRename
	}
	if fsOp.Has(fsnotify.Chmod) {
		op |= OpChmod
	}
	return op
}
