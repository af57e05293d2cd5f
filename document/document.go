// Package document is the line-structured text model that the text view
// displays and the gutter numbers. Text is held as runes and offsets are
// rune offsets.
package document

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ErrBadLocation is returned for offsets or line indices that do not
// exist in the document as it is now.
var ErrBadLocation = errors.New("bad location")

// Line is a line element: the half-open rune range [Start, End). End
// includes the terminating newline, if any.
type Line struct {
	Start, End int
}

// Kind says what a Change did.
type Kind int

const (
	Insert Kind = iota
	Remove
	Attribute
)

func (k Kind) String() string {
	switch k {
	case Insert:
		return "insert"
	case Remove:
		return "remove"
	case Attribute:
		return "attribute"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Change describes one mutation. It is delivered after the document has
// been updated.
type Change struct {
	Kind   Kind
	Offset int
	Length int
	Doc    *Document

	removed []rune
}

// Text returns the runes affected by c. Inserted and restyled text is
// read back from the document, so it fails with ErrBadLocation once the
// document has moved on. Removed text travels with the change.
func (c Change) Text() ([]rune, error) {
	if c.Kind == Remove {
		return c.removed, nil
	}
	if c.Doc == nil {
		return nil, ErrBadLocation
	}
	return c.Doc.Slice(c.Offset, c.Offset+c.Length)
}

// Listener is told about every change to a document it subscribed to.
type Listener interface {
	DocumentChanged(Change)
}

// ListenerFunc adapts a function to a Listener.
type ListenerFunc func(Change)

func (f ListenerFunc) DocumentChanged(c Change) { f(c) }

type subscription struct {
	id int
	l  Listener
}

// Document is a mutable rune buffer that knows where its lines start.
// Readers may run concurrently with each other; mutation and listener
// delivery belong to one goroutine.
type Document struct {
	mu     sync.RWMutex
	text   []rune
	starts []int // starts[i] is the offset of line i; starts[0] == 0

	lmu       sync.Mutex
	listeners []subscription
	nextid    int
}

// New returns a document holding s.
func New(s string) *Document {
	d := &Document{text: []rune(s)}
	d.reindex(0)
	return d
}

// Len returns the number of runes in the document.
func (d *Document) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.text)
}

func (d *Document) String() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return string(d.text)
}

// Slice returns a copy of the runes in [q0, q1).
func (d *Document) Slice(q0, q1 int) ([]rune, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if q0 < 0 || q1 < q0 || q1 > len(d.text) {
		return nil, fmt.Errorf("slice [%d,%d) of %d runes: %w", q0, q1, len(d.text), ErrBadLocation)
	}
	return append([]rune(nil), d.text[q0:q1]...), nil
}

// LineCount returns the number of line elements. An empty document
// has one empty line.
func (d *Document) LineCount() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.starts)
}

// Line returns line element i.
func (d *Document) Line(i int) (Line, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if i < 0 || i >= len(d.starts) {
		return Line{}, fmt.Errorf("line %d of %d: %w", i, len(d.starts), ErrBadLocation)
	}
	end := len(d.text)
	if i+1 < len(d.starts) {
		end = d.starts[i+1]
	}
	return Line{Start: d.starts[i], End: end}, nil
}

// LineIndex returns the index of the line holding offset q. Offsets
// before the start or past the end clamp to the first or last line.
func (d *Document) LineIndex(q int) int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.lineindex(q)
}

func (d *Document) lineindex(q int) int {
	if q <= 0 {
		return 0
	}
	// First line starting after q, less one.
	return sort.Search(len(d.starts), func(i int) bool { return d.starts[i] > q }) - 1
}

// Insert adds s at offset q.
func (d *Document) Insert(q int, s string) error {
	r := []rune(s)
	d.mu.Lock()
	if q < 0 || q > len(d.text) {
		n := len(d.text)
		d.mu.Unlock()
		return fmt.Errorf("insert at %d of %d runes: %w", q, n, ErrBadLocation)
	}
	if len(r) == 0 {
		d.mu.Unlock()
		return nil
	}
	line := d.lineindex(q)
	d.text = append(d.text[:q], append(r, d.text[q:]...)...)
	d.reindex(line)
	d.mu.Unlock()

	d.notify(Change{Kind: Insert, Offset: q, Length: len(r), Doc: d})
	return nil
}

// Delete removes the runes in [q0, q1).
func (d *Document) Delete(q0, q1 int) error {
	d.mu.Lock()
	if q0 < 0 || q1 < q0 || q1 > len(d.text) {
		n := len(d.text)
		d.mu.Unlock()
		return fmt.Errorf("delete [%d,%d) of %d runes: %w", q0, q1, n, ErrBadLocation)
	}
	if q0 == q1 {
		d.mu.Unlock()
		return nil
	}
	removed := append([]rune(nil), d.text[q0:q1]...)
	line := d.lineindex(q0)
	d.text = append(d.text[:q0], d.text[q1:]...)
	d.reindex(line)
	d.mu.Unlock()

	d.notify(Change{Kind: Remove, Offset: q0, Length: q1 - q0, Doc: d, removed: removed})
	return nil
}

// SetAttributes announces a style change over [q0, q1). The text is
// unchanged.
func (d *Document) SetAttributes(q0, q1 int) error {
	d.mu.RLock()
	n := len(d.text)
	d.mu.RUnlock()
	if q0 < 0 || q1 < q0 || q1 > n {
		return fmt.Errorf("attributes [%d,%d) of %d runes: %w", q0, q1, n, ErrBadLocation)
	}
	d.notify(Change{Kind: Attribute, Offset: q0, Length: q1 - q0, Doc: d})
	return nil
}

// reindex recomputes line starts from line onwards. Lines before it
// are unaffected by an edit at or after their end.
func (d *Document) reindex(line int) {
	if line <= 0 || line >= len(d.starts) {
		d.starts = append(d.starts[:0], 0)
		line = 0
	} else {
		d.starts = d.starts[:line+1]
	}
	for q := d.starts[line]; q < len(d.text); q++ {
		if d.text[q] == '\n' {
			d.starts = append(d.starts, q+1)
		}
	}
}

// Subscribe adds l to the listeners. The returned function removes it
// again and may be called any number of times.
func (d *Document) Subscribe(l Listener) (cancel func()) {
	d.lmu.Lock()
	defer d.lmu.Unlock()
	d.nextid++
	id := d.nextid
	d.listeners = append(d.listeners, subscription{id: id, l: l})

	var once sync.Once
	return func() {
		once.Do(func() { d.unsubscribe(id) })
	}
}

func (d *Document) unsubscribe(id int) {
	d.lmu.Lock()
	defer d.lmu.Unlock()
	for i, s := range d.listeners {
		if s.id == id {
			d.listeners = append(d.listeners[:i], d.listeners[i+1:]...)
			return
		}
	}
}

// Listeners returns the number of current subscriptions.
func (d *Document) Listeners() int {
	d.lmu.Lock()
	defer d.lmu.Unlock()
	return len(d.listeners)
}

func (d *Document) notify(c Change) {
	d.lmu.Lock()
	subs := append([]subscription(nil), d.listeners...)
	d.lmu.Unlock()
	for _, s := range subs {
		s.l.DocumentChanged(c)
	}
}
