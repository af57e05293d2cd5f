// Package gutter draws the margin beside a text view: line numbers, a
// band behind the caret line or the selected lines, one marked line and
// a dimming overlay while the window is unfocused.
//
// A Gutter is owned by the UI goroutine. It reads the document and the
// text surface during Paint and never mutates either.
package gutter

import (
	"image"
	"strconv"

	"github.com/jesedit/gutter/document"
	"github.com/jesedit/gutter/draw"
	"github.com/jesedit/gutter/theme"
)

// Document is the line structure the gutter numbers.
type Document interface {
	LineCount() int
	Line(i int) (document.Line, error)
	LineIndex(q int) int
	Subscribe(l document.Listener) (cancel func())
}

// TextSurface is the text view the gutter sits beside. Both mappings
// fail for offsets or points that are not on the rendered document.
type TextSurface interface {
	Document() *document.Document
	Caret() int
	Selection() (q0, q1 int)
	ModelToView(q int) (image.Rectangle, error)
	ViewToModel(pt image.Point) (int, error)
}

// Painter draws into the gutter after the line numbers.
type Painter interface {
	Paint(dst draw.Image, clip image.Rectangle)
}

const defaultMargin = 3

type Gutter struct {
	ts     TextSurface
	doc    Document
	cancel func()

	r          image.Rectangle
	font       draw.Font
	margin     int
	invalidate func()
	children   []Painter

	lines   int
	mark    int // 1-based; 0 when unset
	dark    bool
	focused bool

	tiles theme.Cache
}

// Option configures a Gutter at construction.
type Option func(*Gutter)

// OptInvalidate sets the function called when the gutter needs
// repainting. Calls may arrive in bursts; the host coalesces them.
func OptInvalidate(f func()) Option {
	return func(g *Gutter) {
		g.invalidate = f
	}
}

// OptFont sets the font for the line numbers. The default is the
// editor font.
func OptFont(f draw.Font) Option {
	return func(g *Gutter) {
		g.font = f
	}
}

// OptMargin sets the horizontal padding on each side of the numbers.
func OptMargin(m int) Option {
	return func(g *Gutter) {
		g.margin = m
	}
}

// New returns a gutter for ts, following the document ts shows.
func New(ts TextSurface, editorfont draw.Font, opts ...Option) *Gutter {
	g := &Gutter{
		ts:         ts,
		font:       editorfont,
		margin:     defaultMargin,
		invalidate: func() {},
	}
	for _, o := range opts {
		o(g)
	}
	if doc := ts.Document(); doc != nil {
		g.SetDocument(doc)
	}
	return g
}

// SetDocument stops listening to the previous document and follows doc.
// A nil doc leaves the gutter without numbers.
func (g *Gutter) SetDocument(doc Document) {
	if g.cancel != nil {
		g.cancel()
		g.cancel = nil
	}
	g.doc = doc
	g.lines = 0
	if doc != nil {
		g.cancel = doc.Subscribe(g)
		g.lines = doc.LineCount()
	}
	g.invalidate()
}

// SetTextSurface changes the view whose caret, selection and mapping
// the gutter reads. The followed document is unchanged.
func (g *Gutter) SetTextSurface(ts TextSurface) {
	g.ts = ts
	g.invalidate()
}

// Close stops listening to the document and frees the colour tiles.
func (g *Gutter) Close() {
	if g.cancel != nil {
		g.cancel()
		g.cancel = nil
	}
	g.tiles.Free()
}

// SetMarkedLine marks the 1-based line. Lines below 1 clear the mark.
func (g *Gutter) SetMarkedLine(line int) {
	if line < 1 {
		g.ClearMarkedLine()
		return
	}
	if g.mark != line {
		g.mark = line
		g.invalidate()
	}
}

func (g *Gutter) ClearMarkedLine() {
	if g.mark != 0 {
		g.mark = 0
		g.invalidate()
	}
}

// MarkedLine returns the marked 1-based line and whether there is one.
func (g *Gutter) MarkedLine() (int, bool) {
	return g.mark, g.mark != 0
}

func (g *Gutter) SetDarkMode(enabled bool) {
	g.dark = enabled
	g.invalidate()
}

func (g *Gutter) DarkMode() bool { return g.dark }

func (g *Gutter) SetFocused(enabled bool) {
	g.focused = enabled
	g.invalidate()
}

func (g *Gutter) Focused() bool { return g.focused }

// LineCount returns the line count as of the last line break edit.
func (g *Gutter) LineCount() int { return g.lines }

// DocumentChanged recounts the lines when the edit inserted or removed
// a newline. Edits whose text can no longer be read are ignored.
func (g *Gutter) DocumentChanged(c document.Change) {
	if c.Kind == document.Attribute {
		return
	}
	text, err := c.Text()
	if err != nil {
		return
	}
	for _, r := range text {
		if r == '\n' {
			g.lines = g.doc.LineCount()
			g.invalidate()
			return
		}
	}
}

// AddChild appends p to the painters run after the numbers.
func (g *Gutter) AddChild(p Painter) {
	g.children = append(g.children, p)
}

func (g *Gutter) Rect() image.Rectangle { return g.r }

func (g *Gutter) Resize(r image.Rectangle) {
	g.r = r
}

// Width is the width needed to show every line number, at least two
// digits wide.
func (g *Gutter) Width() int {
	digits := len(strconv.Itoa(g.lines))
	if digits < 2 {
		digits = 2
	}
	return digits*g.font.StringWidth("0") + 2*g.margin
}
