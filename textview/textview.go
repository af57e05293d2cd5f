// Package textview is a small text editing surface: one document shown
// as unwrapped lines of a single font, with a caret, a selection and a
// vertical scroll origin. It maps between rune offsets and screen
// points for the gutter beside it.
package textview

import (
	"errors"
	"fmt"
	"image"

	"github.com/jesedit/gutter/document"
	"github.com/jesedit/gutter/draw"
	"github.com/jesedit/gutter/theme"
)

// ErrOutside is returned when an offset or point does not fall on the
// document's rendered extent.
var ErrOutside = errors.New("outside text")

// maxtab is the tab width in '0' characters.
const maxtab = 4

type View struct {
	r      image.Rectangle
	font   draw.Font
	doc    *document.Document
	cancel func()

	org    int // first displayed line
	q0, q1 int // selection
	caret  int

	tiles theme.Cache
}

// New returns a view of doc drawn with font inside r.
func New(r image.Rectangle, font draw.Font, doc *document.Document) *View {
	v := &View{
		r:    r,
		font: font,
	}
	v.SetDocument(doc)
	return v
}

// SetDocument shows doc from its first line with the caret at 0.
func (v *View) SetDocument(doc *document.Document) {
	if v.cancel != nil {
		v.cancel()
	}
	v.doc = doc
	v.cancel = doc.Subscribe(v)
	v.org, v.q0, v.q1, v.caret = 0, 0, 0, 0
}

func (v *View) Document() *document.Document { return v.doc }

// Close stops following the document.
func (v *View) Close() {
	if v.cancel != nil {
		v.cancel()
		v.cancel = nil
	}
	v.tiles.Free()
}

func (v *View) Rect() image.Rectangle { return v.r }
func (v *View) Font() draw.Font       { return v.font }

func (v *View) Resize(r image.Rectangle) {
	v.r = r
}

// Caret returns the insertion point.
func (v *View) Caret() int { return v.caret }

// Selection returns the selected range. q0 == q1 when nothing is
// selected.
func (v *View) Selection() (q0, q1 int) { return v.q0, v.q1 }

// SetCaret moves the insertion point to q and drops the selection.
func (v *View) SetCaret(q int) {
	q = clamp(q, 0, v.doc.Len())
	v.q0, v.q1, v.caret = q, q, q
}

// Select selects [q0, q1) and leaves the caret at q1.
func (v *View) Select(q0, q1 int) {
	n := v.doc.Len()
	q0, q1 = clamp(q0, 0, n), clamp(q1, 0, n)
	v.caret = q1
	if q1 < q0 {
		q0, q1 = q1, q0
	}
	v.q0, v.q1 = q0, q1
}

// DocumentChanged keeps the caret and selection on the same text.
func (v *View) DocumentChanged(c document.Change) {
	switch c.Kind {
	case document.Insert:
		shift := func(q int) int {
			if c.Offset < q {
				return q + c.Length
			}
			return q
		}
		v.q0, v.q1, v.caret = shift(v.q0), shift(v.q1), shift(v.caret)
	case document.Remove:
		end := c.Offset + c.Length
		shift := func(q int) int {
			switch {
			case q > end:
				return q - c.Length
			case q > c.Offset:
				return c.Offset
			}
			return q
		}
		v.q0, v.q1, v.caret = shift(v.q0), shift(v.q1), shift(v.caret)
	}
	if n := v.doc.LineCount(); v.org >= n {
		v.org = n - 1
	}
}

// Origin returns the index of the first displayed line.
func (v *View) Origin() int { return v.org }

// SetOrigin scrolls so that line is the first displayed.
func (v *View) SetOrigin(line int) {
	v.org = clamp(line, 0, v.doc.LineCount()-1)
}

// Scroll moves the origin by n lines.
func (v *View) Scroll(n int) { v.SetOrigin(v.org + n) }

// Visible returns how many whole lines fit in the view.
func (v *View) Visible() int {
	n := v.r.Dy() / v.font.Height()
	if n < 1 {
		n = 1
	}
	return n
}

// Show scrolls the minimum needed to put offset q on screen.
func (v *View) Show(q int) {
	line := v.doc.LineIndex(q)
	switch {
	case line < v.org:
		v.SetOrigin(line)
	case line >= v.org+v.Visible():
		v.SetOrigin(line - v.Visible() + 1)
	}
}

// ModelToView returns the rectangle of the insertion point before
// offset q. Lines scrolled off the top map above the view.
func (v *View) ModelToView(q int) (image.Rectangle, error) {
	if q < 0 || q > v.doc.Len() {
		return image.Rectangle{}, fmt.Errorf("offset %d: %w", q, ErrOutside)
	}
	i := v.doc.LineIndex(q)
	ln, err := v.doc.Line(i)
	if err != nil {
		return image.Rectangle{}, fmt.Errorf("offset %d: %w", q, err)
	}
	prefix, err := v.doc.Slice(ln.Start, q)
	if err != nil {
		return image.Rectangle{}, fmt.Errorf("offset %d: %w", q, err)
	}
	h := v.font.Height()
	x := v.xof(prefix)
	y := v.r.Min.Y + (i-v.org)*h
	return image.Rect(x, y, x+1, y+h), nil
}

// ViewToModel returns the offset nearest pt. Points above the first or
// below the last line of the document have no offset.
func (v *View) ViewToModel(pt image.Point) (int, error) {
	h := v.font.Height()
	line := v.org + floordiv(pt.Y-v.r.Min.Y, h)
	ln, err := v.doc.Line(line)
	if err != nil {
		return 0, fmt.Errorf("point %v: %w", pt, ErrOutside)
	}
	runes, err := v.doc.Slice(ln.Start, ln.End)
	if err != nil {
		return 0, fmt.Errorf("point %v: %w", pt, err)
	}
	runes = trimnewline(runes)

	x := v.r.Min.X
	for i, r := range runes {
		nx := v.advance(x, r)
		if pt.X < (x+nx)/2 {
			return ln.Start + i, nil
		}
		x = nx
	}
	return ln.Start + len(runes), nil
}

// xof returns the x coordinate after laying out runes from the left
// edge.
func (v *View) xof(runes []rune) int {
	x := v.r.Min.X
	for _, r := range runes {
		x = v.advance(x, r)
	}
	return x
}

func (v *View) advance(x int, r rune) int {
	if r == '\t' {
		tabw := maxtab * v.font.StringWidth("0")
		if tabw <= 0 {
			return x
		}
		return v.r.Min.X + ((x-v.r.Min.X)/tabw+1)*tabw
	}
	return x + v.font.RunesWidth([]rune{r})
}

func trimnewline(r []rune) []rune {
	if n := len(r); n > 0 && r[n-1] == '\n' {
		return r[:n-1]
	}
	return r
}

func floordiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
