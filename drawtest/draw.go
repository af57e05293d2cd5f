// Package drawtest contains a mock draw.Display that records the draw
// operations issued against it so that tests can compare them as text.
package drawtest

import (
	"fmt"
	"image"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/jesedit/gutter/draw"
)

var _ = draw.Display((*mockDisplay)(nil))

// GettableDrawOps display implementations can provide a list of the
// executed draw ops.
type GettableDrawOps interface {
	DrawOps() []string
	Clear()
}

// mockDisplay implements draw.Display.
type mockDisplay struct {
	mu          sync.Mutex
	drawops     []string
	screenimage draw.Image
	fontwidth   int
	fontheight  int
	nalloc      int
}

// NewDisplay returns a mock draw.Display whose screen image covers r.
// Fonts opened on it are fixed width with the given metrics.
func NewDisplay(r image.Rectangle, fontwidth, fontheight int) draw.Display {
	md := &mockDisplay{
		fontwidth:  fontwidth,
		fontheight: fontheight,
	}
	md.screenimage = newimageimpl(md, "screen", draw.Notacolor, r)
	return md
}

func (d *mockDisplay) ScreenImage() draw.Image { return d.screenimage }

func (d *mockDisplay) White() draw.Image {
	return newimageimpl(d, "white", draw.White, image.Rectangle{})
}
func (d *mockDisplay) Black() draw.Image {
	return newimageimpl(d, "black", draw.Black, image.Rectangle{})
}
func (d *mockDisplay) Opaque() draw.Image {
	return newimageimpl(d, "opaque", draw.Opaque, image.Rectangle{})
}
func (d *mockDisplay) Transparent() draw.Image {
	return newimageimpl(d, "transparent", draw.Transparent, image.Rectangle{})
}
func (d *mockDisplay) InitKeyboard() *draw.Keyboardctl { return &draw.Keyboardctl{} }
func (d *mockDisplay) InitMouse() *draw.Mousectl       { return &draw.Mousectl{} }

func (d *mockDisplay) OpenFont(name string) (draw.Font, error) {
	return NewFont(d.fontwidth, d.fontheight), nil
}

func (d *mockDisplay) AllocImage(r image.Rectangle, pix draw.Pix, repl bool, val draw.Color) (draw.Image, error) {
	d.mu.Lock()
	d.nalloc++
	d.mu.Unlock()
	return &mockImage{
		d:    d,
		r:    r,
		c:    val,
		repl: repl,
	}, nil
}

func (d *mockDisplay) Attach(ref int) error { return nil }
func (d *mockDisplay) Flush() error         { return nil }
func (d *mockDisplay) ScaleSize(n int) int  { return n }

func (d *mockDisplay) DrawOps() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.drawops...)
}

func (d *mockDisplay) Clear() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.drawops = nil
}

func (d *mockDisplay) record(op string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.drawops = append(d.drawops, op)
}

// Allocations reports how many images have been allocated on display,
// which must have come from NewDisplay.
func Allocations(display draw.Display) int {
	d := display.(*mockDisplay)
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.nalloc
}

var _ = draw.Image((*mockImage)(nil))

// mockImage implements draw.Image.
type mockImage struct {
	r    image.Rectangle
	d    *mockDisplay
	n    string
	c    draw.Color
	repl bool
}

// newimageimpl creates a new mockImage. Use Notacolor for the situation
// where the name of the image takes precedence.
func newimageimpl(d *mockDisplay, name string, c draw.Color, r image.Rectangle) draw.Image {
	return &mockImage{
		r: r,
		d: d,
		c: c,
		n: name,
	}
}

// NewImage returns a mock draw.Image with the given bounds.
func NewImage(display draw.Display, name string, r image.Rectangle) draw.Image {
	d := display.(*mockDisplay)
	return newimageimpl(d, name, draw.Notacolor, r)
}

func (i *mockImage) Display() draw.Display { return i.d }
func (i *mockImage) Pix() draw.Pix         { return 0 }
func (i *mockImage) R() image.Rectangle    { return i.r }

// Draw records a fill when src is a replicated colour tile and a blit
// otherwise. The real draw API does not make this distinction; it only
// makes the recorded ops easier to read.
func (i *mockImage) Draw(r image.Rectangle, src, mask draw.Image, p1 image.Point) {
	srcname := "nil"
	repl := false
	if msrc, ok := src.(*mockImage); ok {
		srcname = msrc.N()
		repl = msrc.repl
	}

	var op string
	switch {
	case repl:
		op = fmt.Sprintf("%s <- fill %v %s", i.n, r, srcname)
	default:
		op = fmt.Sprintf("%s <- blit %v from %s at %v", i.n, r, srcname, p1)
	}
	i.d.record(op)
}

func (i *mockImage) Bytes(pt image.Point, src draw.Image, sp image.Point, f draw.Font, b []byte) image.Point {
	srcname := "nil"
	if msrc, ok := src.(*mockImage); ok {
		srcname = msrc.N()
	}
	i.d.record(fmt.Sprintf("%s <- string %q atpoint: %v fill: %s", i.n, string(b), pt, srcname))
	return pt.Add(image.Pt(f.BytesWidth(b), 0))
}

func (i *mockImage) Free() error { return nil }

// N returns a nicename for the image colour.
func (i *mockImage) N() string {
	if i.c == draw.Notacolor {
		return i.n
	}
	return NiceColourName(i.c)
}

var _ = draw.Font((*mockFont)(nil))

// mockFont implements draw.Font and mocks a fixed width font.
type mockFont struct {
	width, height int
}

// NewFont returns a draw.Font that mocks a fixed-width font.
func NewFont(width, height int) draw.Font {
	return &mockFont{
		width:  width,
		height: height,
	}
}

const mockfontname = "/lib/font/bit/lucsans/euro.8.font"

func (f *mockFont) Name() string             { return mockfontname }
func (f *mockFont) Height() int              { return f.height }
func (f *mockFont) BytesWidth(b []byte) int  { return f.width * utf8.RuneCount(b) }
func (f *mockFont) RunesWidth(r []rune) int  { return f.width * len(r) }
func (f *mockFont) StringWidth(s string) int { return f.width * utf8.RuneCountInString(s) }

// Filter returns the ops that contain every one of the given substrings.
func Filter(ops []string, substrs ...string) []string {
	var out []string
	for _, op := range ops {
		keep := true
		for _, s := range substrs {
			if !strings.Contains(op, s) {
				keep = false
				break
			}
		}
		if keep {
			out = append(out, op)
		}
	}
	return out
}
