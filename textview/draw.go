package textview

import (
	"image"

	"github.com/jesedit/gutter/draw"
	"github.com/jesedit/gutter/theme"
)

// Draw paints the background, the selection, the visible lines and the
// caret tick into dst. Lines that cannot be read are left blank.
func (v *View) Draw(dst draw.Image) error {
	d := dst.Display()
	pal := theme.Current()
	back, err := v.tiles.Tile(d, pal.TextColBack)
	if err != nil {
		return err
	}
	high, err := v.tiles.Tile(d, pal.TextColHigh)
	if err != nil {
		return err
	}
	text, err := v.tiles.Tile(d, pal.TextColText)
	if err != nil {
		return err
	}
	tick, err := v.tiles.Tile(d, pal.TickColor)
	if err != nil {
		return err
	}

	dst.Draw(v.r, back, nil, image.Point{})

	h := v.font.Height()
	for line, y := v.org, v.r.Min.Y; line < v.doc.LineCount() && y+h <= v.r.Max.Y; line, y = line+1, y+h {
		ln, err := v.doc.Line(line)
		if err != nil {
			continue
		}
		runes, err := v.doc.Slice(ln.Start, ln.End)
		if err != nil {
			continue
		}
		if v.q0 != v.q1 && v.q0 < ln.End && v.q1 > ln.Start {
			v.drawselection(dst, high, ln.Start, runes, y)
		}
		v.drawline(dst, text, trimnewline(runes), y)
	}

	if v.q0 == v.q1 {
		if r, err := v.ModelToView(v.caret); err == nil {
			r = r.Intersect(v.r)
			if !r.Empty() {
				dst.Draw(r, tick, nil, image.Point{})
			}
		}
	}
	return nil
}

// drawselection fills the selected part of the line whose text runes
// start at q. A selected newline extends the fill to the right edge.
func (v *View) drawselection(dst, high draw.Image, q int, runes []rune, y int) {
	s0 := max(v.q0-q, 0)
	s1 := min(v.q1-q, len(runes))
	x0 := v.xof(runes[:s0])
	x1 := v.r.Max.X
	if s1 < len(runes) || len(runes) == 0 || runes[len(runes)-1] != '\n' {
		x1 = v.xof(runes[:s1])
	}
	r := image.Rect(x0, y, x1, y+v.font.Height()).Intersect(v.r)
	if !r.Empty() {
		dst.Draw(r, high, nil, image.Point{})
	}
}

// drawline draws runes split at tabs so that each run starts on its
// tab stop.
func (v *View) drawline(dst, text draw.Image, runes []rune, y int) {
	x := v.r.Min.X
	start := 0
	flush := func(end int) {
		if end > start {
			b := []byte(string(runes[start:end]))
			dst.Bytes(image.Pt(x, y), text, image.Point{}, v.font, b)
			x = v.xof(runes[:end])
		}
	}
	for i, r := range runes {
		if r == '\t' {
			flush(i)
			x = v.xof(runes[:i+1])
			start = i + 1
		}
	}
	flush(len(runes))
}
