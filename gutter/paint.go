package gutter

import (
	"image"
	"strconv"

	"github.com/jesedit/gutter/draw"
	"github.com/jesedit/gutter/theme"
)

// Paint draws the gutter into dst. Lines whose position cannot be
// mapped are skipped and the rest of the gutter is still drawn.
func (g *Gutter) Paint(dst draw.Image, clip image.Rectangle) {
	if g.r.Empty() {
		return
	}
	d := dst.Display()
	pal := theme.Gutter(g.dark)

	if g.dark {
		g.fill(dst, d, g.r, pal.Background)
	}

	if g.doc != nil {
		g.numbers(dst, d, clip, pal)
	}

	for _, c := range g.children {
		c.Paint(dst, clip)
	}

	if !g.focused {
		g.fill(dst, d, g.r, pal.Unfocused)
	}
}

// numbers draws the highlight bands and the line numbers visible in
// clip.
func (g *Gutter) numbers(dst draw.Image, d draw.Display, clip image.Rectangle, pal theme.GutterPalette) {
	caretline := g.doc.LineIndex(g.ts.Caret())
	first, last := g.VisibleLines(clip)

	q0, q1 := g.ts.Selection()
	selected := q0 != q1
	sel0, sel1 := -1, -1
	if selected {
		sel0, sel1 = g.doc.LineIndex(q0), g.doc.LineIndex(q1)
		if band, err := g.selectionband(sel0, sel1); err == nil {
			g.fill(dst, d, band, pal.Highlight)
		}
	}

	for i := first; i <= last; i++ {
		ln, err := g.doc.Line(i)
		if err != nil {
			continue
		}
		tr, err := g.ts.ModelToView(ln.Start)
		if err != nil {
			continue
		}
		if tr.Max.Y <= g.r.Min.Y || tr.Min.Y >= g.r.Max.Y {
			continue
		}
		current := i == caretline && !selected
		if current {
			g.fill(dst, d, g.band(tr.Min.Y, tr.Max.Y), pal.Highlight)
		}
		col := pal.Dim
		if current || (i >= sel0 && i <= sel1) {
			col = pal.Foreground
		}
		if i+1 == g.mark {
			col = pal.Mark
		}
		g.number(dst, d, i+1, tr, col)
	}
}

// VisibleLines returns the first and last line indices drawn for clip.
// A bound that cannot be mapped falls back to the start or end of the
// document. last may be one past the final line. Without a document
// the range is empty.
func (g *Gutter) VisibleLines(clip image.Rectangle) (first, last int) {
	if g.doc == nil {
		return 0, -1
	}
	first, last = 0, g.doc.LineCount()
	if q, err := g.ts.ViewToModel(image.Pt(clip.Min.X, clip.Min.Y)); err == nil {
		first = g.doc.LineIndex(q - 1)
	}
	if q, err := g.ts.ViewToModel(image.Pt(clip.Min.X, clip.Max.Y)); err == nil {
		last = g.doc.LineIndex(q + 1)
	}
	return first, last
}

// selectionband spans from the top of line sel0 to the bottom of line
// sel1.
func (g *Gutter) selectionband(sel0, sel1 int) (image.Rectangle, error) {
	l0, err := g.doc.Line(sel0)
	if err != nil {
		return image.Rectangle{}, err
	}
	l1, err := g.doc.Line(sel1)
	if err != nil {
		return image.Rectangle{}, err
	}
	tr, err := g.ts.ModelToView(l0.Start)
	if err != nil {
		return image.Rectangle{}, err
	}
	br, err := g.ts.ModelToView(l1.Start)
	if err != nil {
		return image.Rectangle{}, err
	}
	return g.band(tr.Min.Y, br.Max.Y), nil
}

// band is a full width strip from y0 to y1 grown by a pixel each way.
func (g *Gutter) band(y0, y1 int) image.Rectangle {
	return image.Rect(g.r.Min.X, y0-1, g.r.Max.X, y1+1).Intersect(g.r)
}

func (g *Gutter) fill(dst draw.Image, d draw.Display, r image.Rectangle, col draw.Color) {
	if r.Empty() {
		return
	}
	tile, err := g.tiles.Tile(d, col)
	if err != nil {
		return
	}
	dst.Draw(r, tile, nil, image.Point{})
}

// number draws n right aligned in the gutter and centred on the line
// rectangle tr.
func (g *Gutter) number(dst draw.Image, d draw.Display, n int, tr image.Rectangle, col draw.Color) {
	tile, err := g.tiles.Tile(d, col)
	if err != nil {
		return
	}
	s := strconv.Itoa(n)
	x := g.r.Max.X - g.margin - g.font.StringWidth(s)
	y := tr.Min.Y + tr.Dy()/2 - g.font.Height()/2
	dst.Bytes(image.Pt(x, y), tile, image.Point{}, g.font, []byte(s))
}
