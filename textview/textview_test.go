package textview

import (
	"errors"
	"image"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/jesedit/gutter/document"
	"github.com/jesedit/gutter/drawtest"
)

var viewrect = image.Rect(30, 0, 300, 100)

func newview(text string) *View {
	return New(viewrect, drawtest.NewFont(7, 10), document.New(text))
}

func TestModelToView(t *testing.T) {
	v := newview("ab\ncd\n\tx")

	for _, tc := range []struct {
		q    int
		want image.Rectangle
	}{
		{0, image.Rect(30, 0, 31, 10)},
		{2, image.Rect(44, 0, 45, 10)},
		{4, image.Rect(37, 10, 38, 20)},
		{7, image.Rect(58, 20, 59, 30)},
		{8, image.Rect(65, 20, 66, 30)},
	} {
		got, err := v.ModelToView(tc.q)
		if err != nil {
			t.Errorf("ModelToView(%d) failed: %v", tc.q, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ModelToView(%d) = %v, want %v", tc.q, got, tc.want)
		}
	}

	for _, q := range []int{-1, 9} {
		if _, err := v.ModelToView(q); !errors.Is(err, ErrOutside) {
			t.Errorf("ModelToView(%d) error = %v, want ErrOutside", q, err)
		}
	}
}

func TestViewToModel(t *testing.T) {
	v := newview("ab\ncd\n\tx")

	for _, tc := range []struct {
		pt   image.Point
		want int
	}{
		{image.Pt(30, 15), 3},
		{image.Pt(36, 15), 4},
		{image.Pt(250, 5), 2},
		{image.Pt(0, 5), 0},
		{image.Pt(60, 29), 7},
	} {
		got, err := v.ViewToModel(tc.pt)
		if err != nil {
			t.Errorf("ViewToModel(%v) failed: %v", tc.pt, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ViewToModel(%v) = %d, want %d", tc.pt, got, tc.want)
		}
	}

	for _, pt := range []image.Point{{30, -1}, {30, 30}, {30, 95}} {
		if _, err := v.ViewToModel(pt); !errors.Is(err, ErrOutside) {
			t.Errorf("ViewToModel(%v) error = %v, want ErrOutside", pt, err)
		}
	}
}

func TestScrolledMapping(t *testing.T) {
	v := newview("ab\ncd\n\tx")
	v.SetOrigin(1)

	r, err := v.ModelToView(0)
	if err != nil {
		t.Fatal(err)
	}
	if want := image.Rect(30, -10, 31, 0); r != want {
		t.Errorf("ModelToView(0) = %v, want %v", r, want)
	}
	q, err := v.ViewToModel(image.Pt(30, 0))
	if err != nil {
		t.Fatal(err)
	}
	if q != 3 {
		t.Errorf("ViewToModel got %d, want 3", q)
	}

	v.SetOrigin(10)
	if got, want := v.Origin(), 2; got != want {
		t.Errorf("origin %d, want %d", got, want)
	}
	v.Scroll(-5)
	if got := v.Origin(); got != 0 {
		t.Errorf("origin %d, want 0", got)
	}
}

func TestShow(t *testing.T) {
	v := newview(strings.Repeat("line\n", 30))
	if got := v.Visible(); got != 10 {
		t.Fatalf("Visible() = %d, want 10", got)
	}

	v.Show(20 * 5)
	if got, want := v.Origin(), 11; got != want {
		t.Errorf("after Show down origin %d, want %d", got, want)
	}
	v.Show(3 * 5)
	if got, want := v.Origin(), 3; got != want {
		t.Errorf("after Show up origin %d, want %d", got, want)
	}
	v.Show(5 * 5)
	if got, want := v.Origin(), 3; got != want {
		t.Errorf("visible Show moved origin to %d", got)
	}
}

func TestSelectionFollowsEdits(t *testing.T) {
	v := newview("ab\ncd\n\tx")
	doc := v.Document()

	v.SetCaret(4)
	if err := doc.Insert(0, "zz"); err != nil {
		t.Fatal(err)
	}
	if got := v.Caret(); got != 6 {
		t.Errorf("caret after insert before it %d, want 6", got)
	}
	if err := doc.Insert(6, "y"); err != nil {
		t.Fatal(err)
	}
	if got := v.Caret(); got != 6 {
		t.Errorf("caret after insert at it %d, want 6", got)
	}
	if err := doc.Delete(0, 5); err != nil {
		t.Fatal(err)
	}
	if got := v.Caret(); got != 1 {
		t.Errorf("caret after delete %d, want 1", got)
	}

	v.Select(5, 2)
	q0, q1 := v.Selection()
	if q0 != 2 || q1 != 5 || v.Caret() != 2 {
		t.Errorf("Select(5, 2) gave %d,%d caret %d", q0, q1, v.Caret())
	}
	if err := doc.Delete(3, doc.Len()); err != nil {
		t.Fatal(err)
	}
	q0, q1 = v.Selection()
	if q0 != 2 || q1 != 3 {
		t.Errorf("selection after truncation %d,%d, want 2,3", q0, q1)
	}
}

func TestEditing(t *testing.T) {
	v := newview("ab")
	doc := v.Document()

	v.SetCaret(1)
	if err := v.Type('x'); err != nil {
		t.Fatal(err)
	}
	if got := doc.String(); got != "axb" || v.Caret() != 2 {
		t.Errorf("after Type got %q caret %d", got, v.Caret())
	}

	v.Select(0, 2)
	if err := v.Type('q'); err != nil {
		t.Fatal(err)
	}
	if got := doc.String(); got != "qb" || v.Caret() != 1 {
		t.Errorf("after replacing selection got %q caret %d", got, v.Caret())
	}

	if err := v.Backspace(); err != nil {
		t.Fatal(err)
	}
	if got := doc.String(); got != "b" || v.Caret() != 0 {
		t.Errorf("after Backspace got %q caret %d", got, v.Caret())
	}
	if err := v.Backspace(); err != nil {
		t.Fatal(err)
	}
	if got := doc.String(); got != "b" {
		t.Errorf("Backspace at start changed text to %q", got)
	}

	v.MoveCaret(5)
	if got := v.Caret(); got != 1 {
		t.Errorf("MoveCaret past end gave %d", got)
	}
}

func TestMoveLine(t *testing.T) {
	v := newview("abcd\nx\nabc")

	v.SetCaret(3)
	v.MoveLine(1)
	if got := v.Caret(); got != 6 {
		t.Errorf("down into short line: caret %d, want 6", got)
	}
	v.MoveLine(1)
	if got := v.Caret(); got != 8 {
		t.Errorf("down to last line: caret %d, want 8", got)
	}
	v.MoveLine(-5)
	if got := v.Caret(); got != 1 {
		t.Errorf("up past top: caret %d, want 1", got)
	}

	v.GotoLine(3)
	if got := v.Caret(); got != 7 {
		t.Errorf("GotoLine(3) caret %d, want 7", got)
	}
}

func TestSetDocument(t *testing.T) {
	v := newview("ab\ncd")
	old := v.Document()
	v.SetCaret(4)
	v.SetOrigin(1)

	doc := document.New("xyz")
	v.SetDocument(doc)
	if old.Listeners() != 0 {
		t.Errorf("old document still has %d listeners", old.Listeners())
	}
	if doc.Listeners() != 1 {
		t.Errorf("new document has %d listeners, want 1", doc.Listeners())
	}
	if v.Caret() != 0 || v.Origin() != 0 {
		t.Errorf("caret %d origin %d after SetDocument", v.Caret(), v.Origin())
	}

	v.Close()
	if doc.Listeners() != 0 {
		t.Errorf("Close left %d listeners", doc.Listeners())
	}
}

func TestDraw(t *testing.T) {
	for _, tc := range []struct {
		name   string
		q0, q1 int
		want   []string
	}{
		{
			name: "caret",
			q0:   1,
			q1:   1,
			want: []string{
				"screen <- fill (30,0)-(300,100) White",
				`screen <- string "ab" atpoint: (30,0) fill: Black`,
				`screen <- string "c" atpoint: (58,10) fill: Black`,
				"screen <- fill (37,0)-(38,10) Black",
			},
		},
		{
			name: "selection",
			q0:   1,
			q1:   4,
			want: []string{
				"screen <- fill (30,0)-(300,100) White",
				"screen <- fill (37,0)-(300,10) color(a5cdffff)",
				`screen <- string "ab" atpoint: (30,0) fill: Black`,
				"screen <- fill (30,10)-(58,20) color(a5cdffff)",
				`screen <- string "c" atpoint: (58,10) fill: Black`,
			},
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			display := drawtest.NewDisplay(image.Rect(0, 0, 400, 100), 7, 10)
			v := newview("ab\n\tc")
			v.Select(tc.q0, tc.q1)

			if err := v.Draw(display.ScreenImage()); err != nil {
				t.Fatal(err)
			}
			got := display.(drawtest.GettableDrawOps).DrawOps()
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("draw ops mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
