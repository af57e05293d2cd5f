package document

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func lines(t *testing.T, d *Document) []Line {
	t.Helper()
	var out []Line
	for i := 0; i < d.LineCount(); i++ {
		l, err := d.Line(i)
		require.NoError(t, err)
		out = append(out, l)
	}
	return out
}

func TestLineElements(t *testing.T) {
	for _, tc := range []struct {
		name string
		text string
		want []Line
	}{
		{"Empty", "", []Line{{0, 0}}},
		{"OneLine", "abc", []Line{{0, 3}}},
		{"TrailingNewline", "abc\n", []Line{{0, 4}, {4, 4}}},
		{"ThreeLines", "a\nbb\nccc", []Line{{0, 2}, {2, 5}, {5, 8}}},
		{"BlankLines", "\n\n", []Line{{0, 1}, {1, 2}, {2, 2}}},
		{"Wide", "ウク\nラ", []Line{{0, 3}, {3, 4}}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			d := New(tc.text)
			if diff := cmp.Diff(tc.want, lines(t, d)); diff != "" {
				t.Errorf("lines mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestLineOutOfRange(t *testing.T) {
	d := New("a\nb")
	for _, i := range []int{-1, 2, 100} {
		_, err := d.Line(i)
		require.ErrorIs(t, err, ErrBadLocation, "line %d", i)
	}
}

func TestLineIndex(t *testing.T) {
	d := New("a\nbb\nccc")
	for q, want := range map[int]int{
		-5: 0,
		0:  0,
		1:  0,
		2:  1,
		4:  1,
		5:  2,
		8:  2,
		50: 2,
	} {
		require.Equal(t, want, d.LineIndex(q), "offset %d", q)
	}
}

func TestInsertDelete(t *testing.T) {
	d := New("one\ntwo\nthree")

	require.NoError(t, d.Insert(4, "1.5\n"))
	require.Equal(t, "one\n1.5\ntwo\nthree", d.String())
	require.Equal(t, 4, d.LineCount())
	require.Equal(t, []Line{{0, 4}, {4, 8}, {8, 12}, {12, 17}}, lines(t, d))

	require.NoError(t, d.Delete(3, 8))
	require.Equal(t, "onetwo\nthree", d.String())
	require.Equal(t, []Line{{0, 7}, {7, 12}}, lines(t, d))

	require.NoError(t, d.Insert(d.Len(), "\n"))
	require.Equal(t, 3, d.LineCount())

	require.ErrorIs(t, d.Insert(-1, "x"), ErrBadLocation)
	require.ErrorIs(t, d.Insert(d.Len()+1, "x"), ErrBadLocation)
	require.ErrorIs(t, d.Delete(2, 1), ErrBadLocation)
	require.ErrorIs(t, d.Delete(0, d.Len()+1), ErrBadLocation)
}

func TestSlice(t *testing.T) {
	d := New("hello\nworld")
	r, err := d.Slice(3, 8)
	require.NoError(t, err)
	require.Equal(t, "lo\nwo", string(r))

	_, err = d.Slice(8, 20)
	require.True(t, errors.Is(err, ErrBadLocation))
}

type recorder struct {
	changes []Change
	texts   []string
}

func (r *recorder) DocumentChanged(c Change) {
	r.changes = append(r.changes, c)
	text, err := c.Text()
	if err != nil {
		r.texts = append(r.texts, "error")
		return
	}
	r.texts = append(r.texts, string(text))
}

func TestNotifications(t *testing.T) {
	d := New("abc")
	var rec recorder
	cancel := d.Subscribe(&rec)

	require.NoError(t, d.Insert(1, "X\n"))
	require.NoError(t, d.Delete(0, 2))
	require.NoError(t, d.SetAttributes(0, 1))
	// Empty edits are not changes.
	require.NoError(t, d.Insert(0, ""))
	require.NoError(t, d.Delete(1, 1))

	require.Len(t, rec.changes, 3)
	require.Equal(t, []Kind{Insert, Remove, Attribute},
		[]Kind{rec.changes[0].Kind, rec.changes[1].Kind, rec.changes[2].Kind})
	require.Equal(t, []string{"X\n", "aX", "\n"}, rec.texts)
	require.Equal(t, 0, rec.changes[1].Offset)
	require.Equal(t, 2, rec.changes[1].Length)

	cancel()
	cancel()
	require.Equal(t, 0, d.Listeners())
	require.NoError(t, d.Insert(0, "more"))
	require.Len(t, rec.changes, 3)
}

func TestStaleInsertText(t *testing.T) {
	d := New("abc\n")
	var stale Change
	d.Subscribe(ListenerFunc(func(c Change) {
		if c.Kind == Insert && stale.Doc == nil {
			stale = c
		}
	}))
	require.NoError(t, d.Insert(4, "tail"))
	require.NoError(t, d.Delete(0, d.Len()))

	_, err := stale.Text()
	require.ErrorIs(t, err, ErrBadLocation)
}

func TestListenerOrder(t *testing.T) {
	d := New("")
	var order []string
	d.Subscribe(ListenerFunc(func(Change) { order = append(order, "first") }))
	cancel := d.Subscribe(ListenerFunc(func(Change) { order = append(order, "second") }))
	d.Subscribe(ListenerFunc(func(Change) { order = append(order, "third") }))
	cancel()

	require.NoError(t, d.Insert(0, "x"))
	require.Equal(t, []string{"first", "third"}, order)
}

func TestLoad(t *testing.T) {
	d, nulls, err := Load(strings.NewReader("a\x00b\nc\xffd"))
	require.NoError(t, err)
	require.True(t, nulls)
	require.Equal(t, "ab\nc�d", d.String())
	require.Equal(t, 2, d.LineCount())

	_, _, err = LoadFile("/nonexistent/file/for/document/test")
	require.Error(t, err)
}

func TestKindString(t *testing.T) {
	require.Equal(t, "insert", Insert.String())
	require.Equal(t, "remove", Remove.String())
	require.Equal(t, "attribute", Attribute.String())
	require.Equal(t, "Kind(9)", Kind(9).String())
}
