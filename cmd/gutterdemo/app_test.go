package main

import (
	"image"
	"strings"
	"testing"

	"github.com/jesedit/gutter/config"
	"github.com/jesedit/gutter/ctlfs"
	"github.com/jesedit/gutter/document"
	"github.com/jesedit/gutter/draw"
	"github.com/jesedit/gutter/drawtest"
	"github.com/jesedit/gutter/plumbing"
	"github.com/jesedit/gutter/theme"
	"github.com/stretchr/testify/require"
)

const demotext = "one\ntwo\nthree\nfour\nfive\n"

func newtestapp(t *testing.T) *app {
	t.Helper()
	t.Cleanup(func() { theme.SetDarkMode(false) })
	display := drawtest.NewDisplay(image.Rect(0, 0, 400, 100), 7, 10)
	a, err := newapp(display, document.New(demotext), "/tmp/demo.txt", config.Default())
	require.NoError(t, err)
	t.Cleanup(a.close)
	return a
}

func TestLayout(t *testing.T) {
	a := newtestapp(t)
	require.Equal(t, image.Rect(0, 0, 22, 100), a.gutter.Rect())
	require.Equal(t, image.Rect(22, 0, 400, 100), a.view.Rect())
	require.True(t, a.gutter.Focused())
}

func TestDrawRelayout(t *testing.T) {
	a := newtestapp(t)
	doc := a.view.Document()
	require.NoError(t, doc.Insert(doc.Len(), strings.Repeat("\n", 100)))

	a.draw()
	require.Equal(t, image.Rect(0, 0, 29, 100), a.gutter.Rect())
	require.Equal(t, 29, a.view.Rect().Min.X)

	ops := a.display.(drawtest.GettableDrawOps).DrawOps()
	require.NotEmpty(t, drawtest.Filter(ops, `string "1" `))
}

func TestDrawClearsGutter(t *testing.T) {
	a := newtestapp(t)
	display := a.display.(drawtest.GettableDrawOps)

	a.gutter.SetFocused(false)
	a.draw()
	a.gutter.SetFocused(true)
	a.view.SetOrigin(2)
	display.Clear()
	a.draw()

	ops := display.DrawOps()
	gutterops := drawtest.Filter(ops, "(0,0)-(22,100)")
	require.NotEmpty(t, gutterops)
	require.Equal(t, "screen <- fill (0,0)-(22,100) White", gutterops[0])
	require.Empty(t, drawtest.Filter(ops, "fill (0,0)-(22,100) color(00000028)"))
	require.Empty(t, drawtest.Filter(ops, `string "1" `))
	require.Less(t, indexof(ops, gutterops[0]), indexof(ops, drawtest.Filter(ops, `string "3" `)[0]))

	a.setdark(true)
	display.Clear()
	a.draw()
	require.Equal(t, "screen <- fill (0,0)-(22,100) color(232526ff)",
		drawtest.Filter(display.DrawOps(), "(0,0)-(22,100)")[0])
}

func indexof(ops []string, op string) int {
	for i, o := range ops {
		if o == op {
			return i
		}
	}
	return -1
}

func TestHandle(t *testing.T) {
	a := newtestapp(t)

	do := func(c ctlfs.Command) reply {
		return a.handle(request{cmd: &c})
	}

	r := do(ctlfs.Command{Verb: ctlfs.Mark, Line: 3})
	require.NoError(t, r.err)
	require.Equal(t, ctlfs.State{Mark: 3, Lines: 6, Focused: true}, r.st)

	r = do(ctlfs.Command{Verb: ctlfs.Dark})
	require.True(t, r.st.Dark)
	require.True(t, theme.IsDarkMode())

	r = do(ctlfs.Command{Verb: ctlfs.Unfocus})
	require.False(t, r.st.Focused)

	do(ctlfs.Command{Verb: ctlfs.Goto, Line: 5})
	require.Equal(t, 19, a.view.Caret())

	r = do(ctlfs.Command{Verb: ctlfs.NoMark})
	require.Zero(t, r.st.Mark)

	r = do(ctlfs.Command{Verb: ctlfs.Light})
	require.False(t, r.st.Dark)
	require.False(t, theme.IsDarkMode())

	r = a.handle(request{})
	require.NoError(t, r.err)
	require.Equal(t, ctlfs.State{Lines: 6}, r.st)

	r = do(ctlfs.Command{Verb: ctlfs.Verb(99)})
	require.Error(t, r.err)
}

func TestController(t *testing.T) {
	a := newtestapp(t)
	requests := make(chan request)
	done := make(chan struct{})
	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		for {
			select {
			case req := <-requests:
				req.reply <- a.handle(req)
			case <-done:
				return
			}
		}
	}()

	c := &controller{requests: requests, done: done}
	require.NoError(t, c.Do(ctlfs.Command{Verb: ctlfs.Mark, Line: 2}))
	require.Equal(t, 2, c.State().Mark)

	close(done)
	<-stopped
	require.ErrorIs(t, c.Do(ctlfs.Command{Verb: ctlfs.Dark}), errClosed)
	require.False(t, a.gutter.DarkMode())
}

func TestTarget(t *testing.T) {
	a := newtestapp(t)

	a.target(plumbing.Target{File: "/tmp/other.txt", Line: 2})
	_, ok := a.gutter.MarkedLine()
	require.False(t, ok)

	a.target(plumbing.Target{File: "/tmp/demo.txt", Line: 3})
	mark, ok := a.gutter.MarkedLine()
	require.True(t, ok)
	require.Equal(t, 3, mark)
	require.Equal(t, 8, a.view.Caret())
}

func TestKey(t *testing.T) {
	a := newtestapp(t)
	doc := a.view.Document()

	require.True(t, a.key('x'))
	require.Equal(t, "x"+demotext, doc.String())
	require.Equal(t, 1, a.view.Caret())

	require.True(t, a.key(keyBackspace))
	require.Equal(t, demotext, doc.String())

	require.True(t, a.key(draw.KeyDown))
	require.Equal(t, 4, a.view.Caret())
	require.True(t, a.key(draw.KeyRight))
	require.Equal(t, 5, a.view.Caret())

	require.True(t, a.key('\n'))
	require.Equal(t, 7, a.gutter.LineCount())

	require.False(t, a.key(keyDelete))
}

func press(p image.Point) draw.Mouse {
	var m draw.Mouse
	m.Point = p
	m.Buttons = 1
	return m
}

func release(p image.Point) draw.Mouse {
	var m draw.Mouse
	m.Point = p
	return m
}

func TestMouseTogglesMark(t *testing.T) {
	a := newtestapp(t)

	a.mouse(press(image.Pt(5, 15)))
	a.mouse(press(image.Pt(6, 16)))
	a.mouse(release(image.Pt(6, 16)))
	mark, ok := a.gutter.MarkedLine()
	require.True(t, ok)
	require.Equal(t, 2, mark)

	a.mouse(press(image.Pt(5, 15)))
	a.mouse(release(image.Pt(5, 15)))
	_, ok = a.gutter.MarkedLine()
	require.False(t, ok)
}

func TestMouseSelect(t *testing.T) {
	a := newtestapp(t)

	a.mouse(press(image.Pt(22, 5)))
	require.Equal(t, 0, a.view.Caret())
	a.mouse(press(image.Pt(36, 15)))
	a.mouse(release(image.Pt(36, 15)))

	q0, q1 := a.view.Selection()
	require.Equal(t, 0, q0)
	require.Equal(t, 6, q1)
	require.False(t, a.dragging)
}
