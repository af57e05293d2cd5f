package main

import (
	"context"
	"fmt"
	"image"
	"log"
	"path/filepath"

	"github.com/jesedit/gutter/config"
	"github.com/jesedit/gutter/ctlfs"
	"github.com/jesedit/gutter/document"
	"github.com/jesedit/gutter/draw"
	"github.com/jesedit/gutter/gutter"
	"github.com/jesedit/gutter/plumbing"
	"github.com/jesedit/gutter/textview"
	"github.com/jesedit/gutter/theme"
	"golang.org/x/sync/errgroup"
)

const (
	keyBackspace = 0x08
	keyDelete    = 0x7F
	scrollLines  = 3
)

// app is the window: a text view with a gutter on its left. All of its
// methods run on the UI goroutine.
type app struct {
	display  draw.Display
	filename string

	view   *textview.View
	gutter *gutter.Gutter

	redraw   chan struct{}
	requests chan request

	anchor   int
	dragging bool

	tiles theme.Cache
}

func newapp(display draw.Display, doc *document.Document, filename string, cfg *config.Config) (*app, error) {
	font, err := display.OpenFont(cfg.Font)
	if err != nil {
		return nil, fmt.Errorf("can't open font %q: %w", cfg.Font, err)
	}
	gfont, err := display.OpenFont(cfg.GutterFont)
	if err != nil {
		log.Printf("can't open gutter font %q, using %q: %v", cfg.GutterFont, cfg.Font, err)
		gfont = font
	}

	a := &app{
		display:  display,
		filename: filename,
		redraw:   make(chan struct{}, 1),
		requests: make(chan request),
	}
	a.view = textview.New(image.Rectangle{}, font, doc)
	a.gutter = gutter.New(a.view, font,
		gutter.OptFont(gfont),
		gutter.OptMargin(display.ScaleSize(cfg.Margin)),
		gutter.OptInvalidate(a.invalidate),
	)
	a.gutter.SetFocused(true)
	a.setdark(cfg.Dark)
	a.layout(display.ScreenImage().R())
	return a, nil
}

// invalidate asks for a redraw. Requests made before the loop gets to
// the last one are merged.
func (a *app) invalidate() {
	select {
	case a.redraw <- struct{}{}:
	default:
	}
}

func (a *app) layout(r image.Rectangle) {
	w := a.gutter.Width()
	a.gutter.Resize(image.Rect(r.Min.X, r.Min.Y, r.Min.X+w, r.Max.Y))
	a.view.Resize(image.Rect(r.Min.X+w, r.Min.Y, r.Max.X, r.Max.Y))
	a.invalidate()
}

func (a *app) setdark(dark bool) {
	theme.SetDarkMode(dark)
	a.gutter.SetDarkMode(dark)
}

func (a *app) draw() {
	screen := a.display.ScreenImage()
	if a.gutter.Width() != a.gutter.Rect().Dx() {
		a.layout(screen.R())
	}
	if err := a.view.Draw(screen); err != nil {
		log.Printf("draw: %v", err)
	}
	// The gutter only fills its background in dark mode and the
	// screen keeps the previous frame.
	back, err := a.tiles.Tile(a.display, theme.Gutter(a.gutter.DarkMode()).Background)
	if err != nil {
		log.Printf("draw: %v", err)
	} else {
		screen.Draw(a.gutter.Rect(), back, nil, image.Point{})
	}
	a.gutter.Paint(screen, a.gutter.Rect())
	if err := a.display.Flush(); err != nil {
		log.Printf("flush: %v", err)
	}
}

func (a *app) close() {
	a.gutter.Close()
	a.view.Close()
	a.tiles.Free()
}

func (a *app) state() ctlfs.State {
	mark, _ := a.gutter.MarkedLine()
	return ctlfs.State{
		Mark:    mark,
		Lines:   a.gutter.LineCount(),
		Dark:    a.gutter.DarkMode(),
		Focused: a.gutter.Focused(),
	}
}

// handle carries out a ctl request and reports the resulting state.
func (a *app) handle(req request) reply {
	if req.cmd == nil {
		return reply{st: a.state()}
	}
	switch c := req.cmd; c.Verb {
	case ctlfs.Mark:
		a.gutter.SetMarkedLine(c.Line)
	case ctlfs.NoMark:
		a.gutter.ClearMarkedLine()
	case ctlfs.Dark:
		a.setdark(true)
	case ctlfs.Light:
		a.setdark(false)
	case ctlfs.Focus:
		a.gutter.SetFocused(true)
	case ctlfs.Unfocus:
		a.gutter.SetFocused(false)
	case ctlfs.Goto:
		a.view.GotoLine(c.Line)
		a.invalidate()
	default:
		return reply{err: fmt.Errorf("unsupported command %v", c.Verb)}
	}
	return reply{st: a.state()}
}

// target marks and shows a plumbed line if it is in our file.
func (a *app) target(t plumbing.Target) {
	if a.filename == "" || filepath.Clean(t.File) != a.filename {
		log.Printf("plumb: ignoring %s:%d", t.File, t.Line)
		return
	}
	a.gutter.SetMarkedLine(t.Line)
	a.view.GotoLine(t.Line)
	a.invalidate()
}

// key applies a keystroke. It reports false when the user asked to
// quit.
func (a *app) key(r rune) bool {
	var err error
	switch r {
	case keyDelete:
		return false
	case draw.KeyLeft:
		a.view.MoveCaret(-1)
	case draw.KeyRight:
		a.view.MoveCaret(1)
	case draw.KeyUp:
		a.view.MoveLine(-1)
	case draw.KeyDown:
		a.view.MoveLine(1)
	case draw.KeyPageUp:
		a.view.Scroll(-a.view.Visible())
		a.invalidate()
		return true
	case draw.KeyPageDown:
		a.view.Scroll(a.view.Visible())
		a.invalidate()
		return true
	case draw.KeyHome:
		a.view.SetCaret(0)
	case draw.KeyEnd:
		a.view.SetCaret(a.view.Document().Len())
	case keyBackspace:
		err = a.view.Backspace()
	default:
		err = a.view.Type(r)
	}
	if err != nil {
		log.Printf("edit: %v", err)
	}
	a.view.Show(a.view.Caret())
	a.invalidate()
	return true
}

// mouse handles button 1 selection in the text, button 1 clicks on the
// gutter which toggle the mark, and wheel scrolling.
func (a *app) mouse(m draw.Mouse) {
	switch {
	case m.Buttons&8 != 0:
		a.view.Scroll(-scrollLines)
		a.invalidate()
	case m.Buttons&16 != 0:
		a.view.Scroll(scrollLines)
		a.invalidate()
	case m.Buttons&1 != 0 && !a.dragging:
		a.dragging = true
		if m.Point.In(a.gutter.Rect()) {
			a.anchor = -1
			a.togglemark(m.Point.Y)
			return
		}
		q, err := a.view.ViewToModel(m.Point)
		if err != nil {
			a.anchor = -1
			return
		}
		a.anchor = q
		a.view.SetCaret(q)
		a.invalidate()
	case m.Buttons&1 != 0:
		if a.anchor < 0 {
			return
		}
		if q, err := a.view.ViewToModel(m.Point); err == nil {
			a.view.Select(a.anchor, q)
			a.invalidate()
		}
	default:
		a.dragging = false
	}
}

func (a *app) togglemark(y int) {
	q, err := a.view.ViewToModel(image.Pt(a.view.Rect().Min.X, y))
	if err != nil {
		return
	}
	line := a.view.Document().LineIndex(q) + 1
	if mark, ok := a.gutter.MarkedLine(); ok && mark == line {
		a.gutter.ClearMarkedLine()
		return
	}
	a.gutter.SetMarkedLine(line)
}

func (a *app) resize() error {
	if err := a.display.Attach(draw.Refnone); err != nil {
		return fmt.Errorf("can't reattach to window: %w", err)
	}
	a.layout(a.display.ScreenImage().R())
	return nil
}

// loop is the UI goroutine. It returns when the user quits, ctx is
// done or the display fails.
func (a *app) loop(ctx context.Context, errch <-chan error, targets <-chan plumbing.Target) error {
	mousectl := a.display.InitMouse()
	keyboardctl := a.display.InitKeyboard()
	a.invalidate()
	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-errch:
			return err
		case r := <-keyboardctl.C:
			if !a.key(r) {
				return nil
			}
		case <-mousectl.Resize:
			if err := a.resize(); err != nil {
				return err
			}
		case m := <-mousectl.C:
			a.mouse(m)
		case req := <-a.requests:
			req.reply <- a.handle(req)
		case t := <-targets:
			a.target(t)
		case <-a.redraw:
			a.draw()
		}
	}
}

// run lays out the window and supervises the UI loop, the plumber
// listener and the 9P service.
func run(ctx context.Context, display draw.Display, errch <-chan error, doc *document.Document, filename string, cfg *config.Config, o *options) error {
	a, err := newapp(display, doc, filename, cfg)
	if err != nil {
		return err
	}
	defer a.close()
	if o.mark > 0 {
		a.gutter.SetMarkedLine(o.mark)
		a.view.GotoLine(o.mark)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, ctx := errgroup.WithContext(ctx)

	if cfg.Service != "" {
		srv := ctlfs.NewServer(&controller{requests: a.requests, done: ctx.Done()})
		// Post does not return until the service is torn down, so it
		// is left out of the group.
		go func() {
			if err := srv.Post(cfg.Service); err != nil {
				log.Printf("ctlfs: %v", err)
			}
		}()
	}

	targets := make(chan plumbing.Target)
	if !o.noplumb {
		g.Go(func() error {
			return plumbing.Listen(ctx, cfg.PlumbPort, targets)
		})
	}
	g.Go(func() error {
		defer cancel()
		return a.loop(ctx, errch, targets)
	})
	return g.Wait()
}
