package ui

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/jroimartin/gocui"
	"golang.org/x/sync/errgroup"

	"github.com/coreforge/enginesync/internal/domain"
)

const transferViewName = "transfer"

// Window mirrors progress lines in a full-screen terminal view while a
// transfer runs. The UI goroutine owns the gocui surface exclusively; the
// sync worker talks to it only through the line queue and the close
// request, and OpenWindow does not return until the first layout pass has
// created the view.
type Window struct {
	gui   *gocui.Gui
	title string

	lines chan string

	ready     chan struct{}
	readyOnce sync.Once

	stopPump    chan struct{}
	uiDone      chan struct{}
	interrupted chan struct{}

	closing   atomic.Bool
	closeOnce sync.Once
	closeErr  error

	group *errgroup.Group
}

// OpenWindow opens the status window and blocks until its view exists.
func OpenWindow(title string) (*Window, error) {
	gui, err := gocui.NewGui(gocui.OutputNormal)
	if err != nil {
		return nil, fmt.Errorf("failed to open status window: %w", err)
	}

	w := &Window{
		gui:         gui,
		title:       title,
		lines:       make(chan string, 256),
		ready:       make(chan struct{}),
		stopPump:    make(chan struct{}),
		uiDone:      make(chan struct{}),
		interrupted: make(chan struct{}),
		group:       &errgroup.Group{},
	}

	gui.SetManager(w)

	ctrlCHandler := func(_ *gocui.Gui, _ *gocui.View) error {
		return gocui.ErrQuit
	}
	if err := gui.SetKeybinding("", gocui.KeyCtrlC, gocui.ModNone, ctrlCHandler); err != nil {
		gui.Close()
		return nil, fmt.Errorf("failed to bind window Ctrl-C: %w", err)
	}

	w.group.Go(w.runUI)
	w.group.Go(w.pump)

	select {
	case <-w.ready:
		return w, nil
	case <-w.uiDone:
		err := w.group.Wait()
		if err == nil {
			err = fmt.Errorf("status window closed before first layout")
		}
		return nil, err
	}
}

// Layout creates the transfer view on the first pass and marks the
// window ready.
func (w *Window) Layout(g *gocui.Gui) error {
	maxX, maxY := g.Size()

	v, err := g.SetView(transferViewName, 0, 0, maxX-1, maxY-1)
	if err != nil && err != gocui.ErrUnknownView {
		return err
	}
	if err == gocui.ErrUnknownView {
		v.Title = w.title
		v.Wrap = true
		v.Autoscroll = true
	}

	w.readyOnce.Do(func() { close(w.ready) })
	return nil
}

// runUI owns the gocui surface for its whole lifetime: it runs the event
// loop, restores the terminal, and reports whether the operator quit the
// window rather than the tool closing it.
func (w *Window) runUI() error {
	defer close(w.uiDone)

	err := w.gui.MainLoop()
	w.gui.Close()

	if !w.closing.Load() {
		close(w.interrupted)
	}

	if err != nil && err != gocui.ErrQuit {
		return err
	}
	return nil
}

// pump appends queued lines to the transfer view in arrival order. Each
// append waits until the event loop has applied the update, so lines can
// never render out of order.
func (w *Window) pump() error {
	for {
		select {
		case line := <-w.lines:
			done := make(chan struct{})
			w.gui.Update(func(g *gocui.Gui) error {
				defer close(done)
				v, err := g.View(transferViewName)
				if err != nil {
					return nil
				}
				fmt.Fprintln(v, line)
				return nil
			})
			select {
			case <-done:
			case <-w.uiDone:
				return nil
			}
		case <-w.stopPump:
			return nil
		case <-w.uiDone:
			return nil
		}
	}
}

// Line queues one progress line for display. Lines queued after the
// window is gone are dropped; the console reporter carries the same
// stream.
func (w *Window) Line(text string) {
	if w.closing.Load() {
		return
	}
	select {
	case w.lines <- text:
	case <-w.uiDone:
	}
}

// Close stops the event loop and restores the terminal. It is safe to
// call more than once.
func (w *Window) Close() error {
	w.closeOnce.Do(func() {
		w.closing.Store(true)
		close(w.stopPump)

		w.gui.Update(func(*gocui.Gui) error {
			return gocui.ErrQuit
		})

		w.closeErr = w.group.Wait()
	})
	return w.closeErr
}

// Interrupted is closed when the operator quits the window while a run
// is still in progress.
func (w *Window) Interrupted() <-chan struct{} {
	return w.interrupted
}

// Ensure Window implements domain.Reporter.
var _ domain.Reporter = (*Window)(nil)
