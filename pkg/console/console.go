// Package console is a terminal view of the rig. Arrow keys and PgUp/PgDn
// steer the target.
package console

import (
	"context"
	"fmt"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/golang/geo/r3"

	"github.com/open-teleop/movingheads/domain/inspection"
)

const redrawInterval = 100 * time.Millisecond

// StateSource yields the latest tick result.
type StateSource interface {
	Latest() (inspection.Snapshot, bool)
}

// SampleWriter receives the keyboard samples. Terminals do not report key
// release, so the writer is expected to expire samples on its own.
type SampleWriter interface {
	Set(sample r3.Vector)
	Clear()
}

var (
	styleTitle   = tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)
	styleText    = tcell.StyleDefault
	styleDim     = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleWarning = tcell.StyleDefault.Foreground(tcell.ColorRed)
)

// Console draws the state table and translates key presses into samples.
type Console struct {
	screen  tcell.Screen
	state   StateSource
	samples SampleWriter
}

// NewScreen creates and initializes the terminal screen.
func NewScreen() (tcell.Screen, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	if err := screen.Init(); err != nil {
		return nil, err
	}
	return screen, nil
}

// New creates a console on an initialized screen.
func New(screen tcell.Screen, state StateSource, samples SampleWriter) *Console {
	return &Console{screen: screen, state: state, samples: samples}
}

// Run redraws until ctx is done or the user quits. The screen is finalized
// on return.
func (c *Console) Run(ctx context.Context) {
	defer c.screen.Fini()

	events := make(chan tcell.Event, 16)
	go func() {
		for {
			ev := c.screen.PollEvent()
			if ev == nil {
				// Fini was called
				return
			}
			select {
			case events <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()

	ticker := time.NewTicker(redrawInterval)
	defer ticker.Stop()

	c.draw()
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-events:
			if !c.handleEvent(ev) {
				return
			}
		case <-ticker.C:
			c.draw()
		}
	}
}

func (c *Console) handleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		return c.handleKey(ev.Key(), ev.Rune())
	case *tcell.EventResize:
		c.screen.Sync()
	}
	return true
}

// handleKey applies one key press. It returns false when the user quits.
func (c *Console) handleKey(key tcell.Key, r rune) bool {
	switch key {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		c.samples.Clear()
		return false
	case tcell.KeyLeft:
		c.samples.Set(r3.Vector{X: -1})
	case tcell.KeyRight:
		c.samples.Set(r3.Vector{X: 1})
	case tcell.KeyUp:
		c.samples.Set(r3.Vector{Y: 1})
	case tcell.KeyDown:
		c.samples.Set(r3.Vector{Y: -1})
	case tcell.KeyPgUp:
		c.samples.Set(r3.Vector{Z: 1})
	case tcell.KeyPgDn:
		c.samples.Set(r3.Vector{Z: -1})
	case tcell.KeyRune:
		switch r {
		case 'q':
			c.samples.Clear()
			return false
		case ' ':
			c.samples.Clear()
		}
	}
	return true
}

func (c *Console) draw() {
	c.screen.Clear()
	row := 0
	line := func(style tcell.Style, format string, args ...interface{}) {
		c.drawText(0, row, style, fmt.Sprintf(format, args...))
		row++
	}

	line(styleTitle, "movingheads")
	snap, ok := c.state.Latest()
	if !ok {
		line(styleDim, "waiting for first tick")
		c.screen.Show()
		return
	}

	line(styleText, "tick %-8d target (%7.2f, %7.2f, %7.2f)", snap.Sequence, snap.Target.X, snap.Target.Y, snap.Target.Z)
	row++
	line(styleDim, "%-16s %8s %8s  %s", "fixture", "pan", "tilt", "state")
	for _, f := range snap.Fixtures {
		style, status := styleText, "ok"
		switch {
		case f.Degenerate:
			style, status = styleWarning, "degenerate"
		case f.OutOfRange:
			style, status = styleWarning, "out of range"
		}
		line(style, "%-16s %8.2f %8.2f  %s", f.Name, f.Pan.Value, f.Tilt.Value, status)
	}
	row++
	if snap.SinkError != "" {
		line(styleWarning, "output: %s", snap.SinkError)
	}
	line(styleDim, "arrows x/y  pgup/pgdn z  space stop  q quit")
	c.screen.Show()
}

func (c *Console) drawText(x, y int, style tcell.Style, text string) {
	width, height := c.screen.Size()
	if y >= height {
		return
	}
	for _, r := range text {
		if x >= width {
			return
		}
		c.screen.SetContent(x, y, r, nil, style)
		x++
	}
}
