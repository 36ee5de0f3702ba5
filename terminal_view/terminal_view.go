// terminal_view draws a hive in a terminal. Each cell is a colored box that shrinks
// with the cell's ripple value; clicking a box taps it and 't' toggles the theme.
package terminal_view

import (
	"context"
	"log"
	"math"
	"time"

	"honeycomb/hive"
	"honeycomb/honeycomb"
	"honeycomb/layout"

	"github.com/gdamore/tcell/v2"
	channerics "github.com/niceyeti/channerics/channels"
)

type palette struct {
	background tcell.Color
	cell       tcell.Color
	// pressed is blended into the cell color as the cell dips.
	pressed tcell.Color
	text    tcell.Color
}

var (
	lightPalette = palette{
		background: tcell.NewRGBColor(0xf0, 0xf0, 0xf0),
		cell:       tcell.NewRGBColor(0xff, 0xff, 0xff),
		pressed:    tcell.NewRGBColor(0xf5, 0xa6, 0x23),
		text:       tcell.NewRGBColor(0x28, 0x28, 0x28),
	}
	darkPalette = palette{
		background: tcell.NewRGBColor(0x1a, 0x1a, 0x1a),
		cell:       tcell.NewRGBColor(0x28, 0x28, 0x28),
		pressed:    tcell.NewRGBColor(0xf5, 0xa6, 0x23),
		text:       tcell.NewRGBColor(0xf0, 0xf0, 0xf0),
	}
)

func paletteFor(dark bool) palette {
	if dark {
		return darkPalette
	}
	return lightPalette
}

// View renders one hive on a tcell screen.
type View struct {
	screen        tcell.Screen
	hive          *hive.Hive
	layout        *layout.Layout
	frameInterval time.Duration
	logger        *log.Logger

	// Screen position of the layout's origin, recomputed on resize.
	originX, originY int
	buttonDown       bool
}

// New lays the hive's shape out in character cells using fp. The screen must already
// be initialized; the caller owns it and calls Fini.
func New(
	screen tcell.Screen,
	h *hive.Hive,
	fp layout.Footprint,
	frameInterval time.Duration,
	logger *log.Logger,
) (*View, error) {
	if logger == nil {
		logger = log.Default()
	}
	l, err := layout.Compute(h.Shape(), fp)
	if err != nil {
		return nil, err
	}
	v := &View{
		screen:        screen,
		hive:          h,
		layout:        l,
		frameInterval: frameInterval,
		logger:        logger,
	}
	v.center()
	return v, nil
}

// Run draws a frame per frame interval and handles input until ctx is done or the
// user quits.
func (v *View) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	v.screen.EnableMouse(tcell.MouseButtonEvents)
	v.screen.HideCursor()

	events := make(chan tcell.Event)
	go func() {
		for {
			ev := v.screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case events <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()

	frames := channerics.NewTicker(ctx.Done(), v.frameInterval)
	v.draw()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-events:
			if !v.handleEvent(ctx, ev) {
				return nil
			}
		case <-frames:
			v.draw()
		}
	}
}

// handleEvent returns false when the user asked to quit.
func (v *View) handleEvent(ctx context.Context, ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		switch {
		case ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC:
			return false
		case ev.Key() == tcell.KeyRune && ev.Rune() == 'q':
			return false
		case ev.Key() == tcell.KeyRune && ev.Rune() == 't':
			if err := v.hive.ToggleTheme(ctx); err != nil {
				v.logger.Printf("terminal: theme: %v", err)
			}
		}

	case *tcell.EventMouse:
		down := ev.Buttons()&tcell.Button1 != 0
		// Only the press edge taps; holding the button does not repeat.
		if down && !v.buttonDown {
			x, y := ev.Position()
			v.tap(ctx, x, y)
		}
		v.buttonDown = down

	case *tcell.EventResize:
		v.center()
		v.screen.Sync()
	}
	return true
}

func (v *View) tap(ctx context.Context, x, y int) {
	addr, ok := v.layout.Hit(float64(x-v.originX), float64(y-v.originY))
	if !ok {
		return
	}
	if err := v.hive.Tap(ctx, addr); err != nil {
		v.logger.Printf("terminal: tap %v: %v", addr, err)
	}
}

// center places the layout's box in the middle of the screen.
func (v *View) center() {
	w, h := v.screen.Size()
	fp := v.layout.Footprint
	boxW := v.layout.Width + fp.CellSize*(1-fp.HorizontalPacking)
	boxH := v.layout.Height + fp.CellSize*(1-fp.VerticalPacking)
	v.originX = int(math.Max(0, (float64(w)-boxW)/2))
	v.originY = int(math.Max(0, (float64(h)-boxH)/2))
}

// cellBox is the screen rectangle a cell occupies at rest.
func (v *View) cellBox(cl layout.CellLayout) (x, y, w, h int) {
	fp := v.layout.Footprint
	x = v.originX + int(math.Round(cl.X))
	y = v.originY + int(math.Round(cl.Y))
	// One column and one row of gap between neighbours.
	w = int(math.Round(cl.Size*fp.HorizontalPacking)) - 1
	h = int(math.Round(cl.Size*fp.VerticalPacking)) - 1
	return x, y, max(w, 1), max(h, 1)
}

func (v *View) draw() {
	frame := v.hive.Frame()
	colors := paletteFor(frame.Dark)
	background := tcell.StyleDefault.Background(colors.background).Foreground(colors.text)

	v.screen.Fill(' ', background)

	values := make(map[honeycomb.Address]float64, len(frame.Values))
	for _, cv := range frame.Values {
		values[cv.Address] = cv.Value
	}
	timing := v.hive.Scheduler().Timing()

	for _, cl := range v.layout.Cells() {
		scale := values[cl.Address]
		x, y, w, h := v.cellBox(cl)
		sw := max(1, int(math.Round(float64(w)*scale)))
		sh := max(1, int(math.Round(float64(h)*scale)))
		x += (w - sw) / 2
		y += (h - sh) / 2

		style := tcell.StyleDefault.
			Background(blend(colors.cell, colors.pressed, depth(scale, timing.RestingValue, timing.PeakValue))).
			Foreground(colors.text)
		fill(v.screen, x, y, sw, sh, style)
	}

	v.drawStatus(background, frame.Dark)
	v.screen.Show()
}

func (v *View) drawStatus(style tcell.Style, dark bool) {
	theme := "light"
	if dark {
		theme = "dark"
	}
	_, h := v.screen.Size()
	drawText(v.screen, 1, h-1, "click: ripple  t: theme ("+theme+")  q: quit", style)
}

// depth is how far value is from rest toward peak, in [0, 1].
func depth(value, resting, peak float64) float64 {
	if resting == peak {
		return 0
	}
	d := (value - resting) / (peak - resting)
	return math.Max(0, math.Min(1, d))
}

func blend(from, to tcell.Color, t float64) tcell.Color {
	r1, g1, b1 := from.RGB()
	r2, g2, b2 := to.RGB()
	mix := func(a, b int32) int32 {
		return int32(math.Round(float64(a) + (float64(b)-float64(a))*t))
	}
	return tcell.NewRGBColor(mix(r1, r2), mix(g1, g2), mix(b1, b2))
}

func fill(screen tcell.Screen, x, y, w, h int, style tcell.Style) {
	for row := y; row < y+h; row++ {
		for col := x; col < x+w; col++ {
			screen.SetContent(col, row, ' ', nil, style)
		}
	}
}

func drawText(screen tcell.Screen, x, y int, text string, style tcell.Style) {
	for i, r := range []rune(text) {
		screen.SetContent(x+i, y, r, nil, style)
	}
}
