package overlay

import (
	"fmt"
	"log/slog"

	"github.com/1broseidon/veil/internal/platform"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/icccm"
	"github.com/BurntSushi/xgbutil/keybind"
	"github.com/BurntSushi/xgbutil/xevent"
	"github.com/BurntSushi/xgbutil/xprop"
)

const (
	colorHintText = 0xf5f7fa // Light text on the tint

	keysymEscape  = 0xff1b
	primaryButton = 1

	// Fallback metrics when the font cannot be queried.
	hintCharWidth = 7
	hintAscent    = 12
	hintDescent   = 3
)

// allDesktops is the _NET_WM_DESKTOP value meaning "sticky".
const allDesktops = 0xFFFFFFFF

// X11Factory creates override-redirect overlay windows on one X connection.
// Callbacks run inside xgbutil event dispatch, which the UI loop serializes
// with its own tasks.
type X11Factory struct {
	xu     *xgbutil.XUtil
	root   xproto.Window
	logger *slog.Logger
}

var _ Factory = (*X11Factory)(nil)

// NewX11Factory returns a factory drawing on xu's root window.
func NewX11Factory(xu *xgbutil.XUtil, root xproto.Window, logger *slog.Logger) *X11Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &X11Factory{xu: xu, root: root, logger: logger}
}

type x11Window struct {
	xu      *xgbutil.XUtil
	id      xproto.Window
	surface platform.Display
	look    Appearance
	dismiss func(DismissSource)
	logger  *slog.Logger

	gc       xproto.Gcontext
	font     xproto.Font
	metrics  fontMetrics
	hintText bool

	mapped      bool
	clicks      clickTracker
	prevFocus   xproto.Window
	holdsFocus  bool
	handlersSet bool
}

type fontMetrics struct {
	charWidth int
	ascent    int
	descent   int
}

// Create builds (but does not map) an overlay covering surface.
func (f *X11Factory) Create(surface platform.Display, look Appearance, dismiss func(DismissSource)) (Window, error) {
	if f.xu == nil {
		return nil, fmt.Errorf("x11 connection not available")
	}
	conn := f.xu.Conn()
	screen := f.xu.Screen()

	wid, err := xproto.NewWindowId(conn)
	if err != nil {
		return nil, err
	}

	b := clampBounds(surface.Bounds)
	err = xproto.CreateWindowChecked(
		conn,
		screen.RootDepth,
		wid,
		f.root,
		int16(b.X), int16(b.Y),
		uint16(b.Width), uint16(b.Height),
		0, // border_width
		xproto.WindowClassInputOutput,
		screen.RootVisual,
		xproto.CwBackPixel|xproto.CwOverrideRedirect|xproto.CwEventMask,
		// Value list order follows the bit positions of the mask (low to high).
		[]uint32{
			look.Tint,
			1,
			uint32(xproto.EventMaskExposure | xproto.EventMaskKeyPress |
				xproto.EventMaskButtonPress | xproto.EventMaskButtonRelease),
		},
	).Check()
	if err != nil {
		return nil, fmt.Errorf("create overlay window: %w", err)
	}

	w := &x11Window{
		xu:      f.xu,
		id:      wid,
		surface: surface,
		look:    look,
		dismiss: dismiss,
		logger:  f.logger,
	}
	w.setProperties()
	if look.ShowHint && look.HintText != "" {
		w.hintText = w.ensureHintResources()
	}
	w.attachHandlers()
	return w, nil
}

func (w *x11Window) SurfaceID() string     { return w.surface.ID }
func (w *x11Window) Bounds() platform.Rect { return w.surface.Bounds }

func (w *x11Window) setProperties() {
	xu := w.xu
	if err := icccm.WmClassSet(xu, w.id, &icccm.WmClass{Instance: "veil", Class: "Veil"}); err != nil {
		w.logger.Debug("set WM_CLASS failed", "error", err)
	}
	_ = icccm.WmNameSet(xu, w.id, "veil overlay "+w.surface.ID)
	_ = ewmh.WmDesktopSet(xu, w.id, allDesktops)
	_ = ewmh.WmStateSet(xu, w.id, []string{
		"_NET_WM_STATE_ABOVE",
		"_NET_WM_STATE_STICKY",
		"_NET_WM_STATE_SKIP_TASKBAR",
		"_NET_WM_STATE_SKIP_PAGER",
		"_NET_WM_STATE_FULLSCREEN",
	})

	// Compositors (picom, KWin) read these on override-redirect windows too.
	if err := xprop.ChangeProp32(xu, w.id, "_NET_WM_WINDOW_OPACITY", "CARDINAL", opacityCardinal(w.look.Opacity)); err != nil {
		w.logger.Debug("set window opacity failed", "error", err)
	}
	// An empty region asks for blur behind the whole window.
	if err := xprop.ChangeProp32(xu, w.id, "_KDE_NET_WM_BLUR_BEHIND_REGION", "CARDINAL"); err != nil {
		w.logger.Debug("set blur hint failed", "error", err)
	}
}

func (w *x11Window) attachHandlers() {
	xu := w.xu
	xevent.ExposeFun(func(xu *xgbutil.XUtil, ev xevent.ExposeEvent) {
		if ev.Count == 0 {
			w.draw()
		}
	}).Connect(xu, w.id)

	xevent.KeyPressFun(func(xu *xgbutil.XUtil, ev xevent.KeyPressEvent) {
		if keybind.KeysymGet(xu, ev.Detail, 0) == keysymEscape {
			w.dismiss(DismissCancel)
		}
	}).Connect(xu, w.id)

	xevent.ButtonPressFun(func(xu *xgbutil.XUtil, ev xevent.ButtonPressEvent) {
		w.Focus()
		w.clicks.press(ev.Detail)
	}).Connect(xu, w.id)

	xevent.ButtonReleaseFun(func(xu *xgbutil.XUtil, ev xevent.ButtonReleaseEvent) {
		if w.clicks.release(ev.Detail, w.surface.Bounds, int(ev.EventX), int(ev.EventY)) {
			w.dismiss(DismissClick)
		}
	}).Connect(xu, w.id)

	w.handlersSet = true
}

// Show moves the window over its display, raises it and maps it.
func (w *x11Window) Show() error {
	conn := w.xu.Conn()
	b := clampBounds(w.surface.Bounds)
	xproto.ConfigureWindow(
		conn,
		w.id,
		xproto.ConfigWindowX|xproto.ConfigWindowY|xproto.ConfigWindowWidth|xproto.ConfigWindowHeight|xproto.ConfigWindowStackMode,
		[]uint32{
			uint32(b.X),
			uint32(b.Y),
			uint32(b.Width),
			uint32(b.Height),
			xproto.StackModeAbove, // Keep on top
		},
	)
	if err := xproto.MapWindowChecked(conn, w.id).Check(); err != nil {
		return err
	}
	w.mapped = true
	w.clicks.reset()
	return nil
}

// Focus takes keyboard focus, remembering the previous holder.
func (w *x11Window) Focus() {
	if !w.mapped || w.holdsFocus {
		return
	}
	conn := w.xu.Conn()
	if reply, err := xproto.GetInputFocus(conn).Reply(); err == nil {
		w.prevFocus = reply.Focus
	}
	if err := xproto.SetInputFocusChecked(conn, xproto.InputFocusPointerRoot, w.id, xproto.TimeCurrentTime).Check(); err != nil {
		w.logger.Debug("set input focus failed", "surface", w.surface.ID, "error", err)
		return
	}
	w.holdsFocus = true
}

// Hide unmaps the window and hands focus back.
func (w *x11Window) Hide() {
	if !w.mapped {
		return
	}
	conn := w.xu.Conn()
	xproto.UnmapWindow(conn, w.id)
	w.mapped = false
	w.clicks.reset()
	w.restoreFocus()
}

// Destroy frees every X resource the window holds.
func (w *x11Window) Destroy() {
	w.Hide()
	conn := w.xu.Conn()
	if w.handlersSet {
		xevent.Detach(w.xu, w.id)
		w.handlersSet = false
	}
	if w.gc != 0 {
		xproto.FreeGC(conn, w.gc)
		w.gc = 0
	}
	if w.font != 0 {
		xproto.CloseFont(conn, w.font)
		w.font = 0
	}
	if w.id != 0 {
		xproto.DestroyWindow(conn, w.id)
		w.id = 0
	}
}

func (w *x11Window) restoreFocus() {
	if !w.holdsFocus {
		return
	}
	w.holdsFocus = false
	prev := w.prevFocus
	w.prevFocus = 0
	if prev == 0 || prev == w.id {
		return
	}
	// The previous window may be gone; that is fine.
	_ = xproto.SetInputFocusChecked(w.xu.Conn(), xproto.InputFocusPointerRoot, prev, xproto.TimeCurrentTime).Check()
}

func (w *x11Window) ensureHintResources() bool {
	conn := w.xu.Conn()

	font, err := xproto.NewFontId(conn)
	if err != nil {
		return false
	}
	fontNames := []string{"-misc-fixed-bold-r-normal--18-*-*-*-*-*-iso8859-1", "10x20", "9x15", "fixed"}
	opened := false
	for _, fontName := range fontNames {
		if err = xproto.OpenFontChecked(conn, font, uint16(len(fontName)), fontName).Check(); err == nil {
			opened = true
			break
		}
	}
	if !opened {
		w.logger.Debug("no core font available; hint disabled", "surface", w.surface.ID)
		return false
	}

	gc, err := xproto.NewGcontextId(conn)
	if err != nil {
		xproto.CloseFont(conn, font)
		return false
	}
	err = xproto.CreateGCChecked(
		conn,
		gc,
		xproto.Drawable(w.id),
		xproto.GcForeground|xproto.GcBackground|xproto.GcFont|xproto.GcGraphicsExposures,
		[]uint32{
			colorHintText, // foreground
			w.look.Tint,   // background
			uint32(font),  // font
			0,             // graphics_exposures=false
		},
	).Check()
	if err != nil {
		xproto.FreeGC(conn, gc)
		xproto.CloseFont(conn, font)
		return false
	}

	w.font = font
	w.gc = gc
	w.metrics = fontMetrics{charWidth: hintCharWidth, ascent: hintAscent, descent: hintDescent}
	if reply, err := xproto.QueryFont(conn, xproto.Fontable(font)).Reply(); err == nil {
		if cw := int(reply.MaxBounds.CharacterWidth); cw > 0 {
			w.metrics.charWidth = cw
		}
		w.metrics.ascent = int(reply.FontAscent)
		w.metrics.descent = int(reply.FontDescent)
	}
	return true
}

func (w *x11Window) draw() {
	if !w.hintText || w.gc == 0 {
		return
	}
	b := w.surface.Bounds
	text := fitHint(w.look.HintText, b.Width, w.metrics.charWidth)
	if text == "" {
		return
	}
	x, y := hintOrigin(b.Width, b.Height, len(text)*w.metrics.charWidth, w.metrics.ascent, w.metrics.descent)
	xproto.ImageText8(
		w.xu.Conn(),
		byte(len(text)),
		xproto.Drawable(w.id),
		w.gc,
		int16(x),
		int16(y),
		text,
	)
}

// hintOrigin returns the baseline origin that centers a text run of the
// given pixel width inside a width x height window.
func hintOrigin(width, height, textWidth, ascent, descent int) (x, y int) {
	x = (width - textWidth) / 2
	if x < 0 {
		x = 0
	}
	y = (height-(ascent+descent))/2 + ascent
	if y < ascent {
		y = ascent
	}
	return x, y
}

// fitHint trims text so it fits in width pixels and in one ImageText8 request.
func fitHint(text string, width, charWidth int) string {
	if charWidth <= 0 {
		charWidth = hintCharWidth
	}
	maxChars := width / charWidth
	if maxChars > 255 {
		maxChars = 255
	}
	if maxChars <= 0 {
		return ""
	}
	if len(text) <= maxChars {
		return text
	}
	if maxChars <= 3 {
		return text[:maxChars]
	}
	return text[:maxChars-3] + "..."
}

// releaseInside reports whether window-relative coordinates fall inside a
// window of the given bounds' size.
// clickTracker decides when a click dismisses the overlay. A press only
// arms it; a primary-button release inside the window after a primary press
// is the click.
type clickTracker struct {
	pressed bool
}

func (c *clickTracker) press(button xproto.Button) {
	if button == primaryButton {
		c.pressed = true
	}
}

// release reports whether the release at window-relative x, y completes a
// dismissing click.
func (c *clickTracker) release(button xproto.Button, bounds platform.Rect, x, y int) bool {
	if button != primaryButton || !c.pressed {
		return false
	}
	c.pressed = false
	return releaseInside(bounds, x, y)
}

func (c *clickTracker) reset() {
	c.pressed = false
}

func releaseInside(bounds platform.Rect, x, y int) bool {
	local := platform.Rect{Width: bounds.Width, Height: bounds.Height}
	return local.Contains(x, y)
}

func opacityCardinal(opacity float64) uint {
	if opacity <= 0 {
		return 0
	}
	if opacity >= 1 {
		return 0xFFFFFFFF
	}
	return uint(opacity * 0xFFFFFFFF)
}

func clampBounds(r platform.Rect) platform.Rect {
	if r.Width < 1 {
		r.Width = 1
	}
	if r.Height < 1 {
		r.Height = 1
	}
	return r
}
