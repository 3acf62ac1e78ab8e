package overlay

import (
	"fmt"
	"log/slog"

	"github.com/1broseidon/veil/internal/loop"
	"github.com/1broseidon/veil/internal/platform"
)

// State is a snapshot reported to observers.
type State struct {
	Active        bool
	Transitioning bool
	Surfaces      []string // IDs covered while active
}

// Options configures a Controller.
type Options struct {
	Selection  Selection
	Appearance Appearance
	Logger     *slog.Logger
}

type entry struct {
	win    Window
	bounds platform.Rect
	look   Appearance
}

// Controller owns the overlay windows and the Hidden/Shown/Hiding state
// machine. It is not safe for concurrent use; every method must run on the
// UI loop that sched feeds.
type Controller struct {
	displays platform.Enumerator
	factory  Factory
	sched    loop.Scheduler
	logger   *slog.Logger

	selection  Selection
	appearance Appearance

	windows []*entry

	active        bool
	transitioning bool
	lastDismiss   DismissSource

	observers []func(State)
}

// NewController creates a hidden controller.
func NewController(displays platform.Enumerator, factory Factory, sched loop.Scheduler, opts Options) *Controller {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{
		displays:   displays,
		factory:    factory,
		sched:      sched,
		logger:     logger,
		selection:  opts.Selection,
		appearance: opts.Appearance,
	}
}

// IsActive reports whether the overlay is (logically) shown.
func (c *Controller) IsActive() bool {
	return c.active
}

// IsTransitioning reports whether a hide is queued but not yet done.
func (c *Controller) IsTransitioning() bool {
	return c.transitioning
}

// State returns a snapshot of the current state.
func (c *Controller) State() State {
	s := State{Active: c.active, Transitioning: c.transitioning}
	if c.active {
		s.Surfaces = make([]string, 0, len(c.windows))
		for _, e := range c.windows {
			s.Surfaces = append(s.Surfaces, e.win.SurfaceID())
		}
	}
	return s
}

// LastDismiss returns the source of the most recent hide.
func (c *Controller) LastDismiss() DismissSource {
	return c.lastDismiss
}

// Selection returns the display selection used on the next show.
func (c *Controller) Selection() Selection {
	return c.selection
}

// SetSelection changes the targets for the next show. A visible overlay is
// left as it is.
func (c *Controller) SetSelection(sel Selection) {
	c.selection = sel
}

// SetAppearance changes the look for the next show. Windows created with a
// different look are recreated during reconciliation.
func (c *Controller) SetAppearance(look Appearance) {
	c.appearance = look
}

// OnChange registers fn to be called after every state change.
func (c *Controller) OnChange(fn func(State)) {
	if fn != nil {
		c.observers = append(c.observers, fn)
	}
}

// Show covers the selected displays. It does nothing while shown or hiding.
// If no display is selected the overlay stays hidden and Show returns nil.
func (c *Controller) Show() error {
	if c.active || c.transitioning {
		return nil
	}

	displays, err := c.displays.Displays()
	if err != nil {
		return fmt.Errorf("failed to enumerate displays: %w", err)
	}
	targets := Resolve(c.selection, displays)
	if len(targets) == 0 {
		c.logger.Info("no displays selected; overlay stays hidden", "selection", c.selection.String(), "attached", len(displays))
		return nil
	}

	if err := c.reconcile(targets); err != nil {
		return err
	}

	for i, e := range c.windows {
		if err := e.win.Show(); err != nil {
			for _, shown := range c.windows[:i] {
				shown.win.Hide()
			}
			return fmt.Errorf("failed to show overlay on %s: %w", e.win.SurfaceID(), err)
		}
	}
	c.windows[0].win.Focus()

	c.active = true
	c.logger.Debug("overlay shown", "surfaces", len(c.windows))
	c.notify()
	return nil
}

// RequestHide is the only way the overlay goes away. The windows are hidden
// on the next loop iteration, never from inside the event that asked.
func (c *Controller) RequestHide(source DismissSource) {
	if !c.active || c.transitioning {
		return
	}
	c.active = false
	c.transitioning = true
	c.lastDismiss = source
	c.logger.Debug("overlay hide requested", "source", source.String())
	c.notify()

	c.sched.Post(c.teardown)
}

// Toggle shows when hidden and hides (as the hotkey) when shown. It does
// nothing while a hide is pending.
func (c *Controller) Toggle() error {
	return c.ToggleWith(DismissHotkey)
}

// ToggleWith is Toggle with an explicit dismiss source for the hide side.
func (c *Controller) ToggleWith(source DismissSource) error {
	if c.transitioning {
		return nil
	}
	if c.active {
		c.RequestHide(source)
		return nil
	}
	return c.Show()
}

// Close destroys every window. The controller can be shown again afterwards.
func (c *Controller) Close() {
	for _, e := range c.windows {
		e.win.Destroy()
	}
	c.windows = nil
	changed := c.active || c.transitioning
	c.active = false
	c.transitioning = false
	if changed {
		c.notify()
	}
}

// Dispose destroys the cached windows for the given display IDs while the
// overlay is hidden. Windows on other displays are kept for reuse. While the
// overlay is shown or hiding it does nothing; the next Show reconciles.
func (c *Controller) Dispose(ids ...string) {
	if c.active || c.transitioning || len(ids) == 0 {
		return
	}
	drop := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		drop[id] = struct{}{}
	}
	kept := c.windows[:0]
	for _, e := range c.windows {
		id := e.win.SurfaceID()
		if _, ok := drop[id]; ok {
			e.win.Destroy()
			c.logger.Debug("overlay window disposed", "surface", id)
			continue
		}
		kept = append(kept, e)
	}
	c.windows = kept
}

func (c *Controller) teardown() {
	for _, e := range c.windows {
		e.win.Hide()
	}
	c.transitioning = false
	c.logger.Debug("overlay hidden", "source", c.lastDismiss.String())
	c.notify()
}

// reconcile makes c.windows match targets, in order. A window is reused when
// its display ID, bounds and appearance are unchanged.
func (c *Controller) reconcile(targets []platform.Display) error {
	existing := make(map[string]*entry, len(c.windows))
	for _, e := range c.windows {
		existing[e.win.SurfaceID()] = e
	}

	next := make([]*entry, 0, len(targets))
	var created []*entry
	for _, t := range targets {
		if e, ok := existing[t.ID]; ok && e.bounds == t.Bounds && e.look == c.appearance {
			next = append(next, e)
			delete(existing, t.ID)
			continue
		}

		win, err := c.factory.Create(t, c.appearance, c.dismiss)
		if err != nil {
			for _, e := range created {
				e.win.Destroy()
			}
			return fmt.Errorf("failed to create overlay on %s: %w", t.ID, err)
		}
		e := &entry{win: win, bounds: t.Bounds, look: c.appearance}
		created = append(created, e)
		next = append(next, e)
	}

	// Whatever is left covers a display that is gone, moved or restyled.
	for id, e := range existing {
		e.win.Destroy()
		c.logger.Debug("overlay window disposed", "surface", id)
	}
	c.windows = next
	return nil
}

func (c *Controller) dismiss(source DismissSource) {
	c.RequestHide(source)
}

func (c *Controller) notify() {
	if len(c.observers) == 0 {
		return
	}
	s := c.State()
	for _, fn := range c.observers {
		fn(s)
	}
}
