package daemon

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/1broseidon/veil/internal/platform"
)

// DisplayChange describes a difference between two display enumerations. A
// display whose bounds changed shows up in Changed only.
type DisplayChange struct {
	Added   []platform.Display
	Removed []platform.Display
	Changed []platform.Display
}

// Empty reports whether nothing changed.
func (c DisplayChange) Empty() bool {
	return len(c.Added) == 0 && len(c.Removed) == 0 && len(c.Changed) == 0
}

// StaleIDs lists the displays whose cached overlay windows no longer fit.
func (c DisplayChange) StaleIDs() []string {
	ids := make([]string, 0, len(c.Removed)+len(c.Changed))
	for _, d := range c.Removed {
		ids = append(ids, d.ID)
	}
	for _, d := range c.Changed {
		ids = append(ids, d.ID)
	}
	return ids
}

// disposer drops cached windows for some displays.
type disposer interface {
	Dispose(ids ...string)
}

// disposeChanged returns a change handler that, on the UI loop, drops the
// cached windows of removed or resized displays. Added displays need
// nothing; they get a window on the next show.
func disposeChanged(post func(func()), d disposer) func(DisplayChange) {
	return func(change DisplayChange) {
		ids := change.StaleIDs()
		if len(ids) == 0 {
			return
		}
		post(func() { d.Dispose(ids...) })
	}
}

// ReconcilerConfig holds configuration for the reconciler.
type ReconcilerConfig struct {
	Interval time.Duration
	Logger   *slog.Logger
}

// Reconciler periodically enumerates displays and reports hot-plug changes.
// The overlay itself only looks at displays when it is shown; the daemon uses
// the reports to drop cached windows for displays that went away.
type Reconciler struct {
	interval time.Duration
	displays platform.Enumerator
	onChange func(DisplayChange)
	logger   *slog.Logger

	known  map[string]platform.Display
	primed bool
}

// NewReconciler creates a new reconciler with the given configuration.
func NewReconciler(cfg ReconcilerConfig, displays platform.Enumerator, onChange func(DisplayChange)) *Reconciler {
	interval := cfg.Interval
	if interval <= 0 {
		interval = 5 * time.Second
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Reconciler{
		interval: interval,
		displays: displays,
		onChange: onChange,
		logger:   logger,
	}
}

// Run starts the reconciliation loop. Blocks until context is cancelled.
func (r *Reconciler) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.logger.Debug("display reconciler started", "interval", r.interval)

	for {
		select {
		case <-ctx.Done():
			r.logger.Debug("display reconciler stopped")
			return
		case <-ticker.C:
			r.reconcile()
		}
	}
}

// ReconcileNow triggers an immediate reconciliation pass.
func (r *Reconciler) ReconcileNow() {
	r.reconcile()
}

// reconcile performs a single reconciliation pass.
func (r *Reconciler) reconcile() {
	// Recover from panics to prevent crashing the daemon
	defer func() {
		if err := recover(); err != nil {
			r.logger.Error("display reconciler panic recovered", "error", err)
		}
	}()

	current, err := r.displays.Displays()
	if err != nil {
		r.logger.Warn("display reconciler: failed to enumerate displays", "error", err)
		return
	}

	next := make(map[string]platform.Display, len(current))
	for _, d := range current {
		next[d.ID] = d
	}

	// The first pass only records the baseline.
	if !r.primed {
		r.known = next
		r.primed = true
		return
	}

	change := diffDisplays(r.known, next)
	r.known = next
	if change.Empty() {
		return
	}

	r.logger.Info("displays changed",
		"added", displayIDs(change.Added),
		"removed", displayIDs(change.Removed),
		"changed", displayIDs(change.Changed))
	if r.onChange != nil {
		r.onChange(change)
	}
}

func diffDisplays(prev, next map[string]platform.Display) DisplayChange {
	var change DisplayChange
	for id, d := range next {
		old, ok := prev[id]
		switch {
		case !ok:
			change.Added = append(change.Added, d)
		case old.Bounds != d.Bounds:
			change.Changed = append(change.Changed, d)
		}
	}
	for id, d := range prev {
		if _, ok := next[id]; !ok {
			change.Removed = append(change.Removed, d)
		}
	}
	sortDisplays(change.Added)
	sortDisplays(change.Removed)
	sortDisplays(change.Changed)
	return change
}

func sortDisplays(ds []platform.Display) {
	sort.Slice(ds, func(i, j int) bool { return ds[i].ID < ds[j].ID })
}

func displayIDs(ds []platform.Display) []string {
	ids := make([]string, 0, len(ds))
	for _, d := range ds {
		ids = append(ids, d.ID)
	}
	return ids
}
