package overlay

import "github.com/1broseidon/veil/internal/platform"

// DismissSource identifies what asked the overlay to go away.
type DismissSource int

const (
	DismissHotkey DismissSource = iota
	DismissClick
	DismissCancel
	DismissExplicit
)

func (s DismissSource) String() string {
	switch s {
	case DismissHotkey:
		return "hotkey"
	case DismissClick:
		return "click"
	case DismissCancel:
		return "cancel"
	case DismissExplicit:
		return "explicit"
	default:
		return "unknown"
	}
}

// Appearance is how every overlay window looks.
type Appearance struct {
	Opacity  float64 // 0.05-1.0
	Tint     uint32  // 0xRRGGBB
	HintText string
	ShowHint bool
}

// Window is one overlay covering one display. Implementations deliver
// dismiss requests through the callback given to Factory.Create, from the UI
// loop, and must not hide or destroy themselves.
type Window interface {
	SurfaceID() string
	Bounds() platform.Rect
	// Show maps the window above everything else at its bounds.
	Show() error
	// Focus gives the window keyboard focus so the cancel key reaches it.
	Focus()
	Hide()
	Destroy()
}

// Factory creates overlay windows.
type Factory interface {
	Create(surface platform.Display, look Appearance, dismiss func(DismissSource)) (Window, error)
}
