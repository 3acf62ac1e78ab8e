package platform

import (
	"fmt"
	"image"

	"github.com/kbinani/screenshot"
)

// ScreenshotEnumerator lists displays through kbinani/screenshot. It is used
// when RandR is unavailable (e.g. Xinerama-only servers). Identifiers are
// positional ("screen-0", "screen-1", ...), so they only stay stable while the
// output order does.
type ScreenshotEnumerator struct {
	count  func() int
	bounds func(int) image.Rectangle
}

var _ Enumerator = (*ScreenshotEnumerator)(nil)

// NewScreenshotEnumerator returns an enumerator backed by the screenshot package.
func NewScreenshotEnumerator() *ScreenshotEnumerator {
	return &ScreenshotEnumerator{
		count:  screenshot.NumActiveDisplays,
		bounds: screenshot.GetDisplayBounds,
	}
}

// Displays returns one Display per active screen.
func (e *ScreenshotEnumerator) Displays() ([]Display, error) {
	n := e.count()
	if n < 0 {
		return nil, fmt.Errorf("screenshot: invalid display count %d", n)
	}

	displays := make([]Display, 0, n)
	for i := 0; i < n; i++ {
		r := e.bounds(i)
		if r.Empty() {
			continue
		}
		id := fmt.Sprintf("screen-%d", i)
		displays = append(displays, Display{
			ID:   id,
			Name: id,
			Bounds: Rect{
				X:      r.Min.X,
				Y:      r.Min.Y,
				Width:  r.Dx(),
				Height: r.Dy(),
			},
		})
	}
	return displays, nil
}
