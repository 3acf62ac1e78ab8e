package platform

// Rect describes a rectangular region in global screen coordinates.
type Rect struct {
	X      int
	Y      int
	Width  int
	Height int
}

// Empty reports whether the rect has no area.
func (r Rect) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Contains reports whether the point lies inside the rect.
func (r Rect) Contains(x, y int) bool {
	return x >= r.X && x < r.X+r.Width && y >= r.Y && y < r.Y+r.Height
}

// Display describes one physical output the window system exposes as an
// addressable rectangle. ID is stable for the lifetime of the session.
type Display struct {
	ID     string
	Name   string
	Bounds Rect
}

// Enumerator lists the currently attached displays. Implementations must not
// cache: every call reflects the live output configuration.
type Enumerator interface {
	Displays() ([]Display, error)
}

// EnumeratorFunc adapts a function to the Enumerator interface.
type EnumeratorFunc func() ([]Display, error)

// Displays calls f.
func (f EnumeratorFunc) Displays() ([]Display, error) {
	return f()
}
