package platform

import (
	"image"
	"testing"
)

func TestScreenshotEnumerator_SkipsEmptyBounds(t *testing.T) {
	rects := []image.Rectangle{
		image.Rect(0, 0, 1920, 1080),
		image.Rect(0, 0, 0, 0),
		image.Rect(1920, -200, 4480, 1240),
	}
	e := &ScreenshotEnumerator{
		count:  func() int { return len(rects) },
		bounds: func(i int) image.Rectangle { return rects[i] },
	}

	got, err := e.Displays()
	if err != nil {
		t.Fatalf("Displays() error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 displays, got %d", len(got))
	}
	if got[1].ID != "screen-2" {
		t.Fatalf("expected positional id screen-2, got %q", got[1].ID)
	}
	want := Rect{X: 1920, Y: -200, Width: 2560, Height: 1440}
	if got[1].Bounds != want {
		t.Fatalf("bounds = %+v, want %+v", got[1].Bounds, want)
	}
}

func TestRectContains(t *testing.T) {
	r := Rect{X: 100, Y: 50, Width: 10, Height: 10}
	if !r.Contains(100, 50) {
		t.Fatal("expected origin to be inside")
	}
	if r.Contains(110, 55) {
		t.Fatal("expected right edge to be exclusive")
	}
	if (Rect{Width: 0, Height: 5}).Empty() != true {
		t.Fatal("expected zero-width rect to be empty")
	}
}
