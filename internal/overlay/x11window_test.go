package overlay

import (
	"testing"

	"github.com/1broseidon/veil/internal/platform"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/stretchr/testify/assert"
)

func TestHintOrigin_Centered(t *testing.T) {
	x, y := hintOrigin(1920, 1080, 48*9, 12, 3)
	assert.Equal(t, (1920-432)/2, x)
	// Text box of height 15 centered vertically, baseline at its ascent.
	assert.Equal(t, (1080-15)/2+12, y)
}

func TestHintOrigin_TooWide(t *testing.T) {
	x, y := hintOrigin(100, 10, 500, 12, 3)
	assert.Equal(t, 0, x)
	assert.Equal(t, 12, y)
}

func TestFitHint(t *testing.T) {
	assert.Equal(t, "short", fitHint("short", 1000, 10))
	assert.Equal(t, "abcdefg...", fitHint("abcdefghijklmnop", 100, 10))
	assert.Equal(t, "ab", fitHint("abcdef", 20, 10))
	assert.Equal(t, "", fitHint("abc", 5, 10))

	long := make([]byte, 400)
	for i := range long {
		long[i] = 'x'
	}
	assert.Len(t, fitHint(string(long), 100000, 1), 255)
}

func TestReleaseInside(t *testing.T) {
	b := platform.Rect{X: 1920, Y: 0, Width: 100, Height: 50}
	assert.True(t, releaseInside(b, 0, 0))
	assert.True(t, releaseInside(b, 99, 49))
	assert.False(t, releaseInside(b, 100, 10))
	assert.False(t, releaseInside(b, -1, 10))
}

func TestClickTracker(t *testing.T) {
	bounds := platform.Rect{X: 1920, Y: 0, Width: 100, Height: 50}
	type click struct {
		press   bool
		button  xproto.Button
		x, y    int
		dismiss bool
	}
	tests := []struct {
		name   string
		events []click
	}{
		{"press then release inside", []click{{press: true, button: 1}, {button: 1, x: 10, y: 10, dismiss: true}}},
		{"press without release", []click{{press: true, button: 1}}},
		{"release without press", []click{{button: 1, x: 10, y: 10}}},
		{"secondary button", []click{{press: true, button: 3}, {button: 3, x: 10, y: 10}}},
		{"middle press then primary release", []click{{press: true, button: 2}, {button: 1, x: 10, y: 10}}},
		{"release outside", []click{{press: true, button: 1}, {button: 1, x: 150, y: 10}}},
		{"release outside disarms", []click{
			{press: true, button: 1}, {button: 1, x: -5, y: 10}, {button: 1, x: 10, y: 10},
		}},
		{"second click after first", []click{
			{press: true, button: 1}, {button: 1, x: 1, y: 1, dismiss: true},
			{press: true, button: 1}, {button: 1, x: 2, y: 2, dismiss: true},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var c clickTracker
			for i, ev := range tt.events {
				if ev.press {
					c.press(ev.button)
					continue
				}
				assert.Equal(t, ev.dismiss, c.release(ev.button, bounds, ev.x, ev.y), "event %d", i)
			}
		})
	}
}

func TestClickTracker_ResetOnShow(t *testing.T) {
	var c clickTracker
	c.press(1)
	c.reset()
	assert.False(t, c.release(1, platform.Rect{Width: 10, Height: 10}, 1, 1))
}

func TestOpacityCardinal(t *testing.T) {
	assert.Equal(t, uint(0), opacityCardinal(0))
	assert.Equal(t, uint(0xFFFFFFFF), opacityCardinal(1))
	assert.InDelta(t, float64(0xFFFFFFFF)*0.3, float64(opacityCardinal(0.3)), 1)
}
