package tray

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
)

const iconSize = 22

var (
	colorHidden  = color.NRGBA{R: 0x9e, G: 0x9e, B: 0x9e, A: 0xff}
	colorShown   = color.NRGBA{R: 0x3b, G: 0x82, B: 0xf6, A: 0xff}
	colorWarning = color.NRGBA{R: 0xf5, G: 0x9e, B: 0x0b, A: 0xff}
	colorOffline = color.NRGBA{R: 0x61, G: 0x61, B: 0x61, A: 0xff}
)

// renderIcon draws an eye-shaped lens. A shown overlay fills the lens; a
// hidden one draws only the ring.
func renderIcon(c color.NRGBA, filled bool) []byte {
	img := image.NewNRGBA(image.Rect(0, 0, iconSize, iconSize))
	center := float64(iconSize-1) / 2
	outer := center
	inner := center - 3

	for y := 0; y < iconSize; y++ {
		for x := 0; x < iconSize; x++ {
			dx, dy := float64(x)-center, (float64(y)-center)*1.6
			d := dx*dx + dy*dy
			switch {
			case d > outer*outer:
			case filled || d >= inner*inner:
				img.SetNRGBA(x, y, c)
			}
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil
	}
	return buf.Bytes()
}

var icons = map[State][]byte{
	StateOffline: renderIcon(colorOffline, false),
	StateHidden:  renderIcon(colorHidden, false),
	StateShown:   renderIcon(colorShown, true),
	StateUnbound: renderIcon(colorWarning, false),
}

func iconFor(s State) []byte {
	if b, ok := icons[s]; ok {
		return b
	}
	return icons[StateHidden]
}
