package overlay

import (
	"fmt"
	"testing"

	"github.com/1broseidon/veil/internal/platform"
	"github.com/stretchr/testify/assert"
)

func displays(n int) []platform.Display {
	out := make([]platform.Display, n)
	for i := range out {
		out[i] = display(fmt.Sprintf("OUT-%d", i), i*1000, 0, 1000, 800)
	}
	return out
}

func TestResolve_AllReturnsEveryDisplay(t *testing.T) {
	for n := 0; n <= 5; n++ {
		got := Resolve(All(), displays(n))
		assert.Equal(t, displays(n), got, "n=%d", n)
	}
}

func TestResolve_ExplicitIsIntersection(t *testing.T) {
	ds := displays(4)
	tests := []struct {
		sel  Selection
		want []string
	}{
		{Only(), nil},
		{Only("OUT-1"), []string{"OUT-1"}},
		{Only("OUT-3", "OUT-0"), []string{"OUT-0", "OUT-3"}},
		{Only("OUT-2", "gone"), []string{"OUT-2"}},
		{Only("gone"), nil},
	}
	for _, tt := range tests {
		var got []string
		for _, d := range Resolve(tt.sel, ds) {
			got = append(got, d.ID)
		}
		assert.Equal(t, tt.want, got, "selection %s", tt.sel)
	}
}

func TestResolve_SkipsEmptyAndDuplicate(t *testing.T) {
	ds := []platform.Display{
		display("A", 0, 0, 100, 100),
		display("B", 0, 0, 0, 0),
		display("A", 100, 0, 100, 100),
	}
	got := Resolve(All(), ds)
	assert.Len(t, got, 1)
	assert.Equal(t, 0, got[0].Bounds.X)
}

func TestSelection(t *testing.T) {
	assert.True(t, All().IsAll())
	assert.Nil(t, All().IDs())
	assert.Equal(t, "all", All().String())
	assert.Equal(t, "none", Only().String())
	assert.Equal(t, "a,b", Only("b", "a").String())

	assert.True(t, Only("a", "b").Equal(Only("b", "a")))
	assert.False(t, Only().Equal(All()))
	assert.False(t, Only("a").Equal(Only("a", "b")))
	assert.True(t, Only("a").Includes("a"))
	assert.False(t, Only("a").Includes("b"))
}
