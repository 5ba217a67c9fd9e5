package colorutil

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseHex(t *testing.T) {
	c, ok := ParseHex("#FF3B30")
	assert.True(t, ok)
	assert.Equal(t, Red, c)

	c, ok = ParseHex("0f0")
	assert.True(t, ok)
	assert.Equal(t, color.RGBA{G: 255, A: 255}, c)

	_, ok = ParseHex("#12")
	assert.False(t, ok)
	_, ok = ParseHex("zzzzzz")
	assert.False(t, ok)
}

func TestToHex(t *testing.T) {
	assert.Equal(t, "#FF3B30", ToHex(Red))
}
