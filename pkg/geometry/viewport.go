package geometry

// Viewport maps page-space to the pixels of the rendered, zoomed page.
// Scale is renderedWidth / nativeWidth; Offset is the screen position of
// the page origin (scroll offset, negated).
type Viewport struct {
	Scale  float64
	Offset Point2D
}

// NewViewport returns a viewport with the given page scale and no offset.
func NewViewport(scale float64) Viewport {
	return Viewport{Scale: scale}
}

// PageScale returns renderedWidth / nativeWidth. An unknown native width
// yields 1 so callers never divide by zero.
func PageScale(renderedWidth, nativeWidth float64) float64 {
	if nativeWidth <= 0 || renderedWidth <= 0 {
		return 1
	}
	return renderedWidth / nativeWidth
}

func (v Viewport) scale() float64 {
	if v.Scale <= 0 {
		return 1
	}
	return v.Scale
}

// ToPage converts a screen point to page-space. It is the only path by
// which pointer input becomes stored geometry.
func (v Viewport) ToPage(screen Point2D) Point2D {
	s := v.scale()
	return Point2D{
		X: (screen.X - v.Offset.X) / s,
		Y: (screen.Y - v.Offset.Y) / s,
	}
}

// ToScreen converts a page-space point to screen pixels.
func (v Viewport) ToScreen(page Point2D) Point2D {
	s := v.scale()
	return Point2D{
		X: page.X*s + v.Offset.X,
		Y: page.Y*s + v.Offset.Y,
	}
}

// PageDistance converts a length in screen pixels to page-space units.
func (v Viewport) PageDistance(screenPixels float64) float64 {
	return screenPixels / v.scale()
}
