// Package render provides page bitmaps for the takeoff canvas. The core
// only asks for a page index and a scale and treats the result as an
// opaque image.
package render

import (
	"context"
	"errors"
	"fmt"
	"image"
)

// ErrPageRange is returned for a page index outside the drawing set.
var ErrPageRange = errors.New("page index out of range")

// Page is one rendered page.
type Page struct {
	Index  int
	Scale  float64
	Bitmap image.Image

	// Native size of the page at scale 1, in page-space units.
	NativeWidth  float64
	NativeHeight float64
}

// Renderer rasterises pages of a drawing set.
type Renderer interface {
	PageCount() int
	RenderPage(ctx context.Context, pageIndex int, scale float64) (*Page, error)
}

func checkPage(r Renderer, pageIndex int) error {
	if pageIndex < 0 || pageIndex >= r.PageCount() {
		return fmt.Errorf("%w: %d of %d", ErrPageRange, pageIndex, r.PageCount())
	}
	return nil
}
