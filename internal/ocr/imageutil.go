package ocr

import (
	"image"

	"gocv.io/x/gocv"
)

// ImageToMat converts a Go image.Image to a gocv.Mat in BGR format.
func ImageToMat(img image.Image) (gocv.Mat, error) {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	mat := gocv.NewMatWithSize(h, w, gocv.MatTypeCV8UC3)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, g, b, _ := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			mat.SetUCharAt(y, x*3+0, uint8(b>>8))
			mat.SetUCharAt(y, x*3+1, uint8(g>>8))
			mat.SetUCharAt(y, x*3+2, uint8(r>>8))
		}
	}
	return mat, nil
}

// TitleBlock returns the bottom-right region of a page covering the given
// fractions of its width and height. Fractions outside (0, 1] select the
// whole page along that axis.
func TitleBlock(page image.Rectangle, fracW, fracH float64) image.Rectangle {
	clamp := func(f float64) float64 {
		if f <= 0 || f > 1 {
			return 1
		}
		return f
	}
	w := int(float64(page.Dx())*clamp(fracW) + 0.5)
	h := int(float64(page.Dy())*clamp(fracH) + 0.5)
	return image.Rect(page.Max.X-w, page.Max.Y-h, page.Max.X, page.Max.Y)
}
