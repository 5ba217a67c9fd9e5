package render

import (
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
)

// Quality selects the scaler used for page bitmaps.
type Quality int

const (
	QualityHigh  Quality = iota // Catmull-Rom
	QualityDraft                // approximate bilinear
)

func (q Quality) scaler() draw.Scaler {
	if q == QualityDraft {
		return draw.ApproxBiLinear
	}
	return draw.CatmullRom
}

// ImageSet renders a drawing set that was rasterised to one image file per
// page. Native page size is the image size in pixels.
type ImageSet struct {
	paths   []string
	quality Quality

	mu    sync.Mutex
	pages map[int]image.Image
}

// NewImageSet creates a renderer over the page images, in page order.
func NewImageSet(paths []string, quality Quality) (*ImageSet, error) {
	for _, p := range paths {
		if !IsSupportedFormat(p) {
			return nil, fmt.Errorf("unsupported page image: %s", p)
		}
	}
	return &ImageSet{
		paths:   append([]string(nil), paths...),
		quality: quality,
		pages:   make(map[int]image.Image),
	}, nil
}

// FromImages creates a renderer over already decoded pages.
func FromImages(images []image.Image, quality Quality) *ImageSet {
	s := &ImageSet{
		paths:   make([]string, len(images)),
		quality: quality,
		pages:   make(map[int]image.Image, len(images)),
	}
	for i, img := range images {
		s.pages[i] = img
	}
	return s
}

// PageCount returns the number of pages.
func (s *ImageSet) PageCount() int {
	return len(s.paths)
}

// Path returns the source file of a page, or "" for in-memory pages.
func (s *ImageSet) Path(pageIndex int) string {
	if pageIndex < 0 || pageIndex >= len(s.paths) {
		return ""
	}
	return s.paths[pageIndex]
}

// Native returns the decoded page at scale 1.
func (s *ImageSet) Native(pageIndex int) (image.Image, error) {
	if err := checkPage(s, pageIndex); err != nil {
		return nil, err
	}

	s.mu.Lock()
	img, ok := s.pages[pageIndex]
	s.mu.Unlock()
	if ok {
		return img, nil
	}

	img, err := LoadImage(s.paths[pageIndex])
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.pages[pageIndex] = img
	s.mu.Unlock()
	return img, nil
}

// RenderPage returns the page scaled by scale. Scale 1 returns the
// decoded image itself.
func (s *ImageSet) RenderPage(ctx context.Context, pageIndex int, scale float64) (*Page, error) {
	if scale <= 0 {
		return nil, fmt.Errorf("invalid scale %v", scale)
	}
	src, err := s.Native(pageIndex)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	b := src.Bounds()
	page := &Page{
		Index:        pageIndex,
		Scale:        scale,
		NativeWidth:  float64(b.Dx()),
		NativeHeight: float64(b.Dy()),
	}
	if scale == 1 {
		page.Bitmap = src
		return page, nil
	}

	w := max(1, int(float64(b.Dx())*scale+0.5))
	h := max(1, int(float64(b.Dy())*scale+0.5))
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	s.quality.scaler().Scale(dst, dst.Bounds(), src, b, draw.Src, nil)

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	page.Bitmap = dst
	return page, nil
}

// LoadImage decodes a PNG, JPEG or TIFF file.
func LoadImage(path string) (image.Image, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return img, nil
}

// SupportedFormats returns the list of supported page image formats.
func SupportedFormats() []string {
	return []string{".tiff", ".tif", ".png", ".jpg", ".jpeg"}
}

// IsSupportedFormat checks if the given path has a supported image format.
func IsSupportedFormat(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, format := range SupportedFormats() {
		if ext == format {
			return true
		}
	}
	return false
}
