package render

import (
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func solid(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

func TestImageSetScales(t *testing.T) {
	set := FromImages([]image.Image{solid(200, 100, color.RGBA{R: 200, A: 255})}, QualityDraft)
	require.Equal(t, 1, set.PageCount())

	page, err := set.RenderPage(context.Background(), 0, 0.5)
	require.NoError(t, err)
	assert.Equal(t, 200.0, page.NativeWidth)
	assert.Equal(t, 100.0, page.NativeHeight)
	assert.Equal(t, image.Rect(0, 0, 100, 50), page.Bitmap.Bounds())

	r, _, _, _ := page.Bitmap.At(50, 25).RGBA()
	assert.InDelta(t, 200, r>>8, 2)

	native, err := set.RenderPage(context.Background(), 0, 1)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 200, 100), native.Bitmap.Bounds())
}

func TestImageSetErrors(t *testing.T) {
	set := FromImages([]image.Image{solid(4, 4, color.RGBA{A: 255})}, QualityHigh)
	_, err := set.RenderPage(context.Background(), 3, 1)
	assert.ErrorIs(t, err, ErrPageRange)
	_, err = set.RenderPage(context.Background(), 0, 0)
	assert.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = set.RenderPage(ctx, 0, 2)
	assert.ErrorIs(t, err, context.Canceled)

	_, err = NewImageSet([]string{"sheet.pdf"}, QualityHigh)
	assert.Error(t, err)
}

func TestImageSetLoadsFiles(t *testing.T) {
	path := filepath.Join(t.TempDir(), "E-101.png")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, solid(30, 20, color.RGBA{G: 255, A: 255})))
	require.NoError(t, f.Close())

	set, err := NewImageSet([]string{path}, QualityHigh)
	require.NoError(t, err)
	assert.Equal(t, path, set.Path(0))

	page, err := set.RenderPage(context.Background(), 0, 2)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 60, 40), page.Bitmap.Bounds())
	assert.True(t, IsSupportedFormat("X.TIF"))
}

// gatedRenderer blocks each page until released.
type gatedRenderer struct {
	gates map[int]chan struct{}
}

func (g *gatedRenderer) PageCount() int { return len(g.gates) }

func (g *gatedRenderer) RenderPage(ctx context.Context, pageIndex int, scale float64) (*Page, error) {
	select {
	case <-g.gates[pageIndex]:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return &Page{Index: pageIndex, Scale: scale}, nil
}

func TestLoaderDropsStaleResults(t *testing.T) {
	g := &gatedRenderer{gates: map[int]chan struct{}{0: make(chan struct{}), 1: make(chan struct{})}}

	var (
		mu        sync.Mutex
		delivered []int
	)
	l := NewLoader(g, func(pageIndex int, r Result) {
		mu.Lock()
		defer mu.Unlock()
		assert.NoError(t, r.Err)
		delivered = append(delivered, r.Page.Index)
	})

	first := l.Request(context.Background(), 0, 1)
	second := l.Request(context.Background(), 1, 1)
	assert.Greater(t, second, first)

	close(g.gates[1])
	close(g.gates[0])
	l.Wait()

	assert.Equal(t, []int{1}, delivered)
}

func TestLoaderCancel(t *testing.T) {
	g := &gatedRenderer{gates: map[int]chan struct{}{0: make(chan struct{})}}
	called := false
	l := NewLoader(g, func(int, Result) { called = true })

	l.Request(context.Background(), 0, 1)
	l.Cancel()
	l.Wait()
	assert.False(t, called)
}
