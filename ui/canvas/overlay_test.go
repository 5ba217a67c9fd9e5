package canvas

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"

	"elec-takeoff/internal/draw"
	"elec-takeoff/internal/takeoff"
	"elec-takeoff/pkg/colorutil"
	"elec-takeoff/pkg/geometry"
)

func blank(w, h int) *image.RGBA {
	return image.NewRGBA(image.Rect(0, 0, w, h))
}

func TestGetCharPattern(t *testing.T) {
	assert.Equal(t, getCharPattern('A'), getCharPattern('a'))
	assert.Equal(t, digitPatterns[7], getCharPattern('7'))
	assert.Equal(t, [5]uint8{}, getCharPattern('~'))
}

func TestTextSize(t *testing.T) {
	w, h := textSize("A1", 2)
	assert.Equal(t, 2*3*2+2, w)
	assert.Equal(t, 10, h)
	w, _ = textSize("", 2)
	assert.Zero(t, w)
}

func TestDrawLineClipsToBounds(t *testing.T) {
	img := blank(10, 10)
	assert.NotPanics(t, func() {
		drawLine(img, -5, -5, 20, 20, colorutil.Red, 3)
	})
	assert.Equal(t, colorutil.Red, img.RGBAAt(5, 5))
}

func TestDrawCircleRing(t *testing.T) {
	img := blank(40, 40)
	drawCircle(img, 20, 20, 10, colorutil.Blue, false)
	assert.Equal(t, colorutil.Blue, img.RGBAAt(29, 20))
	assert.Equal(t, color.RGBA{}, img.RGBAAt(20, 20), "ring leaves the center empty")

	drawCircle(img, 20, 20, 10, colorutil.Blue, true)
	assert.Equal(t, colorutil.Blue, img.RGBAAt(20, 20))
}

func TestScenePaintsMeasurementAtZoom(t *testing.T) {
	page := takeoff.NewPageState(0)
	page.SetScale(10)
	seg := takeoff.NewMeasurement(takeoff.TypeSegment, 0, []geometry.Point2D{{X: 10, Y: 50}, {X: 90, Y: 50}})
	page.Objects = append(page.Objects, seg)

	img := blank(200, 200)
	Scene{Viewport: geometry.NewViewport(2), Page: page}.Paint(img)

	// Page (15, 50) lands at screen (30, 100).
	assert.Equal(t, colorutil.Red, img.RGBAAt(30, 100))
	assert.Equal(t, color.RGBA{}, img.RGBAAt(30, 150))
}

func TestSceneSelectionHighlight(t *testing.T) {
	page := takeoff.NewPageState(0)
	seg := takeoff.NewMeasurement(takeoff.TypeSegment, 0, []geometry.Point2D{{X: 10, Y: 100}, {X: 190, Y: 100}})
	page.Objects = append(page.Objects, seg)

	img := blank(200, 200)
	Scene{
		Viewport: geometry.NewViewport(1),
		Page:     page,
		Selected: map[string]bool{seg.ID: true},
	}.Paint(img)
	assert.Equal(t, colorutil.Selection, img.RGBAAt(30, 103))
}

func TestSceneDragOffsetMovesSelectedOnly(t *testing.T) {
	page := takeoff.NewPageState(0)
	moving := takeoff.NewMeasurement(takeoff.TypeSegment, 0, []geometry.Point2D{{X: 10, Y: 20}, {X: 190, Y: 20}})
	still := takeoff.NewMeasurement(takeoff.TypeSegment, 0, []geometry.Point2D{{X: 10, Y: 150}, {X: 190, Y: 150}})
	page.Objects = append(page.Objects, moving, still)

	img := blank(200, 200)
	Scene{
		Viewport: geometry.NewViewport(1),
		Page:     page,
		Selected: map[string]bool{moving.ID: true},
		Preview:  draw.Preview{Dragging: true, Offset: geometry.Point2D{Y: 60}},
	}.Paint(img)

	assert.Equal(t, colorutil.Red, img.RGBAAt(30, 80))
	assert.Equal(t, color.RGBA{}, img.RGBAAt(30, 20))
	assert.Equal(t, colorutil.Red, img.RGBAAt(30, 150))
	assert.Equal(t, page.Objects[0].Vertices[0].Y, 20.0, "painting never mutates the page")
}

func TestSceneColorOfOverride(t *testing.T) {
	page := takeoff.NewPageState(0)
	page.Objects = append(page.Objects, takeoff.NewMeasurement(takeoff.TypeSegment, 0,
		[]geometry.Point2D{{X: 10, Y: 100}, {X: 190, Y: 100}}))

	img := blank(200, 200)
	Scene{
		Viewport: geometry.NewViewport(1),
		Page:     page,
		ColorOf:  func(takeoff.Object) color.RGBA { return colorutil.Green },
	}.Paint(img)
	assert.Equal(t, colorutil.Green, img.RGBAAt(30, 100))
}

func TestObjectColorUsesStyle(t *testing.T) {
	o := takeoff.NewMeasurement(takeoff.TypeSegment, 0, []geometry.Point2D{{X: 0, Y: 0}, {X: 1, Y: 0}})
	opts := takeoff.DefaultMeasureOptions()
	opts.Style.Color = "#00FF00"
	o.Measure = &opts
	assert.Equal(t, colorutil.Green, ObjectColor(o))

	c := takeoff.NewCount(0, geometry.Point2D{}, "A1")
	assert.Equal(t, colorutil.Orange, ObjectColor(c))
}

func TestMapKey(t *testing.T) {
	k, ok := mapKey("Escape")
	assert.True(t, ok)
	assert.Equal(t, draw.KeyEscape, k)
	_, ok = mapKey("F5")
	assert.False(t, ok)
}
