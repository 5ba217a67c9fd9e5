package canvas

import (
	"image"
	"image/color"
	"sync"

	"fyne.io/fyne/v2"
	fynecanvas "fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"
	xdraw "golang.org/x/image/draw"

	"elec-takeoff/internal/app"
	"elec-takeoff/internal/draw"
	"elec-takeoff/internal/render"
	"elec-takeoff/internal/takeoff"
	"elec-takeoff/pkg/geometry"
)

const (
	minZoom  = 0.1
	maxZoom  = 10.0
	zoomStep = 1.25
)

var background = color.RGBA{R: 48, G: 48, B: 48, A: 255}

// TakeoffCanvas displays one drawing page with its takeoff objects and
// routes pointer and keyboard input to a draw.Engine.
type TakeoffCanvas struct {
	widget.BaseWidget

	engine *draw.Engine
	state  *app.State

	mu     sync.Mutex // guards page and the background cache
	page   *render.Page
	bgKey  bgKey
	bgFill *image.RGBA

	raster  *fynecanvas.Raster
	zoom    float64
	scroll  *zoomScroll
	content *pointerContent
	imgSize fyne.Size

	fitToWindow    bool
	lastScrollSize fyne.Size

	onZoomChange func(zoom float64)
}

type bgKey struct {
	w, h   int
	bitmap image.Image
}

// zoomScroll is a widget that wraps a scroll container but intercepts wheel for zoom.
type zoomScroll struct {
	widget.BaseWidget
	scroll *container.Scroll
	canvas *TakeoffCanvas
}

func newZoomScroll(content fyne.CanvasObject, tc *TakeoffCanvas) *zoomScroll {
	scroll := container.NewScroll(content)
	scroll.Direction = container.ScrollBoth
	zs := &zoomScroll{scroll: scroll, canvas: tc}
	zs.ExtendBaseWidget(zs)
	return zs
}

func (zs *zoomScroll) Scrolled(ev *fyne.ScrollEvent) {
	if ev.Scrolled.DY > 0 {
		zs.canvas.ZoomIn()
	} else if ev.Scrolled.DY < 0 {
		zs.canvas.ZoomOut()
	}
}

func (zs *zoomScroll) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(zs.scroll)
}

// Size returns the scroll container's size.
func (zs *zoomScroll) Size() fyne.Size {
	return zs.scroll.Size()
}

// Refresh refreshes the scroll container.
func (zs *zoomScroll) Refresh() {
	zs.scroll.Refresh()
	zs.BaseWidget.Refresh()
}

// Resize sets the size of the scroll container.
func (zs *zoomScroll) Resize(size fyne.Size) {
	zs.scroll.Resize(size)
	zs.BaseWidget.Resize(size)
}

// pan moves the scroll offset by a screen delta.
func (zs *zoomScroll) pan(dx, dy float32) {
	off := zs.scroll.Offset
	off.X -= dx
	off.Y -= dy
	content := zs.scroll.Content.Size()
	view := zs.scroll.Size()
	off.X = clamp32(off.X, 0, content.Width-view.Width)
	off.Y = clamp32(off.Y, 0, content.Height-view.Height)
	zs.scroll.Offset = off
	zs.scroll.Refresh()
}

func clamp32(v, lo, hi float32) float32 {
	if hi < lo {
		hi = lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// pointerContent wraps the raster and turns fyne input into engine events.
// Positions are relative to the content, so they already include the
// scroll offset.
type pointerContent struct {
	widget.BaseWidget
	canvas  *TakeoffCanvas
	raster  *fynecanvas.Raster
	panning bool
}

var (
	_ desktop.Mouseable   = (*pointerContent)(nil)
	_ desktop.Hoverable   = (*pointerContent)(nil)
	_ fyne.Draggable      = (*pointerContent)(nil)
	_ fyne.DoubleTappable = (*pointerContent)(nil)
	_ fyne.Focusable      = (*pointerContent)(nil)
)

func newPointerContent(tc *TakeoffCanvas, raster *fynecanvas.Raster) *pointerContent {
	pc := &pointerContent{canvas: tc, raster: raster}
	pc.ExtendBaseWidget(pc)
	return pc
}

func (pc *pointerContent) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(pc.raster)
}

func (pc *pointerContent) MinSize() fyne.Size {
	return pc.raster.MinSize()
}

func toPoint(p fyne.Position) geometry.Point2D {
	return geometry.Point2D{X: float64(p.X), Y: float64(p.Y)}
}

func (pc *pointerContent) MouseDown(ev *desktop.MouseEvent) {
	if c := fyne.CurrentApp().Driver().CanvasForObject(pc); c != nil {
		c.Focus(pc)
	}
	btn := draw.ButtonPrimary
	if ev.Button == desktop.MouseButtonSecondary {
		btn = draw.ButtonSecondary
	}
	e := pc.canvas.engine
	e.PointerDown(draw.PointerEvent{Pos: toPoint(ev.Position), Button: btn})
	pc.panning = btn == draw.ButtonPrimary && e.Tool() == draw.ToolHand && !e.Dragging()
}

func (pc *pointerContent) MouseUp(ev *desktop.MouseEvent) {
	pc.panning = false
	btn := draw.ButtonPrimary
	if ev.Button == desktop.MouseButtonSecondary {
		btn = draw.ButtonSecondary
	}
	pc.canvas.engine.PointerUp(draw.PointerEvent{Pos: toPoint(ev.Position), Button: btn})
}

func (pc *pointerContent) MouseIn(ev *desktop.MouseEvent) {}

func (pc *pointerContent) MouseMoved(ev *desktop.MouseEvent) {
	pc.canvas.engine.PointerMove(draw.PointerEvent{Pos: toPoint(ev.Position)})
}

func (pc *pointerContent) MouseOut() {}

func (pc *pointerContent) Dragged(ev *fyne.DragEvent) {
	if pc.panning {
		pc.canvas.scroll.pan(ev.Dragged.DX, ev.Dragged.DY)
		return
	}
	pc.canvas.engine.PointerMove(draw.PointerEvent{Pos: toPoint(ev.Position)})
}

func (pc *pointerContent) DragEnd() {}

func (pc *pointerContent) DoubleTapped(ev *fyne.PointEvent) {
	pc.canvas.engine.DoubleClick(draw.PointerEvent{Pos: toPoint(ev.Position)})
}

func (pc *pointerContent) FocusGained() {}

func (pc *pointerContent) FocusLost() {}

func (pc *pointerContent) TypedRune(rune) {}

func (pc *pointerContent) TypedKey(ev *fyne.KeyEvent) {
	if k, ok := mapKey(ev.Name); ok {
		pc.canvas.engine.KeyDown(k)
	}
}

func mapKey(name fyne.KeyName) (draw.Key, bool) {
	switch name {
	case fyne.KeyEscape:
		return draw.KeyEscape, true
	case fyne.KeyReturn, fyne.KeyEnter:
		return draw.KeyEnter, true
	case fyne.KeyDelete:
		return draw.KeyDelete, true
	case fyne.KeyBackspace:
		return draw.KeyBackspace, true
	}
	return 0, false
}

// NewTakeoffCanvas creates a canvas bound to an engine and the state it
// edits. The canvas redraws whenever either changes.
func NewTakeoffCanvas(engine *draw.Engine, state *app.State) *TakeoffCanvas {
	tc := &TakeoffCanvas{
		engine:  engine,
		state:   state,
		zoom:    1.0,
		imgSize: fyne.NewSize(400, 300),
	}

	tc.raster = fynecanvas.NewRaster(tc.draw)
	tc.raster.ScaleMode = fynecanvas.ImageScalePixels
	tc.raster.SetMinSize(tc.imgSize)

	tc.content = newPointerContent(tc, tc.raster)
	tc.scroll = newZoomScroll(tc.content, tc)

	engine.OnChange(tc.Refresh)
	for _, ev := range []app.EventType{
		app.EventObjectsChanged,
		app.EventSelectionChanged,
		app.EventCalibrationChanged,
		app.EventProjectLoaded,
		app.EventProjectReset,
		app.EventTagsChanged,
	} {
		state.On(ev, func(interface{}) { tc.Refresh() })
	}

	tc.ExtendBaseWidget(tc)
	return tc
}

// SetPage replaces the page bitmap. A nil page clears the canvas.
func (tc *TakeoffCanvas) SetPage(p *render.Page) {
	tc.mu.Lock()
	tc.page = p
	tc.bgFill = nil
	tc.mu.Unlock()
	tc.updateContentSize()
}

// Page returns the current page bitmap, if any.
func (tc *TakeoffCanvas) Page() *render.Page {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	return tc.page
}

func (tc *TakeoffCanvas) nativeSize() (float64, float64) {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	if tc.page == nil {
		return 0, 0
	}
	return tc.page.NativeWidth, tc.page.NativeHeight
}

// SetZoom sets the zoom level.
func (tc *TakeoffCanvas) SetZoom(zoom float64) {
	if zoom < minZoom {
		zoom = minZoom
	}
	if zoom > maxZoom {
		zoom = maxZoom
	}
	tc.zoom = zoom
	tc.engine.SetViewport(geometry.NewViewport(zoom))
	tc.updateContentSize()

	if tc.onZoomChange != nil {
		tc.onZoomChange(zoom)
	}
}

// Zoom returns the current zoom level.
func (tc *TakeoffCanvas) Zoom() float64 {
	return tc.zoom
}

// ZoomIn increases the zoom level.
func (tc *TakeoffCanvas) ZoomIn() {
	tc.SetZoom(tc.zoom * zoomStep)
}

// ZoomOut decreases the zoom level.
func (tc *TakeoffCanvas) ZoomOut() {
	tc.SetZoom(tc.zoom / zoomStep)
}

// FitToWindow adjusts zoom to fit the page in the visible area.
func (tc *TakeoffCanvas) FitToWindow() {
	w, h := tc.nativeSize()
	if w <= 0 || h <= 0 {
		return
	}
	viewSize := tc.scroll.Size()
	if viewSize.Width <= 0 || viewSize.Height <= 0 {
		return
	}

	zoom := float64(viewSize.Width) / w
	if zy := float64(viewSize.Height) / h; zy < zoom {
		zoom = zy
	}
	tc.SetZoom(zoom * 0.95)
}

// SetFitToWindow enables or disables auto-fit on resize.
func (tc *TakeoffCanvas) SetFitToWindow(fit bool) {
	tc.fitToWindow = fit
	if fit {
		tc.FitToWindow()
	}
}

// CheckResize auto-fits when the scroll container changed size.
func (tc *TakeoffCanvas) CheckResize(size fyne.Size) {
	if !tc.fitToWindow {
		return
	}
	if size.Width > 0 && size.Height > 0 && size != tc.lastScrollSize {
		tc.lastScrollSize = size
		tc.FitToWindow()
	}
}

// OnZoomChange sets a callback for zoom changes.
func (tc *TakeoffCanvas) OnZoomChange(callback func(zoom float64)) {
	tc.onZoomChange = callback
}

// FocusTarget returns the object that receives keyboard input.
func (tc *TakeoffCanvas) FocusTarget() fyne.Focusable {
	return tc.content
}

// Refresh redraws the raster.
func (tc *TakeoffCanvas) Refresh() {
	tc.raster.Refresh()
}

func (tc *TakeoffCanvas) updateContentSize() {
	w, h := tc.nativeSize()
	if w <= 0 || h <= 0 {
		tc.imgSize = fyne.NewSize(400, 300)
	} else {
		tc.imgSize = fyne.NewSize(float32(w*tc.zoom), float32(h*tc.zoom))
	}

	tc.raster.SetMinSize(tc.imgSize)
	tc.raster.Resize(tc.imgSize)
	if tc.content != nil {
		tc.content.Resize(tc.imgSize)
		tc.content.Refresh()
	}
	tc.raster.Refresh()
	if tc.scroll != nil {
		tc.scroll.Refresh()
	}
}

// backgroundFor returns the page bitmap scaled to w x h, reusing the last
// result while neither the size nor the bitmap changed.
func (tc *TakeoffCanvas) backgroundFor(w, h int) *image.RGBA {
	tc.mu.Lock()
	defer tc.mu.Unlock()

	var bitmap image.Image
	if tc.page != nil {
		bitmap = tc.page.Bitmap
	}
	key := bgKey{w: w, h: h, bitmap: bitmap}
	if tc.bgFill != nil && tc.bgKey == key {
		return tc.bgFill
	}

	bg := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.Draw(bg, bg.Bounds(), image.NewUniform(background), image.Point{}, xdraw.Src)
	if bitmap != nil {
		xdraw.ApproxBiLinear.Scale(bg, bg.Bounds(), bitmap, bitmap.Bounds(), xdraw.Over, nil)
	}
	tc.bgKey, tc.bgFill = key, bg
	return bg
}

// draw is the raster drawing function.
func (tc *TakeoffCanvas) draw(w, h int) image.Image {
	output := image.NewRGBA(image.Rect(0, 0, w, h))
	copy(output.Pix, tc.backgroundFor(w, h).Pix)

	nativeW, _ := tc.nativeSize()
	if nativeW <= 0 {
		return output
	}
	pageIndex := tc.engine.PageIndex()
	selPage, ids := tc.state.Selection()
	selected := make(map[string]bool, len(ids))
	if selPage == pageIndex {
		for _, id := range ids {
			selected[id] = true
		}
	}

	scene := Scene{
		Viewport: geometry.NewViewport(geometry.PageScale(float64(w), nativeW)),
		Page:     tc.state.Page(pageIndex),
		Selected: selected,
		Preview:  tc.engine.Preview(),
		ColorOf: func(o takeoff.Object) color.RGBA {
			if o.Measure != nil && o.Measure.Style.Color != "" {
				return ObjectColor(o)
			}
			return tc.state.Tags.Color(o.Code, ObjectColor(o))
		},
	}
	scene.Paint(output)
	return output
}

// CreateRenderer implements fyne.Widget.
func (tc *TakeoffCanvas) CreateRenderer() fyne.WidgetRenderer {
	return &takeoffCanvasRenderer{canvas: tc}
}

type takeoffCanvasRenderer struct {
	canvas *TakeoffCanvas
}

func (r *takeoffCanvasRenderer) Layout(size fyne.Size) {
	r.canvas.scroll.Resize(size)
	r.canvas.CheckResize(size)
}

func (r *takeoffCanvasRenderer) MinSize() fyne.Size {
	return fyne.NewSize(100, 100)
}

func (r *takeoffCanvasRenderer) Refresh() {
	r.canvas.raster.Refresh()
}

func (r *takeoffCanvasRenderer) Objects() []fyne.CanvasObject {
	return []fyne.CanvasObject{r.canvas.scroll}
}

func (r *takeoffCanvasRenderer) Destroy() {}
