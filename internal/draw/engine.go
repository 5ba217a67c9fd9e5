// Package draw implements the interaction state machine that turns pointer
// and keyboard input into takeoff commands.
//
// Every pointer position passes through the current viewport's ToPage
// before it is buffered or committed, so stored geometry is always
// page-space and independent of zoom.
package draw

import (
	"errors"
	"log"
	"strconv"
	"strings"

	"elec-takeoff/internal/takeoff"
	"elec-takeoff/pkg/geometry"
)

// Store is the state the engine reads and commands. *app.State satisfies it.
type Store interface {
	Page(index int) *takeoff.PageState
	MeasureOptions() takeoff.MeasureOptions
	AddObject(obj takeoff.Object) error
	RemoveObject(pageIndex int, id string) bool
	MoveObjects(pageIndex int, ids []string, dx, dy float64) int
	Select(pageIndex int, id string)
	ClearSelection()
	DeleteSelected() int
	SetCalibration(pageIndex int, pixelsPerFoot float64) bool
	Undo(pageIndex int) bool
	Redo(pageIndex int) bool
}

// LengthPrompter asks the user for the real length of a calibration line.
// PromptLength must not block; it calls reply exactly once, possibly later,
// with the raw input and whether the user confirmed.
type LengthPrompter interface {
	PromptLength(pixels float64, reply func(input string, ok bool))
}

// PromptFunc adapts a function to LengthPrompter.
type PromptFunc func(pixels float64, reply func(input string, ok bool))

// PromptLength calls f.
func (f PromptFunc) PromptLength(pixels float64, reply func(input string, ok bool)) {
	f(pixels, reply)
}

// Settings tunes the engine.
type Settings struct {
	// Epsilon is the freeform simplification tolerance in page units.
	Epsilon float64
	// HitTolerance is the pick radius in screen pixels.
	HitTolerance float64
	// DragThreshold is how far, in screen pixels, the pointer must travel
	// before a press on an object becomes a move.
	DragThreshold float64
}

// DefaultSettings returns the built-in tuning.
func DefaultSettings() Settings {
	return Settings{
		Epsilon:       1.5,
		HitTolerance:  6,
		DragThreshold: 3,
	}
}

// drag tracks a pending move of the selection.
type drag struct {
	ids       []string
	startPage geometry.Point2D
	startPos  geometry.Point2D // screen
	lastPage  geometry.Point2D
	moved     bool
}

// Engine is the drawing state machine for one canvas.
type Engine struct {
	store    Store
	prompter LengthPrompter
	settings Settings

	tool     Tool
	phase    Phase
	page     int
	viewport geometry.Viewport
	code     string

	buffer     []geometry.Point2D // tentative vertices, page-space
	pointer    geometry.Point2D   // live pointer, page-space
	hasPointer bool
	held       bool // primary button down during freeform

	promptSeq uint64 // identifies the outstanding length prompt
	drag      *drag

	onChange func()
}

// New creates an engine. A nil prompter makes calibration always cancel.
func New(store Store, prompter LengthPrompter, settings Settings) *Engine {
	def := DefaultSettings()
	if settings.Epsilon <= 0 {
		settings.Epsilon = def.Epsilon
	}
	if settings.HitTolerance <= 0 {
		settings.HitTolerance = def.HitTolerance
	}
	if settings.DragThreshold < 0 {
		settings.DragThreshold = def.DragThreshold
	}
	return &Engine{
		store:    store,
		prompter: prompter,
		settings: settings,
		viewport: geometry.NewViewport(1),
	}
}

// OnChange sets a callback invoked whenever the preview or phase changes.
func (e *Engine) OnChange(fn func()) {
	e.onChange = fn
}

func (e *Engine) changed() {
	if e.onChange != nil {
		e.onChange()
	}
}

// Tool returns the active tool.
func (e *Engine) Tool() Tool { return e.tool }

// Phase returns the current state.
func (e *Engine) Phase() Phase { return e.phase }

// PageIndex returns the active page.
func (e *Engine) PageIndex() int { return e.page }

// ActiveCode returns the tag code applied to new objects.
func (e *Engine) ActiveCode() string { return e.code }

// Viewport returns the current screen mapping.
func (e *Engine) Viewport() geometry.Viewport { return e.viewport }

// Settings returns the engine tuning.
func (e *Engine) Settings() Settings { return e.settings }

// SetTool switches tools, abandoning any draw in progress.
func (e *Engine) SetTool(t Tool) {
	if t == e.tool {
		return
	}
	e.reset()
	e.tool = t
	e.changed()
}

// SetPage switches the active page. In-progress draws and the selection
// are abandoned; history is untouched.
func (e *Engine) SetPage(pageIndex int) {
	if pageIndex == e.page {
		return
	}
	e.reset()
	e.page = pageIndex
	e.store.ClearSelection()
	e.changed()
}

// SetViewport updates the screen mapping, e.g. after a zoom or scroll.
func (e *Engine) SetViewport(v geometry.Viewport) {
	e.viewport = v
}

// SetActiveCode sets the tag code used by new objects.
func (e *Engine) SetActiveCode(code string) {
	e.code = strings.ToUpper(strings.TrimSpace(code))
}

// Drawing reports whether a multi-step draw or calibration is in progress.
func (e *Engine) Drawing() bool {
	return e.phase != PhaseIdle
}

// Dragging reports whether a press with the hand tool grabbed the
// selection, as opposed to landing on empty page.
func (e *Engine) Dragging() bool {
	return e.drag != nil
}

// reset abandons the buffer and invalidates any outstanding prompt.
func (e *Engine) reset() {
	if e.phase == PhaseAwaitingLength {
		e.promptSeq++
	}
	e.phase = PhaseIdle
	e.buffer = nil
	e.held = false
	e.drag = nil
}

// PointerDown handles a button press.
func (e *Engine) PointerDown(ev PointerEvent) {
	if e.phase == PhaseAwaitingLength {
		return
	}
	p := e.viewport.ToPage(ev.Pos)
	e.pointer, e.hasPointer = p, true

	if ev.Button == ButtonSecondary {
		if e.phase == PhaseIdle {
			if id, ok := e.HitTest(p); ok {
				e.store.RemoveObject(e.page, id)
			}
		}
		return
	}

	switch e.tool {
	case ToolHand:
		e.pick(p, ev.Pos)
	case ToolCount:
		e.placeCount(p)
	case ToolSegment:
		e.buffer = []geometry.Point2D{p}
		e.phase = PhaseDrawingSegment
	case ToolPolyline:
		if n := len(e.buffer); n == 0 || e.buffer[n-1] != p {
			e.buffer = append(e.buffer, p)
		}
		e.phase = PhaseDrawingPolyline
	case ToolFreeform:
		e.buffer = []geometry.Point2D{p}
		e.held = true
		e.phase = PhaseDrawingFreeform
	case ToolCalibrate:
		e.calibrationPoint(p)
	}
	e.changed()
}

// PointerMove handles pointer motion, with or without a button held.
func (e *Engine) PointerMove(ev PointerEvent) {
	if e.phase == PhaseAwaitingLength {
		return
	}
	p := e.viewport.ToPage(ev.Pos)
	e.pointer, e.hasPointer = p, true

	if e.phase == PhaseDrawingFreeform && e.held {
		if e.buffer[len(e.buffer)-1] != p {
			e.buffer = append(e.buffer, p)
		}
	}
	if d := e.drag; d != nil {
		if !d.moved && ev.Pos.Distance(d.startPos) > e.settings.DragThreshold {
			d.moved = true
		}
		d.lastPage = p
	}
	if e.phase != PhaseIdle || e.drag != nil {
		e.changed()
	}
}

// PointerUp handles a button release.
func (e *Engine) PointerUp(ev PointerEvent) {
	if e.phase == PhaseAwaitingLength || ev.Button != ButtonPrimary {
		return
	}
	p := e.viewport.ToPage(ev.Pos)
	e.pointer, e.hasPointer = p, true

	switch e.phase {
	case PhaseDrawingSegment:
		a := e.buffer[0]
		e.reset()
		if a != p {
			e.commit(takeoff.TypeSegment, []geometry.Point2D{a, p})
		}
	case PhaseDrawingFreeform:
		if e.buffer[len(e.buffer)-1] != p {
			e.buffer = append(e.buffer, p)
		}
		pts := geometry.SimplifyRDP(e.buffer, e.settings.Epsilon)
		e.reset()
		if len(pts) >= 2 && geometry.PathLength(pts) > 0 {
			e.commit(takeoff.TypeFreeform, pts)
		}
	}

	if d := e.drag; d != nil {
		e.drag = nil
		d.lastPage = p
		if d.moved || ev.Pos.Distance(d.startPos) > e.settings.DragThreshold {
			delta := d.lastPage.Sub(d.startPage)
			e.store.MoveObjects(e.page, d.ids, delta.X, delta.Y)
		}
	}
	e.changed()
}

// DoubleClick finishes a polyline. The pointer-downs of the double click
// itself land on the last vertex and collapse into it.
func (e *Engine) DoubleClick(ev PointerEvent) {
	if e.phase != PhaseDrawingPolyline {
		return
	}
	p := e.viewport.ToPage(ev.Pos)
	if n := len(e.buffer); n == 0 || e.buffer[n-1] != p {
		e.buffer = append(e.buffer, p)
	}
	e.finishPolyline()
}

func (e *Engine) finishPolyline() {
	pts := e.buffer
	e.reset()
	if len(pts) >= 2 && geometry.PathLength(pts) > 0 {
		e.commit(takeoff.TypePolyline, pts)
	}
	e.changed()
}

// KeyDown handles a keyboard command. While a calibration length is
// pending only Escape is accepted.
func (e *Engine) KeyDown(k Key) {
	if e.phase == PhaseAwaitingLength && k != KeyEscape {
		return
	}
	switch k {
	case KeyEscape:
		e.reset()
		e.changed()
	case KeyEnter:
		if e.phase == PhaseDrawingPolyline {
			e.finishPolyline()
		}
	case KeyDelete, KeyBackspace:
		if e.phase == PhaseIdle {
			e.store.DeleteSelected()
		}
	case KeyUndo:
		e.reset()
		e.store.Undo(e.page)
		e.changed()
	case KeyRedo:
		e.reset()
		e.store.Redo(e.page)
		e.changed()
	}
}

// pick selects the object under the pointer and arms a drag, or clears
// the selection on empty canvas.
func (e *Engine) pick(p, screen geometry.Point2D) {
	id, ok := e.HitTest(p)
	if !ok {
		e.store.ClearSelection()
		return
	}
	e.store.Select(e.page, id)
	e.drag = &drag{
		ids:       []string{id},
		startPage: p,
		startPos:  screen,
		lastPage:  p,
	}
}

func (e *Engine) placeCount(p geometry.Point2D) {
	if e.code == "" {
		log.Printf("Count: no active code, placement discarded")
		return
	}
	if err := e.store.AddObject(takeoff.NewCount(e.page, p, e.code)); err != nil {
		log.Printf("Count: %v", err)
	}
}

func (e *Engine) commit(t takeoff.ObjectType, pts []geometry.Point2D) {
	obj := takeoff.NewMeasurement(t, e.page, pts)
	obj.Code = e.code
	opts := e.store.MeasureOptions()
	obj.Measure = &opts
	if err := e.store.AddObject(obj); err != nil {
		log.Printf("Draw: %s discarded: %v", t, err)
	}
}

func (e *Engine) calibrationPoint(p geometry.Point2D) {
	if e.phase != PhaseCalibrating {
		e.buffer = []geometry.Point2D{p}
		e.phase = PhaseCalibrating
		return
	}

	a := e.buffer[0]
	pixels := a.Distance(p)
	if pixels == 0 || e.prompter == nil {
		e.reset()
		return
	}

	e.buffer = []geometry.Point2D{a, p}
	e.phase = PhaseAwaitingLength
	e.promptSeq++
	seq, page := e.promptSeq, e.page
	e.prompter.PromptLength(pixels, func(input string, ok bool) {
		e.resolveCalibration(seq, page, pixels, input, ok)
	})
}

// resolveCalibration applies a length reply. Replies for an abandoned
// prompt are ignored.
func (e *Engine) resolveCalibration(seq uint64, page int, pixels float64, input string, ok bool) {
	if seq != e.promptSeq || e.phase != PhaseAwaitingLength || page != e.page {
		return
	}
	e.reset()
	defer e.changed()

	if !ok {
		return
	}
	feet, err := ParseFeet(input)
	if err != nil {
		log.Printf("Calibration: ignoring length %q: %v", input, err)
		return
	}
	if e.store.SetCalibration(page, pixels/feet) {
		log.Printf("Calibration: page %d set to %.4f px/ft", page, pixels/feet)
	}
}

// ErrInvalidLength is returned by ParseFeet for zero, negative or
// non-finite lengths.
var ErrInvalidLength = errors.New("length must be a positive number")

// ParseFeet parses a calibration length. Only positive finite numbers are
// accepted; a trailing "ft", "'" or "feet" is allowed.
func ParseFeet(input string) (float64, error) {
	s := strings.ToLower(strings.TrimSpace(input))
	for _, suffix := range []string{"feet", "ft", "'"} {
		if strings.HasSuffix(s, suffix) {
			s = strings.TrimSpace(strings.TrimSuffix(s, suffix))
			break
		}
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if !takeoff.ValidScale(v) {
		return 0, ErrInvalidLength
	}
	return v, nil
}
