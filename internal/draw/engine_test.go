package draw

import (
	"math/rand"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"elec-takeoff/internal/app"
	"elec-takeoff/internal/takeoff"
	"elec-takeoff/pkg/geometry"
)

func pt(x, y float64) PointerEvent {
	return PointerEvent{Pos: geometry.Point2D{X: x, Y: y}}
}

func rightClick(x, y float64) PointerEvent {
	return PointerEvent{Pos: geometry.Point2D{X: x, Y: y}, Button: ButtonSecondary}
}

// deferredPrompter captures the reply so tests can answer later.
type deferredPrompter struct {
	pixels float64
	reply  func(string, bool)
	calls  int
}

func (d *deferredPrompter) PromptLength(pixels float64, reply func(string, bool)) {
	d.pixels = pixels
	d.reply = reply
	d.calls++
}

func newEngine(t *testing.T) (*Engine, *app.State, *deferredPrompter) {
	t.Helper()
	s := app.NewState()
	p := &deferredPrompter{}
	return New(s, p, DefaultSettings()), s, p
}

func TestParseTool(t *testing.T) {
	for _, tool := range Tools() {
		got, err := ParseTool(tool.String())
		require.NoError(t, err)
		assert.Equal(t, tool, got)
	}
	_, err := ParseTool("lasso")
	assert.Error(t, err)
}

func TestCountCommitsOnPointerDown(t *testing.T) {
	e, s, _ := newEngine(t)
	e.SetTool(ToolCount)

	e.PointerDown(pt(10, 10))
	assert.Empty(t, s.Objects(0), "no active code")

	e.SetActiveCode(" a1 ")
	e.SetViewport(geometry.Viewport{Scale: 2, Offset: geometry.Point2D{X: 4, Y: 0}})
	e.PointerDown(pt(24, 10))

	objs := s.Objects(0)
	require.Len(t, objs, 1)
	assert.Equal(t, takeoff.TypeCount, objs[0].Type)
	assert.Equal(t, "A1", objs[0].Code)
	assert.Equal(t, geometry.Point2D{X: 10, Y: 5}, objs[0].Position())
	assert.Equal(t, PhaseIdle, e.Phase())
}

func TestSegmentDownUp(t *testing.T) {
	e, s, _ := newEngine(t)
	e.SetTool(ToolSegment)
	e.SetActiveCode("F1")

	e.PointerDown(pt(0, 0))
	assert.Equal(t, PhaseDrawingSegment, e.Phase())
	e.PointerMove(pt(50, 0))
	pv := e.Preview()
	assert.Equal(t, []geometry.Point2D{{X: 0, Y: 0}, {X: 50, Y: 0}}, pv.Vertices)
	assert.Equal(t, UncalibratedLabel, pv.Label)

	e.PointerUp(pt(100, 0))
	objs := s.Objects(0)
	require.Len(t, objs, 1)
	assert.Equal(t, takeoff.TypeSegment, objs[0].Type)
	assert.Equal(t, "F1", objs[0].Code)
	require.NotNil(t, objs[0].Measure)
	assert.Equal(t, s.MeasureOptions(), *objs[0].Measure)
	assert.Equal(t, PhaseIdle, e.Phase())
}

func TestSegmentZeroLengthDiscarded(t *testing.T) {
	e, s, _ := newEngine(t)
	e.SetTool(ToolSegment)
	e.PointerDown(pt(5, 5))
	e.PointerUp(pt(5, 5))
	assert.Empty(t, s.Objects(0))
	assert.False(t, s.CanUndo(0))
}

func TestPreviewLabelCalibrated(t *testing.T) {
	e, s, _ := newEngine(t)
	require.True(t, s.SetCalibration(0, 10))
	e.SetTool(ToolSegment)
	e.PointerDown(pt(0, 0))
	e.PointerMove(pt(30, 40))
	assert.Equal(t, "5.00 ft", e.Preview().Label)

	s.SetUnit(0, takeoff.UnitMeters)
	assert.Equal(t, "1.52 m", e.Preview().Label)
}

func TestPolylineFinishByDoubleClick(t *testing.T) {
	e, s, _ := newEngine(t)
	e.SetTool(ToolPolyline)

	e.PointerDown(pt(0, 0))
	e.PointerUp(pt(0, 0))
	e.PointerDown(pt(10, 0))
	e.PointerUp(pt(10, 0))
	// the double click's own presses
	e.PointerDown(pt(10, 10))
	e.PointerUp(pt(10, 10))
	e.PointerDown(pt(10, 10))
	e.PointerUp(pt(10, 10))
	assert.Equal(t, PhaseDrawingPolyline, e.Phase())
	e.DoubleClick(pt(10, 10))

	objs := s.Objects(0)
	require.Len(t, objs, 1)
	assert.Equal(t, takeoff.TypePolyline, objs[0].Type)
	assert.Equal(t, []geometry.Point2D{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}}, objs[0].Vertices)
	assert.Equal(t, PhaseIdle, e.Phase())
}

func TestPolylineSingleVertexDiscarded(t *testing.T) {
	e, s, _ := newEngine(t)
	e.SetTool(ToolPolyline)
	e.PointerDown(pt(3, 3))
	e.PointerDown(pt(3, 3))
	e.DoubleClick(pt(3, 3))
	assert.Empty(t, s.Objects(0))
	assert.Equal(t, PhaseIdle, e.Phase())
}

func TestPolylineEnterFinishes(t *testing.T) {
	e, s, _ := newEngine(t)
	e.SetTool(ToolPolyline)
	e.PointerDown(pt(0, 0))
	e.PointerDown(pt(0, 20))
	e.KeyDown(KeyEnter)
	assert.Len(t, s.Objects(0), 1)
}

func TestFreeformSimplifiesOnRelease(t *testing.T) {
	e, s, _ := newEngine(t)
	e.SetTool(ToolFreeform)

	r := rand.New(rand.NewSource(7))
	e.PointerDown(pt(0, 0))
	for i := 1; i < 99; i++ {
		e.PointerMove(pt(float64(i), r.Float64()*0.4-0.2))
	}
	e.PointerUp(pt(99, 0))

	objs := s.Objects(0)
	require.Len(t, objs, 1)
	assert.Equal(t, takeoff.TypeFreeform, objs[0].Type)
	v := objs[0].Vertices
	assert.LessOrEqual(t, len(v), 3)
	assert.Equal(t, geometry.Point2D{X: 0, Y: 0}, v[0])
	assert.Equal(t, geometry.Point2D{X: 99, Y: 0}, v[len(v)-1])
}

func TestFreeformMoveWithoutPressIgnored(t *testing.T) {
	e, s, _ := newEngine(t)
	e.SetTool(ToolFreeform)
	e.PointerMove(pt(1, 1))
	e.PointerMove(pt(2, 2))
	assert.Equal(t, PhaseIdle, e.Phase())
	e.PointerDown(pt(5, 5))
	e.PointerUp(pt(5, 5))
	assert.Empty(t, s.Objects(0))
}

func TestCalibrationInvariant(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	for i := 0; i < 50; i++ {
		s := app.NewState()
		feet := r.Float64()*200 + 0.01
		e := New(s, PromptFunc(func(_ float64, reply func(string, bool)) {
			reply(strconv.FormatFloat(feet, 'g', -1, 64), true)
		}), DefaultSettings())
		e.SetTool(ToolCalibrate)

		a := geometry.Point2D{X: r.Float64() * 1000, Y: r.Float64() * 1000}
		b := geometry.Point2D{X: r.Float64() * 1000, Y: r.Float64() * 1000}
		e.PointerDown(PointerEvent{Pos: a})
		e.PointerDown(PointerEvent{Pos: b})

		page := s.Page(0)
		require.True(t, page.Calibrated())
		assert.InDelta(t, feet, geometry.PathLength([]geometry.Point2D{a, b})/page.Scale(), 1e-9)
		assert.Equal(t, PhaseIdle, e.Phase())
	}
}

func TestCalibrationBlocksInputUntilReply(t *testing.T) {
	e, s, p := newEngine(t)
	e.SetTool(ToolCalibrate)
	e.PointerDown(pt(0, 0))
	assert.Equal(t, PhaseCalibrating, e.Phase())
	e.PointerDown(pt(0, 120))
	assert.Equal(t, PhaseAwaitingLength, e.Phase())
	assert.Equal(t, 120.0, p.pixels)

	e.PointerDown(pt(500, 500))
	e.KeyDown(KeyEnter)
	e.KeyDown(KeyUndo)
	assert.Equal(t, PhaseAwaitingLength, e.Phase())
	assert.Equal(t, 1, p.calls)

	p.reply("12 ft", true)
	assert.Equal(t, PhaseIdle, e.Phase())
	assert.Equal(t, 10.0, s.Page(0).Scale())
}

func TestCalibrationInvalidInputIsNoop(t *testing.T) {
	for _, input := range []string{"abc", "0", "-4", "", "NaN", "Inf"} {
		e, s, p := newEngine(t)
		e.SetTool(ToolCalibrate)
		e.PointerDown(pt(0, 0))
		e.PointerDown(pt(100, 0))
		p.reply(input, true)
		assert.False(t, s.Page(0).Calibrated(), input)
		assert.Equal(t, PhaseIdle, e.Phase(), input)
	}

	e, s, p := newEngine(t)
	e.SetTool(ToolCalibrate)
	e.PointerDown(pt(0, 0))
	e.PointerDown(pt(100, 0))
	p.reply("10", false)
	assert.False(t, s.Page(0).Calibrated())
}

func TestCalibrationStaleReplyIgnored(t *testing.T) {
	e, s, p := newEngine(t)
	e.SetTool(ToolCalibrate)
	e.PointerDown(pt(0, 0))
	e.PointerDown(pt(100, 0))
	stale := p.reply

	e.KeyDown(KeyEscape)
	assert.Equal(t, PhaseIdle, e.Phase())
	stale("10", true)
	assert.False(t, s.Page(0).Calibrated())

	e.PointerDown(pt(0, 0))
	e.PointerDown(pt(50, 0))
	e.SetTool(ToolHand)
	p.reply("5", true)
	assert.False(t, s.Page(0).Calibrated())
}

func TestCalibrationZeroDistanceResets(t *testing.T) {
	e, _, p := newEngine(t)
	e.SetTool(ToolCalibrate)
	e.PointerDown(pt(7, 7))
	e.PointerDown(pt(7, 7))
	assert.Equal(t, PhaseIdle, e.Phase())
	assert.Zero(t, p.calls)
}

func TestParseFeet(t *testing.T) {
	for in, want := range map[string]float64{"12": 12, " 7.5ft": 7.5, "3'": 3, "20 feet": 20} {
		got, err := ParseFeet(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}
	_, err := ParseFeet("-1")
	assert.ErrorIs(t, err, ErrInvalidLength)
}

func TestRightClickDeletes(t *testing.T) {
	e, s, _ := newEngine(t)
	seg := takeoff.NewMeasurement(takeoff.TypeSegment, 0, []geometry.Point2D{{X: 0, Y: 0}, {X: 100, Y: 0}})
	require.NoError(t, s.AddObject(seg))
	e.SetTool(ToolSegment)

	e.PointerDown(rightClick(50, 30))
	assert.Len(t, s.Objects(0), 1, "miss")
	e.PointerDown(rightClick(50, 2))
	assert.Empty(t, s.Objects(0))
}

func TestRightClickIgnoredMidDraw(t *testing.T) {
	e, s, _ := newEngine(t)
	seg := takeoff.NewMeasurement(takeoff.TypeSegment, 0, []geometry.Point2D{{X: 0, Y: 0}, {X: 100, Y: 0}})
	require.NoError(t, s.AddObject(seg))
	e.SetTool(ToolPolyline)
	e.PointerDown(pt(0, 50))
	e.PointerDown(rightClick(50, 0))
	assert.Len(t, s.Objects(0), 1)
	assert.Equal(t, PhaseDrawingPolyline, e.Phase())
}

func TestHandSelectAndDrag(t *testing.T) {
	e, s, _ := newEngine(t)
	c := takeoff.NewCount(0, geometry.Point2D{X: 20, Y: 20}, "A1")
	require.NoError(t, s.AddObject(c))

	e.PointerDown(pt(21, 20))
	assert.True(t, s.IsSelected(0, c.ID))
	assert.True(t, e.Dragging())
	for x := 22.0; x <= 41; x++ {
		e.PointerMove(pt(x, 20))
	}
	assert.True(t, e.Preview().Dragging)
	e.PointerUp(pt(41, 25))

	got, _ := s.Object(0, c.ID)
	assert.Equal(t, geometry.Point2D{X: 40, Y: 25}, got.Position())

	require.True(t, s.Undo(0))
	got, _ = s.Object(0, c.ID)
	assert.Equal(t, geometry.Point2D{X: 20, Y: 20}, got.Position())
	require.True(t, s.Undo(0), "one drag is one step")
	assert.Empty(t, s.Objects(0))
}

func TestHandClickWithoutMoveDoesNotCommit(t *testing.T) {
	e, s, _ := newEngine(t)
	c := takeoff.NewCount(0, geometry.Point2D{X: 20, Y: 20}, "A1")
	require.NoError(t, s.AddObject(c))
	e.PointerDown(pt(20, 20))
	e.PointerMove(pt(21, 20))
	e.PointerUp(pt(21, 20))
	got, _ := s.Object(0, c.ID)
	assert.Equal(t, c.Position(), got.Position())

	e.PointerDown(pt(300, 300))
	_, ids := s.Selection()
	assert.Empty(t, ids)
	assert.False(t, e.Dragging(), "a miss leaves the press free to pan")

	require.True(t, s.Undo(0))
	assert.Empty(t, s.Objects(0))
	assert.False(t, s.CanUndo(0))
}

func TestDeleteKeyAndUndoKeys(t *testing.T) {
	e, s, _ := newEngine(t)
	c := takeoff.NewCount(0, geometry.Point2D{X: 20, Y: 20}, "A1")
	require.NoError(t, s.AddObject(c))
	e.PointerDown(pt(20, 20))
	e.PointerUp(pt(20, 20))

	e.KeyDown(KeyDelete)
	assert.Empty(t, s.Objects(0))
	e.KeyDown(KeyUndo)
	assert.Len(t, s.Objects(0), 1)
	e.KeyDown(KeyRedo)
	assert.Empty(t, s.Objects(0))
}

func TestToolAndPageSwitchAbandonBuffer(t *testing.T) {
	e, s, _ := newEngine(t)
	e.SetTool(ToolPolyline)
	e.PointerDown(pt(0, 0))
	e.PointerDown(pt(10, 0))
	e.SetTool(ToolSegment)
	assert.Equal(t, PhaseIdle, e.Phase())
	assert.False(t, e.Preview().Active())

	e.PointerDown(pt(0, 0))
	e.SetPage(1)
	e.PointerUp(pt(10, 10))
	assert.Empty(t, s.Objects(0))
	assert.Empty(t, s.Objects(1))
}

func TestHitTestTopmost(t *testing.T) {
	e, s, _ := newEngine(t)
	a := takeoff.NewMeasurement(takeoff.TypeSegment, 0, []geometry.Point2D{{X: 0, Y: 0}, {X: 100, Y: 0}})
	b := takeoff.NewMeasurement(takeoff.TypeSegment, 0, []geometry.Point2D{{X: 50, Y: -50}, {X: 50, Y: 50}})
	require.NoError(t, s.AddObject(a))
	require.NoError(t, s.AddObject(b))

	id, ok := e.HitTest(geometry.Point2D{X: 50, Y: 0})
	require.True(t, ok)
	assert.Equal(t, b.ID, id)

	e.SetViewport(geometry.NewViewport(0.5))
	_, ok = e.HitTest(geometry.Point2D{X: 10, Y: 10})
	assert.True(t, ok, "tolerance is screen pixels, so zooming out widens it in page units")
}
