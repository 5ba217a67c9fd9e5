package draw

import (
	"fmt"

	"elec-takeoff/internal/takeoff"
	"elec-takeoff/pkg/geometry"
)

// UncalibratedLabel is shown instead of a length on uncalibrated pages.
const UncalibratedLabel = "-- ft (not calibrated)"

// Preview is the tentative geometry of the draw in progress.
type Preview struct {
	Phase    Phase
	Vertices []geometry.Point2D // page-space, including the live pointer
	Label    string
	// Offset is the page-space displacement of a drag in progress.
	Offset   geometry.Point2D
	Dragging bool
}

// Active reports whether there is anything to draw.
func (p Preview) Active() bool {
	return len(p.Vertices) > 0 || p.Dragging
}

// Preview returns the live feedback for the current state.
func (e *Engine) Preview() Preview {
	pv := Preview{Phase: e.phase}
	if d := e.drag; d != nil && d.moved {
		pv.Dragging = true
		pv.Offset = d.lastPage.Sub(d.startPage)
	}

	switch e.phase {
	case PhaseIdle:
		return pv
	case PhaseDrawingFreeform, PhaseAwaitingLength:
		pv.Vertices = append(pv.Vertices, e.buffer...)
	default:
		pv.Vertices = append(pv.Vertices, e.buffer...)
		if e.hasPointer && (len(e.buffer) == 0 || e.buffer[len(e.buffer)-1] != e.pointer) {
			pv.Vertices = append(pv.Vertices, e.pointer)
		}
	}

	pixels := geometry.PathLength(pv.Vertices)
	if e.phase == PhaseCalibrating || e.phase == PhaseAwaitingLength {
		pv.Label = fmt.Sprintf("%.1f px", pixels)
		return pv
	}
	pv.Label = LengthLabel(e.store.Page(e.page), pixels)
	return pv
}

// LengthLabel formats a page-space length for display using the page's
// calibration and unit.
func LengthLabel(page *takeoff.PageState, pixels float64) string {
	if !page.Calibrated() {
		return UncalibratedLabel
	}
	return page.Unit.Format(page.Feet(pixels))
}

// HitTest returns the topmost object within the hit tolerance of a
// page-space point.
func (e *Engine) HitTest(p geometry.Point2D) (string, bool) {
	tol := e.viewport.PageDistance(e.settings.HitTolerance)
	objs := e.store.Page(e.page).Objects
	for i := len(objs) - 1; i >= 0; i-- {
		if HitObject(objs[i], p, tol) {
			return objs[i].ID, true
		}
	}
	return "", false
}

// HitObject reports whether p is within tol page units of the object.
func HitObject(o takeoff.Object, p geometry.Point2D, tol float64) bool {
	if o.Type == takeoff.TypeCount {
		return o.Position().Distance(p) <= tol+CountRadius
	}
	if !o.Bounds().Inflate(tol).Contains(p) {
		return false
	}
	return geometry.DistanceToPath(p, o.Vertices) <= tol
}

// CountRadius is the page-space radius of a count marker.
const CountRadius = 6.0
