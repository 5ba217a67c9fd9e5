// Package takeoff defines the takeoff object model: placed annotations,
// per-page calibration state, tags and measurement options.
package takeoff

import (
	"errors"
	"fmt"
	"math"

	"elec-takeoff/pkg/geometry"

	"github.com/google/uuid"
)

// ObjectType discriminates the kinds of takeoff object.
type ObjectType string

const (
	TypeCount    ObjectType = "count"    // single device placement
	TypeSegment  ObjectType = "segment"  // straight two-point run
	TypePolyline ObjectType = "polyline" // multi-vertex run
	TypeFreeform ObjectType = "freeform" // simplified hand trace
)

// IsMeasurement reports whether objects of this type carry a length.
func (t ObjectType) IsMeasurement() bool {
	switch t {
	case TypeSegment, TypePolyline, TypeFreeform:
		return true
	}
	return false
}

// Valid reports whether t is a known object type.
func (t ObjectType) Valid() bool {
	return t == TypeCount || t.IsMeasurement()
}

// Object is one placed annotation. Counts use X, Y and Rotation; the
// measurement types use Vertices. Geometry is always page-space.
type Object struct {
	ID        string     `json:"id"`
	Type      ObjectType `json:"type"`
	PageIndex int        `json:"pageIndex"`

	X        float64 `json:"x,omitempty"`
	Y        float64 `json:"y,omitempty"`
	Rotation float64 `json:"rotation,omitempty"`

	Vertices []geometry.Point2D `json:"vertices,omitempty"`

	// Code references a Tag by its code. Required for counts, optional
	// for measurements.
	Code string `json:"code,omitempty"`

	// Measure holds the options in effect when the measurement was
	// committed or last re-applied.
	Measure *MeasureOptions `json:"measure,omitempty"`
}

// NewID returns a new universally unique object id.
func NewID() string {
	return uuid.NewString()
}

// NewCount creates a count object at a page-space point.
func NewCount(page int, at geometry.Point2D, code string) Object {
	return Object{
		ID:        NewID(),
		Type:      TypeCount,
		PageIndex: page,
		X:         at.X,
		Y:         at.Y,
		Code:      code,
	}
}

// NewMeasurement creates a segment, polyline or freeform object. The
// vertices are copied.
func NewMeasurement(t ObjectType, page int, vertices []geometry.Point2D) Object {
	v := make([]geometry.Point2D, len(vertices))
	copy(v, vertices)
	return Object{
		ID:        NewID(),
		Type:      t,
		PageIndex: page,
		Vertices:  v,
	}
}

// Position returns the anchor of a count.
func (o Object) Position() geometry.Point2D {
	return geometry.Point2D{X: o.X, Y: o.Y}
}

// Points returns the geometry of the object as a vertex list; a count
// yields its single anchor.
func (o Object) Points() []geometry.Point2D {
	if o.Type == TypeCount {
		return []geometry.Point2D{o.Position()}
	}
	return o.Vertices
}

// PixelLength returns the page-space length of a measurement, 0 for counts.
func (o Object) PixelLength() float64 {
	if !o.Type.IsMeasurement() {
		return 0
	}
	return geometry.PathLength(o.Vertices)
}

// Bounds returns the page-space bounding box of the object.
func (o Object) Bounds() geometry.Rect {
	return geometry.BoundingBox(o.Points())
}

// Translate moves the object by dx, dy in page-space.
func (o *Object) Translate(dx, dy float64) {
	if o.Type == TypeCount {
		o.X += dx
		o.Y += dy
		return
	}
	for i := range o.Vertices {
		o.Vertices[i].X += dx
		o.Vertices[i].Y += dy
	}
}

// Clone returns a deep copy of the object.
func (o Object) Clone() Object {
	c := o
	if o.Vertices != nil {
		c.Vertices = make([]geometry.Point2D, len(o.Vertices))
		copy(c.Vertices, o.Vertices)
	}
	if o.Measure != nil {
		m := *o.Measure
		c.Measure = &m
	}
	return c
}

// CloneObjects deep-copies a slice of objects. A nil slice stays nil.
func CloneObjects(objs []Object) []Object {
	if objs == nil {
		return nil
	}
	out := make([]Object, len(objs))
	for i, o := range objs {
		out[i] = o.Clone()
	}
	return out
}

// Validation errors returned by Object.Validate.
var (
	ErrMissingID       = errors.New("object has no id")
	ErrUnknownType     = errors.New("unknown object type")
	ErrVertexCount     = errors.New("wrong number of vertices")
	ErrNonFiniteCoords = errors.New("non-finite coordinates")
)

// Validate checks the structural invariants of the object.
func (o Object) Validate() error {
	if o.ID == "" {
		return ErrMissingID
	}
	if !o.Type.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownType, o.Type)
	}

	switch o.Type {
	case TypeCount:
		if !o.Position().IsFinite() || math.IsNaN(o.Rotation) || math.IsInf(o.Rotation, 0) {
			return ErrNonFiniteCoords
		}
		return nil
	case TypeSegment:
		if len(o.Vertices) != 2 {
			return fmt.Errorf("%w: segment needs 2, has %d", ErrVertexCount, len(o.Vertices))
		}
	default:
		if len(o.Vertices) < 2 {
			return fmt.Errorf("%w: %s needs at least 2, has %d", ErrVertexCount, o.Type, len(o.Vertices))
		}
	}

	for _, v := range o.Vertices {
		if !v.IsFinite() {
			return ErrNonFiniteCoords
		}
	}
	return nil
}
