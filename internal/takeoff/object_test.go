package takeoff

import (
	"math"
	"testing"

	"elec-takeoff/pkg/geometry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewIDIsUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		id := NewID()
		require.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
}

func TestValidate(t *testing.T) {
	seg := NewMeasurement(TypeSegment, 0, []geometry.Point2D{{X: 0, Y: 0}, {X: 1, Y: 1}})
	require.NoError(t, seg.Validate())

	bad := seg.Clone()
	bad.Vertices = append(bad.Vertices, geometry.Point2D{X: 2, Y: 2})
	assert.ErrorIs(t, bad.Validate(), ErrVertexCount)

	poly := NewMeasurement(TypePolyline, 0, []geometry.Point2D{{X: 0, Y: 0}})
	assert.ErrorIs(t, poly.Validate(), ErrVertexCount)

	count := NewCount(1, geometry.Point2D{X: math.NaN(), Y: 0}, "A1")
	assert.ErrorIs(t, count.Validate(), ErrNonFiniteCoords)

	unknown := Object{ID: "x", Type: "arc"}
	assert.ErrorIs(t, unknown.Validate(), ErrUnknownType)

	assert.ErrorIs(t, Object{Type: TypeCount}.Validate(), ErrMissingID)
}

func TestCloneIsDeep(t *testing.T) {
	opts := DefaultMeasureOptions()
	obj := NewMeasurement(TypeFreeform, 2, []geometry.Point2D{{X: 0, Y: 0}, {X: 5, Y: 5}})
	obj.Measure = &opts

	c := obj.Clone()
	c.Vertices[0].X = 99
	c.Measure.WasteFactor = 3

	assert.Equal(t, 0.0, obj.Vertices[0].X)
	assert.Equal(t, 1.0, obj.Measure.WasteFactor)
}

func TestTranslate(t *testing.T) {
	count := NewCount(0, geometry.Point2D{X: 1, Y: 2}, "A1")
	count.Translate(3, 4)
	assert.Equal(t, geometry.Point2D{X: 4, Y: 6}, count.Position())

	seg := NewMeasurement(TypeSegment, 0, []geometry.Point2D{{X: 0, Y: 0}, {X: 10, Y: 0}})
	seg.Translate(-1, 1)
	assert.Equal(t, []geometry.Point2D{{X: -1, Y: 1}, {X: 9, Y: 1}}, seg.Vertices)
	assert.InDelta(t, 10.0, seg.PixelLength(), 1e-12)
}

func TestPageFeet(t *testing.T) {
	p := NewPageState(0)
	assert.False(t, p.Calibrated())
	assert.Equal(t, 0.0, p.Feet(100))

	assert.False(t, p.SetScale(0))
	assert.False(t, p.SetScale(math.Inf(1)))
	assert.False(t, p.Calibrated())

	require.True(t, p.SetScale(10))
	assert.InDelta(t, 10.0, p.Feet(100), 1e-12)
}

func TestUnitFormat(t *testing.T) {
	assert.Equal(t, "10.00 ft", UnitFeet.Format(10))
	assert.Equal(t, "3.05 m", UnitMeters.Format(10))
}

func TestMeasureOptionsNormalized(t *testing.T) {
	m := MeasureOptions{WasteFactor: 0.5, ExtraRacewayPerPoint: -2}
	m.Conductors[0].Count = -1
	n := m.Normalized()
	assert.Equal(t, 1.0, n.WasteFactor)
	assert.Equal(t, 0.0, n.ExtraRacewayPerPoint)
	assert.Equal(t, 0, n.Conductors[0].Count)

	assert.Equal(t, 1.0, MeasureOptions{WasteFactor: math.NaN()}.Normalized().WasteFactor)
	assert.Equal(t, 1.15, MeasureOptions{WasteFactor: 1.15}.Normalized().WasteFactor)
}
