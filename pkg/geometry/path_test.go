package geometry

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPathLength(t *testing.T) {
	assert.Equal(t, 0.0, PathLength(nil))
	assert.Equal(t, 0.0, PathLength([]Point2D{{X: 3, Y: 4}}))
	assert.InDelta(t, 5.0, PathLength([]Point2D{{0, 0}, {3, 4}}), 1e-12)
	assert.InDelta(t, 15.0, PathLength([]Point2D{{0, 0}, {3, 4}, {3, 14}}), 1e-12)
}

func TestSimplifyRDPStraightLineWithJitter(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	points := make([]Point2D, 100)
	for i := range points {
		points[i] = Point2D{
			X: float64(i) * 2,
			Y: 50 + (rng.Float64()-0.5)*0.2,
		}
	}

	out := SimplifyRDP(points, 1.0)

	require.LessOrEqual(t, len(out), 3)
	require.GreaterOrEqual(t, len(out), 2)
	assert.Equal(t, points[0], out[0])
	assert.Equal(t, points[len(points)-1], out[len(out)-1])
}

func TestSimplifyRDPKeepsCorner(t *testing.T) {
	points := []Point2D{{0, 0}, {5, 0.1}, {10, 0}, {10, 5}, {10.1, 10}}
	out := SimplifyRDP(points, 0.5)
	assert.Equal(t, []Point2D{{0, 0}, {10, 0}, {10.1, 10}}, out)
}

func TestSimplifyRDPDoesNotMutateInput(t *testing.T) {
	points := []Point2D{{0, 0}, {1, 0.01}, {2, 0}}
	before := append([]Point2D(nil), points...)
	_ = SimplifyRDP(points, 1)
	assert.Equal(t, before, points)
}

func TestSimplifyRDPShortInput(t *testing.T) {
	two := []Point2D{{0, 0}, {1, 1}}
	out := SimplifyRDP(two, 5)
	assert.Equal(t, two, out)
	out[0].X = 42
	assert.Equal(t, 0.0, two[0].X, "result must be a copy")

	assert.Empty(t, SimplifyRDP(nil, 1))
}

func TestDistanceToSegment(t *testing.T) {
	a, b := Point2D{0, 0}, Point2D{10, 0}
	assert.InDelta(t, 3.0, DistanceToSegment(Point2D{5, 3}, a, b), 1e-12)
	assert.InDelta(t, 5.0, DistanceToSegment(Point2D{-3, 4}, a, b), 1e-12)
	assert.InDelta(t, 5.0, DistanceToSegment(Point2D{3, 4}, a, a), 1e-12)
}

func TestDistanceToPath(t *testing.T) {
	assert.True(t, math.IsInf(DistanceToPath(Point2D{}, nil), 1))
	path := []Point2D{{0, 0}, {10, 0}, {10, 10}}
	assert.InDelta(t, 1.0, DistanceToPath(Point2D{11, 5}, path), 1e-12)
}

func TestPointAlong(t *testing.T) {
	mid := PointAlong([]Point2D{{0, 0}, {10, 0}, {10, 10}})
	assert.InDelta(t, 10.0, mid.X, 1e-12)
	assert.InDelta(t, 0.0, mid.Y, 1e-12)
}

func TestBoundingBoxInflate(t *testing.T) {
	b := BoundingBox([]Point2D{{X: 4, Y: 1}, {X: 0, Y: 5}, {X: 2, Y: 3}})
	assert.Equal(t, Rect{X: 0, Y: 1, Width: 4, Height: 4}, b)
	assert.False(t, b.Contains(Point2D{X: 5, Y: 1}))
	assert.True(t, b.Inflate(1).Contains(Point2D{X: 5, Y: 1}))
	assert.Equal(t, Rect{}, BoundingBox(nil))
}
