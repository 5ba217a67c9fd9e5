package geometry

import "math"

// PathLength returns the sum of the Euclidean distances between consecutive
// vertices. Fewer than two vertices have zero length.
func PathLength(vertices []Point2D) float64 {
	if len(vertices) < 2 {
		return 0
	}
	var total float64
	for i := 1; i < len(vertices); i++ {
		total += vertices[i-1].Distance(vertices[i])
	}
	return total
}

// SimplifyRDP reduces a polyline with the Ramer-Douglas-Peucker algorithm.
// The first and last points are always kept exactly. A point is kept only
// when it lies farther than epsilon from the chord of the span being
// examined. The input slice is never modified.
func SimplifyRDP(points []Point2D, epsilon float64) []Point2D {
	if len(points) <= 2 || epsilon <= 0 || math.IsNaN(epsilon) {
		out := make([]Point2D, len(points))
		copy(out, points)
		return out
	}

	keep := make([]bool, len(points))
	keep[0] = true
	keep[len(points)-1] = true
	simplifySpan(points, 0, len(points)-1, epsilon, keep)

	out := make([]Point2D, 0, len(points))
	for i, k := range keep {
		if k {
			out = append(out, points[i])
		}
	}
	return out
}

// simplifySpan marks the farthest point in (first, last) and recurses on
// both halves while that point exceeds epsilon.
func simplifySpan(points []Point2D, first, last int, epsilon float64, keep []bool) {
	if last-first < 2 {
		return
	}

	maxDist := -1.0
	index := first
	for i := first + 1; i < last; i++ {
		d := DistanceToSegment(points[i], points[first], points[last])
		if d > maxDist {
			maxDist = d
			index = i
		}
	}

	if maxDist <= epsilon {
		return
	}

	keep[index] = true
	simplifySpan(points, first, index, epsilon, keep)
	simplifySpan(points, index, last, epsilon, keep)
}

// DistanceToSegment returns the shortest distance from p to the segment a-b.
// A degenerate segment falls back to the point distance.
func DistanceToSegment(p, a, b Point2D) float64 {
	dx := b.X - a.X
	dy := b.Y - a.Y
	lenSq := dx*dx + dy*dy
	if lenSq == 0 {
		return p.Distance(a)
	}

	t := ((p.X-a.X)*dx + (p.Y-a.Y)*dy) / lenSq
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	proj := Point2D{X: a.X + t*dx, Y: a.Y + t*dy}
	return p.Distance(proj)
}

// DistanceToPath returns the shortest distance from p to any segment of the
// path. An empty path is infinitely far away.
func DistanceToPath(p Point2D, vertices []Point2D) float64 {
	switch len(vertices) {
	case 0:
		return math.Inf(1)
	case 1:
		return p.Distance(vertices[0])
	}
	best := math.Inf(1)
	for i := 1; i < len(vertices); i++ {
		if d := DistanceToSegment(p, vertices[i-1], vertices[i]); d < best {
			best = d
		}
	}
	return best
}

// PointAlong returns the point at half the path's length, used to anchor
// length labels. Paths with fewer than two vertices return their only
// vertex or the zero point.
func PointAlong(vertices []Point2D) Point2D {
	switch len(vertices) {
	case 0:
		return Point2D{}
	case 1:
		return vertices[0]
	}
	half := PathLength(vertices) / 2
	var walked float64
	for i := 1; i < len(vertices); i++ {
		seg := vertices[i-1].Distance(vertices[i])
		if walked+seg >= half && seg > 0 {
			t := (half - walked) / seg
			a, b := vertices[i-1], vertices[i]
			return Point2D{X: a.X + t*(b.X-a.X), Y: a.Y + t*(b.Y-a.Y)}
		}
		walked += seg
	}
	return vertices[len(vertices)-1]
}
