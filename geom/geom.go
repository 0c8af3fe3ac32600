// Package geom provides the geometric primitives used by the document
// engine: points, axis-aligned rectangles and cuboids, line segments and
// planes in normal form, together with the intersection predicates that
// back the spatial queries. All predicates are pure functions; the SQL
// layer registers thin adapters around them.
package geom

import "math"

// DefaultEpsilon is the relative epsilon used for double comparisons
// throughout the engine.
const DefaultEpsilon = 1e-8

// ApproximatelyEqual reports whether a and b are equal within a relative
// margin of error derived from the larger magnitude of the two.
func ApproximatelyEqual(a, b, epsilon float64) bool {
	return math.Abs(a-b) <= math.Max(math.Abs(a), math.Abs(b))*epsilon
}

// EssentiallyEqual reports whether a and b are equal within a relative
// margin of error derived from the smaller magnitude of the two. This is
// the stricter of the two comparisons.
func EssentiallyEqual(a, b, epsilon float64) bool {
	return math.Abs(a-b) <= math.Min(math.Abs(a), math.Abs(b))*epsilon
}

// PointD is a point in the continuous 2D pixel plane.
type PointD struct {
	X float64
	Y float64
}

// Point3dD is a point in the continuous 3D volume.
type Point3dD struct {
	X float64
	Y float64
	Z float64
}

// RectangleD is an axis-aligned rectangle given by its top-left corner and
// its extent. Width and height are expected to be non-negative.
type RectangleD struct {
	X float64
	Y float64
	W float64
	H float64
}

// ContainsPoint reports whether p lies inside the rectangle. All four
// sides are closed, so points on the boundary are inside.
func (r RectangleD) ContainsPoint(p PointD) bool {
	return p.X >= r.X && p.X <= r.X+r.W && p.Y >= r.Y && p.Y <= r.Y+r.H
}

// CuboidD is an axis-aligned cuboid given by its corner of least
// coordinates and its extent on each axis.
type CuboidD struct {
	X float64
	Y float64
	Z float64
	W float64
	H float64
	D float64
}

// Center returns the center point of the cuboid.
func (c CuboidD) Center() Point3dD {
	return Point3dD{X: c.X + c.W/2, Y: c.Y + c.H/2, Z: c.Z + c.D/2}
}

// LineThroughTwoPointsD is a line segment given by its two endpoints.
type LineThroughTwoPointsD struct {
	A PointD
	B PointD
}

// PlaneNormalAndDistanceD is a plane in Hesse normal form: the set of
// points p with dot(Normal, p) == Distance. The normal is not required to
// be of unit length.
type PlaneNormalAndDistanceD struct {
	Normal   Point3dD
	Distance float64
}

// SegmentsIntersect reports whether the segments a1-a2 and b1-b2
// intersect, using the 2D parametric formulation. Parallel segments
// (cross product within epsilon of zero) are classified as
// non-intersecting, which means collinear overlapping segments report
// false.
func SegmentsIntersect(a1, a2, b1, b2 PointD) bool {
	b := PointD{X: a2.X - a1.X, Y: a2.Y - a1.Y}
	d := PointD{X: b2.X - b1.X, Y: b2.Y - b1.Y}

	// machine epsilon for float64; a cross product at or below it means
	// the segments are parallel (infinitely many or no intersection points)
	const machineEpsilon = 0x1p-52

	bDotDPerp := b.X*d.Y - b.Y*d.X
	if math.Abs(bDotDPerp) <= machineEpsilon {
		return false
	}

	c := PointD{X: b1.X - a1.X, Y: b1.Y - a1.Y}
	t := (c.X*d.Y - c.Y*d.X) / bDotDPerp
	if t < 0 || t > 1 {
		return false
	}

	u := (c.X*b.Y - c.Y*b.X) / bDotDPerp
	if u < 0 || u > 1 {
		return false
	}

	return true
}

// SegmentIntersectsRect reports whether the segment intersects the
// (closed) rectangle. A segment with an endpoint inside the rectangle
// intersects; otherwise it intersects iff it crosses one of the two
// diagonals.
func SegmentIntersectsRect(line LineThroughTwoPointsD, rect RectangleD) bool {
	if rect.ContainsPoint(line.A) || rect.ContainsPoint(line.B) {
		return true
	}

	diag1a := PointD{X: rect.X, Y: rect.Y}
	diag1b := PointD{X: rect.X + rect.W, Y: rect.Y + rect.H}
	if SegmentsIntersect(line.A, line.B, diag1a, diag1b) {
		return true
	}

	diag2a := PointD{X: rect.X, Y: rect.Y + rect.H}
	diag2b := PointD{X: rect.X + rect.W, Y: rect.Y}
	return SegmentsIntersect(line.A, line.B, diag2a, diag2b)
}

// SegmentRectClassification is the containment relation between a segment
// and a rectangle, as used by the R-tree traversal predicates.
type SegmentRectClassification int

const (
	// NotWithin means the segment does not touch the rectangle.
	NotWithin SegmentRectClassification = iota
	// PartlyWithin means the segment touches or crosses the rectangle.
	PartlyWithin
	// FullyWithin means both endpoints lie inside the rectangle.
	FullyWithin
)

// ClassifySegmentRect classifies the segment against the rectangle for
// R-tree node filtering: FullyWithin when both endpoints are inside,
// PartlyWithin when one endpoint is inside or the segment crosses a
// diagonal, NotWithin otherwise.
func ClassifySegmentRect(line LineThroughTwoPointsD, rect RectangleD) SegmentRectClassification {
	aInside := rect.ContainsPoint(line.A)
	bInside := rect.ContainsPoint(line.B)
	if aInside && bInside {
		return FullyWithin
	}

	if aInside || bInside {
		return PartlyWithin
	}

	if SegmentsIntersect(line.A, line.B, PointD{X: rect.X, Y: rect.Y}, PointD{X: rect.X + rect.W, Y: rect.Y + rect.H}) ||
		SegmentsIntersect(line.A, line.B, PointD{X: rect.X, Y: rect.Y + rect.H}, PointD{X: rect.X + rect.W, Y: rect.Y}) {
		return PartlyWithin
	}

	return NotWithin
}

// IntersectsPlane reports whether the plane cuts the cuboid. The extent
// of the cuboid projected onto the plane normal is compared against the
// distance of the cuboid's center from the plane:
//
//	2*|dot(n,center) - d| <= |n.x|*w + |n.y|*h + |n.z|*depth
func (c CuboidD) IntersectsPlane(plane PlaneNormalAndDistanceD) bool {
	center := c.Center()
	distCenter := plane.Normal.X*center.X + plane.Normal.Y*center.Y + plane.Normal.Z*center.Z - plane.Distance
	projectedExtent := math.Abs(plane.Normal.X)*c.W + math.Abs(plane.Normal.Y)*c.H + math.Abs(plane.Normal.Z)*c.D
	return 2*math.Abs(distCenter) <= projectedExtent
}
