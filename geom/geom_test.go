package geom

import (
	"testing"
)

func TestApproximatelyEqual(t *testing.T) {
	tests := []struct {
		name     string
		a, b     float64
		expected bool
	}{
		{"identical", 1.0, 1.0, true},
		{"within relative epsilon", 1.0, 1.0 + 1e-9, true},
		{"outside relative epsilon", 1.0, 1.0 + 1e-7, false},
		{"large magnitudes", 1e12, 1e12 + 1.0, true},
		{"zero vs zero", 0.0, 0.0, true},
		{"zero vs small", 0.0, 1e-9, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ApproximatelyEqual(tt.a, tt.b, DefaultEpsilon); got != tt.expected {
				t.Errorf("ApproximatelyEqual(%v, %v) = %v, expected %v", tt.a, tt.b, got, tt.expected)
			}
		})
	}
}

func TestEssentiallyEqual(t *testing.T) {
	tests := []struct {
		name     string
		a, b     float64
		expected bool
	}{
		{"identical", 2.0, 2.0, true},
		{"within strict epsilon", 1e6, 1e6 + 1e-3, true},
		{"just within epsilon", 1.0, 1.0 + 9e-9, true},
		{"different", 1.0, 1.1, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EssentiallyEqual(tt.a, tt.b, DefaultEpsilon); got != tt.expected {
				t.Errorf("EssentiallyEqual(%v, %v) = %v, expected %v", tt.a, tt.b, got, tt.expected)
			}
		})
	}
}

func TestRectangleContainsPoint(t *testing.T) {
	rect := RectangleD{X: 10, Y: 20, W: 30, H: 40}

	tests := []struct {
		name     string
		p        PointD
		expected bool
	}{
		{"interior", PointD{X: 25, Y: 40}, true},
		{"top-left corner", PointD{X: 10, Y: 20}, true},
		{"bottom-right corner", PointD{X: 40, Y: 60}, true},
		{"on left edge", PointD{X: 10, Y: 30}, true},
		{"left of rect", PointD{X: 9.999, Y: 30}, false},
		{"below rect", PointD{X: 25, Y: 60.001}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := rect.ContainsPoint(tt.p); got != tt.expected {
				t.Errorf("ContainsPoint(%v) = %v, expected %v", tt.p, got, tt.expected)
			}
		})
	}
}

func TestSegmentsIntersect(t *testing.T) {
	tests := []struct {
		name           string
		a1, a2, b1, b2 PointD
		expected       bool
	}{
		{"crossing diagonals", PointD{0, 0}, PointD{10, 10}, PointD{0, 10}, PointD{10, 0}, true},
		{"disjoint parallel", PointD{0, 0}, PointD{10, 0}, PointD{0, 5}, PointD{10, 5}, false},
		{"collinear overlapping", PointD{0, 0}, PointD{10, 0}, PointD{5, 0}, PointD{15, 0}, false},
		{"touching at endpoint", PointD{0, 0}, PointD{5, 5}, PointD{5, 5}, PointD{10, 0}, true},
		{"would intersect beyond segment", PointD{0, 0}, PointD{1, 1}, PointD{10, 0}, PointD{10, 20}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SegmentsIntersect(tt.a1, tt.a2, tt.b1, tt.b2); got != tt.expected {
				t.Errorf("SegmentsIntersect = %v, expected %v", got, tt.expected)
			}
		})
	}
}

func TestSegmentIntersectsRect(t *testing.T) {
	rect := RectangleD{X: 0, Y: 0, W: 10, H: 10}

	tests := []struct {
		name     string
		line     LineThroughTwoPointsD
		expected bool
	}{
		{"endpoint inside", LineThroughTwoPointsD{A: PointD{5, 5}, B: PointD{20, 20}}, true},
		{"crossing through", LineThroughTwoPointsD{A: PointD{-5, 5}, B: PointD{15, 5}}, true},
		{"fully outside", LineThroughTwoPointsD{A: PointD{20, 20}, B: PointD{30, 30}}, false},
		{"both endpoints inside", LineThroughTwoPointsD{A: PointD{2, 2}, B: PointD{8, 8}}, true},
		// a segment lying on an edge does not reach either diagonal here;
		// it is reported as intersecting because its endpoints lie on the
		// closed edge, which counts as inside
		{"collinear along edge", LineThroughTwoPointsD{A: PointD{2, 0}, B: PointD{8, 0}}, true},
		{"collinear along edge outside", LineThroughTwoPointsD{A: PointD{-20, 0}, B: PointD{-10, 0}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SegmentIntersectsRect(tt.line, rect); got != tt.expected {
				t.Errorf("SegmentIntersectsRect(%v) = %v, expected %v", tt.line, got, tt.expected)
			}
		})
	}
}

func TestClassifySegmentRect(t *testing.T) {
	rect := RectangleD{X: 0, Y: 0, W: 10, H: 10}

	tests := []struct {
		name     string
		line     LineThroughTwoPointsD
		expected SegmentRectClassification
	}{
		{"both inside", LineThroughTwoPointsD{A: PointD{2, 2}, B: PointD{8, 8}}, FullyWithin},
		{"one inside", LineThroughTwoPointsD{A: PointD{5, 5}, B: PointD{20, 20}}, PartlyWithin},
		{"crossing", LineThroughTwoPointsD{A: PointD{-5, 5}, B: PointD{15, 5}}, PartlyWithin},
		{"outside", LineThroughTwoPointsD{A: PointD{20, 20}, B: PointD{30, 30}}, NotWithin},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifySegmentRect(tt.line, rect); got != tt.expected {
				t.Errorf("ClassifySegmentRect(%v) = %v, expected %v", tt.line, got, tt.expected)
			}
		})
	}
}

func TestCuboidIntersectsPlane(t *testing.T) {
	tests := []struct {
		name     string
		cuboid   CuboidD
		plane    PlaneNormalAndDistanceD
		expected bool
	}{
		{
			"z-plane through slab",
			CuboidD{X: 0, Y: 0, Z: 20, W: 10, H: 10, D: 10},
			PlaneNormalAndDistanceD{Normal: Point3dD{Z: 1}, Distance: 25},
			true,
		},
		{
			"z-plane touching face",
			CuboidD{X: 0, Y: 0, Z: 20, W: 10, H: 10, D: 10},
			PlaneNormalAndDistanceD{Normal: Point3dD{Z: 1}, Distance: 30},
			true,
		},
		{
			"z-plane above cuboid",
			CuboidD{X: 0, Y: 0, Z: 20, W: 10, H: 10, D: 10},
			PlaneNormalAndDistanceD{Normal: Point3dD{Z: 1}, Distance: 30.001},
			false,
		},
		{
			"diagonal plane through origin cuboid",
			CuboidD{X: -5, Y: -5, Z: -5, W: 10, H: 10, D: 10},
			PlaneNormalAndDistanceD{Normal: Point3dD{X: 1, Y: 1, Z: 1}, Distance: 0},
			true,
		},
		{
			"diagonal plane far away",
			CuboidD{X: -5, Y: -5, Z: -5, W: 10, H: 10, D: 10},
			PlaneNormalAndDistanceD{Normal: Point3dD{X: 1, Y: 1, Z: 1}, Distance: 100},
			false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cuboid.IntersectsPlane(tt.plane); got != tt.expected {
				t.Errorf("IntersectsPlane = %v, expected %v", got, tt.expected)
			}
		})
	}
}

func TestCuboidCenter(t *testing.T) {
	c := CuboidD{X: 0, Y: 10, Z: 20, W: 2, H: 4, D: 6}
	center := c.Center()
	if center.X != 1 || center.Y != 12 || center.Z != 23 {
		t.Errorf("Center() = %v, expected {1 12 23}", center)
	}
}
