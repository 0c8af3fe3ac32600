package mosaicdb

import (
	"database/sql"
	"sync"

	"github.com/mattn/go-sqlite3"

	"github.com/mosaicdb/mosaicdb/geom"
)

// Names of the geometric predicates registered with every connection.
const (
	// funcNameLineThroughPoints2d tests a 2D line segment against the
	// min/max columns of the 2D spatial index.
	funcNameLineThroughPoints2d = "LineThroughPoints2d"
	// funcNamePlaneNormalDistance3d tests a plane in normal form against
	// the min/max columns of the 3D spatial index.
	funcNamePlaneNormalDistance3d = "PlaneNormalDistance3d"
	// funcNameIntersectsWithLine tests a line segment against a
	// rectangle given as x/y/w/h, for the non-spatial-index fallback.
	funcNameIntersectsWithLine = "IntersectsWithLine"
)

const driverName = "mosaicdb_sqlite3"

var registerDriverOnce sync.Once

// registerDriver registers the sqlite3 driver variant which installs the
// geometric predicates on every new connection. The predicates are pure
// functions from the geom package; only the adapters live here.
func registerDriver() {
	registerDriverOnce.Do(func() {
		sql.Register(driverName, &sqlite3.SQLiteDriver{
			ConnectHook: func(conn *sqlite3.SQLiteConn) error {
				if err := conn.RegisterFunc(funcNameLineThroughPoints2d, lineThroughPoints2d, true); err != nil {
					return err
				}
				if err := conn.RegisterFunc(funcNamePlaneNormalDistance3d, planeNormalDistance3d, true); err != nil {
					return err
				}
				return conn.RegisterFunc(funcNameIntersectsWithLine, intersectsWithLine, true)
			},
		})
	})
}

// lineThroughPoints2d returns 1 iff the segment (x1,y1)-(x2,y2)
// intersects the axis-aligned box [minX,maxX]x[minY,maxY].
func lineThroughPoints2d(x1, y1, x2, y2, minX, maxX, minY, maxY float64) int64 {
	line := geom.LineThroughTwoPointsD{
		A: geom.PointD{X: x1, Y: y1},
		B: geom.PointD{X: x2, Y: y2},
	}
	rect := geom.RectangleD{X: minX, Y: minY, W: maxX - minX, H: maxY - minY}
	if geom.ClassifySegmentRect(line, rect) != geom.NotWithin {
		return 1
	}
	return 0
}

// planeNormalDistance3d returns 1 iff the plane with normal (nx,ny,nz)
// and distance d cuts the axis-aligned box given by its min/max
// coordinates.
func planeNormalDistance3d(nx, ny, nz, d, minX, maxX, minY, maxY, minZ, maxZ float64) int64 {
	plane := geom.PlaneNormalAndDistanceD{
		Normal:   geom.Point3dD{X: nx, Y: ny, Z: nz},
		Distance: d,
	}
	aabb := geom.CuboidD{
		X: minX, Y: minY, Z: minZ,
		W: maxX - minX, H: maxY - minY, D: maxZ - minZ,
	}
	if aabb.IntersectsPlane(plane) {
		return 1
	}
	return 0
}

// intersectsWithLine returns 1 iff the segment (x1,y1)-(x2,y2)
// intersects the rectangle at (x,y) with extent (w,h).
func intersectsWithLine(x, y, w, h, x1, y1, x2, y2 float64) int64 {
	line := geom.LineThroughTwoPointsD{
		A: geom.PointD{X: x1, Y: y1},
		B: geom.PointD{X: x2, Y: y2},
	}
	rect := geom.RectangleD{X: x, Y: y, W: w, H: h}
	if geom.SegmentIntersectsRect(line, rect) {
		return 1
	}
	return 0
}
