package mosaicdb

import (
	"database/sql"

	"github.com/mosaicdb/mosaicdb/geom"
)

// Reader3D is the read surface of a 3D brick document.
type Reader3D struct {
	doc *Document
}

// ReadBrickInfo reads the requested information groups for the brick
// with the given primary key. Groups not requested come back as zero
// values. A missing row fails with NonExistingTileError.
func (r *Reader3D) ReadBrickInfo(pk int64, wantCoord, wantPos, wantBlobInfo bool) (TileCoordinate, *LogicalPosition3D, *BrickBlobInfo, error) {
	cfg := r.doc.cfg
	query := sqlReadInfoQuery(cfg, wantCoord, wantPos, wantBlobInfo)

	dims := cfg.Dimensions()
	var dests []interface{}

	coordValues := make([]sql.NullInt32, len(dims))
	if wantCoord {
		for i := range coordValues {
			dests = append(dests, &coordValues[i])
		}
	}

	var posX, posY, posZ, posW, posH, posD float64
	var pyramidLevel int
	if wantPos {
		dests = append(dests, &posX, &posY, &posZ, &posW, &posH, &posD, &pyramidLevel)
	}

	var pixelWidth, pixelHeight, pixelDepth sql.NullInt64
	var pixelType, dataType sql.NullInt64
	if wantBlobInfo {
		dests = append(dests, &pixelWidth, &pixelHeight, &pixelDepth, &pixelType, &dataType)
	}

	if len(dests) == 0 {
		var one int
		dests = append(dests, &one)
	}

	err := r.doc.conn.queryRow(query, pk).Scan(dests...)
	if err == sql.ErrNoRows {
		return nil, nil, nil, &NonExistingTileError{Pk: pk}
	}
	if err != nil {
		return nil, nil, nil, wrapDatabaseError("reading brick info", err)
	}

	var coord TileCoordinate
	if wantCoord {
		coord = make(TileCoordinate, len(dims))
		for i, dim := range dims {
			coord[dim] = coordValues[i].Int32
		}
	}

	var pos *LogicalPosition3D
	if wantPos {
		pos = &LogicalPosition3D{
			PosX: posX, PosY: posY, PosZ: posZ,
			Width: posW, Height: posH, Depth: posD,
			PyramidLevel: pyramidLevel,
		}
	}

	var blobInfo *BrickBlobInfo
	if wantBlobInfo {
		blobInfo = &BrickBlobInfo{
			Base: BrickBaseInfo{
				PixelWidth:  uint32(pixelWidth.Int64),
				PixelHeight: uint32(pixelHeight.Int64),
				PixelDepth:  uint32(pixelDepth.Int64),
				PixelType:   uint8(pixelType.Int64),
			},
			DataType: DataType(dataType.Int64),
		}
	}

	return coord, pos, blobInfo, nil
}

// Query enumerates the bricks whose coordinate satisfies coordClause and
// whose tile info satisfies infoClause, in primary-key order. Either
// clause may be nil to match everything.
func (r *Reader3D) Query(coordClause *CoordinateQueryClause, infoClause *TileInfoQueryClause, visit TileVisitor) error {
	query, params, err := sqlCoordinateQuery(r.doc.cfg, coordClause, infoClause)
	if err != nil {
		return err
	}
	return visitPks(r.doc.conn, visit, query, params...)
}

// GetBricksIntersectingCuboid enumerates the bricks whose logical
// position intersects the (closed) cuboid and which satisfy the
// clauses. With the spatial index the R-tree is queried, otherwise the
// inequality form on the logical-position columns is used; both paths
// produce the same set.
func (r *Reader3D) GetBricksIntersectingCuboid(cuboid geom.CuboidD, coordClause *CoordinateQueryClause, infoClause *TileInfoQueryClause, visit TileVisitor) error {
	cfg := r.doc.cfg

	var query string
	var params []interface{}
	var err error
	if cfg.UseSpatialIndex() {
		condition, condParams := sqlSpatialBoxCondition("spatialindex", true,
			[]float64{cuboid.X, cuboid.Y, cuboid.Z},
			[]float64{cuboid.X + cuboid.W, cuboid.Y + cuboid.H, cuboid.Z + cuboid.D})
		query, params, err = sqlSpatialQuery(cfg, condition, condParams, coordClause, infoClause)
	} else {
		condition, condParams := sqlCuboidCondition(cuboid.X, cuboid.Y, cuboid.Z, cuboid.W, cuboid.H, cuboid.D)
		query, params, err = sqlFallbackSpatialQuery(cfg, condition, condParams, coordClause, infoClause)
	}
	if err != nil {
		return err
	}
	return visitPks(r.doc.conn, visit, query, params...)
}

// GetBricksIntersectingPlane enumerates the bricks cut by the plane
// (given in normal form) which satisfy the clauses. With the spatial
// index the registered plane predicate runs against the R-tree bounds,
// otherwise the closed-form inequality runs on the logical-position
// columns; both paths produce the same set.
func (r *Reader3D) GetBricksIntersectingPlane(plane geom.PlaneNormalAndDistanceD, coordClause *CoordinateQueryClause, infoClause *TileInfoQueryClause, visit TileVisitor) error {
	cfg := r.doc.cfg

	var query string
	var params []interface{}
	var err error
	if cfg.UseSpatialIndex() {
		condition, condParams := sqlSpatialPlaneCondition("spatialindex",
			plane.Normal.X, plane.Normal.Y, plane.Normal.Z, plane.Distance)
		query, params, err = sqlSpatialQuery(cfg, condition, condParams, coordClause, infoClause)
	} else {
		condition, condParams := sqlPlaneCondition(plane.Normal.X, plane.Normal.Y, plane.Normal.Z, plane.Distance)
		query, params, err = sqlFallbackSpatialQuery(cfg, condition, condParams, coordClause, infoClause)
	}
	if err != nil {
		return err
	}
	return visitPks(r.doc.conn, visit, query, params...)
}

// ReadBrickData retrieves the brick payload and feeds it to the sink. A
// zero brick reserves zero bytes; a missing brick fails with
// NonExistingTileError.
func (r *Reader3D) ReadBrickData(pk int64, sink BlobSink) error {
	return readTileData(r.doc, pk, sink)
}

// GetTileDimensions returns the declared dimensions in ascending order.
func (r *Reader3D) GetTileDimensions() []Dimension {
	return r.doc.cfg.Dimensions()
}

// GetMinMaxForTileDimension returns the coordinate bounds per requested
// dimension. An invalid interval signals an empty document.
func (r *Reader3D) GetMinMaxForTileDimension(dimensions []Dimension) (map[Dimension]Int32Interval, error) {
	return queryMinMaxForDimensions(r.doc, dimensions)
}

// GetTotalTileCount returns the number of bricks in the document.
func (r *Reader3D) GetTotalTileCount() (int64, error) {
	return queryTotalTileCount(r.doc)
}

// GetTileCountPerLayer returns the number of bricks per pyramid layer.
func (r *Reader3D) GetTileCountPerLayer() (map[int]int64, error) {
	return queryTileCountPerLayer(r.doc)
}

// GetBricksBoundingBox returns the extent of all bricks on the x, y and
// z axes. All intervals are invalid when the document is empty.
func (r *Reader3D) GetBricksBoundingBox() (DoubleInterval, DoubleInterval, DoubleInterval, error) {
	bounds, err := queryBoundingBox(r.doc, true)
	if err != nil {
		return InvalidDoubleInterval(), InvalidDoubleInterval(), InvalidDoubleInterval(), err
	}
	return bounds[0], bounds[1], bounds[2], nil
}
