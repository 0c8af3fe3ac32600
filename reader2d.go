package mosaicdb

import (
	"database/sql"

	"github.com/mosaicdb/mosaicdb/geom"
)

// Reader2D is the read surface of a 2D tile document.
type Reader2D struct {
	doc *Document
}

// ReadTileInfo reads the requested information groups for the tile with
// the given primary key. Groups not requested come back as zero values.
// A missing row fails with NonExistingTileError.
func (r *Reader2D) ReadTileInfo(pk int64, wantCoord, wantPos, wantBlobInfo bool) (TileCoordinate, *LogicalPosition, *TileBlobInfo, error) {
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

	var posX, posY, posW, posH float64
	var pyramidLevel int
	if wantPos {
		dests = append(dests, &posX, &posY, &posW, &posH, &pyramidLevel)
	}

	var pixelWidth, pixelHeight sql.NullInt64
	var pixelType, dataType sql.NullInt64
	if wantBlobInfo {
		dests = append(dests, &pixelWidth, &pixelHeight, &pixelType, &dataType)
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
		return nil, nil, nil, wrapDatabaseError("reading tile info", err)
	}

	var coord TileCoordinate
	if wantCoord {
		coord = make(TileCoordinate, len(dims))
		for i, dim := range dims {
			coord[dim] = coordValues[i].Int32
		}
	}

	var pos *LogicalPosition
	if wantPos {
		pos = &LogicalPosition{PosX: posX, PosY: posY, Width: posW, Height: posH, PyramidLevel: pyramidLevel}
	}

	var blobInfo *TileBlobInfo
	if wantBlobInfo {
		blobInfo = &TileBlobInfo{
			Base: TileBaseInfo{
				PixelWidth:  uint32(pixelWidth.Int64),
				PixelHeight: uint32(pixelHeight.Int64),
				PixelType:   uint8(pixelType.Int64),
			},
			DataType: DataType(dataType.Int64),
		}
	}

	return coord, pos, blobInfo, nil
}

// Query enumerates the tiles whose coordinate satisfies coordClause and
// whose tile info satisfies infoClause, in primary-key order. Either
// clause may be nil to match everything.
func (r *Reader2D) Query(coordClause *CoordinateQueryClause, infoClause *TileInfoQueryClause, visit TileVisitor) error {
	query, params, err := sqlCoordinateQuery(r.doc.cfg, coordClause, infoClause)
	if err != nil {
		return err
	}
	return visitPks(r.doc.conn, visit, query, params...)
}

// GetTilesIntersectingRect enumerates the tiles whose logical position
// intersects the (closed) rectangle and which satisfy the clauses. With
// the spatial index the R-tree is queried, otherwise the inequality form
// on the logical-position columns is used; both paths produce the same
// set.
func (r *Reader2D) GetTilesIntersectingRect(rect geom.RectangleD, coordClause *CoordinateQueryClause, infoClause *TileInfoQueryClause, visit TileVisitor) error {
	cfg := r.doc.cfg

	var query string
	var params []interface{}
	var err error
	if cfg.UseSpatialIndex() {
		condition, condParams := sqlSpatialBoxCondition("spatialindex", false,
			[]float64{rect.X, rect.Y},
			[]float64{rect.X + rect.W, rect.Y + rect.H})
		query, params, err = sqlSpatialQuery(cfg, condition, condParams, coordClause, infoClause)
	} else {
		condition, condParams := sqlRectCondition(rect.X, rect.Y, rect.W, rect.H)
		query, params, err = sqlFallbackSpatialQuery(cfg, condition, condParams, coordClause, infoClause)
	}
	if err != nil {
		return err
	}
	return visitPks(r.doc.conn, visit, query, params...)
}

// GetTilesIntersectingWithLine enumerates the tiles whose logical
// position intersects the line segment and which satisfy the clauses.
func (r *Reader2D) GetTilesIntersectingWithLine(line geom.LineThroughTwoPointsD, coordClause *CoordinateQueryClause, infoClause *TileInfoQueryClause, visit TileVisitor) error {
	cfg := r.doc.cfg

	var query string
	var params []interface{}
	var err error
	if cfg.UseSpatialIndex() {
		condition, condParams := sqlSpatialLineCondition("spatialindex", line.A.X, line.A.Y, line.B.X, line.B.Y)
		query, params, err = sqlSpatialQuery(cfg, condition, condParams, coordClause, infoClause)
	} else {
		condition, condParams := sqlLineCondition(line.A.X, line.A.Y, line.B.X, line.B.Y)
		query, params, err = sqlFallbackSpatialQuery(cfg, condition, condParams, coordClause, infoClause)
	}
	if err != nil {
		return err
	}
	return visitPks(r.doc.conn, visit, query, params...)
}

// ReadTileData retrieves the tile payload and feeds it to the sink. A
// zero tile reserves zero bytes; a missing tile fails with
// NonExistingTileError.
func (r *Reader2D) ReadTileData(pk int64, sink BlobSink) error {
	return readTileData(r.doc, pk, sink)
}

// GetTileDimensions returns the declared dimensions in ascending order.
func (r *Reader2D) GetTileDimensions() []Dimension {
	return r.doc.cfg.Dimensions()
}

// GetMinMaxForTileDimension returns the coordinate bounds per requested
// dimension. An invalid interval signals an empty document.
func (r *Reader2D) GetMinMaxForTileDimension(dimensions []Dimension) (map[Dimension]Int32Interval, error) {
	return queryMinMaxForDimensions(r.doc, dimensions)
}

// GetTotalTileCount returns the number of tiles in the document.
func (r *Reader2D) GetTotalTileCount() (int64, error) {
	return queryTotalTileCount(r.doc)
}

// GetTileCountPerLayer returns the number of tiles per pyramid layer.
func (r *Reader2D) GetTileCountPerLayer() (map[int]int64, error) {
	return queryTileCountPerLayer(r.doc)
}

// GetTilesBoundingBox returns the extent of all tiles on the x and y
// axes. Both intervals are invalid when the document is empty.
func (r *Reader2D) GetTilesBoundingBox() (DoubleInterval, DoubleInterval, error) {
	bounds, err := queryBoundingBox(r.doc, false)
	if err != nil {
		return InvalidDoubleInterval(), InvalidDoubleInterval(), err
	}
	return bounds[0], bounds[1], nil
}
