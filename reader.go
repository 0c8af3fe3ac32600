package mosaicdb

import (
	"database/sql"
	"fmt"
	"strings"
)

// TileVisitor is called with the primary key of every matching tile.
// Returning false stops the enumeration; the underlying statement is
// released promptly on every exit path.
type TileVisitor func(pk int64) bool

// visitPks runs the query and feeds the resulting primary keys to the
// visitor.
func visitPks(conn *dbConn, visit TileVisitor, sqlText string, args ...interface{}) error {
	rows, err := conn.query(sqlText, args...)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var pk int64
		if err := rows.Scan(&pk); err != nil {
			return wrapDatabaseError("scanning tile pk", err)
		}
		if !visit(pk) {
			return nil
		}
	}
	if err := rows.Err(); err != nil {
		return wrapDatabaseError("iterating tiles", err)
	}
	return nil
}

// sqlCoordinateQuery assembles the plain coordinate/tile-info query over
// the tiles-info table. Enumeration order is primary-key order.
func sqlCoordinateQuery(cfg *SchemaConfig, coordClause *CoordinateQueryClause, infoClause *TileInfoQueryClause) (string, []interface{}, error) {
	clauseFragment, params, err := sqlClauses(coordClause, infoClause, cfg, "")
	if err != nil {
		return "", nil, err
	}

	query := fmt.Sprintf("SELECT %s FROM %s%s ORDER BY %s",
		quoteIdent(colTilesInfoPk),
		quoteIdent(cfg.TableTilesInfo()),
		sqlWhereAnd(clauseFragment),
		quoteIdent(colTilesInfoPk))
	return query, params, nil
}

// sqlSpatialQuery assembles a query over the spatial index joined with
// the tiles-info table when additional clauses are present. The
// spatialCondition is already rendered against the alias "spatialindex".
func sqlSpatialQuery(cfg *SchemaConfig, spatialCondition string, spatialParams []interface{}, coordClause *CoordinateQueryClause, infoClause *TileInfoQueryClause) (string, []interface{}, error) {
	spatialTable, err := cfg.TableSpatialIndex()
	if err != nil {
		return "", nil, err
	}

	if coordClause.IsEmpty() && infoClause.IsEmpty() {
		query := fmt.Sprintf("SELECT %s FROM %s spatialindex%s",
			"spatialindex."+quoteIdent(colSpatialPk),
			quoteIdent(spatialTable),
			sqlWhereAnd(spatialCondition))
		return query, spatialParams, nil
	}

	clauseFragment, clauseParams, err := sqlClauses(coordClause, infoClause, cfg, "info.")
	if err != nil {
		return "", nil, err
	}

	query := fmt.Sprintf("SELECT %s FROM %s spatialindex INNER JOIN %s info ON %s = %s%s",
		"spatialindex."+quoteIdent(colSpatialPk),
		quoteIdent(spatialTable),
		quoteIdent(cfg.TableTilesInfo()),
		"spatialindex."+quoteIdent(colSpatialPk),
		"info."+quoteIdent(colTilesInfoPk),
		sqlWhereAnd(spatialCondition, clauseFragment))
	return query, append(spatialParams, clauseParams...), nil
}

// sqlFallbackSpatialQuery assembles a geometric query directly over the
// logical-position columns, used when the document has no spatial index.
func sqlFallbackSpatialQuery(cfg *SchemaConfig, geomCondition string, geomParams []interface{}, coordClause *CoordinateQueryClause, infoClause *TileInfoQueryClause) (string, []interface{}, error) {
	clauseFragment, clauseParams, err := sqlClauses(coordClause, infoClause, cfg, "")
	if err != nil {
		return "", nil, err
	}

	query := fmt.Sprintf("SELECT %s FROM %s%s ORDER BY %s",
		quoteIdent(colTilesInfoPk),
		quoteIdent(cfg.TableTilesInfo()),
		sqlWhereAnd(geomCondition, clauseFragment),
		quoteIdent(colTilesInfoPk))
	return query, append(geomParams, clauseParams...), nil
}

// sqlReadInfoQuery builds the projection for ReadTileInfo/ReadBrickInfo.
// Only the requested column groups are selected; when nothing is
// requested a constant is projected to probe row existence.
func sqlReadInfoQuery(cfg *SchemaConfig, wantCoord, wantPos, wantBlobInfo bool) string {
	infoTable := quoteIdent(cfg.TableTilesInfo())
	dataTable := quoteIdent(cfg.TableTilesData())

	var columns []string
	if wantCoord {
		for _, dim := range cfg.Dimensions() {
			columns = append(columns, infoTable+"."+quoteIdent(cfg.DimensionColumn(dim)))
		}
	}
	if wantPos {
		columns = append(columns, infoTable+"."+quoteIdent(colTilesInfoTileX))
		columns = append(columns, infoTable+"."+quoteIdent(colTilesInfoTileY))
		if cfg.Is3D() {
			columns = append(columns, infoTable+"."+quoteIdent(colTilesInfoTileZ))
		}
		columns = append(columns, infoTable+"."+quoteIdent(colTilesInfoTileW))
		columns = append(columns, infoTable+"."+quoteIdent(colTilesInfoTileH))
		if cfg.Is3D() {
			columns = append(columns, infoTable+"."+quoteIdent(colTilesInfoTileD))
		}
		columns = append(columns, infoTable+"."+quoteIdent(colTilesInfoPyramidLevel))
	}
	if wantBlobInfo {
		columns = append(columns, dataTable+"."+quoteIdent(colTilesDataPixelWidth))
		columns = append(columns, dataTable+"."+quoteIdent(colTilesDataPixelHeight))
		if cfg.Is3D() {
			columns = append(columns, dataTable+"."+quoteIdent(colTilesDataPixelDepth))
		}
		columns = append(columns, dataTable+"."+quoteIdent(colTilesDataPixelType))
		columns = append(columns, dataTable+"."+quoteIdent(colTilesDataTileDataType))
	}
	if len(columns) == 0 {
		columns = append(columns, "1")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "SELECT %s FROM %s", strings.Join(columns, ","), infoTable)
	if wantBlobInfo {
		fmt.Fprintf(&b, " LEFT JOIN %s ON %s.%s = %s.%s",
			dataTable,
			infoTable, quoteIdent(colTilesInfoTileDataID),
			dataTable, quoteIdent(colTilesDataPk))
	}
	fmt.Fprintf(&b, " WHERE %s.%s = ?", infoTable, quoteIdent(colTilesInfoPk))
	return b.String()
}

// readTileData retrieves the payload for the tile and feeds it to the
// sink. A missing tile row fails with NonExistingTileError; a tile
// without payload (zero data type) reserves zero bytes. Multiple blob
// rows for one key are a fatal invariant violation.
func readTileData(doc *Document, pk int64, sink BlobSink) error {
	if data, ok := doc.blobCache.get(pk); ok {
		if sink.Reserve(len(data)) && len(data) > 0 {
			sink.WriteChunk(0, data)
		}
		return nil
	}

	cfg := doc.cfg

	if !cfg.UseBlobTable() {
		// without a blob table every tile is a zero tile; only existence
		// has to be probed
		query := fmt.Sprintf("SELECT 1 FROM %s WHERE %s = ?",
			quoteIdent(cfg.TableTilesInfo()), quoteIdent(colTilesInfoPk))
		var one int
		err := doc.conn.queryRow(query, pk).Scan(&one)
		if err == sql.ErrNoRows {
			return &NonExistingTileError{Pk: pk}
		}
		if err != nil {
			return wrapDatabaseError("probing tile existence", err)
		}
		sink.Reserve(0)
		return nil
	}

	blobTable, err := cfg.TableBlobs()
	if err != nil {
		return err
	}

	query := fmt.Sprintf("SELECT blobs.%s FROM %s info INNER JOIN %s data ON info.%s = data.%s LEFT JOIN %s blobs ON data.%s = blobs.%s WHERE info.%s = ?",
		quoteIdent(colBlobsData),
		quoteIdent(cfg.TableTilesInfo()),
		quoteIdent(cfg.TableTilesData()),
		quoteIdent(colTilesInfoTileDataID), quoteIdent(colTilesDataPk),
		quoteIdent(blobTable),
		quoteIdent(colTilesDataBinDataID), quoteIdent(colBlobsPk),
		quoteIdent(colTilesInfoPk))

	rows, err := doc.conn.query(query, pk)
	if err != nil {
		return err
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return wrapDatabaseError("reading tile data", err)
		}
		return &NonExistingTileError{Pk: pk}
	}

	var data []byte
	if err := rows.Scan(&data); err != nil {
		return wrapDatabaseError("scanning tile data", err)
	}

	if rows.Next() {
		doc.environment.reportFatal(fmt.Sprintf("multiple blob rows for tile pk=%d", pk))
		return &InvariantViolationError{Message: fmt.Sprintf("multiple blob rows for tile pk=%d", pk)}
	}

	doc.blobCache.put(pk, data)
	if sink.Reserve(len(data)) && len(data) > 0 {
		sink.WriteChunk(0, data)
	}
	return nil
}
