package mosaicdb

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/samber/lo"
)

// The aggregate-information queries shared by the 2D and 3D readers.

func queryMinMaxForDimensions(doc *Document, dimensions []Dimension) (map[Dimension]Int32Interval, error) {
	cfg := doc.cfg
	if len(dimensions) == 0 {
		return map[Dimension]Int32Interval{}, nil
	}
	for _, dim := range dimensions {
		if !cfg.IsDimensionValid(dim) {
			return nil, invalidArgumentf("dimension '%c' is not used in this document", byte(dim))
		}
	}

	selects := lo.Map(dimensions, func(dim Dimension, _ int) string {
		column := quoteIdent(cfg.DimensionColumn(dim))
		return fmt.Sprintf("MIN(%s),MAX(%s)", column, column)
	})
	query := fmt.Sprintf("SELECT %s FROM %s",
		strings.Join(selects, ","), quoteIdent(cfg.TableTilesInfo()))

	values := make([]sql.NullInt32, 2*len(dimensions))
	dests := make([]interface{}, 2*len(dimensions))
	for i := range values {
		dests[i] = &values[i]
	}

	if err := doc.conn.queryRow(query).Scan(dests...); err != nil {
		return nil, wrapDatabaseError("querying dimension bounds", err)
	}

	result := make(map[Dimension]Int32Interval, len(dimensions))
	for i, dim := range dimensions {
		minValue, maxValue := values[2*i], values[2*i+1]
		if !minValue.Valid || !maxValue.Valid {
			result[dim] = InvalidInt32Interval()
			continue
		}
		result[dim] = Int32Interval{Minimum: minValue.Int32, Maximum: maxValue.Int32}
	}
	return result, nil
}

func queryTotalTileCount(doc *Document) (int64, error) {
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s", quoteIdent(doc.cfg.TableTilesInfo()))
	var count int64
	if err := doc.conn.queryRow(query).Scan(&count); err != nil {
		return 0, wrapDatabaseError("querying tile count", err)
	}
	return count, nil
}

func queryTileCountPerLayer(doc *Document) (map[int]int64, error) {
	column := quoteIdent(colTilesInfoPyramidLevel)
	query := fmt.Sprintf("SELECT %s, COUNT(*) FROM %s GROUP BY %s",
		column, quoteIdent(doc.cfg.TableTilesInfo()), column)

	rows, err := doc.conn.query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[int]int64)
	for rows.Next() {
		var layer int
		var count int64
		if err := rows.Scan(&layer, &count); err != nil {
			return nil, wrapDatabaseError("scanning per-layer count", err)
		}
		counts[layer] = count
	}
	if err := rows.Err(); err != nil {
		return nil, wrapDatabaseError("iterating per-layer counts", err)
	}
	return counts, nil
}

// queryBoundingBox returns the extent of all tiles per axis: x and y,
// plus z for 3D documents. Invalid intervals are returned for an empty
// document.
func queryBoundingBox(doc *Document, is3D bool) ([]DoubleInterval, error) {
	cfg := doc.cfg

	axes := [][2]string{
		{colTilesInfoTileX, colTilesInfoTileW},
		{colTilesInfoTileY, colTilesInfoTileH},
	}
	if is3D {
		axes = append(axes, [2]string{colTilesInfoTileZ, colTilesInfoTileD})
	}

	selects := lo.Map(axes, func(axis [2]string, _ int) string {
		pos, extent := quoteIdent(axis[0]), quoteIdent(axis[1])
		return fmt.Sprintf("MIN(%s),MAX(%s+%s)", pos, pos, extent)
	})
	query := fmt.Sprintf("SELECT %s FROM %s",
		strings.Join(selects, ","), quoteIdent(cfg.TableTilesInfo()))

	values := make([]sql.NullFloat64, 2*len(axes))
	dests := make([]interface{}, 2*len(axes))
	for i := range values {
		dests[i] = &values[i]
	}

	if err := doc.conn.queryRow(query).Scan(dests...); err != nil {
		return nil, wrapDatabaseError("querying bounding box", err)
	}

	bounds := make([]DoubleInterval, len(axes))
	for i := range axes {
		minValue, maxValue := values[2*i], values[2*i+1]
		if !minValue.Valid || !maxValue.Valid {
			bounds[i] = InvalidDoubleInterval()
			continue
		}
		bounds[i] = DoubleInterval{Minimum: minValue.Float64, Maximum: maxValue.Float64}
	}
	return bounds, nil
}
