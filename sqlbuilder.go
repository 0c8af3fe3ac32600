package mosaicdb

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// The statement builders below return a SQL fragment plus the values to
// bind, in order. Identifiers come exclusively from the schema
// configuration; values are always bound positionally.

func quoteIdent(name string) string {
	return strconv.Quote(name)
}

func comparisonSQL(op ComparisonOperation) (string, error) {
	switch op {
	case ComparisonEqual:
		return "=", nil
	case ComparisonNotEqual:
		return "<>", nil
	case ComparisonLessThan:
		return "<", nil
	case ComparisonLessThanOrEqual:
		return "<=", nil
	case ComparisonGreaterThan:
		return ">", nil
	case ComparisonGreaterThanOrEqual:
		return ">=", nil
	default:
		return "", invalidArgumentf("invalid comparison operation (%d)", op)
	}
}

// sqlCoordinateClause compiles a coordinate clause into a WHERE fragment.
// Ranges on the same dimension are ORed, dimensions are ANDed. A range
// open on both sides matches everything on that dimension.
func sqlCoordinateClause(clause *CoordinateQueryClause, cfg *SchemaConfig, columnPrefix string) (string, []interface{}, error) {
	if clause.IsEmpty() {
		return "", nil, nil
	}

	var dimFragments []string
	var params []interface{}

	for _, dim := range clause.Dimensions() {
		if !cfg.IsDimensionValid(dim) {
			return "", nil, invalidArgumentf("dimension '%c' is not used in this document", byte(dim))
		}

		column := columnPrefix + quoteIdent(cfg.DimensionColumn(dim))
		var rangeFragments []string
		for _, r := range clause.Ranges(dim) {
			openStart := r.Start == math.MinInt32
			openEnd := r.End == math.MaxInt32
			switch {
			case openStart && openEnd:
				rangeFragments = append(rangeFragments, "1=1")
			case openStart:
				rangeFragments = append(rangeFragments, fmt.Sprintf("(%s <= ?)", column))
				params = append(params, r.End)
			case openEnd:
				rangeFragments = append(rangeFragments, fmt.Sprintf("(%s >= ?)", column))
				params = append(params, r.Start)
			default:
				rangeFragments = append(rangeFragments, fmt.Sprintf("(%s >= ? AND %s <= ?)", column, column))
				params = append(params, r.Start, r.End)
			}
		}

		dimFragments = append(dimFragments, "("+strings.Join(rangeFragments, " OR ")+")")
	}

	return strings.Join(dimFragments, " AND "), params, nil
}

// sqlTileInfoClause compiles a tile-info clause into a WHERE fragment.
// Conditions are grouped strictly left-to-right: ((((c1) op2 c2) op3 c3)...).
func sqlTileInfoClause(clause *TileInfoQueryClause, cfg *SchemaConfig, columnPrefix string) (string, []interface{}, error) {
	conditions := clause.Conditions()
	if len(conditions) == 0 {
		return "", nil, nil
	}

	column := columnPrefix + quoteIdent(colTilesInfoPyramidLevel)
	var fragment string
	var params []interface{}

	for i, cond := range conditions {
		cmp, err := comparisonSQL(cond.Comparison)
		if err != nil {
			return "", nil, err
		}

		condFragment := fmt.Sprintf("(%s %s ?)", column, cmp)
		params = append(params, cond.Value)

		if i == 0 {
			fragment = condFragment
			continue
		}

		var logical string
		switch cond.Logical {
		case LogicalOperatorAnd:
			logical = "AND"
		case LogicalOperatorOr:
			logical = "OR"
		default:
			return "", nil, invalidArgumentf("invalid logical operator on condition %d", i)
		}

		fragment = "(" + fragment + " " + logical + " " + condFragment + ")"
	}

	return fragment, params, nil
}

// sqlClauses combines the coordinate and tile-info clause fragments with
// AND. The returned fragment is empty when both clauses are empty.
func sqlClauses(coordClause *CoordinateQueryClause, infoClause *TileInfoQueryClause, cfg *SchemaConfig, columnPrefix string) (string, []interface{}, error) {
	coordFragment, coordParams, err := sqlCoordinateClause(coordClause, cfg, columnPrefix)
	if err != nil {
		return "", nil, err
	}
	infoFragment, infoParams, err := sqlTileInfoClause(infoClause, cfg, columnPrefix)
	if err != nil {
		return "", nil, err
	}

	switch {
	case coordFragment == "" && infoFragment == "":
		return "", nil, nil
	case infoFragment == "":
		return coordFragment, coordParams, nil
	case coordFragment == "":
		return infoFragment, infoParams, nil
	default:
		return "(" + coordFragment + ") AND (" + infoFragment + ")", append(coordParams, infoParams...), nil
	}
}

// sqlWhereAnd renders a WHERE clause from the non-empty fragments, ANDed.
func sqlWhereAnd(fragments ...string) string {
	var conds []string
	for _, f := range fragments {
		if f != "" {
			conds = append(conds, f)
		}
	}
	if len(conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(conds, " AND ")
}

// sqlRectCondition is the direct inequality form of the rectangle
// intersection test on the logical-position columns:
// x+w >= rect.x AND x <= rect.x+rect.w, per axis.
func sqlRectCondition(x, y, w, h float64) (string, []interface{}) {
	colX := quoteIdent(colTilesInfoTileX)
	colY := quoteIdent(colTilesInfoTileY)
	colW := quoteIdent(colTilesInfoTileW)
	colH := quoteIdent(colTilesInfoTileH)
	fragment := fmt.Sprintf("(%s+%s >= ? AND %s <= ? AND %s+%s >= ? AND %s <= ?)",
		colX, colW, colX, colY, colH, colY)
	return fragment, []interface{}{x, x + w, y, y + h}
}

// sqlCuboidCondition is the 3D analogue of sqlRectCondition.
func sqlCuboidCondition(x, y, z, w, h, d float64) (string, []interface{}) {
	colX := quoteIdent(colTilesInfoTileX)
	colY := quoteIdent(colTilesInfoTileY)
	colZ := quoteIdent(colTilesInfoTileZ)
	colW := quoteIdent(colTilesInfoTileW)
	colH := quoteIdent(colTilesInfoTileH)
	colD := quoteIdent(colTilesInfoTileD)
	fragment := fmt.Sprintf("(%s+%s >= ? AND %s <= ? AND %s+%s >= ? AND %s <= ? AND %s+%s >= ? AND %s <= ?)",
		colX, colW, colX, colY, colH, colY, colZ, colD, colZ)
	return fragment, []interface{}{x, x + w, y, y + h, z, z + d}
}

// sqlSpatialBoxCondition is the bounding-box filter on the R-tree
// virtual table: max >= lo AND min <= hi per axis. The 2D form uses the
// first four bounds, the 3D form all six.
func sqlSpatialBoxCondition(alias string, is3D bool, lo, hi []float64) (string, []interface{}) {
	prefix := ""
	if alias != "" {
		prefix = alias + "."
	}

	axes := [][2]string{
		{colSpatialMaxX, colSpatialMinX},
		{colSpatialMaxY, colSpatialMinY},
	}
	if is3D {
		axes = append(axes, [2]string{colSpatialMaxZ, colSpatialMinZ})
	}

	var fragments []string
	var params []interface{}
	for i, axis := range axes {
		fragments = append(fragments, fmt.Sprintf("%s%s >= ? AND %s%s <= ?",
			prefix, quoteIdent(axis[0]), prefix, quoteIdent(axis[1])))
		params = append(params, lo[i], hi[i])
	}

	return "(" + strings.Join(fragments, " AND ") + ")", params
}

// sqlPlaneCondition is the closed-form plane/AABB intersection test on
// the logical-position columns:
//
//	2*|dot(n, center) - d| <= |n.x|*w + |n.y|*h + |n.z|*depth
func sqlPlaneCondition(nx, ny, nz, dist float64) (string, []interface{}) {
	colX := quoteIdent(colTilesInfoTileX)
	colY := quoteIdent(colTilesInfoTileY)
	colZ := quoteIdent(colTilesInfoTileZ)
	colW := quoteIdent(colTilesInfoTileW)
	colH := quoteIdent(colTilesInfoTileH)
	colD := quoteIdent(colTilesInfoTileD)
	fragment := fmt.Sprintf(
		"(2*abs((%s/2+%s)*? + (%s/2+%s)*? + (%s/2+%s)*? - ?) <= abs(?)*%s + abs(?)*%s + abs(?)*%s)",
		colW, colX, colH, colY, colD, colZ, colW, colH, colD)
	return fragment, []interface{}{nx, ny, nz, dist, nx, ny, nz}
}

// sqlSpatialPlaneCondition applies the registered plane predicate to the
// min/max columns of the 3D R-tree.
func sqlSpatialPlaneCondition(alias string, nx, ny, nz, dist float64) (string, []interface{}) {
	prefix := ""
	if alias != "" {
		prefix = alias + "."
	}
	fragment := fmt.Sprintf("%s(?,?,?,?, %s%s,%s%s,%s%s,%s%s,%s%s,%s%s)",
		funcNamePlaneNormalDistance3d,
		prefix, quoteIdent(colSpatialMinX), prefix, quoteIdent(colSpatialMaxX),
		prefix, quoteIdent(colSpatialMinY), prefix, quoteIdent(colSpatialMaxY),
		prefix, quoteIdent(colSpatialMinZ), prefix, quoteIdent(colSpatialMaxZ))
	return fragment, []interface{}{nx, ny, nz, dist}
}

// sqlLineCondition applies the scalar segment/rectangle predicate to the
// logical-position columns (non-spatial-index fallback).
func sqlLineCondition(x1, y1, x2, y2 float64) (string, []interface{}) {
	fragment := fmt.Sprintf("%s(%s,%s,%s,%s, ?,?,?,?) = 1",
		funcNameIntersectsWithLine,
		quoteIdent(colTilesInfoTileX), quoteIdent(colTilesInfoTileY),
		quoteIdent(colTilesInfoTileW), quoteIdent(colTilesInfoTileH))
	return fragment, []interface{}{x1, y1, x2, y2}
}

// sqlSpatialLineCondition applies the registered segment predicate to
// the min/max columns of the 2D R-tree.
func sqlSpatialLineCondition(alias string, x1, y1, x2, y2 float64) (string, []interface{}) {
	prefix := ""
	if alias != "" {
		prefix = alias + "."
	}
	fragment := fmt.Sprintf("%s(?,?,?,?, %s%s,%s%s,%s%s,%s%s) = 1",
		funcNameLineThroughPoints2d,
		prefix, quoteIdent(colSpatialMinX), prefix, quoteIdent(colSpatialMaxX),
		prefix, quoteIdent(colSpatialMinY), prefix, quoteIdent(colSpatialMaxY))
	return fragment, []interface{}{x1, y1, x2, y2}
}
