package mosaicdb

import (
	"database/sql"
	"fmt"
	"strings"
)

// discoverSchema reconstructs the schema configuration of an existing
// document from its descriptor tables and the actual table layout. An
// unknown or inconsistent layout is rejected.
func discoverSchema(conn *dbConn) (*SchemaConfig, error) {
	docInfo, err := readDocInfo(conn)
	if err != nil {
		return nil, err
	}

	version, ok := docInfo[docInfoKeyVersion]
	if !ok {
		return nil, &InvariantViolationError{Message: "document has no version descriptor"}
	}
	if version != documentVersion {
		return nil, &InvariantViolationError{Message: fmt.Sprintf("unsupported document version %q", version)}
	}

	var docType DocumentType
	switch docInfo[docInfoKeyDocType] {
	case DocumentTypeImage2D.String():
		docType = DocumentTypeImage2D
	case DocumentTypeImage3D.String():
		docType = DocumentTypeImage3D
	default:
		return nil, &InvariantViolationError{Message: fmt.Sprintf("unsupported document type %q", docInfo[docInfoKeyDocType])}
	}

	useSpatialIndex := docInfo[docInfoKeyUseSpatialIndex] == "1"
	useBlobTable := docInfo[docInfoKeyUseBlobTable] == "1"

	dimensions, err := readDeclaredDimensions(conn)
	if err != nil {
		return nil, err
	}

	cfg := newSchemaConfig(docType, dimensions, nil, useSpatialIndex, useBlobTable)

	if err := verifyTilesInfoLayout(conn, cfg); err != nil {
		return nil, err
	}
	if err := discoverDimensionIndices(conn, cfg); err != nil {
		return nil, err
	}
	if useSpatialIndex {
		exists, err := conn.tableExists(cfg.tableSpatialIndex)
		if err != nil {
			return nil, err
		}
		if !exists {
			return nil, &InvariantViolationError{Message: "descriptor declares a spatial index but the table is missing"}
		}
	}
	if useBlobTable {
		exists, err := conn.tableExists(cfg.tableBlobs)
		if err != nil {
			return nil, err
		}
		if !exists {
			return nil, &InvariantViolationError{Message: "descriptor declares a blob table but the table is missing"}
		}
	}

	return cfg, nil
}

func readDocInfo(conn *dbConn) (map[string]string, error) {
	query := fmt.Sprintf("SELECT %s, %s FROM %s",
		quoteIdent("Key"), quoteIdent("ValueString"), quoteIdent(defaultTableDocInfo))
	rows, err := conn.query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	docInfo := make(map[string]string)
	for rows.Next() {
		var key string
		var value sql.NullString
		if err := rows.Scan(&key, &value); err != nil {
			return nil, wrapDatabaseError("scanning document descriptor", err)
		}
		docInfo[key] = value.String
	}
	if err := rows.Err(); err != nil {
		return nil, wrapDatabaseError("iterating document descriptor", err)
	}
	return docInfo, nil
}

func readDeclaredDimensions(conn *dbConn) ([]Dimension, error) {
	query := fmt.Sprintf("SELECT %s FROM %s ORDER BY %s",
		quoteIdent("Dimension"), quoteIdent(defaultTableDimensions), quoteIdent("Dimension"))
	rows, err := conn.query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var dimensions []Dimension
	for rows.Next() {
		var value string
		if err := rows.Scan(&value); err != nil {
			return nil, wrapDatabaseError("scanning dimensions descriptor", err)
		}
		if len(value) != 1 || !Dimension(value[0]).IsValid() {
			return nil, &InvariantViolationError{Message: fmt.Sprintf("invalid dimension %q in descriptor", value)}
		}
		dimensions = append(dimensions, Dimension(value[0]))
	}
	if err := rows.Err(); err != nil {
		return nil, wrapDatabaseError("iterating dimensions descriptor", err)
	}
	return dimensions, nil
}

// verifyTilesInfoLayout checks that the dimension columns of the
// tiles-info table are exactly the declared dimensions and that the
// logical-position columns match the dimensionality.
func verifyTilesInfoLayout(conn *dbConn, cfg *SchemaConfig) error {
	columns, err := conn.tableColumns(cfg.TableTilesInfo())
	if err != nil {
		return err
	}
	if len(columns) == 0 {
		return &InvariantViolationError{Message: "tiles-info table is missing"}
	}

	columnSet := make(map[string]bool, len(columns))
	for _, c := range columns {
		columnSet[c.Name] = true
	}

	declared := make(map[string]bool)
	for _, dim := range cfg.Dimensions() {
		column := cfg.DimensionColumn(dim)
		declared[column] = true
		if !columnSet[column] {
			return &InvariantViolationError{Message: fmt.Sprintf("declared dimension column %q is missing from the tiles-info table", column)}
		}
	}
	for _, c := range columns {
		if strings.HasPrefix(c.Name, dimensionColumnPrefix) && !declared[c.Name] {
			return &InvariantViolationError{Message: fmt.Sprintf("tiles-info table has undeclared dimension column %q", c.Name)}
		}
	}

	required := []string{colTilesInfoPk, colTilesInfoTileX, colTilesInfoTileY, colTilesInfoTileW,
		colTilesInfoTileH, colTilesInfoPyramidLevel, colTilesInfoTileDataID}
	if cfg.Is3D() {
		required = append(required, colTilesInfoTileZ, colTilesInfoTileD)
	}
	for _, name := range required {
		if !columnSet[name] {
			return &InvariantViolationError{Message: fmt.Sprintf("tiles-info table is missing column %q", name)}
		}
	}
	if !cfg.Is3D() && (columnSet[colTilesInfoTileZ] || columnSet[colTilesInfoTileD]) {
		return &InvariantViolationError{Message: "2D document carries 3D position columns"}
	}

	return nil
}

// discoverDimensionIndices marks the dimensions for which a
// per-dimension index is present.
func discoverDimensionIndices(conn *dbConn, cfg *SchemaConfig) error {
	indices, err := conn.tableIndices(cfg.TableTilesInfo())
	if err != nil {
		return err
	}

	indexSet := make(map[string]bool, len(indices))
	for _, name := range indices {
		indexSet[name] = true
	}
	for _, dim := range cfg.Dimensions() {
		if indexSet[cfg.dimensionIndexName(dim)] {
			cfg.indexedDimensions[dim] = true
		}
	}
	return nil
}
