package mosaicdb

import (
	"fmt"
	"strings"
)

// createSchema executes the DDL for a fresh document and writes the
// descriptor rows. It runs inside the implicit statement-level
// transactions of the store; the factory wraps it in one document-level
// transaction.
func createSchema(conn *dbConn, cfg *SchemaConfig) error {
	statements := []string{
		sqlCreateDocInfoTable(cfg),
		sqlCreateDimensionsTable(cfg),
		sqlCreateTilesDataTable(cfg),
		sqlCreateTilesInfoTable(cfg),
		sqlCreateMetadataTable(cfg),
	}

	if cfg.UseBlobTable() {
		statements = append(statements, sqlCreateBlobsTable(cfg))
	}
	if cfg.UseSpatialIndex() {
		statements = append(statements, sqlCreateSpatialIndexTable(cfg))
	}
	for _, dim := range cfg.Dimensions() {
		if cfg.IsDimensionIndexed(dim) {
			statements = append(statements, sqlCreateDimensionIndex(cfg, dim))
		}
	}

	for _, stmt := range statements {
		if err := conn.exec(stmt); err != nil {
			return err
		}
	}

	return writeDescriptorRows(conn, cfg)
}

func sqlCreateDocInfoTable(cfg *SchemaConfig) string {
	return fmt.Sprintf("CREATE TABLE %s (%s TEXT PRIMARY KEY, %s TEXT)",
		quoteIdent(cfg.TableDocInfo()), quoteIdent("Key"), quoteIdent("ValueString"))
}

func sqlCreateDimensionsTable(cfg *SchemaConfig) string {
	return fmt.Sprintf("CREATE TABLE %s (%s TEXT(1) PRIMARY KEY)",
		quoteIdent(cfg.TableDimensions()), quoteIdent("Dimension"))
}

func sqlCreateTilesInfoTable(cfg *SchemaConfig) string {
	var b strings.Builder
	fmt.Fprintf(&b, "CREATE TABLE %s (", quoteIdent(cfg.TableTilesInfo()))
	fmt.Fprintf(&b, "%s INTEGER PRIMARY KEY", quoteIdent(colTilesInfoPk))
	for _, dim := range cfg.Dimensions() {
		fmt.Fprintf(&b, ", %s INTEGER NOT NULL", quoteIdent(cfg.DimensionColumn(dim)))
	}
	fmt.Fprintf(&b, ", %s REAL NOT NULL", quoteIdent(colTilesInfoTileX))
	fmt.Fprintf(&b, ", %s REAL NOT NULL", quoteIdent(colTilesInfoTileY))
	if cfg.Is3D() {
		fmt.Fprintf(&b, ", %s REAL NOT NULL", quoteIdent(colTilesInfoTileZ))
	}
	fmt.Fprintf(&b, ", %s REAL NOT NULL", quoteIdent(colTilesInfoTileW))
	fmt.Fprintf(&b, ", %s REAL NOT NULL", quoteIdent(colTilesInfoTileH))
	if cfg.Is3D() {
		fmt.Fprintf(&b, ", %s REAL NOT NULL", quoteIdent(colTilesInfoTileD))
	}
	fmt.Fprintf(&b, ", %s INTEGER NOT NULL", quoteIdent(colTilesInfoPyramidLevel))
	fmt.Fprintf(&b, ", %s INTEGER NOT NULL", quoteIdent(colTilesInfoTileDataID))
	b.WriteString(")")
	return b.String()
}

func sqlCreateTilesDataTable(cfg *SchemaConfig) string {
	var b strings.Builder
	fmt.Fprintf(&b, "CREATE TABLE %s (", quoteIdent(cfg.TableTilesData()))
	fmt.Fprintf(&b, "%s INTEGER PRIMARY KEY", quoteIdent(colTilesDataPk))
	fmt.Fprintf(&b, ", %s INTEGER NOT NULL", quoteIdent(colTilesDataPixelWidth))
	fmt.Fprintf(&b, ", %s INTEGER NOT NULL", quoteIdent(colTilesDataPixelHeight))
	if cfg.Is3D() {
		fmt.Fprintf(&b, ", %s INTEGER NOT NULL", quoteIdent(colTilesDataPixelDepth))
	}
	fmt.Fprintf(&b, ", %s INTEGER NOT NULL", quoteIdent(colTilesDataPixelType))
	fmt.Fprintf(&b, ", %s INTEGER NOT NULL", quoteIdent(colTilesDataTileDataType))
	fmt.Fprintf(&b, ", %s INTEGER NOT NULL", quoteIdent(colTilesDataStorageType))
	fmt.Fprintf(&b, ", %s INTEGER", quoteIdent(colTilesDataBinDataID))
	b.WriteString(")")
	return b.String()
}

func sqlCreateBlobsTable(cfg *SchemaConfig) string {
	name, _ := cfg.TableBlobs()
	return fmt.Sprintf("CREATE TABLE %s (%s INTEGER PRIMARY KEY, %s BLOB)",
		quoteIdent(name), quoteIdent(colBlobsPk), quoteIdent(colBlobsData))
}

func sqlCreateSpatialIndexTable(cfg *SchemaConfig) string {
	name, _ := cfg.TableSpatialIndex()
	columns := []string{
		quoteIdent(colSpatialPk),
		quoteIdent(colSpatialMinX), quoteIdent(colSpatialMaxX),
		quoteIdent(colSpatialMinY), quoteIdent(colSpatialMaxY),
	}
	if cfg.Is3D() {
		columns = append(columns, quoteIdent(colSpatialMinZ), quoteIdent(colSpatialMaxZ))
	}
	return fmt.Sprintf("CREATE VIRTUAL TABLE %s USING rtree(%s)",
		quoteIdent(name), strings.Join(columns, ","))
}

func sqlCreateMetadataTable(cfg *SchemaConfig) string {
	var b strings.Builder
	fmt.Fprintf(&b, "CREATE TABLE %s (", quoteIdent(cfg.TableMetadata()))
	fmt.Fprintf(&b, "%s INTEGER PRIMARY KEY", quoteIdent(colMetadataPk))
	fmt.Fprintf(&b, ", %s INTEGER", quoteIdent(colMetadataParentPk))
	fmt.Fprintf(&b, ", %s TEXT NOT NULL", quoteIdent(colMetadataName))
	fmt.Fprintf(&b, ", %s INTEGER NOT NULL", quoteIdent(colMetadataTypeDiscr))
	fmt.Fprintf(&b, ", %s INTEGER", quoteIdent(colMetadataValueInt))
	fmt.Fprintf(&b, ", %s REAL", quoteIdent(colMetadataValueDouble))
	fmt.Fprintf(&b, ", %s TEXT", quoteIdent(colMetadataValueString))
	fmt.Fprintf(&b, ", UNIQUE(%s, %s)", quoteIdent(colMetadataParentPk), quoteIdent(colMetadataName))
	b.WriteString(")")
	return b.String()
}

func sqlCreateDimensionIndex(cfg *SchemaConfig, dim Dimension) string {
	return fmt.Sprintf("CREATE INDEX %s ON %s (%s)",
		quoteIdent(cfg.dimensionIndexName(dim)),
		quoteIdent(cfg.TableTilesInfo()),
		quoteIdent(cfg.DimensionColumn(dim)))
}

func writeDescriptorRows(conn *dbConn, cfg *SchemaConfig) error {
	insertDocInfo := fmt.Sprintf("INSERT INTO %s (%s, %s) VALUES (?, ?)",
		quoteIdent(cfg.TableDocInfo()), quoteIdent("Key"), quoteIdent("ValueString"))

	boolString := func(v bool) string {
		if v {
			return "1"
		}
		return "0"
	}

	rows := [][2]string{
		{docInfoKeyVersion, documentVersion},
		{docInfoKeyDocType, cfg.DocumentType().String()},
		{docInfoKeyUseSpatialIndex, boolString(cfg.UseSpatialIndex())},
		{docInfoKeyUseBlobTable, boolString(cfg.UseBlobTable())},
	}
	for _, row := range rows {
		if err := conn.exec(insertDocInfo, row[0], row[1]); err != nil {
			return err
		}
	}

	insertDimension := fmt.Sprintf("INSERT INTO %s (%s) VALUES (?)",
		quoteIdent(cfg.TableDimensions()), quoteIdent("Dimension"))
	for _, dim := range cfg.Dimensions() {
		if err := conn.exec(insertDimension, string(rune(dim))); err != nil {
			return err
		}
	}

	return nil
}
