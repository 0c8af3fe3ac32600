package mosaicdb

import (
	"fmt"
	"math"
	"strings"
)

// validateCoordinate checks that the coordinate covers the declared
// dimension set exactly: no dimension missing, none extra.
func validateCoordinate(coord TileCoordinate, cfg *SchemaConfig) error {
	for dim := range coord {
		if !cfg.IsDimensionValid(dim) {
			return invalidArgumentf("dimension '%c' is not used in this document", byte(dim))
		}
	}
	for _, dim := range cfg.Dimensions() {
		if _, ok := coord[dim]; !ok {
			return invalidArgumentf("coordinate is missing dimension '%c'", byte(dim))
		}
	}
	return nil
}

func validateFinite(name string, v float64) error {
	if math.IsNaN(v) {
		return invalidArgumentf("%s must not be NaN", name)
	}
	if math.IsInf(v, 0) {
		return invalidArgumentf("%s must be finite", name)
	}
	return nil
}

func validateExtent(name string, v float64) error {
	if err := validateFinite(name, v); err != nil {
		return err
	}
	if v < 0 {
		return invalidArgumentf("%s must not be negative", name)
	}
	return nil
}

func validateStorage(dataType DataType, storageType StorageType, data BlobSource, cfg *SchemaConfig) error {
	switch dataType {
	case DataTypeZero, DataTypeUncompressedBitmap, DataTypeJpgXrCompressedBitmap, DataTypeUncompressedBrick, DataTypeCustom:
	default:
		return invalidArgumentf("invalid data type (%d)", dataType)
	}

	if storageType != StorageTypeBlobInDatabase {
		return invalidArgumentf("unsupported storage type (%d)", storageType)
	}

	if dataType != DataTypeZero {
		if data == nil {
			return invalidArgumentf("a data source is required for non-zero tiles")
		}
		if !cfg.UseBlobTable() {
			return invalidArgumentf("document has no blob table")
		}
	}

	return nil
}

// runInTransaction runs fn inside the pending transaction if the caller
// has opened one, otherwise inside an implicit per-call transaction. A
// failure inside a caller-opened transaction leaves that transaction
// open; the caller decides its fate.
func runInTransaction(conn *dbConn, fn func() error) error {
	if conn.isTransactionPending() {
		return fn()
	}

	if err := conn.beginTransaction(); err != nil {
		return err
	}
	if err := fn(); err != nil {
		if rollbackErr := conn.endTransaction(false); rollbackErr != nil {
			return fmt.Errorf("%w (rollback also failed: %v)", err, rollbackErr)
		}
		return err
	}
	return conn.endTransaction(true)
}

// insertBlob stores the payload and returns the blob pk, or (0, false)
// when the tile is a zero tile and no blob row is written.
func insertBlob(conn *dbConn, cfg *SchemaConfig, dataType DataType, data BlobSource) (int64, bool, error) {
	if dataType == DataTypeZero {
		return 0, false, nil
	}

	blobTable, err := cfg.TableBlobs()
	if err != nil {
		return 0, false, err
	}

	payload := data.Bytes()
	stmt := fmt.Sprintf("INSERT INTO %s (%s) VALUES (?)",
		quoteIdent(blobTable), quoteIdent(colBlobsData))
	pk, err := conn.execReturningRowID(stmt, payload)
	if err != nil {
		return 0, false, err
	}
	return pk, true, nil
}

func sqlInsertTilesData(cfg *SchemaConfig) string {
	columns := []string{
		quoteIdent(colTilesDataPixelWidth),
		quoteIdent(colTilesDataPixelHeight),
	}
	if cfg.Is3D() {
		columns = append(columns, quoteIdent(colTilesDataPixelDepth))
	}
	columns = append(columns,
		quoteIdent(colTilesDataPixelType),
		quoteIdent(colTilesDataTileDataType),
		quoteIdent(colTilesDataStorageType),
		quoteIdent(colTilesDataBinDataID))
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		quoteIdent(cfg.TableTilesData()),
		strings.Join(columns, ","),
		placeholders(len(columns)))
}

func sqlInsertTilesInfo(cfg *SchemaConfig) string {
	var columns []string
	for _, dim := range cfg.Dimensions() {
		columns = append(columns, quoteIdent(cfg.DimensionColumn(dim)))
	}
	columns = append(columns, quoteIdent(colTilesInfoTileX), quoteIdent(colTilesInfoTileY))
	if cfg.Is3D() {
		columns = append(columns, quoteIdent(colTilesInfoTileZ))
	}
	columns = append(columns, quoteIdent(colTilesInfoTileW), quoteIdent(colTilesInfoTileH))
	if cfg.Is3D() {
		columns = append(columns, quoteIdent(colTilesInfoTileD))
	}
	columns = append(columns, quoteIdent(colTilesInfoPyramidLevel), quoteIdent(colTilesInfoTileDataID))
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		quoteIdent(cfg.TableTilesInfo()),
		strings.Join(columns, ","),
		placeholders(len(columns)))
}

func sqlInsertSpatialRow(cfg *SchemaConfig) (string, error) {
	spatialTable, err := cfg.TableSpatialIndex()
	if err != nil {
		return "", err
	}
	columns := []string{
		quoteIdent(colSpatialPk),
		quoteIdent(colSpatialMinX), quoteIdent(colSpatialMaxX),
		quoteIdent(colSpatialMinY), quoteIdent(colSpatialMaxY),
	}
	if cfg.Is3D() {
		columns = append(columns, quoteIdent(colSpatialMinZ), quoteIdent(colSpatialMaxZ))
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		quoteIdent(spatialTable),
		strings.Join(columns, ","),
		placeholders(len(columns))), nil
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

// coordinateValues returns the coordinate values in declared-dimension
// order for binding.
func coordinateValues(coord TileCoordinate, cfg *SchemaConfig) []interface{} {
	values := make([]interface{}, 0, len(coord))
	for _, dim := range cfg.Dimensions() {
		values = append(values, coord[dim])
	}
	return values
}
