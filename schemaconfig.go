package mosaicdb

import (
	"fmt"
	"sort"
)

// Default table names of the persisted layout. They are captured in the
// schema configuration so that every statement builder takes its
// identifiers from one place.
const (
	defaultTableTilesInfo    = "TILESINFO"
	defaultTableTilesData    = "TILESDATA"
	defaultTableBlobs        = "BLOBS"
	defaultTableSpatialIndex = "TILESSPATIALINDEX"
	defaultTableMetadata     = "METADATA"
	defaultTableDimensions   = "DIMENSIONS"
	defaultTableDocInfo      = "DOCINFO"

	dimensionColumnPrefix = "Dim_"
)

// Column roles of the tiles-info table.
const (
	colTilesInfoPk           = "Pk"
	colTilesInfoTileX        = "TileX"
	colTilesInfoTileY        = "TileY"
	colTilesInfoTileZ        = "TileZ"
	colTilesInfoTileW        = "TileW"
	colTilesInfoTileH        = "TileH"
	colTilesInfoTileD        = "TileD"
	colTilesInfoPyramidLevel = "PyramidLevel"
	colTilesInfoTileDataID   = "TileDataId"
)

// Column roles of the tiles-data table.
const (
	colTilesDataPk             = "Pk"
	colTilesDataPixelWidth     = "PixelWidth"
	colTilesDataPixelHeight    = "PixelHeight"
	colTilesDataPixelDepth     = "PixelDepth"
	colTilesDataPixelType      = "PixelType"
	colTilesDataTileDataType   = "TileDataType"
	colTilesDataStorageType    = "BinDataStorageType"
	colTilesDataBinDataID      = "BinDataId"
)

// Column roles of the blob table.
const (
	colBlobsPk   = "Pk"
	colBlobsData = "Data"
)

// Column roles of the spatial-index virtual table.
const (
	colSpatialPk   = "Pk"
	colSpatialMinX = "MinX"
	colSpatialMaxX = "MaxX"
	colSpatialMinY = "MinY"
	colSpatialMaxY = "MaxY"
	colSpatialMinZ = "MinZ"
	colSpatialMaxZ = "MaxZ"
)

// Column roles of the metadata table.
const (
	colMetadataPk            = "Pk"
	colMetadataParentPk      = "ParentPk"
	colMetadataName          = "Name"
	colMetadataTypeDiscr     = "TypeDiscriminator"
	colMetadataValueInt      = "ValueInt"
	colMetadataValueDouble   = "ValueDouble"
	colMetadataValueString   = "ValueString"
)

// Keys of the DOCINFO descriptor table.
const (
	docInfoKeyVersion         = "Version"
	docInfoKeyDocType         = "DocType"
	docInfoKeyUseSpatialIndex = "UseSpatialIndex"
	docInfoKeyUseBlobTable    = "UseBlobTable"

	documentVersion = "1"
)

// SchemaConfig carries everything the statement builders need to know
// about the persisted layout: table names, the declared dimension set,
// which dimensions are indexed and which optional features are present.
// It is built once at create/open time and immutable afterwards.
type SchemaConfig struct {
	docType           DocumentType
	dimensions        []Dimension
	indexedDimensions map[Dimension]bool
	useSpatialIndex   bool
	useBlobTable      bool

	tableTilesInfo    string
	tableTilesData    string
	tableBlobs        string
	tableSpatialIndex string
	tableMetadata     string
	tableDimensions   string
	tableDocInfo      string
}

func newSchemaConfig(docType DocumentType, dimensions []Dimension, indexed []Dimension, useSpatialIndex, useBlobTable bool) *SchemaConfig {
	dims := make([]Dimension, len(dimensions))
	copy(dims, dimensions)
	sort.Slice(dims, func(i, j int) bool { return dims[i] < dims[j] })

	indexedSet := make(map[Dimension]bool, len(indexed))
	for _, d := range indexed {
		indexedSet[d] = true
	}

	return &SchemaConfig{
		docType:           docType,
		dimensions:        dims,
		indexedDimensions: indexedSet,
		useSpatialIndex:   useSpatialIndex,
		useBlobTable:      useBlobTable,
		tableTilesInfo:    defaultTableTilesInfo,
		tableTilesData:    defaultTableTilesData,
		tableBlobs:        defaultTableBlobs,
		tableSpatialIndex: defaultTableSpatialIndex,
		tableMetadata:     defaultTableMetadata,
		tableDimensions:   defaultTableDimensions,
		tableDocInfo:      defaultTableDocInfo,
	}
}

// DocumentType returns the dimensionality of the document.
func (s *SchemaConfig) DocumentType() DocumentType {
	return s.docType
}

// Dimensions returns the declared dimensions in ascending order. The
// returned slice must not be modified.
func (s *SchemaConfig) Dimensions() []Dimension {
	return s.dimensions
}

// IsDimensionValid reports whether the dimension is declared by the
// document.
func (s *SchemaConfig) IsDimensionValid(d Dimension) bool {
	for _, dim := range s.dimensions {
		if dim == d {
			return true
		}
	}
	return false
}

// IsDimensionIndexed reports whether a per-dimension index was requested
// for the dimension.
func (s *SchemaConfig) IsDimensionIndexed(d Dimension) bool {
	return s.indexedDimensions[d]
}

// UseSpatialIndex reports whether the document maintains the R-tree
// spatial index.
func (s *SchemaConfig) UseSpatialIndex() bool {
	return s.useSpatialIndex
}

// UseBlobTable reports whether the document has a blob table.
func (s *SchemaConfig) UseBlobTable() bool {
	return s.useBlobTable
}

// Is3D reports whether the document stores bricks rather than tiles.
func (s *SchemaConfig) Is3D() bool {
	return s.docType == DocumentTypeImage3D
}

// TableTilesInfo returns the name of the tiles-info table.
func (s *SchemaConfig) TableTilesInfo() string {
	return s.tableTilesInfo
}

// TableTilesData returns the name of the tiles-data table.
func (s *SchemaConfig) TableTilesData() string {
	return s.tableTilesData
}

// TableBlobs returns the name of the blob table, or an error when the
// document was configured without one.
func (s *SchemaConfig) TableBlobs() (string, error) {
	if !s.useBlobTable {
		return "", invalidArgumentf("document has no blob table")
	}
	return s.tableBlobs, nil
}

// TableSpatialIndex returns the name of the spatial-index table, or an
// error when the document was configured without a spatial index.
func (s *SchemaConfig) TableSpatialIndex() (string, error) {
	if !s.useSpatialIndex {
		return "", invalidArgumentf("document has no spatial index")
	}
	return s.tableSpatialIndex, nil
}

// TableMetadata returns the name of the metadata table.
func (s *SchemaConfig) TableMetadata() string {
	return s.tableMetadata
}

// TableDimensions returns the name of the dimensions descriptor table.
func (s *SchemaConfig) TableDimensions() string {
	return s.tableDimensions
}

// TableDocInfo returns the name of the document descriptor table.
func (s *SchemaConfig) TableDocInfo() string {
	return s.tableDocInfo
}

// DimensionColumn returns the tiles-info column name holding the
// coordinate for the dimension.
func (s *SchemaConfig) DimensionColumn(d Dimension) string {
	return fmt.Sprintf("%s%c", dimensionColumnPrefix, byte(d))
}

// dimensionIndexName returns the name of the per-dimension index.
func (s *SchemaConfig) dimensionIndexName(d Dimension) string {
	return fmt.Sprintf("IDX_%s_%s%c", s.tableTilesInfo, dimensionColumnPrefix, byte(d))
}
