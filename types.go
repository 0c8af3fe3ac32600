package mosaicdb

import (
	"math"

	"github.com/mosaicdb/mosaicdb/geom"
)

// Dimension is a coordinate axis of the document's dimension space,
// identified by a single ASCII letter (e.g. 'C' for channel, 'T' for
// time, 'M' for mosaic index).
type Dimension byte

// IsValid reports whether the dimension character is acceptable: it must
// be an ASCII letter. The lowercase letters 'x', 'y' and 'z' are rejected
// because the logical-position columns own those axis names.
func (d Dimension) IsValid() bool {
	c := byte(d)
	if c == 'x' || c == 'y' || c == 'z' {
		return false
	}
	return (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z')
}

// TileCoordinate maps each of the document's declared dimensions to a
// coordinate value. A tile carries exactly the declared dimensions.
type TileCoordinate map[Dimension]int32

// DocumentType discriminates between the 2D tile and 3D brick document
// models.
type DocumentType int

const (
	// DocumentTypeInvalid is the zero value.
	DocumentTypeInvalid DocumentType = iota
	// DocumentTypeImage2D is a document of 2D tiles.
	DocumentTypeImage2D
	// DocumentTypeImage3D is a document of 3D bricks.
	DocumentTypeImage3D
)

func (t DocumentType) String() string {
	switch t {
	case DocumentTypeImage2D:
		return "Tiles2D"
	case DocumentTypeImage3D:
		return "Bricks3D"
	default:
		return "Invalid"
	}
}

// DataType describes how the binary blob associated with a tile is to be
// interpreted. The engine treats the payload as opaque; the tag travels
// with it.
type DataType uint8

const (
	// DataTypeZero means the tile is all-zero pixels and no payload is
	// stored.
	DataTypeZero DataType = 0
	// DataTypeUncompressedBitmap is an uncompressed 2D bitmap.
	DataTypeUncompressedBitmap DataType = 1
	// DataTypeJpgXrCompressedBitmap is a JPEG-XR compressed bitmap.
	DataTypeJpgXrCompressedBitmap DataType = 2
	// DataTypeUncompressedBrick is an uncompressed 3D brick.
	DataTypeUncompressedBrick DataType = 32
	// DataTypeCustom is an application-defined payload, passed through
	// unchanged.
	DataTypeCustom DataType = 255
)

// StorageType describes where the payload bytes live.
type StorageType uint8

const (
	// StorageTypeInvalid is the zero value.
	StorageTypeInvalid StorageType = 0
	// StorageTypeBlobInDatabase stores the payload in the blob table of
	// the document file.
	StorageTypeBlobInDatabase StorageType = 1
	// StorageTypeBlobExternal is reserved for payloads kept outside the
	// document file; it is not implemented.
	StorageTypeBlobExternal StorageType = 2
)

// Well-known pixel type codes. The engine never interprets pixel data;
// these constants only give names to commonly used values of the opaque
// 8-bit pixel type.
const (
	PixelTypeUnknown     uint8 = 0
	PixelTypeGray8       uint8 = 1
	PixelTypeGray16      uint8 = 2
	PixelTypeBgr24       uint8 = 3
	PixelTypeBgr48       uint8 = 4
	PixelTypeGray32Float uint8 = 5
)

// LogicalPosition places a tile in the continuous 2D pixel plane: an
// axis-aligned rectangle plus the pyramid level.
type LogicalPosition struct {
	PosX         float64
	PosY         float64
	Width        float64
	Height       float64
	PyramidLevel int
}

// Equal compares two logical positions; the float fields are compared
// with the default relative epsilon.
func (p LogicalPosition) Equal(other LogicalPosition) bool {
	return p.PyramidLevel == other.PyramidLevel &&
		geom.ApproximatelyEqual(p.PosX, other.PosX, geom.DefaultEpsilon) &&
		geom.ApproximatelyEqual(p.PosY, other.PosY, geom.DefaultEpsilon) &&
		geom.ApproximatelyEqual(p.Width, other.Width, geom.DefaultEpsilon) &&
		geom.ApproximatelyEqual(p.Height, other.Height, geom.DefaultEpsilon)
}

// LogicalPosition3D places a brick in the continuous 3D volume: an
// axis-aligned cuboid plus the pyramid level.
type LogicalPosition3D struct {
	PosX         float64
	PosY         float64
	PosZ         float64
	Width        float64
	Height       float64
	Depth        float64
	PyramidLevel int
}

// Equal compares two logical positions; the float fields are compared
// with the default relative epsilon.
func (p LogicalPosition3D) Equal(other LogicalPosition3D) bool {
	return p.PyramidLevel == other.PyramidLevel &&
		geom.ApproximatelyEqual(p.PosX, other.PosX, geom.DefaultEpsilon) &&
		geom.ApproximatelyEqual(p.PosY, other.PosY, geom.DefaultEpsilon) &&
		geom.ApproximatelyEqual(p.PosZ, other.PosZ, geom.DefaultEpsilon) &&
		geom.ApproximatelyEqual(p.Width, other.Width, geom.DefaultEpsilon) &&
		geom.ApproximatelyEqual(p.Height, other.Height, geom.DefaultEpsilon) &&
		geom.ApproximatelyEqual(p.Depth, other.Depth, geom.DefaultEpsilon)
}

// TileBaseInfo is the base information of a tile bitmap: its pixel
// extent and the opaque pixel type code.
type TileBaseInfo struct {
	PixelWidth  uint32
	PixelHeight uint32
	PixelType   uint8
}

// BrickBaseInfo is the base information of a brick bitmap.
type BrickBaseInfo struct {
	PixelWidth  uint32
	PixelHeight uint32
	PixelDepth  uint32
	PixelType   uint8
}

// TileBlobInfo is what the database can say about a tile's payload
// without decoding it.
type TileBlobInfo struct {
	Base     TileBaseInfo
	DataType DataType
}

// BrickBlobInfo is what the database can say about a brick's payload
// without decoding it.
type BrickBlobInfo struct {
	Base     BrickBaseInfo
	DataType DataType
}

// Int32Interval is a closed interval of int32 values. An interval whose
// minimum exceeds its maximum is invalid, which is how "no data" is
// signaled.
type Int32Interval struct {
	Minimum int32
	Maximum int32
}

// InvalidInt32Interval returns the canonical invalid interval.
func InvalidInt32Interval() Int32Interval {
	return Int32Interval{Minimum: math.MaxInt32, Maximum: math.MinInt32}
}

// IsValid reports whether the interval contains at least one value.
func (i Int32Interval) IsValid() bool {
	return i.Minimum <= i.Maximum
}

// DoubleInterval is a closed interval of float64 values. An interval
// whose minimum exceeds its maximum is invalid.
type DoubleInterval struct {
	Minimum float64
	Maximum float64
}

// InvalidDoubleInterval returns the canonical invalid interval.
func InvalidDoubleInterval() DoubleInterval {
	return DoubleInterval{Minimum: math.MaxFloat64, Maximum: -math.MaxFloat64}
}

// IsValid reports whether the interval contains at least one value.
func (i DoubleInterval) IsValid() bool {
	return i.Minimum <= i.Maximum
}
