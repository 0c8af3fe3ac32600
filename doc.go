// Package mosaicdb is a storage engine for large, multi-dimensional
// microscopy image collections. An image is decomposed into many small
// tiles (2D) or bricks (3D), each carrying a coordinate in an
// application-defined dimension space, a logical position in the
// continuous pixel plane, a pyramid level and an opaque payload. All of
// it is persisted in a single SQLite file, indexed for fast spatial and
// coordinate queries, and served through a small set of typed surfaces.
//
// A document is obtained from CreateNewDocument or OpenExistingDocument
// and yields reader/writer values matching its dimensionality, plus the
// metadata tree surfaces. Payloads travel through the BlobSource and
// BlobSink contracts and are never interpreted by the engine.
package mosaicdb
