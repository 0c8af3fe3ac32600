package mosaicdb

import (
	"os"

	log "github.com/sirupsen/logrus"
)

// HostingEnvironment is the document's link to its host: the fatal-error
// hook invoked when an internal invariant is found broken. The default
// hook logs and terminates the process.
type HostingEnvironment struct {
	// FatalError is called with a broken-invariant description. It is
	// expected not to return.
	FatalError func(message string)
}

func defaultHostingEnvironment() *HostingEnvironment {
	return &HostingEnvironment{
		FatalError: func(message string) {
			log.Fatalf("fatal invariant violation: %s", message)
		},
	}
}

func (h *HostingEnvironment) reportFatal(message string) {
	if h != nil && h.FatalError != nil {
		h.FatalError(message)
		return
	}
	log.Fatalf("fatal invariant violation: %s", message)
}

// CreateOptions describes a document to be created.
type CreateOptions struct {
	// Filename is the path of the document file to create.
	Filename string
	// DocumentType selects tiles (2D) or bricks (3D); the default is 2D.
	DocumentType DocumentType
	// Dimensions is the set of dimensions every tile carries. The set is
	// immutable after creation.
	Dimensions []Dimension
	// IndexedDimensions lists the dimensions which get a per-dimension
	// index; each must also appear in Dimensions.
	IndexedDimensions []Dimension
	// UseSpatialIndex enables the R-tree spatial index.
	UseSpatialIndex bool
	// CreateBlobTable enables the blob table; without it only zero tiles
	// can be stored.
	CreateBlobTable bool
	// OverwriteExisting truncates an existing file instead of failing.
	OverwriteExisting bool
	// BlobCacheSize enables the read-side payload cache when positive
	// (number of payloads kept).
	BlobCacheSize int
	// Environment hosts the fatal-error hook; nil selects the default.
	Environment *HostingEnvironment
}

// OpenOptions describes how to open an existing document.
type OpenOptions struct {
	// Filename is the path of the document file.
	Filename string
	// ReadOnly opens the file without write access; writers cannot be
	// obtained from such a document.
	ReadOnly bool
	// BlobCacheSize enables the read-side payload cache when positive.
	BlobCacheSize int
	// Environment hosts the fatal-error hook; nil selects the default.
	Environment *HostingEnvironment
}

// Document is a handle to one open document file. It owns the driver
// connection and yields the read/write capability values matching its
// dimensionality.
type Document struct {
	conn        *dbConn
	cfg         *SchemaConfig
	environment *HostingEnvironment
	blobCache   *blobCache
	readOnly    bool
}

func validateDimensions(dimensions []Dimension) error {
	if len(dimensions) == 0 {
		return invalidArgumentf("at least one dimension must be declared")
	}
	seen := make(map[Dimension]bool, len(dimensions))
	for _, d := range dimensions {
		if !d.IsValid() {
			return invalidArgumentf("invalid dimension character (0x%02x)", byte(d))
		}
		if seen[d] {
			return invalidArgumentf("dimension '%c' declared twice", byte(d))
		}
		seen[d] = true
	}
	return nil
}

// CreateNewDocument creates a new document file, bootstraps the schema
// per the options and returns a handle to the empty document.
func CreateNewDocument(options *CreateOptions) (*Document, error) {
	if options == nil || options.Filename == "" {
		return nil, invalidArgumentf("a filename is required")
	}

	docType := options.DocumentType
	if docType == DocumentTypeInvalid {
		docType = DocumentTypeImage2D
	}
	if docType != DocumentTypeImage2D && docType != DocumentTypeImage3D {
		return nil, invalidArgumentf("invalid document type (%d)", docType)
	}

	if err := validateDimensions(options.Dimensions); err != nil {
		return nil, err
	}
	declared := make(map[Dimension]bool, len(options.Dimensions))
	for _, d := range options.Dimensions {
		declared[d] = true
	}
	for _, d := range options.IndexedDimensions {
		if !declared[d] {
			return nil, invalidArgumentf("indexed dimension '%c' is not declared", byte(d))
		}
	}

	if _, err := os.Stat(options.Filename); err == nil {
		if !options.OverwriteExisting {
			return nil, invalidArgumentf("file %q already exists", options.Filename)
		}
		if err := os.Remove(options.Filename); err != nil {
			return nil, invalidArgumentf("cannot overwrite %q: %v", options.Filename, err)
		}
	}

	registerDriver()
	conn, err := openConn(options.Filename, false, true)
	if err != nil {
		return nil, err
	}

	cfg := newSchemaConfig(docType, options.Dimensions, options.IndexedDimensions, options.UseSpatialIndex, options.CreateBlobTable)

	if err := conn.beginTransaction(); err != nil {
		conn.close()
		return nil, err
	}
	if err := createSchema(conn, cfg); err != nil {
		conn.endTransaction(false)
		conn.close()
		return nil, err
	}
	if err := conn.endTransaction(true); err != nil {
		conn.close()
		return nil, err
	}

	log.Infof("Created document %s (%s, dimensions=%s)", options.Filename, docType, dimensionsString(cfg.Dimensions()))
	return newDocument(conn, cfg, options.Environment, options.BlobCacheSize, false)
}

// OpenExistingDocument opens a document file, reconstructs its schema
// configuration from the descriptor tables and returns a handle.
func OpenExistingDocument(options *OpenOptions) (*Document, error) {
	if options == nil || options.Filename == "" {
		return nil, invalidArgumentf("a filename is required")
	}
	if _, err := os.Stat(options.Filename); err != nil {
		return nil, invalidArgumentf("cannot open %q: %v", options.Filename, err)
	}

	registerDriver()
	conn, err := openConn(options.Filename, options.ReadOnly, false)
	if err != nil {
		return nil, err
	}

	cfg, err := discoverSchema(conn)
	if err != nil {
		conn.close()
		environment := options.Environment
		if environment == nil {
			environment = defaultHostingEnvironment()
		}
		if _, fatal := err.(*InvariantViolationError); fatal {
			environment.reportFatal(err.Error())
		}
		return nil, err
	}

	log.Infof("Opened document %s (%s, dimensions=%s, readOnly=%v)", options.Filename, cfg.DocumentType(), dimensionsString(cfg.Dimensions()), options.ReadOnly)
	return newDocument(conn, cfg, options.Environment, options.BlobCacheSize, options.ReadOnly)
}

func newDocument(conn *dbConn, cfg *SchemaConfig, environment *HostingEnvironment, blobCacheSize int, readOnly bool) (*Document, error) {
	if environment == nil {
		environment = defaultHostingEnvironment()
	}

	var cache *blobCache
	if blobCacheSize > 0 {
		var err error
		cache, err = newBlobCache(blobCacheSize)
		if err != nil {
			conn.close()
			return nil, err
		}
	}

	return &Document{
		conn:        conn,
		cfg:         cfg,
		environment: environment,
		blobCache:   cache,
		readOnly:    readOnly,
	}, nil
}

func dimensionsString(dims []Dimension) string {
	b := make([]byte, len(dims))
	for i, d := range dims {
		b[i] = byte(d)
	}
	return string(b)
}

// Close releases the document's connection. The document and every
// reader/writer obtained from it must not be used afterwards.
func (d *Document) Close() error {
	return d.conn.close()
}

// Type returns the dimensionality of the document.
func (d *Document) Type() DocumentType {
	return d.cfg.DocumentType()
}

// Schema returns the immutable schema configuration.
func (d *Document) Schema() *SchemaConfig {
	return d.cfg
}

// BlobCacheStats returns statistics of the read-side payload cache. The
// zero value is returned when the cache is disabled.
func (d *Document) BlobCacheStats() BlobCacheStats {
	return d.blobCache.stats()
}

// Reader2D returns the read surface of a 2D document.
func (d *Document) Reader2D() (*Reader2D, error) {
	if d.cfg.DocumentType() != DocumentTypeImage2D {
		return nil, invalidArgumentf("document is not a 2D tile document")
	}
	return &Reader2D{doc: d}, nil
}

// Writer2D returns the write surface of a 2D document.
func (d *Document) Writer2D() (*Writer2D, error) {
	if d.cfg.DocumentType() != DocumentTypeImage2D {
		return nil, invalidArgumentf("document is not a 2D tile document")
	}
	if d.readOnly {
		return nil, invalidArgumentf("document is opened read-only")
	}
	return &Writer2D{doc: d}, nil
}

// Reader3D returns the read surface of a 3D document.
func (d *Document) Reader3D() (*Reader3D, error) {
	if d.cfg.DocumentType() != DocumentTypeImage3D {
		return nil, invalidArgumentf("document is not a 3D brick document")
	}
	return &Reader3D{doc: d}, nil
}

// Writer3D returns the write surface of a 3D document.
func (d *Document) Writer3D() (*Writer3D, error) {
	if d.cfg.DocumentType() != DocumentTypeImage3D {
		return nil, invalidArgumentf("document is not a 3D brick document")
	}
	if d.readOnly {
		return nil, invalidArgumentf("document is opened read-only")
	}
	return &Writer3D{doc: d}, nil
}

// MetadataWriter returns the metadata write surface.
func (d *Document) MetadataWriter() (*MetadataWriter, error) {
	if d.readOnly {
		return nil, invalidArgumentf("document is opened read-only")
	}
	return &MetadataWriter{doc: d}, nil
}

// MetadataReader returns the metadata read surface.
func (d *Document) MetadataReader() *MetadataReader {
	return &MetadataReader{doc: d}
}
