package mosaicdb

import (
	"os"
	"path/filepath"
	"testing"
)

func createTestDocument(t *testing.T, docType DocumentType, useSpatialIndex bool, dims ...Dimension) *Document {
	t.Helper()
	doc, err := CreateNewDocument(&CreateOptions{
		Filename:        filepath.Join(t.TempDir(), "test.mosaicdb"),
		DocumentType:    docType,
		Dimensions:      dims,
		UseSpatialIndex: useSpatialIndex,
		CreateBlobTable: true,
	})
	if err != nil {
		t.Fatalf("CreateNewDocument failed: %v", err)
	}
	t.Cleanup(func() { doc.Close() })
	return doc
}

func addTestTile(t *testing.T, writer *Writer2D, coord TileCoordinate, x, y, w, h float64, pyramidLevel int, payload []byte) int64 {
	t.Helper()
	dataType := DataTypeUncompressedBitmap
	var source BlobSource
	if payload == nil {
		dataType = DataTypeZero
	} else {
		source = BytesSource{Data: payload}
	}
	pk, err := writer.AddTile(coord,
		&LogicalPosition{PosX: x, PosY: y, Width: w, Height: h, PyramidLevel: pyramidLevel},
		&TileBaseInfo{PixelWidth: uint32(w), PixelHeight: uint32(h), PixelType: PixelTypeGray8},
		dataType, StorageTypeBlobInDatabase, source)
	if err != nil {
		t.Fatalf("AddTile failed: %v", err)
	}
	return pk
}

func collectPks(t *testing.T, run func(visit TileVisitor) error) []int64 {
	t.Helper()
	var pks []int64
	if err := run(func(pk int64) bool {
		pks = append(pks, pk)
		return true
	}); err != nil {
		t.Fatalf("enumeration failed: %v", err)
	}
	return pks
}

func pkSet(pks []int64) map[int64]bool {
	set := make(map[int64]bool, len(pks))
	for _, pk := range pks {
		set[pk] = true
	}
	return set
}

func TestCreateNewDocumentValidation(t *testing.T) {
	tests := []struct {
		name    string
		options *CreateOptions
	}{
		{"nil options", nil},
		{"no filename", &CreateOptions{Dimensions: []Dimension{'C'}}},
		{"no dimensions", &CreateOptions{Filename: "x.mosaicdb"}},
		{"invalid dimension char", &CreateOptions{Filename: "x.mosaicdb", Dimensions: []Dimension{'1'}}},
		{"reserved dimension x", &CreateOptions{Filename: "x.mosaicdb", Dimensions: []Dimension{'x'}}},
		{"duplicate dimension", &CreateOptions{Filename: "x.mosaicdb", Dimensions: []Dimension{'C', 'C'}}},
		{"undeclared indexed dimension", &CreateOptions{
			Filename:          "x.mosaicdb",
			Dimensions:        []Dimension{'C'},
			IndexedDimensions: []Dimension{'Z'},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.options != nil && tt.options.Filename != "" {
				tt.options.Filename = filepath.Join(t.TempDir(), tt.options.Filename)
			}
			_, err := CreateNewDocument(tt.options)
			if err == nil {
				t.Fatal("expected an error")
			}
			if _, ok := err.(*InvalidArgumentError); !ok {
				t.Errorf("expected InvalidArgumentError, got %T (%v)", err, err)
			}
		})
	}
}

func TestCreateRefusesExistingFile(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "existing.mosaicdb")
	if err := os.WriteFile(filename, []byte("not a document"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := CreateNewDocument(&CreateOptions{Filename: filename, Dimensions: []Dimension{'C'}})
	if err == nil {
		t.Fatal("expected an error for an existing file")
	}

	doc, err := CreateNewDocument(&CreateOptions{
		Filename:          filename,
		Dimensions:        []Dimension{'C'},
		OverwriteExisting: true,
	})
	if err != nil {
		t.Fatalf("expected overwrite to succeed: %v", err)
	}
	doc.Close()
}

func TestDocumentCapabilityAccessors(t *testing.T) {
	doc2d := createTestDocument(t, DocumentTypeImage2D, false, 'C')
	if _, err := doc2d.Reader2D(); err != nil {
		t.Errorf("Reader2D on a 2D document failed: %v", err)
	}
	if _, err := doc2d.Writer2D(); err != nil {
		t.Errorf("Writer2D on a 2D document failed: %v", err)
	}
	if _, err := doc2d.Reader3D(); err == nil {
		t.Error("Reader3D on a 2D document must fail")
	}
	if _, err := doc2d.Writer3D(); err == nil {
		t.Error("Writer3D on a 2D document must fail")
	}

	doc3d := createTestDocument(t, DocumentTypeImage3D, false, 'C')
	if _, err := doc3d.Reader3D(); err != nil {
		t.Errorf("Reader3D on a 3D document failed: %v", err)
	}
	if _, err := doc3d.Reader2D(); err == nil {
		t.Error("Reader2D on a 3D document must fail")
	}
}

func TestOpenExistingRoundTrip(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "roundtrip.mosaicdb")
	doc, err := CreateNewDocument(&CreateOptions{
		Filename:          filename,
		Dimensions:        []Dimension{'C', 'Z'},
		IndexedDimensions: []Dimension{'C'},
		UseSpatialIndex:   true,
		CreateBlobTable:   true,
	})
	if err != nil {
		t.Fatalf("CreateNewDocument failed: %v", err)
	}

	writer, err := doc.Writer2D()
	if err != nil {
		t.Fatal(err)
	}
	pk := addTestTile(t, writer, TileCoordinate{'C': 7, 'Z': 3}, 1, 2, 3, 4, 0, []byte{1, 2, 3})
	if err := doc.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	reopened, err := OpenExistingDocument(&OpenOptions{Filename: filename})
	if err != nil {
		t.Fatalf("OpenExistingDocument failed: %v", err)
	}
	defer reopened.Close()

	cfg := reopened.Schema()
	if cfg.DocumentType() != DocumentTypeImage2D {
		t.Errorf("document type = %v, expected 2D", cfg.DocumentType())
	}
	if got := cfg.Dimensions(); len(got) != 2 || got[0] != 'C' || got[1] != 'Z' {
		t.Errorf("dimensions = %v, expected [C Z]", got)
	}
	if !cfg.UseSpatialIndex() {
		t.Error("spatial index flag lost on reopen")
	}
	if !cfg.UseBlobTable() {
		t.Error("blob table flag lost on reopen")
	}
	if !cfg.IsDimensionIndexed('C') {
		t.Error("per-dimension index on C not discovered")
	}
	if cfg.IsDimensionIndexed('Z') {
		t.Error("Z must not be reported as indexed")
	}

	reader, err := reopened.Reader2D()
	if err != nil {
		t.Fatal(err)
	}
	coord, pos, _, err := reader.ReadTileInfo(pk, true, true, false)
	if err != nil {
		t.Fatalf("ReadTileInfo after reopen failed: %v", err)
	}
	if coord['C'] != 7 || coord['Z'] != 3 {
		t.Errorf("coordinate after reopen = %v", coord)
	}
	if pos.PosX != 1 || pos.Height != 4 {
		t.Errorf("position after reopen = %+v", pos)
	}
}

func TestOpenReadOnlyRefusesWriters(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "readonly.mosaicdb")
	doc, err := CreateNewDocument(&CreateOptions{Filename: filename, Dimensions: []Dimension{'C'}})
	if err != nil {
		t.Fatal(err)
	}
	doc.Close()

	reopened, err := OpenExistingDocument(&OpenOptions{Filename: filename, ReadOnly: true})
	if err != nil {
		t.Fatalf("OpenExistingDocument read-only failed: %v", err)
	}
	defer reopened.Close()

	if _, err := reopened.Writer2D(); err == nil {
		t.Error("Writer2D on a read-only document must fail")
	}
	if _, err := reopened.MetadataWriter(); err == nil {
		t.Error("MetadataWriter on a read-only document must fail")
	}
	if _, err := reopened.Reader2D(); err != nil {
		t.Errorf("Reader2D on a read-only document failed: %v", err)
	}
}

func TestOpenRejectsMissingFile(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "missing.mosaicdb")
	if _, err := OpenExistingDocument(&OpenOptions{Filename: filename}); err == nil {
		t.Error("opening a non-existing file must fail")
	}
}

func TestOpenRejectsForeignLayout(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "foreign.mosaicdb")
	doc, err := CreateNewDocument(&CreateOptions{Filename: filename, Dimensions: []Dimension{'C'}})
	if err != nil {
		t.Fatal(err)
	}
	// strip the descriptor table, leaving a well-formed SQLite file which
	// is not a document
	if err := doc.conn.exec("DROP TABLE " + quoteIdent(defaultTableDocInfo)); err != nil {
		t.Fatal(err)
	}
	doc.Close()

	fatalCalled := false
	environment := &HostingEnvironment{FatalError: func(string) { fatalCalled = true }}
	_, err = OpenExistingDocument(&OpenOptions{Filename: filename, Environment: environment})
	if err == nil {
		t.Fatal("opening a foreign layout must fail")
	}
	if fatalCalled {
		t.Error("a foreign layout must be rejected without invoking the fatal hook")
	}
}
