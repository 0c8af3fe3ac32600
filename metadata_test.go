package mosaicdb

import (
	"errors"
	"testing"
)

func metadataFixture(t *testing.T) (*MetadataWriter, *MetadataReader) {
	t.Helper()
	doc := createTestDocument(t, DocumentTypeImage2D, false, 'C')
	writer, err := doc.MetadataWriter()
	if err != nil {
		t.Fatal(err)
	}
	return writer, doc.MetadataReader()
}

func TestMetadataTreeScenario(t *testing.T) {
	writer, reader := metadataFixture(t)

	if _, err := writer.UpdateOrCreateItemForPath(true, true, "Node1", MetadataDouble(33.443)); err != nil {
		t.Fatalf("creating Node1 failed: %v", err)
	}
	if _, err := writer.UpdateOrCreateItemForPath(true, true, "Node1/Node1_1", MetadataText("A")); err != nil {
		t.Fatalf("creating Node1_1 failed: %v", err)
	}
	if _, err := writer.UpdateOrCreateItemForPath(true, true, "Node1/Node1_2", MetadataText("B")); err != nil {
		t.Fatalf("creating Node1_2 failed: %v", err)
	}
	if _, err := writer.UpdateOrCreateItemForPath(true, true, "Node1/Node1_1", MetadataText("C")); err != nil {
		t.Fatalf("overwriting Node1_1 failed: %v", err)
	}

	item, err := reader.GetItemForPath("Node1/Node1_1", MetadataItemAll)
	if err != nil {
		t.Fatalf("GetItemForPath failed: %v", err)
	}
	if item.Value.Type != MetadataTypeText || item.Value.TextValue != "C" {
		t.Errorf("Node1_1 = %+v, expected Text \"C\"", item.Value)
	}

	node1, err := reader.GetItemForPath("Node1", MetadataItemAll)
	if err != nil {
		t.Fatal(err)
	}
	if node1.Value.Type != MetadataTypeDouble || node1.Value.DoubleValue != 33.443 {
		t.Errorf("Node1 = %+v, expected Double 33.443", node1.Value)
	}

	var childNames []string
	err = reader.EnumerateChildren(node1.Pk, MetadataItemName, func(item MetadataItem) bool {
		childNames = append(childNames, item.Name)
		return true
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(childNames) != 2 || childNames[0] != "Node1_1" || childNames[1] != "Node1_2" {
		t.Errorf("children of Node1 = %v, expected [Node1_1 Node1_2]", childNames)
	}
}

func TestMetadataOverwriteFlag(t *testing.T) {
	writer, reader := metadataFixture(t)

	pk, err := writer.UpdateOrCreateItemForPath(true, true, "A/B/C", MetadataInt32(42))
	if err != nil {
		t.Fatalf("creating A/B/C failed: %v", err)
	}

	item, err := reader.GetItemForPath("A/B/C", MetadataItemAll)
	if err != nil {
		t.Fatal(err)
	}
	if item.Pk != pk || item.Value.Type != MetadataTypeInt32 || item.Value.IntValue != 42 {
		t.Errorf("A/B/C = %+v, expected Int32 42 with pk %d", item, pk)
	}

	// overwrite=true replaces the value
	if _, err := writer.UpdateOrCreateItemForPath(true, true, "A/B/C", MetadataInt32(43)); err != nil {
		t.Fatal(err)
	}
	item, _ = reader.GetItemForPath("A/B/C", MetadataItemValue)
	if item.Value.IntValue != 43 {
		t.Errorf("value after overwrite = %d, expected 43", item.Value.IntValue)
	}

	// overwrite=false leaves it untouched but still resolves the node
	samePk, err := writer.UpdateOrCreateItemForPath(true, false, "A/B/C", MetadataInt32(99))
	if err != nil {
		t.Fatal(err)
	}
	if samePk != pk {
		t.Errorf("non-overwriting update returned pk %d, expected %d", samePk, pk)
	}
	item, _ = reader.GetItemForPath("A/B/C", MetadataItemValue)
	if item.Value.IntValue != 43 {
		t.Errorf("value after non-overwrite = %d, expected 43", item.Value.IntValue)
	}

	// ancestors created along the way carry the Null type
	ancestor, err := reader.GetItemForPath("A/B", MetadataItemAll)
	if err != nil {
		t.Fatal(err)
	}
	if ancestor.Value.Type != MetadataTypeNull {
		t.Errorf("ancestor type = %v, expected Null", ancestor.Value.Type)
	}
}

func TestMetadataCreateMissingFlag(t *testing.T) {
	writer, _ := metadataFixture(t)

	_, err := writer.UpdateOrCreateItemForPath(false, true, "No/Such/Path", MetadataText("x"))
	if !errors.Is(err, ErrMetadataItemNotFound) {
		t.Errorf("expected ErrMetadataItemNotFound, got %v", err)
	}
}

func TestMetadataPathValidation(t *testing.T) {
	writer, reader := metadataFixture(t)

	tests := []string{"", "A//B", "/A", "A/"}
	for _, path := range tests {
		if _, err := writer.UpdateOrCreateItemForPath(true, true, path, MetadataNull()); err == nil {
			t.Errorf("path %q must be rejected", path)
		}
	}

	if _, err := reader.GetItemForPath("A//B", MetadataItemAll); err == nil {
		t.Error("reading a path with an empty segment must fail")
	}

	// the empty path resolves to the root pseudo-node for reads
	root, err := reader.GetItemForPath("", MetadataItemAll)
	if err != nil {
		t.Fatalf("resolving the root failed: %v", err)
	}
	if root.Pk != MetadataRootPk {
		t.Errorf("root pk = %d, expected %d", root.Pk, MetadataRootPk)
	}
}

func TestMetadataUpdateOrCreateItem(t *testing.T) {
	writer, reader := metadataFixture(t)

	parentPk, err := writer.UpdateOrCreateItem(MetadataRootPk, "Parent", MetadataNull())
	if err != nil {
		t.Fatal(err)
	}
	childPk, err := writer.UpdateOrCreateItem(parentPk, "Child", MetadataJson(`{"a":1}`))
	if err != nil {
		t.Fatal(err)
	}

	item, err := reader.GetItem(childPk, MetadataItemAll)
	if err != nil {
		t.Fatal(err)
	}
	if item.Name != "Child" || item.Value.Type != MetadataTypeJson || item.Value.TextValue != `{"a":1}` {
		t.Errorf("child item = %+v", item)
	}

	// same (parent, name) updates in place instead of creating a sibling
	againPk, err := writer.UpdateOrCreateItem(parentPk, "Child", MetadataInt32(1))
	if err != nil {
		t.Fatal(err)
	}
	if againPk != childPk {
		t.Errorf("second UpdateOrCreateItem returned pk %d, expected %d", againPk, childPk)
	}

	// sibling names are independent per parent
	otherParent, err := writer.UpdateOrCreateItem(MetadataRootPk, "Parent2", MetadataNull())
	if err != nil {
		t.Fatal(err)
	}
	otherChild, err := writer.UpdateOrCreateItem(otherParent, "Child", MetadataText("x"))
	if err != nil {
		t.Fatal(err)
	}
	if otherChild == childPk {
		t.Error("children of different parents must be distinct nodes")
	}

	if _, err := writer.UpdateOrCreateItem(MetadataRootPk, "", MetadataNull()); err == nil {
		t.Error("the empty name must be rejected")
	}
	if _, err := writer.UpdateOrCreateItem(MetadataRootPk, "a/b", MetadataNull()); err == nil {
		t.Error("a name containing '/' must be rejected")
	}
}
