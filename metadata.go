package mosaicdb

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// MetadataType discriminates the typed value of a metadata node.
type MetadataType int

const (
	// MetadataTypeNull is a node without a value (e.g. a path element).
	MetadataTypeNull MetadataType = iota
	// MetadataTypeInt32 holds a signed 32-bit integer.
	MetadataTypeInt32
	// MetadataTypeDouble holds a float64.
	MetadataTypeDouble
	// MetadataTypeText holds a string.
	MetadataTypeText
	// MetadataTypeJson holds a JSON document as text.
	MetadataTypeJson
)

// MetadataRootPk is the pseudo primary key of the metadata tree root.
// The root itself is not stored; its children have a NULL parent.
const MetadataRootPk int64 = 0

// ErrMetadataItemNotFound is returned when a metadata path or primary
// key does not resolve to a node.
var ErrMetadataItemNotFound = errors.New("metadata item not found")

// MetadataValue is the typed value of a metadata node. Exactly the field
// matching Type is meaningful.
type MetadataValue struct {
	Type        MetadataType
	IntValue    int32
	DoubleValue float64
	TextValue   string
}

// MetadataNull returns the value of a node without a value.
func MetadataNull() MetadataValue {
	return MetadataValue{Type: MetadataTypeNull}
}

// MetadataInt32 returns an Int32-typed value.
func MetadataInt32(v int32) MetadataValue {
	return MetadataValue{Type: MetadataTypeInt32, IntValue: v}
}

// MetadataDouble returns a Double-typed value.
func MetadataDouble(v float64) MetadataValue {
	return MetadataValue{Type: MetadataTypeDouble, DoubleValue: v}
}

// MetadataText returns a Text-typed value.
func MetadataText(v string) MetadataValue {
	return MetadataValue{Type: MetadataTypeText, TextValue: v}
}

// MetadataJson returns a Json-typed value; the string must be a valid
// JSON document, which the engine does not verify.
func MetadataJson(v string) MetadataValue {
	return MetadataValue{Type: MetadataTypeJson, TextValue: v}
}

// MetadataItemFlags selects which fields of a node a read returns.
type MetadataItemFlags uint

const (
	// MetadataItemName requests the node name.
	MetadataItemName MetadataItemFlags = 1 << iota
	// MetadataItemValue requests the typed value.
	MetadataItemValue

	// MetadataItemAll requests everything.
	MetadataItemAll = MetadataItemName | MetadataItemValue
)

// MetadataItem is a node of the metadata tree as returned by reads. Pk
// is always filled; Name and Value are filled per the requested flags.
type MetadataItem struct {
	Pk    int64
	Name  string
	Value MetadataValue
}

// MetadataWriter is the write surface of the metadata tree.
type MetadataWriter struct {
	doc *Document
}

// MetadataReader is the read surface of the metadata tree.
type MetadataReader struct {
	doc *Document
}

func validateNodeName(name string) error {
	if name == "" {
		return invalidArgumentf("the empty name is reserved for the metadata root")
	}
	if strings.ContainsRune(name, '/') {
		return invalidArgumentf("metadata node name %q must not contain '/'", name)
	}
	return nil
}

func splitMetadataPath(path string) ([]string, error) {
	if path == "" {
		return nil, nil
	}
	segments := strings.Split(path, "/")
	for _, segment := range segments {
		if segment == "" {
			return nil, invalidArgumentf("metadata path %q contains an empty segment", path)
		}
	}
	return segments, nil
}

// lookupChild returns the pk of the child with the given name, or
// ErrMetadataItemNotFound.
func lookupChild(doc *Document, parentPk int64, name string) (int64, error) {
	table := quoteIdent(doc.cfg.TableMetadata())
	var query string
	var args []interface{}
	if parentPk == MetadataRootPk {
		query = fmt.Sprintf("SELECT %s FROM %s WHERE %s IS NULL AND %s = ?",
			quoteIdent(colMetadataPk), table, quoteIdent(colMetadataParentPk), quoteIdent(colMetadataName))
		args = []interface{}{name}
	} else {
		query = fmt.Sprintf("SELECT %s FROM %s WHERE %s = ? AND %s = ?",
			quoteIdent(colMetadataPk), table, quoteIdent(colMetadataParentPk), quoteIdent(colMetadataName))
		args = []interface{}{parentPk, name}
	}

	var pk int64
	err := doc.conn.queryRow(query, args...).Scan(&pk)
	if err == sql.ErrNoRows {
		return 0, ErrMetadataItemNotFound
	}
	if err != nil {
		return 0, wrapDatabaseError("looking up metadata node", err)
	}
	return pk, nil
}

func valueColumns(value MetadataValue) (interface{}, interface{}, interface{}) {
	switch value.Type {
	case MetadataTypeInt32:
		return value.IntValue, nil, nil
	case MetadataTypeDouble:
		return nil, value.DoubleValue, nil
	case MetadataTypeText, MetadataTypeJson:
		return nil, nil, value.TextValue
	default:
		return nil, nil, nil
	}
}

func insertNode(doc *Document, parentPk int64, name string, value MetadataValue) (int64, error) {
	table := quoteIdent(doc.cfg.TableMetadata())
	valueInt, valueDouble, valueString := valueColumns(value)

	var parent interface{}
	if parentPk != MetadataRootPk {
		parent = parentPk
	}

	stmt := fmt.Sprintf("INSERT INTO %s (%s,%s,%s,%s,%s,%s) VALUES (?,?,?,?,?,?)",
		table,
		quoteIdent(colMetadataParentPk), quoteIdent(colMetadataName), quoteIdent(colMetadataTypeDiscr),
		quoteIdent(colMetadataValueInt), quoteIdent(colMetadataValueDouble), quoteIdent(colMetadataValueString))
	return doc.conn.execReturningRowID(stmt, parent, name, int(value.Type), valueInt, valueDouble, valueString)
}

func updateNode(doc *Document, pk int64, value MetadataValue) error {
	table := quoteIdent(doc.cfg.TableMetadata())
	valueInt, valueDouble, valueString := valueColumns(value)

	stmt := fmt.Sprintf("UPDATE %s SET %s = ?, %s = ?, %s = ?, %s = ? WHERE %s = ?",
		table,
		quoteIdent(colMetadataTypeDiscr),
		quoteIdent(colMetadataValueInt), quoteIdent(colMetadataValueDouble), quoteIdent(colMetadataValueString),
		quoteIdent(colMetadataPk))
	return doc.conn.exec(stmt, int(value.Type), valueInt, valueDouble, valueString, pk)
}

// UpdateOrCreateItem creates the child node of parentPk with the given
// name, or updates its value when it already exists. Use MetadataRootPk
// as parent for top-level nodes. The node pk is returned.
func (w *MetadataWriter) UpdateOrCreateItem(parentPk int64, name string, value MetadataValue) (int64, error) {
	if err := validateNodeName(name); err != nil {
		return 0, err
	}

	var pk int64
	err := runInTransaction(w.doc.conn, func() error {
		existing, err := lookupChild(w.doc, parentPk, name)
		if err == nil {
			pk = existing
			return updateNode(w.doc, existing, value)
		}
		if !errors.Is(err, ErrMetadataItemNotFound) {
			return err
		}
		pk, err = insertNode(w.doc, parentPk, name, value)
		return err
	})
	if err != nil {
		return 0, err
	}
	return pk, nil
}

// UpdateOrCreateItemForPath resolves the '/'-separated path and writes
// the value into its final node. Missing ancestors are created with the
// Null type when createMissing is true, otherwise the call fails. When
// the final node exists and overwrite is false, its value is left
// untouched. The node pk is returned.
func (w *MetadataWriter) UpdateOrCreateItemForPath(createMissing, overwrite bool, path string, value MetadataValue) (int64, error) {
	segments, err := splitMetadataPath(path)
	if err != nil {
		return 0, err
	}
	if len(segments) == 0 {
		return 0, invalidArgumentf("the metadata root cannot carry a value")
	}

	var pk int64
	err = runInTransaction(w.doc.conn, func() error {
		parent := MetadataRootPk
		for _, segment := range segments[:len(segments)-1] {
			child, err := lookupChild(w.doc, parent, segment)
			if errors.Is(err, ErrMetadataItemNotFound) {
				if !createMissing {
					return fmt.Errorf("resolving %q: %w", path, ErrMetadataItemNotFound)
				}
				child, err = insertNode(w.doc, parent, segment, MetadataNull())
			}
			if err != nil {
				return err
			}
			parent = child
		}

		name := segments[len(segments)-1]
		existing, err := lookupChild(w.doc, parent, name)
		if err == nil {
			pk = existing
			if !overwrite {
				return nil
			}
			return updateNode(w.doc, existing, value)
		}
		if !errors.Is(err, ErrMetadataItemNotFound) {
			return err
		}
		if !createMissing {
			return fmt.Errorf("resolving %q: %w", path, ErrMetadataItemNotFound)
		}
		pk, err = insertNode(w.doc, parent, name, value)
		return err
	})
	if err != nil {
		return 0, err
	}
	return pk, nil
}

func scanItem(doc *Document, pk int64, flags MetadataItemFlags) (MetadataItem, error) {
	table := quoteIdent(doc.cfg.TableMetadata())
	query := fmt.Sprintf("SELECT %s,%s,%s,%s,%s FROM %s WHERE %s = ?",
		quoteIdent(colMetadataName), quoteIdent(colMetadataTypeDiscr),
		quoteIdent(colMetadataValueInt), quoteIdent(colMetadataValueDouble), quoteIdent(colMetadataValueString),
		table, quoteIdent(colMetadataPk))

	var name string
	var typeDiscriminator int
	var valueInt sql.NullInt64
	var valueDouble sql.NullFloat64
	var valueString sql.NullString
	err := doc.conn.queryRow(query, pk).Scan(&name, &typeDiscriminator, &valueInt, &valueDouble, &valueString)
	if err == sql.ErrNoRows {
		return MetadataItem{}, ErrMetadataItemNotFound
	}
	if err != nil {
		return MetadataItem{}, wrapDatabaseError("reading metadata node", err)
	}

	return buildItem(pk, name, typeDiscriminator, valueInt, valueDouble, valueString, flags), nil
}

func buildItem(pk int64, name string, typeDiscriminator int, valueInt sql.NullInt64, valueDouble sql.NullFloat64, valueString sql.NullString, flags MetadataItemFlags) MetadataItem {
	item := MetadataItem{Pk: pk}
	if flags&MetadataItemName != 0 {
		item.Name = name
	}
	if flags&MetadataItemValue != 0 {
		value := MetadataValue{Type: MetadataType(typeDiscriminator)}
		switch value.Type {
		case MetadataTypeInt32:
			value.IntValue = int32(valueInt.Int64)
		case MetadataTypeDouble:
			value.DoubleValue = valueDouble.Float64
		case MetadataTypeText, MetadataTypeJson:
			value.TextValue = valueString.String
		}
		item.Value = value
	}
	return item
}

// GetItem reads the node with the given pk, filling the fields selected
// by flags.
func (r *MetadataReader) GetItem(pk int64, flags MetadataItemFlags) (MetadataItem, error) {
	if pk == MetadataRootPk {
		return MetadataItem{Pk: MetadataRootPk}, nil
	}
	return scanItem(r.doc, pk, flags)
}

// GetItemForPath resolves the '/'-separated path and reads the node at
// its end. The empty path resolves to the root pseudo-node.
func (r *MetadataReader) GetItemForPath(path string, flags MetadataItemFlags) (MetadataItem, error) {
	segments, err := splitMetadataPath(path)
	if err != nil {
		return MetadataItem{}, err
	}

	pk := MetadataRootPk
	for _, segment := range segments {
		pk, err = lookupChild(r.doc, pk, segment)
		if err != nil {
			if errors.Is(err, ErrMetadataItemNotFound) {
				return MetadataItem{}, fmt.Errorf("resolving %q: %w", path, ErrMetadataItemNotFound)
			}
			return MetadataItem{}, err
		}
	}

	return r.GetItem(pk, flags)
}

// EnumerateChildren visits the children of the node with the given pk
// (MetadataRootPk for the top level), ordered by name. The visitor
// returning false stops the enumeration.
func (r *MetadataReader) EnumerateChildren(parentPk int64, flags MetadataItemFlags, visit func(item MetadataItem) bool) error {
	table := quoteIdent(r.doc.cfg.TableMetadata())

	var query string
	var args []interface{}
	selectList := fmt.Sprintf("%s,%s,%s,%s,%s,%s",
		quoteIdent(colMetadataPk), quoteIdent(colMetadataName), quoteIdent(colMetadataTypeDiscr),
		quoteIdent(colMetadataValueInt), quoteIdent(colMetadataValueDouble), quoteIdent(colMetadataValueString))
	if parentPk == MetadataRootPk {
		query = fmt.Sprintf("SELECT %s FROM %s WHERE %s IS NULL ORDER BY %s",
			selectList, table, quoteIdent(colMetadataParentPk), quoteIdent(colMetadataName))
	} else {
		query = fmt.Sprintf("SELECT %s FROM %s WHERE %s = ? ORDER BY %s",
			selectList, table, quoteIdent(colMetadataParentPk), quoteIdent(colMetadataName))
		args = []interface{}{parentPk}
	}

	rows, err := r.doc.conn.query(query, args...)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var pk int64
		var name string
		var typeDiscriminator int
		var valueInt sql.NullInt64
		var valueDouble sql.NullFloat64
		var valueString sql.NullString
		if err := rows.Scan(&pk, &name, &typeDiscriminator, &valueInt, &valueDouble, &valueString); err != nil {
			return wrapDatabaseError("scanning metadata node", err)
		}
		if !visit(buildItem(pk, name, typeDiscriminator, valueInt, valueDouble, valueString, flags)) {
			return nil
		}
	}
	if err := rows.Err(); err != nil {
		return wrapDatabaseError("iterating metadata nodes", err)
	}
	return nil
}
