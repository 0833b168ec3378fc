package catalog

import (
	"github.com/dshills/quantaplan/internal/sql/types"
)

// Resolver maps catalog identifiers back to names. Plan rendering uses it;
// plan nodes themselves only ever hold identifiers.
type Resolver interface {
	DatabaseName(oid DatabaseOID) (string, bool)
	NamespaceName(oid NamespaceOID) (string, bool)
	TableName(oid TableOID) (namespace string, table string, ok bool)
	ColumnName(table TableOID, column ColumnOID) (string, bool)
	IndexName(oid IndexOID) (string, bool)
}

// TableSchema defines the structure for creating a new table.
type TableSchema struct {
	SchemaName string
	TableName  string
	Columns    []ColumnDef
}

// ColumnDef defines a column in a table.
type ColumnDef struct {
	Name       string
	DataType   types.TypeID
	IsNullable bool
}

// Table represents a table with its metadata.
type Table struct {
	OID          TableOID
	NamespaceOID NamespaceOID
	SchemaName   string
	TableName    string
	Columns      []*Column
}

// Column represents a column with its metadata.
type Column struct {
	OID             ColumnOID
	Name            string
	DataType        types.TypeID
	OrdinalPosition int
	IsNullable      bool
}

// Index represents an index on a table.
type Index struct {
	OID      IndexOID
	Name     string
	TableOID TableOID
	Columns  []ColumnOID
}

// GetColumnByName returns the column with the given name, or nil.
func (t *Table) GetColumnByName(name string) *Column {
	for _, col := range t.Columns {
		if col.Name == name {
			return col
		}
	}
	return nil
}

// ColumnOIDs returns the identifiers of all columns in ordinal order.
func (t *Table) ColumnOIDs() []ColumnOID {
	oids := make([]ColumnOID, len(t.Columns))
	for i, col := range t.Columns {
		oids[i] = col.OID
	}
	return oids
}
