package catalog

import (
	"fmt"
	"sort"
	"sync"

	"github.com/dshills/quantaplan/internal/errors"
)

const defaultSchemaName = "public"

// DefaultDatabaseOID is the database every MemoryCatalog starts with.
const DefaultDatabaseOID DatabaseOID = 1

// MemoryCatalog is an in-memory implementation of Resolver.
// It's useful for testing and for rendering plans offline.
type MemoryCatalog struct {
	mu           sync.RWMutex
	databaseName string
	schemas      map[string]*schema
	schemaByOID  map[NamespaceOID]*schema
	tables       map[string]*Table // "schema.table" -> Table
	tableByOID   map[TableOID]*Table
	indexes      map[string]*Index // "schema.index" -> Index
	indexByOID   map[IndexOID]*Index
	nextOID      uint32
}

// schema represents a database schema.
type schema struct {
	oid    NamespaceOID
	name   string
	tables map[string]*Table
}

// NewMemoryCatalog creates a new in-memory catalog.
func NewMemoryCatalog(databaseName string) *MemoryCatalog {
	c := &MemoryCatalog{
		databaseName: databaseName,
		schemas:      make(map[string]*schema),
		schemaByOID:  make(map[NamespaceOID]*schema),
		tables:       make(map[string]*Table),
		tableByOID:   make(map[TableOID]*Table),
		indexes:      make(map[string]*Index),
		indexByOID:   make(map[IndexOID]*Index),
		nextOID:      uint32(DefaultDatabaseOID) + 1,
	}

	// Create default public schema
	c.addSchema(defaultSchemaName)

	return c
}

func (c *MemoryCatalog) allocOID() uint32 {
	oid := c.nextOID
	c.nextOID++
	return oid
}

func (c *MemoryCatalog) addSchema(name string) *schema {
	s := &schema{
		oid:    NamespaceOID(c.allocOID()),
		name:   name,
		tables: make(map[string]*Table),
	}
	c.schemas[name] = s
	c.schemaByOID[s.oid] = s
	return s
}

// CreateSchema creates a new schema.
func (c *MemoryCatalog) CreateSchema(name string) (NamespaceOID, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.schemas[name]; exists {
		return InvalidOID, errors.SchemaAlreadyExistsError(name)
	}

	return c.addSchema(name).oid, nil
}

// NamespaceOID returns the identifier of the named schema.
func (c *MemoryCatalog) NamespaceOID(name string) (NamespaceOID, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if name == "" {
		name = defaultSchemaName
	}
	s, exists := c.schemas[name]
	if !exists {
		return InvalidOID, errors.SchemaNotFoundError(name)
	}
	return s.oid, nil
}

// ListSchemas returns all schema names in sorted order.
func (c *MemoryCatalog) ListSchemas() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	schemas := make([]string, 0, len(c.schemas))
	for name := range c.schemas {
		schemas = append(schemas, name)
	}
	sort.Strings(schemas)

	return schemas
}

// CreateTable creates a new table.
func (c *MemoryCatalog) CreateTable(tableSchema *TableSchema) (*Table, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	// Validate schema exists
	schemaName := tableSchema.SchemaName
	if schemaName == "" {
		schemaName = defaultSchemaName
	}

	s, exists := c.schemas[schemaName]
	if !exists {
		return nil, errors.SchemaNotFoundError(schemaName)
	}

	// Check if table already exists
	key := fmt.Sprintf("%s.%s", schemaName, tableSchema.TableName)
	if _, exists := c.tables[key]; exists {
		return nil, errors.DuplicateTableError(key)
	}

	seen := make(map[string]bool, len(tableSchema.Columns))
	for _, colDef := range tableSchema.Columns {
		if seen[colDef.Name] {
			return nil, errors.DuplicateColumnError(colDef.Name, key)
		}
		seen[colDef.Name] = true
	}

	table := &Table{
		OID:          TableOID(c.allocOID()),
		NamespaceOID: s.oid,
		SchemaName:   schemaName,
		TableName:    tableSchema.TableName,
		Columns:      make([]*Column, 0, len(tableSchema.Columns)),
	}

	// Column OIDs are positional within the table, starting at 1.
	for i, colDef := range tableSchema.Columns {
		table.Columns = append(table.Columns, &Column{
			OID:             ColumnOID(i + 1),
			Name:            colDef.Name,
			DataType:        colDef.DataType,
			OrdinalPosition: i + 1,
			IsNullable:      colDef.IsNullable,
		})
	}

	c.tables[key] = table
	c.tableByOID[table.OID] = table
	s.tables[tableSchema.TableName] = table

	return table, nil
}

// GetTable retrieves a table by name.
func (c *MemoryCatalog) GetTable(schemaName, tableName string) (*Table, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if schemaName == "" {
		schemaName = defaultSchemaName
	}

	key := fmt.Sprintf("%s.%s", schemaName, tableName)
	table, exists := c.tables[key]
	if !exists {
		return nil, errors.UndefinedTableError(key)
	}

	return table, nil
}

// CreateIndex creates an index over the named columns of a table.
func (c *MemoryCatalog) CreateIndex(schemaName, tableName, indexName string, columns ...string) (*Index, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if schemaName == "" {
		schemaName = defaultSchemaName
	}

	key := fmt.Sprintf("%s.%s", schemaName, tableName)
	table, exists := c.tables[key]
	if !exists {
		return nil, errors.UndefinedTableError(key)
	}

	indexKey := fmt.Sprintf("%s.%s", schemaName, indexName)
	if _, exists := c.indexes[indexKey]; exists {
		return nil, errors.DuplicateIndexError(indexName)
	}

	index := &Index{
		Name:     indexName,
		TableOID: table.OID,
		Columns:  make([]ColumnOID, 0, len(columns)),
	}
	for _, colName := range columns {
		col := table.GetColumnByName(colName)
		if col == nil {
			return nil, errors.UndefinedColumnError(colName, key)
		}
		index.Columns = append(index.Columns, col.OID)
	}
	index.OID = IndexOID(c.allocOID())

	c.indexes[indexKey] = index
	c.indexByOID[index.OID] = index

	return index, nil
}

// GetIndex retrieves an index by name.
func (c *MemoryCatalog) GetIndex(schemaName, indexName string) (*Index, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if schemaName == "" {
		schemaName = defaultSchemaName
	}

	index, exists := c.indexes[fmt.Sprintf("%s.%s", schemaName, indexName)]
	if !exists {
		return nil, errors.IndexNotFoundError(indexName)
	}
	return index, nil
}

// DatabaseName implements Resolver.
func (c *MemoryCatalog) DatabaseName(oid DatabaseOID) (string, bool) {
	if oid != DefaultDatabaseOID {
		return "", false
	}
	return c.databaseName, true
}

// NamespaceName implements Resolver.
func (c *MemoryCatalog) NamespaceName(oid NamespaceOID) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	s, ok := c.schemaByOID[oid]
	if !ok {
		return "", false
	}
	return s.name, true
}

// TableName implements Resolver.
func (c *MemoryCatalog) TableName(oid TableOID) (string, string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	t, ok := c.tableByOID[oid]
	if !ok {
		return "", "", false
	}
	return t.SchemaName, t.TableName, true
}

// ColumnName implements Resolver.
func (c *MemoryCatalog) ColumnName(table TableOID, column ColumnOID) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	t, ok := c.tableByOID[table]
	if !ok {
		return "", false
	}
	for _, col := range t.Columns {
		if col.OID == column {
			return col.Name, true
		}
	}
	return "", false
}

// IndexName implements Resolver.
func (c *MemoryCatalog) IndexName(oid IndexOID) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	idx, ok := c.indexByOID[oid]
	if !ok {
		return "", false
	}
	return idx.Name, true
}
