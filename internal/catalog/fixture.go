package catalog

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"gopkg.in/yaml.v3"

	"github.com/dshills/quantaplan/internal/sql/types"
)

// Fixture describes catalog objects to create in a MemoryCatalog. Objects
// are created in file order: schemas, then tables, then indexes. OIDs are
// handed out in that order, so a fixture reproduces the catalog a plan was
// built against when it lists objects the way they were created.
type Fixture struct {
	Database string         `json:"database" yaml:"database"`
	Schemas  []string       `json:"schemas" yaml:"schemas"`
	Tables   []FixtureTable `json:"tables" yaml:"tables"`
	Indexes  []FixtureIndex `json:"indexes" yaml:"indexes"`
}

// FixtureTable is a table entry of a Fixture. An empty schema means public.
type FixtureTable struct {
	Schema  string          `json:"schema" yaml:"schema"`
	Name    string          `json:"name" yaml:"name"`
	Columns []FixtureColumn `json:"columns" yaml:"columns"`
}

// FixtureColumn is a column entry; Type is a SQL type name like INTEGER.
type FixtureColumn struct {
	Name     string `json:"name" yaml:"name"`
	Type     string `json:"type" yaml:"type"`
	Nullable bool   `json:"nullable" yaml:"nullable"`
}

// FixtureIndex is an index entry of a Fixture.
type FixtureIndex struct {
	Schema  string   `json:"schema" yaml:"schema"`
	Table   string   `json:"table" yaml:"table"`
	Name    string   `json:"name" yaml:"name"`
	Columns []string `json:"columns" yaml:"columns"`
}

// LoadFixture reads a JSON or YAML fixture file and builds the catalog it
// describes. .yaml and .yml files are YAML, everything else JSON.
func LoadFixture(path string) (*MemoryCatalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog fixture: %w", err)
	}

	var fx Fixture
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &fx)
	default:
		err = jsoniter.ConfigCompatibleWithStandardLibrary.Unmarshal(data, &fx)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse catalog fixture: %w", err)
	}
	return fx.Build()
}

// Build creates a MemoryCatalog holding the fixture's objects.
func (fx *Fixture) Build() (*MemoryCatalog, error) {
	database := fx.Database
	if database == "" {
		database = "postgres"
	}
	c := NewMemoryCatalog(database)

	for _, name := range fx.Schemas {
		if _, err := c.CreateSchema(name); err != nil {
			return nil, err
		}
	}

	for _, tbl := range fx.Tables {
		ts := &TableSchema{SchemaName: tbl.Schema, TableName: tbl.Name}
		for _, col := range tbl.Columns {
			typ, err := types.ParseTypeID(col.Type)
			if err != nil {
				return nil, fmt.Errorf("table %s column %s: %w", tbl.Name, col.Name, err)
			}
			ts.Columns = append(ts.Columns, ColumnDef{Name: col.Name, DataType: typ, IsNullable: col.Nullable})
		}
		if _, err := c.CreateTable(ts); err != nil {
			return nil, err
		}
	}

	for _, idx := range fx.Indexes {
		if _, err := c.CreateIndex(idx.Schema, idx.Table, idx.Name, idx.Columns...); err != nil {
			return nil, err
		}
	}
	return c, nil
}
