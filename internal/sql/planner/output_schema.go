package planner

import (
	"fmt"
	"strings"

	"github.com/cespare/xxhash/v2"

	"github.com/dshills/quantaplan/internal/sql/expression"
	"github.com/dshills/quantaplan/internal/sql/types"
)

// OutputColumn is one column produced by a plan node. Expr describes how the
// column's value is derived; the expression is held by handle and belongs
// to the statement's arena.
type OutputColumn struct {
	name     string
	typ      types.TypeID
	nullable bool
	expr     expression.Ref
}

// NewOutputColumn creates an output column.
func NewOutputColumn(name string, typ types.TypeID, nullable bool, expr expression.Ref) OutputColumn {
	return OutputColumn{name: name, typ: typ, nullable: nullable, expr: expr}
}

func (c OutputColumn) Name() string         { return c.name }
func (c OutputColumn) Type() types.TypeID   { return c.typ }
func (c OutputColumn) Nullable() bool       { return c.nullable }
func (c OutputColumn) Expr() expression.Ref { return c.expr }

// Equal compares the column and its expression structurally.
func (c OutputColumn) Equal(o OutputColumn) bool {
	return c.name == o.name &&
		c.typ == o.typ &&
		c.nullable == o.nullable &&
		c.expr.Equal(o.expr)
}

// OutputSchema is the ordered list of columns a plan node produces. Column
// order defines output positions.
type OutputSchema struct {
	columns []OutputColumn
}

// NewOutputSchema creates a schema from the given columns. The slice is
// copied.
func NewOutputSchema(columns ...OutputColumn) *OutputSchema {
	cols := make([]OutputColumn, len(columns))
	copy(cols, columns)
	return &OutputSchema{columns: cols}
}

// Columns returns the columns in output order.
func (s *OutputSchema) Columns() []OutputColumn {
	cols := make([]OutputColumn, len(s.columns))
	copy(cols, s.columns)
	return cols
}

// Column returns the i-th output column.
func (s *OutputSchema) Column(i int) OutputColumn {
	return s.columns[i]
}

// Len returns the number of output columns.
func (s *OutputSchema) Len() int {
	return len(s.columns)
}

// Equal reports whether both schemas list equal columns in the same order.
func (s *OutputSchema) Equal(o *OutputSchema) bool {
	if s == nil || o == nil {
		return s == o
	}
	if len(s.columns) != len(o.columns) {
		return false
	}
	for i := range s.columns {
		if !s.columns[i].Equal(o.columns[i]) {
			return false
		}
	}
	return true
}

// Hash returns a deterministic hash consistent with Equal.
func (s *OutputSchema) Hash() uint64 {
	d := xxhash.New()
	s.writeHash(d)
	return d.Sum64()
}

func (s *OutputSchema) writeHash(d *xxhash.Digest) {
	if s == nil {
		writeUint64(d, 0)
		return
	}
	writeUint64(d, uint64(len(s.columns))+1)
	for _, c := range s.columns {
		writeUint64(d, uint64(len(c.name)))
		_, _ = d.WriteString(c.name)
		writeUint64(d, uint64(c.typ))
		writeBool(d, c.nullable)
		c.expr.WriteHash(d)
	}
}

func (s *OutputSchema) String() string {
	names := make([]string, len(s.columns))
	for i, c := range s.columns {
		names[i] = c.name
	}
	return fmt.Sprintf("[%s]", strings.Join(names, ", "))
}
