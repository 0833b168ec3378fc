package planner

import (
	"fmt"
	"strings"

	"github.com/lib/pq"

	"github.com/dshills/quantaplan/internal/catalog"
	"github.com/dshills/quantaplan/internal/sql/expression"
)

// ExplainOptions controls Explain output.
type ExplainOptions struct {
	// ShowOIDs appends raw identifiers to every scan line.
	ShowOIDs bool
	// QuoteIdentifiers quotes resolved names as SQL identifiers.
	QuoteIdentifiers bool
}

// DefaultExplainOptions returns the options used by the CLI by default.
func DefaultExplainOptions() ExplainOptions {
	return ExplainOptions{QuoteIdentifiers: true}
}

// Explain renders the plan as an indented text tree, one node per line
// followed by its detail lines. Names are looked up in resolver, which may
// be nil; unknown objects are shown as #<oid>.
func Explain(node Node, resolver catalog.Resolver, opts ExplainOptions) string {
	e := &explainer{resolver: resolver, opts: opts}
	e.node(node, 0)
	return e.sb.String()
}

type explainer struct {
	sb       strings.Builder
	resolver catalog.Resolver
	opts     ExplainOptions
}

func (e *explainer) node(n Node, level int) {
	indent := strings.Repeat("  ", level)
	prefix := indent
	if level > 0 {
		prefix += "-> "
		indent += "   "
	}

	switch n := n.(type) {
	case *SeqScanPlanNode:
		e.line(prefix, "Seq Scan on %s%s", e.tableName(n.TableOID()), e.scanOIDs(n))
		e.scanDetails(indent, n)
	case *IndexScanPlanNode:
		e.line(prefix, "Index Scan using %s on %s%s", e.indexName(n.IndexOID()), e.tableName(n.TableOID()), e.scanOIDs(n))
		e.scanDetails(indent, n)
	case *LimitPlanNode:
		if n.Offset() > 0 {
			e.line(prefix, "Limit %d offset %d", n.Limit(), n.Offset())
		} else {
			e.line(prefix, "Limit %d", n.Limit())
		}
	default:
		e.line(prefix, "%s", n.PlanNodeType())
	}

	for _, child := range n.Children() {
		e.node(child, level+1)
	}
}

func (e *explainer) line(prefix, format string, args ...any) {
	e.sb.WriteString(prefix)
	fmt.Fprintf(&e.sb, format, args...)
	e.sb.WriteByte('\n')
}

func (e *explainer) scanDetails(indent string, n ScanNode) {
	if pred := n.ScanPredicate(); !pred.IsNil() {
		e.line(indent, "  Filter: %s", pred.Format(e.columnName))
	}
	if schema := n.OutputSchema(); schema != nil && schema.Len() > 0 {
		cols := make([]string, schema.Len())
		for i, c := range schema.columns {
			cols[i] = e.quote(c.name)
		}
		e.line(indent, "  Output: %s", strings.Join(cols, ", "))
	}
}

func (e *explainer) scanOIDs(n ScanNode) string {
	if !e.opts.ShowOIDs {
		return ""
	}
	oids := n.ColumnOIDs()
	parts := make([]string, len(oids))
	for i, oid := range oids {
		parts[i] = fmt.Sprintf("%d", uint32(oid))
	}
	return fmt.Sprintf(" (table_oid=%d columns=[%s])", uint32(n.TableOID()), strings.Join(parts, ","))
}

func (e *explainer) quote(name string) string {
	if e.opts.QuoteIdentifiers {
		return pq.QuoteIdentifier(name)
	}
	return name
}

func (e *explainer) tableName(oid catalog.TableOID) string {
	if e.resolver != nil {
		if ns, table, ok := e.resolver.TableName(oid); ok {
			return e.quote(ns) + "." + e.quote(table)
		}
	}
	return fmt.Sprintf("#%d", uint32(oid))
}

func (e *explainer) indexName(oid catalog.IndexOID) string {
	if e.resolver != nil {
		if name, ok := e.resolver.IndexName(oid); ok {
			return e.quote(name)
		}
	}
	return fmt.Sprintf("#%d", uint32(oid))
}

// columnName prefers the catalog's name, then the name carried by the
// expression itself.
func (e *explainer) columnName(ref expression.Ref) string {
	if e.resolver != nil {
		if name, ok := e.resolver.ColumnName(ref.TableOID(), ref.ColumnOID()); ok {
			return e.quote(name)
		}
	}
	if name := ref.Name(); name != "" {
		return e.quote(name)
	}
	return fmt.Sprintf("#%d", uint32(ref.ColumnOID()))
}
