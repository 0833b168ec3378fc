package planner

import (
	"fmt"

	"github.com/dshills/quantaplan/internal/catalog"
	"github.com/dshills/quantaplan/internal/errors"
	"github.com/dshills/quantaplan/internal/sql/expression"
)

// baseBuilder accumulates the fields every plan node carries. B is the
// concrete builder type so that setters promoted from here still return the
// concrete builder and calls can be chained.
//
// A builder produces exactly one node. It must stay confined to the
// goroutine that created it.
type baseBuilder[B any] struct {
	self         B
	nodeType     PlanNodeType
	children     []Node
	outputSchema *OutputSchema
	built        bool
}

// AddChild appends a child plan.
func (b *baseBuilder[B]) AddChild(child Node) B {
	b.children = append(b.children, child)
	return b.self
}

// SetOutputSchema sets the node's output schema.
func (b *baseBuilder[B]) SetOutputSchema(schema *OutputSchema) B {
	b.outputSchema = schema
	return b.self
}

// begin checks the fields shared by every node. It does not consume the
// builder, so a failed Build may be corrected and retried.
func (b *baseBuilder[B]) begin(requireSchema bool) error {
	name := b.nodeType.String()
	if b.built {
		return errors.BuilderConsumedError(name)
	}
	for _, child := range b.children {
		if child == nil {
			return errors.InvalidBuilderArgumentError(name, "child", "child plan is nil")
		}
	}
	if requireSchema && b.outputSchema == nil {
		return errors.IncompleteBuilderError(name, "output schema")
	}
	if b.outputSchema != nil {
		for _, col := range b.outputSchema.columns {
			if err := checkExpressionDepth(name, "output column "+col.name, col.expr); err != nil {
				return err
			}
		}
	}
	return nil
}

// finish marks the builder consumed and returns the base part of the node.
func (b *baseBuilder[B]) finish() basePlanNode {
	b.built = true
	children := make([]Node, len(b.children))
	copy(children, b.children)
	return basePlanNode{children: children, outputSchema: b.outputSchema}
}

// scanBuilder adds the fields shared by table scans.
type scanBuilder[B any] struct {
	baseBuilder[B]
	predicate    expression.Ref
	isForUpdate  bool
	databaseOID  catalog.DatabaseOID
	namespaceOID catalog.NamespaceOID
}

// SetScanPredicate sets the row filter. The null Ref scans all rows.
func (b *scanBuilder[B]) SetScanPredicate(predicate expression.Ref) B {
	b.predicate = predicate
	return b.self
}

// SetIsForUpdate marks the scan as feeding an UPDATE or DELETE.
func (b *scanBuilder[B]) SetIsForUpdate(isForUpdate bool) B {
	b.isForUpdate = isForUpdate
	return b.self
}

// SetDatabaseOID sets the scanned database.
func (b *scanBuilder[B]) SetDatabaseOID(oid catalog.DatabaseOID) B {
	b.databaseOID = oid
	return b.self
}

// SetNamespaceOID sets the namespace of the scanned relation.
func (b *scanBuilder[B]) SetNamespaceOID(oid catalog.NamespaceOID) B {
	b.namespaceOID = oid
	return b.self
}

// beginScan runs the shared checks plus those on the scan predicate.
func (b *scanBuilder[B]) beginScan() error {
	if err := b.begin(true); err != nil {
		return err
	}
	return checkExpressionDepth(b.nodeType.String(), "scan predicate", b.predicate)
}

func (b *scanBuilder[B]) finishScan() scanPlanNode {
	return scanPlanNode{
		basePlanNode: b.finish(),
		predicate:    b.predicate,
		isForUpdate:  b.isForUpdate,
		databaseOID:  b.databaseOID,
		namespaceOID: b.namespaceOID,
	}
}

// checkExpressionDepth rejects expressions nested deeper than
// expression.DefaultMaxDepth, the most FromJSON will decode.
func checkExpressionDepth(nodeType, field string, ref expression.Ref) error {
	if depth := ref.Depth(); depth > expression.DefaultMaxDepth {
		return errors.InvalidBuilderArgumentError(nodeType, field,
			fmt.Sprintf("expression nesting %d exceeds limit of %d", depth, expression.DefaultMaxDepth))
	}
	return nil
}

func cloneColumnOIDs(oids []catalog.ColumnOID) []catalog.ColumnOID {
	cloned := make([]catalog.ColumnOID, len(oids))
	copy(cloned, oids)
	return cloned
}
