package planner

import (
	"github.com/cespare/xxhash/v2"

	"github.com/dshills/quantaplan/internal/catalog"
	"github.com/dshills/quantaplan/internal/sql/expression"
)

// ScanNode is implemented by every plan node that reads a table.
type ScanNode interface {
	Node
	ScanPredicate() expression.Ref
	IsForUpdate() bool
	DatabaseOID() catalog.DatabaseOID
	NamespaceOID() catalog.NamespaceOID
	TableOID() catalog.TableOID
	ColumnOIDs() []catalog.ColumnOID
	CollectInputOIDs() *ColumnOIDSet
}

var (
	_ ScanNode = (*SeqScanPlanNode)(nil)
	_ ScanNode = (*IndexScanPlanNode)(nil)
	_ Node     = (*LimitPlanNode)(nil)
)

// scanPlanNode holds the fields shared by every table scan.
type scanPlanNode struct {
	basePlanNode
	predicate    expression.Ref
	isForUpdate  bool
	databaseOID  catalog.DatabaseOID
	namespaceOID catalog.NamespaceOID
}

// ScanPredicate returns the row filter. A nil Ref means every row is
// produced.
func (s *scanPlanNode) ScanPredicate() expression.Ref {
	return s.predicate
}

// IsForUpdate reports whether the scan feeds an UPDATE or DELETE.
func (s *scanPlanNode) IsForUpdate() bool {
	return s.isForUpdate
}

// DatabaseOID returns the database being scanned.
func (s *scanPlanNode) DatabaseOID() catalog.DatabaseOID {
	return s.databaseOID
}

// NamespaceOID returns the namespace of the scanned relation.
func (s *scanPlanNode) NamespaceOID() catalog.NamespaceOID {
	return s.namespaceOID
}

// CollectInputOIDs returns every column identifier referenced by the scan
// predicate and by the output schema's column expressions. The result is a
// set: each identifier appears once and carries no order.
func (s *scanPlanNode) CollectInputOIDs() *ColumnOIDSet {
	set := NewColumnOIDSet()
	collectColumnOIDs(set, s.predicate)
	if s.outputSchema != nil {
		for _, col := range s.outputSchema.columns {
			collectColumnOIDs(set, col.expr)
		}
	}
	return set
}

func (s *scanPlanNode) scanEqual(o *scanPlanNode) bool {
	return s.baseEqual(&o.basePlanNode) &&
		s.isForUpdate == o.isForUpdate &&
		s.databaseOID == o.databaseOID &&
		s.namespaceOID == o.namespaceOID &&
		s.predicate.Equal(o.predicate)
}

func (s *scanPlanNode) writeScanHash(d *xxhash.Digest, typ PlanNodeType) {
	s.writeHash(d, typ)
	s.predicate.WriteHash(d)
	writeBool(d, s.isForUpdate)
	writeUint64(d, uint64(s.databaseOID))
	writeUint64(d, uint64(s.namespaceOID))
}

func (s *scanPlanNode) scanDocument(typ PlanNodeType) *nodeDocument {
	doc := s.baseDocument(typ)
	isForUpdate := s.isForUpdate
	databaseOID := s.databaseOID
	namespaceOID := s.namespaceOID
	doc.Predicate = &exprField{ref: s.predicate}
	doc.IsForUpdate = &isForUpdate
	doc.DatabaseOID = &databaseOID
	doc.NamespaceOID = &namespaceOID
	return doc
}

func writeColumnOIDs(d *xxhash.Digest, oids []catalog.ColumnOID) {
	writeUint64(d, uint64(len(oids)))
	for _, oid := range oids {
		writeUint64(d, uint64(oid))
	}
}
