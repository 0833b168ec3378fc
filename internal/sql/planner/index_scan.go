package planner

import (
	"fmt"
	"slices"

	"github.com/cespare/xxhash/v2"

	"github.com/dshills/quantaplan/internal/catalog"
	"github.com/dshills/quantaplan/internal/errors"
)

// IndexScanPlanNode reads the rows of a table through one of its indexes.
type IndexScanPlanNode struct {
	scanPlanNode
	indexOID   catalog.IndexOID
	tableOID   catalog.TableOID
	columnOIDs []catalog.ColumnOID
}

func (n *IndexScanPlanNode) PlanNodeType() PlanNodeType {
	return IndexScan
}

// IndexOID returns the index being scanned.
func (n *IndexScanPlanNode) IndexOID() catalog.IndexOID {
	return n.indexOID
}

// TableOID returns the table the index belongs to.
func (n *IndexScanPlanNode) TableOID() catalog.TableOID {
	return n.tableOID
}

// ColumnOIDs returns the projected columns in stored order.
func (n *IndexScanPlanNode) ColumnOIDs() []catalog.ColumnOID {
	return cloneColumnOIDs(n.columnOIDs)
}

func (n *IndexScanPlanNode) Equal(other Node) bool {
	o, ok := other.(*IndexScanPlanNode)
	if !ok || other.PlanNodeType() != IndexScan {
		return false
	}
	if n == nil || o == nil {
		return n == o
	}
	return n.scanEqual(&o.scanPlanNode) &&
		n.indexOID == o.indexOID &&
		n.tableOID == o.tableOID &&
		slices.Equal(n.columnOIDs, o.columnOIDs)
}

func (n *IndexScanPlanNode) Hash() uint64 {
	d := xxhash.New()
	n.writeScanHash(d, IndexScan)
	writeUint64(d, n.indexOID.Hash())
	writeUint64(d, n.tableOID.Hash())
	writeColumnOIDs(d, n.columnOIDs)
	return d.Sum64()
}

func (n *IndexScanPlanNode) ToJSON() ([]byte, error) {
	return json.Marshal(n.document())
}

func (n *IndexScanPlanNode) document() *nodeDocument {
	doc := n.scanDocument(IndexScan)
	indexOID := n.indexOID
	tableOID := n.tableOID
	columnOIDs := cloneColumnOIDs(n.columnOIDs)
	doc.IndexOID = &indexOID
	doc.TableOID = &tableOID
	doc.ColumnOIDs = &columnOIDs
	return doc
}

func (n *IndexScanPlanNode) String() string {
	return fmt.Sprintf("IndexScan(%s on %s)", n.indexOID, n.tableOID)
}

// IndexScanBuilder builds an IndexScanPlanNode. The output schema, index
// OID, table OID and column OIDs are required.
type IndexScanBuilder struct {
	scanBuilder[*IndexScanBuilder]
	indexOID      catalog.IndexOID
	indexOIDSet   bool
	tableOID      catalog.TableOID
	tableOIDSet   bool
	columnOIDs    []catalog.ColumnOID
	columnOIDsSet bool
}

func NewIndexScanBuilder() *IndexScanBuilder {
	b := &IndexScanBuilder{}
	b.self = b
	b.nodeType = IndexScan
	return b
}

func (b *IndexScanBuilder) SetIndexOID(oid catalog.IndexOID) *IndexScanBuilder {
	b.indexOID = oid
	b.indexOIDSet = true
	return b
}

func (b *IndexScanBuilder) SetTableOID(oid catalog.TableOID) *IndexScanBuilder {
	b.tableOID = oid
	b.tableOIDSet = true
	return b
}

// SetColumnOIDs sets the projected columns. The slice is copied.
func (b *IndexScanBuilder) SetColumnOIDs(oids []catalog.ColumnOID) *IndexScanBuilder {
	b.columnOIDs = cloneColumnOIDs(oids)
	b.columnOIDsSet = true
	return b
}

// Build returns the node and consumes the builder.
func (b *IndexScanBuilder) Build() (*IndexScanPlanNode, error) {
	name := IndexScan.String()
	if err := b.beginScan(); err != nil {
		return nil, err
	}
	switch {
	case !b.indexOIDSet:
		return nil, errors.IncompleteBuilderError(name, "index oid")
	case !b.indexOID.IsValid():
		return nil, errors.InvalidBuilderArgumentError(name, "index oid", "oid 0 is reserved")
	case !b.tableOIDSet:
		return nil, errors.IncompleteBuilderError(name, "table oid")
	case !b.tableOID.IsValid():
		return nil, errors.InvalidBuilderArgumentError(name, "table oid", "oid 0 is reserved")
	case !b.columnOIDsSet:
		return nil, errors.IncompleteBuilderError(name, "column oids")
	}
	return &IndexScanPlanNode{
		scanPlanNode: b.finishScan(),
		indexOID:     b.indexOID,
		tableOID:     b.tableOID,
		columnOIDs:   b.columnOIDs,
	}, nil
}
