package planner

import (
	"fmt"
	"slices"

	"github.com/cespare/xxhash/v2"

	"github.com/dshills/quantaplan/internal/catalog"
	"github.com/dshills/quantaplan/internal/errors"
)

// SeqScanPlanNode reads every row of a table in storage order and projects
// an explicit list of columns.
type SeqScanPlanNode struct {
	scanPlanNode
	tableOID   catalog.TableOID
	columnOIDs []catalog.ColumnOID
}

func (n *SeqScanPlanNode) PlanNodeType() PlanNodeType {
	return SeqScan
}

// TableOID returns the scanned table.
func (n *SeqScanPlanNode) TableOID() catalog.TableOID {
	return n.tableOID
}

// ColumnOIDs returns the projected columns in stored order. Duplicates are
// kept as given to the builder.
func (n *SeqScanPlanNode) ColumnOIDs() []catalog.ColumnOID {
	return cloneColumnOIDs(n.columnOIDs)
}

// Equal reports whether other is a sequential scan with the same fields.
func (n *SeqScanPlanNode) Equal(other Node) bool {
	o, ok := other.(*SeqScanPlanNode)
	if !ok || other.PlanNodeType() != SeqScan {
		return false
	}
	if n == nil || o == nil {
		return n == o
	}
	return n.scanEqual(&o.scanPlanNode) &&
		n.tableOID == o.tableOID &&
		slices.Equal(n.columnOIDs, o.columnOIDs)
}

func (n *SeqScanPlanNode) Hash() uint64 {
	d := xxhash.New()
	n.writeScanHash(d, SeqScan)
	writeUint64(d, n.tableOID.Hash())
	writeColumnOIDs(d, n.columnOIDs)
	return d.Sum64()
}

func (n *SeqScanPlanNode) ToJSON() ([]byte, error) {
	return json.Marshal(n.document())
}

func (n *SeqScanPlanNode) document() *nodeDocument {
	doc := n.scanDocument(SeqScan)
	tableOID := n.tableOID
	columnOIDs := cloneColumnOIDs(n.columnOIDs)
	doc.TableOID = &tableOID
	doc.ColumnOIDs = &columnOIDs
	return doc
}

func (n *SeqScanPlanNode) String() string {
	if n.predicate.IsNil() {
		return fmt.Sprintf("SeqScan(%s)", n.tableOID)
	}
	return fmt.Sprintf("SeqScan(%s, filter=%s)", n.tableOID, n.predicate)
}

// SeqScanBuilder builds a SeqScanPlanNode. The output schema, table OID and
// column OIDs are required.
type SeqScanBuilder struct {
	scanBuilder[*SeqScanBuilder]
	tableOID      catalog.TableOID
	tableOIDSet   bool
	columnOIDs    []catalog.ColumnOID
	columnOIDsSet bool
}

// NewSeqScanBuilder returns an empty builder.
func NewSeqScanBuilder() *SeqScanBuilder {
	b := &SeqScanBuilder{}
	b.self = b
	b.nodeType = SeqScan
	return b
}

// SetTableOID sets the scanned table.
func (b *SeqScanBuilder) SetTableOID(oid catalog.TableOID) *SeqScanBuilder {
	b.tableOID = oid
	b.tableOIDSet = true
	return b
}

// SetColumnOIDs sets the projected columns. The slice is copied; an empty
// list is a valid choice and counts as set.
func (b *SeqScanBuilder) SetColumnOIDs(oids []catalog.ColumnOID) *SeqScanBuilder {
	b.columnOIDs = cloneColumnOIDs(oids)
	b.columnOIDsSet = true
	return b
}

// Build returns the node and consumes the builder. A builder that failed
// validation is not consumed.
func (b *SeqScanBuilder) Build() (*SeqScanPlanNode, error) {
	if err := b.beginScan(); err != nil {
		return nil, err
	}
	if !b.tableOIDSet {
		return nil, errors.IncompleteBuilderError(SeqScan.String(), "table oid")
	}
	if !b.tableOID.IsValid() {
		return nil, errors.InvalidBuilderArgumentError(SeqScan.String(), "table oid", "oid 0 is reserved")
	}
	if !b.columnOIDsSet {
		return nil, errors.IncompleteBuilderError(SeqScan.String(), "column oids")
	}
	return &SeqScanPlanNode{
		scanPlanNode: b.finishScan(),
		tableOID:     b.tableOID,
		columnOIDs:   b.columnOIDs,
	}, nil
}
