package planner

import (
	"encoding/binary"
	"fmt"

	"github.com/cespare/xxhash/v2"
)

// PlanNodeType discriminates the concrete kind of a plan node.
type PlanNodeType int

const (
	InvalidPlanNode PlanNodeType = iota
	SeqScan
	IndexScan
	Limit
)

var planNodeTypeNames = map[PlanNodeType]string{
	InvalidPlanNode: "INVALID",
	SeqScan:         "SEQSCAN",
	IndexScan:       "INDEXSCAN",
	Limit:           "LIMIT",
}

func (t PlanNodeType) String() string {
	if name, ok := planNodeTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("Unknown(%d)", int(t))
}

// ParsePlanNodeType maps a serialized discriminant back to its type.
func ParsePlanNodeType(name string) (PlanNodeType, bool) {
	for typ, n := range planNodeTypeNames {
		if n == name && typ != InvalidPlanNode {
			return typ, true
		}
	}
	return InvalidPlanNode, false
}

// Node is one node of an immutable plan tree. Nodes are only obtained from
// a builder's Build or from FromJSON, and no method changes a built node,
// so a tree may be read from any number of goroutines.
type Node interface {
	// PlanNodeType returns the discriminant of the concrete node kind.
	PlanNodeType() PlanNodeType
	// Children returns the child plans in order.
	Children() []Node
	// Child returns the i-th child plan.
	Child(i int) Node
	// NumChildren returns the number of child plans.
	NumChildren() int
	// OutputSchema returns the output schema of this plan node.
	OutputSchema() *OutputSchema
	// Hash returns a deterministic hash consistent with Equal.
	Hash() uint64
	// Equal reports structural equality. Nodes of different kinds are
	// never equal.
	Equal(other Node) bool
	// ToJSON serializes the subtree rooted at this node.
	ToJSON() ([]byte, error)
	// String returns a string representation for debugging.
	String() string

	document() *nodeDocument
}

// basePlanNode provides common functionality for plan nodes.
type basePlanNode struct {
	children     []Node
	outputSchema *OutputSchema
}

func (p *basePlanNode) Children() []Node {
	children := make([]Node, len(p.children))
	copy(children, p.children)
	return children
}

func (p *basePlanNode) Child(i int) Node {
	return p.children[i]
}

func (p *basePlanNode) NumChildren() int {
	return len(p.children)
}

func (p *basePlanNode) OutputSchema() *OutputSchema {
	return p.outputSchema
}

func (p *basePlanNode) baseEqual(o *basePlanNode) bool {
	if len(p.children) != len(o.children) {
		return false
	}
	for i, child := range p.children {
		if !child.Equal(o.children[i]) {
			return false
		}
	}
	return p.outputSchema.Equal(o.outputSchema)
}

func (p *basePlanNode) writeHash(d *xxhash.Digest, typ PlanNodeType) {
	writeUint64(d, uint64(typ))
	writeUint64(d, uint64(len(p.children)))
	for _, child := range p.children {
		writeUint64(d, child.Hash())
	}
	p.outputSchema.writeHash(d)
}

func (p *basePlanNode) baseDocument(typ PlanNodeType) *nodeDocument {
	doc := &nodeDocument{
		Type:         typ.String(),
		Children:     make([]*nodeDocument, len(p.children)),
		OutputSchema: p.outputSchema.document(),
	}
	for i, child := range p.children {
		doc.Children[i] = child.document()
	}
	return doc
}

func writeUint64(d *xxhash.Digest, v uint64) {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], v)
	_, _ = d.Write(buf[:])
}

func writeBool(d *xxhash.Digest, v bool) {
	if v {
		_, _ = d.Write([]byte{1})
	} else {
		_, _ = d.Write([]byte{0})
	}
}
