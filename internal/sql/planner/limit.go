package planner

import (
	"fmt"

	"github.com/cespare/xxhash/v2"

	"github.com/dshills/quantaplan/internal/errors"
)

// LimitPlanNode passes through at most limit rows of its single child after
// skipping offset rows.
type LimitPlanNode struct {
	basePlanNode
	limit  int64
	offset int64
}

func (n *LimitPlanNode) PlanNodeType() PlanNodeType {
	return Limit
}

// Limit returns the maximum number of rows produced.
func (n *LimitPlanNode) Limit() int64 {
	return n.limit
}

// Offset returns the number of leading rows skipped.
func (n *LimitPlanNode) Offset() int64 {
	return n.offset
}

func (n *LimitPlanNode) Equal(other Node) bool {
	o, ok := other.(*LimitPlanNode)
	if !ok || other.PlanNodeType() != Limit {
		return false
	}
	if n == nil || o == nil {
		return n == o
	}
	return n.baseEqual(&o.basePlanNode) &&
		n.limit == o.limit &&
		n.offset == o.offset
}

func (n *LimitPlanNode) Hash() uint64 {
	d := xxhash.New()
	n.writeHash(d, Limit)
	writeUint64(d, uint64(n.limit))
	writeUint64(d, uint64(n.offset))
	return d.Sum64()
}

func (n *LimitPlanNode) ToJSON() ([]byte, error) {
	return json.Marshal(n.document())
}

func (n *LimitPlanNode) document() *nodeDocument {
	doc := n.baseDocument(Limit)
	limit, offset := n.limit, n.offset
	doc.Limit = &limit
	doc.Offset = &offset
	return doc
}

func (n *LimitPlanNode) String() string {
	return fmt.Sprintf("Limit(%d, offset=%d)", n.limit, n.offset)
}

// LimitBuilder builds a LimitPlanNode. Exactly one child and a limit are
// required. Without an explicit output schema the child's is used.
type LimitBuilder struct {
	baseBuilder[*LimitBuilder]
	limit    int64
	limitSet bool
	offset   int64
}

func NewLimitBuilder() *LimitBuilder {
	b := &LimitBuilder{}
	b.self = b
	b.nodeType = Limit
	return b
}

func (b *LimitBuilder) SetLimit(limit int64) *LimitBuilder {
	b.limit = limit
	b.limitSet = true
	return b
}

func (b *LimitBuilder) SetOffset(offset int64) *LimitBuilder {
	b.offset = offset
	return b
}

// Build returns the node and consumes the builder.
func (b *LimitBuilder) Build() (*LimitPlanNode, error) {
	name := Limit.String()
	if err := b.begin(false); err != nil {
		return nil, err
	}
	switch {
	case len(b.children) != 1:
		return nil, errors.InvalidBuilderArgumentError(name, "children",
			fmt.Sprintf("expected exactly 1 child, got %d", len(b.children)))
	case !b.limitSet:
		return nil, errors.IncompleteBuilderError(name, "limit")
	case b.limit < 0:
		return nil, errors.InvalidBuilderArgumentError(name, "limit", "must not be negative")
	case b.offset < 0:
		return nil, errors.InvalidBuilderArgumentError(name, "offset", "must not be negative")
	}
	if b.outputSchema == nil {
		b.outputSchema = b.children[0].OutputSchema()
	}
	return &LimitPlanNode{
		basePlanNode: b.finish(),
		limit:        b.limit,
		offset:       b.offset,
	}, nil
}
