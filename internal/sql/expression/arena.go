package expression

import (
	"sync"

	"github.com/dshills/quantaplan/internal/catalog"
	"github.com/dshills/quantaplan/internal/errors"
	"github.com/dshills/quantaplan/internal/sql/types"
)

// Arena owns the expressions of one statement. Nodes are append-only, so a
// Ref handed out once stays valid and immutable for the arena's lifetime.
// An Arena is safe for concurrent use.
type Arena struct {
	mu    sync.RWMutex
	nodes []*node
}

// NewArena creates an empty arena.
func NewArena() *Arena {
	return &Arena{}
}

// Len returns the number of expressions stored in the arena.
func (a *Arena) Len() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.nodes)
}

func (a *Arena) get(idx int32) *node {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.nodes[idx]
}

func (a *Arena) add(n *node) Ref {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.nodes = append(a.nodes, n)
	return Ref{arena: a, idx: int32(len(a.nodes) - 1)}
}

func (a *Arena) childIndexes(typ ExpressionType, children []Ref) ([]int32, error) {
	idxs := make([]int32, len(children))
	for i, c := range children {
		if c.IsNil() {
			return nil, errors.Newf(errors.InvalidParameterValue, "%s child %d is nil", typ, i)
		}
		if c.arena != a {
			return nil, errors.ForeignExpressionError(typ.String())
		}
		idxs[i] = c.idx
	}
	return idxs, nil
}

// ColumnValue adds a reference to a table column.
func (a *Arena) ColumnValue(table catalog.TableOID, column catalog.ColumnOID, name string, typ types.TypeID) Ref {
	return a.add(&node{
		typ:        ColumnValue,
		returnType: typ,
		tableOID:   table,
		columnOID:  column,
		name:       name,
	})
}

// Constant adds a literal value. Values of unsupported Go types and
// non-finite floats are rejected.
func (a *Arena) Constant(v types.Value) (Ref, error) {
	if err := v.Validate(); err != nil {
		return Ref{}, errors.Newf(errors.InvalidParameterValue, "invalid constant: %v", err)
	}
	return a.add(&node{
		typ:        ValueConstant,
		returnType: v.TypeID(),
		value:      v,
	}), nil
}

// Parameter adds a placeholder like $1.
func (a *Arena) Parameter(index int, typ types.TypeID) (Ref, error) {
	if index < 1 {
		return Ref{}, errors.Newf(errors.InvalidParameterValue, "parameter index must be positive, got %d", index)
	}
	return a.add(&node{
		typ:        ValueParameter,
		returnType: typ,
		paramIndex: index,
	}), nil
}

// Star adds a SELECT * marker.
func (a *Arena) Star() Ref {
	return a.add(&node{typ: Star})
}

// Comparison adds a binary comparison.
func (a *Arena) Comparison(typ ExpressionType, left, right Ref) (Ref, error) {
	if !typ.IsComparison() {
		return Ref{}, errors.Newf(errors.InvalidParameterValue, "%s is not a comparison", typ)
	}
	return a.compose(typ, types.TypeIDBoolean, "", []Ref{left, right})
}

// Conjunction adds an AND or OR over two or more operands.
func (a *Arena) Conjunction(typ ExpressionType, operands ...Ref) (Ref, error) {
	if !typ.IsConjunction() {
		return Ref{}, errors.Newf(errors.InvalidParameterValue, "%s is not a conjunction", typ)
	}
	if len(operands) < 2 {
		return Ref{}, errors.InvalidExpressionArityError(typ.String(), "at least 2", len(operands))
	}
	return a.compose(typ, types.TypeIDBoolean, "", operands)
}

// Operator adds a unary or arithmetic operator.
func (a *Arena) Operator(typ ExpressionType, operands ...Ref) (Ref, error) {
	switch {
	case typ.IsUnaryOperator():
		if len(operands) != 1 {
			return Ref{}, errors.InvalidExpressionArityError(typ.String(), "1", len(operands))
		}
		return a.compose(typ, types.TypeIDBoolean, "", operands)
	case typ.IsArithmetic():
		if len(operands) != 2 {
			return Ref{}, errors.InvalidExpressionArityError(typ.String(), "2", len(operands))
		}
		if operands[0].IsNil() {
			return Ref{}, errors.Newf(errors.InvalidParameterValue, "%s child 0 is nil", typ)
		}
		return a.compose(typ, operands[0].ReturnType(), "", operands)
	default:
		return Ref{}, errors.Newf(errors.InvalidParameterValue, "%s is not an operator", typ)
	}
}

// Function adds a call of the named function.
func (a *Arena) Function(name string, returnType types.TypeID, args ...Ref) (Ref, error) {
	if name == "" {
		return Ref{}, errors.New(errors.InvalidParameterValue, "function name is empty")
	}
	return a.compose(Function, returnType, name, args)
}

func (a *Arena) compose(typ ExpressionType, returnType types.TypeID, name string, children []Ref) (Ref, error) {
	if typ.IsComparison() && len(children) != 2 {
		return Ref{}, errors.InvalidExpressionArityError(typ.String(), "2", len(children))
	}
	idxs, err := a.childIndexes(typ, children)
	if err != nil {
		return Ref{}, err
	}
	return a.add(&node{
		typ:        typ,
		returnType: returnType,
		children:   idxs,
		name:       name,
	}), nil
}

// Import copies the tree rooted at r into a and returns the new root. Refs
// already owned by a are returned unchanged.
func (a *Arena) Import(r Ref) Ref {
	if r.IsNil() || r.arena == a {
		return r
	}

	// Post-order over an explicit stack: a node is copied once all of its
	// children have been.
	type frame struct {
		src      Ref
		expanded bool
	}
	copied := make(map[int32]int32)
	stack := []frame{{src: r}}
	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		if _, done := copied[top.src.idx]; done {
			stack = stack[:len(stack)-1]
			continue
		}
		n := top.src.node()
		if !top.expanded {
			top.expanded = true
			for i := len(n.children) - 1; i >= 0; i-- {
				stack = append(stack, frame{src: Ref{arena: r.arena, idx: n.children[i]}})
			}
			continue
		}
		dup := *n
		dup.children = make([]int32, len(n.children))
		for i, c := range n.children {
			dup.children[i] = copied[c]
		}
		copied[top.src.idx] = a.add(&dup).idx
		stack = stack[:len(stack)-1]
	}
	return Ref{arena: a, idx: copied[r.idx]}
}
