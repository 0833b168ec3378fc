// Package expression implements the scalar expression trees that plan nodes
// reference. Expressions live in an Arena owned by the statement that built
// them; plan nodes hold Ref handles into that arena instead of pointers to
// individual nodes. A Ref keeps its arena alive, so a handle can never
// dangle, and expression nodes are never modified once added.
package expression

import (
	"fmt"
	"strings"

	"github.com/dshills/quantaplan/internal/catalog"
	"github.com/dshills/quantaplan/internal/sql/types"
)

// ExpressionType discriminates expression node kinds.
type ExpressionType int

const (
	Invalid ExpressionType = iota

	ColumnValue
	ValueConstant
	ValueParameter
	Star

	// Comparison operators
	CompareEqual
	CompareNotEqual
	CompareLessThan
	CompareLessThanOrEqualTo
	CompareGreaterThan
	CompareGreaterThanOrEqualTo

	// Logical operators
	ConjunctionAnd
	ConjunctionOr

	// Unary operators
	OperatorNot
	OperatorIsNull
	OperatorIsNotNull

	// Arithmetic operators
	OperatorPlus
	OperatorMinus
	OperatorMultiply
	OperatorDivide

	Function
)

var expressionTypeNames = map[ExpressionType]string{
	Invalid:                     "INVALID",
	ColumnValue:                 "COLUMN_VALUE",
	ValueConstant:               "VALUE_CONSTANT",
	ValueParameter:              "VALUE_PARAMETER",
	Star:                        "STAR",
	CompareEqual:                "COMPARE_EQUAL",
	CompareNotEqual:             "COMPARE_NOT_EQUAL",
	CompareLessThan:             "COMPARE_LESS_THAN",
	CompareLessThanOrEqualTo:    "COMPARE_LESS_THAN_OR_EQUAL_TO",
	CompareGreaterThan:          "COMPARE_GREATER_THAN",
	CompareGreaterThanOrEqualTo: "COMPARE_GREATER_THAN_OR_EQUAL_TO",
	ConjunctionAnd:              "CONJUNCTION_AND",
	ConjunctionOr:               "CONJUNCTION_OR",
	OperatorNot:                 "OPERATOR_NOT",
	OperatorIsNull:              "OPERATOR_IS_NULL",
	OperatorIsNotNull:           "OPERATOR_IS_NOT_NULL",
	OperatorPlus:                "OPERATOR_PLUS",
	OperatorMinus:               "OPERATOR_MINUS",
	OperatorMultiply:            "OPERATOR_MULTIPLY",
	OperatorDivide:              "OPERATOR_DIVIDE",
	Function:                    "FUNCTION",
}

var expressionTypesByName = func() map[string]ExpressionType {
	m := make(map[string]ExpressionType, len(expressionTypeNames))
	for typ, name := range expressionTypeNames {
		m[name] = typ
	}
	return m
}()

func (t ExpressionType) String() string {
	if name, ok := expressionTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("Unknown(%d)", int(t))
}

// ParseExpressionType maps a serialized discriminant back to its type.
func ParseExpressionType(name string) (ExpressionType, bool) {
	typ, ok := expressionTypesByName[name]
	if !ok || typ == Invalid {
		return Invalid, false
	}
	return typ, true
}

// IsComparison reports whether t is one of the COMPARE_* kinds.
func (t ExpressionType) IsComparison() bool {
	return t >= CompareEqual && t <= CompareGreaterThanOrEqualTo
}

// IsConjunction reports whether t is AND or OR.
func (t ExpressionType) IsConjunction() bool {
	return t == ConjunctionAnd || t == ConjunctionOr
}

// IsUnaryOperator reports whether t takes exactly one operand.
func (t ExpressionType) IsUnaryOperator() bool {
	return t >= OperatorNot && t <= OperatorIsNotNull
}

// IsArithmetic reports whether t is a binary arithmetic operator.
func (t ExpressionType) IsArithmetic() bool {
	return t >= OperatorPlus && t <= OperatorDivide
}

var operatorSymbols = map[ExpressionType]string{
	CompareEqual:                "=",
	CompareNotEqual:             "<>",
	CompareLessThan:             "<",
	CompareLessThanOrEqualTo:    "<=",
	CompareGreaterThan:          ">",
	CompareGreaterThanOrEqualTo: ">=",
	ConjunctionAnd:              "AND",
	ConjunctionOr:               "OR",
	OperatorPlus:                "+",
	OperatorMinus:               "-",
	OperatorMultiply:            "*",
	OperatorDivide:              "/",
}

// node is the arena-resident payload of one expression.
type node struct {
	typ        ExpressionType
	returnType types.TypeID
	children   []int32

	// COLUMN_VALUE
	tableOID  catalog.TableOID
	columnOID catalog.ColumnOID

	// column name for COLUMN_VALUE, function name for FUNCTION
	name string

	// VALUE_CONSTANT
	value types.Value

	// VALUE_PARAMETER, 1-based
	paramIndex int
}

// localEqual compares everything except children.
func (n *node) localEqual(o *node) bool {
	return n.typ == o.typ &&
		n.returnType == o.returnType &&
		len(n.children) == len(o.children) &&
		n.tableOID == o.tableOID &&
		n.columnOID == o.columnOID &&
		n.name == o.name &&
		(n.typ != ValueConstant || n.value.Equal(o.value)) &&
		n.paramIndex == o.paramIndex
}

// Ref is a handle to an expression stored in an Arena. The zero Ref is the
// null expression.
type Ref struct {
	arena *Arena
	idx   int32
}

// IsNil reports whether r is the null expression.
func (r Ref) IsNil() bool {
	return r.arena == nil
}

// Arena returns the arena that owns r.
func (r Ref) Arena() *Arena {
	return r.arena
}

func (r Ref) node() *node {
	if r.arena == nil {
		panic("expression: use of nil Ref")
	}
	return r.arena.get(r.idx)
}

// Type returns the expression discriminant. The null expression has type Invalid.
func (r Ref) Type() ExpressionType {
	if r.IsNil() {
		return Invalid
	}
	return r.node().typ
}

// ReturnType returns the SQL type the expression evaluates to.
func (r Ref) ReturnType() types.TypeID {
	return r.node().returnType
}

// NumChildren returns the number of child expressions.
func (r Ref) NumChildren() int {
	if r.IsNil() {
		return 0
	}
	return len(r.node().children)
}

// Child returns the i-th child expression.
func (r Ref) Child(i int) Ref {
	return Ref{arena: r.arena, idx: r.node().children[i]}
}

// Children returns the child expressions in order.
func (r Ref) Children() []Ref {
	if r.IsNil() {
		return nil
	}
	n := r.node()
	refs := make([]Ref, len(n.children))
	for i, c := range n.children {
		refs[i] = Ref{arena: r.arena, idx: c}
	}
	return refs
}

// ColumnOID returns the referenced column of a COLUMN_VALUE expression and
// zero for every other kind.
func (r Ref) ColumnOID() catalog.ColumnOID {
	return r.node().columnOID
}

// TableOID returns the table of a COLUMN_VALUE expression.
func (r Ref) TableOID() catalog.TableOID {
	return r.node().tableOID
}

// Name returns the column name of a COLUMN_VALUE or the function name of a
// FUNCTION expression.
func (r Ref) Name() string {
	return r.node().name
}

// Value returns the constant of a VALUE_CONSTANT expression.
func (r Ref) Value() types.Value {
	return r.node().value
}

// ParamIndex returns the 1-based index of a VALUE_PARAMETER expression.
func (r Ref) ParamIndex() int {
	return r.node().paramIndex
}

// String renders the expression in SQL-like syntax.
func (r Ref) String() string {
	if r.IsNil() {
		return "<nil>"
	}
	var sb strings.Builder
	r.format(&sb, func(c Ref) string {
		if c.Name() != "" {
			return c.Name()
		}
		return fmt.Sprintf("#%d", uint32(c.ColumnOID()))
	})
	return sb.String()
}

// Format renders the expression using colName to spell column references.
func (r Ref) Format(colName func(Ref) string) string {
	if r.IsNil() {
		return "<nil>"
	}
	var sb strings.Builder
	r.format(&sb, colName)
	return sb.String()
}

func (r Ref) format(sb *strings.Builder, colName func(Ref) string) {
	n := r.node()
	switch {
	case n.typ == ColumnValue:
		sb.WriteString(colName(r))
	case n.typ == ValueConstant:
		if s, ok := n.value.Data.(string); ok && !n.value.Null {
			sb.WriteString("'" + strings.ReplaceAll(s, "'", "''") + "'")
		} else {
			sb.WriteString(n.value.String())
		}
	case n.typ == ValueParameter:
		fmt.Fprintf(sb, "$%d", n.paramIndex)
	case n.typ == Star:
		sb.WriteString("*")
	case n.typ == OperatorNot:
		sb.WriteString("NOT ")
		r.Child(0).format(sb, colName)
	case n.typ == OperatorIsNull || n.typ == OperatorIsNotNull:
		r.Child(0).format(sb, colName)
		if n.typ == OperatorIsNull {
			sb.WriteString(" IS NULL")
		} else {
			sb.WriteString(" IS NOT NULL")
		}
	case n.typ == Function:
		sb.WriteString(n.name)
		sb.WriteString("(")
		for i := range n.children {
			if i > 0 {
				sb.WriteString(", ")
			}
			r.Child(i).format(sb, colName)
		}
		sb.WriteString(")")
	default:
		sym := operatorSymbols[n.typ]
		sb.WriteString("(")
		for i := range n.children {
			if i > 0 {
				sb.WriteString(" " + sym + " ")
			}
			r.Child(i).format(sb, colName)
		}
		sb.WriteString(")")
	}
}
