package expression

import (
	jsoniter "github.com/json-iterator/go"

	"github.com/dshills/quantaplan/internal/catalog"
	"github.com/dshills/quantaplan/internal/errors"
	"github.com/dshills/quantaplan/internal/sql/types"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// DefaultMaxDepth bounds expression nesting accepted by Decode.
const DefaultMaxDepth = 512

// document is the serialized form of one expression node.
type document struct {
	Type         string             `json:"type"`
	ReturnType   types.TypeID       `json:"return_value_type"`
	Children     []*document        `json:"children"`
	TableOID     *catalog.TableOID  `json:"table_oid,omitempty"`
	ColumnOID    *catalog.ColumnOID `json:"column_oid,omitempty"`
	ColumnName   string             `json:"column_name,omitempty"`
	FunctionName string             `json:"function_name,omitempty"`
	Value        *types.Value       `json:"value,omitempty"`
	ParamIndex   *int               `json:"param_index,omitempty"`
}

// MarshalJSON encodes the tree rooted at r. The null expression encodes as
// JSON null.
func (r Ref) MarshalJSON() ([]byte, error) {
	if r.IsNil() {
		return []byte("null"), nil
	}
	return json.Marshal(r.document())
}

func (r Ref) document() *document {
	n := r.node()
	doc := &document{
		Type:       n.typ.String(),
		ReturnType: n.returnType,
		Children:   make([]*document, len(n.children)),
	}
	for i := range n.children {
		doc.Children[i] = r.Child(i).document()
	}
	switch n.typ {
	case ColumnValue:
		table, column := n.tableOID, n.columnOID
		doc.TableOID = &table
		doc.ColumnOID = &column
		doc.ColumnName = n.name
	case ValueConstant:
		v := n.value
		doc.Value = &v
	case ValueParameter:
		idx := n.paramIndex
		doc.ParamIndex = &idx
	case Function:
		doc.FunctionName = n.name
	}
	return doc
}

// Decode parses an expression document into a, returning its root. A JSON
// null decodes to the null expression. Nesting deeper than maxDepth is
// rejected; maxDepth <= 0 selects DefaultMaxDepth.
func (a *Arena) Decode(data []byte, maxDepth int) (Ref, error) {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	var doc *document
	if err := json.Unmarshal(data, &doc); err != nil {
		return Ref{}, errors.InvalidPlanJSONError(err, "expression")
	}
	if doc == nil {
		return Ref{}, nil
	}
	return a.fromDocument(doc, 1, maxDepth)
}

func (a *Arena) fromDocument(doc *document, depth, maxDepth int) (Ref, error) {
	if depth > maxDepth {
		return Ref{}, errors.ExpressionTooDeepError(maxDepth)
	}
	if doc == nil {
		return Ref{}, errors.MalformedPlanError("expression child is null")
	}
	if doc.Type == "" {
		return Ref{}, errors.MalformedPlanError("expression is missing \"type\"")
	}
	typ, ok := ParseExpressionType(doc.Type)
	if !ok {
		return Ref{}, errors.UnknownExpressionTypeError(doc.Type)
	}

	// Children first so that the arena is filled bottom-up.
	children := make([]Ref, len(doc.Children))
	for i, c := range doc.Children {
		child, err := a.fromDocument(c, depth+1, maxDepth)
		if err != nil {
			return Ref{}, err
		}
		children[i] = child
	}

	leaf := func() error {
		if len(children) != 0 {
			return errors.MalformedPlanError("%s expression cannot have children", typ)
		}
		return nil
	}

	var ref Ref
	var err error
	switch {
	case typ == ColumnValue:
		if err := leaf(); err != nil {
			return Ref{}, err
		}
		if doc.ColumnOID == nil {
			return Ref{}, errors.MalformedPlanError("COLUMN_VALUE expression is missing \"column_oid\"")
		}
		var table catalog.TableOID
		if doc.TableOID != nil {
			table = *doc.TableOID
		}
		ref = a.ColumnValue(table, *doc.ColumnOID, doc.ColumnName, doc.ReturnType)
	case typ == ValueConstant:
		if err := leaf(); err != nil {
			return Ref{}, err
		}
		if doc.Value == nil {
			return Ref{}, errors.MalformedPlanError("VALUE_CONSTANT expression is missing \"value\"")
		}
		ref, err = a.Constant(*doc.Value)
	case typ == ValueParameter:
		if err := leaf(); err != nil {
			return Ref{}, err
		}
		if doc.ParamIndex == nil {
			return Ref{}, errors.MalformedPlanError("VALUE_PARAMETER expression is missing \"param_index\"")
		}
		ref, err = a.Parameter(*doc.ParamIndex, doc.ReturnType)
	case typ == Star:
		if err := leaf(); err != nil {
			return Ref{}, err
		}
		ref = a.Star()
	case typ.IsComparison():
		if len(children) != 2 {
			return Ref{}, errors.MalformedPlanError("%s expects 2 children, got %d", typ, len(children))
		}
		ref, err = a.Comparison(typ, children[0], children[1])
	case typ.IsConjunction():
		ref, err = a.Conjunction(typ, children...)
	case typ.IsUnaryOperator(), typ.IsArithmetic():
		ref, err = a.Operator(typ, children...)
	case typ == Function:
		ref, err = a.Function(doc.FunctionName, doc.ReturnType, children...)
	}
	if err != nil {
		return Ref{}, errors.MalformedPlanError("invalid %s expression: %s", typ, errors.GetError(err).Message)
	}
	return ref, nil
}
