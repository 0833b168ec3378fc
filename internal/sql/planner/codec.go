package planner

import (
	jsoniter "github.com/json-iterator/go"

	"github.com/dshills/quantaplan/internal/catalog"
	"github.com/dshills/quantaplan/internal/errors"
	"github.com/dshills/quantaplan/internal/log"
	"github.com/dshills/quantaplan/internal/sql/expression"
	"github.com/dshills/quantaplan/internal/sql/types"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// DefaultMaxPlanDepth bounds plan nesting accepted by FromJSON.
const DefaultMaxPlanDepth = 256

// nodeDocument is the serialized form of one plan node. Variant fields are
// pointers so that a missing key can be told apart from a zero value.
type nodeDocument struct {
	Type         string                `json:"type"`
	Children     []*nodeDocument       `json:"children"`
	OutputSchema *outputSchemaDocument `json:"output_schema"`
	Predicate    *exprField            `json:"predicate,omitempty"`
	IsForUpdate  *bool                 `json:"is_for_update,omitempty"`
	DatabaseOID  *catalog.DatabaseOID  `json:"database_oid,omitempty"`
	NamespaceOID *catalog.NamespaceOID `json:"namespace_oid,omitempty"`
	TableOID     *catalog.TableOID     `json:"table_oid,omitempty"`
	ColumnOIDs   *[]catalog.ColumnOID  `json:"column_oids,omitempty"`
	IndexOID     *catalog.IndexOID     `json:"index_oid,omitempty"`
	Limit        *int64                `json:"limit,omitempty"`
	Offset       *int64                `json:"offset,omitempty"`
}

type outputSchemaDocument struct {
	Columns []*columnDocument `json:"columns"`
}

type columnDocument struct {
	Name     string       `json:"name"`
	Type     types.TypeID `json:"type"`
	Nullable bool         `json:"nullable"`
	Expr     *exprField   `json:"expr"`
}

// exprField carries an expression through the plan document. Encoding
// writes the referenced tree; decoding keeps the raw bytes so the
// expression can be rebuilt into the target arena with its own depth
// limit.
type exprField struct {
	ref expression.Ref
	raw []byte
}

func (f *exprField) MarshalJSON() ([]byte, error) {
	return f.ref.MarshalJSON()
}

func (f *exprField) UnmarshalJSON(data []byte) error {
	f.raw = append(f.raw[:0], data...)
	return nil
}

func (s *OutputSchema) document() *outputSchemaDocument {
	if s == nil {
		return nil
	}
	doc := &outputSchemaDocument{Columns: make([]*columnDocument, len(s.columns))}
	for i, c := range s.columns {
		doc.Columns[i] = &columnDocument{
			Name:     c.name,
			Type:     c.typ,
			Nullable: c.nullable,
			Expr:     &exprField{ref: c.expr},
		}
	}
	return doc
}

// DecodeOptions controls FromJSON. Zero fields select the defaults.
type DecodeOptions struct {
	// MaxExpressionDepth bounds the nesting of every expression. Values
	// above expression.DefaultMaxDepth, which builders enforce, are capped.
	MaxExpressionDepth int
	// MaxPlanDepth bounds the nesting of plan nodes.
	MaxPlanDepth int
	// Logger receives a debug record per decoded node.
	Logger log.Logger
}

// DefaultDecodeOptions returns the limits used when none are given.
func DefaultDecodeOptions() DecodeOptions {
	return DecodeOptions{
		MaxExpressionDepth: expression.DefaultMaxDepth,
		MaxPlanDepth:       DefaultMaxPlanDepth,
		Logger:             log.Default(),
	}
}

func (o DecodeOptions) withDefaults() DecodeOptions {
	def := DefaultDecodeOptions()
	if o.MaxExpressionDepth <= 0 || o.MaxExpressionDepth > expression.DefaultMaxDepth {
		o.MaxExpressionDepth = def.MaxExpressionDepth
	}
	if o.MaxPlanDepth <= 0 {
		o.MaxPlanDepth = def.MaxPlanDepth
	}
	if o.Logger == nil {
		o.Logger = def.Logger
	}
	return o
}

// FromJSON decodes a plan document of any node kind. Expressions are
// rebuilt into a fresh arena, so the returned tree owns everything it
// references.
func FromJSON(data []byte, opts DecodeOptions) (Node, error) {
	return DecodeInto(expression.NewArena(), data, opts)
}

// SeqScanFromJSON decodes a document whose root must be a SEQSCAN node.
func SeqScanFromJSON(data []byte, opts DecodeOptions) (*SeqScanPlanNode, error) {
	node, err := FromJSON(data, opts)
	if err != nil {
		return nil, err
	}
	scan, ok := node.(*SeqScanPlanNode)
	if !ok {
		return nil, errors.MalformedPlanError("expected %s plan node, got %s", SeqScan, node.PlanNodeType())
	}
	return scan, nil
}

// DecodeInto decodes a plan document, placing its expressions in arena.
// Several plans decoded into one arena share the statement's lifetime.
func DecodeInto(arena *expression.Arena, data []byte, opts DecodeOptions) (Node, error) {
	var doc *nodeDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, errors.InvalidPlanJSONError(err, "plan")
	}
	if doc == nil {
		return nil, errors.MalformedPlanError("plan document is null")
	}
	d := &decoder{arena: arena, opts: opts.withDefaults()}
	return d.node(doc, 1)
}

type decoder struct {
	arena *expression.Arena
	opts  DecodeOptions
}

// node rebuilds doc bottom-up: children first, then the node's own
// expressions, then the node through its builder.
func (d *decoder) node(doc *nodeDocument, depth int) (Node, error) {
	if depth > d.opts.MaxPlanDepth {
		return nil, errors.PlanTooDeepError(d.opts.MaxPlanDepth)
	}
	if doc == nil {
		return nil, errors.MalformedPlanError("plan child is null")
	}
	if doc.Type == "" {
		return nil, errors.MalformedPlanError("plan node is missing \"type\"")
	}
	typ, ok := ParsePlanNodeType(doc.Type)
	if !ok {
		return nil, errors.UnknownPlanNodeTypeError(doc.Type)
	}

	children := make([]Node, len(doc.Children))
	for i, c := range doc.Children {
		child, err := d.node(c, depth+1)
		if err != nil {
			return nil, err
		}
		children[i] = child
	}

	var schema *OutputSchema
	if doc.OutputSchema != nil {
		var err error
		if schema, err = d.outputSchema(doc.OutputSchema); err != nil {
			return nil, err
		}
	} else if typ != Limit {
		return nil, errors.MalformedPlanError("%s plan node is missing \"output_schema\"", typ)
	}

	var node Node
	var err error
	switch typ {
	case SeqScan:
		node, err = d.seqScan(doc, children, schema)
	case IndexScan:
		node, err = d.indexScan(doc, children, schema)
	case Limit:
		node, err = d.limit(doc, children, schema)
	}
	if err != nil {
		return nil, err
	}
	d.opts.Logger.Debug("decoded plan node",
		log.String("type", typ.String()),
		log.Int("children", len(children)))
	return node, nil
}

func (d *decoder) outputSchema(doc *outputSchemaDocument) (*OutputSchema, error) {
	cols := make([]OutputColumn, len(doc.Columns))
	for i, c := range doc.Columns {
		if c == nil {
			return nil, errors.MalformedPlanError("output column %d is null", i)
		}
		expr, err := d.expr(c.Expr)
		if err != nil {
			return nil, err
		}
		cols[i] = NewOutputColumn(c.Name, c.Type, c.Nullable, expr)
	}
	return NewOutputSchema(cols...), nil
}

func (d *decoder) expr(f *exprField) (expression.Ref, error) {
	if f == nil || len(f.raw) == 0 {
		return expression.Ref{}, nil
	}
	return d.arena.Decode(f.raw, d.opts.MaxExpressionDepth)
}

// scanFields decodes the fields shared by scans into b.
func scanFields[B any](d *decoder, doc *nodeDocument, b *scanBuilder[B]) error {
	predicate, err := d.expr(doc.Predicate)
	if err != nil {
		return err
	}
	b.SetScanPredicate(predicate)
	if doc.IsForUpdate != nil {
		b.SetIsForUpdate(*doc.IsForUpdate)
	}
	if doc.DatabaseOID != nil {
		b.SetDatabaseOID(*doc.DatabaseOID)
	}
	if doc.NamespaceOID != nil {
		b.SetNamespaceOID(*doc.NamespaceOID)
	}
	return nil
}

func requireKeys(typ PlanNodeType, present map[string]bool) error {
	for _, key := range []string{"index_oid", "table_oid", "column_oids", "limit"} {
		if p, ok := present[key]; ok && !p {
			return errors.MalformedPlanError("%s plan node is missing %q", typ, key)
		}
	}
	return nil
}

func (d *decoder) seqScan(doc *nodeDocument, children []Node, schema *OutputSchema) (Node, error) {
	if err := requireKeys(SeqScan, map[string]bool{
		"table_oid":   doc.TableOID != nil,
		"column_oids": doc.ColumnOIDs != nil,
	}); err != nil {
		return nil, err
	}
	b := NewSeqScanBuilder().
		SetOutputSchema(schema).
		SetTableOID(*doc.TableOID).
		SetColumnOIDs(*doc.ColumnOIDs)
	for _, child := range children {
		b.AddChild(child)
	}
	if err := scanFields(d, doc, &b.scanBuilder); err != nil {
		return nil, err
	}
	node, err := b.Build()
	if err != nil {
		return nil, rejectedByBuilder(err)
	}
	return node, nil
}

func (d *decoder) indexScan(doc *nodeDocument, children []Node, schema *OutputSchema) (Node, error) {
	if err := requireKeys(IndexScan, map[string]bool{
		"index_oid":   doc.IndexOID != nil,
		"table_oid":   doc.TableOID != nil,
		"column_oids": doc.ColumnOIDs != nil,
	}); err != nil {
		return nil, err
	}
	b := NewIndexScanBuilder().
		SetOutputSchema(schema).
		SetIndexOID(*doc.IndexOID).
		SetTableOID(*doc.TableOID).
		SetColumnOIDs(*doc.ColumnOIDs)
	for _, child := range children {
		b.AddChild(child)
	}
	if err := scanFields(d, doc, &b.scanBuilder); err != nil {
		return nil, err
	}
	node, err := b.Build()
	if err != nil {
		return nil, rejectedByBuilder(err)
	}
	return node, nil
}

func (d *decoder) limit(doc *nodeDocument, children []Node, schema *OutputSchema) (Node, error) {
	if err := requireKeys(Limit, map[string]bool{"limit": doc.Limit != nil}); err != nil {
		return nil, err
	}
	b := NewLimitBuilder().SetLimit(*doc.Limit)
	if doc.Offset != nil {
		b.SetOffset(*doc.Offset)
	}
	if schema != nil {
		b.SetOutputSchema(schema)
	}
	for _, child := range children {
		b.AddChild(child)
	}
	node, err := b.Build()
	if err != nil {
		return nil, rejectedByBuilder(err)
	}
	return node, nil
}

// rejectedByBuilder reports a builder rejection as a malformed document.
func rejectedByBuilder(err error) error {
	return errors.MalformedPlanError("invalid plan node: %s", errors.GetError(err).Message)
}
